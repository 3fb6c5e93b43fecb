package resource

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/c360/manifest/errors"
)

// DefaultResolver resolves location strings into file or HTTP resources
// and expands glob: patterns against the local filesystem.
type DefaultResolver struct {
	// Client is used for http(s) locations. Nil means a default client.
	Client *http.Client
}

// NewResolver creates a resolver with default settings.
func NewResolver() *DefaultResolver {
	return &DefaultResolver{}
}

// Resolve yields the single resource a plain location denotes.
// Supported forms: http(s) URLs, file: URLs, and bare filesystem paths.
func (dr *DefaultResolver) Resolve(location string) (Resource, error) {
	switch {
	case location == "":
		return nil, errors.WrapInvalid(errors.ErrEmptyAttribute, "DefaultResolver", "Resolve", "location validation")
	case strings.HasPrefix(location, "http:") || strings.HasPrefix(location, "https:"):
		return ParseHTTPResource(location, dr.Client)
	case strings.HasPrefix(location, "file:"):
		return NewFileResource(strings.TrimPrefix(strings.TrimPrefix(location, "file:"), "//")), nil
	default:
		return NewFileResource(location), nil
	}
}

// ResolveAll expands a glob: location into every matching file, sorted
// by path. Plain locations yield exactly one resource, whether or not
// it exists; glob patterns matching nothing yield an empty slice.
func (dr *DefaultResolver) ResolveAll(location string) ([]Resource, error) {
	pattern, ok := strings.CutPrefix(location, GlobPrefix)
	if !ok {
		res, err := dr.Resolve(location)
		if err != nil {
			return nil, err
		}
		return []Resource{res}, nil
	}

	matches, err := filepath.Glob(filepath.FromSlash(pattern))
	if err != nil {
		return nil, errors.WrapInvalid(err, "DefaultResolver", "ResolveAll", "glob pattern expansion")
	}

	out := make([]Resource, 0, len(matches))
	for _, m := range matches {
		out = append(out, NewFileResource(m))
	}
	return out, nil
}
