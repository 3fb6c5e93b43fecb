package resource

import (
	"io"
	"net/url"
	"strings"
)

// Resource is one concrete source of manifest content: a locator plus a
// way to open it. Implementations are cheap value-like handles; opening
// is the only operation that performs I/O beyond existence checks.
type Resource interface {
	// Exists reports whether the underlying content can be opened.
	Exists() bool

	// Location returns the fully resolved location string (path or URL).
	Location() string

	// Open returns the content for reading. The caller closes it.
	Open() (io.ReadCloser, error)

	// CreateRelative resolves a path relative to this resource and
	// returns the resulting resource without checking its existence.
	CreateRelative(path string) (Resource, error)
}

// Resolver turns location strings into concrete resources.
type Resolver interface {
	// Resolve yields the single resource a plain location denotes.
	Resolve(location string) (Resource, error)

	// ResolveAll expands pattern locations (glob:) into zero or more
	// resources; plain locations yield exactly one.
	ResolveAll(location string) ([]Resource, error)
}

// GlobPrefix marks a location as a filesystem glob pattern that may
// expand to many resources.
const GlobPrefix = "glob:"

// IsURL reports whether the location carries a recognized scheme prefix
// and therefore denotes an absolute resource location.
func IsURL(location string) bool {
	if location == "" {
		return false
	}
	if strings.HasPrefix(location, GlobPrefix) {
		return true
	}
	for _, scheme := range []string{"file:", "http:", "https:"} {
		if strings.HasPrefix(location, scheme) {
			return true
		}
	}
	return false
}

// IsAbsolute classifies a location as absolute, first by recognized
// scheme, then by URI parsing. Any classification failure means "not
// absolute"; this is a best-effort heuristic and never errors.
func IsAbsolute(location string) bool {
	if IsURL(location) {
		return true
	}
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return u.IsAbs()
}

// ApplyRelativePath combines a base location with a relative path by
// replacing everything after the base's last path separator.
func ApplyRelativePath(base, relative string) string {
	idx := strings.LastIndex(base, "/")
	if idx < 0 {
		return relative
	}
	return base[:idx+1] + strings.TrimPrefix(relative, "/")
}
