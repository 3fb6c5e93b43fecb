package reader

import (
	"fmt"
	"sync"

	"github.com/c360/manifest/element"
	"github.com/c360/manifest/errors"
	"github.com/c360/manifest/resource"
)

// DefinitionLoader loads definitions from external locations on behalf
// of import elements. Loaded resources are appended to actual so the
// caller can report exactly what was pulled in.
type DefinitionLoader interface {
	// LoadDefinitions resolves a location (possibly a pattern) and
	// loads every resulting resource. It returns the number of
	// definitions registered.
	LoadDefinitions(location string, actual *[]resource.Resource) (int, error)

	// LoadFromResource loads one concrete resource.
	LoadFromResource(res resource.Resource) (int, error)
}

// ManifestLoader parses manifest resources and feeds them through a
// DocumentReader. It implements DefinitionLoader, so documents loaded
// through it can themselves contain import elements; resources
// currently being loaded are tracked to detect circular imports.
type ManifestLoader struct {
	ctx    *Context
	reader *DocumentReader

	mu      sync.Mutex
	loading map[string]bool
}

// NewLoader creates a loader around the given context and wires itself
// in as the context's DefinitionLoader.
func NewLoader(ctx *Context) (*ManifestLoader, error) {
	if err := ctx.validate(); err != nil {
		return nil, err
	}
	l := &ManifestLoader{
		ctx:     ctx,
		reader:  NewDocumentReader(),
		loading: make(map[string]bool),
	}
	ctx.Loader = l
	return l, nil
}

// Load resolves and loads a manifest location, returning the number of
// definitions registered. This is the top-level entry point; imports
// inside loaded documents recurse through the same loader.
func (l *ManifestLoader) Load(location string) (int, error) {
	return l.LoadDefinitions(location, nil)
}

// LoadDefinitions implements DefinitionLoader.
func (l *ManifestLoader) LoadDefinitions(location string, actual *[]resource.Resource) (int, error) {
	resources, err := l.ctx.Resolver.ResolveAll(location)
	if err != nil {
		return 0, errors.WrapInvalid(
			fmt.Errorf("location [%s]: %w: %w", location, errors.ErrImportFailed, err),
			"ManifestLoader", "LoadDefinitions", "location resolution")
	}

	count := 0
	for _, res := range resources {
		n, err := l.LoadFromResource(res)
		if err != nil {
			return count, err
		}
		count += n
		if actual != nil {
			*actual = append(*actual, res)
		}
	}
	return count, nil
}

// LoadFromResource implements DefinitionLoader. The definition count is
// measured as the registry's growth across the read, so nested imports
// are attributed to the outermost call that triggered them.
func (l *ManifestLoader) LoadFromResource(res resource.Resource) (int, error) {
	key := res.Location()
	if !l.beginLoading(key) {
		return 0, errors.WrapInvalid(
			fmt.Errorf("resource [%s]: %w", key, errors.ErrCircularImport),
			"ManifestLoader", "LoadFromResource", "import cycle check")
	}
	defer l.endLoading(key)

	rc, err := res.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	doc, err := element.Parse(rc)
	if err != nil {
		return 0, errors.WrapInvalid(err, "ManifestLoader", "LoadFromResource", "document parsing")
	}

	before := l.ctx.Registry.Count()
	if err := l.reader.RegisterDocument(doc, l.ctx.forResource(res)); err != nil {
		return 0, err
	}
	return l.ctx.Registry.Count() - before, nil
}

// beginLoading marks a resource as in flight; false means it already is.
func (l *ManifestLoader) beginLoading(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loading[key] {
		return false
	}
	l.loading[key] = true
	return true
}

// endLoading clears the in-flight mark.
func (l *ManifestLoader) endLoading(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.loading, key)
}
