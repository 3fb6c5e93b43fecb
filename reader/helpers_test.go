package reader

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/c360/manifest/element"
	"github.com/c360/manifest/environment"
	"github.com/c360/manifest/registry"
	"github.com/c360/manifest/resource"
)

// mustParse parses a manifest document from inline XML.
func mustParse(t *testing.T, xml string) *element.Document {
	t.Helper()
	doc, err := element.Parse(strings.NewReader(xml))
	require.NoError(t, err)
	return doc
}

// newTestContext builds a context with a fresh registry, environment,
// listener, and collector, all reachable for assertions.
func newTestContext(t *testing.T) (*Context, *recordingListener, *Collector) {
	t.Helper()
	listener := &recordingListener{}
	collector := NewCollector()
	ctx := &Context{
		Registry:    registry.New(),
		Environment: environment.New(),
		Reporter:    collector,
		Listener:    listener,
	}
	require.NoError(t, ctx.validate())
	return ctx, listener, collector
}

// recordingListener captures every fired event in order per type.
type recordingListener struct {
	mu         sync.Mutex
	defaults   []DefaultsEvent
	imports    []ImportEvent
	aliases    []AliasEvent
	components []ComponentEvent
}

func (l *recordingListener) DefaultsRegistered(ev DefaultsEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.defaults = append(l.defaults, ev)
}

func (l *recordingListener) ImportProcessed(ev ImportEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.imports = append(l.imports, ev)
}

func (l *recordingListener) AliasRegistered(ev AliasEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.aliases = append(l.aliases, ev)
}

func (l *recordingListener) ComponentRegistered(ev ComponentEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.components = append(l.components, ev)
}

func (l *recordingListener) total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.defaults) + len(l.imports) + len(l.aliases) + len(l.components)
}

// fakeLoader records DefinitionLoader calls and serves canned results.
type fakeLoader struct {
	// resources returned (appended to actual) per absolute location
	byLocation map[string][]resource.Resource
	// error returned per location
	errByLocation map[string]error

	definitionCalls   []string
	fromResourceCalls []string
	fromResourceErr   error
}

func (f *fakeLoader) LoadDefinitions(location string, actual *[]resource.Resource) (int, error) {
	f.definitionCalls = append(f.definitionCalls, location)
	if err := f.errByLocation[location]; err != nil {
		return 0, err
	}
	res := f.byLocation[location]
	if actual != nil {
		*actual = append(*actual, res...)
	}
	return len(res), nil
}

func (f *fakeLoader) LoadFromResource(res resource.Resource) (int, error) {
	f.fromResourceCalls = append(f.fromResourceCalls, res.Location())
	if f.fromResourceErr != nil {
		return 0, f.fromResourceErr
	}
	return 1, nil
}

// fakeResource is an in-memory resource with scripted relatives.
type fakeResource struct {
	location  string
	exists    bool
	content   string
	relatives map[string]*fakeResource
	createErr error
}

func (r *fakeResource) Exists() bool     { return r.exists }
func (r *fakeResource) Location() string { return r.location }

func (r *fakeResource) Open() (io.ReadCloser, error) {
	if !r.exists {
		return nil, fmt.Errorf("resource [%s] does not exist", r.location)
	}
	return io.NopCloser(bytes.NewReader([]byte(r.content))), nil
}

func (r *fakeResource) CreateRelative(path string) (resource.Resource, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if rel, ok := r.relatives[path]; ok {
		return rel, nil
	}
	return &fakeResource{location: resource.ApplyRelativePath(r.location, path)}, nil
}
