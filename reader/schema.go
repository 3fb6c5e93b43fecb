package reader

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/manifest/errors"
)

// SchemaRegistry holds compiled JSON schemas keyed by component kind.
// When a kind has a schema, the delegate validates the component's
// inline config payload against it before registration.
type SchemaRegistry struct {
	mu      sync.RWMutex
	schemas map[string]*gojsonschema.Schema
}

// NewSchemaRegistry creates an empty schema registry.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{schemas: make(map[string]*gojsonschema.Schema)}
}

// Register compiles and stores a schema for the given kind, replacing
// any previous one.
func (s *SchemaRegistry) Register(kind string, schemaJSON []byte) error {
	if kind == "" {
		return errors.WrapInvalid(errors.ErrEmptyAttribute, "SchemaRegistry", "Register", "kind validation")
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return errors.WrapInvalid(err, "SchemaRegistry", "Register", "schema compilation")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[kind] = schema
	return nil
}

// Validate checks a config payload against the schema registered for
// kind. Kinds without a schema pass unconditionally.
func (s *SchemaRegistry) Validate(kind string, payload []byte) error {
	s.mu.RLock()
	schema, ok := s.schemas[kind]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return errors.WrapInvalid(err, "SchemaRegistry", "Validate", "payload parsing")
	}
	if !result.Valid() {
		var b strings.Builder
		for i, desc := range result.Errors() {
			if i > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "%s: %s", desc.Field(), desc.Description())
		}
		return errors.WrapInvalid(
			fmt.Errorf("%s: %w", b.String(), errors.ErrMalformedElement),
			"SchemaRegistry", "Validate", "schema validation")
	}
	return nil
}
