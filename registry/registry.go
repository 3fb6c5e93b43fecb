package registry

import (
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"github.com/c360/manifest/errors"
)

// Definition describes a named component: its kind, classification
// metadata, string properties, and an optional raw JSON config payload.
// The loading pipeline creates definitions; it never mutates them after
// registration.
type Definition struct {
	Kind       string            `json:"kind"`                 // "input", "processor", "output", "storage"
	Domain     string            `json:"domain,omitempty"`     // Business domain (network, semantic, storage)
	Version    string            `json:"version,omitempty"`    // Component version
	Lazy       bool              `json:"lazy,omitempty"`       // Defer instantiation until first use
	Properties map[string]string `json:"properties,omitempty"` // Flat string properties
	RawConfig  json.RawMessage   `json:"config,omitempty"`     // Component-specific JSON payload
	Source     string            `json:"source,omitempty"`     // Location of the defining document
}

// Clone returns a deep copy of the definition.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	copied := *d
	copied.Properties = maps.Clone(d.Properties)
	copied.RawConfig = append(json.RawMessage(nil), d.RawConfig...)
	return &copied
}

// Holder pairs a definition with its registered identity: the canonical
// name plus any aliases declared alongside it.
type Holder struct {
	Name       string
	Aliases    []string
	Definition *Definition
}

// Registry stores named definitions and their aliases. It is safe for
// concurrent use. Conflicting registrations are rejected unless
// override has been enabled.
type Registry struct {
	mu            sync.RWMutex
	definitions   map[string]*Definition
	order         []string          // canonical names in registration order
	aliases       map[string]string // alias -> canonical name
	allowOverride bool
}

// New creates an empty registry with overriding disabled.
func New() *Registry {
	return &Registry{
		definitions: make(map[string]*Definition),
		aliases:     make(map[string]string),
	}
}

// SetAllowOverride controls whether a later registration may replace an
// earlier definition under the same name.
func (r *Registry) SetAllowOverride(allow bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allowOverride = allow
}

// RegisterDefinition stores a definition under the given canonical name.
func (r *Registry) RegisterDefinition(name string, def *Definition) error {
	if name == "" {
		return errors.WrapInvalid(errors.ErrEmptyAttribute, "Registry", "RegisterDefinition", "name validation")
	}
	if def == nil {
		return errors.WrapInvalid(errors.ErrMalformedElement, "Registry", "RegisterDefinition", "definition validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[name]; exists && !r.allowOverride {
		msg := fmt.Errorf("definition %q: %w", name, errors.ErrDefinitionConflict)
		return errors.WrapInvalid(msg, "Registry", "RegisterDefinition", "duplicate name check")
	}
	if canonical, exists := r.aliases[name]; exists {
		msg := fmt.Errorf("name %q is already an alias for %q: %w", name, canonical, errors.ErrDefinitionConflict)
		return errors.WrapInvalid(msg, "Registry", "RegisterDefinition", "alias collision check")
	}

	if _, exists := r.definitions[name]; !exists {
		r.order = append(r.order, name)
	}
	r.definitions[name] = def
	return nil
}

// RegisterAlias records alias as an alternate name for name. Registering
// an alias equal to its target is a no-op that removes any previous
// binding of that alias.
func (r *Registry) RegisterAlias(name, alias string) error {
	if name == "" || alias == "" {
		return errors.WrapInvalid(errors.ErrEmptyAttribute, "Registry", "RegisterAlias", "name validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if alias == name {
		delete(r.aliases, alias)
		return nil
	}

	if existing, exists := r.aliases[alias]; exists {
		if existing == name {
			return nil
		}
		if !r.allowOverride {
			msg := fmt.Errorf("alias %q already bound to %q: %w", alias, existing, errors.ErrAliasConflict)
			return errors.WrapInvalid(msg, "Registry", "RegisterAlias", "duplicate alias check")
		}
	}
	if _, exists := r.definitions[alias]; exists {
		msg := fmt.Errorf("alias %q collides with a definition name: %w", alias, errors.ErrAliasConflict)
		return errors.WrapInvalid(msg, "Registry", "RegisterAlias", "definition collision check")
	}
	if r.canonical(name) == alias {
		msg := fmt.Errorf("alias %q -> %q: %w", alias, name, errors.ErrAliasCycle)
		return errors.WrapInvalid(msg, "Registry", "RegisterAlias", "cycle check")
	}

	r.aliases[alias] = name
	return nil
}

// RegisterHolder stores the holder's definition under its canonical name
// and then registers each alias. The first error stops the sequence.
func (r *Registry) RegisterHolder(h *Holder) error {
	if h == nil {
		return errors.WrapInvalid(errors.ErrMalformedElement, "Registry", "RegisterHolder", "holder validation")
	}
	if err := r.RegisterDefinition(h.Name, h.Definition); err != nil {
		return err
	}
	for _, alias := range h.Aliases {
		if err := r.RegisterAlias(h.Name, alias); err != nil {
			return err
		}
	}
	return nil
}

// Definition returns the definition registered under name, resolving
// aliases to their canonical name first.
func (r *Registry) Definition(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.definitions[r.canonical(name)]
	return def, ok
}

// Contains reports whether name denotes a registered definition,
// directly or through an alias.
func (r *Registry) Contains(name string) bool {
	_, ok := r.Definition(name)
	return ok
}

// Canonical resolves name through the alias map to its canonical
// definition name. Unknown names resolve to themselves.
func (r *Registry) Canonical(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.canonical(name)
}

// canonical follows the alias chain. Callers hold r.mu.
func (r *Registry) canonical(name string) string {
	seen := map[string]bool{}
	for {
		target, ok := r.aliases[name]
		if !ok || seen[name] {
			return name
		}
		seen[name] = true
		name = target
	}
}

// Names returns the canonical definition names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Aliases returns all aliases bound to the given canonical name.
func (r *Registry) Aliases(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for alias, target := range r.aliases {
		if r.canonical(target) == name {
			out = append(out, alias)
		}
	}
	return out
}

// Count returns the number of registered definitions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.definitions)
}
