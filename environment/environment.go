package environment

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/c360/manifest/errors"
)

// Default placeholder syntax: ${key} with an optional ${key:fallback} form.
const (
	placeholderPrefix = "${"
	placeholderSuffix = "}"
	valueSeparator    = ":"
)

// ReservedDefaultProfile is the profile considered active when no
// profiles have been activated explicitly.
const ReservedDefaultProfile = "default"

// PropertySource supplies values for placeholder resolution. Sources are
// consulted in registration order; the first hit wins.
type PropertySource interface {
	Name() string
	Value(key string) (string, bool)
}

// MapSource is a PropertySource backed by an in-memory map.
type MapSource struct {
	name   string
	values map[string]string
}

// NewMapSource creates a map-backed property source.
func NewMapSource(name string, values map[string]string) *MapSource {
	return &MapSource{name: name, values: values}
}

// Name returns the source name.
func (s *MapSource) Name() string { return s.name }

// Value returns the value for key, if present.
func (s *MapSource) Value(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// OSSource resolves placeholder keys against process environment variables.
type OSSource struct{}

// Name returns the source name.
func (OSSource) Name() string { return "os-environment" }

// Value returns the environment variable value for key, if set.
func (OSSource) Value(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Environment decides profile inclusion and resolves placeholder
// expressions in configuration strings. It is safe for concurrent use.
type Environment struct {
	mu              sync.RWMutex
	activeProfiles  []string
	defaultProfiles []string
	sources         []PropertySource
}

// New creates an Environment with no active profiles, the reserved
// "default" profile as fallback, and OS environment variables as the
// only property source.
func New() *Environment {
	return &Environment{
		defaultProfiles: []string{ReservedDefaultProfile},
		sources:         []PropertySource{OSSource{}},
	}
}

// SetActiveProfiles replaces the set of active profiles.
func (e *Environment) SetActiveProfiles(profiles ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activeProfiles = append([]string(nil), profiles...)
}

// SetDefaultProfiles replaces the profiles considered active when no
// profile has been activated explicitly.
func (e *Environment) SetDefaultProfiles(profiles ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaultProfiles = append([]string(nil), profiles...)
}

// ActiveProfiles returns a copy of the currently active profiles.
func (e *Environment) ActiveProfiles() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.activeProfiles...)
}

// AddSource appends a property source. Sources registered earlier take
// precedence during placeholder resolution.
func (e *Environment) AddSource(src PropertySource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sources = append(e.sources, src)
}

// PrependSource inserts a property source ahead of all existing ones.
func (e *Environment) PrependSource(src PropertySource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sources = append([]PropertySource{src}, e.sources...)
}

// AcceptsProfiles reports whether at least one of the given profile
// expressions matches the current state. A leading "!" negates a
// profile. An empty list is vacuously accepted.
func (e *Environment) AcceptsProfiles(profiles ...string) bool {
	if len(profiles) == 0 {
		return true
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, p := range profiles {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if negated, ok := strings.CutPrefix(p, "!"); ok {
			if !e.isActive(negated) {
				return true
			}
			continue
		}
		if e.isActive(p) {
			return true
		}
	}
	return false
}

// isActive checks a single profile against active profiles, falling back
// to default profiles when nothing has been activated. Callers hold e.mu.
func (e *Environment) isActive(profile string) bool {
	candidates := e.activeProfiles
	if len(candidates) == 0 {
		candidates = e.defaultProfiles
	}
	for _, p := range candidates {
		if p == profile {
			return true
		}
	}
	return false
}

// lookup consults the property sources in order. Callers hold e.mu.
func (e *Environment) lookup(key string) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src.Value(key); ok {
			return v, true
		}
	}
	return "", false
}

// ResolvePlaceholders replaces ${key} expressions in text with values
// from the property sources. Unresolvable placeholders without a
// fallback are left in place.
func (e *Environment) ResolvePlaceholders(text string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	resolved, _ := e.resolve(text, false, nil)
	return resolved
}

// ResolveRequiredPlaceholders replaces ${key} expressions in text,
// returning an error for any placeholder that cannot be resolved and
// carries no fallback value.
func (e *Environment) ResolveRequiredPlaceholders(text string) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.resolve(text, true, nil)
}

// resolve walks text left to right, substituting placeholders. Nested
// expressions resolve innermost first; visited guards against circular
// key references. Callers hold e.mu.
func (e *Environment) resolve(text string, required bool, visited map[string]bool) (string, error) {
	var b strings.Builder
	rest := text

	for {
		start := strings.Index(rest, placeholderPrefix)
		if start < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		b.WriteString(rest[:start])
		rest = rest[start:]

		end := matchingSuffix(rest)
		if end < 0 {
			// Unterminated expression, treat literally
			b.WriteString(rest)
			return b.String(), nil
		}

		inner := rest[len(placeholderPrefix):end]
		rest = rest[end+len(placeholderSuffix):]

		// Resolve placeholders inside the key itself first
		inner, err := e.resolve(inner, required, visited)
		if err != nil {
			return "", err
		}

		key := inner
		fallback := ""
		hasFallback := false
		if idx := strings.Index(inner, valueSeparator); idx >= 0 {
			key = inner[:idx]
			fallback = inner[idx+len(valueSeparator):]
			hasFallback = true
		}

		if visited[key] {
			if !required {
				b.WriteString(placeholderPrefix + inner + placeholderSuffix)
				continue
			}
			return "", errors.WrapInvalid(
				fmt.Errorf("circular reference for key %q: %w", key, errors.ErrPlaceholderUnresolved),
				"Environment", "resolve", "placeholder resolution")
		}

		value, ok := e.lookup(key)
		switch {
		case ok:
			if visited == nil {
				visited = make(map[string]bool)
			}
			visited[key] = true
			resolvedValue, err := e.resolve(value, required, visited)
			delete(visited, key)
			if err != nil {
				return "", err
			}
			b.WriteString(resolvedValue)
		case hasFallback:
			b.WriteString(fallback)
		case required:
			return "", errors.WrapInvalid(
				fmt.Errorf("could not resolve placeholder %q: %w", key, errors.ErrPlaceholderUnresolved),
				"Environment", "resolve", "placeholder resolution")
		default:
			b.WriteString(placeholderPrefix + inner + placeholderSuffix)
		}
	}
}

// matchingSuffix returns the index of the "}" closing the placeholder
// that rest starts with, accounting for nested expressions, or -1.
func matchingSuffix(rest string) int {
	depth := 0
	for i := 0; i < len(rest); i++ {
		if strings.HasPrefix(rest[i:], placeholderPrefix) {
			depth++
			i++
			continue
		}
		if rest[i] == '}' {
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
