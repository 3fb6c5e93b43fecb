package reader

import (
	"strings"

	"github.com/c360/manifest/element"
)

// DefaultNamespace is the namespace URI of the manifest schema. Elements
// with this namespace, or with no namespace at all, are handled by the
// reader itself; everything else goes to the custom element handler.
const DefaultNamespace = "https://c360.io/schema/manifest"

// Recognized default-namespace element and attribute names.
const (
	ManifestElement  = "manifest"
	ImportElement    = "import"
	AliasElement     = "alias"
	ComponentElement = "component"
	PropertyElement  = "property"
	ConfigElement    = "config"

	NameAttribute     = "name"
	AliasAttribute    = "alias"
	ResourceAttribute = "resource"
	ProfileAttribute  = "profile"
	KindAttribute     = "kind"
	DomainAttribute   = "domain"
	VersionAttribute  = "version"
	LazyAttribute     = "lazy"
	ValueAttribute    = "value"

	DefaultDomainAttribute  = "default-domain"
	DefaultVersionAttribute = "default-version"
	DefaultLazyAttribute    = "default-lazy"
)

// DefaultValue marks an attribute as "inherit from the enclosing scope".
const DefaultValue = "default"

// MultiValueDelimiters separates tokens in multi-valued attributes such
// as profile and name.
const MultiValueDelimiters = ",; \t\n\r\f"

// ElementKind identifies the recognized default-namespace elements. The
// kind is resolved once per element so dispatch does not re-compare
// name strings.
type ElementKind int

const (
	// KindUnknown is any unrecognized default-namespace element.
	KindUnknown ElementKind = iota
	// KindManifest is a nested manifest element, processed recursively.
	KindManifest
	// KindImport pulls definitions in from another document.
	KindImport
	// KindAlias registers an alternate name for a definition.
	KindAlias
	// KindComponent declares a component definition.
	KindComponent
)

// String returns the element name the kind corresponds to.
func (k ElementKind) String() string {
	switch k {
	case KindManifest:
		return ManifestElement
	case KindImport:
		return ImportElement
	case KindAlias:
		return AliasElement
	case KindComponent:
		return ComponentElement
	default:
		return "unknown"
	}
}

// KindOf resolves an element's dispatch kind from its local name.
func KindOf(el *element.Element) ElementKind {
	switch el.Name {
	case ManifestElement:
		return KindManifest
	case ImportElement:
		return KindImport
	case AliasElement:
		return KindAlias
	case ComponentElement:
		return KindComponent
	default:
		return KindUnknown
	}
}

// tokenize splits a multi-valued attribute on the delimiter set,
// trimming each token and dropping empties.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(MultiValueDelimiters, r)
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
