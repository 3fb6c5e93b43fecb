package reader

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/c360/manifest/element"
	"github.com/c360/manifest/errors"
	"github.com/c360/manifest/registry"
)

// Defaults holds the inheritable default attribute values of one
// manifest scope. Unset fields fall back to the enclosing scope through
// the delegate's parent chain.
type Defaults struct {
	Domain  string `json:"domain,omitempty"`
	Version string `json:"version,omitempty"`
	Lazy    string `json:"lazy,omitempty"` // "true" or "false"
}

// CustomElementHandler parses elements outside the default namespace and
// optionally decorates parsed definitions based on custom-namespace
// attributes or children. It is opaque to the core traversal.
type CustomElementHandler interface {
	// ParseCustomElement handles a non-default-namespace element. The
	// handler reports its own problems through the delegate's context.
	ParseCustomElement(el *element.Element, d *Delegate)

	// DecorateDefinition may wrap or enrich a parsed definition. It
	// returns the holder to register, never nil.
	DecorateDefinition(el *element.Element, h *registry.Holder, d *Delegate) *registry.Holder
}

// Delegate is the per-scope parsing helper. One delegate exists per
// nesting level of the document; it chains to the delegate of the
// enclosing scope for default-attribute fallback. Delegates are created
// at scope entry and discarded when the scope's children finish.
type Delegate struct {
	ctx      *Context
	parent   *Delegate
	defaults Defaults
}

// newDelegate creates the delegate for a scope rooted at el, inheriting
// unset defaults through parent (which may be nil at the document root).
func newDelegate(ctx *Context, el *element.Element, parent *Delegate) *Delegate {
	d := &Delegate{ctx: ctx, parent: parent}
	d.initDefaults(el)
	return d
}

// initDefaults populates the scope defaults from the element, falling
// back to the parent chain for attributes that are absent or carry the
// "default" sentinel value.
func (d *Delegate) initDefaults(el *element.Element) {
	d.defaults.Domain = d.inheritable(el, DefaultDomainAttribute, func(p *Delegate) string { return p.defaults.Domain })
	d.defaults.Version = d.inheritable(el, DefaultVersionAttribute, func(p *Delegate) string { return p.defaults.Version })
	d.defaults.Lazy = d.inheritable(el, DefaultLazyAttribute, func(p *Delegate) string { return p.defaults.Lazy })
	if d.defaults.Lazy == "" {
		d.defaults.Lazy = "false"
	}
}

// inheritable reads one default attribute, deferring to the parent scope
// when it is absent or set to the "default" sentinel.
func (d *Delegate) inheritable(el *element.Element, attr string, fromParent func(*Delegate) string) string {
	v := el.Attr(attr)
	if (v == "" || v == DefaultValue) && d.parent != nil {
		return fromParent(d.parent)
	}
	if v == DefaultValue {
		return ""
	}
	return v
}

// Defaults returns the defaults in effect for this scope.
func (d *Delegate) Defaults() Defaults {
	return d.defaults
}

// Parent returns the enclosing scope's delegate, or nil at the root.
func (d *Delegate) Parent() *Delegate {
	return d.parent
}

// IsDefaultNamespace reports whether the element belongs to the manifest
// schema. Elements without any namespace count as default.
func (d *Delegate) IsDefaultNamespace(el *element.Element) bool {
	return el.Space == "" || el.Space == DefaultNamespace
}

// ParseCustomElement hands a non-default-namespace element to the
// configured handler. Without a handler the element is reported as a
// problem and skipped.
func (d *Delegate) ParseCustomElement(el *element.Element) {
	if d.ctx.Custom == nil {
		d.ctx.problem(
			fmt.Sprintf("no handler for custom element [%s] in namespace [%s]", el.Name, el.Space),
			el, errors.ErrMalformedElement)
		return
	}
	d.ctx.Custom.ParseCustomElement(el, d)
}

// DecorateIfRequired gives the custom handler a chance to enrich a
// parsed definition based on custom-namespace content.
func (d *Delegate) DecorateIfRequired(el *element.Element, h *registry.Holder) *registry.Holder {
	if d.ctx.Custom == nil {
		return h
	}
	if decorated := d.ctx.Custom.DecorateDefinition(el, h, d); decorated != nil {
		return decorated
	}
	return h
}

// ParseComponentElement parses a component element into a definition
// plus identity. Recoverable parse failures are reported here and
// signalled by a nil return; the caller takes no further action for the
// element in that case.
func (d *Delegate) ParseComponentElement(el *element.Element) *registry.Holder {
	kind := el.Attr(KindAttribute)
	if kind == "" {
		d.ctx.problem("kind attribute must not be empty", el, errors.ErrEmptyAttribute)
		return nil
	}

	name, aliases := d.parseIdentity(el, kind)

	def := &registry.Definition{
		Kind:    kind,
		Domain:  d.attrOrDefault(el, DomainAttribute, d.defaults.Domain),
		Version: d.attrOrDefault(el, VersionAttribute, d.defaults.Version),
		Lazy:    d.attrOrDefault(el, LazyAttribute, d.defaults.Lazy) == "true",
	}
	if d.ctx.Resource != nil {
		def.Source = d.ctx.Resource.Location()
	}

	if !d.parseProperties(el, def) {
		return nil
	}
	if !d.parseConfig(el, def) {
		return nil
	}

	return &registry.Holder{Name: name, Aliases: aliases, Definition: def}
}

// parseIdentity splits the multi-valued name attribute into a canonical
// name plus aliases, generating a name when none was declared.
func (d *Delegate) parseIdentity(el *element.Element, kind string) (string, []string) {
	tokens := tokenize(el.Attr(NameAttribute))
	if len(tokens) == 0 {
		generated := kind + "#" + uuid.NewString()[:8]
		d.ctx.Logger.Debug("generated definition name", "name", generated)
		return generated, nil
	}
	return tokens[0], tokens[1:]
}

// attrOrDefault reads an attribute, substituting the scope default when
// absent and resolving placeholder expressions best-effort.
func (d *Delegate) attrOrDefault(el *element.Element, attr, fallback string) string {
	v := el.Attr(attr)
	if v == "" || v == DefaultValue {
		v = fallback
	}
	return d.ctx.Environment.ResolvePlaceholders(v)
}

// parseProperties collects property child elements. A property may
// carry its value in a value attribute or as element text. Reports and
// fails on a nameless or duplicated property.
func (d *Delegate) parseProperties(el *element.Element, def *registry.Definition) bool {
	for _, child := range el.ChildElements() {
		if !d.IsDefaultNamespace(child) || child.Name != PropertyElement {
			continue
		}
		name := child.Attr(NameAttribute)
		if name == "" {
			d.ctx.problem("property name must not be empty", child, errors.ErrEmptyAttribute)
			return false
		}
		if _, dup := def.Properties[name]; dup {
			d.ctx.problem(fmt.Sprintf("duplicate property %q", name), child, errors.ErrMalformedElement)
			return false
		}
		value := child.Attr(ValueAttribute)
		if !child.HasAttr(ValueAttribute) {
			value = child.Text()
		}
		if def.Properties == nil {
			def.Properties = make(map[string]string)
		}
		def.Properties[name] = d.ctx.Environment.ResolvePlaceholders(value)
	}
	return true
}

// parseConfig captures the inline JSON config payload, validating it
// against the registered schema for the definition's kind when one
// exists.
func (d *Delegate) parseConfig(el *element.Element, def *registry.Definition) bool {
	payload := el.ChildText(ConfigElement)
	if payload == "" {
		return true
	}
	resolved := d.ctx.Environment.ResolvePlaceholders(payload)
	if d.ctx.Schemas != nil {
		if err := d.ctx.Schemas.Validate(def.Kind, []byte(resolved)); err != nil {
			d.ctx.problem(fmt.Sprintf("config payload rejected for kind %q", def.Kind), el, err)
			return false
		}
	}
	def.RawConfig = []byte(resolved)
	return true
}
