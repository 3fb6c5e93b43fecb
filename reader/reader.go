package reader

import (
	"fmt"
	"strings"

	"github.com/c360/manifest/element"
	"github.com/c360/manifest/errors"
	"github.com/c360/manifest/resource"
)

// DocumentReader registers the definitions declared in one manifest
// document. The reader itself holds no traversal state: the context and
// the delegate chain are threaded explicitly through the recursive
// calls, so independent traversals with independent contexts are safe
// to run concurrently.
type DocumentReader struct {
	// PreProcess runs before a scope's children are dispatched.
	// Extension point for custom pre-processing; default is none.
	PreProcess func(root *element.Element)

	// PostProcess runs after a scope's children finished dispatching.
	PostProcess func(root *element.Element)
}

// NewDocumentReader creates a reader with no processing hooks.
func NewDocumentReader() *DocumentReader {
	return &DocumentReader{}
}

// RegisterDocument walks the document and registers every definition,
// alias, and import it declares with the context's collaborators.
//
// The traversal is best-effort per element: recoverable problems go to
// the context's reporter and processing continues with the next
// sibling. The returned error is non-nil only for propagating failures:
// an invalid context (fatal) or an unresolved required placeholder in
// an import location, which aborts the remaining siblings of the
// enclosing scope.
func (r *DocumentReader) RegisterDocument(doc *element.Document, ctx *Context) error {
	if err := ctx.validate(); err != nil {
		return err
	}
	if doc == nil || doc.Root == nil {
		return nil
	}
	return r.processScope(ctx, doc.Root, nil)
}

// processScope handles one nesting level: build the scope's delegate,
// apply profile gating, then dispatch the children between the two
// processing hooks. The parent delegate is passed down rather than
// saved and restored through shared state, so an early return can never
// leave a stale delegate behind.
func (r *DocumentReader) processScope(ctx *Context, root *element.Element, parent *Delegate) error {
	delegate := newDelegate(ctx, root, parent)

	if delegate.IsDefaultNamespace(root) {
		profileSpec := root.Attr(ProfileAttribute)
		if strings.TrimSpace(profileSpec) != "" {
			profiles := tokenize(profileSpec)
			if len(profiles) == 0 {
				ctx.problem(fmt.Sprintf("profile attribute [%s] contains no usable profiles", profileSpec),
					root, errors.ErrProfileUnusable)
				return nil
			}
			if !ctx.Environment.AcceptsProfiles(profiles...) {
				ctx.Logger.Debug("skipped manifest subtree, profiles not matching",
					"profiles", profileSpec, "source", ctx.extractSource(root))
				if ctx.Metrics != nil {
					ctx.Metrics.SubtreesSkipped.Inc()
				}
				return nil
			}
		}
	}

	ctx.fireDefaultsRegistered(delegate.Defaults(), root)

	if r.PreProcess != nil {
		r.PreProcess(root)
	}
	if err := r.dispatchChildren(ctx, root, delegate); err != nil {
		return err
	}
	if r.PostProcess != nil {
		r.PostProcess(root)
	}
	return nil
}

// dispatchChildren routes each direct child element. Children in the
// default namespace go through recognized-kind dispatch; everything
// else goes to the custom element handler. A non-default-namespace
// scope element is handed over whole, without descending.
func (r *DocumentReader) dispatchChildren(ctx *Context, root *element.Element, delegate *Delegate) error {
	if !delegate.IsDefaultNamespace(root) {
		delegate.ParseCustomElement(root)
		return nil
	}

	for _, child := range root.ChildElements() {
		if !delegate.IsDefaultNamespace(child) {
			delegate.ParseCustomElement(child)
			continue
		}
		if err := r.dispatchDefault(ctx, child, delegate); err != nil {
			return err
		}
	}
	return nil
}

// dispatchDefault routes one recognized default-namespace element.
// Unrecognized names are silently ignored.
func (r *DocumentReader) dispatchDefault(ctx *Context, el *element.Element, delegate *Delegate) error {
	switch KindOf(el) {
	case KindImport:
		return r.importDefinitions(ctx, el)
	case KindAlias:
		r.registerAlias(ctx, el)
	case KindComponent:
		r.registerComponent(ctx, el, delegate)
	case KindManifest:
		return r.processScope(ctx, el, delegate)
	}
	return nil
}

// importDefinitions loads the definitions referenced by an import
// element. Loader failures are element-scoped problems; an unresolved
// required placeholder in the location propagates to the caller.
func (r *DocumentReader) importDefinitions(ctx *Context, el *element.Element) error {
	location := el.Attr(ResourceAttribute)
	if strings.TrimSpace(location) == "" {
		ctx.problem("resource location must not be empty", el, nil)
		return nil
	}

	location, err := ctx.Environment.ResolveRequiredPlaceholders(location)
	if err != nil {
		return err
	}

	if ctx.Loader == nil {
		ctx.problem(fmt.Sprintf("no loader available for import [%s]", location), el, nil)
		ctx.fireImportProcessed(location, nil, el)
		return nil
	}

	var actual []resource.Resource

	if resource.IsAbsolute(location) {
		count, err := ctx.Loader.LoadDefinitions(location, &actual)
		if err != nil {
			ctx.problem(fmt.Sprintf("failed to import definitions from URL location [%s]", location), el, err)
		} else {
			ctx.Logger.Debug("imported definitions", "count", count, "location", location)
		}
	} else {
		r.importRelative(ctx, el, location, &actual)
	}

	ctx.fireImportProcessed(location, dedupeResources(actual), el)
	return nil
}

// importRelative resolves a relative import against the current
// document's resource, falling back to a derived absolute location when
// the relative resource does not exist.
func (r *DocumentReader) importRelative(ctx *Context, el *element.Element, location string, actual *[]resource.Resource) {
	if ctx.Resource == nil {
		ctx.problem("failed to resolve current resource location", el, nil)
		return
	}

	relative, err := ctx.Resource.CreateRelative(location)
	if err != nil {
		ctx.problem("failed to resolve current resource location", el, err)
		return
	}

	var count int
	if relative.Exists() {
		count, err = ctx.Loader.LoadFromResource(relative)
		if err == nil {
			*actual = append(*actual, relative)
		}
	} else {
		derived := resource.ApplyRelativePath(ctx.Resource.Location(), location)
		count, err = ctx.Loader.LoadDefinitions(derived, actual)
	}
	if err != nil {
		ctx.problem(fmt.Sprintf("failed to import definitions from relative location [%s]", location), el, err)
		return
	}
	ctx.Logger.Debug("imported definitions", "count", count, "location", location)
}

// registerAlias validates and registers one alias element. Both
// attributes are validated independently; one element can produce two
// problems.
func (r *DocumentReader) registerAlias(ctx *Context, el *element.Element) {
	name := el.Attr(NameAttribute)
	alias := el.Attr(AliasAttribute)

	valid := true
	if strings.TrimSpace(name) == "" {
		ctx.problem("name must not be empty", el, nil)
		valid = false
	}
	if strings.TrimSpace(alias) == "" {
		ctx.problem("alias must not be empty", el, nil)
		valid = false
	}
	if !valid {
		return
	}

	if err := ctx.Registry.RegisterAlias(name, alias); err != nil {
		ctx.problem(fmt.Sprintf("failed to register alias %q for definition %q", alias, name), el, err)
		return
	}
	ctx.fireAliasRegistered(name, alias, el)
}

// registerComponent parses, decorates, and registers one component
// element. A nil parse result means the delegate already reported the
// failure and the element is skipped.
func (r *DocumentReader) registerComponent(ctx *Context, el *element.Element, delegate *Delegate) {
	holder := delegate.ParseComponentElement(el)
	if holder == nil {
		return
	}
	holder = delegate.DecorateIfRequired(el, holder)

	if err := ctx.Registry.RegisterHolder(holder); err != nil {
		ctx.problem(fmt.Sprintf("failed to register definition with name %q", holder.Name), el, err)
		return
	}
	ctx.fireComponentRegistered(holder, el)
}

// dedupeResources drops duplicate resources by location, preserving
// first-seen order.
func dedupeResources(in []resource.Resource) []resource.Resource {
	if len(in) < 2 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, res := range in {
		if seen[res.Location()] {
			continue
		}
		seen[res.Location()] = true
		out = append(out, res)
	}
	return out
}
