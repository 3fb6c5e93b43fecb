// Package reader turns parsed manifest documents into registry state.
//
// # Overview
//
// A manifest document is a hierarchy of elements in the default
// namespace: nested manifest scopes, imports, aliases, and component
// definitions, plus arbitrary custom-namespace elements handed to a
// pluggable handler. The DocumentReader walks one document and drives
// the collaborators bundled in a Context: the registry receives
// definitions and aliases, the environment gates profiles and resolves
// placeholders, the loader pulls in imported documents, and listeners
// and reporters observe what happened.
//
// # Traversal model
//
// Each nesting level gets its own Delegate, chained to the delegate of
// the enclosing scope. Inheritable defaults (default-domain,
// default-version, default-lazy) resolve through that chain: an absent
// attribute, or the sentinel value "default", falls back to the parent
// scope. The chain is threaded through the recursive calls rather than
// held in mutable reader state, so leaving a scope (normally or via an
// early return) can never corrupt the enclosing scope's defaults.
//
// Profile gating happens at scope entry. A scope whose profile
// attribute matches none of the environment's accepted profiles is
// skipped whole: no events fire and no state changes for anything
// beneath it.
//
// # Error model
//
// The traversal is best-effort per element. Recoverable conditions
// (a nameless alias, a failed import fetch, a rejected config payload)
// become Problems sent to the context's reporter, and processing
// continues with the next sibling. Only two failures propagate as
// returned errors: an invalid context, and an unresolved required
// placeholder in an import location, which aborts the remaining
// siblings of the enclosing scope.
//
// # Loading
//
// ManifestLoader resolves locations to resources, parses them, and
// feeds them through a DocumentReader. It registers itself as the
// context's DefinitionLoader, so imports recurse through it; resources
// currently in flight are tracked to reject circular imports.
//
// # Usage
//
//	ctx := &reader.Context{
//	    Registry:    registry.New(),
//	    Environment: environment.New(),
//	}
//	loader, err := reader.NewLoader(ctx)
//	if err != nil {
//	    return err
//	}
//	count, err := loader.Load("file:manifests/base.xml")
package reader
