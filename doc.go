// Package manifest provides declarative component-definition loading for
// component-based systems.
//
// # Overview
//
// A manifest is an XML document describing the components a system
// should assemble: their kinds, domains, versions, configuration
// payloads, and alternate names. Manifests nest, import one another,
// and gate whole subtrees on deployment profiles, so one document tree
// can describe every environment a system runs in.
//
// The module is organized as a small pipeline:
//
//	┌─────────────────────────────────────┐
//	│          ManifestLoader             │  Location resolution,
//	│   (load, resolve, detect cycles)    │  recursive imports
//	└─────────────────────────────────────┘
//	           ↓ parses via
//	┌─────────────────────────────────────┐
//	│         DocumentReader              │  Scope traversal, profile
//	│  (dispatch, delegate chain, events) │  gating, default inheritance
//	└─────────────────────────────────────┘
//	           ↓ populates
//	┌─────────────────────────────────────┐
//	│            Registry                 │  Definitions, aliases,
//	│   (definitions, aliases, lookup)    │  registration order
//	└─────────────────────────────────────┘
//
// # Packages
//
//   - element: lightweight XML element tree and parser
//   - environment: profiles and ${key} placeholder resolution
//   - resource: file, HTTP, and glob resource resolution
//   - registry: definition and alias storage
//   - reader: document traversal, delegates, loading
//   - metric: Prometheus instrumentation
//   - natsink: NATS publication of loading events
//   - errors: classified error taxonomy (transient, invalid, fatal)
//
// # Quick Start
//
//	ctx := &reader.Context{
//	    Registry:    registry.New(),
//	    Environment: environment.New(),
//	}
//	ctx.Environment.SetActiveProfiles("prod")
//
//	loader, err := reader.NewLoader(ctx)
//	if err != nil {
//	    return err
//	}
//	count, err := loader.Load("manifests/base.xml")
//
// The cmd/manifest-lint tool wraps the same pipeline for CI use.
package manifest
