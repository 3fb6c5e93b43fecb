// Package resource abstracts where manifest content comes from.
//
// # Overview
//
// A Resource pairs a resolved location string with a content provider.
// File and HTTP(S) implementations are provided; both support relative
// resolution against their own location, which the import machinery in
// the reader package relies on for relative import paths.
//
// A Resolver maps location strings to resources. The default resolver
// recognizes http:, https:, and file: schemes, treats anything else as
// a filesystem path, and expands glob: patterns into many resources:
//
//	resources, err := resolver.ResolveAll("glob:conf.d/*.xml")
//
// # Absolute vs. relative classification
//
// IsAbsolute implements the import classification heuristic: a location
// is absolute when it carries a recognized scheme, or when it parses as
// a URI that reports itself absolute. Classification failures silently
// downgrade to "relative" and never abort an import.
//
// # Retry behavior
//
// HTTP fetches retry transient failures (connection errors, 5xx) with
// exponential backoff; 404 maps to ErrResourceNotFound immediately.
package resource
