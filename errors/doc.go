// Package errors provides standardized error handling patterns for manifest loading.
//
// # Overview
//
// The package implements a three-class error classification system:
// Transient (temporary and retryable, such as loader I/O), Invalid (bad
// input, not retryable: attribute validation, registry conflicts,
// unresolved placeholders), and Fatal (unrecoverable API contract
// violations such as a reader invoked without its context).
//
// Classification drives the loading pipeline's error policy: element-scoped
// Invalid problems are reported and processing continues with the next
// sibling, Transient loader failures may be retried by the resource layer,
// and Fatal errors abort the whole load.
//
// # Error Wrapping Pattern
//
// All wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Loader", "Load", "resource fetch")
//	errors.WrapInvalid(err, "Delegate", "ParseComponentElement", "kind validation")
//	errors.WrapFatal(err, "DocumentReader", "RegisterDocument", "context validation")
//
// The generic Wrap() preserves the original error's classification through
// the chain; errors.Is and errors.As work across all wrappers.
//
// # Standard Error Variables
//
// Pre-defined variables cover the recurring conditions of declarative
// loading, organized by category:
//
//   - Attribute validation: ErrEmptyAttribute, ErrProfileUnusable, ErrMalformedElement
//   - Imports: ErrImportFailed, ErrResourceNotFound, ErrCircularImport, ErrPlaceholderUnresolved
//   - Registry: ErrDefinitionConflict, ErrAliasConflict, ErrAliasCycle
//   - Contract violations: ErrNoReaderContext, ErrNilRegistry, ErrNilEnvironment
//
// # Retry Integration
//
// RetryConfig bridges classification into the retry package:
//
//	cfg := errors.DefaultRetryConfig()
//	err := retry.Do(ctx, cfg.ToRetryConfig(), fetch)
//
// Only errors classified Transient should be passed back into a retry
// loop; ShouldRetry encapsulates that decision.
package errors
