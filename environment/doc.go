// Package environment provides profile evaluation and placeholder
// resolution for manifest loading.
//
// Profiles gate whole document subtrees: a manifest (or nested manifest)
// element can declare the profiles it belongs to, and the reader skips
// the subtree unless the Environment accepts at least one of them. A
// profile expression may be negated with a leading "!". When no profile
// has been activated, the reserved "default" profile is considered
// active.
//
// Placeholder expressions of the form ${key} or ${key:fallback} are
// resolved against an ordered list of property sources (OS environment
// variables by default). ResolveRequiredPlaceholders fails on an
// unresolved key without a fallback; the reader lets that failure
// propagate rather than reporting it as an element-scoped problem.
package environment
