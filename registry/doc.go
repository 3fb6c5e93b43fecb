// Package registry stores named component definitions and their aliases.
//
// The registry is the persistence target of manifest loading: the reader
// parses component elements into Definition values and registers them
// here, together with any aliases declared in the document. Conflicting
// registrations are rejected unless overriding is explicitly enabled;
// alias registration additionally rejects bindings that would collide
// with a definition name or create a resolution cycle.
//
// Lookup resolves aliases transparently: Definition("telemetry") finds
// the definition registered as "udp-in" when "telemetry" aliases it.
package registry
