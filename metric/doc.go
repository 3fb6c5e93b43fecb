// Package metric provides Prometheus instrumentation for manifest loading.
//
// # Overview
//
// The reader increments counters for registered definitions and aliases,
// processed imports, profile-gated subtree skips, and reported problems
// (labelled by error class). Metrics are entirely optional: a context
// without a Metrics value runs uninstrumented.
//
// # Usage
//
//	reg := metric.NewRegistry()
//	ctx := &reader.Context{
//	    Registry:    registry.New(),
//	    Environment: environment.New(),
//	    Metrics:     reg.Metrics(),
//	}
//	// ... load manifests ...
//	http.Handle("/metrics", reg.Handler())
//
// The registry is a dedicated *prometheus.Registry so manifest metrics
// never collide with other instrumentation in the embedding process.
package metric
