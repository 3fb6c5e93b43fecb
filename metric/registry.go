package metric

import (
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/manifest/errors"
)

// Registry couples the pipeline metrics to a dedicated Prometheus
// registry, keeping manifest metrics isolated from any other registries
// the embedding process maintains.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	metrics            *Metrics
}

// NewRegistry creates a registry with the core pipeline metrics and Go
// runtime collectors pre-registered.
func NewRegistry() *Registry {
	r := &Registry{
		prometheusRegistry: prometheus.NewRegistry(),
		metrics:            NewMetrics(),
	}

	r.prometheusRegistry.MustRegister(r.metrics.collectors()...)
	r.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// Metrics returns the core pipeline metrics.
func (r *Registry) Metrics() *Metrics {
	return r.metrics
}

// Register adds an extra collector, tolerating duplicates.
func (r *Registry) Register(c prometheus.Collector) error {
	if err := r.prometheusRegistry.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if stderrors.As(err, &already) {
			return nil
		}
		return errors.WrapInvalid(err, "Registry", "Register", "collector registration")
	}
	return nil
}
