package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the loading-pipeline metrics. All counters are
// optional from the reader's point of view: a nil *Metrics disables
// instrumentation entirely.
type Metrics struct {
	// Registration metrics
	DefinitionsRegistered *prometheus.CounterVec
	AliasesRegistered     prometheus.Counter

	// Import metrics
	ImportsProcessed  prometheus.Counter
	ImportedResources prometheus.Counter

	// Traversal metrics
	SubtreesSkipped  prometheus.Counter
	ProblemsReported *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all pipeline metrics
func NewMetrics() *Metrics {
	return &Metrics{
		DefinitionsRegistered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "manifest",
				Subsystem: "registry",
				Name:      "definitions_registered_total",
				Help:      "Total number of component definitions registered",
			},
			[]string{"kind", "domain"},
		),

		AliasesRegistered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "manifest",
				Subsystem: "registry",
				Name:      "aliases_registered_total",
				Help:      "Total number of aliases registered",
			},
		),

		ImportsProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "manifest",
				Subsystem: "imports",
				Name:      "processed_total",
				Help:      "Total number of import elements processed",
			},
		),

		ImportedResources: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "manifest",
				Subsystem: "imports",
				Name:      "resources_total",
				Help:      "Total number of resources concretely resolved for imports",
			},
		),

		SubtreesSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "manifest",
				Subsystem: "reader",
				Name:      "subtrees_skipped_total",
				Help:      "Total number of document subtrees skipped by profile gating",
			},
		),

		ProblemsReported: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "manifest",
				Subsystem: "reader",
				Name:      "problems_reported_total",
				Help:      "Total number of recoverable problems reported during loading",
			},
			[]string{"class"},
		),
	}
}

// collectors returns every metric for bulk registration.
func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.DefinitionsRegistered,
		m.AliasesRegistered,
		m.ImportsProcessed,
		m.ImportedResources,
		m.SubtreesSkipped,
		m.ProblemsReported,
	}
}
