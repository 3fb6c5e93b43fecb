package reader

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/c360/manifest/element"
	"github.com/c360/manifest/environment"
	"github.com/c360/manifest/errors"
	"github.com/c360/manifest/metric"
	"github.com/c360/manifest/registry"
	"github.com/c360/manifest/resource"
)

// Source identifies where in a document an event or problem originated.
type Source struct {
	Location string `json:"location,omitempty"` // resolved location of the document
	Line     int    `json:"line,omitempty"`     // element line within the document
}

// DefaultsEvent reports the inheritable defaults in effect for a scope.
type DefaultsEvent struct {
	Defaults Defaults `json:"defaults"`
	Source   Source   `json:"source"`
}

// ImportEvent reports a processed import element, including every
// resource that was concretely resolved for it (possibly none).
type ImportEvent struct {
	Location  string              `json:"location"`
	Resources []resource.Resource `json:"-"`
	Source    Source              `json:"source"`
}

// AliasEvent reports a successfully registered alias.
type AliasEvent struct {
	Name   string `json:"name"`
	Alias  string `json:"alias"`
	Source Source `json:"source"`
}

// ComponentEvent reports a successfully registered component definition.
type ComponentEvent struct {
	Holder *registry.Holder `json:"holder"`
	Source Source           `json:"source"`
}

// EventListener receives fire-and-forget notifications during loading.
// Implementations must not block; they are invoked synchronously on the
// traversal path.
type EventListener interface {
	DefaultsRegistered(ev DefaultsEvent)
	ImportProcessed(ev ImportEvent)
	AliasRegistered(ev AliasEvent)
	ComponentRegistered(ev ComponentEvent)
}

// NopListener discards all events.
type NopListener struct{}

// DefaultsRegistered implements EventListener.
func (NopListener) DefaultsRegistered(DefaultsEvent) {}

// ImportProcessed implements EventListener.
func (NopListener) ImportProcessed(ImportEvent) {}

// AliasRegistered implements EventListener.
func (NopListener) AliasRegistered(AliasEvent) {}

// ComponentRegistered implements EventListener.
func (NopListener) ComponentRegistered(ComponentEvent) {}

// Problem is one recoverable condition encountered during loading.
type Problem struct {
	Message string
	Source  Source
	Cause   error
}

// Error renders the problem with its source position.
func (p Problem) Error() string {
	msg := p.Message
	if p.Source.Location != "" {
		msg = fmt.Sprintf("%s (%s:%d)", msg, p.Source.Location, p.Source.Line)
	} else if p.Source.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, p.Source.Line)
	}
	if p.Cause != nil {
		msg += ": " + p.Cause.Error()
	}
	return msg
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (p Problem) Unwrap() error { return p.Cause }

// ProblemReporter accepts recoverable problems. The traversal reports
// and continues; the caller decides whether accumulated problems
// constitute an overall failure.
type ProblemReporter interface {
	Report(p Problem)
}

// Collector is a ProblemReporter that accumulates problems in order.
// It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	problems []Problem
}

// NewCollector creates an empty problem collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report implements ProblemReporter.
func (c *Collector) Report(p Problem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.problems = append(c.problems, p)
}

// Problems returns the accumulated problems in report order.
func (c *Collector) Problems() []Problem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Problem(nil), c.problems...)
}

// Err joins all accumulated problems into a single invalid-class error,
// or returns nil when none were reported.
func (c *Collector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.problems) == 0 {
		return nil
	}
	joined := make([]error, len(c.problems))
	for i, p := range c.problems {
		joined[i] = p
	}
	return errors.WrapInvalid(stderrors.Join(joined...), "Collector", "Err", "manifest loading")
}

// Context bundles the collaborators one document traversal needs. The
// reader threads it explicitly through recursive calls; independent
// traversals with independent contexts may run concurrently.
type Context struct {
	// Registry receives definitions and aliases. Required.
	Registry *registry.Registry

	// Environment gates profiles and resolves placeholders. Required.
	Environment *environment.Environment

	// Resolver maps location strings to resources. Defaults to the
	// resource package's standard resolver.
	Resolver resource.Resolver

	// Loader loads imported documents. Required for documents that
	// contain import elements; a loader created with NewLoader wires
	// itself in.
	Loader DefinitionLoader

	// Reporter receives recoverable problems. Defaults to a Collector
	// reachable only through the context it was defaulted into.
	Reporter ProblemReporter

	// Listener receives loading events. Defaults to NopListener.
	Listener EventListener

	// Custom handles elements outside the default namespace. Optional.
	Custom CustomElementHandler

	// Schemas validates component config payloads by kind. Optional.
	Schemas *SchemaRegistry

	// Metrics counts registrations, imports, and problems. Optional.
	Metrics *metric.Metrics

	// Logger receives traversal diagnostics. Defaults to slog.Default.
	Logger *slog.Logger

	// Resource is the document source being read, if any. Relative
	// imports resolve against it.
	Resource resource.Resource
}

// validate checks the required collaborators and fills in defaults.
// Missing required collaborators are contract violations by the driving
// code and classified fatal.
func (c *Context) validate() error {
	if c == nil {
		return errors.WrapFatal(errors.ErrNoReaderContext, "DocumentReader", "RegisterDocument", "context validation")
	}
	if c.Registry == nil {
		return errors.WrapFatal(errors.ErrNilRegistry, "DocumentReader", "RegisterDocument", "context validation")
	}
	if c.Environment == nil {
		return errors.WrapFatal(errors.ErrNilEnvironment, "DocumentReader", "RegisterDocument", "context validation")
	}
	if c.Resolver == nil {
		c.Resolver = resource.NewResolver()
	}
	if c.Reporter == nil {
		c.Reporter = NewCollector()
	}
	if c.Listener == nil {
		c.Listener = NopListener{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// forResource derives a child context for reading an imported document.
// Collaborators are shared; only the subject resource differs.
func (c *Context) forResource(res resource.Resource) *Context {
	child := *c
	child.Resource = res
	return &child
}

// extractSource builds source metadata for an element in this context's
// document.
func (c *Context) extractSource(el *element.Element) Source {
	src := Source{}
	if c.Resource != nil {
		src.Location = c.Resource.Location()
	}
	if el != nil {
		src.Line = el.Line
	}
	return src
}

// problem reports a recoverable, element-scoped condition.
func (c *Context) problem(msg string, el *element.Element, cause error) {
	c.Reporter.Report(Problem{
		Message: msg,
		Source:  c.extractSource(el),
		Cause:   cause,
	})
	if c.Metrics != nil {
		c.Metrics.ProblemsReported.WithLabelValues(errors.Classify(cause).String()).Inc()
	}
	c.Logger.Debug("manifest problem reported", "message", msg, "cause", cause)
}

// fireDefaultsRegistered notifies the listener of a scope's defaults.
func (c *Context) fireDefaultsRegistered(d Defaults, el *element.Element) {
	c.Listener.DefaultsRegistered(DefaultsEvent{Defaults: d, Source: c.extractSource(el)})
}

// fireImportProcessed notifies the listener of a processed import.
func (c *Context) fireImportProcessed(location string, resources []resource.Resource, el *element.Element) {
	c.Listener.ImportProcessed(ImportEvent{
		Location:  location,
		Resources: resources,
		Source:    c.extractSource(el),
	})
	if c.Metrics != nil {
		c.Metrics.ImportsProcessed.Inc()
		c.Metrics.ImportedResources.Add(float64(len(resources)))
	}
}

// fireAliasRegistered notifies the listener of a registered alias.
func (c *Context) fireAliasRegistered(name, alias string, el *element.Element) {
	c.Listener.AliasRegistered(AliasEvent{Name: name, Alias: alias, Source: c.extractSource(el)})
	if c.Metrics != nil {
		c.Metrics.AliasesRegistered.Inc()
	}
}

// fireComponentRegistered notifies the listener of a registered definition.
func (c *Context) fireComponentRegistered(h *registry.Holder, el *element.Element) {
	c.Listener.ComponentRegistered(ComponentEvent{Holder: h, Source: c.extractSource(el)})
	if c.Metrics != nil {
		c.Metrics.DefinitionsRegistered.WithLabelValues(h.Definition.Kind, h.Definition.Domain).Inc()
	}
}
