// Package natsink publishes loading events to NATS for consumption by
// dashboards and audit tooling. The sink is an EventListener: wire it
// into a reader.Context and every successfully registered definition,
// alias, import, and defaults scope is published as a JSON envelope.
//
// Publishing is best-effort. A sink built with a nil connection is
// disabled and discards events, so callers never need a NATS server for
// plain loading. Publish failures are logged locally and never surface
// into the traversal.
package natsink

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/c360/manifest/reader"
)

// Event types used in the published envelope.
const (
	EventDefaults  = "defaults.registered"
	EventImport    = "import.processed"
	EventAlias     = "alias.registered"
	EventComponent = "component.registered"
)

// SubjectPrefix is the root of all subjects the sink publishes to.
// Full subjects are SubjectPrefix + "." + the envelope's event type,
// e.g. "manifest.events.component.registered".
const SubjectPrefix = "manifest.events"

// Envelope is the wire form of a published event.
type Envelope struct {
	ID        string          `json:"id"`        // uuid, unique per event
	Type      string          `json:"type"`      // one of the Event* constants
	Timestamp string          `json:"timestamp"` // RFC3339Nano UTC
	Payload   json.RawMessage `json:"payload"`
}

// Sink publishes loading events to NATS. It implements
// reader.EventListener.
type Sink struct {
	nc      *nats.Conn
	logger  *slog.Logger
	enabled bool
}

// New creates a sink publishing on the given connection. A nil
// connection yields a disabled sink that silently discards events.
func New(nc *nats.Conn, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		nc:      nc,
		logger:  logger,
		enabled: nc != nil,
	}
}

// DefaultsRegistered implements reader.EventListener.
func (s *Sink) DefaultsRegistered(ev reader.DefaultsEvent) {
	s.publish(EventDefaults, ev)
}

// ImportProcessed implements reader.EventListener.
func (s *Sink) ImportProcessed(ev reader.ImportEvent) {
	// Resources carry open handles and do not serialize; publish their
	// locations instead.
	locations := make([]string, 0, len(ev.Resources))
	for _, res := range ev.Resources {
		locations = append(locations, res.Location())
	}
	s.publish(EventImport, struct {
		Location  string        `json:"location"`
		Resources []string      `json:"resources"`
		Source    reader.Source `json:"source"`
	}{
		Location:  ev.Location,
		Resources: locations,
		Source:    ev.Source,
	})
}

// AliasRegistered implements reader.EventListener.
func (s *Sink) AliasRegistered(ev reader.AliasEvent) {
	s.publish(EventAlias, ev)
}

// ComponentRegistered implements reader.EventListener.
func (s *Sink) ComponentRegistered(ev reader.ComponentEvent) {
	s.publish(EventComponent, ev)
}

func (s *Sink) publish(eventType string, payload any) {
	if !s.enabled {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal event payload", "type", eventType, "error", err)
		return
	}

	env := Envelope{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:   body,
	}

	data, err := json.Marshal(env)
	if err != nil {
		s.logger.Error("Failed to marshal event envelope", "type", eventType, "error", err)
		return
	}

	// Re-check the connection before network I/O; enabled is computed
	// at construction and the connection may have been closed since.
	nc := s.nc
	if nc == nil {
		return
	}

	subject := fmt.Sprintf("%s.%s", SubjectPrefix, eventType)
	if err := nc.Publish(subject, data); err != nil {
		s.logger.Error("Failed to publish event to NATS", "subject", subject, "error", err)
	}
}
