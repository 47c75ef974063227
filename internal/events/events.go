// Package events publishes domain events after successful writes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"rrhh/internal/logger"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix is prepended to every published subject
const SubjectPrefix = "rrhh"

// Event actions
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionApproved = "approved"
	ActionRejected = "rejected"
)

// Event describes a change of one record
type Event struct {
	Entity     string      `json:"entidad"`
	Action     string      `json:"accion"`
	ID         uint        `json:"id"`
	ActorID    *uint       `json:"usuario_id,omitempty"`
	OccurredAt time.Time   `json:"fecha"`
	Payload    interface{} `json:"datos,omitempty"`
}

// Subject is the NATS subject of the event, rrhh.<entidad>.<accion>
func (e Event) Subject() string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, e.Entity, e.Action)
}

// Publisher delivers events to interested consumers
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards events; used when NATS is not configured
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// NATSConfig holds NATS connection settings
type NATSConfig struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
	DrainTimeout  time.Duration
}

// NATSPublisher publishes JSON encoded events on core NATS
type NATSPublisher struct {
	conn         *nats.Conn
	drainTimeout time.Duration
}

// NewNATSPublisher connects to the server with reconnect handling
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	if cfg.Name == "" {
		cfg.Name = "rrhh-api"
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = 60
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = 5 * time.Second
	}

	log := logger.Get()
	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect NATS %s: %w", cfg.URL, err)
	}

	return &NATSPublisher{conn: conn, drainTimeout: cfg.DrainTimeout}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.conn.Publish(event.Subject(), data); err != nil {
		return fmt.Errorf("publish %s: %w", event.Subject(), err)
	}
	logger.DebugLog(ctx, "event published on %s", event.Subject())
	return nil
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	done := make(chan struct{})
	p.conn.SetClosedHandler(func(*nats.Conn) { close(done) })
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	select {
	case <-done:
	case <-time.After(p.drainTimeout):
		p.conn.Close()
	}
	return nil
}
