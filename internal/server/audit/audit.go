// Package audit publishes security events (credential replay, client
// mismatch) to one or more sinks.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/logging"
	"github.com/google/uuid"
)

// Kind names a security event.
type Kind string

const (
	KindRefreshClientMismatch Kind = "refresh_client_mismatch"
	KindCodeReplay            Kind = "code_replay"
	KindRefreshReplay         Kind = "refresh_replay"
)

// Event is one security-relevant rejection.
type Event struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	ThirdPartyID string    `json:"client_id,omitempty"`
	Expected     string    `json:"expected_client_id,omitempty"`
	Username     string    `json:"username,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewEvent stamps an event with a fresh ID.
func NewEvent(kind Kind, at time.Time) Event {
	return Event{ID: uuid.NewString(), Kind: kind, OccurredAt: at.UTC()}
}

type Sink interface {
	Publish(ctx context.Context, e Event) error
}

// LogSink writes events as WARN lines.
type LogSink struct {
	log logging.Logger
}

func NewLogSink(log logging.Logger) *LogSink {
	return &LogSink{log: log.With("module", "audit")}
}

func (s *LogSink) Publish(ctx context.Context, e Event) error {
	s.log.Warn(ctx, "security event",
		"event_id", e.ID,
		"kind", string(e.Kind),
		"client_id", e.ThirdPartyID,
		"expected_client_id", e.Expected,
		"username", e.Username,
		"detail", e.Detail,
	)
	return nil
}

// MultiSink publishes to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
