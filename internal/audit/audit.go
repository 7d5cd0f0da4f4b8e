// Package audit captures one event per gate evaluation. Events are emitted
// from domain logic and kept transport-agnostic so sinks can fan out.
package audit

import (
	"context"
	"time"
)

// Event records the outcome of a single evaluation. DeviceID is the only
// identity carried; raw resolver payloads are never audited.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id,omitempty"`
	AccountID string    `json:"account_id,omitempty"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Sink receives audit events. Implementations must tolerate concurrent
// Append calls.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a sink that also supports reading events back, for diagnostics.
type Store interface {
	Sink
	List(ctx context.Context) ([]Event, error)
}
