// Package ledger enforces the one-account-per-device invariant. The store is
// interface-driven so the gate stays testable and persistence can be swapped
// without rewiring business code.
package ledger

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for store facts. Services translate these into domain
// errors; a duplicate reservation is an expected outcome, not a failure.
var (
	ErrAlreadyExists = errors.New("device already reserved")
	ErrNotFound      = errors.New("ledger entry not found")
)

// Entry records the single account reserved for a device identity.
// Entries are never mutated; deletion is an administrative concern outside
// this service.
type Entry struct {
	DeviceID  string
	AccountID string
	CreatedAt time.Time
}

// Store persists device reservations.
//
// Reserve must be a single atomic check-and-insert: two concurrent calls for
// the same device yield exactly one Entry and one ErrAlreadyExists. A
// check-then-insert done as two operations is a race bug, which is why the
// interface exposes no separate insert.
//
// Exists is for diagnostics only and must never gate an accept decision.
type Store interface {
	Reserve(ctx context.Context, deviceID, accountID string) (Entry, error)
	Exists(ctx context.Context, deviceID string) (bool, error)
	ListAll(ctx context.Context) ([]Entry, error)
}
