package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const defaultQueryTimeout = 5 * time.Second

// PostgresStore persists reservations in the accounts_by_device table. The
// store is pure I/O; acceptance decisions belong to the gate.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgres constructs a PostgreSQL-backed ledger store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, timeout: defaultQueryTimeout}
}

// EnsureSchema creates the ledger table if it does not exist. The unique key
// on device_id is what makes Reserve atomic; do not relax it.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS accounts_by_device (
			device_id  TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

// Reserve inserts the reservation in a single statement. ON CONFLICT DO
// NOTHING plus RETURNING collapses check and insert into one atomic
// operation: a losing concurrent insert sees zero returned rows and maps to
// ErrAlreadyExists. Never split this into SELECT then INSERT.
func (s *PostgresStore) Reserve(ctx context.Context, deviceID, accountID string) (Entry, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	query := `
		INSERT INTO accounts_by_device (device_id, account_id)
		VALUES ($1, $2)
		ON CONFLICT (device_id) DO NOTHING
		RETURNING device_id, account_id, created_at
	`
	var entry Entry
	err := s.db.QueryRowContext(ctx, query, deviceID, accountID).
		Scan(&entry.DeviceID, &entry.AccountID, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrAlreadyExists
		}
		return Entry{}, fmt.Errorf("reserve device: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) Exists(ctx context.Context, deviceID string) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts_by_device WHERE device_id = $1)`,
		deviceID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check device reservation: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]Entry, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT device_id, account_id, created_at FROM accounts_by_device ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.DeviceID, &entry.AccountID, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return entries, nil
}

// bound caps every point operation so callers get a result or an error
// within a known window even when the caller's context has no deadline.
func (s *PostgresStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
