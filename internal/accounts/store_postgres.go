package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore persists accounts in PostgreSQL. Pure I/O; hashing and ID
// assignment happen in New.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the accounts table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			device_id     TEXT NOT NULL,
			device_name   TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure accounts schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, account Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, username, password_hash, device_id, device_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		account.ID,
		account.Username,
		account.PasswordHash,
		account.DeviceID,
		account.DeviceName,
		account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Account, error) {
	var account Account
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, device_id, device_name, created_at
		FROM accounts WHERE id = $1
	`, id).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.DeviceID,
		&account.DeviceName,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, password_hash, device_id, device_name, created_at
		FROM accounts ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var account Account
		if err := rows.Scan(
			&account.ID,
			&account.Username,
			&account.PasswordHash,
			&account.DeviceID,
			&account.DeviceName,
			&account.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}
