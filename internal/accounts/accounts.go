// Package accounts owns the account records created once the gate accepts a
// request.
package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound keeps store-level 404s consistent across implementations.
var ErrNotFound = errors.New("account not found")

// Account is the durable record for one created account. PasswordHash is a
// bcrypt hash; the plaintext never leaves the constructor.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	DeviceID     string
	DeviceName   string
	CreatedAt    time.Time
}

// Store persists accounts.
type Store interface {
	Save(ctx context.Context, account Account) error
	FindByID(ctx context.Context, id string) (Account, error)
	List(ctx context.Context) ([]Account, error)
}

// Draft carries the user-supplied fields of a pending account.
type Draft struct {
	Username  string
	Password  string
	UserAgent string
}

// New materializes a Draft into an Account bound to a device identity. The
// password is hashed here so no other layer ever holds plaintext.
func New(draft Draft, deviceID string, now time.Time) (Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(draft.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}
	return Account{
		ID:           uuid.NewString(),
		Username:     draft.Username,
		PasswordHash: string(hash),
		DeviceID:     deviceID,
		DeviceName:   DeviceDisplayName(draft.UserAgent),
		CreatedAt:    now.UTC(),
	}, nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
func (a Account) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
