package httptransport

import (
	"strings"

	dErrors "devicegate/pkg/domain-errors"
)

// CreateAccountRequest is the HTTP request body for POST /api/create-account.
type CreateAccountRequest struct {
	RequestID string `json:"request_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// Validate implements httputil.Validatable.
func (r *CreateAccountRequest) Validate() error {
	r.RequestID = strings.TrimSpace(r.RequestID)
	r.Username = strings.TrimSpace(r.Username)

	if r.RequestID == "" {
		return dErrors.New(dErrors.CodeValidation, "request_id is required")
	}
	if len(r.RequestID) > 255 {
		return dErrors.New(dErrors.CodeValidation, "request_id is too long")
	}
	if len(r.Username) < 3 || len(r.Username) > 100 {
		return dErrors.New(dErrors.CodeValidation, "username must be between 3 and 100 characters")
	}
	if len(r.Password) < 8 || len(r.Password) > 72 {
		// 72 bytes is the bcrypt input limit.
		return dErrors.New(dErrors.CodeValidation, "password must be between 8 and 72 characters")
	}
	return nil
}
