package httptransport

import "time"

// CreateAccountResponse is returned for evaluations that produce a normal
// (non-error) outcome. Reasons stay distinguishable so the front end can
// render different messaging for bot and duplicate-device rejections.
type CreateAccountResponse struct {
	Status            string `json:"status"`
	AccountID         string `json:"account_id,omitempty"`
	DeviceID          string `json:"device_id,omitempty"`
	Reason            string `json:"reason,omitempty"`
	ChallengeRequired bool   `json:"challenge_required,omitempty"`
}

// AccountSummary is one row of the admin diagnostics listing. Password
// hashes are deliberately not part of this type.
type AccountSummary struct {
	AccountID  string    `json:"account_id"`
	Username   string    `json:"username"`
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AccountsResponse wraps the diagnostics listing.
type AccountsResponse struct {
	Accounts []AccountSummary `json:"accounts"`
}

// HealthResponse reports liveness and dependency reachability.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
