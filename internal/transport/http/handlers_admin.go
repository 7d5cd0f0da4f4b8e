package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"devicegate/internal/accounts"
	dErrors "devicegate/pkg/domain-errors"
	"devicegate/pkg/platform/httputil"
	"devicegate/pkg/requestcontext"
)

// AccountLister provides the diagnostics view over created accounts.
type AccountLister interface {
	List(ctx context.Context) ([]accounts.Account, error)
}

// AdminHandler serves the observability endpoints. Not in the hot path.
type AdminHandler struct {
	accounts AccountLister
	logger   *slog.Logger
}

func NewAdminHandler(lister AccountLister, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{accounts: lister, logger: logger}
}

// Register mounts the diagnostics endpoints on the router.
func (h *AdminHandler) Register(r chi.Router) {
	r.Get("/api/accounts", h.handleListAccounts)
}

func (h *AdminHandler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.accounts.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list accounts",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts"))
		return
	}

	resp := AccountsResponse{Accounts: make([]AccountSummary, 0, len(list))}
	for _, account := range list {
		resp.Accounts = append(resp.Accounts, AccountSummary{
			AccountID:  account.ID,
			Username:   account.Username,
			DeviceID:   account.DeviceID,
			DeviceName: account.DeviceName,
			CreatedAt:  account.CreatedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
