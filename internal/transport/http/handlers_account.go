package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"devicegate/internal/accounts"
	"devicegate/internal/gate"
	dErrors "devicegate/pkg/domain-errors"
	"devicegate/pkg/platform/httputil"
	"devicegate/pkg/requestcontext"
)

// Gate is the evaluation service consumed by this handler.
type Gate interface {
	EvaluateToken(ctx context.Context, requestToken string, draft accounts.Draft) gate.Outcome
}

// AccountHandler serves the account-creation endpoint. It delegates to the
// gate without embedding business logic so transport concerns stay isolated.
type AccountHandler struct {
	gate   Gate
	logger *slog.Logger
}

func NewAccountHandler(g Gate, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{gate: g, logger: logger}
}

// Register mounts the account-creation endpoint on the router.
func (h *AccountHandler) Register(r chi.Router) {
	r.Post("/api/create-account", h.handleCreateAccount)
}

func (h *AccountHandler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateAccountRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	draft := accounts.Draft{
		Username:  req.Username,
		Password:  req.Password,
		UserAgent: requestcontext.UserAgent(ctx),
	}

	outcome := h.gate.EvaluateToken(ctx, req.RequestID, draft)

	h.logger.InfoContext(ctx, "account creation evaluated",
		"request_id", requestID,
		"status", outcome.Status,
		"reason", outcome.Reason,
	)

	switch outcome.Status {
	case gate.StatusCreated:
		httputil.WriteJSON(w, http.StatusCreated, CreateAccountResponse{
			Status:    "created",
			AccountID: outcome.AccountID,
			DeviceID:  outcome.DeviceID,
		})
	case gate.StatusChallenged:
		httputil.WriteJSON(w, http.StatusOK, CreateAccountResponse{
			Status:            "challenged",
			Reason:            outcome.Reason,
			ChallengeRequired: true,
		})
	case gate.StatusRejectedBot:
		httputil.WriteJSON(w, http.StatusForbidden, CreateAccountResponse{
			Status: "rejected",
			Reason: outcome.Reason,
		})
	case gate.StatusRejectedDuplicateDevice:
		httputil.WriteJSON(w, http.StatusTooManyRequests, CreateAccountResponse{
			Status:   "rejected",
			Reason:   "device_already_registered",
			DeviceID: outcome.DeviceID,
		})
	case gate.StatusInvalidIdentity:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, outcome.Reason))
	default:
		// Transient failures and anything unforeseen fail closed.
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "account creation unavailable"))
	}
}
