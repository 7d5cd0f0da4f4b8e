// Package gate orchestrates one account-creation evaluation: resolve the
// verification token, apply the decision policy, reserve the device in the
// ledger, create the account. The gate holds no mutable state of its own;
// the only shared resource is the ledger's backing store, so a single Gate
// is safe for concurrent use.
package gate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"devicegate/internal/accounts"
	"devicegate/internal/audit"
	"devicegate/internal/gate/metrics"
	"devicegate/internal/identity"
	"devicegate/internal/ledger"
	"devicegate/internal/policy"
	dErrors "devicegate/pkg/domain-errors"
	"devicegate/pkg/requestcontext"
)

// Status enumerates the final outcomes of an evaluation.
type Status string

const (
	StatusCreated                 Status = "created"
	StatusRejectedBot             Status = "rejected_bot"
	StatusRejectedDuplicateDevice Status = "rejected_duplicate_device"
	StatusChallenged              Status = "challenged"
	StatusInvalidIdentity         Status = "invalid_identity"
	StatusTransientFailure        Status = "transient_failure"
)

// Outcome is the result of one evaluation. Only the minimal fields needed by
// the caller are exposed; raw resolver payloads and ledger contents never
// appear here.
type Outcome struct {
	Status    Status
	Reason    string
	AccountID string
	DeviceID  string

	// Err carries the underlying cause for TransientFailure outcomes, for
	// logging only.
	Err error
}

// Resolver turns a one-time request token into an identity record. A bad or
// replayed token surfaces as CodeNotFound/CodeBadRequest; infrastructure
// failures as CodeUnavailable or CodeTimeout.
type Resolver interface {
	Resolve(ctx context.Context, requestToken string) (identity.Record, error)
}

// Gate evaluates account-creation attempts. Construct with New; all
// dependencies are injected explicitly.
type Gate struct {
	resolver Resolver
	policy   *policy.Policy
	ledger   ledger.Store
	accounts accounts.Store
	audit    *audit.Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func New(
	resolver Resolver,
	pol *policy.Policy,
	ledgerStore ledger.Store,
	accountStore accounts.Store,
	auditPub *audit.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Gate {
	return &Gate{
		resolver: resolver,
		policy:   pol,
		ledger:   ledgerStore,
		accounts: accountStore,
		audit:    auditPub,
		logger:   logger,
		metrics:  m,
	}
}

// EvaluateToken resolves the request token and runs the full evaluation.
// Resolver failures never touch the ledger: an unusable token is
// InvalidIdentity, an infrastructure failure is TransientFailure. Failing
// closed here is deliberate; an unreachable resolver must not admit
// accounts.
func (g *Gate) EvaluateToken(ctx context.Context, requestToken string, draft accounts.Draft) Outcome {
	record, err := g.resolver.Resolve(ctx, requestToken)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) || dErrors.Is(err, dErrors.CodeBadRequest) || dErrors.Is(err, dErrors.CodeValidation) {
			return g.finish(ctx, Outcome{Status: StatusInvalidIdentity, Reason: "unusable verification token"}, time.Now())
		}
		return g.finish(ctx, Outcome{Status: StatusTransientFailure, Reason: "identity resolution failed", Err: err}, time.Now())
	}
	return g.Evaluate(ctx, record, draft)
}

// Evaluate runs the decision sequence for an already-resolved record:
//
//  1. Validate the device identity.
//  2. Apply the pure decision policy; Reject and Challenge never touch the
//     ledger.
//  3. On Accept, atomically reserve the device and persist the account.
//
// Any ledger or account-store I/O failure surfaces as TransientFailure,
// never as an accept or a policy rejection.
func (g *Gate) Evaluate(ctx context.Context, record identity.Record, draft accounts.Draft) Outcome {
	start := time.Now()
	ctx, span := otel.Tracer("devicegate/gate").Start(ctx, "gate.evaluate",
		trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	outcome := g.evaluate(ctx, record, draft)
	span.SetAttributes(
		attribute.String("gate.status", string(outcome.Status)),
		attribute.String("gate.reason", outcome.Reason),
	)
	return g.finish(ctx, outcome, start)
}

func (g *Gate) evaluate(ctx context.Context, record identity.Record, draft accounts.Draft) Outcome {
	if err := record.Validate(); err != nil {
		return Outcome{Status: StatusInvalidIdentity, Reason: "device identity is missing"}
	}
	deviceID := record.DeviceID()

	verdict := g.policy.Decide(record)
	switch verdict.Decision {
	case policy.DecisionReject:
		return Outcome{Status: StatusRejectedBot, Reason: verdict.Reason, DeviceID: deviceID}
	case policy.DecisionChallenge:
		return Outcome{Status: StatusChallenged, Reason: verdict.Reason, DeviceID: deviceID}
	}

	account, err := accounts.New(draft, deviceID, requestcontext.Now(ctx))
	if err != nil {
		return Outcome{Status: StatusTransientFailure, Reason: "account preparation failed", Err: err, DeviceID: deviceID}
	}

	if _, err := g.ledger.Reserve(ctx, deviceID, account.ID); err != nil {
		if errors.Is(err, ledger.ErrAlreadyExists) {
			g.metrics.IncrementLedgerConflict()
			return Outcome{Status: StatusRejectedDuplicateDevice, Reason: "device already has an account", DeviceID: deviceID}
		}
		return Outcome{Status: StatusTransientFailure, Reason: "ledger reservation failed", Err: err, DeviceID: deviceID}
	}

	if err := g.accounts.Save(ctx, account); err != nil {
		// The reservation stands; the device is burned rather than risk a
		// second account racing through a rolled-back slot.
		return Outcome{Status: StatusTransientFailure, Reason: "account persistence failed", Err: err, DeviceID: deviceID}
	}

	return Outcome{Status: StatusCreated, AccountID: account.ID, DeviceID: deviceID}
}

// finish records metrics and audit for every outcome, successful or not.
func (g *Gate) finish(ctx context.Context, outcome Outcome, start time.Time) Outcome {
	g.metrics.IncrementOutcome(string(outcome.Status))
	g.metrics.ObserveEvaluateLatency(time.Since(start))

	if outcome.Err != nil {
		g.logger.ErrorContext(ctx, "gate evaluation failed",
			"request_id", requestcontext.RequestID(ctx),
			"status", outcome.Status,
			"reason", outcome.Reason,
			"error", outcome.Err,
		)
	}

	if g.audit != nil {
		g.audit.Emit(ctx, audit.Event{
			DeviceID:  outcome.DeviceID,
			AccountID: outcome.AccountID,
			Outcome:   string(outcome.Status),
			Reason:    outcome.Reason,
			RequestID: requestcontext.RequestID(ctx),
		})
	}
	return outcome
}
