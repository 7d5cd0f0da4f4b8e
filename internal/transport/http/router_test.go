package httptransport

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devicegate/internal/accounts"
	"devicegate/internal/gate"
	"devicegate/internal/platform/token"
	"devicegate/pkg/testutil"
)

func newTestRouter(t *testing.T, tokens *token.Service) http.Handler {
	t.Helper()

	store := accounts.NewMemoryStore()
	account, err := accounts.New(accounts.Draft{
		Username:  "alice",
		Password:  "hunter2hunter2",
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}, "visitor-1", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), account))

	logger := discardLogger()
	return NewRouter(RouterDeps{
		Account: NewAccountHandler(&fakeGate{outcome: gate.Outcome{
			Status:    gate.StatusCreated,
			AccountID: account.ID,
			DeviceID:  "visitor-1",
		}}, logger),
		Admin: NewAdminHandler(store, logger),
		Health: NewHealthHandler(map[string]HealthChecker{
			"self": HealthCheckerFunc(func(context.Context) error { return nil }),
		}),
		AdminTokens:    tokens,
		Logger:         logger,
		RequestTimeout: 5 * time.Second,
	})
}

func TestRouterHealth(t *testing.T) {
	router := newTestRouter(t, token.NewService("test-key"))

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))

	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "status", "ok")
}

func TestRouterHealthDegraded(t *testing.T) {
	logger := discardLogger()
	router := NewRouter(RouterDeps{
		Account: NewAccountHandler(&fakeGate{}, logger),
		Admin:   NewAdminHandler(accounts.NewMemoryStore(), logger),
		Health: NewHealthHandler(map[string]HealthChecker{
			"postgres": HealthCheckerFunc(func(context.Context) error { return errors.New("connection refused") }),
		}),
		AdminTokens: token.NewService("test-key"),
		Logger:      logger,
	})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	testutil.AssertJSONContains(t, rr, "status", "degraded")
}

func TestRouterMetricsExposed(t *testing.T) {
	router := newTestRouter(t, token.NewService("test-key"))

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))

	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestRouterCreateAccountRequiresJSON(t *testing.T) {
	router := newTestRouter(t, token.NewService("test-key"))

	req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/create-account", `{"request_id":"r","username":"alice","password":"hunter2hunter2"}`)
	req.Header.Set("Content-Type", "text/plain")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusUnsupportedMediaType)
}

func TestRouterCreateAccountEndToEnd(t *testing.T) {
	router := newTestRouter(t, token.NewService("test-key"))

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/create-account", validBody())
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusCreated)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRouterAdminRequiresToken(t *testing.T) {
	router := newTestRouter(t, token.NewService("test-key"))

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/accounts"))

	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestRouterAdminRejectsBadToken(t *testing.T) {
	router := newTestRouter(t, token.NewService("test-key"))

	req := testutil.NewRequest(t, http.MethodGet, "/api/accounts")
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestRouterAdminListsAccounts(t *testing.T) {
	tokens := token.NewService("test-key")
	router := newTestRouter(t, tokens)

	adminToken, err := tokens.GenerateToken("ops", time.Hour)
	require.NoError(t, err)

	req := testutil.NewRequest(t, http.MethodGet, "/api/accounts")
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[AccountsResponse](t, rr)
	require.Len(t, resp.Accounts, 1)
	assert.Equal(t, "alice", resp.Accounts[0].Username)
	assert.Equal(t, "visitor-1", resp.Accounts[0].DeviceID)
	assert.Contains(t, resp.Accounts[0].DeviceName, "Chrome")
}
