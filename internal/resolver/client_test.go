package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devicegate/internal/identity"
	dErrors "devicegate/pkg/domain-errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, guard ReplayGuard) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-key", "eu", guard, WithBaseURL(server.URL))
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("full payload parses into record", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/events/tok-1", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("Auth-API-Key"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"products": {
					"identification": {"data": {"visitorId": "vis-1", "confidence": {"score": 0.97}}},
					"botd": {"data": {"bot": {"result": "notDetected"}}},
					"suspectScore": {"data": {"result": 12}}
				}
			}`))
		}, nil)

		record, err := client.Resolve(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, "vis-1", record.DeviceID())
		assert.Equal(t, identity.BotNotDetected, record.Bot())
		score, ok := record.RiskScore()
		assert.True(t, ok)
		assert.Equal(t, 12.0, score)
		assert.Equal(t, 0.97, record.RawConfidence())
	})

	t.Run("bot detected result", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"products": {
					"identification": {"data": {"visitorId": "vis-2"}},
					"botd": {"data": {"bot": {"result": "detected"}}}
				}
			}`))
		}, nil)

		record, err := client.Resolve(ctx, "tok-2")
		require.NoError(t, err)
		assert.Equal(t, identity.BotDetected, record.Bot())
	})

	t.Run("missing botd product yields unknown, not not_detected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"products": {"identification": {"data": {"visitorId": "vis-3"}}}
			}`))
		}, nil)

		record, err := client.Resolve(ctx, "tok-3")
		require.NoError(t, err)
		assert.Equal(t, identity.BotUnknown, record.Bot())
	})

	t.Run("missing suspect score stays absent", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"products": {"identification": {"data": {"visitorId": "vis-4"}}}
			}`))
		}, nil)

		record, err := client.Resolve(ctx, "tok-4")
		require.NoError(t, err)
		_, ok := record.RiskScore()
		assert.False(t, ok)
	})

	t.Run("empty token is a validation error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		}, nil)

		_, err := client.Resolve(ctx, "  ")
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
	})

	t.Run("unknown token maps to not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}, nil)

		_, err := client.Resolve(ctx, "tok-5")
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})

	t.Run("vendor 5xx maps to unavailable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}, nil)

		_, err := client.Resolve(ctx, "tok-6")
		assert.True(t, dErrors.Is(err, dErrors.CodeUnavailable))
	})

	t.Run("malformed body maps to unavailable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}, nil)

		_, err := client.Resolve(ctx, "tok-7")
		assert.True(t, dErrors.Is(err, dErrors.CodeUnavailable))
	})

	t.Run("replayed token is rejected before the vendor call", func(t *testing.T) {
		var calls int
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			_, _ = w.Write([]byte(`{
				"products": {"identification": {"data": {"visitorId": "vis-8"}}}
			}`))
		}, NewMemoryReplayGuard(0))

		_, err := client.Resolve(ctx, "tok-8")
		require.NoError(t, err)

		_, err = client.Resolve(ctx, "tok-8")
		assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
		assert.Equal(t, 1, calls)
	})
}

func TestMemoryReplayGuard(t *testing.T) {
	ctx := context.Background()
	guard := NewMemoryReplayGuard(0)

	first, err := guard.Claim(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := guard.Claim(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, second)

	other, err := guard.Claim(ctx, "tok-other")
	require.NoError(t, err)
	assert.True(t, other)
}
