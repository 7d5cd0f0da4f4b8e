// Package resolver is the boundary to the device-intelligence vendor. It
// exchanges a one-time request token for a verification event and parses the
// nested payload exactly once into an identity.Record; every "field missing"
// case becomes an explicit Unknown or absent value here, never downstream.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"devicegate/internal/identity"
	dErrors "devicegate/pkg/domain-errors"
)

// Region-selected vendor API hosts.
var regionBaseURLs = map[string]string{
	"us": "https://api.fpjs.io",
	"eu": "https://eu.api.fpjs.io",
	"ap": "https://ap.api.fpjs.io",
}

const defaultHTTPTimeout = 10 * time.Second

// ReplayGuard enforces single use of request tokens. Claim returns true on
// first use, false when the token was already consumed.
type ReplayGuard interface {
	Claim(ctx context.Context, token string) (bool, error)
}

// Client resolves request tokens against the vendor's server API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	guard      ReplayGuard
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the region-derived base URL (tests point this at a
// local server).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a vendor client. Unrecognized regions fall back to "us".
// The guard may be nil, in which case replay protection is disabled.
func NewClient(apiKey, region string, guard ReplayGuard, opts ...Option) *Client {
	base, ok := regionBaseURLs[region]
	if !ok {
		base = regionBaseURLs["us"]
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    base,
		apiKey:     apiKey,
		guard:      guard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve fetches the verification event for a token and normalizes it.
// Error codes distinguish an unusable token (not found, replayed, empty)
// from infrastructure failures so the gate can fail closed on the latter.
func (c *Client) Resolve(ctx context.Context, requestToken string) (identity.Record, error) {
	if strings.TrimSpace(requestToken) == "" {
		return identity.Record{}, dErrors.New(dErrors.CodeValidation, "request token is required")
	}

	if c.guard != nil {
		first, err := c.guard.Claim(ctx, requestToken)
		if err != nil {
			// Replay state unknown: fail closed rather than admit a
			// possibly replayed token.
			return identity.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "replay guard unavailable")
		}
		if !first {
			return identity.Record{}, dErrors.New(dErrors.CodeBadRequest, "request token already used")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/events/%s", c.baseURL, requestToken), nil)
	if err != nil {
		return identity.Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "build vendor request")
	}
	req.Header.Set("Auth-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return identity.Record{}, dErrors.Wrap(err, dErrors.CodeTimeout, "vendor request cancelled")
		}
		return identity.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "vendor unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return identity.Record{}, dErrors.New(dErrors.CodeNotFound, "verification event not found")
	case resp.StatusCode >= 500:
		return identity.Record{}, dErrors.New(dErrors.CodeUnavailable, "vendor error")
	case resp.StatusCode != http.StatusOK:
		// Auth or quota problems are operator issues; to the caller the
		// resolver is simply unavailable.
		return identity.Record{}, dErrors.New(dErrors.CodeUnavailable, fmt.Sprintf("unexpected vendor status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return identity.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "read vendor response")
	}
	return parseEvent(body)
}

// eventEnvelope mirrors the slice of the vendor payload this service reads.
// Pointer fields keep "product absent" distinguishable from zero values.
type eventEnvelope struct {
	Products struct {
		Identification *struct {
			Data *struct {
				VisitorID  string `json:"visitorId"`
				Confidence struct {
					Score float64 `json:"score"`
				} `json:"confidence"`
			} `json:"data"`
		} `json:"identification"`
		Botd *struct {
			Data *struct {
				Bot struct {
					Result string `json:"result"`
				} `json:"bot"`
			} `json:"data"`
		} `json:"botd"`
		SuspectScore *struct {
			Data *struct {
				Result float64 `json:"result"`
			} `json:"data"`
		} `json:"suspectScore"`
	} `json:"products"`
}

func parseEvent(body []byte) (identity.Record, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return identity.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "malformed vendor response")
	}

	var deviceID string
	var confidence float64
	if ident := envelope.Products.Identification; ident != nil && ident.Data != nil {
		deviceID = ident.Data.VisitorID
		confidence = ident.Data.Confidence.Score
	}

	bot := identity.BotUnknown
	if botd := envelope.Products.Botd; botd != nil && botd.Data != nil {
		if botd.Data.Bot.Result == "detected" {
			bot = identity.BotDetected
		} else if botd.Data.Bot.Result != "" {
			bot = identity.BotNotDetected
		}
	}

	var riskScore *float64
	if suspect := envelope.Products.SuspectScore; suspect != nil && suspect.Data != nil {
		v := suspect.Data.Result
		riskScore = &v
	}

	return identity.New(deviceID, bot, riskScore, confidence), nil
}
