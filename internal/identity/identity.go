// Package identity holds the normalized representation of one device
// verification event. Records are parsed exactly once at the resolver
// boundary; downstream code never re-derives fields from raw payloads.
package identity

import dErrors "devicegate/pkg/domain-errors"

// BotVerdict is the bot-detection signal carried by a verification event.
// Unknown means the signal was absent from the vendor payload, which is a
// different fact from NotDetected and must never be conflated with it.
type BotVerdict string

const (
	BotDetected    BotVerdict = "detected"
	BotNotDetected BotVerdict = "not_detected"
	BotUnknown     BotVerdict = "unknown"
)

// Record is an immutable snapshot of one verification result. Construct it
// with New and treat it as a value; it represents a single event and is
// discarded after policy evaluation.
type Record struct {
	deviceID      string
	bot           BotVerdict
	riskScore     *float64
	rawConfidence float64
}

// New builds a Record. A nil riskScore means the vendor response carried no
// score; it is preserved as absent rather than coerced to zero.
func New(deviceID string, bot BotVerdict, riskScore *float64, rawConfidence float64) Record {
	if bot != BotDetected && bot != BotNotDetected {
		bot = BotUnknown
	}
	var score *float64
	if riskScore != nil {
		v := *riskScore
		score = &v
	}
	return Record{
		deviceID:      deviceID,
		bot:           bot,
		riskScore:     score,
		rawConfidence: rawConfidence,
	}
}

// DeviceID returns the opaque stable device identifier asserted by the
// resolver. Empty means the identity is unusable for any accept path.
func (r Record) DeviceID() string { return r.deviceID }

// Bot returns the bot-detection verdict.
func (r Record) Bot() BotVerdict { return r.bot }

// RiskScore returns the vendor risk score and whether it was present.
func (r Record) RiskScore() (float64, bool) {
	if r.riskScore == nil {
		return 0, false
	}
	return *r.riskScore, true
}

// RawConfidence returns the vendor confidence value, carried opaquely for
// diagnostics only.
func (r Record) RawConfidence() float64 { return r.rawConfidence }

// Validate checks the record is usable for gate evaluation.
func (r Record) Validate() error {
	if r.deviceID == "" {
		return dErrors.New(dErrors.CodeValidation, "device identity is missing")
	}
	return nil
}
