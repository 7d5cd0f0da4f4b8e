// Package policy turns an identity record into an accept/reject/challenge
// verdict. This is pure domain logic - no I/O, no side effects.
package policy

import "devicegate/internal/identity"

// Decision enumerates the possible policy verdicts.
type Decision string

const (
	DecisionAccept    Decision = "accept"
	DecisionReject    Decision = "reject"
	DecisionChallenge Decision = "challenge"
)

// Reason codes attached to non-accept verdicts. They are stable strings so
// the front end can render distinct messaging per reason.
const (
	ReasonBotDetected   = "bot_detected"
	ReasonHighRiskScore = "high_risk_score"
)

// Verdict is the outcome of a single policy evaluation.
type Verdict struct {
	Decision Decision
	Reason   string
}

// DefaultRiskThreshold is used when configuration supplies no override.
const DefaultRiskThreshold = 65.0

// Policy evaluates identity records against a configured risk threshold.
// The zero value is not usable; construct with New.
type Policy struct {
	riskThreshold float64
}

// New builds a Policy. Thresholds outside (0, 100] fall back to the default.
func New(riskThreshold float64) *Policy {
	if riskThreshold <= 0 || riskThreshold > 100 {
		riskThreshold = DefaultRiskThreshold
	}
	return &Policy{riskThreshold: riskThreshold}
}

// Decide applies the rule chain to a record. Rules are ordered; the first
// match wins:
//  1. Bot detected - hard reject.
//  2. Risk score present and at or above threshold - challenge.
//  3. Otherwise - accept.
//
// An Unknown bot verdict falls through rule 1: absence of the signal is not
// evidence of a bot.
func (p *Policy) Decide(record identity.Record) Verdict {
	if record.Bot() == identity.BotDetected {
		return Verdict{Decision: DecisionReject, Reason: ReasonBotDetected}
	}
	if score, ok := record.RiskScore(); ok && score >= p.riskThreshold {
		return Verdict{Decision: DecisionChallenge, Reason: ReasonHighRiskScore}
	}
	return Verdict{Decision: DecisionAccept}
}

// RiskThreshold exposes the configured threshold for diagnostics.
func (p *Policy) RiskThreshold() float64 { return p.riskThreshold }
