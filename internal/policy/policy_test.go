package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"devicegate/internal/identity"
)

func score(v float64) *float64 { return &v }

func TestDecide(t *testing.T) {
	p := New(65)

	t.Run("bot detected rejects regardless of risk score", func(t *testing.T) {
		for _, s := range []*float64{nil, score(0), score(100)} {
			v := p.Decide(identity.New("d1", identity.BotDetected, s, 0))
			assert.Equal(t, DecisionReject, v.Decision)
			assert.Equal(t, ReasonBotDetected, v.Reason)
		}
	})

	t.Run("unknown bot verdict without score accepts", func(t *testing.T) {
		v := p.Decide(identity.New("d1", identity.BotUnknown, nil, 0))
		assert.Equal(t, DecisionAccept, v.Decision)
		assert.Empty(t, v.Reason)
	})

	t.Run("unknown bot verdict still subject to risk rule", func(t *testing.T) {
		v := p.Decide(identity.New("d1", identity.BotUnknown, score(80), 0))
		assert.Equal(t, DecisionChallenge, v.Decision)
		assert.Equal(t, ReasonHighRiskScore, v.Reason)
	})

	t.Run("score at threshold challenges", func(t *testing.T) {
		v := p.Decide(identity.New("d1", identity.BotNotDetected, score(65), 0))
		assert.Equal(t, DecisionChallenge, v.Decision)
	})

	t.Run("score below threshold accepts", func(t *testing.T) {
		v := p.Decide(identity.New("d1", identity.BotNotDetected, score(64.9), 0))
		assert.Equal(t, DecisionAccept, v.Decision)
	})

	t.Run("absent score accepts even under the strictest threshold", func(t *testing.T) {
		strict := New(0.1)
		v := strict.Decide(identity.New("d1", identity.BotNotDetected, nil, 0))
		assert.Equal(t, DecisionAccept, v.Decision)
	})
}

func TestNewThresholdFallback(t *testing.T) {
	assert.Equal(t, DefaultRiskThreshold, New(0).RiskThreshold())
	assert.Equal(t, DefaultRiskThreshold, New(-5).RiskThreshold())
	assert.Equal(t, DefaultRiskThreshold, New(150).RiskThreshold())
	assert.Equal(t, 50.0, New(50).RiskThreshold())
}
