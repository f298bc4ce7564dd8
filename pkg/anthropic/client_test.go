package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCost(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}

	cost := u.EstimateCost("claude-haiku-4-5-20251001")
	assert.InDelta(t, 0.80+2.00, cost, 0.001)

	cost = u.EstimateCost("claude-sonnet-4-5-20250929")
	assert.InDelta(t, 3.00+7.50, cost, 0.001)

	assert.Zero(t, u.EstimateCost("unknown-model"))
}

func TestEstimateCostZeroUsage(t *testing.T) {
	var u TokenUsage
	assert.Zero(t, u.EstimateCost("claude-haiku-4-5-20251001"))
}
