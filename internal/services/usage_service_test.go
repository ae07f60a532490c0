package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsmith/internal/config"
	"tagsmith/internal/llm"
)

func TestUsageServiceRecordsCost(t *testing.T) {
	s := openTestStore(t)
	pricing := map[string]map[string]config.PricingInfo{
		"openai": {
			"gpt-4o-mini": {InputPerToken: 0.00000015, OutputPerToken: 0.0000006},
		},
	}
	svc := NewUsageService(s, pricing)
	ctx := context.Background()

	svc.RecordCall(ctx, "openai", "gpt-4o-mini", "tagging", llm.Usage{InputTokens: 1000, OutputTokens: 500})
	// Unpriced models record with zero cost rather than erroring.
	svc.RecordCall(ctx, "anthropic", "claude-haiku", "tagging", llm.Usage{InputTokens: 200, OutputTokens: 100})

	records, err := svc.ListUsage(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	totalCost, inTok, outTok, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1000*0.00000015+500*0.0000006, totalCost, 1e-9)
	assert.Equal(t, int64(1200), inTok)
	assert.Equal(t, int64(600), outTok)
}

func TestUsageServiceNilStore(t *testing.T) {
	svc := NewUsageService(nil, nil)
	// Must not panic when accounting is unavailable.
	svc.RecordCall(context.Background(), "openai", "gpt-4o-mini", "tagging", llm.Usage{})
}
