package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"tagsmith/internal/config"
	"tagsmith/internal/llm"
	"tagsmith/internal/models"
	"tagsmith/internal/store"
)

// UsageService records token usage and cost per remote call and exposes
// the accumulated spend.
type UsageService struct {
	store   store.UsageStore
	pricing map[string]map[string]config.PricingInfo
}

func NewUsageService(us store.UsageStore, pricing map[string]map[string]config.PricingInfo) *UsageService {
	return &UsageService{store: us, pricing: pricing}
}

// RecordCall logs one remote model call. A failed write is logged and
// swallowed: accounting must never fail the call it accounts for.
func (s *UsageService) RecordCall(ctx context.Context, provider, model, operation string, usage llm.Usage) {
	if s.store == nil {
		return
	}
	rec := &models.UsageRecord{
		ID:           uuid.New(),
		Provider:     provider,
		Model:        model,
		Operation:    operation,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		CostUSD:      s.costFor(provider, model, usage.InputTokens, usage.OutputTokens),
	}
	if err := s.store.RecordUsage(ctx, rec); err != nil {
		log.Warnf("Failed to record usage for %s/%s: %v", provider, model, err)
	}
}

// costFor computes the call cost from the configured pricing table.
// Unpriced models cost zero.
func (s *UsageService) costFor(provider, model string, inputTokens, outputTokens int) float64 {
	price, ok := s.pricing[provider][model]
	if !ok {
		return 0
	}
	return float64(inputTokens)*price.InputPerToken + float64(outputTokens)*price.OutputPerToken
}

// ListUsage retrieves a paginated list of usage records, newest first.
func (s *UsageService) ListUsage(ctx context.Context, limit, offset int) ([]*models.UsageRecord, error) {
	records, err := s.store.ListUsage(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list usage records: %w", err)
	}
	return records, nil
}

// Summary returns the total cost and token counts across all recorded calls.
func (s *UsageService) Summary(ctx context.Context) (totalCost float64, totalInputTokens, totalOutputTokens int64, err error) {
	totalCost, totalInputTokens, totalOutputTokens, err = s.store.UsageSummary(ctx)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("usage summary: %w", err)
	}
	return totalCost, totalInputTokens, totalOutputTokens, nil
}
