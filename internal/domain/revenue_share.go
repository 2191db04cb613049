package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/howl/internal/observability"
)

// RewardRates maps a fork mode to the share of consumption paid to the developer.
type RewardRates map[ForkMode]float64

// DefaultRewardRates returns the built-in revenue-share rates.
func DefaultRewardRates() RewardRates {
	return RewardRates{
		ForkModeEditable: 0.30,
		ForkModeLocked:   0.03,
	}
}

// ParseRewardRates converts configured fork mode names into reward rates.
func ParseRewardRates(raw map[string]float64) RewardRates {
	rates := make(RewardRates, len(raw))
	for name, rate := range raw {
		rates[ForkMode(strings.ToLower(strings.TrimSpace(name)))] = rate
	}
	return rates
}

// Rate returns the rate for mode; unrecognized modes earn nothing.
func (r RewardRates) Rate(mode ForkMode) float64 {
	rate, ok := r[mode]
	if !ok || rate < 0 {
		return 0
	}
	return rate
}

// RewardRequest describes a settled consumption of a marketplace-forked agent.
type RewardRequest struct {
	DeveloperUserID string
	ConsumerUserID  string
	MarketplaceID   string
	TotalConsumed   int64
	SessionID       string
	TopicID         string
	MessageID       string
}

// RevenueShareCalculator credits developers a share of what their agents consumed.
type RevenueShareCalculator struct {
	listings ListingSource
	rates    RewardRates
}

// NewRevenueShareCalculator creates a calculator (DI constructor).
// A nil listings source falls back to the transaction's repository.
func NewRevenueShareCalculator(listings ListingSource, rates RewardRates) *RevenueShareCalculator {
	if rates == nil {
		rates = DefaultRewardRates()
	}

	return &RevenueShareCalculator{
		listings: listings,
		rates:    rates,
	}
}

// ComputeReward returns floor(total * rate) for the fork mode, and the rate applied.
func (c *RevenueShareCalculator) ComputeReward(total int64, mode ForkMode) (int64, float64) {
	rate := c.rates.Rate(mode)
	if total <= 0 || rate == 0 {
		return 0, rate
	}
	return int64(math.Floor(float64(total)*rate + floorEpsilon)), rate
}

// ProcessReward records a settled earning and credits the developer wallet in repo's
// transaction. It returns nil without error whenever no reward is due, including
// when the listing cannot be resolved. Only write failures are returned.
//
// It must only be called after the consumption's settlement has committed.
func (c *RevenueShareCalculator) ProcessReward(
	ctx context.Context,
	repo LedgerRepository,
	req RewardRequest,
) (*DeveloperEarning, error) {
	logger := observability.FromContext(ctx).With(
		observability.String("developer_id", req.DeveloperUserID),
		observability.String("marketplace_id", req.MarketplaceID))

	if req.DeveloperUserID == req.ConsumerUserID {
		logger.Debug("self-usage earns no reward")
		return nil, nil
	}

	if req.TotalConsumed <= 0 {
		return nil, nil
	}

	listing, err := c.lookupListing(ctx, repo, req.MarketplaceID)
	if err != nil {
		logger.Warn("marketplace listing lookup failed, skipping reward", observability.Error(err))
		return nil, nil
	}

	if listing == nil || !listing.Published {
		logger.Info("marketplace listing missing or unpublished, skipping reward")
		return nil, nil
	}

	if listing.IsOfficial() {
		return nil, nil
	}

	amount, rate := c.ComputeReward(req.TotalConsumed, listing.ForkMode)
	if amount <= 0 {
		logger.Debug("reward rounds to zero",
			observability.String("fork_mode", string(listing.ForkMode)),
			observability.Int64("total_consumed", req.TotalConsumed))
		return nil, nil
	}

	earning := &DeveloperEarning{
		ID:            uuid.New().String(),
		DeveloperID:   req.DeveloperUserID,
		MarketplaceID: req.MarketplaceID,
		ConsumerID:    req.ConsumerUserID,
		ForkMode:      listing.ForkMode,
		Rate:          rate,
		Amount:        amount,
		TotalConsumed: req.TotalConsumed,
		Status:        EarningStatusSettled,
		SessionID:     req.SessionID,
		TopicID:       req.TopicID,
		MessageID:     req.MessageID,
		CreatedAt:     time.Now().UTC(),
	}

	if err := repo.CreateDeveloperEarning(ctx, earning); err != nil {
		return nil, fmt.Errorf("failed to record developer earning: %w", err)
	}

	if err := repo.CreditDeveloperWallet(ctx, req.DeveloperUserID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit developer wallet: %w", err)
	}

	logger.Info("developer reward credited",
		observability.String("fork_mode", string(listing.ForkMode)),
		observability.Float64("rate", rate),
		observability.Int64("amount", amount))

	return earning, nil
}

// FailedEarning builds the audit record for a reward that could not be credited.
func (c *RevenueShareCalculator) FailedEarning(req RewardRequest, cause error) *DeveloperEarning {
	return &DeveloperEarning{
		ID:            uuid.New().String(),
		DeveloperID:   req.DeveloperUserID,
		MarketplaceID: req.MarketplaceID,
		ConsumerID:    req.ConsumerUserID,
		TotalConsumed: req.TotalConsumed,
		Status:        EarningStatusFailed,
		SessionID:     req.SessionID,
		TopicID:       req.TopicID,
		MessageID:     req.MessageID,
		FailureReason: cause.Error(),
		CreatedAt:     time.Now().UTC(),
	}
}

func (c *RevenueShareCalculator) lookupListing(
	ctx context.Context,
	repo LedgerRepository,
	id string,
) (*MarketplaceListing, error) {
	if id == "" {
		return nil, nil
	}

	if c.listings != nil {
		return c.listings.GetMarketplaceListing(ctx, id)
	}

	return repo.GetMarketplaceListing(ctx, id)
}
