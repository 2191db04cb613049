package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/howl/internal/observability"
)

// Settlement outcomes reported to metrics and events.
const (
	OutcomeSuccess             = "success"
	OutcomeInsufficientBalance = "insufficient_balance"
	OutcomeDuplicate           = "duplicate"
	OutcomeError               = "error"
)

const settlementGuardPrefix = "settlement:"

// UsageEvent is one priced-and-recorded unit of model or tool usage.
type UsageEvent struct {
	UserID       string `json:"user_id"`
	Model        string `json:"model,omitempty"`
	Tier         Tier   `json:"tier,omitempty"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	TotalTokens  int64  `json:"total_tokens"`
	ToolCosts    int64  `json:"tool_costs"`
	SessionID    string `json:"session_id,omitempty"`
	TopicID      string `json:"topic_id,omitempty"`
	MessageID    string `json:"message_id,omitempty"`
}

// PricingContext returns the pricing input for the event.
func (u UsageEvent) PricingContext() PricingContext {
	return PricingContext{
		Tier:         u.Tier,
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		TotalTokens:  u.TotalTokens,
		ToolCosts:    u.ToolCosts,
	}
}

// Quote is a priced usage event that has not been recorded.
type Quote struct {
	Amount    int64     `json:"amount"`
	Breakdown Breakdown `json:"breakdown"`
}

// SettleTurnRequest settles one completed chat turn and, optionally, rewards the
// developer of the marketplace agent that served it.
type SettleTurnRequest struct {
	SettleRequest

	// AttemptID enables the settlement guard when one is configured.
	AttemptID string

	// Reward is set only when the consumed agent is a marketplace fork.
	Reward *RewardRequest
}

// SettlementResult is the outcome of a successful settlement.
type SettlementResult struct {
	Outcome string            `json:"outcome"`
	Charged int64             `json:"charged"`
	Earning *DeveloperEarning `json:"earning,omitempty"`
}

// BillingService records, prices and settles usage against the ledger store.
type BillingService struct {
	store    LedgerStore
	strategy PricingStrategy
	engine   *SettlementEngine
	rewards  *RevenueShareCalculator
	guard    SettlementGuard
	guardTTL time.Duration
	events   EventPublisher
	metrics  MetricsRecorder
}

// NewBillingService creates a billing service (DI constructor).
// guard, events and metrics may be nil.
func NewBillingService(
	store LedgerStore,
	strategy PricingStrategy,
	engine *SettlementEngine,
	rewards *RevenueShareCalculator,
	guard SettlementGuard,
	guardTTL time.Duration,
	events EventPublisher,
	metrics MetricsRecorder,
) *BillingService {
	return &BillingService{
		store:    store,
		strategy: strategy,
		engine:   engine,
		rewards:  rewards,
		guard:    guard,
		guardTTL: guardTTL,
		events:   events,
		metrics:  metrics,
	}
}

// Quote prices a usage event without recording it.
func (s *BillingService) Quote(_ context.Context, event UsageEvent) Quote {
	amount, breakdown := s.strategy.Calculate(event.PricingContext())
	return Quote{Amount: amount, Breakdown: breakdown}
}

// RecordUsage prices a usage event and stores it as a pending consumption record.
func (s *BillingService) RecordUsage(ctx context.Context, event UsageEvent) (*ConsumptionRecord, error) {
	if event.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}

	amount, breakdown := s.strategy.Calculate(event.PricingContext())

	now := time.Now().UTC()
	record := &ConsumptionRecord{
		ID:           uuid.New().String(),
		UserID:       event.UserID,
		Amount:       amount,
		State:        RecordStatePending,
		SessionID:    event.SessionID,
		TopicID:      event.TopicID,
		MessageID:    event.MessageID,
		Model:        event.Model,
		Tier:         event.Tier,
		InputTokens:  breakdown.InputTokens,
		OutputTokens: breakdown.OutputTokens,
		TotalTokens:  breakdown.TotalTokens,
		ToolCosts:    breakdown.ToolCosts,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Repository().CreateConsumptionRecords(ctx, []*ConsumptionRecord{record}); err != nil {
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}

	observability.FromContext(ctx).Info("usage recorded",
		observability.String("record_id", record.ID),
		observability.Int64("amount", amount),
		observability.Bool("free", breakdown.Free))

	return record, nil
}

// SettleTurn settles the batch in one transaction and then, if the settlement
// succeeded and a reward is requested, credits the developer in a second one.
// A failed reward never fails the settlement.
//
// The settlement transaction runs detached from ctx cancellation so a caller
// timeout cannot abandon it part-way.
func (s *BillingService) SettleTurn(ctx context.Context, req SettleTurnRequest) (*SettlementResult, error) {
	ctx = observability.WithUserID(ctx, req.UserID)
	if req.AttemptID != "" {
		ctx = observability.WithAttemptID(ctx, req.AttemptID)
	}
	txCtx := context.WithoutCancel(ctx)
	logger := observability.FromContext(ctx)

	guardKey, err := s.acquireGuard(txCtx, req.AttemptID)
	if err != nil {
		if errors.Is(err, ErrDuplicateSettlement) {
			s.recordSettlement(OutcomeDuplicate, 0)
		} else {
			s.recordSettlement(OutcomeError, 0)
		}
		return nil, err
	}

	var rejection *InsufficientBalanceError
	err = s.store.InTx(txCtx, func(repo LedgerRepository) error {
		settleErr := s.engine.Settle(txCtx, repo, req.SettleRequest)
		if errors.As(settleErr, &rejection) {
			// Commit the failed transitions; the rejection is reported below.
			return nil
		}
		return settleErr
	})
	if err != nil {
		s.releaseGuard(txCtx, guardKey)
		s.recordSettlement(OutcomeError, 0)
		logger.Error("settlement failed", observability.Error(err))
		return nil, err
	}

	if rejection != nil {
		s.recordSettlement(OutcomeInsufficientBalance, 0)
		s.publish(ctx, "settlement.rejected", map[string]interface{}{
			"user_id":   req.UserID,
			"required":  rejection.Required,
			"available": rejection.Available,
			"records":   len(req.RecordIDs),
		})
		return nil, rejection
	}

	s.recordSettlement(OutcomeSuccess, req.TotalAmount)
	s.publish(ctx, "settlement.succeeded", map[string]interface{}{
		"user_id": req.UserID,
		"amount":  req.TotalAmount,
		"records": len(req.RecordIDs),
	})

	result := &SettlementResult{
		Outcome: OutcomeSuccess,
		Charged: req.TotalAmount,
	}

	if req.Reward != nil {
		result.Earning = s.processReward(txCtx, req)
	}

	return result, nil
}

// GrantCredits adds granted credits to the user's wallet and returns the updated wallet.
func (s *BillingService) GrantCredits(ctx context.Context, userID string, amount int64) (*Wallet, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: grant must be positive", ErrInvalidAmount)
	}

	var wallet *Wallet
	err := s.store.InTx(ctx, func(repo LedgerRepository) error {
		if err := repo.CreditWallet(ctx, userID, amount); err != nil {
			return err
		}

		var err error
		wallet, err = repo.GetWallet(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to grant credits: %w", err)
	}

	observability.FromContext(ctx).Info("credits granted",
		observability.String("user_id", userID),
		observability.Int64("amount", amount),
		observability.Int64("balance", virtualBalance(wallet)))

	return wallet, nil
}

// GetWallet returns the user's wallet, or nil if none exists.
func (s *BillingService) GetWallet(ctx context.Context, userID string) (*Wallet, error) {
	return s.store.Repository().GetWallet(ctx, userID)
}

// GetSummary returns the user's consumption rollup for provider, or nil.
func (s *BillingService) GetSummary(ctx context.Context, userID, provider string) (*UserConsumeSummary, error) {
	return s.store.Repository().GetSummary(ctx, userID, provider)
}

// GetDeveloperWallet returns the developer's wallet, or nil if none exists.
func (s *BillingService) GetDeveloperWallet(ctx context.Context, developerID string) (*DeveloperWallet, error) {
	return s.store.Repository().GetDeveloperWallet(ctx, developerID)
}

func (s *BillingService) processReward(ctx context.Context, req SettleTurnRequest) *DeveloperEarning {
	reward := *req.Reward
	if reward.ConsumerUserID == "" {
		reward.ConsumerUserID = req.UserID
	}
	if reward.TotalConsumed == 0 {
		reward.TotalConsumed = req.TotalAmount
	}

	logger := observability.FromContext(ctx)

	var earning *DeveloperEarning
	err := s.store.InTx(ctx, func(repo LedgerRepository) error {
		var rewardErr error
		earning, rewardErr = s.rewards.ProcessReward(ctx, repo, reward)
		return rewardErr
	})
	if err != nil {
		logger.Error("developer reward failed", observability.Error(err),
			observability.String("developer_id", reward.DeveloperUserID))

		failed := s.rewards.FailedEarning(reward, err)
		if recordErr := s.store.Repository().CreateDeveloperEarning(ctx, failed); recordErr != nil {
			logger.Error("failed to record failed developer earning", observability.Error(recordErr))
		}
		s.recordReward(failed)
		return nil
	}

	if earning != nil {
		s.recordReward(earning)
		s.publish(ctx, "reward.credited", map[string]interface{}{
			"developer_id":   earning.DeveloperID,
			"marketplace_id": earning.MarketplaceID,
			"fork_mode":      string(earning.ForkMode),
			"amount":         earning.Amount,
		})
	}

	return earning
}

func (s *BillingService) acquireGuard(ctx context.Context, attemptID string) (string, error) {
	if s.guard == nil || attemptID == "" {
		return "", nil
	}

	key := settlementGuardPrefix + attemptID
	acquired, err := s.guard.Acquire(ctx, key, s.guardTTL)
	if err != nil {
		return "", fmt.Errorf("failed to acquire settlement guard: %w", err)
	}
	if !acquired {
		return "", fmt.Errorf("%w: %s", ErrDuplicateSettlement, attemptID)
	}

	return key, nil
}

func (s *BillingService) releaseGuard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.guard.Release(ctx, key); err != nil {
		observability.FromContext(ctx).Warn("failed to release settlement guard",
			observability.String("key", key), observability.Error(err))
	}
}

func (s *BillingService) recordSettlement(outcome string, amount int64) {
	if s.metrics != nil {
		s.metrics.RecordSettlement(outcome, amount)
	}
}

func (s *BillingService) recordReward(earning *DeveloperEarning) {
	if s.metrics != nil {
		s.metrics.RecordReward(string(earning.ForkMode), string(earning.Status), earning.Amount)
	}
}

func (s *BillingService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.events != nil {
		s.events.Publish(ctx, eventType, data)
	}
}
