package domain

import (
	"context"
	"fmt"

	"github.com/davidbz/howl/internal/observability"
)

// SettleRequest identifies a batch of pending records and the credits they cost.
type SettleRequest struct {
	UserID       string
	AuthProvider string
	RecordIDs    []string
	TotalAmount  int64
}

// SettlementEngine turns a batch of pending records into a definitive outcome
// tied to a balance deduction. It holds no state; all state lives in the store.
type SettlementEngine struct{}

// NewSettlementEngine creates a settlement engine (DI constructor).
func NewSettlementEngine() *SettlementEngine {
	return &SettlementEngine{}
}

// Settle charges req.TotalAmount to the user and marks the batch success, or marks
// it failed and returns *InsufficientBalanceError when the balance does not cover it.
//
// repo must be bound to the caller's transaction. On InsufficientBalanceError the
// failed transitions are part of that transaction and the caller should commit it;
// any other error means the transaction must be rolled back.
//
// Settle is not idempotent: settling the same batch twice deducts twice.
// Callers must invoke it at most once per batch.
func (e *SettlementEngine) Settle(ctx context.Context, repo LedgerRepository, req SettleRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}

	if req.TotalAmount < 0 {
		return ErrInvalidAmount
	}

	logger := observability.FromContext(ctx)

	// Zero-cost turns are never blocked by balance checks.
	if req.TotalAmount == 0 {
		return e.transition(ctx, repo, req.RecordIDs, RecordStateSuccess)
	}

	wallet, err := repo.GetWallet(ctx, req.UserID)
	if err != nil {
		return fmt.Errorf("failed to read wallet: %w", err)
	}

	available := virtualBalance(wallet)
	if available < req.TotalAmount {
		return e.reject(ctx, repo, req, available)
	}

	deducted, err := repo.Deduct(ctx, req.UserID, req.TotalAmount)
	if err != nil {
		return fmt.Errorf("failed to deduct balance: %w", err)
	}

	if !deducted {
		// A concurrent writer changed the balance between the read and the deduct.
		logger.Warn("guarded deduct matched no wallet row",
			observability.Int64("required", req.TotalAmount),
			observability.Int64("observed_balance", available))

		wallet, err = repo.GetWallet(ctx, req.UserID)
		if err != nil {
			return fmt.Errorf("failed to re-read wallet: %w", err)
		}
		available = virtualBalance(wallet)

		// A top-up landed in between: retry once against the fresh balance.
		if available >= req.TotalAmount {
			deducted, err = repo.Deduct(ctx, req.UserID, req.TotalAmount)
			if err != nil {
				return fmt.Errorf("failed to deduct balance: %w", err)
			}
		}

		if !deducted {
			// The reported balance never covers the charge, even if it moved again.
			return e.reject(ctx, repo, req, min(available, req.TotalAmount-1))
		}
	}

	if err := repo.IncrementSummary(ctx, req.UserID, req.AuthProvider, req.TotalAmount, RecordStateSuccess); err != nil {
		return fmt.Errorf("failed to update consumption summary: %w", err)
	}

	if err := e.transition(ctx, repo, req.RecordIDs, RecordStateSuccess); err != nil {
		return err
	}

	logger.Info("settlement succeeded",
		observability.Int64("amount", req.TotalAmount),
		observability.Int("records", len(req.RecordIDs)),
		observability.Int64("balance_before", available))

	return nil
}

func (e *SettlementEngine) reject(ctx context.Context, repo LedgerRepository, req SettleRequest, available int64) error {
	if err := e.transition(ctx, repo, req.RecordIDs, RecordStateFailed); err != nil {
		return err
	}

	observability.FromContext(ctx).Info("settlement rejected for insufficient balance",
		observability.Int64("required", req.TotalAmount),
		observability.Int64("available", available),
		observability.Int("records", len(req.RecordIDs)))

	return &InsufficientBalanceError{
		Required:  req.TotalAmount,
		Available: available,
	}
}

func (e *SettlementEngine) transition(ctx context.Context, repo LedgerRepository, ids []string, state RecordState) error {
	if len(ids) == 0 {
		return nil
	}

	updated, err := repo.BulkUpdateRecordState(ctx, ids, state)
	if err != nil {
		return fmt.Errorf("failed to mark records %s: %w", state, err)
	}

	if updated != int64(len(ids)) {
		observability.FromContext(ctx).Warn("some records were not pending",
			observability.String("state", string(state)),
			observability.Int("requested", len(ids)),
			observability.Int64("updated", updated))
	}

	return nil
}

func virtualBalance(wallet *Wallet) int64 {
	if wallet == nil {
		return 0
	}
	return wallet.VirtualBalance
}
