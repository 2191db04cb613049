package domain

import (
	"context"
	"time"
)

// LedgerRepository is the ledger store seen through one transactional boundary.
// Every method of a repository handed out by LedgerStore.InTx runs in that transaction.
type LedgerRepository interface {
	// GetWallet returns the user's wallet, or nil if the user has none.
	GetWallet(ctx context.Context, userID string) (*Wallet, error)

	// Deduct atomically subtracts amount from the virtual balance if it covers it.
	// It reports false, without writing, when the balance is short.
	Deduct(ctx context.Context, userID string, amount int64) (bool, error)

	// BulkUpdateRecordState moves pending records to state and returns how many moved.
	// Records that are no longer pending are left untouched.
	BulkUpdateRecordState(ctx context.Context, ids []string, state RecordState) (int64, error)

	// IncrementSummary adds one settlement outcome to the (user, provider) rollup.
	IncrementSummary(ctx context.Context, userID, provider string, amount int64, state RecordState) error

	// CreditWallet adds granted credits to the user's wallet, creating it if absent.
	CreditWallet(ctx context.Context, userID string, amount int64) error

	// GetMarketplaceListing returns the listing, or nil if it does not exist.
	GetMarketplaceListing(ctx context.Context, id string) (*MarketplaceListing, error)

	// UpsertMarketplaceListing creates the listing or replaces its owner, publication and fork mode.
	UpsertMarketplaceListing(ctx context.Context, listing *MarketplaceListing) error

	// CreditDeveloperWallet adds amount to the developer's available and lifetime balances.
	CreditDeveloperWallet(ctx context.Context, developerID string, amount int64) error

	// CreateDeveloperEarning inserts a reward event.
	CreateDeveloperEarning(ctx context.Context, earning *DeveloperEarning) error

	// CreateConsumptionRecords inserts new records.
	CreateConsumptionRecords(ctx context.Context, records []*ConsumptionRecord) error

	// GetConsumptionRecords returns the records with the given ids.
	GetConsumptionRecords(ctx context.Context, ids []string) ([]ConsumptionRecord, error)

	// GetSummary returns the rollup for (user, provider), or nil if none exists.
	GetSummary(ctx context.Context, userID, provider string) (*UserConsumeSummary, error)

	// GetDeveloperWallet returns the developer wallet, or nil if none exists.
	GetDeveloperWallet(ctx context.Context, developerID string) (*DeveloperWallet, error)
}

// LedgerStore hands out repositories bound to a transaction or to the raw store.
type LedgerStore interface {
	// InTx runs fn in one transaction, committing if fn returns nil.
	InTx(ctx context.Context, fn func(repo LedgerRepository) error) error

	// Repository returns a repository outside any explicit transaction.
	Repository() LedgerRepository
}

// ListingSource resolves marketplace listings for reward processing.
type ListingSource interface {
	GetMarketplaceListing(ctx context.Context, id string) (*MarketplaceListing, error)
}

// ListingInvalidator drops any cached copy of a listing after it is written.
type ListingInvalidator interface {
	Invalidate(ctx context.Context, id string) error
}

// SettlementGuard rejects reuse of a settlement attempt id.
type SettlementGuard interface {
	// Acquire claims key and reports false if it was already claimed.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees key so the attempt can be retried.
	Release(ctx context.Context, key string) error
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}

// MetricsRecorder counts billing outcomes.
type MetricsRecorder interface {
	RecordSettlement(outcome string, amount int64)
	RecordReward(forkMode string, status string, amount int64)
}
