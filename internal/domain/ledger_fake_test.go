package domain_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/davidbz/howl/internal/domain"
)

// fakeLedger is an in-memory LedgerStore. InTx serializes transactions and
// restores the previous state when fn returns an error.
type fakeLedger struct {
	mu sync.Mutex

	wallets    map[string]domain.Wallet
	records    map[string]domain.ConsumptionRecord
	summaries  map[string]domain.UserConsumeSummary
	listings   map[string]domain.MarketplaceListing
	devWallets map[string]domain.DeveloperWallet
	earnings   []domain.DeveloperEarning

	getWalletErr     error
	deductErr        error
	listingErr       error
	creditErr        error
	createEarningErr error

	// drainBeforeDeduct simulates a concurrent settlement spending the balance
	// between the wallet read and the guarded deduct.
	drainBeforeDeduct int64

	// missDeducts forces that many guarded deducts to match nothing, each after
	// adjusting the balance by adjustOnMiss, as concurrent writers would.
	missDeducts  int
	adjustOnMiss int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		wallets:    make(map[string]domain.Wallet),
		records:    make(map[string]domain.ConsumptionRecord),
		summaries:  make(map[string]domain.UserConsumeSummary),
		listings:   make(map[string]domain.MarketplaceListing),
		devWallets: make(map[string]domain.DeveloperWallet),
	}
}

type ledgerSnapshot struct {
	wallets    map[string]domain.Wallet
	records    map[string]domain.ConsumptionRecord
	summaries  map[string]domain.UserConsumeSummary
	listings   map[string]domain.MarketplaceListing
	devWallets map[string]domain.DeveloperWallet
	earnings   []domain.DeveloperEarning
}

func (f *fakeLedger) InTx(_ context.Context, fn func(repo domain.LedgerRepository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := f.snapshot()
	if err := fn(&fakeRepo{ledger: f}); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

func (f *fakeLedger) Repository() domain.LedgerRepository {
	return &lockedRepo{fakeRepo{ledger: f}}
}

func (f *fakeLedger) snapshot() ledgerSnapshot {
	return ledgerSnapshot{
		wallets:    copyMap(f.wallets),
		records:    copyMap(f.records),
		summaries:  copyMap(f.summaries),
		listings:   copyMap(f.listings),
		devWallets: copyMap(f.devWallets),
		earnings:   append([]domain.DeveloperEarning(nil), f.earnings...),
	}
}

func (f *fakeLedger) restore(s ledgerSnapshot) {
	f.wallets = s.wallets
	f.records = s.records
	f.summaries = s.summaries
	f.listings = s.listings
	f.devWallets = s.devWallets
	f.earnings = s.earnings
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (f *fakeLedger) setBalance(userID string, balance int64) {
	f.wallets[userID] = domain.Wallet{UserID: userID, VirtualBalance: balance, TotalCredited: balance}
}

func (f *fakeLedger) addPending(userID string, amounts ...int64) []string {
	ids := make([]string, 0, len(amounts))
	for _, amount := range amounts {
		id := fmt.Sprintf("%s-rec-%d", userID, len(f.records)+1)
		f.records[id] = domain.ConsumptionRecord{
			ID:     id,
			UserID: userID,
			Amount: amount,
			State:  domain.RecordStatePending,
		}
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeLedger) balance(userID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wallets[userID].VirtualBalance
}

func (f *fakeLedger) state(id string) domain.RecordState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[id].State
}

// fakeRepo operates on the ledger without locking; InTx holds the lock.
type fakeRepo struct {
	ledger *fakeLedger
}

func (r *fakeRepo) GetWallet(_ context.Context, userID string) (*domain.Wallet, error) {
	if r.ledger.getWalletErr != nil {
		return nil, r.ledger.getWalletErr
	}
	w, ok := r.ledger.wallets[userID]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *fakeRepo) Deduct(_ context.Context, userID string, amount int64) (bool, error) {
	if r.ledger.deductErr != nil {
		return false, r.ledger.deductErr
	}

	w, ok := r.ledger.wallets[userID]
	if !ok {
		return false, nil
	}
	if r.ledger.missDeducts > 0 {
		r.ledger.missDeducts--
		w.VirtualBalance += r.ledger.adjustOnMiss
		r.ledger.wallets[userID] = w
		return false, nil
	}
	if r.ledger.drainBeforeDeduct > 0 {
		w.VirtualBalance -= r.ledger.drainBeforeDeduct
		r.ledger.drainBeforeDeduct = 0
		r.ledger.wallets[userID] = w
	}
	if w.VirtualBalance < amount {
		return false, nil
	}

	w.VirtualBalance -= amount
	w.TotalConsumed += amount
	r.ledger.wallets[userID] = w
	return true, nil
}

func (r *fakeRepo) BulkUpdateRecordState(_ context.Context, ids []string, state domain.RecordState) (int64, error) {
	var updated int64
	for _, id := range ids {
		rec, ok := r.ledger.records[id]
		if !ok || rec.State != domain.RecordStatePending {
			continue
		}
		rec.State = state
		r.ledger.records[id] = rec
		updated++
	}
	return updated, nil
}

func (r *fakeRepo) IncrementSummary(
	_ context.Context,
	userID, provider string,
	amount int64,
	state domain.RecordState,
) error {
	key := userID + "|" + provider
	s := r.ledger.summaries[key]
	s.UserID = userID
	s.Provider = provider
	s.TotalAmount += amount
	s.TotalCount++
	if state == domain.RecordStateSuccess {
		s.SuccessCount++
	} else {
		s.FailedCount++
	}
	r.ledger.summaries[key] = s
	return nil
}

func (r *fakeRepo) CreditWallet(_ context.Context, userID string, amount int64) error {
	w := r.ledger.wallets[userID]
	w.UserID = userID
	w.GrantedBalance += amount
	w.VirtualBalance += amount
	w.TotalCredited += amount
	r.ledger.wallets[userID] = w
	return nil
}

func (r *fakeRepo) GetMarketplaceListing(_ context.Context, id string) (*domain.MarketplaceListing, error) {
	if r.ledger.listingErr != nil {
		return nil, r.ledger.listingErr
	}
	l, ok := r.ledger.listings[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *fakeRepo) UpsertMarketplaceListing(_ context.Context, listing *domain.MarketplaceListing) error {
	now := time.Now().UTC()
	l, ok := r.ledger.listings[listing.ID]
	if !ok {
		l = domain.MarketplaceListing{ID: listing.ID, CreatedAt: now}
	}
	l.OwnerID = listing.OwnerID
	l.Published = listing.Published
	l.ForkMode = listing.ForkMode
	l.UpdatedAt = now
	r.ledger.listings[listing.ID] = l
	return nil
}

func (r *fakeRepo) CreditDeveloperWallet(_ context.Context, developerID string, amount int64) error {
	if r.ledger.creditErr != nil {
		return r.ledger.creditErr
	}
	w := r.ledger.devWallets[developerID]
	w.DeveloperID = developerID
	w.AvailableBalance += amount
	w.TotalEarned += amount
	r.ledger.devWallets[developerID] = w
	return nil
}

func (r *fakeRepo) CreateDeveloperEarning(_ context.Context, earning *domain.DeveloperEarning) error {
	if r.ledger.createEarningErr != nil && earning.Status == domain.EarningStatusSettled {
		return r.ledger.createEarningErr
	}
	r.ledger.earnings = append(r.ledger.earnings, *earning)
	return nil
}

func (r *fakeRepo) CreateConsumptionRecords(_ context.Context, records []*domain.ConsumptionRecord) error {
	for _, rec := range records {
		if _, exists := r.ledger.records[rec.ID]; exists {
			return errors.New("duplicate record id")
		}
		r.ledger.records[rec.ID] = *rec
	}
	return nil
}

func (r *fakeRepo) GetConsumptionRecords(_ context.Context, ids []string) ([]domain.ConsumptionRecord, error) {
	out := make([]domain.ConsumptionRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := r.ledger.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetSummary(_ context.Context, userID, provider string) (*domain.UserConsumeSummary, error) {
	s, ok := r.ledger.summaries[userID+"|"+provider]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeRepo) GetDeveloperWallet(_ context.Context, developerID string) (*domain.DeveloperWallet, error) {
	w, ok := r.ledger.devWallets[developerID]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

// lockedRepo takes the ledger lock per call, like autocommit statements.
type lockedRepo struct {
	fakeRepo
}

func (r *lockedRepo) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	return r.fakeRepo.GetWallet(ctx, userID)
}

func (r *lockedRepo) GetMarketplaceListing(ctx context.Context, id string) (*domain.MarketplaceListing, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	return r.fakeRepo.GetMarketplaceListing(ctx, id)
}

func (r *lockedRepo) CreateDeveloperEarning(ctx context.Context, earning *domain.DeveloperEarning) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	return r.fakeRepo.CreateDeveloperEarning(ctx, earning)
}

func (r *lockedRepo) CreateConsumptionRecords(ctx context.Context, records []*domain.ConsumptionRecord) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	return r.fakeRepo.CreateConsumptionRecords(ctx, records)
}

func (r *lockedRepo) GetSummary(ctx context.Context, userID, provider string) (*domain.UserConsumeSummary, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	return r.fakeRepo.GetSummary(ctx, userID, provider)
}

func (r *lockedRepo) GetDeveloperWallet(ctx context.Context, developerID string) (*domain.DeveloperWallet, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	return r.fakeRepo.GetDeveloperWallet(ctx, developerID)
}

// staticListings is a ListingSource backed by a map.
type staticListings struct {
	listings map[string]*domain.MarketplaceListing
	err      error
}

func (s *staticListings) GetMarketplaceListing(_ context.Context, id string) (*domain.MarketplaceListing, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.listings[id], nil
}

// memoryGuard is a SettlementGuard backed by a map.
type memoryGuard struct {
	mu   sync.Mutex
	keys map[string]time.Duration
	err  error
}

func newMemoryGuard() *memoryGuard {
	return &memoryGuard{keys: make(map[string]time.Duration)}
}

func (g *memoryGuard) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	if _, ok := g.keys[key]; ok {
		return false, nil
	}
	g.keys[key] = ttl
	return true, nil
}

func (g *memoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}
