package domain

import (
	"context"
	"fmt"

	"github.com/davidbz/howl/internal/observability"
)

// ListingService writes marketplace listings and keeps the listing cache coherent.
type ListingService struct {
	store       LedgerStore
	invalidator ListingInvalidator
}

// NewListingService creates a listing service (DI constructor).
// invalidator may be nil when listings are not cached.
func NewListingService(store LedgerStore, invalidator ListingInvalidator) *ListingService {
	return &ListingService{
		store:       store,
		invalidator: invalidator,
	}
}

// Save creates or updates a listing and returns the stored row. Rewards see the new
// publication state on their next lookup.
func (s *ListingService) Save(ctx context.Context, listing MarketplaceListing) (*MarketplaceListing, error) {
	if listing.ID == "" {
		return nil, fmt.Errorf("%w: listing id is required", ErrInvalidRequest)
	}
	if listing.ForkMode != ForkModeEditable && listing.ForkMode != ForkModeLocked {
		return nil, fmt.Errorf("%w: unknown fork mode %q", ErrInvalidRequest, listing.ForkMode)
	}

	var saved *MarketplaceListing
	err := s.store.InTx(ctx, func(repo LedgerRepository) error {
		if err := repo.UpsertMarketplaceListing(ctx, &listing); err != nil {
			return err
		}

		var err error
		saved, err = repo.GetMarketplaceListing(ctx, listing.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save marketplace listing: %w", err)
	}

	logger := observability.FromContext(ctx).With(observability.String("marketplace_id", listing.ID))

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, listing.ID); err != nil {
			// The cached copy expires on its own TTL.
			logger.Warn("listing cache invalidation failed", observability.Error(err))
		}
	}

	logger.Info("marketplace listing saved",
		observability.Bool("published", listing.Published),
		observability.String("fork_mode", string(listing.ForkMode)))

	return saved, nil
}

// Get returns the stored listing, or nil if it does not exist.
func (s *ListingService) Get(ctx context.Context, id string) (*MarketplaceListing, error) {
	return s.store.Repository().GetMarketplaceListing(ctx, id)
}
