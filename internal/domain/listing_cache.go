package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/davidbz/howl/internal/observability"
)

const listingCachePrefix = "listing:"

// ListingCacheService fronts a ListingSource with a Cache.
// Only published listings are cached, so a listing that is missing or unpublished
// is re-read from the origin on every lookup and starts earning as soon as it is
// published. Unpublishing goes through Invalidate. Cache failures degrade to the
// origin and are never returned.
type ListingCacheService struct {
	origin ListingSource
	cache  Cache
	ttl    time.Duration
}

// NewListingCacheService creates a cached listing source.
func NewListingCacheService(origin ListingSource, cache Cache, ttl time.Duration) *ListingCacheService {
	return &ListingCacheService{
		origin: origin,
		cache:  cache,
		ttl:    ttl,
	}
}

// GetMarketplaceListing returns the listing from cache, loading it from the origin on a miss.
func (s *ListingCacheService) GetMarketplaceListing(ctx context.Context, id string) (*MarketplaceListing, error) {
	logger := observability.FromContext(ctx).With(observability.String("marketplace_id", id))
	key := listingCachePrefix + id

	data, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("listing cache get failed", observability.Error(err))
	}

	if found {
		var cached MarketplaceListing
		if unmarshalErr := json.Unmarshal(data, &cached); unmarshalErr == nil {
			logger.Debug("listing cache hit")
			return &cached, nil
		}
		logger.Warn("dropping undecodable listing cache entry")
		_ = s.cache.Delete(ctx, key)
	}

	listing, err := s.origin.GetMarketplaceListing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace listing: %w", err)
	}

	if listing == nil || !listing.Published {
		return listing, nil
	}

	data, err = json.Marshal(listing)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal marketplace listing: %w", err)
	}

	if setErr := s.cache.Set(ctx, key, data, s.ttl); setErr != nil {
		logger.Warn("listing cache set failed", observability.Error(setErr))
	}

	return listing, nil
}

// Invalidate drops the cached listing so the next read goes to the origin.
func (s *ListingCacheService) Invalidate(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, listingCachePrefix+id)
}
