package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/davidbz/howl/internal/cache/redis"
	"github.com/davidbz/howl/internal/cache/ristretto"
	"github.com/davidbz/howl/internal/cache/tiered"
	"github.com/davidbz/howl/internal/config"
	"github.com/davidbz/howl/internal/domain"
	"github.com/davidbz/howl/internal/httpserver"
	"github.com/davidbz/howl/internal/httpserver/middleware"
	"github.com/davidbz/howl/internal/observability"
	"github.com/davidbz/howl/internal/provider/openai"
	"github.com/davidbz/howl/internal/store/sqlstore"
)

const (
	redisKeyPrefix  = "howl:"
	l1ListingExpiry = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	container := buildContainer()

	// The logger is requested first so it is initialized before any other component.
	err := container.Invoke(func(_ *zap.Logger, server *httpserver.Server) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			if err != nil {
				log.Fatalf("Server failed to start: %v", err)
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server shutdown failed: %v", err)
			}
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(observability.NewMetrics); err != nil {
		log.Fatalf("Failed to provide metrics: %v", err)
	}
	if err := container.Provide(func(m *observability.Metrics) domain.MetricsRecorder {
		return m
	}); err != nil {
		log.Fatalf("Failed to provide metrics recorder: %v", err)
	}
	if err := container.Provide(func(logger *zap.Logger) domain.EventPublisher {
		return observability.NewEventBus(logger)
	}); err != nil {
		log.Fatalf("Failed to provide event bus: %v", err)
	}

	// Ledger Store
	if err := container.Provide(sqlstore.Open); err != nil {
		log.Fatalf("Failed to provide database: %v", err)
	}
	if err := container.Provide(func(db *gorm.DB) *sqlstore.Store {
		return sqlstore.NewStore(db)
	}); err != nil {
		log.Fatalf("Failed to provide ledger store: %v", err)
	}
	if err := container.Provide(func(store *sqlstore.Store) domain.LedgerStore {
		return store
	}); err != nil {
		log.Fatalf("Failed to provide ledger store interface: %v", err)
	}

	// Redis (optional)
	if err := container.Provide(provideRedis); err != nil {
		log.Fatalf("Failed to provide redis client: %v", err)
	}
	if err := container.Provide(provideSettlementGuard); err != nil {
		log.Fatalf("Failed to provide settlement guard: %v", err)
	}
	if err := container.Provide(provideListingSource); err != nil {
		log.Fatalf("Failed to provide listing source: %v", err)
	}

	// Domain Services
	if err := container.Provide(providePricingStrategy); err != nil {
		log.Fatalf("Failed to provide pricing strategy: %v", err)
	}
	if err := container.Provide(domain.NewSettlementEngine); err != nil {
		log.Fatalf("Failed to provide settlement engine: %v", err)
	}
	if err := container.Provide(func(
		listings domain.ListingSource,
		cfg *config.RevenueShareConfig,
	) *domain.RevenueShareCalculator {
		return domain.NewRevenueShareCalculator(listings, domain.ParseRewardRates(cfg.Rates))
	}); err != nil {
		log.Fatalf("Failed to provide revenue share calculator: %v", err)
	}
	if err := container.Provide(func(
		store domain.LedgerStore,
		strategy domain.PricingStrategy,
		engine *domain.SettlementEngine,
		rewards *domain.RevenueShareCalculator,
		guard domain.SettlementGuard,
		cfg *config.SettlementConfig,
		events domain.EventPublisher,
		metrics domain.MetricsRecorder,
	) *domain.BillingService {
		guardTTL := time.Duration(cfg.GuardTTL) * time.Second
		return domain.NewBillingService(store, strategy, engine, rewards, guard, guardTTL, events, metrics)
	}); err != nil {
		log.Fatalf("Failed to provide billing service: %v", err)
	}

	if err := container.Provide(domain.NewListingService); err != nil {
		log.Fatalf("Failed to provide listing service: %v", err)
	}

	// OpenAI usage mapping
	if err := container.Provide(openai.DefaultModelTiers); err != nil {
		log.Fatalf("Failed to provide model tiers: %v", err)
	}
	if err := container.Provide(openai.NewUsageMapper); err != nil {
		log.Fatalf("Failed to provide usage mapper: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(httpserver.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(httpserver.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}

// provideRedis returns nil when no redis address is configured.
func provideRedis(cfg *config.RedisConfig) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	return redis.NewClient(cfg)
}

func provideSettlementGuard(cfg *config.SettlementConfig, client *goredis.Client) domain.SettlementGuard {
	if !cfg.GuardEnabled {
		return nil
	}
	if client == nil {
		observability.FromContext(context.Background()).Warn("settlement guard enabled without redis, guard disabled")
		return nil
	}

	return redis.NewSettlementGuard(client, redisKeyPrefix)
}

type listingDeps struct {
	dig.Out

	Source      domain.ListingSource
	Invalidator domain.ListingInvalidator
}

// provideListingSource caches listings in process, backed by redis when available.
// The invalidator is nil when the cache is disabled.
func provideListingSource(
	cfg *config.ListingCacheConfig,
	store *sqlstore.Store,
	client *goredis.Client,
) (listingDeps, error) {
	origin := store.Repository()
	if !cfg.Enabled {
		return listingDeps{Source: origin}, nil
	}

	l1, err := ristretto.New(cfg.MaxCost, cfg.NumCounters)
	if err != nil {
		return listingDeps{}, fmt.Errorf("failed to create listing cache: %w", err)
	}

	var cache domain.Cache = l1
	if client != nil {
		cache = tiered.New(l1, redis.NewCache(client, redisKeyPrefix), l1ListingExpiry)
	}

	cached := domain.NewListingCacheService(origin, cache, time.Duration(cfg.TTL)*time.Second)
	return listingDeps{Source: cached, Invalidator: cached}, nil
}

func providePricingStrategy(cfg *config.PricingConfig) (domain.PricingStrategy, error) {
	multipliers := domain.ParseTierMultipliers(cfg.TierMultipliers)

	registry := domain.NewStrategyRegistry()
	if err := errors.Join(
		registry.Register(domain.StrategyTiered, domain.NewTieredStrategy(domain.RateTable{
			InputRate:  cfg.InputRate,
			OutputRate: cfg.OutputRate,
		}, multipliers)),
		registry.Register(domain.StrategyFlat, domain.NewFlatRateStrategy(cfg.FlatPerEvent, multipliers)),
	); err != nil {
		return nil, err
	}

	return registry.Get(cfg.Strategy)
}
