package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/howl/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("should load config with defaults", func(t *testing.T) {
		// Clear environment
		os.Clearenv()

		cfg := config.Load()

		require.NotNil(t, cfg)

		// Verify defaults
		require.Equal(t, 8080, cfg.Server.Port)
		require.Equal(t, 30, cfg.Server.ReadTimeout)
		require.Equal(t, 30, cfg.Server.WriteTimeout)
		require.Equal(t, "sqlite", cfg.Database.Type)
		require.Contains(t, cfg.Database.DSN, "howl.db")
		require.True(t, cfg.Database.AutoMigrate)
		require.Empty(t, cfg.Redis.Addr)
		require.Equal(t, "tiered", cfg.Pricing.Strategy)
		require.InDelta(t, 1.0, cfg.Pricing.InputRate, 1e-9)
		require.InDelta(t, 2.0, cfg.Pricing.OutputRate, 1e-9)
		require.Equal(t, map[string]float64{"lite": 0, "standard": 1, "pro": 1.5, "ultra": 3}, cfg.Pricing.TierMultipliers)
		require.Equal(t, map[string]float64{"editable": 0.30, "locked": 0.03}, cfg.RevenueShare.Rates)
		require.False(t, cfg.Settlement.GuardEnabled)
		require.Equal(t, 86400, cfg.Settlement.GuardTTL)
		require.Equal(t, 60, cfg.ListingCache.TTL)
		require.True(t, cfg.ListingCache.Enabled)
	})

	t.Run("should load config from environment variables", func(t *testing.T) {
		// Set environment variables using t.Setenv for automatic cleanup
		t.Setenv("SERVER_PORT", "9000")
		t.Setenv("SERVER_READ_TIMEOUT", "60")
		t.Setenv("SERVER_WRITE_TIMEOUT", "60")
		t.Setenv("DB_TYPE", "postgres")
		t.Setenv("DB_DSN", "host=localhost user=howl dbname=howl sslmode=disable")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("PRICING_STRATEGY", "flat")
		t.Setenv("PRICING_FLAT_PER_EVENT", "25")
		t.Setenv("PRICING_TIER_MULTIPLIERS", "lite:0.5,ultra:4")
		t.Setenv("REVENUE_SHARE_RATES", "editable:0.5")
		t.Setenv("SETTLEMENT_GUARD_ENABLED", "true")

		cfg := config.Load()

		require.NotNil(t, cfg)

		// Verify loaded values
		require.Equal(t, 9000, cfg.Server.Port)
		require.Equal(t, 60, cfg.Server.ReadTimeout)
		require.Equal(t, 60, cfg.Server.WriteTimeout)
		require.Equal(t, "postgres", cfg.Database.Type)
		require.Equal(t, "host=localhost user=howl dbname=howl sslmode=disable", cfg.Database.DSN)
		require.Equal(t, "localhost:6379", cfg.Redis.Addr)
		require.Equal(t, "flat", cfg.Pricing.Strategy)
		require.Equal(t, int64(25), cfg.Pricing.FlatPerEvent)
		require.Equal(t, map[string]float64{"lite": 0.5, "ultra": 4}, cfg.Pricing.TierMultipliers)
		require.Equal(t, map[string]float64{"editable": 0.5}, cfg.RevenueShare.Rates)
		require.True(t, cfg.Settlement.GuardEnabled)
	})

	t.Run("sub-configs point into the loaded config", func(t *testing.T) {
		os.Clearenv()

		cfg := config.Load()
		deps := config.ParseDependenciesConfig(cfg)

		require.Same(t, &cfg.Database, deps.DatabaseConfig)
		require.Same(t, &cfg.Pricing, deps.PricingConfig)
		require.Same(t, &cfg.ListingCache, deps.ListingCacheConfig)
	})
}
