package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"
)

// Config represents the credit accounting service configuration.
type Config struct {
	Server       ServerConfig
	CORS         CORSConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Pricing      PricingConfig
	RevenueShare RevenueShareConfig
	Settlement   SettlementConfig
	ListingCache ListingCacheConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"30"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// DatabaseConfig selects and tunes the ledger database.
type DatabaseConfig struct {
	// Type is "postgres" or "sqlite".
	Type            string `env:"DB_TYPE"              envDefault:"sqlite"`
	DSN             string `env:"DB_DSN"               envDefault:"howl.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"`
	MaxOpenConns    int    `env:"DB_MAX_OPEN_CONNS"    envDefault:"20"`
	MaxIdleConns    int    `env:"DB_MAX_IDLE_CONNS"    envDefault:"5"`
	ConnMaxLifetime int    `env:"DB_CONN_MAX_LIFETIME" envDefault:"60"` // seconds
	SlowQueryMillis int    `env:"DB_SLOW_QUERY_MS"     envDefault:"200"`
	LogLevel        string `env:"DB_LOG_LEVEL"         envDefault:"warn"`
	AutoMigrate     bool   `env:"DB_AUTO_MIGRATE"      envDefault:"true"`
}

// RedisConfig contains the redis connection used by the listing cache and settlement guard.
// An empty Addr disables redis.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"       envDefault:"0"`
}

// PricingConfig selects and parameterizes the active pricing strategy.
type PricingConfig struct {
	Strategy        string             `env:"PRICING_STRATEGY"         envDefault:"tiered"`
	InputRate       float64            `env:"PRICING_INPUT_RATE"       envDefault:"1"`
	OutputRate      float64            `env:"PRICING_OUTPUT_RATE"      envDefault:"2"`
	TierMultipliers map[string]float64 `env:"PRICING_TIER_MULTIPLIERS" envDefault:"lite:0,standard:1,pro:1.5,ultra:3" envSeparator:"," envKeyValSeparator:":"`
	FlatPerEvent    int64              `env:"PRICING_FLAT_PER_EVENT"   envDefault:"10"`
}

// RevenueShareConfig maps fork modes to developer reward rates.
type RevenueShareConfig struct {
	Rates map[string]float64 `env:"REVENUE_SHARE_RATES" envDefault:"editable:0.30,locked:0.03" envSeparator:"," envKeyValSeparator:":"`
}

// SettlementConfig controls the optional duplicate-settlement guard.
type SettlementConfig struct {
	GuardEnabled bool `env:"SETTLEMENT_GUARD_ENABLED" envDefault:"false"`
	GuardTTL     int  `env:"SETTLEMENT_GUARD_TTL"     envDefault:"86400"` // seconds
}

// ListingCacheConfig sizes the marketplace listing cache.
type ListingCacheConfig struct {
	Enabled     bool  `env:"LISTING_CACHE_ENABLED"      envDefault:"true"`
	MaxCost     int64 `env:"LISTING_CACHE_MAX_COST"     envDefault:"10000"`
	TTL         int   `env:"LISTING_CACHE_TTL"          envDefault:"60"` // seconds
	NumCounters int64 `env:"LISTING_CACHE_NUM_COUNTERS" envDefault:"100000"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*DatabaseConfig
	*RedisConfig
	*PricingConfig
	*RevenueShareConfig
	*SettlementConfig
	*ListingCacheConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Database,
		&cfg.Redis,
		&cfg.Pricing,
		&cfg.RevenueShare,
		&cfg.Settlement,
		&cfg.ListingCache,
	}
}
