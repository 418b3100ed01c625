package config

import (
	"log"
	"strings"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Loader behaviour
	BalanceEpsilon      decimal.Decimal
	StrictHierarchy     bool
	RateDuplicatePolicy domain.DuplicatePolicy
	HierarchyRootNames  []string
	MaxParallelTenants  int

	// Tenant lock; an empty RedisURL selects the in-process locker
	RedisURL    string
	SyncLockTTL time.Duration

	// HTTP surface
	RateLimit          string
	CORSAllowedOrigins []string
}

const (
	defaultEpsilon     = "0.01"
	defaultLockTTL     = 10 * time.Minute
	defaultMaxParallel = 4
)

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("BALANCE_EPSILON", defaultEpsilon)
	v.SetDefault("STRICT_HIERARCHY", false)
	v.SetDefault("RATE_DUPLICATE_POLICY", string(domain.DuplicateKeepLast))
	v.SetDefault("HIERARCHY_ROOT_NAMES", strings.Join(domain.DefaultRootNames, ","))
	v.SetDefault("MAX_PARALLEL_TENANTS", defaultMaxParallel)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SYNC_LOCK_TTL", defaultLockTTL.String())
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	// Environment variables override the defaults and the .env file.
	v.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = v.GetBool("ENABLE_DB_CHECK")
	cfg.StrictHierarchy = v.GetBool("STRICT_HIERARCHY")

	epsilonStr := v.GetString("BALANCE_EPSILON")
	epsilon, err := decimal.NewFromString(epsilonStr)
	if err != nil || epsilon.IsNegative() {
		epsilon = decimal.RequireFromString(defaultEpsilon)
		log.Printf("Warning: Invalid value for BALANCE_EPSILON ('%s'). Defaulting to %s.\n", epsilonStr, epsilon)
	}
	cfg.BalanceEpsilon = epsilon

	policyStr := v.GetString("RATE_DUPLICATE_POLICY")
	policy, err := domain.ParseDuplicatePolicy(policyStr)
	if err != nil {
		policy = domain.DuplicateKeepLast
		log.Printf("Warning: %v. Defaulting to %s.\n", err, policy)
	}
	cfg.RateDuplicatePolicy = policy

	cfg.HierarchyRootNames = splitList(v.GetString("HIERARCHY_ROOT_NAMES"))

	cfg.MaxParallelTenants = v.GetInt("MAX_PARALLEL_TENANTS")
	if cfg.MaxParallelTenants < 1 {
		log.Printf("Warning: Invalid value for MAX_PARALLEL_TENANTS (%d). Defaulting to %d.\n", cfg.MaxParallelTenants, defaultMaxParallel)
		cfg.MaxParallelTenants = defaultMaxParallel
	}

	cfg.RedisURL = v.GetString("REDIS_URL")

	ttlStr := v.GetString("SYNC_LOCK_TTL")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil || ttl <= 0 {
		ttl = defaultLockTTL
		log.Printf("Warning: Invalid value for SYNC_LOCK_TTL ('%s'). Defaulting to %s.\n", ttlStr, ttl)
	}
	cfg.SyncLockTTL = ttl

	cfg.RateLimit = v.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	return cfg, nil
}

// splitList parses a comma separated setting, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
