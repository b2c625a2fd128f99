package configs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"standbill_backend/internals/helpers/logger"
)

var (
	JWTSecret string
	Ledger    LedgerConfig
)

// =======================
// LEDGER CONFIG
// =======================

// SettlementPolicy decides when a debt line is flagged settled. Default is
// zero_balance; set LEDGER_SETTLE_ON_ANY_PAYMENT=true for the legacy
// any_allocation behavior, where a partial payment already settles the line.
type SettlementPolicy string

const (
	// Debt line is settled when its outstanding balance reaches zero.
	SettleOnZeroBalance SettlementPolicy = "zero_balance"
	// Any allocation settles the debt line, even a partial one. Legacy behavior.
	SettleOnAnyAllocation SettlementPolicy = "any_allocation"
)

type LedgerConfig struct {
	TxTimeout    time.Duration
	TxRetries    int
	RetryBackoff time.Duration
	Settlement   SettlementPolicy
}

func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		TxTimeout:    5 * time.Second,
		TxRetries:    1,
		RetryBackoff: 50 * time.Millisecond,
		Settlement:   SettleOnZeroBalance,
	}
}

func LoadLedgerConfig() LedgerConfig {
	cfg := DefaultLedgerConfig()
	cfg.TxTimeout = GetDuration("LEDGER_TX_TIMEOUT", cfg.TxTimeout)
	cfg.RetryBackoff = GetDuration("LEDGER_RETRY_BACKOFF", cfg.RetryBackoff)
	if n := GetInt("LEDGER_TX_RETRIES", cfg.TxRetries); n >= 0 {
		cfg.TxRetries = n
	}
	if GetBool("LEDGER_SETTLE_ON_ANY_PAYMENT", false) {
		cfg.Settlement = SettleOnAnyAllocation
	}
	return cfg
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	log := logger.WithComponent("configs")

	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Warn().Msg("⚠️ .env not found, using system environment")
		} else {
			log.Info().Msg("✅ .env loaded")
		}
	} else {
		log.Info().Msg("🚀 Running in Railway, using system environment")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	if JWTSecret == "" {
		log.Error().Msg("❌ JWT_SECRET is not set")
	}

	Ledger = LoadLedgerConfig()
	log.Info().
		Dur("tx_timeout", Ledger.TxTimeout).
		Int("tx_retries", Ledger.TxRetries).
		Str("settlement", string(Ledger.Settlement)).
		Msg("ledger config loaded")
}

func LogConfigFromEnv() logger.LogConfig {
	cfg := logger.DefaultConfig()
	cfg.Level = GetEnv("LOG_LEVEL", cfg.Level)
	cfg.Format = GetEnv("LOG_FORMAT", cfg.Format)
	cfg.Output = GetEnv("LOG_OUTPUT", cfg.Output)
	return cfg
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func GetBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func GetDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
