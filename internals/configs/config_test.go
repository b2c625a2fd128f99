package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadLedgerConfig_Defaults(t *testing.T) {
	t.Setenv("LEDGER_TX_TIMEOUT", "")
	t.Setenv("LEDGER_TX_RETRIES", "")
	t.Setenv("LEDGER_RETRY_BACKOFF", "")
	t.Setenv("LEDGER_SETTLE_ON_ANY_PAYMENT", "")

	cfg := LoadLedgerConfig()

	assert.Equal(t, 5*time.Second, cfg.TxTimeout)
	assert.Equal(t, 1, cfg.TxRetries)
	assert.Equal(t, 50*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, SettleOnZeroBalance, cfg.Settlement)
}

func TestLoadLedgerConfig_FromEnv(t *testing.T) {
	t.Setenv("LEDGER_TX_TIMEOUT", "2s")
	t.Setenv("LEDGER_TX_RETRIES", "3")
	t.Setenv("LEDGER_RETRY_BACKOFF", "10ms")
	t.Setenv("LEDGER_SETTLE_ON_ANY_PAYMENT", "true")

	cfg := LoadLedgerConfig()

	assert.Equal(t, 2*time.Second, cfg.TxTimeout)
	assert.Equal(t, 3, cfg.TxRetries)
	assert.Equal(t, 10*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, SettleOnAnyAllocation, cfg.Settlement)
}

func TestLoadLedgerConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("LEDGER_TX_TIMEOUT", "soon")
	t.Setenv("LEDGER_TX_RETRIES", "-2")
	t.Setenv("LEDGER_RETRY_BACKOFF", "0s")
	t.Setenv("LEDGER_SETTLE_ON_ANY_PAYMENT", "maybe")

	cfg := LoadLedgerConfig()

	assert.Equal(t, 5*time.Second, cfg.TxTimeout)
	assert.Equal(t, 1, cfg.TxRetries)
	assert.Equal(t, 50*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, SettleOnZeroBalance, cfg.Settlement)
}

func TestGetEnv_Default(t *testing.T) {
	assert.Equal(t, "fallback", GetEnv("STANDBILL_SURELY_UNSET_KEY", "fallback"))
	t.Setenv("STANDBILL_SET_KEY", "")
	assert.Equal(t, "", GetEnv("STANDBILL_SET_KEY", "fallback"))
}
