package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, int64(50000), cfg.CommissionFixedAmount)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, 14, cfg.InvoiceDueDays)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfigValidateRejectsNegativeCommission(t *testing.T) {
	cfg := Config{JWTSecret: "x", JWTAccessTTL: 1, JWTRefreshTTL: 1, CommissionFixedAmount: -1}
	require.Error(t, cfg.Validate())

	cfg.CommissionFixedAmount = 0
	require.NoError(t, cfg.Validate())

	cfg.InvoiceTaxRateBPS = 20000
	require.Error(t, cfg.Validate())
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogFormat: "json", AppEnv: "test"})
	logger.Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "hello", record["msg"])
	require.Equal(t, "test", record["env"])
}
