package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, 30*time.Second, cfg.AppRequestTimeout)
	require.Equal(t, 60, cfg.RateLimitPerMinute)
	require.Equal(t, []string{"headcount"}, cfg.AnonymizeExemptMetrics)
	require.Equal(t, "X-Kpi-User", cfg.IdentityHeader)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ANONYMIZE_EXEMPT_METRICS", "headcount,new_bookings")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
	t.Setenv("IDENTITY_HEADER", "X-Forwarded-User")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.Equal(t, []string{"headcount", "new_bookings"}, cfg.AnonymizeExemptMetrics)
	require.Equal(t, 120, cfg.RateLimitPerMinute)
	require.Equal(t, "X-Forwarded-User", cfg.IdentityHeader)
}

func TestLoadConfigRejectsInvalidRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("RATE_LIMIT_PER_MINUTE", "ten")
	_, err = LoadConfig()
	require.Error(t, err)
}
