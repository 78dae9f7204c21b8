package config

import (
	"testing"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))

	assert.Equal(t, "3000", cfg.Services.CompanionService)
	assert.Equal(t, 3*time.Minute, cfg.Companion.CheckInWindow)
	assert.Equal(t, 2*time.Minute, cfg.Companion.SafetyWindow)
	assert.Equal(t, 5*time.Minute, cfg.Companion.SafetyExtension)
	assert.Equal(t, time.Second, cfg.Notification.SendDelay)
	assert.Equal(t, 100, cfg.Notification.RateLimit)
	assert.Equal(t, 15*time.Minute, cfg.Notification.RateLimitWindow)
	assert.Equal(t, "Niva", cfg.Notification.Brand)
	assert.False(t, cfg.Twilio.Configured())
	assert.False(t, cfg.SMTP.Configured())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("NOTIFICATION_SEND_DELAY", "250ms")
	t.Setenv("DATABASE_MAXCONNS", "7")

	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))

	assert.True(t, cfg.Twilio.Configured())
	assert.Equal(t, 250*time.Millisecond, cfg.Notification.SendDelay)

	maxConns, _, _, _ := cfg.Database.PoolLimits()
	assert.Equal(t, int32(7), maxConns)
}

func TestParseFlags(t *testing.T) {
	orig := *modeFlag
	t.Cleanup(func() { *modeFlag = orig })

	*modeFlag = ""
	assert.ErrorIs(t, parseFlags(&Config{}), ErrModeNotProvided)

	*modeFlag = "billing-service"
	assert.ErrorIs(t, parseFlags(&Config{}), ErrInvalidMode)

	*modeFlag = "companion-service"
	cfg := &Config{}
	require.NoError(t, parseFlags(cfg))
	assert.Equal(t, types.CompanionService, cfg.Mode)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "<empty>", redact(""))
	assert.Equal(t, "****", redact("secret"))
}
