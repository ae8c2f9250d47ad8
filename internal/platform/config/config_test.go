package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.False(t, cfg.NotifyOnSuccess)
	assert.Equal(t, 5*time.Second, cfg.ExternalCallTimeout)
	assert.Equal(t, 5*time.Minute, cfg.RegistryCacheTTL)
	assert.Contains(t, cfg.RegistryURL, "checkVatService")
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("VATWATCH_ADDR", ":9999")
	t.Setenv("SEND_MESSAGE_ON_SUCCESS", "true")
	t.Setenv("EXTERNAL_CALL_TIMEOUT", "2s")

	cfg := FromEnv()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.True(t, cfg.NotifyOnSuccess)
	assert.Equal(t, 2*time.Second, cfg.ExternalCallTimeout)
}

func TestDurationFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("EXTERNAL_CALL_TIMEOUT", "not-a-duration")
	cfg := FromEnv()
	assert.Equal(t, 5*time.Second, cfg.ExternalCallTimeout)

	t.Setenv("EXTERNAL_CALL_TIMEOUT", "-3s")
	cfg = FromEnv()
	assert.Equal(t, 5*time.Second, cfg.ExternalCallTimeout)
}
