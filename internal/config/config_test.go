package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("NATS_URL")
	os.Unsetenv("PORT")
	os.Unsetenv("DEFAULT_TURN_TIMER_MS")

	cfg := Load()
	assert.Equal(t, "pb_data", cfg.DatabaseURL)
	assert.Equal(t, "", cfg.NATSURL)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, int64(0), cfg.DefaultTurnTimerMs)
}

func TestLoad_ReadsEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "custom_data")
	t.Setenv("PORT", "9000")
	t.Setenv("DEFAULT_TURN_TIMER_MS", "45000")

	cfg := Load()
	assert.Equal(t, "custom_data", cfg.DatabaseURL)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, int64(45000), cfg.DefaultTurnTimerMs)
}

func TestLoad_IgnoresInvalidInt(t *testing.T) {
	t.Setenv("DEFAULT_TURN_TIMER_MS", "not-a-number")

	cfg := Load()
	assert.Equal(t, int64(0), cfg.DefaultTurnTimerMs)
}
