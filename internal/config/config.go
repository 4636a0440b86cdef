// Package config centralizes environment-variable configuration, read
// with plain os.Getenv and sane defaults in the teacher's style
// (main.go's os.Getenv("NUM_NPCS")).
package config

import (
	"os"
	"strconv"
)

// Config holds every environment-derived setting the server needs at
// boot.
type Config struct {
	// DatabaseURL names the PocketBase data directory or DSN. PocketBase
	// itself manages SQLite connection pooling; this is surfaced mainly
	// for logging and for compatibility with the spec's environment
	// table.
	DatabaseURL string
	// NATSURL is read from NATS_URL. cmd/server does not consult it: it
	// always connects to the embedded server in-process
	// (nats.InProcessServer).
	NATSURL string
	// Port is read from PORT. cmd/server only logs it; PocketBase's own
	// serve flags choose the listen address.
	Port string
	// DefaultTurnTimerMs is applied when a create request omits
	// turnTimerMs or sends null; zero means no default timer.
	DefaultTurnTimerMs int64
}

// Load reads configuration from the environment, matching spec §6's
// DATABASE_URL / PORT pair. The spec also names REDIS_URL as "or
// equivalent TTL store URL"; this codebase's TTL store is NATS
// JetStream KV (see DESIGN.md), so NATS_URL is read in its place.
func Load() Config {
	return Config{
		DatabaseURL:        getEnv("DATABASE_URL", "pb_data"),
		NATSURL:            os.Getenv("NATS_URL"),
		Port:               getEnv("PORT", "8090"),
		DefaultTurnTimerMs: int64(getEnvInt("DEFAULT_TURN_TIMER_MS", 0)),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
