// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// EntryStaleAfter is the idle threshold after which an abandoned
	// in-progress entry is force-reset. Zero disables the sweep.
	EntryStaleAfter time.Duration

	// SeedDemoData loads the demo fixture (two transactions, two
	// friends) at startup.
	SeedDemoData bool
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		EntryStaleAfter: getEnvDuration("ENTRY_STALE_AFTER", 10*time.Second),
		SeedDemoData:    getEnvBool("SEED_DEMO_DATA", false),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.EntryStaleAfter < 0 {
		errs = append(errs, fmt.Sprintf("invalid entry stale threshold %v: must not be negative", c.EntryStaleAfter))
	} else if c.EntryStaleAfter > 0 && c.EntryStaleAfter < time.Second {
		errs = append(errs, fmt.Sprintf("invalid entry stale threshold %v: must be at least 1 second", c.EntryStaleAfter))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
