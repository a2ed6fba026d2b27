// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ManuGH/renc/internal/log"
)

// ParseString reads a string from an environment variable or returns the default.
func ParseString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		logger := log.WithComponent("config")
		logger.Debug().
			Str("key", key).
			Str("source", "environment").
			Msg("using environment variable")
		return value
	}
	return defaultValue
}

// ParseInt reads an integer from an environment variable or returns the default.
// Unparseable values are logged and ignored.
func ParseInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", value).
			Msg("ignoring unparseable integer environment variable")
		return defaultValue
	}
	return parsed
}

// ParseDuration reads a time.Duration ("15s", "2m") from an environment
// variable or returns the default. Unparseable values are logged and ignored.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", value).
			Msg("ignoring unparseable duration environment variable")
		return defaultValue
	}
	return parsed
}
