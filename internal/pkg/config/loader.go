// Package config provides fail-open environment loaders, reusable validators
// and configuration metrics shared by the worker and the audit CLIs.
//
// Loaders never return an error. An unset variable yields the default
// silently; a value that does not parse or fails validation yields the
// default together with a warning, so a long-running process always starts
// with a usable configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of loading one environment variable.
type Result[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

func fallback[T any](envKey, raw string, def T, err error) Result[T] {
	return Result[T]{
		Value:           def,
		Warnings:        []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, err, def)},
		FallbackApplied: true,
	}
}

// load reads envKey, parses it and validates the parsed value. validate may
// be nil.
func load[T any](envKey string, def T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return Result[T]{Value: def}
	}

	v, err := parse(raw)
	if err != nil {
		return fallback(envKey, raw, def, err)
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return fallback(envKey, raw, def, err)
		}
	}
	return Result[T]{Value: v}
}

// LoadEnvString returns the variable or def when it is unset. No validation.
func LoadEnvString(envKey, def string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return def
}

// LoadEnvWithFallback loads a string and validates it.
//
//	result := LoadEnvWithFallback("WORKER_CRON_SCHEDULE", "0 6 * * *", ValidateCronSchedule)
//	schedule := result.Value
func LoadEnvWithFallback(envKey, def string, validate func(string) error) Result[string] {
	return load(envKey, def, func(s string) (string, error) { return s, nil }, validate)
}

// LoadEnvDuration loads a value accepted by time.ParseDuration ("30s", "1h30m").
func LoadEnvDuration(envKey string, def time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return load(envKey, def, time.ParseDuration, validate)
}

// LoadEnvInt loads a base-10 integer.
func LoadEnvInt(envKey string, def int, validate func(int) error) Result[int] {
	return load(envKey, def, func(s string) (int, error) {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("invalid integer format")
		}
		return n, nil
	}, validate)
}

// LoadEnvBool loads a boolean in any spelling strconv.ParseBool accepts.
func LoadEnvBool(envKey string, def bool) Result[bool] {
	return load(envKey, def, func(s string) (bool, error) {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("invalid boolean format, expected 'true' or 'false'")
		}
		return b, nil
	}, nil)
}
