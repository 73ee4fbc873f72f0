package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvString(t *testing.T) {
	assert.Equal(t, "default_value", LoadEnvString("TEST_STRING", "default_value"))

	t.Setenv("TEST_STRING", "custom_value")
	assert.Equal(t, "custom_value", LoadEnvString("TEST_STRING", "default_value"))
}

func TestLoadEnvWithFallback(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		validator    func(string) error
		want         string
		wantFallback bool
	}{
		{"unset uses default silently", "", ValidateCronSchedule, "30 5 * * *", false},
		{"valid value", "0 6 * * *", ValidateCronSchedule, "0 6 * * *", false},
		{"invalid value falls back", "not a cron", ValidateCronSchedule, "30 5 * * *", true},
		{"no validator accepts anything", "anything", nil, "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_CRON", tt.value)

			result := LoadEnvWithFallback("TEST_CRON", "30 5 * * *", tt.validator)

			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.wantFallback, result.FallbackApplied)
			if tt.wantFallback {
				assert.Len(t, result.Warnings, 1)
				assert.Contains(t, result.Warnings[0], "Invalid TEST_CRON='not a cron'")
				assert.Contains(t, result.Warnings[0], "falling back to default '30 5 * * *'")
			} else {
				assert.Empty(t, result.Warnings)
			}
		})
	}
}

func TestLoadEnvDuration(t *testing.T) {
	inRange := func(d time.Duration) error { return ValidateDuration(d, time.Minute, time.Hour) }

	tests := []struct {
		name         string
		value        string
		want         time.Duration
		wantFallback bool
	}{
		{"unset", "", 30 * time.Minute, false},
		{"valid", "45m", 45 * time.Minute, false},
		{"unparseable", "soon", 30 * time.Minute, true},
		{"out of range", "2h", 30 * time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_TIMEOUT", tt.value)

			result := LoadEnvDuration("TEST_TIMEOUT", 30*time.Minute, inRange)

			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.wantFallback, result.FallbackApplied)
		})
	}
}

func TestLoadEnvInt(t *testing.T) {
	port := func(v int) error { return ValidateIntRange(v, 1024, 65535) }

	tests := []struct {
		name         string
		value        string
		want         int
		wantFallback bool
	}{
		{"unset", "", 9091, false},
		{"valid", "9100", 9100, false},
		{"surrounding spaces", " 9100 ", 9100, false},
		{"not a number", "ninety", 9091, true},
		{"trailing garbage", "9100abc", 9091, true},
		{"privileged port", "80", 9091, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_PORT", tt.value)

			result := LoadEnvInt("TEST_PORT", 9091, port)

			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.wantFallback, result.FallbackApplied)
		})
	}
}

func TestLoadEnvBool(t *testing.T) {
	tests := []struct {
		value        string
		want         bool
		wantFallback bool
	}{
		{"", true, false},
		{"false", false, false},
		{"0", false, false},
		{"TRUE", true, false},
		{"yes", true, true},
	}

	for _, tt := range tests {
		t.Run("value="+tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)

			result := LoadEnvBool("TEST_BOOL", true)

			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.wantFallback, result.FallbackApplied)
		})
	}
}
