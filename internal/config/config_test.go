package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		in       string
		expected time.Duration
	}{
		{"hourly", time.Hour},
		{"daily", 24 * time.Hour},
		{"weekly", 7 * 24 * time.Hour},
		{"monthly", 30 * 24 * time.Hour},
		{"Daily", 24 * time.Hour},
		{" 90m ", 90 * time.Minute},
		{"2160h", 90 * 24 * time.Hour},
	}

	for _, tt := range tests {
		d, err := ParseSchedule(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.expected, d, tt.in)
	}
}

func TestParseScheduleRejectsGarbage(t *testing.T) {
	_, err := ParseSchedule("fortnightly")
	assert.Error(t, err)

	_, err = ParseSchedule("")
	assert.Error(t, err)
}

func TestRetentionDurations(t *testing.T) {
	r := Retention{Period: "2160h", Schedule: "daily"}

	period, err := r.PeriodDuration()
	require.NoError(t, err)
	assert.Equal(t, 90*24*time.Hour, period)

	schedule, err := r.ScheduleDuration()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, schedule)
}
