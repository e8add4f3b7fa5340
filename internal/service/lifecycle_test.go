package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/votetrack/votetrack/internal/models"
)

func TestComputeActiveState(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		start  time.Time
		expiry time.Time
		active bool
	}{
		{"inside window", now.Add(-time.Hour), now.Add(time.Hour), true},
		{"before start", now.Add(time.Minute), now.Add(time.Hour), false},
		{"after expiry", now.Add(-2 * time.Hour), now.Add(-time.Hour), false},
		{"start is exactly now", now, now.Add(time.Hour), true},
		{"expiry is exactly now", now.Add(-time.Hour), now, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.active, ComputeActiveState(tc.start, tc.expiry, now))
		})
	}
}

func TestCanEdit(t *testing.T) {
	assert.True(t, CanEdit(&models.Poll{Active: false}))
	assert.False(t, CanEdit(&models.Poll{Active: true}))
}
