package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthsFor(t *testing.T) {
	tests := []struct {
		schedule string
		want     int
	}{
		{"monthly", 1},
		{"quarterly", 3},
		{"half yearly", 6},
		{"annually", 12},
		{"", 1},
		{"fortnightly", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MonthsFor(tt.schedule), "schedule %q", tt.schedule)
	}
}

func TestOlderThanMonths(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, OlderThanMonths(now.AddDate(0, -2, 0), 1, now))
	assert.False(t, OlderThanMonths(now.AddDate(0, 0, -10), 1, now))
	assert.False(t, OlderThanMonths(now.AddDate(0, -1, 0), 1, now))
	assert.True(t, OlderThanMonths(now.AddDate(0, -1, -1), 1, now))
	assert.False(t, OlderThanMonths(time.Time{}, 1, now))
}
