package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthTitleAndDayLabel(t *testing.T) {
	d := time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "August 2025", MonthTitle(d))
	assert.Equal(t, "August 5, 2025.", DayLabel(d))
}

func TestParseMonthTitle(t *testing.T) {
	got, err := ParseMonthTitle("  December 2025 ")
	require.NoError(t, err)
	assert.Equal(t, time.December, got.Month())
	assert.Equal(t, 2025, got.Year())

	_, err = ParseMonthTitle("Next month")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-08-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("08/05/2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same month", date(2025, 8, 1), date(2025, 8, 31), 0},
		{"forward", date(2025, 6, 15), date(2025, 8, 1), 2},
		{"across year", date(2025, 11, 1), date(2026, 2, 1), 3},
		{"backward", date(2025, 9, 1), date(2025, 8, 1), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthsBetween(tt.a, tt.b))
		})
	}
}

func TestCheckNotPast(t *testing.T) {
	now := time.Date(2025, time.August, 5, 23, 59, 0, 0, time.UTC)

	assert.NoError(t, CheckNotPast(date(2025, 8, 5), now), "today is bookable")
	assert.NoError(t, CheckNotPast(date(2025, 8, 6), now))

	err := CheckNotPast(date(2025, 8, 4), now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2025-08-04")
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}
