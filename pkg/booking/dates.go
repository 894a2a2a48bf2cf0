package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/resybot/pkg/config"
)

// MaxMonthAttempts bounds how many calendar pages are inspected while
// looking for the target month.
const MaxMonthAttempts = 12

const monthTitleLayout = "January 2006"

// MonthTitle is the calendar header shown for t's month, e.g. "August 2025".
func MonthTitle(t time.Time) string {
	return t.Format(monthTitleLayout)
}

// ParseMonthTitle parses a calendar header back into the first day of that month.
func ParseMonthTitle(title string) (time.Time, error) {
	t, err := time.Parse(monthTitleLayout, strings.TrimSpace(title))
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized month title %q: %w", title, err)
	}
	return t, nil
}

// ParseDate parses a YYYY-MM-DD reservation date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(config.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reservation date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// DayLabel is the aria-label of t's calendar cell, e.g. "August 5, 2025.".
func DayLabel(t time.Time) string {
	return t.Format("January 2, 2006") + "."
}

// MonthsBetween counts calendar pages from a's month to b's month.
// It is negative when b's month precedes a's.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// CheckNotPast fails when target is before today's date in now's location.
func CheckNotPast(target, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return fmt.Errorf("reservation date %s is in the past", target.Format("2006-01-02"))
	}
	return nil
}
