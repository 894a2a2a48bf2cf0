// Package slots picks a reservation time from the slots a venue offers,
// following a ranked list of preferred times.
package slots

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
)

// ErrNoPreferredSlot is returned when none of the preferred times is offered.
var ErrNoPreferredSlot = errors.New("no preferred times available")

// Match is the slot chosen for a preference.
type Match struct {
	// Preference is the ranked entry that matched, as written by the user
	Preference string

	// Time is the normalized clock time found in the label ("7:00 PM"),
	// empty when the match fell back to substring containment
	Time string

	// Label is the full text of the slot button
	Label string

	// Index is the position of the slot in the list passed to Pick
	Index int
}

var clockPattern = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*([ap])\.?\s*m\.?`)

// Normalize rewrites a 12-hour clock time into the canonical "7:00 PM" form.
// It reports false when s holds no such time.
func Normalize(s string) (string, bool) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return canonical(m)
}

func canonical(m []string) (string, bool) {
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return "", false
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%d:%02d %sM", hour, minute, strings.ToUpper(m[3])), true
}

// Times returns every clock time in label, normalized, in order of appearance.
func Times(label string) []string {
	var times []string
	for _, m := range clockPattern.FindAllStringSubmatch(label, -1) {
		if t, ok := canonical(m); ok {
			times = append(times, t)
		}
	}
	return times
}

// ParseRanked splits a comma separated preference list, dropping blanks.
func ParseRanked(csv string) []string {
	var ranked []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			ranked = append(ranked, p)
		}
	}
	return ranked
}

// matcher decides whether one slot label satisfies a preference.
type matcher func(label string) (string, bool)

func isPattern(pref string) bool {
	return strings.ContainsAny(pref, "*?[{")
}

func compile(pref string) (matcher, error) {
	if isPattern(pref) {
		g, err := glob.Compile(strings.ToUpper(strings.TrimSpace(pref)))
		if err != nil {
			return nil, fmt.Errorf("invalid time pattern %q: %w", pref, err)
		}
		return func(label string) (string, bool) {
			for _, t := range Times(label) {
				if g.Match(t) {
					return t, true
				}
			}
			return "", false
		}, nil
	}

	want, isTime := Normalize(pref)
	needle := strings.ToLower(strings.TrimSpace(pref))
	return func(label string) (string, bool) {
		times := Times(label)
		if isTime && len(times) > 0 {
			for _, t := range times {
				if t == want {
					return t, true
				}
			}
			return "", false
		}
		// No clock time to compare against: fall back to plain containment.
		if needle != "" && strings.Contains(strings.ToLower(label), needle) {
			return want, true
		}
		return "", false
	}, nil
}

// Validate reports the first preference that cannot be compiled.
func Validate(ranked []string) error {
	for _, pref := range ranked {
		if _, err := compile(pref); err != nil {
			return err
		}
	}
	return nil
}

// Pick returns the first preference, in ranked order, that matches any of the
// offered slot labels. Within a preference the earliest label wins.
func Pick(labels []string, ranked []string) (Match, error) {
	for _, pref := range ranked {
		match, err := compile(pref)
		if err != nil {
			return Match{}, err
		}
		for i, label := range labels {
			if t, ok := match(label); ok {
				return Match{Preference: pref, Time: t, Label: label, Index: i}, nil
			}
		}
	}
	return Match{}, ErrNoPreferredSlot
}
