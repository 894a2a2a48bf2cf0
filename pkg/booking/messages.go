package booking

import (
	"fmt"

	"github.com/entrhq/resybot/pkg/notify"
)

// Notification builds the message describing a finished run.
func Notification(res *Result, runErr error) notify.Message {
	switch {
	case runErr != nil && IsTimeout(runErr):
		return notify.Message{
			Kind:    notify.KindTimeout,
			Subject: "❌ Timeout on Resy Bot",
			Body:    fmt.Sprintf("A timeout occurred: %v", runErr) + details(res),
		}
	case runErr != nil:
		return notify.Message{
			Kind:    notify.KindFailure,
			Subject: "❌ Error in Resy Bot",
			Body:    runErr.Error() + details(res),
		}
	case res.Status == StatusDryRun:
		return notify.Message{
			Kind:    notify.KindDryRun,
			Subject: "🔎 Slot available (dry run)",
			Body: fmt.Sprintf("%s is available on %s for %d. Nothing was booked.",
				res.Slot, res.Date, res.PartySize) + details(res),
		}
	default:
		return notify.Message{
			Kind:    notify.KindSuccess,
			Subject: "✅ Reservation Completed",
			Body:    fmt.Sprintf("Successfully reserved %s on %s", res.Slot, res.Date) + details(res),
		}
	}
}

func details(res *Result) string {
	s := fmt.Sprintf("\n\nVenue: %s\nParty size: %d\nRun ID: %s", res.Venue, res.PartySize, res.RunID)
	if res.FailedStep != "" {
		s += "\nFailed step: " + res.FailedStep
	}
	if res.Screenshot != "" {
		s += "\nScreenshot: " + res.Screenshot
	}
	return s
}
