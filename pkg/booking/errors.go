package booking

import (
	"errors"
	"fmt"

	"github.com/entrhq/resybot/pkg/browser"
)

// ErrMonthNotReached is returned when the calendar never shows the target month.
var ErrMonthNotReached = errors.New("target month not reached")

// StepError records which step of the flow failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err was caused by an element that never appeared.
func IsTimeout(err error) bool {
	return errors.Is(err, browser.ErrTimeout)
}

// FailedStep returns the step name carried by err, or "" when there is none.
func FailedStep(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}
