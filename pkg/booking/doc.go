// Package booking drives a Resy reservation through a browser page.
//
// A Flow performs the site steps in order: log in, open the venue, dismiss
// the optional announcement, choose party size and date, pick the best
// offered slot from the ranked preferences, and reserve it inside the
// checkout iframe, clicking the secondary confirmation when one is shown.
//
// An Executor wraps a Flow with the browser lifecycle. It always shuts the
// browser down, sends exactly one notification describing the outcome, and
// can write a JSON summary of the run:
//
//	exec, err := booking.NewExecutor(cfg, browser.NewManager(), notifier, reporter, logger)
//	if err != nil {
//		return err
//	}
//	result, err := exec.Run(ctx)
//
// Failures carry the name of the step that failed (see StepError). Element
// waits that run out of time match browser.ErrTimeout.
package booking
