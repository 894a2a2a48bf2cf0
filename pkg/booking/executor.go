package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/resybot/pkg/browser"
	"github.com/entrhq/resybot/pkg/config"
	"github.com/entrhq/resybot/pkg/logging"
	"github.com/entrhq/resybot/pkg/notify"
)

// Run statuses
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusDryRun  = "dry_run"
	StatusFailed  = "failed"
)

// notifyTimeout bounds the notification sent after the run, which must go
// out even when the run context was cancelled.
const notifyTimeout = 60 * time.Second

// Launcher starts a browser and hands out pages. browser.Manager implements it.
type Launcher interface {
	Initialize() error
	Open(opts browser.SessionOptions) (browser.Page, error)
	Shutdown() error
}

// Result summarizes one run.
type Result struct {
	RunID      string        `json:"run_id"`
	Status     string        `json:"status"`
	Venue      string        `json:"venue"`
	Date       string        `json:"date"`
	PartySize  int           `json:"party_size"`
	Slot       string        `json:"slot,omitempty"`
	Preference string        `json:"preference,omitempty"`
	Confirmed  bool          `json:"secondary_confirmation"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration_ns"`
	Error      string        `json:"error,omitempty"`
	FailedStep string        `json:"failed_step,omitempty"`
	Screenshot string        `json:"screenshot,omitempty"`
	LogPath    string        `json:"log_path,omitempty"`
	DryRun     bool          `json:"dry_run"`
	Notified   bool          `json:"notified"`
}

// Executor runs a complete booking attempt: browser lifecycle, flow,
// notification and summary.
type Executor struct {
	config   *config.Config
	launcher Launcher
	notifier notify.Notifier
	reporter *Reporter
	logger   *logging.Logger
	now      func() time.Time

	result *Result
}

// NewExecutor creates an executor. The config is validated here so a bad
// config never launches a browser.
func NewExecutor(cfg *config.Config, launcher Launcher, notifier notify.Notifier, reporter *Reporter, logger *logging.Logger) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if launcher == nil {
		return nil, errors.New("launcher is required")
	}
	if logger == nil {
		logger = logging.Discard("booking")
	}
	if notifier == nil {
		notifier = notify.Disabled{Logger: logger}
	}
	if reporter == nil {
		reporter = NewReporter(ParseLogLevel(cfg.Logging.Verbosity))
	}

	return &Executor{
		config:   cfg,
		launcher: launcher,
		notifier: notifier,
		reporter: reporter,
		logger:   logger,
		now:      time.Now,
		result: &Result{
			RunID:     logger.RunID(),
			Status:    StatusRunning,
			Venue:     cfg.Reservation.VenueURL,
			Date:      cfg.Reservation.Date,
			PartySize: cfg.Reservation.PartySize,
			LogPath:   logger.LogPath(),
			DryRun:    cfg.DryRun,
		},
	}, nil
}

// Run performs the booking. It returns the result in every case, together
// with the error that ended the run, if any. Exactly one notification is
// sent and the browser is always shut down before Run returns.
func (e *Executor) Run(ctx context.Context) (*Result, error) {
	e.result.StartedAt = e.now()
	e.logger.Infof("Starting run %s: venue=%s date=%s party=%d times=%q dry_run=%t",
		e.result.RunID, e.config.Reservation.VenueURL, e.config.Reservation.Date,
		e.config.Reservation.PartySize, e.config.Reservation.Times, e.config.DryRun)

	header := "RESY BOOKING"
	if e.config.DryRun {
		header += " (DRY RUN)"
	}
	e.reporter.Header(header)

	booking, err := e.book(ctx)
	e.finish(booking, err)
	e.deliver(ctx, err)
	e.writeSummary()

	e.reporter.Summary(e.result)
	return e.result, err
}

// book runs everything that needs the browser.
func (e *Executor) book(ctx context.Context) (booking *Booking, err error) {
	target, err := ParseDate(e.config.Reservation.Date)
	if err != nil {
		return nil, err
	}
	if err := CheckNotPast(target, e.now()); err != nil {
		return nil, err
	}

	// Shutdown also cleans up after a partially failed Initialize.
	defer func() {
		if shutdownErr := e.launcher.Shutdown(); shutdownErr != nil {
			e.logger.Warnf("Browser shutdown failed: %v", shutdownErr)
		} else {
			e.logger.Debugf("Browser closed")
		}
	}()
	if err := e.launcher.Initialize(); err != nil {
		return nil, &StepError{Step: "launch browser", Err: err}
	}

	page, err := e.launcher.Open(browser.SessionOptions{
		Name:     browser.DefaultSessionName,
		Headless: e.config.Browser.Headless,
		Viewport: &browser.Viewport{
			Width:  e.config.Browser.ViewportWidth,
			Height: e.config.Browser.ViewportHeight,
		},
		Timeout: browser.Millis(e.config.Browser.Timeout),
		Args:    e.config.Browser.Args,
	})
	if err != nil {
		return nil, &StepError{Step: "launch browser", Err: err}
	}

	flow := NewFlow(page, e.config, e.reporter, e.logger)
	booking, err = flow.Run(ctx)
	if err != nil && e.config.Browser.ScreenshotOnFailure {
		e.screenshot(page)
	}
	return booking, err
}

func (e *Executor) screenshot(page browser.Page) {
	path, err := logging.ArtifactPath("failure.png")
	if err != nil {
		e.logger.Warnf("No place to save failure screenshot: %v", err)
		return
	}
	if err := page.Screenshot(path); err != nil {
		e.logger.Warnf("Failure screenshot failed: %v", err)
		return
	}
	e.result.Screenshot = path
	e.logger.Infof("Saved failure screenshot to %s", path)
}

func (e *Executor) finish(booking *Booking, err error) {
	e.result.FinishedAt = e.now()
	e.result.Duration = e.result.FinishedAt.Sub(e.result.StartedAt)

	if booking != nil {
		e.result.Slot = booking.Slot()
		e.result.Preference = booking.Match.Preference
		e.result.Confirmed = booking.Confirmed
	}

	switch {
	case err != nil:
		e.result.Status = StatusFailed
		e.result.Error = err.Error()
		e.result.FailedStep = FailedStep(err)
		e.reporter.Errorf("%v", err)
		e.logger.Errorf("Run failed: %v", err)
	case e.config.DryRun:
		e.result.Status = StatusDryRun
		e.logger.Infof("Dry run found slot %s on %s", e.result.Slot, e.result.Date)
	default:
		e.result.Status = StatusSuccess
		e.logger.Infof("Reserved %s on %s", e.result.Slot, e.result.Date)
	}
}

// deliver sends the outcome notification. Its failure is logged and
// reported but never changes the run outcome.
func (e *Executor) deliver(ctx context.Context, runErr error) {
	msg := Notification(e.result, runErr)

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := e.notifier.Notify(nctx, msg); err != nil {
		e.logger.Errorf("Failed to send %s notification: %v", msg.Kind, err)
		e.reporter.Warningf("could not send notification: %v", err)
		return
	}
	e.result.Notified = true
	e.reporter.Verbosef("Notification sent: %s", msg.Subject)
}

func (e *Executor) writeSummary() {
	if e.config.SummaryFile == "" {
		return
	}
	if err := WriteSummary(e.config.SummaryFile, e.result); err != nil {
		e.logger.Warnf("Failed to write summary: %v", err)
		e.reporter.Warningf("%v", err)
		return
	}
	e.reporter.Verbosef("Summary written to %s", e.config.SummaryFile)
}
