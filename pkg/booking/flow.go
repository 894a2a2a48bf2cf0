package booking

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/entrhq/resybot/pkg/browser"
	"github.com/entrhq/resybot/pkg/config"
	"github.com/entrhq/resybot/pkg/logging"
	"github.com/entrhq/resybot/pkg/slots"
)

// Booking describes what the flow achieved.
type Booking struct {
	Date      time.Time
	Match     slots.Match
	Reserved  bool // Reserve Now was clicked
	Confirmed bool // A secondary confirmation was also clicked
}

// Slot is the human-readable time that was picked.
func (b *Booking) Slot() string {
	if b.Match.Time != "" {
		return b.Match.Time
	}
	return b.Match.Preference
}

// Flow runs the booking steps against one page.
type Flow struct {
	page     browser.Page
	config   *config.Config
	reporter *Reporter
	logger   *logging.Logger

	target  time.Time
	frame   browser.Scope
	booking Booking
}

// NewFlow creates a flow. cfg must already be validated.
func NewFlow(page browser.Page, cfg *config.Config, reporter *Reporter, logger *logging.Logger) *Flow {
	return &Flow{
		page:     page,
		config:   cfg,
		reporter: reporter,
		logger:   logger,
	}
}

type step struct {
	name string
	run  func() error
}

func (f *Flow) steps() []step {
	return []step{
		{"login", f.login},
		{"open venue", f.openVenue},
		{"dismiss announcement", f.dismissAnnouncement},
		{"party size", f.selectPartySize},
		{"date", f.selectDate},
		{"time slot", f.selectSlot},
		{"reservation frame", f.openReservationFrame},
		{"reserve", f.reserve},
		{"secondary confirmation", f.confirm},
		{"settle", f.settle},
	}
}

// Run executes every step in order and stops at the first failure.
// The context is checked between steps.
func (f *Flow) Run(ctx context.Context) (*Booking, error) {
	target, err := ParseDate(f.config.Reservation.Date)
	if err != nil {
		return nil, err
	}
	f.target = target
	f.booking = Booking{Date: target}

	for _, s := range f.steps() {
		if err := ctx.Err(); err != nil {
			return nil, &StepError{Step: s.name, Err: err}
		}

		f.logger.Debugf("Step %q started (url=%s)", s.name, f.page.URL())
		start := time.Now()
		if err := s.run(); err != nil {
			f.logger.Errorf("Step %q failed after %s: %v", s.name, time.Since(start).Round(time.Millisecond), err)
			return nil, &StepError{Step: s.name, Err: err}
		}
		f.logger.Debugf("Step %q finished in %s", s.name, time.Since(start).Round(time.Millisecond))
	}

	booking := f.booking
	return &booking, nil
}

func (f *Flow) timeout() float64 {
	return browser.Millis(f.config.Browser.Timeout)
}

func (f *Flow) login() error {
	f.reporter.Step("Logging in")
	t := f.timeout()

	if err := f.page.Navigate(f.config.Site.BaseURL, browser.NavigateOptions{Timeout: t}); err != nil {
		return err
	}

	f.reporter.Verbosef("Opening login menu")
	if err := f.page.Click(browser.ClickOptions{Selector: selLoginMenu, Timeout: t}); err != nil {
		return fmt.Errorf("open login menu: %w", err)
	}
	if err := f.page.Wait(browser.WaitOptions{Selector: selModal, State: browser.StateAttached, Timeout: t}); err != nil {
		return fmt.Errorf("login dialog: %w", err)
	}

	f.reporter.Verbosef("Entering credentials")
	if err := f.page.Fill(browser.FillOptions{Selector: selEmailInput, Value: f.config.Account.Email, Timeout: t}); err != nil {
		return err
	}
	if err := f.page.Fill(browser.FillOptions{Selector: selPasswordInput, Value: f.config.Account.Password, Timeout: t}); err != nil {
		return err
	}
	if err := f.page.Click(browser.ClickOptions{Selector: selContinueButton, Scroll: true, Timeout: t}); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}

	f.reporter.Infof("Waiting for captcha or login redirect...")
	f.page.Pause(f.config.Pauses.AfterLogin)
	f.logger.Infof("Submitted login for %s", f.config.Account.Email)
	return nil
}

func (f *Flow) openVenue() error {
	f.reporter.Step("Opening venue page")
	url := f.config.Reservation.VenueURL
	if err := f.page.Navigate(url, browser.NavigateOptions{Timeout: f.timeout()}); err != nil {
		return err
	}
	f.reporter.Verbosef("Navigated to %s", url)
	return nil
}

// dismissAnnouncement closes the promotional modal some venues show.
// The modal is optional, so a timeout at any point means there was none.
func (f *Flow) dismissAnnouncement() error {
	f.reporter.Step("Checking for announcement modal")
	t := f.timeout()

	err := f.page.Wait(browser.WaitOptions{Selector: selModal, State: browser.StateAttached, Timeout: t})
	if err == nil {
		err = f.page.Click(browser.ClickOptions{Selector: selAnnouncementSkip, Script: true, Timeout: t})
		if err == nil {
			f.reporter.Verbosef("Clicked 'No Thanks'")
			err = f.page.Wait(browser.WaitOptions{
				Selector: selModal,
				State:    browser.StateHidden,
				Timeout:  browser.Millis(f.config.Browser.ModalTimeout),
			})
		}
	}

	switch {
	case err == nil:
		f.reporter.Successf("Modal dismissed")
		return nil
	case IsTimeout(err):
		f.logger.Debugf("No announcement modal: %v", err)
		f.reporter.Successf("No announcement modal appeared")
		return nil
	default:
		return err
	}
}

func (f *Flow) selectPartySize() error {
	size := f.config.Reservation.PartySize
	f.reporter.Step(fmt.Sprintf("Selecting %d guests", size))
	t := f.timeout()

	if err := f.page.Wait(browser.WaitOptions{Selector: selPartySize, State: browser.StateAttached, Timeout: t}); err != nil {
		return fmt.Errorf("party size selector: %w", err)
	}
	if err := f.page.SelectOption(browser.SelectOptions{Selector: selPartySize, Value: strconv.Itoa(size), Timeout: t}); err != nil {
		return err
	}

	f.page.Pause(f.config.Pauses.AfterPartySize)
	return nil
}

func (f *Flow) selectDate() error {
	f.reporter.Step("Selecting reservation date")
	t := f.timeout()

	if err := f.page.Click(browser.ClickOptions{Selector: selDateButton, Script: true, Timeout: t}); err != nil {
		return fmt.Errorf("open date selector: %w", err)
	}

	if err := f.findMonth(); err != nil {
		return err
	}

	label := DayLabel(f.target)
	if err := f.page.Click(browser.ClickOptions{Selector: dayButton(label), Script: true, Timeout: t}); err != nil {
		return fmt.Errorf("select day %q: %w", label, err)
	}

	f.reporter.Successf("Selected %s", f.target.Format("January 02, 2006"))
	return nil
}

// findMonth pages the calendar forward until its title shows the target month.
// A missing title or arrow is reported as a plain error, not a timeout.
func (f *Flow) findMonth() error {
	t := f.timeout()
	want := MonthTitle(f.target)

	for attempt := 1; attempt <= MaxMonthAttempts; attempt++ {
		current, err := f.page.Text(selMonthTitle, t)
		if err != nil {
			if IsTimeout(err) {
				return fmt.Errorf("could not find month navigation or month label: %v", err)
			}
			return err
		}

		if current == want {
			f.reporter.Verbosef("Correct month %q is visible", current)
			return nil
		}

		// The calendar only pages forward; a later month means the date has passed.
		if shown, perr := ParseMonthTitle(current); perr == nil && MonthsBetween(shown, f.target) < 0 {
			return fmt.Errorf("%w: calendar starts at %q, after %q", ErrMonthNotReached, current, want)
		}

		f.reporter.Debugf("Calendar shows %q, moving forward (attempt %d/%d)", current, attempt, MaxMonthAttempts)
		if err := f.page.Click(browser.ClickOptions{Selector: selNextMonth, Script: true, Timeout: t}); err != nil {
			if IsTimeout(err) {
				return fmt.Errorf("could not find month navigation or month label: %v", err)
			}
			return err
		}
		f.page.Pause(f.config.Pauses.MonthStep)
	}

	return fmt.Errorf("%w: unable to reach month %q after %d attempts", ErrMonthNotReached, want, MaxMonthAttempts)
}

func (f *Flow) selectSlot() error {
	f.reporter.Step("Looking for available times")
	t := f.timeout()

	f.page.Pause(f.config.Pauses.BeforeSlots)
	if err := f.page.Wait(browser.WaitOptions{Selector: selSlotButton, State: browser.StateAttached, Timeout: t}); err != nil {
		return fmt.Errorf("waiting for reservation slots: %w", err)
	}

	labels, err := f.page.Texts(selSlotButton)
	if err != nil {
		return err
	}
	f.logger.Infof("Offered slots: %q", labels)
	f.reporter.Verbosef("%d slot(s) offered", len(labels))

	match, err := slots.Pick(labels, f.config.Reservation.Times)
	if err != nil {
		return err
	}
	f.booking.Match = match
	f.reporter.Successf("Found time: %s. Clicking...", f.booking.Slot())

	err = f.page.Click(browser.ClickOptions{
		Selector: selSlotButton,
		Nth:      match.Index,
		Scroll:   true,
		Script:   true,
		Timeout:  t,
	})
	if err != nil {
		return fmt.Errorf("click slot %q: %w", match.Label, err)
	}

	f.page.Pause(f.config.Pauses.AfterSlotClick)
	return nil
}

func (f *Flow) openReservationFrame() error {
	f.reporter.Step("Switching to reservation summary")

	selector := widgetFrame(f.config.Site.WidgetHost)
	err := f.page.Wait(browser.WaitOptions{
		Selector: selector,
		State:    browser.StateAttached,
		Timeout:  browser.Millis(f.config.Browser.FrameTimeout),
	})
	if IsTimeout(err) {
		return fmt.Errorf("could not find reservation frame: %v", err)
	}
	if err != nil {
		return err
	}

	f.frame = f.page.Frame(selector)
	return nil
}

func (f *Flow) reserve() error {
	if f.config.DryRun {
		f.reporter.Step("Dry run: not clicking 'Reserve Now'")
		return nil
	}

	f.reporter.Step("Clicking 'Reserve Now' to finalize reservation")
	t := f.timeout()

	if err := f.frame.Wait(browser.WaitOptions{Selector: selBookButton, State: browser.StateVisible, Timeout: t}); err != nil {
		if IsTimeout(err) {
			return fmt.Errorf("'Reserve Now' button not found, reservation incomplete: %v", err)
		}
		return err
	}

	f.page.Pause(f.config.Pauses.BeforeReserve)
	if err := f.frame.Click(browser.ClickOptions{Selector: selBookButton, Scroll: true, Timeout: t}); err != nil {
		return fmt.Errorf("click 'Reserve Now': %w", err)
	}

	f.booking.Reserved = true
	f.reporter.Successf("Reservation confirmed!")
	return nil
}

// confirm clicks the second confirmation some venues ask for.
// Its absence is not an error.
func (f *Flow) confirm() error {
	if f.config.DryRun {
		return nil
	}

	f.reporter.Step("Checking for secondary confirmation")
	err := f.frame.Wait(browser.WaitOptions{
		Selector: selConfirmButton,
		State:    browser.StateVisible,
		Timeout:  browser.Millis(f.config.Browser.ConfirmTimeout),
	})
	if IsTimeout(err) {
		f.reporter.Successf("No secondary confirmation needed")
		return nil
	}
	if err != nil {
		return err
	}

	f.page.Pause(f.config.Pauses.BeforeConfirm)
	if err := f.frame.Click(browser.ClickOptions{Selector: selConfirmButton, Scroll: true, Timeout: f.timeout()}); err != nil {
		return fmt.Errorf("click 'Confirm': %w", err)
	}

	f.booking.Confirmed = true
	f.reporter.Successf("Secondary confirmation completed")
	return nil
}

func (f *Flow) settle() error {
	f.page.Pause(f.config.Pauses.Settle)
	return nil
}
