package browser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ErrTimeout is wrapped by every error caused by an element or navigation timeout.
var ErrTimeout = errors.New("browser: timed out")

// wrapError tags Playwright timeouts with ErrTimeout so callers can tell an
// element that never appeared from a broken session.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

// UpdateLastUsed updates the LastUsedAt timestamp to the current time.
func (s *Session) UpdateLastUsed() {
	s.LastUsedAt = time.Now()
}

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	s.UpdateLastUsed()

	playwrightOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		playwrightOpts.WaitUntil = &waitUntil
	}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if _, err := s.Page.Goto(url, playwrightOpts); err != nil {
		return wrapError("navigate to "+url, err)
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// Frame returns a Scope whose locators resolve inside the first iframe matching selector.
// The frame is looked up lazily, on every call made through the Scope.
func (s *Session) Frame(selector string) Scope {
	frame := s.Page.FrameLocator(firstMatch(selector))
	return &scope{
		session: s,
		label:   "frame " + selector,
		locate: func(sel string) playwright.Locator {
			return frame.Locator(sel)
		},
	}
}

// Pause blocks for d. Page timers are used instead of time.Sleep so the
// driver keeps processing events while waiting.
func (s *Session) Pause(d time.Duration) {
	if d <= 0 {
		return
	}
	s.UpdateLastUsed()
	s.Page.WaitForTimeout(Millis(d))
}

// Screenshot saves a full-page PNG.
func (s *Session) Screenshot(path string) error {
	_, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return wrapError("screenshot", err)
}

// URL returns the URL of the current document.
func (s *Session) URL() string {
	return s.Page.URL()
}

// Wait waits for an element to reach a state on the top-level page.
func (s *Session) Wait(opts WaitOptions) error { return s.root().Wait(opts) }

// Click clicks an element on the top-level page.
func (s *Session) Click(opts ClickOptions) error { return s.root().Click(opts) }

// Fill fills an input element on the top-level page.
func (s *Session) Fill(opts FillOptions) error { return s.root().Fill(opts) }

// SelectOption selects an option on the top-level page.
func (s *Session) SelectOption(opts SelectOptions) error { return s.root().SelectOption(opts) }

// Text returns the inner text of an element on the top-level page.
func (s *Session) Text(selector string, timeout float64) (string, error) {
	return s.root().Text(selector, timeout)
}

// Texts returns the inner texts of all matching elements on the top-level page.
func (s *Session) Texts(selector string) ([]string, error) { return s.root().Texts(selector) }

func (s *Session) root() *scope {
	return &scope{
		session: s,
		label:   "page",
		locate: func(sel string) playwright.Locator {
			return s.Page.Locator(sel)
		},
	}
}

// scope implements Scope on top of a locator factory, so the page and
// its frames share one implementation.
type scope struct {
	session *Session
	label   string
	locate  func(selector string) playwright.Locator
}

func timeoutPtr(timeout float64) *float64 {
	if timeout <= 0 {
		return nil
	}
	return &timeout
}

// Wait waits for an element or condition.
func (c *scope) Wait(opts WaitOptions) error {
	c.session.UpdateLastUsed()

	if opts.Selector == "" {
		return fmt.Errorf("selector is required for wait")
	}
	if opts.State == "" {
		opts.State = StateVisible
	}

	state := playwright.WaitForSelectorState(opts.State)
	err := c.locate(opts.Selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   &state,
		Timeout: timeoutPtr(opts.Timeout),
	})
	return wrapError(fmt.Sprintf("wait for %s to be %s in %s", opts.Selector, opts.State, c.label), err)
}

// Click clicks an element matching the selector.
func (c *scope) Click(opts ClickOptions) error {
	c.session.UpdateLastUsed()

	if opts.Selector == "" {
		return fmt.Errorf("selector is required for click")
	}

	op := fmt.Sprintf("click %s in %s", opts.Selector, c.label)
	locator := c.locate(opts.Selector).Nth(opts.Nth)
	timeout := timeoutPtr(opts.Timeout)

	if opts.Scroll {
		err := locator.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
			Timeout: timeout,
		})
		if err != nil {
			return wrapError(op, err)
		}
	}

	if opts.Script {
		if err := locator.WaitFor(visibleWait(timeout)); err != nil {
			return wrapError(op, err)
		}
		if _, err := locator.Evaluate("el => el.click()", nil, playwright.LocatorEvaluateOptions{Timeout: timeout}); err != nil {
			return wrapError(op, err)
		}
	} else {
		if err := locator.Click(playwright.LocatorClickOptions{Timeout: timeout}); err != nil {
			return wrapError(op, err)
		}
	}

	// Update current URL in case click caused navigation
	c.session.CurrentURL = c.session.Page.URL()
	return nil
}

// Fill fills an input element with the specified value.
func (c *scope) Fill(opts FillOptions) error {
	c.session.UpdateLastUsed()

	err := c.locate(opts.Selector).First().Fill(opts.Value, playwright.LocatorFillOptions{
		Timeout: timeoutPtr(opts.Timeout),
	})
	return wrapError(fmt.Sprintf("fill %s in %s", opts.Selector, c.label), err)
}

// SelectOption selects the option whose value attribute equals opts.Value.
func (c *scope) SelectOption(opts SelectOptions) error {
	c.session.UpdateLastUsed()

	selected, err := c.locate(opts.Selector).First().SelectOption(
		playwright.SelectOptionValues{Values: playwright.StringSlice(opts.Value)},
		playwright.LocatorSelectOptionOptions{Timeout: timeoutPtr(opts.Timeout)},
	)
	if err != nil {
		return wrapError(fmt.Sprintf("select %q in %s", opts.Value, opts.Selector), err)
	}
	if len(selected) == 0 {
		return fmt.Errorf("select %q in %s: no matching option", opts.Value, opts.Selector)
	}
	return nil
}

// Text waits for the first matching element to be visible and returns its trimmed inner text.
func (c *scope) Text(selector string, timeout float64) (string, error) {
	c.session.UpdateLastUsed()

	op := fmt.Sprintf("read text of %s in %s", selector, c.label)
	locator := c.locate(selector).First()
	if err := locator.WaitFor(visibleWait(timeoutPtr(timeout))); err != nil {
		return "", wrapError(op, err)
	}

	text, err := locator.InnerText(playwright.LocatorInnerTextOptions{Timeout: timeoutPtr(timeout)})
	if err != nil {
		return "", wrapError(op, err)
	}
	return strings.TrimSpace(text), nil
}

// Texts returns the inner text of every element matching selector.
func (c *scope) Texts(selector string) ([]string, error) {
	c.session.UpdateLastUsed()

	texts, err := c.locate(selector).AllInnerTexts()
	if err != nil {
		return nil, wrapError(fmt.Sprintf("read texts of %s in %s", selector, c.label), err)
	}
	return texts, nil
}

// firstMatch narrows selector to its first match so strict frame locators
// don't fail when a page embeds the same widget more than once.
func firstMatch(selector string) string {
	return selector + " >> nth=0"
}

func visibleWait(timeout *float64) playwright.LocatorWaitForOptions {
	return playwright.LocatorWaitForOptions{State: playwright.WaitForSelectorStateVisible, Timeout: timeout}
}
