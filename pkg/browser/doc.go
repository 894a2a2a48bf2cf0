// Package browser drives a single Chromium page through Playwright.
//
// The package is built around three pieces:
//
//  1. Manager: owns the Playwright driver process and launches browsers
//  2. Session: one browser, its context and its page
//  3. Scope and Page: the narrow interfaces the booking flow is written against
//
// # Lifecycle
//
//	manager := browser.NewManager()
//	if err := manager.Initialize(); err != nil {
//	    return err
//	}
//	defer manager.Shutdown()
//
//	page, err := manager.Open(browser.SessionOptions{Headless: true})
//	if err != nil {
//	    return err
//	}
//	err = page.Navigate("https://resy.com", browser.NavigateOptions{})
//
// # Frames
//
// Page.Frame returns a Scope bound to the first iframe matching a selector.
// Every locator resolved through that Scope is evaluated inside the frame, so
// the same Wait/Click/Fill calls work on embedded checkout widgets.
//
// # Timeouts
//
// Every Playwright timeout surfaces as an error wrapping ErrTimeout. Callers
// treat optional UI (announcement modals, secondary confirmations) by checking
// errors.Is(err, browser.ErrTimeout).
package browser
