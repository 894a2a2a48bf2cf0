package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// Scope is a place locators are resolved in: either the top-level page or an iframe.
type Scope interface {
	// Wait blocks until the element matching opts.Selector reaches opts.State
	Wait(opts WaitOptions) error

	// Click clicks the element matching opts.Selector
	Click(opts ClickOptions) error

	// Fill replaces the value of an input element
	Fill(opts FillOptions) error

	// SelectOption selects an <option> of a <select> element by value
	SelectOption(opts SelectOptions) error

	// Text returns the inner text of the first visible element matching selector
	Text(selector string, timeout float64) (string, error)

	// Texts returns the inner text of every element matching selector, in DOM order
	Texts(selector string) ([]string, error)
}

// Page is a Scope that also owns navigation and page-level utilities.
type Page interface {
	Scope

	// Navigate loads url in the page
	Navigate(url string, opts NavigateOptions) error

	// Frame returns a Scope bound to the first iframe matching selector
	Frame(selector string) Scope

	// Pause waits a fixed duration
	Pause(d time.Duration)

	// Screenshot writes a full-page PNG to path
	Screenshot(path string) error

	// URL returns the URL of the current document
	URL() string
}

// Session represents an active browser session with its associated resources.
type Session struct {
	// Name is the unique identifier for this session
	Name string

	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// Page is the current active page
	Page playwright.Page

	// Headless indicates if the browser is running in headless mode
	Headless bool

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time

	// LastUsedAt is the timestamp of the last operation on this session
	LastUsedAt time.Time

	// CurrentURL is the URL of the current page
	CurrentURL string
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Name labels the session in logs
	Name string

	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for operations (in milliseconds)
	Timeout float64

	// Args are extra Chromium command-line switches
	Args []string
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// ClickOptions configures element clicking behavior.
type ClickOptions struct {
	// Selector identifies the element to click
	Selector string

	// Nth picks the element at this index when the selector matches several
	Nth int

	// Scroll scrolls the element into view before clicking
	Scroll bool

	// Script dispatches the click through element.click() instead of the mouse.
	// Overlays that intercept pointer events do not block script clicks.
	Script bool

	// Timeout in milliseconds
	Timeout float64
}

// FillOptions configures form input filling.
type FillOptions struct {
	// Selector identifies the input element
	Selector string

	// Value is the text to fill
	Value string

	// Timeout in milliseconds
	Timeout float64
}

// SelectOptions configures choosing an option of a <select> element.
type SelectOptions struct {
	Selector string
	Value    string
	Timeout  float64
}

// WaitState is the element state a Wait call blocks for.
type WaitState string

const (
	StateAttached WaitState = "attached"
	StateDetached WaitState = "detached"
	StateVisible  WaitState = "visible"
	StateHidden   WaitState = "hidden"
)

// WaitOptions configures waiting behavior.
type WaitOptions struct {
	// Selector to wait for
	Selector string

	// State to wait for (default: visible)
	State WaitState

	// Timeout in milliseconds
	Timeout float64
}

// Default values for various operations
const (
	DefaultTimeout        = 20000.0 // 20 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultSessionName    = "resybot"
)

// Millis converts a duration to the float64 milliseconds Playwright expects.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
