package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Manager owns the Playwright driver and the sessions launched through it.
type Manager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	playwright  *playwright.Playwright
	output      io.Writer
	initialized bool
}

// NewManager creates a new manager. Driver output is discarded unless
// SetOutput is called.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		output:   io.Discard,
	}
}

// SetOutput sends driver installation and runtime output to w.
func (m *Manager) SetOutput(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.output = w
}

func (m *Manager) runOptions() *playwright.RunOptions {
	return &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  m.output != io.Discard,
		Stdout:   m.output,
		Stderr:   m.output,
	}
}

// Install downloads the Playwright driver and Chromium if they are missing.
func (m *Manager) Install() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := playwright.Install(m.runOptions()); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	return nil
}

// Initialize installs (if needed) and starts the Playwright driver.
// This must be called before opening any session.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	opts := m.runOptions()
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// Open launches Chromium and returns its single page.
func (m *Manager) Open(opts SessionOptions) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("browser manager not initialized")
	}

	if opts.Name == "" {
		opts.Name = DefaultSessionName
	}
	if _, exists := m.sessions[opts.Name]; exists {
		return nil, fmt.Errorf("session %q already exists", opts.Name)
	}
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	browser, err := m.playwright.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args:     opts.Args,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(opts.Timeout)

	now := time.Now()
	session := &Session{
		Name:       opts.Name,
		Browser:    browser,
		Context:    context,
		Page:       page,
		Headless:   opts.Headless,
		CreatedAt:  now,
		LastUsedAt: now,
		CurrentURL: "about:blank",
	}

	m.sessions[opts.Name] = session
	return session, nil
}

// Sessions returns the number of open sessions.
func (m *Manager) Sessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown closes all sessions and stops the Playwright driver.
// It is safe to call on a manager that was never initialized.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, session := range m.sessions {
		_ = session.Page.Close() // Ignore errors, continue cleanup
		_ = session.Context.Close()
		if err := session.Browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session %q: %w", name, err))
		}
		delete(m.sessions, name)
	}

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		m.initialized = false
		m.playwright = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
