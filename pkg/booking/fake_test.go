package booking

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/entrhq/resybot/pkg/browser"
	"github.com/entrhq/resybot/pkg/config"
	"github.com/entrhq/resybot/pkg/logging"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "resybot-booking-test-*")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.SetLogDirectory(dir)

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func timeoutErr(op, selector string) error {
	return fmt.Errorf("%s %s: %w", op, selector, browser.ErrTimeout)
}

// fakeScope answers element operations from canned data.
// Selectors listed in missing time out on Wait, Click, Fill, SelectOption and Text.
type fakeScope struct {
	mu sync.Mutex

	missing map[string]bool
	texts   map[string][]string

	// Month titles shown by the calendar. A click on the next-month arrow
	// moves to the following title unless stuck is set.
	months     []string
	monthIndex int
	stuck      bool

	clicks   []browser.ClickOptions
	fills    map[string]string
	selected map[string]string
	waits    []browser.WaitOptions
}

func newFakeScope() *fakeScope {
	return &fakeScope{
		missing:  map[string]bool{},
		texts:    map[string][]string{},
		fills:    map[string]string{},
		selected: map[string]string{},
	}
}

func (s *fakeScope) Wait(opts browser.WaitOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, opts)
	if s.missing[opts.Selector] {
		return timeoutErr("wait for", opts.Selector)
	}
	return nil
}

func (s *fakeScope) Click(opts browser.ClickOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missing[opts.Selector] {
		return timeoutErr("click", opts.Selector)
	}
	s.clicks = append(s.clicks, opts)
	if opts.Selector == selNextMonth && !s.stuck && s.monthIndex < len(s.months)-1 {
		s.monthIndex++
	}
	return nil
}

func (s *fakeScope) Fill(opts browser.FillOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missing[opts.Selector] {
		return timeoutErr("fill", opts.Selector)
	}
	s.fills[opts.Selector] = opts.Value
	return nil
}

func (s *fakeScope) SelectOption(opts browser.SelectOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missing[opts.Selector] {
		return timeoutErr("select", opts.Selector)
	}
	s.selected[opts.Selector] = opts.Value
	return nil
}

func (s *fakeScope) Text(selector string, _ float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missing[selector] {
		return "", timeoutErr("text of", selector)
	}
	if selector == selMonthTitle && len(s.months) > 0 {
		return s.months[s.monthIndex], nil
	}
	if t := s.texts[selector]; len(t) > 0 {
		return t[0], nil
	}
	return "", nil
}

func (s *fakeScope) Texts(selector string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts[selector]...), nil
}

func (s *fakeScope) clicked(selector string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.clicks {
		if c.Selector == selector {
			n++
		}
	}
	return n
}

// fakePage is a fakeScope with navigation and a single checkout frame.
type fakePage struct {
	*fakeScope

	frame       *fakeScope
	visited     []string
	paused      time.Duration
	screenshots []string
	shotErr     error
}

func newFakePage() *fakePage {
	return &fakePage{fakeScope: newFakeScope(), frame: newFakeScope()}
}

func (p *fakePage) Navigate(url string, _ browser.NavigateOptions) error {
	p.visited = append(p.visited, url)
	return nil
}

func (p *fakePage) Frame(string) browser.Scope { return p.frame }

func (p *fakePage) Pause(d time.Duration) { p.paused += d }

func (p *fakePage) Screenshot(path string) error {
	if p.shotErr != nil {
		return p.shotErr
	}
	p.screenshots = append(p.screenshots, path)
	return nil
}

func (p *fakePage) URL() string {
	if len(p.visited) == 0 {
		return "about:blank"
	}
	return p.visited[len(p.visited)-1]
}

// bookablePage is a page on which the default test config books 7:00 PM
// on August 5, 2030, two calendar pages ahead.
func bookablePage() *fakePage {
	p := newFakePage()
	p.months = []string{"June 2030", "July 2030", "August 2030"}
	p.texts[selSlotButton] = []string{"5:45 PM\nDining Room", "7:15 PM\nBar", "7:00 PM\nDining Room"}
	return p
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Account.Email = "diner@example.com"
	cfg.Account.Password = "secret"
	cfg.Reservation.Date = "2030-08-05"
	cfg.Notify.Enabled = false
	cfg.Pauses = config.PauseConfig{}
	cfg.Logging.Verbosity = "quiet"
	return cfg
}

// fakeLauncher hands out a prepared page.
type fakeLauncher struct {
	page      browser.Page
	initErr   error
	openErr   error
	inits     int
	shutdowns int
	opened    []browser.SessionOptions
}

func (l *fakeLauncher) Initialize() error {
	l.inits++
	return l.initErr
}

func (l *fakeLauncher) Open(opts browser.SessionOptions) (browser.Page, error) {
	l.opened = append(l.opened, opts)
	if l.openErr != nil {
		return nil, l.openErr
	}
	return l.page, nil
}

func (l *fakeLauncher) Shutdown() error {
	l.shutdowns++
	return nil
}
