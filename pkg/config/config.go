// Package config holds the settings of a single booking run.
//
// Values are layered: DefaultConfig, then an optional YAML or TOML file,
// then the process environment (optionally seeded from a .env file),
// then command-line overrides. The result is validated once and not
// mutated afterwards.
package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/entrhq/resybot/pkg/slots"
)

// DateLayout is the layout of Reservation.Date.
const DateLayout = "2006-01-02"

// Config represents the configuration for a booking run
type Config struct {
	// Resy account credentials
	Account AccountConfig `yaml:"account" toml:"account" json:"account"`

	// What to book
	Reservation ReservationConfig `yaml:"reservation" toml:"reservation" json:"reservation"`

	// Success/failure email
	Notify NotifyConfig `yaml:"notify" toml:"notify" json:"notify"`

	// Browser launch and element wait settings
	Browser BrowserConfig `yaml:"browser" toml:"browser" json:"browser"`

	// Fixed waits between steps
	Pauses PauseConfig `yaml:"pauses" toml:"pauses" json:"pauses"`

	// Booking site endpoints
	Site SiteConfig `yaml:"site" toml:"site" json:"site"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" toml:"logging" json:"logging"`

	// DryRun stops right before the final reserve click
	DryRun bool `yaml:"dry_run" toml:"dry_run" json:"dry_run"`

	// SummaryFile receives a JSON run summary when set
	SummaryFile string `yaml:"summary_file" toml:"summary_file" json:"summary_file"`
}

// AccountConfig holds the booking site login.
type AccountConfig struct {
	Email    string `yaml:"email" toml:"email" json:"email"`
	Password string `yaml:"password" toml:"password" json:"-"`
}

// ReservationConfig describes the table to book.
type ReservationConfig struct {
	VenueURL  string   `yaml:"venue_url" toml:"venue_url" json:"venue_url"`
	Date      string   `yaml:"date" toml:"date" json:"date"`
	PartySize int      `yaml:"party_size" toml:"party_size" json:"party_size"`
	Times     []string `yaml:"times" toml:"times" json:"times"` // Ranked, highest priority first
}

// NotifyConfig defines the SMTP relay used for notifications
type NotifyConfig struct {
	Enabled        bool     `yaml:"enabled" toml:"enabled" json:"enabled"`
	SMTPHost       string   `yaml:"smtp_host" toml:"smtp_host" json:"smtp_host"`
	SMTPPort       int      `yaml:"smtp_port" toml:"smtp_port" json:"smtp_port"`
	SenderEmail    string   `yaml:"sender_email" toml:"sender_email" json:"sender_email"`
	SenderPassword string   `yaml:"sender_password" toml:"sender_password" json:"-"`
	Recipients     []string `yaml:"recipients" toml:"recipients" json:"recipients"`
}

// BrowserConfig controls the Chromium instance and how long to wait for elements.
type BrowserConfig struct {
	Headless            bool          `yaml:"headless" toml:"headless" json:"headless"`
	Timeout             time.Duration `yaml:"timeout" toml:"timeout" json:"timeout"`                         // General element wait
	ModalTimeout        time.Duration `yaml:"modal_timeout" toml:"modal_timeout" json:"modal_timeout"`       // Announcement modal dismissal
	FrameTimeout        time.Duration `yaml:"frame_timeout" toml:"frame_timeout" json:"frame_timeout"`       // Reservation widget iframe
	ConfirmTimeout      time.Duration `yaml:"confirm_timeout" toml:"confirm_timeout" json:"confirm_timeout"` // Optional secondary confirmation
	ViewportWidth       int           `yaml:"viewport_width" toml:"viewport_width" json:"viewport_width"`
	ViewportHeight      int           `yaml:"viewport_height" toml:"viewport_height" json:"viewport_height"`
	Args                []string      `yaml:"args" toml:"args" json:"args"`
	ScreenshotOnFailure bool          `yaml:"screenshot_on_failure" toml:"screenshot_on_failure" json:"screenshot_on_failure"`
}

// PauseConfig holds the fixed waits the site needs between steps.
type PauseConfig struct {
	AfterLogin     time.Duration `yaml:"after_login" toml:"after_login" json:"after_login"`
	AfterPartySize time.Duration `yaml:"after_party_size" toml:"after_party_size" json:"after_party_size"`
	MonthStep      time.Duration `yaml:"month_step" toml:"month_step" json:"month_step"`
	BeforeSlots    time.Duration `yaml:"before_slots" toml:"before_slots" json:"before_slots"`
	AfterSlotClick time.Duration `yaml:"after_slot_click" toml:"after_slot_click" json:"after_slot_click"`
	BeforeReserve  time.Duration `yaml:"before_reserve" toml:"before_reserve" json:"before_reserve"`
	BeforeConfirm  time.Duration `yaml:"before_confirm" toml:"before_confirm" json:"before_confirm"`
	Settle         time.Duration `yaml:"settle" toml:"settle" json:"settle"`
}

// SiteConfig points at the booking site.
type SiteConfig struct {
	BaseURL    string `yaml:"base_url" toml:"base_url" json:"base_url"`
	WidgetHost string `yaml:"widget_host" toml:"widget_host" json:"widget_host"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" toml:"verbosity" json:"verbosity"`
}

// DefaultConfig returns the configuration the bot was originally tuned with.
func DefaultConfig() *Config {
	return &Config{
		Reservation: ReservationConfig{
			VenueURL:  "https://resy.com/cities/chicago-il/venues/the-duck-inn",
			PartySize: 4,
			Times: []string{
				"7:00 PM", "7:15 PM", "6:45 PM", "7:30 PM", "6:30 PM",
				"8:00 PM", "6:15 PM", "8:15 PM", "5:45 PM", "8:30 PM",
			},
		},
		Notify: NotifyConfig{
			Enabled:  true,
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 465,
		},
		Browser: BrowserConfig{
			Headless:            false,
			Timeout:             20 * time.Second,
			ModalTimeout:        10 * time.Second,
			FrameTimeout:        20 * time.Second,
			ConfirmTimeout:      5 * time.Second,
			ViewportWidth:       1280,
			ViewportHeight:      900,
			Args:                []string{"--disable-gpu"},
			ScreenshotOnFailure: true,
		},
		Pauses: PauseConfig{
			AfterLogin:     3 * time.Second,
			AfterPartySize: 2 * time.Second,
			MonthStep:      500 * time.Millisecond,
			BeforeSlots:    3 * time.Second,
			AfterSlotClick: 10 * time.Second,
			BeforeReserve:  1 * time.Second,
			BeforeConfirm:  500 * time.Millisecond,
			Settle:         5 * time.Second,
		},
		Site: SiteConfig{
			BaseURL:    "https://resy.com",
			WidgetHost: "widgets.resy.com",
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

// TargetDate parses Reservation.Date.
func (c *Config) TargetDate() (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(c.Reservation.Date))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reservation date %q (want YYYY-MM-DD): %w", c.Reservation.Date, err)
	}
	return d, nil
}

// Validate checks that notifications can be sent. A disabled section is always valid.
// It is checked on its own when the rest of the config is broken, so the
// error can still be emailed.
func (n *NotifyConfig) Validate() error {
	if !n.Enabled {
		return nil
	}
	if n.SMTPHost == "" {
		return fmt.Errorf("smtp host is required when notifications are enabled")
	}
	if n.SMTPPort <= 0 || n.SMTPPort > 65535 {
		return fmt.Errorf("invalid smtp port: %d", n.SMTPPort)
	}
	if _, err := mail.ParseAddress(n.SenderEmail); err != nil {
		return fmt.Errorf("invalid sender email %q (SENDER_EMAIL): %w", n.SenderEmail, err)
	}
	if len(n.Recipients) == 0 {
		return fmt.Errorf("at least one recipient is required (RECEIVER_EMAIL)")
	}
	for _, r := range n.Recipients {
		if _, err := mail.ParseAddress(r); err != nil {
			return fmt.Errorf("invalid recipient email %q: %w", r, err)
		}
	}
	return nil
}

// Validate validates the configuration
//
//nolint:gocyclo
func (c *Config) Validate() error {
	if c.Account.Email == "" {
		return fmt.Errorf("account email is required (RESY_EMAIL)")
	}
	if c.Account.Password == "" {
		return fmt.Errorf("account password is required (RESY_PASSWORD)")
	}

	if err := validateURL("venue url", c.Reservation.VenueURL); err != nil {
		return err
	}
	if err := validateURL("site base url", c.Site.BaseURL); err != nil {
		return err
	}
	if c.Site.WidgetHost == "" {
		return fmt.Errorf("site widget host is required")
	}

	if _, err := c.TargetDate(); err != nil {
		return err
	}
	if c.Reservation.PartySize < 1 || c.Reservation.PartySize > 20 {
		return fmt.Errorf("party size must be between 1 and 20, got %d", c.Reservation.PartySize)
	}
	if len(c.Reservation.Times) == 0 {
		return fmt.Errorf("at least one preferred time is required")
	}
	if err := slots.Validate(c.Reservation.Times); err != nil {
		return err
	}

	if err := c.Notify.Validate(); err != nil {
		return err
	}

	timeouts := map[string]time.Duration{
		"timeout":         c.Browser.Timeout,
		"modal_timeout":   c.Browser.ModalTimeout,
		"frame_timeout":   c.Browser.FrameTimeout,
		"confirm_timeout": c.Browser.ConfirmTimeout,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("browser %s must be positive", name)
		}
	}
	for name, d := range c.Pauses.asMap() {
		if d < 0 {
			return fmt.Errorf("pause %s cannot be negative", name)
		}
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

func (p PauseConfig) asMap() map[string]time.Duration {
	return map[string]time.Duration{
		"after_login":      p.AfterLogin,
		"after_party_size": p.AfterPartySize,
		"month_step":       p.MonthStep,
		"before_slots":     p.BeforeSlots,
		"after_slot_click": p.AfterSlotClick,
		"before_reserve":   p.BeforeReserve,
		"before_confirm":   p.BeforeConfirm,
		"settle":           p.Settle,
	}
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid %s %q: must be an absolute http(s) URL", name, raw)
	}
	return nil
}

// Masked returns a copy safe to print: secrets are replaced by a fixed marker.
func (c *Config) Masked() *Config {
	masked := *c
	masked.Reservation.Times = append([]string(nil), c.Reservation.Times...)
	masked.Notify.Recipients = append([]string(nil), c.Notify.Recipients...)
	masked.Browser.Args = append([]string(nil), c.Browser.Args...)
	masked.Account.Password = mask(c.Account.Password)
	masked.Notify.SenderPassword = mask(c.Notify.SenderPassword)
	return &masked
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
