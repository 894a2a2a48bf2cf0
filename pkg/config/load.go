package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/resybot/pkg/slots"
)

// Environment variables read by ApplyEnv.
const (
	EnvResyEmail      = "RESY_EMAIL"
	EnvResyPassword   = "RESY_PASSWORD"
	EnvVenueURL       = "RESY_VENUE_URL"
	EnvDate           = "RESY_DATE"
	EnvPartySize      = "RESY_PARTY_SIZE"
	EnvTimes          = "RESY_TIMES"
	EnvSenderEmail    = "SENDER_EMAIL"
	EnvSenderPassword = "SENDER_PASSWORD"
	EnvReceiverEmail  = "RECEIVER_EMAIL"
	EnvSMTPHost       = "SMTP_HOST"
	EnvSMTPPort       = "SMTP_PORT"
)

// Load returns DefaultConfig overlaid with the file at path.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// LoadEnvFile loads KEY=value pairs from path into the process environment.
// Variables already set are left alone, and a missing file is not an error.
func LoadEnvFile(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return true, nil
}

// ApplyEnv overlays non-empty environment variables onto c.
// getenv is usually os.Getenv.
func ApplyEnv(c *Config, getenv func(string) string) error {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	setString(&c.Account.Email, EnvResyEmail)
	// Passwords may legitimately start or end with spaces.
	if v := getenv(EnvResyPassword); v != "" {
		c.Account.Password = v
	}
	setString(&c.Reservation.VenueURL, EnvVenueURL)
	setString(&c.Reservation.Date, EnvDate)
	setString(&c.Notify.SenderEmail, EnvSenderEmail)
	if v := getenv(EnvSenderPassword); v != "" {
		c.Notify.SenderPassword = v
	}
	setString(&c.Notify.SMTPHost, EnvSMTPHost)

	if v := strings.TrimSpace(getenv(EnvPartySize)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPartySize, v, err)
		}
		c.Reservation.PartySize = n
	}
	if v := strings.TrimSpace(getenv(EnvSMTPPort)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSMTPPort, v, err)
		}
		c.Notify.SMTPPort = n
	}
	if v := getenv(EnvTimes); strings.TrimSpace(v) != "" {
		c.Reservation.Times = slots.ParseRanked(v)
	}
	if v := getenv(EnvReceiverEmail); strings.TrimSpace(v) != "" {
		c.Notify.Recipients = splitList(v)
	}

	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Overrides carries command-line values. Zero values leave the config untouched.
type Overrides struct {
	VenueURL    string
	Date        string
	PartySize   int
	Times       string
	Headless    *bool
	DryRun      *bool
	SummaryFile string
	Verbosity   string
	NoNotify    bool
}

// Apply writes the set overrides onto c.
func (o Overrides) Apply(c *Config) {
	if o.VenueURL != "" {
		c.Reservation.VenueURL = o.VenueURL
	}
	if o.Date != "" {
		c.Reservation.Date = o.Date
	}
	if o.PartySize != 0 {
		c.Reservation.PartySize = o.PartySize
	}
	if ranked := slots.ParseRanked(o.Times); len(ranked) > 0 {
		c.Reservation.Times = ranked
	}
	if o.Headless != nil {
		c.Browser.Headless = *o.Headless
	}
	if o.DryRun != nil {
		c.DryRun = *o.DryRun
	}
	if o.SummaryFile != "" {
		c.SummaryFile = o.SummaryFile
	}
	if o.Verbosity != "" {
		c.Logging.Verbosity = o.Verbosity
	}
	if o.NoNotify {
		c.Notify.Enabled = false
	}
}
