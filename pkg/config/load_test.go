package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "resybot.yaml", `
reservation:
  venue_url: https://resy.com/cities/new-york-ny/venues/lilia
  date: "2025-09-12"
  party_size: 2
  times: ["8:00 PM", "7:* PM"]
browser:
  headless: true
  timeout: 30s
pauses:
  after_slot_click: 4s
dry_run: true
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://resy.com/cities/new-york-ny/venues/lilia", c.Reservation.VenueURL)
	assert.Equal(t, "2025-09-12", c.Reservation.Date)
	assert.Equal(t, 2, c.Reservation.PartySize)
	assert.Equal(t, []string{"8:00 PM", "7:* PM"}, c.Reservation.Times)
	assert.True(t, c.Browser.Headless)
	assert.Equal(t, 30*time.Second, c.Browser.Timeout)
	assert.Equal(t, 4*time.Second, c.Pauses.AfterSlotClick)
	assert.True(t, c.DryRun)

	// Untouched keys keep their defaults.
	assert.Equal(t, 10*time.Second, c.Browser.ModalTimeout)
	assert.Equal(t, "smtp.gmail.com", c.Notify.SMTPHost)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "resybot.toml", `
dry_run = true

[reservation]
date = "2025-10-01"
party_size = 6
times = ["6:30 PM"]

[notify]
smtp_host = "smtp.example.com"
smtp_port = 587
recipients = ["a@example.com", "b@example.com"]

[browser]
confirm_timeout = "8s"
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "2025-10-01", c.Reservation.Date)
	assert.Equal(t, 6, c.Reservation.PartySize)
	assert.Equal(t, []string{"6:30 PM"}, c.Reservation.Times)
	assert.Equal(t, "smtp.example.com", c.Notify.SMTPHost)
	assert.Equal(t, 587, c.Notify.SMTPPort)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, c.Notify.Recipients)
	assert.Equal(t, 8*time.Second, c.Browser.ConfirmTimeout)
	assert.True(t, c.DryRun)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	bad := writeFile(t, "bad.yaml", "reservation: [unclosed")
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvResyEmail:      " diner@example.com ",
		EnvResyPassword:   " secret ",
		EnvVenueURL:       "https://resy.com/cities/chicago-il/venues/kasama",
		EnvDate:           "2025-11-20",
		EnvPartySize:      "3",
		EnvTimes:          "6:00 PM, 6:15 PM",
		EnvSenderEmail:    "bot@example.com",
		EnvSenderPassword: "app-pass",
		EnvReceiverEmail:  "a@example.com, b@example.com",
		EnvSMTPHost:       "smtp.example.com",
		EnvSMTPPort:       "587",
	}
	c := DefaultConfig()

	require.NoError(t, ApplyEnv(c, func(k string) string { return env[k] }))

	assert.Equal(t, "diner@example.com", c.Account.Email)
	assert.Equal(t, " secret ", c.Account.Password)
	assert.Equal(t, "https://resy.com/cities/chicago-il/venues/kasama", c.Reservation.VenueURL)
	assert.Equal(t, "2025-11-20", c.Reservation.Date)
	assert.Equal(t, 3, c.Reservation.PartySize)
	assert.Equal(t, []string{"6:00 PM", "6:15 PM"}, c.Reservation.Times)
	assert.Equal(t, "bot@example.com", c.Notify.SenderEmail)
	assert.Equal(t, "app-pass", c.Notify.SenderPassword)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, c.Notify.Recipients)
	assert.Equal(t, "smtp.example.com", c.Notify.SMTPHost)
	assert.Equal(t, 587, c.Notify.SMTPPort)
}

func TestApplyEnv_EmptyLeavesValues(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, ApplyEnv(c, func(string) string { return "" }))
	assert.Equal(t, DefaultConfig(), c)
}

func TestApplyEnv_InvalidNumbers(t *testing.T) {
	c := DefaultConfig()
	err := ApplyEnv(c, func(k string) string {
		if k == EnvPartySize {
			return "four"
		}
		return ""
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvPartySize)

	err = ApplyEnv(c, func(k string) string {
		if k == EnvSMTPPort {
			return "smtp"
		}
		return ""
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvSMTPPort)
}

func TestLoadEnvFile(t *testing.T) {
	loaded, err := LoadEnvFile(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.False(t, loaded)

	loaded, err = LoadEnvFile("")
	require.NoError(t, err)
	assert.False(t, loaded)

	path := writeFile(t, ".env", "RESYBOT_TEST_ENV_FILE=from-file\n")
	t.Setenv("RESYBOT_TEST_ENV_FILE", "")
	os.Unsetenv("RESYBOT_TEST_ENV_FILE")

	loaded, err = LoadEnvFile(path)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "from-file", os.Getenv("RESYBOT_TEST_ENV_FILE"))
}

func TestLoadEnvFile_DoesNotOverrideEnvironment(t *testing.T) {
	path := writeFile(t, ".env", "RESYBOT_TEST_KEEP=from-file\n")
	t.Setenv("RESYBOT_TEST_KEEP", "from-env")

	_, err := LoadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", os.Getenv("RESYBOT_TEST_KEEP"))
}

func TestOverridesApply(t *testing.T) {
	headless := true
	dryRun := true
	c := DefaultConfig()

	Overrides{
		VenueURL:    "https://resy.com/cities/x/venues/y",
		Date:        "2025-12-24",
		PartySize:   2,
		Times:       "9:00 PM,9:15 PM",
		Headless:    &headless,
		DryRun:      &dryRun,
		SummaryFile: "summary.json",
		Verbosity:   "debug",
		NoNotify:    true,
	}.Apply(c)

	assert.Equal(t, "https://resy.com/cities/x/venues/y", c.Reservation.VenueURL)
	assert.Equal(t, "2025-12-24", c.Reservation.Date)
	assert.Equal(t, 2, c.Reservation.PartySize)
	assert.Equal(t, []string{"9:00 PM", "9:15 PM"}, c.Reservation.Times)
	assert.True(t, c.Browser.Headless)
	assert.True(t, c.DryRun)
	assert.Equal(t, "summary.json", c.SummaryFile)
	assert.Equal(t, "debug", c.Logging.Verbosity)
	assert.False(t, c.Notify.Enabled)
}

func TestOverridesApply_ZeroValueIsNoop(t *testing.T) {
	c := DefaultConfig()
	Overrides{}.Apply(c)
	assert.Equal(t, DefaultConfig(), c)
}
