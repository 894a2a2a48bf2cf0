package booking

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/resybot/pkg/config"
	"github.com/entrhq/resybot/pkg/logging"
	"github.com/entrhq/resybot/pkg/slots"
)

func runFlow(t *testing.T, page *fakePage, cfg *config.Config) (*Booking, error) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	flow := NewFlow(page, cfg, NewReporterTo(&bytes.Buffer{}, LogLevelDebug), logging.Discard("test"))
	return flow.Run(context.Background())
}

func TestFlow_BooksFirstPreferredSlot(t *testing.T) {
	page := bookablePage()

	booking, err := runFlow(t, page, nil)
	require.NoError(t, err)

	// Default preferences start with 7:00 PM, which is the third button.
	assert.Equal(t, "7:00 PM", booking.Match.Preference)
	assert.Equal(t, 2, booking.Match.Index)
	assert.Equal(t, "7:00 PM", booking.Slot())
	assert.True(t, booking.Reserved)
	assert.True(t, booking.Confirmed)

	assert.Equal(t, []string{"https://resy.com", "https://resy.com/cities/chicago-il/venues/the-duck-inn"}, page.visited)
	assert.Equal(t, "diner@example.com", page.fills[selEmailInput])
	assert.Equal(t, "secret", page.fills[selPasswordInput])
	assert.Equal(t, "4", page.selected[selPartySize])

	assert.Equal(t, 2, page.clicked(selNextMonth))
	assert.Equal(t, 1, page.clicked(dayButton("August 5, 2030.")))

	var slotClick bool
	for _, c := range page.clicks {
		if c.Selector == selSlotButton {
			slotClick = true
			assert.Equal(t, 2, c.Nth)
			assert.True(t, c.Scroll)
			assert.True(t, c.Script)
		}
	}
	assert.True(t, slotClick, "slot button was never clicked")

	assert.Equal(t, 1, page.frame.clicked(selBookButton))
	assert.Equal(t, 1, page.frame.clicked(selConfirmButton))
	assert.Zero(t, page.clicked(selBookButton), "reserve must be clicked inside the frame")
}

func TestFlow_NoAnnouncementModal(t *testing.T) {
	page := bookablePage()
	page.missing[selAnnouncementSkip] = true

	_, err := runFlow(t, page, nil)
	assert.NoError(t, err)
}

func TestFlow_NoSecondaryConfirmation(t *testing.T) {
	page := bookablePage()
	page.frame.missing[selConfirmButton] = true

	booking, err := runFlow(t, page, nil)
	require.NoError(t, err)
	assert.True(t, booking.Reserved)
	assert.False(t, booking.Confirmed)
}

func TestFlow_DryRunStopsBeforeReserve(t *testing.T) {
	page := bookablePage()
	cfg := testConfig()
	cfg.DryRun = true

	booking, err := runFlow(t, page, cfg)
	require.NoError(t, err)
	assert.Equal(t, "7:00 PM", booking.Slot())
	assert.False(t, booking.Reserved)
	assert.Empty(t, page.frame.clicks)
}

func TestFlow_CurrentMonthAlreadyShown(t *testing.T) {
	page := bookablePage()
	page.months = []string{"August 2030"}

	_, err := runFlow(t, page, nil)
	require.NoError(t, err)
	assert.Zero(t, page.clicked(selNextMonth))
}

func TestFlow_MonthNeverReached(t *testing.T) {
	page := bookablePage()
	page.months = []string{"June 2030"}
	page.stuck = true

	_, err := runFlow(t, page, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMonthNotReached)
	assert.Contains(t, err.Error(), "after 12 attempts")
	assert.Equal(t, "date", FailedStep(err))
	assert.Equal(t, MaxMonthAttempts, page.clicked(selNextMonth))
}

func TestFlow_CalendarPastTargetMonth(t *testing.T) {
	page := bookablePage()
	page.months = []string{"September 2030"}

	_, err := runFlow(t, page, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMonthNotReached)
	assert.Zero(t, page.clicked(selNextMonth))
}

func TestFlow_MonthLabelMissing(t *testing.T) {
	page := bookablePage()
	page.missing[selMonthTitle] = true

	_, err := runFlow(t, page, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find month navigation or month label")
	assert.False(t, IsTimeout(err), "a missing month label is reported as an error")
}

func TestFlow_NoPreferredSlot(t *testing.T) {
	page := bookablePage()
	page.texts[selSlotButton] = []string{"10:00 PM", "10:30 PM"}

	_, err := runFlow(t, page, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, slots.ErrNoPreferredSlot)
	assert.Equal(t, "time slot", FailedStep(err))
	assert.Zero(t, page.clicked(selSlotButton))
}

func TestFlow_NoSlotsOffered(t *testing.T) {
	page := bookablePage()
	page.missing[selSlotButton] = true

	_, err := runFlow(t, page, nil)
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "an empty slot list is a timeout")
	assert.NotErrorIs(t, err, slots.ErrNoPreferredSlot)
	assert.Equal(t, "time slot", FailedStep(err))
}

func TestFlow_ReservationFrameMissing(t *testing.T) {
	page := bookablePage()
	page.missing[widgetFrame("widgets.resy.com")] = true

	_, err := runFlow(t, page, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find reservation frame")
	assert.Equal(t, "reservation frame", FailedStep(err))
	assert.False(t, IsTimeout(err))
}

func TestFlow_ReserveButtonMissing(t *testing.T) {
	page := bookablePage()
	page.frame.missing[selBookButton] = true

	_, err := runFlow(t, page, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'Reserve Now' button not found, reservation incomplete")
	assert.Equal(t, "reserve", FailedStep(err))
	assert.False(t, IsTimeout(err))
}

func TestFlow_LoginFailure(t *testing.T) {
	page := bookablePage()
	page.missing[selLoginMenu] = true

	_, err := runFlow(t, page, nil)
	require.Error(t, err)
	assert.Equal(t, "login", FailedStep(err))
	assert.True(t, IsTimeout(err))
	assert.Len(t, page.visited, 1)
}

func TestFlow_CancelledContext(t *testing.T) {
	page := bookablePage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	flow := NewFlow(page, testConfig(), NewReporterTo(&bytes.Buffer{}, LogLevelQuiet), logging.Discard("test"))
	_, err := flow.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, page.visited)
}

func TestFlow_PausesAreApplied(t *testing.T) {
	page := bookablePage()
	cfg := testConfig()
	cfg.Pauses.AfterLogin = 3
	cfg.Pauses.Settle = 5

	_, err := runFlow(t, page, cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 8, page.paused)
}
