package booking

import "fmt"

// Resy DOM hooks. These track the live site and are the first thing to check
// when a step starts timing out.
const (
	selLoginMenu        = "resy-menu-container[on-login='vm.onLogin']"
	selModal            = "div.ReactModal__Content"
	selEmailInput       = "input[type='email']"
	selPasswordInput    = "input[type='password']"
	selContinueButton   = "button:has-text('Continue')"
	selAnnouncementSkip = "button[data-test-id='announcement-button-secondary']"
	selPartySize        = "#party_size"
	selDateButton       = "#DropdownGroup__selector--date"
	selMonthTitle       = ".CalendarMonth__Title"
	selNextMonth        = ".ResyCalendar__nav_right"
	selSlotButton       = "button.ReservationButton.Button--primary"
	selBookButton       = "button[data-test-id='order_summary_page-button-book']"
	selConfirmButton    = "xpath=//button[.//span[text()='Confirm']]"
)

// dayButton selects the calendar cell for the date described by label.
func dayButton(label string) string {
	return fmt.Sprintf("button[aria-label='%s']", label)
}

// widgetFrame selects the checkout iframe served from host.
func widgetFrame(host string) string {
	return fmt.Sprintf("iframe[src*='%s']", host)
}
