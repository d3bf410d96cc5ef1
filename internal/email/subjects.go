package email

import "fmt"

const (
	subjectQuotationSentFmt       = "Your Quotation %s is Ready"
	subjectBookingConfirmationFmt = "Booking Confirmed - %s"
	subjectTripReminderFmt        = "%sYour Trip is Coming Soon - %s (%s reminder)"

	urgentPrefix = "URGENT: "
)

// TripReminderSubject builds the reminder subject line. The 2-hour window
// carries an URGENT prefix; the 24-hour window does not.
func TripReminderSubject(bookingNo, windowText string, urgent bool) string {
	prefix := ""
	if urgent {
		prefix = urgentPrefix
	}
	return fmt.Sprintf(subjectTripReminderFmt, prefix, bookingNo, windowText)
}
