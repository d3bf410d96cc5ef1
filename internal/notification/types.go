// Package notification provides deduplicated, fanned-out in-app
// notifications for admin users.
package notification

// Notification types. The (type, related_id) pair is the dedup key in
// the notification_events ledger, so each type fires at most once per
// related entity.
const (
	TypeQuotationExpiring24h = "quotation_expiring_24h"
	TypeQuotationExpiring2h  = "quotation_expiring_2h"
	TypeQuotationExpired     = "quotation_expired"
	TypeQuotationApproved    = "quotation_approved"
	TypeQuotationRejected    = "quotation_rejected"
	TypeQuotationConverted   = "quotation_converted"

	TypeBookingReminder24h = "booking_reminder_24h"
	TypeBookingReminder2h  = "booking_reminder_2h"
	TypeBookingCreated     = "booking_created"
	TypeBookingAssigned    = "booking_assigned"
	TypeBookingCancelled   = "booking_cancelled"

	// Email-sent markers carry their own types instead of reusing the
	// in-app reminder type with a marker string in the title.
	TypeBookingReminder24hEmailSent = "booking_reminder_24h_email_sent"
	TypeBookingReminder2hEmailSent  = "booking_reminder_2h_email_sent"
)
