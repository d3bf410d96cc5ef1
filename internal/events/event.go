// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"fleet_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Quotation Domain Events
// =============================================================================

// QuotationSent is published when a quotation is emailed to the customer.
type QuotationSent struct {
	BaseEvent
	QuotationID   uuid.UUID `json:"quotationId"`
	QuotationNo   string    `json:"quotationNo"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	ExpiryDate    time.Time `json:"expiryDate"`
}

func (e QuotationSent) EventName() string { return "quotations.sent" }

// QuotationApproved is published when a customer approves a quotation.
type QuotationApproved struct {
	BaseEvent
	QuotationID  uuid.UUID `json:"quotationId"`
	QuotationNo  string    `json:"quotationNo"`
	CustomerName string    `json:"customerName"`
}

func (e QuotationApproved) EventName() string { return "quotations.approved" }

// QuotationRejected is published when a customer rejects a quotation.
type QuotationRejected struct {
	BaseEvent
	QuotationID  uuid.UUID `json:"quotationId"`
	QuotationNo  string    `json:"quotationNo"`
	CustomerName string    `json:"customerName"`
	Reason       string    `json:"reason,omitempty"`
}

func (e QuotationRejected) EventName() string { return "quotations.rejected" }

// QuotationConverted is published when a quotation is turned into a booking.
type QuotationConverted struct {
	BaseEvent
	QuotationID uuid.UUID `json:"quotationId"`
	QuotationNo string    `json:"quotationNo"`
	BookingID   uuid.UUID `json:"bookingId"`
}

func (e QuotationConverted) EventName() string { return "quotations.converted" }

// QuotationExpired is published when the expiry sweep moves a quotation
// from sent to expired.
type QuotationExpired struct {
	BaseEvent
	QuotationID uuid.UUID `json:"quotationId"`
	QuotationNo string    `json:"quotationNo"`
	ExpiryDate  time.Time `json:"expiryDate"`
}

func (e QuotationExpired) EventName() string { return "quotations.expired" }

// =============================================================================
// Booking Domain Events
// =============================================================================

// BookingCreated is published when a new booking is created.
type BookingCreated struct {
	BaseEvent
	BookingID    uuid.UUID `json:"bookingId"`
	BookingNo    string    `json:"bookingNo"`
	CustomerName string    `json:"customerName"`
	PickupTime   time.Time `json:"pickupTime"`
}

func (e BookingCreated) EventName() string { return "bookings.created" }

// BookingAssigned is published when a driver and vehicle are assigned.
type BookingAssigned struct {
	BaseEvent
	BookingID  uuid.UUID `json:"bookingId"`
	BookingNo  string    `json:"bookingNo"`
	DriverID   uuid.UUID `json:"driverId"`
	DriverName string    `json:"driverName"`
}

func (e BookingAssigned) EventName() string { return "bookings.assigned" }

// BookingCancelled is published when a booking is cancelled.
type BookingCancelled struct {
	BaseEvent
	BookingID uuid.UUID `json:"bookingId"`
	BookingNo string    `json:"bookingNo"`
	Reason    string    `json:"reason,omitempty"`
}

func (e BookingCancelled) EventName() string { return "bookings.cancelled" }

// =============================================================================
// Reminder Pipeline Events
// =============================================================================

// TripReminderEmailSent is published after a reminder email for an upcoming
// trip has been handed to the email provider.
type TripReminderEmailSent struct {
	BaseEvent
	BookingID uuid.UUID `json:"bookingId"`
	BookingNo string    `json:"bookingNo"`
	Window    string    `json:"window"` // "24h" or "2h"
	Recipient string    `json:"recipient"`
}

func (e TripReminderEmailSent) EventName() string { return "reminders.trip_email.sent" }

// ReminderScanCompleted is published after one full pipeline run.
type ReminderScanCompleted struct {
	BaseEvent
	Processed  int           `json:"processed"`
	EmailsSent int           `json:"emailsSent"`
	Expired    int           `json:"expired"`
	Duration   time.Duration `json:"duration"`
}

func (e ReminderScanCompleted) EventName() string { return "reminders.scan.completed" }
