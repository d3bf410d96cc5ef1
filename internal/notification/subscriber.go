package notification

import (
	"context"
	"fmt"

	"fleet_portal_backend/internal/events"
	"fleet_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// Subscriber turns domain events into admin notifications. Each event
// fires at most once per (type, relatedId) through the ledger, so a
// replayed event is a no-op.
type Subscriber struct {
	svc *Service
	log *logger.Logger
}

func NewSubscriber(svc *Service, log *logger.Logger) *Subscriber {
	return &Subscriber{svc: svc, log: log}
}

// Register subscribes the notification handlers on the event bus.
func (s *Subscriber) Register(bus events.Bus) {
	bus.Subscribe("quotations.approved", events.HandlerFunc(s.onQuotationApproved))
	bus.Subscribe("quotations.rejected", events.HandlerFunc(s.onQuotationRejected))
	bus.Subscribe("quotations.converted", events.HandlerFunc(s.onQuotationConverted))
	bus.Subscribe("bookings.created", events.HandlerFunc(s.onBookingCreated))
	bus.Subscribe("bookings.assigned", events.HandlerFunc(s.onBookingAssigned))
	bus.Subscribe("bookings.cancelled", events.HandlerFunc(s.onBookingCancelled))
}

func (s *Subscriber) onQuotationApproved(ctx context.Context, e events.Event) error {
	ev, ok := e.(events.QuotationApproved)
	if !ok {
		return nil
	}
	return s.fire(ctx, TypeQuotationApproved, ev.QuotationID,
		"Quotation Approved",
		fmt.Sprintf("Quotation %s was approved by %s.", ev.QuotationNo, ev.CustomerName))
}

func (s *Subscriber) onQuotationRejected(ctx context.Context, e events.Event) error {
	ev, ok := e.(events.QuotationRejected)
	if !ok {
		return nil
	}
	msg := fmt.Sprintf("Quotation %s was rejected by %s.", ev.QuotationNo, ev.CustomerName)
	if ev.Reason != "" {
		msg = fmt.Sprintf("%s Reason: %s", msg, ev.Reason)
	}
	return s.fire(ctx, TypeQuotationRejected, ev.QuotationID, "Quotation Rejected", msg)
}

func (s *Subscriber) onQuotationConverted(ctx context.Context, e events.Event) error {
	ev, ok := e.(events.QuotationConverted)
	if !ok {
		return nil
	}
	return s.fire(ctx, TypeQuotationConverted, ev.QuotationID,
		"Quotation Converted",
		fmt.Sprintf("Quotation %s was converted to a booking.", ev.QuotationNo))
}

func (s *Subscriber) onBookingCreated(ctx context.Context, e events.Event) error {
	ev, ok := e.(events.BookingCreated)
	if !ok {
		return nil
	}
	return s.fire(ctx, TypeBookingCreated, ev.BookingID,
		"New Booking",
		fmt.Sprintf("Booking %s was created for %s.", ev.BookingNo, ev.CustomerName))
}

func (s *Subscriber) onBookingAssigned(ctx context.Context, e events.Event) error {
	ev, ok := e.(events.BookingAssigned)
	if !ok {
		return nil
	}
	return s.fire(ctx, TypeBookingAssigned, ev.BookingID,
		"Booking Assigned",
		fmt.Sprintf("Booking %s was assigned to %s.", ev.BookingNo, ev.DriverName))
}

func (s *Subscriber) onBookingCancelled(ctx context.Context, e events.Event) error {
	ev, ok := e.(events.BookingCancelled)
	if !ok {
		return nil
	}
	msg := fmt.Sprintf("Booking %s was cancelled.", ev.BookingNo)
	if ev.Reason != "" {
		msg = fmt.Sprintf("%s Reason: %s", msg, ev.Reason)
	}
	return s.fire(ctx, TypeBookingCancelled, ev.BookingID, "Booking Cancelled", msg)
}

func (s *Subscriber) fire(ctx context.Context, eventType string, relatedID uuid.UUID, title, message string) error {
	_, err := s.svc.FireOnce(ctx, eventType, relatedID, title, message)
	if err != nil {
		s.log.Error("notification fire failed", "type", eventType, "relatedId", relatedID, "error", err)
	}
	return err
}
