// Package service runs the scheduled notification and reminder pipeline:
// quotation expiry warnings, the quotation expiry sweep, and booking trip
// reminders with their customer emails.
package service

import (
	"context"
	"fmt"
	"time"

	brepo "fleet_portal_backend/internal/bookings/repository"
	bookingsvc "fleet_portal_backend/internal/bookings/service"
	"fleet_portal_backend/internal/email"
	"fleet_portal_backend/internal/events"
	"fleet_portal_backend/internal/notification"
	qrepo "fleet_portal_backend/internal/quotations/repository"
	"fleet_portal_backend/platform/config"
	"fleet_portal_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Lookahead windows. Each scan run claims anything inside the window, so
// the window is wider than the scan interval to avoid gaps between runs.
const (
	windowNearStart = 90 * time.Minute
	windowNearEnd   = 150 * time.Minute
	windowFarStart  = 23 * time.Hour
	windowFarEnd    = 25 * time.Hour

	windowText24h = "24 hours"
	windowText2h  = "2 hours"

	tripDefaultDuration = 2 * time.Hour
)

// QuotationSource is the slice of the quotations service the pipeline uses.
type QuotationSource interface {
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]qrepo.Quotation, error)
	ListExpiredBefore(ctx context.Context, now time.Time) ([]qrepo.Quotation, error)
	MarkExpired(ctx context.Context, id uuid.UUID) (bool, error)
}

// BookingSource is the slice of the bookings service the pipeline uses.
type BookingSource interface {
	ListRemindableForDay(ctx context.Context, day time.Time) ([]brepo.ReminderDetails, error)
}

// Notifier fires deduplicated admin notifications and tracks email markers.
type Notifier interface {
	FireOnce(ctx context.Context, eventType string, relatedID uuid.UUID, title, message string) (bool, error)
	Seen(ctx context.Context, eventType string, relatedID uuid.UUID) (bool, error)
}

// Result summarizes one pipeline run.
type Result struct {
	Processed  int `json:"processed"`
	Notified   int `json:"notified"`
	EmailsSent int `json:"emailsSent"`
	Expired    int `json:"expired"`
	Skipped    int `json:"skipped"`
}

type Service struct {
	quotations QuotationSource
	bookings   BookingSource
	notifier   Notifier
	mail       email.Sender
	cfg        config.EmailConfig
	bus        events.Bus
	log        *logger.Logger

	now func() time.Time
	loc *time.Location
}

func New(quotations QuotationSource, bookings BookingSource, notifier Notifier, mail email.Sender, cfg config.EmailConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		quotations: quotations,
		bookings:   bookings,
		notifier:   notifier,
		mail:       mail,
		cfg:        cfg,
		bus:        bus,
		log:        log,
		now:        time.Now,
		loc:        time.Local,
	}
}

// Run executes one full pipeline pass. The three stages are independent
// and run concurrently. Per-item failures are logged and skipped so one
// bad record never blocks the rest of the scan; a failed item leaves no
// ledger entry and is retried on the next run.
func (s *Service) Run(ctx context.Context) (Result, error) {
	start := s.now()

	var (
		quoteRes   Result
		expiryRes  Result
		bookingRes Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quoteRes, err = s.processQuotationWindows(gctx, start)
		return err
	})
	g.Go(func() error {
		var err error
		expiryRes, err = s.processQuotationExpiry(gctx, start)
		return err
	})
	g.Go(func() error {
		var err error
		bookingRes, err = s.processBookingReminders(gctx, start)
		return err
	})

	err := g.Wait()

	res := merge(quoteRes, expiryRes, bookingRes)
	duration := s.now().Sub(start)

	s.log.JobEvent("scheduled_notifications", res.Processed, float64(duration.Milliseconds()))
	s.log.Info("reminder scan completed",
		"notified", res.Notified,
		"emailsSent", res.EmailsSent,
		"expired", res.Expired,
		"skipped", res.Skipped,
	)

	if s.bus != nil {
		s.bus.Publish(ctx, events.ReminderScanCompleted{
			BaseEvent:  events.NewBaseEvent(),
			Processed:  res.Processed,
			EmailsSent: res.EmailsSent,
			Expired:    res.Expired,
			Duration:   duration,
		})
	}

	return res, err
}

func merge(parts ...Result) Result {
	var out Result
	for _, p := range parts {
		out.Processed += p.Processed
		out.Notified += p.Notified
		out.EmailsSent += p.EmailsSent
		out.Expired += p.Expired
		out.Skipped += p.Skipped
	}
	return out
}

// processQuotationWindows warns admins about sent quotations expiring
// roughly 24 hours and 2 hours from now.
func (s *Service) processQuotationWindows(ctx context.Context, now time.Time) (Result, error) {
	var res Result

	far, err := s.quotations.ListExpiringBetween(ctx, now.Add(windowFarStart), now.Add(windowFarEnd))
	if err != nil {
		return res, err
	}
	for _, q := range far {
		res.Processed++
		s.fireQuotationWarning(ctx, &res, notification.TypeQuotationExpiring24h, q, windowText24h)
	}

	near, err := s.quotations.ListExpiringBetween(ctx, now.Add(windowNearStart), now.Add(windowNearEnd))
	if err != nil {
		return res, err
	}
	for _, q := range near {
		res.Processed++
		s.fireQuotationWarning(ctx, &res, notification.TypeQuotationExpiring2h, q, windowText2h)
	}

	return res, nil
}

func (s *Service) fireQuotationWarning(ctx context.Context, res *Result, eventType string, q qrepo.Quotation, windowText string) {
	title := "Quotation Expiring Soon"
	message := fmt.Sprintf("Quotation %s for %s will expire in %s.", q.QuoteNumber, q.CustomerName, windowText)

	fired, err := s.notifier.FireOnce(ctx, eventType, q.ID, title, message)
	if err != nil {
		res.Skipped++
		s.log.Error("quotation expiry warning failed",
			"type", eventType, "quotationId", q.ID, "error", err)
		return
	}
	if fired {
		res.Notified++
	}
}

// processQuotationExpiry moves overdue sent quotations to expired and
// notifies admins once per quotation.
func (s *Service) processQuotationExpiry(ctx context.Context, now time.Time) (Result, error) {
	var res Result

	overdue, err := s.quotations.ListExpiredBefore(ctx, now)
	if err != nil {
		return res, err
	}

	for _, q := range overdue {
		res.Processed++

		transitioned, err := s.quotations.MarkExpired(ctx, q.ID)
		if err != nil {
			res.Skipped++
			s.log.Error("quotation expiry transition failed", "quotationId", q.ID, "error", err)
			continue
		}
		if !transitioned {
			// Raced with a conversion or another run.
			continue
		}
		res.Expired++

		fired, err := s.notifier.FireOnce(ctx, notification.TypeQuotationExpired, q.ID,
			"Quotation Expired",
			fmt.Sprintf("Quotation %s for %s has expired without a response.", q.QuoteNumber, q.CustomerName))
		if err != nil {
			s.log.Error("quotation expired notification failed", "quotationId", q.ID, "error", err)
			continue
		}
		if fired {
			res.Notified++
		}
	}

	return res, nil
}

// processBookingReminders handles both reminder windows: every remindable
// booking on tomorrow's calendar day gets the 24-hour reminder, and
// today's bookings whose pickup falls 1.5 to 2.5 hours out get the
// urgent 2-hour reminder.
func (s *Service) processBookingReminders(ctx context.Context, now time.Time) (Result, error) {
	var res Result

	local := now.In(s.loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	tomorrow := today.AddDate(0, 0, 1)

	farList, err := s.bookings.ListRemindableForDay(ctx, tomorrow)
	if err != nil {
		return res, err
	}
	for _, b := range farList {
		res.Processed++
		s.fireBookingReminder(ctx, &res, notification.TypeBookingReminder24h, b, windowText24h, false)
		s.sendTripReminderEmail(ctx, &res, b, windowText24h, false)
	}

	nearList, err := s.bookings.ListRemindableForDay(ctx, today)
	if err != nil {
		return res, err
	}
	for _, b := range nearList {
		pickup := bookingsvc.PickupInstant(b.Date, b.Time, s.loc)
		if !pickup.After(now.Add(windowNearStart)) || !pickup.Before(now.Add(windowNearEnd)) {
			continue
		}
		res.Processed++
		s.fireBookingReminder(ctx, &res, notification.TypeBookingReminder2h, b, windowText2h, true)
		s.sendTripReminderEmail(ctx, &res, b, windowText2h, true)
	}

	return res, nil
}

func (s *Service) fireBookingReminder(ctx context.Context, res *Result, eventType string, b brepo.ReminderDetails, windowText string, urgent bool) {
	title := "Upcoming Trip Reminder"
	if urgent {
		title = "Trip Starting Soon"
	}
	message := fmt.Sprintf("Booking %s for %s starts in %s (%s at %s).",
		b.BookingNo, b.CustomerName, windowText, b.Date.Format("2006-01-02"), b.Time)

	fired, err := s.notifier.FireOnce(ctx, eventType, b.ID, title, message)
	if err != nil {
		res.Skipped++
		s.log.Error("booking reminder notification failed",
			"type", eventType, "bookingId", b.ID, "error", err)
		return
	}
	if fired {
		res.Notified++
	}
}

// sendTripReminderEmail emails the customer for one booking and window.
// The sent marker is written only after the provider accepts the email,
// so a failed or skipped send is retried on the next run.
func (s *Service) sendTripReminderEmail(ctx context.Context, res *Result, b brepo.ReminderDetails, windowText string, urgent bool) {
	markerType := notification.TypeBookingReminder24hEmailSent
	window := "24h"
	if urgent {
		markerType = notification.TypeBookingReminder2hEmailSent
		window = "2h"
	}

	seen, err := s.notifier.Seen(ctx, markerType, b.ID)
	if err != nil {
		res.Skipped++
		s.log.Error("reminder email marker check failed", "bookingId", b.ID, "error", err)
		return
	}
	if seen {
		return
	}

	// The reminder needs the full recipient set: the customer receives it,
	// the driver and the creating admin are kept in the loop via bcc. A
	// missing address leaves no marker, so the booking is retried once the
	// data is backfilled.
	if b.CustomerEmail == "" || b.DriverEmail == "" || b.CreatorEmail == "" {
		res.Skipped++
		s.log.Warn("reminder email skipped: booking is missing recipient addresses",
			"bookingId", b.ID, "bookingNo", b.BookingNo,
			"hasCustomerEmail", b.CustomerEmail != "",
			"hasDriverEmail", b.DriverEmail != "",
			"hasCreatorEmail", b.CreatorEmail != "")
		return
	}

	pickup := bookingsvc.PickupInstant(b.Date, b.Time, s.loc)
	calendarLink := email.BuildGoogleCalendarLink(
		fmt.Sprintf("Trip %s - %s", b.BookingNo, b.ServiceName),
		pickup, pickup.Add(tripDefaultDuration),
		fmt.Sprintf("Pickup: %s\nDropoff: %s", b.PickupLocation, b.DropoffLocation),
		b.PickupLocation,
	)

	reminder := email.TripReminder{
		To:              b.CustomerEmail,
		Bcc:             s.reminderBcc(b),
		BookingNo:       b.BookingNo,
		Urgent:          urgent,
		WindowText:      windowText,
		CustomerName:    b.CustomerName,
		PickupTime:      pickup.Format("Mon, 02 Jan 2006 15:04"),
		PickupLocation:  b.PickupLocation,
		DropoffLocation: b.DropoffLocation,
		DriverName:      b.DriverName,
		DriverPhone:     b.DriverPhone,
		VehicleInfo:     vehicleInfo(b),
		CalendarLink:    calendarLink,
	}

	if qr, err := email.NewCalendarQRAttachment(calendarLink); err == nil {
		reminder.Attachments = []email.Attachment{qr}
	} else {
		s.log.Warn("calendar QR attachment failed", "bookingId", b.ID, "error", err)
	}

	if err := s.mail.SendTripReminderEmail(ctx, reminder); err != nil {
		res.Skipped++
		s.log.EmailEvent("trip_reminder", b.CustomerEmail, false, err.Error())
		return
	}

	// One gated step: claiming the marker also tells the admins the
	// email went out.
	markerTitle := fmt.Sprintf("Trip reminder email sent - %s", b.BookingNo)
	markerMessage := fmt.Sprintf("%s trip reminder email sent to customer with bcc to creator, driver, and operations for booking %s",
		windowText, b.BookingNo)
	if _, err := s.notifier.FireOnce(ctx, markerType, b.ID, markerTitle, markerMessage); err != nil {
		// The email went out; worst case the next run sends a duplicate.
		s.log.Error("reminder email marker write failed", "bookingId", b.ID, "error", err)
	}

	res.EmailsSent++
	s.log.EmailEvent("trip_reminder", b.CustomerEmail, true, "")

	if s.bus != nil {
		s.bus.Publish(ctx, events.TripReminderEmailSent{
			BaseEvent: events.NewBaseEvent(),
			BookingID: b.ID,
			BookingNo: b.BookingNo,
			Window:    window,
			Recipient: b.CustomerEmail,
		})
	}
}

func (s *Service) reminderBcc(b brepo.ReminderDetails) []string {
	var bcc []string
	for _, addr := range []string{b.CreatorEmail, b.DriverEmail, s.cfg.GetOperationsEmail()} {
		if addr != "" {
			bcc = append(bcc, addr)
		}
	}
	return bcc
}

func vehicleInfo(b brepo.ReminderDetails) string {
	if b.VehicleMake == "" && b.VehicleModel == "" {
		return ""
	}
	info := fmt.Sprintf("%s %s", b.VehicleMake, b.VehicleModel)
	if b.VehiclePlate != "" {
		info = fmt.Sprintf("%s (%s)", info, b.VehiclePlate)
	}
	return info
}
