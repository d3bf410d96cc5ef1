package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	brepo "fleet_portal_backend/internal/bookings/repository"
	"fleet_portal_backend/internal/email"
	"fleet_portal_backend/internal/notification"
	qrepo "fleet_portal_backend/internal/quotations/repository"
	"fleet_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeQuotations struct {
	expiring map[string][]qrepo.Quotation // keyed by window start offset
	windows  []timeWindow
	overdue  []qrepo.Quotation
	expired  map[uuid.UUID]bool // MarkExpired result per id
	marked   []uuid.UUID
}

type timeWindow struct {
	from, to time.Time
}

func (f *fakeQuotations) ListExpiringBetween(_ context.Context, from, to time.Time) ([]qrepo.Quotation, error) {
	f.windows = append(f.windows, timeWindow{from: from, to: to})
	return f.expiring[from.Format(time.RFC3339)], nil
}

func (f *fakeQuotations) ListExpiredBefore(_ context.Context, _ time.Time) ([]qrepo.Quotation, error) {
	return f.overdue, nil
}

func (f *fakeQuotations) MarkExpired(_ context.Context, id uuid.UUID) (bool, error) {
	f.marked = append(f.marked, id)
	return f.expired[id], nil
}

type fakeBookings struct {
	byDay map[string][]brepo.ReminderDetails
}

func (f *fakeBookings) ListRemindableForDay(_ context.Context, day time.Time) ([]brepo.ReminderDetails, error) {
	return f.byDay[day.Format("2006-01-02")], nil
}

// fakeNotifier replays the ledger semantics in memory: the first claim
// of a (type, id) pair wins, later claims are no-ops.
type fakeNotifier struct {
	claims map[string]bool
	titles map[string]string
	fired  []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		claims: make(map[string]bool),
		titles: make(map[string]string),
	}
}

func key(eventType string, id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", eventType, id)
}

func (f *fakeNotifier) FireOnce(_ context.Context, eventType string, id uuid.UUID, title, _ string) (bool, error) {
	k := key(eventType, id)
	if f.claims[k] {
		return false, nil
	}
	f.claims[k] = true
	f.titles[k] = title
	f.fired = append(f.fired, k)
	return true, nil
}

func (f *fakeNotifier) Seen(_ context.Context, eventType string, id uuid.UUID) (bool, error) {
	return f.claims[key(eventType, id)], nil
}

type fakeSender struct {
	email.NoopSender
	sent []email.TripReminder
	err  error
}

func (f *fakeSender) SendTripReminderEmail(_ context.Context, r email.TripReminder) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, r)
	return nil
}

type fakeEmailCfg struct{ operations string }

func (f fakeEmailCfg) GetEmailEnabled() bool       { return true }
func (f fakeEmailCfg) GetEmailProvider() string    { return "resend" }
func (f fakeEmailCfg) GetResendAPIKey() string     { return "test" }
func (f fakeEmailCfg) GetSMTPHost() string         { return "" }
func (f fakeEmailCfg) GetSMTPPort() int            { return 0 }
func (f fakeEmailCfg) GetSMTPUsername() string     { return "" }
func (f fakeEmailCfg) GetSMTPPassword() string     { return "" }
func (f fakeEmailCfg) GetEmailFromName() string    { return "Fleet Portal" }
func (f fakeEmailCfg) GetEmailFromAddress() string { return "noreply@example.com" }
func (f fakeEmailCfg) GetOperationsEmail() string  { return f.operations }

func newTestService(q *fakeQuotations, b *fakeBookings, n *fakeNotifier, m *fakeSender, now time.Time) *Service {
	if q.expiring == nil {
		q.expiring = make(map[string][]qrepo.Quotation)
	}
	if q.expired == nil {
		q.expired = make(map[uuid.UUID]bool)
	}
	if b.byDay == nil {
		b.byDay = make(map[string][]brepo.ReminderDetails)
	}

	svc := New(q, b, n, m, fakeEmailCfg{operations: "ops@example.com"}, nil, logger.New("development"))
	svc.now = func() time.Time { return now }
	svc.loc = time.UTC
	return svc
}

func reminderBooking(day time.Time, clock string) brepo.ReminderDetails {
	return brepo.ReminderDetails{
		Booking: brepo.Booking{
			ID:              uuid.New(),
			BookingNo:       "BK-000042",
			CustomerName:    "Ada Lovelace",
			ServiceName:     "Airport Transfer",
			PickupLocation:  "12 Main St",
			DropoffLocation: "Airport Terminal 2",
			Date:            day,
			Time:            clock,
			Status:          brepo.StatusConfirmed,
		},
		CustomerEmail: "ada@example.com",
		CustomerPhone: "+15551234567",
		DriverName:    "Sam Driver",
		DriverEmail:   "sam@example.com",
		DriverPhone:   "+15557654321",
		VehicleMake:   "Toyota",
		VehicleModel:  "Camry",
		VehiclePlate:  "FLT-001",
		CreatorEmail:  "creator@example.com",
	}
}

func TestRun_QuotationWindowBounds(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 5, 0, 0, time.UTC)
	q := &fakeQuotations{}
	n := newFakeNotifier()

	svc := newTestService(q, &fakeBookings{}, n, &fakeSender{}, now)
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(q.windows) != 2 {
		t.Fatalf("expected 2 expiry window queries, got %d", len(q.windows))
	}
	far, near := q.windows[0], q.windows[1]
	if !far.from.Equal(now.Add(23*time.Hour)) || !far.to.Equal(now.Add(25*time.Hour)) {
		t.Fatalf("far window = [%v, %v]", far.from, far.to)
	}
	if !near.from.Equal(now.Add(90*time.Minute)) || !near.to.Equal(now.Add(150*time.Minute)) {
		t.Fatalf("near window = [%v, %v]", near.from, near.to)
	}
}

func TestRun_QuotationExpiryWarningsFireOncePerWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 5, 0, 0, time.UTC)
	quo := qrepo.Quotation{ID: uuid.New(), QuoteNumber: "QUO-000007", CustomerName: "Ada Lovelace"}

	q := &fakeQuotations{expiring: map[string][]qrepo.Quotation{
		now.Add(23 * time.Hour).Format(time.RFC3339): {quo},
	}}
	n := newFakeNotifier()
	svc := newTestService(q, &fakeBookings{}, n, &fakeSender{}, now)

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Notified != 1 {
		t.Fatalf("Notified = %d, want 1", res.Notified)
	}
	if !n.claims[key(notification.TypeQuotationExpiring24h, quo.ID)] {
		t.Fatalf("24h warning not claimed")
	}

	// A second run over the same data must not notify again.
	res, err = svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.Notified != 0 {
		t.Fatalf("second run Notified = %d, want 0", res.Notified)
	}
}

func TestRun_ExpiredQuotationsTransitionAndNotify(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 5, 0, 0, time.UTC)
	expired := qrepo.Quotation{ID: uuid.New(), QuoteNumber: "QUO-000001", CustomerName: "Ada Lovelace"}
	raced := qrepo.Quotation{ID: uuid.New(), QuoteNumber: "QUO-000002", CustomerName: "Grace Hopper"}

	q := &fakeQuotations{
		overdue: []qrepo.Quotation{expired, raced},
		expired: map[uuid.UUID]bool{expired.ID: true, raced.ID: false},
	}
	n := newFakeNotifier()
	svc := newTestService(q, &fakeBookings{}, n, &fakeSender{}, now)

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Expired != 1 {
		t.Fatalf("Expired = %d, want 1", res.Expired)
	}
	if !n.claims[key(notification.TypeQuotationExpired, expired.ID)] {
		t.Fatalf("expired notification not fired")
	}
	if n.claims[key(notification.TypeQuotationExpired, raced.ID)] {
		t.Fatalf("raced quotation must not notify")
	}
	if len(q.marked) != 2 {
		t.Fatalf("MarkExpired calls = %d, want 2", len(q.marked))
	}
}

func TestRun_BookingReminder24h(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 5, 0, 0, time.UTC)
	tomorrow := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	booking := reminderBooking(tomorrow, "10:00")

	b := &fakeBookings{byDay: map[string][]brepo.ReminderDetails{
		"2026-03-11": {booking},
	}}
	n := newFakeNotifier()
	m := &fakeSender{}
	svc := newTestService(&fakeQuotations{}, b, n, m, now)

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.EmailsSent != 1 {
		t.Fatalf("EmailsSent = %d, want 1", res.EmailsSent)
	}
	if !n.claims[key(notification.TypeBookingReminder24h, booking.ID)] {
		t.Fatalf("24h reminder not claimed")
	}
	if !n.claims[key(notification.TypeBookingReminder24hEmailSent, booking.ID)] {
		t.Fatalf("email marker not written")
	}
	// The marker claim fans out to admins so they see the email went out.
	markerKey := key(notification.TypeBookingReminder24hEmailSent, booking.ID)
	if got, want := n.titles[markerKey], "Trip reminder email sent - BK-000042"; got != want {
		t.Fatalf("email-sent notification title = %q, want %q", got, want)
	}

	sent := m.sent[0]
	if sent.Urgent {
		t.Fatalf("24h reminder must not be urgent")
	}
	if sent.WindowText != "24 hours" {
		t.Fatalf("WindowText = %q", sent.WindowText)
	}
	if sent.To != "ada@example.com" {
		t.Fatalf("To = %q", sent.To)
	}
	wantBcc := []string{"creator@example.com", "sam@example.com", "ops@example.com"}
	if len(sent.Bcc) != len(wantBcc) {
		t.Fatalf("Bcc = %v, want %v", sent.Bcc, wantBcc)
	}
	for i, addr := range wantBcc {
		if sent.Bcc[i] != addr {
			t.Fatalf("Bcc[%d] = %q, want %q", i, sent.Bcc[i], addr)
		}
	}
	if sent.CalendarLink == "" {
		t.Fatalf("calendar link missing")
	}
	if len(sent.Attachments) != 1 {
		t.Fatalf("expected one QR attachment, got %d", len(sent.Attachments))
	}
}

func TestRun_BookingReminder2hWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 5, 0, 0, time.UTC)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	inside := reminderBooking(today, "12:00")  // 1h55m out
	tooSoon := reminderBooking(today, "11:00") // 55m out
	tooFar := reminderBooking(today, "13:00")  // 2h55m out

	b := &fakeBookings{byDay: map[string][]brepo.ReminderDetails{
		"2026-03-10": {inside, tooSoon, tooFar},
	}}
	n := newFakeNotifier()
	m := &fakeSender{}
	svc := newTestService(&fakeQuotations{}, b, n, m, now)

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.EmailsSent != 1 {
		t.Fatalf("EmailsSent = %d, want 1", res.EmailsSent)
	}
	if !n.claims[key(notification.TypeBookingReminder2h, inside.ID)] {
		t.Fatalf("2h reminder not claimed for in-window booking")
	}
	if n.claims[key(notification.TypeBookingReminder2h, tooSoon.ID)] {
		t.Fatalf("booking 55m out must not get a 2h reminder")
	}
	if n.claims[key(notification.TypeBookingReminder2h, tooFar.ID)] {
		t.Fatalf("booking 2h55m out must not get a 2h reminder")
	}

	if !m.sent[0].Urgent {
		t.Fatalf("2h reminder must be urgent")
	}
	if m.sent[0].WindowText != "2 hours" {
		t.Fatalf("WindowText = %q", m.sent[0].WindowText)
	}
}

func TestRun_MissingRecipientEmailRetriesNextRun(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 5, 0, 0, time.UTC)
	tomorrow := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	booking := reminderBooking(tomorrow, "10:00")
	booking.CustomerEmail = ""

	b := &fakeBookings{byDay: map[string][]brepo.ReminderDetails{
		"2026-03-11": {booking},
	}}
	n := newFakeNotifier()
	m := &fakeSender{}
	svc := newTestService(&fakeQuotations{}, b, n, m, now)

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.EmailsSent != 0 {
		t.Fatalf("EmailsSent = %d, want 0", res.EmailsSent)
	}
	if res.Skipped == 0 {
		t.Fatalf("expected the send to be counted as skipped")
	}
	if n.claims[key(notification.TypeBookingReminder24hEmailSent, booking.ID)] {
		t.Fatalf("marker must not be written on skip")
	}

	// Once the email is backfilled, the next run sends.
	b.byDay["2026-03-11"][0].CustomerEmail = "ada@example.com"
	res, err = svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.EmailsSent != 1 {
		t.Fatalf("second run EmailsSent = %d, want 1", res.EmailsSent)
	}
}

func TestRun_MissingDriverEmailLeavesNoMarker(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 5, 0, 0, time.UTC)
	tomorrow := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	booking := reminderBooking(tomorrow, "10:00")
	booking.DriverEmail = ""

	b := &fakeBookings{byDay: map[string][]brepo.ReminderDetails{
		"2026-03-11": {booking},
	}}
	n := newFakeNotifier()
	m := &fakeSender{}
	svc := newTestService(&fakeQuotations{}, b, n, m, now)

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.EmailsSent != 0 {
		t.Fatalf("EmailsSent = %d, want 0", res.EmailsSent)
	}
	if n.claims[key(notification.TypeBookingReminder24hEmailSent, booking.ID)] {
		t.Fatalf("marker must not be written without a driver email")
	}
	// The in-app reminder does not depend on email recipients.
	if !n.claims[key(notification.TypeBookingReminder24h, booking.ID)] {
		t.Fatalf("in-app reminder must still fire")
	}
}

func TestRun_SendFailureLeavesNoMarker(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 5, 0, 0, time.UTC)
	tomorrow := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	booking := reminderBooking(tomorrow, "10:00")

	b := &fakeBookings{byDay: map[string][]brepo.ReminderDetails{
		"2026-03-11": {booking},
	}}
	n := newFakeNotifier()
	m := &fakeSender{err: errors.New("provider down")}
	svc := newTestService(&fakeQuotations{}, b, n, m, now)

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.EmailsSent != 0 {
		t.Fatalf("EmailsSent = %d, want 0", res.EmailsSent)
	}
	if n.claims[key(notification.TypeBookingReminder24hEmailSent, booking.ID)] {
		t.Fatalf("marker must not be written on send failure")
	}
	// The in-app reminder still fired; only the email retries.
	if !n.claims[key(notification.TypeBookingReminder24h, booking.ID)] {
		t.Fatalf("in-app reminder should fire even when the email fails")
	}
}

func TestRun_EmailMarkerBlocksResend(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 5, 0, 0, time.UTC)
	tomorrow := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	booking := reminderBooking(tomorrow, "10:00")

	b := &fakeBookings{byDay: map[string][]brepo.ReminderDetails{
		"2026-03-11": {booking},
	}}
	n := newFakeNotifier()
	m := &fakeSender{}
	svc := newTestService(&fakeQuotations{}, b, n, m, now)

	for i := 0; i < 3; i++ {
		if _, err := svc.Run(context.Background()); err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
	}
	if len(m.sent) != 1 {
		t.Fatalf("sent %d emails across 3 runs, want 1", len(m.sent))
	}
}
