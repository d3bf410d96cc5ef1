package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fleet_portal_backend/platform/config"
)

// Attachment represents a file attachment for an email.
type Attachment struct {
	Content  []byte // raw file bytes (will be base64-encoded for Resend)
	FileName string // e.g. "trip-calendar.png"
	MIMEType string // e.g. "image/png"
}

// TripReminder carries everything the trip reminder email needs.
// Bcc keeps the creator, driver and operations mailbox in the loop
// without exposing their addresses to the customer.
type TripReminder struct {
	To              string
	Bcc             []string
	BookingNo       string
	Urgent          bool
	WindowText      string // "24 hours" or "2 hours"
	CustomerName    string
	PickupTime      string
	PickupLocation  string
	DropoffLocation string
	DriverName      string
	DriverPhone     string
	VehicleInfo     string
	CalendarLink    string
	Attachments     []Attachment
}

type Sender interface {
	SendQuotationEmail(ctx context.Context, toEmail, customerName, quotationNo, totalFormatted string, expiryDate time.Time) error
	SendBookingConfirmationEmail(ctx context.Context, toEmail, customerName, bookingNo, pickupTime, pickupLocation, dropoffLocation string) error
	SendTripReminderEmail(ctx context.Context, reminder TripReminder) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

type NoopSender struct{}

func (NoopSender) SendQuotationEmail(ctx context.Context, toEmail, customerName, quotationNo, totalFormatted string, expiryDate time.Time) error {
	return nil
}

func (NoopSender) SendBookingConfirmationEmail(ctx context.Context, toEmail, customerName, bookingNo, pickupTime, pickupLocation, dropoffLocation string) error {
	return nil
}

func (NoopSender) SendTripReminderEmail(ctx context.Context, reminder TripReminder) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}

// ResendSender delivers email through the Resend HTTP API.
type ResendSender struct {
	apiKey    string
	fromName  string
	fromEmail string
	client    *http.Client
}

type resendAttachment struct {
	Content  string `json:"content"` // base64-encoded file content
	Filename string `json:"filename"`
}

type resendEmailRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Bcc         []string           `json:"bcc,omitempty"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html"`
	Text        string             `json:"text,omitempty"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

// NewSender builds the configured Sender implementation. Sending can be
// disabled entirely, which yields a NoopSender so callers never need nil checks.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	switch cfg.GetEmailProvider() {
	case "smtp":
		return NewSMTPSender(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		), nil
	case "", "resend":
		if cfg.GetResendAPIKey() == "" {
			return nil, fmt.Errorf("email enabled but RESEND_API_KEY is empty")
		}
		client := &http.Client{Timeout: 10 * time.Second}
		return &ResendSender{
			apiKey:    cfg.GetResendAPIKey(),
			fromName:  cfg.GetEmailFromName(),
			fromEmail: cfg.GetEmailFromAddress(),
			client:    client,
		}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.GetEmailProvider())
	}
}

func (r *ResendSender) SendQuotationEmail(ctx context.Context, toEmail, customerName, quotationNo, totalFormatted string, expiryDate time.Time) error {
	subject := fmt.Sprintf(subjectQuotationSentFmt, quotationNo)
	content, err := renderEmailTemplate("quotation_sent.html", quotationSentEmailData{
		baseEmailData: baseEmailData{
			Title:   "Your Quotation is Ready",
			Heading: "Your Quotation is Ready",
		},
		CustomerName:   customerName,
		QuotationNo:    quotationNo,
		TotalFormatted: totalFormatted,
		ExpiryDate:     expiryDate.Format("Monday, 2 January 2006 at 15:04"),
	})
	if err != nil {
		return err
	}
	return r.send(ctx, toEmail, subject, content)
}

func (r *ResendSender) SendBookingConfirmationEmail(ctx context.Context, toEmail, customerName, bookingNo, pickupTime, pickupLocation, dropoffLocation string) error {
	subject := fmt.Sprintf(subjectBookingConfirmationFmt, bookingNo)
	content, err := renderEmailTemplate("booking_confirmation.html", bookingConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:   "Booking Confirmed",
			Heading: "Booking Confirmed",
		},
		CustomerName:    customerName,
		BookingNo:       bookingNo,
		PickupTime:      pickupTime,
		PickupLocation:  pickupLocation,
		DropoffLocation: dropoffLocation,
	})
	if err != nil {
		return err
	}
	return r.send(ctx, toEmail, subject, content)
}

func (r *ResendSender) SendTripReminderEmail(ctx context.Context, reminder TripReminder) error {
	subject := TripReminderSubject(reminder.BookingNo, reminder.WindowText, reminder.Urgent)
	content, err := renderEmailTemplate("trip_reminder.html", tripReminderData(reminder))
	if err != nil {
		return err
	}
	return r.sendFull(ctx, []string{reminder.To}, reminder.Bcc, subject, content, tripReminderText(reminder), reminder.Attachments...)
}

func (r *ResendSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return r.send(ctx, toEmail, subject, htmlContent)
}

func (r *ResendSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	return r.sendFull(ctx, []string{toEmail}, nil, subject, htmlContent, "")
}

func (r *ResendSender) sendFull(ctx context.Context, to, bcc []string, subject, htmlContent, textContent string, attachments ...Attachment) error {
	payload := resendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", r.fromName, r.fromEmail),
		To:      to,
		Bcc:     bcc,
		Subject: subject,
		HTML:    htmlContent,
		Text:    textContent,
	}

	for _, att := range attachments {
		payload.Attachments = append(payload.Attachments, resendAttachment{
			Content:  base64.StdEncoding.EncodeToString(att.Content),
			Filename: att.FileName,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.resend.com/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend send failed: status %d: %s", resp.StatusCode, string(data))
	}

	return nil
}
