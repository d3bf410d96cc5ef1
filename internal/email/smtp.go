package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection via go-mail.
// It renders the same HTML templates as ResendSender but delivers via the operator's own SMTP server.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, to, bcc []string, subject, htmlContent, textContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	if len(bcc) > 0 {
		if err := msg.Bcc(bcc...); err != nil {
			return fmt.Errorf("smtp bcc: %w", err)
		}
	}
	msg.Subject(subject)
	if textContent != "" {
		msg.SetBodyString(gomail.TypeTextPlain, textContent)
		msg.AddAlternativeString(gomail.TypeTextHTML, htmlContent)
	} else {
		msg.SetBodyString(gomail.TypeTextHTML, htmlContent)
	}

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendQuotationEmail(ctx context.Context, toEmail, customerName, quotationNo, totalFormatted string, expiryDate time.Time) error {
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
	return s.send(ctx, []string{toEmail}, nil, subject, content, "")
}

func (s *SMTPSender) SendBookingConfirmationEmail(ctx context.Context, toEmail, customerName, bookingNo, pickupTime, pickupLocation, dropoffLocation string) error {
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
	return s.send(ctx, []string{toEmail}, nil, subject, content, "")
}

func (s *SMTPSender) SendTripReminderEmail(ctx context.Context, reminder TripReminder) error {
	subject := TripReminderSubject(reminder.BookingNo, reminder.WindowText, reminder.Urgent)
	content, err := renderEmailTemplate("trip_reminder.html", tripReminderData(reminder))
	if err != nil {
		return err
	}
	return s.send(ctx, []string{reminder.To}, reminder.Bcc, subject, content, tripReminderText(reminder), reminder.Attachments...)
}

func (s *SMTPSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return s.send(ctx, []string{toEmail}, nil, subject, htmlContent, "")
}
