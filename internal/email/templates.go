package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type quotationSentEmailData struct {
	baseEmailData
	CustomerName   string
	QuotationNo    string
	TotalFormatted string
	ExpiryDate     string
}

type bookingConfirmationEmailData struct {
	baseEmailData
	CustomerName    string
	BookingNo       string
	PickupTime      string
	PickupLocation  string
	DropoffLocation string
}

type tripReminderEmailData struct {
	baseEmailData
	Urgent          bool
	WindowText      string
	CustomerName    string
	BookingNo       string
	PickupTime      string
	PickupLocation  string
	DropoffLocation string
	DriverName      string
	DriverPhone     string
	VehicleInfo     string
}

func tripReminderData(r TripReminder) tripReminderEmailData {
	return tripReminderEmailData{
		baseEmailData: baseEmailData{
			Title:    "Your Trip is Coming Soon",
			Heading:  "Your Trip is Coming Soon",
			CTALabel: "Add to Google Calendar",
			CTAURL:   r.CalendarLink,
		},
		Urgent:          r.Urgent,
		WindowText:      r.WindowText,
		CustomerName:    r.CustomerName,
		BookingNo:       r.BookingNo,
		PickupTime:      r.PickupTime,
		PickupLocation:  r.PickupLocation,
		DropoffLocation: r.DropoffLocation,
		DriverName:      r.DriverName,
		DriverPhone:     r.DriverPhone,
		VehicleInfo:     r.VehicleInfo,
	}
}

// tripReminderText is the plain-text alternative to the HTML reminder,
// for clients that do not render HTML.
func tripReminderText(r TripReminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", r.CustomerName)
	if r.Urgent {
		b.WriteString("Your trip departs soon.\n\n")
	}
	fmt.Fprintf(&b, "This is a reminder that your trip %s is scheduled to begin in %s.\n\n", r.BookingNo, r.WindowText)
	fmt.Fprintf(&b, "Pickup time: %s\n", r.PickupTime)
	fmt.Fprintf(&b, "Pickup location: %s\n", r.PickupLocation)
	fmt.Fprintf(&b, "Drop-off location: %s\n", r.DropoffLocation)
	if r.DriverName != "" {
		fmt.Fprintf(&b, "Driver: %s", r.DriverName)
		if r.DriverPhone != "" {
			fmt.Fprintf(&b, " (%s)", r.DriverPhone)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Driver: To be assigned\n")
	}
	if r.VehicleInfo != "" {
		fmt.Fprintf(&b, "Vehicle: %s\n", r.VehicleInfo)
	} else {
		b.WriteString("Vehicle: To be provided\n")
	}
	fmt.Fprintf(&b, "\nAdd to Google Calendar: %s\n", r.CalendarLink)
	return b.String()
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// FormatCurrency renders amounts stored in cents for email bodies.
func FormatCurrency(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
