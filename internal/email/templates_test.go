package email

import (
	"strings"
	"testing"
)

func TestTripReminderSubject(t *testing.T) {
	got := TripReminderSubject("BK-000042", "24 hours", false)
	want := "Your Trip is Coming Soon - BK-000042 (24 hours reminder)"
	if got != want {
		t.Fatalf("subject = %q, want %q", got, want)
	}

	got = TripReminderSubject("BK-000042", "2 hours", true)
	want = "URGENT: Your Trip is Coming Soon - BK-000042 (2 hours reminder)"
	if got != want {
		t.Fatalf("urgent subject = %q, want %q", got, want)
	}
}

func TestRenderTripReminderTemplate(t *testing.T) {
	html, err := renderEmailTemplate("trip_reminder.html", tripReminderEmailData{
		baseEmailData: baseEmailData{
			Title:    "Your Trip is Coming Soon",
			Heading:  "Your Trip is Coming Soon",
			CTALabel: "Add to Google Calendar",
			CTAURL:   "https://calendar.google.com/calendar/render?action=TEMPLATE",
		},
		Urgent:          true,
		WindowText:      "2 hours",
		CustomerName:    "Ada Lovelace",
		BookingNo:       "BK-000042",
		PickupTime:      "Wed, 11 Mar 2026 12:00",
		PickupLocation:  "12 Main St",
		DropoffLocation: "Airport Terminal 2",
		DriverName:      "Sam Driver",
		DriverPhone:     "+1 555-765-4321",
		VehicleInfo:     "Toyota Camry (FLT-001)",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"Ada Lovelace",
		"BK-000042",
		"scheduled to begin in 2 hours",
		"Add to Google Calendar",
		"12 Main St",
		"Sam Driver",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered html missing %q", want)
		}
	}
}

func TestTripReminderUnassignedPlaceholders(t *testing.T) {
	reminder := TripReminder{
		BookingNo:       "BK-000042",
		WindowText:      "24 hours",
		CustomerName:    "Ada Lovelace",
		PickupTime:      "Wed, 11 Mar 2026 12:00",
		PickupLocation:  "12 Main St",
		DropoffLocation: "Airport Terminal 2",
	}

	html, err := renderEmailTemplate("trip_reminder.html", tripReminderData(reminder))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "To be assigned") {
		t.Fatalf("html missing driver placeholder")
	}
	if !strings.Contains(html, "To be provided") {
		t.Fatalf("html missing vehicle placeholder")
	}

	text := tripReminderText(reminder)
	if !strings.Contains(text, "Driver: To be assigned") {
		t.Fatalf("text missing driver placeholder")
	}
	if !strings.Contains(text, "Vehicle: To be provided") {
		t.Fatalf("text missing vehicle placeholder")
	}
}

func TestTripReminderText(t *testing.T) {
	text := tripReminderText(TripReminder{
		BookingNo:       "BK-000042",
		Urgent:          true,
		WindowText:      "2 hours",
		CustomerName:    "Ada Lovelace",
		PickupTime:      "Wed, 11 Mar 2026 12:00",
		PickupLocation:  "12 Main St",
		DropoffLocation: "Airport Terminal 2",
		DriverName:      "Sam Driver",
		DriverPhone:     "+1 555-765-4321",
		VehicleInfo:     "Toyota Camry (FLT-001)",
		CalendarLink:    "https://calendar.google.com/calendar/render?action=TEMPLATE",
	})

	for _, want := range []string{
		"Dear Ada Lovelace,",
		"trip BK-000042 is scheduled to begin in 2 hours",
		"Pickup location: 12 Main St",
		"Driver: Sam Driver (+1 555-765-4321)",
		"Vehicle: Toyota Camry (FLT-001)",
		"Add to Google Calendar: https://calendar.google.com/calendar/render?action=TEMPLATE",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("text rendition missing %q", want)
		}
	}
	if strings.Contains(text, "<") {
		t.Fatalf("text rendition must not contain markup")
	}
}

func TestRenderQuotationSentTemplate(t *testing.T) {
	html, err := renderEmailTemplate("quotation_sent.html", quotationSentEmailData{
		baseEmailData: baseEmailData{
			Title:   "Your Quotation is Ready",
			Heading: "Your Quotation is Ready",
		},
		CustomerName:   "Ada Lovelace",
		QuotationNo:    "QUO-000007",
		TotalFormatted: FormatCurrency(9900),
		ExpiryDate:     "12 Mar 2026",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "QUO-000007") || !strings.Contains(html, "$99.00") {
		t.Fatalf("rendered html missing quotation fields")
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := map[int64]string{
		0:      "$0.00",
		5:      "$0.05",
		9900:   "$99.00",
		123456: "$1234.56",
	}
	for cents, want := range cases {
		if got := FormatCurrency(cents); got != want {
			t.Fatalf("FormatCurrency(%d) = %q, want %q", cents, got, want)
		}
	}
}
