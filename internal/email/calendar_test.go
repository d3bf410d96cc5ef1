package email

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestBuildGoogleCalendarLink(t *testing.T) {
	start := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	link := BuildGoogleCalendarLink("Trip BK-000042 - Airport Transfer", start, end,
		"Pickup: 12 Main St", "12 Main St")

	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	if parsed.Host != "calendar.google.com" || parsed.Path != "/calendar/render" {
		t.Fatalf("unexpected endpoint: %s", link)
	}

	q := parsed.Query()
	if q.Get("action") != "TEMPLATE" {
		t.Fatalf("action = %q", q.Get("action"))
	}
	if q.Get("dates") != "20260311T100000Z/20260311T120000Z" {
		t.Fatalf("dates = %q", q.Get("dates"))
	}
	if q.Get("text") != "Trip BK-000042 - Airport Transfer" {
		t.Fatalf("text = %q", q.Get("text"))
	}
	if q.Get("location") != "12 Main St" {
		t.Fatalf("location = %q", q.Get("location"))
	}
}

func TestBuildGoogleCalendarLink_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2026, 3, 11, 12, 0, 0, 0, loc)

	link := BuildGoogleCalendarLink("Trip", start, start.Add(time.Hour), "", "")
	if !strings.Contains(link, "20260311T100000Z") {
		t.Fatalf("start not converted to UTC: %s", link)
	}
}

func TestNewCalendarQRAttachment(t *testing.T) {
	att, err := NewCalendarQRAttachment("https://calendar.google.com/calendar/render?action=TEMPLATE")
	if err != nil {
		t.Fatalf("NewCalendarQRAttachment: %v", err)
	}
	if att.FileName != "trip-calendar.png" || att.MIMEType != "image/png" {
		t.Fatalf("attachment metadata = %q %q", att.FileName, att.MIMEType)
	}
	if len(att.Content) == 0 {
		t.Fatalf("empty QR payload")
	}
	// PNG magic bytes.
	if att.Content[0] != 0x89 || att.Content[1] != 'P' {
		t.Fatalf("payload is not a PNG")
	}
}
