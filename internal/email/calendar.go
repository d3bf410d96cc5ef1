package email

import (
	"fmt"
	"net/url"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// calendarTimeLayout is the basic UTC format Google Calendar expects in
// the dates parameter.
const calendarTimeLayout = "20060102T150405Z"

// BuildGoogleCalendarLink returns a prefilled Google Calendar event URL
// so the customer can add the trip to their calendar with one click.
func BuildGoogleCalendarLink(title string, start, end time.Time, details, location string) string {
	values := url.Values{}
	values.Set("action", "TEMPLATE")
	values.Set("text", title)
	values.Set("dates", fmt.Sprintf("%s/%s",
		start.UTC().Format(calendarTimeLayout),
		end.UTC().Format(calendarTimeLayout)))
	values.Set("details", details)
	values.Set("location", location)

	return "https://calendar.google.com/calendar/render?" + values.Encode()
}

// NewCalendarQRAttachment encodes the calendar link as a PNG QR code,
// letting recipients scan the reminder from another device.
func NewCalendarQRAttachment(link string) (Attachment, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return Attachment{}, fmt.Errorf("encode calendar qr: %w", err)
	}
	return Attachment{
		Content:  png,
		FileName: "trip-calendar.png",
		MIMEType: "image/png",
	}, nil
}
