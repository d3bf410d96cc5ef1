package service

import (
	"testing"
	"time"
)

func TestPickupInstant(t *testing.T) {
	day := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	got := PickupInstant(day, "14:30", time.UTC)
	want := time.Date(2026, 3, 11, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("PickupInstant = %v, want %v", got, want)
	}
}

func TestPickupInstant_UsesLocation(t *testing.T) {
	day := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	loc := time.FixedZone("UTC+2", 2*60*60)

	got := PickupInstant(day, "09:00", loc)
	if got.Hour() != 9 || got.Location() != loc {
		t.Fatalf("PickupInstant = %v, want 09:00 in %v", got, loc)
	}
	if !got.UTC().Equal(time.Date(2026, 3, 11, 7, 0, 0, 0, time.UTC)) {
		t.Fatalf("PickupInstant UTC = %v", got.UTC())
	}
}

func TestPickupInstant_MalformedClockFallsBackToMidnight(t *testing.T) {
	day := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	got := PickupInstant(day, "noon", time.UTC)
	if !got.Equal(day) {
		t.Fatalf("PickupInstant = %v, want midnight %v", got, day)
	}
}
