package queue

import (
	"testing"
	"time"
)

// Stored timestamps are compared as strings in SQL, so formatTime must keep
// string order and chronological order identical, including across the
// whole-second boundary.
func TestStoredTimestampsCompareChronologically(t *testing.T) {
	whole := time.Date(2026, 3, 1, 9, 30, 5, 0, time.UTC)
	fractional := whole.Add(500 * time.Millisecond)
	next := whole.Add(time.Second)

	a, b, c := formatTime(whole), formatTime(fractional), formatTime(next)
	if a >= b {
		t.Fatalf("string order %q >= %q for chronologically ordered times", a, b)
	}
	if b >= c {
		t.Fatalf("string order %q >= %q for chronologically ordered times", b, c)
	}
}

func TestStoredTimestampRoundTrip(t *testing.T) {
	want := time.Date(2026, 3, 1, 9, 30, 5, 123456789, time.UTC)
	got, err := parseTimeString(formatTime(want))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("round trip = %s, want %s", got, want)
	}

	if _, err := parseTimeString(""); err == nil {
		t.Fatal("expected empty timestamp to be rejected")
	}
	if _, err := parseTimeString("2026-03-01 09:30:05"); err == nil {
		t.Fatal("expected non-RFC3339 timestamp to be rejected")
	}
}
