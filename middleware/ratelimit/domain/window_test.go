package domain

import (
	"testing"
	"time"
)

func TestWindow_Expired(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	w := Window{Count: 3, Start: start}

	if w.Expired(start.Add(59*time.Second), time.Minute) {
		t.Fatalf("expected window to be active before its end")
	}
	if !w.Expired(start.Add(time.Minute), time.Minute) {
		t.Fatalf("expected window to be expired exactly at its end")
	}
	if !(Window{}).Expired(start, time.Minute) {
		t.Fatalf("expected zero window to count as expired")
	}
}
