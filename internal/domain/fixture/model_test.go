package fixture

import (
	"testing"
	"time"
)

func TestStatusSets(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"FT", "aet", " PEN ", "AWD", "WO"} {
		if !IsFinishedStatus(code) {
			t.Fatalf("expected %q to be finished", code)
		}
		if !IsTerminalStatus(code) {
			t.Fatalf("expected %q to be terminal", code)
		}
	}
	for _, code := range []string{"CANC", "ABD"} {
		if IsFinishedStatus(code) {
			t.Fatalf("expected %q not to yield a result", code)
		}
		if !IsTerminalStatus(code) {
			t.Fatalf("expected %q to be terminal", code)
		}
	}
	for _, code := range []string{"1H", "HT", "2H", "ET", "P", "BT", "INT", "SUSP"} {
		if !IsLiveStatus(code) {
			t.Fatalf("expected %q to be live", code)
		}
	}
	for _, code := range []string{"NS", "TBD", "PST", "XYZ", ""} {
		if IsLiveStatus(code) || IsTerminalStatus(code) {
			t.Fatalf("expected %q to be neither live nor terminal", code)
		}
	}
}

func TestWindowContainsIsInclusive(t *testing.T) {
	t.Parallel()

	w := Window{
		Start: time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 1, 23, 59, 59, 999999999, time.UTC),
	}
	if !w.Contains(w.Start) || !w.Contains(w.End) {
		t.Fatalf("expected window bounds to be inclusive")
	}
	if w.Contains(w.End.Add(time.Nanosecond)) {
		t.Fatalf("expected next Monday to be outside the window")
	}
	if w.Contains(time.Time{}) {
		t.Fatalf("expected zero time to be outside the window")
	}
}
