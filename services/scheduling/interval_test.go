package scheduling

import (
	"testing"
	"time"
)

func mustInterval(t *testing.T, start, end time.Time) TimeInterval {
	t.Helper()
	iv, err := NewTimeInterval(start, end)
	if err != nil {
		t.Fatalf("NewTimeInterval(%v, %v): unexpected error %v", start, end, err)
	}
	return iv
}

func TestNewTimeIntervalRejectsUnordered(t *testing.T) {
	at := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	if _, err := NewTimeInterval(at, at); err == nil {
		t.Fatalf("NewTimeInterval with start == end: got nil error, want InvalidIntervalError")
	}
	_, err := NewTimeInterval(at.Add(time.Hour), at)
	if err == nil {
		t.Fatalf("NewTimeInterval with start after end: got nil error, want InvalidIntervalError")
	}
	if _, ok := err.(*InvalidIntervalError); !ok {
		t.Fatalf("NewTimeInterval error type: got %T, want *InvalidIntervalError", err)
	}
}

func TestOverlapsSymmetry(t *testing.T) {
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	cases := []struct {
		name string
		a, b TimeInterval
		want bool
	}{
		{"disjoint", TimeInterval{at(9, 0), at(10, 0)}, TimeInterval{at(11, 0), at(12, 0)}, false},
		{"touching endpoints", TimeInterval{at(9, 0), at(10, 0)}, TimeInterval{at(10, 0), at(11, 0)}, false},
		{"partial overlap", TimeInterval{at(9, 0), at(11, 0)}, TimeInterval{at(10, 0), at(12, 0)}, true},
		{"contained", TimeInterval{at(9, 0), at(13, 0)}, TimeInterval{at(10, 0), at(11, 0)}, true},
		{"one minute shared", TimeInterval{at(9, 0), at(10, 1)}, TimeInterval{at(10, 0), at(11, 0)}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("Overlaps(a, b): got %v, want %v", got, tc.want)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Fatalf("Overlaps(b, a): got %v, want %v (asymmetric result)", got, tc.want)
			}
		})
	}
}

func TestOverlapsSelf(t *testing.T) {
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	iv := mustInterval(t, day.Add(9*time.Hour), day.Add(10*time.Hour))
	if !iv.Overlaps(iv) {
		t.Fatalf("Overlaps(a, a): got false, want true for positive-length interval")
	}
}

func TestIntervalMinutes(t *testing.T) {
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	iv := mustInterval(t, day.Add(9*time.Hour), day.Add(11*time.Hour+15*time.Minute))
	if got := iv.Minutes(); got != 135 {
		t.Fatalf("Minutes: got %d, want 135", got)
	}
}
