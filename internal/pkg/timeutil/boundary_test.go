package timeutil

import (
	"testing"
	"time"
)

func TestCurrentBoundary(t *testing.T) {
	ist := time.FixedZone("IST", 5*60*60+30*60)

	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{
			name: "midday UTC lands on same IST day",
			at:   time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, ist),
		},
		{
			name: "late UTC evening is already next IST day",
			// 19:00 UTC = 00:30 IST the next day
			at:   time.Date(2024, 3, 15, 19, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 16, 0, 0, 0, 0, ist),
		},
		{
			name: "just before IST midnight",
			// 18:29:59 UTC = 23:59:59 IST
			at:   time.Date(2024, 3, 15, 18, 29, 59, 0, time.UTC),
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, ist),
		},
		{
			name: "exactly at IST midnight",
			at:   time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC),
			want: time.Date(2024, 3, 16, 0, 0, 0, 0, ist),
		},
		{
			name: "input already in a different zone",
			at:   time.Date(2024, 3, 15, 4, 0, 0, 0, time.FixedZone("EST", -5*60*60)),
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, ist),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurrentBoundary(tt.at)
			if !got.Equal(tt.want) {
				t.Errorf("CurrentBoundary(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestBoundaryProperties(t *testing.T) {
	// The boundary must bracket the input and span exactly 24 hours,
	// whatever instant we start from.
	instants := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 18, 29, 59, 999999999, time.UTC),
		time.Date(2024, 6, 30, 18, 30, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Now(),
	}

	for _, at := range instants {
		cur := CurrentBoundary(at)
		next := NextBoundary(at)

		if cur.After(at) {
			t.Errorf("CurrentBoundary(%v) = %v is after the input", at, cur)
		}
		if !at.Before(next) {
			t.Errorf("NextBoundary(%v) = %v is not after the input", at, next)
		}
		if d := next.Sub(cur); d != 24*time.Hour {
			t.Errorf("boundary span at %v = %v, want exactly 24h", at, d)
		}
		if got := UntilNextBoundary(at); got != next.Sub(at) {
			t.Errorf("UntilNextBoundary(%v) = %v, want %v", at, got, next.Sub(at))
		}
	}
}

func TestBoundaryIgnoresHostTimezone(t *testing.T) {
	// The same instant expressed in different zones must yield the same
	// absolute boundary.
	at := time.Date(2024, 3, 15, 19, 45, 0, 0, time.UTC)
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("PST", -8*60*60),
		time.FixedZone("JST", 9*60*60),
	}

	want := CurrentBoundary(at)
	for _, loc := range zones {
		if got := CurrentBoundary(at.In(loc)); !got.Equal(want) {
			t.Errorf("CurrentBoundary in %v = %v, want %v", loc, got, want)
		}
	}
}
