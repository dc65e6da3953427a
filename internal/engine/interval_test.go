package engine

import (
	"errors"
	"testing"
	"time"
)

func TestResolveInterval(t *testing.T) {
	cases := []struct {
		name      string
		date      string
		from, to  string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name: "24h times",
			date: "2025-01-10", from: "10:00", to: "11:30",
			wantStart: time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 1, 10, 11, 30, 0, 0, time.UTC),
		},
		{
			name: "12h with AM/PM",
			date: "2025-01-10", from: "9:15 AM", to: "2:45 PM",
			wantStart: time.Date(2025, 1, 10, 9, 15, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 1, 10, 14, 45, 0, 0, time.UTC),
		},
		{
			name: "12h lowercase without space",
			date: "2025-01-10", from: "9:15am", to: "12:00pm",
			wantStart: time.Date(2025, 1, 10, 9, 15, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "mixed representations",
			date: "2025-06-01", from: "08:00", to: "1:00 PM",
			wantStart: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC),
		},
		{
			name: "12 AM is midnight",
			date: "2025-06-01", from: "12:00 AM", to: "1:00 AM",
			wantStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 6, 1, 1, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := ResolveInterval(tc.date, tc.from, tc.to)
			if err != nil {
				t.Fatalf("ResolveInterval returned error: %v", err)
			}
			if !start.Equal(tc.wantStart) {
				t.Errorf("start = %v, want %v", start, tc.wantStart)
			}
			if !end.Equal(tc.wantEnd) {
				t.Errorf("end = %v, want %v", end, tc.wantEnd)
			}
		})
	}
}

func TestResolveIntervalInvalidFormat(t *testing.T) {
	cases := []struct {
		name     string
		date     string
		from, to string
	}{
		{"bad date", "10/01/2025", "10:00", "11:00"},
		{"bad from", "2025-01-10", "ten o'clock", "11:00"},
		{"bad to", "2025-01-10", "10:00", "25:99"},
		{"empty from", "2025-01-10", "", "11:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ResolveInterval(tc.date, tc.from, tc.to)
			if !errors.Is(err, ErrInvalidTimeFormat) {
				t.Fatalf("error = %v, want ErrInvalidTimeFormat", err)
			}
		})
	}
}

func TestResolveIntervalRejectsInvertedInterval(t *testing.T) {
	cases := []struct {
		name     string
		from, to string
	}{
		{"end before start", "11:00", "10:00"},
		{"end equals start", "10:00", "10:00"},
		{"end before start 12h", "2:00 PM", "9:00 AM"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ResolveInterval("2025-01-10", tc.from, tc.to)
			if !errors.Is(err, ErrInvalidInterval) {
				t.Fatalf("error = %v, want ErrInvalidInterval", err)
			}
		})
	}
}
