package core

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2025-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Year != 2025 || m.Month != time.March {
		t.Fatalf("got %v", m)
	}
	if _, err := ParseMonth("March 2025"); err == nil {
		t.Fatal("expected error")
	}
}

func TestMonthBounds(t *testing.T) {
	m := Month{Year: 2025, Month: time.February}
	if got := m.End().Day(); got != 28 {
		t.Fatalf("feb end day: got %d", got)
	}
	leap := Month{Year: 2024, Month: time.February}
	if got := leap.End().Day(); got != 29 {
		t.Fatalf("leap feb end day: got %d", got)
	}
	if !m.Contains(time.Date(2025, 2, 14, 23, 0, 0, 0, time.UTC)) {
		t.Fatal("expected containment")
	}
	if m.Contains(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("march must not be in february")
	}
	if m.Next() != (Month{Year: 2025, Month: time.March}) {
		t.Fatalf("next: got %v", m.Next())
	}
}

func TestAddMonthsClamped(t *testing.T) {
	cases := []struct {
		in   time.Time
		n    int
		want time.Time
	}{
		{time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), 1, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC), 3, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
	}
	for i, tc := range cases {
		if got := AddMonthsClamped(tc.in, tc.n); !got.Equal(tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, got, tc.want)
		}
	}
}
