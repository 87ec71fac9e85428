package core

import (
	"testing"
	"time"
)

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		month     string
		wantStart string
		wantEnd   string
	}{
		{"2099-01", "2099-01-01 00:00:00", "2099-01-31 23:59:59"},
		{"2099-02", "2099-02-01 00:00:00", "2099-02-28 23:59:59"},
		{"2024-02", "2024-02-01 00:00:00", "2024-02-29 23:59:59"},
		{"2000-02", "2000-02-01 00:00:00", "2000-02-29 23:59:59"},
		{"1900-02", "1900-02-01 00:00:00", "1900-02-28 23:59:59"},
		{"2025-04", "2025-04-01 00:00:00", "2025-04-30 23:59:59"},
		{"2025-12", "2025-12-01 00:00:00", "2025-12-31 23:59:59"},
	}
	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			start, end, err := MonthBounds(tt.month)
			if err != nil {
				t.Fatalf("MonthBounds(%q) error = %v", tt.month, err)
			}
			if got := start.Format(TimestampLayout); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format(TimestampLayout); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestMonthBoundsInvalid(t *testing.T) {
	for _, in := range []string{"", "2099", "2099-13", "2099-1", "abcd-ef", "2099-01-01"} {
		if _, _, err := MonthBounds(in); !IsValidation(err) {
			t.Fatalf("MonthBounds(%q) expected validation error, got %v", in, err)
		}
	}
}

func TestAdjacentMonths(t *testing.T) {
	tests := []struct {
		month, prev, next string
	}{
		{"2099-01", "2098-12", "2099-02"},
		{"2099-03", "2099-02", "2099-04"},
		{"2024-02", "2024-01", "2024-03"},
		{"2025-07", "2025-06", "2025-08"},
		{"2025-12", "2025-11", "2026-01"},
	}
	for _, tt := range tests {
		prev, next, err := AdjacentMonths(tt.month)
		if err != nil {
			t.Fatalf("AdjacentMonths(%q) error = %v", tt.month, err)
		}
		if prev != tt.prev || next != tt.next {
			t.Errorf("AdjacentMonths(%q) = (%s, %s), want (%s, %s)", tt.month, prev, next, tt.prev, tt.next)
		}
	}
}

func TestAdjacentMonthsEveryMonth(t *testing.T) {
	for y := 1999; y <= 2101; y++ {
		for m := time.January; m <= time.December; m++ {
			ym := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).Format(MonthLayout)
			prev, next, err := AdjacentMonths(ym)
			if err != nil {
				t.Fatalf("AdjacentMonths(%q) error = %v", ym, err)
			}
			wantPrev := time.Date(y, m-1, 1, 0, 0, 0, 0, time.UTC).Format(MonthLayout)
			wantNext := time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC).Format(MonthLayout)
			if prev != wantPrev || next != wantNext {
				t.Fatalf("AdjacentMonths(%q) = (%s, %s), want (%s, %s)", ym, prev, next, wantPrev, wantNext)
			}
		}
	}
}

func TestClampDay(t *testing.T) {
	cases := []struct {
		day   int
		month string
		want  int
	}{
		{31, "2099-02", 28},
		{31, "2024-02", 29},
		{30, "2099-02", 28},
		{31, "2099-04", 30},
		{31, "2099-01", 31},
		{12, "2099-03", 12},
		{1, "2099-02", 1},
	}
	for _, tc := range cases {
		got, err := ClampDay(tc.day, tc.month)
		if err != nil {
			t.Fatalf("ClampDay(%d, %q) error = %v", tc.day, tc.month, err)
		}
		if got != tc.want {
			t.Errorf("ClampDay(%d, %q) = %d, want %d", tc.day, tc.month, got, tc.want)
		}
	}
}

func TestMonthOrCurrent(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	if got := MonthOrCurrent("2099-01", now); got != "2099-01" {
		t.Fatalf("valid month replaced: %s", got)
	}
	if got := MonthOrCurrent("bogus", now); got != "2026-10" {
		t.Fatalf("invalid month should fall back to current, got %s", got)
	}
}
