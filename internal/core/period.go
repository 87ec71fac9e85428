package core

import (
	"time"
)

// MonthLayout is the YYYY-MM form used for month keys.
const MonthLayout = "2006-01"

// ParseMonth validates a YYYY-MM string and returns the first day of that month in UTC.
func ParseMonth(ym string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, ym)
	if err != nil {
		return time.Time{}, Invalid("month", ErrInvalidMonth)
	}
	return t, nil
}

// CurrentMonth returns now formatted as YYYY-MM.
func CurrentMonth(now time.Time) string {
	return now.Format(MonthLayout)
}

// MonthOrCurrent returns ym when it is a valid month, otherwise the month of now.
func MonthOrCurrent(ym string, now time.Time) string {
	if _, err := ParseMonth(ym); err == nil {
		return ym
	}
	return CurrentMonth(now)
}

// DaysIn returns the number of days of the month starting at first.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthBounds returns the first day at 00:00:00 and the last day at 23:59:59.
func MonthBounds(ym string) (start, end time.Time, err error) {
	first, err := ParseMonth(ym)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	last := DaysIn(first.Year(), first.Month())
	end = time.Date(first.Year(), first.Month(), last, 23, 59, 59, 0, time.UTC)
	return first, end, nil
}

// AdjacentMonths steps 31 days back and forward from the 15th of ym.
// The fixed step always lands in the neighbouring month.
func AdjacentMonths(ym string) (prev, next string, err error) {
	first, err := ParseMonth(ym)
	if err != nil {
		return "", "", err
	}
	mid := time.Date(first.Year(), first.Month(), 15, 0, 0, 0, 0, time.UTC)
	prev = mid.AddDate(0, 0, -31).Format(MonthLayout)
	next = mid.AddDate(0, 0, 31).Format(MonthLayout)
	return prev, next, nil
}

// ClampDay returns min(day, days in ym).
func ClampDay(day int, ym string) (int, error) {
	first, err := ParseMonth(ym)
	if err != nil {
		return 0, err
	}
	if last := DaysIn(first.Year(), first.Month()); day > last {
		return last, nil
	}
	return day, nil
}

// DayBounds returns 00:00:00 and 23:59:59 of the calendar day of t.
func DayBounds(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
	return start, end
}
