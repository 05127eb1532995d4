// Package calendar implements the date arithmetic behind statutory response
// deadlines. Three semantics exist side by side: plain calendar days,
// working days (weekends and holidays skipped), and the German
// end-of-month rule. All functions are pure and deterministic for a given
// holiday set.
package calendar

import (
	"context"
	"time"
)

// Calendar answers holiday membership for working-day arithmetic. The zero
// set (Empty) means weekends are the only non-working days.
type Calendar interface {
	IsHoliday(ctx context.Context, day time.Time) (bool, error)
}

// Empty is the weekends-only calendar.
type Empty struct{}

func (Empty) IsHoliday(context.Context, time.Time) (bool, error) { return false, nil }

// AddDays returns start advanced by n calendar days. n must be >= 0;
// AddDays(d, 0) == d.
func AddDays(start time.Time, n int) time.Time {
	if n <= 0 {
		return start
	}
	return start.AddDate(0, 0, n)
}

// AddWorkingDays advances one day at a time, skipping Saturdays, Sundays and
// holidays, until n working days have been consumed. The result is the first
// non-skipped day reached. The start date itself is never validated:
// AddWorkingDays(d, 0, cal) == d even when d is a holiday.
func AddWorkingDays(ctx context.Context, start time.Time, n int, cal Calendar) (time.Time, error) {
	if cal == nil {
		cal = Empty{}
	}
	day := start
	for consumed := 0; consumed < n; {
		day = day.AddDate(0, 0, 1)
		skip, err := isNonWorking(ctx, day, cal)
		if err != nil {
			return time.Time{}, err
		}
		if !skip {
			consumed++
		}
	}
	return day, nil
}

// AddMonthsEOM adds n calendar months with end-of-month clamping, the
// statutory "Ende des Monats" semantics: Jan 31 + 1 month is the last day of
// February, never March 2 or 3.
func AddMonthsEOM(start time.Time, n int) time.Time {
	if n <= 0 {
		return start
	}
	y, m, d := start.Date()
	// First of the target month, then clamp the day-of-month.
	first := time.Date(y, m+time.Month(n), 1, start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())
	last := daysIn(first.Year(), first.Month())
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())
}

func isNonWorking(ctx context.Context, day time.Time, cal Calendar) (bool, error) {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return true, nil
	}
	return cal.IsHoliday(ctx, day)
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
