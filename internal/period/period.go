// Package period derives budget windows from a start date and a period kind.
package period

import (
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// DateOnly returns midnight UTC of t's calendar date, read in t's own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndDate returns the last day of the budget window that starts on start.
//
// A weekly window ends 7 days after start, which makes it 8 days long when
// both endpoints are counted. Monthly and yearly windows end the day before
// the next anniversary, computed as day-1 of the following month or year.
// time.Date normalises overflow, so a monthly window from 2024-01-31 asks
// for 2024-02-30 and ends on 2024-03-01.
func EndDate(start time.Time, p models.BudgetPeriod) (time.Time, error) {
	start = DateOnly(start)
	y, m, d := start.Date()

	switch p {
	case models.BudgetPeriodWeekly:
		return start.AddDate(0, 0, 7), nil
	case models.BudgetPeriodMonthly:
		return time.Date(y, m+1, d-1, 0, 0, 0, 0, time.UTC), nil
	case models.BudgetPeriodYearly:
		return time.Date(y+1, m, d-1, 0, 0, 0, 0, time.UTC), nil
	default:
		return time.Time{}, apperrors.ErrInvalidPeriod
	}
}

// Contains reports whether day falls inside [start, end], comparing dates only.
func Contains(start, end, day time.Time) bool {
	day = DateOnly(day)
	return !day.Before(DateOnly(start)) && !day.After(DateOnly(end))
}

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] share any day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !DateOnly(aStart).After(DateOnly(bEnd)) && !DateOnly(aEnd).Before(DateOnly(bStart))
}

// ExclusiveEnd returns the first instant after the window's last day, for
// half-open timestamp range queries.
func ExclusiveEnd(end time.Time) time.Time {
	return DateOnly(end).AddDate(0, 0, 1)
}
