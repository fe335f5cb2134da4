package finance

import (
	"time"

	"github.com/elwin56/MengMengShangAn-program/internal/models"
)

// dateLayout is the YYYY-MM-DD form used for all transaction and period dates.
const dateLayout = "2006-01-02"

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func lastOfMonth(t time.Time) time.Time {
	return firstOfMonth(t).AddDate(0, 1, -1)
}

// monthBounds returns the calendar month containing t.
func monthBounds(t time.Time) (string, string) {
	return firstOfMonth(t).Format(dateLayout), lastOfMonth(t).Format(dateLayout)
}

// quarterBounds is the simplified quarter the original system used: the
// current month through the end of month+2, not an aligned calendar quarter.
func quarterBounds(t time.Time) (string, string) {
	start := firstOfMonth(t)
	end := start.AddDate(0, 3, -1)
	return start.Format(dateLayout), end.Format(dateLayout)
}

// yearBounds returns the calendar year containing t.
func yearBounds(t time.Time) (string, string) {
	start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	end := time.Date(t.Year(), 12, 31, 0, 0, 0, 0, t.Location())
	return start.Format(dateLayout), end.Format(dateLayout)
}

// weekStart returns the Monday of the week containing t.
func weekStart(t time.Time) string {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday closes the week
	}
	return t.AddDate(0, 0, -(weekday - 1)).Format(dateLayout)
}

// periodBounds returns the default [start, end] for a budget period type
// anchored at t.
func periodBounds(pt models.PeriodType, t time.Time) (string, string) {
	switch pt {
	case models.PeriodQuarter:
		return quarterBounds(t)
	case models.PeriodYear:
		return yearBounds(t)
	default:
		return monthBounds(t)
	}
}

// normalizePeriodType maps both the English tags and the original Chinese
// labels onto a PeriodType. Empty input defaults to month.
func normalizePeriodType(s string) (models.PeriodType, bool) {
	switch s {
	case "", "month", "月":
		return models.PeriodMonth, true
	case "quarter", "季":
		return models.PeriodQuarter, true
	case "year", "年":
		return models.PeriodYear, true
	}
	return "", false
}

// periodLabel is the Chinese display label for a period type.
func periodLabel(pt models.PeriodType) string {
	switch pt {
	case models.PeriodQuarter:
		return "季"
	case models.PeriodYear:
		return "年"
	default:
		return "月"
	}
}
