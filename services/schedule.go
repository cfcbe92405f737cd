package services

import (
	"fmt"
	"time"

	"github.com/kendall-kelly/cleancans-api/models"
)

// NextOccurrence adds one frequency increment to current.
//
// Weekly and biweekly plans move 7 and 14 days. Monthly plans move to the
// anchor day of the following month; when that month is shorter the date is
// clamped to its last day (Jan 31 -> Feb 29 -> Mar 31). An anchorDay of 0
// uses the day of current.
func NextOccurrence(current time.Time, frequency string, anchorDay int) (time.Time, error) {
	switch frequency {
	case models.FrequencyWeekly:
		return current.AddDate(0, 0, 7), nil
	case models.FrequencyBiweekly:
		return current.AddDate(0, 0, 14), nil
	case models.FrequencyMonthly:
		if anchorDay <= 0 {
			anchorDay = current.Day()
		}
		return addMonthClamped(current, anchorDay), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, frequency)
	}
}

func addMonthClamped(t time.Time, anchorDay int) time.Time {
	y, m, _ := t.Date()
	// First day of the target month, then clamp the anchor to its length
	first := time.Date(y, m+1, 1, 0, 0, 0, 0, t.Location())
	last := daysIn(first.Year(), first.Month(), t.Location())
	day := anchorDay
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
