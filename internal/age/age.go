// Package age converts a child's birth date into completed months, the
// unit the screening instrument is indexed by.
package age

import (
	"errors"
	"time"
)

// MaxMonths is the instrument ceiling. Children older than this are
// outside the screening's validated range and are referred to a
// speech-language specialist instead of being tested.
const MaxMonths = 36

// ErrInvalidDate is returned for unparseable or future birth dates.
var ErrInvalidDate = errors.New("invalid birth date")

// DateLayout is the accepted birth date format.
const DateLayout = "2006-01-02"

// ParseBirthDate parses a strict YYYY-MM-DD birth date string.
func ParseBirthDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// CompletedMonths computes the child's age in completed months at the
// reference date, rounding a partial month up once it holds at least 30
// elapsed days. A birth date after the reference date is ErrInvalidDate.
func CompletedMonths(birth, today time.Time) (int, error) {
	birth = truncateDay(birth)
	today = truncateDay(today)

	if birth.After(today) {
		return 0, ErrInvalidDate
	}

	years := today.Year() - birth.Year()
	months := int(today.Month()) - int(birth.Month())
	days := today.Day() - birth.Day()

	if days < 0 {
		// Borrow a month; the partial month spans the month before
		// "today", so its length decides the 30-day round-up.
		months--
		days += daysInPreviousMonth(today)
	}
	if months < 0 {
		years--
		months += 12
	}

	total := years*12 + months
	if days >= 30 {
		total++
	}

	return total, nil
}

// daysInPreviousMonth returns the number of days in the month directly
// before t's month.
func daysInPreviousMonth(t time.Time) int {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	lastOfPrevious := firstOfMonth.AddDate(0, 0, -1)
	return lastOfPrevious.Day()
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
