package model

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDate is returned for dates that are neither YYYY-MM-DD nor YYYY-MM.
var ErrInvalidDate = errors.New("invalid date")

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// ParseDate accepts YYYY-MM-DD or YYYY-MM.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(monthLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

// FormatMonth renders a date as MM/YYYY. Unparseable input is returned trimmed.
func FormatMonth(raw string) string {
	t, err := ParseDate(raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return t.Format("01/2006")
}

// FormatLong renders a date as "January 2, 2006", or "January 2006" when
// only the month is known.
func FormatLong(raw string) string {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t.Format("January 2, 2006")
	}
	if t, err := time.Parse(monthLayout, s); err == nil {
		return t.Format("January 2006")
	}
	return s
}
