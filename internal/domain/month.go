package domain

import (
	"errors"
	"time"
)

// monthLayout is the wire and storage form of a target month, e.g. "2024-03".
// Zero-padded so the string form sorts chronologically.
const monthLayout = "2006-01"

var ErrInvalidMonth = errors.New("month must be in YYYY-MM format")

// Month identifies the calendar month an assignment targets.
// Stored as its canonical "YYYY-MM" string.
type Month string

// ParseMonth validates and canonicalizes a "YYYY-MM" string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return "", ErrInvalidMonth
	}
	return Month(t.Format(monthLayout)), nil
}

// Validate reports whether the month is a well-formed "YYYY-MM" value.
func (m Month) Validate() error {
	if _, err := time.Parse(monthLayout, string(m)); err != nil {
		return ErrInvalidMonth
	}
	return nil
}

func (m Month) String() string {
	return string(m)
}

// Time returns midnight UTC on the first day of the month.
func (m Month) Time() time.Time {
	t, _ := time.Parse(monthLayout, string(m))
	return t
}
