package mealplan

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar-day format used on the wire and in storage
const DateLayout = "2006-01-02"

// Date is a calendar day without time-of-day or zone.
type Date struct {
	t time.Time
}

// NewDate creates a Date from its components; out-of-range values are
// normalized the way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

// AddDays returns the date n days later (earlier for negative n)
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// Week is the half-open range [Start, Start+7d)
type Week struct {
	Start Date
	End   Date
}

// WeekStarting returns the seven-day window beginning at start.
// Any weekday is accepted as a start.
func WeekStarting(start Date) Week {
	return Week{Start: start, End: start.AddDays(7)}
}
