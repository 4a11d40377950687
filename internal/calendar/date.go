package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the wire format for calendar dates
const Layout = "2006-01-02"

// Date is a calendar date without time-of-day.
// The underlying time is always midnight UTC, so day arithmetic is exact.
type Date struct {
	t time.Time
}

// New builds a date from year, month and day (normalizing overflow like time.Date)
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Of truncates a timestamp to its calendar date in the timestamp's own location
func Of(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return New(y, m, d)
}

// Today returns the current date from the given clock
func Today(clock func() time.Time) Date {
	if clock == nil {
		clock = time.Now
	}
	return Of(clock())
}

// Parse parses a YYYY-MM-DD string
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Of(t), nil
}

// MustParse is Parse for fixtures and tests
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool { return d.t.IsZero() }

// Time returns midnight UTC of the date
func (d Date) Time() time.Time { return d.t }

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

// Before reports whether d is strictly earlier than o
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d is strictly later than o
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal reports whether both dates are the same day
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// AddDays shifts the date by n days
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddYears shifts the date by n years. Feb 29 lands on Feb 28 in non-leap years.
func (d Date) AddYears(n int) Date {
	return onYear(d, d.Year()+n)
}

// DaysUntil returns o − d in whole days (negative when o is earlier)
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

// DaysSince returns d − o in whole days
func (d Date) DaysSince(o Date) int {
	return o.DaysUntil(d)
}

// String formats as YYYY-MM-DD, empty for the zero date
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(Layout)
}

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
