package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the calendar-date format used on the wire and in the DB.
const Layout = "2006-01-02"

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC date according to now.
func Today(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	return Day(now())
}

// Parse reads a YYYY-MM-DD date.
func Parse(value string) (time.Time, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected %s", value, Layout)
	}
	return t, nil
}

// ParseOptional returns nil for blank input.
func ParseOptional(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := Parse(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func Format(t time.Time) string {
	return Day(t).Format(Layout)
}

func FormatPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Format(*t)
	return &s
}

// Between reports whether from <= t <= to, comparing calendar days only.
func Between(t, from, to time.Time) bool {
	day := Day(t)
	return !day.Before(Day(from)) && !day.After(Day(to))
}
