// Package date provides a Date type that marshals as YYYY-MM-DD, plus the
// working-day calendar arithmetic used by the scheduler.
package date

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

const format = "2006-01-02"

// Date represents a calendar date without time or timezone.
// The zero Date is "blank".
type Date struct {
	time.Time
}

// New creates a Date from year, month, day.
func New(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Normalize returns the calendar date of t as seen in t's own location.
func Normalize(t time.Time) Date {
	return New(t.Year(), t.Month(), t.Day())
}

// Today returns today's date in the local calendar.
func Today() Date {
	return Normalize(time.Now())
}

// Parse parses a YYYY-MM-DD string into a Date.
func Parse(s string) (Date, error) {
	t, err := time.Parse(format, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// ParseOrToday parses s, falling back to today when s is blank or malformed.
// Unlike Parse it accepts unpadded fields, so "2024-1-5" is January 5. It
// never fails.
func ParseOrToday(s string, today Date) Date {
	if d, ok := parseLoose(s); ok {
		return d
	}
	return today
}

// parseLoose reads Y-M-D with fields of any width. Out of range fields are
// rejected rather than rolled over into the next month.
func parseLoose(s string) (Date, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 { //nolint:mnd // year, month, day
		return Date{}, false
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v <= 0 {
			return Date{}, false
		}
		n[i] = v
	}
	d := New(n[0], time.Month(n[1]), n[2])
	if d.Year() != n[0] || int(d.Month()) != n[1] || d.Day() != n[2] {
		return Date{}, false
	}
	return d, true
}

// String returns the date as YYYY-MM-DD, or "" for a blank date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(format)
}

// AddDays returns the date n calendar days after d.
func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

// Max returns the latest of the given dates. Blank dates are ignored.
func Max(dates ...Date) Date {
	var out Date
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		if out.IsZero() || d.Time.After(out.Time) {
			out = d
		}
	}
	return out
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.v3 Unmarshaler. An empty value decodes to a
// blank date and a malformed one to today.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	*d = decode(value.Value)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler with the same leniency as UnmarshalYAML.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = decode(s)
	return nil
}

func decode(s string) Date {
	if s == "" {
		return Date{}
	}
	return ParseOrToday(s, Today())
}
