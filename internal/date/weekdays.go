package date

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

const daysPerWeek = 7

// Weekdays is a set of weekday numbers (0=Sunday..6=Saturday) on which a task
// may occupy a day. A nil set means "not configured"; an empty non-nil set
// means every day is a working day.
type Weekdays []time.Weekday

// AllWeekdays returns a set containing all seven days.
func AllWeekdays() Weekdays {
	return Weekdays{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}
}

// MondayToFriday returns the usual five-day work week.
func MondayToFriday() Weekdays {
	return Weekdays{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
}

// Contains reports whether wd is in the set.
func (w Weekdays) Contains(wd time.Weekday) bool {
	return slices.Contains(w, wd)
}

// IsZero reports whether the set is unconfigured. Used by yaml omitempty and
// json omitzero so that an explicit empty set survives a round trip.
func (w Weekdays) IsZero() bool {
	return w == nil
}

// Clone returns a copy of the set, preserving nil.
func (w Weekdays) Clone() Weekdays {
	if w == nil {
		return nil
	}
	return append(Weekdays{}, w...)
}

// Or returns w, or fallback when w is unconfigured.
func (w Weekdays) Or(fallback Weekdays) Weekdays {
	if w == nil {
		return fallback
	}
	return w
}

var weekdayNames = [daysPerWeek]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// String renders the set as a comma-separated list of short day names.
func (w Weekdays) String() string {
	switch {
	case w == nil:
		return "default"
	case len(w) == 0 || len(normalizeSet(w)) == daysPerWeek:
		return "all"
	}
	parts := make([]string, 0, len(w))
	for _, wd := range normalizeSet(w) {
		if wd >= 0 && int(wd) < daysPerWeek {
			parts = append(parts, weekdayNames[wd])
		} else {
			parts = append(parts, strconv.Itoa(int(wd)))
		}
	}
	return strings.Join(parts, ",")
}

// ParseWeekdays parses a working-day specification such as "mon-fri",
// "1,2,3", "sat,sun", "weekdays" or "all".
func ParseWeekdays(s string) (Weekdays, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "all", "every", "everyday", "*":
		return AllWeekdays(), nil
	case "weekdays", "workweek":
		return MondayToFriday(), nil
	case "weekend":
		return Weekdays{time.Sunday, time.Saturday}, nil
	case "":
		return nil, fmt.Errorf("invalid working days %q: empty", s)
	}

	var out Weekdays
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		from, to, isRange := strings.Cut(part, "-")
		first, err := parseWeekday(from)
		if err != nil {
			return nil, err
		}
		if !isRange {
			out = append(out, first)
			continue
		}
		last, err := parseWeekday(to)
		if err != nil {
			return nil, err
		}
		// Ranges may wrap around the week end, e.g. fri-mon.
		for wd := first; ; wd = (wd + 1) % daysPerWeek {
			out = append(out, wd)
			if wd == last {
				break
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("invalid working days %q: no days given", s)
	}
	return normalizeSet(out), nil
}

func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n >= daysPerWeek {
			return 0, fmt.Errorf("invalid weekday %d: expected 0 (Sunday) to 6 (Saturday)", n)
		}
		return time.Weekday(n), nil
	}
	const prefix = 3
	if len(s) >= prefix {
		for i, name := range weekdayNames {
			if s[:prefix] == name && strings.HasPrefix(strings.ToLower(time.Weekday(i).String()), s) {
				return time.Weekday(i), nil
			}
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// normalizeSet returns a sorted copy without duplicates.
func normalizeSet(w Weekdays) Weekdays {
	out := append(Weekdays{}, w...)
	slices.Sort(out)
	return slices.Compact(out)
}

// MarshalYAML implements yaml.Marshaler, writing weekday numbers.
func (w Weekdays) MarshalYAML() (interface{}, error) {
	nums := make([]int, 0, len(w))
	for _, wd := range w {
		nums = append(nums, int(wd))
	}
	return nums, nil
}

// UnmarshalYAML accepts either a sequence of numbers/day names or a single
// specification string ("mon-fri").
func (w *Weekdays) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := ParseWeekdays(value.Value)
		if err != nil {
			return err
		}
		*w = parsed
		return nil
	case yaml.SequenceNode:
		out := Weekdays{}
		for _, item := range value.Content {
			wd, err := parseWeekday(item.Value)
			if err != nil {
				return err
			}
			out = append(out, wd)
		}
		*w = out
		return nil
	default:
		return fmt.Errorf("invalid working days: unexpected YAML node at line %d", value.Line)
	}
}
