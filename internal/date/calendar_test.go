package date

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2024-01-01 is a Monday.
var (
	mon = New(2024, time.January, 1)
	sat = New(2024, time.January, 6)
	sun = New(2024, time.January, 7)
)

func TestIsWorkingDay(t *testing.T) {
	assert.True(t, IsWorkingDay(mon, MondayToFriday()))
	assert.False(t, IsWorkingDay(sat, MondayToFriday()))
	assert.True(t, IsWorkingDay(sat, Weekdays{}), "empty set means every day")
	assert.True(t, IsWorkingDay(sat, nil))
}

func TestNextWorkingDay(t *testing.T) {
	tests := []struct {
		name string
		in   Date
		w    Weekdays
		want Date
	}{
		{"already working", mon, MondayToFriday(), mon},
		{"saturday to monday", sat, MondayToFriday(), New(2024, time.January, 8)},
		{"sunday to monday", sun, MondayToFriday(), New(2024, time.January, 8)},
		{"empty set unchanged", sat, Weekdays{}, sat},
		{"single day", mon, Weekdays{time.Thursday}, New(2024, time.January, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextWorkingDay(tt.in, tt.w))
		})
	}
}

func TestNextWorkingDay_SafetyCap(t *testing.T) {
	// A set holding no real weekday never matches; the search stops at the cap.
	got := NextWorkingDay(mon, Weekdays{9})
	assert.Equal(t, mon.AddDays(MaxNextWorkingDaySteps), got)
}

func TestAddWorkingDuration(t *testing.T) {
	tests := []struct {
		name     string
		start    Date
		duration int
		w        Weekdays
		want     Date
	}{
		{"all days, three", mon, 3, AllWeekdays(), New(2024, time.January, 3)},
		{"one day is the start", mon, 1, AllWeekdays(), mon},
		{"zero returns start", sat, 0, MondayToFriday(), sat},
		{"negative returns start", sat, -4, MondayToFriday(), sat},
		{"skips weekend", New(2024, time.January, 4), 3, MondayToFriday(), New(2024, time.January, 8)},
		{"snaps saturday start", sat, 2, MondayToFriday(), New(2024, time.January, 9)},
		{"empty set counts every day", sat, 2, Weekdays{}, sun},
		{"two weeks of weekdays", mon, 10, MondayToFriday(), New(2024, time.January, 12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddWorkingDuration(tt.start, tt.duration, tt.w))
		})
	}
}

func TestAddWorkingDuration_SafetyCap(t *testing.T) {
	got := AddWorkingDuration(mon, 3, Weekdays{9})
	want := mon.AddDays(MaxNextWorkingDaySteps + MaxDurationSteps)
	assert.Equal(t, want, got)
}

func TestWorkingDaysBetween(t *testing.T) {
	assert.Equal(t, 3, WorkingDaysBetween(mon, New(2024, time.January, 3), AllWeekdays()))
	assert.Equal(t, 5, WorkingDaysBetween(mon, sun, MondayToFriday()))
	assert.Equal(t, 1, WorkingDaysBetween(sun, mon, AllWeekdays()), "reversed range floors at 1")
	assert.Equal(t, 1, WorkingDaysBetween(sat, sun, MondayToFriday()), "no working days floors at 1")
	assert.Equal(t, 7, WorkingDaysBetween(mon, sun, Weekdays{}))
}

func TestDurationRoundTrip(t *testing.T) {
	sets := []Weekdays{
		AllWeekdays(),
		MondayToFriday(),
		{time.Saturday},
		{time.Tuesday, time.Thursday},
		{},
	}
	starts := []Date{mon, sat, sun, New(2024, time.February, 28)}
	for _, w := range sets {
		for _, s := range starts {
			for n := -1; n <= 40; n++ {
				end := AddWorkingDuration(s, n, w)
				assert.Equal(t, max(1, n), WorkingDaysBetween(s, end, w),
					"set=%s start=%s n=%d", w, s, n)
			}
		}
	}
}

func TestCalendarDaysBetween(t *testing.T) {
	assert.Equal(t, 0, CalendarDaysBetween(mon, mon))
	assert.Equal(t, 5, CalendarDaysBetween(mon, sat))
	assert.Equal(t, -5, CalendarDaysBetween(sat, mon))
	assert.Equal(t, 366, CalendarDaysBetween(mon, New(2025, time.January, 1)))
	// Spans the March DST change in most zones; calendar distance is unaffected.
	assert.Equal(t, 31, CalendarDaysBetween(New(2024, time.March, 1), New(2024, time.April, 1)))
}
