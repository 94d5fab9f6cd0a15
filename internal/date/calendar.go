package date

// Safety caps for the calendar loops. With a real seven-day calendar neither
// is ever reached; they only bound calendars that hold no valid weekday.
const (
	MaxNextWorkingDaySteps = 30
	MaxDurationSteps       = 5000
)

const hoursPerDay = 24

// IsWorkingDay reports whether d falls on a day in w. An empty set means
// every day is a working day.
func IsWorkingDay(d Date, w Weekdays) bool {
	if len(w) == 0 {
		return true
	}
	return w.Contains(d.Weekday())
}

// NextWorkingDay returns d when it is a working day, otherwise the first
// working day after it. The search gives up after MaxNextWorkingDaySteps days.
func NextWorkingDay(d Date, w Weekdays) Date {
	if len(w) == 0 {
		return d
	}
	for steps := 0; !IsWorkingDay(d, w) && steps < MaxNextWorkingDaySteps; steps++ {
		d = d.AddDays(1)
	}
	return d
}

// AddWorkingDuration returns the date on which a task of the given duration
// ends when it starts on start. The start day counts as the first working
// day; a start on a non-working day is first moved to the next working day.
func AddWorkingDuration(start Date, duration int, w Weekdays) Date {
	if duration <= 0 {
		return start
	}
	current := start
	if !IsWorkingDay(current, w) {
		current = NextWorkingDay(current, w)
	}

	remaining := max(1, duration) - 1
	for steps := 0; remaining > 0 && steps < MaxDurationSteps; steps++ {
		current = current.AddDays(1)
		if IsWorkingDay(current, w) {
			remaining--
		}
	}
	return current
}

// WorkingDaysBetween counts the working days in the inclusive range
// [start, end]. It never returns less than 1.
func WorkingDaysBetween(start, end Date, w Weekdays) int {
	if end.Before(start.Time) {
		return 1
	}
	count := 0
	for d := start; !d.After(end.Time); d = d.AddDays(1) {
		if IsWorkingDay(d, w) {
			count++
		}
	}
	return max(1, count)
}

// CalendarDaysBetween returns the number of calendar days from a to b
// (negative when b is before a). Only used for chart geometry.
func CalendarDaysBetween(a, b Date) int {
	ua := New(a.Year(), a.Month(), a.Day())
	ub := New(b.Year(), b.Month(), b.Day())
	return int(ub.Sub(ua.Time).Hours()) / hoursPerDay
}
