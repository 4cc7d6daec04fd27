package ical

import "time"

// civilInstant is the recurrence engine's single concrete "datelike" value.
// It represents either a calendar date (dateOnly=true, time fields always
// zero) or a floating/naive date-time (dateOnly=false), stored in a
// time.UTC-located time.Time purely as a neutral wall-clock container. Per
// spec.md section 9's "implement once per concrete shape" note, a second
// shape -- a period anchored at a civilInstant -- wraps this one (see
// periodInstant in recuriter.go) instead of duplicating the BY* expansion
// logic for a third time.
type civilInstant struct {
	t        time.Time
	dateOnly bool
}

func newCivilDate(t time.Time) civilInstant {
	return civilInstant{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), dateOnly: true}
}

func newCivilDateTime(t time.Time) civilInstant {
	return civilInstant{t: t, dateOnly: false}
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func daysInYear(y int) int {
	if isLeapYear(y) {
		return 366
	}
	return 365
}

func daysInMonth(y int, m time.Month) int {
	switch m {
	case time.January, time.March, time.May, time.July, time.August, time.October, time.December:
		return 31
	case time.April, time.June, time.September, time.November:
		return 30
	case time.February:
		if isLeapYear(y) {
			return 29
		}
		return 28
	default:
		return 30
	}
}

// weeksInYear returns the number of ISO weeks in year y: 53 exactly when
// Jan 1 falls on Thursday, or y is a leap year and Jan 1 falls on
// Wednesday, and 52 otherwise.
func weeksInYear(y int) int {
	jan1 := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC).Weekday()
	if jan1 == time.Thursday || (isLeapYear(y) && jan1 == time.Wednesday) {
		return 53
	}
	return 52
}

// daysFromMonday maps Go's Sunday=0 weekday encoding to a Monday=0 one,
// which is what the ISO week/WKST arithmetic below wants.
func daysFromMonday(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// isoWeek returns the ISO 8601 week number of t (Monday-based, matching
// chrono's NaiveDate::iso_week in original_source).
func isoWeek(t time.Time) int {
	_, wk := t.ISOWeek()
	return wk
}

// startOfWeek returns the date of the start of the week (per weekStart)
// that contains date, always at or before date.
func startOfWeek(weekStart time.Weekday, date time.Time) time.Time {
	diff := daysFromMonday(weekStart) - daysFromMonday(date.Weekday())
	if diff > 0 {
		diff -= 7
	}
	return date.AddDate(0, 0, diff)
}

// weekdaysInPeriod finds every occurrence of weekday `day` within
// [start, end), then -- if num is non-zero -- selects just the num'th one
// (negative counts from the end of that list).
func weekdaysInPeriod(start, end time.Time, day time.Weekday, num int) []time.Time {
	diff := (daysFromMonday(day) - daysFromMonday(start.Weekday())) % 7
	if diff < 0 {
		diff += 7
	}

	var all []time.Time
	for d := start.AddDate(0, 0, diff); d.Before(end); d = d.AddDate(0, 0, 7) {
		all = append(all, d)
	}

	if num == 0 {
		return all
	}
	if num > 0 {
		if num-1 < len(all) {
			return []time.Time{all[num-1]}
		}
		return nil
	}
	idx := ((num % len(all)) + len(all)) % len(all)
	if len(all) == 0 {
		return nil
	}
	return []time.Time{all[idx]}
}

func monthBounds(d time.Time) (start, end time.Time) {
	start = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return
}

func yearBounds(d time.Time) (start, end time.Time) {
	start = time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(1, 0, 0)
	return
}

func weekBounds(weekStart time.Weekday, d time.Time) (start, end time.Time) {
	start = startOfWeek(weekStart, d)
	end = start.AddDate(0, 0, 7)
	return
}

// wrapSigned normalizes a signed 1-based-from-either-end index (as used by
// BYMONTHDAY/BYYEARDAY/BYWEEKNO: positive counts from 1, negative counts
// from the end) against a count of `total` items, returning a 0-based
// index.
func wrapSigned(n, total int) int {
	if n > 0 {
		return n - 1
	}
	return n + total
}

// expandDates applies the BYMONTH/BYWEEKNO/BYYEARDAY/BYMONTHDAY/BYDAY
// expansion-or-filter rules, in that order, to a single anchor's date set.
func expandDates(r *RecurRule, dateSet []civilInstant) []civilInstant {
	if len(r.ByMonth) > 0 {
		dateSet = expandByMonth(r, dateSet)
	}
	if len(r.ByWeekNo) > 0 {
		dateSet = expandByWeekNo(r, dateSet)
	}
	if len(r.ByYearDay) > 0 {
		dateSet = expandByYearDay(r, dateSet)
	}
	if len(r.ByMonthDay) > 0 {
		dateSet = expandByMonthDay(r, dateSet)
	}
	if len(r.ByDay) > 0 {
		dateSet = expandByDay(r, dateSet)
	}
	return dateSet
}

func expandByMonth(r *RecurRule, in []civilInstant) []civilInstant {
	switch r.Freq {
	case Yearly:
		var out []civilInstant
		for _, d := range in {
			for _, m := range r.ByMonth {
				nt := time.Date(d.t.Year(), time.Month(m), d.t.Day(), d.t.Hour(), d.t.Minute(), d.t.Second(), 0, time.UTC)
				out = append(out, civilInstant{t: nt, dateOnly: d.dateOnly})
			}
		}
		return out
	default:
		var out []civilInstant
		for _, d := range in {
			for _, m := range r.ByMonth {
				if int(d.t.Month()) == m {
					out = append(out, d)
					break
				}
			}
		}
		return out
	}
}

func expandByWeekNo(r *RecurRule, in []civilInstant) []civilInstant {
	// Only legal with FREQ=YEARLY; parse-time validation guarantees that.
	var out []civilInstant
	for _, d := range in {
		weeks := weeksInYear(d.t.Year())
		for _, s := range r.ByWeekNo {
			if s < 0 {
				s = wrapSigned(s, weeks) + 1
			}
			diff := s - isoWeek(d.t)
			nt := d.t.AddDate(0, 0, diff*7)
			out = append(out, civilInstant{t: nt, dateOnly: d.dateOnly})
		}
	}
	return out
}

func expandByYearDay(r *RecurRule, in []civilInstant) []civilInstant {
	switch r.Freq {
	case Yearly:
		var out []civilInstant
		for _, d := range in {
			dy := daysInYear(d.t.Year())
			for _, s := range r.ByYearDay {
				idx := wrapSigned(s, dy)
				if idx < 0 || idx >= dy {
					continue
				}
				yearStart := time.Date(d.t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
				nt := yearStart.AddDate(0, 0, idx)
				nt = time.Date(nt.Year(), nt.Month(), nt.Day(), d.t.Hour(), d.t.Minute(), d.t.Second(), 0, time.UTC)
				out = append(out, civilInstant{t: nt, dateOnly: d.dateOnly})
			}
		}
		return out
	default:
		var out []civilInstant
		for _, d := range in {
			dy := daysInYear(d.t.Year())
			ordinal := d.t.YearDay()
			match := false
			for _, s := range r.ByYearDay {
				if wrapSigned(s, dy)+1 == ordinal {
					match = true
					break
				}
			}
			if match {
				out = append(out, d)
			}
		}
		return out
	}
}

func expandByMonthDay(r *RecurRule, in []civilInstant) []civilInstant {
	switch r.Freq {
	case Monthly, Yearly:
		var out []civilInstant
		for _, d := range in {
			dm := daysInMonth(d.t.Year(), d.t.Month())
			for _, s := range r.ByMonthDay {
				idx := wrapSigned(s, dm)
				if idx < 0 || idx >= dm {
					continue
				}
				nt := time.Date(d.t.Year(), d.t.Month(), idx+1, d.t.Hour(), d.t.Minute(), d.t.Second(), 0, time.UTC)
				out = append(out, civilInstant{t: nt, dateOnly: d.dateOnly})
			}
		}
		return out
	default:
		var out []civilInstant
		for _, d := range in {
			dm := daysInMonth(d.t.Year(), d.t.Month())
			match := false
			for _, s := range r.ByMonthDay {
				if wrapSigned(s, dm)+1 == d.t.Day() {
					match = true
					break
				}
			}
			if match {
				out = append(out, d)
			}
		}
		return out
	}
}

func expandByDay(r *RecurRule, in []civilInstant) []civilInstant {
	limitToMonthDay := len(r.ByMonthDay) > 0

	switch r.Freq {
	case Secondly, Minutely, Hourly, Daily:
		var out []civilInstant
		for _, d := range in {
			for _, e := range r.ByDay {
				if e.Day == d.t.Weekday() {
					out = append(out, d)
					break
				}
			}
		}
		return out

	case Weekly:
		var out []civilInstant
		for _, d := range in {
			ws := startOfWeek(r.WeekStart, d.t)
			for _, e := range r.ByDay {
				diff := ((daysFromMonday(e.Day) - daysFromMonday(ws.Weekday())) % 7)
				if diff < 0 {
					diff += 7
				}
				nt := ws.AddDate(0, 0, diff)
				nt = time.Date(nt.Year(), nt.Month(), nt.Day(), d.t.Hour(), d.t.Minute(), d.t.Second(), 0, time.UTC)
				out = append(out, civilInstant{t: nt, dateOnly: d.dateOnly})
			}
		}
		return out

	case Monthly:
		var out []civilInstant
		for _, d := range in {
			start, end := monthBounds(d.t)
			for _, e := range r.ByDay {
				matches := weekdaysInPeriod(start, end, e.Day, e.N)
				for _, m := range matches {
					if !limitToMonthDay || m.Day() == d.t.Day() {
						nt := time.Date(m.Year(), m.Month(), m.Day(), d.t.Hour(), d.t.Minute(), d.t.Second(), 0, time.UTC)
						out = append(out, civilInstant{t: nt, dateOnly: d.dateOnly})
					}
				}
			}
		}
		return out

	case Yearly:
		limit := len(r.ByYearDay) > 0 || len(r.ByMonthDay) > 0

		var freq Frequency
		switch {
		case len(r.ByWeekNo) > 0:
			freq = Weekly
		case len(r.ByMonth) > 0:
			freq = Monthly
		default:
			freq = Yearly
		}

		var out []civilInstant
		for _, d := range in {
			var start, end time.Time
			switch freq {
			case Weekly:
				start, end = weekBounds(r.WeekStart, d.t)
			case Monthly:
				start, end = monthBounds(d.t)
			default:
				start, end = yearBounds(d.t)
			}

			for _, e := range r.ByDay {
				matches := weekdaysInPeriod(start, end, e.Day, e.N)
				for _, m := range matches {
					if !limit || m.Day() == d.t.Day() {
						nt := time.Date(m.Year(), m.Month(), m.Day(), d.t.Hour(), d.t.Minute(), d.t.Second(), 0, time.UTC)
						out = append(out, civilInstant{t: nt, dateOnly: d.dateOnly})
					}
				}
			}
		}
		return out

	default:
		return in
	}
}

// expandTimes applies BYHOUR/BYMINUTE/BYSECOND: expand-or-filter depending
// on whether FREQ is coarser or finer than the unit.
func expandTimes(r *RecurRule, dateSet []civilInstant) []civilInstant {
	if len(r.ByHour) > 0 {
		dateSet = expandByHour(r, dateSet)
	}
	if len(r.ByMinute) > 0 {
		dateSet = expandByMinute(r, dateSet)
	}
	if len(r.BySecond) > 0 {
		dateSet = expandBySecond(r, dateSet)
	}
	return dateSet
}

func expandByHour(r *RecurRule, in []civilInstant) []civilInstant {
	switch r.Freq {
	case Secondly, Minutely, Hourly:
		var out []civilInstant
		for _, d := range in {
			match := false
			for _, h := range r.ByHour {
				if h == d.t.Hour() {
					match = true
					break
				}
			}
			if match {
				out = append(out, d)
			}
		}
		return out
	default:
		var out []civilInstant
		for _, d := range in {
			for _, h := range r.ByHour {
				nt := time.Date(d.t.Year(), d.t.Month(), d.t.Day(), h, d.t.Minute(), d.t.Second(), 0, time.UTC)
				out = append(out, civilInstant{t: nt, dateOnly: false})
			}
		}
		return out
	}
}

func expandByMinute(r *RecurRule, in []civilInstant) []civilInstant {
	switch r.Freq {
	case Secondly, Minutely:
		var out []civilInstant
		for _, d := range in {
			match := false
			for _, m := range r.ByMinute {
				if m == d.t.Minute() {
					match = true
					break
				}
			}
			if match {
				out = append(out, d)
			}
		}
		return out
	default:
		var out []civilInstant
		for _, d := range in {
			for _, m := range r.ByMinute {
				nt := time.Date(d.t.Year(), d.t.Month(), d.t.Day(), d.t.Hour(), m, d.t.Second(), 0, time.UTC)
				out = append(out, civilInstant{t: nt, dateOnly: false})
			}
		}
		return out
	}
}

func expandBySecond(r *RecurRule, in []civilInstant) []civilInstant {
	switch r.Freq {
	case Secondly:
		var out []civilInstant
		for _, d := range in {
			match := false
			for _, s := range r.BySecond {
				if s == d.t.Second() {
					match = true
					break
				}
			}
			if match {
				out = append(out, d)
			}
		}
		return out
	default:
		var out []civilInstant
		for _, d := range in {
			for _, s := range r.BySecond {
				nt := time.Date(d.t.Year(), d.t.Month(), d.t.Day(), d.t.Hour(), d.t.Minute(), s, 0, time.UTC)
				out = append(out, civilInstant{t: nt, dateOnly: false})
			}
		}
		return out
	}
}

// applyBySetPos selects positions within one anchor's fully expanded date
// set: positive p is 1-based from the front, negative p wraps from the end.
// An out-of-range position is skipped rather than erroring, since RFC 5545
// treats a BYSETPOS referring outside the set as simply not matching.
func applyBySetPos[T any](dateSet []T, positions []int) []T {
	if len(dateSet) == 0 {
		return nil
	}
	var out []T
	for _, p := range positions {
		var idx int
		if p > 0 {
			idx = p - 1
		} else {
			idx = ((p % len(dateSet)) + len(dateSet)) % len(dateSet)
		}
		if idx >= 0 && idx < len(dateSet) {
			out = append(out, dateSet[idx])
		}
	}
	return out
}
