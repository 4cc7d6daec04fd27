package ical

import (
	"strings"
	"time"
)

// TimeRange is an inclusive-start, exclusive-end absolute interval, per
// RFC 4791 section 9.9's CALDAV:time-range semantics: a component matches a
// range when any of its occurrences intersects it.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// isZero reports whether r carries no bound at all.
func (r TimeRange) isZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func (r TimeRange) contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && !t.Before(r.End) {
		return false
	}
	return true
}

// MatchTimeRange reports whether any occurrence of ev, resolved against
// calendar's zones, falls within r. A non-recurring event is checked
// against its single DTSTART/DTEND span; a recurring one walks its
// instance iterator until either a match is found or the first occurrence
// past r.End is reached (the iterator is ascending, so that bounds the
// search even for an unbounded rule).
func MatchTimeRange(ev *Event, calendar *VCalendar, r TimeRange) (bool, error) {
	if ev.Timings == nil {
		return false, nil
	}
	if r.isZero() {
		return true, nil
	}

	it, err := ev.IterInstants(calendar)
	if err != nil {
		return false, err
	}

	dur := time.Duration(0)
	if ev.Timings.HasDuration {
		dur = ev.Timings.Duration
	}

	for {
		when, ok, err := it.Next()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		if !r.End.IsZero() && when.After(r.End) {
			return false, nil
		}
		span := TimeRange{Start: when, End: when.Add(dur)}
		if spanIntersects(span, r) {
			return true, nil
		}
	}
}

func spanIntersects(span, r TimeRange) bool {
	spanEnd := span.End
	if spanEnd.Equal(span.Start) {
		spanEnd = span.Start.Add(time.Second)
	}
	if !r.Start.IsZero() && !spanEnd.After(r.Start) {
		return false
	}
	if !r.End.IsZero() && !span.Start.Before(r.End) {
		return false
	}
	return true
}

// TextMatch is a single CALDAV-style text comparison: substring, optionally
// negated, optionally case-insensitive (collation "i;ascii-casemap" in the
// RFC; this library folds case with strings.ToUpper and offers no other
// collation, matching spec.md's non-goal on full Unicode collation).
type TextMatch struct {
	Value           string
	CaseInsensitive bool
	Negate          bool
}

// MatchText reports whether m matches value.
func MatchText(m TextMatch, value string) bool {
	v, needle := value, m.Value
	if m.CaseInsensitive {
		v, needle = strings.ToUpper(v), strings.ToUpper(needle)
	}
	found := strings.Contains(v, needle)
	if m.Negate {
		return !found
	}
	return found
}
