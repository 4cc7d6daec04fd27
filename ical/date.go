package ical

import (
	"fmt"
	"time"
)

// DateKind discriminates the four shapes a DateOrDateTime can take. Go has
// no algebraic sum types, so this is the idiomatic encoding the corpus uses
// elsewhere (see ValueType in the go-ical-derived Prop.ValueType): a tag
// plus the payload fields relevant to that tag.
type DateKind int

const (
	KindDateOnly DateKind = iota
	KindLocal             // floating date-time, no zone
	KindUTC               // absolute, explicit Z suffix
	KindTZ                // wall-clock in a named zone (TZID parameter)
)

// DateOrDateTime is the sum type described by the data model: a calendar
// date, a floating date-time, a UTC date-time, or a date-time tied to a
// named VTIMEZONE. Which of Naive/UTC/TZID are meaningful is selected by
// Kind (see the field comments); mixing shapes across DTSTART/DTEND is rejected at decode time.
type DateOrDateTime struct {
	Kind DateKind

	// Naive holds the wall-clock value for KindDateOnly, KindLocal and
	// KindTZ. It is always constructed in time.UTC purely as a neutral
	// container for year/month/day[/hour/min/sec] -- it does not mean
	// "this instant expressed in UTC".
	Naive time.Time

	// UTC holds the absolute instant for KindUTC.
	UTC time.Time

	// TZID names the VTIMEZONE this value resolves against, for KindTZ.
	TZID string
}

// NewDateOnly builds a calendar-date (no time-of-day) value.
func NewDateOnly(year int, month time.Month, day int) DateOrDateTime {
	return DateOrDateTime{Kind: KindDateOnly, Naive: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// NewLocal builds a floating date-time value.
func NewLocal(naive time.Time) DateOrDateTime {
	return DateOrDateTime{Kind: KindLocal, Naive: naive}
}

// NewUTC builds an absolute, zone-explicit date-time value.
func NewUTC(instant time.Time) DateOrDateTime {
	return DateOrDateTime{Kind: KindUTC, UTC: instant.UTC()}
}

// NewTZ builds a date-time value tied to a named VTIMEZONE.
func NewTZ(naive time.Time, tzid string) DateOrDateTime {
	return DateOrDateTime{Kind: KindTZ, Naive: naive, TZID: tzid}
}

// IsDateOnly reports whether this value carries no time-of-day component.
func (d DateOrDateTime) IsDateOnly() bool { return d.Kind == KindDateOnly }

// naiveValue returns the wall-clock representation the recurrence engine
// iterates over, regardless of kind: KindUTC values are treated as naive at
// a zero offset (the engine is always paired with an Offseter that knows
// how to turn this back into an absolute instant).
func (d DateOrDateTime) naiveValue() time.Time {
	if d.Kind == KindUTC {
		return time.Date(d.UTC.Year(), d.UTC.Month(), d.UTC.Day(), d.UTC.Hour(), d.UTC.Minute(), d.UTC.Second(), 0, time.UTC)
	}
	return d.Naive
}

// Equal compares two DateOrDateTime values for exact equality of kind and
// payload.
func (d DateOrDateTime) Equal(o DateOrDateTime) bool {
	if d.Kind != o.Kind {
		return false
	}
	switch d.Kind {
	case KindUTC:
		return d.UTC.Equal(o.UTC)
	case KindTZ:
		return d.TZID == o.TZID && d.Naive.Equal(o.Naive)
	default:
		return d.Naive.Equal(o.Naive)
	}
}

// SameShape reports whether two values use the same DateOrDateTime variant,
// the invariant the decoder enforces between e.g. DTSTART and DTEND.
func (d DateOrDateTime) SameShape(o DateOrDateTime) bool {
	if d.Kind != o.Kind {
		return false
	}
	return d.Kind != KindTZ || d.TZID == o.TZID
}

func (d DateOrDateTime) String() string {
	switch d.Kind {
	case KindDateOnly:
		return d.Naive.Format("20060102")
	case KindLocal:
		return d.Naive.Format("20060102T150405")
	case KindUTC:
		return d.UTC.Format("20060102T150405Z")
	case KindTZ:
		return fmt.Sprintf("TZID=%s:%s", d.TZID, d.Naive.Format("20060102T150405"))
	default:
		return "<invalid DateOrDateTime>"
	}
}

// Period is a (start, signed duration) pair, per RFC 5545's PERIOD value
// and DTSTART/DURATION or DTSTART/DTEND pairing.
type Period struct {
	Start    DateOrDateTime
	Duration time.Duration
}

// End returns the non-inclusive end of the period, in the same shape as
// Start (only meaningful for KindUTC/KindLocal/KindTZ; date-only periods
// carry whole-day durations).
func (p Period) End() time.Time {
	if p.Start.Kind == KindUTC {
		return p.Start.UTC.Add(p.Duration)
	}
	return p.Start.Naive.Add(p.Duration)
}

// parseISODuration parses "[-]P[nW][nD][T[nH][nM][nS]]" per RFC 5545
// section 3.3.6, matching the hand-rolled scanner style used throughout the
// corpus's Go ical implementations (no regexp needed: the grammar is a
// simple digit-run-then-letter state machine).
func parseISODuration(s string) (time.Duration, error) {
	orig := s
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if len(s) == 0 || s[0] != 'P' {
		return 0, decodeErr("duration "+orig+": expected 'P'", nil)
	}
	s = s[1:]

	var dur time.Duration
	inTime := false
	for len(s) > 0 {
		if s[0] == 'T' {
			inTime = true
			s = s[1:]
			continue
		}

		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == 0 {
			return 0, decodeErr("duration "+orig+": expected a digit", nil)
		}
		var n int64
		for _, c := range s[:i] {
			n = n*10 + int64(c-'0')
		}
		s = s[i:]
		if len(s) == 0 {
			return 0, decodeErr("duration "+orig+": missing unit letter", nil)
		}
		unit := s[0]
		s = s[1:]

		if !inTime {
			switch unit {
			case 'W':
				dur += time.Duration(n) * 7 * 24 * time.Hour
			case 'D':
				dur += time.Duration(n) * 24 * time.Hour
			default:
				return 0, decodeErr("duration "+orig+": expected 'D' or 'W'", nil)
			}
		} else {
			switch unit {
			case 'H':
				dur += time.Duration(n) * time.Hour
			case 'M':
				dur += time.Duration(n) * time.Minute
			case 'S':
				dur += time.Duration(n) * time.Second
			default:
				return 0, decodeErr("duration "+orig+": expected 'H', 'M' or 'S'", nil)
			}
		}
	}

	if neg {
		dur = -dur
	}
	return dur, nil
}

// formatISODuration renders a signed duration in canonical
// "[-]P[nW][nD][T[nH][nM][nS]]" form, used for the debug round-trip
// (section 6's round-trip requirement).
func formatISODuration(d time.Duration) string {
	neg := d < 0
	if neg {
		d = -d
	}

	totalSeconds := int64(d / time.Second)
	days := totalSeconds / 86400
	totalSeconds -= days * 86400
	hours := totalSeconds / 3600
	totalSeconds -= hours * 3600
	minutes := totalSeconds / 60
	seconds := totalSeconds - minutes*60

	out := ""
	if neg {
		out += "-"
	}
	out += "P"
	if days > 0 {
		out += fmt.Sprintf("%dD", days)
	}
	if hours > 0 || minutes > 0 || seconds > 0 {
		out += "T"
		if hours > 0 {
			out += fmt.Sprintf("%dH", hours)
		}
		if minutes > 0 {
			out += fmt.Sprintf("%dM", minutes)
		}
		if seconds > 0 {
			out += fmt.Sprintf("%dS", seconds)
		}
	}
	if out == "P" || (neg && out == "-P") {
		out += "T0S"
	}
	return out
}
