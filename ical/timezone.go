package ical

import (
	"sort"
	"time"
)

// Offseter translates between a naive wall-clock value and an absolute
// instant. DateOrDateTime values of KindTZ need one of these (their
// VTIMEZONE) to be resolved to an absolute time; KindUTC values use a zero
// fixed offset, and KindLocal and KindDateOnly values are iterated without
// one.
type Offseter interface {
	// ToInstance resolves a naive local value to the absolute instant it
	// denotes.
	ToInstance(naive time.Time) (time.Time, error)
	// FromInstance expresses an absolute instant as this zone's naive
	// local wall-clock value.
	FromInstance(instant time.Time) time.Time
}

// fixedOffset is the trivial Offseter: a single UTC offset with no
// daylight-saving transitions, used for TZOFFSETFROM/TZOFFSETTO-only zones
// and as a stand-in when no richer VTIMEZONE definition is available.
type fixedOffset struct {
	offset time.Duration
}

func NewFixedOffset(offset time.Duration) Offseter {
	return fixedOffset{offset: offset}
}

func (f fixedOffset) ToInstance(naive time.Time) (time.Time, error) {
	return naive.Add(-f.offset), nil
}

func (f fixedOffset) FromInstance(instant time.Time) time.Time {
	return instant.UTC().Add(f.offset)
}

// OffsetRule is one STANDARD or DAYLIGHT sub-component of a VTIMEZONE: the
// offset in effect from Start onward, optionally repeating per Recur.
type OffsetRule struct {
	OffsetFrom time.Duration
	OffsetTo   time.Duration
	Start      time.Time
	Recur      *RecurRule
	Name       string
	RDates     []time.Time
	EXDates    []time.Time
}

// VTimeZone is a full RFC 5545 VTIMEZONE: an alternating history of
// STANDARD and DAYLIGHT offset rules, each of which may recur indefinitely
// (e.g. "DST starts the second Sunday in March every year").
type VTimeZone struct {
	ID       string
	Standard []OffsetRule
	Daylight []OffsetRule
}

// sortedByStart returns a copy of rules ordered by Start, which getEffectiveOffset
// requires (it walks adjacent pairs to find the one bracketing date).
func sortedByStart(rules []OffsetRule) []OffsetRule {
	out := make([]OffsetRule, len(rules))
	copy(out, rules)
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (vtz *VTimeZone) ToInstance(naive time.Time) (time.Time, error) {
	offset, err := vtz.getOffset(naive, true)
	if err != nil {
		return time.Time{}, err
	}
	return naive.Add(-offset), nil
}

func (vtz *VTimeZone) FromInstance(instant time.Time) time.Time {
	utc := instant.UTC()
	offset, err := vtz.getOffset(utc, false)
	if err != nil {
		// A VTIMEZONE that resolved at construction time can only fail
		// here if asked about a date entirely outside both rule chains'
		// coverage; fall back to a zero offset rather than losing the
		// caller's instant.
		return utc
	}
	return utc.Add(offset)
}

// getOffset is VTimeZone's core algorithm: find the effective STANDARD and
// DAYLIGHT rule for date, then decide which of the two is actually in
// force by comparing how recently each one's recurrence last fired.
func (vtz *VTimeZone) getOffset(date time.Time, local bool) (time.Duration, error) {
	standard := sortedByStart(vtz.Standard)
	daylight := sortedByStart(vtz.Daylight)

	effStd, okStd := getEffectiveOffset(standard, date, local)
	effDay, okDay := getEffectiveOffset(daylight, date, local)

	switch {
	case okStd && okDay:
		lastStd := lastRecurrenceBefore(effStd, date, local)
		lastDay := lastRecurrenceBefore(effDay, date, local)
		if lastDay.Before(lastStd) {
			return effStd.OffsetTo, nil
		}
		return effDay.OffsetTo, nil
	case okStd:
		return effStd.OffsetTo, nil
	case okDay:
		return effDay.OffsetTo, nil
	default:
		return 0, zoneErr("no applicable STANDARD or DAYLIGHT rule for "+vtz.ID, nil)
	}
}

// getEffectiveOffset finds the rule in rules (sorted by Start) whose
// coverage window contains date: rules[i].Start <= date < rules[i+1].Start
// for all but the last, which covers everything from its Start onward. A
// rule whose recurrence has an explicit-UTC UNTIL that has already passed
// at date is skipped even though its static Start window would otherwise
// match; COUNT and floating UNTIL bounds are not checked here.
func getEffectiveOffset(rules []OffsetRule, date time.Time, local bool) (OffsetRule, bool) {
	for i := 0; i+1 < len(rules); i++ {
		from, upto := rules[i], rules[i+1]
		cmp := date
		if !local {
			cmp = date.Add(from.OffsetFrom)
		}
		if !from.Start.After(cmp) && cmp.Before(upto.Start) {
			if ruleExpiredBefore(from, cmp) {
				continue
			}
			return from, true
		}
	}

	if len(rules) == 0 {
		return OffsetRule{}, false
	}
	last := rules[len(rules)-1]
	cmp := date
	if !local {
		cmp = date.Add(last.OffsetFrom)
	}
	if !last.Start.After(cmp) {
		if ruleExpiredBefore(last, cmp) {
			return OffsetRule{}, false
		}
		return last, true
	}
	return OffsetRule{}, false
}

// ruleExpiredBefore reports whether rule's recurrence (if UNTIL-bounded)
// had already ended as of the naive local value cmp.
func ruleExpiredBefore(rule OffsetRule, cmp time.Time) bool {
	if rule.Recur == nil || rule.Recur.End.Kind != EndUntilUTC {
		return false
	}
	offsetTime := cmp.Add(-rule.OffsetFrom)
	return rule.Recur.End.UntilUTC.Before(offsetTime)
}

// lastRecurrenceBefore returns the most recent instant at or before date
// (shifted by rule.OffsetFrom when local is false) that rule's recurrence (including RDATE, excluding EXDATE) produces,
// falling back to rule.Start if the recurrence hasn't fired yet or rule
// doesn't recur at all.
func lastRecurrenceBefore(rule OffsetRule, date time.Time, local bool) time.Time {
	threshold := date
	if !local {
		threshold = date.Add(rule.OffsetFrom)
	}

	if rule.Recur == nil {
		return rule.Start
	}

	excluded := make(map[time.Time]bool, len(rule.EXDates))
	for _, ex := range rule.EXDates {
		excluded[ex] = true
	}

	last := rule.Start
	found := false

	it := NewRecurIter[civilInstant](rule.Recur, newCivilDateTime(rule.Start), NewFixedOffset(rule.OffsetFrom))
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		if v.t.After(threshold) {
			break
		}
		if excluded[v.t] {
			continue
		}
		last = v.t
		found = true
	}
	for _, rd := range rule.RDates {
		if !rd.After(threshold) && (!found || rd.After(last)) {
			last = rd
			found = true
		}
	}

	return last
}
