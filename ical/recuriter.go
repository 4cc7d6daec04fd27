package ical

import (
	"sort"
	"time"
)

// Expandable is the constraint the recurrence engine iterates over. Go has
// no higher-kinded types, so rather than writing the BY* expansion logic
// once per datelike shape (a plain date/time, and a period anchored at
// one), it is written once against this interface and civilInstant and
// periodInstant each implement it by delegating to (or wrapping) the same
// expandDates/expandTimes pass from recur_expand.go.
type Expandable[T any] interface {
	// expandDateSet applies r's BYxxx rule parts to a single anchor value,
	// producing every candidate the anchor stands for within one FREQ
	// period (e.g. everything BYDAY picks out of the anchor's month).
	expandDateSet(r *RecurRule) []T

	// advance steps the anchor to the start of the next FREQ period,
	// interval periods ahead.
	advance(freq Frequency, interval int) T

	// asNaive returns the wall-clock value used for UNTIL comparison and
	// chronological ordering.
	asNaive() time.Time

	equal(other T) bool
}

func (c civilInstant) expandDateSet(r *RecurRule) []civilInstant {
	out := expandDates(r, []civilInstant{c})
	out = expandTimes(r, out)
	return out
}

func (c civilInstant) advance(freq Frequency, interval int) civilInstant {
	return civilInstant{t: advanceAnchor(c.t, freq, interval), dateOnly: c.dateOnly}
}

func (c civilInstant) asNaive() time.Time { return c.t }

func (c civilInstant) equal(o civilInstant) bool {
	return c.t.Equal(o.t) && c.dateOnly == o.dateOnly
}

// advanceAnchor steps t to the start of the next FREQ period. For
// Monthly/Yearly the day is pinned to 1 before stepping months/years, which
// sidesteps time.Time.AddDate's end-of-month rollover (e.g. Jan 31 + 1
// month silently becoming Mar 3): the real day of month is restored
// afterwards by BYMONTHDAY/BYDAY expansion, which NewRecurIter seeds with a
// default drawn from the rule's start value when the rule itself doesn't
// specify one.
func advanceAnchor(t time.Time, freq Frequency, interval int) time.Time {
	switch freq {
	case Secondly:
		return t.Add(time.Duration(interval) * time.Second)
	case Minutely:
		return t.Add(time.Duration(interval) * time.Minute)
	case Hourly:
		return t.Add(time.Duration(interval) * time.Hour)
	case Daily:
		return t.AddDate(0, 0, interval)
	case Weekly:
		return t.AddDate(0, 0, 7*interval)
	case Monthly:
		first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
		return first.AddDate(0, interval, 0)
	case Yearly:
		first := time.Date(t.Year(), 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
		return first.AddDate(interval, 0, 0)
	default:
		return t
	}
}

// periodInstant is the second Expandable shape: a Period (start plus a
// signed duration) whose start recurs per the usual BY* rules, carrying its
// duration along for every generated occurrence.
type periodInstant struct {
	anchor   civilInstant
	duration time.Duration
}

func (p periodInstant) expandDateSet(r *RecurRule) []periodInstant {
	starts := p.anchor.expandDateSet(r)
	out := make([]periodInstant, len(starts))
	for i, s := range starts {
		out[i] = periodInstant{anchor: s, duration: p.duration}
	}
	return out
}

func (p periodInstant) advance(freq Frequency, interval int) periodInstant {
	return periodInstant{anchor: p.anchor.advance(freq, interval), duration: p.duration}
}

func (p periodInstant) asNaive() time.Time { return p.anchor.asNaive() }

func (p periodInstant) equal(o periodInstant) bool {
	return p.anchor.equal(o.anchor) && p.duration == o.duration
}

// RecurIter walks a RecurRule lazily from a starting anchor, one occurrence
// at a time, per section 4.4's pull model: it never materializes an
// unbounded sequence, and consumers in turn control how far it runs by how
// many times they call Next.
type RecurIter[T Expandable[T]] struct {
	rule   *RecurRule
	anchor T

	queue []T

	emitted     uint64
	lastEmitted *T
	done        bool

	emptyRounds int
}

const maxEmptyRounds = 10_000

// NewRecurIter builds an iterator over rule starting at start, resolved
// against offseter (nil for floating rules, which compare UNTIL at face
// value). If rule leaves both BYMONTHDAY and BYDAY unspecified (for
// MONTHLY), or all of BYWEEKNO/BYYEARDAY/BYMONTHDAY/BYDAY unspecified (for
// YEARLY), a copy of rule is seeded with BYMONTHDAY set to start's day
// (and, for YEARLY without BYMONTH, BYMONTH set to start's month), per RFC
// 5545 section 3.3.10's "if not specified, the day (or month) of DTSTART"
// rule -- this is what lets advanceAnchor safely canonicalize the stepped
// anchor to day 1 without losing the original day of month.
func NewRecurIter[T Expandable[T]](rule *RecurRule, start T, offseter Offseter) *RecurIter[T] {
	rule = withImpliedDefaults(rule, start.asNaive())
	rule = resolveUntilOffset(rule, offseter)
	return &RecurIter[T]{rule: rule, anchor: start}
}

// resolveUntilOffset converts an UNTIL=...Z terminator to the naive local
// frame the recurrence engine emits in: per the "UntilUtc(instant): convert
// to naive local time using the iteration's offset provider, then Until
// applies" rule, comparing the raw UTC digits directly against naive local
// occurrences would terminate a zoned recurrence off by the zone's offset.
func resolveUntilOffset(rule *RecurRule, offseter Offseter) *RecurRule {
	if rule.End.Kind != EndUntilUTC || offseter == nil {
		return rule
	}
	r := *rule
	r.End = EndCondition{Kind: EndUntil, Until: offseter.FromInstance(rule.End.UntilUTC)}
	return &r
}

func withImpliedDefaults(rule *RecurRule, start time.Time) *RecurRule {
	r := *rule

	switch r.Freq {
	case Monthly:
		if len(r.ByMonthDay) == 0 && len(r.ByDay) == 0 {
			r.ByMonthDay = []int{start.Day()}
		}
	case Yearly:
		if len(r.ByWeekNo) == 0 && len(r.ByYearDay) == 0 &&
			len(r.ByMonthDay) == 0 && len(r.ByDay) == 0 {
			if len(r.ByMonth) == 0 {
				r.ByMonth = []int{int(start.Month())}
			}
			r.ByMonthDay = []int{start.Day()}
		}
	}

	return &r
}

// Next returns the next occurrence, or (zero, false) once the rule's
// COUNT/UNTIL terminator is reached.
func (it *RecurIter[T]) Next() (T, bool) {
	var zero T
	if it.done {
		return zero, false
	}

	for {
		if len(it.queue) == 0 {
			if !it.fillQueue() {
				it.done = true
				return zero, false
			}
			continue
		}

		next := it.queue[0]
		it.queue = it.queue[1:]

		if until, ok := it.rule.End.untilNaive(); ok && next.asNaive().After(until) {
			it.done = true
			return zero, false
		}

		if it.lastEmitted != nil && next.equal(*it.lastEmitted) {
			continue
		}

		v := next
		it.lastEmitted = &v
		it.emitted++

		if it.rule.End.Kind == EndCount && it.emitted > it.rule.End.Count {
			it.done = true
			return zero, false
		}

		return next, true
	}
}

// fillQueue expands the current anchor into the next batch of candidates,
// applies BYSETPOS and chronological ordering, and advances the anchor past
// it. It reports false once COUNT is used up, once the anchor has passed
// UNTIL after an empty expansion, or after maxEmptyRounds consecutive empty
// expansions (a combination of BY* rules that matches nothing; guarded
// rather than looping forever).
func (it *RecurIter[T]) fillQueue() bool {
	if it.rule.End.Kind == EndCount && it.emitted >= it.rule.End.Count {
		return false
	}

	for {
		dateSet := it.anchor.expandDateSet(it.rule)
		sortByNaive(dateSet)
		if len(it.rule.BySetPos) > 0 {
			dateSet = applyBySetPos(dateSet, it.rule.BySetPos)
		}
		sortByNaive(dateSet)

		it.anchor = it.anchor.advance(it.rule.Freq, it.rule.Interval)

		if len(dateSet) > 0 {
			it.queue = dateSet
			it.emptyRounds = 0
			return true
		}

		it.emptyRounds++
		if it.emptyRounds > maxEmptyRounds {
			return false
		}

		if until, ok := it.rule.End.untilNaive(); ok && it.anchor.asNaive().After(until) {
			return false
		}
	}
}

func sortByNaive[T Expandable[T]](dateSet []T) {
	sort.Slice(dateSet, func(i, j int) bool {
		return dateSet[i].asNaive().Before(dateSet[j].asNaive())
	})
}

// untilNaive returns the naive wall-clock terminator time for either form
// of UNTIL, treating an explicit-UTC UNTIL as directly comparable to the
// recurrence engine's naive value space (DateOrDateTime.naiveValue does the
// same for KindUTC: the UTC wall clock digits, not an offset-adjusted one).
func (e EndCondition) untilNaive() (time.Time, bool) {
	switch e.Kind {
	case EndUntil:
		return e.Until, true
	case EndUntilUTC:
		return e.UntilUTC, true
	default:
		return time.Time{}, false
	}
}
