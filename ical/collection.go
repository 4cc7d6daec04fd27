package ical

import (
	"sort"
	"time"
)

// peekableRecur wraps a RecurIter so a merge step can compare its next
// value against another source without consuming it first. Generic over
// Expandable so the same merge logic drives both InstantIter (civilInstant)
// and PeriodIter (periodInstant).
type peekableRecur[T Expandable[T]] struct {
	it   *RecurIter[T]
	cur  T
	done bool
}

func newPeekableRecur[T Expandable[T]](it *RecurIter[T]) *peekableRecur[T] {
	p := &peekableRecur[T]{it: it}
	p.advance()
	return p
}

func (p *peekableRecur[T]) advance() {
	if p.it == nil {
		p.done = true
		return
	}
	v, ok := p.it.Next()
	if !ok {
		p.done = true
		return
	}
	p.cur = v
}

// InstantIter lazily produces the absolute instants of a single event: the
// RRULE-driven recurrence (if any) merged with RDATE, minus EXDATE, with
// consecutive duplicates collapsed. When an event has no RRULE, DTSTART is
// carried as one more entry of the "extra dates" (RDATE) list so the same merge
// logic produces the required single occurrence.
type InstantIter struct {
	recur     *peekableRecur[civilInstant]
	extra     []civilInstant
	extraIdx  int
	exdates   map[time.Time]bool
	offseter  Offseter
	lastNaive *time.Time
	err       error
}

// newInstantIter builds the merged source for ev, resolved against
// calendar zones via offseter (nil for floating events, which iterate in
// naive time untranslated).
func newInstantIter(ev *Event, offseter Offseter) (*InstantIter, error) {
	t := ev.Timings
	if t == nil {
		return nil, schemaErr("event "+ev.UID+" has no DTSTART to iterate", nil)
	}

	it := &InstantIter{offseter: offseter, exdates: make(map[time.Time]bool, len(t.EXDates))}
	for _, ex := range t.EXDates {
		it.exdates[ex.naiveValue()] = true
	}

	extra := make([]civilInstant, 0, len(t.RDates)+1)
	for _, rd := range t.RDates {
		extra = append(extra, newCivilInstant(rd))
	}

	if ev.Recur != nil {
		it.recur = newPeekableRecur(NewRecurIter[civilInstant](ev.Recur, newCivilInstant(t.Start), offseter))
	} else {
		extra = append(extra, newCivilInstant(t.Start))
	}

	sort.Slice(extra, func(i, j int) bool { return extra[i].t.Before(extra[j].t) })
	it.extra = extra

	return it, nil
}

func newCivilInstant(d DateOrDateTime) civilInstant {
	return civilInstant{t: d.naiveValue(), dateOnly: d.IsDateOnly()}
}

// Next returns the next absolute instant, or (zero, false, nil) once the
// merged source is exhausted.
func (it *InstantIter) Next() (time.Time, bool, error) {
	_, instant, ok, err := it.nextPair()
	return instant, ok, err
}

// nextPair returns both the naive wall-clock value and its resolved
// absolute instant, so callers that need to key off the naive recurrence
// offset (override matching) don't have to undo a zone conversion.
func (it *InstantIter) nextPair() (time.Time, time.Time, bool, error) {
	for {
		haveRecur := it.recur != nil && !it.recur.done
		haveExtra := it.extraIdx < len(it.extra)

		var cand civilInstant
		fromRecur := false
		switch {
		case haveRecur && haveExtra:
			if !it.recur.cur.t.After(it.extra[it.extraIdx].t) {
				cand, fromRecur = it.recur.cur, true
			} else {
				cand = it.extra[it.extraIdx]
			}
		case haveRecur:
			cand, fromRecur = it.recur.cur, true
		case haveExtra:
			cand = it.extra[it.extraIdx]
		default:
			return time.Time{}, time.Time{}, false, nil
		}

		if fromRecur {
			it.recur.advance()
		} else {
			it.extraIdx++
		}

		if it.exdates[cand.t] {
			continue
		}
		if it.lastNaive != nil && it.lastNaive.Equal(cand.t) {
			continue
		}
		naive := cand.t
		it.lastNaive = &naive

		if it.offseter == nil {
			return naive, naive, true, nil
		}
		instant, err := it.offseter.ToInstance(naive)
		if err != nil {
			return time.Time{}, time.Time{}, false, err
		}
		return naive, instant, true, nil
	}
}

// IterInstants returns a lazy iterator of this event's occurrences as
// absolute instants, resolving any TZID against calendar's zone list.
func (ev *Event) IterInstants(calendar *VCalendar) (*InstantIter, error) {
	offseter, err := ev.offseter(calendar)
	if err != nil {
		return nil, err
	}
	return newInstantIter(ev, offseter)
}

// offseter resolves the Offseter capability implied by this event's
// DTSTART shape: nil for floating (naive output), a fixed zero offset for
// UTC, or the named VTIMEZONE.
func (ev *Event) offseter(calendar *VCalendar) (Offseter, error) {
	if ev.Timings == nil {
		return nil, schemaErr("event "+ev.UID+" has no DTSTART", nil)
	}
	switch ev.Timings.Start.Kind {
	case KindLocal, KindDateOnly:
		return nil, nil
	case KindUTC:
		return NewFixedOffset(0), nil
	case KindTZ:
		tz := calendar.findTimezone(ev.Timings.Start.TZID)
		if tz == nil {
			return nil, zoneErr("referenced timezone "+ev.Timings.Start.TZID+" not found in calendar", nil)
		}
		return tz, nil
	default:
		return nil, schemaErr("invalid DateOrDateTime kind", nil)
	}
}

// EventCollection groups every VEVENT sharing a UID: one base event plus a
// map from the base's recurrence offset to the override event replacing
// that instance.
type EventCollection struct {
	Base      *Event
	overrides map[time.Duration]*Event
}

func newEventCollection(events []*Event) (*EventCollection, error) {
	var base *Event

	uid := ""
	if len(events) > 0 {
		uid = events[0].UID
	}

	for _, ev := range events {
		if !ev.IsRecurrenceInstance {
			base = ev
		}
	}

	if base == nil {
		return nil, schemaErr("event collection "+uid+" has no base event", nil)
	}

	// The override key is the signed offset from base.DTSTART, per the
	// spec's recurrence-id normalization: override lookup during merged
	// iteration never needs to re-walk time zones.
	normalized := make(map[time.Duration]*Event)
	for _, ev := range events {
		if !ev.IsRecurrenceInstance {
			continue
		}
		if base.Timings == nil {
			return nil, schemaErr("event collection "+uid+" base has no DTSTART", nil)
		}
		if !base.Timings.Start.SameShape(ev.recurrenceID) {
			return nil, schemaErr("override in "+uid+" has a RECURRENCE-ID shape mismatching the base DTSTART", nil)
		}
		offset := ev.recurrenceID.naiveValue().Sub(base.Timings.Start.naiveValue())
		ev.RecurrenceOffset = offset
		normalized[offset] = ev
	}

	return &EventCollection{Base: base, overrides: normalized}, nil
}

// Overrides returns the recurrence-id overrides held by this collection,
// keyed by their signed offset from the base event's DTSTART.
func (c *EventCollection) Overrides() map[time.Duration]*Event {
	return c.overrides
}

// overrideInstance is a precomputed (instant, override event) pair: each
// override carries its own DTSTART, so its own occurrence is known up
// front without touching the (possibly unbounded) base recurrence.
type overrideInstance struct {
	when  time.Time
	event *Event
}

// InstanceIter lazily produces this collection's merged (instant, event)
// pairs, one pull at a time, per Next call: the base event's InstantIter
// drives the sequence and never runs ahead of what's been pulled, so an
// unbounded base RRULE (no COUNT/UNTIL) iterates safely. The only eager
// work is resolving each override's own occurrence once up front, which is
// bounded by the number of RECURRENCE-ID overrides in the file, never by
// the length of the base recurrence.
type InstanceIter struct {
	base      *InstantIter
	baseEvent *Event
	overrides map[time.Duration]*Event
	baseStart time.Time

	overrideQueue []overrideInstance
	oi            int

	baseNaive  time.Time
	baseWhen   time.Time
	baseOK     bool
	baseLoaded bool
}

// IterInstances returns a lazy iterator over c's merged recurrence: base
// occurrences with a live override are replaced by that override's own
// occurrence, in ascending instant order with base preceding override on a
// tie.
func (c *EventCollection) IterInstances(calendar *VCalendar) (*InstanceIter, error) {
	offseter, err := c.Base.offseter(calendar)
	if err != nil {
		return nil, err
	}
	base, err := newInstantIter(c.Base, offseter)
	if err != nil {
		return nil, err
	}

	var overrideQueue []overrideInstance
	for _, ev := range c.overrides {
		overrideIt, err := ev.IterInstants(calendar)
		if err != nil {
			return nil, err
		}
		when, ok, err := overrideIt.Next()
		if err != nil {
			return nil, err
		}
		if ok {
			overrideQueue = append(overrideQueue, overrideInstance{when: when, event: ev})
		}
	}
	sort.Slice(overrideQueue, func(i, j int) bool { return overrideQueue[i].when.Before(overrideQueue[j].when) })

	return &InstanceIter{
		base:          base,
		baseEvent:     c.Base,
		overrides:     c.overrides,
		baseStart:     c.Base.Timings.Start.naiveValue(),
		overrideQueue: overrideQueue,
	}, nil
}

// fillBase pulls the next non-overridden base occurrence, skipping any
// naive offset that has a live override (its replacement is already queued
// in overrideQueue).
func (it *InstanceIter) fillBase() error {
	if it.baseLoaded {
		return nil
	}
	for {
		naive, when, ok, err := it.base.nextPair()
		if err != nil {
			return err
		}
		if !ok {
			it.baseOK = false
			it.baseLoaded = true
			return nil
		}
		offset := naive.Sub(it.baseStart)
		if _, isOverride := it.overrides[offset]; isOverride {
			continue
		}
		it.baseNaive, it.baseWhen, it.baseOK = naive, when, true
		it.baseLoaded = true
		return nil
	}
}

// Next returns the next (instant, event) pair, or (zero, nil, false, nil)
// once both the base recurrence and the override queue are exhausted.
func (it *InstanceIter) Next() (time.Time, *Event, bool, error) {
	if err := it.fillBase(); err != nil {
		return time.Time{}, nil, false, err
	}

	haveOverride := it.oi < len(it.overrideQueue)

	switch {
	case it.baseOK && haveOverride:
		if !it.overrideQueue[it.oi].when.Before(it.baseWhen) {
			when, ev := it.baseWhen, it.baseEvent
			it.baseLoaded = false
			return when, ev, true, nil
		}
		ov := it.overrideQueue[it.oi]
		it.oi++
		return ov.when, ov.event, true, nil

	case it.baseOK:
		when, ev := it.baseWhen, it.baseEvent
		it.baseLoaded = false
		return when, ev, true, nil

	case haveOverride:
		ov := it.overrideQueue[it.oi]
		it.oi++
		return ov.when, ov.event, true, nil

	default:
		return time.Time{}, nil, false, nil
	}
}

// PeriodIter lazily produces an event's occurrences as (absolute start,
// duration) periods: the RRULE-driven recurrence over periodInstant merged
// with explicit RDATE;VALUE=PERIOD entries, minus EXDATE applied to each
// occurrence's start. Mirrors InstantIter one level up the Expandable
// hierarchy.
type PeriodIter struct {
	recur     *peekableRecur[periodInstant]
	extra     []periodInstant
	extraIdx  int
	exdates   map[time.Time]bool
	offseter  Offseter
	lastNaive *time.Time
}

func newPeriodIter(ev *Event, offseter Offseter) (*PeriodIter, error) {
	t := ev.Timings
	if t == nil {
		return nil, schemaErr("event "+ev.UID+" has no DTSTART to iterate", nil)
	}
	if !t.HasDuration {
		return nil, schemaErr("event "+ev.UID+" has no DTEND/DURATION, so it has no periods to iterate", nil)
	}

	it := &PeriodIter{offseter: offseter, exdates: make(map[time.Time]bool, len(t.EXDates))}
	for _, ex := range t.EXDates {
		it.exdates[ex.naiveValue()] = true
	}

	extra := make([]periodInstant, 0, len(t.RPeriods)+1)
	for _, rp := range t.RPeriods {
		extra = append(extra, periodInstant{anchor: newCivilInstant(rp.Start), duration: rp.Duration})
	}

	anchor := periodInstant{anchor: newCivilInstant(t.Start), duration: t.Duration}
	if ev.Recur != nil {
		it.recur = newPeekableRecur[periodInstant](NewRecurIter[periodInstant](ev.Recur, anchor, offseter))
	} else {
		extra = append(extra, anchor)
	}

	sort.Slice(extra, func(i, j int) bool { return extra[i].anchor.t.Before(extra[j].anchor.t) })
	it.extra = extra

	return it, nil
}

// Next returns the next period as its absolute start instant and duration,
// or (zero, zero, false, nil) once the merged source is exhausted.
func (it *PeriodIter) Next() (time.Time, time.Duration, bool, error) {
	for {
		haveRecur := it.recur != nil && !it.recur.done
		haveExtra := it.extraIdx < len(it.extra)

		var cand periodInstant
		fromRecur := false
		switch {
		case haveRecur && haveExtra:
			if !it.recur.cur.anchor.t.After(it.extra[it.extraIdx].anchor.t) {
				cand, fromRecur = it.recur.cur, true
			} else {
				cand = it.extra[it.extraIdx]
			}
		case haveRecur:
			cand, fromRecur = it.recur.cur, true
		case haveExtra:
			cand = it.extra[it.extraIdx]
		default:
			return time.Time{}, 0, false, nil
		}

		if fromRecur {
			it.recur.advance()
		} else {
			it.extraIdx++
		}

		if it.exdates[cand.anchor.t] {
			continue
		}
		if it.lastNaive != nil && it.lastNaive.Equal(cand.anchor.t) {
			continue
		}
		naive := cand.anchor.t
		it.lastNaive = &naive

		if it.offseter == nil {
			return naive, cand.duration, true, nil
		}
		instant, err := it.offseter.ToInstance(naive)
		if err != nil {
			return time.Time{}, 0, false, err
		}
		return instant, cand.duration, true, nil
	}
}

// IterPeriods returns a lazy iterator of this event's occurrences as
// (absolute start, duration) periods, resolving any TZID against
// calendar's zone list. The event must carry a DTEND or DURATION.
func (ev *Event) IterPeriods(calendar *VCalendar) (*PeriodIter, error) {
	offseter, err := ev.offseter(calendar)
	if err != nil {
		return nil, err
	}
	return newPeriodIter(ev, offseter)
}
