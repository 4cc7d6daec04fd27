package ical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventCollectionIterInstancesOverrideMerge(t *testing.T) {
	roots, err := ParseString(recurCalendar)
	require.NoError(t, err)

	cal, err := BuildCalendar(roots[0])
	require.NoError(t, err)

	coll := cal.Events["1@example.com"]
	it, err := coll.IterInstances(cal)
	require.NoError(t, err)

	var summaries []string
	var whens []time.Time
	for {
		when, ev, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		summaries = append(summaries, ev.Summary)
		whens = append(whens, when)
	}

	require.Equal(t, []string{"Test", "Test Edit", "Test"}, summaries)
	require.Len(t, whens, 3)
	require.True(t, whens[0].Before(whens[1]))
	require.True(t, whens[1].Before(whens[2]))
}

const nonRecurringCalendar = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//icalgo//test//EN
BEGIN:VEVENT
UID:solo@example.com
DTSTAMP:20060206T001102Z
DTSTART:20060102T100000Z
DURATION:PT1H
SUMMARY:Solo
END:VEVENT
END:VCALENDAR
`

const unboundedCalendar = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//icalgo//test//EN
BEGIN:VEVENT
UID:forever@example.com
DTSTAMP:20060206T001102Z
DTSTART:20060102T100000Z
DURATION:PT1H
RRULE:FREQ=DAILY
SUMMARY:Forever
END:VEVENT
END:VCALENDAR
`

// TestEventCollectionIterInstancesUnbounded pulls a handful of instances
// from a COUNT-less, UNTIL-less RRULE through EventCollection.IterInstances
// and never asks for more than that: a non-lazy implementation that walks
// the base recurrence to completion before returning anything would hang
// here.
func TestEventCollectionIterInstancesUnbounded(t *testing.T) {
	roots, err := ParseString(unboundedCalendar)
	require.NoError(t, err)
	cal, err := BuildCalendar(roots[0])
	require.NoError(t, err)

	coll := cal.Events["forever@example.com"]
	it, err := coll.IterInstances(cal)
	require.NoError(t, err)

	var whens []time.Time
	for i := 0; i < 5; i++ {
		when, ev, ok, err := it.Next()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "Forever", ev.Summary)
		whens = append(whens, when)
	}

	for i := 1; i < len(whens); i++ {
		require.True(t, whens[i-1].Before(whens[i]))
	}
}

const periodCalendar = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//icalgo//test//EN
BEGIN:VEVENT
UID:shift@example.com
DTSTAMP:20060206T001102Z
DTSTART:20060102T090000Z
DURATION:PT8H
RRULE:FREQ=DAILY;COUNT=3
SUMMARY:Shift
END:VEVENT
END:VCALENDAR
`

func TestEventIterPeriods(t *testing.T) {
	roots, err := ParseString(periodCalendar)
	require.NoError(t, err)
	cal, err := BuildCalendar(roots[0])
	require.NoError(t, err)

	ev := cal.Events["shift@example.com"].Base
	it, err := ev.IterPeriods(cal)
	require.NoError(t, err)

	var starts []time.Time
	for {
		start, dur, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		require.Equal(t, 8*time.Hour, dur)
		starts = append(starts, start)
	}

	require.Len(t, starts, 3)
	require.Equal(t, time.Date(2006, 1, 2, 9, 0, 0, 0, time.UTC), starts[0])
	require.Equal(t, time.Date(2006, 1, 4, 9, 0, 0, 0, time.UTC), starts[2])
}

func TestEventIterPeriodsRequiresDuration(t *testing.T) {
	roots, err := ParseString(nonRecurringCalendar)
	require.NoError(t, err)
	cal, err := BuildCalendar(roots[0])
	require.NoError(t, err)

	ev := cal.Events["solo@example.com"].Base
	ev.Timings.HasDuration = false
	_, err = ev.IterPeriods(cal)
	require.Error(t, err)
}

func TestEventIterInstantsNonRecurring(t *testing.T) {
	roots, err := ParseString(nonRecurringCalendar)
	require.NoError(t, err)
	cal, err := BuildCalendar(roots[0])
	require.NoError(t, err)

	ev := cal.Events["solo@example.com"].Base
	it, err := ev.IterInstants(cal)
	require.NoError(t, err)

	_, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = it.Next()
	require.NoError(t, err)
	require.False(t, ok)
}
