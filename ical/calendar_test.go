package ical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const recurCalendar = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//icalgo//test//EN
BEGIN:VEVENT
UID:1@example.com
DTSTAMP:20060206T001102Z
DTSTART:20060102T100000Z
DURATION:PT1H
RRULE:FREQ=DAILY;COUNT=3
SUMMARY:Test
END:VEVENT
BEGIN:VEVENT
UID:1@example.com
DTSTAMP:20060206T001102Z
DTSTART:20060103T140000Z
DURATION:PT1H
RECURRENCE-ID:20060103T100000Z
SUMMARY:Test Edit
END:VEVENT
END:VCALENDAR
`

func TestBuildCalendarBasic(t *testing.T) {
	roots, err := ParseString(recurCalendar)
	require.NoError(t, err)

	cal, err := BuildCalendar(roots[0])
	require.NoError(t, err)
	require.Equal(t, "-//icalgo//test//EN", cal.ProdID)
	require.Equal(t, "2.0", cal.Version)
	require.Len(t, cal.Events, 1)

	coll := cal.Events["1@example.com"]
	require.NotNil(t, coll)
	require.Equal(t, "Test", coll.Base.Summary)
	require.Len(t, coll.Overrides(), 1)
}

func TestBuildCalendarMissingProdID(t *testing.T) {
	roots, err := ParseString("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n")
	require.NoError(t, err)
	_, err = BuildCalendar(roots[0])
	require.Error(t, err)
}

func TestBuildCalendarWrongRoot(t *testing.T) {
	roots, err := ParseString("BEGIN:VEVENT\r\nUID:1@example.com\r\nDTSTAMP:20060206T001102Z\r\nEND:VEVENT\r\n")
	require.NoError(t, err)
	_, err = BuildCalendar(roots[0])
	require.Error(t, err)
}

const partiallyMalformedCalendar = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//icalgo//test//EN
BEGIN:VEVENT
UID:good@example.com
DTSTAMP:20060206T001102Z
DTSTART:20060102T100000Z
DURATION:PT1H
SUMMARY:Good Event
END:VEVENT
BEGIN:VEVENT
UID:bad@example.com
DTSTART:20060102T100000Z
DURATION:PT1H
SUMMARY:Missing DTSTAMP
END:VEVENT
END:VCALENDAR
`

// TestBuildCalendarPartialFailureCollectsMultiError confirms that one
// malformed VEVENT (missing the required DTSTAMP) doesn't discard the rest
// of the calendar: BuildCalendar still assembles the well-formed event and
// reports the failure via a MultiError.
func TestBuildCalendarPartialFailureCollectsMultiError(t *testing.T) {
	roots, err := ParseString(partiallyMalformedCalendar)
	require.NoError(t, err)

	cal, err := BuildCalendar(roots[0])
	require.Error(t, err)

	var multiErr *MultiError
	require.ErrorAs(t, err, &multiErr)
	require.Len(t, multiErr.Errors, 1)

	require.Len(t, cal.Events, 1)
	require.NotNil(t, cal.Events["good@example.com"])
	require.Equal(t, "Good Event", cal.Events["good@example.com"].Base.Summary)
}

func TestVCalendarGetAbsolute(t *testing.T) {
	cal := &VCalendar{Other: make(map[string]*Property), Events: make(map[string]*EventCollection)}
	utc := NewUTC(time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC))
	got, err := cal.GetAbsolute(utc)
	require.NoError(t, err)
	require.Equal(t, utc.UTC, got)

	_, err = cal.GetAbsolute(NewLocal(time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)))
	require.Error(t, err)

	_, err = cal.GetAbsolute(NewTZ(time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC), "Nowhere"))
	require.Error(t, err)
}
