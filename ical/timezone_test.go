package ical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newYorkFixture is America/New_York across the 1987 and 2007 US DST rule
// changes: pre-2007 daylight ran from the first Sunday in April (bounded by
// the 2007 rule change's effective UNTIL) to the last Sunday in October,
// after which the Energy Policy Act of 2005 shifted it to the second Sunday
// in March through the first Sunday in November.
func newYorkFixture(t *testing.T) *VTimeZone {
	t.Helper()

	daylightOld, err := ParseRecurRule("FREQ=YEARLY;BYMONTH=4;BYDAY=1SU;UNTIL=20060402T070000Z")
	require.NoError(t, err)
	daylightNew, err := ParseRecurRule("FREQ=YEARLY;BYMONTH=3;BYDAY=2SU")
	require.NoError(t, err)
	standardOld, err := ParseRecurRule("FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU;UNTIL=20061029T060000Z")
	require.NoError(t, err)
	standardNew, err := ParseRecurRule("FREQ=YEARLY;BYMONTH=11;BYDAY=1SU")
	require.NoError(t, err)

	return &VTimeZone{
		ID: "America/New_York",
		Daylight: []OffsetRule{
			{
				OffsetFrom: -5 * time.Hour,
				OffsetTo:   -4 * time.Hour,
				Start:      time.Date(1987, 4, 5, 2, 0, 0, 0, time.UTC),
				Recur:      daylightOld,
				Name:       "EDT",
			},
			{
				OffsetFrom: -5 * time.Hour,
				OffsetTo:   -4 * time.Hour,
				Start:      time.Date(2007, 3, 11, 2, 0, 0, 0, time.UTC),
				Recur:      daylightNew,
				Name:       "EDT",
			},
		},
		Standard: []OffsetRule{
			{
				OffsetFrom: -4 * time.Hour,
				OffsetTo:   -5 * time.Hour,
				Start:      time.Date(1967, 10, 29, 2, 0, 0, 0, time.UTC),
				Recur:      standardOld,
				Name:       "EST",
			},
			{
				OffsetFrom: -4 * time.Hour,
				OffsetTo:   -5 * time.Hour,
				Start:      time.Date(2007, 11, 4, 2, 0, 0, 0, time.UTC),
				Recur:      standardNew,
				Name:       "EST",
			},
		},
	}
}

func TestVTimeZoneGetOffset(t *testing.T) {
	tz := newYorkFixture(t)

	for _, tc := range []struct {
		name string
		naive time.Time
		want  time.Duration
	}{
		{"fall, after DST ends", time.Date(1997, 11, 1, 0, 0, 0, 0, time.UTC), -5 * time.Hour},
		{"summer 1998", time.Date(1998, 7, 23, 0, 0, 0, 0, time.UTC), -4 * time.Hour},
		{"new year 1998", time.Date(1998, 1, 1, 0, 0, 0, 0, time.UTC), -5 * time.Hour},
		{"new year 2020", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), -5 * time.Hour},
		{"summer 2020", time.Date(2020, 7, 23, 0, 0, 0, 0, time.UTC), -4 * time.Hour},
	} {
		t.Run(tc.name, func(t *testing.T) {
			instant, err := tz.ToInstance(tc.naive)
			require.NoError(t, err)
			require.Equal(t, tc.naive.Add(-tc.want), instant)
		})
	}
}

func TestFixedOffsetRoundTrip(t *testing.T) {
	off := NewFixedOffset(2 * time.Hour)
	naive := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)

	instant, err := off.ToInstance(naive)
	require.NoError(t, err)
	require.Equal(t, naive.Add(-2*time.Hour), instant)
	require.Equal(t, naive, off.FromInstance(instant))
}

const zonedUntilCalendar = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//icalgo//test//EN
BEGIN:VTIMEZONE
TZID:US/Eastern
BEGIN:DAYLIGHT
DTSTART:20000404T020000
RRULE:FREQ=YEARLY;BYDAY=1SU;BYMONTH=4
TZNAME:EDT
TZOFFSETFROM:-0500
TZOFFSETTO:-0400
END:DAYLIGHT
BEGIN:STANDARD
DTSTART:20001026T020000
RRULE:FREQ=YEARLY;BYDAY=-1SU;BYMONTH=10
TZNAME:EST
TZOFFSETFROM:-0400
TZOFFSETTO:-0500
END:STANDARD
END:VTIMEZONE
BEGIN:VEVENT
UID:until-zoned@example.com
DTSTAMP:20080101T000000Z
DTSTART;TZID=US/Eastern:20080102T230000
DURATION:PT1H
RRULE:FREQ=DAILY;UNTIL=20080104T033000Z
SUMMARY:Nightly
END:VEVENT
END:VCALENDAR
`

// TestRecurUntilUTCResolvedAgainstEventZone exercises a TZID event whose
// RRULE carries an explicit-UTC UNTIL: 20080104T033000Z is 2008-01-03
// 22:30 local (EST, -5h), which falls strictly between the Jan 2 and Jan 3
// occurrences at 23:00 local, so only the Jan 2 occurrence should be
// emitted. Comparing the raw UTC digits against naive local occurrences
// (ignoring the zone offset) would incorrectly also emit Jan 3.
func TestRecurUntilUTCResolvedAgainstEventZone(t *testing.T) {
	roots, err := ParseString(zonedUntilCalendar)
	require.NoError(t, err)
	cal, err := BuildCalendar(roots[0])
	require.NoError(t, err)

	ev := cal.Events["until-zoned@example.com"].Base
	it, err := ev.IterInstants(cal)
	require.NoError(t, err)

	var got []time.Time
	for {
		when, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, when)
	}

	require.Equal(t, []time.Time{time.Date(2008, 1, 3, 4, 0, 0, 0, time.UTC)}, got)
}

func TestVTimeZoneNoApplicableRule(t *testing.T) {
	tz := &VTimeZone{ID: "Empty"}
	_, err := tz.ToInstance(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)

	var icalErr *Error
	require.ErrorAs(t, err, &icalErr)
	require.Equal(t, KindZone, icalErr.Kind)
}
