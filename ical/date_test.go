package ical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseISODuration(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want time.Duration
	}{
		{"PT1H", time.Hour},
		{"PT30M", 30 * time.Minute},
		{"P1D", 24 * time.Hour},
		{"P1DT12H", 36 * time.Hour},
		{"-PT1H", -time.Hour},
		{"+P1W", 7 * 24 * time.Hour},
		{"PT0S", 0},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseISODuration(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseISODurationErrors(t *testing.T) {
	for _, in := range []string{"", "1H", "PX", "PT1X", "P1HT"} {
		t.Run(in, func(t *testing.T) {
			_, err := parseISODuration(in)
			require.Error(t, err)
		})
	}
}

func TestFormatISODuration(t *testing.T) {
	for _, tc := range []struct {
		in   time.Duration
		want string
	}{
		{time.Hour, "PT1H"},
		{24 * time.Hour, "P1D"},
		{36 * time.Hour, "P1DT12H"},
		{-time.Hour, "-PT1H"},
		{0, "PT0S"},
	} {
		t.Run(tc.want, func(t *testing.T) {
			require.Equal(t, tc.want, formatISODuration(tc.in))
		})
	}
}

func TestDateOrDateTimeSameShape(t *testing.T) {
	utc := NewUTC(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	local := NewLocal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	tzA := NewTZ(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "US/Eastern")
	tzB := NewTZ(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "Europe/Paris")

	require.True(t, utc.SameShape(utc))
	require.False(t, utc.SameShape(local))
	require.False(t, tzA.SameShape(tzB))
	require.True(t, tzA.SameShape(tzA))
}

func TestDateOnlyRoundTrip(t *testing.T) {
	d := NewDateOnly(2020, time.February, 29)
	require.True(t, d.IsDateOnly())
	require.Equal(t, "20200229", d.String())
}
