package ical

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func decodeValue(t *testing.T, name, value string, params Params) *Property {
	t.Helper()
	if params == nil {
		params = make(Params)
	}
	prop, err := DecodeProperty(&Prop{Name: name, Value: value, Params: params})
	require.NoError(t, err)
	return prop
}

func TestDecodePropertyDateShapes(t *testing.T) {
	t.Run("date only", func(t *testing.T) {
		p := decodeValue(t, "DTSTART", "20060102", nil)
		require.Equal(t, PropDTStart, p.Kind)
		require.True(t, p.Date.IsDateOnly())
	})

	t.Run("UTC date-time", func(t *testing.T) {
		p := decodeValue(t, "DTSTART", "20060102T150405Z", nil)
		require.Equal(t, KindUTC, p.Date.Kind)
		require.Equal(t, time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC), p.Date.UTC)
	})

	t.Run("floating date-time", func(t *testing.T) {
		p := decodeValue(t, "DTSTART", "20060102T150405", nil)
		require.Equal(t, KindLocal, p.Date.Kind)
	})

	t.Run("TZID date-time", func(t *testing.T) {
		params := Params{"TZID": {"US/Eastern"}}
		p := decodeValue(t, "DTSTART", "20060102T150405", params)
		require.Equal(t, KindTZ, p.Date.Kind)
		require.Equal(t, "US/Eastern", p.Date.TZID)
	})
}

func TestDecodePropertyDTStampRequiresUTC(t *testing.T) {
	_, err := DecodeProperty(&Prop{Name: "DTSTAMP", Value: "20060102T150405", Params: make(Params)})
	require.Error(t, err)
}

func TestDecodePropertyRRule(t *testing.T) {
	p := decodeValue(t, "RRULE", "FREQ=DAILY;COUNT=5", nil)
	require.Equal(t, PropRRule, p.Kind)
	require.Equal(t, Daily, p.Recur.Freq)
}

func TestDecodePropertyDuration(t *testing.T) {
	p := decodeValue(t, "DURATION", "PT1H30M", nil)
	require.Equal(t, PropDuration, p.Kind)
	require.Equal(t, 90*time.Minute, p.Duration)
}

func TestDecodePropertyTZOffset(t *testing.T) {
	from := decodeValue(t, "TZOFFSETFROM", "-0500", nil)
	require.Equal(t, PropTZOffsetFrom, from.Kind)
	require.Equal(t, -5*time.Hour, from.Duration)

	to := decodeValue(t, "TZOFFSETTO", "+0930", nil)
	require.Equal(t, PropTZOffsetTo, to.Kind)
	require.Equal(t, 9*time.Hour+30*time.Minute, to.Duration)
}

func TestDecodePropertyTextEscapes(t *testing.T) {
	p := decodeValue(t, "SUMMARY", `Line1\nLine2\, with a comma\; and semicolon`, nil)
	require.Equal(t, "Line1\nLine2, with a comma; and semicolon", p.Text)
}

func TestDecodePropertyTextEscapeError(t *testing.T) {
	_, err := DecodeProperty(&Prop{Name: "SUMMARY", Value: `bad\qescape`, Params: make(Params)})
	require.Error(t, err)
}

func TestDecodePropertyListText(t *testing.T) {
	p := decodeValue(t, "CATEGORIES", `Work,Personal\,Home`, nil)
	require.Equal(t, []string{"Work", "Personal,Home"}, p.TextList)
}

func TestDecodePropertySequence(t *testing.T) {
	p := decodeValue(t, "SEQUENCE", "3", nil)
	require.Equal(t, PropSequence, p.Kind)
	require.EqualValues(t, 3, p.Number)
}

func TestDecodePropertyRDateWithPeriod(t *testing.T) {
	p := decodeValue(t, "RDATE", "20060102T150000Z/PT2H", nil)
	require.Equal(t, PropRDate, p.Kind)
	require.Len(t, p.PeriodList, 1)
	require.Equal(t, 2*time.Hour, p.PeriodList[0].Duration)
}

func TestDecodePropertyAttachBinary(t *testing.T) {
	data := []byte("hello world")
	encoded := base64.StdEncoding.EncodeToString(data)
	params := Params{"VALUE": {"BINARY"}, "ENCODING": {"BASE64"}}
	p := decodeValue(t, "ATTACH", encoded, params)
	require.Equal(t, data, p.Binary)
}

func TestDecodePropertyAttachBinaryRequiresBase64(t *testing.T) {
	params := Params{"VALUE": {"BINARY"}}
	_, err := DecodeProperty(&Prop{Name: "ATTACH", Value: "Zm9v", Params: params})
	require.Error(t, err)
}

func TestDecodePropertyRecurrenceID(t *testing.T) {
	p := decodeValue(t, "RECURRENCE-ID", "20060103T100000Z", nil)
	require.Equal(t, PropRecurrenceID, p.Kind)
	require.Equal(t, KindUTC, p.Date.Kind)
}

func TestDecodePropertyRecurrenceIDRangeThisAndFutureUnsupported(t *testing.T) {
	params := Params{"RANGE": {"THISANDFUTURE"}}
	_, err := DecodeProperty(&Prop{Name: "RECURRENCE-ID", Value: "20060103T100000Z", Params: params})
	require.Error(t, err)

	var icalErr *Error
	require.ErrorAs(t, err, &icalErr)
	require.Equal(t, KindUnsupported, icalErr.Kind)
}

func TestDecodePropertyGeo(t *testing.T) {
	p := decodeValue(t, "GEO", "37.386013;-122.082932", nil)
	require.Equal(t, PropGeo, p.Kind)
	lat, lon := p.Geo()
	require.InDelta(t, 37.386013, lat, 1e-9)
	require.InDelta(t, -122.082932, lon, 1e-9)
}

func TestDecodePropertyGeoInvalid(t *testing.T) {
	_, err := DecodeProperty(&Prop{Name: "GEO", Value: "not-a-geo-pair", Params: make(Params)})
	require.Error(t, err)
}

func TestDecodePropertyStatus(t *testing.T) {
	p := decodeValue(t, "STATUS", "confirmed", nil)
	require.Equal(t, PropStatus, p.Kind)
	require.Equal(t, string(StatusConfirmed), p.Text)
}

func TestDecodePropertyStatusInvalid(t *testing.T) {
	_, err := DecodeProperty(&Prop{Name: "STATUS", Value: "SOMETHING-ELSE", Params: make(Params)})
	require.Error(t, err)

	var icalErr *Error
	require.ErrorAs(t, err, &icalErr)
	require.Equal(t, KindSchema, icalErr.Kind)
}

func TestDecodePropertyClass(t *testing.T) {
	p := decodeValue(t, "CLASS", "private", nil)
	require.Equal(t, PropClass, p.Kind)
	require.Equal(t, string(ClassPrivate), p.Text)
}

func TestDecodePropertyClassUnrecognizedAccepted(t *testing.T) {
	p := decodeValue(t, "CLASS", "X-COMPANY-CONFIDENTIAL", nil)
	require.Equal(t, PropClass, p.Kind)
	require.Equal(t, "X-COMPANY-CONFIDENTIAL", p.Text)
}

func TestDecodePropertyOther(t *testing.T) {
	p := decodeValue(t, "X-CUSTOM", "some value", nil)
	require.Equal(t, PropOther, p.Kind)
	require.Equal(t, "some value", p.RawValue)
}
