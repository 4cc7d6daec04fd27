package ical

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

var textProperties = map[string]PropertyKind{
	"SUMMARY":     PropSummary,
	"DESCRIPTION": PropDescription,
	"LOCATION":    PropLocation,
	"COMMENT":     PropComment,
	"CONTACT":     PropContact,
	"TZNAME":      PropTZName,
	"UID":         PropUID,
	"RELATED-TO":  PropRelatedTo,
	"TZID":        PropTZID,
	"PRODID":      PropPRODID,
	"VERSION":     PropVersion,
}

var listTextProperties = map[string]PropertyKind{
	"CATEGORIES": PropCategories,
	"RESOURCES":  PropResources,
}

var dateProperties = map[string]PropertyKind{
	"DTSTART": PropDTStart,
	"DTEND":   PropDTEnd,
	"DUE":     PropDTEnd,
	"EXDATE":  PropEXDate,
}

var numericProperties = map[string]PropertyKind{
	"SEQUENCE":         PropSequence,
	"PRIORITY":         PropPriority,
	"REPEAT":           PropRepeat,
	"PERCENT-COMPLETE": PropPercentComplete,
}

// DecodeProperty maps a raw Prop into its typed Property, case-folding the
// name before dispatch. Unrecognized names decode to PropOther with their
// raw value preserved rather than being rejected.
func DecodeProperty(p *Prop) (*Property, error) {
	name := strings.ToUpper(p.Name)
	out := &Property{Name: name, Params: p.Params}

	switch {
	case name == "RRULE" || name == "EXRULE":
		rule, err := ParseRecurRule(p.Value)
		if err != nil {
			return nil, err
		}
		out.Kind = PropRRule
		out.Recur = rule
		return out, nil

	case name == "RDATE":
		return decodeRDate(p, out)

	case name == "DURATION":
		d, err := parseISODuration(p.Value)
		if err != nil {
			return nil, err
		}
		out.Kind = PropDuration
		out.Duration = d
		return out, nil

	case name == "DTSTAMP" || name == "CREATED":
		dt, err := decodeDateOrDateTime(p.Value, p.Params)
		if err != nil {
			return nil, err
		}
		if dt.Kind != KindUTC {
			return nil, schemaErr(name+" must be a UTC date-time", nil)
		}
		out.Kind = PropDTStamp
		if name == "CREATED" {
			out.Kind = PropCreated
		}
		out.Date = dt
		return out, nil

	case name == "TZOFFSETFROM" || name == "TZOFFSETTO":
		off, err := parseUTCOffset(p.Value)
		if err != nil {
			return nil, err
		}
		out.Kind = PropTZOffsetFrom
		if name == "TZOFFSETTO" {
			out.Kind = PropTZOffsetTo
		}
		out.Duration = off
		return out, nil

	case name == "ATTACH":
		return decodeAttach(p, out)

	case name == "GEO":
		lat, lon, err := parseGeo(p.Value)
		if err != nil {
			return nil, err
		}
		out.Kind = PropGeo
		out.GeoLat = lat
		out.GeoLon = lon
		return out, nil

	case name == "STATUS":
		text, err := unescapeText(p.Value)
		if err != nil {
			return nil, err
		}
		status := strings.ToUpper(text)
		switch EventStatus(status) {
		case StatusTentative, StatusConfirmed, StatusCancelled,
			"NEEDS-ACTION", "COMPLETED", "IN-PROCESS", "DRAFT", "FINAL":
		default:
			return nil, schemaErr("unrecognized STATUS value "+text, nil)
		}
		out.Kind = PropStatus
		out.Text = status
		return out, nil

	case name == "CLASS":
		// Unrecognized x-name/iana-token values are accepted and treated as
		// PRIVATE by callers per RFC 5545 section 3.8.1.3, so CLASS never
		// rejects a value -- it only normalizes case.
		text, err := unescapeText(p.Value)
		if err != nil {
			return nil, err
		}
		out.Kind = PropClass
		out.Text = strings.ToUpper(text)
		return out, nil

	case name == "RECURRENCE-ID":
		// RANGE=THISANDFUTURE asks this override to apply to every
		// occurrence from its RECURRENCE-ID onward rather than just the
		// one it names; the collection-merge model only replaces a single
		// occurrence, so this form is recognized and rejected rather than
		// silently mishandled.
		if strings.EqualFold(p.Params.Get("RANGE"), "THISANDFUTURE") {
			return nil, unsupportedErr("RECURRENCE-ID;RANGE=THISANDFUTURE is not supported", nil)
		}
		dt, err := decodeDateOrDateTime(p.Value, p.Params)
		if err != nil {
			return nil, err
		}
		out.Kind = PropRecurrenceID
		out.Date = dt
		return out, nil

	case dateProperties[name] != 0:
		dt, err := decodeDateOrDateTime(p.Value, p.Params)
		if err != nil {
			return nil, err
		}
		out.Kind = dateProperties[name]
		out.Date = dt
		return out, nil

	case textProperties[name] != 0:
		text, err := unescapeText(p.Value)
		if err != nil {
			return nil, err
		}
		out.Kind = textProperties[name]
		out.Text = text
		return out, nil

	case listTextProperties[name] != 0:
		items, err := decodeListText(p.Value)
		if err != nil {
			return nil, err
		}
		out.Kind = listTextProperties[name]
		out.TextList = items
		return out, nil

	case numericProperties[name] != 0:
		n, err := strconv.ParseUint(p.Value, 10, 64)
		if err != nil {
			return nil, decodeErr(name+" must be a non-negative integer", err)
		}
		out.Kind = numericProperties[name]
		out.Number = n
		return out, nil

	default:
		out.Kind = PropOther
		out.RawValue = p.Value
		return out, nil
	}
}

// decodeDateOrDateTime parses a DATE, floating DATE-TIME, or UTC DATE-TIME
// string, consulting params for a TZID to produce a KindTZ value.
func decodeDateOrDateTime(value string, params Params) (DateOrDateTime, error) {
	switch len(value) {
	case 8:
		t, err := time.ParseInLocation("20060102", value, time.UTC)
		if err != nil {
			return DateOrDateTime{}, decodeErr("invalid DATE "+value, err)
		}
		return NewDateOnly(t.Year(), t.Month(), t.Day()), nil

	case 16:
		if !strings.HasSuffix(value, "Z") {
			return DateOrDateTime{}, decodeErr("invalid UTC DATE-TIME "+value, nil)
		}
		t, err := time.ParseInLocation("20060102T150405Z", value, time.UTC)
		if err != nil {
			return DateOrDateTime{}, decodeErr("invalid UTC DATE-TIME "+value, err)
		}
		return NewUTC(t), nil

	case 15:
		t, err := time.ParseInLocation("20060102T150405", value, time.UTC)
		if err != nil {
			return DateOrDateTime{}, decodeErr("invalid DATE-TIME "+value, err)
		}
		if tzid := params.Get("TZID"); tzid != "" {
			return NewTZ(t, tzid), nil
		}
		return NewLocal(t), nil

	default:
		return DateOrDateTime{}, decodeErr("unrecognized date/date-time value "+value, nil)
	}
}

func decodeRDate(p *Prop, out *Property) (*Property, error) {
	out.Kind = PropRDate

	for _, part := range strings.Split(p.Value, ",") {
		if idx := strings.IndexByte(part, '/'); idx >= 0 {
			startStr, endStr := part[:idx], part[idx+1:]
			start, err := decodeDateOrDateTime(startStr, p.Params)
			if err != nil {
				return nil, err
			}
			if len(endStr) > 0 && endStr[0] == 'P' || (len(endStr) > 1 && endStr[0] == '-' && endStr[1] == 'P') {
				d, err := parseISODuration(endStr)
				if err != nil {
					return nil, err
				}
				out.PeriodList = append(out.PeriodList, Period{Start: start, Duration: d})
				continue
			}
			end, err := decodeDateOrDateTime(endStr, p.Params)
			if err != nil {
				return nil, err
			}
			out.PeriodList = append(out.PeriodList, Period{Start: start, Duration: end.naiveValue().Sub(start.naiveValue())})
			continue
		}

		dt, err := decodeDateOrDateTime(part, p.Params)
		if err != nil {
			return nil, err
		}
		out.DateList = append(out.DateList, dt)
	}

	return out, nil
}

// unescapeText unescapes \n, \N, \\, \; and \, per RFC 5545 section 3.3.11;
// any other backslash escape is a Decode error.
func unescapeText(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			return "", decodeErr("trailing backslash in text value", nil)
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		case '\\':
			b.WriteByte('\\')
		case ';':
			b.WriteByte(';')
		case ',':
			b.WriteByte(',')
		default:
			return "", decodeErr("invalid escape \\"+string(s[i])+" in text value", nil)
		}
	}
	return b.String(), nil
}

// decodeListText splits on unescaped commas, trims, and unescapes each
// element.
func decodeListText(s string) ([]string, error) {
	var parts []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			cur.WriteByte(s[i])
			cur.WriteByte(s[i+1])
			i++
			continue
		}
		if s[i] == ',' {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(s[i])
	}
	parts = append(parts, cur.String())

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		text, err := unescapeText(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

// parseUTCOffset parses a TZOFFSETFROM/TZOFFSETTO value: a sign followed by
// 4 or 6 digits (HHMM or HHMMSS).
func parseUTCOffset(s string) (time.Duration, error) {
	if len(s) != 5 && len(s) != 7 {
		return 0, decodeErr("invalid UTC offset "+s, nil)
	}
	sign := s[0]
	if sign != '+' && sign != '-' {
		return 0, decodeErr("invalid UTC offset "+s, nil)
	}
	hh, err1 := strconv.Atoi(s[1:3])
	mm, err2 := strconv.Atoi(s[3:5])
	ss := 0
	var err3 error
	if len(s) == 7 {
		ss, err3 = strconv.Atoi(s[5:7])
	}
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, decodeErr("invalid UTC offset "+s, nil)
	}
	total := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute + time.Duration(ss)*time.Second
	if sign == '-' {
		total = -total
	}
	return total, nil
}

// parseGeo parses a GEO value's "lat;lon" float pair, per RFC 5545 section
// 3.8.1.6.
func parseGeo(s string) (lat, lon float64, err error) {
	idx := strings.IndexByte(s, ';')
	if idx < 0 {
		return 0, 0, decodeErr("invalid GEO value "+s, nil)
	}
	lat, errLat := strconv.ParseFloat(s[:idx], 64)
	lon, errLon := strconv.ParseFloat(s[idx+1:], 64)
	if errLat != nil || errLon != nil {
		return 0, 0, decodeErr("invalid GEO value "+s, nil)
	}
	return lat, lon, nil
}

func decodeAttach(p *Prop, out *Property) (*Property, error) {
	out.Kind = PropAttach
	if p.Params.Get("VALUE") == "BINARY" {
		if strings.ToUpper(p.Params.Get("ENCODING")) != "BASE64" {
			return nil, unsupportedErr("ATTACH with VALUE=BINARY requires ENCODING=BASE64", nil)
		}
		data, err := base64.StdEncoding.DecodeString(p.Value)
		if err != nil {
			return nil, decodeErr("invalid base64 ATTACH payload", err)
		}
		out.Binary = data
		return out, nil
	}
	out.Text = p.Value
	return out, nil
}
