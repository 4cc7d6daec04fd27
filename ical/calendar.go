package ical

import (
	"strings"
	"time"
)

// VCalendar is a fully interpreted VCALENDAR: its declared PRODID/VERSION,
// every VTIMEZONE it defines, and every VEVENT grouped by UID into an
// EventCollection. Zones and collections are immutable once built;
// instance iterators borrow the calendar rather than copying it.
type VCalendar struct {
	ProdID  string
	Version string

	Timezones []*VTimeZone
	Events    map[string]*EventCollection

	Other map[string]*Property
}

// BuildCalendar interprets a raw VCALENDAR Component -- the output of
// ParseString/ParseStream -- into a VCalendar. VEVENTs are interpreted
// after VTIMEZONEs so overrides and zone lookups have every zone available.
func BuildCalendar(component *Component) (*VCalendar, error) {
	if component.upperName() != "VCALENDAR" {
		return nil, schemaErr("expected VCALENDAR, got "+component.Name, nil)
	}

	cal := &VCalendar{Other: make(map[string]*Property), Events: make(map[string]*EventCollection)}

	var veventComponents []*Component
	for _, child := range component.Children {
		switch child.upperName() {
		case "VEVENT":
			veventComponents = append(veventComponents, child)
		case "VTIMEZONE":
			tz, err := buildTimeZone(child)
			if err != nil {
				return nil, err
			}
			cal.Timezones = append(cal.Timezones, tz)
		default:
			// VTODO/VJOURNAL/VALARM/VFREEBUSY are preserved opaquely, not
			// interpreted.
		}
	}

	for _, prop := range component.PropOrder {
		decoded, err := DecodeProperty(prop)
		if err != nil {
			return nil, err
		}
		switch decoded.Kind {
		case PropPRODID:
			cal.ProdID = decoded.Text
		case PropVersion:
			cal.Version = decoded.Text
		default:
			cal.Other[strings.ToUpper(prop.Name)] = decoded
		}
	}

	if cal.ProdID == "" {
		return nil, schemaErr("VCALENDAR missing required PRODID", nil)
	}
	if cal.Version == "" {
		return nil, schemaErr("VCALENDAR missing required VERSION", nil)
	}

	var multiErr MultiError

	byUID := make(map[string][]*Event)
	var order []string
	for _, vc := range veventComponents {
		ev, err := buildEvent(vc)
		if err != nil {
			multiErr.add(err)
			continue
		}
		if _, seen := byUID[ev.UID]; !seen {
			order = append(order, ev.UID)
		}
		byUID[ev.UID] = append(byUID[ev.UID], ev)
	}

	for _, uid := range order {
		coll, err := newEventCollection(byUID[uid])
		if err != nil {
			multiErr.add(err)
			continue
		}
		cal.Events[uid] = coll
	}

	return cal, multiErr.asError()
}

func buildTimeZone(c *Component) (*VTimeZone, error) {
	tz := &VTimeZone{}

	for _, prop := range c.PropOrder {
		if strings.ToUpper(prop.Name) == "TZID" {
			tz.ID = prop.Value
		}
	}
	if tz.ID == "" {
		return nil, schemaErr("VTIMEZONE missing required TZID", nil)
	}

	for _, child := range c.Children {
		switch child.upperName() {
		case "STANDARD":
			r, err := buildOffsetRule(child)
			if err != nil {
				return nil, err
			}
			tz.Standard = append(tz.Standard, *r)
		case "DAYLIGHT":
			r, err := buildOffsetRule(child)
			if err != nil {
				return nil, err
			}
			tz.Daylight = append(tz.Daylight, *r)
		}
	}

	if len(tz.Standard) == 0 && len(tz.Daylight) == 0 {
		return nil, schemaErr("VTIMEZONE "+tz.ID+" must have at least one STANDARD or DAYLIGHT rule", nil)
	}

	return tz, nil
}

func buildOffsetRule(c *Component) (*OffsetRule, error) {
	r := &OffsetRule{}
	var haveFrom, haveTo, haveStart bool

	for _, prop := range c.PropOrder {
		decoded, err := DecodeProperty(prop)
		if err != nil {
			return nil, err
		}
		switch decoded.Kind {
		case PropTZOffsetFrom:
			r.OffsetFrom = decoded.Duration
			haveFrom = true
		case PropTZOffsetTo:
			r.OffsetTo = decoded.Duration
			haveTo = true
		case PropTZName:
			r.Name = decoded.Text
		case PropRRule:
			r.Recur = decoded.Recur
		case PropDTStart:
			if decoded.Date.Kind != KindLocal {
				return nil, schemaErr(c.Name+" DTSTART must be a floating local date-time", nil)
			}
			r.Start = decoded.Date.Naive
			haveStart = true
		case PropRDate:
			for _, d := range decoded.DateList {
				if d.Kind != KindLocal {
					return nil, schemaErr(c.Name+" RDATE must be floating local", nil)
				}
				r.RDates = append(r.RDates, d.Naive)
			}
		case PropEXDate:
			for _, d := range decoded.DateList {
				if d.Kind != KindLocal {
					return nil, schemaErr(c.Name+" EXDATE must be floating local", nil)
				}
				r.EXDates = append(r.EXDates, d.Naive)
			}
		}
	}

	if !haveFrom {
		return nil, schemaErr(c.Name+" missing required TZOFFSETFROM", nil)
	}
	if !haveTo {
		return nil, schemaErr(c.Name+" missing required TZOFFSETTO", nil)
	}
	if !haveStart {
		return nil, schemaErr(c.Name+" missing required DTSTART", nil)
	}

	return r, nil
}

// GetAbsolute resolves any DateOrDateTime to a fixed-offset absolute
// instant, consulting the calendar's VTIMEZONE list for KindTZ values.
// Floating local values have no absolute instant by definition and are
// rejected.
func (cal *VCalendar) GetAbsolute(d DateOrDateTime) (time.Time, error) {
	switch d.Kind {
	case KindUTC:
		return d.UTC, nil
	case KindDateOnly:
		return d.Naive, nil
	case KindLocal:
		return time.Time{}, schemaErr("cannot resolve a floating local value to an absolute instant", nil)
	case KindTZ:
		tz := cal.findTimezone(d.TZID)
		if tz == nil {
			return time.Time{}, zoneErr("referenced timezone "+d.TZID+" not found in calendar", nil)
		}
		return tz.ToInstance(d.Naive)
	default:
		return time.Time{}, schemaErr("invalid DateOrDateTime", nil)
	}
}

func (cal *VCalendar) findTimezone(id string) *VTimeZone {
	for _, tz := range cal.Timezones {
		if tz.ID == id {
			return tz
		}
	}
	return nil
}
