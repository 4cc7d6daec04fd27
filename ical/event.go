package ical

import (
	"strings"
	"time"
)

// Timings holds an event's DTSTART (and, if present, its end expressed as a
// duration) together with the RDATE/EXDATE lists that modify its
// recurrence. Go's lack of sum types means the eight DATE/DATE-TIME ×
// Local/UTC/TZ × point/period shapes the spec enumerates collapse here into
// one struct whose Start.Kind carries the shape; HasDuration distinguishes
// a period from a bare point in time.
type Timings struct {
	Start       DateOrDateTime
	Duration    time.Duration
	HasDuration bool

	RDates   []DateOrDateTime
	RPeriods []Period
	EXDates  []DateOrDateTime
}

// Event is a single VEVENT. Base events and recurrence-id overrides are
// both represented by this type; EventCollection distinguishes their role.
type Event struct {
	UID         string
	DTStamp     time.Time
	Summary     string
	Description string
	Location    string
	Sequence    uint64
	HasSequence bool

	Recur   *RecurRule
	Timings *Timings

	IsRecurrenceInstance bool
	// RecurrenceOffset is the signed duration from the base event's
	// DTSTART to this override's RECURRENCE-ID, filled in by
	// EventCollection assembly per the spec's normalization rule: storing
	// an offset rather than the absolute recurrence-id value means
	// override lookup never needs to re-walk time zones.
	RecurrenceOffset time.Duration

	recurrenceID DateOrDateTime

	Other map[string]*Property
}

// buildEvent interprets a VEVENT component's properties into an Event.
func buildEvent(c *Component) (*Event, error) {
	ev := &Event{Other: make(map[string]*Property)}

	var dtstart, dtend *DateOrDateTime
	var duration *time.Duration
	var recurID *DateOrDateTime
	var rdates, exdates []DateOrDateTime
	var rperiods []Period

	for _, prop := range c.PropOrder {
		decoded, err := DecodeProperty(prop)
		if err != nil {
			return nil, err
		}

		switch decoded.Kind {
		case PropUID:
			ev.UID = decoded.Text
		case PropDTStamp:
			ev.DTStamp = decoded.Date.UTC
		case PropSummary:
			ev.Summary = decoded.Text
		case PropDescription:
			ev.Description = decoded.Text
		case PropLocation:
			ev.Location = decoded.Text
		case PropSequence:
			ev.Sequence = decoded.Number
			ev.HasSequence = true
		case PropRRule:
			ev.Recur = decoded.Recur
		case PropDTStart:
			d := decoded.Date
			dtstart = &d
		case PropDTEnd:
			d := decoded.Date
			dtend = &d
		case PropDuration:
			d := decoded.Duration
			duration = &d
		case PropRecurrenceID:
			d := decoded.Date
			recurID = &d
			ev.IsRecurrenceInstance = true
		case PropRDate:
			rdates = append(rdates, decoded.DateList...)
			rperiods = append(rperiods, decoded.PeriodList...)
		case PropEXDate:
			exdates = append(exdates, decoded.DateList...)
		default:
			ev.Other[strings.ToUpper(prop.Name)] = decoded
		}
	}

	if ev.UID == "" {
		return nil, schemaErr("VEVENT missing required UID", nil)
	}
	if ev.DTStamp.IsZero() {
		return nil, schemaErr("VEVENT "+ev.UID+" missing required DTSTAMP", nil)
	}

	if dtend != nil && duration != nil {
		return nil, schemaErr("VEVENT "+ev.UID+" has both DTEND and DURATION", nil)
	}

	if dtstart != nil {
		if dtend != nil && !dtstart.SameShape(*dtend) {
			return nil, schemaErr("VEVENT "+ev.UID+" mixes DTSTART/DTEND shapes", nil)
		}

		t := &Timings{Start: *dtstart, RDates: rdates, RPeriods: rperiods, EXDates: exdates}
		switch {
		case dtend != nil:
			t.HasDuration = true
			t.Duration = dtend.naiveValue().Sub(dtstart.naiveValue())
		case duration != nil:
			t.HasDuration = true
			t.Duration = *duration
		}
		ev.Timings = t
	}

	if recurID != nil {
		ev.recurrenceID = *recurID
	}

	return ev, nil
}
