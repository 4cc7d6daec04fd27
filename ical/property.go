package ical

import "time"

// PropertyKind discriminates which recognized iCalendar property a Property
// holds, mirroring the raw Prop.Name it was decoded from.
type PropertyKind int

const (
	PropOther PropertyKind = iota
	PropDTStart
	PropDTEnd
	PropDuration
	PropRRule
	PropRDate
	PropEXDate
	PropRecurrenceID
	PropDTStamp
	PropCreated
	PropUID
	PropSummary
	PropDescription
	PropLocation
	PropSequence
	PropTZID
	PropTZOffsetFrom
	PropTZOffsetTo
	PropTZName
	PropPRODID
	PropVersion
	PropCategories
	PropResources
	PropComment
	PropContact
	PropRelatedTo
	PropPriority
	PropRepeat
	PropPercentComplete
	PropAttach
	PropGeo
	PropStatus
	PropClass
)

// Property is the typed decode of a raw Prop: a tag (Kind) plus the payload
// field(s) that tag populates. Go has no sum types, so unused fields for a
// given Kind simply stay at their zero value -- the same encoding the
// corpus's ValueType-tagged Prop uses, lifted one level so callers match on
// Kind instead of re-parsing Value every time.
type Property struct {
	Kind PropertyKind
	Name string // raw property name folded to upper case, kept for Other and diagnostics

	Text       string
	TextList   []string
	Date       DateOrDateTime
	DateList   []DateOrDateTime
	Period     Period
	PeriodList []Period
	Duration   time.Duration
	Recur      *RecurRule
	Number     uint64
	Binary     []byte
	RawValue   string // populated for PropOther
	GeoLat     float64
	GeoLon     float64

	Params Params
}

// Geo returns the PropGeo property's latitude/longitude pair. Only valid
// when Kind == PropGeo.
func (p *Property) Geo() (lat, lon float64) {
	return p.GeoLat, p.GeoLon
}

// EventStatus is the value of a VEVENT's STATUS property, per RFC 5545
// section 3.8.1.11.
type EventStatus string

const (
	StatusTentative EventStatus = "TENTATIVE"
	StatusConfirmed EventStatus = "CONFIRMED"
	StatusCancelled EventStatus = "CANCELLED"
)

// ClassValue is the value of a CLASS property, per RFC 5545 section 3.8.1.3.
type ClassValue string

const (
	ClassPublic       ClassValue = "PUBLIC"
	ClassPrivate      ClassValue = "PRIVATE"
	ClassConfidential ClassValue = "CONFIDENTIAL"
)
