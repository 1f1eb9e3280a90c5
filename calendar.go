package blockrec

import (
	"io"
	"strings"
)

// Envelope is an outer block that must enclose every record block, such as
// VCALENDAR around VEVENTs. Its own properties are validated by the embedded
// schema when the envelope closes.
type Envelope struct {
	Schema
}

// CalendarEnvelope describes VCALENDAR. RFC 5545 section 3.6 says: "A
// 'VCALENDAR' object MUST include the 'PRODID' and 'VERSION' properties".
// Only VERSION 2.0 is accepted. Other calendar properties are kept with a
// warning.
func CalendarEnvelope() *Envelope {
	return &Envelope{Schema{
		Kind:     KindCalendar,
		Required: []string{FieldVersion, FieldProductId},
		Optional: []string{"CALSCALE", FieldMethod, FieldName, "X-WR-CALNAME", "X-WR-CALDESC", "X-WR-TIMEZONE"},
		Validators: map[string]ValueValidator{
			FieldVersion: OneOf("2.0"),
		},
		Unrecognized: UnrecognizedWarn,
		Lines:        LinesLenient,
	}}
}

// Calendar is a VCALENDAR with its events.
type Calendar struct {
	Properties *Record
	Events     []*Record
	Warnings   []Warning
}

// NewCalendar returns an empty calendar with the default product identifier.
func NewCalendar() *Calendar {
	return NewCalendarFor("arran4")
}

// NewCalendarFor returns an empty calendar whose PRODID names service and
// whose VERSION is 2.0, so it passes CalendarEnvelope as soon as it has
// events.
func NewCalendarFor(service string) *Calendar {
	props := NewRecord(KindCalendar)
	props.Set(FieldVersion, "2.0")
	props.Set(FieldProductId, "-//"+service+"//Golang Block Records")
	return &Calendar{Properties: props}
}

// ParseCalendar parses a VCALENDAR holding VEVENT blocks. VEVENTs must sit
// inside the calendar, the calendar must carry VERSION:2.0 and PRODID, and
// every event is checked against VEventSchema unless ops supply another
// schema.
func ParseCalendar(input string, ops ...any) (*Calendar, error) {
	res, err := ParseRecords(input, calendarOps(ops)...)
	if err != nil {
		return nil, err
	}
	return calendarFromResult(res), nil
}

// ParseCalendarReader is ParseCalendar over a reader.
func ParseCalendarReader(r io.Reader, ops ...any) (*Calendar, error) {
	res, err := ParseReader(r, calendarOps(ops)...)
	if err != nil {
		return nil, err
	}
	return calendarFromResult(res), nil
}

func calendarOps(ops []any) []any {
	out := append([]any{CalendarEnvelope()}, ops...)
	for _, op := range ops {
		switch op := op.(type) {
		case *Schema, []*Schema:
			return out
		case *ParseConfiguration:
			if len(op.Schemas) > 0 {
				return out
			}
		}
	}
	return append(out, VEventSchema())
}

func calendarFromResult(res *Result) *Calendar {
	return &Calendar{
		Properties: res.Envelope,
		Events:     res.Records,
		Warnings:   res.Warnings,
	}
}

// AddEvent appends e.
func (cal *Calendar) AddEvent(e *Record) {
	cal.Events = append(cal.Events, e)
}

// RemoveEvents drops every event for which remove returns true and returns
// the dropped events.
func (cal *Calendar) RemoveEvents(remove func(e *Record) bool) []*Record {
	var kept, removed []*Record
	for _, e := range cal.Events {
		if remove(e) {
			removed = append(removed, e)
		} else {
			kept = append(kept, e)
		}
	}
	cal.Events = kept
	return removed
}

// EventsFor returns the events whose ATTENDEE matches attendee, ignoring case.
func (cal *Calendar) EventsFor(attendee string) []*Record {
	var r []*Record
	for _, e := range cal.Events {
		if strings.EqualFold(e.Value(FieldAttendee), attendee) {
			r = append(r, e)
		}
	}
	return r
}
