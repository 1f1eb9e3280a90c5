package blockrec

import (
	"fmt"
	"strings"
)

// Kind names the block types this package ships schemas for.
const (
	KindRecord   = "RECORD"
	KindVEvent   = "VEVENT"
	KindCalendar = "VCALENDAR"
)

// Field names used by the built-in schemas.
const (
	FieldIdentifier = "IDENTIFIER"
	FieldTime       = "TIME"
	FieldWeight     = "WEIGHT"
	FieldUnits      = "UNITS"
	FieldColor      = "COLOR"

	FieldDtStart      = "DTSTART"
	FieldDtStamp      = "DTSTAMP"
	FieldDtEnd        = "DTEND"
	FieldDuration     = "DURATION"
	FieldMethod       = "METHOD"
	FieldStatus       = "STATUS"
	FieldCreated      = "CREATED"
	FieldLastModified = "LAST-MODIFIED"
	FieldName         = "NAME"
	FieldOrganizer    = "ORGANIZER"
	FieldDescription  = "DESCRIPTION"
	FieldAttendee     = "ATTENDEE"

	FieldVersion   = "VERSION"
	FieldProductId = "PRODID"
)

// Status values accepted in a VEVENT.
const (
	StatusTentative = "TENTATIVE"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// MethodRequest is the only METHOD a VEVENT may carry.
const MethodRequest = "REQUEST"

// Field is a single KEY: VALUE property. Name is always upper case. Line is
// the 1-based input line it came from, zero for fields built in code.
type Field struct {
	Name  string
	Value string
	Line  int
}

// Record is one BEGIN/END block. Field order follows the input and is what
// serialization writes back; lookups are by upper-cased name.
type Record struct {
	Kind   string
	Line   int
	Fields []Field
}

// NewRecord returns an empty record of the given kind.
func NewRecord(kind string) *Record {
	return &Record{Kind: strings.ToUpper(kind)}
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// GetField returns the field named name, or nil.
func (r *Record) GetField(name string) *Field {
	name = normalizeName(name)
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			return &r.Fields[i]
		}
	}
	return nil
}

// Get returns the value of name and whether it is present.
func (r *Record) Get(name string) (string, bool) {
	f := r.GetField(name)
	if f == nil {
		return "", false
	}
	return f.Value, true
}

// Value returns the value of name, or "" when absent.
func (r *Record) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Has reports whether the record carries name.
func (r *Record) Has(name string) bool {
	return r.GetField(name) != nil
}

// Add appends a field. It fails with ErrDuplicateField if the name is
// already present; keys are unique within a record.
func (r *Record) Add(name, value string) error {
	return r.add(Field{Name: normalizeName(name), Value: value})
}

func (r *Record) add(f Field) error {
	if r.Has(f.Name) {
		return &ParseError{Kind: ErrDuplicateField, Line: f.Line, Block: r.Kind, Field: f.Name}
	}
	r.Fields = append(r.Fields, f)
	return nil
}

// Set replaces the value of name in place, otherwise appends it.
func (r *Record) Set(name, value string) {
	if f := r.GetField(name); f != nil {
		f.Value = value
		return
	}
	r.Fields = append(r.Fields, Field{Name: normalizeName(name), Value: value})
}

// Remove deletes name and returns the removed field, if any.
func (r *Record) Remove(name string) *Field {
	name = normalizeName(name)
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			removed := r.Fields[i]
			r.Fields = append(r.Fields[:i], r.Fields[i+1:]...)
			return &removed
		}
	}
	return nil
}

// Names returns the field names in record order.
func (r *Record) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// Map returns the fields as a name to value map.
func (r *Record) Map() map[string]string {
	m := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		m[f.Name] = f.Value
	}
	return m
}

// Time decodes the named field as a DateTime token.
func (r *Record) Time(name string) (DateTime, error) {
	v, ok := r.Get(name)
	if !ok {
		return DateTime{}, fmt.Errorf("%w: %s", ErrorPropertyNotFound, normalizeName(name))
	}
	return ParseDateTime(v)
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := &Record{Kind: r.Kind, Line: r.Line}
	c.Fields = append([]Field(nil), r.Fields...)
	return c
}
