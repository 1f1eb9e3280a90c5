package blockrec

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// UnrecognizedPolicy decides what happens to a field that a schema neither
// requires nor allows. The zero value defers to the schema.
type UnrecognizedPolicy int

const (
	UnrecognizedDefault UnrecognizedPolicy = iota
	// UnrecognizedWarn keeps the field and reports a Warning.
	UnrecognizedWarn
	// UnrecognizedReject fails with ErrUnrecognizedField.
	UnrecognizedReject
)

// LinePolicy decides what happens to a line inside a block that is not a
// KEY: VALUE pair. The zero value defers to the schema.
type LinePolicy int

const (
	LinesDefault LinePolicy = iota
	// LinesLenient skips such lines.
	LinesLenient
	// LinesStrict fails with ErrMalformedLine.
	LinesStrict
)

// ValueValidator checks a single field value. It returns a plain error; the
// parser attaches the line, block and field.
type ValueValidator func(value string) error

// RecordCheck is a cross-field check run after all single field checks
// passed. Returning a *ParseError selects the error kind; any other error is
// reported as ErrInvalidFieldValue.
type RecordCheck func(r *Record) error

// Dependency states that Field may only appear together with Requires.
type Dependency struct {
	Field    string
	Requires string
}

// Schema describes one block kind.
type Schema struct {
	Kind         string
	Required     []string
	Optional     []string
	Validators   map[string]ValueValidator
	Dependencies []Dependency
	// Exclusive lists pairs of fields that cannot coexist.
	Exclusive [][2]string
	Checks    []RecordCheck
	// UniqueField, if set, must hold a distinct DateTime across all
	// records of this kind in one parse.
	UniqueField string
	// SortField is the DateTime field Result.Sorted orders by.
	SortField    string
	Unrecognized UnrecognizedPolicy
	Lines        LinePolicy
}

// RecordSchema is the generic RECORD kind: IDENTIFIER and TIME required,
// WEIGHT/UNITS/COLOR optional, WEIGHT requires UNITS. Unknown
// fields warn and stray lines are skipped.
func RecordSchema() *Schema {
	return &Schema{
		Kind:     KindRecord,
		Required: []string{FieldIdentifier, FieldTime},
		Optional: []string{FieldWeight, FieldUnits, FieldColor},
		Validators: map[string]ValueValidator{
			FieldTime:   DateTimeValue,
			FieldWeight: NonNegativeNumber,
		},
		Dependencies: []Dependency{
			{Field: FieldWeight, Requires: FieldUnits},
		},
		SortField:    FieldTime,
		Unrecognized: UnrecognizedWarn,
		Lines:        LinesLenient,
	}
}

// VEventSchema is the VEVENT subset accepted for appointments. Unknown
// fields and stray lines are fatal.
func VEventSchema() *Schema {
	return &Schema{
		Kind:     KindVEvent,
		Required: []string{FieldDtStart, FieldDtStamp, FieldMethod, FieldStatus},
		Optional: []string{
			FieldCreated, FieldDtEnd, FieldDuration, FieldLastModified, FieldName,
			FieldOrganizer, FieldDescription, FieldAttendee,
		},
		Validators: map[string]ValueValidator{
			FieldDtStart:      DateTimeValue,
			FieldDtStamp:      DateTimeValue,
			FieldDtEnd:        DateTimeValue,
			FieldCreated:      DateTimeValue,
			FieldLastModified: DateTimeValue,
			FieldMethod:       OneOf(MethodRequest),
			FieldStatus:       OneOf(StatusTentative, StatusConfirmed, StatusCancelled),
		},
		Exclusive: [][2]string{{FieldDtEnd, FieldDuration}},
		Checks: []RecordCheck{
			NotAfter(FieldDtStamp, FieldDtStart),
			NotAfter(FieldDtStart, FieldDtEnd),
		},
		UniqueField:  FieldDtStart,
		SortField:    FieldDtStart,
		Unrecognized: UnrecognizedReject,
		Lines:        LinesStrict,
	}
}

// Clone returns a copy that can be modified without touching s.
func (s *Schema) Clone() *Schema {
	c := *s
	c.Required = slices.Clone(s.Required)
	c.Optional = slices.Clone(s.Optional)
	c.Dependencies = slices.Clone(s.Dependencies)
	c.Exclusive = slices.Clone(s.Exclusive)
	c.Checks = slices.Clone(s.Checks)
	c.Validators = make(map[string]ValueValidator, len(s.Validators))
	for k, v := range s.Validators {
		c.Validators[k] = v
	}
	return &c
}

// With returns a copy of s that also accepts the given optional fields.
func (s *Schema) With(optional ...string) *Schema {
	c := s.Clone()
	for _, name := range optional {
		name = normalizeName(name)
		if !c.Declares(name) {
			c.Optional = append(c.Optional, name)
		}
	}
	return c
}

// IsRequired reports whether name is mandatory for this kind.
func (s *Schema) IsRequired(name string) bool {
	return slices.Contains(s.Required, normalizeName(name))
}

// IsOptional reports whether name may appear in this kind.
func (s *Schema) IsOptional(name string) bool {
	return slices.Contains(s.Optional, normalizeName(name))
}

// Declares reports whether name is either required or optional.
func (s *Schema) Declares(name string) bool {
	return s.IsRequired(name) || s.IsOptional(name)
}

// Validate runs the schema against a finished record: required fields,
// value validators, dependencies, exclusive pairs, unrecognized fields and
// finally cross-field checks. It stops at the first failure. Unrecognized
// fields under UnrecognizedWarn are returned as warnings.
func (s *Schema) Validate(r *Record, policy UnrecognizedPolicy) ([]Warning, error) {
	if policy == UnrecognizedDefault {
		policy = s.Unrecognized
	}
	for _, name := range s.Required {
		if !r.Has(name) {
			return nil, &ParseError{Kind: ErrMissingRequiredField, Line: r.Line, Block: r.Kind, Field: name}
		}
	}
	for _, f := range r.Fields {
		validate, ok := s.Validators[f.Name]
		if !ok {
			continue
		}
		if err := validate(f.Value); err != nil {
			return nil, newError(ErrInvalidFieldValue, f.Line, r.Kind, f.Name, err)
		}
	}
	for _, dep := range s.Dependencies {
		f := r.GetField(dep.Field)
		if f != nil && !r.Has(dep.Requires) {
			return nil, &ParseError{
				Kind: ErrDependentFieldViolation, Line: f.Line, Block: r.Kind, Field: f.Name,
				Msg: fmt.Sprintf("must have %s if %s is present", dep.Requires, dep.Field),
			}
		}
	}
	for _, pair := range s.Exclusive {
		if a, b := r.GetField(pair[0]), r.GetField(pair[1]); a != nil && b != nil {
			return nil, &ParseError{
				Kind: ErrDependentFieldViolation, Line: b.Line, Block: r.Kind, Field: b.Name,
				Msg: fmt.Sprintf("%s and %s cannot both be present", a.Name, b.Name),
			}
		}
	}
	var warnings []Warning
	for _, f := range r.Fields {
		if s.Declares(f.Name) {
			continue
		}
		if policy == UnrecognizedReject {
			return nil, &ParseError{Kind: ErrUnrecognizedField, Line: f.Line, Block: r.Kind, Field: f.Name}
		}
		warnings = append(warnings, Warning{Kind: ErrUnrecognizedField, Line: f.Line, Block: r.Kind, Field: f.Name})
	}
	for _, check := range s.Checks {
		if err := check(r); err != nil {
			return nil, newError(ErrInvalidFieldValue, r.Line, r.Kind, "", err)
		}
	}
	return warnings, nil
}

// DateTimeValue accepts a YYYYMMDDTHHMMSS token.
func DateTimeValue(value string) error {
	_, err := ParseDateTime(value)
	return err
}

// NonNegativeNumber accepts a decimal number that is zero or more.
func NonNegativeNumber(value string) error {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", value)
	}
	if n < 0 {
		return fmt.Errorf("%q is negative", value)
	}
	return nil
}

// OneOf accepts exactly one of the listed values. Matching is case
// sensitive.
func OneOf(allowed ...string) ValueValidator {
	return func(value string) error {
		if slices.Contains(allowed, value) {
			return nil
		}
		return fmt.Errorf("%q is not one of %s", value, strings.Join(allowed, ", "))
	}
}

// NotAfter fails with ErrOrderingViolation when the earlier field holds a
// later DateTime than the later field. Missing fields pass.
func NotAfter(earlier, later string) RecordCheck {
	return func(r *Record) error {
		if !r.Has(earlier) || !r.Has(later) {
			return nil
		}
		a, err := r.Time(earlier)
		if err != nil {
			return err
		}
		b, err := r.Time(later)
		if err != nil {
			return err
		}
		if a.After(b) {
			return &ParseError{
				Kind: ErrOrderingViolation, Line: r.GetField(earlier).Line, Field: normalizeName(earlier),
				Msg: fmt.Sprintf("%s should not be after %s", normalizeName(earlier), normalizeName(later)),
			}
		}
		return nil
	}
}

var errNoUniqueValue = errors.New("unique field has no date-time value")

// uniqueKey returns the decoded unique field of r, or false when the schema
// declares none or the record lacks it.
func (s *Schema) uniqueKey(r *Record) (DateTime, bool, error) {
	if s.UniqueField == "" || !r.Has(s.UniqueField) {
		return DateTime{}, false, nil
	}
	dt, err := r.Time(s.UniqueField)
	if err != nil {
		return DateTime{}, false, fmt.Errorf("%w: %v", errNoUniqueValue, err)
	}
	return dt, true, nil
}
