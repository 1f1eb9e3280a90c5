package blockrec

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrorPropertyNotFound is the error returned if the requested property
	// is not set.
	ErrorPropertyNotFound = errors.New("property not found")
)

// ErrorKind classifies a parse or validation failure. Every ErrorKind is
// itself an error so callers can match with errors.Is:
//
//	if errors.Is(err, blockrec.ErrDuplicateField) { ... }
type ErrorKind int

const (
	// ErrEmptyInput is returned when there is nothing but whitespace to parse.
	ErrEmptyInput ErrorKind = iota + 1
	// ErrUnterminatedBlock is a BEGIN without a matching END at end of input.
	ErrUnterminatedBlock
	// ErrUnexpectedEnd is an END with no corresponding open BEGIN.
	ErrUnexpectedEnd
	// ErrNestedBlock is a BEGIN while a block of the same level is open.
	ErrNestedBlock
	// ErrEmptyBlock is a block closed with no fields.
	ErrEmptyBlock
	// ErrDuplicateField is a field key repeated within one block.
	ErrDuplicateField
	// ErrMalformedLine is a line inside a block that is not a usable
	// KEY: VALUE pair, or that carries more than one property.
	ErrMalformedLine
	// ErrMissingRequiredField is a schema required field absent at END.
	ErrMissingRequiredField
	// ErrUnrecognizedField is a field that the schema does not declare.
	ErrUnrecognizedField
	// ErrInvalidFieldValue is a value rejected by a field validator.
	ErrInvalidFieldValue
	// ErrDependentFieldViolation is a field present without its companion,
	// or two mutually exclusive fields present together.
	ErrDependentFieldViolation
	// ErrOrderingViolation is a failed temporal ordering check between fields.
	ErrOrderingViolation
	// ErrUniquenessViolation is a unique key shared by two records.
	ErrUniquenessViolation
	// ErrUnknownBlock is a BEGIN for a kind that has no schema.
	ErrUnknownBlock
	// ErrMisplacedBlock is a record block found outside its envelope.
	ErrMisplacedBlock
)

var errorKindNames = map[ErrorKind]string{
	ErrEmptyInput:              "input is empty",
	ErrUnterminatedBlock:       "block has no END",
	ErrUnexpectedEnd:           "block has no BEGIN",
	ErrNestedBlock:             "block has no END before next BEGIN",
	ErrEmptyBlock:              "block has no properties",
	ErrDuplicateField:          "duplicate property",
	ErrMalformedLine:           "invalid property format",
	ErrMissingRequiredField:    "missing required property",
	ErrUnrecognizedField:       "unrecognized property",
	ErrInvalidFieldValue:       "invalid property value",
	ErrDependentFieldViolation: "dependent property violation",
	ErrOrderingViolation:       "timestamp ordering violation",
	ErrUniquenessViolation:     "duplicate primary key",
	ErrUnknownBlock:            "unknown block kind",
	ErrMisplacedBlock:          "block outside envelope",
}

func (k ErrorKind) Error() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("error kind %d", int(k))
}

func (k ErrorKind) String() string {
	return k.Error()
}

// ParseError is the single structured failure returned by the parser. Line
// is 1-based and zero when unknown.
type ParseError struct {
	Kind  ErrorKind
	Line  int
	Block string
	Field string
	Msg   string
	Err   error
}

func (e *ParseError) Error() string {
	b := &strings.Builder{}
	if e.Line > 0 {
		fmt.Fprintf(b, "line %d: ", e.Line)
	}
	b.WriteString(e.Kind.Error())
	if e.Block != "" {
		fmt.Fprintf(b, " in %s", e.Block)
	}
	if e.Field != "" {
		fmt.Fprintf(b, " %s", e.Field)
	}
	if e.Msg != "" {
		fmt.Fprintf(b, ": %s", e.Msg)
	}
	if e.Err != nil {
		fmt.Fprintf(b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the ErrorKind carried by err, or zero if there is none.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	var k ErrorKind
	if errors.As(err, &k) {
		return k
	}
	return 0
}

// newError builds a ParseError. Validators may return a *ParseError of their
// own; its kind and message are kept and only missing context is filled in.
func newError(kind ErrorKind, line int, block, field string, err error) *ParseError {
	var pe *ParseError
	if errors.As(err, &pe) {
		out := *pe
		if out.Line == 0 {
			out.Line = line
		}
		if out.Block == "" {
			out.Block = block
		}
		if out.Field == "" {
			out.Field = field
		}
		return &out
	}
	return &ParseError{Kind: kind, Line: line, Block: block, Field: field, Err: err}
}

// Warning is a non-fatal finding, such as an unrecognized field under
// UnrecognizedWarn.
type Warning struct {
	Kind  ErrorKind
	Line  int
	Block string
	Field string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s in %s %s", w.Line, w.Kind, w.Block, w.Field)
}
