package blockrec

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

// WithNewLine selects the line terminator used when serializing.
type WithNewLine string

// WithSeparator selects the text written between a key and its value.
type WithSeparator string

const (
	// WithNewLineUnix uses LF line endings.
	WithNewLineUnix WithNewLine = "\n"
	// WithNewLineWindows uses CRLF line endings as iCalendar files do.
	WithNewLineWindows WithNewLine = "\r\n"
)

// SerializationConfiguration controls how records are written out.
type SerializationConfiguration struct {
	NewLine   string
	Separator string
}

func defaultSerializationOptions() *SerializationConfiguration {
	return &SerializationConfiguration{
		NewLine:   string(WithNewLineUnix),
		Separator: ":",
	}
}

// parseSerializeOps accepts WithNewLine, WithSeparator or a complete
// *SerializationConfiguration.
func parseSerializeOps(ops []any) (*SerializationConfiguration, error) {
	serializeConfig := defaultSerializationOptions()
	for opi, op := range ops {
		switch op := op.(type) {
		case WithNewLine:
			serializeConfig.NewLine = string(op)
		case WithSeparator:
			serializeConfig.Separator = string(op)
		case *SerializationConfiguration:
			return op, nil
		case error:
			return nil, op
		default:
			return nil, fmt.Errorf("unknown op %d of type %s", opi, reflect.TypeOf(op))
		}
	}
	return serializeConfig, nil
}

// serialize writes one KEY:VALUE line. Values that would not read back as
// the same single property are refused before anything is written.
func (f Field) serialize(w io.Writer, block string, cfg *SerializationConfiguration) error {
	if err := CheckValue(f.Value, nil); err != nil {
		return newError(ErrMalformedLine, f.Line, block, f.Name, err)
	}
	_, err := io.WriteString(w, f.Name+cfg.Separator+f.Value+cfg.NewLine)
	return err
}

func (r *Record) serializeTo(w io.Writer, cfg *SerializationConfiguration) error {
	_, _ = io.WriteString(w, "BEGIN:"+r.Kind+cfg.NewLine)
	for _, f := range r.Fields {
		if err := f.serialize(w, r.Kind, cfg); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "END:"+r.Kind+cfg.NewLine)
	return err
}

// SerializeTo writes the record as a BEGIN/END block that ParseRecords reads
// back unchanged. A value holding a line break, an empty value or an
// embedded BEGIN: or END: fails with ErrMalformedLine.
func (r *Record) SerializeTo(w io.Writer, ops ...any) error {
	cfg, err := parseSerializeOps(ops)
	if err != nil {
		return err
	}
	return r.serializeTo(w, cfg)
}

// Serialize is SerializeTo into a string. Output stops at the first field
// SerializeTo refuses.
func (r *Record) Serialize(ops ...any) string {
	b := &strings.Builder{}
	// We are intentionally ignoring the return value. _ used to communicate this to lint.
	_ = r.SerializeTo(b, ops...)
	return b.String()
}

// SerializeTo writes the calendar properties followed by every event,
// wrapped in BEGIN:VCALENDAR and END:VCALENDAR.
func (cal *Calendar) SerializeTo(w io.Writer, ops ...any) error {
	cfg, err := parseSerializeOps(ops)
	if err != nil {
		return err
	}
	_, _ = io.WriteString(w, "BEGIN:"+KindCalendar+cfg.NewLine)
	if cal.Properties != nil {
		for _, f := range cal.Properties.Fields {
			if err := f.serialize(w, KindCalendar, cfg); err != nil {
				return err
			}
		}
	}
	for _, e := range cal.Events {
		if err := e.serializeTo(w, cfg); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, "END:"+KindCalendar+cfg.NewLine)
	return err
}

func (cal *Calendar) Serialize(ops ...any) string {
	b := &strings.Builder{}
	_ = cal.SerializeTo(b, ops...)
	return b.String()
}

// FormatNumbered renders records as a numbered report:
//
//	1. Record
//	IDENTIFIER: 456
//	TIME: 20240101T120000
//
//	2. Record
//	...
func FormatNumbered(records []*Record) string {
	blocks := make([]string, len(records))
	for i, r := range records {
		b := &strings.Builder{}
		fmt.Fprintf(b, "%d. %s", i+1, titleCase(r.Kind))
		for _, f := range r.Fields {
			fmt.Fprintf(b, "\n%s: %s", f.Name, f.Value)
		}
		blocks[i] = b.String()
	}
	return strings.Join(blocks, "\n\n")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return s[:1] + strings.ToLower(s[1:])
}
