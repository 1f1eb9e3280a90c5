package blockrec

import (
	"fmt"
	"regexp"
	"strings"
)

// LineType classifies a single input line.
type LineType int

const (
	LineBlank LineType = iota
	LineBegin
	LineEnd
	LineProperty
	// LineInvalid is a non-blank line that is not a directive or a
	// KEY: VALUE pair.
	LineInvalid
)

// ContentLine is one logical input line with its 1-based position.
type ContentLine struct {
	Text   string
	Number int
}

// Line is a classified ContentLine. For LineBegin and LineEnd Name is the
// upper-cased block kind; for LineProperty it is the upper-cased key.
type Line struct {
	Type   LineType
	Name   string
	Value  string
	Number int
}

var (
	propertyKeyReg = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// Matches an upper-case KEY: that starts a second directive inside a
	// value. Lower and mixed case words followed by a colon are prose.
	embeddedKeyReg = regexp.MustCompile(`(?:^|\s)([A-Z][A-Z0-9_-]*)\s*:`)
)

// ParseLine trims the line and splits it on the first colon. Keywords and
// keys are case insensitive and returned upper-cased; whitespace around the
// key and the value is dropped.
func ParseLine(cl ContentLine) Line {
	text := strings.TrimSpace(cl.Text)
	l := Line{Number: cl.Number}
	if text == "" {
		l.Type = LineBlank
		return l
	}
	key, value, found := strings.Cut(text, ":")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if !found || key == "" || value == "" || !propertyKeyReg.MatchString(key) {
		l.Type = LineInvalid
		l.Value = text
		return l
	}
	l.Name = strings.ToUpper(key)
	l.Value = value
	switch l.Name {
	case "BEGIN":
		l.Type = LineBegin
		l.Name = strings.ToUpper(value)
		l.Value = ""
	case "END":
		l.Type = LineEnd
		l.Name = strings.ToUpper(value)
		l.Value = ""
	default:
		l.Type = LineProperty
	}
	return l
}

// embeddedProperty returns the first key inside value that would start a
// second property on the same line: BEGIN, END or a field the schema
// declares, written in upper case. Colons in ordinary values such as
// "mailto:a@example.com" or "project status: on track" do not count. A nil
// schema only checks BEGIN and END.
func embeddedProperty(value string, s *Schema) (string, bool) {
	for _, m := range embeddedKeyReg.FindAllStringSubmatch(value, -1) {
		name := m[1]
		if name == "BEGIN" || name == "END" || (s != nil && s.Declares(name)) {
			return name, true
		}
	}
	return "", false
}

// CheckValue reports whether value can be written as a single KEY:VALUE line
// that parses back to the same value under s. s may be nil.
func CheckValue(value string, s *Schema) error {
	if strings.ContainsAny(value, "\r\n") {
		return &ParseError{Kind: ErrMalformedLine, Msg: "line break in value"}
	}
	if strings.TrimSpace(value) == "" {
		return &ParseError{Kind: ErrMalformedLine, Msg: "empty value"}
	}
	if name, ok := embeddedProperty(value, s); ok {
		return &ParseError{Kind: ErrMalformedLine, Msg: fmt.Sprintf("more than one property per line (%s)", name)}
	}
	return nil
}
