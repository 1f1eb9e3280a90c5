// Package blockrec parses line-oriented BEGIN/END block records such as
// RECORD files and VEVENTs inside a VCALENDAR, and validates each block
// against a schema.
package blockrec

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"time"
)

// ParseConfiguration controls a parse. Schemas select the block kinds that
// are accepted; Unrecognized and Lines, when non-zero, override every
// schema's own policy.
type ParseConfiguration struct {
	Schemas      []*Schema
	Envelope     *Envelope
	Unrecognized UnrecognizedPolicy
	Lines        LinePolicy
	Logger       *slog.Logger
}

// parseParseOps interprets the optional arguments of the Parse functions. It
// accepts *Schema, []*Schema, *Envelope, UnrecognizedPolicy, LinePolicy,
// *slog.Logger or a *ParseConfiguration, whose unset fields keep what earlier
// ops chose. Without any schema the generic RECORD schema is used.
func parseParseOps(ops []any) (*ParseConfiguration, error) {
	cfg := &ParseConfiguration{}
	for opi, op := range ops {
		switch op := op.(type) {
		case *Schema:
			cfg.Schemas = append(cfg.Schemas, op)
		case []*Schema:
			cfg.Schemas = append(cfg.Schemas, op...)
		case *Envelope:
			cfg.Envelope = op
		case UnrecognizedPolicy:
			cfg.Unrecognized = op
		case LinePolicy:
			cfg.Lines = op
		case *slog.Logger:
			cfg.Logger = op
		case *ParseConfiguration:
			cfg = op.mergeInto(cfg)
		case error:
			return nil, op
		default:
			return nil, fmt.Errorf("unknown op %d of type %s", opi, reflect.TypeOf(op))
		}
	}
	if len(cfg.Schemas) == 0 {
		cfg.Schemas = []*Schema{RecordSchema()}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg, nil
}

// mergeInto returns a copy of c whose unset fields take their value from
// base, so a configuration passed after other ops does not discard them.
func (c *ParseConfiguration) mergeInto(base *ParseConfiguration) *ParseConfiguration {
	out := *c
	if len(out.Schemas) == 0 {
		out.Schemas = base.Schemas
	}
	if out.Envelope == nil {
		out.Envelope = base.Envelope
	}
	if out.Unrecognized == UnrecognizedDefault {
		out.Unrecognized = base.Unrecognized
	}
	if out.Lines == LinesDefault {
		out.Lines = base.Lines
	}
	if out.Logger == nil {
		out.Logger = base.Logger
	}
	return &out
}

// Result is the outcome of a successful parse.
type Result struct {
	// Records holds the accepted blocks in input order.
	Records []*Record
	// Warnings holds non-fatal findings in input order.
	Warnings []Warning
	// Envelope holds the envelope properties when an envelope was
	// configured.
	Envelope *Record

	schemas map[string]*Schema
}

// Sorted returns the records ordered by their schema's SortField. All
// records must share one sort field.
func (r *Result) Sorted() ([]*Record, error) {
	field := ""
	for _, rec := range r.Records {
		s := r.schemas[rec.Kind]
		if s == nil || s.SortField == "" {
			return nil, fmt.Errorf("%s has no sort field", rec.Kind)
		}
		if field != "" && field != s.SortField {
			return nil, fmt.Errorf("records sort on both %s and %s", field, s.SortField)
		}
		field = s.SortField
	}
	return SortRecords(r.Records, field)
}

// ParseRecords parses newline separated text. Surrounding whitespace on the
// whole input and on each line is ignored.
//
//	res, err := ParseRecords(text)                  // RECORD blocks
//	res, err := ParseRecords(text, VEventSchema())  // VEVENT blocks
func ParseRecords(input string, ops ...any) (*Result, error) {
	return ParseContentLines(SplitLines(input), ops...)
}

// ParseLines parses lines that were already split by the caller.
func ParseLines(lines []string, ops ...any) (*Result, error) {
	cls := make([]ContentLine, len(lines))
	for i, l := range lines {
		cls[i] = ContentLine{Text: l, Number: i + 1}
	}
	return ParseContentLines(cls, ops...)
}

// ParseReader reads all of r and parses it.
func ParseReader(r io.Reader, ops ...any) (*Result, error) {
	lines, err := NewLineStream(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return ParseContentLines(lines, ops...)
}

// ParseContentLines runs the block state machine over lines. It stops at the
// first error and then returns no records.
func ParseContentLines(lines []ContentLine, ops ...any) (*Result, error) {
	cfg, err := parseParseOps(ops)
	if err != nil {
		return nil, err
	}
	p := newParser(cfg)
	return p.run(lines)
}

type parseState int

const (
	stateOutsideEnvelope parseState = iota
	stateOutsideBlock
	stateInsideBlock
	stateEnvelopeClosed
)

type parser struct {
	cfg     *ParseConfiguration
	schemas map[string]*Schema
	log     *slog.Logger

	state   parseState
	current *Record
	schema  *Schema
	// unique maps kind to decoded unique key to the line of the first record.
	unique map[string]map[time.Time]int
	result *Result
}

func newParser(cfg *ParseConfiguration) *parser {
	p := &parser{
		cfg:     cfg,
		schemas: make(map[string]*Schema, len(cfg.Schemas)),
		log:     cfg.Logger,
		unique:  map[string]map[time.Time]int{},
		result:  &Result{},
	}
	for _, s := range cfg.Schemas {
		p.schemas[strings.ToUpper(s.Kind)] = s
	}
	p.result.schemas = p.schemas
	p.state = stateOutsideBlock
	if cfg.Envelope != nil {
		p.state = stateOutsideEnvelope
	}
	return p
}

func (p *parser) run(lines []ContentLine) (*Result, error) {
	empty := true
	for _, l := range lines {
		if strings.TrimSpace(l.Text) != "" {
			empty = false
			break
		}
	}
	if empty {
		return nil, &ParseError{Kind: ErrEmptyInput}
	}

	for _, cl := range lines {
		if err := p.step(ParseLine(cl)); err != nil {
			p.log.Debug("parse failed", "line", cl.Number, "err", err)
			return nil, err
		}
	}

	switch p.state {
	case stateInsideBlock:
		return nil, &ParseError{Kind: ErrUnterminatedBlock, Line: p.current.Line, Block: p.current.Kind}
	case stateOutsideBlock:
		if env := p.cfg.Envelope; env != nil {
			return nil, &ParseError{Kind: ErrUnterminatedBlock, Line: p.result.Envelope.Line, Block: env.Kind}
		}
	case stateOutsideEnvelope:
		return nil, &ParseError{
			Kind: ErrMissingRequiredField, Block: p.cfg.Envelope.Kind,
			Msg: fmt.Sprintf("no BEGIN:%s", p.cfg.Envelope.Kind),
		}
	}
	return p.result, nil
}

func (p *parser) step(l Line) error {
	switch p.state {
	case stateOutsideEnvelope:
		return p.stepOutsideEnvelope(l)
	case stateOutsideBlock:
		return p.stepOutsideBlock(l)
	case stateInsideBlock:
		return p.stepInsideBlock(l)
	case stateEnvelopeClosed:
		return p.stepEnvelopeClosed(l)
	}
	return fmt.Errorf("bad parser state %d", p.state)
}

func (p *parser) isEnvelope(kind string) bool {
	return p.cfg.Envelope != nil && p.cfg.Envelope.Kind == kind
}

func (p *parser) stepOutsideEnvelope(l Line) error {
	switch l.Type {
	case LineBegin:
		if !p.isEnvelope(l.Name) {
			return &ParseError{Kind: ErrMisplacedBlock, Line: l.Number, Block: l.Name,
				Msg: fmt.Sprintf("found outside %s", p.cfg.Envelope.Kind)}
		}
		p.result.Envelope = &Record{Kind: l.Name, Line: l.Number}
		p.state = stateOutsideBlock
	case LineEnd:
		return &ParseError{Kind: ErrUnexpectedEnd, Line: l.Number, Block: l.Name}
	}
	return nil
}

func (p *parser) stepOutsideBlock(l Line) error {
	switch l.Type {
	case LineBegin:
		if p.isEnvelope(l.Name) {
			return &ParseError{Kind: ErrNestedBlock, Line: l.Number, Block: l.Name}
		}
		s, ok := p.schemas[l.Name]
		if !ok {
			return &ParseError{Kind: ErrUnknownBlock, Line: l.Number, Block: l.Name}
		}
		p.current = &Record{Kind: l.Name, Line: l.Number}
		p.schema = s
		p.state = stateInsideBlock
	case LineEnd:
		if p.isEnvelope(l.Name) {
			return p.closeEnvelope(l)
		}
		return &ParseError{Kind: ErrUnexpectedEnd, Line: l.Number, Block: l.Name}
	case LineProperty:
		// Only envelope properties live between blocks; anything else
		// outside a block is ignored.
		if p.cfg.Envelope != nil {
			return p.result.Envelope.add(Field{Name: l.Name, Value: l.Value, Line: l.Number})
		}
	}
	return nil
}

func (p *parser) stepInsideBlock(l Line) error {
	switch l.Type {
	case LineBegin:
		return &ParseError{Kind: ErrNestedBlock, Line: l.Number, Block: p.current.Kind,
			Msg: fmt.Sprintf("BEGIN:%s inside BEGIN:%s at line %d", l.Name, p.current.Kind, p.current.Line)}
	case LineEnd:
		if l.Name != p.current.Kind {
			return &ParseError{Kind: ErrUnterminatedBlock, Line: p.current.Line, Block: p.current.Kind,
				Msg: fmt.Sprintf("found END:%s at line %d", l.Name, l.Number)}
		}
		return p.closeBlock(l)
	case LineProperty:
		if name, ok := embeddedProperty(l.Value, p.schema); ok {
			return &ParseError{Kind: ErrMalformedLine, Line: l.Number, Block: p.current.Kind, Field: l.Name,
				Msg: fmt.Sprintf("more than one property per line (%s)", name)}
		}
		return p.current.add(Field{Name: l.Name, Value: l.Value, Line: l.Number})
	case LineInvalid:
		if p.linePolicy() == LinesStrict {
			return &ParseError{Kind: ErrMalformedLine, Line: l.Number, Block: p.current.Kind, Msg: l.Value}
		}
		p.log.Debug("skipping malformed line", "line", l.Number, "block", p.current.Kind, "text", l.Value)
	}
	return nil
}

func (p *parser) stepEnvelopeClosed(l Line) error {
	switch l.Type {
	case LineBegin:
		return &ParseError{Kind: ErrMisplacedBlock, Line: l.Number, Block: l.Name,
			Msg: fmt.Sprintf("found after END:%s", p.cfg.Envelope.Kind)}
	case LineEnd:
		return &ParseError{Kind: ErrUnexpectedEnd, Line: l.Number, Block: l.Name}
	}
	return nil
}

func (p *parser) linePolicy() LinePolicy {
	if p.cfg.Lines != LinesDefault {
		return p.cfg.Lines
	}
	if p.schema.Lines != LinesDefault {
		return p.schema.Lines
	}
	return LinesLenient
}

func (p *parser) closeBlock(l Line) error {
	rec, s := p.current, p.schema
	if len(rec.Fields) == 0 {
		return &ParseError{Kind: ErrEmptyBlock, Line: l.Number, Block: rec.Kind}
	}
	warnings, err := s.Validate(rec, p.cfg.Unrecognized)
	if err != nil {
		return err
	}
	key, ok, err := s.uniqueKey(rec)
	if err != nil {
		return newError(ErrInvalidFieldValue, rec.Line, rec.Kind, s.UniqueField, err)
	}
	if ok {
		seen := p.unique[rec.Kind]
		if seen == nil {
			seen = map[time.Time]int{}
			p.unique[rec.Kind] = seen
		}
		if first, dup := seen[key.Time()]; dup {
			return &ParseError{Kind: ErrUniquenessViolation, Line: rec.GetField(s.UniqueField).Line, Block: rec.Kind,
				Field: s.UniqueField, Msg: fmt.Sprintf("same value as %s at line %d", rec.Kind, first)}
		}
		seen[key.Time()] = rec.Line
	}
	p.warn(warnings)
	p.result.Records = append(p.result.Records, rec)
	p.current, p.schema = nil, nil
	p.state = stateOutsideBlock
	return nil
}

func (p *parser) closeEnvelope(l Line) error {
	env := p.result.Envelope
	warnings, err := p.cfg.Envelope.Validate(env, UnrecognizedDefault)
	if err != nil {
		return err
	}
	p.warn(warnings)
	p.state = stateEnvelopeClosed
	return nil
}

func (p *parser) warn(warnings []Warning) {
	for _, w := range warnings {
		p.log.Warn("unrecognized property", "line", w.Line, "block", w.Block, "field", w.Field)
	}
	p.result.Warnings = append(p.result.Warnings, warnings...)
}
