// Package booking keeps one-per-day appointments in a calendar file.
package booking

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	blockrec "github.com/arran4/golang-blockrec"
	"github.com/arran4/golang-blockrec/internal/atomicfile"
)

// FieldConfirmationCode holds the code handed out by Reserve.
const FieldConfirmationCode = "X-CONFIRMATION-CODE"

var (
	ErrDateTaken           = errors.New("date is already booked")
	ErrReservationNotFound = errors.New("no matching reservation")
	ErrNoAttendee          = errors.New("attendee is empty")
)

// WithProductID names the service in the PRODID of a new calendar file.
type WithProductID string

// Schema is the VEVENT schema with the confirmation code allowed.
func Schema() *blockrec.Schema {
	return blockrec.VEventSchema().With(FieldConfirmationCode)
}

// Reservation is the booking view of one VEVENT.
type Reservation struct {
	Attendee string
	Start    blockrec.DateTime
	Code     string
	Status   string
}

// Book is an appointment calendar backed by a file. It is not safe for
// concurrent use.
type Book struct {
	path   string
	cal    *blockrec.Calendar
	schema *blockrec.Schema
	log    *slog.Logger
}

// Open loads the calendar at path. A missing or blank file is an empty book.
// ops may hold a *slog.Logger and a WithProductID.
func Open(path string, ops ...any) (*Book, error) {
	b := &Book{
		path:   path,
		schema: Schema(),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	productID := "blockrec"
	for opi, op := range ops {
		switch op := op.(type) {
		case *slog.Logger:
			b.log = op
		case WithProductID:
			productID = string(op)
		default:
			return nil, fmt.Errorf("unknown op %d of type %s", opi, reflect.TypeOf(op))
		}
	}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		b.log.Debug("starting empty calendar", "path", path)
		b.cal = blockrec.NewCalendarFor(productID)
		return b, nil
	}

	b.cal, err = blockrec.ParseCalendar(string(data), b.schema, b.log)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	b.log.Debug("loaded calendar", "path", path, "events", len(b.cal.Events))
	return b, nil
}

// Path returns the file the book saves to.
func (b *Book) Path() string {
	return b.path
}

// Calendar returns the underlying calendar.
func (b *Book) Calendar() *blockrec.Calendar {
	return b.cal
}

func active(e *blockrec.Record) bool {
	return e.Value(blockrec.FieldStatus) != blockrec.StatusCancelled
}

// bookedDays returns the YYYYMMDD days that hold an active reservation.
func (b *Book) bookedDays() map[string]bool {
	days := map[string]bool{}
	for _, e := range b.cal.Events {
		if !active(e) {
			continue
		}
		if start, err := e.Time(blockrec.FieldDtStart); err == nil {
			days[start.Date()] = true
		}
	}
	return days
}

// Reserve books start for attendee and returns the confirmation code. Only
// one active reservation may exist per day. stamp is the booking time and
// must not be after start.
func (b *Book) Reserve(attendee string, start, stamp blockrec.DateTime) (string, error) {
	attendee = strings.TrimSpace(attendee)
	if attendee == "" {
		return "", ErrNoAttendee
	}
	if b.bookedDays()[start.Date()] {
		return "", fmt.Errorf("%w: %s", ErrDateTaken, start.Date())
	}

	code := uuid.NewString()
	e := blockrec.NewRecord(blockrec.KindVEvent)
	e.Set(blockrec.FieldAttendee, attendee)
	e.Set(blockrec.FieldDtStart, start.String())
	e.Set(blockrec.FieldDtStamp, stamp.String())
	e.Set(blockrec.FieldMethod, blockrec.MethodRequest)
	e.Set(blockrec.FieldStatus, blockrec.StatusConfirmed)
	e.Set(FieldConfirmationCode, code)
	for _, f := range e.Fields {
		if err := blockrec.CheckValue(f.Value, b.schema); err != nil {
			return "", fmt.Errorf("%s %q: %w", f.Name, f.Value, err)
		}
	}
	if _, err := b.schema.Validate(e, blockrec.UnrecognizedDefault); err != nil {
		return "", err
	}

	// A cancelled event at the same instant would collide with the new one
	// on DTSTART.
	b.cal.RemoveEvents(func(old *blockrec.Record) bool {
		return !active(old) && old.Value(blockrec.FieldDtStart) == start.String()
	})
	b.cal.AddEvent(e)
	b.log.Info("reserved", "attendee", attendee, "start", start.String(), "code", code)
	return code, nil
}

// Lookup returns the active reservations of attendee starting at or after
// from, earliest first. Attendees match ignoring case.
func (b *Book) Lookup(attendee string, from blockrec.DateTime) ([]Reservation, error) {
	var out []Reservation
	for _, e := range b.cal.EventsFor(strings.TrimSpace(attendee)) {
		if !active(e) {
			continue
		}
		r, err := reservationOf(e)
		if err != nil {
			return nil, err
		}
		if r.Start.Before(from) {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(x, y Reservation) int {
		return x.Start.Compare(y.Start)
	})
	return out, nil
}

// Cancel marks the active reservation of attendee with code as cancelled.
func (b *Book) Cancel(attendee, code string) error {
	for _, e := range b.cal.EventsFor(strings.TrimSpace(attendee)) {
		if active(e) && e.Value(FieldConfirmationCode) == strings.TrimSpace(code) {
			e.Set(blockrec.FieldStatus, blockrec.StatusCancelled)
			b.log.Info("cancelled", "attendee", attendee, "code", code)
			return nil
		}
	}
	return ErrReservationNotFound
}

// NextAvailable returns the first n days on or after from's day with no
// active reservation, each at midnight.
func (b *Book) NextAvailable(from blockrec.DateTime, n int) []blockrec.DateTime {
	if n <= 0 {
		return nil
	}
	booked := b.bookedDays()
	t := from.Time()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]blockrec.DateTime, 0, n)
	for len(out) < n {
		dt := blockrec.NewDateTime(day)
		if !booked[dt.Date()] {
			out = append(out, dt)
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}

// Reservations returns every event in file order, cancelled ones included.
func (b *Book) Reservations() ([]Reservation, error) {
	out := make([]Reservation, 0, len(b.cal.Events))
	for _, e := range b.cal.Events {
		r, err := reservationOf(e)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Save writes the calendar back to its file atomically.
func (b *Book) Save() error {
	data := &strings.Builder{}
	if err := b.cal.SerializeTo(data, blockrec.WithNewLineWindows); err != nil {
		return fmt.Errorf("saving %s: %w", b.path, err)
	}
	if err := atomicfile.WriteFile(b.path, []byte(data.String()), 0o644); err != nil {
		return fmt.Errorf("saving %s: %w", b.path, err)
	}
	b.log.Debug("saved calendar", "path", b.path, "events", len(b.cal.Events))
	return nil
}

func reservationOf(e *blockrec.Record) (Reservation, error) {
	start, err := e.Time(blockrec.FieldDtStart)
	if err != nil {
		return Reservation{}, fmt.Errorf("event at line %d: %w", e.Line, err)
	}
	return Reservation{
		Attendee: e.Value(blockrec.FieldAttendee),
		Start:    start,
		Code:     e.Value(FieldConfirmationCode),
		Status:   e.Value(blockrec.FieldStatus),
	}, nil
}
