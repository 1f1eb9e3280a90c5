package blockrec

import (
	"fmt"
	"slices"
)

// SortRecords returns a copy of records ordered by the DateTime in field,
// earliest first. The comparison uses the decoded calendar value, and records
// with equal values keep their input order. Every record must carry a valid
// token in field.
func SortRecords(records []*Record, field string) ([]*Record, error) {
	type keyed struct {
		at  DateTime
		rec *Record
	}
	ks := make([]keyed, len(records))
	for i, r := range records {
		dt, err := r.Time(field)
		if err != nil {
			return nil, fmt.Errorf("sorting %s at line %d: %w", r.Kind, r.Line, err)
		}
		ks[i] = keyed{at: dt, rec: r}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		return a.at.Compare(b.at)
	})
	out := make([]*Record, len(ks))
	for i, k := range ks {
		out[i] = k.rec
	}
	return out, nil
}
