// Package stats filters injury records and computes the dashboard aggregates.
package stats

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/injurydash/internal/model"
)

// ErrInvalidRange is returned when a filter bound is inverted.
var ErrInvalidRange = errors.New("invalid range")

// ValidateCriteria rejects inverted date or age bounds.
func ValidateCriteria(c model.FilterCriteria) error {
	if c.DateStart.After(c.DateEnd) {
		return fmt.Errorf("%w: start date %s is after end date %s", ErrInvalidRange,
			c.DateStart.Format("2006-01-02"), c.DateEnd.Format("2006-01-02"))
	}
	if c.AgeMin > c.AgeMax {
		return fmt.Errorf("%w: minimum age %d is above maximum age %d", ErrInvalidRange, c.AgeMin, c.AgeMax)
	}
	return nil
}

// ForProduct returns the records for a single product code, in input order.
func ForProduct(records []model.InjuryRecord, code int) []model.InjuryRecord {
	out := make([]model.InjuryRecord, 0)
	for _, r := range records {
		if r.ProductCode == code {
			out = append(out, r)
		}
	}
	return out
}

// Filter returns the records treated inside the date window whose age lies in
// the age window. Both windows are inclusive.
func Filter(records []model.InjuryRecord, c model.FilterCriteria) ([]model.InjuryRecord, error) {
	if err := ValidateCriteria(c); err != nil {
		return nil, err
	}
	out := make([]model.InjuryRecord, 0)
	for _, r := range records {
		if r.TreatmentDate.Before(c.DateStart) || r.TreatmentDate.After(c.DateEnd) {
			continue
		}
		if r.Age < c.AgeMin || r.Age > c.AgeMax {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
