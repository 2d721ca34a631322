package stats

import (
	"time"

	"github.com/verte-zerg/injurydash/internal/model"
)

// MostFrequentProduct returns the product code with the most records. Ties go
// to the code encountered first.
func MostFrequentProduct(records []model.InjuryRecord) (code, count int, ok bool) {
	counts := map[int]int{}
	order := make([]int, 0)
	for _, r := range records {
		if _, seen := counts[r.ProductCode]; !seen {
			order = append(order, r.ProductCode)
		}
		counts[r.ProductCode]++
	}
	for _, c := range order {
		if counts[c] > count {
			code, count, ok = c, counts[c], true
		}
	}
	return code, count, ok
}

// DateBounds returns the earliest and latest treatment dates.
func DateBounds(records []model.InjuryRecord) (minDate, maxDate time.Time, ok bool) {
	for i, r := range records {
		if i == 0 || r.TreatmentDate.Before(minDate) {
			minDate = r.TreatmentDate
		}
		if i == 0 || r.TreatmentDate.After(maxDate) {
			maxDate = r.TreatmentDate
		}
	}
	return minDate, maxDate, len(records) > 0
}

// AgeBounds returns the youngest and oldest ages.
func AgeBounds(records []model.InjuryRecord) (minAge, maxAge int, ok bool) {
	for i, r := range records {
		if i == 0 || r.Age < minAge {
			minAge = r.Age
		}
		if i == 0 || r.Age > maxAge {
			maxAge = r.Age
		}
	}
	return minAge, maxAge, len(records) > 0
}
