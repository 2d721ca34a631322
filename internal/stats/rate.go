package stats

import (
	"math"
	"sort"

	"github.com/verte-zerg/injurydash/internal/model"
)

// RatePer is the population unit for injury rates.
const RatePer = 10000

// PopulationLookup resolves the population of an (age, sex) group.
type PopulationLookup interface {
	PopulationFor(key model.AgeSex) (int, bool)
}

// RatePoint is the injury rate of one (age, sex) group. Rate is NaN when the
// group has no usable population.
type RatePoint struct {
	Age        int
	Sex        model.Sex
	Count      int
	Population int
	Rate       float64
}

// Defined reports whether the point has a rate.
func (p RatePoint) Defined() bool {
	return !math.IsNaN(p.Rate)
}

// InjuryRate groups records by (age, sex) and divides by the matching
// population, per RatePer people. Points are ordered by age, then sex.
func InjuryRate(records []model.InjuryRecord, pop PopulationLookup) []RatePoint {
	counts := map[model.AgeSex]int{}
	for _, r := range records {
		counts[model.AgeSex{Age: r.Age, Sex: r.Sex}]++
	}
	out := make([]RatePoint, 0, len(counts))
	for key, n := range counts {
		p := RatePoint{Age: key.Age, Sex: key.Sex, Count: n, Rate: math.NaN()}
		if size, ok := pop.PopulationFor(key); ok {
			p.Population = size
			if size > 0 {
				p.Rate = float64(n) / float64(size) * RatePer
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Age == out[j].Age {
			return out[i].Sex < out[j].Sex
		}
		return out[i].Age < out[j].Age
	})
	return out
}
