package stats

import (
	"time"

	"github.com/verte-zerg/injurydash/internal/dataset"
	"github.com/verte-zerg/injurydash/internal/model"
)

// DefaultProductCode is the product analyzed unless configured otherwise
// (1842: stairs or steps).
const DefaultProductCode = 1842

// Default age window of the dashboard.
const (
	DefaultAgeMin = 20
	DefaultAgeMax = 45
)

// Scope is the product subset a dashboard session works on, together with the
// bounds its controls may move within.
type Scope struct {
	ProductCode  int
	ProductTitle string

	TopProductCode  int
	TopProductTitle string
	TopProductCount int

	Records []model.InjuryRecord

	MinDate time.Time
	MaxDate time.Time
	MinAge  int
	MaxAge  int
}

// NewScope selects the analyzed product and computes control bounds. Date bounds
// come from the full injuries table; age bounds from the product subset.
func NewScope(st *dataset.Store, mode model.ProductMode, code int) Scope {
	all := st.Injuries()
	topCode, topCount, hasTop := MostFrequentProduct(all)

	scope := Scope{}
	if hasTop {
		scope.TopProductCode = topCode
		scope.TopProductCount = topCount
		scope.TopProductTitle = st.ProductTitle(topCode)
	} else {
		scope.TopProductTitle = dataset.UnknownTitle
	}

	switch {
	case mode == model.ProductMostFrequent && hasTop:
		scope.ProductCode = topCode
	case code != 0:
		scope.ProductCode = code
	default:
		scope.ProductCode = DefaultProductCode
	}
	scope.ProductTitle = st.ProductTitle(scope.ProductCode)
	scope.Records = ForProduct(all, scope.ProductCode)

	scope.MinDate, scope.MaxDate, _ = DateBounds(all)
	scope.MinAge, scope.MaxAge, _ = AgeBounds(scope.Records)
	return scope
}

// DefaultCriteria covers the full date range and the given age window clamped
// into the scope's age bounds.
func (s Scope) DefaultCriteria(ageMin, ageMax int) model.FilterCriteria {
	if ageMin > ageMax {
		ageMin, ageMax = DefaultAgeMin, DefaultAgeMax
	}
	return s.Clamp(model.FilterCriteria{
		DateStart: s.MinDate,
		DateEnd:   s.MaxDate,
		AgeMin:    ageMin,
		AgeMax:    ageMax,
	})
}

// Clamp moves criteria bounds inside the scope. A range that does not overlap
// the scope bounds is left as it is, so it selects nothing instead of
// collapsing onto the nearest bound. Inverted bounds are left as they are so
// that validation still rejects them.
func (s Scope) Clamp(c model.FilterCriteria) model.FilterCriteria {
	if !c.DateEnd.Before(s.MinDate) && !c.DateStart.After(s.MaxDate) {
		if c.DateStart.Before(s.MinDate) {
			c.DateStart = s.MinDate
		}
		if c.DateEnd.After(s.MaxDate) {
			c.DateEnd = s.MaxDate
		}
	}
	if c.AgeMax >= s.MinAge && c.AgeMin <= s.MaxAge {
		c.AgeMin = clampInt(c.AgeMin, s.MinAge, s.MaxAge)
		c.AgeMax = clampInt(c.AgeMax, s.MinAge, s.MaxAge)
	}
	return c
}

// Report contains precomputed aggregates for one dashboard render.
type Report struct {
	Scope    Scope
	Criteria model.FilterCriteria
	Records  int

	Locations []Count
	Diagnoses []Count
	BodyParts []Count
	Rates     []RatePoint
}

// BuildReport filters the scope's records by criteria and runs all aggregators.
func BuildReport(pop PopulationLookup, scope Scope, c model.FilterCriteria) (Report, error) {
	filtered, err := Filter(scope.Records, c)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Scope:     scope,
		Criteria:  c,
		Records:   len(filtered),
		Locations: LocationCounts(filtered),
		Diagnoses: DiagnosisCounts(filtered),
		BodyParts: BodyPartCounts(filtered),
		Rates:     InjuryRate(filtered, pop),
	}, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
