package dataset

import (
	"fmt"

	"github.com/verte-zerg/injurydash/internal/model"
)

// UnknownTitle is shown when a product code has no products.csv entry.
const UnknownTitle = "Unknown"

// Store holds the three loaded tables. It is never mutated after New returns,
// so it can be shared freely between readers.
type Store struct {
	injuries   []model.InjuryRecord
	products   []model.ProductEntry
	population []model.PopulationEntry

	titles   map[int]string
	popIndex map[model.AgeSex]int
}

// New validates key uniqueness and builds a Store. The slices are owned by the
// Store afterwards.
func New(injuries []model.InjuryRecord, products []model.ProductEntry, population []model.PopulationEntry) (*Store, error) {
	titles := make(map[int]string, len(products))
	for _, p := range products {
		if _, ok := titles[p.Code]; ok {
			return nil, &LoadError{File: ProductsFile, Column: "prod_code", Err: fmt.Errorf("%w: product code %d", ErrDuplicateKey, p.Code)}
		}
		titles[p.Code] = p.Title
	}
	popIndex := make(map[model.AgeSex]int, len(population))
	for _, p := range population {
		key := model.AgeSex{Age: p.Age, Sex: p.Sex}
		if _, ok := popIndex[key]; ok {
			return nil, &LoadError{File: PopulationFile, Err: fmt.Errorf("%w: age %d sex %s", ErrDuplicateKey, p.Age, p.Sex)}
		}
		popIndex[key] = p.Population
	}
	return &Store{
		injuries:   injuries,
		products:   products,
		population: population,
		titles:     titles,
		popIndex:   popIndex,
	}, nil
}

// Injuries returns all injury records. Callers must not modify the slice.
func (s *Store) Injuries() []model.InjuryRecord {
	return s.injuries
}

// Products returns the product table in file order.
func (s *Store) Products() []model.ProductEntry {
	return s.products
}

// Population returns the population table in file order.
func (s *Store) Population() []model.PopulationEntry {
	return s.population
}

// PopulationFor returns the population of an (age, sex) group.
func (s *Store) PopulationFor(key model.AgeSex) (int, bool) {
	v, ok := s.popIndex[key]
	return v, ok
}

// ProductTitle returns the title for a product code or UnknownTitle.
func (s *Store) ProductTitle(code int) string {
	if title, ok := s.titles[code]; ok {
		return title
	}
	return UnknownTitle
}
