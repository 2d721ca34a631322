// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Sex is the recorded sex of a patient or population group.
type Sex string

// Known sex values.
const (
	Female Sex = "female"
	Male   Sex = "male"
)

// ParseSex converts a CSV value into a Sex.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "female", "f":
		return Female, nil
	case "male", "m":
		return Male, nil
	default:
		return "", fmt.Errorf("unknown sex %q", s)
	}
}

// InjuryRecord is one treated injury case.
type InjuryRecord struct {
	TreatmentDate time.Time
	Age           int
	Sex           Sex
	Race          string
	BodyPart      string
	Diagnosis     string
	Location      string
	ProductCode   int
	Weight        float64
	Narrative     string
}

// ProductEntry maps a product code to its title.
type ProductEntry struct {
	Code  int
	Title string
}

// PopulationEntry is the population count for one (age, sex) group.
type PopulationEntry struct {
	Age        int
	Sex        Sex
	Population int
}

// AgeSex keys population and rate groups.
type AgeSex struct {
	Age int
	Sex Sex
}

// FilterCriteria narrows injuries to a date and age window. Bounds are inclusive.
type FilterCriteria struct {
	DateStart time.Time
	DateEnd   time.Time
	AgeMin    int
	AgeMax    int
}

// ProductMode selects how the analyzed product code is chosen.
type ProductMode string

// Product selection modes.
const (
	ProductFixed        ProductMode = "fixed"
	ProductMostFrequent ProductMode = "most-frequent"
)

// DashboardConfig defines the inputs and defaults for a dashboard session.
type DashboardConfig struct {
	DataDir     string
	DBPath      string
	ProductMode ProductMode
	ProductCode int
	AgeMin      int
	AgeMax      int
}

// ExportConfig defines a single non-interactive dashboard render.
type ExportConfig struct {
	Dashboard DashboardConfig
	From      *time.Time
	To        *time.Time
	Format    string
	OutPath   string
	PNGDir    string
}
