package stats

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/injurydash/internal/dataset"
	"github.com/verte-zerg/injurydash/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rec(date time.Time, age int, sex model.Sex, location, diag, part string, code int) model.InjuryRecord {
	return model.InjuryRecord{
		TreatmentDate: date,
		Age:           age,
		Sex:           sex,
		Location:      location,
		Diagnosis:     diag,
		BodyPart:      part,
		ProductCode:   code,
	}
}

func sampleRecords() []model.InjuryRecord {
	return []model.InjuryRecord{
		rec(day(2017, 1, 1), 25, model.Female, "Home", "Fracture", "Ankle", 1842),
		rec(day(2017, 1, 2), 30, model.Male, "Home", "Strain Or Sprain", "Ankle", 1842),
		rec(day(2017, 1, 2), 30, model.Male, "Public", "Fracture", "Knee", 1842),
		rec(day(2017, 1, 5), 44, model.Female, "Street Or Highway", "Contusion Or Abrasion", "Head", 1807),
		rec(day(2017, 2, 1), 60, model.Male, "Home", "Fracture", "Lower Leg", 1842),
		rec(day(2017, 2, 3), 20, model.Female, "Home", "Laceration", "Finger", 1807),
		rec(day(2017, 2, 3), 20, model.Female, "School", "Fracture", "Wrist", 1807),
	}
}

type popMap map[model.AgeSex]int

func (p popMap) PopulationFor(key model.AgeSex) (int, bool) {
	v, ok := p[key]
	return v, ok
}

func fullCriteria() model.FilterCriteria {
	return model.FilterCriteria{DateStart: day(2000, 1, 1), DateEnd: day(2030, 1, 1), AgeMin: 0, AgeMax: 120}
}

func TestFilterDateAndAgeInclusive(t *testing.T) {
	c := model.FilterCriteria{DateStart: day(2017, 1, 2), DateEnd: day(2017, 1, 5), AgeMin: 30, AgeMax: 44}
	got, err := Filter(sampleRecords(), c)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, r := range got {
		assert.False(t, r.TreatmentDate.Before(c.DateStart))
		assert.False(t, r.TreatmentDate.After(c.DateEnd))
		assert.GreaterOrEqual(t, r.Age, 30)
		assert.LessOrEqual(t, r.Age, 44)
	}
}

func TestFilterSingleDay(t *testing.T) {
	d := day(2017, 1, 2)
	got, err := Filter(sampleRecords(), model.FilterCriteria{DateStart: d, DateEnd: d, AgeMin: 0, AgeMax: 120})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.True(t, r.TreatmentDate.Equal(d))
	}
}

func TestFilterRejectsInvertedRanges(t *testing.T) {
	_, err := Filter(sampleRecords(), model.FilterCriteria{DateStart: day(2017, 2, 1), DateEnd: day(2017, 1, 1), AgeMin: 0, AgeMax: 10})
	assert.True(t, errors.Is(err, ErrInvalidRange))

	_, err = Filter(sampleRecords(), model.FilterCriteria{DateStart: day(2017, 1, 1), DateEnd: day(2017, 2, 1), AgeMin: 50, AgeMax: 10})
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestForProduct(t *testing.T) {
	got := ForProduct(sampleRecords(), 1807)
	require.Len(t, got, 3)
	for _, r := range got {
		assert.Equal(t, 1807, r.ProductCode)
	}
	assert.Empty(t, ForProduct(sampleRecords(), 1))
}

func sumCounts(counts []Count) int {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return total
}

func TestCountTotalsMatchFilteredSize(t *testing.T) {
	records := sampleRecords()
	for _, c := range []model.FilterCriteria{
		fullCriteria(),
		{DateStart: day(2017, 1, 1), DateEnd: day(2017, 1, 31), AgeMin: 0, AgeMax: 120},
		{DateStart: day(2017, 1, 1), DateEnd: day(2017, 12, 31), AgeMin: 20, AgeMax: 30},
	} {
		filtered, err := Filter(records, c)
		require.NoError(t, err)
		assert.Equal(t, len(filtered), sumCounts(LocationCounts(filtered)))
		assert.Equal(t, len(filtered), sumCounts(DiagnosisCounts(filtered)))
		assert.Equal(t, len(filtered), sumCounts(BodyPartCounts(filtered)))
	}
}

func TestCountByOrdersByCountThenFirstSeen(t *testing.T) {
	got := DiagnosisCounts(sampleRecords())
	require.NotEmpty(t, got)
	assert.Equal(t, Count{Key: "Fracture", Count: 4}, got[0])
	assert.Equal(t, []string{"Strain Or Sprain", "Contusion Or Abrasion", "Laceration"},
		[]string{got[1].Key, got[2].Key, got[3].Key})
}

func TestInjuryRateSortedAndUnique(t *testing.T) {
	pop := popMap{
		{Age: 20, Sex: model.Female}: 2000,
		{Age: 25, Sex: model.Female}: 1000,
		{Age: 30, Sex: model.Male}:   4000,
		{Age: 44, Sex: model.Female}: 500,
		{Age: 60, Sex: model.Male}:   100,
	}
	points := InjuryRate(sampleRecords(), pop)
	require.Len(t, points, 5)

	seen := map[model.AgeSex]bool{}
	for i, p := range points {
		key := model.AgeSex{Age: p.Age, Sex: p.Sex}
		assert.False(t, seen[key], "duplicate key %v", key)
		seen[key] = true
		if i > 0 {
			assert.LessOrEqual(t, points[i-1].Age, p.Age)
		}
	}
	assert.Equal(t, 30, points[2].Age)
	assert.Equal(t, 2, points[2].Count)
	assert.InDelta(t, 5.0, points[2].Rate, 1e-9)
	assert.InDelta(t, 10.0, points[0].Rate, 1e-9, "two 20-year-old females over 2000")
}

func TestInjuryRateMissingPopulationIsNaN(t *testing.T) {
	points := InjuryRate(sampleRecords()[:1], popMap{})
	require.Len(t, points, 1)
	assert.True(t, math.IsNaN(points[0].Rate))
	assert.False(t, points[0].Defined())
	assert.Equal(t, 1, points[0].Count)

	points = InjuryRate(sampleRecords()[:1], popMap{{Age: 25, Sex: model.Female}: 0})
	assert.False(t, points[0].Defined(), "zero population has no rate")
}

func TestMostFrequentProductTieBreaksFirstSeen(t *testing.T) {
	records := []model.InjuryRecord{
		{ProductCode: 676}, {ProductCode: 1842}, {ProductCode: 1842}, {ProductCode: 676}, {ProductCode: 1807},
	}
	code, count, ok := MostFrequentProduct(records)
	assert.True(t, ok)
	assert.Equal(t, 676, code)
	assert.Equal(t, 2, count)

	_, _, ok = MostFrequentProduct(nil)
	assert.False(t, ok)
}

func TestEmptySelectionAggregatesAreEmpty(t *testing.T) {
	c := model.FilterCriteria{DateStart: day(2017, 1, 1), DateEnd: day(2017, 12, 31), AgeMin: 100, AgeMax: 110}
	filtered, err := Filter(sampleRecords(), c)
	require.NoError(t, err)
	assert.Empty(t, filtered)
	assert.Empty(t, LocationCounts(filtered))
	assert.Empty(t, DiagnosisCounts(filtered))
	assert.Empty(t, BodyPartCounts(filtered))
	assert.Empty(t, InjuryRate(filtered, popMap{}))
}

func TestBuildReportSingleRecordScenario(t *testing.T) {
	st, err := dataset.New(
		[]model.InjuryRecord{rec(day(2020, 1, 1), 30, model.Male, "home", "fracture", "arm", 1842)},
		[]model.ProductEntry{{Code: 1842, Title: "stairs or steps"}},
		[]model.PopulationEntry{{Age: 30, Sex: model.Male, Population: 1000}},
	)
	require.NoError(t, err)

	scope := NewScope(st, model.ProductFixed, 0)
	assert.Equal(t, 1842, scope.ProductCode)
	assert.Equal(t, "stairs or steps", scope.TopProductTitle)

	d := day(2020, 1, 1)
	report, err := BuildReport(st, scope, model.FilterCriteria{DateStart: d, DateEnd: d, AgeMin: 30, AgeMax: 30})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Records)
	assert.Equal(t, []Count{{Key: "home", Count: 1}}, report.Locations)
	assert.Equal(t, []Count{{Key: "fracture", Count: 1}}, report.Diagnoses)
	assert.Equal(t, []Count{{Key: "arm", Count: 1}}, report.BodyParts)
	require.Len(t, report.Rates, 1)
	assert.Equal(t, 30, report.Rates[0].Age)
	assert.Equal(t, model.Male, report.Rates[0].Sex)
	assert.InDelta(t, 10.0, report.Rates[0].Rate, 1e-9)
}

func TestNewScopeProductSelection(t *testing.T) {
	st, err := dataset.New(sampleRecords(), []model.ProductEntry{
		{Code: 1842, Title: "stairs or steps"},
	}, nil)
	require.NoError(t, err)

	fixed := NewScope(st, model.ProductFixed, 0)
	assert.Equal(t, DefaultProductCode, fixed.ProductCode)
	assert.Len(t, fixed.Records, 4)
	assert.Equal(t, 25, fixed.MinAge)
	assert.Equal(t, 60, fixed.MaxAge)
	assert.Equal(t, day(2017, 1, 1), fixed.MinDate)
	assert.Equal(t, day(2017, 2, 3), fixed.MaxDate)

	custom := NewScope(st, model.ProductFixed, 1807)
	assert.Equal(t, 1807, custom.ProductCode)
	assert.Equal(t, dataset.UnknownTitle, custom.ProductTitle)
	assert.Equal(t, 20, custom.MinAge)

	top := NewScope(st, model.ProductMostFrequent, 1807)
	assert.Equal(t, 1842, top.ProductCode)
	assert.Equal(t, 4, top.TopProductCount)
}

func TestScopeDefaultCriteriaClampsAgeWindow(t *testing.T) {
	scope := Scope{MinDate: day(2017, 1, 1), MaxDate: day(2017, 12, 31), MinAge: 25, MaxAge: 40}
	c := scope.DefaultCriteria(DefaultAgeMin, DefaultAgeMax)
	assert.Equal(t, 25, c.AgeMin)
	assert.Equal(t, 40, c.AgeMax)
	assert.Equal(t, scope.MinDate, c.DateStart)
	assert.Equal(t, scope.MaxDate, c.DateEnd)

	clamped := scope.Clamp(model.FilterCriteria{DateStart: day(2010, 1, 1), DateEnd: day(2030, 1, 1), AgeMin: 0, AgeMax: 99})
	assert.Equal(t, scope.MinDate, clamped.DateStart)
	assert.Equal(t, scope.MaxDate, clamped.DateEnd)
	assert.Equal(t, 25, clamped.AgeMin)
	assert.Equal(t, 40, clamped.AgeMax)
}

func TestScopeClampKeepsDisjointRanges(t *testing.T) {
	scope := Scope{MinDate: day(2017, 1, 1), MaxDate: day(2017, 12, 31), MinAge: 25, MaxAge: 40}

	before := model.FilterCriteria{DateStart: day(2010, 1, 1), DateEnd: day(2010, 2, 1), AgeMin: 25, AgeMax: 40}
	c := scope.Clamp(before)
	assert.Equal(t, before.DateStart, c.DateStart)
	assert.Equal(t, before.DateEnd, c.DateEnd)
	require.NoError(t, ValidateCriteria(c))

	above := model.FilterCriteria{DateStart: day(2017, 1, 1), DateEnd: day(2017, 12, 31), AgeMin: 100, AgeMax: 120}
	c = scope.Clamp(above)
	assert.Equal(t, 100, c.AgeMin)
	assert.Equal(t, 120, c.AgeMax)

	overlap := scope.Clamp(model.FilterCriteria{DateStart: day(2017, 6, 1), DateEnd: day(2018, 6, 1), AgeMin: 35, AgeMax: 90})
	assert.Equal(t, day(2017, 6, 1), overlap.DateStart)
	assert.Equal(t, scope.MaxDate, overlap.DateEnd)
	assert.Equal(t, 35, overlap.AgeMin)
	assert.Equal(t, 40, overlap.AgeMax)
}

func TestBuildReportOutsideScopeIsEmpty(t *testing.T) {
	st, err := dataset.New(sampleRecords(), nil, nil)
	require.NoError(t, err)
	scope := NewScope(st, model.ProductFixed, 0)

	for _, c := range []model.FilterCriteria{
		{DateStart: day(2010, 1, 1), DateEnd: day(2010, 2, 1), AgeMin: 0, AgeMax: 120},
		{DateStart: day(2017, 1, 1), DateEnd: day(2017, 2, 3), AgeMin: 100, AgeMax: 120},
	} {
		report, err := BuildReport(st, scope, scope.Clamp(c))
		require.NoError(t, err)
		assert.Zero(t, report.Records)
		assert.Empty(t, report.Locations)
		assert.Empty(t, report.Rates)
	}
}
