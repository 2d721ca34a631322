// Package chart maps dashboard aggregates to declarative chart specs and
// renders them as text, PNG, JSON, or YAML.
package chart

import (
	"sort"
	"strconv"

	"github.com/verte-zerg/injurydash/internal/model"
	"github.com/verte-zerg/injurydash/internal/stats"
)

// Kind is the chart type of a Spec.
type Kind string

// Supported chart kinds.
const (
	KindPie           Kind = "pie"
	KindBarHorizontal Kind = "bar-horizontal"
	KindLine          Kind = "line"
)

// Chart titles, in dashboard order.
const (
	TitleLocation  = "Places where the accident occurred"
	TitleDiagnosis = "Basic diagnosis of injury"
	TitleRate      = "Injuries per 10000 people"
	TitleBodyPart  = "Location of the injury on the body"
)

const pieHole = 0.3

var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Labels names the axes and the color dimension.
type Labels struct {
	X     string `json:"x,omitempty" yaml:"x,omitempty"`
	Y     string `json:"y,omitempty" yaml:"y,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Point is one chart value. Value is nil when undefined.
type Point struct {
	Label string   `json:"label" yaml:"label"`
	X     *float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Value *float64 `json:"value" yaml:"value"`
	Color string   `json:"color,omitempty" yaml:"color,omitempty"`
}

// Series is a named list of points.
type Series struct {
	Name   string  `json:"name" yaml:"name"`
	Color  string  `json:"color,omitempty" yaml:"color,omitempty"`
	Points []Point `json:"points" yaml:"points"`
}

// Spec is a renderer-independent chart description.
type Spec struct {
	Kind   Kind     `json:"kind" yaml:"kind"`
	Title  string   `json:"title" yaml:"title"`
	Labels Labels   `json:"labels" yaml:"labels"`
	Hole   float64  `json:"hole,omitempty" yaml:"hole,omitempty"`
	Series []Series `json:"series" yaml:"series"`
}

// Empty reports whether the chart has no points to draw.
func (s Spec) Empty() bool {
	for _, series := range s.Series {
		for _, p := range series.Points {
			if p.Value != nil {
				return false
			}
		}
	}
	return true
}

// Location builds the donut chart of accident places.
func Location(counts []stats.Count) Spec {
	points := countPoints(counts)
	for i := range points {
		points[i].Color = defaultColors[i%len(defaultColors)]
	}
	return Spec{
		Kind:   KindPie,
		Title:  TitleLocation,
		Labels: Labels{Color: "location"},
		Hole:   pieHole,
		Series: []Series{{Name: "location", Points: points}},
	}
}

// Diagnosis builds the horizontal bar chart of diagnoses.
func Diagnosis(counts []stats.Count) Spec {
	return barSpec(TitleDiagnosis, "diag", counts)
}

// BodyPart builds the horizontal bar chart of injured body parts.
func BodyPart(counts []stats.Count) Spec {
	return barSpec(TitleBodyPart, "body_part", counts)
}

// Rate builds the line chart of injuries per 10000 people by age, one series
// per sex. Undefined rates become nil points.
func Rate(points []stats.RatePoint) Spec {
	bySex := map[model.Sex]int{}
	series := make([]Series, 0, 2)
	for _, p := range points {
		idx, ok := bySex[p.Sex]
		if !ok {
			idx = len(series)
			bySex[p.Sex] = idx
			series = append(series, Series{Name: string(p.Sex), Points: []Point{}})
		}
		age := float64(p.Age)
		pt := Point{Label: strconv.Itoa(p.Age), X: &age}
		if p.Defined() {
			rate := p.Rate
			pt.Value = &rate
		}
		series[idx].Points = append(series[idx].Points, pt)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Name < series[j].Name
	})
	for i := range series {
		series[i].Color = defaultColors[i%len(defaultColors)]
	}
	return Spec{
		Kind:   KindLine,
		Title:  TitleRate,
		Labels: Labels{X: "age", Y: TitleRate, Color: "sex"},
		Series: series,
	}
}

func barSpec(title, label string, counts []stats.Count) Spec {
	return Spec{
		Kind:   KindBarHorizontal,
		Title:  title,
		Labels: Labels{X: "count", Y: label},
		Series: []Series{{Name: "count", Color: defaultColors[0], Points: countPoints(counts)}},
	}
}

func countPoints(counts []stats.Count) []Point {
	points := make([]Point, 0, len(counts))
	for _, c := range counts {
		v := float64(c.Count)
		points = append(points, Point{Label: c.Key, Value: &v})
	}
	return points
}
