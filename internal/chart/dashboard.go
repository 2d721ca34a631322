package chart

import (
	"github.com/verte-zerg/injurydash/internal/stats"
)

const dateLayout = "2006-01-02"

// Product identifies a product code and its title.
type Product struct {
	Code  int    `json:"code" yaml:"code"`
	Title string `json:"title" yaml:"title"`
	Count int    `json:"count,omitempty" yaml:"count,omitempty"`
}

// Selection echoes the filter a dashboard was rendered with.
type Selection struct {
	From   string `json:"from" yaml:"from"`
	To     string `json:"to" yaml:"to"`
	AgeMin int    `json:"age_min" yaml:"age_min"`
	AgeMax int    `json:"age_max" yaml:"age_max"`
}

// Dashboard is the full output of one render: the headline product and the
// four chart specs.
type Dashboard struct {
	ID         string    `json:"id,omitempty" yaml:"id,omitempty"`
	TopProduct Product   `json:"top_product" yaml:"top_product"`
	Product    Product   `json:"product" yaml:"product"`
	Selection  Selection `json:"selection" yaml:"selection"`
	Records    int       `json:"records" yaml:"records"`
	Charts     []Spec    `json:"charts" yaml:"charts"`
}

// Headline is the text readout shown above the charts.
func (d Dashboard) Headline() string {
	return "Product causing the most injuries: " + d.TopProduct.Title
}

// Build converts a report into chart specs in dashboard order: location,
// diagnosis, rate, body part.
func Build(r stats.Report) Dashboard {
	return Dashboard{
		TopProduct: Product{
			Code:  r.Scope.TopProductCode,
			Title: r.Scope.TopProductTitle,
			Count: r.Scope.TopProductCount,
		},
		Product: Product{
			Code:  r.Scope.ProductCode,
			Title: r.Scope.ProductTitle,
			Count: len(r.Scope.Records),
		},
		Selection: Selection{
			From:   r.Criteria.DateStart.Format(dateLayout),
			To:     r.Criteria.DateEnd.Format(dateLayout),
			AgeMin: r.Criteria.AgeMin,
			AgeMax: r.Criteria.AgeMax,
		},
		Records: r.Records,
		Charts: []Spec{
			Location(r.Locations),
			Diagnosis(r.Diagnoses),
			Rate(r.Rates),
			BodyPart(r.BodyParts),
		},
	}
}
