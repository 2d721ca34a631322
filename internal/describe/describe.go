// Package describe holds the dataset documentation shown in the Datasets view
// and renders head previews of the loaded tables.
package describe

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/verte-zerg/injurydash/internal/dataset"
)

// DefaultRows is the number of preview rows per table.
const DefaultRows = 5

// Purpose describes what the injury data is for.
const Purpose = "The dataset is used for analyzing injury trends, identifying common causes of injuries, " +
	"and understanding demographic patterns related to injury incidents. It can be valuable for public " +
	"health officials, safety regulators, and researchers focused on injury prevention and safety improvements."

// Use is one potential use of the data.
type Use struct {
	Name string
	Text string
}

// PotentialUses lists what the data can be used for.
var PotentialUses = []Use{
	{Name: "Trend Analysis", Text: "Identifying trends over time in injury incidents."},
	{Name: "Demographic Studies", Text: "Analyzing how injuries affect different age groups, and genders."},
	{Name: "Safety Improvements", Text: "Identifying products or locations that are frequently associated with injuries to improve safety regulations and standards."},
	{Name: "Healthcare Research", Text: "Understanding the types of injuries that are most common and their diagnoses for better healthcare planning and resource allocation."},
}

// Column documents one CSV column.
type Column struct {
	Name string
	Doc  string
}

// Table documents one input file.
type Table struct {
	File    string
	Summary string
	Columns []Column
}

// Tables documents the three input files in display order.
var Tables = []Table{
	{
		File: dataset.InjuriesFile,
		Summary: "The dataset provides a comprehensive view of injury incidents and can be instrumental in developing " +
			"strategies for injury prevention and improving public health and safety measures. Each row represents a " +
			"single injury case with various attributes describing the circumstances, demographics, and specifics of the injury.",
		Columns: []Column{
			{Name: "trmt_date", Doc: "The date when the injury treatment occurred."},
			{Name: "age", Doc: "The age of the individual who sustained the injury."},
			{Name: "sex", Doc: "The gender of the individual (male or female)."},
			{Name: "race", Doc: "The race of the individual."},
			{Name: "body_part", Doc: "The specific part of the body that was injured."},
			{Name: "diag", Doc: "The diagnosis given for the injury."},
			{Name: "location", Doc: "The location where the injury took place (e.g., home, work, school)."},
			{Name: "prod_code", Doc: "A product code associated with the injury, indicating the product involved in the incident."},
			{Name: "weight", Doc: "The weight of the individual."},
			{Name: "narrative", Doc: "A narrative description providing additional context or details about the injury."},
		},
	},
	{
		File:    dataset.ProductsFile,
		Summary: "The dataset contains information about products, including their titles and associated codes.",
		Columns: []Column{
			{Name: "prod_code", Doc: "Product code."},
			{Name: "title", Doc: "Title or description of the product."},
		},
	},
	{
		File:    dataset.PopulationFile,
		Summary: "The dataset provides demographic information, specifically the population counts segmented by age and sex.",
		Columns: []Column{
			{Name: "age", Doc: "Age of the population group."},
			{Name: "sex", Doc: "Gender of the population group."},
			{Name: "population", Doc: "The count of individuals in that age and sex group."},
		},
	},
}

// Options controls Render.
type Options struct {
	Rows  int
	Color bool
}

// Preview returns the first rows of a table formatted as aligned text lines,
// header first. Unknown files yield nil.
func Preview(st *dataset.Store, file string, rows int) []string {
	if rows <= 0 {
		rows = DefaultRows
	}
	switch file {
	case dataset.InjuriesFile:
		p := newPreview(columnNames(Tables[0]), 1, 7, 8)
		for _, r := range head(st.Injuries(), rows) {
			p.add(
				r.TreatmentDate.Format("2006-01-02"),
				strconv.Itoa(r.Age),
				string(r.Sex),
				r.Race,
				r.BodyPart,
				r.Diagnosis,
				r.Location,
				strconv.Itoa(r.ProductCode),
				strconv.FormatFloat(r.Weight, 'f', 2, 64),
				r.Narrative,
			)
		}
		return p.lines()
	case dataset.ProductsFile:
		p := newPreview(columnNames(Tables[1]), 0)
		for _, e := range head(st.Products(), rows) {
			p.add(strconv.Itoa(e.Code), e.Title)
		}
		return p.lines()
	case dataset.PopulationFile:
		p := newPreview(columnNames(Tables[2]), 0, 2)
		for _, e := range head(st.Population(), rows) {
			p.add(strconv.Itoa(e.Age), string(e.Sex), strconv.Itoa(e.Population))
		}
		return p.lines()
	default:
		return nil
	}
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// Render writes the purpose, the potential uses, and for each table its
// summary, column docs, and a head preview.
func Render(w io.Writer, st *dataset.Store, opts Options) error {
	heading := color.New(color.FgYellow, color.Bold)
	name := color.New(color.FgCyan)
	faint := color.New(color.Faint)
	for _, c := range []*color.Color{heading, name, faint} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var b strings.Builder
	b.WriteString(heading.Sprint("Purpose") + "\n")
	b.WriteString(Purpose + "\n\n")
	b.WriteString(heading.Sprint("Potential Uses") + "\n")
	for _, u := range PotentialUses {
		fmt.Fprintf(&b, "  %s: %s\n", name.Sprint(u.Name), u.Text)
	}
	for _, t := range Tables {
		b.WriteString("\n" + heading.Sprint(t.File) + "\n")
		b.WriteString(t.Summary + "\n")
		b.WriteString("Columns:\n")
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "  %s: %s\n", name.Sprint(c.Name), c.Doc)
		}
		b.WriteString("\n")
		lines := Preview(st, t.File, opts.Rows)
		if len(lines) <= 1 {
			b.WriteString(faint.Sprint("(no rows)") + "\n")
			continue
		}
		b.WriteString(faint.Sprint(lines[0]) + "\n")
		for _, line := range lines[1:] {
			b.WriteString(line + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func columnNames(t Table) []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}
