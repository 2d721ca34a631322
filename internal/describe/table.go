package describe

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxCellWidth caps a preview column; longer cells are cut with an ellipsis.
const maxCellWidth = 40

// preview collects the head of one table for aligned text output. Numeric
// columns are right-aligned.
type preview struct {
	headers []string
	numeric map[int]bool
	rows    [][]string
}

func newPreview(headers []string, numericCols ...int) *preview {
	p := &preview{headers: headers, numeric: make(map[int]bool, len(numericCols))}
	for _, col := range numericCols {
		p.numeric[col] = true
	}
	return p
}

func (p *preview) add(cells ...string) {
	p.rows = append(p.rows, cells)
}

// lines renders the header followed by every row, all cut to the same column
// widths. A preview without columns renders nothing.
func (p *preview) lines() []string {
	widths := p.columnWidths()
	if len(widths) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.rows)+1)
	if len(p.headers) > 0 {
		out = append(out, p.line(p.headers, widths))
	}
	for _, row := range p.rows {
		out = append(out, p.line(row, widths))
	}
	return out
}

func (p *preview) columnWidths() []int {
	var widths []int
	measure := func(cells []string) {
		for i, cell := range cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], min(runewidth.StringWidth(cell), maxCellWidth))
		}
	}
	measure(p.headers)
	for _, row := range p.rows {
		measure(row)
	}
	return widths
}

func (p *preview) line(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		cell = runewidth.Truncate(cell, width, "…")
		if p.numeric[i] {
			parts[i] = runewidth.FillLeft(cell, width)
		} else {
			parts[i] = runewidth.FillRight(cell, width)
		}
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}
