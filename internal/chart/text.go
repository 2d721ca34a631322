package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// EmptyMessage is printed in place of a chart with no data.
const EmptyMessage = "No data for the current selection."

const (
	minBarWidth   = 10
	maxLabelWidth = 32
)

var partialBlocks = []string{"", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

// TextOptions controls terminal rendering of a Spec.
type TextOptions struct {
	Width      int
	PlotHeight int
	Color      bool
}

// RenderText writes a terminal rendering of the chart.
func RenderText(w io.Writer, s Spec, opts TextOptions) error {
	if opts.Width <= 0 {
		opts.Width = terminalWidthBackup
	}
	if s.Title != "" {
		if _, err := fmt.Fprintln(w, s.Title); err != nil {
			return err
		}
	}
	if s.Empty() {
		_, err := fmt.Fprintln(w, EmptyMessage)
		return err
	}
	switch s.Kind {
	case KindPie:
		return renderShares(w, s, opts)
	case KindBarHorizontal:
		return renderBars(w, s, opts)
	case KindLine:
		return renderLine(w, s, opts)
	default:
		return fmt.Errorf("unsupported chart kind %q", s.Kind)
	}
}

// RenderDashboard writes the headline and all charts of a dashboard.
func RenderDashboard(w io.Writer, d Dashboard, opts TextOptions) error {
	if _, err := fmt.Fprintln(w, d.Headline()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Product %d (%s): %d of %d records selected, %s to %s, ages %d-%d\n\n",
		d.Product.Code, d.Product.Title, d.Records, d.Product.Count,
		d.Selection.From, d.Selection.To, d.Selection.AgeMin, d.Selection.AgeMax); err != nil {
		return err
	}
	for _, s := range d.Charts {
		if err := RenderText(w, s, opts); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	return nil
}

func renderShares(w io.Writer, s Spec, opts TextOptions) error {
	points := s.Series[0].Points
	total := 0.0
	for _, p := range points {
		if p.Value != nil {
			total += *p.Value
		}
	}
	labelWidth := labelColumnWidth(points, opts.Width)
	barWidth := barColumnWidth(opts.Width, labelWidth, len("100.0%  ")+countWidth(points))
	for _, p := range points {
		if p.Value == nil {
			continue
		}
		share := 0.0
		if total > 0 {
			share = *p.Value / total
		}
		bar := colorize(blockBar(share, barWidth), p.Color, opts.Color)
		line := fmt.Sprintf("%s %s %5.1f%%  %*d", padLabel(p.Label, labelWidth), bar, share*100, countWidth(points), int(*p.Value))
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func renderBars(w io.Writer, s Spec, opts TextOptions) error {
	series := s.Series[0]
	maxVal := 0.0
	for _, p := range series.Points {
		if p.Value != nil && *p.Value > maxVal {
			maxVal = *p.Value
		}
	}
	labelWidth := labelColumnWidth(series.Points, opts.Width)
	barWidth := barColumnWidth(opts.Width, labelWidth, countWidth(series.Points)+1)
	for _, p := range series.Points {
		if p.Value == nil {
			continue
		}
		frac := 0.0
		if maxVal > 0 {
			frac = *p.Value / maxVal
		}
		bar := colorize(blockBar(frac, barWidth), series.Color, opts.Color)
		line := fmt.Sprintf("%s %s %d", padLabel(p.Label, labelWidth), bar, int(*p.Value))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func renderLine(w io.Writer, s Spec, opts TextOptions) error {
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, series := range s.Series {
		for _, p := range series.Points {
			if p.X == nil {
				continue
			}
			minX = math.Min(minX, *p.X)
			maxX = math.Max(maxX, *p.X)
		}
	}
	if math.IsInf(minX, 1) {
		_, err := fmt.Fprintln(w, EmptyMessage)
		return err
	}
	n := int(maxX-minX) + 1
	lines := make([]PlotLine, 0, len(s.Series))
	for _, series := range s.Series {
		values := make([]float64, n)
		for i := range values {
			values[i] = math.NaN()
		}
		for _, p := range series.Points {
			if p.X == nil || p.Value == nil {
				continue
			}
			values[int(*p.X-minX)] = *p.Value
		}
		lines = append(lines, PlotLine{Name: series.Name, Values: values})
	}
	return Plot(w, lines, PlotOptions{
		XStart:     fmt.Sprintf("%s %g", s.Labels.X, minX),
		XEnd:       fmt.Sprintf("%g", maxX),
		Width:      PlotWidthFor(opts.Width),
		Height:     opts.PlotHeight,
		ForceColor: opts.Color,
	})
}

func labelColumnWidth(points []Point, total int) int {
	width := 0
	for _, p := range points {
		if lw := runewidth.StringWidth(p.Label); lw > width {
			width = lw
		}
	}
	limit := maxLabelWidth
	if total/3 < limit {
		limit = total / 3
	}
	if width > limit {
		width = limit
	}
	return width
}

func barColumnWidth(total, labelWidth, trailing int) int {
	width := total - labelWidth - trailing - 2
	if width < minBarWidth {
		width = minBarWidth
	}
	return width
}

func countWidth(points []Point) int {
	width := 1
	for _, p := range points {
		if p.Value == nil {
			continue
		}
		if cw := len(fmt.Sprintf("%d", int(*p.Value))); cw > width {
			width = cw
		}
	}
	return width
}

func padLabel(label string, width int) string {
	if runewidth.StringWidth(label) > width {
		label = runewidth.Truncate(label, width, "…")
	}
	return runewidth.FillRight(label, width)
}

// blockBar draws frac of width cells using eighth-block characters.
func blockBar(frac float64, width int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	eighths := int(math.Round(frac * float64(width) * 8))
	full := eighths / 8
	bar := strings.Repeat("█", full) + partialBlocks[eighths%8]
	return runewidth.FillRight(bar, width)
}

func colorize(s, hex string, enabled bool) string {
	if !enabled || hex == "" {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(s)
}
