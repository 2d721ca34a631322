package chart

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"
)

const (
	pngWidth    = 1024
	pngHeight   = 600
	pngBarWidth = 40
)

// RenderPNG draws a non-empty chart as a PNG image.
func RenderPNG(w io.Writer, s Spec) error {
	if s.Empty() {
		return fmt.Errorf("chart %q has no data", s.Title)
	}
	switch s.Kind {
	case KindPie:
		return renderPiePNG(w, s)
	case KindBarHorizontal:
		return renderBarPNG(w, s)
	case KindLine:
		return renderLinePNG(w, s)
	default:
		return fmt.Errorf("unsupported chart kind %q", s.Kind)
	}
}

// WritePNGs renders every non-empty chart of d into dir concurrently and
// returns the written paths in chart order.
func WritePNGs(ctx context.Context, dir string, d Dashboard) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create png directory: %w", err)
	}
	paths := make([]string, len(d.Charts))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range d.Charts {
		if s.Empty() {
			slog.Info("skipping empty chart", "chart", s.Title)
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%d-%s.png", i+1, Slug(s)))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := RenderPNG(&buf, s); err != nil {
				return fmt.Errorf("failed to render %s: %w", s.Title, err)
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			paths[i] = path
			slog.Debug("wrote chart", "path", path, "bytes", buf.Len())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// Slug returns a file-name friendly name for the chart.
func Slug(s Spec) string {
	name := s.Labels.Y
	switch s.Kind {
	case KindPie:
		name = s.Labels.Color
	case KindLine:
		name = "rate"
	}
	if name == "" {
		name = string(s.Kind)
	}
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

func renderPiePNG(w io.Writer, s Spec) error {
	values := make([]gochart.Value, 0, len(s.Series[0].Points))
	for _, p := range s.Series[0].Points {
		if p.Value == nil {
			continue
		}
		values = append(values, gochart.Value{
			Label: p.Label,
			Value: *p.Value,
			Style: gochart.Style{FillColor: hexColor(p.Color)},
		})
	}
	pie := gochart.PieChart{
		Title:  s.Title,
		Width:  pngHeight,
		Height: pngHeight,
		Values: values,
	}
	return pie.Render(gochart.PNG, w)
}

func renderBarPNG(w io.Writer, s Spec) error {
	series := s.Series[0]
	bars := make([]gochart.Value, 0, len(series.Points))
	maxVal := 1.0
	for _, p := range series.Points {
		if p.Value == nil {
			continue
		}
		maxVal = math.Max(maxVal, *p.Value)
		bars = append(bars, gochart.Value{
			Label: p.Label,
			Value: *p.Value,
			Style: gochart.Style{FillColor: hexColor(series.Color), StrokeColor: hexColor(series.Color)},
		})
	}
	width := len(bars)*(pngBarWidth+20) + 120
	if width < pngWidth {
		width = pngWidth
	}
	bar := gochart.BarChart{
		Title:      s.Title,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Bottom: 40}},
		Width:      width,
		Height:     pngHeight,
		BarWidth:   pngBarWidth,
		YAxis:      gochart.YAxis{Range: &gochart.ContinuousRange{Min: 0, Max: maxVal}},
		Bars:       bars,
	}
	return bar.Render(gochart.PNG, w)
}

func renderLinePNG(w io.Writer, s Spec) error {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	series := make([]gochart.Series, 0, len(s.Series))
	for _, line := range s.Series {
		xs := make([]float64, 0, len(line.Points))
		ys := make([]float64, 0, len(line.Points))
		for _, p := range line.Points {
			if p.X == nil || p.Value == nil {
				continue
			}
			xs = append(xs, *p.X)
			ys = append(ys, *p.Value)
			minX, maxX = math.Min(minX, *p.X), math.Max(maxX, *p.X)
			minY, maxY = math.Min(minY, *p.Value), math.Max(maxY, *p.Value)
		}
		if len(xs) == 0 {
			continue
		}
		color := hexColor(line.Color)
		series = append(series, gochart.ContinuousSeries{
			Name:    line.Name,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    3,
			},
		})
	}
	if maxX-minX < 1e-9 {
		minX--
		maxX++
	}
	if maxY-minY < 1e-9 {
		minY = math.Max(0, minY-1)
		maxY++
	}
	graph := gochart.Chart{
		Title:      s.Title,
		Width:      pngWidth,
		Height:     pngHeight,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: s.Labels.X, Range: &gochart.ContinuousRange{Min: minX, Max: maxX}},
		YAxis:      gochart.YAxis{Name: s.Labels.Y, Range: &gochart.ContinuousRange{Min: minY, Max: maxY}},
		Series:     series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	return graph.Render(gochart.PNG, w)
}

func hexColor(hex string) drawing.Color {
	if hex == "" {
		return gochart.ColorBlue
	}
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
