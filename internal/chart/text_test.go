package chart

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/injurydash/internal/stats"
)

func TestRenderTextBars(t *testing.T) {
	var buf bytes.Buffer
	spec := Diagnosis([]stats.Count{{Key: "Fracture", Count: 4}, {Key: "Laceration", Count: 2}})
	if err := RenderText(&buf, spec, TextOptions{Width: 60}); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected title and 2 bars, got %d lines: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "Fracture  ") || !strings.HasSuffix(lines[1], " 4") {
		t.Fatalf("unexpected bar line %q", lines[1])
	}
	if strings.Count(lines[1], "█") != 2*strings.Count(lines[2], "█") {
		t.Fatalf("expected bar lengths proportional to counts:\n%s\n%s", lines[1], lines[2])
	}
}

func TestRenderTextShares(t *testing.T) {
	var buf bytes.Buffer
	spec := Location([]stats.Count{{Key: "Home", Count: 3}, {Key: "School", Count: 1}})
	if err := RenderText(&buf, spec, TextOptions{Width: 60}); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "75.0%") || !strings.Contains(out, "25.0%") {
		t.Fatalf("expected shares in output: %s", out)
	}
}

func TestRenderTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderText(&buf, BodyPart(nil), TextOptions{Width: 60}); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}
	if !strings.Contains(buf.String(), EmptyMessage) {
		t.Fatalf("expected empty message, got %q", buf.String())
	}
}

func TestRenderDashboard(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderDashboard(&buf, Build(sampleReport()), TextOptions{Width: 80, PlotHeight: 4}); err != nil {
		t.Fatalf("RenderDashboard failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Product causing the most injuries: stairs or steps", TitleLocation, TitleDiagnosis, TitleRate, TitleBodyPart, "Legend:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
}

func TestPadLabelTruncatesWideLabels(t *testing.T) {
	got := padLabel("Contusion Or Abrasion", 10)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis, got %q", got)
	}
	if padLabel("Arm", 5) != "Arm  " {
		t.Fatalf("expected padding, got %q", padLabel("Arm", 5))
	}
}

func TestRenderPNG(t *testing.T) {
	for _, spec := range Build(sampleReport()).Charts {
		var buf bytes.Buffer
		if err := RenderPNG(&buf, spec); err != nil {
			t.Fatalf("RenderPNG(%s) failed: %v", spec.Title, err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
			t.Fatalf("expected PNG output for %s", spec.Title)
		}
	}
	if err := RenderPNG(&bytes.Buffer{}, BodyPart(nil)); err == nil {
		t.Fatalf("expected error for empty chart")
	}
}

func TestWritePNGsSkipsEmptyCharts(t *testing.T) {
	report := sampleReport()
	report.BodyParts = nil
	dir := t.TempDir()
	paths, err := WritePNGs(context.Background(), dir, Build(report))
	if err != nil {
		t.Fatalf("WritePNGs failed: %v", err)
	}
	want := []string{"1-location.png", "2-diag.png", "3-rate.png"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), paths)
	}
	for i, name := range want {
		if paths[i] != filepath.Join(dir, name) {
			t.Fatalf("expected %s, got %s", name, paths[i])
		}
		if _, err := os.Stat(paths[i]); err != nil {
			t.Fatalf("stat %s: %v", paths[i], err)
		}
	}
}
