package describe

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestPreviewAlignsColumns(t *testing.T) {
	p := newPreview([]string{"sex", "age", "population"}, 1, 2)
	p.add("female", "0", "1924145")
	p.add("male", "100", "7")

	lines := p.lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "sex    age population" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "female   0    1924145" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "male   100          7" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestPreviewTruncatesLongCells(t *testing.T) {
	p := newPreview([]string{"narrative"})
	p.add(strings.Repeat("x", maxCellWidth+10))
	lines := p.lines()
	if got := runewidth.StringWidth(lines[1]); got != maxCellWidth {
		t.Fatalf("expected width %d, got %d", maxCellWidth, got)
	}
	if !strings.HasSuffix(lines[1], "…") {
		t.Fatalf("expected ellipsis, got %q", lines[1])
	}
}

func TestPreviewEmpty(t *testing.T) {
	if lines := newPreview(nil).lines(); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}
