package text

import (
	"testing"

	"github.com/svgppc/svgpp/engine/font"
)

func TestWrapPacksWithinWidth(t *testing.T) {
	face := font.Resolve(12, "sans-serif", "")
	lines := Wrap(face, "the quick brown fox jumps", 40)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping to produce multiple lines, got %d", len(lines))
	}
	for _, l := range lines {
		if l.Text == "" {
			t.Fatal("unexpected empty line")
		}
	}
}

func TestWrapEmptyInputYieldsOneLine(t *testing.T) {
	face := font.Resolve(12, "sans-serif", "")
	lines := Wrap(face, "", 100)
	if len(lines) != 1 {
		t.Fatalf("expected exactly one (empty) line, got %d", len(lines))
	}
}

func TestMeasureHeightMultiline(t *testing.T) {
	m := font.Metrics{Ascent: 10, Descent: 2, LineHeight: 14}
	h1 := MeasureHeight(m, 1)
	h2 := MeasureHeight(m, 2)
	if h1 != 12 {
		t.Fatalf("got %v want 12", h1)
	}
	if h2 != 26 {
		t.Fatalf("got %v want 26", h2)
	}
}
