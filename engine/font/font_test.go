package font

import "testing"

func TestHeuristicFaceMeasuresSpaceNarrower(t *testing.T) {
	h := heuristicFace{size: 10}
	space := h.Measure(" ")
	narrow := h.Measure("i")
	wide := h.Measure("猫")
	body := h.Measure("a")
	// space (0.33em) sits between narrow glyphs (0.3em) and body text (0.6em).
	if space >= body {
		t.Fatalf("expected space narrower than body text: space=%v body=%v", space, body)
	}
	if space <= narrow {
		t.Fatalf("expected space wider than a narrow glyph: space=%v narrow=%v", space, narrow)
	}
	if wide <= narrow {
		t.Fatalf("expected wide glyph to measure wider than narrow: wide=%v narrow=%v", wide, narrow)
	}
}

func TestResolveCachesByKeyAndSize(t *testing.T) {
	f1 := Resolve(12, "sans-serif", "")
	f2 := Resolve(12, "sans-serif", "")
	if f1 != f2 {
		t.Fatal("expected cached face to be returned for identical key+size")
	}
	f3 := Resolve(24, "sans-serif", "")
	if f3 == f1 {
		t.Fatal("expected a different face for a different size")
	}
}

func TestResolveUnknownFamilyReturnsUsableMetrics(t *testing.T) {
	f := Resolve(16, "definitely-not-an-installed-font-xyz", "")
	m := f.Metrics()
	if m.LineHeight <= 0 {
		t.Fatalf("expected positive line height, got %v", m.LineHeight)
	}
}
