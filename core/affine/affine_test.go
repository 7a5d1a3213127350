package affine

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTranslateApply(t *testing.T) {
	m := Translate(10, 20)
	x, y := m.Apply(1, 1)
	if !almostEqual(x, 11) || !almostEqual(y, 21) {
		t.Fatalf("got (%v,%v)", x, y)
	}
}

func TestMultiplyOrderIsLeftToRight(t *testing.T) {
	m := Multiply(Translate(10, 0), Scale(2, 2))
	x, y := m.Apply(1, 0)
	if !almostEqual(x, 22) || !almostEqual(y, 0) {
		t.Fatalf("expected translate-then-scale, got (%v,%v)", x, y)
	}
}

func TestInvertRoundTrip(t *testing.T) {
	m := Multiply(Translate(5, -3), Rotate(37))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("expected invertible matrix")
	}
	x, y := m.Apply(4, 9)
	bx, by := inv.Apply(x, y)
	if !almostEqual(bx, 4) || !almostEqual(by, 9) {
		t.Fatalf("round trip failed: got (%v,%v)", bx, by)
	}
}

func TestInvertSingular(t *testing.T) {
	m := Matrix{A: 0, B: 0, C: 0, D: 0, E: 1, F: 2}
	if _, ok := m.Invert(); ok {
		t.Fatal("expected singular matrix to report ok=false")
	}
}

func TestParseTransformList(t *testing.T) {
	m := Parse("translate(10 20) scale(2)")
	x, y := m.Apply(1, 1)
	if !almostEqual(x, 12) || !almostEqual(y, 22) {
		t.Fatalf("got (%v,%v)", x, y)
	}
}

func TestParseUnknownCallIgnored(t *testing.T) {
	m := Parse("bogus(1 2 3) translate(5 5)")
	x, y := m.Apply(0, 0)
	if !almostEqual(x, 5) || !almostEqual(y, 5) {
		t.Fatalf("expected unknown call to be ignored, got (%v,%v)", x, y)
	}
}

func TestRotateAbout(t *testing.T) {
	m := RotateAbout(90, 10, 10)
	x, y := m.Apply(10, 0)
	if !almostEqual(x, 20) || !almostEqual(y, 10) {
		t.Fatalf("got (%v,%v)", x, y)
	}
}
