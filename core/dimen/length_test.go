package dimen

import "testing"

func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		def  float64
		want float64
	}{
		{"12", 0, 12},
		{"12px", 0, 12},
		{"-4.5em", 99, -4.5},
		{"+8", 0, 8},
		{"abc", 7, 7},
		{"", 3, 3},
	}
	for _, c := range cases {
		if got := ParseLength(c.in, c.def); got != c.want {
			t.Errorf("ParseLength(%q, %v) = %v, want %v", c.in, c.def, got, c.want)
		}
	}
}

func TestParsePercent(t *testing.T) {
	frac, ok := ParsePercent("80%")
	if !ok || frac != 0.8 {
		t.Fatalf("ParsePercent(80%%) = %v, %v", frac, ok)
	}
	if _, ok := ParsePercent("80"); ok {
		t.Fatalf("ParsePercent(80) should not report ok")
	}
}

func TestClamp0(t *testing.T) {
	if Clamp0(-5) != 0 {
		t.Fatalf("Clamp0(-5) should be 0")
	}
	if Clamp0(5) != 5 {
		t.Fatalf("Clamp0(5) should be 5")
	}
}
