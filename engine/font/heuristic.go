package font

import (
	"golang.org/x/text/width"
)

// heuristicFace implements the character-class width heuristic named in
// spec §4.5 when no glyph backend is available: space 0.33em, narrow
// glyphs 0.3em, wide glyphs 0.9em, everything else 0.6em. Wide, fullwidth
// and halfwidth classification is delegated to golang.org/x/text/width's
// east-asian width properties, so CJK and fullwidth text measure sanely
// too; the narrow Latin glyphs are the short list in isNarrowASCII.
type heuristicFace struct {
	size float64
}

func (h heuristicFace) Metrics() Metrics {
	// A 0.8 ascent/0.2 descent split with a 1.2 line height is the classic
	// sans-serif rule of thumb used when no font file can supply real
	// hhea/OS2 values.
	return Metrics{
		Ascent:     h.size * 0.8,
		Descent:    h.size * 0.2,
		LineHeight: h.size * 1.2,
	}
}

func (h heuristicFace) Measure(text string) float64 {
	var total float64
	for _, r := range text {
		total += h.size * runeEm(r)
	}
	return total
}

func runeEm(r rune) float64 {
	if r == ' ' || r == '\t' {
		return 0.33
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 0.9
	case width.EastAsianHalfwidth:
		return 0.3
	case width.EastAsianNarrow, width.Neutral:
		if isNarrowASCII(r) {
			return 0.3
		}
	}
	return 0.6
}

func isNarrowASCII(r rune) bool {
	switch r {
	case 'i', 'l', 'j', 'I', '.', ',', '\'', '|', '!', ':', ';':
		return true
	}
	return false
}
