/*
Package text implements the text-measurement and wrap engine for `<text>`
elements nested inside a flex container (spec §4.5).

Word segmentation for wrap uses a real Unicode word breaker
(github.com/npillmayer/uax's uax29.WordBreaker via its segment.Segmenter
driver) rather than a hand-rolled whitespace scanner, grounded on the
teacher's engine/frame/khipu/khipukamayuq.go typesetting pipeline — the
same machinery the teacher uses to split input text into word/whitespace
segments before line-breaking.
*/
package text

import (
	"strings"

	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax29"

	"github.com/svgppc/svgpp/core/dimen"
	"github.com/svgppc/svgpp/engine/font"
	"github.com/svgppc/svgpp/engine/style"
	"github.com/svgppc/svgpp/engine/xmltree"
)

const (
	defaultFontSize   = 16.0
	defaultFontFamily = "sans-serif"
)

// Resolved holds everything the flex/render stages need about a <text>
// element's typography, resolved per spec §4.5's attribute → inline style
// → class-style → default cascade.
type Resolved struct {
	Size    float64
	Family  string // first candidate family of a comma-separated list
	Path    string
	Face    font.Face
	Wrap    bool
	WidthHint float64
	HasWidthHint bool
}

// Resolve computes typography for a <text> element n, given the style
// sheet and an optional width hint propagated from the enclosing flex.
func Resolve(n *xmltree.Node, sheet style.Sheet, diagNS string, widthHint float64, hasWidthHint bool) Resolved {
	r := Resolved{Size: defaultFontSize, Family: defaultFontFamily}

	if v, ok := n.Attr("", "font-size"); ok {
		r.Size = parseFirstNumber(v, r.Size)
	} else if v, ok := inlineStyle(n, "font-size"); ok {
		r.Size = parseFirstNumber(v, r.Size)
	} else if v, ok := sheet.ResolveElement(n, "font-size"); ok {
		r.Size = parseFirstNumber(v, r.Size)
	}

	families := r.Family
	if v, ok := n.Attr("", "font-family"); ok {
		families = v
	} else if v, ok := n.Attr(diagNS, "font-family"); ok {
		families = v
	} else if v, ok := inlineStyle(n, "font-family"); ok {
		families = v
	} else if v, ok := sheet.ResolveElement(n, "font-family"); ok {
		families = v
	}
	r.Family = firstFamily(families)

	if v, ok := n.Attr(diagNS, "font-path"); ok {
		r.Path = v
	}

	r.Face = resolveFaceByFamilyList(r.Size, families, r.Path)

	if v, ok := n.Attr(diagNS, "wrap"); ok {
		r.Wrap = v == "true"
	}

	r.WidthHint = widthHint
	r.HasWidthHint = hasWidthHint
	return r
}

// resolveFaceByFamilyList resolves a face from a comma-separated
// font-family list: an explicit path wins, otherwise the first non-empty
// candidate is passed to font.Resolve. Later candidates are not tried.
func resolveFaceByFamilyList(size float64, families, path string) font.Face {
	if path != "" {
		return font.Resolve(size, "", path)
	}
	for _, c := range strings.Split(families, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		// Resolve never errors — it degrades to Go Sans or the heuristic face — so the
		// first named candidate is used; there is no cheaper way to tell
		// "real glyph backend" from "heuristic" apart without exposing that
		// distinction through the Face interface, which the contract (spec
		// §6) deliberately keeps opaque to callers.
		return font.Resolve(size, c, "")
	}
	return font.Resolve(size, defaultFontFamily, "")
}

func firstFamily(families string) string {
	for _, c := range strings.Split(families, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			return c
		}
	}
	return defaultFontFamily
}

func inlineStyle(n *xmltree.Node, prop string) (string, bool) {
	v, ok := n.Attr("", "style")
	if !ok {
		return "", false
	}
	for _, decl := range strings.Split(v, ";") {
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.TrimSpace(parts[0]) == prop {
			return strings.TrimSpace(parts[1]), true
		}
	}
	return "", false
}

func parseFirstNumber(s string, def float64) float64 {
	return dimen.ParseLength(s, def)
}

// Line is one measured, wrapped line of text.
type Line struct {
	Text  string
	Width float64
}

// Wrap greedily packs words (and the whitespace between them) into lines
// whose measured width does not exceed widthHint, per spec §4.5.
func Wrap(face font.Face, input string, widthHint float64) []Line {
	words := segmentWords(input)
	var lines []Line
	var cur strings.Builder
	var curWidth float64
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		lines = append(lines, Line{Text: cur.String(), Width: curWidth})
		cur.Reset()
		curWidth = 0
	}
	for _, w := range words {
		wWidth := face.Measure(w)
		if cur.Len() > 0 && curWidth+wWidth > widthHint && strings.TrimSpace(w) != "" {
			flush()
		}
		cur.WriteString(w)
		curWidth += wWidth
	}
	flush()
	if len(lines) == 0 {
		lines = append(lines, Line{})
	}
	return lines
}

// segmentWords splits text into word and whitespace runs using a real
// Unicode word-boundary algorithm (UAX #29) instead of a whitespace-only
// scanner, so runs of punctuation/CJK/etc. split the same way a browser's
// text layout would.
func segmentWords(input string) []string {
	seg := segment.NewSegmenter(uax29.NewWordBreaker(1))
	seg.Init(strings.NewReader(input))
	var words []string
	for seg.Next() {
		words = append(words, string(seg.Bytes()))
	}
	if len(words) == 0 && input != "" {
		words = []string{input}
	}
	return words
}

// MeasureHeight reports the reported height for a (possibly wrapped)
// block, per spec §4.5: "ascent + descent + (lines − 1)·line_height".
func MeasureHeight(m font.Metrics, lines int) float64 {
	if lines < 1 {
		lines = 1
	}
	return m.Ascent + m.Descent + float64(lines-1)*m.LineHeight
}
