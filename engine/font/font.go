/*
Package font implements the font-backend contract svg++'s text engine
depends on (spec §6): given a (size, family, explicit path), return
ascent/descent/line-height plus a per-text measure function, falling back
to a character-class width heuristic when no glyph-level backend resolves.

The process-wide font cache and font-path index are realized as
package-level maps, each guarded by its own sync.Mutex, mirroring the teacher's
core/font/fontregistry.Registry exactly (spec §5: "a missing key is
computed once and inserted").
*/
package font

import (
	"os"
	"sync"

	findfont "github.com/flopp/go-findfont"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	xtext "golang.org/x/image/math/fixed"
)

func tracer() tracing.Trace { return tracing.Select("svgpp.font") }

// Metrics reports a prepared face's vertical measurements, in the same
// user units as the requested font size.
type Metrics struct {
	Ascent     float64
	Descent    float64
	LineHeight float64
}

// Face is a font prepared at a concrete size; Measure reports the advance
// width of text set in that face.
type Face interface {
	Metrics() Metrics
	Measure(text string) float64
}

// cacheKey is (family-or-path, integer size), per spec §5.
type cacheKey struct {
	key  string
	size int
}

var (
	faceCacheMu sync.Mutex
	faceCache   = map[cacheKey]Face{}

	pathIndexMu sync.Mutex
	pathIndex   = map[string]string{}
)

// Resolve returns a prepared Face for (size, family, path), consulting and
// populating the process-wide cache. path, if non-empty, is tried first
// (spec §4.5: "Resolve an optional absolute diag:font-path"); otherwise
// family is looked up through the system font-path index. If no font file
// can be located or parsed, the embedded Go Sans face is returned, and only
// if that cannot be prepared a heuristic Face — this is never an error,
// since the fallback is named in the contract, not a failure mode.
func Resolve(size float64, family, path string) Face {
	key := path
	if key == "" {
		key = family
	}
	if key == "" {
		key = "sans-serif"
	}
	ck := cacheKey{key: key, size: int(size + 0.5)}

	faceCacheMu.Lock()
	if f, ok := faceCache[ck]; ok {
		faceCacheMu.Unlock()
		return f
	}
	faceCacheMu.Unlock()

	f := resolveUncached(size, family, path)

	faceCacheMu.Lock()
	faceCache[ck] = f
	faceCacheMu.Unlock()
	return f
}

func resolveUncached(size float64, family, path string) Face {
	resolvedPath := path
	if resolvedPath == "" {
		resolvedPath = lookupFontPath(family)
	}
	if resolvedPath != "" {
		if data, err := os.ReadFile(resolvedPath); err == nil {
			if sf, err := sfnt.Parse(data); err == nil {
				if face, err := newSFNTFace(sf, size); err == nil {
					tracer().Debugf("resolved %q (%q) at size %v via %s", family, path, size, resolvedPath)
					return face
				}
			}
		}
	}
	// Embedded Go Sans fallback still gives real glyph metrics rather than
	// degrading straight to the heuristic, mirroring FallbackFont() in the
	// teacher's core/font/font.go.
	if sf, err := sfnt.Parse(goregular.TTF); err == nil {
		if face, err := newSFNTFace(sf, size); err == nil {
			return face
		}
	}
	tracer().Infof("no glyph backend for family %q; using heuristic metrics", family)
	return heuristicFace{size: size}
}

// lookupFontPath consults (and populates) the process-wide font-path
// index, backed by github.com/flopp/go-findfont's system font scan.
func lookupFontPath(family string) string {
	if family == "" {
		return ""
	}
	pathIndexMu.Lock()
	if p, ok := pathIndex[family]; ok {
		pathIndexMu.Unlock()
		return p
	}
	pathIndexMu.Unlock()

	p, err := findfont.Find(family)
	if err != nil {
		p = ""
	}
	pathIndexMu.Lock()
	pathIndex[family] = p
	pathIndexMu.Unlock()
	return p
}

// --- sfnt-backed face -------------------------------------------------

type sfntFace struct {
	sf   *sfnt.Font
	face font.Face
	size float64
	m    Metrics
}

func newSFNTFace(sf *sfnt.Font, size float64) (Face, error) {
	clamped := size
	if clamped < 1 {
		clamped = 1
	}
	face, err := opentype.NewFace(sf, &opentype.FaceOptions{Size: clamped, DPI: 72})
	if err != nil {
		return nil, err
	}
	metrics := face.Metrics()
	return &sfntFace{
		sf:   sf,
		face: face,
		size: clamped,
		m: Metrics{
			Ascent:     fixedToFloat(metrics.Ascent),
			Descent:    fixedToFloat(metrics.Descent),
			LineHeight: fixedToFloat(metrics.Height),
		},
	}, nil
}

func (f *sfntFace) Metrics() Metrics { return f.m }

func (f *sfntFace) Measure(text string) float64 {
	var total xtext.Int26_6
	for _, r := range text {
		adv, ok := f.face.GlyphAdvance(r)
		if !ok {
			continue
		}
		total += adv
	}
	return fixedToFloat(total)
}

func fixedToFloat(v xtext.Int26_6) float64 {
	return float64(v) / 64
}
