/*
Package affine implements the tiny 2D affine matrix type used throughout
the compiler: SVG transform-list parsing, composition of ancestor transform
chains, and the inversion needed to map an arrow's global endpoints back
into a sentinel group's local frame.

The value type mirrors the teacher's dimen.Rect/Point pattern (a handful of
plain scalars with pure, allocation-free methods) rather than reaching for
a general-purpose matrix library: six floats are the whole domain here.
*/
package affine

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Matrix represents x' = A*x + C*y + E, y' = B*x + D*y + F.
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity is the neutral element of Multiply.
var Identity = Matrix{A: 1, D: 1}

// Translate returns a pure translation matrix.
func Translate(tx, ty float64) Matrix {
	return Matrix{A: 1, D: 1, E: tx, F: ty}
}

// Scale returns a pure scale matrix. Pass the same value for sx and sy to
// scale both axes uniformly.
func Scale(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

// Rotate returns a rotation matrix for deg degrees, SVG's clockwise sense
// (positive angles rotate the positive x-axis toward the positive y-axis).
func Rotate(deg float64) Matrix {
	r := deg * math.Pi / 180
	s, c := math.Sin(r), math.Cos(r)
	return Matrix{A: c, B: s, C: -s, D: c}
}

// RotateAbout expands a rotation with a center point into
// translate(cx,cy) · rotate(deg) · translate(-cx,-cy), per spec §4.1: a point
// is first moved by (-cx,-cy), then rotated, then moved back by (cx,cy).
func RotateAbout(deg, cx, cy float64) Matrix {
	return Multiply(Multiply(Translate(-cx, -cy), Rotate(deg)), Translate(cx, cy))
}

func SkewX(deg float64) Matrix {
	return Matrix{A: 1, D: 1, C: math.Tan(deg * math.Pi / 180)}
}

func SkewY(deg float64) Matrix {
	return Matrix{A: 1, D: 1, B: math.Tan(deg * math.Pi / 180)}
}

// Multiply composes m1 then m2: applying the result to a point is the same
// as applying m1, then applying m2 to the outcome (left-to-right
// composition order, per spec §4.1).
func Multiply(m1, m2 Matrix) Matrix {
	return Matrix{
		A: m1.A*m2.A + m1.B*m2.C,
		B: m1.A*m2.B + m1.B*m2.D,
		C: m1.C*m2.A + m1.D*m2.C,
		D: m1.C*m2.B + m1.D*m2.D,
		E: m1.E*m2.A + m1.F*m2.C + m2.E,
		F: m1.E*m2.B + m1.F*m2.D + m2.F,
	}
}

// Apply maps a point through the matrix.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// Determinant returns A*D - B*C.
func (m Matrix) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// Invert returns the inverse matrix. ok is false when the matrix is
// singular (zero determinant), matching the Design Note in spec §9:
// "null inverse surfaces as an option so callers can fall back."
func (m Matrix) Invert() (Matrix, bool) {
	det := m.Determinant()
	if det == 0 {
		return Identity, false
	}
	inv := 1 / det
	a := m.D * inv
	b := -m.B * inv
	c := -m.C * inv
	d := m.A * inv
	e := -(m.E*a + m.F*c)
	f := -(m.E*b + m.F*d)
	return Matrix{A: a, B: b, C: c, D: d, E: e, F: f}, true
}

// String renders the matrix as an SVG transform="matrix(...)" attribute
// value.
func (m Matrix) String() string {
	return fmt.Sprintf("matrix(%s %s %s %s %s %s)",
		trim(m.A), trim(m.B), trim(m.C), trim(m.D), trim(m.E), trim(m.F))
}

func trim(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// callPattern matches one "name(args)" call in a transform list.
var callPattern = regexp.MustCompile(`([a-zA-Z]+)\s*\(([^)]*)\)`)

// argPattern splits call arguments on commas and/or whitespace.
var argPattern = regexp.MustCompile(`[+\-]?[0-9]*\.?[0-9]+(?:[eE][+\-]?[0-9]+)?`)

// Parse parses an SVG transform-list string into a single composed matrix.
// Unknown call names are ignored, per spec §4.1; malformed numeric
// arguments cause that single call to be skipped rather than aborting the
// whole parse, since an svg++ transform is typically author-authored
// alongside the rest of the pass-through attributes it travels with.
// As in SVG, the rightmost call is applied to a point first.
func Parse(s string) Matrix {
	m := Identity
	for _, call := range callPattern.FindAllStringSubmatch(s, -1) {
		name := strings.ToLower(call[1])
		args := parseArgs(call[2])
		var next Matrix
		ok := true
		switch name {
		case "matrix":
			if len(args) != 6 {
				ok = false
				break
			}
			next = Matrix{A: args[0], B: args[1], C: args[2], D: args[3], E: args[4], F: args[5]}
		case "translate":
			switch len(args) {
			case 1:
				next = Translate(args[0], 0)
			case 2:
				next = Translate(args[0], args[1])
			default:
				ok = false
			}
		case "scale":
			switch len(args) {
			case 1:
				next = Scale(args[0], args[0])
			case 2:
				next = Scale(args[0], args[1])
			default:
				ok = false
			}
		case "rotate":
			switch len(args) {
			case 1:
				next = Rotate(args[0])
			case 3:
				next = RotateAbout(args[0], args[1], args[2])
			default:
				ok = false
			}
		case "skewx":
			if len(args) != 1 {
				ok = false
				break
			}
			next = SkewX(args[0])
		case "skewy":
			if len(args) != 1 {
				ok = false
				break
			}
			next = SkewY(args[0])
		default:
			ok = false
		}
		if ok {
			m = Multiply(next, m)
		}
	}
	return m
}

func parseArgs(s string) []float64 {
	toks := argPattern.FindAllString(s, -1)
	out := make([]float64, 0, len(toks))
	for _, t := range toks {
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
