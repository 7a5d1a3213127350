package graph

import (
	"github.com/npillmayer/arithm"
)

// curveLongEdges replaces an edge's two-point straight path with a cubic
// Bezier control polygon whenever the edge spans more than one rank, so a
// node skipping several ranks doesn't draw straight through intervening
// node rows. Control points sit a third and two-thirds of the way along
// the straight line, offset perpendicular to it — the classic "control arm"
// construction — computed with arithm.Pair complex-number arithmetic rather
// than hand-rolled (dx,dy) bookkeeping, matching the teacher's own spline
// control-point code.
func curveLongEdges(g *Graph) {
	for _, e := range g.Edges {
		from := g.Nodes[e.From]
		to := g.Nodes[e.To]
		if from == nil || to == nil {
			continue
		}
		span := to.Rank - from.Rank
		if span < 0 {
			span = -span
		}
		if span <= 1 {
			continue
		}
		e.Points = bezierControlPoints(
			arithm.Pair(complex(from.X+from.Width/2, from.Y+from.Height/2)),
			arithm.Pair(complex(to.X+to.Width/2, to.Y+to.Height/2)),
		)
	}
}

// bezierControlPoints returns [start, c1, c2, end] for a gentle S-curve
// between two points, bowing outward perpendicular to the chord by an
// eighth of its length.
func bezierControlPoints(start, end arithm.Pair) []Point {
	chord := end.C() - start.C()
	// Perpendicular unit-ish vector: multiply by i and scale down.
	perp := complex(0, 1) * chord * 0.125
	c1 := arithm.Pair(start.C() + chord*(1.0/3.0) + perp)
	c2 := arithm.Pair(start.C() + chord*(2.0/3.0) - perp)
	return []Point{
		{X: real(start.C()), Y: imag(start.C())},
		{X: real(c1.C()), Y: imag(c1.C())},
		{X: real(c2.C()), Y: imag(c2.C())},
		{X: real(end.C()), Y: imag(end.C())},
	}
}
