/*
Package arrow implements `diag:arrow` collection, routing, and emission
(spec §4.8–§4.10): arrows are lifted out of the tree during collection and
replaced by sentinel placeholders, then — once every element's final
geometry is known — routed as a ray/rectangle intersection (or a
closest-points fallback) and emitted as a `<line>` plus an optional
rotated label, transformed back into the sentinel's local coordinate
frame.
*/
package arrow

import (
	"math"
	"strconv"

	"github.com/svgppc/svgpp/core"
	"github.com/svgppc/svgpp/core/affine"
	"github.com/svgppc/svgpp/core/dimen"
	"github.com/svgppc/svgpp/engine/anchor"
	"github.com/svgppc/svgpp/engine/xmltree"
)

// Spec is one collected `diag:arrow` declaration, with its slot recorded so
// the eventual <line>/label pair can be spliced back into the same
// position the <diag:arrow> element originally occupied.
type Spec struct {
	Slot      int
	From, To  string
	Label     string
	LabelSize float64
	LabelFill string
	Attrs     map[string]string // pass-through presentation attributes
	Sentinel  *xmltree.Node      // the <g data-diag-arrow-slot="N"> placeholder
}

// Collect walks root in document order, lifting every `diag:arrow` element
// out of the tree and replacing it in place with a sentinel <g>, per spec
// §4.8. Arrows may not be the document root.
func Collect(root *xmltree.Node, diagNS string) ([]*Spec, error) {
	if root.Name.Space == diagNS && root.Name.Local == "arrow" {
		return nil, core.New(core.ESemantic, "diag:arrow may not be the document root")
	}
	var specs []*Spec
	slot := 0
	var collect func(n *xmltree.Node) error
	collect = func(n *xmltree.Node) error {
		for i := 0; i < len(n.Children); i++ {
			c := n.Children[i]
			if c.Name.Space == diagNS && c.Name.Local == "arrow" {
				spec, err := parseArrow(c, slot)
				if err != nil {
					return err
				}
				sentinel := xmltree.NewElement("", "g")
				sentinel.SetAttr("", "data-diag-arrow-slot", strconv.Itoa(slot))
				spec.Sentinel = sentinel
				n.ReplaceChildAt(i, sentinel)
				specs = append(specs, spec)
				slot++
				continue
			}
			if err := collect(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := collect(root); err != nil {
		return nil, err
	}
	return specs, nil
}

func parseArrow(n *xmltree.Node, slot int) (*Spec, error) {
	from, hasFrom := n.Attr("", "from")
	to, hasTo := n.Attr("", "to")
	if !hasFrom || !hasTo {
		return nil, core.New(core.ESemantic, "diag:arrow is missing from/to")
	}
	spec := &Spec{
		Slot:      slot,
		From:      from,
		To:        to,
		Label:     n.AttrDefault("", "label", ""),
		LabelSize: dimen.ParseLength(n.AttrDefault("", "label-size", "12"), 12),
		LabelFill: n.AttrDefault("", "label-fill", "#000"),
		Attrs:     make(map[string]string),
	}
	reserved := map[string]bool{"from": true, "to": true, "label": true, "label-size": true, "label-fill": true}
	for _, a := range n.Attrs {
		if a.Name.Space == "" && reserved[a.Name.Local] {
			continue
		}
		spec.Attrs[a.Name.Local] = a.Value
	}
	return spec, nil
}

// Point is a resolved coordinate in the document's global frame.
type Point struct{ X, Y float64 }

// Endpoints resolves an arrow's source and target points per spec §4.9:
// anchor-to-anchor is direct, anchor-to-box uses a ray/rect intersection
// toward the anchor, and box-to-box prefers the center-line intersection
// with a closest-points fallback when the two box centers coincide.
func Endpoints(from, to string, boxes map[string]anchor.Box, anchors map[string]Point) (Point, Point, error) {
	fromAnchor, fromIsAnchor := anchors[from]
	toAnchor, toIsAnchor := anchors[to]
	fromBox, fromHasBox := boxes[from]
	toBox, toHasBox := boxes[to]

	if fromIsAnchor && toIsAnchor {
		return fromAnchor, toAnchor, nil
	}
	if fromIsAnchor && toHasBox {
		p := RayRectIntersection(toBox, fromAnchor.X, fromAnchor.Y)
		return fromAnchor, p, nil
	}
	if toIsAnchor && fromHasBox {
		p := RayRectIntersection(fromBox, toAnchor.X, toAnchor.Y)
		return p, toAnchor, nil
	}
	if fromHasBox && toHasBox {
		return centerLine(fromBox, toBox)
	}
	return Point{}, Point{}, core.New(core.ESemantic, "diag:arrow endpoint %q or %q is neither a known element nor an anchor", from, to)
}

// centerLine implements the "center-line" routing policy: a ray from each
// box's center toward the other's center, intersected with its own
// boundary; falls back to the closest-points policy when both centers
// coincide.
func centerLine(a, b anchor.Box) (Point, Point, error) {
	acx, acy := a.X+a.Width/2, a.Y+a.Height/2
	bcx, bcy := b.X+b.Width/2, b.Y+b.Height/2
	if acx == bcx && acy == bcy {
		return closestPoints(a, b), closestPoints(b, a), nil
	}
	p1 := RayRectIntersection(a, bcx, bcy)
	p2 := RayRectIntersection(b, acx, acy)
	return p1, p2, nil
}

// RayRectIntersection shoots a ray from box's center toward (tx,ty) and
// returns where it crosses the box's boundary: the smallest positive t
// across all four edges whose crossing point falls within that edge's
// span, per spec §4.9. Exported so other routers (graph edges included)
// can clip a path endpoint to a node's box without duplicating the math.
func RayRectIntersection(box anchor.Box, tx, ty float64) Point {
	cx, cy := box.X+box.Width/2, box.Y+box.Height/2
	dx, dy := tx-cx, ty-cy
	if dx == 0 && dy == 0 {
		return Point{X: cx, Y: cy}
	}

	bestT := math.Inf(1)
	var best Point
	consider := func(t, x, y float64) {
		if t > 0 && t < bestT {
			bestT = t
			best = Point{X: x, Y: y}
		}
	}
	if dx != 0 {
		// left edge x = box.X
		if t := (box.X - cx) / dx; t > 0 {
			y := cy + t*dy
			if y >= box.Y && y <= box.Y+box.Height {
				consider(t, box.X, y)
			}
		}
		// right edge x = box.X+box.Width
		if t := (box.X + box.Width - cx) / dx; t > 0 {
			y := cy + t*dy
			if y >= box.Y && y <= box.Y+box.Height {
				consider(t, box.X+box.Width, y)
			}
		}
	}
	if dy != 0 {
		// top edge y = box.Y
		if t := (box.Y - cy) / dy; t > 0 {
			x := cx + t*dx
			if x >= box.X && x <= box.X+box.Width {
				consider(t, x, box.Y)
			}
		}
		// bottom edge y = box.Y+box.Height
		if t := (box.Y + box.Height - cy) / dy; t > 0 {
			x := cx + t*dx
			if x >= box.X && x <= box.X+box.Width {
				consider(t, x, box.Y+box.Height)
			}
		}
	}
	if math.IsInf(bestT, 1) {
		return Point{X: cx, Y: cy}
	}
	return best
}

// closestPoints falls back to the nearest of the five canonical points
// (four edge midpoints plus center) on a, toward b's center — used only
// when the center-line construction degenerates (coincident centers).
func closestPoints(a, b anchor.Box) Point {
	bcx, bcy := b.X+b.Width/2, b.Y+b.Height/2
	candidates := []Point{
		{X: a.X + a.Width/2, Y: a.Y},              // top
		{X: a.X + a.Width/2, Y: a.Y + a.Height},    // bottom
		{X: a.X, Y: a.Y + a.Height/2},              // left
		{X: a.X + a.Width, Y: a.Y + a.Height/2},    // right
		{X: a.X + a.Width/2, Y: a.Y + a.Height/2},  // center
	}
	best := candidates[0]
	bestDist := math.Inf(1)
	for _, c := range candidates {
		d := math.Hypot(c.X-bcx, c.Y-bcy)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// Emit builds the final <line> (and optional rotated label) for a routed
// arrow and appends it into target — the parent reached by walking up from
// the sentinel and inverting the accumulated ancestor transform, per spec
// §4.9. p1/p2 must already be in target's local coordinate frame.
func Emit(target *xmltree.Node, spec *Spec, p1, p2 Point, markerURL string) {
	line := xmltree.NewElement("", "line")
	line.SetAttr("", "x1", ftoa(p1.X))
	line.SetAttr("", "y1", ftoa(p1.Y))
	line.SetAttr("", "x2", ftoa(p2.X))
	line.SetAttr("", "y2", ftoa(p2.Y))
	line.SetAttr("", "stroke", "#555")
	line.SetAttr("", "stroke-width", "1")
	for k, v := range spec.Attrs {
		line.SetAttr("", k, v)
	}
	_, hasStart := spec.Attrs["marker-start"]
	_, hasEnd := spec.Attrs["marker-end"]
	if !hasStart && !hasEnd && markerURL != "" {
		line.SetAttr("", "marker-end", markerURL)
	}
	target.Append(line)

	if spec.Label != "" {
		target.Append(label(spec, p1, p2))
	}
}

// label builds the rotated <text> for an arrow's label, per spec §4.10.
func label(spec *Spec, p1, p2 Point) *xmltree.Node {
	mx, my := (p1.X+p2.X)/2, (p1.Y+p2.Y)/2
	dx, dy := p2.X-p1.X, p2.Y-p1.Y

	nx, ny := -dy, dx
	norm := math.Hypot(nx, ny)
	if norm != 0 {
		nx, ny = nx/norm, ny/norm
	}
	// pick whichever of the two normals points screen-up (smaller y)
	if ny > 0 {
		nx, ny = -nx, -ny
	}
	offset := math.Max(2, spec.LabelSize*0.25)
	lx, ly := mx+nx*offset, my+ny*offset

	angle := math.Atan2(dy, dx) * 180 / math.Pi
	for angle > 90 {
		angle -= 180
	}
	for angle < -90 {
		angle += 180
	}

	t := xmltree.NewElement("", "text")
	t.SetAttr("", "x", ftoa(lx))
	t.SetAttr("", "y", ftoa(ly))
	t.SetAttr("", "text-anchor", "middle")
	t.SetAttr("", "font-size", ftoa(spec.LabelSize))
	t.SetAttr("", "fill", spec.LabelFill)
	t.SetAttr("", "dominant-baseline", "alphabetic")
	if math.Abs(angle) >= 15 {
		t.SetAttr("", "transform", "rotate("+ftoa(angle)+" "+ftoa(lx)+" "+ftoa(ly)+")")
	}
	t.Text = spec.Label
	return t
}

// AncestorTransform concatenates n's ancestor chain's transform attributes
// (parent first, root last, so the parent's transform is applied first) into
// a single affine matrix, for inverting global
// coordinates back into a sentinel's local frame.
func AncestorTransform(n *xmltree.Node) affine.Matrix {
	chain := n.AncestorChain()
	m := affine.Identity
	for _, a := range chain {
		if v, ok := a.Attr("", "transform"); ok {
			m = affine.Multiply(m, affine.Parse(v))
		}
	}
	return m
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
