/*
Package anchor validates and resolves `diag:anchor` declarations (spec
§4.8): a named point either given absolutely, or relative to another
element's box side plus an offset.
*/
package anchor

import (
	"github.com/svgppc/svgpp/core"
	"github.com/svgppc/svgpp/core/dimen"
	"github.com/svgppc/svgpp/engine/xmltree"
)

// Side names the box edge (or its center) an anchor may sit on.
type Side string

const (
	Top    Side = "top"
	Bottom Side = "bottom"
	Left   Side = "left"
	Right  Side = "right"
	Center Side = "center"
)

// Box is an element's resolved position and size in global document
// coordinates, as produced by layout.
type Box struct {
	X, Y, Width, Height float64
}

// Point returns the coordinate of the given side of b.
func (b Box) Point(s Side) (x, y float64) {
	switch s {
	case Top:
		return b.X + b.Width/2, b.Y
	case Bottom:
		return b.X + b.Width/2, b.Y + b.Height
	case Left:
		return b.X, b.Y + b.Height/2
	case Right:
		return b.X + b.Width, b.Y + b.Height/2
	default:
		return b.X + b.Width/2, b.Y + b.Height/2
	}
}

// Spec is a parsed, not-yet-resolved `diag:anchor` declaration.
type Spec struct {
	ID string

	Absolute bool
	X, Y     float64

	RelativeTo string
	Side       Side
	OffsetX    float64
	OffsetY    float64
}

// Parse validates one `diag:anchor` element and extracts its Spec. Exactly
// one of the absolute (x,y) pair or the relative (relative-to[,side,offset])
// form must be present; both or neither is a semantic error.
func Parse(n *xmltree.Node) (Spec, error) {
	id, ok := n.Attr("", "id")
	if !ok || id == "" {
		return Spec{}, core.New(core.ESemantic, "diag:anchor is missing a required id attribute")
	}

	_, hasX := n.Attr("", "x")
	_, hasY := n.Attr("", "y")
	relTo, hasRel := n.Attr("", "relative-to")

	isAbs := hasX || hasY
	if isAbs && hasRel {
		return Spec{}, core.New(core.ESemantic, "diag:anchor %q cannot combine absolute x/y with relative-to", id).
			WithHint("use either x/y or relative-to, not both")
	}
	if !isAbs && !hasRel {
		return Spec{}, core.New(core.ESemantic, "diag:anchor %q has neither x/y nor relative-to", id)
	}

	if isAbs {
		x := dimen.ParseLength(n.AttrDefault("", "x", "0"), 0)
		y := dimen.ParseLength(n.AttrDefault("", "y", "0"), 0)
		return Spec{ID: id, Absolute: true, X: x, Y: y}, nil
	}

	side := Side(n.AttrDefault("", "side", string(Center)))
	switch side {
	case Top, Bottom, Left, Right, Center:
	default:
		return Spec{}, core.New(core.ESemantic, "diag:anchor %q has invalid side %q", id, side).
			WithHint("side must be one of top, bottom, left, right, center")
	}
	ox := dimen.ParseLength(n.AttrDefault("", "offset-x", "0"), 0)
	oy := dimen.ParseLength(n.AttrDefault("", "offset-y", "0"), 0)
	return Spec{ID: id, RelativeTo: relTo, Side: side, OffsetX: ox, OffsetY: oy}, nil
}

// Resolve computes an anchor's final global-frame point, given the boxes of
// all elements in the document.
func Resolve(s Spec, boxes map[string]Box) (x, y float64, err error) {
	if s.Absolute {
		return s.X, s.Y, nil
	}
	box, ok := boxes[s.RelativeTo]
	if !ok {
		return 0, 0, core.New(core.ESemantic, "diag:anchor %q references unknown element %q", s.ID, s.RelativeTo)
	}
	px, py := box.Point(s.Side)
	return px + s.OffsetX, py + s.OffsetY, nil
}

// CollectAndValidate parses every `diag:anchor` under root, checking for
// duplicate anchor ids and collisions with existing element ids.
func CollectAndValidate(root *xmltree.Node, diagNS string, elementIDs map[string]bool) (map[string]Spec, error) {
	specs := make(map[string]Spec)
	var walkErr error
	root.Walk(func(n *xmltree.Node) bool {
		if walkErr != nil {
			return false
		}
		if n.Name.Space == diagNS && n.Name.Local == "anchor" {
			spec, err := Parse(n)
			if err != nil {
				walkErr = err
				return false
			}
			if _, dup := specs[spec.ID]; dup {
				walkErr = core.New(core.ESemantic, "duplicate diag:anchor id %q", spec.ID)
				return false
			}
			if elementIDs[spec.ID] {
				walkErr = core.New(core.ESemantic, "diag:anchor id %q collides with an existing element id", spec.ID)
				return false
			}
			specs[spec.ID] = spec
		}
		return true
	})
	return specs, walkErr
}
