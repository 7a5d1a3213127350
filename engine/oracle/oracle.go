/*
Package oracle defines the contract for the external geometry oracle named
in spec §6: a collaborator that can render an arbitrary SVG fragment and
report back its rendered bounding box. svg++ treats it as an external
process boundary (a headless browser, a native rasterizer, anything that
can answer "how big is this") rather than something this module
implements — compile wires in whatever concrete Oracle the embedding
application supplies.
*/
package oracle

import (
	"context"

	"github.com/svgppc/svgpp/core/dimen"
	"github.com/svgppc/svgpp/engine/xmltree"
)

// Box is a measured bounding box in user units. X/Y is the box's own local
// top-left offset within the element's coordinate frame — what a real
// oracle backed by SVG's getBBox() would report alongside width/height —
// distinct from the global position a transform chain later maps it to.
type Box struct {
	X, Y   float64
	Width  float64
	Height float64
}

// Oracle measures and rasterizes already-rendered SVG fragments.
type Oracle interface {
	// Measure renders n, passed as is with no enclosing root SVG, and
	// reports its content bounding box.
	Measure(ctx context.Context, n *xmltree.Node) (Box, error)

	// Render rasterizes a complete SVG document to the given format
	// ("png", "pdf", ...), used only at the very end of the pipeline.
	Render(ctx context.Context, doc *xmltree.Node, format string) ([]byte, error)
}

// Static is a trivial Oracle for elements whose geometry can be computed
// without an external renderer (plain rects/circles/lines with explicit
// numeric geometry attributes) — it is not a substitute for a real Oracle,
// only a fallback so unit tests and simple shapes don't require one.
type Static struct{}

func (Static) Measure(ctx context.Context, n *xmltree.Node) (Box, error) {
	switch n.Name.Local {
	case "rect", "image", "svg", "foreignObject":
		return Box{
			X:      attrFloat(n, "x"),
			Y:      attrFloat(n, "y"),
			Width:  attrFloat(n, "width"),
			Height: attrFloat(n, "height"),
		}, nil
	case "circle":
		r := attrFloat(n, "r")
		return Box{X: attrFloat(n, "cx") - r, Y: attrFloat(n, "cy") - r, Width: r * 2, Height: r * 2}, nil
	case "ellipse":
		rx, ry := attrFloat(n, "rx"), attrFloat(n, "ry")
		return Box{X: attrFloat(n, "cx") - rx, Y: attrFloat(n, "cy") - ry, Width: rx * 2, Height: ry * 2}, nil
	case "line":
		x1, y1 := attrFloat(n, "x1"), attrFloat(n, "y1")
		x2, y2 := attrFloat(n, "x2"), attrFloat(n, "y2")
		return Box{X: minf(x1, x2), Y: minf(y1, y2), Width: absf(x2 - x1), Height: absf(y2 - y1)}, nil
	default:
		return Box{}, nil
	}
}

func (Static) Render(ctx context.Context, doc *xmltree.Node, format string) ([]byte, error) {
	return []byte(xmltree.Serialize(doc)), nil
}

func attrFloat(n *xmltree.Node, name string) float64 {
	v, ok := n.Attr("", name)
	if !ok {
		return 0
	}
	return dimen.ParseLength(v, 0)
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
