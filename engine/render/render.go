/*
Package render implements stage 8 of the pipeline (spec §2): a generic tree
walk that passes ordinary SVG/foreign-namespace elements through unchanged
(minus diag-namespaced hints) while recursing into `diag:flex` via
engine/flex. It implements flex.GenericRenderer and flex.Measurer so flex
can hand it arbitrary non-flex, non-text children without either package
importing the other directly.
*/
package render

import (
	"context"

	"github.com/svgppc/svgpp/engine/flex"
	"github.com/svgppc/svgpp/engine/oracle"
	"github.com/svgppc/svgpp/engine/style"
	"github.com/svgppc/svgpp/engine/xmltree"
)

// Renderer walks an element tree, expanding diag:flex subtrees as it goes
// and handing everything else to the configured Oracle for measurement.
type Renderer struct {
	DiagNS string
	Sheet  style.Sheet
	Oracle oracle.Oracle
	ctx    context.Context
}

// New returns a Renderer bound to ctx for the duration of one compile call.
func New(ctx context.Context, diagNS string, sheet style.Sheet, o oracle.Oracle) *Renderer {
	return &Renderer{DiagNS: diagNS, Sheet: sheet, Oracle: o, ctx: ctx}
}

// RenderGeneric implements flex.GenericRenderer: clone n, strip diag
// attributes, and recurse into children — diag:flex children delegate back
// into engine/flex with this Renderer supplying both callback interfaces.
func (r *Renderer) RenderGeneric(n *xmltree.Node) (*xmltree.Node, error) {
	if n.Name.Space == r.DiagNS && n.Name.Local == "flex" {
		g, _, _, err := flex.Layout(n, r.DiagNS, r.Sheet, 0, false, r, r)
		return g, err
	}

	out := xmltree.NewElement(n.Name.Space, n.Name.Local)
	for _, a := range n.Attrs {
		if a.Name.Space == r.DiagNS {
			continue
		}
		out.SetAttr(a.Name.Space, a.Name.Local, a.Value)
	}
	out.Text = n.Text
	for _, c := range n.Children {
		rendered, err := r.RenderGeneric(c)
		if err != nil {
			return nil, err
		}
		rendered.Tail = c.Tail
		out.Append(rendered)
	}
	return out, nil
}

// Measure implements flex.Measurer by passing svg unchanged to the geometry
// oracle and returning the measured width and height.
func (r *Renderer) Measure(svg *xmltree.Node) (float64, float64, error) {
	box, err := r.Oracle.Measure(r.ctx, svg)
	if err != nil {
		return 0, 0, err
	}
	return box.Width, box.Height, nil
}
