/*
Package flex implements the `diag:flex` layout engine (spec §4.4): a
two-pass measure-then-arrange container in the style of CSS flexbox's
single-axis intrinsic sizing, restricted to the single-axis column/row case
svg++ exposes.

Children that are themselves `diag:flex` recurse directly into this
package; `<text>` children go through engine/text; everything else is
handed to a caller-supplied GenericRenderer + Measurer pair so this package
never needs to know how to fully render arbitrary SVG/foreign-namespace
content or how to talk to the geometry oracle — both are supplied by the
render package at the top of the pipeline, breaking what would otherwise be
an import cycle (render needs Layout for diag:flex children; Layout needs
render for everything else).
*/
package flex

import (
	"strconv"

	"github.com/npillmayer/schuko/tracing"

	"github.com/svgppc/svgpp/core/dimen"
	"github.com/svgppc/svgpp/engine/style"
	"github.com/svgppc/svgpp/engine/text"
	"github.com/svgppc/svgpp/engine/xmltree"
)

func tracer() tracing.Trace { return tracing.Select("svgpp.flex") }

const (
	DirectionColumn = "column"
	DirectionRow    = "row"
)

// GenericRenderer renders a non-flex, non-text element into its final SVG
// form (stage 8 of the pipeline) so flex can hand it to Measurer.
type GenericRenderer interface {
	RenderGeneric(n *xmltree.Node) (*xmltree.Node, error)
}

// Measurer asks the external geometry oracle for an already-rendered
// element's bounding box dimensions.
type Measurer interface {
	Measure(svg *xmltree.Node) (width, height float64, err error)
}

// measuredChild is one child's render output plus its measured box.
type measuredChild struct {
	rendered *xmltree.Node
	width    float64
	height   float64
}

// Layout measures and arranges a single diag:flex element's children and
// returns the emitted <g> plus its own (width, height).
func Layout(n *xmltree.Node, diagNS string, sheet style.Sheet, parentHint float64, hasParentHint bool, gr GenericRenderer, ms Measurer) (*xmltree.Node, float64, float64, error) {
	direction := n.AttrDefault("", "direction", DirectionColumn)
	if direction != DirectionRow {
		direction = DirectionColumn
	}
	gap := dimen.ParseLength(n.AttrDefault("", "gap", "0"), 0)
	padding := dimen.ParseLength(n.AttrDefault("", "padding", "0"), 0)

	var explicitWidth float64
	hasExplicitWidth := false
	if v, ok := n.Attr("", "width"); ok {
		explicitWidth = dimen.ParseLength(v, 0)
		hasExplicitWidth = true
	}

	hint, hasHint := interiorHint(explicitWidth, hasExplicitWidth, parentHint, hasParentHint, padding)

	children, err := measureChildren(n, diagNS, sheet, hint, hasHint, gr, ms)
	if err != nil {
		return nil, 0, 0, err
	}

	totalWidth, totalHeight := arrangeSize(direction, children, gap, padding, hint, hasHint)
	if hasExplicitWidth {
		totalWidth = dimen.Max(totalWidth, explicitWidth)
	}

	g := xmltree.NewElement("", "g")
	x := dimen.ParseLength(n.AttrDefault("", "x", "0"), 0)
	y := dimen.ParseLength(n.AttrDefault("", "y", "0"), 0)
	g.SetAttr("", "transform", translate(x, y))
	copyPassthroughAttrs(n, g, diagNS)

	bgClass, hasBGClass := n.Attr("", "background-class")
	bgStyle, hasBGStyle := n.Attr("", "background-style")
	if hasBGClass || hasBGStyle {
		rect := xmltree.NewElement("", "rect")
		rect.SetAttr("", "width", ftoa(totalWidth))
		rect.SetAttr("", "height", ftoa(totalHeight))
		if hasBGClass {
			rect.SetAttr("", "class", bgClass)
		}
		if hasBGStyle {
			rect.SetAttr("", "style", bgStyle)
		}
		g.Append(rect)
	}

	placeChildren(g, direction, children, gap, padding)

	tracer().Debugf("flex %s laid out %d children -> %vx%v", direction, len(children), totalWidth, totalHeight)
	return g, totalWidth, totalHeight, nil
}

// interiorHint computes the width hint handed to children, per spec §4.4:
// "it is the explicit width if set, else the parent's hint; when passing to
// children the interior width max(hint − 2·padding, 0) is used."
func interiorHint(explicitWidth float64, hasExplicitWidth bool, parentHint float64, hasParentHint bool, padding float64) (float64, bool) {
	if hasExplicitWidth {
		return dimen.Clamp0(explicitWidth - 2*padding), true
	}
	if hasParentHint {
		return dimen.Clamp0(parentHint - 2*padding), true
	}
	return 0, false
}

func measureChildren(n *xmltree.Node, diagNS string, sheet style.Sheet, hint float64, hasHint bool, gr GenericRenderer, ms Measurer) ([]measuredChild, error) {
	var out []measuredChild
	for _, c := range n.Children {
		if c.Name.Space == diagNS {
			switch c.Name.Local {
			case "flex":
				rendered, w, h, err := Layout(c, diagNS, sheet, hint, hasHint, gr, ms)
				if err != nil {
					return nil, err
				}
				out = append(out, measuredChild{rendered: rendered, width: w, height: h})
				continue
			default:
				// Other diag-namespaced elements (graph/arrow/anchor/etc.) are
				// expanded or collected in earlier pipeline stages and should
				// not reach flex directly; skip defensively rather than panic.
				continue
			}
		}
		if c.Name.Local == "text" && (c.Name.Space == "" || c.Name.Space == xmltree.SVGNamespace) {
			rendered, w, h := measureText(c, sheet, diagNS, hint, hasHint)
			out = append(out, measuredChild{rendered: rendered, width: w, height: h})
			continue
		}
		rendered, err := gr.RenderGeneric(c)
		if err != nil {
			return nil, err
		}
		w, h, err := ms.Measure(rendered)
		if err != nil {
			return nil, err
		}
		out = append(out, measuredChild{rendered: rendered, width: w, height: h})
	}
	return out, nil
}

func measureText(c *xmltree.Node, sheet style.Sheet, diagNS string, hint float64, hasHint bool) (*xmltree.Node, float64, float64) {
	resolved := text.Resolve(c, sheet, diagNS, hint, hasHint)
	content := c.TextContent()

	out := xmltree.NewElement("", "text")
	copyPassthroughAttrs(c, out, diagNS)
	out.SetAttr("", "font-size", ftoa(resolved.Size))

	if resolved.Wrap && hasHint && hint > 0 {
		lines := text.Wrap(resolved.Face, content, hint)
		m := resolved.Face.Metrics()
		if _, hasY := c.Attr("", "y"); !hasY {
			out.SetAttr("", "y", ftoa(m.Ascent))
		}
		maxWidth := 0.0
		for i, line := range lines {
			tspan := xmltree.NewElement("", "tspan")
			if i == 0 {
				tspan.SetAttr("", "x", out.AttrDefault("", "x", "0"))
				tspan.SetAttr("", "dy", "0")
			} else {
				tspan.SetAttr("", "x", out.AttrDefault("", "x", "0"))
				tspan.SetAttr("", "dy", "1.2em")
			}
			tspan.Text = line.Text
			out.Append(tspan)
			maxWidth = dimen.Max(maxWidth, line.Width)
		}
		height := text.MeasureHeight(m, len(lines))
		return out, maxWidth, height
	}

	out.Text = content
	m := resolved.Face.Metrics()
	w := resolved.Face.Measure(content)
	h := text.MeasureHeight(m, 1)
	if _, hasY := c.Attr("", "y"); !hasY {
		out.SetAttr("", "y", ftoa(m.Ascent))
	}
	return out, w, h
}

func arrangeSize(direction string, children []measuredChild, gap, padding, hint float64, hasHint bool) (float64, float64) {
	n := len(children)
	if direction == DirectionRow {
		sum := 0.0
		maxH := 0.0
		for _, c := range children {
			sum += c.width
			maxH = dimen.Max(maxH, c.height)
		}
		if n > 1 {
			sum += float64(n-1) * gap
		}
		interior := sum
		if hasHint {
			interior = dimen.Max(hint, sum)
		}
		return interior + 2*padding, maxH + 2*padding
	}
	// column
	sumH := 0.0
	maxW := 0.0
	for _, c := range children {
		sumH += c.height
		maxW = dimen.Max(maxW, c.width)
	}
	if n > 1 {
		sumH += float64(n-1) * gap
	}
	interior := maxW
	if hasHint {
		interior = dimen.Max(hint, maxW)
	}
	return interior + 2*padding, sumH + 2*padding
}

func placeChildren(g *xmltree.Node, direction string, children []measuredChild, gap, padding float64) {
	if direction == DirectionRow {
		x := padding
		for _, c := range children {
			wrapper := xmltree.NewElement("", "g")
			wrapper.SetAttr("", "transform", translate(x, padding))
			wrapper.Append(c.rendered)
			g.Append(wrapper)
			x += c.width + gap
		}
		return
	}
	y := padding
	for _, c := range children {
		wrapper := xmltree.NewElement("", "g")
		wrapper.SetAttr("", "transform", translate(padding, y))
		wrapper.Append(c.rendered)
		g.Append(wrapper)
		y += c.height + gap
	}
}

// copyPassthroughAttrs copies every non-diag, non-control attribute from
// src to dst, stripping diag-namespaced hints per spec §3's namespace
// cleanliness invariant.
func copyPassthroughAttrs(src, dst *xmltree.Node, diagNS string) {
	control := map[string]bool{
		"direction": true, "gap": true, "padding": true, "width": true,
		"x": true, "y": true, "background-class": true, "background-style": true,
	}
	for _, a := range src.Attrs {
		if a.Name.Space == diagNS {
			continue
		}
		if a.Name.Space == "" && control[a.Name.Local] {
			continue
		}
		dst.SetAttr(a.Name.Space, a.Name.Local, a.Value)
	}
}

func translate(x, y float64) string {
	return "translate(" + ftoa(x) + "," + ftoa(y) + ")"
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
