package compile

import (
	"fmt"
	"strconv"

	"github.com/svgppc/svgpp/core"
	"github.com/svgppc/svgpp/core/affine"
	"github.com/svgppc/svgpp/engine/anchor"
	"github.com/svgppc/svgpp/engine/arrow"
	"github.com/svgppc/svgpp/engine/xmltree"
)

// emitArrows resolves every collected arrow's endpoints against the final,
// global-frame boxes and anchor points, then emits each as a <line> (plus
// optional label) into its sentinel's parent — spec §4.9: "walk up to the
// root concatenating each element's transform attribute into an affine;
// invert it; map both endpoints through the inverse ... If the matrix is
// singular, fall back to appending to the root."
func emitArrows(svg *xmltree.Node, boxes map[string]anchor.Box, anchorSpecs map[string]anchor.Spec, specs []*arrow.Spec) error {
	anchorPoints := make(map[string]arrow.Point, len(anchorSpecs))
	for id, spec := range anchorSpecs {
		x, y, err := anchor.Resolve(spec, boxes)
		if err != nil {
			return err
		}
		anchorPoints[id] = arrow.Point{X: x, Y: y}
	}

	var markerID string
	ensureMarker := func() string {
		if markerID == "" {
			markerID = installDefaultMarker(svg)
		}
		return markerID
	}

	for _, spec := range specs {
		sentinel := findSentinel(svg, spec.Slot)
		if sentinel == nil {
			return core.New(core.EInternal, "arrow sentinel for slot %d missing after rendering", spec.Slot)
		}

		p1, p2, err := arrow.Endpoints(spec.From, spec.To, boxes, anchorPoints)
		if err != nil {
			return err
		}

		target := sentinel.Parent
		inv, ok := arrow.AncestorTransform(sentinel).Invert()
		if !ok {
			target = svg
			inv = affine.Identity
		}
		lx1, ly1 := inv.Apply(p1.X, p1.Y)
		lx2, ly2 := inv.Apply(p2.X, p2.Y)

		_, hasStart := spec.Attrs["marker-start"]
		_, hasEnd := spec.Attrs["marker-end"]
		markerURL := ""
		if !hasStart && !hasEnd {
			markerURL = "url(#" + ensureMarker() + ")"
		}
		arrow.Emit(target, spec, arrow.Point{X: lx1, Y: ly1}, arrow.Point{X: lx2, Y: ly2}, markerURL)

		if idx := target.ChildIndex(sentinel); idx >= 0 {
			target.RemoveChildAt(idx)
		}
	}
	return nil
}

// installDefaultMarker inserts the single shared default arrowhead marker
// as the first child of svg, suffixing its id -1, -2, ... on collision with
// an existing id (spec §4.9).
func installDefaultMarker(svg *xmltree.Node) string {
	id := uniqueID("diag-arrow-default", svg)
	defs := xmltree.NewElement("", "defs")
	marker := xmltree.NewElement("", "marker")
	marker.SetAttr("", "id", id)
	marker.SetAttr("", "markerWidth", "8")
	marker.SetAttr("", "markerHeight", "8")
	marker.SetAttr("", "refX", "7")
	marker.SetAttr("", "refY", "4")
	marker.SetAttr("", "orient", "auto-start-reverse")
	path := xmltree.NewElement("", "path")
	path.SetAttr("", "d", "M0,0 L8,4 L0,8 z")
	path.SetAttr("", "fill", "#555")
	marker.Append(path)
	defs.Append(marker)
	svg.InsertAt(0, defs)
	return id
}

func uniqueID(base string, root *xmltree.Node) string {
	existing := collectElementIDs(root, "")
	if !existing[base] {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !existing[candidate] {
			return candidate
		}
	}
}

func findSentinel(root *xmltree.Node, slot int) *xmltree.Node {
	want := strconv.Itoa(slot)
	var found *xmltree.Node
	root.Walk(func(n *xmltree.Node) bool {
		if found != nil {
			return false
		}
		if v, ok := n.Attr("", "data-diag-arrow-slot"); ok && v == want {
			found = n
			return false
		}
		return true
	})
	return found
}
