package compile

import (
	"context"

	"github.com/svgppc/svgpp/core/affine"
	"github.com/svgppc/svgpp/engine/anchor"
	"github.com/svgppc/svgpp/engine/oracle"
	"github.com/svgppc/svgpp/engine/xmltree"
)

// globalBoxes walks the fully rendered tree accumulating each ancestor's
// `transform` attribute into a running affine matrix, and records every
// identified element's global-frame box (oracle-measured size, transform-
// mapped origin) for arrow/anchor resolution — spec §4.9's "coordinates at
// this stage are global (root document frame)".
func globalBoxes(ctx context.Context, root *xmltree.Node, o oracle.Oracle) (map[string]anchor.Box, error) {
	boxes := make(map[string]anchor.Box)
	var walkErr error
	var walk func(n *xmltree.Node, m affine.Matrix)
	walk = func(n *xmltree.Node, m affine.Matrix) {
		if walkErr != nil {
			return
		}
		local := m
		if v, ok := n.Attr("", "transform"); ok {
			local = affine.Multiply(affine.Parse(v), m)
		}
		if id, ok := n.Attr("", "id"); ok {
			box, err := o.Measure(ctx, n)
			if err != nil {
				walkErr = err
				return
			}
			gx, gy := local.Apply(box.X, box.Y)
			boxes[id] = anchor.Box{X: gx, Y: gy, Width: box.Width, Height: box.Height}
		}
		for _, c := range n.Children {
			walk(c, local)
		}
	}
	walk(root, affine.Identity)
	return boxes, walkErr
}
