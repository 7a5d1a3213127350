/*
Package bounds implements the final fitting pass (spec §4.11): ask the
geometry oracle for the rendered subtree's overall box, set viewBox/width/
height (preserving a user-supplied literal that is already large enough),
and insert a background rect unless the user opted out.
*/
package bounds

import (
	"context"
	"strconv"

	"github.com/svgppc/svgpp/core/dimen"
	"github.com/svgppc/svgpp/engine/oracle"
	"github.com/svgppc/svgpp/engine/xmltree"
)

// Fit measures root's rendered content via o, sets its viewBox/width/height
// (inflated by an optional padding attribute), and inserts a background
// rect as the first child unless background is "none"/"transparent".
func Fit(ctx context.Context, root *xmltree.Node, o oracle.Oracle, diagNS string) error {
	box, err := o.Measure(ctx, root)
	if err != nil {
		return err
	}

	padding := dimen.ParseLength(root.AttrDefault(diagNS, "padding", "0"), 0)
	minX, minY := -padding, -padding
	width := box.Width + 2*padding
	height := box.Height + 2*padding

	if uw, ok := root.Attr("", "width"); ok {
		if v := dimen.ParseLength(uw, 0); v > width {
			width = v
		}
	}
	if uh, ok := root.Attr("", "height"); ok {
		if v := dimen.ParseLength(uh, 0); v > height {
			height = v
		}
	}

	root.SetAttr("", "viewBox", ftoa(minX)+" "+ftoa(minY)+" "+ftoa(width)+" "+ftoa(height))
	root.SetAttr("", "width", ftoa(width))
	root.SetAttr("", "height", ftoa(height))

	bg := root.AttrDefault(diagNS, "background", "#fff")
	if bg != "none" && bg != "transparent" {
		rect := xmltree.NewElement("", "rect")
		rect.SetAttr("", "x", ftoa(minX))
		rect.SetAttr("", "y", ftoa(minY))
		rect.SetAttr("", "width", ftoa(width))
		rect.SetAttr("", "height", ftoa(height))
		rect.SetAttr("", "fill", bg)
		root.InsertAt(0, rect)
	}
	return nil
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
