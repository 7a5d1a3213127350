package arrow

import (
	"fmt"
	"math"
	"testing"

	"github.com/svgppc/svgpp/engine/anchor"
	"github.com/svgppc/svgpp/engine/xmltree"
)

func TestCollectReplacesArrowWithSentinelAtSameIndex(t *testing.T) {
	root := xmltree.NewElement("diag", "diagram")
	before := xmltree.NewElement("", "rect")
	a := xmltree.NewElement("diag", "arrow")
	a.SetAttr("", "from", "a")
	a.SetAttr("", "to", "b")
	after := xmltree.NewElement("", "circle")
	root.Append(before)
	root.Append(a)
	root.Append(after)

	specs, err := Collect(root, "diag")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}
	if root.Children[1].Name.Local != "g" {
		t.Fatalf("expected sentinel at index 1, got %s", root.Children[1].Name.Local)
	}
	if v, _ := root.Children[1].Attr("", "data-diag-arrow-slot"); v != "0" {
		t.Fatalf("expected slot 0, got %q", v)
	}
}

func TestCollectRejectsArrowAsRoot(t *testing.T) {
	root := xmltree.NewElement("diag", "arrow")
	if _, err := Collect(root, "diag"); err == nil {
		t.Fatal("expected error for arrow as document root")
	}
}

func TestRayRectIntersectionOnDisjointBoxesHitsBoundary(t *testing.T) {
	r1 := anchor.Box{X: 0, Y: 0, Width: 100, Height: 100}
	r2 := anchor.Box{X: 200, Y: 0, Width: 100, Height: 100}
	p1, p2, err := centerLine(r1, r2)
	if err != nil {
		t.Fatalf("centerLine: %v", err)
	}
	if math.Abs(p1.X-100) > 1 || math.Abs(p1.Y-50) > 1 {
		t.Fatalf("expected p1 near (100,50), got %+v", p1)
	}
	if math.Abs(p2.X-200) > 1 || math.Abs(p2.Y-50) > 1 {
		t.Fatalf("expected p2 near (200,50), got %+v", p2)
	}
}

func TestEndpointsAbsoluteAnchors(t *testing.T) {
	anchors := map[string]Point{
		"p1": {X: 40, Y: 80},
		"p2": {X: 220, Y: 80},
	}
	p1, p2, err := Endpoints("p1", "p2", nil, anchors)
	if err != nil {
		t.Fatalf("Endpoints: %v", err)
	}
	if p1 != (Point{X: 40, Y: 80}) || p2 != (Point{X: 220, Y: 80}) {
		t.Fatalf("expected exact anchor coordinates, got %+v %+v", p1, p2)
	}
}

func TestLabelRotationWithinRange(t *testing.T) {
	spec := &Spec{Label: "edge", LabelSize: 12, LabelFill: "#000"}
	n := label(spec, Point{X: 0, Y: 0}, Point{X: 100, Y: 200})
	v, ok := n.Attr("", "transform")
	if !ok {
		// the segment's angle is about 63.4 degrees, well past the 15 degree cutoff
		t.Fatal("expected a rotate() transform on the label")
	}
	var angle float64
	if _, err := fmt.Sscanf(v, "rotate(%f", &angle); err != nil {
		t.Fatalf("transform %q does not parse as rotate(): %v", v, err)
	}
	if angle < -90 || angle > 90 {
		t.Fatalf("expected label angle within [-90,90], got %v", angle)
	}
}

func TestEndpointsErrorsOnUnknownReference(t *testing.T) {
	if _, _, err := Endpoints("ghost", "also-ghost", map[string]anchor.Box{}, map[string]Point{}); err == nil {
		t.Fatal("expected error for unresolvable endpoints")
	}
}
