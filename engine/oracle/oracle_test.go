package oracle

import (
	"context"
	"testing"

	"github.com/svgppc/svgpp/engine/xmltree"
)

func TestStaticMeasuresRect(t *testing.T) {
	n := xmltree.NewElement("", "rect")
	n.SetAttr("", "width", "40")
	n.SetAttr("", "height", "25")
	box, err := (Static{}).Measure(context.Background(), n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if box.Width != 40 || box.Height != 25 {
		t.Fatalf("got %+v", box)
	}
}

func TestStaticMeasuresCircleAsDiameterBox(t *testing.T) {
	n := xmltree.NewElement("", "circle")
	n.SetAttr("", "r", "5")
	box, err := (Static{}).Measure(context.Background(), n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if box.Width != 10 || box.Height != 10 {
		t.Fatalf("got %+v", box)
	}
}

func TestStaticMeasuresRectLocalOrigin(t *testing.T) {
	n := xmltree.NewElement("", "rect")
	n.SetAttr("", "x", "200")
	n.SetAttr("", "y", "50")
	n.SetAttr("", "width", "40")
	n.SetAttr("", "height", "25")
	box, err := (Static{}).Measure(context.Background(), n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if box.X != 200 || box.Y != 50 {
		t.Fatalf("expected a rect's local origin to reflect its x/y attrs, got %+v", box)
	}
}

func TestStaticMeasuresCircleLocalOriginAsBoundingBoxCorner(t *testing.T) {
	n := xmltree.NewElement("", "circle")
	n.SetAttr("", "cx", "100")
	n.SetAttr("", "cy", "60")
	n.SetAttr("", "r", "5")
	box, err := (Static{}).Measure(context.Background(), n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if box.X != 95 || box.Y != 55 {
		t.Fatalf("expected the circle's box to be anchored at cx-r,cy-r, got %+v", box)
	}
}

func TestStaticMeasuresLineLocalOriginAsMinCorner(t *testing.T) {
	n := xmltree.NewElement("", "line")
	n.SetAttr("", "x1", "30")
	n.SetAttr("", "y1", "80")
	n.SetAttr("", "x2", "10")
	n.SetAttr("", "y2", "20")
	box, err := (Static{}).Measure(context.Background(), n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if box.X != 10 || box.Y != 20 || box.Width != 20 || box.Height != 60 {
		t.Fatalf("expected the line's box to be anchored at its min corner, got %+v", box)
	}
}
