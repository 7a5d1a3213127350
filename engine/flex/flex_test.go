package flex

import (
	"testing"

	"github.com/svgppc/svgpp/engine/style"
	"github.com/svgppc/svgpp/engine/xmltree"
)

type fixedRenderer struct{}

func (fixedRenderer) RenderGeneric(n *xmltree.Node) (*xmltree.Node, error) {
	return n.Clone(), nil
}

type fixedMeasurer struct {
	w, h float64
}

func (f fixedMeasurer) Measure(svg *xmltree.Node) (float64, float64, error) {
	return f.w, f.h, nil
}

func buildFlex(direction string, children ...*xmltree.Node) *xmltree.Node {
	n := xmltree.NewElement("diag", "flex")
	if direction != "" {
		n.SetAttr("", "direction", direction)
	}
	for _, c := range children {
		n.Append(c)
	}
	return n
}

func TestLayoutColumnStacksChildrenVertically(t *testing.T) {
	n := buildFlex("column",
		xmltree.NewElement("", "rect"),
		xmltree.NewElement("", "rect"),
	)
	g, w, h, err := Layout(n, "diag", style.Sheet{}, 0, false, fixedRenderer{}, fixedMeasurer{w: 10, h: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 10 {
		t.Fatalf("expected width 10, got %v", w)
	}
	if h != 40 {
		t.Fatalf("expected height 40 (2x20 stacked), got %v", h)
	}
	if len(g.Children) != 2 {
		t.Fatalf("expected 2 positioned children, got %d", len(g.Children))
	}
}

func TestLayoutRowSumsWidths(t *testing.T) {
	n := buildFlex("row",
		xmltree.NewElement("", "rect"),
		xmltree.NewElement("", "rect"),
	)
	n.SetAttr("", "gap", "5")
	_, w, h, err := Layout(n, "diag", style.Sheet{}, 0, false, fixedRenderer{}, fixedMeasurer{w: 10, h: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 25 {
		t.Fatalf("expected width 10+10+5=25, got %v", w)
	}
	if h != 20 {
		t.Fatalf("expected height 20, got %v", h)
	}
}

func TestLayoutRespectsExplicitWidthFloor(t *testing.T) {
	n := buildFlex("column", xmltree.NewElement("", "rect"))
	n.SetAttr("", "width", "500")
	_, w, _, err := Layout(n, "diag", style.Sheet{}, 0, false, fixedRenderer{}, fixedMeasurer{w: 10, h: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 500 {
		t.Fatalf("expected declared width to win, got %v", w)
	}
}

func TestLayoutBackgroundRectCoversBounds(t *testing.T) {
	n := buildFlex("column", xmltree.NewElement("", "rect"))
	n.SetAttr("", "background-class", "box")
	g, w, h, err := Layout(n, "diag", style.Sheet{}, 0, false, fixedRenderer{}, fixedMeasurer{w: 10, h: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Children) == 0 || g.Children[0].Name.Local != "rect" {
		t.Fatal("expected background rect to be the first child")
	}
	rw := g.Children[0].AttrDefault("", "width", "")
	rh := g.Children[0].AttrDefault("", "height", "")
	if rw != ftoa(w) || rh != ftoa(h) {
		t.Fatalf("expected background rect to cover bounds, got %sx%s want %vx%v", rw, rh, w, h)
	}
}
