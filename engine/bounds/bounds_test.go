package bounds

import (
	"context"
	"testing"

	"github.com/svgppc/svgpp/engine/oracle"
	"github.com/svgppc/svgpp/engine/xmltree"
)

type fixedOracle struct{ box oracle.Box }

func (f fixedOracle) Measure(ctx context.Context, n *xmltree.Node) (oracle.Box, error) {
	return f.box, nil
}
func (f fixedOracle) Render(ctx context.Context, doc *xmltree.Node, format string) ([]byte, error) {
	return nil, nil
}

func TestFitSetsViewBoxAndBackground(t *testing.T) {
	root := xmltree.NewElement("", "svg")
	o := fixedOracle{box: oracle.Box{Width: 100, Height: 50}}
	if err := Fit(context.Background(), root, o, "diag"); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if vb, _ := root.Attr("", "viewBox"); vb != "0 0 100 50" {
		t.Fatalf("got viewBox %q", vb)
	}
	if len(root.Children) == 0 || root.Children[0].Name.Local != "rect" {
		t.Fatal("expected background rect to be first child")
	}
}

func TestFitSkipsBackgroundWhenNone(t *testing.T) {
	root := xmltree.NewElement("", "svg")
	root.SetAttr("diag", "background", "none")
	o := fixedOracle{box: oracle.Box{Width: 10, Height: 10}}
	if err := Fit(context.Background(), root, o, "diag"); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if len(root.Children) != 0 {
		t.Fatal("expected no background rect inserted")
	}
}

func TestFitPreservesLargerUserWidth(t *testing.T) {
	root := xmltree.NewElement("", "svg")
	root.SetAttr("", "width", "500")
	o := fixedOracle{box: oracle.Box{Width: 100, Height: 50}}
	if err := Fit(context.Background(), root, o, "diag"); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if w, _ := root.Attr("", "width"); w != "500" {
		t.Fatalf("expected preserved width 500, got %q", w)
	}
}
