package compile

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/svgppc/svgpp/engine/xmltree"
)

func graphNodeTransform(t *testing.T, n *xmltree.Node) (float64, float64) {
	t.Helper()
	v, ok := n.Attr("", "transform")
	if !ok {
		t.Fatal("expected a transform attribute")
	}
	var x, y float64
	if _, err := fmt.Sscanf(v, "translate(%f,%f)", &x, &y); err != nil {
		t.Fatalf("could not parse transform %q: %v", v, err)
	}
	return x, y
}

func TestExpandOneGraphRejectsInvalidLayout(t *testing.T) {
	src := `<diag:diagram xmlns:diag="` + diagNS + `">
		<diag:graph layout="hexagonal">
			<diag:node id="a"><rect width="20" height="10"/></diag:node>
		</diag:graph>
	</diag:diagram>`
	doc := parseDoc(t, src)
	c := New(Options{})
	_, err := c.CompileDocument(context.Background(), doc, ".")
	if err == nil || !strings.Contains(err.Error(), "layout") {
		t.Fatalf("expected a layout validation error, got %v", err)
	}
}

func TestExpandOneGraphRejectsInvalidRouting(t *testing.T) {
	src := `<diag:diagram xmlns:diag="` + diagNS + `">
		<diag:graph routing="zigzag">
			<diag:node id="a"><rect width="20" height="10"/></diag:node>
		</diag:graph>
	</diag:diagram>`
	doc := parseDoc(t, src)
	c := New(Options{})
	_, err := c.CompileDocument(context.Background(), doc, ".")
	if err == nil || !strings.Contains(err.Error(), "routing") {
		t.Fatalf("expected a routing validation error, got %v", err)
	}
}

func TestExpandOneGraphRejectsInvalidQuality(t *testing.T) {
	src := `<diag:diagram xmlns:diag="` + diagNS + `">
		<diag:graph quality="excellent">
			<diag:node id="a"><rect width="20" height="10"/></diag:node>
		</diag:graph>
	</diag:diagram>`
	doc := parseDoc(t, src)
	c := New(Options{})
	_, err := c.CompileDocument(context.Background(), doc, ".")
	if err == nil || !strings.Contains(err.Error(), "quality") {
		t.Fatalf("expected a quality validation error, got %v", err)
	}
}

func TestExpandOneGraphRejectsNegativeNodeGap(t *testing.T) {
	src := `<diag:diagram xmlns:diag="` + diagNS + `">
		<diag:graph node-gap="-5">
			<diag:node id="a"><rect width="20" height="10"/></diag:node>
		</diag:graph>
	</diag:diagram>`
	doc := parseDoc(t, src)
	c := New(Options{})
	_, err := c.CompileDocument(context.Background(), doc, ".")
	if err == nil || !strings.Contains(err.Error(), "node-gap") {
		t.Fatalf("expected a node-gap validation error, got %v", err)
	}
}

func TestExpandOneGraphRLDirectionNegatesMainAxis(t *testing.T) {
	src := `<diag:diagram xmlns:diag="` + diagNS + `">
		<diag:graph direction="RL">
			<diag:node id="a"><rect width="40" height="20"/></diag:node>
			<diag:node id="b"><rect width="40" height="20"/></diag:node>
			<diag:edge from="a" to="b"/>
		</diag:graph>
	</diag:diagram>`
	doc := parseDoc(t, src)
	c := New(Options{})
	svg, err := c.CompileDocument(context.Background(), doc, ".")
	if err != nil {
		t.Fatalf("CompileDocument: %v", err)
	}
	var aX, bX float64
	found := 0
	svg.Walk(func(n *xmltree.Node) bool {
		id, ok := n.Attr("", "id")
		if !ok {
			return true
		}
		switch id {
		case "a":
			aX, _ = graphNodeTransform(t, n)
			found++
		case "b":
			bX, _ = graphNodeTransform(t, n)
			found++
		}
		return true
	})
	if found != 2 {
		t.Fatalf("expected to find both node a and b wrappers, found %d", found)
	}
	if !(bX < aX) {
		t.Fatalf("expected direction=RL to place b strictly left of a (b.x < a.x), got a.x=%v b.x=%v", aX, bX)
	}
}

func TestExpandOneGraphClipsEdgeEndpointsToNodeBoxes(t *testing.T) {
	src := `<diag:diagram xmlns:diag="` + diagNS + `">
		<diag:graph>
			<diag:node id="a"><rect width="40" height="20"/></diag:node>
			<diag:node id="b"><rect width="40" height="20"/></diag:node>
			<diag:edge from="a" to="b"/>
		</diag:graph>
	</diag:diagram>`
	doc := parseDoc(t, src)
	c := New(Options{})
	svg, err := c.CompileDocument(context.Background(), doc, ".")
	if err != nil {
		t.Fatalf("CompileDocument: %v", err)
	}
	var aX, aY float64
	var path *xmltree.Node
	svg.Walk(func(n *xmltree.Node) bool {
		if id, ok := n.Attr("", "id"); ok && id == "a" {
			aX, aY = graphNodeTransform(t, n)
		}
		if n.Name.Local == "path" {
			path = n
		}
		return true
	})
	if path == nil {
		t.Fatal("expected an emitted edge path")
	}
	d, _ := path.Attr("", "d")
	const nodeHeight = 20.0
	expectedStart := fmt.Sprintf("M%s,%s", ftoaG(aX+20), ftoaG(aY+nodeHeight))
	if !strings.HasPrefix(d, expectedStart) {
		t.Fatalf("expected edge path to start clipped at a's bottom edge (%s), got %q", expectedStart, d)
	}
}

func TestExpandOneGraphWiresMinWidthIntoNodeSpacing(t *testing.T) {
	src := `<diag:diagram xmlns:diag="` + diagNS + `">
		<diag:graph>
			<diag:node id="a" min-width="100"><rect width="10" height="10"/></diag:node>
			<diag:node id="b"><rect width="10" height="10"/></diag:node>
		</diag:graph>
	</diag:diagram>`
	doc := parseDoc(t, src)
	c := New(Options{})
	svg, err := c.CompileDocument(context.Background(), doc, ".")
	if err != nil {
		t.Fatalf("CompileDocument: %v", err)
	}
	var bX float64
	svg.Walk(func(n *xmltree.Node) bool {
		if id, ok := n.Attr("", "id"); ok && id == "b" {
			bX, _ = graphNodeTransform(t, n)
		}
		return true
	})
	if bX < 100 {
		t.Fatalf("expected min-width=100 on node a to push node b's x to at least 100, got %v", bX)
	}
}
