package xmltree

import (
	"strings"
	"testing"
)

const diagNS = "https://example.com/svgpp"

func mustParse(t *testing.T, src string) *Node {
	t.Helper()
	n, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return n
}

func TestParseNamespaces(t *testing.T) {
	src := `<diagram xmlns="` + diagNS + `"><flex gap="4"/></diagram>`
	root := mustParse(t, src)
	if root.Name.Space != diagNS || root.Name.Local != "diagram" {
		t.Fatalf("got root %v", root.Name)
	}
	if len(root.Children) != 1 || root.Children[0].Name.Local != "flex" {
		t.Fatalf("got children %v", root.Children)
	}
	if v, _ := root.Children[0].Attr("", "gap"); v != "4" {
		t.Fatalf("got gap=%q", v)
	}
}

func TestCloneSeversSharing(t *testing.T) {
	orig := NewElement("", "g")
	orig.Append(NewElement("", "rect"))
	clone := orig.Clone()
	clone.Children[0].SetAttr("", "x", "10")
	if _, ok := orig.Children[0].Attr("", "x"); ok {
		t.Fatal("mutation of clone leaked into original")
	}
}

func TestTextContentFlattensTails(t *testing.T) {
	src := `<diagram xmlns="` + diagNS + `">before<a/>mid<b/>after</diagram>`
	root := mustParse(t, src)
	got := root.TextContent()
	want := "beforemidafter"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestReplaceChildAtPreservesIndex(t *testing.T) {
	parent := NewElement("", "g")
	parent.Append(NewElement("", "a"))
	parent.Append(NewElement("", "b"))
	parent.Append(NewElement("", "c"))
	repl := NewElement("", "slot")
	parent.ReplaceChildAt(1, repl)
	if parent.Children[1] != repl {
		t.Fatal("replacement not at expected index")
	}
	if parent.Children[0].Name.Local != "a" || parent.Children[2].Name.Local != "c" {
		t.Fatal("sibling order disturbed")
	}
}

func TestSerializeStripsNothingButIsWellFormed(t *testing.T) {
	root := NewElement("", "svg")
	root.SetAttr("", "viewBox", "0 0 10 10")
	g := NewElement("", "g")
	g.SetAttr("", "transform", "translate(1 2)")
	root.Append(g)
	out := Serialize(root)
	if !strings.Contains(out, `xmlns="`+SVGNamespace+`"`) {
		t.Fatalf("missing default namespace: %s", out)
	}
	if !strings.Contains(out, `<g transform="translate(1 2)"/>`) {
		t.Fatalf("unexpected g serialization: %s", out)
	}
}
