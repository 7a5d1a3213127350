package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/svgppc/svgpp/engine/xmltree"
)

func parseDoc(t *testing.T, src string) *xmltree.Node {
	t.Helper()
	n, err := xmltree.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return n
}

func TestExtractCollectsClassRules(t *testing.T) {
	root := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg">
		<style>.box { fill: red; stroke: black; }</style>
		<rect class="box"/>
	</svg>`)
	sheet := Extract(root)
	if assert.Len(t, sheet, 1) {
		assert.Equal(t, "box", sheet[0].Class)
		assert.Equal(t, "red", sheet[0].Decls["fill"])
	}
}

func TestExtractSkipsNonClassSelectors(t *testing.T) {
	root := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg">
		<style>rect { fill: red; } .box { fill: blue; }</style>
	</svg>`)
	sheet := Extract(root)
	if assert.Len(t, sheet, 1) {
		assert.Equal(t, "box", sheet[0].Class)
	}
}

func TestResolveKeepsLastMatchingRule(t *testing.T) {
	sheet := Sheet{
		{Class: "box", Decls: map[string]string{"fill": "red"}},
		{Class: "box", Decls: map[string]string{"fill": "blue"}},
	}
	v, ok := sheet.Resolve("box", "fill")
	assert.True(t, ok)
	assert.Equal(t, "blue", v)
}

func TestResolveMultipleClasses(t *testing.T) {
	sheet := Sheet{
		{Class: "a", Decls: map[string]string{"fill": "red"}},
		{Class: "b", Decls: map[string]string{"stroke": "green"}},
	}
	v, ok := sheet.Resolve("a b", "stroke")
	assert.True(t, ok)
	assert.Equal(t, "green", v)
}

func TestResolveElementReadsClassAttr(t *testing.T) {
	sheet := Sheet{{Class: "box", Decls: map[string]string{"fill": "red"}}}
	n := xmltree.NewElement("", "rect")
	n.SetAttr("", "class", "box")
	v, ok := sheet.ResolveElement(n, "fill")
	assert.True(t, ok)
	assert.Equal(t, "red", v)
}

func TestResolveNoMatchReturnsFalse(t *testing.T) {
	sheet := Sheet{{Class: "box", Decls: map[string]string{"fill": "red"}}}
	_, ok := sheet.Resolve("other", "fill")
	assert.False(t, ok)
}
