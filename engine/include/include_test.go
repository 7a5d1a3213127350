package include

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/svgppc/svgpp/engine/xmltree"
)

const diagNS = "https://example.org/diag"

func parseDoc(t *testing.T, src string) *xmltree.Node {
	t.Helper()
	n, err := xmltree.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return n
}

func noopCompile(doc *xmltree.Node, baseDir string, ctx Context) ([]*xmltree.Node, error) {
	return doc.Children, nil
}

func readerFor(files map[string]string) ReadFunc {
	return func(path string) ([]byte, error) {
		if src, ok := files[path]; ok {
			return []byte(src), nil
		}
		return nil, bytes.ErrTooLarge
	}
}

func TestExpandAllWrapsIncludedChildrenInATransformedGroup(t *testing.T) {
	root := parseDoc(t, `<diag:diagram xmlns:diag="`+diagNS+`">
		<diag:include src="child.xml" x="10" y="20" id="inc1"/>
	</diag:diagram>`)
	files := map[string]string{
		"child.xml": `<diag:diagram xmlns:diag="` + diagNS + `"><rect width="5"/></diag:diagram>`,
	}
	err := ExpandAll(root, diagNS, ".", NewContext(), readerFor(files), noopCompile)
	assert.NoError(t, err)
	if !assert.Len(t, root.Children, 1) {
		return
	}
	g := root.Children[0]
	assert.Equal(t, "g", g.Name.Local)
	v, _ := g.Attr("", "id")
	assert.Equal(t, "inc1", v)
	v, _ = g.Attr("", "transform")
	assert.Contains(t, v, "translate(10 20)")
	if assert.Len(t, g.Children, 1) {
		assert.Equal(t, "rect", g.Children[0].Name.Local)
	}
}

func TestExpandAllRejectsMissingSrc(t *testing.T) {
	root := parseDoc(t, `<diag:diagram xmlns:diag="`+diagNS+`"><diag:include/></diag:diagram>`)
	err := ExpandAll(root, diagNS, ".", NewContext(), readerFor(nil), noopCompile)
	assert.Error(t, err)
}

func TestExpandAllRejectsNonDiagramIncludeRoot(t *testing.T) {
	root := parseDoc(t, `<diag:diagram xmlns:diag="`+diagNS+`"><diag:include src="child.xml"/></diag:diagram>`)
	files := map[string]string{"child.xml": `<svg xmlns="http://www.w3.org/2000/svg"/>`}
	err := ExpandAll(root, diagNS, ".", NewContext(), readerFor(files), noopCompile)
	assert.Error(t, err)
}

func TestContextPushDetectsCycle(t *testing.T) {
	ctx := NewContext()
	ctx, err := ctx.Push("/a.xml")
	assert.NoError(t, err)
	_, err = ctx.Push("/a.xml")
	assert.Error(t, err)
}

func TestContextPushEnforcesMaxDepth(t *testing.T) {
	ctx := Context{MaxDepth: 1}
	ctx, err := ctx.Push("/a.xml")
	assert.NoError(t, err)
	_, err = ctx.Push("/b.xml")
	assert.Error(t, err)
}

func TestVerifyUniqueIDsRejectsDuplicates(t *testing.T) {
	root := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg"><rect id="x"/><rect id="x"/></svg>`)
	assert.Error(t, VerifyUniqueIDs(root))
}

func TestVerifyUniqueIDsAcceptsDistinctIDs(t *testing.T) {
	root := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg"><rect id="x"/><rect id="y"/></svg>`)
	assert.NoError(t, VerifyUniqueIDs(root))
}
