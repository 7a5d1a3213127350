package template

import (
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

func TestCollectHoistsNamedTemplates(t *testing.T) {
	root := parseDoc(t, `<diag:diagram xmlns:diag="`+diagNS+`">
		<diag:template name="box"><rect width="10"/></diag:template>
		<rect id="keep"/>
	</diag:diagram>`)
	table := Table{}
	Collect(root, diagNS, table)
	_, ok := table["box"]
	assert.True(t, ok, "expected template %q to be collected", "box")
	if assert.Len(t, root.Children, 1) {
		v, _ := root.Children[0].Attr("", "id")
		assert.Equal(t, "keep", v)
	}
}

func TestCollectLaterDefinitionWins(t *testing.T) {
	root := parseDoc(t, `<diag:diagram xmlns:diag="`+diagNS+`">
		<diag:template name="box"><rect width="10"/></diag:template>
		<diag:template name="box"><rect width="20"/></diag:template>
	</diag:diagram>`)
	table := Table{}
	Collect(root, diagNS, table)
	assert.Equal(t, "20", table["box"][0].AttrDefault("", "width", ""))
}

func TestCollectDropsNamelessTemplate(t *testing.T) {
	root := parseDoc(t, `<diag:diagram xmlns:diag="`+diagNS+`">
		<diag:template><rect width="10"/></diag:template>
	</diag:diagram>`)
	table := Table{}
	Collect(root, diagNS, table)
	assert.Empty(t, table)
}

func TestExpandInstancesClonesBlueprintAndAppliesOverrides(t *testing.T) {
	root := parseDoc(t, `<diag:diagram xmlns:diag="`+diagNS+`">
		<diag:instance template="box" id="b1" fill="red"/>
	</diag:diagram>`)
	table := Table{"box": xmltree.CloneChildren([]*xmltree.Node{parseDoc(t, `<rect width="10"/>`)})}
	ExpandInstances(root, table, diagNS)
	if !assert.Len(t, root.Children, 1) {
		return
	}
	rect := root.Children[0]
	assert.Equal(t, "rect", rect.Name.Local)
	v, _ := rect.Attr("", "id")
	assert.Equal(t, "b1", v)
	v, _ = rect.Attr("", "fill")
	assert.Equal(t, "red", v)
	v, _ = rect.Attr("", "width")
	assert.Equal(t, "10", v)
}

func TestExpandInstancesUnknownTemplateExpandsToNothing(t *testing.T) {
	root := parseDoc(t, `<diag:diagram xmlns:diag="`+diagNS+`">
		<diag:instance template="missing"/>
		<rect id="keep"/>
	</diag:diagram>`)
	ExpandInstances(root, Table{}, diagNS)
	if assert.Len(t, root.Children, 1) {
		assert.Equal(t, "rect", root.Children[0].Name.Local)
	}
}

func TestExpandInstancesSubstitutesSlotWithParamText(t *testing.T) {
	root := parseDoc(t, `<diag:diagram xmlns:diag="`+diagNS+`">
		<diag:instance template="label">
			<diag:param name="text">hello</diag:param>
		</diag:instance>
	</diag:diagram>`)
	table := Table{"label": xmltree.CloneChildren([]*xmltree.Node{
		parseDoc(t, `<text><diag:slot xmlns:diag="`+diagNS+`" name="text"/></text>`),
	})}
	ExpandInstances(root, table, diagNS)
	if assert.Len(t, root.Children, 1) {
		assert.Equal(t, "hello", root.Children[0].Text)
	}
}
