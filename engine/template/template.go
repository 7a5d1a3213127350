/*
Package template implements the template/instance/slot/param macro system
(spec §4.2): hoisting `diag:template` blueprints into a name table, then
expanding `diag:instance` elements into deep clones with `diag:slot`
substitution.
*/
package template

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/svgppc/svgpp/engine/xmltree"
)

func tracer() tracing.Trace { return tracing.Select("svgpp.template") }

const (
	tagTemplate = "template"
	tagInstance = "instance"
	tagSlot     = "slot"
	tagParam    = "param"
	attrName    = "name"
	attrTmpl    = "template"
)

// Table maps a template name to its ordered sequence of blueprint elements.
// Blueprints are always stored pre-cloned so later instantiation can clone
// from the table without ever touching the original document tree.
type Table map[string][]*xmltree.Node

// Collect removes every direct diag:template child of root, adding each to
// dst keyed by its name attribute (later calls with the same name win —
// spec §8 "Template precedence"). Nameless templates are dropped with a
// warning trace, matching the corpus's lenient behavior.
func Collect(root *xmltree.Node, diagNS string, dst Table) {
	kept := root.Children[:0]
	for _, child := range root.Children {
		if child.Name.Space == diagNS && child.Name.Local == tagTemplate {
			name, ok := child.Attr("", attrName)
			if !ok || name == "" {
				tracer().Infof("dropping nameless diag:template")
				continue
			}
			blueprint := make([]*xmltree.Node, len(child.Children))
			for i, c := range child.Children {
				blueprint[i] = c.Clone()
			}
			dst[name] = blueprint
			tracer().Debugf("collected template %q (%d children)", name, len(blueprint))
			continue
		}
		kept = append(kept, child)
	}
	root.Children = kept
}

// CollectShared parses each already-loaded shared template source document
// (in the order given — spec §2 stage 2: "shared external template sources
// are merged first, local last") and hoists their top-level diag:template
// children into dst. The diagram's own templates must be collected with a
// separate, later call to Collect so that local definitions win.
func CollectShared(sources []*xmltree.Node, diagNS string, dst Table) {
	for _, src := range sources {
		Collect(src, diagNS, dst)
	}
}

// ExpandInstances walks root's subtree and replaces every diag:instance
// element with deep clones of its template's children, substituting
// diag:slot descendants with the matching diag:param payloads. Expansion
// recurses so instances nested inside template bodies also expand
// (spec §4.2: "the expander recurses so that instances inside template
// bodies are also expanded").
func ExpandInstances(root *xmltree.Node, table Table, diagNS string) {
	expandChildren(root, table, diagNS)
}

func expandChildren(n *xmltree.Node, table Table, diagNS string) {
	i := 0
	for i < len(n.Children) {
		child := n.Children[i]
		if child.Name.Space == diagNS && child.Name.Local == tagInstance {
			clones := instantiate(child, table, diagNS)
			n.Children = append(n.Children[:i], append(clones, n.Children[i+1:]...)...)
			// Re-expand in place: a just-inserted clone may itself contain
			// instances coming from a template body.
			continue
		}
		expandChildren(child, table, diagNS)
		i++
	}
}

// instantiate produces the clones that replace a single diag:instance
// element, already carrying the instance's own override attributes and
// any slot substitutions.
func instantiate(inst *xmltree.Node, table Table, diagNS string) []*xmltree.Node {
	tmplName, _ := inst.Attr("", attrTmpl)
	blueprint, ok := table[tmplName]
	if !ok {
		// Unknown instance template names silently expand to nothing
		// (spec §9 Open Questions: compatibility with the corpus).
		tracer().Infof("diag:instance references unknown template %q; expanding to nothing", tmplName)
		return nil
	}

	params := collectParams(inst, diagNS)

	overrides := make([]xmltree.Attr, 0, len(inst.Attrs))
	for _, a := range inst.Attrs {
		if a.Name.Space == "" && a.Name.Local == attrTmpl {
			continue
		}
		overrides = append(overrides, a)
	}

	clones := xmltree.CloneChildren(blueprint)
	for _, top := range clones {
		applyOverrides(top, overrides)
		substituteSlots(top, params, diagNS)
	}
	return clones
}

func collectParams(inst *xmltree.Node, diagNS string) map[string]string {
	params := map[string]string{}
	for _, c := range inst.Children {
		if c.Name.Space == diagNS && c.Name.Local == tagParam {
			name, ok := c.Attr("", attrName)
			if !ok {
				continue
			}
			params[name] = c.TextContent()
		}
	}
	return params
}

func applyOverrides(n *xmltree.Node, overrides []xmltree.Attr) {
	for _, a := range overrides {
		n.SetAttr(a.Name.Space, a.Name.Local, a.Value)
	}
}

// substituteSlots removes every diag:slot descendant of top and splices its
// matching param text into the preceding sibling's tail (or the parent's
// leading text when the slot was the first child) — spec §4.2.
func substituteSlots(top *xmltree.Node, params map[string]string, diagNS string) {
	var walk func(n *xmltree.Node)
	walk = func(n *xmltree.Node) {
		i := 0
		for i < len(n.Children) {
			c := n.Children[i]
			if c.Name.Space == diagNS && c.Name.Local == tagSlot {
				name, _ := c.Attr("", attrName)
				text := params[name]
				if i == 0 {
					n.Text += text + c.Tail
				} else {
					n.Children[i-1].Tail += text + c.Tail
				}
				n.Children = append(n.Children[:i], n.Children[i+1:]...)
				continue
			}
			walk(c)
			i++
		}
	}
	walk(top)
}
