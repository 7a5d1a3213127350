/*
Package style extracts the class → declaration maps svg++ supports from
inline `<style>` element text (spec §4 data model: "Class-style rule").

This is deliberately not a CSS engine: spec §1 Non-goals rules out cascade
and specificity. Only literal `.class { prop: value; }` rules are honored;
anything else (element selectors, combinators, ids, pseudo-classes) is
parsed by douceur along with everything else but simply never matches,
since svg++ elements are only ever looked up by class.
*/
package style

import (
	"strings"

	"github.com/aymerick/douceur/parser"

	"github.com/svgppc/svgpp/engine/xmltree"
)

// Rule is one `.class { ... }` declaration block, in source order.
type Rule struct {
	Class string
	Decls map[string]string
}

// Sheet is the ordered list of rules collected across every <style>
// element in a document. Resolution scans in order and keeps the last
// match per spec §3 ("Resolution ... returns the last match").
type Sheet []Rule

// Extract walks root for standard-SVG `style` elements (spec §2 stage 5)
// and appends their parsed rules to a new Sheet, in document order.
func Extract(root *xmltree.Node) Sheet {
	var sheet Sheet
	root.Walk(func(n *xmltree.Node) bool {
		if n.Name.Local == "style" && (n.Name.Space == "" || n.Name.Space == xmltree.SVGNamespace) {
			sheet = append(sheet, parseStyleText(n.TextContent())...)
		}
		return true
	})
	return sheet
}

func parseStyleText(css string) []Rule {
	sheet, err := parser.Parse(css)
	if err != nil {
		return nil
	}
	var rules []Rule
	for _, r := range sheet.Rules {
		decls := map[string]string{}
		for _, d := range r.Declarations {
			decls[strings.TrimSpace(d.Property)] = strings.TrimSpace(d.Value)
		}
		for _, sel := range r.Selectors {
			sel = strings.TrimSpace(sel)
			if !strings.HasPrefix(sel, ".") {
				continue // only simple class selectors are in scope (spec §1 Non-goals)
			}
			rules = append(rules, Rule{Class: sel[1:], Decls: decls})
		}
	}
	return rules
}

// Resolve returns the value of property for an element's class list,
// scanning the sheet and keeping the last rule whose class matches any of
// the element's (possibly multiple, whitespace-separated) classes.
func (s Sheet) Resolve(classAttr, property string) (string, bool) {
	classes := strings.Fields(classAttr)
	if len(classes) == 0 {
		return "", false
	}
	classSet := make(map[string]bool, len(classes))
	for _, c := range classes {
		classSet[c] = true
	}
	var val string
	found := false
	for _, r := range s {
		if !classSet[r.Class] {
			continue
		}
		if v, ok := r.Decls[property]; ok {
			val = v
			found = true
		}
	}
	return val, found
}

// ResolveElement resolves property against the "class" attribute of n.
func (s Sheet) ResolveElement(n *xmltree.Node, property string) (string, bool) {
	class, _ := n.Attr("", "class")
	return s.Resolve(class, property)
}
