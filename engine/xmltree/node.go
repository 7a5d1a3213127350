/*
Package xmltree is the element-tree data model every compile stage mutates:
the source document after parsing, template blueprints, and the final SVG
tree handed to the geometry oracle all share this representation.

A private namespace URI threads through the whole system (spec §3): it is
discovered once, from the document root, and every subsequent namespace
comparison is against that discovered URI rather than a hardcoded string,
since the author picks their own `xmlns:diag="..."` binding.
*/
package xmltree

import "strings"

// Name is a qualified tag or attribute name: a namespace URI (possibly
// empty, for unqualified attributes and the default SVG namespace) plus a
// local name.
type Name struct {
	Space string
	Local string
}

func (n Name) String() string {
	if n.Space == "" {
		return n.Local
	}
	return "{" + n.Space + "}" + n.Local
}

// Attr is a single qualified attribute.
type Attr struct {
	Name  Name
	Value string
}

// Node is one element in the tree. Children are owned exclusively by their
// parent; Parent is maintained as a convenience back-pointer (set by Parse,
// Clone, and the mutation helpers below) rather than recomputed from a
// separate id table, since Go's garbage collector has no trouble with the
// resulting cycles.
type Node struct {
	Name     Name
	Attrs    []Attr
	Text     string
	Tail     string
	Children []*Node
	Parent   *Node
}

// NewElement creates a detached element with the given qualified name.
func NewElement(space, local string) *Node {
	return &Node{Name: Name{Space: space, Local: local}}
}

// Attr returns the value of the attribute qualified by (space, local) and
// whether it was present. An empty space matches unqualified attributes.
func (n *Node) Attr(space, local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// AttrDefault returns the attribute value or def if absent.
func (n *Node) AttrDefault(space, local, def string) string {
	if v, ok := n.Attr(space, local); ok {
		return v
	}
	return def
}

// SetAttr sets (or replaces) an attribute value.
func (n *Node) SetAttr(space, local, value string) {
	for i, a := range n.Attrs {
		if a.Name.Space == space && a.Name.Local == local {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: Name{Space: space, Local: local}, Value: value})
}

// RemoveAttr deletes an attribute if present.
func (n *Node) RemoveAttr(space, local string) {
	out := n.Attrs[:0]
	for _, a := range n.Attrs {
		if a.Name.Space == space && a.Name.Local == local {
			continue
		}
		out = append(out, a)
	}
	n.Attrs = out
}

// Append adds child as the last child of n, setting its Parent.
func (n *Node) Append(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// InsertAt inserts child at position i (0 <= i <= len(Children)).
func (n *Node) InsertAt(i int, child *Node) {
	child.Parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
}

// ChildIndex returns the index of child within its parent's Children, or -1.
func (n *Node) ChildIndex(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// ReplaceChildAt swaps the child at index i for replacement, preserving
// render order — used by the arrow collector to leave a sentinel group in
// an arrow element's exact former position (spec §4.8).
func (n *Node) ReplaceChildAt(i int, replacement *Node) {
	replacement.Parent = n
	n.Children[i] = replacement
}

// RemoveChildAt removes the child at index i.
func (n *Node) RemoveChildAt(i int) {
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
}

// Clone performs a deep copy, severing all sharing with the original so
// later in-place mutation of the clone can never leak back into a shared
// blueprint (spec §3: "every deep copy severs sharing").
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Name: n.Name,
		Text: n.Text,
		Tail: n.Tail,
	}
	if n.Attrs != nil {
		c.Attrs = make([]Attr, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	for _, child := range n.Children {
		c.Append(child.Clone())
	}
	return c
}

// CloneChildren deep-copies just the children of n (used by the instance
// expander, which substitutes a template's child list in place of an
// instance element, not the template element itself).
func CloneChildren(nodes []*Node) []*Node {
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// InNamespace reports whether n's tag belongs to the given namespace URI.
func (n *Node) InNamespace(uri string) bool {
	return n.Name.Space == uri
}

// Walk performs a preorder traversal, calling fn for every node including n
// itself. If fn returns false, that node's children are skipped.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// AncestorChain returns n's ancestors from immediate parent up to and
// including the root, in that order.
func (n *Node) AncestorChain() []*Node {
	var chain []*Node
	for p := n.Parent; p != nil; p = p.Parent {
		chain = append(chain, p)
	}
	return chain
}

// TextContent concatenates the Text and the Tail of every descendant in
// document order — the traversal used by the template expander to flatten a
// `diag:slot`'s substituted content (spec §4.2).
func (n *Node) TextContent() string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		b.WriteString(n.Text)
		for _, c := range n.Children {
			walk(c)
			b.WriteString(c.Tail)
		}
	}
	walk(n)
	return b.String()
}
