/*
Package graph implements `diag:graph` expansion and layout (spec §4.6):
node/edge validation, an internal layered layout algorithm for the default
case, and delegation to an installed Graphviz `dot` binary for
`layout="circular"`/`"radial"`, or for `layout="layered"` with
`quality="high"`.
*/
package graph

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/svgppc/svgpp/core"
)

func tracer() tracing.Trace { return tracing.Select("svgpp.graph") }

// MaxNodes bounds the node count the internal layout algorithm will accept
// before refusing with core.EGraphTooLarge, per spec §4.6's guard against
// pathological O(n²) barycenter passes on huge graphs.
const MaxNodes = 2000

// Node is one `diag:node` declaration inside a `diag:graph`.
type Node struct {
	ID     string
	Label  string
	Rank   int // assigned during layout; -1 until then
	Width  float64
	Height float64
	X, Y   float64 // top-left, assigned during layout
}

// Edge is one `diag:edge` declaration; From/To reference Node.ID values.
type Edge struct {
	From, To string
	Label    string
	Reversed bool // true if layout flipped this edge to break a cycle
	Points   []Point
	LabelPos *Point // Graphviz's own label placement, when available
}

// Point is a coordinate on an edge's routed path.
type Point struct{ X, Y float64 }

// Graph is the validated, in-memory form of a `diag:graph` element prior to
// layout.
type Graph struct {
	Direction string // "TB" (default) or "LR", per spec §4.6
	NodeGap   float64
	RankGap   float64
	Nodes     map[string]*Node
	Order     []string // insertion order, for deterministic iteration
	Edges     []*Edge
}

// New returns an empty graph with the given direction and gap settings.
func New(direction string, nodeGap, rankGap float64) *Graph {
	if direction != "LR" {
		direction = "TB"
	}
	return &Graph{
		Direction: direction,
		NodeGap:   nodeGap,
		RankGap:   rankGap,
		Nodes:     make(map[string]*Node),
	}
}

// AddNode registers a node, rejecting a missing ID or a duplicate.
func (g *Graph) AddNode(id, label string, width, height float64) error {
	if id == "" {
		return core.New(core.EGraphNodeMissingID, "diag:node is missing a required id attribute")
	}
	if _, exists := g.Nodes[id]; exists {
		return core.New(core.EGraphDuplicateNode, "duplicate diag:node id %q", id).WithHint("node ids must be unique within a diag:graph")
	}
	g.Nodes[id] = &Node{ID: id, Label: label, Rank: -1, Width: width, Height: height}
	g.Order = append(g.Order, id)
	return nil
}

// AddEdge registers an edge, validating that both endpoints exist and that
// the edge is not a self-loop (spec §4.6 Non-goals: self-edges unsupported).
func (g *Graph) AddEdge(from, to, label string) error {
	if from == to {
		return core.New(core.EGraphSelfEdge, "diag:edge from %q to itself is not supported", from)
	}
	if _, ok := g.Nodes[from]; !ok {
		return core.New(core.EGraphUnknownNode, "diag:edge references unknown node %q", from)
	}
	if _, ok := g.Nodes[to]; !ok {
		return core.New(core.EGraphUnknownNode, "diag:edge references unknown node %q", to)
	}
	g.Edges = append(g.Edges, &Edge{From: from, To: to, Label: label})
	return nil
}

// Validate runs the graph-level invariants that are cheaper checked once
// up front than interleaved with construction: node-count ceiling.
func (g *Graph) Validate() error {
	if len(g.Nodes) > MaxNodes {
		return core.New(core.EGraphTooLarge, "graph has %d nodes, exceeding the %d node layout limit", len(g.Nodes), MaxNodes)
	}
	return nil
}

// Bounds returns the overall content box after layout has positioned every
// node.
func (g *Graph) Bounds() (width, height float64) {
	for _, id := range g.Order {
		n := g.Nodes[id]
		width = max(width, n.X+n.Width)
		height = max(height, n.Y+n.Height)
	}
	return width, height
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
