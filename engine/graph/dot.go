package graph

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// ToDOT serializes a Graph to DOT digraph source with deterministic,
// sorted output — nodes and edges are emitted in Graph.Order rather than
// map iteration order, so identical input always produces byte-identical
// DOT text. splines selects Graphviz's own edge-routing style (e.g.
// "ortho", "polyline", "spline"), derived by the caller from the
// diag:graph routing attribute.
func ToDOT(g *Graph, splines string) string {
	var b strings.Builder
	b.WriteString("digraph svgpp {\n")
	rankdir := "TB"
	if g.Direction == "LR" {
		rankdir = "LR"
	}
	if splines == "" {
		splines = "spline"
	}
	fmt.Fprintf(&b, "  graph [rankdir=%s, splines=%s]\n", rankdir, splines)
	b.WriteString("  node [shape=box]\n\n")

	for _, id := range g.Order {
		n := g.Nodes[id]
		fmt.Fprintf(&b, "  %s [label=%s, width=%s, height=%s]\n",
			quoteDOTID(id), quoteDOTValue(n.Label), fixedPointInches(n.Width), fixedPointInches(n.Height))
	}
	if len(g.Order) > 0 && len(g.Edges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range g.Edges {
		if e.Label != "" {
			fmt.Fprintf(&b, "  %s -> %s [label=%s]\n", quoteDOTID(e.From), quoteDOTID(e.To), quoteDOTValue(e.Label))
		} else {
			fmt.Fprintf(&b, "  %s -> %s\n", quoteDOTID(e.From), quoteDOTID(e.To))
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// dotPointsPerInch matches Graphviz's own default, needed to convert our
// pixel-space node sizes into the inches dot's "width"/"height" attributes
// expect, and to convert dot's plain-format inch coordinates back.
const dotPointsPerInch = 72.0

func fixedPointInches(px float64) string {
	return strconv.FormatFloat(px/dotPointsPerInch, 'f', 4, 64)
}

func quoteDOTID(id string) string {
	for _, c := range id {
		if !isPlainDOTChar(c) {
			return quoteDOTValue(id)
		}
	}
	return id
}

func isPlainDOTChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}

func quoteDOTValue(s string) string {
	return fmt.Sprintf("%q", s)
}

// edgeKey identifies a PlainLayout edge record by its endpoints, matching
// how Graphviz reports them (tail, head).
type edgeKey struct{ From, To string }

// PlainLayout is the decoded result of a `dot -Tplain` run: absolute node
// positions and sizes, plus each edge's own routed point list and label
// position when Graphviz produced one, in pixels, ready to overwrite a
// Graph's coordinates.
type PlainLayout struct {
	Nodes  map[string]Point
	Sizes  map[string][2]float64 // width, height in pixels
	Edges  map[edgeKey][]Point
	Labels map[edgeKey]Point
	Scale  float64
}

// ParsePlain decodes Graphviz's "plain" output format (one line per
// graph/node/edge/stop record, whitespace-separated fields) — chosen over
// parsing SVG or xdot because it's the simplest machine-readable format
// dot emits and it carries both node placement and each edge's own
// point list and label position (spec §4.6 step 4).
func ParsePlain(r *bufio.Scanner) (*PlainLayout, error) {
	out := &PlainLayout{
		Nodes:  make(map[string]Point),
		Sizes:  make(map[string][2]float64),
		Edges:  make(map[edgeKey][]Point),
		Labels: make(map[edgeKey]Point),
	}
	for r.Scan() {
		fields := splitPlainFields(r.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "graph":
			if len(fields) >= 2 {
				if s, err := strconv.ParseFloat(fields[1], 64); err == nil {
					out.Scale = s
				}
			}
		case "node":
			if len(fields) < 6 {
				continue
			}
			name := fields[1]
			x, _ := strconv.ParseFloat(fields[2], 64)
			y, _ := strconv.ParseFloat(fields[3], 64)
			w, _ := strconv.ParseFloat(fields[4], 64)
			h, _ := strconv.ParseFloat(fields[5], 64)
			out.Nodes[name] = Point{X: x * dotPointsPerInch, Y: y * dotPointsPerInch}
			out.Sizes[name] = [2]float64{w * dotPointsPerInch, h * dotPointsPerInch}
		case "edge":
			parseEdgeRecord(out, fields)
		case "stop":
			return out, r.Err()
		}
	}
	return out, r.Err()
}

// parseEdgeRecord decodes one "edge tail head n x1 y1 … xn yn [label xl yl]
// style color" record. The label/xl/yl triple is only present when the
// edge carries a label, distinguished by the trailing field count (5 with
// a label, 2 without).
func parseEdgeRecord(out *PlainLayout, fields []string) {
	if len(fields) < 4 {
		return
	}
	tail, head := fields[1], fields[2]
	n, err := strconv.Atoi(fields[3])
	if err != nil || n <= 0 || len(fields) < 4+2*n {
		return
	}
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		x, _ := strconv.ParseFloat(fields[4+2*i], 64)
		y, _ := strconv.ParseFloat(fields[4+2*i+1], 64)
		pts = append(pts, Point{X: x * dotPointsPerInch, Y: y * dotPointsPerInch})
	}
	key := edgeKey{From: tail, To: head}
	out.Edges[key] = pts

	rest := fields[4+2*n:]
	if len(rest) >= 5 {
		xl, errX := strconv.ParseFloat(rest[1], 64)
		yl, errY := strconv.ParseFloat(rest[2], 64)
		if errX == nil && errY == nil {
			out.Labels[key] = Point{X: xl * dotPointsPerInch, Y: yl * dotPointsPerInch}
		}
	}
}

// splitPlainFields splits a plain-format record on whitespace, respecting
// double-quoted fields (labels may contain spaces).
func splitPlainFields(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return fields
}

// ApplyPlainLayout overwrites g's node coordinates (converted from
// Graphviz's center-anchored convention to svg++'s top-left convention)
// and adopts Graphviz's own routed point list and label position for each
// edge it reported one for, falling back to a straight center-to-center
// segment only for edges Graphviz's output didn't cover.
func ApplyPlainLayout(g *Graph, layout *PlainLayout) {
	for id, n := range g.Nodes {
		c, ok := layout.Nodes[id]
		if !ok {
			continue
		}
		n.X = c.X - n.Width/2
		n.Y = c.Y - n.Height/2
	}
	for _, e := range g.Edges {
		key := edgeKey{From: e.From, To: e.To}
		if pts, ok := layout.Edges[key]; ok && len(pts) > 0 {
			e.Points = pts
			if lp, ok := layout.Labels[key]; ok {
				p := lp
				e.LabelPos = &p
			}
			continue
		}
		from := g.Nodes[e.From]
		to := g.Nodes[e.To]
		e.Points = []Point{
			{X: from.X + from.Width/2, Y: from.Y + from.Height/2},
			{X: to.X + to.Width/2, Y: to.Y + to.Height/2},
		}
	}
}
