package graph

import (
	"sort"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/emirpasic/gods/stacks/arraystack"
)

// Layout runs the internal layered layout algorithm (spec §4.6's default,
// used for layout="layered" unless quality="high" and Graphviz is available
// and succeeds): break
// cycles by reversing back-edges found via DFS, assign ranks by longest
// path from a source, order each rank by barycenter of neighbor positions,
// then assign coordinates rank-by-rank.
func Layout(g *Graph) error {
	if err := g.Validate(); err != nil {
		return err
	}
	reversed := assignRanks(g)
	ranks := ordersByRank(g)
	barycenterOrder(g, ranks, 4)
	placeCoordinates(g, ranks)
	routeEdges(g)
	curveLongEdges(g)
	for _, e := range g.Edges {
		if reversed[e] {
			e.Reversed = true
		}
	}
	tracer().Debugf("internal layout placed %d nodes across %d ranks", len(g.Nodes), len(ranks))
	return nil
}

// breakCycles finds back-edges via DFS, using gods hash sets for the
// visited/on-stack membership tests the traversal needs on every edge, and
// flags them for reversal during ranking. The original From/To direction is
// left untouched; callers consult the returned set to know which edges to
// report as Edge.Reversed without mutating topology mid-traversal.
func breakCycles(g *Graph) map[*Edge]bool {
	adj := adjacency(g)
	visited := hashset.New()
	onStack := hashset.New()
	reversed := make(map[*Edge]bool)

	var visit func(id string)
	visit = func(id string) {
		visited.Add(id)
		onStack.Add(id)
		for _, e := range adj[id] {
			if onStack.Contains(e.To) {
				reversed[e] = true
				continue
			}
			if !visited.Contains(e.To) {
				visit(e.To)
			}
		}
		onStack.Remove(id)
	}
	for _, id := range g.Order {
		if !visited.Contains(id) {
			visit(id)
		}
	}
	return reversed
}

// adjacency returns, for each node id, its outgoing edges in declaration
// order — cycle-reversed edges are walked in their original direction here
// and flipped only for ranking purposes by the caller.
func adjacency(g *Graph) map[string][]*Edge {
	out := make(map[string][]*Edge, len(g.Nodes))
	for _, e := range g.Edges {
		out[e.From] = append(out[e.From], e)
	}
	return out
}

// effectiveFromTo returns an edge's endpoints as the cycle-breaking pass
// wants them treated: reversed edges rank from To toward From.
func effectiveFromTo(e *Edge, reversed map[*Edge]bool) (string, string) {
	if reversed[e] {
		return e.To, e.From
	}
	return e.From, e.To
}

// assignRanks computes each node's rank as its longest path distance from
// any source (a node with no effective incoming edge), matching the
// "longest-path ranking" convention used by layered (Sugiyama-style) graph
// drawing. It returns the set of edges breakCycles flagged as back-edges,
// so the caller can mark Edge.Reversed without re-running the DFS.
func assignRanks(g *Graph) map[*Edge]bool {
	reversed := breakCycles(g)
	indegree := make(map[string]int, len(g.Nodes))
	outEdges := make(map[string][]*Edge, len(g.Nodes))
	for id := range g.Nodes {
		indegree[id] = 0
	}
	for _, e := range g.Edges {
		from, to := effectiveFromTo(e, reversed)
		indegree[to]++
		outEdges[from] = append(outEdges[from], e)
	}

	rank := make(map[string]int, len(g.Nodes))
	queue := arraystack.New()
	for _, id := range g.Order {
		if indegree[id] == 0 {
			queue.Push(id)
			rank[id] = 0
		}
	}
	processed := hashset.New()
	for !queue.Empty() {
		v, _ := queue.Pop()
		id := v.(string)
		if processed.Contains(id) {
			continue
		}
		processed.Add(id)
		for _, e := range outEdges[id] {
			from, to := effectiveFromTo(e, reversed)
			if from != id {
				continue
			}
			if rank[id]+1 > rank[to] {
				rank[to] = rank[id] + 1
			}
			indegree[to]--
			if indegree[to] <= 0 && !processed.Contains(to) {
				queue.Push(to)
			}
		}
	}
	for _, id := range g.Order {
		g.Nodes[id].Rank = rank[id]
	}
	return reversed
}

// ordersByRank buckets node ids by rank, in a stable (insertion) order
// within each bucket as the starting point for barycenter refinement.
func ordersByRank(g *Graph) [][]string {
	maxRank := 0
	for _, id := range g.Order {
		if g.Nodes[id].Rank > maxRank {
			maxRank = g.Nodes[id].Rank
		}
	}
	ranks := make([][]string, maxRank+1)
	for _, id := range g.Order {
		r := g.Nodes[id].Rank
		ranks[r] = append(ranks[r], id)
	}
	return ranks
}

// barycenterOrder reorders nodes within each rank by the average position
// of their neighbors in the adjacent rank, iterated a fixed number of
// passes — the standard crossing-reduction heuristic for layered graph
// drawing, traded here for simplicity against Graphviz's exact algorithm.
func barycenterOrder(g *Graph, ranks [][]string, iterations int) {
	pos := make(map[string]int)
	reindex := func() {
		for _, rank := range ranks {
			for i, id := range rank {
				pos[id] = i
			}
		}
	}
	reindex()

	neighbors := make(map[string][]string)
	for _, e := range g.Edges {
		neighbors[e.From] = append(neighbors[e.From], e.To)
		neighbors[e.To] = append(neighbors[e.To], e.From)
	}

	for pass := 0; pass < iterations; pass++ {
		for _, rank := range ranks {
			sort.SliceStable(rank, func(i, j int) bool {
				return barycenter(rank[i], neighbors, pos) < barycenter(rank[j], neighbors, pos)
			})
		}
		reindex()
	}
}

func barycenter(id string, neighbors map[string][]string, pos map[string]int) float64 {
	ns := neighbors[id]
	if len(ns) == 0 {
		return float64(pos[id])
	}
	sum := 0
	for _, n := range ns {
		sum += pos[n]
	}
	return float64(sum) / float64(len(ns))
}

// placeCoordinates lays out each rank as a row (Direction TB) or column
// (Direction LR), spacing nodes by NodeGap and ranks by RankGap.
func placeCoordinates(g *Graph, ranks [][]string) {
	rankOffset := 0.0
	for _, rank := range ranks {
		cross := 0.0
		rankExtent := 0.0
		for _, id := range rank {
			n := g.Nodes[id]
			if g.Direction == "LR" {
				n.X = rankOffset
				n.Y = cross
				cross += n.Height + g.NodeGap
				if n.Width > rankExtent {
					rankExtent = n.Width
				}
			} else {
				n.Y = rankOffset
				n.X = cross
				cross += n.Width + g.NodeGap
				if n.Height > rankExtent {
					rankExtent = n.Height
				}
			}
		}
		rankOffset += rankExtent + g.RankGap
	}
}

// routeEdges computes a simple polyline (straight segment) path for every
// edge, anchored at each endpoint's center; the caller clips each endpoint
// to its node's box (spec §4.9) once the node it connects to is final.
func routeEdges(g *Graph) {
	for _, e := range g.Edges {
		from := g.Nodes[e.From]
		to := g.Nodes[e.To]
		e.Points = []Point{
			{X: from.X + from.Width/2, Y: from.Y + from.Height/2},
			{X: to.X + to.Width/2, Y: to.Y + to.Height/2},
		}
	}
}

// FlipForDirection mirrors node and edge coordinates to realize the BT/RL
// direction variants (spec §4.7 step 5: "BT⇒main=Y↑ (negate); RL⇒main=X←
// (negate)"). Both Layout and LayoutWithGraphviz only ever produce the
// TB/LR form internally, since Direction is constrained to those two; this
// runs as a post-pass once node and edge geometry are final, so it applies
// uniformly regardless of which layout engine placed them.
func FlipForDirection(g *Graph, direction string) {
	switch direction {
	case "BT":
		flipAxis(g, false)
	case "RL":
		flipAxis(g, true)
	}
}

// flipAxis mirrors every node and edge point across the graph's own extent
// on the X axis (horizontal, for RL) or Y axis (vertical, for BT).
func flipAxis(g *Graph, horizontal bool) {
	extent := 0.0
	for _, id := range g.Order {
		n := g.Nodes[id]
		if horizontal {
			if far := n.X + n.Width; far > extent {
				extent = far
			}
		} else if far := n.Y + n.Height; far > extent {
			extent = far
		}
	}
	for _, id := range g.Order {
		n := g.Nodes[id]
		if horizontal {
			n.X = extent - n.X - n.Width
		} else {
			n.Y = extent - n.Y - n.Height
		}
	}
	for _, e := range g.Edges {
		for i := range e.Points {
			if horizontal {
				e.Points[i].X = extent - e.Points[i].X
			} else {
				e.Points[i].Y = extent - e.Points[i].Y
			}
		}
	}
}
