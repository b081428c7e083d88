package moore

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// Edge groups the readings that lead from one state to another
type Edge struct {
	From     StateID
	To       StateID
	Readings []Reading
}

// Edges returns every distinct transition of the table in id order
func (t *Table) Edges() []Edge {
	var edges []Edge
	for _, row := range t.rows {
		var targets []StateID
		byTarget := make(map[StateID][]Reading)
		for r, next := range row.Next {
			if _, ok := byTarget[next]; !ok {
				targets = append(targets, next)
			}
			byTarget[next] = append(byTarget[next], Reading(r))
		}
		slices.Sort(targets)
		for _, to := range targets {
			edges = append(edges, Edge{From: row.ID, To: to, Readings: byTarget[to]})
		}
	}
	return edges
}

// Graph returns the table as a directed graph whose node ids are state ids.
// Self loops are omitted.
func (t *Table) Graph() *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for _, id := range AllStates() {
		g.AddNode(simple.Node(id))
	}
	for _, e := range t.Edges() {
		if e.From == e.To {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(e.From), simple.Node(e.To)))
	}
	return g
}

// Analysis is a static liveness report of a table
type Analysis struct {
	Entry       StateID
	Reachable   []StateID
	Unreachable []StateID
	Components  [][]StateID
	// Traps are reachable states from which the entry state can never be reached again
	Traps []StateID
}

// Live reports whether every state is reachable and none is a trap
func (a Analysis) Live() bool {
	return len(a.Unreachable) == 0 && len(a.Traps) == 0
}

func (a Analysis) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "entry: %s\n", a.Entry)
	fmt.Fprintf(&b, "reachable: %s\n", joinStates(a.Reachable))
	if len(a.Unreachable) > 0 {
		fmt.Fprintf(&b, "unreachable: %s\n", joinStates(a.Unreachable))
	}
	for i, c := range a.Components {
		fmt.Fprintf(&b, "component %d: %s\n", i, joinStates(c))
	}
	if len(a.Traps) > 0 {
		fmt.Fprintf(&b, "traps: %s\n", joinStates(a.Traps))
	}
	fmt.Fprintf(&b, "live: %t\n", a.Live())
	return b.String()
}

// Analyze computes reachability and strongly connected components
// starting from entry.
func Analyze(t *Table, entry StateID) (Analysis, error) {
	if !entry.Valid() {
		return Analysis{}, NewInvalidStateError(entry.String(), "entry state out of range")
	}
	g := t.Graph()
	a := Analysis{Entry: entry}

	reachable := reachableFrom(g, entry)
	for _, id := range AllStates() {
		if reachable[id] {
			a.Reachable = append(a.Reachable, id)
		} else {
			a.Unreachable = append(a.Unreachable, id)
		}
	}

	for _, scc := range topo.TarjanSCC(g) {
		ids := nodeIDs(scc)
		slices.Sort(ids)
		a.Components = append(a.Components, ids)
	}
	slices.SortFunc(a.Components, func(x, y []StateID) bool { return x[0] < y[0] })

	for _, id := range a.Reachable {
		if id != entry && !reachableFrom(g, id)[entry] {
			a.Traps = append(a.Traps, id)
		}
	}
	return a, nil
}

func reachableFrom(g *simple.DirectedGraph, from StateID) map[StateID]bool {
	seen := map[StateID]bool{from: true}
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) {
			seen[StateID(n.ID())] = true
		},
	}
	bf.Walk(g, simple.Node(from), nil)
	return seen
}

func nodeIDs(nodes []graph.Node) []StateID {
	ids := make([]StateID, len(nodes))
	for i, n := range nodes {
		ids[i] = StateID(n.ID())
	}
	return ids
}

func joinStates(ids []StateID) string {
	codes := make([]string, len(ids))
	for i, id := range ids {
		codes[i] = id.Code()
	}
	return strings.Join(codes, " ")
}
