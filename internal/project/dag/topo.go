package dag

import (
	"slices"
)

// Topo is the analysis plan for a unit graph.
type Topo struct {
	Order   []UnitID   // dependencies before dependents
	Batches [][]UnitID // waves of units whose dependencies are all in earlier waves
	Cyclic  bool
	// Cycles lists each import cycle as a path in import order, starting
	// at its smallest unit.
	Cycles [][]UnitID
	// Blocked units are not on a cycle but import one, directly or not.
	// Dependencies come first.
	Blocked []UnitID
}

// ToposortKahn orders present units in dependency-first batches. Units left
// over when no zero-indegree unit remains are split into cycles and the
// units blocked behind them.
func ToposortKahn(g Graph) *Topo {
	n := len(g.Deps)
	indeg := slices.Clone(g.Indeg)
	topo := &Topo{Order: make([]UnitID, 0, n)}

	var current []UnitID
	for i := range n {
		if g.Present[i] && indeg[i] == 0 {
			current = append(current, unitID(i))
		}
	}
	for len(current) > 0 {
		topo.Batches = append(topo.Batches, current)
		var next []UnitID
		for _, id := range current {
			topo.Order = append(topo.Order, id)
			for _, user := range g.Users[int(id)] {
				indeg[int(user)]--
				if indeg[int(user)] == 0 {
					next = append(next, user)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	left := make([]bool, n)
	remaining := 0
	for i := range n {
		if g.Present[i] && indeg[i] > 0 {
			left[i] = true
			remaining++
		}
	}
	if remaining == 0 {
		return topo
	}
	topo.Cyclic = true
	for _, scc := range components(g, left) {
		if len(scc) == 1 {
			topo.Blocked = append(topo.Blocked, scc[0])
			continue
		}
		topo.Cycles = append(topo.Cycles, cyclePath(g, scc))
	}
	return topo
}

// components runs Tarjan's algorithm over the units marked in left. With
// edges pointing at dependencies, components come out dependencies first.
func components(g Graph, left []bool) [][]UnitID {
	var (
		index   = make([]int, len(left))
		low     = make([]int, len(left))
		onStack = make([]bool, len(left))
		stack   []UnitID
		counter = 1
		out     [][]UnitID
	)
	var visit func(v UnitID)
	visit = func(v UnitID) {
		index[v], low[v] = counter, counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
		for _, w := range g.Deps[int(v)] {
			if !left[int(w)] {
				continue
			}
			if index[w] == 0 {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}
		if low[v] != index[v] {
			return
		}
		var scc []UnitID
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		slices.Sort(scc)
		out = append(out, scc)
	}
	for i := range left {
		if left[i] && index[i] == 0 {
			visit(unitID(i))
		}
	}
	return out
}

// cyclePath finds the shortest import path from the smallest unit of a
// strongly connected component back to itself.
func cyclePath(g Graph, scc []UnitID) []UnitID {
	start := scc[0]
	parent := make(map[UnitID]UnitID, len(scc))
	queue := []UnitID{start}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g.Deps[int(v)] {
			if _, in := slices.BinarySearch(scc, w); !in {
				continue
			}
			if w == start {
				path := []UnitID{v}
				for v != start {
					v = parent[v]
					path = append(path, v)
				}
				slices.Reverse(path)
				return path
			}
			if _, seen := parent[w]; !seen {
				parent[w] = v
				queue = append(queue, w)
			}
		}
	}
	return scc
}
