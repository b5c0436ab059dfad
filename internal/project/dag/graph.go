package dag

import (
	"fmt"
	"slices"
	"strings"

	"balsa/internal/diag"
	"balsa/internal/project"
)

// Graph stores import edges both ways. Deps[u] are the units u imports and
// Users[u] the units importing u; both are sorted and free of duplicates.
type Graph struct {
	Deps    [][]UnitID
	Users   [][]UnitID
	Indeg   []int  // present dependencies still to be analyzed, for Kahn
	Present []bool // the unit exists, not merely imported
}

type UnitNode struct {
	Meta     project.UnitMeta
	Reporter diag.Reporter
}

type UnitSlot struct {
	Meta     project.UnitMeta
	Reporter diag.Reporter
	Present  bool
	// Broken is set once analysis finds errors that stop dependents from
	// trusting the unit. FirstErr is the note shown at the importing side.
	Broken   bool
	FirstErr *diag.Diagnostic
}

// BuildGraph wires units to the units they import. Duplicate units,
// imports of unknown units and self-imports are reported on the importing
// unit's reporter and left out of the graph.
func BuildGraph(idx UnitIndex, nodes []UnitNode) (Graph, []UnitSlot) {
	n := len(idx.IDToName)
	g := Graph{
		Deps:    make([][]UnitID, n),
		Users:   make([][]UnitID, n),
		Indeg:   make([]int, n),
		Present: make([]bool, n),
	}
	slots := make([]UnitSlot, n)
	for i, name := range idx.IDToName {
		slots[i].Meta.Name = name
	}

	for _, node := range nodes {
		id, ok := idx.NameToID[node.Meta.Name]
		if !ok {
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			b := diag.ReportError(node.Reporter, diag.ProjDuplicateUnit, node.Meta.Span, "duplicate unit '%s'", node.Meta.Name)
			if !slot.Meta.Span.IsZero() {
				b = b.WithNote(slot.Meta.Span, fmt.Sprintf("previous declaration of '%s'", slot.Meta.Name))
			}
			b.Emit()
			continue
		}
		slot.Meta = node.Meta
		slot.Reporter = node.Reporter
		slot.Present = true
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present {
			continue
		}
		for _, imp := range slot.Meta.Imports {
			to, ok := idx.NameToID[imp.Unit]
			if !ok {
				continue
			}
			if to == unitID(from) {
				diag.ReportError(slot.Reporter, diag.ProjSelfImport, imp.Span, "unit '%s' imports itself", slot.Meta.Name).Emit()
				continue
			}
			if !g.Present[int(to)] {
				diag.ReportError(slot.Reporter, diag.ProjMissingUnit, imp.Span, "cannot resolve module '%s'", imp.Unit).Emit()
				continue
			}
			if slices.Contains(g.Deps[from], to) {
				continue
			}
			g.Deps[from] = append(g.Deps[from], to)
			g.Users[int(to)] = append(g.Users[int(to)], unitID(from))
			g.Indeg[from]++
		}
		slices.Sort(g.Deps[from])
	}
	for i := range g.Users {
		slices.Sort(g.Users[i])
	}
	return g, slots
}

// ReportCycles emits one fatal diagnostic per unit on a cycle.
func ReportCycles(idx UnitIndex, slots []UnitSlot, topo *Topo) {
	for _, cycle := range topo.Cycles {
		for i, id := range cycle {
			slot := &slots[int(id)]
			if !slot.Present {
				continue
			}
			// rotate so every unit sees the cycle starting from itself
			path := append(idx.Names(cycle[i:]), idx.Names(cycle[:i])...)
			path = append(path, slot.Meta.Name)
			span := slot.Meta.Span
			for _, imp := range slot.Meta.Imports {
				if imp.Unit == idx.Name(cycle[(i+1)%len(cycle)]) {
					span = imp.Span
					break
				}
			}
			msg := "cyclic unit dependency: " + strings.Join(path, " -> ")
			diag.ReportError(slot.Reporter, diag.ProjImportCycle, span, "%s", msg).Emit()
			slot.Broken = true
			slot.FirstErr = &diag.Diagnostic{Severity: diag.SevError, Code: diag.ProjImportCycle, Primary: span, Message: msg}
		}
	}
}

// ReportBrokenDeps reports each import of a broken unit by id and marks id
// broken when there was one.
func ReportBrokenDeps(idx UnitIndex, slots []UnitSlot, id UnitID) bool {
	slot := &slots[int(id)]
	if !slot.Present {
		return false
	}
	failed := false
	for _, imp := range slot.Meta.Imports {
		to, ok := idx.NameToID[imp.Unit]
		if !ok || to == id {
			continue
		}
		dep := &slots[int(to)]
		if !dep.Present || !dep.Broken {
			continue
		}
		b := diag.ReportError(slot.Reporter, diag.ProjDependencyFailed, imp.Span, "dependency unit '%s' failed", imp.Unit)
		if dep.FirstErr != nil {
			b = b.WithNote(dep.FirstErr.Primary, "first error in dependency: "+dep.FirstErr.Message)
		}
		b.Emit()
		if slot.FirstErr == nil {
			slot.FirstErr = &diag.Diagnostic{Primary: imp.Span, Message: fmt.Sprintf("dependency unit '%s' failed", imp.Unit)}
		}
		failed = true
	}
	slot.Broken = slot.Broken || failed
	return failed
}
