package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"balsa/internal/project"
)

type UnitID uint32

// UnitIndex numbers every unit name that appears either as a unit or as an
// import target. IDs follow sorted name order.
type UnitIndex struct {
	NameToID map[string]UnitID
	IDToName []string
}

func BuildIndex(metas []project.UnitMeta) UnitIndex {
	uniq := make(map[string]struct{}, len(metas))
	for _, meta := range metas {
		if meta.Name != "" {
			uniq[meta.Name] = struct{}{}
		}
		for _, imp := range meta.Imports {
			if imp.Unit != "" {
				uniq[imp.Unit] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	slices.Sort(names)

	idx := UnitIndex{NameToID: make(map[string]UnitID, len(names)), IDToName: names}
	for i, name := range names {
		idx.NameToID[name] = unitID(i)
	}
	return idx
}

func (idx UnitIndex) Name(id UnitID) string { return idx.IDToName[int(id)] }

func (idx UnitIndex) Names(ids []UnitID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.Name(id)
	}
	return out
}

func unitID(i int) UnitID {
	id, err := safecast.Conv[UnitID](i)
	if err != nil {
		panic(fmt.Errorf("unit id overflow: %w", err))
	}
	return id
}
