package source

import (
	"fmt"

	"fortio.org/safecast"
)

// StringID is an interned identifier; NoStringID is the empty string.
type StringID uint32

const NoStringID StringID = 0

// Interner maps identifier text to compact IDs. One interner serves one unit.
type Interner struct {
	byID  []string
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

func (in *Interner) Intern(s string) StringID {
	if id, ok := in.index[s]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.byID))
	if err != nil {
		panic(fmt.Errorf("interner overflow: %w", err))
	}
	id := StringID(n)
	s = string([]byte(s)) // отвязываемся от буфера исходника
	in.byID = append(in.byID, s)
	in.index[s] = id
	return id
}

func (in *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(in.byID) {
		return "", false
	}
	return in.byID[id], true
}

// MustLookup panics on an unknown ID.
func (in *Interner) MustLookup(id StringID) string {
	s, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("invalid string id %d", id))
	}
	return s
}

// Find returns the ID of s without interning it.
func (in *Interner) Find(s string) (StringID, bool) {
	id, ok := in.index[s]
	return id, ok
}

func (in *Interner) Len() int { return len(in.byID) }
