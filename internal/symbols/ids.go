package symbols

// ScopeID identifies a scope in the table arena.
type ScopeID uint32

// NoScopeID marks the absence of a scope reference.
const NoScopeID ScopeID = 0

func (id ScopeID) IsValid() bool { return id != NoScopeID }

// SymbolID identifies a symbol inside the table arena.
type SymbolID uint32

// NoSymbolID marks the absence of a symbol reference.
const NoSymbolID SymbolID = 0

func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// Ref addresses a symbol owned by any unit. Unit is empty for the unit that
// holds the reference.
type Ref struct {
	Unit string
	Sym  SymbolID
}

func (r Ref) IsValid() bool { return r.Sym.IsValid() }

func (r Ref) IsLocal() bool { return r.Unit == "" }
