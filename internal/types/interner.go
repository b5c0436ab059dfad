package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs of the predeclared types.
type Builtins struct {
	Int         TypeID
	Float       TypeID
	String      TypeID
	Boolean     TypeID
	Byte        TypeID
	Nil         TypeID
	Any         TypeID
	Never       TypeID
	Readonly    TypeID
	Error       TypeID
	AnyFunction TypeID
}

// Interner owns every descriptor of one analysis pass. It is not safe for
// concurrent mutation; once the pass is published it is only read.
type Interner struct {
	types      []Type
	index      map[typeKey]TypeID
	singletons map[Literal]TypeID
	literals   []Literal
	records    []RecordInfo
	composites []CompositeInfo
	fns        []FnInfo
	refs       []RefInfo
	builtins   Builtins
	imported   map[importKey]TypeID
}

type typeKey struct {
	Kind     Kind
	Elem     TypeID
	Payload  uint32
	Readonly bool
}

// NewInterner constructs an interner seeded with the builtin types.
func NewInterner() *Interner {
	in := &Interner{
		types:      []Type{{Kind: KindInvalid}},
		index:      make(map[typeKey]TypeID, 64),
		singletons: make(map[Literal]TypeID, 16),
	}
	// slot 0 of every side table is the invalid sentinel
	in.literals = append(in.literals, Literal{})
	in.records = append(in.records, RecordInfo{})
	in.composites = append(in.composites, CompositeInfo{})
	in.fns = append(in.fns, FnInfo{})
	in.refs = append(in.refs, RefInfo{})

	in.builtins = Builtins{
		Int:      in.Intern(Type{Kind: KindInt}),
		Float:    in.Intern(Type{Kind: KindFloat}),
		String:   in.Intern(Type{Kind: KindString}),
		Boolean:  in.Intern(Type{Kind: KindBoolean}),
		Byte:     in.Intern(Type{Kind: KindByte}),
		Nil:      in.Intern(Type{Kind: KindNil}),
		Any:      in.Intern(Type{Kind: KindAny}),
		Never:    in.Intern(Type{Kind: KindNever}),
		Readonly: in.Intern(Type{Kind: KindReadonly}),
		Error:    in.Intern(Type{Kind: KindError}),
	}
	in.builtins.AnyFunction = in.Function(FnInfo{Any: true})
	return in
}

func (in *Interner) Builtins() Builtins { return in.builtins }

// Intern returns the stable TypeID of a payload-free or payload-shared descriptor.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	id := in.internRaw(t)
	in.index[key] = id
	return id
}

func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	in.types = append(in.types, t)
	return TypeID(n)
}

func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// KindOf returns KindInvalid for unknown ids.
func (in *Interner) KindOf(id TypeID) Kind {
	tt, _ := in.Lookup(id)
	return tt.Kind
}

// Len returns the number of descriptors including the sentinel.
func (in *Interner) Len() int { return len(in.types) }

// Singleton returns the singleton type of a literal.
func (in *Interner) Singleton(lit Literal) TypeID {
	if id, ok := in.singletons[lit]; ok {
		return id
	}
	in.literals = append(in.literals, lit)
	id := in.internRaw(Type{Kind: KindSingleton, Payload: slot(len(in.literals) - 1)})
	in.singletons[lit] = id
	return id
}

// SingletonLiteral returns the literal of a singleton type.
func (in *Interner) SingletonLiteral(id TypeID) (Literal, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindSingleton || int(tt.Payload) >= len(in.literals) {
		return Literal{}, false
	}
	return in.literals[tt.Payload], true
}

// Map returns map<elem>.
func (in *Interner) Map(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindMap, Elem: elem})
}

// BaseOf widens a singleton to its base kind; other types are returned as is.
func (in *Interner) BaseOf(id TypeID) TypeID {
	lit, ok := in.SingletonLiteral(id)
	if !ok {
		return id
	}
	return in.basic(lit.Kind)
}

func (in *Interner) basic(k Kind) TypeID {
	switch k {
	case KindInt:
		return in.builtins.Int
	case KindFloat:
		return in.builtins.Float
	case KindString:
		return in.builtins.String
	case KindBoolean:
		return in.builtins.Boolean
	case KindByte:
		return in.builtins.Byte
	case KindNil:
		return in.builtins.Nil
	}
	return in.builtins.Error
}

func slot(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("type payload overflow: %w", err))
	}
	return v
}
