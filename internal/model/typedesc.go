package model

import "balsa/internal/types"

// TypeDescriptor is a handle on a type in the interner of the unit that
// produced it. The zero value has kind KindInvalid.
type TypeDescriptor struct {
	in *types.Interner
	id types.TypeID
}

func newTypeDescriptor(in *types.Interner, id types.TypeID) TypeDescriptor {
	return TypeDescriptor{in: in, id: id}
}

func (t TypeDescriptor) IsValid() bool { return t.in != nil && t.id.IsValid() }

func (t TypeDescriptor) ID() types.TypeID { return t.id }

func (t TypeDescriptor) TypeKind() types.Kind {
	if !t.IsValid() {
		return types.KindInvalid
	}
	return t.in.KindOf(t.id)
}

// Label is the user-facing spelling: `int|string`, `Foo & readonly`.
func (t TypeDescriptor) Label() string {
	if !t.IsValid() {
		return ""
	}
	return types.Label(t.in, t.id)
}

// Signature renders records field by field; other kinds render as Label.
func (t TypeDescriptor) Signature() string {
	if !t.IsValid() {
		return ""
	}
	return types.Signature(t.in, t.id)
}

func (t TypeDescriptor) String() string { return t.Label() }

// MemberTypeDescriptors lists union and intersection members in written
// order; other kinds have none.
func (t TypeDescriptor) MemberTypeDescriptors() []TypeDescriptor {
	if !t.IsValid() {
		return nil
	}
	members := t.in.Members(t.id)
	out := make([]TypeDescriptor, len(members))
	for i, m := range members {
		out[i] = newTypeDescriptor(t.in, m)
	}
	return out
}

// EffectiveTypeDescriptor is the simplified form: for `R & readonly`, R
// marked readonly. Non-composite types are their own effective type.
func (t TypeDescriptor) EffectiveTypeDescriptor() TypeDescriptor {
	if !t.IsValid() {
		return t
	}
	return newTypeDescriptor(t.in, t.in.Effective(t.id))
}

// FieldDescriptor is one field of a record type.
type FieldDescriptor struct {
	Name     string
	Type     TypeDescriptor
	Optional bool
}

// FieldDescriptors lists record fields, looking through intersections and
// references to the effective record.
func (t TypeDescriptor) FieldDescriptors() []FieldDescriptor {
	if !t.IsValid() {
		return nil
	}
	rec, ok := t.in.RecordInfo(t.in.Effective(t.id))
	if !ok {
		return nil
	}
	out := make([]FieldDescriptor, len(rec.Fields))
	for i, f := range rec.Fields {
		out[i] = FieldDescriptor{Name: f.Name, Type: newTypeDescriptor(t.in, f.Type), Optional: f.Optional}
	}
	return out
}

// IsReadonly reports whether every value of the type is immutable.
func (t TypeDescriptor) IsReadonly() bool {
	return t.IsValid() && t.in.IsImmutable(t.id)
}

// Literal returns the value of a singleton type.
func (t TypeDescriptor) Literal() (types.Literal, bool) {
	if !t.IsValid() {
		return types.Literal{}, false
	}
	return t.in.SingletonLiteral(t.id)
}
