package types

// RefInfo names a type definition. Target is filled once the definition is
// resolved, which lets definitions refer to each other in any order.
type RefInfo struct {
	Module string
	Name   string
	Target TypeID
}

// Reference allocates an unresolved reference to a named type.
func (in *Interner) Reference(module, name string) TypeID {
	in.refs = append(in.refs, RefInfo{Module: module, Name: name})
	return in.internRaw(Type{Kind: KindReference, Payload: slot(len(in.refs) - 1)})
}

func (in *Interner) RefInfo(id TypeID) (*RefInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindReference || tt.Payload == 0 || int(tt.Payload) >= len(in.refs) {
		return nil, false
	}
	return &in.refs[tt.Payload], true
}

// SetReferenceTarget binds a reference to its definition.
func (in *Interner) SetReferenceTarget(ref, target TypeID) {
	if info, ok := in.RefInfo(ref); ok {
		info.Target = target
	}
}

// Resolve follows references to the first non-reference descriptor.
// Unbound or cyclic references resolve to the error type.
func (in *Interner) Resolve(id TypeID) TypeID {
	for range len(in.refs) + 1 {
		info, ok := in.RefInfo(id)
		if !ok {
			return id
		}
		if !info.Target.IsValid() {
			return in.builtins.Error
		}
		id = info.Target
	}
	return in.builtins.Error
}
