package types

import "slices"

// FnInfo stores the signature of a function type. Any marks the bare
// `function` type that stands for every function.
type FnInfo struct {
	Params   []TypeID
	Result   TypeID // NoTypeID when nothing is returned
	Isolated bool
	Any      bool
}

// Function creates or finds a function type.
func (in *Interner) Function(sig FnInfo) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindFunction {
			continue
		}
		info := in.fns[tt.Payload]
		if info.Any == sig.Any && info.Isolated == sig.Isolated && info.Result == sig.Result &&
			slices.Equal(info.Params, sig.Params) {
			return id
		}
	}
	in.fns = append(in.fns, FnInfo{
		Params:   slices.Clone(sig.Params),
		Result:   sig.Result,
		Isolated: sig.Isolated,
		Any:      sig.Any,
	})
	return in.internRaw(Type{Kind: KindFunction, Payload: slot(len(in.fns) - 1)})
}

// FnInfo retrieves function type metadata.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFunction || tt.Payload == 0 || int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}
