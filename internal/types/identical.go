package types

// Identical reports structural identity. References compare by their targets.
func (in *Interner) Identical(a, b TypeID) bool {
	return in.identical(a, b, 0)
}

func (in *Interner) identical(a, b TypeID, depth int) bool {
	if a == b {
		return true
	}
	if depth > 32 {
		return false
	}
	if in.unbound(a) || in.unbound(b) {
		return false
	}
	a, b = in.Resolve(a), in.Resolve(b)
	if a == b {
		return true
	}
	ta, oka := in.Lookup(a)
	tb, okb := in.Lookup(b)
	if !oka || !okb || ta.Kind != tb.Kind || ta.Readonly != tb.Readonly {
		return false
	}
	switch ta.Kind {
	case KindSingleton:
		la, _ := in.SingletonLiteral(a)
		lb, _ := in.SingletonLiteral(b)
		return la == lb
	case KindMap:
		return in.identical(ta.Elem, tb.Elem, depth+1)
	case KindRecord:
		ra, _ := in.RecordInfo(a)
		rb, _ := in.RecordInfo(b)
		if ra.Closed != rb.Closed || len(ra.Fields) != len(rb.Fields) {
			return false
		}
		if ra.Rest.IsValid() != rb.Rest.IsValid() || (ra.Rest.IsValid() && !in.identical(ra.Rest, rb.Rest, depth+1)) {
			return false
		}
		for i, fa := range ra.Fields {
			fb := rb.Fields[i]
			if fa.Name != fb.Name || fa.Optional != fb.Optional || !in.identical(fa.Type, fb.Type, depth+1) {
				return false
			}
		}
		return true
	case KindUnion, KindIntersection:
		return in.sameMembers(in.Members(a), in.Members(b), depth+1)
	case KindFunction:
		fa, _ := in.FnInfo(a)
		fb, _ := in.FnInfo(b)
		if fa.Any != fb.Any || fa.Isolated != fb.Isolated || len(fa.Params) != len(fb.Params) {
			return false
		}
		if fa.Result.IsValid() != fb.Result.IsValid() || (fa.Result.IsValid() && !in.identical(fa.Result, fb.Result, depth+1)) {
			return false
		}
		for i := range fa.Params {
			if !in.identical(fa.Params[i], fb.Params[i], depth+1) {
				return false
			}
		}
		return true
	}
	// builtins are interned once
	return false
}

// sameMembers matches member lists as multisets: member order is only
// kept for display.
func (in *Interner) sameMembers(ma, mb []TypeID, depth int) bool {
	if len(ma) != len(mb) {
		return false
	}
	used := make([]bool, len(mb))
outer:
	for _, m := range ma {
		for j, n := range mb {
			if !used[j] && in.identical(m, n, depth) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

func (in *Interner) unbound(id TypeID) bool {
	info, ok := in.RefInfo(id)
	return ok && !info.Target.IsValid()
}
