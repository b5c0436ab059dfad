package types

import "slices"

// CompositeInfo stores the members of a union or intersection together with
// the effective type computed when the node was created.
type CompositeInfo struct {
	Members   []TypeID
	Effective TypeID
}

// Conflict describes why an intersection is empty. Field is set when two
// record fields could not be intersected.
type Conflict struct {
	Field string
	Left  TypeID
	Right TypeID
}

func (in *Interner) composite(kind Kind, members []TypeID, effective TypeID) TypeID {
	in.composites = append(in.composites, CompositeInfo{Members: slices.Clone(members), Effective: effective})
	id := in.internRaw(Type{Kind: kind, Payload: slot(len(in.composites) - 1)})
	if !effective.IsValid() {
		in.composites[len(in.composites)-1].Effective = id
	}
	return id
}

// CompositeInfo returns members and effective type of a union or intersection.
func (in *Interner) CompositeInfo(id TypeID) (*CompositeInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindUnion && tt.Kind != KindIntersection) {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.composites) {
		return nil, false
	}
	return &in.composites[tt.Payload], true
}

// Members returns the member list of a union or intersection.
func (in *Interner) Members(id TypeID) []TypeID {
	if info, ok := in.CompositeInfo(id); ok {
		return info.Members
	}
	return nil
}

// Effective resolves references and reduces unions and intersections to the
// type they behave as.
func (in *Interner) Effective(id TypeID) TypeID {
	for range 64 {
		id = in.Resolve(id)
		info, ok := in.CompositeInfo(id)
		if !ok || info.Effective == id {
			return id
		}
		id = info.Effective
	}
	return id
}

// Union joins two types. Identical operands give a; otherwise members are
// flattened one level and de-duplicated.
func (in *Interner) Union(a, b TypeID) TypeID {
	if in.Identical(a, b) {
		return a
	}
	return in.UnionOf(a, b)
}

// UnionOf builds a union of any number of members.
func (in *Interner) UnionOf(members ...TypeID) TypeID {
	var flat []TypeID
	add := func(m TypeID) {
		for _, seen := range flat {
			if in.Identical(seen, m) {
				return
			}
		}
		flat = append(flat, m)
	}
	for _, m := range members {
		if !m.IsValid() {
			continue
		}
		if in.KindOf(m) == KindUnion {
			for _, inner := range in.Members(m) {
				add(inner)
			}
			continue
		}
		add(m)
	}
	switch len(flat) {
	case 0:
		return in.builtins.Never
	case 1:
		return flat[0]
	}
	for _, m := range flat {
		if in.KindOf(m) == KindError {
			return in.builtins.Error
		}
	}
	return in.composite(KindUnion, flat, NoTypeID)
}

// Intersect computes a & b. A non-nil Conflict means the result is empty
// (NEVER) or, for records, COMPILATION_ERROR; the caller reports it.
func (in *Interner) Intersect(a, b TypeID) (TypeID, *Conflict) {
	ea, eb := in.Effective(a), in.Effective(b)
	ka, kb := in.KindOf(ea), in.KindOf(eb)
	switch {
	case ka == KindError || kb == KindError:
		return in.builtins.Error, nil
	case ka == KindNever || kb == KindNever:
		return in.builtins.Never, nil
	case ka == KindAny:
		return b, nil
	case kb == KindAny:
		return a, nil
	case ka == KindReadonly && kb == KindReadonly:
		return a, nil
	case kb == KindReadonly:
		return in.composite(KindIntersection, []TypeID{a, b}, in.MakeReadonly(ea)), nil
	case ka == KindReadonly:
		return in.composite(KindIntersection, []TypeID{a, b}, in.MakeReadonly(eb)), nil
	case ka == KindUnion || kb == KindUnion:
		return in.intersectUnion(a, b, ea, eb)
	}

	if in.Identical(ea, eb) {
		return a, nil
	}
	switch {
	case ka == KindRecord && kb == KindRecord:
		merged, c := in.mergeRecords(ea, eb)
		if c != nil {
			return in.builtins.Error, c
		}
		return in.composite(KindIntersection, []TypeID{a, b}, merged), nil
	case ka == KindMap && kb == KindMap:
		elem, c := in.Intersect(in.MustLookup(ea).Elem, in.MustLookup(eb).Elem)
		if c != nil {
			return in.builtins.Never, &Conflict{Left: a, Right: b}
		}
		return in.composite(KindIntersection, []TypeID{a, b}, in.Map(elem)), nil
	case ka == KindSingleton && in.BaseOf(ea) == eb:
		return ea, nil
	case kb == KindSingleton && in.BaseOf(eb) == ea:
		return eb, nil
	}
	return in.builtins.Never, &Conflict{Left: a, Right: b}
}

func (in *Interner) intersectUnion(a, b, ea, eb TypeID) (TypeID, *Conflict) {
	left, right := []TypeID{ea}, []TypeID{eb}
	if in.KindOf(ea) == KindUnion {
		left = in.Members(ea)
	}
	if in.KindOf(eb) == KindUnion {
		right = in.Members(eb)
	}
	var out []TypeID
	for _, l := range left {
		for _, r := range right {
			t, c := in.Intersect(l, r)
			if c != nil || in.KindOf(t) == KindNever {
				continue
			}
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return in.builtins.Never, &Conflict{Left: a, Right: b}
	}
	return in.UnionOf(out...), nil
}

func (in *Interner) mergeRecords(a, b TypeID) (TypeID, *Conflict) {
	ra, _ := in.RecordInfo(a)
	rb, _ := in.RecordInfo(b)
	fields := make([]Field, 0, len(ra.Fields)+len(rb.Fields))
	for _, fa := range ra.Fields {
		fb, ok := rb.Field(fa.Name)
		if !ok {
			fields = append(fields, fa)
			continue
		}
		t, c := in.Intersect(fa.Type, fb.Type)
		if c != nil || in.KindOf(t) == KindNever || in.KindOf(t) == KindError {
			return NoTypeID, &Conflict{Field: fa.Name, Left: fa.Type, Right: fb.Type}
		}
		fields = append(fields, Field{Name: fa.Name, Type: t, Optional: fa.Optional && fb.Optional})
	}
	for _, fb := range rb.Fields {
		if _, ok := ra.Field(fb.Name); !ok {
			fields = append(fields, fb)
		}
	}
	rest := ra.Rest
	if !rest.IsValid() || ra.Closed {
		rest = rb.Rest
	}
	merged := in.Record(fields, ra.Closed || rb.Closed, rest)
	ta, tb := in.MustLookup(a), in.MustLookup(b)
	if ta.Readonly || tb.Readonly {
		merged = in.readonlyRecord(merged)
	}
	return merged, nil
}

// MakeReadonly returns the readonly form of a type. Scalars are returned
// unchanged since they are already immutable.
func (in *Interner) MakeReadonly(id TypeID) TypeID {
	id = in.Effective(id)
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindRecord:
		return in.readonlyRecord(id)
	case KindMap:
		if tt.Readonly {
			return id
		}
		return in.Intern(Type{Kind: KindMap, Elem: tt.Elem, Readonly: true})
	case KindUnion:
		members := in.Members(id)
		out := make([]TypeID, 0, len(members))
		for _, m := range members {
			out = append(out, in.MakeReadonly(m))
		}
		return in.UnionOf(out...)
	case KindAny:
		return in.builtins.Readonly
	}
	return id
}
