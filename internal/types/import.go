package types

type importKey struct {
	src *Interner
	id  TypeID
}

// Import deep-copies a descriptor owned by another unit's interner. Copies are
// memoized per source, so importing the same type twice yields one TypeID.
func (in *Interner) Import(src *Interner, id TypeID) TypeID {
	if src == nil || src == in || !id.IsValid() {
		return id
	}
	if in.imported == nil {
		in.imported = make(map[importKey]TypeID)
	}
	return in.importType(src, id)
}

func (in *Interner) importType(src *Interner, id TypeID) TypeID {
	key := importKey{src: src, id: id}
	if got, ok := in.imported[key]; ok {
		return got
	}
	tt, ok := src.Lookup(id)
	if !ok {
		return NoTypeID
	}
	var out TypeID
	switch tt.Kind {
	case KindSingleton:
		lit, _ := src.SingletonLiteral(id)
		out = in.Singleton(lit)
	case KindMap:
		out = in.Intern(Type{Kind: KindMap, Elem: in.importType(src, tt.Elem), Readonly: tt.Readonly})
	case KindRecord:
		rec, _ := src.RecordInfo(id)
		fields := make([]Field, len(rec.Fields))
		for i, f := range rec.Fields {
			fields[i] = Field{Name: f.Name, Type: in.importType(src, f.Type), Optional: f.Optional}
		}
		out = in.Record(fields, rec.Closed, in.importType(src, rec.Rest))
		if tt.Readonly {
			out = in.readonlyRecord(out)
		}
	case KindUnion, KindIntersection:
		info, _ := src.CompositeInfo(id)
		members := make([]TypeID, len(info.Members))
		for i, m := range info.Members {
			members[i] = in.importType(src, m)
		}
		eff := NoTypeID
		if info.Effective != id {
			eff = in.importType(src, info.Effective)
		}
		out = in.composite(tt.Kind, members, eff)
	case KindFunction:
		info, _ := src.FnInfo(id)
		params := make([]TypeID, len(info.Params))
		for i, p := range info.Params {
			params[i] = in.importType(src, p)
		}
		out = in.Function(FnInfo{Params: params, Result: in.importType(src, info.Result), Isolated: info.Isolated, Any: info.Any})
	case KindReference:
		info, _ := src.RefInfo(id)
		out = in.Reference(info.Module, info.Name)
		// memo before the target so that recursive definitions terminate
		in.imported[key] = out
		in.SetReferenceTarget(out, in.importType(src, info.Target))
		return out
	default:
		out = in.Intern(Type{Kind: tt.Kind})
	}
	in.imported[key] = out
	return out
}
