package types

import "slices"

// Field is one named member of a record type.
type Field struct {
	Name     string
	Type     TypeID
	Optional bool
}

// RecordInfo stores the shape of a record type. Field names are unique and
// keep declaration order.
type RecordInfo struct {
	Fields []Field
	Closed bool
	Rest   TypeID
}

// Record allocates a record type. Later duplicates of a field name are dropped.
func (in *Interner) Record(fields []Field, closed bool, rest TypeID) TypeID {
	info := RecordInfo{Closed: closed, Rest: rest}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			continue
		}
		seen[f.Name] = struct{}{}
		info.Fields = append(info.Fields, f)
	}
	in.records = append(in.records, info)
	return in.internRaw(Type{Kind: KindRecord, Payload: slot(len(in.records) - 1)})
}

// RecordInfo returns the shape of a record type.
func (in *Interner) RecordInfo(id TypeID) (*RecordInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindRecord || tt.Payload == 0 || int(tt.Payload) >= len(in.records) {
		return nil, false
	}
	return &in.records[tt.Payload], true
}

// Field looks a field up by name.
func (r *RecordInfo) Field(name string) (Field, bool) {
	i := slices.IndexFunc(r.Fields, func(f Field) bool { return f.Name == name })
	if i < 0 {
		return Field{}, false
	}
	return r.Fields[i], true
}

// readonlyRecord shares the shape of id with the readonly flag set.
func (in *Interner) readonlyRecord(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Readonly {
		return id
	}
	tt.Readonly = true
	return in.Intern(tt)
}
