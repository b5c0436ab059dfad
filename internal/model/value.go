package model

import (
	"balsa/internal/consts"
	"balsa/internal/types"
)

// ConstantValue is a folded compile-time value.
type ConstantValue struct {
	in *types.Interner
	v  *consts.Value
}

func (c ConstantValue) IsValid() bool { return c.v != nil }

// ValueType is the base kind for scalars and INTERSECTION(RECORD, READONLY)
// for records.
func (c ConstantValue) ValueType() TypeDescriptor {
	if c.v == nil {
		return TypeDescriptor{}
	}
	return newTypeDescriptor(c.in, c.v.Type)
}

// Value returns int64, float64, string, bool, byte, nil, or
// map[string]ConstantValue for records.
func (c ConstantValue) Value() any {
	if c.v == nil {
		return nil
	}
	switch c.v.Kind {
	case consts.KindInt:
		return c.v.Int
	case consts.KindByte:
		return byte(c.v.Int)
	case consts.KindFloat:
		return c.v.Float
	case consts.KindString:
		return c.v.Str
	case consts.KindBoolean:
		return c.v.Bool
	case consts.KindRecord:
		out := make(map[string]ConstantValue, len(c.v.Fields))
		for _, f := range c.v.Fields {
			out[f.Name] = ConstantValue{in: c.in, v: f.Value}
		}
		return out
	}
	return nil
}

// ConstField is a record entry in source key order.
type ConstField struct {
	Name  string
	Value ConstantValue
}

func (c ConstantValue) Fields() []ConstField {
	if c.v == nil || c.v.Kind != consts.KindRecord {
		return nil
	}
	out := make([]ConstField, len(c.v.Fields))
	for i, f := range c.v.Fields {
		out[i] = ConstField{Name: f.Name, Value: ConstantValue{in: c.in, v: f.Value}}
	}
	return out
}

// Field looks up one record entry.
func (c ConstantValue) Field(name string) (ConstantValue, bool) {
	if c.v == nil {
		return ConstantValue{}, false
	}
	f, ok := c.v.Field(name)
	if !ok {
		return ConstantValue{}, false
	}
	return ConstantValue{in: c.in, v: f}, true
}

func (c ConstantValue) String() string {
	if c.v == nil {
		return ""
	}
	return c.v.String()
}
