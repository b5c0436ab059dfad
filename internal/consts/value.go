package consts

import (
	"strconv"
	"strings"

	"fortio.org/safecast"

	"balsa/internal/types"
)

type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindString
	KindBoolean
	KindByte
	KindNil
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindByte:
		return "byte"
	case KindNil:
		return "()"
	case KindRecord:
		return "record"
	}
	return "invalid"
}

// Field is one entry of a record value; order follows the source.
type Field struct {
	Name  string
	Value *Value
}

// Value is a folded compile-time value. Type belongs to the interner of the
// unit that produced the value.
type Value struct {
	Kind   Kind
	Int    int64
	Float  float64
	Str    string
	Bool   bool
	Fields []Field
	Type   types.TypeID
}

func Int(v int64) *Value { return &Value{Kind: KindInt, Int: v} }
func Byte(v uint8) *Value { return &Value{Kind: KindByte, Int: int64(v)} }
func Float(v float64) *Value { return &Value{Kind: KindFloat, Float: v} }
func String(v string) *Value { return &Value{Kind: KindString, Str: v} }
func Boolean(v bool) *Value { return &Value{Kind: KindBoolean, Bool: v} }
func Nil() *Value { return &Value{Kind: KindNil} }
func Record(fs []Field) *Value { return &Value{Kind: KindRecord, Fields: fs} }

func (v *Value) IsScalar() bool { return v != nil && v.Kind != KindRecord && v.Kind != KindInvalid }

// Field returns the value stored under name.
func (v *Value) Field(name string) (*Value, bool) {
	if v == nil {
		return nil, false
	}
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Literal converts a scalar to the literal of its singleton type.
func (v *Value) Literal() (types.Literal, bool) {
	if v == nil {
		return types.Literal{}, false
	}
	switch v.Kind {
	case KindInt:
		return types.IntLiteral(v.Int), true
	case KindByte:
		b, err := safecast.Conv[uint8](v.Int)
		if err != nil {
			return types.Literal{}, false
		}
		return types.ByteLiteral(b), true
	case KindFloat:
		return types.FloatLiteral(v.Float), true
	case KindString:
		return types.StringLiteral(v.Str), true
	case KindBoolean:
		return types.BooleanLiteral(v.Bool), true
	}
	return types.Literal{}, false
}

// String renders the value the way it would be written: `1000`, `12.3`,
// `"Value"`, `{foo: "Value", bar: {a: 1}}`.
func (v *Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v *Value) write(sb *strings.Builder) {
	if v == nil {
		return
	}
	switch v.Kind {
	case KindInt, KindByte:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case KindFloat:
		sb.WriteString(types.FormatFloat(v.Float))
	case KindString:
		sb.WriteString(strconv.Quote(v.Str))
	case KindBoolean:
		sb.WriteString(strconv.FormatBool(v.Bool))
	case KindNil:
		sb.WriteString("()")
	case KindRecord:
		sb.WriteString("{")
		for i, f := range v.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			f.Value.write(sb)
		}
		sb.WriteString("}")
	}
}

// Equal compares values structurally, ignoring types.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt, KindByte:
		return v.Int == o.Int
	case KindFloat:
		return v.Float == o.Float
	case KindString:
		return v.Str == o.Str
	case KindBoolean:
		return v.Bool == o.Bool
	case KindNil:
		return true
	case KindRecord:
		// field order does not take part in equality
		if len(v.Fields) != len(o.Fields) {
			return false
		}
		for _, f := range v.Fields {
			other, ok := o.Field(f.Name)
			if !ok || !f.Value.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy that can be retyped without touching v.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := *v
	if len(v.Fields) > 0 {
		out.Fields = make([]Field, len(v.Fields))
		for i, f := range v.Fields {
			out.Fields[i] = Field{Name: f.Name, Value: f.Value.Clone()}
		}
	}
	return &out
}

// Import copies a value produced by another unit, moving its types into dst.
func (v *Value) Import(dst, src *types.Interner) *Value {
	if v == nil {
		return nil
	}
	out := *v
	out.Type = dst.Import(src, v.Type)
	if len(v.Fields) > 0 {
		out.Fields = make([]Field, len(v.Fields))
		for i, f := range v.Fields {
			out.Fields[i] = Field{Name: f.Name, Value: f.Value.Import(dst, src)}
		}
	}
	return &out
}
