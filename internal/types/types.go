package types

import "fmt"

// TypeID uniquely identifies a type inside one interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

func (id TypeID) IsValid() bool { return id != NoTypeID }

// Kind enumerates type descriptor kinds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindString
	KindBoolean
	KindByte
	KindNil
	KindAny
	KindNever
	KindReadonly
	KindSingleton
	KindRecord
	KindMap
	KindUnion
	KindIntersection
	KindFunction
	KindReference
	KindError
)

var kindNames = [...]string{
	KindInvalid:      "INVALID",
	KindInt:          "INT",
	KindFloat:        "FLOAT",
	KindString:       "STRING",
	KindBoolean:      "BOOLEAN",
	KindByte:         "BYTE",
	KindNil:          "NIL",
	KindAny:          "ANY",
	KindNever:        "NEVER",
	KindReadonly:     "READONLY",
	KindSingleton:    "SINGLETON",
	KindRecord:       "RECORD",
	KindMap:          "MAP",
	KindUnion:        "UNION",
	KindIntersection: "INTERSECTION",
	KindFunction:     "FUNCTION",
	KindReference:    "TYPE_REFERENCE",
	KindError:        "COMPILATION_ERROR",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsBasic reports kinds whose values are plain scalars.
func (k Kind) IsBasic() bool {
	switch k {
	case KindInt, KindFloat, KindString, KindBoolean, KindByte, KindNil:
		return true
	}
	return false
}

// Type is a compact descriptor. Structured kinds keep their data in the
// interner's side tables, addressed by Payload.
type Type struct {
	Kind     Kind
	Elem     TypeID // map element
	Payload  uint32
	Readonly bool // records and maps
}
