package types

import (
	"math"
	"strconv"
	"strings"
)

// Literal is the value carried by a singleton type. Kind is the base kind.
type Literal struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

func IntLiteral(v int64) Literal { return Literal{Kind: KindInt, Int: v} }
func ByteLiteral(v uint8) Literal { return Literal{Kind: KindByte, Int: int64(v)} }
func FloatLiteral(v float64) Literal { return Literal{Kind: KindFloat, Float: v} }
func StringLiteral(v string) Literal { return Literal{Kind: KindString, Str: v} }
func BooleanLiteral(v bool) Literal { return Literal{Kind: KindBoolean, Bool: v} }

// String renders the literal as it is written in source.
func (l Literal) String() string {
	switch l.Kind {
	case KindInt, KindByte:
		return strconv.FormatInt(l.Int, 10)
	case KindFloat:
		return FormatFloat(l.Float)
	case KindString:
		return strconv.Quote(l.Str)
	case KindBoolean:
		return strconv.FormatBool(l.Bool)
	}
	return "()"
}

// FormatFloat keeps a decimal point so that 12.0 does not read as an int.
func FormatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// InByteRange reports whether an int literal fits a byte.
func (l Literal) InByteRange() bool {
	return (l.Kind == KindInt || l.Kind == KindByte) && l.Int >= 0 && l.Int <= 255
}
