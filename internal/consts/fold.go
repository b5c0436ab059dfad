package consts

import (
	"errors"
	"fmt"
	"math"

	"balsa/internal/token"
)

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrOverflow       = errors.New("arithmetic overflow")
)

// OperandError reports an operator applied to unsupported operand kinds.
type OperandError struct {
	Op   token.Kind
	X, Y Kind
}

func (e *OperandError) Error() string {
	if e.Y == KindInvalid {
		return fmt.Sprintf("operator '%s' not defined for '%s'", e.Op, e.X)
	}
	return fmt.Sprintf("operator '%s' not defined for '%s' and '%s'", e.Op, e.X, e.Y)
}

// Unary folds -x, +x and !x. The result carries no type.
func Unary(op token.Kind, x *Value) (*Value, error) {
	switch {
	case op == token.Bang && x.Kind == KindBoolean:
		return Boolean(!x.Bool), nil
	case op == token.Plus && isNumeric(x.Kind):
		return untyped(x), nil
	case op == token.Minus && (x.Kind == KindInt || x.Kind == KindByte):
		if x.Int == math.MinInt64 {
			return nil, ErrOverflow
		}
		return Int(-x.Int), nil
	case op == token.Minus && x.Kind == KindFloat:
		return Float(-x.Float), nil
	}
	return nil, &OperandError{Op: op, X: x.Kind}
}

// Binary folds arithmetic, comparison, logic and string concatenation.
func Binary(op token.Kind, x, y *Value) (*Value, error) {
	switch op {
	case token.AndAnd, token.OrOr:
		if x.Kind != KindBoolean || y.Kind != KindBoolean {
			break
		}
		if op == token.AndAnd {
			return Boolean(x.Bool && y.Bool), nil
		}
		return Boolean(x.Bool || y.Bool), nil
	case token.EqEq, token.BangEq:
		if !equatable(x.Kind, y.Kind) {
			break
		}
		eq := x.Equal(y) || (isInteger(x.Kind) && isInteger(y.Kind) && x.Int == y.Int)
		return Boolean(eq == (op == token.EqEq)), nil
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		c, ok := order(x, y)
		if !ok {
			break
		}
		switch op {
		case token.Lt:
			return Boolean(c < 0), nil
		case token.LtEq:
			return Boolean(c <= 0), nil
		case token.Gt:
			return Boolean(c > 0), nil
		}
		return Boolean(c >= 0), nil
	case token.Plus:
		if x.Kind == KindString && y.Kind == KindString {
			return String(x.Str + y.Str), nil
		}
		return arith(op, x, y)
	case token.Minus, token.Star, token.Slash, token.Percent:
		return arith(op, x, y)
	}
	return nil, &OperandError{Op: op, X: x.Kind, Y: y.Kind}
}

func arith(op token.Kind, x, y *Value) (*Value, error) {
	switch {
	case isInteger(x.Kind) && isInteger(y.Kind):
		return intArith(op, x.Int, y.Int)
	case x.Kind == KindFloat && y.Kind == KindFloat:
		return floatArith(op, x.Float, y.Float)
	}
	return nil, &OperandError{Op: op, X: x.Kind, Y: y.Kind}
}

func intArith(op token.Kind, a, b int64) (*Value, error) {
	switch op {
	case token.Plus:
		r := a + b
		if (a > 0 && b > 0 && r < 0) || (a < 0 && b < 0 && r >= 0) {
			return nil, ErrOverflow
		}
		return Int(r), nil
	case token.Minus:
		r := a - b
		if (a >= 0 && b < 0 && r < 0) || (a < 0 && b > 0 && r >= 0) {
			return nil, ErrOverflow
		}
		return Int(r), nil
	case token.Star:
		if a == 0 || b == 0 {
			return Int(0), nil
		}
		r := a * b
		if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return nil, ErrOverflow
		}
		return Int(r), nil
	case token.Slash, token.Percent:
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		if a == math.MinInt64 && b == -1 {
			return nil, ErrOverflow
		}
		if op == token.Slash {
			return Int(a / b), nil
		}
		return Int(a % b), nil
	}
	return nil, &OperandError{Op: op, X: KindInt, Y: KindInt}
}

func floatArith(op token.Kind, a, b float64) (*Value, error) {
	switch op {
	case token.Plus:
		return Float(a + b), nil
	case token.Minus:
		return Float(a - b), nil
	case token.Star:
		return Float(a * b), nil
	case token.Slash:
		return Float(a / b), nil
	case token.Percent:
		return Float(math.Mod(a, b)), nil
	}
	return nil, &OperandError{Op: op, X: KindFloat, Y: KindFloat}
}

func order(x, y *Value) (int, bool) {
	switch {
	case isInteger(x.Kind) && isInteger(y.Kind):
		return cmp3(x.Int < y.Int, x.Int > y.Int), true
	case x.Kind == KindFloat && y.Kind == KindFloat:
		return cmp3(x.Float < y.Float, x.Float > y.Float), true
	case x.Kind == KindString && y.Kind == KindString:
		return cmp3(x.Str < y.Str, x.Str > y.Str), true
	}
	return 0, false
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func equatable(a, b Kind) bool {
	return a == b || (isInteger(a) && isInteger(b))
}

func isInteger(k Kind) bool { return k == KindInt || k == KindByte }

func isNumeric(k Kind) bool { return isInteger(k) || k == KindFloat }

func untyped(v *Value) *Value {
	out := *v
	out.Type = 0
	return &out
}
