package parser

import (
	"github.com/frontc/frontc/pkg/cabs"
	"github.com/frontc/frontc/pkg/symtab"
)

// foldConst evaluates an integer constant expression, deciding between
// fixed arrays and VLAs and assigning enumerator values. An expression
// that does not fold is not an error here; the caller keeps it unevaluated.
func foldConst(e cabs.Expr) (int64, bool) {
	switch ex := e.(type) {
	case cabs.Constant:
		return ex.Value, true
	case cabs.CharLiteral:
		return ex.Value, true
	case cabs.Paren:
		return foldConst(ex.Expr)
	case cabs.Variable:
		if ex.Ref != nil && ex.Ref.Kind == symtab.SymEnumerator && ex.Ref.HasEnumValue {
			return ex.Ref.EnumValue, true
		}
	case cabs.Cast:
		// An integer cast of a constant stays constant; width truncation
		// is left to consumers that know target sizes.
		return foldConst(ex.Expr)
	case cabs.Unary:
		v, ok := foldConst(ex.Expr)
		if !ok {
			return 0, false
		}
		switch ex.Op {
		case cabs.OpNeg:
			return -v, true
		case cabs.OpPlus:
			return v, true
		case cabs.OpBitNot:
			return ^v, true
		case cabs.OpNot:
			return b2i(v == 0), true
		}
	case cabs.Conditional:
		c, ok := foldConst(ex.Cond)
		if !ok {
			return 0, false
		}
		if c != 0 {
			return foldConst(ex.Then)
		}
		return foldConst(ex.Else)
	case cabs.Binary:
		return foldBinary(ex)
	}
	return 0, false
}

func foldBinary(e cabs.Binary) (int64, bool) {
	l, ok := foldConst(e.Left)
	if !ok {
		return 0, false
	}
	// && and || short-circuit even in constant expressions.
	switch e.Op {
	case cabs.OpAnd:
		if l == 0 {
			return 0, true
		}
		r, ok := foldConst(e.Right)
		return b2i(r != 0), ok
	case cabs.OpOr:
		if l != 0 {
			return 1, true
		}
		r, ok := foldConst(e.Right)
		return b2i(r != 0), ok
	}
	r, ok := foldConst(e.Right)
	if !ok {
		return 0, false
	}
	switch e.Op {
	case cabs.OpAdd:
		return l + r, true
	case cabs.OpSub:
		return l - r, true
	case cabs.OpMul:
		return l * r, true
	case cabs.OpDiv:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case cabs.OpMod:
		if r == 0 {
			return 0, false
		}
		return l % r, true
	case cabs.OpBitAnd:
		return l & r, true
	case cabs.OpBitOr:
		return l | r, true
	case cabs.OpBitXor:
		return l ^ r, true
	case cabs.OpShl:
		if r < 0 || r >= 64 {
			return 0, false
		}
		return l << uint(r), true
	case cabs.OpShr:
		if r < 0 || r >= 64 {
			return 0, false
		}
		return l >> uint(r), true
	case cabs.OpLt:
		return b2i(l < r), true
	case cabs.OpLe:
		return b2i(l <= r), true
	case cabs.OpGt:
		return b2i(l > r), true
	case cabs.OpGe:
		return b2i(l >= r), true
	case cabs.OpEq:
		return b2i(l == r), true
	case cabs.OpNe:
		return b2i(l != r), true
	}
	return 0, false
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
