// pkg/sql/eval/eval.go
//
// Package eval implements component 7 of the engine (spec.md §4.3): a
// stateless expression evaluator with three-valued NULL logic. It is
// split out of the executor (unlike tur's monolithic executor.go) so the
// parallel row workers can share one evaluation entry point without
// depending on executor internals.
//
// Boolean results (from comparisons, AND/OR/NOT, IS [NOT] NULL) have no
// dedicated column type in this engine — only INT and VARCHAR are
// storable — so they are represented as a types.Value the same way the
// rest of the pipeline sees values: NewInt(1) for true, NewInt(0) for
// false, and NewNull() for the third truth value, unknown. Admitted
// callers use Truthy to collapse that back into a WHERE/AND/OR decision.
package eval

import (
	"tur/pkg/dberrors"
	"tur/pkg/schema"
	"tur/pkg/sql/lexer"
	"tur/pkg/sql/parser"
	"tur/pkg/types"
)

var (
	trueVal    = types.NewInt(1)
	falseVal   = types.NewInt(0)
	unknownVal = types.NewNull()
)

func boolValue(b bool) types.Value {
	if b {
		return trueVal
	}
	return falseVal
}

// Truthy reports whether a (possibly three-valued) boolean Value admits
// a row: only an exact true does; false and null (unknown) do not
// (spec.md §4.3 and §9 "three-valued logic vs two-valued predicates").
func Truthy(v types.Value) bool {
	return !v.IsNull() && v.Type() == types.TypeInt && v.Int() != 0
}

// Eval evaluates expr against row under schema, producing a typed Value.
func Eval(expr parser.Expression, sch *schema.Schema, row schema.Row) (types.Value, error) {
	switch e := expr.(type) {
	case *parser.Literal:
		return e.Value, nil

	case *parser.ColumnRef:
		idx, ok := sch.IndexOf(e.Name)
		if !ok {
			return types.Value{}, dberrors.New(dberrors.Bind, "unknown column %q", e.Name)
		}
		return row[idx], nil

	case *parser.UnaryExpr:
		return evalUnary(e, sch, row)

	case *parser.BinaryExpr:
		return evalBinary(e, sch, row)

	case *parser.IsNullExpr:
		v, err := Eval(e.Expr, sch, row)
		if err != nil {
			return types.Value{}, err
		}
		result := v.IsNull()
		if e.Not {
			result = !result
		}
		return boolValue(result), nil

	default:
		return types.Value{}, dberrors.New(dberrors.Bind, "unsupported expression type %T", expr)
	}
}

func evalUnary(e *parser.UnaryExpr, sch *schema.Schema, row schema.Row) (types.Value, error) {
	v, err := Eval(e.Right, sch, row)
	if err != nil {
		return types.Value{}, err
	}

	switch e.Op {
	case lexer.MINUS:
		if v.IsNull() {
			return unknownVal, nil
		}
		if v.Type() != types.TypeInt {
			return types.Value{}, dberrors.New(dberrors.Type, "unary - requires INT operand, got %s", v.Type())
		}
		return types.NewInt(-v.Int()), nil

	case lexer.NOT:
		if v.IsNull() {
			return unknownVal, nil
		}
		return boolValue(!Truthy(v)), nil

	default:
		return types.Value{}, dberrors.New(dberrors.Bind, "unsupported unary operator %s", e.Op)
	}
}

func evalBinary(e *parser.BinaryExpr, sch *schema.Schema, row schema.Row) (types.Value, error) {
	switch e.Op {
	case lexer.AND:
		return evalAnd(e, sch, row)
	case lexer.OR:
		return evalOr(e, sch, row)
	}

	left, err := Eval(e.Left, sch, row)
	if err != nil {
		return types.Value{}, err
	}
	right, err := Eval(e.Right, sch, row)
	if err != nil {
		return types.Value{}, err
	}

	switch e.Op {
	case lexer.EQ, lexer.NEQ, lexer.LT, lexer.GT, lexer.LTE, lexer.GTE:
		return evalComparison(e.Op, left, right)
	case lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return evalArithmetic(e.Op, left, right)
	default:
		return types.Value{}, dberrors.New(dberrors.Bind, "unsupported binary operator %s", e.Op)
	}
}

// evalAnd implements the three-valued AND truth table from spec.md §4.3:
// true∧x=x; false∧x=false; null∧null=null; null∧true=null; null∧false=false.
func evalAnd(e *parser.BinaryExpr, sch *schema.Schema, row schema.Row) (types.Value, error) {
	left, err := Eval(e.Left, sch, row)
	if err != nil {
		return types.Value{}, err
	}
	right, err := Eval(e.Right, sch, row)
	if err != nil {
		return types.Value{}, err
	}

	if !left.IsNull() && !Truthy(left) {
		return falseVal, nil
	}
	if !right.IsNull() && !Truthy(right) {
		return falseVal, nil
	}
	if left.IsNull() || right.IsNull() {
		return unknownVal, nil
	}
	return trueVal, nil
}

// evalOr is the dual of evalAnd.
func evalOr(e *parser.BinaryExpr, sch *schema.Schema, row schema.Row) (types.Value, error) {
	left, err := Eval(e.Left, sch, row)
	if err != nil {
		return types.Value{}, err
	}
	right, err := Eval(e.Right, sch, row)
	if err != nil {
		return types.Value{}, err
	}

	if !left.IsNull() && Truthy(left) {
		return trueVal, nil
	}
	if !right.IsNull() && Truthy(right) {
		return trueVal, nil
	}
	if left.IsNull() || right.IsNull() {
		return unknownVal, nil
	}
	return falseVal, nil
}

// evalComparison yields a three-valued boolean: any null operand yields
// null (spec.md §4.3). Mismatched types are a Type error — no implicit
// coercion, per spec.md §4.3.
func evalComparison(op lexer.TokenType, left, right types.Value) (types.Value, error) {
	if left.IsNull() || right.IsNull() {
		return unknownVal, nil
	}
	if left.Type() != right.Type() {
		return types.Value{}, dberrors.New(dberrors.Type, "cannot compare %s and %s", left.Type(), right.Type())
	}

	var cmp int
	switch left.Type() {
	case types.TypeInt:
		switch {
		case left.Int() < right.Int():
			cmp = -1
		case left.Int() > right.Int():
			cmp = 1
		}
	case types.TypeText:
		switch {
		case left.Text() < right.Text():
			cmp = -1
		case left.Text() > right.Text():
			cmp = 1
		}
	default:
		return types.Value{}, dberrors.New(dberrors.Type, "values of type %s are not comparable", left.Type())
	}

	var result bool
	switch op {
	case lexer.EQ:
		result = cmp == 0
	case lexer.NEQ:
		result = cmp != 0
	case lexer.LT:
		result = cmp < 0
	case lexer.GT:
		result = cmp > 0
	case lexer.LTE:
		result = cmp <= 0
	case lexer.GTE:
		result = cmp >= 0
	}
	return boolValue(result), nil
}

// evalArithmetic requires INT operands on both sides; any null operand
// short-circuits to null. Division and modulo by zero are Arithmetic
// errors (spec.md §4.3).
func evalArithmetic(op lexer.TokenType, left, right types.Value) (types.Value, error) {
	if left.IsNull() || right.IsNull() {
		return unknownVal, nil
	}
	if left.Type() != types.TypeInt || right.Type() != types.TypeInt {
		return types.Value{}, dberrors.New(dberrors.Type, "arithmetic requires INT operands, got %s and %s", left.Type(), right.Type())
	}

	a, b := left.Int(), right.Int()
	switch op {
	case lexer.PLUS:
		return types.NewInt(a + b), nil
	case lexer.MINUS:
		return types.NewInt(a - b), nil
	case lexer.STAR:
		return types.NewInt(a * b), nil
	case lexer.SLASH:
		if b == 0 {
			return types.Value{}, dberrors.New(dberrors.Arithmetic, "division by zero")
		}
		return types.NewInt(a / b), nil
	case lexer.PERCENT:
		if b == 0 {
			return types.Value{}, dberrors.New(dberrors.Arithmetic, "modulo by zero")
		}
		return types.NewInt(a % b), nil
	default:
		return types.Value{}, dberrors.New(dberrors.Bind, "unsupported arithmetic operator %s", op)
	}
}
