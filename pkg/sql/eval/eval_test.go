// pkg/sql/eval/eval_test.go
package eval

import (
	"testing"

	"tur/pkg/schema"
	"tur/pkg/sql/parser"
	"tur/pkg/types"
)

func mustSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.New([]schema.Column{
		{Name: "id", Type: types.IntType(), PrimaryKey: true},
		{Name: "age", Type: types.IntType(), Nullable: true},
		{Name: "name", Type: types.VarcharType(16), Nullable: true},
	})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return sch
}

func parseExpr(t *testing.T, src string) parser.Expression {
	t.Helper()
	stmts, err := parser.ParseStatements("SELECT * FROM t WHERE " + src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return stmts[0].(*parser.SelectStmt).Where
}

func TestEvalArithmetic(t *testing.T) {
	sch := mustSchema(t)
	row := schema.Row{types.NewInt(1), types.NewInt(10), types.NewText("ann")}

	v, err := Eval(parseExpr(t, "age + 5 = 15"), sch, row)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !Truthy(v) {
		t.Errorf("expected true, got %v", v)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	sch := mustSchema(t)
	row := schema.Row{types.NewInt(1), types.NewInt(10), types.NewText("ann")}

	_, err := Eval(parseExpr(t, "age / 0 = 1"), sch, row)
	if err == nil {
		t.Fatal("expected division-by-zero error")
	}
}

func TestEvalModuloByZero(t *testing.T) {
	sch := mustSchema(t)
	row := schema.Row{types.NewInt(1), types.NewInt(10), types.NewText("ann")}

	_, err := Eval(parseExpr(t, "age % 0 = 1"), sch, row)
	if err == nil {
		t.Fatal("expected modulo-by-zero error")
	}
}

func TestEvalNullPropagatesThroughArithmeticAndComparison(t *testing.T) {
	sch := mustSchema(t)
	row := schema.Row{types.NewInt(1), types.NewNull(), types.NewText("ann")}

	v, err := Eval(parseExpr(t, "age + 1 = 1"), sch, row)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !v.IsNull() {
		t.Errorf("expected null, got %v", v)
	}
	if Truthy(v) {
		t.Errorf("null must not be truthy")
	}
}

func TestEvalMismatchedTypeComparisonIsTypeError(t *testing.T) {
	sch := mustSchema(t)
	row := schema.Row{types.NewInt(1), types.NewInt(10), types.NewText("ann")}

	_, err := Eval(parseExpr(t, "age = name"), sch, row)
	if err == nil {
		t.Fatal("expected type error comparing INT and VARCHAR")
	}
}

func TestEvalAndTruthTable(t *testing.T) {
	sch := mustSchema(t)
	rowNullAge := schema.Row{types.NewInt(1), types.NewNull(), types.NewText("ann")}

	// null AND false = false (age = 1 is null when age is null)
	v, err := Eval(parseExpr(t, "age = 1 AND 1 = 2"), sch, rowNullAge)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v.IsNull() || Truthy(v) {
		t.Errorf("expected false, got %v", v)
	}

	// null AND true = null
	v, err = Eval(parseExpr(t, "age = 1 AND 1 = 1"), sch, rowNullAge)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !v.IsNull() {
		t.Errorf("expected null, got %v", v)
	}
}

func TestEvalOrEvaluatesBothOperands(t *testing.T) {
	// AND/OR are not short-circuiting: both operands are evaluated before
	// the truth table is applied, so an erroring right operand still
	// surfaces its error even though the left operand alone determines
	// the OR's truth value.
	sch := mustSchema(t)
	row := schema.Row{types.NewInt(1), types.NewInt(10), types.NewText("ann")}

	_, err := Eval(parseExpr(t, "1 = 1 OR age / 0 = 1"), sch, row)
	if err == nil {
		t.Fatal("expected division-by-zero error from the unevaluated-looking right operand")
	}
}

func TestEvalIsNullAndIsNotNull(t *testing.T) {
	sch := mustSchema(t)
	row := schema.Row{types.NewInt(1), types.NewNull(), types.NewText("ann")}

	v, err := Eval(parseExpr(t, "age IS NULL"), sch, row)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !Truthy(v) {
		t.Errorf("expected true for IS NULL on a null column")
	}

	v, err = Eval(parseExpr(t, "age IS NOT NULL"), sch, row)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if Truthy(v) {
		t.Errorf("expected false for IS NOT NULL on a null column")
	}
}

func TestEvalUnknownColumnIsBindError(t *testing.T) {
	sch := mustSchema(t)
	row := schema.Row{types.NewInt(1), types.NewInt(10), types.NewText("ann")}

	_, err := Eval(parseExpr(t, "nope = 1"), sch, row)
	if err == nil {
		t.Fatal("expected bind error for unknown column")
	}
}
