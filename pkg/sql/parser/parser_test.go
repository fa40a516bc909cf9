// pkg/sql/parser/parser_test.go
package parser

import (
	"testing"

	"tur/pkg/sql/lexer"
)

func parseOne(t *testing.T, input string) Statement {
	t.Helper()
	stmts, err := ParseStatements(input)
	if err != nil {
		t.Fatalf("ParseStatements(%q): %v", input, err)
	}
	if len(stmts) != 1 {
		t.Fatalf("ParseStatements(%q): got %d statements, want 1", input, len(stmts))
	}
	return stmts[0]
}

func TestParseCreateTable(t *testing.T) {
	stmt := parseOne(t, `CREATE TABLE IF NOT EXISTS users (id INT PRIMARY KEY, name VARCHAR(32) NOT NULL)`)
	ct, ok := stmt.(*CreateTableStmt)
	if !ok {
		t.Fatalf("got %T, want *CreateTableStmt", stmt)
	}
	if ct.TableName != "users" || !ct.IfNotExists {
		t.Errorf("got %+v", ct)
	}
	if len(ct.Columns) != 2 {
		t.Fatalf("got %d columns, want 2", len(ct.Columns))
	}
	if !ct.Columns[0].PrimaryKey {
		t.Errorf("expected id to be PRIMARY KEY")
	}
	if !ct.Columns[1].NotNull || ct.Columns[1].Type.Length != 32 {
		t.Errorf("got %+v", ct.Columns[1])
	}
}

func TestParseDropTable(t *testing.T) {
	stmt := parseOne(t, `DROP TABLE a, b`)
	dt, ok := stmt.(*DropTableStmt)
	if !ok {
		t.Fatalf("got %T, want *DropTableStmt", stmt)
	}
	if len(dt.TableNames) != 2 || dt.TableNames[0] != "a" || dt.TableNames[1] != "b" {
		t.Errorf("got %+v", dt.TableNames)
	}
}

func TestParseInsertWithColumnList(t *testing.T) {
	stmt := parseOne(t, `INSERT INTO users (id, name) VALUES (1, 'ann'), (2, NULL)`)
	ins, ok := stmt.(*InsertStmt)
	if !ok {
		t.Fatalf("got %T, want *InsertStmt", stmt)
	}
	if len(ins.Columns) != 2 || len(ins.Values) != 2 {
		t.Fatalf("got %+v", ins)
	}
	lit, ok := ins.Values[1][1].(*Literal)
	if !ok || !lit.Value.IsNull() {
		t.Errorf("expected second tuple's second value to be NULL literal, got %+v", ins.Values[1][1])
	}
}

func TestParseInsertWithoutColumnListOrInto(t *testing.T) {
	stmt := parseOne(t, `INSERT users VALUES (1)`)
	ins, ok := stmt.(*InsertStmt)
	if !ok {
		t.Fatalf("got %T, want *InsertStmt", stmt)
	}
	if ins.Columns != nil {
		t.Errorf("expected nil column list, got %+v", ins.Columns)
	}
}

func TestParseSelectStar(t *testing.T) {
	stmt := parseOne(t, `SELECT * FROM users`)
	sel, ok := stmt.(*SelectStmt)
	if !ok {
		t.Fatalf("got %T, want *SelectStmt", stmt)
	}
	if len(sel.Columns) != 1 || !sel.Columns[0].Star {
		t.Errorf("got %+v", sel.Columns)
	}
}

func TestParseSelectWithWhereAndOrderBy(t *testing.T) {
	stmt := parseOne(t, `SELECT id, name FROM users WHERE id > 1 AND name IS NOT NULL ORDER BY name DESC, id`)
	sel, ok := stmt.(*SelectStmt)
	if !ok {
		t.Fatalf("got %T, want *SelectStmt", stmt)
	}
	if len(sel.Columns) != 2 || sel.Columns[0].Name != "id" || sel.Columns[1].Name != "name" {
		t.Fatalf("got %+v", sel.Columns)
	}
	where, ok := sel.Where.(*BinaryExpr)
	if !ok || where.Op != lexer.AND {
		t.Fatalf("expected top-level AND, got %+v", sel.Where)
	}
	if _, ok := where.Right.(*IsNullExpr); !ok {
		t.Errorf("expected right side to be IS NOT NULL, got %T", where.Right)
	}
	if len(sel.OrderBy) != 2 || !sel.OrderBy[0].Desc || sel.OrderBy[1].Desc {
		t.Errorf("got %+v", sel.OrderBy)
	}
}

func TestParseUpdate(t *testing.T) {
	stmt := parseOne(t, `UPDATE users SET name = 'bo', id = id + 1 WHERE id = 2`)
	up, ok := stmt.(*UpdateStmt)
	if !ok {
		t.Fatalf("got %T, want *UpdateStmt", stmt)
	}
	if len(up.Assignments) != 2 {
		t.Fatalf("got %+v", up.Assignments)
	}
	if _, ok := up.Assignments[1].Value.(*BinaryExpr); !ok {
		t.Errorf("expected arithmetic expression, got %T", up.Assignments[1].Value)
	}
}

func TestParseDelete(t *testing.T) {
	stmt := parseOne(t, `DELETE FROM users WHERE id = 1`)
	del, ok := stmt.(*DeleteStmt)
	if !ok {
		t.Fatalf("got %T, want *DeleteStmt", stmt)
	}
	if del.TableName != "users" || del.Where == nil {
		t.Errorf("got %+v", del)
	}
}

func TestExpressionPrecedence(t *testing.T) {
	// 1 + 2 * 3 = 7, i.e. '*' binds tighter than '+'.
	stmt := parseOne(t, `SELECT * FROM t WHERE id = 1 + 2 * 3`)
	sel := stmt.(*SelectStmt)
	cmp := sel.Where.(*BinaryExpr)
	add := cmp.Right.(*BinaryExpr)
	if add.Op != lexer.PLUS {
		t.Fatalf("expected top arithmetic op to be +, got %v", add.Op)
	}
	mul, ok := add.Right.(*BinaryExpr)
	if !ok || mul.Op != lexer.STAR {
		t.Fatalf("expected right side of + to be a * expr, got %+v", add.Right)
	}
}

func TestUnaryMinusAndParens(t *testing.T) {
	stmt := parseOne(t, `SELECT * FROM t WHERE id = -(1 + 2)`)
	sel := stmt.(*SelectStmt)
	cmp := sel.Where.(*BinaryExpr)
	neg, ok := cmp.Right.(*UnaryExpr)
	if !ok || neg.Op != lexer.MINUS {
		t.Fatalf("expected unary minus, got %+v", cmp.Right)
	}
	if _, ok := neg.Right.(*BinaryExpr); !ok {
		t.Errorf("expected parenthesized + expr, got %T", neg.Right)
	}
}

func TestMultipleStatements(t *testing.T) {
	stmts, err := ParseStatements(`CREATE TABLE t (id INT PRIMARY KEY); INSERT INTO t VALUES (1); SELECT * FROM t;`)
	if err != nil {
		t.Fatalf("ParseStatements: %v", err)
	}
	if len(stmts) != 3 {
		t.Fatalf("got %d statements, want 3", len(stmts))
	}
}

func TestSyntaxErrorIsReported(t *testing.T) {
	_, err := ParseStatements(`SELECT FROM`)
	if err == nil {
		t.Fatal("expected a parse error")
	}
}
