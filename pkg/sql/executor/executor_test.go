// pkg/sql/executor/executor_test.go
package executor

import (
	"testing"

	"tur/pkg/catalog"
	"tur/pkg/sql/parser"
)

func run(t *testing.T, e *Executor, sql string) []*Result {
	t.Helper()
	stmts, err := parser.ParseStatements(sql)
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	results, err := e.ExecuteAll(stmts)
	if err != nil {
		t.Fatalf("execute %q: %v", sql, err)
	}
	return results
}

func newExecutor() *Executor {
	return New(catalog.New(), false)
}

func TestCreateInsertSelect(t *testing.T) {
	e := newExecutor()
	run(t, e, `CREATE TABLE users (id INT PRIMARY KEY, name VARCHAR(16) NOT NULL)`)
	run(t, e, `INSERT INTO users VALUES (1, 'ann'), (2, 'bo')`)

	results := run(t, e, `SELECT * FROM users`)
	res := results[0]
	if len(res.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(res.Rows))
	}
	if res.Rows[0][1].Text() != "ann" || res.Rows[1][1].Text() != "bo" {
		t.Errorf("unexpected row order/content: %+v", res.Rows)
	}
}

func TestSelectWithWhere(t *testing.T) {
	e := newExecutor()
	run(t, e, `CREATE TABLE t (id INT PRIMARY KEY, age INT)`)
	run(t, e, `INSERT INTO t VALUES (1, 10), (2, 20), (3, 30)`)

	results := run(t, e, `SELECT id FROM t WHERE age > 15`)
	res := results[0]
	if len(res.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(res.Rows))
	}
	if res.Rows[0][0].Int() != 2 || res.Rows[1][0].Int() != 3 {
		t.Errorf("unexpected rows: %+v", res.Rows)
	}
}

func TestSelectOrderByNullsLast(t *testing.T) {
	e := newExecutor()
	run(t, e, `CREATE TABLE t (id INT PRIMARY KEY, age INT)`)
	run(t, e, `INSERT INTO t (id, age) VALUES (1, NULL), (2, 5), (3, 1)`)

	results := run(t, e, `SELECT id FROM t ORDER BY age ASC`)
	res := results[0]
	got := []int32{res.Rows[0][0].Int(), res.Rows[1][0].Int(), res.Rows[2][0].Int()}
	want := []int32{3, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got order %v, want %v", got, want)
			break
		}
	}
}

func TestInsertAllOrNothing(t *testing.T) {
	e := newExecutor()
	run(t, e, `CREATE TABLE t (id INT PRIMARY KEY, name VARCHAR(8) NOT NULL)`)

	stmts, _ := parser.ParseStatements(`INSERT INTO t VALUES (1, 'a'), (1, 'b')`)
	if _, err := e.ExecuteAll(stmts); err == nil {
		t.Fatal("expected primary key collision error")
	}

	results := run(t, e, `SELECT * FROM t`)
	if len(results[0].Rows) != 0 {
		t.Errorf("expected no rows after a failed batch insert, got %d", len(results[0].Rows))
	}
}

func TestUpdateAllOrNothingOnCollision(t *testing.T) {
	e := newExecutor()
	run(t, e, `CREATE TABLE t (id INT PRIMARY KEY, age INT)`)
	run(t, e, `INSERT INTO t VALUES (1, 10), (2, 20)`)

	stmts, _ := parser.ParseStatements(`UPDATE t SET id = 1`)
	if _, err := e.ExecuteAll(stmts); err == nil {
		t.Fatal("expected primary key collision between admitted rows")
	}

	results := run(t, e, `SELECT id, age FROM t`)
	if results[0].Rows[0][1].Int() != 10 || results[0].Rows[1][1].Int() != 20 {
		t.Errorf("table was mutated despite rollback: %+v", results[0].Rows)
	}
}

func TestUpdateUsesPreUpdateRowForRHS(t *testing.T) {
	e := newExecutor()
	run(t, e, `CREATE TABLE t (id INT PRIMARY KEY, age INT)`)
	run(t, e, `INSERT INTO t VALUES (1, 10)`)
	run(t, e, `UPDATE t SET age = age + 1 WHERE id = 1`)

	results := run(t, e, `SELECT age FROM t`)
	if results[0].Rows[0][0].Int() != 11 {
		t.Errorf("got age %v, want 11", results[0].Rows[0][0])
	}
}

func TestDelete(t *testing.T) {
	e := newExecutor()
	run(t, e, `CREATE TABLE t (id INT PRIMARY KEY)`)
	run(t, e, `INSERT INTO t VALUES (1), (2), (3)`)
	results := run(t, e, `DELETE FROM t WHERE id = 2`)
	if results[0].RowsAffected != 1 {
		t.Fatalf("got %d rows affected, want 1", results[0].RowsAffected)
	}

	sel := run(t, e, `SELECT id FROM t`)
	if len(sel[0].Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(sel[0].Rows))
	}
}

func TestBatchStopsAtFirstFailureWithStatementIndex(t *testing.T) {
	e := newExecutor()
	stmts, err := parser.ParseStatements(`CREATE TABLE t (id INT PRIMARY KEY); INSERT INTO nope VALUES (1); SELECT * FROM t;`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	results, err := e.ExecuteAll(stmts)
	if err == nil {
		t.Fatal("expected an error from the second statement")
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 successful result before the failure, got %d", len(results))
	}
}

func TestParallelExecutorMatchesSequential(t *testing.T) {
	e := New(catalog.New(), true)
	run(t, e, `CREATE TABLE t (id INT PRIMARY KEY, age INT)`)
	stmts, _ := parser.ParseStatements(`INSERT INTO t VALUES (1,10),(2,20),(3,30),(4,40),(5,50),(6,60),(7,70),(8,80)`)
	if _, err := e.ExecuteAll(stmts); err != nil {
		t.Fatalf("insert: %v", err)
	}

	results := run(t, e, `SELECT id FROM t WHERE age >= 30 ORDER BY id`)
	if len(results[0].Rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(results[0].Rows))
	}
}
