// pkg/sql/executor/executor.go
//
// Package executor implements component 8 of the engine (spec.md §2 and
// §4.4): the operator implementations for CREATE/DROP/INSERT/SELECT/
// UPDATE/DELETE, each following the Parsed -> Bound -> Validated ->
// Applied -> Formatted state machine. Row-level expression evaluation
// may run across a bounded worker pool (spec.md §4.6); mutation is
// always single-threaded, after every worker has joined.
package executor

import (
	"runtime"
	"sort"
	"sync"

	"tur/pkg/catalog"
	"tur/pkg/dberrors"
	"tur/pkg/schema"
	"tur/pkg/sql/eval"
	"tur/pkg/sql/parser"
	"tur/pkg/table"
	"tur/pkg/types"
)

// Result is a statement's output: either tabular rows (SELECT) or an
// affected-row count (INSERT/UPDATE/DELETE); DDL statements have neither.
type Result struct {
	Columns      []string
	Rows         [][]types.Value
	RowsAffected int
}

// Executor runs parsed statements against a catalog. When Parallel is
// true, row-level expression evaluation is spread across a bounded
// worker pool (spec.md §4.6); mutation itself is never concurrent.
type Executor struct {
	Catalog  *catalog.Catalog
	Parallel bool
}

// New creates an Executor over the given catalog.
func New(cat *catalog.Catalog, parallel bool) *Executor {
	return &Executor{Catalog: cat, Parallel: parallel}
}

// ExecuteAll runs each statement in order and stops at the first
// failure, tagging the error with the failing statement's 1-based index
// (spec.md §7 batch-reporting rule). Results already produced by earlier
// statements in the batch are returned alongside the error.
func (e *Executor) ExecuteAll(stmts []parser.Statement) ([]*Result, error) {
	results := make([]*Result, 0, len(stmts))
	for i, stmt := range stmts {
		res, err := e.execute(stmt)
		if err != nil {
			return results, dberrors.WithStmt(err, i+1)
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Executor) execute(stmt parser.Statement) (*Result, error) {
	switch s := stmt.(type) {
	case *parser.CreateTableStmt:
		return e.createTable(s)
	case *parser.DropTableStmt:
		return e.dropTable(s)
	case *parser.InsertStmt:
		return e.insert(s)
	case *parser.SelectStmt:
		return e.selectRows(s)
	case *parser.UpdateStmt:
		return e.update(s)
	case *parser.DeleteStmt:
		return e.delete(s)
	default:
		return nil, dberrors.New(dberrors.Bind, "unsupported statement type %T", stmt)
	}
}

// --- CREATE / DROP ---

func (e *Executor) createTable(s *parser.CreateTableStmt) (*Result, error) {
	cols := make([]schema.Column, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = schema.Column{
			Name:       c.Name,
			Type:       c.Type,
			Nullable:   !c.NotNull,
			PrimaryKey: c.PrimaryKey,
		}
	}
	sch, err := schema.New(cols)
	if err != nil {
		return nil, err
	}
	if err := e.Catalog.CreateTable(s.TableName, sch, s.IfNotExists); err != nil {
		return nil, err
	}
	return &Result{}, nil
}

func (e *Executor) dropTable(s *parser.DropTableStmt) (*Result, error) {
	if err := e.Catalog.DropTable(s.TableNames...); err != nil {
		return nil, err
	}
	return &Result{}, nil
}

// --- INSERT ---

func (e *Executor) insert(s *parser.InsertStmt) (*Result, error) {
	t, ok := e.Catalog.Table(s.TableName)
	if !ok {
		return nil, dberrors.New(dberrors.Bind, "no such table: %s", s.TableName)
	}
	sch := t.Schema()

	colNames := s.Columns
	if colNames == nil {
		colNames = sch.ColumnNames()
	}
	positions := make([]int, len(colNames))
	for i, name := range colNames {
		idx, ok := sch.IndexOf(name)
		if !ok {
			return nil, dberrors.New(dberrors.Bind, "unknown column %q", name)
		}
		positions[i] = idx
	}

	empty := make(schema.Row, len(sch.Columns))
	for i := range empty {
		empty[i] = types.NewNull()
	}

	rows := make([]schema.Row, len(s.Values))
	for i, tuple := range s.Values {
		if len(tuple) != len(colNames) {
			return nil, dberrors.New(dberrors.Schema, "tuple %d has %d values, expected %d", i+1, len(tuple), len(colNames))
		}
		row := make(schema.Row, len(sch.Columns))
		copy(row, empty)
		for j, expr := range tuple {
			v, err := eval.Eval(expr, sch, empty)
			if err != nil {
				return nil, err
			}
			row[positions[j]] = v
		}
		rows[i] = row
	}

	if err := t.InsertRows(rows); err != nil {
		return nil, err
	}
	return &Result{RowsAffected: len(rows)}, nil
}

// --- SELECT ---

func (e *Executor) selectRows(s *parser.SelectStmt) (*Result, error) {
	t, ok := e.Catalog.Table(s.From)
	if !ok {
		return nil, dberrors.New(dberrors.Bind, "no such table: %s", s.From)
	}
	sch := t.Schema()

	outNames, outPositions, err := resolveOutputColumns(sch, s.Columns)
	if err != nil {
		return nil, err
	}
	orderPositions, orderDesc, err := resolveOrderBy(sch, s.OrderBy)
	if err != nil {
		return nil, err
	}

	snapshot := t.Snapshot()
	admitted, err := e.filterRows(sch, snapshot, s.Where)
	if err != nil {
		return nil, err
	}

	sortRows(admitted, orderPositions, orderDesc)

	out := make([][]types.Value, len(admitted))
	for i, row := range admitted {
		projected := make([]types.Value, len(outPositions))
		for j, pos := range outPositions {
			projected[j] = row[pos]
		}
		out[i] = projected
	}

	return &Result{Columns: outNames, Rows: out}, nil
}

func resolveOutputColumns(sch *schema.Schema, cols []parser.SelectColumn) ([]string, []int, error) {
	if len(cols) == 1 && cols[0].Star {
		return sch.ColumnNames(), identityPositions(len(sch.Columns)), nil
	}
	names := make([]string, len(cols))
	positions := make([]int, len(cols))
	for i, c := range cols {
		idx, ok := sch.IndexOf(c.Name)
		if !ok {
			return nil, nil, dberrors.New(dberrors.Bind, "unknown column %q", c.Name)
		}
		names[i] = c.Name
		positions[i] = idx
	}
	return names, positions, nil
}

func identityPositions(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func resolveOrderBy(sch *schema.Schema, keys []parser.OrderKey) ([]int, []bool, error) {
	if len(keys) == 0 {
		return nil, nil, nil
	}
	positions := make([]int, len(keys))
	desc := make([]bool, len(keys))
	for i, k := range keys {
		idx, ok := sch.IndexOf(k.Name)
		if !ok {
			return nil, nil, dberrors.New(dberrors.Bind, "unknown column %q", k.Name)
		}
		positions[i] = idx
		desc[i] = k.Desc
	}
	return positions, desc, nil
}

// sortRows stably sorts rows by the given column positions; nulls sort
// last regardless of direction (spec.md §4.4 stated tie-break).
func sortRows(rows []schema.Row, positions []int, desc []bool) {
	if len(positions) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for k, pos := range positions {
			cmp := compareForOrder(rows[i][pos], rows[j][pos])
			if cmp == 0 {
				continue
			}
			if desc[k] {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// compareForOrder orders two values of the same column: null sorts
// after every non-null value, regardless of sort direction.
func compareForOrder(a, b types.Value) int {
	if a.IsNull() && b.IsNull() {
		return 0
	}
	if a.IsNull() {
		return 1
	}
	if b.IsNull() {
		return -1
	}
	switch a.Type() {
	case types.TypeInt:
		switch {
		case a.Int() < b.Int():
			return -1
		case a.Int() > b.Int():
			return 1
		default:
			return 0
		}
	default:
		switch {
		case a.Text() < b.Text():
			return -1
		case a.Text() > b.Text():
			return 1
		default:
			return 0
		}
	}
}

// --- UPDATE ---

func (e *Executor) update(s *parser.UpdateStmt) (*Result, error) {
	t, ok := e.Catalog.Table(s.TableName)
	if !ok {
		return nil, dberrors.New(dberrors.Bind, "no such table: %s", s.TableName)
	}
	sch := t.Schema()

	positions := make([]int, len(s.Assignments))
	for i, a := range s.Assignments {
		idx, ok := sch.IndexOf(a.Column)
		if !ok {
			return nil, dberrors.New(dberrors.Bind, "unknown column %q", a.Column)
		}
		positions[i] = idx
	}

	snapshot := t.Snapshot()
	admittedIdx, err := e.admissionIndices(sch, snapshot, s.Where)
	if err != nil {
		return nil, err
	}

	newRows := make([]schema.Row, len(admittedIdx))
	errs := make([]error, len(admittedIdx))
	parallelFor(len(admittedIdx), e.Parallel, func(k int) {
		rowIdx := admittedIdx[k]
		oldRow := snapshot[rowIdx]
		newRow := oldRow.Clone()
		for i, a := range s.Assignments {
			v, err := eval.Eval(a.Value, sch, oldRow)
			if err != nil {
				errs[k] = err
				return
			}
			newRow[positions[i]] = v
		}
		newRows[k] = newRow
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	updates := make([]table.Update, len(admittedIdx))
	for k, rowIdx := range admittedIdx {
		updates[k] = table.Update{Index: rowIdx, Row: newRows[k]}
	}
	if err := t.ApplyUpdates(updates); err != nil {
		return nil, err
	}
	return &Result{RowsAffected: len(updates)}, nil
}

// --- DELETE ---

func (e *Executor) delete(s *parser.DeleteStmt) (*Result, error) {
	t, ok := e.Catalog.Table(s.TableName)
	if !ok {
		return nil, dberrors.New(dberrors.Bind, "no such table: %s", s.TableName)
	}
	sch := t.Schema()

	snapshot := t.Snapshot()
	admittedIdx, err := e.admissionIndices(sch, snapshot, s.Where)
	if err != nil {
		return nil, err
	}

	t.DeleteAt(admittedIdx)
	return &Result{RowsAffected: len(admittedIdx)}, nil
}

// --- shared row-admission machinery (spec.md §4.6) ---

// filterRows evaluates where (nil admits every row) across the worker
// pool and returns the admitted rows in original insertion order.
func (e *Executor) filterRows(sch *schema.Schema, rows []schema.Row, where parser.Expression) ([]schema.Row, error) {
	if where == nil {
		return rows, nil
	}
	admit := make([]bool, len(rows))
	errs := make([]error, len(rows))
	parallelFor(len(rows), e.Parallel, func(i int) {
		v, err := eval.Eval(where, sch, rows[i])
		if err != nil {
			errs[i] = err
			return
		}
		admit[i] = eval.Truthy(v)
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	out := make([]schema.Row, 0, len(rows))
	for i, row := range rows {
		if admit[i] {
			out = append(out, row)
		}
	}
	return out, nil
}

// admissionIndices is filterRows but returns row positions instead of
// rows, for UPDATE/DELETE which need to address the live table by index.
func (e *Executor) admissionIndices(sch *schema.Schema, rows []schema.Row, where parser.Expression) ([]int, error) {
	if where == nil {
		out := make([]int, len(rows))
		for i := range rows {
			out[i] = i
		}
		return out, nil
	}
	admit := make([]bool, len(rows))
	errs := make([]error, len(rows))
	parallelFor(len(rows), e.Parallel, func(i int) {
		v, err := eval.Eval(where, sch, rows[i])
		if err != nil {
			errs[i] = err
			return
		}
		admit[i] = eval.Truthy(v)
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	out := make([]int, 0, len(rows))
	for i := range rows {
		if admit[i] {
			out = append(out, i)
		}
	}
	return out, nil
}

// parallelFor calls fn(i) for every i in [0,n). When parallel is false
// (or n is small) it runs sequentially; otherwise work is split across
// runtime.GOMAXPROCS(0) workers, each owning a disjoint index range, and
// joined with a single WaitGroup before returning (spec.md §4.6: no
// channel-based merge is needed since each worker writes disjoint slots).
func parallelFor(n int, parallel bool, fn func(i int)) {
	if n == 0 {
		return
	}
	workers := 1
	if parallel {
		workers = runtime.GOMAXPROCS(0)
		if workers > n {
			workers = n
		}
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
