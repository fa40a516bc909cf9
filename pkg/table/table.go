// pkg/table/table.go
//
// Package table implements component 3 of the engine (spec.md §2): an
// ordered, append-oriented collection of rows over a fixed schema, plus a
// primary-key index used for uniqueness checks. Insertion order is
// preserved for scans; deletions compact the row slice and rebuild the
// index.
package table

import (
	"tur/pkg/dberrors"
	"tur/pkg/schema"
)

// Table is a schema plus an ordered collection of rows and, when the
// schema declares a primary key, a value->position index.
type Table struct {
	schema *schema.Schema
	rows   []schema.Row
	pkCol  int
	hasPK  bool
	pk     map[int32]int // primary key value -> row position
}

// New creates an empty table for the given schema.
func New(s *schema.Schema) *Table {
	t := &Table{schema: s, rows: nil}
	if i, ok := s.PrimaryKeyIndex(); ok {
		t.hasPK = true
		t.pkCol = i
		t.pk = make(map[int32]int)
	}
	return t
}

// Schema returns the table's schema.
func (t *Table) Schema() *schema.Schema { return t.schema }

// Len returns the current row count.
func (t *Table) Len() int { return len(t.rows) }

// Snapshot returns an immutable, independent view of the current rows in
// insertion order, safe for concurrent read-only use by parallel workers
// (spec.md §4.6/§5): the slice and its rows are copies, so later mutation
// of the table cannot be observed through it.
func (t *Table) Snapshot() []schema.Row {
	out := make([]schema.Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Clone()
	}
	return out
}

// RowAt returns the row at the given position without copying.
func (t *Table) RowAt(i int) schema.Row { return t.rows[i] }

func (t *Table) pkValue(row schema.Row) (int32, bool) {
	if !t.hasPK {
		return 0, false
	}
	v := row[t.pkCol]
	if v.IsNull() {
		return 0, false
	}
	return v.Int(), true
}

// InsertRows validates and appends a batch of rows atomically: either all
// rows are appended, or (on any validation or uniqueness failure) none
// are, and the table is left unchanged (spec.md §4.4 insert atomicity).
func (t *Table) InsertRows(newRows []schema.Row) error {
	seenInBatch := make(map[int32]struct{})

	for _, row := range newRows {
		if err := t.schema.Validate(row); err != nil {
			return err
		}
		if pkVal, ok := t.pkValue(row); ok {
			if _, exists := t.pk[pkVal]; exists {
				return dberrors.New(dberrors.Constraint, "duplicate primary key value %d", pkVal)
			}
			if _, dup := seenInBatch[pkVal]; dup {
				return dberrors.New(dberrors.Constraint, "duplicate primary key value %d", pkVal)
			}
			seenInBatch[pkVal] = struct{}{}
		}
	}

	for _, row := range newRows {
		t.rows = append(t.rows, row.Clone())
		if pkVal, ok := t.pkValue(row); ok {
			t.pk[pkVal] = len(t.rows) - 1
		}
	}
	return nil
}

// Update describes a single row's replacement for ApplyUpdates.
type Update struct {
	Index int
	Row   schema.Row
}

// ApplyUpdates validates a set of row replacements against the schema and
// against the full post-image of primary-key values (both the rows being
// updated and the rows left untouched), then applies them all at once.
// A new key may also not equal a key that another row holds before the
// update, even if that row is itself being updated. On any failure
// nothing is mutated (spec.md §4.4 update atomicity, including the
// two-admitted-rows-collide-with-each-other case).
func (t *Table) ApplyUpdates(updates []Update) error {
	byIndex := make(map[int]schema.Row, len(updates))
	for _, u := range updates {
		if err := t.schema.Validate(u.Row); err != nil {
			return err
		}
		if pkVal, ok := t.pkValue(u.Row); ok {
			if pos, exists := t.pk[pkVal]; exists && pos != u.Index {
				return dberrors.New(dberrors.Constraint, "duplicate primary key value %d", pkVal)
			}
		}
		byIndex[u.Index] = u.Row
	}

	if t.hasPK {
		seen := make(map[int32]int, len(t.rows))
		for i, row := range t.rows {
			effective := row
			if replacement, ok := byIndex[i]; ok {
				effective = replacement
			}
			pkVal, ok := t.pkValue(effective)
			if !ok {
				continue
			}
			if other, dup := seen[pkVal]; dup && other != i {
				return dberrors.New(dberrors.Constraint, "duplicate primary key value %d", pkVal)
			}
			seen[pkVal] = i
		}
	}

	for i, row := range byIndex {
		t.rows[i] = row.Clone()
	}
	t.rebuildIndex()
	return nil
}

// DeleteAt removes the rows at the given positions (any order, duplicates
// ignored) and rebuilds the primary-key index. Deleting zero rows is a
// no-op success (spec.md §4.4).
func (t *Table) DeleteAt(indices []int) {
	if len(indices) == 0 {
		return
	}
	remove := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		remove[i] = struct{}{}
	}

	kept := t.rows[:0:0]
	for i, row := range t.rows {
		if _, gone := remove[i]; gone {
			continue
		}
		kept = append(kept, row)
	}
	t.rows = kept
	t.rebuildIndex()
}

func (t *Table) rebuildIndex() {
	if !t.hasPK {
		return
	}
	t.pk = make(map[int32]int, len(t.rows))
	for i, row := range t.rows {
		if pkVal, ok := t.pkValue(row); ok {
			t.pk[pkVal] = i
		}
	}
}
