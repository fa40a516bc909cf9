// pkg/schema/schema.go
//
// Package schema defines column and schema definitions (component 2 of the
// engine, spec.md §2) and the row-shape validation rules every row must
// satisfy against its owning schema (spec.md §3 invariants).
package schema

import (
	"tur/pkg/dberrors"
	"tur/pkg/types"
)

// Column is one column definition: name (case-preserving), declared type,
// nullability, and whether it is the table's primary key.
type Column struct {
	Name       string
	Type       types.ColumnType
	Nullable   bool
	PrimaryKey bool
}

// Schema is the ordered column definitions of a table.
type Schema struct {
	Columns []Column
}

// New validates and builds a Schema from column definitions. A
// primary-key column is implicitly NOT NULL and must be INT; at most one
// primary-key column is allowed; VARCHAR(n) requires n > 0; column names
// must be unique.
func New(columns []Column) (*Schema, error) {
	seen := make(map[string]struct{}, len(columns))
	pkSeen := false

	out := make([]Column, len(columns))
	for i, c := range columns {
		if _, dup := seen[c.Name]; dup {
			return nil, dberrors.New(dberrors.Schema, "duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}

		if c.PrimaryKey {
			if pkSeen {
				return nil, dberrors.New(dberrors.Schema, "multiple primary key columns")
			}
			if c.Type.Kind != types.TypeInt {
				return nil, dberrors.New(dberrors.Schema, "primary key column %q must be INT", c.Name)
			}
			c.Nullable = false
			pkSeen = true
		}

		if c.Type.Kind == types.TypeText && c.Type.Length <= 0 {
			return nil, dberrors.New(dberrors.Schema, "VARCHAR length for column %q must be positive", c.Name)
		}

		out[i] = c
	}

	return &Schema{Columns: out}, nil
}

// IndexOf returns the position of the named column, case-sensitively.
func (s *Schema) IndexOf(name string) (int, bool) {
	for i, c := range s.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// PrimaryKeyIndex returns the position of the primary-key column, if any.
func (s *Schema) PrimaryKeyIndex() (int, bool) {
	for i, c := range s.Columns {
		if c.PrimaryKey {
			return i, true
		}
	}
	return 0, false
}

// ColumnNames returns the column names in declared order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Row is an ordered tuple of values, one per column of its owning schema.
type Row []types.Value

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Validate checks a row's arity, per-position types, nullability, and
// VARCHAR width against the schema (spec.md §3 invariants). It does not
// check primary-key uniqueness, which requires comparing against sibling
// rows and is the caller's (table/executor's) responsibility.
func (s *Schema) Validate(row Row) error {
	if len(row) != len(s.Columns) {
		return dberrors.New(dberrors.Type, "row has %d values, schema has %d columns", len(row), len(s.Columns))
	}
	for i, col := range s.Columns {
		v := row[i]
		if v.IsNull() {
			if !col.Nullable {
				return dberrors.New(dberrors.Constraint, "NULL value in NOT NULL column %q", col.Name)
			}
			continue
		}
		if v.Type() != col.Type.Kind {
			return dberrors.New(dberrors.Type, "value for column %q has type %s, expected %s", col.Name, v.Type(), col.Type.Kind)
		}
		if col.Type.Kind == types.TypeText && len(v.Text()) > col.Type.Length {
			return dberrors.New(dberrors.Type, "value for column %q exceeds VARCHAR(%d)", col.Name, col.Type.Length)
		}
	}
	return nil
}
