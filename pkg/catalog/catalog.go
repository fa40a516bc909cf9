// pkg/catalog/catalog.go
//
// Package catalog implements component 4 of the engine (spec.md §2): the
// name -> Table mapping and the DDL operations (create, drop, lookup)
// that mutate it. The catalog is owned exclusively by a session; callers
// should look a table up by name at each statement boundary rather than
// holding a handle across statements (spec.md §9 design note).
package catalog

import (
	"sort"
	"sync"

	"tur/pkg/dberrors"
	"tur/pkg/schema"
	"tur/pkg/table"
)

// Catalog holds all tables in a session, keyed by case-sensitive name.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]*table.Table
}

// New creates a new, empty catalog.
func New() *Catalog {
	return &Catalog{tables: make(map[string]*table.Table)}
}

// CreateTable adds a new table under name with the given schema. If
// ifNotExists is true and a table by this name already exists, the call
// is a no-op success; otherwise a duplicate name is a Schema error.
func (c *Catalog) CreateTable(name string, s *schema.Schema, ifNotExists bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[name]; exists {
		if ifNotExists {
			return nil
		}
		return dberrors.New(dberrors.Schema, "table %q already exists", name)
	}

	c.tables[name] = table.New(s)
	return nil
}

// DropTable removes each named table. All names are validated to exist
// before any is dropped, so a missing name leaves the catalog unchanged
// (spec.md §4.4 "no partial drops").
func (c *Catalog) DropTable(names ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range names {
		if _, exists := c.tables[name]; !exists {
			return dberrors.New(dberrors.Bind, "no such table: %s", name)
		}
	}
	for _, name := range names {
		delete(c.tables, name)
	}
	return nil
}

// Table returns the named table, or false if it does not exist.
func (c *Catalog) Table(name string) (*table.Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	return t, ok
}

// TableNames returns all table names, sorted for deterministic output
// (e.g. the CLI's .tables command).
func (c *Catalog) TableNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
