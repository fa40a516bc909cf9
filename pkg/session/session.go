// pkg/session/session.go
//
// Package session implements component 10 of the engine (spec.md §2/§6):
// the programmatic entry point gluing the catalog, executor, and
// optional storage file together behind a `Config` builder and a
// `Session.Execute` call.
package session

import (
	"os"

	"tur/pkg/catalog"
	"tur/pkg/dberrors"
	"tur/pkg/sql/executor"
	"tur/pkg/sql/parser"
	"tur/pkg/storage"
)

// Config builds a Session. The zero value is not ready to use; call
// NewConfig, which sets WriteBack's true default (spec.md §6).
type Config struct {
	Parallel    bool
	StoragePath string // "" means pure in-memory, no persistence
	Reinit      bool
	WriteBack   bool
}

// NewConfig returns a Config with spec.md §6's defaults: no parallelism,
// no storage path, reinit off, write-back on.
func NewConfig() *Config {
	return &Config{WriteBack: true}
}

func (c *Config) WithParallel(v bool) *Config     { c.Parallel = v; return c }
func (c *Config) WithStoragePath(p string) *Config { c.StoragePath = p; return c }
func (c *Config) WithReinit(v bool) *Config        { c.Reinit = v; return c }
func (c *Config) WithWriteBack(v bool) *Config      { c.WriteBack = v; return c }

// Connect opens a Session: if StoragePath is set, an existing catalog
// file is loaded (unless Reinit), and an advisory exclusive lock is held
// on it for the life of the Session (spec.md §4.5).
func (c *Config) Connect() (*Session, error) {
	cat := catalog.New()
	var file *os.File

	if c.StoragePath != "" {
		if !c.Reinit && storage.Exists(c.StoragePath) {
			// An empty file is what an earlier session without write-back
			// leaves behind; it holds no catalog to load.
			if info, err := os.Stat(c.StoragePath); err == nil && info.Size() > 0 {
				loaded, err := storage.Load(c.StoragePath)
				if err != nil {
					return nil, err
				}
				cat = loaded
			}
		}

		f, err := os.OpenFile(c.StoragePath, os.O_RDWR|os.O_CREATE, 0o644)
		if err != nil {
			return nil, dberrors.Wrap(dberrors.IO, err, "opening catalog file")
		}
		if err := storage.Lock(f); err != nil {
			f.Close()
			return nil, err
		}
		file = f
	}

	return &Session{
		cfg:      c,
		catalog:  cat,
		executor: executor.New(cat, c.Parallel),
		file:     file,
	}, nil
}

// Session is a live connection to a catalog, with an executor bound to
// it. A Session is not safe for concurrent use (spec.md §5: single
// session, single statement at a time).
type Session struct {
	cfg      *Config
	catalog  *catalog.Catalog
	executor *executor.Executor
	file     *os.File
}

// Execute parses and runs one or more `;`-terminated statements and
// renders their combined result as text, or returns the first error
// encountered. Execution errors are tagged with their statement index by
// the executor; a parse error anywhere in text is returned untagged,
// before any statement runs.
func (s *Session) Execute(text string) (string, error) {
	results, execErr := s.ExecuteRaw(text)
	out := FormatResults(results)
	if execErr != nil {
		return out, execErr
	}
	return out, nil
}

// ExecuteRaw parses and runs one or more `;`-terminated statements,
// returning the unformatted per-statement results. Callers that need
// their own rendering (e.g. the CLI's ASCII table output) use this
// instead of Execute.
func (s *Session) ExecuteRaw(text string) ([]*executor.Result, error) {
	stmts, err := parser.ParseStatements(text)
	if err != nil {
		return nil, err
	}
	return s.executor.ExecuteAll(stmts)
}

// Close releases the Session's storage file, persisting the catalog
// first when WriteBack is enabled (spec.md §4.5/§6).
func (s *Session) Close() error {
	if s.file == nil {
		return nil
	}
	defer s.file.Close()
	defer storage.Unlock(s.file)

	if s.cfg.WriteBack {
		if err := storage.Save(s.cfg.StoragePath, s.catalog); err != nil {
			return err
		}
	}
	return nil
}

// Catalog exposes the underlying catalog, e.g. for the CLI's `.tables`/
// `.schema` dot-commands.
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }
