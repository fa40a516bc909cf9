// pkg/cli/repl.go
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"tur/pkg/schema"
	"tur/pkg/session"
	"tur/pkg/sql/executor"
	"tur/pkg/types"
)

// REPL provides a Read-Eval-Print Loop for interactive SQL execution.
type REPL struct {
	// sess is the underlying database session
	sess *session.Session

	// shell handles input/output and statement parsing
	shell *Shell

	// output is where results are written
	output io.Writer

	// errOutput is where errors are written
	errOutput io.Writer

	// running indicates if the REPL is currently running
	running bool

	// exitRequested indicates that .exit was called
	exitRequested bool
}

// NewREPL creates a new REPL over the given Config. Output is written to
// output and errors to errOutput, and input is read from os.Stdin.
func NewREPL(cfg *session.Config, output, errOutput io.Writer) (*REPL, error) {
	return NewREPLWithInput(cfg, os.Stdin, output, errOutput)
}

// NewREPLWithInput creates a new REPL with custom input/output streams.
// This is useful for testing or scripted operation.
func NewREPLWithInput(cfg *session.Config, input io.Reader, output, errOutput io.Writer) (*REPL, error) {
	sess, err := cfg.Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	shell := NewShell(input, output, errOutput)

	return &REPL{
		sess:      sess,
		shell:     shell,
		output:    output,
		errOutput: errOutput,
		running:   false,
	}, nil
}

// Close closes the REPL and underlying session, persisting if configured.
func (r *REPL) Close() error {
	if r.sess != nil {
		return r.sess.Close()
	}
	return nil
}

// LoadHistory populates the REPL's command history from path, so a new
// session can recall statements typed in a previous one. A missing file
// is not an error.
func (r *REPL) LoadHistory(path string) error {
	return r.shell.LoadHistory(path)
}

// SaveHistory writes the REPL's current command history to path.
func (r *REPL) SaveHistory(path string) error {
	return r.shell.SaveHistory(path)
}

// Run starts the REPL loop, reading and executing statements until
// EOF or .exit command.
func (r *REPL) Run() {
	r.running = true
	r.exitRequested = false

	fmt.Fprintln(r.output, "tinysql version 0.1.0")
	fmt.Fprintln(r.output, "Enter \".help\" for usage hints.")

	for r.running && !r.exitRequested {
		stmt, eof := r.shell.ReadStatement()

		if eof && stmt == "" {
			fmt.Fprintln(r.output)
			break
		}

		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if strings.HasPrefix(stmt, ".") {
			r.handleDotCommand(stmt)
			continue
		}

		if err := r.ExecuteStatement(stmt); err != nil {
			r.printError(err)
		}

		if eof {
			break
		}
	}

	r.running = false
}

// ExecuteStatement executes one or more SQL statements and displays each
// result as an ASCII table or an affected-row count.
func (r *REPL) ExecuteStatement(sql string) error {
	results, err := r.sess.ExecuteRaw(sql)
	for _, res := range results {
		r.displayResult(res)
	}
	return err
}

// displayResult formats and prints one statement's result.
func (r *REPL) displayResult(result *executor.Result) {
	if result == nil {
		return
	}

	if result.Columns == nil {
		if result.RowsAffected > 0 {
			fmt.Fprintf(r.output, "%d row(s) affected\n", result.RowsAffected)
		}
		return
	}

	r.displayTable(result.Columns, result.Rows)
}

// displayTable formats query results as an ASCII table.
func (r *REPL) displayTable(columns []string, rows [][]types.Value) {
	if len(columns) == 0 {
		return
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}

	for _, row := range rows {
		for i, val := range row {
			if i < len(widths) {
				s := formatValue(val)
				if len(s) > widths[i] {
					widths[i] = len(s)
				}
			}
		}
	}

	r.printSeparator(widths)
	r.printRow(columns, widths)
	r.printSeparator(widths)

	for _, row := range rows {
		r.printDataRow(row, widths)
	}

	r.printSeparator(widths)
	fmt.Fprintf(r.output, "%d row(s)\n", len(rows))
}

// printSeparator prints a horizontal line separator.
func (r *REPL) printSeparator(widths []int) {
	fmt.Fprint(r.output, "+")
	for _, w := range widths {
		fmt.Fprint(r.output, strings.Repeat("-", w+2))
		fmt.Fprint(r.output, "+")
	}
	fmt.Fprintln(r.output)
}

// printRow prints a row of string values.
func (r *REPL) printRow(values []string, widths []int) {
	fmt.Fprint(r.output, "|")
	for i, val := range values {
		w := widths[i]
		fmt.Fprintf(r.output, " %-*s |", w, val)
	}
	fmt.Fprintln(r.output)
}

// printDataRow prints a row of column values.
func (r *REPL) printDataRow(row []types.Value, widths []int) {
	fmt.Fprint(r.output, "|")
	for i, val := range row {
		w := widths[i]
		s := formatValue(val)
		fmt.Fprintf(r.output, " %-*s |", w, s)
	}
	fmt.Fprintln(r.output)
}

// formatValue converts a column value to its display string.
func formatValue(v types.Value) string {
	return v.String()
}

// handleDotCommand processes special dot commands.
func (r *REPL) handleDotCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch strings.ToLower(parts[0]) {
	case ".exit", ".quit":
		r.exitRequested = true
	case ".help":
		r.printHelp()
	case ".tables":
		r.showTables()
	case ".schema":
		if len(parts) > 1 {
			r.showSchema(parts[1])
		} else {
			r.showAllSchemas()
		}
	default:
		fmt.Fprintf(r.errOutput, "Unknown command: %s\n", parts[0])
		fmt.Fprintln(r.errOutput, "Use \".help\" for usage hints.")
	}
}

// printHelp displays help information.
func (r *REPL) printHelp() {
	help := `
.exit              Exit this program
.help              Show this help message
.quit              Exit this program
.schema [TABLE]    Show CREATE statement for table(s)
.tables            List all tables

Enter SQL statements terminated with a semicolon.
Multi-line statements are supported.
`
	fmt.Fprintln(r.output, help)
}

// showTables lists all tables in the session's catalog.
func (r *REPL) showTables() {
	names := r.sess.Catalog().TableNames()
	if len(names) == 0 {
		fmt.Fprintln(r.output, "(no tables)")
		return
	}
	for _, name := range names {
		fmt.Fprintln(r.output, name)
	}
}

// showSchema shows the CREATE statement for a specific table.
func (r *REPL) showSchema(tableName string) {
	t, ok := r.sess.Catalog().Table(tableName)
	if !ok {
		fmt.Fprintf(r.errOutput, "Error: no such table: %s\n", tableName)
		return
	}
	fmt.Fprintln(r.output, generateCreateSQL(tableName, t.Schema()))
}

// showAllSchemas shows CREATE statements for all tables.
func (r *REPL) showAllSchemas() {
	names := r.sess.Catalog().TableNames()
	for _, name := range names {
		t, ok := r.sess.Catalog().Table(name)
		if ok {
			fmt.Fprintln(r.output, generateCreateSQL(name, t.Schema()))
		}
	}
}

// generateCreateSQL generates a CREATE TABLE statement from a Schema.
func generateCreateSQL(tableName string, sch *schema.Schema) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(tableName)
	sb.WriteString(" (")

	for i, col := range sch.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col.Name)
		sb.WriteString(" ")
		sb.WriteString(col.Type.String())

		if col.PrimaryKey {
			sb.WriteString(" PRIMARY KEY")
		} else if !col.Nullable {
			sb.WriteString(" NOT NULL")
		}
	}

	sb.WriteString(");")
	return sb.String()
}

// printError prints an error message to the error output.
func (r *REPL) printError(err error) {
	fmt.Fprintf(r.errOutput, "Error: %v\n", err)
}
