// cmd/tinysql/main.go
//
// tinysql - an embedded SQL engine with an interactive REPL.
//
// Usage:
//
//	tinysql [flags]
//
// With no --sql flag, reads statements from standard input until EOF,
// printing each result or error. See --help for the full flag list.
package main

import (
	"flag"
	"fmt"
	"os"

	"tur/pkg/cli"
	"tur/pkg/session"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("tinysql", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath  = fs.String("config", "", "load default flag values from a YAML config file")
		sqlPath     = fs.String("sql", "", "execute the SQL statements in FILE, then exit")
		storagePath = fs.String("storage-path", "", "enable persistence at PATH")
		reinit      = fs.Bool("reinit", false, "ignore an existing storage file; start empty")
		noWriteBack = fs.Bool("no-write-back", false, "do not persist the catalog on exit")
		parallel    = fs.Bool("parallel", false, "enable parallel row execution")
		schemaPath  = fs.String("schema", "", "run bootstrap CREATE TABLE statements from a YAML file before serving SQL")
		historyPath = fs.String("history-file", "", "load/save REPL command history at PATH across runs")
	)
	fs.StringVar(storagePath, "s", "", "shorthand for --storage-path")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := session.NewConfig()
	if *configPath != "" {
		loaded, err := session.LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "tinysql: loading config: %v\n", err)
			return 1
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "storage-path", "s":
			cfg.WithStoragePath(*storagePath)
		case "reinit":
			cfg.WithReinit(*reinit)
		case "no-write-back":
			cfg.WithWriteBack(!*noWriteBack)
		case "parallel":
			cfg.WithParallel(*parallel)
		}
	})

	var bootstrap []string
	if *schemaPath != "" {
		stmts, err := session.LoadSchemaFile(*schemaPath)
		if err != nil {
			fmt.Fprintf(stderr, "tinysql: loading schema: %v\n", err)
			return 1
		}
		bootstrap = stmts
	}

	if *sqlPath != "" {
		return runFile(cfg, bootstrap, *sqlPath, stdout, stderr)
	}
	return runREPL(cfg, bootstrap, *historyPath, stdin, stdout, stderr)
}

func runFile(cfg *session.Config, bootstrap []string, path string, stdout, stderr *os.File) int {
	text, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "tinysql: %v\n", err)
		return 1
	}

	sess, err := cfg.Connect()
	if err != nil {
		fmt.Fprintf(stderr, "tinysql: %v\n", err)
		return 1
	}
	defer sess.Close()

	for _, stmt := range bootstrap {
		if _, err := sess.Execute(stmt); err != nil {
			fmt.Fprintf(stderr, "tinysql: bootstrap statement failed: %v\n", err)
			return 1
		}
	}

	out, execErr := sess.Execute(string(text))
	if out != "" {
		fmt.Fprintln(stdout, out)
	}
	if execErr != nil {
		fmt.Fprintf(stderr, "tinysql: %v\n", execErr)
		return 1
	}
	return 0
}

func runREPL(cfg *session.Config, bootstrap []string, historyPath string, stdin, stdout, stderr *os.File) int {
	repl, err := cli.NewREPLWithInput(cfg, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "tinysql: %v\n", err)
		return 1
	}
	defer repl.Close()

	if historyPath != "" {
		if err := repl.LoadHistory(historyPath); err != nil {
			fmt.Fprintf(stderr, "tinysql: loading history: %v\n", err)
		}
		defer func() {
			if err := repl.SaveHistory(historyPath); err != nil {
				fmt.Fprintf(stderr, "tinysql: saving history: %v\n", err)
			}
		}()
	}

	for _, stmt := range bootstrap {
		if err := repl.ExecuteStatement(stmt); err != nil {
			fmt.Fprintf(stderr, "tinysql: bootstrap statement failed: %v\n", err)
			return 1
		}
	}

	repl.Run()
	return 0
}
