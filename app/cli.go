package main

import (
	"fmt"
	"strings"

	"github.com/mitchellh/cli"
)

// Run is the whole CLI's entry point: open the database named in args[0],
// then dispatch args[1] as either a dot-command or a raw SQL statement.
// Returns the process exit code (spec §6.2: 0 on success, 1 on any
// reported error).
func Run(args []string, ui cli.Ui) int {
	if len(args) < 2 {
		ui.Error("usage: sqlitereader <database-file> <command>")
		return 1
	}

	path := args[0]
	command := strings.TrimSpace(args[1])

	db, err := OpenDatabase(path)
	if err != nil {
		ui.Error(fmt.Sprintf("error opening database: %v", err))
		return 1
	}
	defer db.Close()

	switch {
	case command == ".dbinfo":
		return runDBInfo(db, ui)
	case command == ".tables":
		return runTables(db, ui)
	default:
		return runQuery(db, command, ui)
	}
}

func runDBInfo(db *Database, ui cli.Ui) int {
	ui.Output(fmt.Sprintf("database page size: %d", db.Header.PageSize))
	ui.Output(fmt.Sprintf("number of tables: %d", len(db.Schema.ListUserTables())))
	ui.Output(fmt.Sprintf("write format: %d", db.Header.FileFormatWrite))
	ui.Output(fmt.Sprintf("read format: %d", db.Header.FileFormatRead))
	ui.Output(fmt.Sprintf("reserved space: %d", db.Header.ReservedSpace))
	ui.Output(fmt.Sprintf("file change counter: %d", db.Header.FileChangeCounter))
	ui.Output(fmt.Sprintf("database page count: %d", db.Header.DatabaseSizePages))
	ui.Output(fmt.Sprintf("schema cookie: %d", db.Header.SchemaCookie))
	ui.Output(fmt.Sprintf("schema format: %d", db.Header.SchemaFormat))
	ui.Output(fmt.Sprintf("default cache size: %d", db.Header.DefaultCacheSize))
	ui.Output(fmt.Sprintf("text encoding: %d (%s)", db.Header.TextEncoding, db.Header.TextEncodingName()))
	ui.Output(fmt.Sprintf("user version: %d", db.Header.UserVersion))
	return 0
}

func runTables(db *Database, ui cli.Ui) int {
	tables := db.Schema.ListUserTables()
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	ui.Output(strings.Join(names, " "))
	return 0
}

func runQuery(db *Database, sql string, ui cli.Ui) int {
	rs, err := db.Query(sql)
	if err != nil {
		ui.Error(fmt.Sprintf("error: %v", err))
		return 1
	}
	for _, line := range FormatRows(rs) {
		ui.Output(line)
	}
	return 0
}
