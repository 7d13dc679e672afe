package main

import "strings"

// ResultSet is the executor's output: the data rows as decoded Values, one
// slice per row. It carries no column-name header row; FormatRows renders
// the rows for display.
type ResultSet struct {
	Rows [][]Value
}

// Execute runs a narrowed Statement against the database's schema and
// pager (spec §4.8): COUNT(*) takes the leaf-summation fast path and never
// decodes a record; a column-list SELECT walks the table B-tree in rowid
// order and projects the requested columns out of each decoded record.
func Execute(stmt *Statement, schema *Schema, pager *Pager) (*ResultSet, error) {
	table, err := schema.Resolve(stmt.Table)
	if err != nil {
		return nil, err
	}
	if table.Type != "table" {
		return nil, NewDatabaseError("execute", ErrTableNotFound, map[string]interface{}{
			"name":   stmt.Table,
			"reason": "not a table",
		})
	}

	if stmt.IsCountStar {
		n, err := CountTableRows(pager, table.RootPage)
		if err != nil {
			return nil, NewDatabaseError("execute", err, map[string]interface{}{"table": stmt.Table})
		}
		return &ResultSet{Rows: [][]Value{{IntValue(n)}}}, nil
	}

	cols, err := ColumnsOf(table)
	if err != nil {
		return nil, err
	}

	wantedColumns := stmt.Columns
	if stmt.IsStar {
		// Project every declared column, in CREATE TABLE order (spec §4.8).
		wantedColumns = make([]string, len(cols))
		for i, c := range cols {
			wantedColumns[i] = c.Name
		}
	}

	indices := make([]int, len(wantedColumns))
	aliases := make([]bool, len(wantedColumns))
	for i, wanted := range wantedColumns {
		idx := findColumn(cols, wanted)
		if idx < 0 {
			return nil, NewDatabaseError("execute", ErrUnknownColumn, map[string]interface{}{
				"column": wanted,
				"table":  stmt.Table,
			})
		}
		indices[i] = idx
		aliases[i] = cols[idx].IsRowidAlias
	}

	var rows [][]Value
	err = WalkTableBTree(pager, table.RootPage, func(cell *TableLeafCell) error {
		rec, err := DecodeRecord(cell.Payload)
		if err != nil {
			return err
		}
		row := make([]Value, len(indices))
		for i, idx := range indices {
			v, err := rec.ColumnValue(idx, cell.RowID, aliases[i])
			if err != nil {
				return err
			}
			row[i] = v
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, NewDatabaseError("execute", err, map[string]interface{}{"table": stmt.Table})
	}

	return &ResultSet{Rows: rows}, nil
}

func findColumn(cols []ColumnDef, name string) int {
	for i, c := range cols {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}
