package main

import (
	"strings"

	radix "github.com/armon/go-radix"
)

// SchemaRecordRootPage root page numbers are full 32-bit page numbers; the
// teacher's equivalent field was undersized (uint8), which silently wraps
// for any database whose schema root page exceeds 255. Fixed here.
type SchemaRecord struct {
	Type    string
	Name    string
	TblName string
	RootPage uint32
	SQL     string
}

// Schema is the parsed sqlite_schema catalog: a radix tree keyed by object
// name for O(k) lookups, plus the raw insertion order .tables must preserve
// (the catalog's own row order, which a radix tree does not retain).
type Schema struct {
	byName  *radix.Tree
	ordered []*SchemaRecord
}

// schemaRootPage is always page 1 for the sqlite_schema table itself.
const schemaRootPage = 1

// LoadSchema walks the sqlite_schema table B-tree and decodes every row
// into a SchemaRecord (spec §4.6).
func LoadSchema(pager *Pager) (*Schema, error) {
	s := &Schema{byName: radix.New()}

	err := WalkTableBTree(pager, schemaRootPage, func(cell *TableLeafCell) error {
		rec, err := DecodeRecord(cell.Payload)
		if err != nil {
			return err
		}
		sr, err := schemaRecordFromValues(rec.Values)
		if err != nil {
			return err
		}
		s.byName.Insert(sr.Name, sr)
		s.ordered = append(s.ordered, sr)
		return nil
	})
	if err != nil {
		return nil, NewDatabaseError("load_schema", err, nil)
	}
	return s, nil
}

// sqlite_schema column order: type, name, tbl_name, rootpage, sql.
func schemaRecordFromValues(values []Value) (*SchemaRecord, error) {
	if len(values) < 5 {
		return nil, NewDatabaseError("parse_schema_record", ErrInvalidFormat, map[string]interface{}{
			"reason":      "sqlite_schema row has fewer than 5 columns",
			"got_columns": len(values),
		})
	}
	sr := &SchemaRecord{
		Type:    valueAsString(values[0]),
		Name:    valueAsString(values[1]),
		TblName: valueAsString(values[2]),
		SQL:     valueAsString(values[4]),
	}
	if values[3].Kind == KindInteger {
		sr.RootPage = uint32(values[3].Int)
	}
	return sr, nil
}

func valueAsString(v Value) string {
	if v.Kind == KindText {
		return v.Text
	}
	return ""
}

// ListUserTables returns every "table" object in insertion order, excluding
// every table whose name begins with the reserved "sqlite_" prefix (such as
// sqlite_sequence), so only user-created tables are listed.
func (s *Schema) ListUserTables() []*SchemaRecord {
	var out []*SchemaRecord
	for _, sr := range s.ordered {
		if sr.Type != "table" {
			continue
		}
		if strings.HasPrefix(sr.Name, "sqlite_") {
			continue
		}
		out = append(out, sr)
	}
	return out
}

// Resolve looks up a table (or other schema object) by exact name.
func (s *Schema) Resolve(name string) (*SchemaRecord, error) {
	if v, ok := s.byName.Get(name); ok {
		return v.(*SchemaRecord), nil
	}
	return nil, NewDatabaseError("resolve_table", ErrTableNotFound, map[string]interface{}{
		"name": name,
	})
}

// ColumnDef is one column of a CREATE TABLE statement, as extracted by the
// heuristic splitter below.
type ColumnDef struct {
	Name         string
	Type         string
	IsRowidAlias bool // INTEGER PRIMARY KEY
}

// ColumnsOf extracts the column list of a table's CREATE TABLE statement
// using a heuristic paren/comma splitter over the raw SQL text rather than
// a full SQL grammar: find the outermost parenthesized group, then split
// on top-level commas (commas nested inside a column's own parentheses,
// e.g. DECIMAL(10,2), must not split the list). Table-level constraints
// (PRIMARY KEY(...), UNIQUE(...), FOREIGN KEY(...), CHECK(...)) are
// recognized by leading keyword and skipped rather than treated as
// columns (spec §4.6).
func ColumnsOf(sr *SchemaRecord) ([]ColumnDef, error) {
	open := strings.IndexByte(sr.SQL, '(')
	if open < 0 {
		return nil, NewDatabaseError("columns_of", ErrInvalidFormat, map[string]interface{}{
			"reason": "CREATE TABLE statement has no column list",
			"table":  sr.Name,
		})
	}

	depth := 0
	close := -1
	for i := open; i < len(sr.SQL); i++ {
		switch sr.SQL[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				close = i
			}
		}
		if close != -1 {
			break
		}
	}
	if close < 0 {
		return nil, NewDatabaseError("columns_of", ErrInvalidFormat, map[string]interface{}{
			"reason": "unbalanced parentheses in CREATE TABLE statement",
			"table":  sr.Name,
		})
	}

	body := sr.SQL[open+1 : close]
	parts := splitTopLevelCommas(body)

	var cols []ColumnDef
	for _, part := range parts {
		field := strings.TrimSpace(part)
		if field == "" {
			continue
		}
		if isTableConstraint(field) {
			continue
		}
		cols = append(cols, parseColumnDef(field))
	}
	return cols, nil
}

// splitTopLevelCommas splits s on commas that are not nested inside any
// parentheses.
func splitTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

var tableConstraintKeywords = []string{
	"primary key", "unique", "foreign key", "check", "constraint",
}

func isTableConstraint(field string) bool {
	lower := strings.ToLower(strings.TrimSpace(field))
	for _, kw := range tableConstraintKeywords {
		if strings.HasPrefix(lower, kw) {
			return true
		}
	}
	return false
}

// parseColumnDef splits a single column definition into name and type,
// detecting the INTEGER PRIMARY KEY rowid-alias special case.
func parseColumnDef(field string) ColumnDef {
	field = strings.TrimSpace(field)
	if strings.HasPrefix(field, `"`) || strings.HasPrefix(field, "`") || strings.HasPrefix(field, "[") {
		field = stripQuotedIdentifier(field)
	}
	fields := strings.Fields(field)
	if len(fields) == 0 {
		return ColumnDef{}
	}

	name := strings.Trim(fields[0], `"`+"`"+"[]")
	rest := strings.ToLower(strings.Join(fields[1:], " "))
	cd := ColumnDef{Name: name}
	if len(fields) > 1 {
		cd.Type = fields[1]
	}
	if strings.Contains(rest, "integer") && strings.Contains(rest, "primary key") {
		cd.IsRowidAlias = true
	}
	return cd
}

// stripQuotedIdentifier handles a quoted first identifier (e.g. "order" or
// `order` or [order]) so the rest of the splitter can work on plain fields.
func stripQuotedIdentifier(field string) string {
	if len(field) == 0 {
		return field
	}
	open := field[0]
	closeCh := open
	if open == '[' {
		closeCh = ']'
	}
	for i := 1; i < len(field); i++ {
		if field[i] == closeCh {
			return field[1:i] + field[i+1:]
		}
	}
	return field
}
