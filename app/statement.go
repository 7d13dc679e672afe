package main

import (
	"strings"

	"github.com/xwb1989/sqlparser"
)

// Statement is the narrow SELECT AST this reader executes: a column list
// (or the single COUNT(*) aggregate form) against exactly one table, with
// no WHERE/GROUP BY/ORDER BY/LIMIT/JOIN (spec §4.7's grammar, and spec's
// Non-goals on query features).
type Statement struct {
	Table       string
	Columns     []string
	IsCountStar bool
	IsStar      bool
}

// ParseStatement parses raw SQL text and narrows it to the supported
// grammar. A parse failure is ErrSyntaxError; a construct the grammar
// recognizes but deliberately does not implement (WHERE, JOIN, ORDER BY,
// GROUP BY, LIMIT, multiple tables, non-SELECT statements) is
// ErrUnsupported.
func ParseStatement(sql string) (*Statement, error) {
	parsed, err := sqlparser.Parse(normalizeSQLiteToMySQL(sql))
	if err != nil {
		return nil, NewDatabaseError("parse_statement", ErrSyntaxError, map[string]interface{}{
			"sql":   sql,
			"cause": err.Error(),
		})
	}

	sel, ok := parsed.(*sqlparser.Select)
	if !ok {
		return nil, NewDatabaseError("parse_statement", ErrUnsupported, map[string]interface{}{
			"reason": "only SELECT statements are supported",
		})
	}

	if sel.Where != nil {
		return nil, NewDatabaseError("parse_statement", ErrUnsupported, map[string]interface{}{"reason": "WHERE is not supported"})
	}
	if len(sel.OrderBy) != 0 {
		return nil, NewDatabaseError("parse_statement", ErrUnsupported, map[string]interface{}{"reason": "ORDER BY is not supported"})
	}
	if sel.GroupBy != nil {
		return nil, NewDatabaseError("parse_statement", ErrUnsupported, map[string]interface{}{"reason": "GROUP BY is not supported"})
	}
	if sel.Limit != nil {
		return nil, NewDatabaseError("parse_statement", ErrUnsupported, map[string]interface{}{"reason": "LIMIT is not supported"})
	}
	if len(sel.From) != 1 {
		return nil, NewDatabaseError("parse_statement", ErrUnsupported, map[string]interface{}{"reason": "exactly one table is required"})
	}

	aliased, ok := sel.From[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return nil, NewDatabaseError("parse_statement", ErrUnsupported, map[string]interface{}{"reason": "JOIN is not supported"})
	}
	tableName, ok := aliased.Expr.(sqlparser.TableName)
	if !ok {
		return nil, NewDatabaseError("parse_statement", ErrUnsupported, map[string]interface{}{"reason": "subqueries are not supported"})
	}

	stmt := &Statement{Table: tableName.Name.String()}

	if isCountStar(sel.SelectExprs) {
		stmt.IsCountStar = true
		return stmt, nil
	}

	if isStarOnly(sel.SelectExprs) {
		stmt.IsStar = true
		return stmt, nil
	}

	for _, expr := range sel.SelectExprs {
		switch e := expr.(type) {
		case *sqlparser.StarExpr:
			return nil, NewDatabaseError("parse_statement", ErrUnsupported, map[string]interface{}{"reason": "* cannot be mixed with other select expressions"})
		case *sqlparser.AliasedExpr:
			colName, ok := e.Expr.(*sqlparser.ColName)
			if !ok {
				return nil, NewDatabaseError("parse_statement", ErrUnsupported, map[string]interface{}{"reason": "only plain column references and COUNT(*) are supported"})
			}
			stmt.Columns = append(stmt.Columns, colName.Name.String())
		default:
			return nil, NewDatabaseError("parse_statement", ErrUnsupported, map[string]interface{}{"reason": "unsupported select expression"})
		}
	}

	if len(stmt.Columns) == 0 {
		return nil, NewDatabaseError("parse_statement", ErrSyntaxError, map[string]interface{}{"reason": "empty select list"})
	}

	return stmt, nil
}

func isCountStar(exprs sqlparser.SelectExprs) bool {
	if len(exprs) != 1 {
		return false
	}
	aliased, ok := exprs[0].(*sqlparser.AliasedExpr)
	if !ok {
		return false
	}
	fn, ok := aliased.Expr.(*sqlparser.FuncExpr)
	if !ok {
		return false
	}
	if !strings.EqualFold(fn.Name.String(), "count") {
		return false
	}
	if len(fn.Exprs) != 1 {
		return false
	}
	_, star := fn.Exprs[0].(*sqlparser.StarExpr)
	return star
}

// isStarOnly reports whether the select list is the bare `*` projection
// (spec §4.7's Item grammar), as opposed to COUNT(*) or a column list.
func isStarOnly(exprs sqlparser.SelectExprs) bool {
	if len(exprs) != 1 {
		return false
	}
	_, star := exprs[0].(*sqlparser.StarExpr)
	return star
}

// normalizeSQLiteToMySQL adjusts cosmetic SQLite syntax sqlparser's
// MySQL-oriented grammar does not accept, without changing statement
// semantics: double-quoted identifiers become backtick-quoted.
func normalizeSQLiteToMySQL(sql string) string {
	var b strings.Builder
	inSingle := false
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'' && !inSingle:
			inSingle = true
			b.WriteByte(c)
		case c == '\'' && inSingle:
			inSingle = false
			b.WriteByte(c)
		case c == '"' && !inSingle:
			b.WriteByte('`')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
