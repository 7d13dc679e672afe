package main

import (
	"strconv"
	"strings"
)

// FormatRows renders a result set the way the CLI prints it: one line per
// row, columns separated by "|", with the literal text NULL for null values
// (spec §6).
func FormatRows(rs *ResultSet) []string {
	lines := make([]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		fields := make([]string, len(row))
		for i, v := range row {
			fields[i] = FormatValue(v)
		}
		lines = append(lines, strings.Join(fields, "|"))
	}
	return lines
}

// FormatValue renders a single column value for display.
func FormatValue(v Value) string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	case KindText:
		return v.Text
	case KindBlob:
		return string(v.Blob)
	default:
		return ""
	}
}
