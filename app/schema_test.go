package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T, createSQL string, rows []tableLeafCellSpec) *Database {
	t.Helper()
	buf := buildSingleTableDatabase(512, "people", createSQL, rows)
	pager := NewPager(newMemFile(buf), 512, 0, 10)
	schema, err := LoadSchema(pager)
	require.NoError(t, err)
	header, err := ParseHeader(buf[:HeaderSize])
	require.NoError(t, err)
	return &Database{Header: header, Pager: pager, Schema: schema}
}

func TestLoadSchemaListsUserTables(t *testing.T) {
	db := newTestDatabase(t, "CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT, age INTEGER)", nil)
	tables := db.Schema.ListUserTables()
	require.Len(t, tables, 1)
	assert.Equal(t, "people", tables[0].Name)
	assert.EqualValues(t, 2, tables[0].RootPage)
}

func TestResolveUnknownTable(t *testing.T) {
	db := newTestDatabase(t, "CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT)", nil)
	_, err := db.Schema.Resolve("ghosts")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
}

func TestColumnsOfSimple(t *testing.T) {
	db := newTestDatabase(t, "CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT, age INTEGER)", nil)
	sr, err := db.Schema.Resolve("people")
	require.NoError(t, err)

	cols, err := ColumnsOf(sr)
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, "id", cols[0].Name)
	assert.True(t, cols[0].IsRowidAlias)
	assert.Equal(t, "name", cols[1].Name)
	assert.False(t, cols[1].IsRowidAlias)
	assert.Equal(t, "age", cols[2].Name)
}

func TestColumnsOfSkipsTableConstraintsAndNestedCommas(t *testing.T) {
	sr := &SchemaRecord{
		Name: "orders",
		SQL:  `CREATE TABLE orders (id INTEGER, total DECIMAL(10,2), name TEXT, PRIMARY KEY(id))`,
	}
	cols, err := ColumnsOf(sr)
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, "total", cols[1].Name)
	assert.Equal(t, "name", cols[2].Name)
}

func TestColumnsOfQuotedIdentifier(t *testing.T) {
	sr := &SchemaRecord{
		Name: "weird",
		SQL:  `CREATE TABLE weird ("order" TEXT, count INTEGER)`,
	}
	cols, err := ColumnsOf(sr)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "order", cols[0].Name)
	assert.Equal(t, "count", cols[1].Name)
}
