package main

import (
	"os"

	"github.com/google/uuid"
)

// Database ties together the parsed header, pager, and schema catalog for
// one open file. It never mutates the underlying file.
type Database struct {
	Header    *Header
	Pager     *Pager
	Schema    *Schema
	resources *ResourceManager
	config    *DatabaseConfig
}

// OpenDatabase opens path read-only, parses its header, and loads its
// schema catalog eagerly so `.tables`/`.dbinfo` and every SELECT share one
// already-validated Schema.
func OpenDatabase(path string, opts ...DatabaseOption) (*Database, error) {
	cfg := DefaultDatabaseConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, NewDatabaseError("open_database", ErrIo, map[string]interface{}{
			"path":  path,
			"cause": err.Error(),
		})
	}

	resources := NewResourceManager()
	resources.Add(f)

	headerBuf := make([]byte, HeaderSize)
	if _, err := f.ReadAt(headerBuf, 0); err != nil {
		resources.Close()
		return nil, NewDatabaseError("open_database", ErrIo, map[string]interface{}{
			"path":  path,
			"cause": err.Error(),
		})
	}

	header, err := ParseHeader(headerBuf)
	if err != nil {
		resources.Close()
		return nil, err
	}

	pager := NewPager(f, header.PageSize, header.ReservedSpace, cfg.PageCacheSize)

	schema, err := LoadSchema(pager)
	if err != nil {
		resources.Close()
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"path":       path,
		"page_size":  header.PageSize,
		"tables":     len(schema.ListUserTables()),
		"session_id": uuid.NewString(),
	}).Debug("opened database")

	return &Database{
		Header:    header,
		Pager:     pager,
		Schema:    schema,
		resources: resources,
		config:    cfg,
	}, nil
}

// Close releases the underlying file handle.
func (d *Database) Close() error {
	return d.resources.Close()
}

// Query parses and executes sql, tagging the attempt with a correlation ID
// for structured log correlation across the parse and execute stages.
func (d *Database) Query(sql string) (*ResultSet, error) {
	queryID := uuid.NewString()
	entry := log.WithFields(map[string]interface{}{"query_id": queryID, "component": "query"})

	if !d.Header.IsUTF8() {
		err := NewDatabaseError("query", ErrUnsupported, map[string]interface{}{
			"reason":        "only UTF-8 text encoding is supported",
			"text_encoding": d.Header.TextEncodingName(),
		})
		entry.WithError(err).Debug("statement rejected")
		return nil, err
	}

	stmt, err := ParseStatement(sql)
	if err != nil {
		entry.WithError(err).Debug("statement rejected")
		return nil, err
	}

	rs, err := Execute(stmt, d.Schema, d.Pager)
	if err != nil {
		entry.WithError(err).Debug("execution failed")
		return nil, err
	}

	entry.WithField("rows", len(rs.Rows)).Debug("query completed")
	return rs, nil
}
