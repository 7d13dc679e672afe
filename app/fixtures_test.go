package main

import (
	"bytes"
	"encoding/binary"
	"math"
)

// memFile adapts a byte slice to the FileReader interface the pager and
// database layer expect, so tests never touch the filesystem.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func newMemFile(buf []byte) *memFile {
	return &memFile{Reader: bytes.NewReader(buf)}
}

// buildRecordPayload encodes a list of values in the record format (varint
// header length, serial type varints, then value bytes) used by both
// schema rows and ordinary table rows.
func buildRecordPayload(values []Value) []byte {
	var serials []byte
	var body []byte

	for _, v := range values {
		switch v.Kind {
		case KindNull:
			serials = append(serials, encodeVarint(0)...)
		case KindInteger:
			st, enc := encodeInteger(v.Int)
			serials = append(serials, encodeVarint(st)...)
			body = append(body, enc...)
		case KindFloat:
			b := make([]byte, 8)
			binary.BigEndian.PutUint64(b, math.Float64bits(v.Flt))
			serials = append(serials, encodeVarint(7)...)
			body = append(body, b...)
		case KindText:
			b := []byte(v.Text)
			st := uint64(13 + 2*len(b))
			serials = append(serials, encodeVarint(st)...)
			body = append(body, b...)
		case KindBlob:
			st := uint64(12 + 2*len(v.Blob))
			serials = append(serials, encodeVarint(st)...)
			body = append(body, v.Blob...)
		}
	}

	// header length varint must include its own encoded size; try growing
	// sizes until the varint encoding of (size-so-far) stabilizes.
	headerLen := len(serials) + 1
	for {
		hl := encodeVarint(uint64(headerLen))
		if len(hl)+len(serials) == headerLen {
			payload := append([]byte{}, hl...)
			payload = append(payload, serials...)
			payload = append(payload, body...)
			return payload
		}
		headerLen = len(hl) + len(serials)
	}
}

// encodeInteger picks the smallest of the signed-int serial types 1, 2, 3,
// 4 and 6 that can hold v, and returns its big-endian encoding. The 6-byte
// serial type 5 is never chosen.
func encodeInteger(v int64) (serialType uint64, encoded []byte) {
	switch {
	case v >= -128 && v <= 127:
		return 1, []byte{byte(v)}
	case v >= -32768 && v <= 32767:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(v))
		return 2, b
	case v >= -8388608 && v <= 8388607:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(v))
		return 3, b[1:]
	case v >= -2147483648 && v <= 2147483647:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(v))
		return 4, b
	default:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(v))
		return 6, b
	}
}

// tableLeafCellSpec is one cell to lay out on a hand-built leaf page.
type tableLeafCellSpec struct {
	RowID   int64
	Payload []byte
}

// buildTableLeafPage lays out a single table-leaf page of the given size:
// an 8-byte header, a cell pointer array, and cells packed from the end of
// the page backward, exactly like SQLite itself does.
func buildTableLeafPage(pageSize int, cells []tableLeafCellSpec) []byte {
	page := make([]byte, pageSize)
	page[0] = PageTypeLeafTable
	binary.BigEndian.PutUint16(page[3:5], uint16(len(cells)))

	cursor := pageSize
	pointers := make([]uint16, len(cells))
	for i, c := range cells {
		cellBytes := append(encodeVarint(uint64(len(c.Payload))), encodeVarint(uint64(c.RowID))...)
		cellBytes = append(cellBytes, c.Payload...)
		cursor -= len(cellBytes)
		copy(page[cursor:], cellBytes)
		pointers[i] = uint16(cursor)
	}
	if cursor == pageSize {
		binary.BigEndian.PutUint16(page[5:7], 0) // empty page -> 65536 by convention, unused in tests with 0 cells
	} else {
		binary.BigEndian.PutUint16(page[5:7], uint16(cursor))
	}

	for i, ptr := range pointers {
		off := 8 + i*2
		binary.BigEndian.PutUint16(page[off:off+2], ptr)
	}

	return page
}

// buildHeader lays out the 100-byte database header.
func buildHeader(pageSize uint16, pageCount uint32, reservedSpace byte) []byte {
	h := make([]byte, HeaderSize)
	copy(h[0:16], magicString)
	binary.BigEndian.PutUint16(h[16:18], pageSize)
	h[18] = 1 // write format: legacy
	h[19] = 1 // read format: legacy
	h[20] = reservedSpace
	h[21] = 64
	h[22] = 32
	h[23] = 32
	binary.BigEndian.PutUint32(h[28:32], pageCount)
	binary.BigEndian.PutUint32(h[44:48], 4) // schema format 4
	binary.BigEndian.PutUint32(h[56:60], 1) // UTF-8
	return h
}

// buildSingleTableDatabase constructs a complete in-memory database file
// with one user table (schema root page 2) whose rows are laid out on a
// single leaf page.
func buildSingleTableDatabase(pageSize int, tableName, createSQL string, rows []tableLeafCellSpec) []byte {
	schemaRow := tableLeafCellSpec{
		RowID: 1,
		Payload: buildRecordPayload([]Value{
			TextValue("table"),
			TextValue(tableName),
			TextValue(tableName),
			IntValue(2),
			TextValue(createSQL),
		}),
	}
	page1Body := buildTableLeafPage(pageSize-HeaderSize, []tableLeafCellSpec{schemaRow})
	page2 := buildTableLeafPage(pageSize, rows)

	buf := make([]byte, pageSize*2)
	copy(buf[0:HeaderSize], buildHeader(uint16(pageSize), 2, 0))
	copy(buf[HeaderSize:pageSize], page1Body)
	copy(buf[pageSize:2*pageSize], page2)
	return buf
}
