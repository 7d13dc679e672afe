package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed size of the SQLite database file header.
const HeaderSize = 100

var magicString = []byte("SQLite format 3\x00")

// Header is the parsed, immutable 100-byte database header (spec §3, §4.2).
type Header struct {
	PageSize          uint32 // normalized: stored value 1 means 65536
	FileFormatWrite   uint8
	FileFormatRead    uint8
	ReservedSpace     uint8
	MaxPayloadFrac    uint8
	MinPayloadFrac    uint8
	LeafPayloadFrac   uint8
	FileChangeCounter uint32
	DatabaseSizePages uint32
	FirstFreelistPage uint32
	FreelistPageCount uint32
	SchemaCookie      uint32
	SchemaFormat      uint32
	DefaultCacheSize  uint32
	LargestRootPage   uint32
	TextEncoding      uint32
	UserVersion       uint32
	IncrementalVacuum uint32
	ApplicationID     uint32
	VersionValidFor   uint32
	SQLiteVersion     uint32
}

// ParseHeader parses the first 100 bytes of a SQLite database file.
// Fails with ErrInvalidFormat if the magic string does not match or the
// page size is not a legal value (spec §4.2).
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, NewDatabaseError("parse_header", ErrTruncated, map[string]interface{}{
			"have_bytes": len(buf),
			"need_bytes": HeaderSize,
		})
	}

	if !bytes.Equal(buf[0:16], magicString) {
		return nil, NewDatabaseError("parse_header", ErrInvalidFormat, map[string]interface{}{
			"reason": "magic string mismatch",
		})
	}

	rawPageSize := binary.BigEndian.Uint16(buf[16:18])
	pageSize, err := normalizePageSize(rawPageSize)
	if err != nil {
		return nil, err
	}

	h := &Header{
		PageSize:          pageSize,
		FileFormatWrite:   buf[18],
		FileFormatRead:    buf[19],
		ReservedSpace:     buf[20],
		MaxPayloadFrac:    buf[21],
		MinPayloadFrac:    buf[22],
		LeafPayloadFrac:   buf[23],
		FileChangeCounter: binary.BigEndian.Uint32(buf[24:28]),
		DatabaseSizePages: binary.BigEndian.Uint32(buf[28:32]),
		FirstFreelistPage: binary.BigEndian.Uint32(buf[32:36]),
		FreelistPageCount: binary.BigEndian.Uint32(buf[36:40]),
		SchemaCookie:      binary.BigEndian.Uint32(buf[40:44]),
		SchemaFormat:      binary.BigEndian.Uint32(buf[44:48]),
		DefaultCacheSize:  binary.BigEndian.Uint32(buf[48:52]),
		LargestRootPage:   binary.BigEndian.Uint32(buf[52:56]),
		TextEncoding:      binary.BigEndian.Uint32(buf[56:60]),
		UserVersion:       binary.BigEndian.Uint32(buf[60:64]),
		IncrementalVacuum: binary.BigEndian.Uint32(buf[64:68]),
		ApplicationID:     binary.BigEndian.Uint32(buf[68:72]),
		VersionValidFor:   binary.BigEndian.Uint32(buf[92:96]),
		SQLiteVersion:     binary.BigEndian.Uint32(buf[96:100]),
	}

	return h, nil
}

// normalizePageSize maps the raw 16-bit header field to an actual page
// size in bytes: 1 means 65536; otherwise it must be a power of two in
// [512, 32768].
func normalizePageSize(raw uint16) (uint32, error) {
	if raw == 1 {
		return 65536, nil
	}
	if raw < 512 || raw > 32768 || raw&(raw-1) != 0 {
		return 0, NewDatabaseError("parse_header", ErrInvalidFormat, map[string]interface{}{
			"reason":        "page size not a power of two in [512, 32768] (or 1 for 65536)",
			"raw_page_size": raw,
		})
	}
	return uint32(raw), nil
}

// IsUTF8 reports whether the database declares UTF-8 text encoding (1).
func (h *Header) IsUTF8() bool { return h.TextEncoding == 1 }

// TextEncodingName renders the declared text encoding for diagnostics.
func (h *Header) TextEncodingName() string {
	switch h.TextEncoding {
	case 1:
		return "UTF-8"
	case 2:
		return "UTF-16le"
	case 3:
		return "UTF-16be"
	default:
		return fmt.Sprintf("unknown(%d)", h.TextEncoding)
	}
}
