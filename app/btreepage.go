package main

import (
	"encoding/binary"
)

// Page type tags, stored in the first byte of a B-tree page header.
const (
	PageTypeInteriorIndex = 0x02
	PageTypeInteriorTable = 0x05
	PageTypeLeafIndex     = 0x0a
	PageTypeLeafTable     = 0x0d
)

// BTreePage is a parsed B-tree page header plus its cell pointer array.
// body is the page's bytes with page 1's 100-byte database header already
// stripped off by the pager, so offsets here are page-relative like every
// other page.
type BTreePage struct {
	Type              byte
	FirstFreeblock    uint16
	CellCount         uint16
	CellContentStart  uint32 // 0 in the header means 65536
	FragmentedBytes   uint8
	RightMostPage     uint32 // interior pages only
	CellPointers      []uint16
	body              []byte
	reservedSpaceSize uint8
}

// headerSize returns 8 for leaf pages, 12 for interior pages.
func (p *BTreePage) headerSize() int {
	if p.Type == PageTypeInteriorIndex || p.Type == PageTypeInteriorTable {
		return 12
	}
	return 8
}

// IsLeaf reports whether this page is a leaf (table or index).
func (p *BTreePage) IsLeaf() bool {
	return p.Type == PageTypeLeafTable || p.Type == PageTypeLeafIndex
}

// IsTable reports whether this page belongs to a table B-tree (as opposed
// to an index B-tree, which this reader does not traverse).
func (p *BTreePage) IsTable() bool {
	return p.Type == PageTypeInteriorTable || p.Type == PageTypeLeafTable
}

// ParseBTreePage parses a page's B-tree header and cell pointer array.
// body must already have any leading 100-byte database header removed.
// reservedSpace is the header's per-page reserved byte count, used to
// compute the usable page size for the overflow-payload calculation.
func ParseBTreePage(body []byte, reservedSpace uint8) (*BTreePage, error) {
	if len(body) < 8 {
		return nil, NewDatabaseError("parse_btree_page", ErrTruncated, map[string]interface{}{
			"have_bytes": len(body),
		})
	}

	pageType := body[0]
	switch pageType {
	case PageTypeInteriorIndex, PageTypeInteriorTable, PageTypeLeafIndex, PageTypeLeafTable:
	default:
		return nil, NewDatabaseError("parse_btree_page", ErrInvalidPageType, map[string]interface{}{
			"byte": pageType,
		})
	}

	p := &BTreePage{
		Type:              pageType,
		body:              body,
		reservedSpaceSize: reservedSpace,
	}

	p.FirstFreeblock = binary.BigEndian.Uint16(body[1:3])
	p.CellCount = binary.BigEndian.Uint16(body[3:5])
	contentStart := binary.BigEndian.Uint16(body[5:7])
	if contentStart == 0 {
		p.CellContentStart = 65536
	} else {
		p.CellContentStart = uint32(contentStart)
	}
	p.FragmentedBytes = body[7]

	hdr := p.headerSize()
	if hdr == 12 {
		if len(body) < 12 {
			return nil, NewDatabaseError("parse_btree_page", ErrTruncated, map[string]interface{}{
				"have_bytes": len(body),
			})
		}
		p.RightMostPage = binary.BigEndian.Uint32(body[8:12])
	}

	ptrEnd := hdr + int(p.CellCount)*2
	if ptrEnd > len(body) {
		return nil, NewDatabaseError("parse_btree_page", ErrTruncated, map[string]interface{}{
			"reason": "cell pointer array runs past page",
		})
	}
	p.CellPointers = make([]uint16, p.CellCount)
	for i := 0; i < int(p.CellCount); i++ {
		off := hdr + i*2
		p.CellPointers[i] = binary.BigEndian.Uint16(body[off : off+2])
	}

	return p, nil
}

// usableSize is the page size minus the reserved tail, the boundary past
// which cell content must never extend (spec §4.4).
func (p *BTreePage) usableSize() int {
	return len(p.body) - int(p.reservedSpaceSize)
}

// maxLocalPayload is the largest table-leaf payload that SQLite stores
// entirely on the page for the given usable page size (the table-btree
// formula from the file format: U-35, where U is the usable size).
func maxLocalPayload(usableSize int) int {
	return usableSize - 35
}

// TableLeafCell is one decoded cell of a table-leaf page.
type TableLeafCell struct {
	RowID   int64
	Payload []byte
}

// ReadTableLeafCell decodes the cell at the given cell-pointer index of a
// table-leaf page. Returns ErrPayloadOverflowUnsupport if the payload
// spills to an overflow page, which this reader does not follow.
func (p *BTreePage) ReadTableLeafCell(index int) (*TableLeafCell, error) {
	if p.Type != PageTypeLeafTable {
		return nil, NewDatabaseError("read_table_leaf_cell", ErrInvalidPageType, map[string]interface{}{
			"type": p.Type,
		})
	}
	if index < 0 || index >= len(p.CellPointers) {
		return nil, NewDatabaseError("read_table_leaf_cell", ErrTruncated, map[string]interface{}{
			"index": index,
			"count": len(p.CellPointers),
		})
	}

	off := int(p.CellPointers[index])
	if off >= len(p.body) {
		return nil, NewDatabaseError("read_table_leaf_cell", ErrTruncated, map[string]interface{}{
			"offset": off,
		})
	}

	payloadLen, n1, ok := decodeVarint(p.body[off:])
	if !ok {
		return nil, NewDatabaseError("read_table_leaf_cell", ErrShortRecord, nil)
	}
	rowID, n2, ok := decodeVarint(p.body[off+n1:])
	if !ok {
		return nil, NewDatabaseError("read_table_leaf_cell", ErrShortRecord, nil)
	}

	payloadStart := off + n1 + n2
	maxLocal := maxLocalPayload(p.usableSize())
	if int(payloadLen) > maxLocal {
		return nil, NewDatabaseError("read_table_leaf_cell", ErrPayloadOverflowUnsupport, map[string]interface{}{
			"payload_length": payloadLen,
			"max_local":      maxLocal,
		})
	}
	if payloadStart+int(payloadLen) > len(p.body) {
		return nil, NewDatabaseError("read_table_leaf_cell", ErrTruncated, map[string]interface{}{
			"reason": "payload runs past page",
		})
	}

	return &TableLeafCell{
		RowID:   int64(rowID),
		Payload: p.body[payloadStart : payloadStart+int(payloadLen)],
	}, nil
}

// TableInteriorCell is one decoded cell of a table-interior page: a pointer
// to a child page plus the integer key that is the largest rowid reachable
// through that child (per the file format's ordering invariant).
type TableInteriorCell struct {
	LeftChildPage uint32
	Key           int64
}

// ReadTableInteriorCell decodes the cell at the given cell-pointer index of
// a table-interior page.
func (p *BTreePage) ReadTableInteriorCell(index int) (*TableInteriorCell, error) {
	if p.Type != PageTypeInteriorTable {
		return nil, NewDatabaseError("read_table_interior_cell", ErrInvalidPageType, map[string]interface{}{
			"type": p.Type,
		})
	}
	if index < 0 || index >= len(p.CellPointers) {
		return nil, NewDatabaseError("read_table_interior_cell", ErrTruncated, map[string]interface{}{
			"index": index,
			"count": len(p.CellPointers),
		})
	}

	off := int(p.CellPointers[index])
	if off+4 > len(p.body) {
		return nil, NewDatabaseError("read_table_interior_cell", ErrTruncated, nil)
	}
	leftChild := binary.BigEndian.Uint32(p.body[off : off+4])
	key, _, ok := decodeVarint(p.body[off+4:])
	if !ok {
		return nil, NewDatabaseError("read_table_interior_cell", ErrShortRecord, nil)
	}

	return &TableInteriorCell{LeftChildPage: leftChild, Key: int64(key)}, nil
}
