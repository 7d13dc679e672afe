package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// FileReader is the minimal I/O surface the pager needs. A plain *os.File
// satisfies it; tests satisfy it with bytes.NewReader over an in-memory
// fixture.
type FileReader interface {
	io.ReaderAt
	io.Closer
}

// Pager serves fixed-size pages from the underlying file, caching the most
// recently used ones. Page numbers are 1-based, matching the file format;
// page 1 is special in that its first 100 bytes are the database header.
type Pager struct {
	reader        FileReader
	pageSize      uint32
	reservedSpace uint8
	cache         map[uint32][]byte
	lru           []uint32
	capacity      int
	log           *logrus.Entry
}

// NewPager creates a pager bound to reader, caching up to cacheSize pages.
func NewPager(reader FileReader, pageSize uint32, reservedSpace uint8, cacheSize int) *Pager {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	return &Pager{
		reader:        reader,
		pageSize:      pageSize,
		reservedSpace: reservedSpace,
		cache:         make(map[uint32][]byte, cacheSize),
		lru:           make([]uint32, 0, cacheSize),
		capacity:      cacheSize,
		log:           log.WithField("component", "pager"),
	}
}

// ReadPage returns the raw bytes of the given 1-based page number, reading
// through the cache. The slice is owned by the pager; callers must not
// retain it past subsequent ReadPage calls that could evict it.
func (p *Pager) ReadPage(page uint32) ([]byte, error) {
	if page == 0 {
		return nil, NewDatabaseError("read_page", ErrPageOutOfRange, map[string]interface{}{
			"page": page,
		})
	}
	if buf, ok := p.cache[page]; ok {
		p.touch(page)
		return buf, nil
	}

	buf := make([]byte, p.pageSize)
	offset := int64(page-1) * int64(p.pageSize)
	n, err := p.reader.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, NewDatabaseError("read_page", ErrIo, map[string]interface{}{
			"page":   page,
			"offset": offset,
			"cause":  err.Error(),
		})
	}
	if n == 0 && err == io.EOF {
		return nil, NewDatabaseError("read_page", ErrPageOutOfRange, map[string]interface{}{
			"page":   page,
			"offset": offset,
		})
	}
	if n < len(buf) {
		return nil, NewDatabaseError("read_page", ErrTruncated, map[string]interface{}{
			"page":       page,
			"have_bytes": n,
			"need_bytes": len(buf),
		})
	}

	p.insert(page, buf)
	p.log.WithField("page", page).Debug("loaded page")
	return buf, nil
}

// PageBodyBytes strips page 1's leading 100-byte database header off buf,
// so btree page parsing can treat every page uniformly regardless of
// whether it happens to be page 1.
func (p *Pager) PageBodyBytes(page uint32, buf []byte) []byte {
	if page == 1 {
		return buf[HeaderSize:]
	}
	return buf
}

func (p *Pager) touch(page uint32) {
	for i, pg := range p.lru {
		if pg == page {
			p.lru = append(p.lru[:i], p.lru[i+1:]...)
			break
		}
	}
	p.lru = append(p.lru, page)
}

func (p *Pager) insert(page uint32, buf []byte) {
	if len(p.cache) >= p.capacity && p.capacity > 0 {
		evict := p.lru[0]
		p.lru = p.lru[1:]
		delete(p.cache, evict)
	}
	p.cache[page] = buf
	p.lru = append(p.lru, page)
}

// Close releases the underlying file handle.
func (p *Pager) Close() error {
	return p.reader.Close()
}

func (p *Pager) String() string {
	return fmt.Sprintf("Pager{pageSize=%d, cached=%d/%d}", p.pageSize, len(p.cache), p.capacity)
}
