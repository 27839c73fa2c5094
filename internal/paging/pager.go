package paging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"

	"github.com/minisql/minisql/pkg"
)

const (
	DefaultPageSize = 4096
	HeaderSize      = 16
)

// File layout: 4 magic bytes, uint32 LE page size, uint64 LE payload
// length, then the page-aligned payload.
var Magic = []byte("MDB1")

var ErrPageOutOfRange = errors.New("page index out of range")

// Pager mirrors a list of fixed-size pages to one file. It knows
// nothing about rows or SQL; callers hand it opaque byte payloads.
type Pager struct {
	page_size int
	path      string
	pages     [][]byte
	length    uint64
}

// NewPager opens or creates the file at path. A valid header overrides
// the requested page size; a short or mismatched header is treated as
// no prior data.
func NewPager(path string, page_size int) (*Pager, error) {
	if page_size <= 0 {
		page_size = DefaultPageSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	p := &Pager{page_size: page_size, path: path}
	if err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pager) PageSize() int { return p.page_size }

// AllocatePage appends a zeroed page and returns its index.
func (p *Pager) AllocatePage() int {
	p.pages = append(p.pages, make([]byte, p.page_size))
	return len(p.pages) - 1
}

func (p *Pager) ReadPage(index int) ([]byte, error) {
	if index < 0 || index >= len(p.pages) {
		return nil, ErrPageOutOfRange
	}
	buf := make([]byte, p.page_size)
	copy(buf, p.pages[index])
	return buf, nil
}

// WritePage stores data at a page index, growing the page list as
// needed and truncating data to the page size.
func (p *Pager) WritePage(index int, data []byte) error {
	if index < 0 {
		return ErrPageOutOfRange
	}
	for index >= len(p.pages) {
		p.pages = append(p.pages, make([]byte, p.page_size))
	}
	buf := make([]byte, p.page_size)
	copy(buf, data)
	p.pages[index] = buf
	return p.flush()
}

// WriteBlob replaces the entire page set with the payload, zero-padding
// the final page, and flushes synchronously. An empty payload truncates
// the file.
func (p *Pager) WriteBlob(data []byte) error {
	p.length = uint64(len(data))
	if len(data) == 0 {
		p.pages = nil
		return p.flush()
	}
	needed := (len(data) + p.page_size - 1) / p.page_size
	padded := make([]byte, needed*p.page_size)
	copy(padded, data)
	p.pages = make([][]byte, needed)
	for i := 0; i < needed; i++ {
		p.pages[i] = padded[i*p.page_size : (i+1)*p.page_size]
	}
	return p.flush()
}

// ReadBlob concatenates all pages and truncates to the recorded
// payload length. A header that overstates the length (truncated or
// corrupt file) clamps to the bytes actually present.
func (p *Pager) ReadBlob() []byte {
	if len(p.pages) == 0 || p.length == 0 {
		return []byte{}
	}
	buf := bytes.Join(p.pages, nil)
	if p.length > uint64(len(buf)) {
		return buf
	}
	return buf[:p.length]
}

type Stats struct {
	Pages    int `json:"pages"`
	PageSize int `json:"page_size"`
}

func (p *Pager) Stats() Stats {
	return Stats{Pages: len(p.pages), PageSize: p.page_size}
}

func (p *Pager) load() error {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(raw) < HeaderSize || !bytes.HasPrefix(raw, Magic) {
		if len(raw) > 0 {
			pkg.WarnLog("ignoring page file with bad header", p.path)
		}
		return nil
	}
	if size := binary.LittleEndian.Uint32(raw[4:8]); size > 0 {
		p.page_size = int(size)
	}
	p.length = binary.LittleEndian.Uint64(raw[8:16])
	payload := raw[HeaderSize:]
	p.pages = nil
	for offset := 0; offset < len(payload); offset += p.page_size {
		end := offset + p.page_size
		if end > len(payload) {
			end = len(payload)
		}
		page := make([]byte, p.page_size)
		copy(page, payload[offset:end])
		p.pages = append(p.pages, page)
	}
	return nil
}

func (p *Pager) flush() error {
	if len(p.pages) == 0 {
		return os.WriteFile(p.path, []byte{}, 0644)
	}
	buf := make([]byte, 0, HeaderSize+len(p.pages)*p.page_size)
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(p.page_size))
	buf = binary.LittleEndian.AppendUint64(buf, p.length)
	for _, page := range p.pages {
		buf = append(buf, page...)
	}
	return os.WriteFile(p.path, buf, 0644)
}
