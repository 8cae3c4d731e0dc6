package sstable

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"sort"
	"sync"

	"github.com/davidvella/concat"
	"github.com/davidvella/concat/record"
	"github.com/davidvella/concat/recordio"
)

// TableReader represents the reading component of an SSTable.
//
// A TableReader is a random-access, sized concat.Range over the records of
// the table. Its cursors are record positions; the record under a cursor is
// decoded from the file when it is first read. Decoding errors cannot be
// returned from a cursor, so the first one is kept and reported by Err, and
// the record that failed reads as the end of the table.
type TableReader struct {
	mu      sync.Mutex
	closer  io.Closer
	buf     *bufferedSeeker
	br      recordio.BinaryReader
	opts    Options
	closed  bool
	index   []indexEntry
	dataEnd int64
	err     error
}

// OpenReader initializes a new TableReader using the provided ReadSeeker.
func OpenReader(rs io.ReadSeeker, opts *Options) (*TableReader, error) {
	if rs == nil {
		return nil, errors.New("sstable: ReadSeeker cannot be nil")
	}

	o := opts.withDefaults()
	buf := newBufferedSeeker(rs, o.BufferSize)
	reader := &TableReader{
		opts: o,
		buf:  buf,
		br:   recordio.NewBinaryReader(buf),
	}

	size, err := buf.Seek(0, io.SeekEnd)
	if err != nil || size <= footerSize {
		return nil, errors.New("sstable: file is empty or corrupted")
	}
	if err := reader.loadTable(); err != nil {
		return nil, fmt.Errorf("sstable: failed to load table: %w", err)
	}

	return reader, nil
}

// OpenReaderFile opens an existing SSTable reader at the given path. Close
// closes the file.
func OpenReaderFile(path string, opts *Options) (*TableReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sstable: failed to open file for reading: %w", err)
	}

	reader, err := OpenReader(file, opts)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("sstable: failed to initialize reader: %w", err)
	}
	reader.closer = file

	return reader, nil
}

// Close closes the reader component.
func (r *TableReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true

	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func (r *TableReader) loadTable() error {
	if err := r.checkHeader(); err != nil {
		return err
	}

	indexOffset, err := r.extractIndexOffset()
	if err != nil {
		return err
	}

	return r.readIndex(indexOffset)
}

func (r *TableReader) readIndex(indexOffset int64) error {
	r.dataEnd = indexOffset
	if _, err := r.buf.Seek(indexOffset, io.SeekStart); err != nil {
		return err
	}

	count, err := r.br.ReadInt64()
	if err != nil {
		return fmt.Errorf("sstable: invalid index count: %w", err)
	}
	if count < 0 || count > indexOffset {
		return ErrCorruptedTable
	}

	r.index = make([]indexEntry, 0, count)
	for i := int64(0); i < count; i++ {
		partitionKey, err := r.br.ReadString()
		if err != nil {
			return fmt.Errorf("sstable: invalid index partition key: %w", err)
		}

		id, err := r.br.ReadString()
		if err != nil {
			return fmt.Errorf("sstable: invalid index key: %w", err)
		}

		offset, err := r.br.ReadInt64()
		if err != nil {
			return fmt.Errorf("sstable: invalid index offset: %w", err)
		}
		if offset < footerSize || offset >= indexOffset {
			return ErrCorruptedTable
		}

		r.index = append(r.index, indexEntry{
			partitionKey: partitionKey,
			id:           id,
			offset:       offset,
		})
	}
	return nil
}

func (r *TableReader) checkHeader() error {
	if _, err := r.buf.Seek(0, io.SeekStart); err != nil {
		return err
	}

	header, err := r.br.ReadInt64()
	if err != nil {
		return fmt.Errorf("sstable: invalid header: %w", err)
	}
	if header != magicHeader {
		return ErrCorruptedTable
	}

	version, err := r.br.ReadInt64()
	if err != nil {
		return fmt.Errorf("sstable: invalid version: %w", err)
	}
	if version != formatVersion {
		return fmt.Errorf("sstable: unsupported version %d", version)
	}

	return nil
}

// extractIndexOffset reads the index offset from the footer.
func (r *TableReader) extractIndexOffset() (int64, error) {
	if _, err := r.buf.Seek(-footerSize, io.SeekEnd); err != nil {
		return 0, err
	}

	indexOffset, err := r.br.ReadInt64()
	if err != nil {
		return 0, err
	}

	footer, err := r.br.ReadInt64()
	if err != nil {
		return 0, err
	}
	if footer != magicFooter {
		return 0, ErrCorruptedTable
	}

	return indexOffset, nil
}

// Get retrieves the newest version of the record with the given key.
func (r *TableReader) Get(partitionKey, id string) (record.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrTableClosed
	}

	// first entry past the key; the one before it is the newest match
	i := sort.Search(len(r.index), func(i int) bool {
		return compareKey(r.index[i], partitionKey, id) > 0
	})
	if i == 0 || compareKey(r.index[i-1], partitionKey, id) != 0 {
		return nil, ErrKeyNotFound
	}

	return r.readAt(r.index[i-1].offset)
}

// Search returns the position of the first record whose key is not less
// than the given key. Use it with a cursor's Advance to start a traversal
// part way through the table.
func (r *TableReader) Search(partitionKey, id string) int {
	return sort.Search(len(r.index), func(i int) bool {
		return compareKey(r.index[i], partitionKey, id) >= 0
	})
}

// readAt decodes the record at offset. The caller holds r.mu.
func (r *TableReader) readAt(offset int64) (record.Record, error) {
	if _, err := r.buf.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("sstable: seek error: %w", err)
	}

	rec, err := recordio.ReadRecord(r.buf)
	if err != nil {
		return nil, fmt.Errorf("sstable: record parse error: %w", err)
	}

	return rec, nil
}

// recordAt returns the record at position i, recording any failure in r.err.
// Positions outside the table have no record.
func (r *TableReader) recordAt(i int) record.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.setErr(ErrTableClosed)
		return nil
	}
	if i < 0 || i >= len(r.index) {
		return nil
	}

	rec, err := r.readAt(r.index[i].offset)
	if err != nil {
		r.setErr(err)
		return nil
	}
	return rec
}

func (r *TableReader) setErr(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Err returns the first error hit while decoding records through cursors.
func (r *TableReader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// All returns an iterator over all records in the table.
func (r *TableReader) All() iter.Seq[record.Record] {
	return concat.All[record.Record](r)
}

func (r *TableReader) Category() concat.Category { return concat.RandomAccess }

func (r *TableReader) Len() int { return len(r.index) }

func (r *TableReader) Begin() concat.Cursor[record.Record] {
	return &Cursor{r: r, cached: -1}
}

func (r *TableReader) End() concat.Cursor[record.Record] {
	return &Cursor{r: r, i: len(r.index), cached: -1}
}

// AtEnd reports whether c is past the last record. A record that cannot be
// read also ends the traversal, and Err reports why.
func (r *TableReader) AtEnd(c concat.Cursor[record.Record]) bool {
	tc := c.(*Cursor)
	return tc.i >= len(r.index) || tc.Value() == nil
}

// Cursor is a record position in a TableReader.
type Cursor struct {
	r      *TableReader
	i      int
	cached int
	rec    record.Record
}

func (c *Cursor) Value() record.Record {
	if c.cached != c.i {
		c.rec, c.cached = c.r.recordAt(c.i), c.i
	}
	return c.rec
}

func (c *Cursor) Next()         { c.i++ }
func (c *Cursor) Prev()         { c.i-- }
func (c *Cursor) Advance(n int) { c.i += n }
func (c *Cursor) Index() int    { return c.i }

func (c *Cursor) Clone() concat.Cursor[record.Record] {
	cp := *c
	return &cp
}

func (c *Cursor) Equal(o concat.Cursor[record.Record]) bool {
	oc, ok := o.(*Cursor)
	return ok && oc.r == c.r && oc.i == c.i
}
