package recordio

import (
	"io"

	"github.com/davidvella/concat"
	"github.com/davidvella/concat/record"
)

// Stream is an input range over the records of an io.Reader. The reader is
// consumed as the cursor moves, so Begin may be called only once.
//
// A Stream ends at the first clean EOF or at the first error. Err reports
// the error, if any.
type Stream struct {
	r   io.Reader
	err error
}

func NewStream(r io.Reader) *Stream {
	return &Stream{r: r}
}

func (s *Stream) Begin() concat.Cursor[record.Record] {
	c := &streamCursor{s: s}
	c.Next()
	return c
}

func (s *Stream) AtEnd(c concat.Cursor[record.Record]) bool {
	return c.(*streamCursor).done
}

// Err returns the first decoding error the stream hit.
func (s *Stream) Err() error { return s.err }

type streamCursor struct {
	s    *Stream
	rec  record.Record
	done bool
}

func (c *streamCursor) Value() record.Record { return c.rec }

func (c *streamCursor) Next() {
	if c.done {
		return
	}
	rec, err := ReadRecord(c.s.r)
	if err != nil {
		if err != io.EOF {
			c.s.err = err
		}
		c.rec, c.done = nil, true
		return
	}
	c.rec = rec
}

// Section is a forward range over the records stored in n bytes of an
// io.ReaderAt starting at off. Cursors are byte offsets into the window, so
// they can be cloned and compared, and End is the offset n.
//
// A record that fails to decode ends the traversal and is reported by Err.
type Section struct {
	ra  io.ReaderAt
	off int64
	n   int64
	err error
}

func NewSection(ra io.ReaderAt, off, n int64) *Section {
	return &Section{ra: ra, off: off, n: n}
}

func (s *Section) Category() concat.Category { return concat.Forward }

func (s *Section) Begin() concat.Cursor[record.Record] {
	c := &SectionCursor{s: s}
	c.load()
	return c
}

func (s *Section) End() concat.Cursor[record.Record] {
	return &SectionCursor{s: s, pos: s.n}
}

func (s *Section) AtEnd(c concat.Cursor[record.Record]) bool {
	return c.(*SectionCursor).pos >= s.n
}

// Err returns the first decoding error hit by any cursor of the section.
func (s *Section) Err() error { return s.err }

// SectionCursor is a position in a Section.
type SectionCursor struct {
	s    *Section
	pos  int64
	size int64
	rec  record.Record
}

// Offset returns the cursor's byte offset relative to the start of the section.
func (c *SectionCursor) Offset() int64 { return c.pos }

func (c *SectionCursor) Value() record.Record { return c.rec }

func (c *SectionCursor) Next() {
	c.pos += c.size
	c.load()
}

func (c *SectionCursor) Clone() concat.Cursor[record.Record] {
	cp := *c
	return &cp
}

func (c *SectionCursor) Equal(o concat.Cursor[record.Record]) bool {
	oc, ok := o.(*SectionCursor)
	return ok && oc.s == c.s && oc.pos == c.pos
}

func (c *SectionCursor) load() {
	c.rec, c.size = nil, 0
	if c.pos >= c.s.n {
		c.pos = c.s.n
		return
	}

	sr := io.NewSectionReader(c.s.ra, c.s.off+c.pos, c.s.n-c.pos)
	rec, err := ReadRecord(sr)
	if err != nil {
		if c.s.err == nil {
			c.s.err = err
		}
		c.pos = c.s.n
		return
	}

	read, _ := sr.Seek(0, io.SeekCurrent)
	c.rec, c.size = rec, read
}
