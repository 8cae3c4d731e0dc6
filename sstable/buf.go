package sstable

import (
	"bufio"
	"io"
)

// bufferedSeeker is a buffered io.ReadSeeker. It remembers its logical
// position so that seeking to where the previous read stopped keeps the
// buffer, which makes walking the table in order cheap.
type bufferedSeeker struct {
	r   *bufio.Reader
	rs  io.ReadSeeker
	pos int64
}

func newBufferedSeeker(rs io.ReadSeeker, size int) *bufferedSeeker {
	return &bufferedSeeker{
		r:   bufio.NewReaderSize(rs, size),
		rs:  rs,
		pos: -1,
	}
}

func (b *bufferedSeeker) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if b.pos >= 0 {
		b.pos += int64(n)
	}
	return n, err
}

func (b *bufferedSeeker) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekCurrent && b.pos >= 0 {
		offset, whence = b.pos+offset, io.SeekStart
	}
	if whence == io.SeekStart && offset == b.pos {
		return b.pos, nil
	}

	pos, err := b.rs.Seek(offset, whence)
	if err != nil {
		b.pos = -1
		return pos, err
	}

	b.r.Reset(b.rs)
	b.pos = pos
	return pos, nil
}
