package wal

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/davidvella/concat"
	"github.com/davidvella/concat/loser"
	"github.com/davidvella/concat/record"
	"github.com/davidvella/concat/recordio"
)

var ErrCorruptSegment = errors.New("wal: corrupt segment header")

// Reader reads a log written by Writer.
type Reader struct {
	r        io.ReaderAt
	segments []*recordio.Section
}

func NewReader(r io.ReaderAt) *Reader {
	return &Reader{
		r: r,
	}
}

// Segments returns one range per segment, in log order. Each segment is a
// forward range of records sorted by record.Compare.
func (r *Reader) Segments() ([]concat.Range[record.Record], error) {
	if r.segments == nil {
		if err := r.readExistingSegments(); err != nil {
			return nil, err
		}
	}

	slots := make([]concat.Range[record.Record], len(r.segments))
	for i, s := range r.segments {
		slots[i] = s
	}
	return slots, nil
}

// Replay returns the records of the log in the order they were written:
// the segments concatenated, each one sorted.
func (r *Reader) Replay() (concat.Range[record.Record], error) {
	slots, err := r.Segments()
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return concat.Values[record.Record](), nil
	}
	return concat.New(slots[0], slots[1:]...), nil
}

// ReadAll returns the records of every segment merged into record.Compare
// order.
func (r *Reader) ReadAll() (iter.Seq[record.Record], error) {
	slots, err := r.Segments()
	if err != nil {
		return nil, err
	}

	tree := loser.New(slots, record.Max, record.Less)
	return tree.All(), nil
}

// Err returns the decoding errors hit by the segments handed out so far.
func (r *Reader) Err() error {
	var errs []error
	for _, s := range r.segments {
		errs = append(errs, s.Err())
	}
	return errors.Join(errs...)
}

func (r *Reader) readExistingSegments() error {
	segments := make([]*recordio.Section, 0, 1)
	offset := int64(0)
	for {
		length, err := readSegmentLength(r.r, offset)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("wal: segment at %d: %w", offset, err)
		}

		body := length - recordio.Int64Size
		segments = append(segments, recordio.NewSection(r.r, offset+recordio.Int64Size, body))
		offset += length
	}
	r.segments = segments
	return nil
}

func readSegmentLength(r io.ReaderAt, offset int64) (int64, error) {
	br := recordio.NewBinaryReader(io.NewSectionReader(r, offset, recordio.Int64Size))
	l, err := br.ReadInt64()
	if err != nil {
		return 0, err
	}
	if l < recordio.Int64Size {
		return 0, ErrCorruptSegment
	}
	return l, nil
}
