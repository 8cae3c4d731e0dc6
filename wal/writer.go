package wal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/davidvella/concat"
	"github.com/davidvella/concat/ordered"
	"github.com/davidvella/concat/record"
	"github.com/davidvella/concat/recordio"
)

var (
	ErrInvalidMaxRecords = errors.New("wal: maxRecords must be greater than 0")
	ErrWALClosed         = errors.New("wal: WAL is closed")
	ErrNilRecord         = errors.New("wal: record is nil")
)

// Writer appends records to a log in sorted segments. Records are buffered
// in an ordered set until maxRecords of them are pending, then written as
// one segment.
type Writer struct {
	mu         sync.Mutex
	wc         io.WriteCloser
	bw         recordio.BinaryWriter
	pending    *ordered.Set[record.Record]
	maxRecords int
	closed     bool
	offset     int64
	segments   int
}

func NewWriter(wc io.WriteCloser, maxRecords int) (*Writer, error) {
	if maxRecords <= 0 {
		return nil, ErrInvalidMaxRecords
	}

	return &Writer{
		wc:         wc,
		bw:         recordio.NewBinaryWriter(wc),
		pending:    ordered.New(record.Less),
		maxRecords: maxRecords,
	}, nil
}

// Write adds a record to the current segment, writing the segment out once
// it is full. A record equal to a pending one replaces it.
func (w *Writer) Write(rec record.Record) error {
	if rec == nil {
		return ErrNilRecord
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWALClosed
	}

	w.pending.Insert(rec)

	if w.pending.Len() >= w.maxRecords {
		return w.flushSegment()
	}
	return nil
}

// Flush writes the pending records as a segment, if there are any.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWALClosed
	}
	return w.flushSegment()
}

// Pending returns a snapshot of the records not yet written, in order. The
// snapshot is a bidirectional range and does not change with later writes.
func (w *Writer) Pending() concat.Range[record.Record] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending.Clone()
}

// Segments returns the number of segments written so far.
func (w *Writer) Segments() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.segments
}

// flushSegment encodes the pending records and writes them after a header
// holding the segment length, header included. The caller holds w.mu.
func (w *Writer) flushSegment() error {
	if w.pending.Len() == 0 {
		return nil
	}

	var body bytes.Buffer
	for rec := range concat.All[record.Record](w.pending) {
		if _, err := recordio.Write(&body, rec); err != nil {
			return fmt.Errorf("wal: failed to encode record: %w", err)
		}
	}

	length := recordio.Int64Size + int64(body.Len())
	if _, err := w.bw.WriteInt64(length); err != nil {
		return fmt.Errorf("wal: failed to write segment header: %w", err)
	}
	if _, err := body.WriteTo(w.wc); err != nil {
		return fmt.Errorf("wal: failed to write segment: %w", err)
	}

	w.offset += length
	w.segments++
	w.pending.Clear()
	return nil
}

// Close writes any pending records and closes the underlying writer.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWALClosed
	}
	w.closed = true

	if err := w.flushSegment(); err != nil {
		return errors.Join(err, w.wc.Close())
	}
	return w.wc.Close()
}
