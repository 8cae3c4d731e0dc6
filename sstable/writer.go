package sstable

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/davidvella/concat/record"
	"github.com/davidvella/concat/recordio"
)

// TableWriter represents the writing component of an SSTable.
type TableWriter struct {
	mu      sync.Mutex
	closer  io.Closer
	buf     *bufio.Writer
	bw      recordio.BinaryWriter
	opts    Options
	closed  bool
	index   []indexEntry
	last    record.Record
	dataEnd int64
}

// OpenWriter initializes a new TableWriter writing to w.
func OpenWriter(w io.Writer, opts *Options) (*TableWriter, error) {
	if w == nil {
		return nil, errors.New("sstable: writer cannot be nil")
	}

	o := opts.withDefaults()
	if o.ReadOnly {
		return nil, ErrReadOnlyTable
	}

	buf := bufio.NewWriterSize(w, o.BufferSize)
	writer := &TableWriter{
		opts:  o,
		index: make([]indexEntry, 0, defaultIndexSize),
		bw:    recordio.NewBinaryWriter(buf),
		buf:   buf,
	}

	if err := writer.writeHeader(); err != nil {
		return nil, fmt.Errorf("sstable: failed to write header: %w", err)
	}

	writer.dataEnd = footerSize

	return writer, nil
}

// OpenWriterFile creates an SSTable at the given path, truncating any
// existing file. Close closes the file.
func OpenWriterFile(path string, opts *Options) (*TableWriter, error) {
	if opts != nil && opts.ReadOnly {
		return nil, errors.New("sstable: cannot open writer in read-only mode")
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return nil, fmt.Errorf("sstable: failed to open file for writing: %w", err)
	}

	writer, err := OpenWriter(file, opts)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("sstable: failed to initialize writer: %w", err)
	}
	writer.closer = file

	return writer, nil
}

// Write appends a record. Records must arrive in record.Compare order;
// equal keys are kept, so several versions of an ID may be stored.
func (w *TableWriter) Write(rec record.Record) error {
	if rec == nil {
		return ErrInvalidKey
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return w.writeRecord(rec)
}

// Count returns the number of records written so far.
func (w *TableWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.index)
}

// Close writes the index and footer and flushes the buffer.
func (w *TableWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true

	err := w.writeIndex()
	if w.closer != nil {
		err = errors.Join(err, w.closer.Close())
	}
	return err
}

// writeHeader writes the SSTable header.
func (w *TableWriter) writeHeader() error {
	if err := binary.Write(w.buf, binary.LittleEndian, magicHeader); err != nil {
		return err
	}
	return binary.Write(w.buf, binary.LittleEndian, formatVersion)
}

// writeRecord writes a single record to the table.
func (w *TableWriter) writeRecord(rec record.Record) error {
	if w.closed {
		return ErrTableClosed
	}

	if w.last != nil && record.Less(rec, w.last) {
		return ErrWriteError
	}

	n, err := recordio.Write(w.buf, rec)
	if err != nil {
		return err
	}

	w.index = append(w.index, indexEntry{
		partitionKey: rec.GetPartitionKey(),
		id:           rec.GetID(),
		offset:       w.dataEnd,
	})
	w.last = rec
	w.dataEnd += n

	return nil
}

// BatchWriter creates a new BatchWriter instance.
func (w *TableWriter) BatchWriter() *BatchWriter {
	return &BatchWriter{
		writer: w,
	}
}

// Flush flushes buffered records to the underlying writer.
func (w *TableWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Flush()
}

// writeIndex writes the index and footer.
func (w *TableWriter) writeIndex() error {
	if _, err := w.bw.WriteInt64(int64(len(w.index))); err != nil {
		return err
	}

	for _, v := range w.index {
		if _, err := w.bw.WriteString(v.partitionKey); err != nil {
			return err
		}
		if _, err := w.bw.WriteString(v.id); err != nil {
			return err
		}
		if _, err := w.bw.WriteInt64(v.offset); err != nil {
			return err
		}
	}

	// Write footer with index offset and magic number
	if _, err := w.bw.WriteInt64(w.dataEnd); err != nil {
		return err
	}
	if _, err := w.bw.WriteInt64(magicFooter); err != nil {
		return err
	}

	return w.buf.Flush()
}

// BatchWriter provides functionality to write multiple records to an SSTable in batches.
type BatchWriter struct {
	writer *TableWriter
}

// Add adds a record to the batch.
func (bw *BatchWriter) Add(rec record.Record) error {
	return bw.writer.Write(rec)
}

// AddAll adds multiple records to the batch.
func (bw *BatchWriter) AddAll(records []record.Record) error {
	for _, rec := range records {
		if err := bw.Add(rec); err != nil {
			return fmt.Errorf("sstable: batch add error: %w", err)
		}
	}
	return nil
}

// Flush writes all buffered records to the table.
func (bw *BatchWriter) Flush() error {
	return bw.writer.Flush()
}

// Close flushes any remaining records and releases resources.
func (bw *BatchWriter) Close() error {
	return bw.writer.Close()
}
