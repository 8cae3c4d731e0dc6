package sstable

import (
	"cmp"
	"encoding/binary"
	"errors"
)

// Common errors that can be returned by SSTable operations.
var (
	ErrTableClosed    = errors.New("sstable: table already closed")
	ErrInvalidKey     = errors.New("sstable: invalid key")
	ErrKeyNotFound    = errors.New("sstable: key not found")
	ErrCorruptedTable = errors.New("sstable: corrupted table data")
	ErrReadOnlyTable  = errors.New("sstable: cannot write to read-only table")
	ErrWriteError     = errors.New("sstable: records must be written in sorted order")
	footerSize        = int64(binary.Size(magicHeader) + binary.Size(formatVersion))
)

// File format constants.
const (
	magicHeader      = int64(0x53535442) // "SSTB" in hex
	magicFooter      = int64(0x454E4442) // "ENDB" in hex
	formatVersion    = int64(2)
	defaultBufSize   = 52 * 1024
	defaultIndexSize = 1024
)

// Options configures the behavior of an SSTable.
type Options struct {
	// ReadOnly opens the table in read-only mode if true.
	ReadOnly bool

	// BufferSize is the size of the read/write buffer.
	BufferSize int
}

func (o *Options) withDefaults() Options {
	if o == nil {
		return Options{BufferSize: defaultBufSize}
	}
	opts := *o
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufSize
	}
	return opts
}

// indexEntry locates one record in the data section.
type indexEntry struct {
	partitionKey string
	id           string
	offset       int64
}

func compareKey(e indexEntry, partitionKey, id string) int {
	if c := cmp.Compare(e.partitionKey, partitionKey); c != 0 {
		return c
	}
	return cmp.Compare(e.id, id)
}
