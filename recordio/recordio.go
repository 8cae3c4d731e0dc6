package recordio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/davidvella/concat/record"
)

var (
	Uint64Size = int64(binary.Size(uint64(0)))
	Int64Size  = int64(binary.Size(int64(0)))
	// MagicBytes Magic bytes to identify valid recordio files (REC).
	MagicBytes           = []byte{0x52, 0x45, 0x43}
	ErrInvalidMagicBytes = errors.New("recordio: invalid magic bytes")
	ErrInvalidKind       = errors.New("recordio: invalid record kind")
)

// Record kinds, written after the magic bytes.
const (
	kindPut byte = iota
	kindTombstone
)

// BinaryWriter writes length-prefixed little-endian fields.
type BinaryWriter struct {
	w io.Writer
}

func NewBinaryWriter(w io.Writer) BinaryWriter {
	return BinaryWriter{w: w}
}

// WriteString writes the length of s followed by its bytes and returns the
// number of bytes written.
func (bw BinaryWriter) WriteString(s string) (int64, error) {
	if err := binary.Write(bw.w, binary.LittleEndian, uint64(len(s))); err != nil {
		return 0, fmt.Errorf("error writing string length: %w", err)
	}

	n, err := io.WriteString(bw.w, s)
	if err != nil {
		return Uint64Size, fmt.Errorf("error writing string content: %w", err)
	}

	return Uint64Size + int64(n), nil
}

func (bw BinaryWriter) WriteInt64(i int64) (int64, error) {
	if err := binary.Write(bw.w, binary.LittleEndian, i); err != nil {
		return 0, err
	}
	return Int64Size, nil
}

func (bw BinaryWriter) WriteBytes(b []byte) (int64, error) {
	if err := binary.Write(bw.w, binary.LittleEndian, uint64(len(b))); err != nil {
		return 0, fmt.Errorf("error writing bytes length: %w", err)
	}

	n, err := bw.w.Write(b)
	if err != nil {
		return Uint64Size, fmt.Errorf("error writing bytes content: %w", err)
	}

	return Uint64Size + int64(n), nil
}

// BinaryReader reads the fields written by BinaryWriter.
type BinaryReader struct {
	r io.Reader
}

func NewBinaryReader(r io.Reader) BinaryReader {
	return BinaryReader{r: r}
}

func (br BinaryReader) ReadString() (string, error) {
	b, err := br.readPrefixed()
	if err != nil {
		return "", fmt.Errorf("error reading string %w", err)
	}
	return string(b), nil
}

func (br BinaryReader) ReadInt64() (int64, error) {
	var value int64
	err := binary.Read(br.r, binary.LittleEndian, &value)
	return value, err
}

func (br BinaryReader) ReadBytes() ([]byte, error) {
	b, err := br.readPrefixed()
	if err != nil {
		return nil, fmt.Errorf("error reading bytes %w", err)
	}
	return b, nil
}

func (br BinaryReader) readPrefixed() ([]byte, error) {
	var length uint64
	if err := binary.Read(br.r, binary.LittleEndian, &length); err != nil {
		return nil, fmt.Errorf("length: %w", err)
	}

	b := make([]byte, length)
	if _, err := io.ReadFull(br.r, b); err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	return b, nil
}

// Write writes a single record to the writer and returns the number of
// bytes written. A nil record writes nothing.
func Write(w io.Writer, data record.Record) (int64, error) {
	if data == nil {
		return 0, nil
	}

	var (
		totalBytes int64
		n          int64
	)

	mn, err := w.Write(MagicBytes)
	if err != nil {
		return int64(mn), fmt.Errorf("failed to write magic bytes: %w", err)
	}
	totalBytes += int64(mn)

	kind := kindPut
	if data.IsTombstone() {
		kind = kindTombstone
	}
	kn, err := w.Write([]byte{kind})
	if err != nil {
		return totalBytes, fmt.Errorf("failed to write kind: %w", err)
	}
	totalBytes += int64(kn)

	bw := NewBinaryWriter(w)

	n, err = bw.WriteString(data.GetID())
	if err != nil {
		return totalBytes, fmt.Errorf("error writing ID: %w", err)
	}
	totalBytes += n

	n, err = bw.WriteString(data.GetPartitionKey())
	if err != nil {
		return totalBytes, fmt.Errorf("error writing partition key: %w", err)
	}
	totalBytes += n

	n, err = bw.WriteInt64(data.GetWatermark().UnixNano())
	if err != nil {
		return totalBytes, fmt.Errorf("error writing timestamp: %w", err)
	}
	totalBytes += n

	n, err = bw.WriteString(data.GetWatermark().Location().String())
	if err != nil {
		return totalBytes, fmt.Errorf("error writing timezone: %w", err)
	}
	totalBytes += n

	n, err = bw.WriteBytes(data.GetData())
	if err != nil {
		return totalBytes, fmt.Errorf("error writing data: %w", err)
	}
	totalBytes += n

	return totalBytes, nil
}

// ReadRecord reads a single record from the reader. It returns io.EOF,
// unwrapped, only when r ends cleanly before the next record.
func ReadRecord(r io.Reader) (record.Record, error) {
	header := make([]byte, len(MagicBytes)+1)
	if _, err := io.ReadFull(r, header[:len(MagicBytes)]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if !bytes.Equal(header[:len(MagicBytes)], MagicBytes) {
		return nil, ErrInvalidMagicBytes
	}
	if _, err := io.ReadFull(r, header[len(MagicBytes):]); err != nil {
		return nil, fmt.Errorf("failed to read kind: %w", err)
	}
	kind := header[len(MagicBytes)]
	if kind != kindPut && kind != kindTombstone {
		return nil, ErrInvalidKind
	}

	br := NewBinaryReader(r)

	id, err := br.ReadString()
	if err != nil {
		return nil, fmt.Errorf("error reading ID: %w", err)
	}

	partitionKey, err := br.ReadString()
	if err != nil {
		return nil, fmt.Errorf("error reading partition key: %w", err)
	}

	unixNano, err := br.ReadInt64()
	if err != nil {
		return nil, fmt.Errorf("error reading timestamp: %w", err)
	}

	timezone, err := br.ReadString()
	if err != nil {
		return nil, fmt.Errorf("error reading timezone: %w", err)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	timestamp := time.Unix(0, unixNano).In(loc)

	data, err := br.ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("error reading data: %w", err)
	}

	if kind == kindTombstone {
		return record.Tombstone{
			ID:           id,
			PartitionKey: partitionKey,
			Timestamp:    timestamp,
		}, nil
	}

	return record.Impl{
		ID:           id,
		PartitionKey: partitionKey,
		Timestamp:    timestamp,
		Data:         data,
	}, nil
}

// Seq creates an iterator over records. It stops at the first error.
func Seq(r io.Reader) iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		for {
			rec, err := ReadRecord(r)
			if err != nil {
				return
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// ReadRecords reads all records into a slice.
func ReadRecords(r io.Reader) []record.Record {
	records := make([]record.Record, 0, 1)
	for rec := range Seq(r) {
		records = append(records, rec)
	}
	return records
}

// Size calculates the total size in bytes that a record will occupy when written.
// This includes magic bytes, the kind, all fields and their length prefixes.
func Size(rec record.Record) int64 {
	if rec == nil {
		return 0
	}

	totalSize := int64(len(MagicBytes)) + 1
	totalSize += Uint64Size + int64(len(rec.GetID()))
	totalSize += Uint64Size + int64(len(rec.GetPartitionKey()))
	totalSize += Int64Size
	totalSize += Uint64Size + int64(len(rec.GetWatermark().Location().String()))
	totalSize += Uint64Size + int64(len(rec.GetData()))

	return totalSize
}
