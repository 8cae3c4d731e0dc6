package sstable_test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/rand"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/davidvella/concat"
	"github.com/davidvella/concat/record"
	"github.com/davidvella/concat/recordio"
	"github.com/davidvella/concat/sstable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func put(pk, id string, minute int, data string) record.Record {
	return record.Impl{
		PartitionKey: pk,
		ID:           id,
		Timestamp:    base.Add(time.Duration(minute) * time.Minute),
		Data:         []byte(data),
	}
}

func del(pk, id string, minute int) record.Record {
	return record.Tombstone{
		PartitionKey: pk,
		ID:           id,
		Timestamp:    base.Add(time.Duration(minute) * time.Minute),
	}
}

// encodeTable writes recs to an in-memory table.
func encodeTable(tb testing.TB, recs ...record.Record) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w, err := sstable.OpenWriter(&buf, nil)
	require.NoError(tb, err)
	for _, r := range recs {
		require.NoError(tb, w.Write(r))
	}
	require.NoError(tb, w.Close())
	return buf.Bytes()
}

func openTable(tb testing.TB, data []byte) *sstable.TableReader {
	tb.Helper()
	reader, err := sstable.OpenReader(bytes.NewReader(data), nil)
	require.NoError(tb, err)
	tb.Cleanup(func() { reader.Close() })
	return reader
}

// fixture holds two versions of a/1, a deleted b/1 and a record with an
// empty partition key, in table order.
var fixture = []record.Record{
	put("", "0", 0, "root"),
	put("a", "1", 0, "a1-old"),
	put("a", "1", 5, "a1-new"),
	put("a", "2", 0, "a2"),
	put("b", "1", 0, "b1"),
	del("b", "1", 1),
	put("c", "1", 0, "c1"),
}

func TestTableGet(t *testing.T) {
	reader := openTable(t, encodeTable(t, fixture...))

	tests := []struct {
		name      string
		pk, id    string
		want      string
		tombstone bool
		wantErr   error
	}{
		{name: "empty partition key", pk: "", id: "0", want: "root"},
		{name: "newest of two versions", pk: "a", id: "1", want: "a1-new"},
		{name: "single version", pk: "a", id: "2", want: "a2"},
		{name: "deleted record reads as tombstone", pk: "b", id: "1", tombstone: true},
		{name: "last record", pk: "c", id: "1", want: "c1"},
		{name: "id in another partition", pk: "c", id: "2", wantErr: sstable.ErrKeyNotFound},
		{name: "before first key", pk: "", id: "", wantErr: sstable.ErrKeyNotFound},
		{name: "past last key", pk: "d", id: "0", wantErr: sstable.ErrKeyNotFound},
		{name: "partition without the id", pk: "b", id: "0", wantErr: sstable.ErrKeyNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reader.Get(tt.pk, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pk, got.GetPartitionKey())
			assert.Equal(t, tt.id, got.GetID())
			assert.Equal(t, tt.tombstone, got.IsTombstone())
			if !tt.tombstone {
				assert.Equal(t, []byte(tt.want), got.GetData())
			}
		})
	}
}

func TestTableSearch(t *testing.T) {
	reader := openTable(t, encodeTable(t, fixture...))

	tests := []struct {
		name   string
		pk, id string
		want   int
		rest   []string
	}{
		{name: "start of table", pk: "", id: "", want: 0, rest: []string{"0", "1", "1", "2", "1", "1", "1"}},
		{name: "first of several versions", pk: "a", id: "1", want: 1, rest: []string{"1", "1", "2", "1", "1", "1"}},
		{name: "between ids", pk: "a", id: "15", want: 3, rest: []string{"2", "1", "1", "1"}},
		{name: "partition prefix", pk: "b", id: "", want: 4, rest: []string{"1", "1", "1"}},
		{name: "missing partition", pk: "bb", id: "", want: 6, rest: []string{"1"}},
		{name: "past the end", pk: "z", id: "", want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := reader.Search(tt.pk, tt.id)
			assert.Equal(t, tt.want, pos)

			c := reader.Begin().(concat.RandomAccessCursor[record.Record])
			c.Advance(pos)
			assert.Equal(t, pos, c.Index())

			var rest []string
			for ; !reader.AtEnd(c); c.Next() {
				rest = append(rest, c.Value().GetID())
			}
			assert.Equal(t, tt.rest, rest)
			assert.NoError(t, reader.Err())
		})
	}
}

func TestTableCursorReadsKinds(t *testing.T) {
	reader := openTable(t, encodeTable(t, fixture...))

	var kinds []bool
	var data []string
	for rec := range reader.All() {
		kinds = append(kinds, rec.IsTombstone())
		data = append(data, string(rec.GetData()))
	}
	assert.Equal(t, []bool{false, false, false, false, false, true, false}, kinds)
	assert.Equal(t, []string{"root", "a1-old", "a1-new", "a2", "b1", "", "c1"}, data)

	c := reader.End().(concat.BidirectionalCursor[record.Record])
	c.Prev()
	c.Prev()
	assert.True(t, c.Value().IsTombstone())
	assert.True(t, c.Value().GetWatermark().Equal(base.Add(time.Minute)))
	assert.NoError(t, reader.Err())
}

func TestTableCursorCachesRecord(t *testing.T) {
	reader := openTable(t, encodeTable(t, fixture...))

	c := reader.Begin().(concat.ForwardCursor[record.Record])
	first := c.Value()
	c.Next()
	second := c.Value()
	assert.Equal(t, "0", first.GetID())
	assert.Equal(t, "a", second.GetPartitionKey())

	// a clone keeps its own position and decoded record
	fork := c.Clone().(concat.ForwardCursor[record.Record])
	c.Next()
	assert.Equal(t, []byte("a1-old"), fork.Value().GetData())
	assert.Equal(t, []byte("a1-new"), c.Value().GetData())
	assert.False(t, fork.Equal(c))
	fork.Next()
	assert.True(t, fork.Equal(c))

	other := openTable(t, encodeTable(t, fixture...))
	assert.False(t, other.Begin().(concat.ForwardCursor[record.Record]).Equal(reader.Begin()))
}

func TestTableWriterRejects(t *testing.T) {
	tests := []struct {
		name    string
		write   func(t *testing.T, w *sstable.TableWriter) error
		wantErr error
		count   int
	}{
		{
			name:    "nil record",
			write:   func(_ *testing.T, w *sstable.TableWriter) error { return w.Write(nil) },
			wantErr: sstable.ErrInvalidKey,
		},
		{
			name: "lower partition key",
			write: func(t *testing.T, w *sstable.TableWriter) error {
				require.NoError(t, w.Write(put("b", "1", 0, "")))
				return w.Write(put("a", "9", 0, ""))
			},
			wantErr: sstable.ErrWriteError,
			count:   1,
		},
		{
			name: "lower id",
			write: func(t *testing.T, w *sstable.TableWriter) error {
				require.NoError(t, w.Write(put("a", "2", 0, "")))
				return w.Write(put("a", "1", 9, ""))
			},
			wantErr: sstable.ErrWriteError,
			count:   1,
		},
		{
			name: "older version after newer",
			write: func(t *testing.T, w *sstable.TableWriter) error {
				require.NoError(t, w.Write(put("a", "1", 5, "")))
				return w.Write(del("a", "1", 4))
			},
			wantErr: sstable.ErrWriteError,
			count:   1,
		},
		{
			name: "equal keys are kept",
			write: func(t *testing.T, w *sstable.TableWriter) error {
				require.NoError(t, w.Write(put("a", "1", 5, "")))
				return w.Write(del("a", "1", 5))
			},
			count: 2,
		},
		{
			name: "write after close",
			write: func(t *testing.T, w *sstable.TableWriter) error {
				require.NoError(t, w.Close())
				return w.Write(put("a", "1", 0, ""))
			},
			wantErr: sstable.ErrTableClosed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := sstable.OpenWriter(&bytes.Buffer{}, nil)
			require.NoError(t, err)
			defer w.Close()

			err = tt.write(t, w)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.count, w.Count())
		})
	}
}

func TestOpenWriterInvalid(t *testing.T) {
	_, err := sstable.OpenWriter(nil, nil)
	assert.Error(t, err)

	_, err = sstable.OpenWriter(&bytes.Buffer{}, &sstable.Options{ReadOnly: true})
	assert.ErrorIs(t, err, sstable.ErrReadOnlyTable)

	path := t.TempDir() + "/table.sst"
	_, err = sstable.OpenWriterFile(path, &sstable.Options{ReadOnly: true})
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestOpenReaderInvalid(t *testing.T) {
	valid := encodeTable(t, put("a", "1", 0, "x"))
	indexAt := int(binary.LittleEndian.Uint64(valid[len(valid)-16:]))

	edit := func(f func(b []byte)) []byte {
		b := bytes.Clone(valid)
		f(b)
		return b
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
		wantMsg string
	}{
		{name: "empty", data: nil, wantMsg: "file is empty or corrupted"},
		{name: "shorter than a footer", data: []byte("im a bad file"), wantMsg: "file is empty or corrupted"},
		{name: "not a table", data: bytes.Repeat([]byte("x"), 64), wantErr: sstable.ErrCorruptedTable},
		{
			name:    "wrong header",
			data:    edit(func(b []byte) { b[0] ^= 0xFF }),
			wantErr: sstable.ErrCorruptedTable,
		},
		{
			name:    "unknown version",
			data:    edit(func(b []byte) { binary.LittleEndian.PutUint64(b[8:], 3) }),
			wantMsg: "unsupported version 3",
		},
		{
			name: "index count past the data",
			data: edit(func(b []byte) {
				binary.LittleEndian.PutUint64(b[indexAt:], 1<<40)
			}),
			wantErr: sstable.ErrCorruptedTable,
		},
		{
			name: "index offset outside the data",
			data: edit(func(b []byte) {
				// count, then the length prefixed partition key and id
				off := indexAt + 8 + 8 + 1 + 8 + 1
				binary.LittleEndian.PutUint64(b[off:], uint64(indexAt))
			}),
			wantErr: sstable.ErrCorruptedTable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sstable.OpenReader(bytes.NewReader(tt.data), nil)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.ErrorContains(t, err, tt.wantMsg)
			}
		})
	}

	_, err := sstable.OpenReader(nil, nil)
	assert.Error(t, err)

	_, err = sstable.OpenReaderFile(t.TempDir()+"/missing.sst", nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTableCorruptRecord(t *testing.T) {
	first := put("", "1", 0, "one")
	valid := encodeTable(t, first, put("", "2", 0, "two"), put("", "3", 0, "three"))
	second := 16 + int(recordio.Size(first))

	tests := []struct {
		name    string
		at      int
		want    []string
		wantErr error
		broken  string
	}{
		{name: "first record magic", at: 16, wantErr: recordio.ErrInvalidMagicBytes, broken: "1"},
		{name: "first record kind", at: 16 + 3, wantErr: recordio.ErrInvalidKind, broken: "1"},
		{name: "second record magic", at: second, want: []string{"1"}, wantErr: recordio.ErrInvalidMagicBytes, broken: "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := bytes.Clone(valid)
			data[tt.at] ^= 0xFF
			reader := openTable(t, data)

			assert.Equal(t, tt.want, tableIDs(reader))
			assert.ErrorIs(t, reader.Err(), tt.wantErr)

			_, err := reader.Get("", tt.broken)
			assert.ErrorIs(t, err, tt.wantErr)

			// records past the damage stay reachable by key
			got, err := reader.Get("", "3")
			require.NoError(t, err)
			assert.Equal(t, []byte("three"), got.GetData())
		})
	}
}

func TestTableClose(t *testing.T) {
	reader := openTable(t, encodeTable(t, fixture...))
	require.NoError(t, reader.Close())
	assert.NoError(t, reader.Close())

	_, err := reader.Get("a", "1")
	assert.ErrorIs(t, err, sstable.ErrTableClosed)
	assert.Nil(t, tableIDs(reader))
	assert.ErrorIs(t, reader.Err(), sstable.ErrTableClosed)

	w, err := sstable.OpenWriter(&bytes.Buffer{}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestBatchWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := sstable.OpenWriter(&buf, &sstable.Options{BufferSize: 64})
	require.NoError(t, err)

	batch := w.BatchWriter()
	require.NoError(t, batch.AddAll(fixture[:3]))
	require.NoError(t, batch.Flush())
	assert.Greater(t, buf.Len(), 16)

	err = batch.AddAll([]record.Record{fixture[3], fixture[0]})
	assert.ErrorIs(t, err, sstable.ErrWriteError)
	assert.ErrorContains(t, err, "batch add error")
	assert.Equal(t, 4, w.Count())

	require.NoError(t, batch.Add(fixture[4]))
	require.NoError(t, batch.Close())

	reader := openTable(t, buf.Bytes())
	assert.Equal(t, []string{"0", "1", "1", "2", "1"}, tableIDs(reader))
}

func writeTable(t *testing.T, recs ...record.Record) *sstable.TableReader {
	t.Helper()

	path := t.TempDir() + "/table.sst"
	writer, err := sstable.OpenWriterFile(path, nil)
	require.NoError(t, err)
	for _, r := range recs {
		require.NoError(t, writer.Write(r))
	}
	require.NoError(t, writer.Close())

	reader, err := sstable.OpenReaderFile(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { reader.Close() })
	return reader
}

func tableIDs(r concat.Range[record.Record]) []string {
	var out []string
	for rec := range concat.All(r) {
		out = append(out, rec.GetID())
	}
	return out
}

func TestTableIsRandomAccessRange(t *testing.T) {
	reader := writeTable(t,
		put("p", "a", 0, ""),
		put("p", "b", 0, ""),
		put("p", "c", 0, ""),
		put("p", "d", 0, ""),
	)

	assert.Equal(t, concat.RandomAccess, concat.CategoryOf[record.Record](reader))
	assert.Equal(t, 4, reader.Len())

	c := reader.Begin().(concat.RandomAccessCursor[record.Record])
	c.Advance(3)
	assert.Equal(t, "d", c.Value().GetID())
	c.Prev()
	assert.Equal(t, "c", c.Value().GetID())
	assert.Equal(t, 2, c.Index())

	fork := c.Clone()
	c.Advance(-2)
	assert.Equal(t, "a", c.Value().GetID())
	assert.Equal(t, "c", fork.Value().GetID())

	c.Advance(4)
	assert.True(t, reader.AtEnd(c))
	assert.True(t, c.Equal(reader.End()))
	assert.NoError(t, reader.Err())
}

func TestTablesConcatenate(t *testing.T) {
	first := writeTable(t, put("p", "a", 0, ""), put("p", "b", 0, ""))
	empty := writeTable(t)
	second := writeTable(t, put("p", "c", 0, ""))

	v := concat.New[record.Record](first, empty, second)
	assert.Equal(t, concat.RandomAccess, concat.CategoryOf(v))

	n, ok := concat.Size(v)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"a", "b", "c"}, tableIDs(v))

	rev, err := concat.Backward(v)
	require.NoError(t, err)
	var back []string
	for rec := range rev {
		back = append(back, rec.GetID())
	}
	assert.Equal(t, []string{"c", "b", "a"}, back)
}

func TestTableGetNewestVersion(t *testing.T) {
	reader := writeTable(t,
		record.Impl{PartitionKey: "p", ID: "1", Timestamp: base, Data: []byte("old")},
		record.Impl{PartitionKey: "p", ID: "1", Timestamp: base.Add(time.Minute), Data: []byte("new")},
		record.Tombstone{PartitionKey: "p", ID: "2", Timestamp: base},
		record.Impl{PartitionKey: "q", ID: "0", Timestamp: base, Data: []byte("other")},
	)

	got, err := reader.Get("p", "1")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got.GetData())

	got, err = reader.Get("p", "2")
	require.NoError(t, err)
	assert.True(t, got.IsTombstone())

	_, err = reader.Get("q", "1")
	assert.ErrorIs(t, err, sstable.ErrKeyNotFound)

	assert.Equal(t, 3, reader.Search("q", ""))
	assert.Equal(t, 4, reader.Search("z", ""))
}

func TestTableCursorAfterClose(t *testing.T) {
	reader := writeTable(t, put("p", "a", 0, ""))
	c := reader.Begin()
	require.NoError(t, reader.Close())

	assert.Nil(t, c.Value())
	assert.ErrorIs(t, reader.Err(), sstable.ErrTableClosed)
}

func TestOpenReaderCorruptFooter(t *testing.T) {
	path := t.TempDir() + "/table.sst"
	writer, err := sstable.OpenWriterFile(path, nil)
	require.NoError(t, err)
	require.NoError(t, writer.Write(put("p", "a", 0, "")))
	require.NoError(t, writer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = sstable.OpenReaderFile(path, nil)
	assert.ErrorIs(t, err, sstable.ErrCorruptedTable)
}

func benchTable(b *testing.B, n int) *sstable.TableReader {
	b.Helper()
	recs := make([]record.Record, n)
	for i := range recs {
		recs[i] = put(fmt.Sprintf("p%02d", i%16), fmt.Sprintf("id-%06d", i), 0, "value")
	}
	slices.SortFunc(recs, record.Compare)
	return openTable(b, encodeTable(b, recs...))
}

func BenchmarkTableScan(b *testing.B) {
	for _, n := range []int{1000, 10000} {
		b.Run(fmt.Sprintf("records=%d", n), func(b *testing.B) {
			reader := benchTable(b, n)
			b.ResetTimer()
			for range b.N {
				if got := len(concat.Collect[record.Record](reader)); got != n {
					b.Fatalf("scanned %d records, want %d", got, n)
				}
			}
		})
	}
}

func BenchmarkTableAdvance(b *testing.B) {
	for _, n := range []int{1000, 10000} {
		b.Run(fmt.Sprintf("records=%d", n), func(b *testing.B) {
			reader := benchTable(b, n)
			//nolint:gosec // positions only
			rng := rand.New(rand.NewSource(1))
			c := reader.Begin().(concat.RandomAccessCursor[record.Record])
			b.ResetTimer()
			for range b.N {
				c.Advance(rng.Intn(n) - c.Index())
				if c.Value() == nil {
					b.Fatal(reader.Err())
				}
			}
		})
	}
}

func BenchmarkTableGet(b *testing.B) {
	reader := benchTable(b, 10000)
	//nolint:gosec // key choice only
	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for range b.N {
		i := rng.Intn(10000)
		if _, err := reader.Get(fmt.Sprintf("p%02d", i%16), fmt.Sprintf("id-%06d", i)); err != nil {
			b.Fatal(err)
		}
	}
}
