// Package kv stores records in a Pebble database, one record per partition
// key and ID.
//
// Keys are the partition key and the ID joined by a zero byte, so the
// store's key order is record order as long as partition keys do not
// contain zero bytes. Values are recordio encodings.
//
// Range exposes a key interval as a bidirectional concat range read from a
// snapshot, which lets a live store be concatenated with files:
//
//	r := store.Range(kv.PartitionBounds("orders"))
//	defer r.Close()
//	v := concat.New[record.Record](table, r)
package kv

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/davidvella/concat/record"
	"github.com/davidvella/concat/recordio"
)

var (
	ErrNotFound = errors.New("kv: record not found")
	ErrClosed   = errors.New("kv: store closed")
)

const keySeparator = 0x00

type options struct {
	cacheSize int64
	fs        vfs.FS
	sync      bool
}

// Option configures a Store.
type Option func(*options)

// WithCacheSize sets the size in bytes of the block cache.
func WithCacheSize(size int64) Option {
	return func(o *options) { o.cacheSize = size }
}

// WithFS opens the store on fs instead of the operating system's file
// system. vfs.NewMem gives an in-memory store.
func WithFS(fs vfs.FS) Option {
	return func(o *options) { o.fs = fs }
}

// WithSync makes every write wait for the log to reach stable storage.
func WithSync(sync bool) Option {
	return func(o *options) { o.sync = sync }
}

// Store is a record store backed by Pebble.
type Store struct {
	db        *pebble.DB
	writeOpts *pebble.WriteOptions
}

// Open opens or creates the store in dir.
func Open(dir string, opts ...Option) (*Store, error) {
	o := options{cacheSize: 8 << 20}
	for _, opt := range opts {
		opt(&o)
	}

	cache := pebble.NewCache(o.cacheSize)
	defer cache.Unref()

	db, err := pebble.Open(dir, &pebble.Options{
		Cache: cache,
		FS:    o.fs,
	})
	if err != nil {
		return nil, fmt.Errorf("kv: failed to open %s: %w", dir, err)
	}

	writeOpts := pebble.NoSync
	if o.sync {
		writeOpts = pebble.Sync
	}

	return &Store{db: db, writeOpts: writeOpts}, nil
}

// Key returns the key under which the record with the given partition key
// and ID is stored.
func Key(partitionKey, id string) []byte {
	k := make([]byte, 0, len(partitionKey)+1+len(id))
	k = append(k, partitionKey...)
	k = append(k, keySeparator)
	return append(k, id...)
}

// PartitionBounds returns the key interval holding every record of a
// partition.
func PartitionBounds(partitionKey string) (lower, upper []byte) {
	lower = append([]byte(partitionKey), keySeparator)
	upper = append([]byte(partitionKey), keySeparator+1)
	return lower, upper
}

// Put stores rec, replacing the record with the same key. Tombstones are
// stored like any other record.
func (s *Store) Put(rec record.Record) error {
	if rec == nil {
		return errors.New("kv: record is nil")
	}

	var buf bytes.Buffer
	if _, err := recordio.Write(&buf, rec); err != nil {
		return fmt.Errorf("kv: failed to encode record: %w", err)
	}

	if err := s.db.Set(Key(rec.GetPartitionKey(), rec.GetID()), buf.Bytes(), s.writeOpts); err != nil {
		return fmt.Errorf("kv: failed to put %q: %w", rec.GetID(), err)
	}
	return nil
}

// Delete removes the record with the given key.
func (s *Store) Delete(partitionKey, id string) error {
	if err := s.db.Delete(Key(partitionKey, id), s.writeOpts); err != nil {
		return fmt.Errorf("kv: failed to delete %q: %w", id, err)
	}
	return nil
}

// Get returns the record with the given key.
func (s *Store) Get(partitionKey, id string) (record.Record, error) {
	value, closer, err := s.db.Get(Key(partitionKey, id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv: failed to get %q: %w", id, err)
	}
	defer closer.Close()

	rec, err := recordio.ReadRecord(bytes.NewReader(value))
	if err != nil {
		return nil, fmt.Errorf("kv: failed to decode %q: %w", id, err)
	}
	return rec, nil
}

// Range returns the records with keys in [lower, upper) as read from a
// snapshot taken now. A nil bound leaves that side open. The range must be
// closed before the store.
func (s *Store) Range(lower, upper []byte) *KeyRange {
	return &KeyRange{
		snap:  s.db.NewSnapshot(),
		lower: bytes.Clone(lower),
		upper: bytes.Clone(upper),
	}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
