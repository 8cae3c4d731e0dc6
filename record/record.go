// Package record defines the records stored by the sstable, wal and kv
// packages.
//
// Record is implemented by two sibling types: Impl, which carries data, and
// Tombstone, which marks an ID as deleted. Ranges of either type join a
// concatenation as ranges of Record through concat.Map.
package record

import (
	"cmp"
	"time"
)

var (
	// Create a string with the maximum Unicode code point (U+10FFFF).
	maxPossibleString = "\U0010FFFF"
	// The max time that can be represented.
	maxTime = time.Date(292277026596, 12, 4, 15, 30, 7, 999999999, time.UTC)
	// Max orders after every other record.
	Max Record = Impl{
		ID:           maxPossibleString,
		PartitionKey: maxPossibleString,
		Timestamp:    maxTime,
	}
)

type Record interface {
	Less(t Record) bool
	GetID() string
	GetPartitionKey() string
	GetWatermark() time.Time
	GetData() []byte
	IsTombstone() bool
}

// Impl is a record holding data.
type Impl struct {
	ID           string
	PartitionKey string
	Timestamp    time.Time
	Data         []byte
}

func (r Impl) GetID() string           { return r.ID }
func (r Impl) GetPartitionKey() string { return r.PartitionKey }
func (r Impl) GetWatermark() time.Time { return r.Timestamp }
func (r Impl) GetData() []byte         { return r.Data }
func (r Impl) IsTombstone() bool       { return false }
func (r Impl) Less(t Record) bool      { return Compare(r, t) < 0 }

// Tombstone marks the record with the same ID as deleted.
type Tombstone struct {
	ID           string
	PartitionKey string
	Timestamp    time.Time
}

func (r Tombstone) GetID() string           { return r.ID }
func (r Tombstone) GetPartitionKey() string { return r.PartitionKey }
func (r Tombstone) GetWatermark() time.Time { return r.Timestamp }
func (r Tombstone) GetData() []byte         { return nil }
func (r Tombstone) IsTombstone() bool       { return true }
func (r Tombstone) Less(t Record) bool      { return Compare(r, t) < 0 }

// Compare orders records by partition key, then ID, then watermark.
func Compare(a, b Record) int {
	if c := cmp.Compare(a.GetPartitionKey(), b.GetPartitionKey()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.GetID(), b.GetID()); c != 0 {
		return c
	}
	return a.GetWatermark().Compare(b.GetWatermark())
}

// Less reports whether a orders before b. It is the comparison used by the
// merge and ordered packages.
func Less(a, b Record) bool {
	return Compare(a, b) < 0
}
