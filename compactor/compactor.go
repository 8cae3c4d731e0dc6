package compactor

import (
	"errors"
	"fmt"
	"io"

	"github.com/davidvella/concat"
	"github.com/davidvella/concat/loser"
	"github.com/davidvella/concat/record"
	"github.com/davidvella/concat/sstable"
)

// Merge merges sorted slots into a single SSTable written to w and returns
// the number of records written. Slots may overlap. Of the records sharing
// a partition key and ID only the last in record order is kept, and it is
// dropped when it is a tombstone.
func Merge(w io.Writer, slots ...concat.Range[record.Record]) (int, error) {
	sst, err := sstable.OpenWriter(w, nil)
	if err != nil {
		return 0, fmt.Errorf("compactor: failed to open table: %w", err)
	}

	var (
		lt   = loser.New(slots, record.Max, record.Less)
		last record.Record
		bw   = sst.BatchWriter()
	)

	flush := func() error {
		if last == nil || last.IsTombstone() {
			return nil
		}
		return bw.Add(last)
	}

	for current := range lt.All() {
		if last != nil && !sameKey(current, last) {
			if err := flush(); err != nil {
				return 0, err
			}
		}
		last = current
	}

	if err := flush(); err != nil {
		return 0, err
	}

	n := sst.Count()
	if err := errors.Join(bw.Close(), slotErrors(slots)); err != nil {
		return 0, err
	}
	return n, nil
}

// Concat writes slots, which must already be in order and must not
// overlap, into a single SSTable written to w without merging. Tombstones
// are copied. Records out of order fail with sstable.ErrWriteError.
func Concat(w io.Writer, slots ...concat.Range[record.Record]) (int, error) {
	sst, err := sstable.OpenWriter(w, nil)
	if err != nil {
		return 0, fmt.Errorf("compactor: failed to open table: %w", err)
	}

	if len(slots) > 0 {
		v := concat.New(slots[0], slots[1:]...)
		for rec := range concat.All(v) {
			if err := sst.Write(rec); err != nil {
				return 0, errors.Join(
					fmt.Errorf("compactor: record %d: %w", sst.Count(), err),
					concat.Err(v),
				)
			}
		}
	}

	n := sst.Count()
	if err := errors.Join(sst.Close(), slotErrors(slots)); err != nil {
		return 0, err
	}
	return n, nil
}

func sameKey(a, b record.Record) bool {
	return a.GetPartitionKey() == b.GetPartitionKey() && a.GetID() == b.GetID()
}

// slotErrors collects the failures of the slots, including those of
// storage ranges wrapped by concat.New or concat.Map.
func slotErrors(slots []concat.Range[record.Record]) error {
	var errs []error
	for _, s := range slots {
		errs = append(errs, concat.Err(s))
	}
	return errors.Join(errs...)
}
