package kv

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/davidvella/concat"
	"github.com/davidvella/concat/record"
	"github.com/davidvella/concat/recordio"
)

// KeyRange is a bidirectional, common concat range over a key interval of
// a snapshot. Its cursors hold a key, not an open iterator: each step seeks
// a short-lived iterator to the neighbouring key, so abandoned cursors hold
// no resources.
//
// Errors cannot be returned from a cursor, so the first one ends the
// traversal and is reported by Err.
type KeyRange struct {
	snap   *pebble.Snapshot
	lower  []byte
	upper  []byte
	err    error
	closed bool
}

func (r *KeyRange) Category() concat.Category { return concat.Bidirectional }

func (r *KeyRange) Begin() concat.Cursor[record.Record] {
	c := &KeyCursor{r: r}
	r.seek(c, func(it *pebble.Iterator) bool { return it.First() })
	return c
}

func (r *KeyRange) End() concat.Cursor[record.Record] {
	return &KeyCursor{r: r, end: true}
}

func (r *KeyRange) AtEnd(c concat.Cursor[record.Record]) bool {
	return c.(*KeyCursor).end
}

// Err returns the first error hit by a cursor of the range.
func (r *KeyRange) Err() error { return r.err }

// Close releases the snapshot.
func (r *KeyRange) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.snap.Close()
}

// seek positions c with a fresh iterator. A failed or invalid position
// moves c to the end.
func (r *KeyRange) seek(c *KeyCursor, position func(*pebble.Iterator) bool) {
	c.key, c.rec, c.end = nil, nil, true
	if r.closed {
		r.setErr(ErrClosed)
		return
	}

	it, err := r.snap.NewIter(&pebble.IterOptions{
		LowerBound: r.lower,
		UpperBound: r.upper,
	})
	if err != nil {
		r.setErr(fmt.Errorf("kv: failed to open iterator: %w", err))
		return
	}

	if position(it) {
		rec, err := recordio.ReadRecord(bytes.NewReader(it.Value()))
		if err != nil {
			r.setErr(fmt.Errorf("kv: failed to decode %q: %w", it.Key(), err))
		} else {
			c.key, c.rec, c.end = bytes.Clone(it.Key()), rec, false
		}
	}

	r.setErr(it.Close())
}

func (r *KeyRange) setErr(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// KeyCursor is a position in a KeyRange.
type KeyCursor struct {
	r   *KeyRange
	key []byte
	rec record.Record
	end bool
}

func (c *KeyCursor) Value() record.Record { return c.rec }

// Key returns the stored key of the current record.
func (c *KeyCursor) Key() []byte { return c.key }

func (c *KeyCursor) Next() {
	if c.end {
		return
	}
	// the smallest key greater than c.key
	succ := append(bytes.Clone(c.key), 0x00)
	c.r.seek(c, func(it *pebble.Iterator) bool { return it.SeekGE(succ) })
}

// Prev moves to the previous key, or to the last key from the end.
func (c *KeyCursor) Prev() {
	if c.end {
		c.r.seek(c, func(it *pebble.Iterator) bool { return it.Last() })
		return
	}
	key := c.key
	c.r.seek(c, func(it *pebble.Iterator) bool { return it.SeekLT(key) })
}

func (c *KeyCursor) Clone() concat.Cursor[record.Record] {
	cp := *c
	return &cp
}

func (c *KeyCursor) Equal(o concat.Cursor[record.Record]) bool {
	oc, ok := o.(*KeyCursor)
	if !ok || oc.r != c.r || oc.end != c.end {
		return false
	}
	return c.end || bytes.Equal(c.key, oc.key)
}
