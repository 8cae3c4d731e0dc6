package concat

import (
	"errors"
	"iter"
	"slices"
)

// ErrNotBidirectional is returned when an operation needs to step backwards
// through a range that cannot.
var ErrNotBidirectional = errors.New("concat: range is not bidirectional")

// FromSeq returns a single-pass range that pulls its elements from seq.
//
// Each Begin starts a new pull of seq and reads its first element, which is
// how the range knows whether it is empty. Cursors release the pull when
// they reach the end; a traversal abandoned earlier must call Stop.
func FromSeq[T any](seq iter.Seq[T]) Range[T] {
	return &seqRange[T]{seq: seq}
}

type seqRange[T any] struct {
	seq iter.Seq[T]
}

func (r *seqRange[T]) Begin() Cursor[T] {
	next, stop := iter.Pull(r.seq)
	c := &seqCursor[T]{r: r, next: next, stop: stop}
	c.Next()
	return lift[T](c, Input)
}

func (r *seqRange[T]) AtEnd(c Cursor[T]) bool {
	sc, ok := lower(c).(*seqCursor[T])
	if !ok || sc.r != r {
		panic("concat: cursor does not belong to this range")
	}
	return sc.done
}

type seqCursor[T any] struct {
	r    *seqRange[T]
	next func() (T, bool)
	stop func()
	v    T
	done bool
}

func (c *seqCursor[T]) Value() T { return c.v }

func (c *seqCursor[T]) Next() {
	var ok bool
	if c.v, ok = c.next(); !ok {
		c.done = true
		c.stop()
	}
}

func (c *seqCursor[T]) Stop() { c.stop() }

// All returns an iterator over the elements of r. It stops the cursor when
// the loop ends early.
func All[T any](r Range[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		c := r.Begin()
		defer stop(c)
		for ; !r.AtEnd(c); c.Next() {
			if !yield(c.Value()) {
				return
			}
		}
	}
}

// Collect returns the elements of r in a new slice. r must be bounded.
func Collect[T any](r Range[T]) []T {
	n, _ := Size(r)
	return slices.AppendSeq(make([]T, 0, n), All(r))
}

// Count returns the number of elements in r, in constant time when r is
// Sized. r must be bounded.
func Count[T any](r Range[T]) int {
	if n, ok := Size(r); ok {
		return n
	}
	var n int
	for range All(r) {
		n++
	}
	return n
}

// Seek returns a cursor n elements past the beginning of r. Random-access
// cursors jump directly; others step n times.
func Seek[T any](r Range[T], n int) Cursor[T] {
	c := r.Begin()
	if ra, ok := c.(RandomAccessCursor[T]); ok {
		ra.Advance(n)
		return c
	}
	for ; n > 0; n-- {
		c.Next()
	}
	return c
}

// Backward returns an iterator over the elements of r from last to first.
// r must be bounded. A CommonRange starts from End; any other range is
// first walked to its end with a clone of Begin.
func Backward[T any](r Range[T]) (iter.Seq[T], error) {
	if CategoryOf(r) < Bidirectional {
		return nil, ErrNotBidirectional
	}

	return func(yield func(T) bool) {
		first := r.Begin().(ForwardCursor[T])
		c, ok := endOf(r)
		if !ok {
			c = first.Clone()
			for !r.AtEnd(c) {
				c.Next()
			}
		}

		b := c.(BidirectionalCursor[T])
		for !b.Equal(first) {
			b.Prev()
			if !yield(b.Value()) {
				return
			}
		}
	}, nil
}
