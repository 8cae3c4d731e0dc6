// Package ordered provides a sorted set backed by a B-tree that can take
// part in a concatenation.
//
// A Set is a bidirectional, sized, common range. Its cursors hold the value
// they point at rather than a position in the tree, so stepping a cursor
// looks up the neighbouring value. This keeps cursors valid while the set
// changes: a cursor on a deleted value still steps to the values around it.
package ordered

import (
	"github.com/davidvella/concat"
	"github.com/google/btree"
)

const degree = 8

// Set is a set of values ordered by a less function. Values for which
// neither is less than the other are the same value.
type Set[T any] struct {
	tree *btree.BTreeG[T]
	less func(a, b T) bool
}

func New[T any](less func(a, b T) bool) *Set[T] {
	return &Set[T]{
		tree: btree.NewG(degree, less),
		less: less,
	}
}

// Insert adds v, replacing an equal value. It reports whether a value was
// replaced.
func (s *Set[T]) Insert(v T) bool {
	_, replaced := s.tree.ReplaceOrInsert(v)
	return replaced
}

// Delete removes the value equal to v and reports whether there was one.
func (s *Set[T]) Delete(v T) bool {
	_, ok := s.tree.Delete(v)
	return ok
}

func (s *Set[T]) Has(v T) bool   { return s.tree.Has(v) }
func (s *Set[T]) Len() int       { return s.tree.Len() }
func (s *Set[T]) Min() (T, bool) { return s.tree.Min() }
func (s *Set[T]) Max() (T, bool) { return s.tree.Max() }

// Clear removes every value.
func (s *Set[T]) Clear() { s.tree.Clear(false) }

// Clone returns a copy of the set. The copy shares nodes with s until
// either is modified, so cloning is cheap.
func (s *Set[T]) Clone() *Set[T] {
	return &Set[T]{tree: s.tree.Clone(), less: s.less}
}

func (s *Set[T]) Category() concat.Category { return concat.Bidirectional }

func (s *Set[T]) Begin() concat.Cursor[T] {
	v, ok := s.tree.Min()
	return &Cursor[T]{s: s, v: v, end: !ok}
}

func (s *Set[T]) End() concat.Cursor[T] {
	return &Cursor[T]{s: s, end: true}
}

func (s *Set[T]) AtEnd(c concat.Cursor[T]) bool {
	return c.(*Cursor[T]).end
}

// Cursor is a position in a Set.
type Cursor[T any] struct {
	s   *Set[T]
	v   T
	end bool
}

func (c *Cursor[T]) Value() T { return c.v }

// Next moves to the smallest value greater than the current one.
func (c *Cursor[T]) Next() {
	if c.end {
		return
	}
	found := false
	c.s.tree.AscendGreaterOrEqual(c.v, func(item T) bool {
		if !c.s.less(c.v, item) {
			return true
		}
		c.v, found = item, true
		return false
	})
	if !found {
		var zero T
		c.v, c.end = zero, true
	}
}

// Prev moves to the greatest value less than the current one, or to the
// maximum from the end. Prev on the first value is undefined.
func (c *Cursor[T]) Prev() {
	if c.end {
		if v, ok := c.s.tree.Max(); ok {
			c.v, c.end = v, false
		}
		return
	}
	c.s.tree.DescendLessOrEqual(c.v, func(item T) bool {
		if !c.s.less(item, c.v) {
			return true
		}
		c.v = item
		return false
	})
}

func (c *Cursor[T]) Clone() concat.Cursor[T] {
	cp := *c
	return &cp
}

func (c *Cursor[T]) Equal(o concat.Cursor[T]) bool {
	oc, ok := o.(*Cursor[T])
	if !ok || oc.s != c.s || oc.end != c.end {
		return false
	}
	return c.end || (!c.s.less(c.v, oc.v) && !c.s.less(oc.v, c.v))
}
