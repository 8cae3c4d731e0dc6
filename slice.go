package concat

import "slices"

// Slice returns a random-access range over s. The range borrows s: element
// reads observe later writes to its backing array.
func Slice[T any](s []T) Range[T] {
	return indexed(len(s), func(i int) T { return s[i] })
}

// Values returns a random-access range over its own copy of vs.
func Values[T any](vs ...T) Range[T] {
	return Slice(slices.Clone(vs))
}

// Refs returns a random-access range over the addresses of the elements of
// s, so that writes through the elements reach s.
func Refs[T any](s []T) Range[*T] {
	return indexed(len(s), func(i int) *T { return &s[i] })
}

// Iota returns the unbounded random-access range start, start+1, ...
// It is neither Sized nor a CommonRange and never reports its end.
func Iota(start int) Range[int] {
	return indexed(-1, func(i int) int { return start + i })
}

// IotaN returns the n integers start, start+1, ..., start+n-1.
func IotaN(start, n int) Range[int] {
	return indexed(max(n, 0), func(i int) int { return start + i })
}

// indexRange is a range addressed by position. n < 0 means unbounded.
type indexRange[T any] struct {
	n  int
	at func(int) T
}

func indexed[T any](n int, at func(int) T) Range[T] {
	r := &indexRange[T]{n: n, at: at}
	return expose[T](r, n >= 0, n >= 0)
}

func (r *indexRange[T]) Category() Category { return RandomAccess }

func (r *indexRange[T]) Begin() Cursor[T] {
	return lift[T](&indexCursor[T]{r: r}, RandomAccess)
}

func (r *indexRange[T]) AtEnd(c Cursor[T]) bool {
	ic, ok := lower(c).(*indexCursor[T])
	if !ok || ic.r != r {
		panic("concat: cursor does not belong to this range")
	}
	return r.n >= 0 && ic.i >= r.n
}

func (r *indexRange[T]) length() int { return r.n }

func (r *indexRange[T]) end() Cursor[T] {
	return lift[T](&indexCursor[T]{r: r, i: r.n}, RandomAccess)
}

type indexCursor[T any] struct {
	r *indexRange[T]
	i int
}

func (c *indexCursor[T]) Value() T      { return c.r.at(c.i) }
func (c *indexCursor[T]) Next()         { c.i++ }
func (c *indexCursor[T]) prev()         { c.i-- }
func (c *indexCursor[T]) advance(n int) { c.i += n }
func (c *indexCursor[T]) index() int    { return c.i }

func (c *indexCursor[T]) clone() core[T] {
	return &indexCursor[T]{r: c.r, i: c.i}
}

func (c *indexCursor[T]) equal(o core[T]) bool {
	oc, ok := o.(*indexCursor[T])
	return ok && oc.r == c.r && oc.i == c.i
}
