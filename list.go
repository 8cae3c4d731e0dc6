package concat

import "container/list"

// List returns a bidirectional range over l, whose element values must all
// be of type T. The range borrows l.
func List[T any](l *list.List) Range[T] {
	return expose[T](&listRange[T]{l: l}, true, true)
}

type listRange[T any] struct {
	l *list.List
}

func (r *listRange[T]) Category() Category { return Bidirectional }

func (r *listRange[T]) Begin() Cursor[T] {
	return lift[T](&listCursor[T]{r: r, e: r.l.Front()}, Bidirectional)
}

func (r *listRange[T]) AtEnd(c Cursor[T]) bool {
	lc, ok := lower(c).(*listCursor[T])
	if !ok || lc.r != r {
		panic("concat: cursor does not belong to this range")
	}
	return lc.e == nil
}

func (r *listRange[T]) length() int { return r.l.Len() }

// end is represented by a nil element.
func (r *listRange[T]) end() Cursor[T] {
	return lift[T](&listCursor[T]{r: r}, Bidirectional)
}

type listCursor[T any] struct {
	r *listRange[T]
	e *list.Element
}

func (c *listCursor[T]) Value() T { return c.e.Value.(T) }
func (c *listCursor[T]) Next()    { c.e = c.e.Next() }

func (c *listCursor[T]) prev() {
	if c.e == nil {
		c.e = c.r.l.Back()
		return
	}
	c.e = c.e.Prev()
}

func (c *listCursor[T]) clone() core[T] {
	return &listCursor[T]{r: c.r, e: c.e}
}

func (c *listCursor[T]) equal(o core[T]) bool {
	oc, ok := o.(*listCursor[T])
	return ok && oc.r == c.r && oc.e == c.e
}
