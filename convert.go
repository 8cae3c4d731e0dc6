package concat

// Map views r as a range of T by applying f to each element as it is read.
//
// Map is how slots with different element types meet in one view: f is an
// ordinary function, so the compiler rejects conversions that do not exist.
// Two ranges of distinct types implementing a shared interface I join as
// ranges of I:
//
//	concat.New(
//	    concat.Map(puts, func(r record.Impl) record.Record { return r }),
//	    concat.Map(deletes, func(r record.Tombstone) record.Record { return r }),
//	)
//
// The result keeps r's category, and is Sized or a CommonRange when r is.
func Map[E, T any](r Range[E], f func(E) T) Range[T] {
	m := &mapped[E, T]{r: r, f: f, cat: CategoryOf(r)}
	_, sized := r.(Sized)
	_, common := r.(CommonRange[E])
	return expose[T](m, sized, common)
}

// Deref views a range of pointers as a range of the values they point to.
// Every read copies the pointee; writes through the view are not possible.
func Deref[T any](r Range[*T]) Range[T] {
	return Map(r, func(p *T) T { return *p })
}

type mapped[E, T any] struct {
	r   Range[E]
	f   func(E) T
	cat Category
}

func (m *mapped[E, T]) Category() Category { return m.cat }

func (m *mapped[E, T]) Begin() Cursor[T] {
	return lift[T](&mapCursor[E, T]{m: m, c: m.r.Begin()}, m.cat)
}

func (m *mapped[E, T]) AtEnd(c Cursor[T]) bool {
	mc, ok := lower(c).(*mapCursor[E, T])
	if !ok || mc.m != m {
		panic("concat: cursor does not belong to this range")
	}
	return m.r.AtEnd(mc.c)
}

func (m *mapped[E, T]) slotErr() error { return Err(m.r) }

func (m *mapped[E, T]) length() int { return m.r.(Sized).Len() }

func (m *mapped[E, T]) end() Cursor[T] {
	return lift[T](&mapCursor[E, T]{m: m, c: m.r.(CommonRange[E]).End()}, m.cat)
}

type mapCursor[E, T any] struct {
	m *mapped[E, T]
	c Cursor[E]
}

func (c *mapCursor[E, T]) Value() T { return c.m.f(c.c.Value()) }
func (c *mapCursor[E, T]) Next()    { c.c.Next() }
func (c *mapCursor[E, T]) Stop()    { stop(c.c) }

func (c *mapCursor[E, T]) clone() core[T] {
	return &mapCursor[E, T]{m: c.m, c: c.c.(ForwardCursor[E]).Clone()}
}

func (c *mapCursor[E, T]) equal(o core[T]) bool {
	oc, ok := o.(*mapCursor[E, T])
	return ok && oc.m == c.m && c.c.(ForwardCursor[E]).Equal(oc.c)
}

func (c *mapCursor[E, T]) prev()         { c.c.(BidirectionalCursor[E]).Prev() }
func (c *mapCursor[E, T]) advance(n int) { c.c.(RandomAccessCursor[E]).Advance(n) }
func (c *mapCursor[E, T]) index() int    { return c.c.(RandomAccessCursor[E]).Index() }
