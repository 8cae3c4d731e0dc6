package concat

// core is the package-internal cursor shared by the category wrappers
// below. The optional capabilities live in cloner, stepper and jumper; a
// wrapper only exposes what its category allows.
type core[T any] interface {
	Value() T
	Next()
}

type cloner[T any] interface {
	clone() core[T]
	equal(o core[T]) bool
}

type stepper interface {
	prev()
}

type jumper interface {
	advance(n int)
	index() int
}

type inputCursor[T any] struct{ c core[T] }

func (x inputCursor[T]) Value() T { return x.c.Value() }
func (x inputCursor[T]) Next()    { x.c.Next() }
func (x inputCursor[T]) Stop()    { stop[T](x.c) }

type forwardCursor[T any] struct{ c core[T] }

func (x forwardCursor[T]) Value() T { return x.c.Value() }
func (x forwardCursor[T]) Next()    { x.c.Next() }
func (x forwardCursor[T]) Stop()    { stop[T](x.c) }

func (x forwardCursor[T]) Clone() Cursor[T] {
	return forwardCursor[T]{x.c.(cloner[T]).clone()}
}

func (x forwardCursor[T]) Equal(o Cursor[T]) bool {
	return equal(x.c, o)
}

type bidirectionalCursor[T any] struct{ c core[T] }

func (x bidirectionalCursor[T]) Value() T { return x.c.Value() }
func (x bidirectionalCursor[T]) Next()    { x.c.Next() }
func (x bidirectionalCursor[T]) Prev()    { x.c.(stepper).prev() }
func (x bidirectionalCursor[T]) Stop()    { stop[T](x.c) }

func (x bidirectionalCursor[T]) Clone() Cursor[T] {
	return bidirectionalCursor[T]{x.c.(cloner[T]).clone()}
}

func (x bidirectionalCursor[T]) Equal(o Cursor[T]) bool {
	return equal(x.c, o)
}

type randomAccessCursor[T any] struct{ c core[T] }

func (x randomAccessCursor[T]) Value() T      { return x.c.Value() }
func (x randomAccessCursor[T]) Next()         { x.c.Next() }
func (x randomAccessCursor[T]) Prev()         { x.c.(stepper).prev() }
func (x randomAccessCursor[T]) Advance(n int) { x.c.(jumper).advance(n) }
func (x randomAccessCursor[T]) Index() int    { return x.c.(jumper).index() }
func (x randomAccessCursor[T]) Stop()         { stop[T](x.c) }

func (x randomAccessCursor[T]) Clone() Cursor[T] {
	return randomAccessCursor[T]{x.c.(cloner[T]).clone()}
}

func (x randomAccessCursor[T]) Equal(o Cursor[T]) bool {
	return equal(x.c, o)
}

// lift wraps c in the cursor type of category cat.
func lift[T any](c core[T], cat Category) Cursor[T] {
	switch cat {
	case RandomAccess:
		return randomAccessCursor[T]{c}
	case Bidirectional:
		return bidirectionalCursor[T]{c}
	case Forward:
		return forwardCursor[T]{c}
	default:
		return inputCursor[T]{c}
	}
}

// lower unwraps a cursor produced by lift.
func lower[T any](c Cursor[T]) core[T] {
	switch x := c.(type) {
	case inputCursor[T]:
		return x.c
	case forwardCursor[T]:
		return x.c
	case bidirectionalCursor[T]:
		return x.c
	case randomAccessCursor[T]:
		return x.c
	default:
		return nil
	}
}

func equal[T any](c core[T], o Cursor[T]) bool {
	oc := lower(o)
	if oc == nil {
		return false
	}
	return c.(cloner[T]).equal(oc)
}

// shape is a range implemented in this package. length and end are only
// called when expose was told the range is sized or common.
type shape[T any] interface {
	Range[T]
	Category() Category
	length() int
	end() Cursor[T]
}

type withLen[T any] struct{ shape[T] }

func (r withLen[T]) Len() int { return r.length() }

type withEnd[T any] struct{ shape[T] }

func (r withEnd[T]) End() Cursor[T] { return r.end() }

type withLenEnd[T any] struct{ shape[T] }

func (r withLenEnd[T]) Len() int       { return r.length() }
func (r withLenEnd[T]) End() Cursor[T] { return r.end() }

// expose returns s with Len and End in its method set only when they are
// meaningful.
func expose[T any](s shape[T], sized, common bool) Range[T] {
	switch {
	case sized && common:
		return withLenEnd[T]{s}
	case sized:
		return withLen[T]{s}
	case common:
		return withEnd[T]{s}
	default:
		return s
	}
}
