package concat

// Category is the traversal strength of a range. Categories are ordered:
// every range of a category also satisfies the weaker ones.
type Category int

const (
	// Input ranges can be traversed once. Cursors cannot be copied or compared.
	Input Category = iota
	// Forward ranges support multiple passes: cursors can be cloned and compared.
	Forward
	// Bidirectional ranges additionally step backwards.
	Bidirectional
	// RandomAccess ranges move by any offset in constant time.
	RandomAccess
)

func (c Category) String() string {
	switch c {
	case Input:
		return "input"
	case Forward:
		return "forward"
	case Bidirectional:
		return "bidirectional"
	case RandomAccess:
		return "random-access"
	default:
		return "unknown"
	}
}

// Cursor is a position in a range.
type Cursor[T any] interface {
	// Value returns the element at the cursor. The cursor must not be at the end.
	Value() T
	// Next moves the cursor to the following element.
	Next()
}

// Range is a sequence that hands out cursors and recognises its own end.
//
// AtEnd is the sentinel comparison: it reports whether c, obtained from this
// range's Begin, has moved past the last element. A range that never reports
// true is unbounded.
type Range[T any] interface {
	Begin() Cursor[T]
	AtEnd(c Cursor[T]) bool
}

// ForwardCursor is a cursor that can be forked and compared. Copying a cursor
// value does not fork it; use Clone.
type ForwardCursor[T any] interface {
	Cursor[T]
	Clone() Cursor[T]
	Equal(o Cursor[T]) bool
}

// BidirectionalCursor can step backwards.
type BidirectionalCursor[T any] interface {
	ForwardCursor[T]
	Prev()
}

// RandomAccessCursor moves by arbitrary offsets. Index is the number of
// elements between the range's begin and the cursor.
type RandomAccessCursor[T any] interface {
	BidirectionalCursor[T]
	Advance(n int)
	Index() int
}

// Sized is implemented by ranges that know their length in constant time.
type Sized interface {
	Len() int
}

// CommonRange is a range whose end is a cursor of the same kind as its
// begin. Such a cursor compares with Equal and, for bidirectional ranges,
// supports Prev.
type CommonRange[T any] interface {
	Range[T]
	End() Cursor[T]
}

// Categorized is implemented by ranges stronger than Input. A range that
// reports a category promises that its cursors implement the matching
// cursor interface.
type Categorized interface {
	Category() Category
}

// Stopper is implemented by cursors that hold resources which must be
// released when a traversal is abandoned before the end.
type Stopper interface {
	Stop()
}

// Failer is implemented by ranges whose cursors can fail without a way to
// say so, such as ranges decoding records from storage. Err returns the
// first failure; the traversal ends at it.
type Failer interface {
	Err() error
}

// slotErrors is implemented by ranges of this package that are built from
// other ranges.
type slotErrors interface {
	slotErr() error
}

// Err returns the failures reported by r. Views from New and Map report
// the failures of the ranges they were built from, at any depth.
func Err[T any](r Range[T]) error {
	switch x := r.(type) {
	case withLen[T]:
		return Err[T](x.shape)
	case withEnd[T]:
		return Err[T](x.shape)
	case withLenEnd[T]:
		return Err[T](x.shape)
	case Failer:
		return x.Err()
	case slotErrors:
		return x.slotErr()
	}
	return nil
}

// CategoryOf returns the category r reports, or Input if it reports none.
func CategoryOf[T any](r Range[T]) Category {
	if c, ok := r.(Categorized); ok {
		return c.Category()
	}
	return Input
}

// Size returns the length of r if it is Sized.
func Size[T any](r Range[T]) (int, bool) {
	if s, ok := r.(Sized); ok {
		return s.Len(), true
	}
	return 0, false
}

// endOf returns a cursor at the end of r, either from End or by advancing
// a random-access begin cursor by the range's length.
func endOf[T any](r Range[T]) (Cursor[T], bool) {
	if c, ok := r.(CommonRange[T]); ok {
		return c.End(), true
	}
	if CategoryOf(r) < RandomAccess {
		return nil, false
	}
	n, ok := Size(r)
	if !ok {
		return nil, false
	}
	c := r.Begin()
	c.(RandomAccessCursor[T]).Advance(n)
	return c, true
}

func stop[T any](c Cursor[T]) {
	if s, ok := c.(Stopper); ok {
		s.Stop()
	}
}
