package concat

import "errors"

// New returns a range that traverses first and then each of rest, in order.
//
// The slots are held, not copied: the view reads them lazily through their
// own cursors. The result reports the joint category of the slots (see
// Category). It implements Sized when every slot does, with Len the sum of
// the slot lengths, and CommonRange when every slot does.
func New[T any](first Range[T], rest ...Range[T]) Range[T] {
	slots := make([]Range[T], 0, 1+len(rest))
	slots = append(slots, first)
	slots = append(slots, rest...)

	v := &view[T]{
		slots: slots,
		cat:   jointCategory(slots),
	}

	sized, common := true, true
	for _, s := range slots {
		if _, ok := s.(Sized); !ok {
			sized = false
		}
		if _, ok := s.(CommonRange[T]); !ok {
			common = false
		}
	}

	return expose[T](v, sized, common)
}

// jointCategory is the strongest category every slot supports.
// Random access also needs every slot sized, to locate offsets across slot
// boundaries. Stepping backwards needs an end cursor for every slot that can
// be stepped into from the following one.
func jointCategory[T any](slots []Range[T]) Category {
	cat := RandomAccess
	for i, s := range slots {
		c := CategoryOf(s)
		if _, sized := s.(Sized); c == RandomAccess && !sized {
			c = Bidirectional
		}
		if c == Bidirectional && i < len(slots)-1 && !reachesEnd(s) {
			c = Forward
		}
		cat = min(cat, c)
	}
	return cat
}

func reachesEnd[T any](s Range[T]) bool {
	if _, ok := s.(CommonRange[T]); ok {
		return true
	}
	_, sized := s.(Sized)
	return sized && CategoryOf(s) == RandomAccess
}

type view[T any] struct {
	slots []Range[T]
	cat   Category
}

// Category reports the joint category of the slots.
func (v *view[T]) Category() Category { return v.cat }

func (v *view[T]) slotErr() error {
	var errs []error
	for _, s := range v.slots {
		errs = append(errs, Err(s))
	}
	return errors.Join(errs...)
}

func (v *view[T]) Begin() Cursor[T] {
	c := &viewCursor[T]{v: v, pos: v.slots[0].Begin()}
	c.settle()
	return lift[T](c, v.cat)
}

// AtEnd reports whether c is positioned in the last slot at that slot's end.
func (v *view[T]) AtEnd(c Cursor[T]) bool {
	vc := v.cursor(c)
	return vc.i == len(v.slots)-1 && v.slots[vc.i].AtEnd(vc.pos)
}

func (v *view[T]) length() int {
	var n int
	for _, s := range v.slots {
		n += s.(Sized).Len()
	}
	return n
}

func (v *view[T]) end() Cursor[T] {
	last := len(v.slots) - 1
	return lift[T](&viewCursor[T]{
		v:   v,
		i:   last,
		pos: v.slots[last].(CommonRange[T]).End(),
	}, v.cat)
}

func (v *view[T]) cursor(c Cursor[T]) *viewCursor[T] {
	vc, ok := lower(c).(*viewCursor[T])
	if !ok || vc.v != v {
		panic("concat: cursor does not belong to this view")
	}
	return vc
}

// viewCursor is a position (i, pos): pos is a cursor of slot i. Outside of
// the last slot, pos is never at its slot's end.
type viewCursor[T any] struct {
	v   *view[T]
	i   int
	pos Cursor[T]
}

func (c *viewCursor[T]) Value() T { return c.pos.Value() }

func (c *viewCursor[T]) Next() {
	c.pos.Next()
	c.settle()
}

func (c *viewCursor[T]) Stop() { stop(c.pos) }

// settle moves past exhausted slots, any number of them, until it reaches
// an element or the last slot.
func (c *viewCursor[T]) settle() {
	last := len(c.v.slots) - 1
	for c.i < last && c.v.slots[c.i].AtEnd(c.pos) {
		stop(c.pos)
		c.i++
		c.pos = c.v.slots[c.i].Begin()
	}
}

func (c *viewCursor[T]) clone() core[T] {
	return &viewCursor[T]{
		v:   c.v,
		i:   c.i,
		pos: c.pos.(ForwardCursor[T]).Clone(),
	}
}

func (c *viewCursor[T]) equal(o core[T]) bool {
	oc, ok := o.(*viewCursor[T])
	return ok && oc.v == c.v && oc.i == c.i && c.pos.(ForwardCursor[T]).Equal(oc.pos)
}

func (c *viewCursor[T]) prev() {
	for c.i > 0 && c.atSlotBegin() {
		c.i--
		c.pos, _ = endOf(c.v.slots[c.i])
	}
	c.pos.(BidirectionalCursor[T]).Prev()
}

func (c *viewCursor[T]) atSlotBegin() bool {
	if ra, ok := c.pos.(RandomAccessCursor[T]); ok {
		return ra.Index() == 0
	}
	return c.pos.(ForwardCursor[T]).Equal(c.v.slots[c.i].Begin())
}

func (c *viewCursor[T]) advance(n int) {
	c.seek(c.index() + n)
}

// seek positions the cursor at global offset k using the prefix sums of the
// slot lengths. An offset on a slot boundary belongs to the next non-empty
// slot; k equal to the total length is the end of the last slot.
func (c *viewCursor[T]) seek(k int) {
	last := len(c.v.slots) - 1
	for i, s := range c.v.slots {
		n := s.(Sized).Len()
		if k < n || i == last {
			c.i = i
			c.pos = s.Begin()
			c.pos.(RandomAccessCursor[T]).Advance(k)
			return
		}
		k -= n
	}
}

func (c *viewCursor[T]) index() int {
	var n int
	for _, s := range c.v.slots[:c.i] {
		n += s.(Sized).Len()
	}
	return n + c.pos.(RandomAccessCursor[T]).Index()
}
