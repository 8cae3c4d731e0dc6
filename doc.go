// Package concat presents several ranges as one logical range without
// copying their elements.
//
// A range hands out cursors and recognises its own end. Ranges come in four
// categories, from weakest to strongest:
//   - Input: traversed once; cursors only read and advance
//   - Forward: cursors can be cloned and compared, so a range can be re-read
//   - Bidirectional: cursors also step backwards
//   - RandomAccess: cursors jump by any offset and report their index
//
// New joins ranges left to right. The result is only as strong as its
// weakest slot:
//
//	v := concat.New(
//	    concat.Slice([]int{1, 2}),
//	    concat.Values[int](),
//	    concat.IotaN(3, 2),
//	)
//	for x := range concat.All(v) {
//	    fmt.Println(x) // 1 2 3 4
//	}
//
// Capabilities are expressed through the method set of the returned values.
// A view whose slots are all Sized is Sized; a view whose slots are all
// CommonRange is a CommonRange; the cursor from Begin implements exactly the
// cursor interface of the joint category. Check for them with type assertions:
//
//	if s, ok := v.(concat.Sized); ok {
//	    fmt.Println(s.Len())
//	}
//	if c, ok := v.Begin().(concat.RandomAccessCursor[int]); ok {
//	    c.Advance(3)
//	}
//
// Every slot of a view has the same element type. Slots with other element
// types are adapted with Map, whose conversion function the compiler checks:
// two slices of different concrete types that implement a shared interface
// join as a range of that interface, while unrelated element types do not
// compile.
//
// Deref reads through pointers by copying the pointee. A view whose common
// element type is a value type therefore yields copies even when a slot
// could have aliased its storage through Refs. That is intended; pick the
// pointer element type when aliasing matters.
//
// End detection has two forms. AtEnd works on every view and is true only
// once the last slot reports its own end, so a view whose last slot is
// unbounded never ends. When every slot is a CommonRange the view also has
// End, a cursor that compares Equal to a cursor advanced past the last
// element.
//
// Views are lazy and not safe for concurrent use of one cursor. Slots that
// borrow their storage (Slice, Refs, List) must not be changed structurally
// while a cursor over them is alive.
package concat
