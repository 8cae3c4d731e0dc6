// Package loser Taken from talk: https://github.com/bboreham/go-loser/blob/iter/tree.go.
// Thank you Bryan
package loser

import (
	"iter"

	"github.com/davidvella/concat"
)

// New returns a tree merging the sorted ranges in slots. maxVal must not
// be less than any value in the ranges.
func New[E any](slots []concat.Range[E], maxVal E, less func(E, E) bool) *Tree[E] {
	t := Tree[E]{
		maxVal: maxVal,
		nodes:  make([]node[E], len(slots)*2),
		slots:  slots,
		less:   less,
	}
	return &t
}

// A loser tree is a binary tree laid out such that nodes N and N+1 have parent N/2.
// We store M leaf nodes in positions M...2M-1, and M-1 internal nodes in positions 1..M-1.
// Node 0 is a special node, containing the winner of the contest.
type Tree[E any] struct {
	maxVal E
	nodes  []node[E]
	slots  []concat.Range[E]
	less   func(E, E) bool
}

type node[E any] struct {
	// index is the loser for all nodes except the 0th, where it is the winner.
	index int
	// value is copied from the loser node, or the winner for node 0.
	value E
	// cur and slot are only populated for leaf nodes.
	cur  concat.Cursor[E]
	slot concat.Range[E]
}

func (t *Tree[E]) moveNext(index int) bool {
	n := &t.nodes[index]
	if !n.slot.AtEnd(n.cur) {
		n.value = n.cur.Value()
		n.cur.Next()
		return true
	}
	n.value = t.maxVal
	n.index = -1
	return false
}

// All returns an iterator over the merged values. Each call starts a new
// traversal of every slot.
func (t *Tree[E]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		if len(t.nodes) == 0 {
			return
		}
		m := len(t.slots)
		for i, s := range t.slots {
			leaf := &t.nodes[i+m]
			leaf.index, leaf.slot, leaf.cur = 0, s, s.Begin()
			defer stop(leaf.cur)
			t.moveNext(i + m) // Read the first value of each slot.
		}
		t.initialize()
		for t.nodes[t.nodes[0].index].index != -1 &&
			yield(t.nodes[0].value) {
			t.moveNext(t.nodes[0].index)
			t.replayGames(t.nodes[0].index)
		}
	}
}

// Range returns the merged values as a single-pass range, so that a merge
// can itself take part in a concatenation.
func (t *Tree[E]) Range() concat.Range[E] {
	return concat.FromSeq(t.All())
}

func stop[E any](c concat.Cursor[E]) {
	if s, ok := c.(concat.Stopper); ok {
		s.Stop()
	}
}

func (t *Tree[E]) initialize() {
	winner := t.playGame(1)
	t.nodes[0].index = winner
	t.nodes[0].value = t.nodes[winner].value
}

// Find the winner at position pos; if it is a non-leaf node, store the loser.
// pos must be >= 1 and < len(t.nodes).
func (t *Tree[E]) playGame(pos int) int {
	nodes := t.nodes
	if pos >= len(nodes)/2 {
		return pos
	}
	left := t.playGame(pos * 2)
	right := t.playGame(pos*2 + 1)
	var loser, winner int
	if t.less(nodes[right].value, nodes[left].value) {
		loser, winner = left, right
	} else {
		loser, winner = right, left
	}
	nodes[pos].index = loser
	nodes[pos].value = nodes[loser].value
	return winner
}

// Starting at pos, which is a winner, re-consider all values up to the root.
func (t *Tree[E]) replayGames(pos int) {
	nodes := t.nodes
	winningValue := nodes[pos].value
	for n := parent(pos); n != 0; n = parent(n) {
		node := &nodes[n]
		if t.less(node.value, winningValue) {
			// Record pos as the loser here, and the old loser is the new winner.
			node.index, pos = pos, node.index
			node.value, winningValue = winningValue, node.value
		}
	}
	// pos is now the winner; store it in node 0.
	nodes[0].index = pos
	nodes[0].value = winningValue
}

func parent(i int) int { return i >> 1 }
