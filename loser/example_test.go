package loser_test

import (
	"fmt"
	"math"

	"github.com/davidvella/concat"
	"github.com/davidvella/concat/loser"
)

// ExampleNew_basic demonstrates basic usage of a loser tree to merge sorted sequences.
func ExampleNew_basic() {
	// Create three sorted ranges
	seq1 := concat.Values(1, 4, 7)
	seq2 := concat.Values(2, 5, 8)
	seq3 := concat.Values(3, 6, 9)

	// Create a loser tree to merge the ranges
	tree := loser.New(
		[]concat.Range[int]{seq1, seq2, seq3},
		math.MaxInt,
		func(a, b int) bool { return a < b },
	)

	// Print merged sequence
	for v := range tree.All() {
		fmt.Printf("%d ", v)
	}

	// Output: 1 2 3 4 5 6 7 8 9
}

// ExampleNew_strings shows how to use the loser tree with string sequences.
func ExampleNew_strings() {
	// Create ranges of sorted strings
	seq1 := concat.Values("apple", "dog", "zebra")
	seq2 := concat.Values("banana", "elephant")
	seq3 := concat.Values("cat", "fish")

	// Create loser tree for strings
	tree := loser.New(
		[]concat.Range[string]{seq1, seq2, seq3},
		"zzz", // Maximum possible string value
		func(a, b string) bool { return a < b },
	)

	// Print merged sequence
	for v := range tree.All() {
		fmt.Printf("%s ", v)
	}

	// Output: apple banana cat dog elephant fish zebra
}

// ExampleNew_empty demonstrates handling empty ranges.
func ExampleNew_empty() {
	// Create mix of empty and non-empty ranges
	seq1 := concat.Values(1, 3, 5)
	seq2 := concat.Values[int]() // Empty range
	seq3 := concat.Values(2, 4)

	tree := loser.New(
		[]concat.Range[int]{seq1, seq2, seq3},
		math.MaxInt,
		func(a, b int) bool { return a < b },
	)

	// Print merged sequence
	for v := range tree.All() {
		fmt.Printf("%d ", v)
	}

	// Output: 1 2 3 4 5
}

// ExampleTree_Range concatenates a merge with a trailing range.
func ExampleTree_Range() {
	tree := loser.New(
		[]concat.Range[int]{concat.Values(1, 4), concat.Values(2, 3)},
		math.MaxInt,
		func(a, b int) bool { return a < b },
	)

	v := concat.New(tree.Range(), concat.Values(10, 11))
	fmt.Println(concat.Collect(v))

	// Output: [1 2 3 4 10 11]
}
