package utils

import (
	"cmp"
	"maps"
	"slices"
)

// SortedKeys gives map iteration a fixed order, so every run of a level plays out the same way.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

// AbsDiff is |a - b| for unsigned values.
func AbsDiff(a, b uint) uint {
	if a > b {
		return a - b
	}
	return b - a
}
