// Package sparse provides a fixed-capacity array in which only some
// indices hold values. It backs the site storage of a lattice whose
// bounding box contains positions no region occupies.
package sparse

import "fmt"

// Array stores at most Cap values addressed by index. The zero value is
// an empty array with capacity 0; use New to size one.
type Array[T any] struct {
	slots []slot[T]
}

type slot[T any] struct {
	set   bool
	value T
}

// New returns an empty array with capacity n.
func New[T any](n int) *Array[T] {
	return &Array[T]{slots: make([]slot[T], n)}
}

// Cap reports the index capacity.
func (a *Array[T]) Cap() int { return len(a.slots) }

// Len reports how many indices currently hold a value.
func (a *Array[T]) Len() int {
	n := 0
	for i := range a.slots {
		if a.slots[i].set {
			n++
		}
	}
	return n
}

// Get returns the value at index i and whether one is set.
// An out-of-range index reads as unset.
func (a *Array[T]) Get(i int) (T, bool) {
	if i < 0 || i >= len(a.slots) || !a.slots[i].set {
		var zero T
		return zero, false
	}
	return a.slots[i].value, true
}

// At returns the value at index i, or an error when the index is out of
// range or holds no value.
func (a *Array[T]) At(i int) (T, error) {
	v, ok := a.Get(i)
	if !ok {
		var zero T
		return zero, fmt.Errorf("sparse: no value at index %d", i)
	}
	return v, nil
}

// Set stores v at index i. Out-of-range indices panic; the caller owns
// index validity.
func (a *Array[T]) Set(i int, v T) {
	a.slots[i] = slot[T]{set: true, value: v}
}

// Has reports whether index i holds a value.
func (a *Array[T]) Has(i int) bool {
	return i >= 0 && i < len(a.slots) && a.slots[i].set
}

// Clear unsets every index, keeping the capacity.
func (a *Array[T]) Clear() {
	for i := range a.slots {
		a.slots[i] = slot[T]{}
	}
}

// Resize discards all values and changes the capacity to n.
func (a *Array[T]) Resize(n int) {
	a.slots = make([]slot[T], n)
}

// Each calls fn for every set index in ascending order.
func (a *Array[T]) Each(fn func(i int, v T)) {
	for i := range a.slots {
		if a.slots[i].set {
			fn(i, a.slots[i].value)
		}
	}
}
