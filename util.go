package amp

import "golang.org/x/exp/constraints"

// roundUpPow2 rounds v up to the next power of two, the same way
// catrate's generic ring buffer validates its own size. A v of 0
// rounds to 1. Callers must reject v above half the type's range
// beforehand: rounding such a v overflows and wraps to 0 rather than
// returning an out-of-range result.
func roundUpPow2[T constraints.Unsigned](v T) T {
	if v == 0 {
		return 1
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	v++
	return v
}

func isPow2[T constraints.Unsigned](v T) bool {
	return v != 0 && v&(v-1) == 0
}
