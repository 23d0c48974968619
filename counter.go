package amp

import "sync/atomic"

// SharedCounter is a plain atomic word allocated from an Arena, standing
// in for the bare `static volatile uint32_t shared_counter` the original
// firmware's shared_counter.c declares directly in its .bss section. It
// carries none of the higher-level protocol semantics the other
// primitives do — callers provide their own mutual exclusion (typically a
// binary Semaphore) around Add if they need read-modify-write atomicity
// across the whole operation.
type SharedCounter struct {
	arena  *Arena
	handle Handle
}

// NewSharedCounter allocates a zeroed counter word from a.
func NewSharedCounter(a *Arena) (*SharedCounter, error) {
	h, err := a.Alloc(4)
	if err != nil {
		return nil, err
	}
	c := &SharedCounter{arena: a, handle: h}
	c.word().Store(0)
	return c, nil
}

func (c *SharedCounter) word() *atomic.Uint32 { return c.arena.atomicU32At(c.handle, 0) }

// Load reads the current value.
func (c *SharedCounter) Load() uint32 { return c.word().Load() }

// Add adds delta and returns the new value. It is a single atomic
// read-modify-write, not a compare-and-swap loop — two concurrent callers
// both calling Add without external synchronization will not lose
// updates, but a caller that needs load-modify-store semantics (e.g.
// "increment only if below a cap") still needs its own CAS loop or a
// Semaphore, same as this field needed an external mutex in the original
// firmware's race-prone baseline version of the example.
func (c *SharedCounter) Add(delta int32) uint32 {
	return c.word().Add(uint32(delta))
}
