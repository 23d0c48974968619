package amp

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// allocAlign is the alignment (and rounding granularity) of every
// allocation handed out by Arena.Alloc, matching amp_shmem_alloc's 8-byte
// rounding.
const allocAlign = 8

// Handle is an opaque offset into an Arena's backing region. It is stable
// for the arena's lifetime and safe to copy, compare, and log; it carries
// no Go pointer, so it survives being embedded in a struct that is itself
// allocated from the arena. It is only ever meaningful relative to the
// Arena that produced it.
type Handle uint32

// Region describes the span a Handle was found to lie within, returned by
// Arena.GetRegion.
type Region struct {
	Base  uint32
	Size  uint32
	Flags uint32
}

// Arena is a bump allocator over a fixed-size backing region. It never
// reclaims: at the lifetimes this runtime targets (program duration,
// allocation only during setup) the complexity of a free-list allocator
// is not worth its failure surface. A zero Arena is not ready to use;
// call Init first.
//
// Re-initializing an Arena that already has live handles invalidates all
// of them — Init does not check for this, by design, matching
// amp_shmem_init's documented contract.
type Arena struct {
	mem       []byte
	allocated atomic.Uint32
}

// Init takes ownership of base, zeroes it, and resets the allocator. base
// stands in for the original (physical_base, size) pair: its address is
// not meaningful here, only its identity and length.
func (a *Arena) Init(base []byte) error {
	if len(base) == 0 {
		return fmt.Errorf("%w: arena: zero-length region", ErrInvalidArgument)
	}
	clear(base)
	a.mem = base
	a.allocated.Store(0)
	return nil
}

// Alloc rounds size up to a multiple of 8 and bumps the allocator,
// returning a Handle to the start of the new region. Allocations never
// move and are never reclaimed individually; see Free.
func (a *Arena) Alloc(size uint32) (Handle, error) {
	if size == 0 {
		return 0, fmt.Errorf("%w: arena: zero-size alloc", ErrInvalidArgument)
	}
	if a.mem == nil {
		return 0, fmt.Errorf("%w: arena: not initialized", ErrInvalidArgument)
	}

	rounded := (size + allocAlign - 1) &^ (allocAlign - 1)

	for {
		cur := a.allocated.Load()
		next := cur + rounded
		if next < cur || uint64(next) > uint64(len(a.mem)) {
			return 0, fmt.Errorf("%w: arena: need %d bytes, have %d free", ErrResourceExhausted, rounded, uint32(len(a.mem))-cur)
		}
		if a.allocated.CompareAndSwap(cur, next) {
			return Handle(cur), nil
		}
	}
}

// Free is a no-op. The bump allocator does not support individual frees;
// this is documented behavior, not a missing feature.
func (a *Arena) Free(Handle) {}

// GetRegion succeeds iff ptr lies within the range handed out so far, and
// reports the whole arena's base/size (flags are always zero — the
// original firmware never set them either).
func (a *Arena) GetRegion(ptr Handle) (Region, error) {
	if a.mem == nil {
		return Region{}, fmt.Errorf("%w: arena: not initialized", ErrInvalidArgument)
	}
	if uint32(ptr) >= a.allocated.Load() {
		return Region{}, fmt.Errorf("%w: arena: handle out of range", ErrInvalidArgument)
	}
	return Region{Base: 0, Size: uint32(len(a.mem)), Flags: 0}, nil
}

// bytesAt returns the len-byte window starting at handle, panicking if it
// would run past the arena. Every primitive's control-block accessors
// (mailbox, ring buffer, semaphore) are built on this; none of them are
// reachable before a successful New* constructor, which already validated the
// range, so the panic path is unreachable in practice and exists only to
// catch a programming error in this package itself.
func (a *Arena) bytesAt(h Handle, length uint32) []byte {
	start := uint32(h)
	end := start + length
	if end < start || uint64(end) > uint64(len(a.mem)) {
		panic("amp: arena: control block out of range")
	}
	return a.mem[start:end]
}

// atomicU32At returns an atomic view over the 4 bytes at handle+offset.
// The caller is responsible for having allocated those bytes 8-byte
// aligned (every Arena.Alloc result is), so this is always safely
// aligned for the architectures Go supports.
func (a *Arena) atomicU32At(h Handle, offset uint32) *atomic.Uint32 {
	b := a.bytesAt(h+Handle(offset), 4)
	return (*atomic.Uint32)(unsafe.Pointer(&b[0]))
}

// regionBytes returns the mutable byte window at handle+offset of the
// given length, used for raw payload storage (mailbox slots, ring buffer
// data) that this package does not need atomic access to as a whole —
// only the index words guarding it are atomic.
func (a *Arena) regionBytes(h Handle, offset, length uint32) []byte {
	return a.bytesAt(h+Handle(offset), length)
}
