package amp

import (
	"fmt"
	"sync/atomic"
)

// ringHeaderSize is the control-block layout: write_idx, read_idx, size,
// mask, all u32, already 8-byte aligned.
const ringHeaderSize = 16

// RingBuffer is a single-producer/single-consumer byte stream, same
// SPSC/power-of-two discipline as Mailbox but indexed in bytes instead of
// messages. It is byte-granular, not frame-granular: Write and Read
// return the number of bytes actually moved, which may be less than
// requested. Callers must treat it like a pipe, not a datagram channel.
type RingBuffer struct {
	arena    *Arena
	handle   Handle
	platform Platform
	size     uint32
	mask     uint32
}

// NewRingBuffer allocates a ring buffer of exactly size bytes, which must
// be a power of two — unlike Mailbox slots, size is never rounded.
func NewRingBuffer(a *Arena, platform Platform, size uint32) (*RingBuffer, error) {
	if size == 0 || !isPow2(size) {
		return nil, fmt.Errorf("%w: ringbuf: size %d is not a nonzero power of two", ErrInvalidArgument, size)
	}
	if size > maxCapacity {
		return nil, fmt.Errorf("%w: ringbuf: size %d exceeds 2^31", ErrInvalidArgument, size)
	}

	h, err := a.Alloc(ringHeaderSize)
	if err != nil {
		return nil, err
	}
	if _, err := a.Alloc(size); err != nil {
		return nil, err
	}

	rb := &RingBuffer{arena: a, handle: h, platform: platform, size: size, mask: size - 1}
	rb.writeIdx().Store(0)
	rb.readIdx().Store(0)
	a.atomicU32At(h, 8).Store(size)
	a.atomicU32At(h, 12).Store(size - 1)
	return rb, nil
}

func (rb *RingBuffer) writeIdx() *atomic.Uint32 { return rb.arena.atomicU32At(rb.handle, 0) }
func (rb *RingBuffer) readIdx() *atomic.Uint32  { return rb.arena.atomicU32At(rb.handle, 4) }

func (rb *RingBuffer) data() []byte {
	return rb.arena.regionBytes(rb.handle, ringHeaderSize, rb.size)
}

// Destroy is a no-op; the arena never reclaims individual allocations.
func (rb *RingBuffer) Destroy() {}

// Available returns the number of bytes pending read. Racy against the
// producer; advisory only, for flow-control heuristics.
func (rb *RingBuffer) Available() uint32 {
	return rb.writeIdx().Load() - rb.readIdx().Load()
}

// FreeSpace returns the number of bytes that can be written before the
// buffer is full. Racy against the consumer; advisory only.
func (rb *RingBuffer) FreeSpace() uint32 {
	return rb.size - rb.Available()
}

// Write copies min(len(data), FreeSpace()) bytes into the buffer and
// returns that count. A short write is normal, not an error.
func (rb *RingBuffer) Write(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	free := rb.FreeSpace()
	n := uint32(len(data))
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}

	w := rb.writeIdx().Load()
	buf := rb.data()
	start := w & rb.mask
	first := rb.size - start
	if first > n {
		first = n
	}
	copy(buf[start:], data[:first])
	if n > first {
		copy(buf[:n-first], data[first:n])
	}

	rb.platform.MemoryBarrier() // publication point: payload before write_idx
	rb.writeIdx().Store(w + n)
	return int(n)
}

// Read copies min(len(buf), Available()) bytes out of the buffer and
// returns that count. A short read is normal, not an error.
func (rb *RingBuffer) Read(buf []byte) int {
	if len(buf) == 0 {
		return 0
	}

	avail := rb.Available()
	n := uint32(len(buf))
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	r := rb.readIdx().Load()
	data := rb.data()
	start := r & rb.mask
	first := rb.size - start
	if first > n {
		first = n
	}
	copy(buf[:first], data[start:])
	if n > first {
		copy(buf[first:n], data[:n-first])
	}

	rb.platform.MemoryBarrier() // consumption point: payload before read_idx
	rb.readIdx().Store(r + n)
	return int(n)
}

// Clear resets the buffer to empty. It is a consumer-side operation only
// — it sets read_idx = write_idx, so calling it from the producer would
// silently drop data in flight. The package does not guard against this
// misuse; spec.md leaves it undefined behavior, same as the firmware it
// is modeled on.
func (rb *RingBuffer) Clear() {
	rb.readIdx().Store(rb.writeIdx().Load())
	rb.platform.MemoryBarrier()
}

// Size returns the ring buffer's fixed capacity in bytes.
func (rb *RingBuffer) Size() uint32 { return rb.size }
