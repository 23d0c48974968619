package amp

import (
	"fmt"
	"sync/atomic"
	"time"
)

// semaphoreHeaderSize is the control-block layout: count (u32) followed
// by max_count (u32), matching struct amp_semaphore_s in the original
// firmware.
const semaphoreHeaderSize = 8

// Semaphore is a counting semaphore allocated from an Arena. Wait and
// Post are lock-free: both are a compare-and-swap loop over the count
// word, with no blocking primitive and no owner. It is not a mutex —
// nothing binds a successful Wait to the goroutine that calls Post, and
// Post without a prior Wait is the normal way to signal, not a bug.
type Semaphore struct {
	arena    *Arena
	handle   Handle
	platform Platform
	maxCount uint32
}

// NewSemaphore allocates a semaphore from a and sets its count to
// initial, which must not exceed max. max must be nonzero.
func NewSemaphore(a *Arena, platform Platform, initial, max uint32) (*Semaphore, error) {
	if max == 0 || initial > max {
		return nil, fmt.Errorf("%w: semaphore: initial=%d max=%d", ErrInvalidArgument, initial, max)
	}
	h, err := a.Alloc(semaphoreHeaderSize)
	if err != nil {
		return nil, err
	}
	s := &Semaphore{arena: a, handle: h, platform: platform, maxCount: max}
	s.countWord().Store(initial)
	s.maxWord().Store(max)
	return s, nil
}

func (s *Semaphore) countWord() *atomic.Uint32 { return s.arena.atomicU32At(s.handle, 0) }
func (s *Semaphore) maxWord() *atomic.Uint32   { return s.arena.atomicU32At(s.handle, 4) }

// Destroy is a no-op; the arena never reclaims individual allocations.
func (s *Semaphore) Destroy() {}

// TryWait attempts to decrement count without blocking. It returns
// ErrUnavailable if count is currently zero.
func (s *Semaphore) TryWait() error {
	cw := s.countWord()
	for {
		cur := cw.Load()
		if cur == 0 {
			return ErrUnavailable
		}
		if cw.CompareAndSwap(cur, cur-1) {
			s.platform.MemoryBarrier()
			return nil
		}
	}
}

// Wait decrements count, blocking (by polling TryWait) until it
// succeeds or timeout elapses. timeout == 0 waits forever.
func (s *Semaphore) Wait(timeout time.Duration) error {
	return pollTimed(s.platform, s.TryWait, timeout)
}

// Post increments count, up to max_count. It returns ErrOverflow if
// count is already at max_count — a legitimate backpressure signal from
// the caller's own protocol, not a race condition, and current behavior
// is pinned rather than changed.
func (s *Semaphore) Post() error {
	cw := s.countWord()
	max := s.maxCount
	for {
		cur := cw.Load()
		if cur >= max {
			return ErrOverflow
		}
		if cw.CompareAndSwap(cur, cur+1) {
			s.platform.MemoryBarrier()
			return nil
		}
	}
}

// Count is a plain load of the current count, for diagnostics only —
// never for synchronization, since it is stale the instant it is read.
func (s *Semaphore) Count() uint32 {
	return s.countWord().Load()
}
