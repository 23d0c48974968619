package amp

import (
	"sync/atomic"
	"time"
)

// CoreID identifies one of the cooperating cores. Core 0 is always the
// primary core; NewBoot refuses to run anywhere else.
type CoreID uint8

// PrimaryCore is the fixed id of the primary core, matching AMP_CORE0 in
// the original firmware.
const PrimaryCore CoreID = 0

// Platform is the set of hooks this package consumes but does not
// implement itself: core identification, secondary-core launch, the
// hardware data-memory barrier, and the monotonic tick source used by
// bounded waits. Exactly one Platform value exists per core — there is no
// global, thread-local lookup the way the original firmware's weak
// amp_get_core_id symbol works; the value is constructed once per
// goroutine at the point that goroutine is pinned to a core (see
// NewLocalPlatform).
type Platform interface {
	// CurrentCoreID reports the id of the core this Platform value
	// represents. It must be cheap; NewBoot calls it once.
	CurrentCoreID() CoreID

	// LaunchSecondaryCore starts core id running entry, handing it the
	// opaque stack hint (unused by the in-process reference
	// implementation; present so a bare-metal platform has somewhere to
	// put a real stack pointer). A platform with no boot hook configured
	// returns nil without launching anything — a stub success, matching
	// the weak-symbol fallback in the original amp_boot_core.
	LaunchSecondaryCore(id CoreID, entry func(), stackHint uintptr) error

	// MemoryBarrier is the one stand-in for the original firmware's
	// AMP_DMB(). Every publication point in this package — the producer
	// side of a mailbox send, the consumer side of a recv, a successful
	// semaphore CAS, a boot ready-bit set — calls it immediately after
	// the write it is meant to order.
	MemoryBarrier()

	// MonotonicTick returns a free-running, never-decreasing counter.
	// The timed-wait adapter only ever diffs two readings of it, so
	// wraparound and absolute value are both unspecified; only the unit
	// (TicksPerMillisecond) matters.
	MonotonicTick() uint64

	// TicksPerMillisecond documents the unit of MonotonicTick. It must
	// not change across the lifetime of a Platform value.
	TicksPerMillisecond() uint64
}

// fence is a process-wide dummy word whose sole purpose is to give
// MemoryBarrier an atomic read-modify-write to perform. Every
// cross-goroutine field this package actually publishes through is
// already an atomic.Uint32/atomic.Uint64, which on every architecture Go
// supports already carries the release/acquire pairing the spec's barrier
// describes; this call exists so the barrier has a concrete call site
// that a non-coherent-memory platform can replace with a real DMB plus
// cache maintenance, per spec.md's memory-attribute assumption.
var fence atomic.Uint32

// Local is the in-process reference Platform: every "core" is a goroutine,
// and all of them share one wall-clock epoch for their monotonic ticks.
// It is what the cmd/ example programs and this package's own tests use
// to drive two goroutines through the same discipline two physical cores
// would use.
type Local struct {
	id     CoreID
	cores  int
	epoch  time.Time
	launch func(id CoreID, entry func(), stackHint uintptr) error
}

// NewLocalPlatform returns a Platform value pinned to id, one of cores
// cooperating goroutines sharing epoch as their common tick reference.
// launch may be nil, in which case LaunchSecondaryCore is a no-op success
// — callers that want a real goroutine spawned should pass one that calls
// go entry().
func NewLocalPlatform(id CoreID, cores int, epoch time.Time, launch func(id CoreID, entry func(), stackHint uintptr) error) *Local {
	return &Local{id: id, cores: cores, epoch: epoch, launch: launch}
}

func (l *Local) CurrentCoreID() CoreID { return l.id }

func (l *Local) LaunchSecondaryCore(id CoreID, entry func(), stackHint uintptr) error {
	if l.launch == nil {
		return nil
	}
	return l.launch(id, entry, stackHint)
}

func (l *Local) MemoryBarrier() {
	fence.Add(1)
}

func (l *Local) MonotonicTick() uint64 {
	return uint64(time.Since(l.epoch).Nanoseconds())
}

func (l *Local) TicksPerMillisecond() uint64 {
	return uint64(time.Millisecond.Nanoseconds())
}
