package amp

import "errors"

// Sentinel error kinds. Every fallible operation in this package returns
// one of these (or nil), wrapped with context via fmt.Errorf("%w: ...")
// where it helps; callers should match with errors.Is, never string
// comparison.
var (
	// ErrInvalidArgument covers a null/zero-value handle, a zero size, a
	// non-power-of-two where one is required, initial > max, or an
	// invalid core id.
	ErrInvalidArgument = errors.New("amp: invalid argument")

	// ErrUnavailable is returned by the non-blocking variant of an
	// operation that would otherwise need to wait: a full mailbox, an
	// empty mailbox, or a semaphore at zero. Always recoverable by retry.
	ErrUnavailable = errors.New("amp: unavailable")

	// ErrOverflow is returned by Semaphore.Post when count is already at
	// max_count. This is a contract violation by the caller, not a race.
	ErrOverflow = errors.New("amp: overflow")

	// ErrTimeout is returned by a bounded wait whose deadline elapsed
	// before the underlying try succeeded.
	ErrTimeout = errors.New("amp: timeout")

	// ErrResourceExhausted is returned by Arena.Alloc when the arena has
	// no room left for the requested (rounded) size.
	ErrResourceExhausted = errors.New("amp: resource exhausted")

	// ErrNotReady is returned by NewBoot when called from anywhere
	// but the primary core.
	ErrNotReady = errors.New("amp: not ready")
)
