package amp

import "time"

// pollTimed is the one compositional pattern shared by Mailbox.Send/Recv,
// Semaphore.Wait, and Boot.WaitReady: spin on try, and if it reports
// ErrUnavailable, keep spinning until timeout elapses against platform's
// monotonic tick source. timeout == 0 means wait forever. Any error from
// try other than ErrUnavailable is returned immediately, unretried.
//
// There is no cancellation: a caller that wants one layered on top needs
// its own context plumbing outside this package, since spec.md explicitly
// does not define one.
func pollTimed(platform Platform, try func() error, timeout time.Duration) error {
	if timeout <= 0 {
		for {
			err := try()
			if err != ErrUnavailable {
				return err
			}
		}
	}

	ticksPerMs := platform.TicksPerMillisecond()
	budget := ticksPerMs * uint64(timeout.Milliseconds())
	start := platform.MonotonicTick()

	for {
		err := try()
		if err != ErrUnavailable {
			return err
		}
		if platform.MonotonicTick()-start >= budget {
			return ErrTimeout
		}
	}
}
