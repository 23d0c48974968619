package amp

import (
	"errors"
	"testing"
	"time"
)

func TestPollTimedReturnsImmediatelyOnSuccess(t *testing.T) {
	platform := NewLocalPlatform(PrimaryCore, 1, time.Now(), nil)
	calls := 0
	err := pollTimed(platform, func() error {
		calls++
		return nil
	}, time.Second)
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestPollTimedPropagatesNonUnavailableError(t *testing.T) {
	platform := NewLocalPlatform(PrimaryCore, 1, time.Now(), nil)
	sentinel := errors.New("boom")
	err := pollTimed(platform, func() error { return sentinel }, time.Second)
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
}

func TestPollTimedZeroWaitsForever(t *testing.T) {
	platform := NewLocalPlatform(PrimaryCore, 1, time.Now(), nil)
	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- pollTimed(platform, func() error {
			attempts++
			if attempts < 5 {
				return ErrUnavailable
			}
			return nil
		}, 0)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("err = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("pollTimed with timeout=0 did not return after try succeeded")
	}
}

func TestPollTimedDeadlineExpires(t *testing.T) {
	platform := NewLocalPlatform(PrimaryCore, 1, time.Now(), nil)
	err := pollTimed(platform, func() error { return ErrUnavailable }, 10*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}
