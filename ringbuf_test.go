package amp

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestRingBufferRequiresPowerOfTwoSize(t *testing.T) {
	a := newTestArena(t, 4096)
	platform := NewLocalPlatform(PrimaryCore, 1, time.Now(), nil)
	if _, err := NewRingBuffer(a, platform, 3); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("size=3: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewRingBuffer(a, platform, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("size=0: err = %v, want ErrInvalidArgument", err)
	}
}

func TestRingBufferWriteReadByteFIFO(t *testing.T) {
	a := newTestArena(t, 4096)
	platform := NewLocalPlatform(PrimaryCore, 1, time.Now(), nil)
	rb, err := NewRingBuffer(a, platform, 8)
	if err != nil {
		t.Fatalf("new ring buffer: %v", err)
	}

	payload := []byte("abcdefgh")
	if n := rb.Write(payload); n != len(payload) {
		t.Fatalf("write = %d, want %d", n, len(payload))
	}
	if rb.Available() != 8 {
		t.Fatalf("available = %d, want 8", rb.Available())
	}

	out := make([]byte, 8)
	if n := rb.Read(out); n != 8 {
		t.Fatalf("read = %d, want 8", n)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("read = %q, want %q", out, payload)
	}
}

func TestRingBufferWraparound(t *testing.T) {
	a := newTestArena(t, 4096)
	platform := NewLocalPlatform(PrimaryCore, 1, time.Now(), nil)
	rb, err := NewRingBuffer(a, platform, 4)
	if err != nil {
		t.Fatalf("new ring buffer: %v", err)
	}

	if n := rb.Write([]byte{1, 2, 3}); n != 3 {
		t.Fatalf("write = %d, want 3", n)
	}
	out := make([]byte, 2)
	if n := rb.Read(out); n != 2 {
		t.Fatalf("read = %d, want 2", n)
	}
	// write_idx=3, read_idx=2; writing 3 more bytes wraps past the end of
	// the backing array.
	if n := rb.Write([]byte{4, 5, 3}); n != 3 {
		t.Fatalf("write = %d, want 3", n)
	}
	rest := make([]byte, 4)
	if n := rb.Read(rest); n != 4 {
		t.Fatalf("read = %d, want 4", n)
	}
	if !bytes.Equal(rest, []byte{3, 4, 5, 3}) {
		t.Fatalf("read = %v, want [3 4 5 3]", rest)
	}
}

func TestRingBufferShortWriteWhenFull(t *testing.T) {
	a := newTestArena(t, 4096)
	platform := NewLocalPlatform(PrimaryCore, 1, time.Now(), nil)
	rb, err := NewRingBuffer(a, platform, 4)
	if err != nil {
		t.Fatalf("new ring buffer: %v", err)
	}
	if n := rb.Write([]byte{1, 2, 3, 4, 5}); n != 4 {
		t.Fatalf("write = %d, want 4 (short write, not an error)", n)
	}
	if rb.FreeSpace() != 0 {
		t.Fatalf("free space = %d, want 0", rb.FreeSpace())
	}
}

func TestRingBufferShortReadWhenEmpty(t *testing.T) {
	a := newTestArena(t, 4096)
	platform := NewLocalPlatform(PrimaryCore, 1, time.Now(), nil)
	rb, err := NewRingBuffer(a, platform, 4)
	if err != nil {
		t.Fatalf("new ring buffer: %v", err)
	}
	rb.Write([]byte{1, 2})
	out := make([]byte, 10)
	if n := rb.Read(out); n != 2 {
		t.Fatalf("read = %d, want 2 (short read, not an error)", n)
	}
}

// TestRingBufferIndexWraparound seeds write_idx/read_idx just below 2^32
// and drives writes/reads across the wrap, exercising the unsigned
// subtraction arithmetic spec.md §3 requires for index comparisons.
func TestRingBufferIndexWraparound(t *testing.T) {
	a := newTestArena(t, 4096)
	platform := NewLocalPlatform(PrimaryCore, 1, time.Now(), nil)
	rb, err := NewRingBuffer(a, platform, 8)
	if err != nil {
		t.Fatalf("new ring buffer: %v", err)
	}

	const near = 0xFFFFFFFA
	rb.writeIdx().Store(near)
	rb.readIdx().Store(near)

	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if n := rb.Write(payload); n != len(payload) {
		t.Fatalf("write across wrap = %d, want %d", n, len(payload))
	}
	if got := rb.writeIdx().Load(); got != 2 {
		t.Fatalf("write_idx after writing 8 bytes from %#x = %#x, want 2", uint32(near), got)
	}
	if rb.Available() != 8 {
		t.Fatalf("available across wrap = %d, want 8", rb.Available())
	}

	out := make([]byte, 8)
	if n := rb.Read(out); n != 8 {
		t.Fatalf("read across wrap = %d, want 8", n)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("read across wrap = %v, want %v (FIFO order preserved across wrap)", out, payload)
	}
	if got := rb.readIdx().Load(); got != 2 {
		t.Fatalf("read_idx after draining across wrap = %#x, want 2", got)
	}
	if rb.Available() != 0 {
		t.Fatalf("available after drain across wrap = %d, want 0", rb.Available())
	}
}

func TestRingBufferClearEmptiesBuffer(t *testing.T) {
	a := newTestArena(t, 4096)
	platform := NewLocalPlatform(PrimaryCore, 1, time.Now(), nil)
	rb, err := NewRingBuffer(a, platform, 4)
	if err != nil {
		t.Fatalf("new ring buffer: %v", err)
	}
	rb.Write([]byte{1, 2, 3})
	rb.Clear()
	if rb.Available() != 0 {
		t.Fatalf("available after clear = %d, want 0", rb.Available())
	}
	if rb.FreeSpace() != 4 {
		t.Fatalf("free space after clear = %d, want 4", rb.FreeSpace())
	}
}
