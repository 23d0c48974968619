package amp

import (
	"fmt"
	"sync/atomic"
	"time"
)

// mailboxHeaderSize is the control-block layout, 8-byte aligned so the
// payload region that follows starts on a boundary the arena already
// guarantees: write_idx, read_idx, msg_size, msg_slots, mask, then
// padding up to 24 bytes.
const mailboxHeaderSize = 24

const maxCapacity = 1 << 31 // spec.md's bound: capacity must be <= 2^31

// Mailbox is a single-producer/single-consumer ring of fixed-size
// message slots. Exactly one core may call TrySend/Send; exactly one
// (possibly different) core may call TryRecv/Recv. write_idx is written
// only by the producer, read_idx only by the consumer; both words are
// read by both sides, with a barrier between the payload copy and the
// index publish on each side — no CAS is needed because each index has
// exactly one writer.
type Mailbox struct {
	arena    *Arena
	handle   Handle
	platform Platform
	msgSize  uint32
	slots    uint32
	mask     uint32
}

// NewMailbox allocates a mailbox from a, rounding slots up to the next
// power of two. msgSize must be nonzero.
func NewMailbox(a *Arena, platform Platform, msgSize, slots uint32) (*Mailbox, error) {
	if msgSize == 0 || slots == 0 {
		return nil, fmt.Errorf("%w: mailbox: msg_size=%d slots=%d", ErrInvalidArgument, msgSize, slots)
	}
	// Checked before rounding: roundUpPow2 overflows a uint32 for inputs
	// above 2^31 and would otherwise wrap silently to 0, masking exactly
	// the oversized-capacity case this check exists to catch.
	if slots > maxCapacity {
		return nil, fmt.Errorf("%w: mailbox: slots %d exceeds 2^31", ErrInvalidArgument, slots)
	}
	rounded := roundUpPow2(slots)

	dataSize := uint64(rounded) * uint64(msgSize)
	if dataSize > 0xFFFFFFFF {
		return nil, fmt.Errorf("%w: mailbox: slots*msg_size overflows 32 bits", ErrInvalidArgument)
	}

	h, err := a.Alloc(mailboxHeaderSize)
	if err != nil {
		return nil, err
	}
	if _, err := a.Alloc(uint32(dataSize)); err != nil {
		return nil, err
	}

	m := &Mailbox{arena: a, handle: h, platform: platform, msgSize: msgSize, slots: rounded, mask: rounded - 1}
	m.writeIdx().Store(0)
	m.readIdx().Store(0)
	a.atomicU32At(h, 8).Store(msgSize)
	a.atomicU32At(h, 12).Store(rounded)
	a.atomicU32At(h, 16).Store(rounded - 1)
	return m, nil
}

func (m *Mailbox) writeIdx() *atomic.Uint32 { return m.arena.atomicU32At(m.handle, 0) }
func (m *Mailbox) readIdx() *atomic.Uint32  { return m.arena.atomicU32At(m.handle, 4) }

func (m *Mailbox) slotBytes(slot uint32) []byte {
	off := mailboxHeaderSize + slot*m.msgSize
	return m.arena.regionBytes(m.handle, off, m.msgSize)
}

// Destroy is a no-op; the arena never reclaims individual allocations.
func (m *Mailbox) Destroy() {}

// TrySend copies msg (which must be exactly msg_size bytes) into the
// next free slot without blocking. It returns ErrUnavailable if the
// mailbox is full.
func (m *Mailbox) TrySend(msg []byte) error {
	if uint32(len(msg)) != m.msgSize {
		return fmt.Errorf("%w: mailbox: send: got %d bytes, want %d", ErrInvalidArgument, len(msg), m.msgSize)
	}

	w := m.writeIdx().Load()
	r := m.readIdx().Load()
	if w-r >= m.slots {
		return ErrUnavailable
	}

	copy(m.slotBytes(w&m.mask), msg)
	m.platform.MemoryBarrier() // publication point: payload before index
	m.writeIdx().Store(w + 1)
	return nil
}

// TryRecv copies the next pending message into buf (which must be
// exactly msg_size bytes) without blocking. It returns ErrUnavailable if
// the mailbox is empty.
func (m *Mailbox) TryRecv(buf []byte) error {
	if uint32(len(buf)) != m.msgSize {
		return fmt.Errorf("%w: mailbox: recv: got %d bytes, want %d", ErrInvalidArgument, len(buf), m.msgSize)
	}

	w := m.writeIdx().Load()
	r := m.readIdx().Load()
	if w-r == 0 {
		return ErrUnavailable
	}

	copy(buf, m.slotBytes(r&m.mask))
	m.platform.MemoryBarrier() // consumption point: payload before index
	m.readIdx().Store(r + 1)
	return nil
}

// Send blocks (by polling TrySend) until msg is enqueued or timeout
// elapses. timeout == 0 waits forever.
func (m *Mailbox) Send(msg []byte, timeout time.Duration) error {
	return pollTimed(m.platform, func() error { return m.TrySend(msg) }, timeout)
}

// Recv blocks (by polling TryRecv) until a message is available or
// timeout elapses. timeout == 0 waits forever.
func (m *Mailbox) Recv(buf []byte, timeout time.Duration) error {
	return pollTimed(m.platform, func() error { return m.TryRecv(buf) }, timeout)
}

// Len returns the number of pending messages — racy against the
// opposite side, advisory only.
func (m *Mailbox) Len() uint32 {
	return m.writeIdx().Load() - m.readIdx().Load()
}

// Slots returns the mailbox's capacity in messages (rounded up to a
// power of two at creation).
func (m *Mailbox) Slots() uint32 { return m.slots }
