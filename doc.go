// Package amp implements the lock-free inter-core communication primitives
// for a two-core asymmetric-multiprocessing (AMP) runtime: a bump-allocated
// shared-memory arena, a boot handshake, a counting semaphore, a
// single-producer/single-consumer mailbox, and a single-producer/
// single-consumer byte ring buffer.
//
// Every primitive is designed for exactly one producer core and one
// consumer core per endpoint. There is no mutex anywhere in this package;
// cross-core visibility is established by the ordering guarantees of
// sync/atomic plus an explicit Platform.MemoryBarrier call at every
// publication point, mirroring the data-memory-barrier the original
// firmware issues by hand.
//
// Arena init and every primitive's New* constructor must happen on one core (the
// primary) before any secondary core is released; after that, each
// primitive has exactly one owning writer per index.
package amp
