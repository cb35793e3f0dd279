// Package shmring is the byte FIFO between an interrupt handler and the
// goroutine that drains it.
package shmring

import "sync/atomic"

// Ring is a single-producer, single-consumer byte ring. PushByte is safe in
// interrupt context: it never blocks or allocates.
type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32 // consumer index, monotonic
	wr   atomic.Uint32 // producer index, monotonic

	readable chan struct{}
}

// ValidSize reports whether New accepts size.
func ValidSize(size int) bool { return size >= 2 && size&(size-1) == 0 }

// New panics unless size is a power of two >= 2.
func New(size int) *Ring {
	if !ValidSize(size) {
		panic("shmring: size must be power of two >= 2")
	}
	return &Ring{
		buf:      make([]byte, size),
		mask:     uint32(size - 1),
		readable: make(chan struct{}, 1),
	}
}

func (r *Ring) Cap() int { return len(r.buf) }

// Available is the number of unread bytes.
func (r *Ring) Available() int { return int(r.wr.Load() - r.rd.Load()) }

func (r *Ring) Space() int { return r.Cap() - r.Available() }

// PushByte appends b, returning false when the ring is full.
func (r *Ring) PushByte(b byte) bool {
	rd := r.rd.Load()
	wr := r.wr.Load()
	if int(wr-rd) >= len(r.buf) {
		return false
	}
	r.buf[wr&r.mask] = b
	r.wr.Store(wr + 1)

	// Signal when the consumer had caught up with us, i.e. it may be parked
	// on Readable with nothing left to read.
	if r.rd.Load() == wr {
		select {
		case r.readable <- struct{}{}:
		default:
		}
	}
	return true
}

// ReadInto drains up to len(dst) bytes in FIFO order.
func (r *Ring) ReadInto(dst []byte) int {
	rd := r.rd.Load()
	n := min(int(r.wr.Load()-rd), len(dst))
	if n <= 0 {
		return 0
	}
	i := rd & r.mask
	first := min(len(r.buf)-int(i), n)
	copy(dst, r.buf[i:int(i)+first])
	copy(dst[first:n], r.buf[:n-first])
	r.rd.Store(rd + uint32(n))
	return n
}

// Readable fires at most once per empty to non-empty edge; edges coalesce.
// Drain with ReadInto until it returns 0 before waiting again.
func (r *Ring) Readable() <-chan struct{} { return r.readable }
