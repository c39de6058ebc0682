package iop

import "sync/atomic"

// TxRing is a bounded single-producer/single-consumer byte ring. The
// producer is the normal-context send path; the sole consumer is the
// interrupt handler draining queued bytes toward the hardware FIFO.
//
// Head and tail are monotonic byte counters reduced modulo the buffer size,
// so a full buffer and an empty buffer are distinguishable without a spare
// slot. Only the producer advances head, only the consumer advances tail.
type TxRing struct {
	buf  []byte
	head atomic.Uint64
	tail atomic.Uint64
}

// NewTxRing creates a ring holding up to size bytes.
func NewTxRing(size int) *TxRing {
	return &TxRing{buf: make([]byte, size)}
}

// Put enqueues as much of p as fits and returns the number of bytes
// accepted. A short count signals the ring is full; the caller decides
// whether that is fatal.
func (r *TxRing) Put(p []byte) int {
	head := r.head.Load()
	tail := r.tail.Load()

	free := len(r.buf) - int(head-tail)
	n := len(p)
	if n > free {
		n = free
	}
	for i := 0; i < n; i++ {
		r.buf[int(head+uint64(i))%len(r.buf)] = p[i]
	}
	r.head.Store(head + uint64(n))
	return n
}

// Take dequeues up to len(p) bytes into p and returns the count moved.
func (r *TxRing) Take(p []byte) int {
	head := r.head.Load()
	tail := r.tail.Load()

	n := int(head - tail)
	if n > len(p) {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		p[i] = r.buf[int(tail+uint64(i))%len(r.buf)]
	}
	r.tail.Store(tail + uint64(n))
	return n
}

// Len reports the bytes currently queued.
func (r *TxRing) Len() int {
	return int(r.head.Load() - r.tail.Load())
}
