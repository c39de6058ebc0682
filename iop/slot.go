package iop

import (
	"sync/atomic"

	"github.com/edgewire/ltem/at"
)

// Pool and buffer provisioning. These are sizing invariants, not tunables:
// exhausting the slot pool or overrunning a buffer is a fatal fault.
const (
	// rxSlotCount is the number of receive control blocks in the ring.
	rxSlotCount = 8
	// primBufSize is the inline primary buffer capacity of each slot, at
	// least one hardware FIFO's worth plus header room.
	primBufSize = 96
	// sizedPrimCap is the payload capacity of the primary buffer for a
	// sized-data read; a declared count above it requires an extension
	// buffer.
	sizedPrimCap = 64
	// mqttBufSize is the extension budget for a subscription message
	// (URC prefix + topic + payload).
	mqttBufSize = 1152
	// txRingSize is the outbound byte ring capacity.
	txRingSize = 1024
	// MaxSockets is the number of concurrently addressable socket streams.
	MaxSockets = 6
)

// Slot owner tags. Non-negative values are socket ids.
const (
	ownerFree      int32 = -1
	ownerAllocated int32 = -2
	ownerCommand   int32 = -3
)

// ctrlBlock is one receive control block. A slot is opened by the
// interrupt classifier, optionally extended across interrupt invocations
// while a continuation transfer is in flight, and reset by whichever
// consumer finishes with it.
//
// owner and dataReady are the ownership handoff between interrupt and
// normal context: the classifier publishes a slot by storing dataReady
// after all other fields are written, and consumers read those fields only
// after observing dataReady.
type ctrlBlock struct {
	owner     atomic.Int32
	dataReady atomic.Bool

	prim    [primBufSize]byte
	primLen int
	// payloadAt is the payload offset past a sized-data header.
	payloadAt int
	kind      at.Kind
	// rmtHostInData records that sender address fields precede the
	// payload. The drain API does not surface the address; the flag is
	// kept for parity with the wire format.
	rmtHostInData bool

	// ext is the owned extension buffer, existing only while the message
	// exceeds what the primary buffer holds. cap(ext) is the declared (or
	// budgeted) total; it is released exactly when the slot resets.
	ext []byte
}

func (cb *ctrlBlock) occupied() bool {
	return cb.owner.Load() != ownerFree
}

// payload returns the assembled message bytes: the extension buffer when
// one was opened, otherwise the primary buffer past any header.
func (cb *ctrlBlock) payload() []byte {
	if cb.ext != nil {
		return cb.ext
	}
	return cb.prim[cb.payloadAt:cb.primLen]
}

func (cb *ctrlBlock) reset() {
	cb.dataReady.Store(false)
	cb.primLen = 0
	cb.payloadAt = 0
	cb.kind = at.KindCommand
	cb.rmtHostInData = false
	cb.ext = nil
	cb.owner.Store(ownerFree)
}
