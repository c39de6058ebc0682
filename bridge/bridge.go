// Package bridge abstracts the SPI-to-UART bridge chip that carries the
// byte stream between the host and the modem module. The I/O processor
// consumes this boundary only: status and FIFO-level queries, raw block
// read/write, an interrupt-attach primitive, and a raw sample of the
// interrupt line used by the handler's re-check loop.
package bridge

import (
	"context"
	"io"
)

// FIFOSize is the depth of the bridge chip's hardware FIFOs. A transmit
// FIFO reporting FIFOSize free bytes has nothing in flight.
const FIFOSize = 64

// Source identifies the condition a pending interrupt is reporting,
// mirroring the bridge chip's interrupt identification register.
type Source int

const (
	SourceNone Source = iota
	// SourceRxError reports a receiver line error; the RX FIFO holds a bad
	// character and must be flushed.
	SourceRxError
	// SourceRxReady reports the RX FIFO at its trigger level.
	SourceRxReady
	// SourceRxTimeout reports characters received with no more arriving
	// (RX FIFO below trigger but stale).
	SourceRxTimeout
	// SourceTxReady reports the TX FIFO drained enough to accept more.
	SourceTxReady
)

// Status is one read of the bridge's interrupt identification register.
type Status struct {
	// Pending is true while any interrupt condition remains unserviced.
	Pending bool
	// Source is the highest-priority pending condition.
	Source Source
}

// Bridge is an established connection to the bridge chip. Its methods are
// register-level primitives: they do not block waiting for data, and the
// read/write calls move at most one FIFO's worth of bytes.
//
// ReadStatus, RxLevel, TxSpace, Read, Write and FlushRx are called from the
// attached interrupt handler; implementations must tolerate concurrent
// calls from normal context only where documented by the driver.
type Bridge interface {
	io.Closer

	// ReadStatus reads and latches the interrupt identification register.
	ReadStatus() Status
	// RxLevel reports the number of bytes waiting in the RX FIFO.
	RxLevel() int
	// TxSpace reports the free bytes in the TX FIFO.
	TxSpace() int
	// Read drains up to len(p) bytes from the RX FIFO.
	Read(p []byte) (int, error)
	// Write pushes up to len(p) bytes into the TX FIFO.
	Write(p []byte) (int, error)
	// FlushRx discards the RX FIFO contents after a line error.
	FlushRx() error
	// AttachISR registers the handler invoked when the interrupt line
	// asserts. Only one handler may be attached.
	AttachISR(fn func())
	// Asserted samples the raw interrupt line. The line can re-assert in a
	// narrow window right after the status register reads clear, so the
	// handler re-checks it before returning.
	Asserted() bool
}

// Dialer opens a Bridge. It abstracts how the bridge connection is created
// (serial port, in-memory fake for tests) and is used during driver
// construction only.
type Dialer interface {
	// Dial creates and returns a connected Bridge. It may block and should
	// respect cancellation and deadlines on the context.
	Dial(ctx context.Context) (Bridge, error)
}
