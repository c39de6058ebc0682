package ltem

import "errors"

var (
	// ErrNoDialer is returned when a Driver is constructed without a
	// bridge Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order
	// to establish a connection to the bridge chip.
	ErrNoDialer = errors.New("no bridge dialer configured")

	// ErrAlreadyClosed is returned when Close is called on a Driver that
	// has already been closed.
	ErrAlreadyClosed = errors.New("driver already closed")

	// ErrAppReadyTimeout is returned when the module fails to emit its
	// startup banner within the configured budget.
	ErrAppReadyTimeout = errors.New("module failed to signal app ready in time")
)
