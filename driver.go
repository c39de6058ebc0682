// Package ltem is a driver for an LTE modem companion module reached
// through an SPI-to-UART bridge. It turns the half-duplex textual AT
// byte stream into synchronous command/response exchanges and
// demultiplexed per-socket data streams, serviced under a hardware
// interrupt by the iop subpackage.
package ltem

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/edgewire/ltem/bridge"
	"github.com/edgewire/ltem/iop"
)

// Driver is the process-wide modem driver context: the bridge connection,
// the I/O processor, and the single in-flight action slot. There are no
// ambient globals; everything the driver needs it owns.
type Driver struct {
	br  bridge.Bridge
	iop *iop.Engine
	clk clock.Clock
	log *zap.Logger

	yieldHook func()

	cmdTimeout      time.Duration
	retryMax        int
	retryInterval   time.Duration
	appReadyTimeout time.Duration

	closed bool

	act action
}

// New dials the bridge, builds the I/O processor and attaches its
// interrupt handler. The module may still be booting when New returns;
// call AwaitAppReady before invoking commands.
func New(ctx context.Context, cfg Config) (*Driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	br, err := cfg.Dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial bridge: %w", err)
	}

	d := &Driver{
		br:              br,
		clk:             cfg.Clock,
		log:             cfg.Logger,
		yieldHook:       cfg.YieldHook,
		cmdTimeout:      cfg.CmdTimeout,
		retryMax:        cfg.LockRetryMax,
		retryInterval:   cfg.LockRetryInterval,
		appReadyTimeout: cfg.AppReadyTimeout,
	}
	d.iop = iop.NewEngine(iop.Config{
		Bridge:       br,
		Log:          cfg.Logger.Named("iop"),
		Fault:        cfg.Fault,
		Invoke:       d.TryInvoke,
		CompleteRead: d.releaseAction,
	})
	d.iop.Start()

	return d, nil
}

// AwaitAppReady busy-polls until the module's startup banner has been
// seen, yielding cooperatively between checks, or fails after the
// configured budget.
func (d *Driver) AwaitAppReady() error {
	start := d.clk.Now()
	for !d.iop.AppReady() {
		d.iop.RecvDoWork()
		d.yield()
		if d.clk.Since(start) > d.appReadyTimeout {
			return ErrAppReadyTimeout
		}
	}
	return nil
}

// TxSend queues raw bytes for transmission, outside the action protocol.
// Raw senders and the action controller are mutually exclusive callers.
func (d *Driver) TxSend(data []byte, deferSend bool) {
	d.iop.TxSend(data, deferSend)
}

// RecvDoWork drives the deferred receive dispatcher. Callers performing
// blocking waits outside AwaitResult must invoke it to make progress.
func (d *Driver) RecvDoWork() {
	d.iop.RecvDoWork()
}

// RxGetCmdQueued drains queued command-reply fragments into buf. Most
// callers want GetResult instead; this is the raw fragment interface.
func (d *Driver) RxGetCmdQueued(buf []byte) (int, iop.XfrResult) {
	return d.iop.RxGetCmdQueued(buf)
}

// RxGetSocketQueued returns the ready bytes of a socket stream without
// consuming them; TailFinalize releases them and advances the stream.
func (d *Driver) RxGetSocketQueued(sock int) ([]byte, bool) {
	return d.iop.RxGetSocketQueued(sock)
}

// TailFinalize marks the current ready slot of a socket stream consumed.
func (d *Driver) TailFinalize(sock int) {
	d.iop.TailFinalize(sock)
}

// TakeStatusMessage drains the unsolicited status mailbox.
func (d *Driver) TakeStatusMessage() (string, bool) {
	return d.iop.TakeStatusMessage()
}

// Close cancels any in-flight action and tears down the bridge. After
// Close the driver cannot be reused.
func (d *Driver) Close() error {
	if d.closed {
		return ErrAlreadyClosed
	}
	d.closed = true

	d.Cancel()
	return multierr.Append(d.br.Close(), d.log.Sync())
}

// yield services the scheduler and the optional application hook between
// busy-poll iterations. This is cooperative interleaving, not concurrency:
// pending interrupt-driven work gets a chance to land.
func (d *Driver) yield() {
	runtime.Gosched()
	if d.yieldHook != nil {
		d.yieldHook()
	}
}
