package ltem

import (
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/edgewire/ltem/bridge"
	"github.com/edgewire/ltem/iop"
)

// Config holds the driver configuration.
type Config struct {
	// Dialer opens the bridge connection. Required.
	Dialer bridge.Dialer

	// Clock supplies timestamps, delays and timeout arithmetic. Defaults
	// to the real clock; tests install clock.Mock.
	Clock clock.Clock

	// Logger receives structured driver logging. Defaults to a no-op.
	Logger *zap.Logger

	// Fault handles unrecoverable conditions (buffer overflow, pool
	// exhaustion). The default logs at Fatal, terminating the process.
	Fault iop.FaultFunc

	// YieldHook, when set, is invoked on every cooperative yield in
	// addition to the scheduler yield, letting the application service
	// its own work during busy-poll waits.
	YieldHook func()

	// CmdTimeout is the default per-command timeout budget, applied when
	// a result call passes zero.
	CmdTimeout time.Duration

	// LockRetryMax bounds the attempts to acquire the command channel
	// when invoking with retry.
	LockRetryMax int

	// LockRetryInterval is the delay between channel-lock attempts.
	LockRetryInterval time.Duration

	// AppReadyTimeout bounds the wait for the module's startup banner.
	AppReadyTimeout time.Duration
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.CmdTimeout == 0 {
		c.CmdTimeout = 2 * time.Second
	}
	if c.LockRetryMax == 0 {
		c.LockRetryMax = 20
	}
	if c.LockRetryInterval == 0 {
		c.LockRetryInterval = 50 * time.Millisecond
	}
	if c.AppReadyTimeout == 0 {
		c.AppReadyTimeout = 5 * time.Second
	}
}
