package ltem

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/edgewire/ltem/at"
	"github.com/edgewire/ltem/iop"
)

// action is the singleton in-flight command slot. The command text doubles
// as the channel lock: non-empty means locked, and it is cleared only on a
// terminal result, a timeout, or an explicit cancel.
//
// The mutex guards the lock handoff between normal context and the
// interrupt classifier (which releases the slot when a sized-read reply
// arrives as data). The result window fields are touched only from the
// single cooperative normal context.
type action struct {
	mu  sync.Mutex
	cmd string

	// result window: head fixed at the start of the caller-owned buffer,
	// tail advancing as fragments are drained
	resp      []byte
	tail      int
	invokedAt time.Time
	timeout   time.Duration
	parser    at.CompletionParser
}

// TryInvoke attempts to acquire the command channel and send cmd. With
// retry false a locked channel fails immediately. With retry true the
// lock is polled a bounded number of times with a fixed delay, driving
// outstanding receive work between attempts so the lock can clear; an
// exhausted budget fails.
//
// On success the invocation timestamp is recorded and the command bytes,
// terminated by a carriage return, are queued for transmission.
func (d *Driver) TryInvoke(cmd string, retry bool) bool {
	if !d.tryActionLock(cmd, retry) {
		return false
	}

	d.act.resp = nil
	d.act.tail = 0
	d.act.parser = at.OKParser
	d.act.invokedAt = d.clk.Now()

	d.log.Debug("action invoked", zap.String("cmd", cmd))
	d.iop.TxSend([]byte(cmd+at.CR), false)
	return true
}

// SendData performs the follow-up data write of a "prompt then payload"
// exchange. The action slot stays locked; the payload gets a fresh
// timestamp and the default completion parser.
func (d *Driver) SendData(data []byte) {
	d.act.mu.Lock()
	d.act.parser = at.OKParser
	d.act.invokedAt = d.clk.Now()
	d.act.mu.Unlock()

	d.iop.TxSend(data, false)
}

// GetResult performs one non-blocking poll of the in-flight command.
//
// The first call for an action installs resp as the result window along
// with the parser and timeout (zero selects the configured default; a nil
// parser keeps the default OK test). Each call appends any queued reply
// fragment to the window and runs the parser over the entire accumulated
// text. A terminal result releases the slot, unless autoClose is false
// and the result is success, the defer used by multi-step exchanges.
// An exceeded timeout budget releases the slot and returns ResultTimeout.
func (d *Driver) GetResult(resp []byte, timeout time.Duration, parser at.CompletionParser, autoClose bool) at.Result {
	a := &d.act

	if a.resp == nil {
		a.resp = resp
		a.tail = 0
		if timeout == 0 {
			timeout = d.cmdTimeout
		}
		a.timeout = timeout
		if parser != nil {
			a.parser = parser
		}
	}

	res := at.ResultPending
	if a.tail < len(a.resp) {
		n, xfr := d.iop.RxGetCmdQueued(a.resp[a.tail:])
		if xfr == iop.XfrComplete || xfr == iop.XfrTruncated {
			a.tail += n
			res = a.parser(string(a.resp[:a.tail]))
		}
	}

	if res.Terminal() {
		if autoClose || res != at.ResultSuccess {
			d.releaseAction()
		}
		return res
	}

	if d.clk.Since(a.invokedAt) > a.timeout {
		d.log.Warn("action timed out", zap.Duration("budget", a.timeout))
		d.releaseAction()
		return at.ResultTimeout
	}
	return at.ResultPending
}

// AwaitResult polls GetResult until a terminal result is produced,
// yielding cooperatively between polls.
func (d *Driver) AwaitResult(resp []byte, timeout time.Duration, parser at.CompletionParser, autoClose bool) at.Result {
	for {
		res := d.GetResult(resp, timeout, parser, autoClose)
		if res != at.ResultPending {
			return res
		}
		d.yield()
	}
}

// Cancel unconditionally resets the action slot, discarding any in-flight
// state.
func (d *Driver) Cancel() {
	d.act.mu.Lock()
	d.act.cmd = ""
	d.act.mu.Unlock()

	d.act.resp = nil
	d.act.tail = 0
	d.act.parser = nil
}

// releaseAction clears the channel lock. Called from normal context on
// terminal results and from the interrupt classifier when a sized-read
// reply is consumed as socket data.
func (d *Driver) releaseAction() {
	d.act.mu.Lock()
	d.act.cmd = ""
	d.act.mu.Unlock()
}

func (d *Driver) tryActionLock(cmd string, retry bool) bool {
	if d.lockAction(cmd) {
		return true
	}
	if !retry {
		return false
	}

	for attempt := 1; attempt < d.retryMax; attempt++ {
		d.clk.Sleep(d.retryInterval)
		d.yield()
		d.iop.RecvDoWork()
		if d.lockAction(cmd) {
			return true
		}
	}
	return false
}

func (d *Driver) lockAction(cmd string) bool {
	d.act.mu.Lock()
	defer d.act.mu.Unlock()
	if d.act.cmd != "" {
		return false
	}
	d.act.cmd = cmd
	return true
}
