package ltem_test

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/edgewire/ltem"
	"github.com/edgewire/ltem/at"
)

func TestTryInvoke(t *testing.T) {
	t.Run("Command goes on the wire with a carriage return", func(t *testing.T) {
		d, tb := dial(t, nil)
		if !d.TryInvoke("ATI", false) {
			t.Fatal("expected invoke to succeed on an idle channel")
		}
		if tb.Sent() != "ATI\r" {
			t.Errorf("wire carries %q", tb.Sent())
		}
	})

	t.Run("Channel is single occupancy", func(t *testing.T) {
		d, tb := dial(t, nil)
		if !d.TryInvoke("AT+CSQ", false) {
			t.Fatal("first invoke should succeed")
		}
		if d.TryInvoke("AT+CREG?", false) {
			t.Error("second invoke should fail while one is in flight")
		}
		if tb.Sent() != "AT+CSQ\r" {
			t.Errorf("losing invoke must not transmit, wire carries %q", tb.Sent())
		}
	})

	t.Run("Retry acquires once the channel clears", func(t *testing.T) {
		var d *ltem.Driver
		yields := 0
		drv, _ := dial(t, func(cfg *ltem.Config) {
			cfg.LockRetryInterval = time.Millisecond
			cfg.YieldHook = func() {
				yields++
				if yields == 3 {
					d.Cancel()
				}
			}
		})
		d = drv

		if !d.TryInvoke("AT+CSQ", false) {
			t.Fatal("first invoke should succeed")
		}
		if !d.TryInvoke("AT+CREG?", true) {
			t.Error("retrying invoke should acquire after the cancel")
		}
	})

	t.Run("Retry budget is bounded", func(t *testing.T) {
		d, _ := dial(t, func(cfg *ltem.Config) {
			cfg.LockRetryMax = 3
			cfg.LockRetryInterval = time.Millisecond
		})

		if !d.TryInvoke("AT+CSQ", false) {
			t.Fatal("first invoke should succeed")
		}
		if d.TryInvoke("AT+CREG?", true) {
			t.Error("retrying invoke should give up on a busy channel")
		}
	})

	t.Run("Cancel releases the channel", func(t *testing.T) {
		d, _ := dial(t, nil)
		d.TryInvoke("AT+CSQ", false)
		d.Cancel()
		if !d.TryInvoke("AT+CREG?", false) {
			t.Error("channel should be free after cancel")
		}
	})
}

func TestGetResult(t *testing.T) {
	t.Run("Pending until the terminal token", func(t *testing.T) {
		d, tb := dial(t, nil)
		d.TryInvoke("AT+CSQ", false)

		var resp [96]byte
		if res := d.GetResult(resp[:], 0, nil, true); res != at.ResultPending {
			t.Fatalf("expected pending before any reply, got %d", res)
		}

		tb.Inject("\r\n+CSQ: 2")
		if res := d.GetResult(resp[:], 0, nil, true); res != at.ResultPending {
			t.Fatalf("expected pending on a partial reply, got %d", res)
		}

		tb.Inject("0,99\r\nOK\r\n")
		if res := d.GetResult(resp[:], 0, nil, true); res != at.ResultSuccess {
			t.Fatalf("expected success, got %d", res)
		}

		if !d.TryInvoke("ATI", false) {
			t.Error("channel should be released by the terminal result")
		}
	})

	t.Run("Device fault code propagates verbatim", func(t *testing.T) {
		d, tb := dial(t, nil)
		d.TryInvoke("AT+QIOPEN=1,0", false)
		tb.Inject("\r\n+CME ERROR: 552\r\n")

		var resp [96]byte
		if res := d.GetResult(resp[:], 0, nil, true); res != at.Result(552) {
			t.Errorf("expected 552, got %d", res)
		}
		if !d.TryInvoke("ATI", false) {
			t.Error("channel should be released by the fault")
		}
	})

	t.Run("Generic error token", func(t *testing.T) {
		d, tb := dial(t, nil)
		d.TryInvoke("AT+BOGUS", false)
		tb.Inject("\r\nERROR\r\n")

		var resp [96]byte
		if res := d.GetResult(resp[:], 0, nil, true); res != at.ResultError {
			t.Errorf("expected generic error, got %d", res)
		}
	})

	t.Run("Timeout strictly after the budget", func(t *testing.T) {
		mock := clock.NewMock()
		d, _ := dial(t, func(cfg *ltem.Config) { cfg.Clock = mock })
		d.TryInvoke("AT+CSQ", false)

		var resp [96]byte
		mock.Add(2 * time.Second)
		if res := d.GetResult(resp[:], 0, nil, true); res != at.ResultPending {
			t.Fatalf("budget elapsed exactly, expected pending, got %d", res)
		}
		mock.Add(time.Millisecond)
		if res := d.GetResult(resp[:], 0, nil, true); res != at.ResultTimeout {
			t.Fatalf("expected timeout, got %d", res)
		}
		if !d.TryInvoke("ATI", false) {
			t.Error("channel should be released by the timeout")
		}
	})

	t.Run("Prompted data exchange keeps the channel across steps", func(t *testing.T) {
		d, tb := dial(t, nil)
		d.TryInvoke("AT+QISEND=0,5", false)
		tb.Inject("\r\n> ")

		var resp [96]byte
		if res := d.GetResult(resp[:], 0, at.DataPromptParser, false); res != at.ResultSuccess {
			t.Fatalf("expected the prompt, got %d", res)
		}
		if d.TryInvoke("ATI", false) {
			t.Fatal("channel must stay locked for the data step")
		}

		d.SendData([]byte("HELLO"))
		if got := tb.Sent(); got != "AT+QISEND=0,5\rHELLO" {
			t.Errorf("wire carries %q", got)
		}

		tb.Inject("\r\nSEND OK\r\n")
		if res := d.GetResult(resp[:], 0, nil, true); res != at.ResultSuccess {
			t.Fatalf("expected send confirmation, got %d", res)
		}
		if !d.TryInvoke("ATI", false) {
			t.Error("channel should be released after the final step")
		}
	})
}

func TestAwaitResult(t *testing.T) {
	var tb *bridgeInjector
	d, b := dial(t, func(cfg *ltem.Config) {
		cfg.YieldHook = func() { tb.once("\r\nOK\r\n") }
	})
	tb = &bridgeInjector{br: b}

	d.TryInvoke("AT+CFUN=1", false)
	var resp [96]byte
	if res := d.AwaitResult(resp[:], 0, nil, true); res != at.ResultSuccess {
		t.Errorf("expected success, got %d", res)
	}
}
