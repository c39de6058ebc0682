package bridge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/edgewire/ltem/bridge"
)

func TestSerialDialerValidation(t *testing.T) {
	t.Run("Nil context", func(t *testing.T) {
		d := bridge.SerialDialer{PortName: "/dev/ttyUSB0"}
		//lint:ignore SA1012 validating the dialer's own nil check
		if _, err := d.Dial(nil); err == nil {
			t.Error("expected error for nil context")
		}
	})

	t.Run("Missing port name", func(t *testing.T) {
		d := bridge.SerialDialer{}
		if _, err := d.Dial(context.Background()); err == nil {
			t.Error("expected error for missing port name")
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		d := bridge.SerialDialer{PortName: "/dev/ttyUSB0"}
		if _, err := d.Dial(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got: %v", err)
		}
	})
}

func TestTestBridgeFraming(t *testing.T) {
	t.Run("Level reports at most one FIFO", func(t *testing.T) {
		b := bridge.NewTestBridge()
		b.Inject(string(make([]byte, 3*bridge.FIFOSize)))

		if lvl := b.RxLevel(); lvl != bridge.FIFOSize {
			t.Errorf("RxLevel() = %d, want %d", lvl, bridge.FIFOSize)
		}

		buf := make([]byte, bridge.FIFOSize)
		b.Read(buf)
		if !b.Asserted() {
			t.Error("line should stay asserted while bytes remain")
		}
	})

	t.Run("Flush clears data and error", func(t *testing.T) {
		b := bridge.NewTestBridge()
		b.Inject("junk")
		b.InjectError()

		if err := b.FlushRx(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.Asserted() {
			t.Error("line should be idle after flush")
		}
		if st := b.ReadStatus(); st.Pending {
			t.Errorf("status still pending: %+v", st)
		}
	})

	t.Run("ISR fires on injection", func(t *testing.T) {
		b := bridge.NewTestBridge()
		fired := 0
		b.AttachISR(func() { fired++ })

		b.Inject("OK\r\n")
		b.InjectError()
		if fired != 2 {
			t.Errorf("ISR fired %d times, want 2", fired)
		}
	})
}
