package ltem_test

import (
	"testing"
	"time"

	"github.com/edgewire/ltem"
	"github.com/edgewire/ltem/at"
)

func TestGeoAdd(t *testing.T) {
	t.Run("Rejects an unsupported report mode", func(t *testing.T) {
		d, tb := dial(t, nil)
		res := d.GeoAdd(1, ltem.GeoMode(2), ltem.GeoShapeCircleRadius,
			51.5, -0.12, 100, 0, 0, 0, 0, 0)
		if res != at.ResultBadRequest {
			t.Fatalf("expected bad request, got %d", res)
		}
		if tb.Sent() != "" {
			t.Error("rejected request must not transmit")
		}
	})

	t.Run("Rejects coordinates beyond the shape", func(t *testing.T) {
		d, _ := dial(t, nil)
		res := d.GeoAdd(1, ltem.GeoModeNoURC, ltem.GeoShapeCircleRadius,
			51.5, -0.12, 100, 9.9, 0, 0, 0, 0)
		if res != at.ResultBadRequest {
			t.Errorf("expected bad request, got %d", res)
		}
	})

	t.Run("Circle by radius", func(t *testing.T) {
		var tb *bridgeInjector
		d, b := dial(t, func(cfg *ltem.Config) {
			cfg.YieldHook = func() { tb.once("\r\nOK\r\n") }
		})
		tb = &bridgeInjector{br: b}

		res := d.GeoAdd(3, ltem.GeoModeNoURC, ltem.GeoShapeCircleRadius,
			51.5, -0.12, 100, 0, 0, 0, 0, 0)
		if res != at.ResultSuccess {
			t.Fatalf("expected success, got %d", res)
		}
		want := `AT+QCFGEXT="addgeo",3,0,0,51.500000,-0.120000,100.000000` + "\r"
		if got := b.Sent(); got != want {
			t.Errorf("wire carries %q, want %q", got, want)
		}
	})

	t.Run("Quadrangle carries every vertex", func(t *testing.T) {
		var tb *bridgeInjector
		d, b := dial(t, func(cfg *ltem.Config) {
			cfg.YieldHook = func() { tb.once("\r\nOK\r\n") }
		})
		tb = &bridgeInjector{br: b}

		res := d.GeoAdd(1, ltem.GeoModeNoURC, ltem.GeoShapeQuadrangle,
			1, 2, 3, 4, 5, 6, 7, 8)
		if res != at.ResultSuccess {
			t.Fatalf("expected success, got %d", res)
		}
		want := `AT+QCFGEXT="addgeo",1,0,3,1.000000,2.000000,3.000000,4.000000,5.000000,6.000000,7.000000,8.000000` + "\r"
		if got := b.Sent(); got != want {
			t.Errorf("wire carries %q, want %q", got, want)
		}
	})
}

func TestGeoDelete(t *testing.T) {
	var tb *bridgeInjector
	d, b := dial(t, func(cfg *ltem.Config) {
		cfg.YieldHook = func() { tb.once("\r\nOK\r\n") }
	})
	tb = &bridgeInjector{br: b}

	if res := d.GeoDelete(4); res != at.ResultSuccess {
		t.Fatalf("expected success, got %d", res)
	}
	if got := b.Sent(); got != `AT+QCFGEXT="deletegeo",4`+"\r" {
		t.Errorf("wire carries %q", got)
	}
}

func TestGeoQuery(t *testing.T) {
	t.Run("Reports the position", func(t *testing.T) {
		var tb *bridgeInjector
		d, b := dial(t, func(cfg *ltem.Config) {
			cfg.YieldHook = func() { tb.once("\r\n+QCFGEXT: \"querygeo\",3,1\r\nOK\r\n") }
		})
		tb = &bridgeInjector{br: b}

		pos, res := d.GeoQuery(3)
		if res != at.ResultSuccess {
			t.Fatalf("expected success, got %d", res)
		}
		if pos != ltem.GeoPositionInside {
			t.Errorf("expected inside, got %d", pos)
		}
	})

	t.Run("Busy channel is a conflict", func(t *testing.T) {
		d, _ := dial(t, func(cfg *ltem.Config) {
			cfg.LockRetryMax = 2
			cfg.LockRetryInterval = time.Millisecond
		})
		if !d.TryInvoke("AT+CSQ", false) {
			t.Fatal("first invoke should succeed")
		}
		if _, res := d.GeoQuery(1); res != at.ResultConflict {
			t.Errorf("expected conflict, got %d", res)
		}
	})
}
