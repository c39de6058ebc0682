package iop_test

import (
	"bytes"
	"testing"

	"github.com/edgewire/ltem/iop"
)

func TestTxRing(t *testing.T) {
	t.Run("Put then take round trip", func(t *testing.T) {
		r := iop.NewTxRing(16)

		if n := r.Put([]byte("hello")); n != 5 {
			t.Fatalf("Put accepted %d bytes, want 5", n)
		}
		if r.Len() != 5 {
			t.Errorf("Len() = %d, want 5", r.Len())
		}

		var out [16]byte
		if n := r.Take(out[:]); n != 5 || string(out[:n]) != "hello" {
			t.Errorf("Take returned %d %q", n, out[:n])
		}
		if r.Len() != 0 {
			t.Errorf("Len() = %d after drain, want 0", r.Len())
		}
	})

	t.Run("Short put when full", func(t *testing.T) {
		r := iop.NewTxRing(8)

		if n := r.Put([]byte("12345678")); n != 8 {
			t.Fatalf("Put accepted %d bytes, want 8", n)
		}
		if n := r.Put([]byte("x")); n != 0 {
			t.Errorf("Put on full ring accepted %d bytes, want 0", n)
		}

		var out [4]byte
		r.Take(out[:])
		if n := r.Put([]byte("abcdef")); n != 4 {
			t.Errorf("Put accepted %d bytes into 4 free, want 4", n)
		}
	})

	t.Run("Wraps across the buffer boundary", func(t *testing.T) {
		r := iop.NewTxRing(8)
		var out [8]byte

		// walk head/tail past the physical end repeatedly
		for i := 0; i < 10; i++ {
			msg := []byte{byte('a' + i), byte('A' + i), byte('0' + i)}
			if n := r.Put(msg); n != len(msg) {
				t.Fatalf("cycle %d: Put accepted %d bytes", i, n)
			}
			n := r.Take(out[:])
			if n != len(msg) || !bytes.Equal(out[:n], msg) {
				t.Fatalf("cycle %d: Take returned %q", i, out[:n])
			}
		}
	})

	t.Run("Partial take", func(t *testing.T) {
		r := iop.NewTxRing(16)
		r.Put([]byte("abcdefgh"))

		var out [3]byte
		if n := r.Take(out[:]); n != 3 || string(out[:n]) != "abc" {
			t.Fatalf("first Take returned %d %q", n, out[:n])
		}
		var rest [16]byte
		if n := r.Take(rest[:]); n != 5 || string(rest[:n]) != "defgh" {
			t.Fatalf("second Take returned %d %q", n, rest[:n])
		}
	})
}
