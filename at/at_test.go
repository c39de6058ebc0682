package at_test

import (
	"testing"

	"github.com/edgewire/ltem/at"
)

func TestClassifyChunk(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected at.Kind
	}{
		// Sized-data headers
		{name: "Sized read header", input: "\r\n+QIRD: 128\r\nabc", expected: at.KindSizedData},
		{name: "Sized read header TLS", input: "\r\n+QSSLRECV: 42\r\n", expected: at.KindSizedData},
		{name: "Sized read without leading CRLF", input: "+QIRD: 5\r\nhello", expected: at.KindSizedData},

		// Subscription messages
		{name: "Subscription message", input: "\r\n+QMTRECV: 0,1,\"topic\",\"msg\"\r\n", expected: at.KindMQTTRecv},

		// Data-ready notices win over the generic status prefix
		{name: "Socket data-ready notice", input: "\r\n+QIURC: \"recv\",2\r\n", expected: at.KindSocketNotice},
		{name: "Socket data-ready notice TLS", input: "\r\n+QSSLURC: \"recv\",0\r\n", expected: at.KindSocketNotice},
		{name: "Status notice", input: "\r\n+QIURC: \"pdpdeact\",1\r\n", expected: at.KindStatusNotice},
		{name: "Closed notice is status", input: "\r\n+QIURC: \"closed\",3\r\n", expected: at.KindStatusNotice},

		// Startup banner
		{name: "App ready banner", input: "\r\nAPP RDY\r\n", expected: at.KindAppReady},

		// Everything else belongs to the in-flight command
		{name: "Plain OK", input: "\r\nOK\r\n", expected: at.KindCommand},
		{name: "Command reply", input: "\r\n+CSQ: 15,99\r\nOK\r\n", expected: at.KindCommand},
		{name: "CME error", input: "\r\n+CME ERROR: 552\r\n", expected: at.KindCommand},
		{name: "Data prompt", input: "\r\n> ", expected: at.KindCommand},
		{name: "Empty chunk", input: "", expected: at.KindCommand},
		{name: "Bare CRLF", input: "\r\n", expected: at.KindCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := at.ClassifyChunk([]byte(tt.input)); got != tt.expected {
				t.Errorf("expected kind %v, got %v for input %q", tt.expected, got, tt.input)
			}
		})
	}
}

func TestTrimLeadingCRLF(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"\r\nOK\r\n", "OK\r\n"},
		{"\r\n\r\nOK\r\n", "OK\r\n"},
		{"OK\r\n", "OK\r\n"},
		{"\r\n", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := string(at.TrimLeadingCRLF([]byte(tt.input))); got != tt.expected {
			t.Errorf("TrimLeadingCRLF(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestResultTerminal(t *testing.T) {
	tests := []struct {
		result   at.Result
		terminal bool
		errored  bool
	}{
		{at.ResultPending, false, false},
		{at.ResultSuccess, true, false},
		{at.ResultBadRequest, true, true},
		{at.ResultTimeout, true, true},
		{at.ResultConflict, true, true},
		{at.ResultError, true, true},
		{at.Result(552), true, true}, // device fault code, verbatim
	}

	for _, tt := range tests {
		if got := tt.result.Terminal(); got != tt.terminal {
			t.Errorf("Result(%d).Terminal() = %v, want %v", tt.result, got, tt.terminal)
		}
		if got := tt.result.Errored(); got != tt.errored {
			t.Errorf("Result(%d).Errored() = %v, want %v", tt.result, got, tt.errored)
		}
	}
}
