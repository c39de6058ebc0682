// Package at defines the wire-level vocabulary of the modem's textual
// command/response protocol: the well-known terminal tokens, the prefixes
// that open asynchronous messages, first-chunk classification, and the
// completion parsers used to decide when a command response is finished.
package at

import "strings"

const (
	// Terminal control
	CR     = "\r"
	CRLF   = "\r\n"
	Prompt = "> "
	CtrlZ  = "\x1a"

	// Final result tokens. Responses terminate in exactly one of these,
	// or in the extended fault preamble followed by a decimal code.
	OK        = "OK\r\n"
	Error     = "ERROR\r\n"
	Fail      = "FAIL\r\n"
	NoCarrier = "NO CARRIER\r\n"

	// CMEPreamble opens a device-reported fault: the preamble is followed
	// by a decimal fault code which is propagated verbatim to callers.
	CMEPreamble = "+CME ERROR:"
)

// Message-opening prefixes. A newly received first chunk is matched against
// these, in priority order, to decide which stream the message belongs to.
const (
	// Sized-data headers: a declared byte count follows the prefix.
	HdrSizedRead    = "+QIRD: "
	HdrSizedReadSSL = "+QSSLRECV: "

	// Subscription message header: no declared count, the payload runs
	// until EndPhraseMQTT.
	HdrMQTTRecv = "+QMTRECV: "

	// Unsolicited socket data-ready notices.
	URCSocketRecv    = "+QIURC: \"recv"
	URCSocketRecvSSL = "+QSSLURC: \"recv"

	// Generic unsolicited status message (pdp deactivation and friends).
	URCStatus = "+QIURC: "

	// One-time startup banner emitted when module firmware is up.
	BannerAppReady = "APP RDY\r\n"

	// EndPhraseMQTT terminates a subscription message payload.
	EndPhraseMQTT = "\"\r\n"
)

// Kind classifies the first chunk of a newly arrived message.
type Kind int

const (
	// KindCommand is the default: a reply belonging to the in-flight command.
	KindCommand Kind = iota
	// KindSizedData is a sized-data read header (+QIRD / +QSSLRECV),
	// handled at interrupt priority because continuation buffering must be
	// configured before the next chunk lands.
	KindSizedData
	// KindMQTTRecv is a subscription message header, also handled at
	// interrupt priority (end-phrase continuation).
	KindMQTTRecv
	// KindSocketNotice is an unsolicited socket data-ready notice, resolved
	// by the deferred dispatcher (it triggers an explicit sized read).
	KindSocketNotice
	// KindStatusNotice is an unsolicited status message bound for the
	// single-slot status mailbox.
	KindStatusNotice
	// KindAppReady is the one-time startup banner.
	KindAppReady
)

// ClassifyChunk determines the kind of a newly received first chunk.
// Chunks typically open with CRLF; the leading terminator is skipped before
// prefix matching. Priority order matters: the socket data-ready notices
// must win over the generic status prefix they share an opening with.
func ClassifyChunk(chunk []byte) Kind {
	s := string(TrimLeadingCRLF(chunk))

	switch {
	case strings.HasPrefix(s, HdrSizedRead), strings.HasPrefix(s, HdrSizedReadSSL):
		return KindSizedData
	case strings.HasPrefix(s, HdrMQTTRecv):
		return KindMQTTRecv
	case strings.HasPrefix(s, URCSocketRecv), strings.HasPrefix(s, URCSocketRecvSSL):
		return KindSocketNotice
	case strings.HasPrefix(s, URCStatus):
		return KindStatusNotice
	case strings.HasPrefix(s, BannerAppReady):
		return KindAppReady
	default:
		return KindCommand
	}
}

// TrimLeadingCRLF strips the line terminator that opens most modem messages.
func TrimLeadingCRLF(b []byte) []byte {
	for len(b) > 0 && (b[0] == '\r' || b[0] == '\n') {
		b = b[1:]
	}
	return b
}
