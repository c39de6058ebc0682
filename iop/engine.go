// Package iop is the I/O processor for the modem bridge: it clocks bytes
// to and from the bridge chip under interrupt, classifies arriving
// messages, and queues them per stream for the action controller and
// per-socket consumers.
package iop

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/edgewire/ltem/at"
	"github.com/edgewire/ltem/bridge"
)

// FaultFunc reports an unrecoverable condition: buffer overflow, pool
// exhaustion, inconsistent ring state. These indicate provisioning defects,
// not transient load, and the default handler terminates the process.
type FaultFunc func(status int, msg string)

// XfrResult is the outcome of a command-stream drain call.
type XfrResult int

const (
	// XfrIncomplete means nothing was ready.
	XfrIncomplete XfrResult = iota
	// XfrComplete means every queued fragment was drained.
	XfrComplete
	// XfrTruncated means the caller's buffer filled before a fragment was
	// fully copied; the remaining bytes of that fragment are lost.
	XfrTruncated
)

// continuation transfer modes; only one continuation can be mid-flight at
// a time, so the mode and its counters live on the engine.
type xferMode int

const (
	modeIdle xferMode = iota
	// modeSizedBytes counts down a declared byte count.
	modeSizedBytes
	// modeEndPhrase watches each chunk's tail for an end phrase.
	modeEndPhrase
)

// Config wires an Engine to its collaborators.
type Config struct {
	Bridge bridge.Bridge
	Log    *zap.Logger
	Fault  FaultFunc

	// Invoke issues an AT command on the action channel. The deferred
	// dispatcher uses it to request a sized read when a socket signals
	// data pending.
	Invoke func(cmd string, retry bool) bool
	// CompleteRead releases the in-flight sized-read command: its reply
	// arrives as socket data, never as a command response.
	CompleteRead func()
}

// Engine owns the receive control-block ring, the outbound byte ring, and
// the per-stream head/tail bookkeeping. The interrupt classifier runs on
// the bridge's interrupt callback; everything else runs in the single
// cooperative normal context.
type Engine struct {
	br    bridge.Bridge
	log   *zap.Logger
	fault FaultFunc

	invoke       func(cmd string, retry bool) bool
	completeRead func()

	tx *TxRing

	blks [rxSlotCount]ctrlBlock
	// rxHead is advanced only by the classifier (interrupt context);
	// rxTail only by the dispatcher (normal context).
	rxHead atomic.Int32
	rxTail int32

	cmdHead int32
	cmdTail int32

	// sockMu serializes the per-socket head/tail handoff between the
	// classifier (interrupt context, binding a fresh data slot) and the
	// normal-context drain/finalize pair; the pair of indices must move
	// together.
	sockMu   sync.Mutex
	sockHead [MaxSockets]int32
	sockTail [MaxSockets]int32

	// continuation state, touched only in interrupt context
	mode       xferMode
	contBlk    int32
	remaining  int
	endPhrase  []byte
	dataSocket atomic.Int32

	appReady  atomic.Bool
	statusMsg []byte
}

// NewEngine creates an engine bound to a bridge. The interrupt handler is
// not attached until Start.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		br:           cfg.Bridge,
		log:          cfg.Log,
		fault:        cfg.Fault,
		invoke:       cfg.Invoke,
		completeRead: cfg.CompleteRead,
		tx:           NewTxRing(txRingSize),
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.fault == nil {
		logger := e.log
		e.fault = func(status int, msg string) {
			logger.Fatal("iop fault", zap.Int("status", status), zap.String("msg", msg))
		}
	}
	if e.invoke == nil {
		e.invoke = func(string, bool) bool { return false }
	}
	if e.completeRead == nil {
		e.completeRead = func() {}
	}

	for i := range e.blks {
		e.blks[i].owner.Store(ownerFree)
	}
	for i := range e.sockHead {
		e.sockHead[i] = -1
		e.sockTail[i] = -1
	}
	e.dataSocket.Store(-1)
	return e
}

// Start attaches the interrupt handler to the bridge.
func (e *Engine) Start() {
	e.br.AttachISR(e.ServiceIRQ)
}

// AppReady reports whether the module's startup banner has been seen.
func (e *Engine) AppReady() bool {
	return e.appReady.Load()
}

/* TX path
------------------------------------------------------------------------- */

// TxSend queues outbound bytes. A short enqueue is a fatal overflow: the
// ring is provisioned for worst-case traffic, not flow-controlled. Unless
// deferSend is set, a chunk is pushed to the bridge immediately when its
// transmit FIFO has nothing in flight; otherwise the TX-ready interrupt
// drains the remainder.
func (e *Engine) TxSend(data []byte, deferSend bool) {
	if n := e.tx.Put(data); n != len(data) {
		e.fault(500, "iop: tx buffer overflow")
		return
	}
	if !deferSend {
		e.txSendChunk()
	}
}

func (e *Engine) txSendChunk() {
	// a partially drained FIFO means a TX flow is underway and the
	// interrupt will keep servicing the ring until it empties
	if e.br.TxSpace() != bridge.FIFOSize {
		return
	}

	var chunk [bridge.FIFOSize]byte
	if n := e.tx.Take(chunk[:]); n > 0 {
		if _, err := e.br.Write(chunk[:n]); err != nil {
			e.fault(500, "iop: bridge write failed")
		}
	}
}

func (e *Engine) serviceTx() {
	space := e.br.TxSpace()
	if space <= 0 {
		return
	}
	if space > bridge.FIFOSize {
		space = bridge.FIFOSize
	}

	var chunk [bridge.FIFOSize]byte
	if n := e.tx.Take(chunk[:space]); n > 0 {
		if _, err := e.br.Write(chunk[:n]); err != nil {
			e.fault(500, "iop: bridge write failed")
		}
	}
}

/* interrupt-context receive
------------------------------------------------------------------------- */

// ServiceIRQ is the bridge interrupt handler. It loops over the status
// register until no condition remains pending, then re-checks the raw
// interrupt line: the line can re-assert in a narrow window right after
// the status reads clear, and missing that window leaves the interrupt
// stuck low. The explicit re-check loop is deliberate.
func (e *Engine) ServiceIRQ() {
	for {
		st := e.br.ReadStatus()
		for st.Pending {
			switch st.Source {
			case bridge.SourceRxError:
				e.log.Debug("rx line error, flushing fifo")
				if err := e.br.FlushRx(); err != nil {
					e.fault(500, "iop: rx fifo flush failed")
					return
				}
			case bridge.SourceRxReady, bridge.SourceRxTimeout:
				e.serviceRx()
			case bridge.SourceTxReady:
				e.serviceTx()
			}
			st = e.br.ReadStatus()
		}

		if !e.br.Asserted() {
			return
		}
	}
}

func (e *Engine) serviceRx() {
	lvl := e.br.RxLevel()
	if lvl <= 0 {
		return
	}

	if e.mode != modeIdle {
		e.serviceContinuation(lvl)
		return
	}

	idx := e.openCtrlBlock()
	if idx < 0 {
		return
	}
	cb := &e.blks[idx]

	max := lvl
	if max > primBufSize {
		max = primBufSize
	}
	n, err := e.br.Read(cb.prim[:max])
	if err != nil || n == 0 {
		cb.reset()
		return
	}
	cb.primLen = n
	e.classifyChunk(idx)
}

// serviceContinuation appends a chunk to the active continuation slot's
// extension buffer and decides whether the transfer is complete.
func (e *Engine) serviceContinuation(lvl int) {
	cb := &e.blks[e.contBlk]

	// in a counted transfer only the declared remainder belongs to this
	// message; bytes past it stay in the FIFO for fresh classification
	if e.mode == modeSizedBytes && lvl > e.remaining {
		lvl = e.remaining
	}

	if free := cap(cb.ext) - len(cb.ext); lvl > free {
		e.fault(500, "iop: extension buffer overflow")
		return
	}

	was := len(cb.ext)
	cb.ext = cb.ext[:was+lvl]
	n, err := e.br.Read(cb.ext[was : was+lvl])
	cb.ext = cb.ext[:was+n]
	if err != nil || n == 0 {
		return
	}

	switch e.mode {
	case modeSizedBytes:
		e.remaining -= n
		if e.remaining <= 0 {
			e.finishContinuation(cb)
		}
	case modeEndPhrase:
		if bytes.HasSuffix(cb.ext, e.endPhrase) {
			e.finishContinuation(cb)
		}
	}
}

func (e *Engine) finishContinuation(cb *ctrlBlock) {
	e.mode = modeIdle
	e.remaining = 0
	e.endPhrase = nil
	e.dataSocket.Store(-1)
	cb.dataReady.Store(true)
}

// openCtrlBlock finds the next free slot after the ring head. The pool has
// no backpressure: wrapping back to the head means every slot is occupied,
// which is a provisioning defect and fatal.
func (e *Engine) openCtrlBlock() int32 {
	head := e.rxHead.Load()
	idx := head
	for {
		idx = advIndex(idx)
		if idx == head {
			e.fault(500, "iop: rx control block pool exhausted")
			return -1
		}
		if !e.blks[idx].occupied() {
			break
		}
	}
	e.blks[idx].owner.Store(ownerAllocated)
	e.rxHead.Store(idx)
	return idx
}

// classifyChunk performs the prefix classification of a first chunk. The
// sized-data and subscription headers are handled here, at interrupt
// priority, because continuation buffering must be configured before the
// next chunk lands. Everything else is published for the deferred
// dispatcher.
func (e *Engine) classifyChunk(idx int32) {
	cb := &e.blks[idx]
	chunk := cb.prim[:cb.primLen]
	cb.kind = at.ClassifyChunk(chunk)

	switch cb.kind {
	case at.KindSizedData:
		e.classifySizedData(idx)
	case at.KindMQTTRecv:
		e.classifyMQTT(idx)
	default:
		cb.dataReady.Store(true)
	}
}

func (e *Engine) classifySizedData(idx int32) {
	cb := &e.blks[idx]
	chunk := cb.prim[:cb.primLen]

	// the data stream is the sized-read command's reply; release the
	// action slot so the channel clears
	e.completeRead()

	lead := cb.primLen - len(at.TrimLeadingCRLF(chunk))
	hdr := len(at.HdrSizedRead)
	if chunk[lead+1] == 'Q' && chunk[lead+2] == 'S' {
		hdr = len(at.HdrSizedReadSSL)
	}

	declared, digitsEnd := parseDecimal(chunk, lead+hdr)
	cb.rmtHostInData = digitsEnd < len(chunk) && chunk[digitsEnd] == ','

	payloadAt := digitsEnd + len(at.CRLF)
	if eol := bytes.Index(chunk[digitsEnd:], []byte(at.CRLF)); eol >= 0 {
		payloadAt = digitsEnd + eol + len(at.CRLF)
	}
	if payloadAt > cb.primLen {
		payloadAt = cb.primLen
	}
	cb.payloadAt = payloadAt

	if declared == 0 {
		// empty read: end-of-data sentinel for the stream, nothing to
		// deliver
		e.mode = modeIdle
		e.dataSocket.Store(-1)
		cb.reset()
		return
	}

	sock := e.dataSocket.Load()
	if sock < 0 {
		// no sized read outstanding; let the reply reach the action layer
		cb.dataReady.Store(true)
		return
	}

	inPrim := cb.primLen - payloadAt
	if inPrim > declared {
		// trailing bytes coalesced into the burst; the payload ends at the
		// declared count. Unlike the counted continuation, which leaves its
		// excess in the FIFO for reclassification, these bytes were already
		// pulled alongside the header and cannot be put back, so anything
		// past the declared count is dropped here.
		cb.primLen = payloadAt + declared
		inPrim = declared
	}

	if declared > sizedPrimCap || inPrim < declared {
		cb.ext = make([]byte, 0, declared)
		cb.ext = append(cb.ext, cb.prim[payloadAt:cb.primLen]...)
		if inPrim < declared {
			e.mode = modeSizedBytes
			e.remaining = declared - inPrim
			e.contBlk = idx
			cb.owner.Store(sock)
			e.bindSocketSlot(sock, idx)
			return
		}
	}

	cb.owner.Store(sock)
	e.bindSocketSlot(sock, idx)
	e.finishContinuation(cb)
}

func (e *Engine) classifyMQTT(idx int32) {
	cb := &e.blks[idx]
	chunk := cb.prim[:cb.primLen]

	phrase := []byte(at.EndPhraseMQTT)
	if bytes.HasSuffix(chunk, phrase) {
		// complete in one chunk; the dispatcher binds it to the command
		// stream like any other reply text
		cb.dataReady.Store(true)
		return
	}

	cb.ext = make([]byte, 0, mqttBufSize)
	cb.ext = append(cb.ext, chunk...)
	e.mode = modeEndPhrase
	e.endPhrase = phrase
	e.contBlk = idx
}

// bindSocketSlot appends a data slot to its socket's ready queue,
// becoming the tail when the queue was empty.
func (e *Engine) bindSocketSlot(sock, idx int32) {
	e.sockMu.Lock()
	e.sockHead[sock] = idx
	if e.sockTail[sock] < 0 {
		e.sockTail[sock] = idx
	}
	e.sockMu.Unlock()
}

/* deferred dispatch (normal context)
------------------------------------------------------------------------- */

// RecvDoWork finalizes classification that stage one could not resolve
// from a prefix alone. Callers performing blocking waits must invoke it,
// directly or via the action layer's await, to make progress.
func (e *Engine) RecvDoWork() {
	head := e.rxHead.Load()
	for e.rxTail != head {
		next := advIndex(e.rxTail)
		cb := &e.blks[next]

		if cb.owner.Load() == ownerAllocated && !cb.dataReady.Load() {
			// mid-assembly; resume on a later pass
			return
		}
		e.rxTail = next
		if cb.owner.Load() == ownerAllocated {
			e.dispatch(next)
		}
	}
}

func (e *Engine) dispatch(idx int32) {
	cb := &e.blks[idx]
	line := at.TrimLeadingCRLF(cb.prim[:cb.primLen])

	switch cb.kind {
	case at.KindSocketNotice:
		sock := parseNoticeSocket(line)
		if sock >= 0 && sock < MaxSockets {
			e.requestSizedRead(sock)
		} else {
			e.log.Warn("data-ready notice with unusable socket id",
				zap.ByteString("line", line))
		}
		cb.reset()

	case at.KindStatusNotice:
		if e.statusMsg != nil {
			e.fault(500, "iop: status mailbox overflow")
			return
		}
		msg := line[len(at.URCStatus):]
		e.statusMsg = append([]byte(nil), msg...)
		cb.reset()

	case at.KindAppReady:
		e.log.Debug("module app ready")
		e.appReady.Store(true)
		cb.reset()

	default:
		cb.owner.Store(ownerCommand)
		e.cmdHead = idx
	}
}

// requestSizedRead issues the explicit read for a socket that signaled
// data pending. The socket's queue tail ends up bound to the slot that
// carries the actual bytes, once the reply is classified.
func (e *Engine) requestSizedRead(sock int32) {
	e.dataSocket.Store(sock)
	if !e.invoke(fmt.Sprintf("AT+QIRD=%d", sock), false) {
		e.log.Warn("sized read deferred, command channel busy",
			zap.Int32("socket", sock))
	}
}

/* stream drains (normal context)
------------------------------------------------------------------------- */

// RxGetCmdQueued copies queued command-reply fragments into buf, resetting
// each slot as it is consumed. It reports Complete when everything queued
// was drained, Truncated when buf filled mid-fragment (the remainder of
// that fragment is lost for this call), and Incomplete when nothing was
// ready.
func (e *Engine) RxGetCmdQueued(buf []byte) (int, XfrResult) {
	e.RecvDoWork()

	head := &e.blks[e.cmdHead]
	if head.owner.Load() != ownerCommand || !head.dataReady.Load() {
		return 0, XfrIncomplete
	}

	n := 0
	tail := e.cmdTail
	for {
		cb := &e.blks[tail]
		if cb.owner.Load() == ownerCommand && cb.dataReady.Load() {
			data := cb.payload()
			c := copy(buf[n:], data)
			n += c
			cb.reset()
			if c < len(data) {
				return n, XfrTruncated
			}
		}

		if tail == e.cmdHead {
			break
		}
		tail = advIndex(tail)
		if tail == e.cmdTail {
			e.fault(500, "iop: command queue traversal inconsistent")
			return n, XfrIncomplete
		}
	}
	e.cmdTail = tail

	return n, XfrComplete
}

// RxGetSocketQueued returns the assembled bytes of the socket's ready tail
// slot without consuming it; TailFinalize releases the slot. The second
// return is false when nothing is ready. Remote sender address fields,
// when present in the data, are not surfaced.
func (e *Engine) RxGetSocketQueued(sock int) ([]byte, bool) {
	if sock < 0 || sock >= MaxSockets {
		return nil, false
	}
	e.RecvDoWork()

	e.sockMu.Lock()
	t := e.sockTail[sock]
	e.sockMu.Unlock()
	if t < 0 {
		return nil, false
	}
	cb := &e.blks[t]
	if cb.owner.Load() != int32(sock) || !cb.dataReady.Load() {
		return nil, false
	}
	return cb.payload(), true
}

// TailFinalize resets the drained tail slot of a socket stream and
// advances the tail to the next slot the socket owns, if any. The whole
// advance runs under the handoff lock: a data reply binding a fresh slot
// lands either wholly before the advance (and is found by the scan) or
// wholly after it (and re-seeds an emptied queue).
func (e *Engine) TailFinalize(sock int) {
	if sock < 0 || sock >= MaxSockets {
		return
	}
	e.sockMu.Lock()
	defer e.sockMu.Unlock()

	t := e.sockTail[sock]
	if t < 0 {
		return
	}
	head := e.sockHead[sock]
	e.blks[t].reset()

	for i := 0; i < rxSlotCount && t != head; i++ {
		t = advIndex(t)
		if e.blks[t].owner.Load() == int32(sock) {
			e.sockTail[sock] = t
			return
		}
	}
	e.sockTail[sock] = -1
	e.sockHead[sock] = -1
}

/* status mailbox
------------------------------------------------------------------------- */

// TakeStatusMessage drains the single-slot unsolicited status mailbox.
// A second status arriving before the first is taken is a fatal overflow;
// there is no queueing for these.
func (e *Engine) TakeStatusMessage() (string, bool) {
	if e.statusMsg == nil {
		return "", false
	}
	msg := string(e.statusMsg)
	e.statusMsg = nil
	return msg, true
}

/* helpers
------------------------------------------------------------------------- */

func advIndex(i int32) int32 {
	i++
	if i == rxSlotCount {
		return 0
	}
	return i
}

// parseDecimal reads a decimal run starting at from, returning the value
// and the index one past the last digit.
func parseDecimal(b []byte, from int) (int, int) {
	v := 0
	i := from
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		v = v*10 + int(b[i]-'0')
		i++
	}
	return v, i
}

// parseNoticeSocket extracts the socket id from a data-ready notice line,
// e.g. `+QIURC: "recv",1`. Returns -1 when no id is present.
func parseNoticeSocket(line []byte) int32 {
	for i := 0; i < len(line); i++ {
		if line[i] >= '0' && line[i] <= '9' {
			v, _ := parseDecimal(line, i)
			return int32(v)
		}
	}
	return -1
}
