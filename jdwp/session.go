package jdwp

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// threadIDDialFailed is the sentinel GetDebugThreadID reports once a
	// connection attempt has definitively failed. Kept signed so the
	// sentinel is a plain -1, distinct from 0 ("not yet attached").
	threadIDDialFailed int64 = -1
	// debugThreadIDAttached is the identity the worker reports once a
	// debugger has completed the handshake on the current connection.
	// The original reports the managed runtime's own thread id for the
	// worker; this core has no such registry of its own; since exactly
	// one worker goroutine ever holds the connection, a fixed positive
	// constant carries the same "attached, non-zero" meaning the
	// embedding API and Create's suspend-wait both test for.
	debugThreadIDAttached int64 = 1
)

const (
	initialRequestSerial uint32 = 0x10000000
	initialEventSerial   uint32 = 0x20000000
)

// Session is the JDWP session controller: one dedicated worker goroutine
// owns every blocking operation (accepting or dialing a transport,
// reading packets, running the handshake) while Create, Close, and the
// embedding API's other exported methods are safe to call from any
// goroutine.
//
// Each concern that needs its own wait/signal gets its own
// mutex+condition variable pair rather than sharing one lock, so a
// goroutine blocked waiting for attach can't be held up by a goroutine
// that only wants to check shutdown state.
type Session struct {
	opts   Options
	collab Collaborator
	trans  plugin

	threadStartMu   sync.Mutex
	threadStartCond *sync.Cond
	threadStarted   bool

	attachMu   sync.Mutex
	attachCond *sync.Cond

	tokenMu   sync.Mutex
	tokenCond *sync.Cond
	tokenHeld bool

	shutdownMu  sync.Mutex
	shutdownReq bool
	exited      chan struct{}

	// ns is written only by the worker goroutine (Store on connect,
	// Store(nil) on disconnect in resetState) but read from any
	// goroutine through the exported thread-safe methods below
	// (IsConnected, SendRequest, SendBufferedRequest, Close), so it has
	// to be an atomic pointer rather than a plain field.
	ns atomic.Pointer[netState]

	requestSerial  atomic.Uint32
	eventSerial    atomic.Uint32
	debugThreadID  atomic.Int64
	lastActivity   atomic.Int64 // unix nanoseconds
	exitAfterReply atomic.Bool
	exitStatus     atomic.Int32

	wg sync.WaitGroup
}

// Create parses no options itself (see ParseOptions); it starts the
// worker goroutine and blocks, as the original does, until that
// goroutine has registered itself with the host runtime and, when
// opts.Suspend is set, until a debugger has actually attached or the
// attempt has definitively failed.
func Create(ctx context.Context, opts Options, collab Collaborator) (*Session, error) {
	trans, err := newPlugin(opts.Transport)
	if err != nil {
		return nil, err
	}

	s := &Session{
		opts:   opts,
		collab: collab,
		trans:  trans,
		exited: make(chan struct{}),
	}
	s.threadStartCond = sync.NewCond(&s.threadStartMu)
	s.attachCond = sync.NewCond(&s.attachMu)
	s.tokenCond = sync.NewCond(&s.tokenMu)
	s.requestSerial.Store(initialRequestSerial)
	s.eventSerial.Store(initialEventSerial)

	if opts.Server {
		if err := trans.listen(ctx, opts); err != nil {
			return nil, err
		}
	}

	s.wg.Add(1)
	go s.run(ctx)

	s.threadStartMu.Lock()
	for !s.threadStarted {
		s.threadStartCond.Wait()
	}
	s.threadStartMu.Unlock()

	if opts.Suspend {
		s.attachMu.Lock()
		for s.debugThreadID.Load() == 0 {
			s.attachCond.Wait()
		}
		s.attachMu.Unlock()

		if s.debugThreadID.Load() == threadIDDialFailed || !s.IsActive() {
			s.wg.Wait()
			return nil, ErrAttachFailed
		}
	}

	return s, nil
}

// run is the body of the dedicated worker goroutine: it never returns
// until Close is called, a client-mode, non-AcceptMulti session
// finishes a single debugger conversation, ExitAfterReplying ends the
// current conversation, or a connection attempt (or attaching the worker
// to the host runtime) definitively fails.
func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.exited)

	if err := s.collab.AttachCurrentThread(ctx); err != nil {
		log().WithError(err).Error("jdwp: worker failed to attach current thread")
		s.failAttach()
		s.signalThreadStarted()
		return
	}
	defer s.collab.DetachCurrentThread()

	s.signalThreadStarted()

	for {
		s.collab.SetWaitingInDebuggerLoop(true)
		ns, err := s.trans.establish(ctx, s.opts, s.collab.ProcessID())
		s.collab.SetWaitingInDebuggerLoop(false)

		if err != nil {
			s.failAttach()
			if !s.shuttingDown() {
				log().WithError(err).Warn("jdwp: establishing connection failed")
			}
			return
		}

		s.ns.Store(ns)
		s.markActivity()
		s.collab.Connected()
		s.collab.NotifyDdmsConnected()

		s.attachMu.Lock()
		s.debugThreadID.Store(debugThreadIDAttached)
		s.attachCond.Broadcast()
		s.attachMu.Unlock()

		s.serve(ctx, ns)
		exiting := s.exitAfterReply.Load()

		ns.close()
		s.collab.UnregisterAll()
		s.collab.NotifyDdmsDisconnected()
		s.resetState()
		s.collab.Disconnected()
		s.collab.UndoDebuggerSuspensions()

		if exiting {
			return
		}
		if !s.opts.Server || s.shuttingDown() {
			return
		}
		// Server mode with AcceptMulti-style behavior: go back around
		// and wait for the next debugger.
	}
}

// serve drives the read/dispatch loop for one connected debugger. It
// takes the netState established by the caller directly, rather than
// reloading s.ns on every iteration: serve runs entirely on the worker
// goroutine, which is the only writer of s.ns, so there is nothing to
// synchronize against here.
func (s *Session) serve(ctx context.Context, ns *netState) {
	for {
		if s.shuttingDown() {
			return
		}
		pkt, err := ns.readPacket()
		if err != nil {
			if err != io.EOF {
				log().WithError(err).Warn("jdwp: reading packet failed")
			}
			return
		}
		if pkt == nil {
			continue // wake signal fired; re-check shutdown above
		}
		s.markActivity()
		if err := s.handlePacket(ctx, ns, pkt); err != nil {
			log().WithError(err).Warn("jdwp: handling packet failed")
			return
		}
		if s.exitAfterReply.Load() {
			return
		}
	}
}

func (s *Session) shuttingDown() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shutdownReq
}

// signalThreadStarted wakes Create's first wait, whether or not the
// worker went on to attach successfully.
func (s *Session) signalThreadStarted() {
	s.threadStartMu.Lock()
	s.threadStarted = true
	s.threadStartCond.Broadcast()
	s.threadStartMu.Unlock()
}

// failAttach records a definitive connection failure and wakes anyone
// blocked in Create's suspend-wait so it doesn't hang forever on a
// dial or accept that is never going to succeed.
func (s *Session) failAttach() {
	s.attachMu.Lock()
	s.debugThreadID.Store(threadIDDialFailed)
	s.attachCond.Broadcast()
	s.attachMu.Unlock()
}

// resetState clears per-connection state between debuggers, mirroring
// the original's reset of its net state on disconnect. Serial counters
// are deliberately left alone: a fresh debugger reconnecting mid-session
// has no reason to see its request/event ids restart.
func (s *Session) resetState() {
	s.tokenMu.Lock()
	tokenHeld := s.tokenHeld
	s.tokenMu.Unlock()
	if tokenHeld {
		log().Warn("jdwp: resetting session state while the JDWP token is still held")
	}

	s.attachMu.Lock()
	s.debugThreadID.Store(0)
	s.attachMu.Unlock()

	s.exitAfterReply.Store(false)
	s.ns.Store(nil)
}

// acquireToken blocks until no command being processed and no event
// being sent holds the token, then claims ownership so the caller's
// write can't be interleaved with another one.
func (s *Session) acquireToken() {
	s.tokenMu.Lock()
	for s.tokenHeld {
		s.tokenCond.Wait()
	}
	s.tokenHeld = true
	s.tokenMu.Unlock()
}

func (s *Session) releaseToken() {
	s.tokenMu.Lock()
	s.tokenHeld = false
	s.tokenCond.Signal()
	s.tokenMu.Unlock()
}

func (s *Session) markActivity() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// LastDebuggerActivity returns how long it has been since the current
// connection was established or a packet was last read from it (writes
// do not update the timestamp). It returns
// a negative duration if no debugger is currently attached, and zero if
// one is attached but no activity timestamp has been recorded yet.
func (s *Session) LastDebuggerActivity() time.Duration {
	if !s.IsConnected() {
		return -1
	}
	ns := s.lastActivity.Load()
	if ns == 0 {
		return 0
	}
	return time.Since(time.Unix(0, ns))
}

// IsConnected reports whether a debugger is currently attached.
func (s *Session) IsConnected() bool {
	ns := s.ns.Load()
	return ns != nil && ns.isConnected()
}

// IsActive reports whether the session's worker goroutine is still
// running; once false, no further debugger will ever attach.
func (s *Session) IsActive() bool {
	select {
	case <-s.exited:
		return false
	default:
		return true
	}
}

// GetDebugThreadID returns 0 if no debugger has completed the handshake
// on the current connection yet, debugThreadIDAttached once one has, or
// threadIDDialFailed if the most recent connection attempt failed
// outright.
func (s *Session) GetDebugThreadID() int64 {
	return s.debugThreadID.Load()
}

// ExitAfterReplying marks the session to end its worker loop as soon as
// the reply to the in-flight request has been sent, used by the
// VirtualMachine.Exit and Dispose commands. status is recorded for the
// embedder to read back via ExitStatus; the worker goroutine exits
// instead of terminating the process — a library has no business calling
// os.Exit on its caller's behalf, so acting on the status is left to the
// embedder.
func (s *Session) ExitAfterReplying(status int) {
	s.exitStatus.Store(int32(status))
	s.exitAfterReply.Store(true)
}

// ExitStatus returns the status last passed to ExitAfterReplying, or 0
// if it was never called.
func (s *Session) ExitStatus() int {
	return int(s.exitStatus.Load())
}

// NextRequestSerial returns the next outgoing command packet id.
func (s *Session) NextRequestSerial() uint32 {
	return s.requestSerial.Add(1) - 1
}

// NextEventSerial returns the next outgoing event id.
func (s *Session) NextEventSerial() uint32 {
	return s.eventSerial.Add(1) - 1
}

// SendRequest sends a VM-initiated command packet (typically an event)
// to the attached debugger, acquiring the token so it can't interleave
// with an in-flight reply.
func (s *Session) SendRequest(id uint32, cmdSet, cmd uint8, data []byte) error {
	ns := s.ns.Load()
	if ns == nil {
		return ErrDisconnected
	}
	header := make([]byte, packetHeaderLen)
	writePacketHeader(header, uint32(len(data))+packetHeaderLen, id, 0, cmdSet, cmd)
	s.acquireToken()
	defer s.releaseToken()
	return ns.writeBufferedPacket(header, data)
}

// SendBufferedRequest is like SendRequest but for callers that have
// already serialized the flags byte and the command-set/command pair
// into payload themselves (e.g. a precomputed event packet); header only carries the
// length and id fields that depend on this send.
func (s *Session) SendBufferedRequest(id uint32, payload []byte) error {
	ns := s.ns.Load()
	if ns == nil {
		return ErrDisconnected
	}
	header := make([]byte, 8)
	writeUint32(header[0:4], uint32(len(payload))+8)
	writeUint32(header[4:8], id)
	s.acquireToken()
	defer s.releaseToken()
	return ns.writeBufferedPacket(header, payload)
}

// NotifyDdmsActive tells the Collaborator's DDMS layer that a JDWP
// client is present. The worker loop already does this on every
// connect/disconnect; this is exposed for an embedder that wants to
// force the notification, e.g. after replaying connection state.
func (s *Session) NotifyDdmsActive() {
	s.collab.NotifyDdmsConnected()
}

// Close requests the worker goroutine shut down: a blocked read is
// interrupted via the net state's wake signal, a blocked accept by the
// transport's shutdown closing its listener, and the
// goroutine exits once it observes shuttingDown() at its next checkpoint.
// Close blocks until the worker goroutine has fully exited. A second
// call returns ErrClosed rather than blocking again.
func (s *Session) Close() error {
	s.shutdownMu.Lock()
	alreadyClosed := s.shutdownReq
	s.shutdownReq = true
	s.shutdownMu.Unlock()

	if alreadyClosed {
		return ErrClosed
	}

	if ns := s.ns.Load(); ns != nil {
		ns.wakeReader()
	}
	if err := s.trans.shutdown(); err != nil {
		log().WithError(err).Warn("jdwp: shutting down transport")
	}
	s.wg.Wait()
	return nil
}
