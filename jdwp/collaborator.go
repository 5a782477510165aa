package jdwp

import "context"

// Collaborator is the runtime that a Session is embedded in. It stands
// in for the process-wide singletons (Dbg, Runtime::Current(), the
// thread list) the session core would otherwise reach into directly:
// every side effect the core needs from its host goes through this
// interface, so a Session itself holds no process-global state and can
// be exercised against a fake in tests.
type Collaborator interface {
	// AttachCurrentThread registers the calling goroutine (the worker
	// loop) with the host runtime as the debugger's thread, e.g. so a
	// garbage collector can find it. Called once, from the worker
	// goroutine, before the first Accept/Establish.
	AttachCurrentThread(ctx context.Context) error

	// DetachCurrentThread undoes AttachCurrentThread. Called once, from
	// the same goroutine, as the worker loop exits.
	DetachCurrentThread()

	// SetWaitingInDebuggerLoop reports whether the worker loop is
	// currently blocked waiting for a connection, so host tooling can
	// tell "no debugger yet" apart from "debugger attached".
	SetWaitingInDebuggerLoop(waiting bool)

	// Connected is invoked once a debugger has completed the handshake
	// and, for suspend=y sessions, the host has finished any initial
	// thread suspension.
	Connected()

	// Disconnected is invoked after the connection is torn down,
	// whether by the peer, by Close, or by a transport error.
	Disconnected()

	// ProcessRequest hands a fully framed command packet to the host
	// for dispatch and returns the reply payload (the bytes that follow
	// the 11-byte header) to be wrapped and sent back. The host is
	// responsible for producing JDWP-correct error replies for unknown
	// command sets/commands; ProcessRequest itself only returns an error
	// for conditions the session should treat as fatal to the
	// connection.
	ProcessRequest(ctx context.Context, cmdSet, cmd uint8, data []byte) (reply []byte, errorCode uint16, err error)

	// UnregisterAll releases any breakpoints, watchpoints, or event
	// requests installed by the departing debugger.
	UnregisterAll()

	// NotifyDdmsConnected and NotifyDdmsDisconnected tell the Dalvik
	// Debug Monitor Server layer that a JDWP client is present, so
	// DDMS-level active-session state tracks the JDWP connection.
	NotifyDdmsConnected()
	NotifyDdmsDisconnected()

	// UndoDebuggerSuspensions resumes any threads a disconnecting
	// debugger left suspended, so a detach never leaves the process
	// permanently frozen.
	UndoDebuggerSuspensions()

	// ProcessID returns the pid the Host Tunnel transport should
	// present to the local broker when requesting a connection.
	ProcessID() int
}

// NopCollaborator is a Collaborator that does nothing, useful for
// exercising the transport and framing layers in isolation. ProcessID
// returns 0; callers exercising the Host Tunnel transport with it should
// expect the broker to reject the request.
type NopCollaborator struct{}

func (NopCollaborator) AttachCurrentThread(ctx context.Context) error { return nil }
func (NopCollaborator) DetachCurrentThread() {}
func (NopCollaborator) SetWaitingInDebuggerLoop(waiting bool) {}
func (NopCollaborator) Connected() {}
func (NopCollaborator) Disconnected() {}

func (NopCollaborator) ProcessRequest(ctx context.Context, cmdSet, cmd uint8, data []byte) ([]byte, uint16, error) {
	return nil, 0, nil
}

func (NopCollaborator) UnregisterAll() {}
func (NopCollaborator) NotifyDdmsConnected() {}
func (NopCollaborator) NotifyDdmsDisconnected() {}
func (NopCollaborator) UndoDebuggerSuspensions() {}
func (NopCollaborator) ProcessID() int { return 0 }
