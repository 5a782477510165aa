package jdwp

import "errors"

// Sentinel errors returned across the embedding API. Wrapped with extra
// context via fmt.Errorf("%w: ...", ...) where more detail helps a log
// reader; callers that only care about the failure kind can errors.Is
// against these instead of matching log text.
var (
	// ErrHelpRequested is returned when the option string is the literal
	// "help" rather than a k=v list.
	ErrHelpRequested = errors.New("jdwp: help requested")
	// ErrOptionSyntax covers any malformed or semantically invalid
	// option string (unknown transport, missing host, junk port, ...).
	ErrOptionSyntax = errors.New("jdwp: invalid option string")
	// ErrAttachFailed is returned by Create when suspend=y and the
	// transport never produces a live connection.
	ErrAttachFailed = errors.New("jdwp: connection failed")
	// ErrShortWrite is returned internally when a reply write transmits
	// fewer bytes than the reply buffer held; it is connection-fatal.
	ErrShortWrite = errors.New("jdwp: short write of reply")
	// ErrDisconnected is returned by write paths attempted while no
	// debugger is connected.
	ErrDisconnected = errors.New("jdwp: connection with debugger is closed")
	// ErrClosed is returned by operations attempted after Close.
	ErrClosed = errors.New("jdwp: session is closed")
)
