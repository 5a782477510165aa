package logflags

import (
	"errors"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// Package-level category flags, set once by Setup and read by the
// corresponding *Logger functions below. jdwpd has no gdbserial/lldb/DWARF
// layers of its own, so the categories name the session core's own
// subsystems instead of the teacher's.
var (
	session   = false
	transport = false
	handshake = false
	packet    = false
	token     = false
)

// Session returns true if the session controller (Create/Run/HandlePacket)
// should log its lifecycle transitions.
func Session() bool { return session }

// SessionLogger returns a logger for the session controller.
func SessionLogger() Logger {
	return makeFlaggableLogger(session, Fields{"layer": "session"})
}

// Transport returns true if transport plugins should log connect/accept
// activity.
func Transport() bool { return transport }

// TransportLogger returns a logger for the transport plugins.
func TransportLogger() Logger {
	return makeFlaggableLogger(transport, Fields{"layer": "transport"})
}

// Handshake returns true if the 14-byte handshake exchange should be
// logged byte-for-byte.
func Handshake() bool { return handshake }

// HandshakeLogger returns a logger for handshake processing.
func HandshakeLogger() Logger {
	return makeFlaggableLogger(handshake, Fields{"layer": "handshake"})
}

// Packet returns true if every framed packet should be logged.
func Packet() bool { return packet }

// PacketLogger returns a logger for packet framing/dispatch.
func PacketLogger() Logger {
	return makeFlaggableLogger(packet, Fields{"layer": "packet"})
}

// Token returns true if JDWP token acquisition/release should be logged.
func Token() bool { return token }

// TokenLogger returns a logger for the single-in-flight token.
func TokenLogger() Logger {
	return makeFlaggableLogger(token, Fields{"layer": "token"})
}

var errLogstrWithoutLog = errors.New("--log-output specified without --log")

// Setup sets the category flags based on the contents of logstr, and
// points every Logger produced by this package (and the plain "log"
// package, for anything still using it) at dest. dest may be "" (stderr),
// a file path, or a decimal file descriptor number, matching the
// convention of the teacher's own --log-dest flag.
func Setup(logFlag bool, logstr, dest string) error {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	if !logFlag {
		log.SetOutput(io.Discard)
		logOut = io.Discard
		if logstr != "" {
			return errLogstrWithoutLog
		}
		return nil
	}
	if logstr == "" {
		logstr = "session"
	}
	for _, cmd := range strings.Split(logstr, ",") {
		switch cmd {
		case "session":
			session = true
		case "transport":
			transport = true
		case "handshake":
			handshake = true
		case "packet":
			packet = true
		case "token":
			token = true
		}
	}

	w, err := openLogDest(dest)
	if err != nil {
		return err
	}
	logOut = w
	log.SetOutput(w)
	return nil
}

func openLogDest(dest string) (io.Writer, error) {
	switch {
	case dest == "":
		return os.Stderr, nil
	case isDecimal(dest):
		fd, err := strconv.Atoi(dest)
		if err != nil {
			return nil, err
		}
		return os.NewFile(uintptr(fd), "jdwpd-log"), nil
	default:
		return os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	}
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Close flushes and closes any open log destination file. Safe to call
// even if Setup was never called or wrote to stderr/discard.
func Close() {
	if f, ok := logOut.(*os.File); ok && f != os.Stderr && f != os.Stdout {
		f.Close()
	}
}
