package jdwp

import "github.com/go-jdwp/jdwpd/pkg/logflags"

// log returns the shared logger for the session/options/transport code.
// It is cheap enough to call per log statement: logflags.SessionLogger
// only allocates a fresh logrus.Logger and Entry, it does not reopen any
// destination.
func log() logflags.Logger {
	return logflags.SessionLogger()
}
