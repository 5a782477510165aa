package logflags

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the generic logging interface used throughout jdwpd, so that
// call sites never depend on logrus directly.
type Logger interface {
	WithField(key string, value interface{}) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
}

// Fields wraps structured fields attached to a Logger.
type Fields map[string]interface{}

// LoggerFactory builds a Logger for a given level and field set. Tests
// substitute this to capture output without touching global logrus state.
type LoggerFactory func(level logrus.Level, fields Fields, out io.Writer) Logger

var loggerFactory LoggerFactory

// SetLoggerFactory overrides how every Logger returned by this package is
// constructed. Passing nil restores the default logrus-backed factory.
func SetLoggerFactory(lf LoggerFactory) {
	loggerFactory = lf
}

var textFormatterInstance = &logrus.TextFormatter{FullTimestamp: true}

// logOut is the destination for enabled loggers; nil means os.Stderr
// (logrus's own default).
var logOut io.Writer

type logrusLogger struct {
	*logrus.Entry
}

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{l.Entry.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields Fields) Logger {
	return &logrusLogger{l.Entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) WithError(err error) Logger {
	return &logrusLogger{l.Entry.WithError(err)}
}

func makeLogger(level logrus.Level, fields Fields) Logger {
	if loggerFactory != nil {
		return loggerFactory(level, fields, logOut)
	}
	logger := logrus.New()
	logger.Level = level
	logger.Formatter = textFormatterInstance
	if logOut != nil {
		logger.Out = logOut
	}
	return &logrusLogger{logger.WithFields(logrus.Fields(fields))}
}

// makeFlaggableLogger returns a Logger at DebugLevel when enabled is
// true, ErrorLevel otherwise, so a disabled category still surfaces
// errors but drops its warnings and chatter.
func makeFlaggableLogger(enabled bool, fields Fields) Logger {
	level := logrus.ErrorLevel
	if enabled {
		level = logrus.DebugLevel
	}
	return makeLogger(level, fields)
}
