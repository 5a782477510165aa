package logflags

import (
	"io"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestMakeLogger_usingLoggerFactory(t *testing.T) {
	if loggerFactory != nil {
		t.Fatalf("expected loggerFactory to be nil; but was <%v>", loggerFactory)
	}
	defer func() { loggerFactory = nil }()

	expectedLogger := &logrusLogger{}
	SetLoggerFactory(func(level logrus.Level, fields Fields, out io.Writer) Logger {
		if level != logrus.TraceLevel {
			t.Fatalf("expected level to be <%v>; but was <%v>", logrus.TraceLevel, level)
		}
		if len(fields) != 1 || fields["foo"] != "bar" {
			t.Fatalf("expected fields to be {'foo':'bar'}; but was <%v>", fields)
		}
		return expectedLogger
	})

	actual := makeLogger(logrus.TraceLevel, Fields{"foo": "bar"})
	if actual != expectedLogger {
		t.Fatalf("expected actual to be <%v>; but was <%v>", expectedLogger, actual)
	}
}

func TestMakeFlaggableLogger_withFlagFalse(t *testing.T) {
	actual := makeFlaggableLogger(false, Fields{"foo": "bar"})
	actualEntry, ok := actual.(*logrusLogger)
	if !ok {
		t.Fatalf("expected actual to be of type <%v>; but was <%v>", reflect.TypeOf((*logrusLogger)(nil)), reflect.TypeOf(actual))
	}
	if actualEntry.Entry.Logger.Level != logrus.ErrorLevel {
		t.Fatalf("expected level <%v>; but was <%v>", logrus.ErrorLevel, actualEntry.Logger.Level)
	}
}

func TestMakeFlaggableLogger_withFlagTrue(t *testing.T) {
	actual := makeFlaggableLogger(true, Fields{"foo": "bar"})
	actualEntry, ok := actual.(*logrusLogger)
	if !ok {
		t.Fatalf("expected actual to be of type <%v>; but was <%v>", reflect.TypeOf((*logrusLogger)(nil)), reflect.TypeOf(actual))
	}
	if actualEntry.Entry.Logger.Level != logrus.DebugLevel {
		t.Fatalf("expected level <%v>; but was <%v>", logrus.DebugLevel, actualEntry.Logger.Level)
	}
}

func TestSetupCategories(t *testing.T) {
	defer func() { session, transport, handshake, packet, token = false, false, false, false, false }()

	if err := Setup(true, "transport,token", ""); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if !Transport() || !Token() {
		t.Fatalf("expected transport and token categories enabled")
	}
	if Session() || Handshake() || Packet() {
		t.Fatalf("expected only transport and token categories enabled")
	}
}

func TestSetupRequiresLogFlag(t *testing.T) {
	err := Setup(false, "transport", "")
	if err != errLogstrWithoutLog {
		t.Fatalf("expected errLogstrWithoutLog, got %v", err)
	}
}

func TestSetupDefaultCategory(t *testing.T) {
	defer func() { session, transport, handshake, packet, token = false, false, false, false, false }()
	if err := Setup(true, "", ""); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if !Session() {
		t.Fatalf("expected default category 'session' to be enabled")
	}
}
