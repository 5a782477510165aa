package jdwp

import (
	"errors"
	"testing"
)

func TestParseOptions_listenServer(t *testing.T) {
	opts, err := ParseOptions("transport=dt_socket,server=y,suspend=y,address=8000")
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	want := Options{Transport: TransportSocket, Server: true, Suspend: true, Port: 8000}
	if !opts.Equal(want) {
		t.Fatalf("got %v, want %v", opts, want)
	}
}

func TestParseOptions_dialClient(t *testing.T) {
	opts, err := ParseOptions("transport=dt_socket,server=n,suspend=n,address=localhost:9000")
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	want := Options{Transport: TransportSocket, Server: false, Suspend: false, Host: "localhost", Port: 9000}
	if !opts.Equal(want) {
		t.Fatalf("got %v, want %v", opts, want)
	}
}

func TestParseOptions_clientRequiresHostAndPort(t *testing.T) {
	_, err := ParseOptions("transport=dt_socket,server=n,suspend=y")
	if !errors.Is(err, ErrOptionSyntax) {
		t.Fatalf("expected ErrOptionSyntax, got %v", err)
	}
}

func TestParseOptions_unknownTransport(t *testing.T) {
	_, err := ParseOptions("transport=dt_carrier_pigeon,server=y,address=8000")
	if !errors.Is(err, ErrOptionSyntax) {
		t.Fatalf("expected ErrOptionSyntax, got %v", err)
	}
}

func TestParseOptions_missingTransport(t *testing.T) {
	_, err := ParseOptions("server=y,suspend=y,address=8000")
	if !errors.Is(err, ErrOptionSyntax) {
		t.Fatalf("expected ErrOptionSyntax, got %v", err)
	}
}

func TestParseOptions_help(t *testing.T) {
	_, err := ParseOptions("help")
	if !errors.Is(err, ErrHelpRequested) {
		t.Fatalf("expected ErrHelpRequested, got %v", err)
	}
}

func TestParseOptions_ignoresLaunchAndTimeout(t *testing.T) {
	opts, err := ParseOptions("transport=dt_socket,server=y,address=8000,launch=foo,timeout=5000,onthrow=java.lang.Throwable,oncaught=y")
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if opts.Transport != TransportSocket || !opts.Server {
		t.Fatalf("unexpected result %v", opts)
	}
}

func TestParseOptions_ignoresUnknownName(t *testing.T) {
	opts, err := ParseOptions("transport=dt_socket,server=y,address=8000,mystery=42")
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if opts.Transport != TransportSocket {
		t.Fatalf("unexpected result %v", opts)
	}
}

func TestParseOptions_malformedPair(t *testing.T) {
	_, err := ParseOptions("transport")
	if !errors.Is(err, ErrOptionSyntax) {
		t.Fatalf("expected ErrOptionSyntax, got %v", err)
	}
}

func TestParseOptions_addressMissingPort(t *testing.T) {
	_, err := ParseOptions("transport=dt_socket,server=y,address=localhost")
	if !errors.Is(err, ErrOptionSyntax) {
		t.Fatalf("expected ErrOptionSyntax, got %v", err)
	}
}

func TestParseOptions_addressJunkPort(t *testing.T) {
	_, err := ParseOptions("transport=dt_socket,server=y,address=localhost:notaport")
	if !errors.Is(err, ErrOptionSyntax) {
		t.Fatalf("expected ErrOptionSyntax, got %v", err)
	}
}

func TestTransportString(t *testing.T) {
	cases := map[Transport]string{
		TransportSocket:     "dt_socket",
		TransportHostTunnel: "dt_android_adb",
		TransportNone:       "none",
		TransportUnknown:    "unknown",
	}
	for tr, want := range cases {
		if got := tr.String(); got != want {
			t.Errorf("Transport(%d).String() = %q, want %q", tr, got, want)
		}
	}
}
