package jdwp

import (
	"fmt"
	"strconv"
	"strings"
)

// Transport identifies which transport plugin a session should use.
type Transport int

const (
	// TransportUnknown means the option string named a transport this
	// build does not recognize.
	TransportUnknown Transport = iota
	// TransportNone means "no transport option was given at all", a
	// distinct state from TransportUnknown used only during parsing so
	// that the Android-adb default can be told apart from a typo.
	TransportNone
	// TransportSocket is "dt_socket": a plain TCP stream.
	TransportSocket
	// TransportHostTunnel is "dt_android_adb": a local broker tunnel.
	TransportHostTunnel
)

func (t Transport) String() string {
	switch t {
	case TransportSocket:
		return "dt_socket"
	case TransportHostTunnel:
		return "dt_android_adb"
	case TransportNone:
		return "none"
	default:
		return "unknown"
	}
}

// Options is the validated result of parsing a JDWP launch option string.
// Equality is structural over all five fields.
type Options struct {
	Transport Transport
	Server    bool
	Suspend   bool
	Host      string
	Port      uint16
}

// Equal reports whether o and other describe the same session.
func (o Options) Equal(other Options) bool {
	return o == other
}

func (o Options) String() string {
	return fmt.Sprintf("Options{transport=%s server=%v suspend=%v host=%q port=%d}",
		o.Transport, o.Server, o.Suspend, o.Host, o.Port)
}

// hostTunnelAvailable reports whether this build supports defaulting an
// unspecified transport to dt_android_adb. Only the Android-targeted
// build tag enables this; overridden in options_androidtarget.go.
var hostTunnelAvailable = false

// ParseOptions parses a comma-separated "name=value" option string, as
// passed via -agentlib:jdwp=... or -Xrunjdwp:..., into a validated
// Options record.
//
// The literal input "help" is a usage request and always fails with
// ErrHelpRequested.
func ParseOptions(s string) (Options, error) {
	if s == "help" {
		return Options{}, ErrHelpRequested
	}

	opts := Options{Transport: TransportNone}
	for _, pair := range strings.Split(s, ",") {
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			return Options{}, fmt.Errorf("%w: can't parse JDWP option %q in %q", ErrOptionSyntax, pair, s)
		}
		name, value := pair[:eq], pair[eq+1:]
		if err := parseOption(&opts, name, value); err != nil {
			return Options{}, err
		}
	}

	if opts.Transport == TransportUnknown {
		return Options{}, fmt.Errorf("%w: must specify JDWP transport: %q", ErrOptionSyntax, s)
	}
	if opts.Transport == TransportNone {
		if hostTunnelAvailable {
			opts.Transport = TransportHostTunnel
			log().Warn("no JDWP transport specified. Defaulting to dt_android_adb")
		} else {
			return Options{}, fmt.Errorf("%w: must specify JDWP transport: %q", ErrOptionSyntax, s)
		}
	}
	if !opts.Server && (opts.Host == "" || opts.Port == 0) {
		return Options{}, fmt.Errorf("%w: must specify JDWP host and port when server=n: %q", ErrOptionSyntax, s)
	}

	return opts, nil
}

func parseOption(opts *Options, name, value string) error {
	switch name {
	case "transport":
		switch value {
		case "dt_socket":
			opts.Transport = TransportSocket
		case "dt_android_adb":
			opts.Transport = TransportHostTunnel
		default:
			opts.Transport = TransportUnknown
			return fmt.Errorf("%w: JDWP transport not supported: %s", ErrOptionSyntax, value)
		}
	case "server":
		switch value {
		case "y":
			opts.Server = true
		case "n":
			opts.Server = false
		default:
			return fmt.Errorf("%w: JDWP option 'server' must be 'y' or 'n'", ErrOptionSyntax)
		}
	case "suspend":
		switch value {
		case "y":
			opts.Suspend = true
		case "n":
			opts.Suspend = false
		default:
			return fmt.Errorf("%w: JDWP option 'suspend' must be 'y' or 'n'", ErrOptionSyntax)
		}
	case "address":
		host, portStr, found := strings.Cut(value, ":")
		if !found {
			host, portStr = "", value
		}
		opts.Host = host
		if portStr == "" {
			return fmt.Errorf("%w: JDWP address missing port: %s", ErrOptionSyntax, value)
		}
		port, err := strconv.ParseUint(portStr, 10, 32)
		if err != nil || port > 0xffff {
			return fmt.Errorf("%w: JDWP address has junk in port field: %s", ErrOptionSyntax, value)
		}
		opts.Port = uint16(port)
	case "launch", "onthrow", "oncaught", "timeout":
		log().Infof("ignoring JDWP option %q=%q", name, value)
	default:
		log().Infof("ignoring unrecognized JDWP option %q=%q", name, value)
	}
	return nil
}
