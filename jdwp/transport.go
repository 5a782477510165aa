package jdwp

import "context"

// plugin is implemented by each transport named in the JDWP options
// string. Each successful establish yields one connection: the session
// worker loop talks to the returned netState directly until that
// connection is closed, at which point server-mode plugins may be asked
// to establish again.
type plugin interface {
	// name returns the transport name as it appears in an options
	// string, e.g. "dt_socket".
	name() string

	// listen prepares the plugin to accept connections in server mode.
	// Called once, before the first Establish, only when opts.Server is
	// true. Client-mode plugins (opts.Server == false) leave this a
	// no-op and dial directly from Establish.
	listen(ctx context.Context, opts Options) error

	// establish blocks until a debugger is connected: accepting on a
	// listening socket, or dialing out and completing a handshake,
	// depending on opts.Server. pid identifies this process for
	// transports that must name it to a broker (Host Tunnel); plugins
	// that don't need it ignore the argument. It returns the netState
	// wrapping the new connection.
	establish(ctx context.Context, opts Options, pid int) (*netState, error)

	// shutdown releases any listening resources. Safe to call even if
	// listen was never called.
	shutdown() error
}

// newPlugin maps an Options.Transport to the plugin implementing it.
// Only one instance of each plugin exists per session; establish may be
// called on it repeatedly for AcceptMulti-style server loops.
func newPlugin(t Transport) (plugin, error) {
	switch t {
	case TransportSocket:
		return newSocketPlugin(), nil
	case TransportHostTunnel:
		return newHostTunnelPlugin(), nil
	default:
		return nil, ErrOptionSyntax
	}
}
