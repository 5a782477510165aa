package jdwp

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// socketPlugin implements the Stream Socket transport (dt_socket): a
// plain TCP connection, optionally restricted to local debuggers sharing
// this process's UID when listening on loopback.
type socketPlugin struct {
	listener net.Listener
}

func newSocketPlugin() *socketPlugin {
	return &socketPlugin{}
}

func (p *socketPlugin) name() string { return "dt_socket" }

func (p *socketPlugin) listen(ctx context.Context, opts Options) error {
	addr := net.JoinHostPort(opts.Host, strconv.Itoa(int(opts.Port)))
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("jdwp: listening on %s: %w", addr, err)
	}
	p.listener = l
	return nil
}

func (p *socketPlugin) establish(ctx context.Context, opts Options, pid int) (*netState, error) {
	var conn net.Conn
	var err error

	if opts.Server {
		conn, err = p.accept(ctx)
	} else {
		addr := net.JoinHostPort(opts.Host, strconv.Itoa(int(opts.Port)))
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttachFailed, err)
	}

	ns, err := newNetState()
	if err != nil {
		conn.Close()
		return nil, err
	}
	ns.bind(conn)

	if opts.Server {
		// In server mode the debugger writes the handshake first and
		// this side echoes it. In client mode (below) this side writes
		// first and waits for the debugger's echo; it does not wait for
		// the debugger to send first.
		if err := ns.doHandshake(); err != nil {
			ns.close()
			return nil, err
		}
	} else {
		if err := writeHandshakeFirst(ns); err != nil {
			ns.close()
			return nil, err
		}
	}
	return ns, nil
}

func (p *socketPlugin) accept(ctx context.Context) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := p.listener.Accept()
		ch <- result{conn, err}
	}()

	select {
	case <-ctx.Done():
		p.listener.Close()
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		if !sameUserAllowed(r.conn) {
			r.conn.Close()
			return p.accept(ctx)
		}
		return r.conn, nil
	}
}

func (p *socketPlugin) shutdown() error {
	if p.listener == nil {
		return nil
	}
	return p.listener.Close()
}

// writeHandshakeFirst is used when this side dials out (client mode):
// it writes the handshake and waits for the identical echo.
func writeHandshakeFirst(ns *netState) error {
	if _, err := ns.conn.Write([]byte(handshakeString)); err != nil {
		return fmt.Errorf("jdwp: writing handshake: %w", err)
	}
	buf := make([]byte, len(handshakeString))
	n := 0
	for n < len(buf) {
		m, err := ns.conn.Read(buf[n:])
		if err != nil {
			return fmt.Errorf("jdwp: reading handshake echo: %w", err)
		}
		n += m
	}
	if string(buf) != handshakeString {
		return fmt.Errorf("jdwp: bad handshake echo %q", buf)
	}
	return nil
}
