package jdwp

import (
	"context"
	"fmt"
	"net"
)

// defaultADBSocket is the well-known address of the local ADB server's
// smart-socket control connection.
const defaultADBSocket = "localhost:5037"

// hostTunnelPlugin implements the Host Tunnel transport (dt_android_adb):
// rather than listening itself, it dials the local ADB server and asks
// it to forward a debugger to this process's pid via a smart-socket
// service request, mirroring how `adb jdwp` and `adb forward` locate a
// debuggable process.
type hostTunnelPlugin struct {
	adbAddr string
}

func newHostTunnelPlugin() *hostTunnelPlugin {
	return &hostTunnelPlugin{adbAddr: defaultADBSocket}
}

func (p *hostTunnelPlugin) name() string { return "dt_android_adb" }

// listen is a no-op: the Host Tunnel never accepts inbound connections
// itself, it always dials out to the local ADB server.
func (p *hostTunnelPlugin) listen(ctx context.Context, opts Options) error {
	return nil
}

func (p *hostTunnelPlugin) establish(ctx context.Context, opts Options, pid int) (*netState, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", p.adbAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing adb at %s: %v", ErrAttachFailed, p.adbAddr, err)
	}

	req := fmt.Sprintf("jdwp:%d", pid)
	if err := writeSmartSocketRequest(conn, req); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrAttachFailed, err)
	}

	ns, err := newNetState()
	if err != nil {
		conn.Close()
		return nil, err
	}
	ns.bind(conn)

	if err := writeHandshakeFirst(ns); err != nil {
		ns.close()
		return nil, err
	}
	return ns, nil
}

func (p *hostTunnelPlugin) shutdown() error { return nil }

// writeSmartSocketRequest speaks the ADB smart-socket wire protocol used
// for every request to the ADB server: a 4-character hex length prefix
// followed by the request text, then a 4-byte "OKAY"/"FAIL" status.
func writeSmartSocketRequest(conn net.Conn, req string) error {
	msg := fmt.Sprintf("%04x%s", len(req), req)
	if _, err := conn.Write([]byte(msg)); err != nil {
		return fmt.Errorf("writing smart-socket request: %w", err)
	}

	status := make([]byte, 4)
	if _, err := readFull(conn, status); err != nil {
		return fmt.Errorf("reading smart-socket status: %w", err)
	}
	switch string(status) {
	case "OKAY":
		return nil
	case "FAIL":
		return fmt.Errorf("adb rejected %q", req)
	default:
		return fmt.Errorf("unexpected smart-socket status %q", status)
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := conn.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
