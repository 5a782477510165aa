package jdwp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// handshakeString is exchanged verbatim, in both directions, before any
// framed packet may be sent. Neither side prefixes it with a length.
const handshakeString = "JDWP-Handshake"

// packetHeaderLen is the length of a JDWP packet header: a 4-byte
// big-endian total length, a 4-byte id, and a 1-byte flags field,
// followed either by a 2-byte command set/command pair (command packets)
// or a 2-byte error code (reply packets).
const packetHeaderLen = 11

const replyFlag = 0x80

// netState is the transport-agnostic half of a connected debugger link:
// buffered packet framing, a single write lock shared by replies and
// VM-initiated events, and a wake signal any goroutine can use to pull
// the worker out of a blocking read.
//
// Every transport plugin creates a netState and binds its conn during
// establish, which returns it; the session worker loop only ever talks to
// this type, never to the plugin directly, once a connection exists.
type netState struct {
	writeMu   sync.Mutex // socket_lock: serializes WritePacket and WriteBufferedPacket
	conn      net.Conn
	wake      *wakeSignal
	input     bytes.Buffer
	closeOnce sync.Once
}

func newNetState() (*netState, error) {
	w, err := newWakeSignal()
	if err != nil {
		return nil, fmt.Errorf("jdwp: creating wake signal: %w", err)
	}
	return &netState{wake: w}, nil
}

// bind attaches the accepted or dialed connection and starts the
// goroutine that turns wake() calls into a deadline on conn, so a
// blocked readPacket returns promptly instead of waiting out the peer.
func (ns *netState) bind(conn net.Conn) {
	ns.conn = conn
	go ns.watchWake()
}

func (ns *netState) watchWake() {
	for {
		ns.wake.wait()
		if ns.conn == nil {
			return
		}
		if err := ns.conn.SetReadDeadline(time.Now()); err != nil {
			return
		}
	}
}

// isConnected reports whether a connection has been bound.
func (ns *netState) isConnected() bool {
	return ns.conn != nil
}

// close tears down the connection and stops watchWake. Idempotent.
func (ns *netState) close() {
	ns.closeOnce.Do(func() {
		if ns.conn != nil {
			ns.conn.Close()
		}
		ns.wake.close()
	})
}

// doHandshake performs the 14-byte ASCII handshake: the connecting side
// writes first and this side echoes it back.
func (ns *netState) doHandshake() error {
	buf := make([]byte, len(handshakeString))
	if _, err := io.ReadFull(ns.conn, buf); err != nil {
		return fmt.Errorf("jdwp: reading handshake: %w", err)
	}
	if string(buf) != handshakeString {
		return fmt.Errorf("jdwp: bad handshake %q", buf)
	}
	if _, err := ns.conn.Write(buf); err != nil {
		return fmt.Errorf("jdwp: writing handshake reply: %w", err)
	}
	return nil
}

// wakeReader interrupts a blocked readPacket, e.g. so Shutdown or a
// should-exit check can run without waiting for the peer to send
// something.
func (ns *netState) wakeReader() {
	ns.wake.wake()
}

// readPacket blocks until a full JDWP packet has been read from the
// connection, the wake signal fires, or the connection errors out. A
// nil slice with a nil error means the wake signal fired; the caller
// should check its own exit condition and call readPacket again if it
// still wants to read.
func (ns *netState) readPacket() ([]byte, error) {
	for {
		length, ok := ns.haveFullPacket()
		if ok {
			return ns.consumeBytes(length), nil
		}
		if length != 0 && length < packetHeaderLen {
			return nil, fmt.Errorf("jdwp: packet length %d shorter than header", length)
		}

		buf := make([]byte, 4096)
		n, err := ns.conn.Read(buf)
		if n > 0 {
			ns.input.Write(buf[:n])
			length, ok := ns.haveFullPacket()
			if ok {
				return ns.consumeBytes(length), nil
			}
			if length != 0 && length < packetHeaderLen {
				return nil, fmt.Errorf("jdwp: packet length %d shorter than header", length)
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				ns.conn.SetReadDeadline(time.Time{})
				return nil, nil
			}
			return nil, err
		}
	}
}

// haveFullPacket reports whether the input buffer holds at least one
// complete packet, and if so its total length including the header.
func (ns *netState) haveFullPacket() (int, bool) {
	data := ns.input.Bytes()
	if len(data) < 4 {
		return 0, false
	}
	length := int(binary.BigEndian.Uint32(data[:4]))
	if length < packetHeaderLen {
		return length, false
	}
	return length, len(data) >= length
}

// consumeBytes removes and returns the first n bytes of the input
// buffer, preserving whatever follows for the next call to readPacket.
func (ns *netState) consumeBytes(n int) []byte {
	out := make([]byte, n)
	copy(out, ns.input.Next(n))
	return out
}

// writePacket sends a fully-formed packet (header and data already
// assembled by the caller) under the write lock, so a reply can never
// be interleaved on the wire with an unrelated event.
func (ns *netState) writePacket(pkt []byte) error {
	ns.writeMu.Lock()
	defer ns.writeMu.Unlock()
	n, err := ns.conn.Write(pkt)
	if err != nil {
		return err
	}
	if n != len(pkt) {
		return ErrShortWrite
	}
	return nil
}

// writeBufferedPacket concatenates a header and payload and writes them
// as one Write call, still under the write lock. Mirrors the
// distinction between a single free-standing packet and one assembled
// from a separately-built header plus an already-serialized payload.
func (ns *netState) writeBufferedPacket(header, payload []byte) error {
	buf := make([]byte, 0, len(header)+len(payload))
	buf = append(buf, header...)
	buf = append(buf, payload...)
	return ns.writePacket(buf)
}
