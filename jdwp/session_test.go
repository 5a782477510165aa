package jdwp

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"
)

type fakeCollaborator struct {
	NopCollaborator
	connected    chan struct{}
	disconnected chan struct{}
	gotCmdSet    uint8
	gotCmd       uint8
	gotData      []byte
}

func newFakeCollaborator() *fakeCollaborator {
	return &fakeCollaborator{
		connected:    make(chan struct{}, 1),
		disconnected: make(chan struct{}, 1),
	}
}

func (f *fakeCollaborator) Connected() {
	select {
	case f.connected <- struct{}{}:
	default:
	}
}

func (f *fakeCollaborator) Disconnected() {
	select {
	case f.disconnected <- struct{}{}:
	default:
	}
}

func (f *fakeCollaborator) ProcessRequest(ctx context.Context, cmdSet, cmd uint8, data []byte) ([]byte, uint16, error) {
	f.gotCmdSet, f.gotCmd = cmdSet, cmd
	f.gotData = append([]byte(nil), data...)
	return []byte{0x2a}, 0, nil
}

func (f *fakeCollaborator) ProcessID() int { return 4242 }

// dial a test "debugger" against a client-mode session: the session
// dials out to us, so we act as the server side of the handshake.
func TestSession_ClientModeRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	addr := ln.Addr().(*net.TCPAddr)
	opts := Options{
		Transport: TransportSocket,
		Server:    false,
		Suspend:   false,
		Host:      "127.0.0.1",
		Port:      uint16(addr.Port),
	}

	replyCh := make(chan []byte, 1)
	errCh := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			errCh <- err
			return
		}
		defer conn.Close()

		buf := make([]byte, len(handshakeString))
		if _, err := readAll(conn, buf); err != nil {
			errCh <- err
			return
		}
		if string(buf) != handshakeString {
			errCh <- errUnexpected("bad handshake")
			return
		}
		if _, err := conn.Write(buf); err != nil {
			errCh <- err
			return
		}

		cmdPkt := make([]byte, packetHeaderLen+1)
		binary.BigEndian.PutUint32(cmdPkt[0:4], uint32(len(cmdPkt)))
		binary.BigEndian.PutUint32(cmdPkt[4:8], 1)
		cmdPkt[8] = 0
		cmdPkt[9] = 1  // cmdSet
		cmdPkt[10] = 1 // cmd
		cmdPkt[11] = 0x99
		if _, err := conn.Write(cmdPkt); err != nil {
			errCh <- err
			return
		}

		header := make([]byte, packetHeaderLen)
		if _, err := readAll(conn, header); err != nil {
			errCh <- err
			return
		}
		length := binary.BigEndian.Uint32(header[0:4])
		payload := make([]byte, int(length)-packetHeaderLen)
		if _, err := readAll(conn, payload); err != nil {
			errCh <- err
			return
		}
		replyCh <- payload
	}()

	collab := newFakeCollaborator()
	ctx := context.Background()
	sess, err := Create(ctx, opts, collab)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer sess.Close()

	select {
	case <-collab.connected:
	case err := <-errCh:
		t.Fatalf("server goroutine: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Connected()")
	}

	select {
	case payload := <-replyCh:
		if len(payload) != 1 || payload[0] != 0x2a {
			t.Fatalf("unexpected reply payload %v", payload)
		}
	case err := <-errCh:
		t.Fatalf("server goroutine: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reply")
	}

	if collab.gotCmdSet != 1 || collab.gotCmd != 1 || len(collab.gotData) != 1 || collab.gotData[0] != 0x99 {
		t.Fatalf("ProcessRequest saw unexpected args: cmdSet=%d cmd=%d data=%v",
			collab.gotCmdSet, collab.gotCmd, collab.gotData)
	}
}

func TestSession_SerialCountersStartAtSpecValues(t *testing.T) {
	s := &Session{}
	s.requestSerial.Store(initialRequestSerial)
	s.eventSerial.Store(initialEventSerial)

	if got := s.NextRequestSerial(); got != initialRequestSerial {
		t.Fatalf("NextRequestSerial = %#x, want %#x", got, initialRequestSerial)
	}
	if got := s.NextRequestSerial(); got != initialRequestSerial+1 {
		t.Fatalf("NextRequestSerial = %#x, want %#x", got, initialRequestSerial+1)
	}
	if got := s.NextEventSerial(); got != initialEventSerial {
		t.Fatalf("NextEventSerial = %#x, want %#x", got, initialEventSerial)
	}
}

func TestSession_GetDebugThreadIDReportsDialFailed(t *testing.T) {
	s := &Session{}
	s.debugThreadID.Store(threadIDDialFailed)
	if got := s.GetDebugThreadID(); got != threadIDDialFailed {
		t.Fatalf("GetDebugThreadID = %d, want %d", got, threadIDDialFailed)
	}
}

func readAll(conn net.Conn, buf []byte) (int, error) {
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

type errUnexpected string

func (e errUnexpected) Error() string { return string(e) }
