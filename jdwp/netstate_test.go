package jdwp

import (
	"encoding/binary"
	"testing"
)

func TestHaveFullPacket_partial(t *testing.T) {
	ns := &netState{}
	ns.input.Write([]byte{0x00, 0x00, 0x00})
	if _, ok := ns.haveFullPacket(); ok {
		t.Fatal("expected no full packet with fewer than 4 length bytes buffered")
	}
}

func TestHaveFullPacket_exact(t *testing.T) {
	ns := &netState{}
	pkt := make([]byte, packetHeaderLen)
	binary.BigEndian.PutUint32(pkt[0:4], uint32(packetHeaderLen))
	ns.input.Write(pkt)

	length, ok := ns.haveFullPacket()
	if !ok || length != packetHeaderLen {
		t.Fatalf("expected full packet of length %d, got %d ok=%v", packetHeaderLen, length, ok)
	}
}

func TestConsumeBytes_preservesSuffix(t *testing.T) {
	ns := &netState{}
	first := make([]byte, packetHeaderLen)
	binary.BigEndian.PutUint32(first[0:4], uint32(packetHeaderLen))
	second := []byte{0xAB, 0xCD}

	ns.input.Write(first)
	ns.input.Write(second)

	got := ns.consumeBytes(packetHeaderLen)
	if len(got) != packetHeaderLen {
		t.Fatalf("expected %d bytes consumed, got %d", packetHeaderLen, len(got))
	}
	if ns.input.Len() != len(second) {
		t.Fatalf("expected %d leftover bytes, got %d", len(second), ns.input.Len())
	}
	if ns.input.Bytes()[0] != 0xAB || ns.input.Bytes()[1] != 0xCD {
		t.Fatalf("leftover suffix corrupted: %v", ns.input.Bytes())
	}
}

func TestHaveFullPacket_shorterThanHeader(t *testing.T) {
	ns := &netState{}
	pkt := make([]byte, 4)
	binary.BigEndian.PutUint32(pkt, 4) // claims a length shorter than any valid header
	ns.input.Write(pkt)

	length, ok := ns.haveFullPacket()
	if ok {
		t.Fatal("expected ok=false for a length shorter than the header")
	}
	if length != 4 {
		t.Fatalf("expected reported length 4, got %d", length)
	}
}
