package jdwp

import (
	"context"
	"encoding/binary"
)

// handlePacket parses one fully-framed packet already pulled off the
// wire by readPacket and, if it's a command packet, dispatches it to the
// Collaborator and sends back the reply. Packets with the reply flag set
// are JDWP replies to something this session never sent and are simply
// logged and dropped: a spec-conforming debugger never sends one.
//
// The token is held from before ProcessRequest is called until after the
// reply is written, not just around the write: an event sent by another
// goroutine via SendRequest while this command is still being processed
// blocks on the same token, so the reply to a command is always emitted
// before any event generated while processing it.
func (s *Session) handlePacket(ctx context.Context, ns *netState, pkt []byte) error {
	if len(pkt) < packetHeaderLen {
		log().Warnf("jdwp: dropping short packet (%d bytes)", len(pkt))
		return nil
	}

	id := binary.BigEndian.Uint32(pkt[4:8])
	flags := pkt[8]

	if flags&replyFlag != 0 {
		log().Warnf("jdwp: dropping unexpected reply packet id=%#x", id)
		return nil
	}

	cmdSet := pkt[9]
	cmd := pkt[10]
	data := pkt[packetHeaderLen:]

	s.acquireToken()
	defer s.releaseToken()

	reply, errorCode, err := s.collab.ProcessRequest(ctx, cmdSet, cmd, data)
	if err != nil {
		return err
	}

	header := make([]byte, packetHeaderLen)
	writeUint32(header[0:4], uint32(len(reply))+packetHeaderLen)
	writeUint32(header[4:8], id)
	header[8] = replyFlag
	binary.BigEndian.PutUint16(header[9:11], errorCode)

	return ns.writeBufferedPacket(header, reply)
}

func writeUint32(b []byte, v uint32) {
	binary.BigEndian.PutUint32(b, v)
}

// writePacketHeader fills an 11-byte command packet header in place.
func writePacketHeader(header []byte, length, id uint32, flags, cmdSet, cmd uint8) {
	writeUint32(header[0:4], length)
	writeUint32(header[4:8], id)
	header[8] = flags
	header[9] = cmdSet
	header[10] = cmd
}
