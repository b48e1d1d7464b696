package onewire

import (
	"encoding/binary"
	"fmt"
)

// The Linux w1 subsystem is driven from userspace through the netlink
// connector: every request is a netlink header, a connector header, a
// w1_netlink_msg addressing a bus master or a slave, and one or more
// w1_netlink_cmd payloads. All fields are little endian, matching the
// kernel's native byte order on the platforms this package targets.

// Connector identity of the w1 subsystem.
const (
	cnW1Index = 0x3
	cnW1Value = 0x1
)

// netlink message type carrying connector payloads.
const nlMsgDone = 0x3

// w1_netlink_msg types.
const (
	msgSlaveAdd     = 0
	msgSlaveRemove  = 1
	msgMasterAdd    = 2
	msgMasterRemove = 3
	msgMasterCmd    = 4
	msgSlaveCmd     = 5
	msgListMasters  = 6
)

// w1_netlink_cmd commands.
const (
	cmdRead        = 0
	cmdWrite       = 1
	cmdSearch      = 2
	cmdAlarmSearch = 3
	cmdTouch       = 4
	cmdReset       = 5
	cmdListSlaves  = 8
)

// Header sizes on the wire.
const (
	nlHeaderSize = 16 // struct nlmsghdr
	cnHeaderSize = 20 // struct cn_msg
	w1MsgSize    = 12 // struct w1_netlink_msg
	w1CmdSize    = 4  // struct w1_netlink_cmd
)

// w1Cmd is one w1_netlink_cmd payload.
type w1Cmd struct {
	cmd  byte
	data []byte
}

// w1Request addresses a master (by numeric ID) or, for msgListMasters,
// nothing at all, and carries the commands to run on it.
type w1Request struct {
	msgType  byte
	masterID uint32
	cmds     []w1Cmd
}

// marshalRequest encodes a request into one netlink datagram with the given
// connector sequence number.
func marshalRequest(seq uint32, r w1Request) []byte {
	cmdLen := 0
	for _, c := range r.cmds {
		cmdLen += w1CmdSize + len(c.data)
	}
	total := nlHeaderSize + cnHeaderSize + w1MsgSize + cmdLen
	buf := make([]byte, total)

	// struct nlmsghdr
	binary.LittleEndian.PutUint32(buf[0:4], uint32(total))
	binary.LittleEndian.PutUint16(buf[4:6], nlMsgDone)
	binary.LittleEndian.PutUint32(buf[8:12], seq)

	// struct cn_msg
	cn := buf[nlHeaderSize:]
	binary.LittleEndian.PutUint32(cn[0:4], cnW1Index)
	binary.LittleEndian.PutUint32(cn[4:8], cnW1Value)
	binary.LittleEndian.PutUint32(cn[8:12], seq)
	binary.LittleEndian.PutUint16(cn[16:18], uint16(w1MsgSize+cmdLen))

	// struct w1_netlink_msg
	msg := cn[cnHeaderSize:]
	msg[0] = r.msgType
	binary.LittleEndian.PutUint16(msg[2:4], uint16(cmdLen))
	binary.LittleEndian.PutUint32(msg[4:8], r.masterID)

	// w1_netlink_cmd payloads
	p := msg[w1MsgSize:]
	for _, c := range r.cmds {
		p[0] = c.cmd
		binary.LittleEndian.PutUint16(p[2:4], uint16(len(c.data)))
		copy(p[w1CmdSize:], c.data)
		p = p[w1CmdSize+len(c.data):]
	}
	return buf
}

// w1Reply is one decoded w1_netlink_msg from the kernel, with its connector
// sequence numbers and any command payloads.
type w1Reply struct {
	seq      uint32
	ack      uint32
	msgType  byte
	status   byte
	masterID uint32
	cmds     []w1Cmd

	// data holds the raw payload for message types that do not wrap their
	// payload in w1_netlink_cmd, such as the list-masters reply.
	data []byte
}

// parseReplies decodes every w1 message inside one received netlink datagram.
// A datagram may hold several netlink messages, each with one connector
// payload.
func parseReplies(buf []byte) ([]w1Reply, error) {
	var replies []w1Reply

	for len(buf) >= nlHeaderSize {
		nlLen := int(binary.LittleEndian.Uint32(buf[0:4]))
		if nlLen < nlHeaderSize || nlLen > len(buf) {
			return nil, fmt.Errorf("onewire: netlink length %d outside datagram of %d bytes", nlLen, len(buf))
		}
		frame := buf[nlHeaderSize:nlLen]
		buf = buf[(nlLen+3)&^3:] // netlink messages are 4-byte aligned

		if len(frame) < cnHeaderSize {
			return nil, fmt.Errorf("onewire: connector header truncated at %d bytes", len(frame))
		}
		idx := binary.LittleEndian.Uint32(frame[0:4])
		val := binary.LittleEndian.Uint32(frame[4:8])
		if idx != cnW1Index || val != cnW1Value {
			continue // some other connector client's traffic
		}
		seq := binary.LittleEndian.Uint32(frame[8:12])
		ack := binary.LittleEndian.Uint32(frame[12:16])
		cnLen := int(binary.LittleEndian.Uint16(frame[16:18]))
		payload := frame[cnHeaderSize:]
		if cnLen > len(payload) {
			return nil, fmt.Errorf("onewire: connector payload truncated: %d > %d", cnLen, len(payload))
		}
		payload = payload[:cnLen]

		for len(payload) >= w1MsgSize {
			msgLen := int(binary.LittleEndian.Uint16(payload[2:4]))
			if w1MsgSize+msgLen > len(payload) {
				return nil, fmt.Errorf("onewire: w1 message truncated: %d > %d", w1MsgSize+msgLen, len(payload))
			}
			reply := w1Reply{
				seq:      seq,
				ack:      ack,
				msgType:  payload[0],
				status:   payload[1],
				masterID: binary.LittleEndian.Uint32(payload[4:8]),
			}

			body := payload[w1MsgSize : w1MsgSize+msgLen]
			if reply.msgType == msgListMasters {
				// The list reply is a bare u32 array, not command framed.
				reply.data = append([]byte(nil), body...)
				replies = append(replies, reply)
				payload = payload[w1MsgSize+msgLen:]
				continue
			}

			cmds := body
			for len(cmds) >= w1CmdSize {
				dataLen := int(binary.LittleEndian.Uint16(cmds[2:4]))
				if w1CmdSize+dataLen > len(cmds) {
					return nil, fmt.Errorf("onewire: w1 command truncated: %d > %d", w1CmdSize+dataLen, len(cmds))
				}
				data := make([]byte, dataLen)
				copy(data, cmds[w1CmdSize:])
				reply.cmds = append(reply.cmds, w1Cmd{cmd: cmds[0], data: data})
				cmds = cmds[w1CmdSize+dataLen:]
			}

			replies = append(replies, reply)
			payload = payload[w1MsgSize+msgLen:]
		}
	}
	return replies, nil
}

// masterIDs extracts the bus master numbers from a msgListMasters reply
// payload, which the kernel packs as an array of u32.
func masterIDs(data []byte) []uint32 {
	ids := make([]uint32, 0, len(data)/4)
	for len(data) >= 4 {
		ids = append(ids, binary.LittleEndian.Uint32(data[0:4]))
		data = data[4:]
	}
	return ids
}
