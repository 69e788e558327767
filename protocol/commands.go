package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildCommand constructs the HF2 command message for req.
//
// Message structure:
//
//	[CMD(4)][TAG(2)][RESERVED(2)][DATA...]
//
// All multi-byte fields are little-endian. The returned message still has to
// be split into reports with EncodePackets before it is sent.
func BuildCommand(req Request, tag uint16) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}

	data, err := req.payload()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Name(), err)
	}

	msg := make([]byte, 0, CommandHeaderSize+len(data))
	msg = binary.LittleEndian.AppendUint32(msg, req.Command())
	msg = binary.LittleEndian.AppendUint16(msg, tag)
	msg = append(msg, 0x00, 0x00)
	msg = append(msg, data...)

	return msg, nil
}

// ParseCommand splits a command message into its fields.
// Devices (and the simulator) use it to decode what the host sent.
func ParseCommand(msg []byte) (cmd uint32, tag uint16, data []byte, err error) {
	if len(msg) < CommandHeaderSize {
		return 0, 0, nil, fmt.Errorf("command too short: got %d bytes, minimum is %d", len(msg), CommandHeaderSize)
	}

	cmd = binary.LittleEndian.Uint32(msg[0:4])
	tag = binary.LittleEndian.Uint16(msg[4:6])
	if len(msg) > CommandHeaderSize {
		data = msg[CommandHeaderSize:]
	}

	return cmd, tag, data, nil
}

// BuildResponse constructs an HF2 response message.
//
// Message structure:
//
//	[TAG(2)][STATUS(1)][STATUS_INFO(1)][DATA...]
func BuildResponse(tag uint16, status, statusInfo byte, data []byte) []byte {
	msg := make([]byte, 0, ResponseHeaderSize+len(data))
	msg = binary.LittleEndian.AppendUint16(msg, tag)
	msg = append(msg, status, statusInfo)
	return append(msg, data...)
}
