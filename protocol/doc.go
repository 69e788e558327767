// Package protocol implements the HF2 (HID Flashing Format) wire protocol.
//
// This package provides functions to build command messages, split them into
// HID reports and parse the device responses. It holds no connection state;
// see package bootloader for the session that drives a device.
//
// # Protocol Overview
//
// HF2 messages are carried in 64-byte HID reports:
//
//	Report:   [TYPE|LEN][PAYLOAD(LEN)][PADDING]
//	Command:  [CMD(4)][TAG(2)][RESERVED(2)][DATA...]
//	Response: [TAG(2)][STATUS(1)][STATUS_INFO(1)][DATA...]
//
// Where:
//   - TYPE = PacketInner, PacketFinal, PacketStdout or PacketStderr
//   - LEN = payload length (0..63)
//   - TAG = host chosen value echoed by the device
//   - all multi-byte fields are little-endian
//
// # Requests
//
// The commands used for flashing form a closed set of Request types:
//
//	msg, err := protocol.BuildCommand(protocol.ChksumPagesRequest{
//	    TargetAddress: 0x2000,
//	    NumPages:      16,
//	}, tag)
//	reports := protocol.EncodePackets(msg)
//
// # Responses
//
// Feed received reports to a Reassembler, then parse the message:
//
//	var r protocol.Reassembler
//	msg, done, err := r.Feed(report)
//	tag, status, info, data, err := protocol.ParseResponse(msg)
//	result, err := protocol.DecodeResponse(req, data)
//
// # Checksums
//
// CRC16 implements CRC-XMODEM, which device and host must agree on for the
// CHKSUM_PAGES comparison to be meaningful.
//
// # Error Handling
//
// Non-OK statuses and malformed responses are reported as ProtocolError:
//
//	err := &protocol.ProtocolError{Operation: "write flash page", StatusCode: protocol.StatusExecError}
//	// err.Error() returns: "write flash page failed: execution error (0x02, info 0x00)"
//
// # Reference
//
// For complete protocol details, see the HF2 document:
// https://github.com/microsoft/uf2/blob/master/hf2.md
package protocol
