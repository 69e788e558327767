package protocol

import "fmt"

// EncodePackets splits an HF2 message into ReportSize byte reports.
//
// Report structure:
//
//	[TYPE(2 bits)|LENGTH(6 bits)][PAYLOAD(LENGTH)][ZERO PADDING]
//
// Every report but the last is PacketInner; the last is PacketFinal.
// An empty message still produces one (empty) final report.
func EncodePackets(msg []byte) [][]byte {
	reports := make([][]byte, 0, len(msg)/MaxPacketPayload+1)
	for {
		n := len(msg)
		if n > MaxPacketPayload {
			n = MaxPacketPayload
		}

		packetType := byte(PacketInner)
		if n == len(msg) {
			packetType = PacketFinal
		}

		report := make([]byte, ReportSize)
		report[0] = packetType | byte(n)
		copy(report[1:], msg[:n])
		reports = append(reports, report)

		msg = msg[n:]
		if packetType == PacketFinal {
			return reports
		}
	}
}

// ConsoleFunc receives device serial output carried in stdout/stderr packets.
type ConsoleFunc func(stderr bool, text []byte)

// Reassembler rebuilds HF2 messages from received reports.
// The zero value is ready to use.
type Reassembler struct {
	// Console receives serial output packets (optional)
	Console ConsoleFunc

	buf []byte
}

// Feed consumes one report. It returns the complete message and true when
// the report was the final packet of a message. Serial output packets are
// handed to Console and never become part of a message.
func (r *Reassembler) Feed(report []byte) ([]byte, bool, error) {
	if len(report) == 0 {
		return nil, false, fmt.Errorf("empty report")
	}

	header := report[0]
	n := int(header & PacketLengthMask)
	if n > len(report)-1 {
		return nil, false, fmt.Errorf("packet length %d exceeds report payload of %d bytes", n, len(report)-1)
	}
	payload := report[1 : 1+n]

	switch header & PacketTypeMask {
	case PacketInner:
		r.buf = append(r.buf, payload...)
		return nil, false, nil
	case PacketFinal:
		msg := append(r.buf, payload...)
		r.buf = nil
		return msg, true, nil
	default:
		if r.Console != nil {
			r.Console(header&PacketTypeMask == PacketStderr, append([]byte(nil), payload...))
		}
		return nil, false, nil
	}
}

// Reset discards any partially received message.
func (r *Reassembler) Reset() {
	r.buf = nil
}
