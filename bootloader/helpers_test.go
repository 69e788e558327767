package bootloader

import (
	"encoding/binary"
	"iter"

	"github.com/moffa90/go-hf2/firmware"
	"github.com/moffa90/go-hf2/protocol"
	"github.com/moffa90/go-hf2/transport"
)

// recordingPort decodes every command written through it.
type recordingPort struct {
	transport.Port

	rx       protocol.Reassembler
	commands []uint32
	chksums  []protocol.ChksumPagesRequest
}

func (r *recordingPort) Write(report []byte) (int, error) {
	if msg, done, err := r.rx.Feed(report); err == nil && done {
		cmd, _, data, err := protocol.ParseCommand(msg)
		if err == nil {
			r.commands = append(r.commands, cmd)
			if cmd == protocol.CmdChksumPages && len(data) == 8 {
				r.chksums = append(r.chksums, protocol.ChksumPagesRequest{
					TargetAddress: binary.LittleEndian.Uint32(data[0:4]),
					NumPages:      binary.LittleEndian.Uint32(data[4:8]),
				})
			}
		}
	}
	return r.Port.Write(report)
}

// indexOf returns the position of the first cmd in the recorded commands.
func (r *recordingPort) indexOf(cmd uint32) int {
	for i, c := range r.commands {
		if c == cmd {
			return i
		}
	}
	return -1
}

// segmentsOf turns a slice into a segment sequence.
func segmentsOf(segs ...firmware.Segment) iter.Seq2[firmware.Segment, error] {
	return func(yield func(firmware.Segment, error) bool) {
		for _, seg := range segs {
			if !yield(seg, nil) {
				return
			}
		}
	}
}

// pattern returns n bytes of a repeating, non-constant pattern.
func pattern(n int, seed byte) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)*7 + seed
	}
	return data
}

// Mock logger for testing
type MockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *MockLogger) Info(msg string, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *MockLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}
