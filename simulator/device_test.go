package simulator

import (
	"bytes"
	"errors"
	"testing"

	"github.com/moffa90/go-hf2/protocol"
	"github.com/moffa90/go-hf2/transport"
)

// exchange sends req and returns the reassembled response message.
func exchange(t *testing.T, d *Device, req protocol.Request, tag uint16) []byte {
	t.Helper()

	msg, err := protocol.BuildCommand(req, tag)
	if err != nil {
		t.Fatalf("BuildCommand() error: %v", err)
	}
	for _, report := range protocol.EncodePackets(msg) {
		if _, err := d.Write(report); err != nil {
			t.Fatalf("Write() error: %v", err)
		}
	}

	var r protocol.Reassembler
	buf := make([]byte, protocol.ReportSize)
	for {
		if _, err := d.Read(buf); err != nil {
			t.Fatalf("Read() error: %v", err)
		}
		resp, done, err := r.Feed(buf)
		if err != nil {
			t.Fatalf("Feed() error: %v", err)
		}
		if done {
			return resp
		}
	}
}

func TestDeviceBinInfo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FamilyID = 0x68ED2B88
	d := New(cfg)

	resp := exchange(t, d, protocol.BinInfoRequest{}, 1)
	tag, status, _, data, err := protocol.ParseResponse(resp)
	if err != nil || tag != 1 || status != protocol.StatusOK {
		t.Fatalf("ParseResponse() = tag %d status %d err %v", tag, status, err)
	}

	info, err := protocol.ParseBinInfoResponse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := protocol.BinInfo{Mode: protocol.ModeBootloader, FlashPageSize: 256, FlashNumPages: 256, MaxMessageSize: 512, FamilyID: 0x68ED2B88}
	if *info != want {
		t.Errorf("info = %+v, want %+v", *info, want)
	}
}

func TestDeviceWriteAndChecksum(t *testing.T) {
	d := New(DefaultConfig())

	page := bytes.Repeat([]byte{0x5A}, 256)
	resp := exchange(t, d, protocol.WriteFlashPageRequest{TargetAddress: 0x08000100, Data: page}, 2)
	if _, status, _, _, _ := protocol.ParseResponse(resp); status != protocol.StatusOK {
		t.Fatalf("write status = %d", status)
	}

	resp = exchange(t, d, protocol.ChksumPagesRequest{TargetAddress: 0x08000000, NumPages: 3}, 3)
	_, _, _, data, _ := protocol.ParseResponse(resp)
	table, err := protocol.ParseChksumPagesResponse(data, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	erased := protocol.PageChecksum(bytes.Repeat([]byte{0xFF}, 256))
	want := protocol.ChecksumTable{erased, protocol.PageChecksum(page), erased}
	for i := range want {
		if table[i] != want[i] {
			t.Errorf("table[%d] = 0x%04X, want 0x%04X", i, table[i], want[i])
		}
	}

	if got := d.WrittenPages(); len(got) != 1 || got[0] != 0x08000100 {
		t.Errorf("WrittenPages() = %X", got)
	}
}

func TestDeviceRejects(t *testing.T) {
	tests := []struct {
		name  string
		setup func(d *Device)
		req   protocol.Request
	}{
		{
			name: "unaligned write",
			req:  protocol.WriteFlashPageRequest{TargetAddress: 0x08000010, Data: make([]byte, 256)},
		},
		{
			name: "short page",
			req:  protocol.WriteFlashPageRequest{TargetAddress: 0x08000000, Data: make([]byte, 16)},
		},
		{
			name:  "write in application mode",
			setup: func(d *Device) { d.SetMode(protocol.ModeApplication) },
			req:   protocol.WriteFlashPageRequest{TargetAddress: 0x08000000, Data: make([]byte, 256)},
		},
		{
			name: "checksum reply larger than max message",
			req:  protocol.ChksumPagesRequest{TargetAddress: 0x08000000, NumPages: 255},
		},
		{
			name: "checksum outside flash",
			req:  protocol.ChksumPagesRequest{TargetAddress: 0x00000000, NumPages: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(DefaultConfig())
			if tt.setup != nil {
				tt.setup(d)
			}

			resp := exchange(t, d, tt.req, 9)
			if _, status, _, _, _ := protocol.ParseResponse(resp); status != protocol.StatusExecError {
				t.Errorf("status = %d, want %d", status, protocol.StatusExecError)
			}
			if len(d.WrittenPages()) != 0 {
				t.Error("page written despite rejection")
			}
		})
	}
}

func TestDeviceFaults(t *testing.T) {
	d := New(DefaultConfig())

	d.TruncateChecksums(1)
	resp := exchange(t, d, protocol.ChksumPagesRequest{TargetAddress: 0x08000000, NumPages: 4}, 1)
	_, _, _, data, _ := protocol.ParseResponse(resp)
	if len(data) != 6 {
		t.Errorf("truncated table = %d bytes, want 6", len(data))
	}

	boom := errors.New("usb unplugged")
	d.FailCommand(protocol.CmdInfo, boom)
	msg, _ := protocol.BuildCommand(protocol.InfoRequest{}, 2)
	if _, err := d.Write(protocol.EncodePackets(msg)[0]); !errors.Is(err, boom) {
		t.Errorf("Write() error = %v, want %v", err, boom)
	}

	buf := make([]byte, protocol.ReportSize)
	if _, err := d.Read(buf); !errors.Is(err, transport.ErrTimeout) {
		t.Errorf("Read() error = %v, want ErrTimeout", err)
	}

	_ = d.Close()
	if _, err := d.Read(buf); !errors.Is(err, ErrClosed) {
		t.Errorf("Read() after Close error = %v, want ErrClosed", err)
	}
}

func TestDeviceReset(t *testing.T) {
	d := New(DefaultConfig())

	msg, _ := protocol.BuildCommand(protocol.ResetIntoAppRequest{}, 1)
	if _, err := d.Write(protocol.EncodePackets(msg)[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.Mode() != protocol.ModeApplication {
		t.Errorf("Mode() = %v, want application", d.Mode())
	}
	if d.Resets() != 1 {
		t.Errorf("Resets() = %d, want 1", d.Resets())
	}

	buf := make([]byte, protocol.ReportSize)
	if _, err := d.Read(buf); !errors.Is(err, transport.ErrTimeout) {
		t.Errorf("reset produced a response: %v", err)
	}
}

func TestDeviceConsole(t *testing.T) {
	d := New(DefaultConfig())
	d.Print("booting")

	msg, _ := protocol.BuildCommand(protocol.InfoRequest{}, 4)
	_, _ = d.Write(protocol.EncodePackets(msg)[0])

	var console []byte
	r := protocol.Reassembler{Console: func(_ bool, text []byte) { console = append(console, text...) }}
	buf := make([]byte, protocol.ReportSize)
	for {
		if _, err := d.Read(buf); err != nil {
			t.Fatalf("Read() error: %v", err)
		}
		if _, done, _ := r.Feed(buf); done {
			break
		}
	}

	if string(console) != "booting" {
		t.Errorf("console = %q, want %q", console, "booting")
	}
}
