package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name        string
		msg         []byte
		wantTag     uint16
		wantStatus  byte
		wantInfo    byte
		wantDataLen int
		wantErr     bool
		errMsg      string
	}{
		{
			name:       "valid response with no data",
			msg:        BuildResponse(0x0102, StatusOK, 0, nil),
			wantTag:    0x0102,
			wantStatus: StatusOK,
		},
		{
			name:        "valid response with data",
			msg:         BuildResponse(5, StatusOK, 0, []byte{0x01, 0x02, 0x03}),
			wantTag:     5,
			wantStatus:  StatusOK,
			wantDataLen: 3,
		},
		{
			name:       "error status code",
			msg:        BuildResponse(6, StatusExecError, 0x11, nil),
			wantTag:    6,
			wantStatus: StatusExecError,
			wantInfo:   0x11,
		},
		{
			name:    "response too short",
			msg:     []byte{0x01, 0x00},
			wantErr: true,
			errMsg:  "response too short",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, status, info, data, err := ParseResponse(tt.msg)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !bytes.Contains([]byte(err.Error()), []byte(tt.errMsg)) {
					t.Errorf("error = %v, want substring %q", err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tag != tt.wantTag {
				t.Errorf("tag = 0x%04X, want 0x%04X", tag, tt.wantTag)
			}
			if status != tt.wantStatus {
				t.Errorf("status = 0x%02X, want 0x%02X", status, tt.wantStatus)
			}
			if info != tt.wantInfo {
				t.Errorf("status info = 0x%02X, want 0x%02X", info, tt.wantInfo)
			}
			if len(data) != tt.wantDataLen {
				t.Errorf("data length = %d, want %d", len(data), tt.wantDataLen)
			}
		})
	}
}

func binInfoData(mode Mode, pageSize, numPages, maxMsg uint32, family ...uint32) []byte {
	data := make([]byte, 0, BinInfoFamilyResponseSize)
	data = binary.LittleEndian.AppendUint32(data, uint32(mode))
	data = binary.LittleEndian.AppendUint32(data, pageSize)
	data = binary.LittleEndian.AppendUint32(data, numPages)
	data = binary.LittleEndian.AppendUint32(data, maxMsg)
	for _, f := range family {
		data = binary.LittleEndian.AppendUint32(data, f)
	}
	return data
}

func TestParseBinInfoResponse(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    BinInfo
		wantErr bool
	}{
		{
			name: "bootloader without family",
			data: binInfoData(ModeBootloader, 256, 1024, 64),
			want: BinInfo{Mode: ModeBootloader, FlashPageSize: 256, FlashNumPages: 1024, MaxMessageSize: 64},
		},
		{
			name: "application with family",
			data: binInfoData(ModeApplication, 1024, 512, 4096, 0x68ED2B88),
			want: BinInfo{Mode: ModeApplication, FlashPageSize: 1024, FlashNumPages: 512, MaxMessageSize: 4096, FamilyID: 0x68ED2B88},
		},
		{
			name:    "too short",
			data:    []byte{0x01, 0x00, 0x00, 0x00},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseBinInfoResponse(tt.data)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !IsProtocolError(err) {
					t.Errorf("error type = %T, want *ProtocolError", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if *info != tt.want {
				t.Errorf("info = %+v, want %+v", *info, tt.want)
			}
		})
	}
}

func TestParseChksumPagesResponse(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		numPages uint32
		want     ChecksumTable
		wantErr  bool
	}{
		{
			name:     "three pages",
			data:     []byte{0x34, 0x12, 0x78, 0x56, 0xBC, 0x9A},
			numPages: 3,
			want:     ChecksumTable{0x1234, 0x5678, 0x9ABC},
		},
		{
			name:     "short table",
			data:     []byte{0x34, 0x12, 0x78, 0x56},
			numPages: 3,
			wantErr:  true,
		},
		{
			name:     "long table",
			data:     []byte{0x34, 0x12, 0x78, 0x56, 0x00, 0x00},
			numPages: 2,
			wantErr:  true,
		},
		{
			name:     "odd length",
			data:     []byte{0x34, 0x12, 0x78},
			numPages: 2,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseChksumPagesResponse(tt.data, tt.numPages)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var pe *ProtocolError
				if !errors.As(err, &pe) {
					t.Fatalf("error type = %T, want *ProtocolError", err)
				}
				if pe.Operation != "checksum pages" {
					t.Errorf("Operation = %q, want %q", pe.Operation, "checksum pages")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(table) != len(tt.want) {
				t.Fatalf("len(table) = %d, want %d", len(table), len(tt.want))
			}
			for i := range table {
				if table[i] != tt.want[i] {
					t.Errorf("table[%d] = 0x%04X, want 0x%04X", i, table[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseReadWordsResponse(t *testing.T) {
	words, err := ParseReadWordsResponse([]byte{0x78, 0x56, 0x34, 0x12, 0xEF, 0xBE, 0xAD, 0xDE}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if words[0] != 0x12345678 || words[1] != 0xDEADBEEF {
		t.Errorf("words = %08X", words)
	}

	if _, err := ParseReadWordsResponse([]byte{0x00}, 1); !IsProtocolError(err) {
		t.Errorf("error = %v, want ProtocolError", err)
	}
}

func TestParseInfoResponse(t *testing.T) {
	got := ParseInfoResponse([]byte("UF2 Bootloader v3.14\r\nModel: Feather\x00\x00"))
	if got != "UF2 Bootloader v3.14\r\nModel: Feather" {
		t.Errorf("info = %q", got)
	}
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		data    []byte
		check   func(t *testing.T, resp Response)
		wantErr bool
	}{
		{
			name: "bin info",
			req:  BinInfoRequest{},
			data: binInfoData(ModeBootloader, 256, 64, 64),
			check: func(t *testing.T, resp Response) {
				info, ok := resp.(*BinInfo)
				if !ok {
					t.Fatalf("response type = %T, want *BinInfo", resp)
				}
				if info.FlashPageSize != 256 {
					t.Errorf("FlashPageSize = %d, want 256", info.FlashPageSize)
				}
			},
		},
		{
			name: "checksum pages",
			req:  ChksumPagesRequest{NumPages: 1},
			data: []byte{0x21, 0x10},
			check: func(t *testing.T, resp Response) {
				table, ok := resp.(ChecksumTable)
				if !ok {
					t.Fatalf("response type = %T, want ChecksumTable", resp)
				}
				if table[0] != 0x1021 {
					t.Errorf("table[0] = 0x%04X, want 0x1021", table[0])
				}
			},
		},
		{
			name: "write flash page",
			req:  WriteFlashPageRequest{Data: []byte{0}},
			check: func(t *testing.T, resp Response) {
				if _, ok := resp.(Ack); !ok {
					t.Fatalf("response type = %T, want Ack", resp)
				}
			},
		},
		{
			name: "info",
			req:  InfoRequest{},
			data: []byte("hello"),
			check: func(t *testing.T, resp Response) {
				if resp.(InfoText) != "hello" {
					t.Errorf("info = %q, want %q", resp, "hello")
				}
			},
		},
		{
			name:    "pointer request is not part of the set",
			req:     &BinInfoRequest{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := DecodeResponse(tt.req, tt.data)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, resp)
		})
	}
}

func TestMaxChecksumPages(t *testing.T) {
	tests := []struct {
		maxMessageSize uint32
		want           uint32
	}{
		{64, 30},
		{4096, 2046},
		{7, 1},
		{6, 1},
		{5, 0},
		{4, 0},
		{0, 0},
	}

	for _, tt := range tests {
		if got := MaxChecksumPages(tt.maxMessageSize); got != tt.want {
			t.Errorf("MaxChecksumPages(%d) = %d, want %d", tt.maxMessageSize, got, tt.want)
		}
	}
}

func TestProtocolErrorMessage(t *testing.T) {
	err := &ProtocolError{Operation: "write flash page", StatusCode: StatusExecError, StatusInfo: 0x03}
	if got := err.Error(); got != "write flash page failed: execution error (0x02, info 0x03)" {
		t.Errorf("Error() = %q", got)
	}

	err = &ProtocolError{Operation: "checksum pages", Reason: "short table"}
	if got := err.Error(); got != "checksum pages failed: short table" {
		t.Errorf("Error() = %q", got)
	}
}
