package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ParseResponse extracts the tag, status and data from a response message.
//
// Response message structure:
//
//	[TAG(2)][STATUS(1)][STATUS_INFO(1)][DATA...]
//
// A non-OK status is not an error here; callers decide how to report it.
func ParseResponse(msg []byte) (tag uint16, status, statusInfo byte, data []byte, err error) {
	if len(msg) < ResponseHeaderSize {
		return 0, 0, 0, nil, fmt.Errorf("response too short: got %d bytes, minimum is %d", len(msg), ResponseHeaderSize)
	}

	tag = binary.LittleEndian.Uint16(msg[0:2])
	status = msg[2]
	statusInfo = msg[3]
	if len(msg) > ResponseHeaderSize {
		data = msg[ResponseHeaderSize:]
	}

	return tag, status, statusInfo, data, nil
}

// ParseBinInfoResponse parses the BININFO command response.
//
// Data format (16 or 20 bytes):
//
//	[MODE(4)][FLASH_PAGE_SIZE(4)][FLASH_NUM_PAGES(4)][MAX_MESSAGE_SIZE(4)][FAMILY_ID(4), optional]
func ParseBinInfoResponse(data []byte) (*BinInfo, error) {
	if len(data) < BinInfoResponseSize {
		return nil, &ProtocolError{
			Operation: "bin info",
			Reason:    fmt.Sprintf("invalid data length: got %d bytes, expected at least %d", len(data), BinInfoResponseSize),
		}
	}

	info := &BinInfo{
		Mode:           Mode(binary.LittleEndian.Uint32(data[0:4])),
		FlashPageSize:  binary.LittleEndian.Uint32(data[4:8]),
		FlashNumPages:  binary.LittleEndian.Uint32(data[8:12]),
		MaxMessageSize: binary.LittleEndian.Uint32(data[12:16]),
	}
	if len(data) >= BinInfoFamilyResponseSize {
		info.FamilyID = binary.LittleEndian.Uint32(data[16:20])
	}

	return info, nil
}

// ParseInfoResponse parses the INFO command response.
// The text is returned without trailing NUL padding.
func ParseInfoResponse(data []byte) InfoText {
	return InfoText(bytes.TrimRight(data, "\x00"))
}

// ParseChksumPagesResponse parses the CHKSUM_PAGES command response.
//
// Data format (2 bytes per page, little-endian):
//
//	[CHKSUM_0(2)][CHKSUM_1(2)]...[CHKSUM_N-1(2)]
//
// The response must contain exactly numPages checksums. A shorter or longer
// table means host and device disagree about the request and is reported as
// a ProtocolError.
func ParseChksumPagesResponse(data []byte, numPages uint32) (ChecksumTable, error) {
	if uint64(len(data)) != uint64(numPages)*ChecksumSize {
		return nil, &ProtocolError{
			Operation: "checksum pages",
			Reason: fmt.Sprintf("checksum table length mismatch: got %d bytes, expected %d (%d pages)",
				len(data), uint64(numPages)*ChecksumSize, numPages),
		}
	}

	table := make(ChecksumTable, numPages)
	for i := range table {
		table[i] = binary.LittleEndian.Uint16(data[i*ChecksumSize:])
	}

	return table, nil
}

// ParseReadWordsResponse parses the READ_WORDS command response.
//
// Data format (4 bytes per word, little-endian):
//
//	[WORD_0(4)][WORD_1(4)]...[WORD_N-1(4)]
func ParseReadWordsResponse(data []byte, numWords uint32) (Words, error) {
	if uint64(len(data)) != uint64(numWords)*WordSize {
		return nil, &ProtocolError{
			Operation: "read words",
			Reason: fmt.Sprintf("invalid data length: got %d bytes, expected %d",
				len(data), uint64(numWords)*WordSize),
		}
	}

	words := make(Words, numWords)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*WordSize:])
	}

	return words, nil
}

// MaxChecksumPages returns the largest page count a single CHKSUM_PAGES
// request may ask for so that the reply fits in maxMessageSize bytes.
// The response header occupies two checksum slots.
//
// A result of zero means the device cannot answer any checksum request.
func MaxChecksumPages(maxMessageSize uint32) uint32 {
	slots := maxMessageSize / ChecksumSize
	if slots <= checksumHeaderSlots {
		return 0
	}
	return slots - checksumHeaderSlots
}
