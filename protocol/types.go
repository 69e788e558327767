package protocol

import "fmt"

// Mode is the device operating mode reported by BININFO.
type Mode uint32

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeBootloader:
		return "bootloader"
	case ModeApplication:
		return "application"
	default:
		return fmt.Sprintf("mode(0x%X)", uint32(m))
	}
}

// BinInfo contains the device mode and flash geometry.
// Returned by the BININFO command.
type BinInfo struct {
	// Mode is the current operating mode
	Mode Mode

	// FlashPageSize is the size of one flash page in bytes
	FlashPageSize uint32

	// FlashNumPages is the number of flash pages
	FlashNumPages uint32

	// MaxMessageSize is the largest HF2 message the device accepts or sends
	MaxMessageSize uint32

	// FamilyID is the UF2 family identifier (zero when not reported)
	FamilyID uint32
}

// InfoText is the identification string returned by the INFO command.
type InfoText string

// ChecksumTable holds one CRC16 per flash page, in address order.
type ChecksumTable []uint16

// Words holds 32-bit words returned by READ_WORDS.
type Words []uint32

// Ack is the empty response of commands that only report a status.
type Ack struct{}

// Response is the decoded data of a successful command.
// It is one of *BinInfo, InfoText, ChecksumTable, Words or Ack.
type Response interface{}
