package protocol

// ProtocolVersion is the HF2 protocol revision implemented by this library.
const ProtocolVersion = "1.0"

// HID report framing constants.
const (
	// ReportSize is the size of a single HF2 HID report in bytes
	ReportSize = 64

	// MaxPacketPayload is the number of message bytes carried by one report
	// (ReportSize minus the one byte packet header)
	MaxPacketPayload = ReportSize - 1

	// PacketTypeMask selects the packet type bits of the header byte
	PacketTypeMask = 0xC0

	// PacketLengthMask selects the payload length bits of the header byte
	PacketLengthMask = 0x3F
)

// Packet types carried in the two high bits of the report header.
const (
	// PacketInner marks a packet that is followed by more packets of the same message
	PacketInner = 0x00

	// PacketFinal marks the last packet of a message
	PacketFinal = 0x40

	// PacketStdout carries device serial output, not part of any message
	PacketStdout = 0x80

	// PacketStderr carries device serial error output, not part of any message
	PacketStderr = 0xC0
)

// Message header sizes.
const (
	// CommandHeaderSize is command(4) + tag(2) + reserved(2)
	CommandHeaderSize = 8

	// ResponseHeaderSize is tag(2) + status(1) + status info(1)
	ResponseHeaderSize = 4
)

// Command identifiers as defined by HF2.
const (
	// CmdBinInfo reports the operating mode and flash geometry
	CmdBinInfo uint32 = 0x0001

	// CmdInfo reports a human readable identification string
	CmdInfo uint32 = 0x0002

	// CmdResetIntoApp restarts the device into the application (no response)
	CmdResetIntoApp uint32 = 0x0003

	// CmdResetIntoBootloader restarts the device into the bootloader (no response)
	CmdResetIntoBootloader uint32 = 0x0004

	// CmdStartFlash arms an application-mode device for flashing
	CmdStartFlash uint32 = 0x0005

	// CmdWriteFlashPage writes exactly one flash page
	CmdWriteFlashPage uint32 = 0x0006

	// CmdChksumPages returns the CRC16 of consecutive flash pages
	CmdChksumPages uint32 = 0x0007

	// CmdReadWords reads 32-bit words from device memory
	CmdReadWords uint32 = 0x0008

	// CmdWriteWords writes 32-bit words to device memory
	CmdWriteWords uint32 = 0x0009

	// CmdDmesg returns the device's internal log buffer
	CmdDmesg uint32 = 0x0010
)

// Response status codes.
const (
	// StatusOK indicates the command executed successfully
	StatusOK = 0x00

	// StatusInvalidCommand indicates the command is not supported by the device
	StatusInvalidCommand = 0x01

	// StatusExecError indicates the command failed on the device
	StatusExecError = 0x02
)

// Operating modes reported by BININFO.
const (
	// ModeBootloader means the device accepts flashing commands
	ModeBootloader Mode = 0x01

	// ModeApplication means the device runs the user application
	ModeApplication Mode = 0x02
)

// Response data sizes.
const (
	// BinInfoResponseSize is the minimum BININFO data size (mode, page size, page count, max message size)
	BinInfoResponseSize = 16

	// BinInfoFamilyResponseSize is the BININFO data size when the family ID is present
	BinInfoFamilyResponseSize = 20

	// ChecksumSize is the size of a single page checksum
	ChecksumSize = 2

	// WordSize is the size of a READ_WORDS word
	WordSize = 4

	// checksumHeaderSlots is the number of checksum slots consumed by the
	// response header in a CHKSUM_PAGES reply
	checksumHeaderSlots = ResponseHeaderSize / ChecksumSize
)
