package protocol

// CRC-XMODEM constants.
const (
	// CRC16Polynomial is the CRC-16-CCITT polynomial (0x1021)
	CRC16Polynomial = 0x1021

	// CRC16InitialValue is the XMODEM initial value
	CRC16InitialValue = 0x0000

	// CRC16HighBitMask is the high bit mask for CRC-16 calculations
	CRC16HighBitMask = 0x8000

	// BitsPerByte is the number of bits per byte
	BitsPerByte = 8
)

var crc16Table = makeCRC16Table()

func makeCRC16Table() [256]uint16 {
	var table [256]uint16
	for i := range table {
		crc := uint16(i) << BitsPerByte
		for j := 0; j < BitsPerByte; j++ {
			if crc&CRC16HighBitMask != 0 {
				crc = (crc << 1) ^ CRC16Polynomial
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// CRC16 computes the CRC-XMODEM checksum of data, the algorithm HF2
// bootloaders use for CHKSUM_PAGES.
//
// Parameters:
//   - Polynomial: CRC16Polynomial
//   - Initial value: CRC16InitialValue
//   - No input/output reflection, no final XOR
func CRC16(data []byte) uint16 {
	crc := uint16(CRC16InitialValue)
	for _, b := range data {
		crc = (crc << BitsPerByte) ^ crc16Table[byte(crc>>BitsPerByte)^b]
	}
	return crc
}

// PageChecksum returns the checksum of a full (already padded) flash page.
func PageChecksum(page []byte) uint16 {
	return CRC16(page)
}
