package firmware

// Segment is a contiguous block of image bytes together with the physical
// address it must be written to. Segments are not modified after they are
// produced.
type Segment struct {
	// Address is the physical load address of the first byte
	Address uint32

	// Data is the file-backed content of the segment
	Data []byte
}

// End returns the address one past the last byte of the segment as a
// 64-bit value so callers can detect ranges that overflow the 32-bit space.
func (s Segment) End() uint64 {
	return uint64(s.Address) + uint64(len(s.Data))
}

// Pad returns a copy of data extended with zero bytes to the smallest
// multiple of pageSize that is at least len(data). An empty input yields an
// empty result. Pad panics if pageSize is zero.
//
// Example:
//
//	padded := firmware.Pad(make([]byte, 600), 256)
//	// len(padded) == 768, padded[600:] are all zero
func Pad(data []byte, pageSize uint32) []byte {
	n := PageCount(len(data), pageSize) * int(pageSize)
	padded := make([]byte, n)
	copy(padded, data)
	return padded
}

// PageCount returns the number of pageSize pages needed to hold length bytes.
func PageCount(length int, pageSize uint32) int {
	if pageSize == 0 {
		panic("firmware: page size cannot be zero")
	}
	return (length + int(pageSize) - 1) / int(pageSize)
}
