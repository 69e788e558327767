package protocol

import "testing"

func TestCRC16(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: 0x0000,
		},
		{
			name:     "check value",
			data:     []byte("123456789"),
			expected: 0x31C3, // CRC-16/XMODEM check
		},
		{
			name:     "single byte one",
			data:     []byte{0x01},
			expected: 0x1021,
		},
		{
			name:     "test data",
			data:     []byte{0x01, 0x02, 0x03, 0x04},
			expected: 0x0D03,
		},
		{
			name:     "zero page",
			data:     make([]byte, 256),
			expected: 0x0000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CRC16(tt.data)
			if result != tt.expected {
				t.Errorf("CRC16() = 0x%04X, want 0x%04X", result, tt.expected)
			}
		})
	}
}

func TestCRC16ErasedPage(t *testing.T) {
	page := make([]byte, 256)
	for i := range page {
		page[i] = 0xFF
	}

	if got := PageChecksum(page); got != 0x1AC7 {
		t.Errorf("PageChecksum(erased) = 0x%04X, want 0x1AC7", got)
	}
}

func TestCRC16MatchesBitwise(t *testing.T) {
	bitwise := func(data []byte) uint16 {
		crc := uint16(CRC16InitialValue)
		for _, b := range data {
			crc ^= uint16(b) << BitsPerByte
			for i := 0; i < BitsPerByte; i++ {
				if crc&CRC16HighBitMask != 0 {
					crc = (crc << 1) ^ CRC16Polynomial
				} else {
					crc <<= 1
				}
			}
		}
		return crc
	}

	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i * 7)
	}

	if got, want := CRC16(data), bitwise(data); got != want {
		t.Errorf("CRC16() = 0x%04X, bitwise = 0x%04X", got, want)
	}
}

func BenchmarkCRC16(b *testing.B) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CRC16(data)
	}
}
