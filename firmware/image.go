package firmware

import (
	"bytes"
	"fmt"
	"iter"
	"os"
)

// Format identifies the container format of a firmware image.
type Format int

const (
	// FormatUnknown is any input that is not a supported image
	FormatUnknown Format = iota

	// FormatELF is an executable and linkable format binary
	FormatELF

	// FormatIntelHex is an Intel HEX text file
	FormatIntelHex
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatELF:
		return "elf"
	case FormatIntelHex:
		return "ihex"
	default:
		return "unknown"
	}
}

var elfMagic = []byte{0x7F, 'E', 'L', 'F'}

// DetectFormat inspects the leading bytes of data.
func DetectFormat(data []byte) Format {
	if bytes.HasPrefix(data, elfMagic) {
		return FormatELF
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte(":")) {
		return FormatIntelHex
	}
	return FormatUnknown
}

// Segments returns the loadable segments of an image as a lazy sequence.
//
// Every call to the returned sequence parses data again. Segments are
// produced in image order. Parsing stops at the first error, which is
// yielded with a zero Segment. An input in no supported format yields a
// single ErrMalformedImage error.
//
// Example:
//
//	for seg, err := range firmware.Segments(data) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Printf("0x%08X: %d bytes\n", seg.Address, len(seg.Data))
//	}
func Segments(data []byte) iter.Seq2[Segment, error] {
	return func(yield func(Segment, error) bool) {
		switch DetectFormat(data) {
		case FormatELF:
			elfSegments(data, yield)
		case FormatIntelHex:
			hexSegments(data, yield)
		default:
			yield(Segment{}, fmt.Errorf("%w: unrecognized image format", ErrMalformedImage))
		}
	}
}

// Extract collects all segments of an image.
func Extract(data []byte) ([]Segment, error) {
	var segments []Segment
	for seg, err := range Segments(data) {
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// Load reads the image at path and collects its segments.
func Load(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	segments, err := Extract(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return segments, nil
}
