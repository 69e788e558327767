package firmware

import (
	"bytes"
	"fmt"

	"github.com/marcinbor85/gohex"
)

// hexSegments yields the data segments of an Intel HEX image in address
// order. Adjacent records are merged by the parser.
func hexSegments(data []byte, yield func(Segment, error) bool) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(bytes.NewReader(data)); err != nil {
		yield(Segment{}, fmt.Errorf("%w: %v", ErrMalformedImage, err))
		return
	}

	for _, ds := range mem.GetDataSegments() {
		if len(ds.Data) == 0 {
			continue
		}
		if uint64(ds.Address)+uint64(len(ds.Data)) > 1<<32 {
			yield(Segment{}, fmt.Errorf("%w: hex segment at 0x%08X overflows the address space",
				ErrMalformedImage, ds.Address))
			return
		}
		if !yield(Segment{Address: ds.Address, Data: bytes.Clone(ds.Data)}, nil) {
			return
		}
	}
}
