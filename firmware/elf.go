package firmware

import (
	"bytes"
	"debug/elf"
	"fmt"
	"math"
)

// elfSegments yields every PT_LOAD program header with file-backed data.
// The segment address is the physical address; bytes are taken verbatim
// from the file image without expanding Memsz.
func elfSegments(data []byte, yield func(Segment, error) bool) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		yield(Segment{}, fmt.Errorf("%w: %v", ErrMalformedImage, err))
		return
	}
	defer func() { _ = f.Close() }()

	for i, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD || prog.Filesz == 0 {
			continue
		}

		if prog.Paddr > math.MaxUint32 {
			yield(Segment{}, fmt.Errorf("%w: program header %d: physical address 0x%X exceeds 32 bits",
				ErrMalformedImage, i, prog.Paddr))
			return
		}

		end := prog.Off + prog.Filesz
		if end < prog.Off || end > uint64(len(data)) {
			yield(Segment{}, fmt.Errorf("%w: program header %d: file range [0x%X, 0x%X) outside %d byte image",
				ErrMalformedImage, i, prog.Off, prog.Off+prog.Filesz, len(data)))
			return
		}

		seg := Segment{
			Address: uint32(prog.Paddr),
			Data:    bytes.Clone(data[prog.Off:end]),
		}
		if !yield(seg, nil) {
			return
		}
	}
}
