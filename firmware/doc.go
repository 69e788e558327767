// Package firmware extracts flashable segments from compiled images.
//
// # Supported Formats
//
// ELF executables are read through their program headers. Every PT_LOAD
// header with a non-zero file size becomes one Segment whose address is the
// header's physical (load) address and whose bytes are exactly the file
// bytes of that header. Memory-only regions such as .bss are never emitted.
//
// Intel HEX files are accepted as well; their merged data blocks become
// segments in address order.
//
// Any other input is rejected with ErrMalformedImage, as are ELF headers that
// point outside the image.
//
// # Usage
//
//	data, err := os.ReadFile("target/thumbv7em-none-eabihf/release/app")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for seg, err := range firmware.Segments(data) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("0x%08X %d bytes\n", seg.Address, len(seg.Data))
//	}
//
// # Padding
//
// Devices write whole pages. Pad extends segment data with zeros to a page
// multiple:
//
//	page := firmware.Pad(seg.Data, 256)
package firmware
