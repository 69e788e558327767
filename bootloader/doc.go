// Package bootloader drives HF2 devices through a flashing run.
//
// # Overview
//
// The package is layered:
//   - Session owns one device port and enforces the order of operations
//   - Syncer compares segments against device flash page by page and writes
//     only the pages whose CRC differs
//   - Programmer runs the whole sequence for a list of segments
//
// # Basic Usage
//
//	port, err := transport.OpenHID(0x239A, 0x0035, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	data, err := os.ReadFile("app.elf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	prog := bootloader.New(port)
//	report, err := prog.Program(context.Background(), firmware.Segments(data))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d of %d pages written\n", report.PagesWritten, report.PagesTotal)
//
// # Session State Machine
//
//	Discovered -> InfoQueried -> BootloaderArmed | AlreadyBootloader
//	           -> Syncing -> Resetting -> Terminal
//
// Page checksums and writes are only accepted once the bootloader is armed
// (or the device reported bootloader mode already). Any failed exchange puts
// the session in StateFailed; there is no reconnect.
//
// # Differential Writes
//
// For every segment the Syncer:
//  1. pads the data with zeros to a multiple of the flash page size
//  2. reads the device checksums of the covered pages, at most
//     MaxMessageSize/2-2 pages per request
//  3. compares each page's CRC-XMODEM with the device value
//  4. writes the differing pages in ascending order
//
// Running the same image twice therefore writes nothing the second time.
//
// # Progress Tracking
//
//	prog := bootloader.New(port,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("[%s] %.1f%%\n", p.Phase, p.Percentage)
//	    }),
//	)
//
// # Configuration Options
//
//	prog := bootloader.New(port,
//	    bootloader.WithLogger(myLogger),
//	    bootloader.WithTimeout(10*time.Second),
//	    bootloader.WithForceWrite(false),
//	    bootloader.WithVerifyAfterWrite(true),
//	)
//
// # Error Handling
//
// The package provides structured error types:
//   - CapabilitiesError: zero page size or unusable max message size
//     (errors.Is(err, ErrInvalidDeviceCapabilities))
//   - TransportError: a report could not be sent or received, including
//     timeouts (errors.Is(err, ErrTransport))
//   - StateError: an operation was attempted out of order
//   - ChecksumMismatchError: a written page failed verification
//   - protocol.ProtocolError: the device returned an error status or a
//     response of the wrong shape
//
// No operation is retried.
package bootloader
