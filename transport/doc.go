// Package transport moves HF2 reports between the host and a device.
//
// Two ports are provided:
//
//   - HIDPort talks to a USB HID device through github.com/sstallion/go-hid
//   - SerialPort carries the same 64-byte reports over a serial line using
//     github.com/tarm/serial
//
// Both implement Port. Higher layers (package bootloader) frame messages
// into reports and never see the underlying device.
//
// Example:
//
//	if err := transport.Init(); err != nil {
//	    log.Fatal(err)
//	}
//	defer transport.Exit()
//
//	port, err := transport.OpenHID(0x239A, 0x0035, 2*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
package transport
