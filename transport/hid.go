package transport

import (
	"fmt"
	"time"

	"github.com/sstallion/go-hid"

	"github.com/moffa90/go-hf2/protocol"
)

// hidDevice is the subset of *hid.Device used by HIDPort.
type hidDevice interface {
	Write(p []byte) (int, error)
	ReadWithTimeout(p []byte, timeout time.Duration) (int, error)
	Close() error
}

// HIDPort is a Port backed by a USB HID device.
type HIDPort struct {
	dev     hidDevice
	timeout time.Duration
	buf     [protocol.ReportSize + 1]byte
}

// Init initializes the HID library. Call it once before enumerating or
// opening devices.
func Init() error {
	return hid.Init()
}

// Exit releases resources held by the HID library.
func Exit() error {
	return hid.Exit()
}

// OpenHID opens the first HID device matching vid and pid.
func OpenHID(vid, pid uint16, timeout time.Duration) (*HIDPort, error) {
	dev, err := hid.OpenFirst(vid, pid)
	if err != nil {
		return nil, fmt.Errorf("failed to open HID device %04x:%04x: %w", vid, pid, err)
	}
	return newHIDPort(dev, timeout), nil
}

// OpenHIDPath opens the HID device at a platform specific path as reported
// by enumeration.
func OpenHIDPath(path string, timeout time.Duration) (*HIDPort, error) {
	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open HID device %s: %w", path, err)
	}
	return newHIDPort(dev, timeout), nil
}

func newHIDPort(dev hidDevice, timeout time.Duration) *HIDPort {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HIDPort{dev: dev, timeout: timeout}
}

// Write sends one report. HF2 devices use unnumbered reports, so report ID 0
// is prepended as the HID API requires.
func (p *HIDPort) Write(report []byte) (int, error) {
	if len(report) > protocol.ReportSize {
		return 0, fmt.Errorf("report too large: %d bytes, maximum is %d", len(report), protocol.ReportSize)
	}

	p.buf = [protocol.ReportSize + 1]byte{}
	copy(p.buf[1:], report)
	if _, err := p.dev.Write(p.buf[:]); err != nil {
		return 0, err
	}
	return len(report), nil
}

// Read receives one report into b. It returns ErrTimeout when nothing
// arrives within the configured timeout.
func (p *HIDPort) Read(b []byte) (int, error) {
	n, err := p.dev.ReadWithTimeout(b, p.timeout)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, ErrTimeout
	}
	return n, nil
}

// Close closes the device.
func (p *HIDPort) Close() error {
	return p.dev.Close()
}
