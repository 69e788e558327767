package transport

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"

	"github.com/moffa90/go-hf2/protocol"
)

// SerialConfig holds serial port configuration.
type SerialConfig struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (USB CDC devices ignore it)
	Baud int

	// ReadTimeout bounds a single report read (0 = blocking)
	ReadTimeout time.Duration
}

// DefaultSerialConfig returns a configuration for a USB CDC HF2 device.
func DefaultSerialConfig(device string) *SerialConfig {
	return &SerialConfig{
		Device:      device,
		Baud:        115200,
		ReadTimeout: DefaultTimeout,
	}
}

// SerialPort is a Port carrying HF2 reports over a serial line. Reports
// are sent verbatim, protocol.ReportSize bytes each.
type SerialPort struct {
	port io.ReadWriteCloser
}

// OpenSerial opens a serial port.
func OpenSerial(cfg *SerialConfig) (*SerialPort, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return &SerialPort{port: port}, nil
}

// Write sends one report padded to protocol.ReportSize bytes.
func (p *SerialPort) Write(report []byte) (int, error) {
	if len(report) > protocol.ReportSize {
		return 0, fmt.Errorf("report too large: %d bytes, maximum is %d", len(report), protocol.ReportSize)
	}

	var buf [protocol.ReportSize]byte
	copy(buf[:], report)
	if _, err := p.port.Write(buf[:]); err != nil {
		return 0, err
	}
	return len(report), nil
}

// Read reads exactly one report. A read that times out before the first
// byte returns ErrTimeout.
func (p *SerialPort) Read(b []byte) (int, error) {
	if len(b) < protocol.ReportSize {
		return 0, fmt.Errorf("buffer too small: %d bytes, need %d", len(b), protocol.ReportSize)
	}

	n, err := io.ReadFull(p.port, b[:protocol.ReportSize])
	if errors.Is(err, io.EOF) {
		// tarm/serial reports an expired read timeout as io.EOF.
		return 0, ErrTimeout
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return n, fmt.Errorf("short report: got %d of %d bytes: %w", n, protocol.ReportSize, ErrTimeout)
	}
	return n, err
}

// Close closes the serial port.
func (p *SerialPort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}
