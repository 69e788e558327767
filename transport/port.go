package transport

import (
	"errors"
	"io"
	"time"
)

// ErrTimeout is returned by Read when no report arrived in time.
var ErrTimeout = errors.New("transport: read timeout")

// DefaultTimeout bounds a single report read.
const DefaultTimeout = 5 * time.Second

// Port exchanges HF2 reports with a device.
//
// Each Write sends exactly one report of protocol.ReportSize bytes and each
// Read fills p with exactly one received report. Implementations are not
// safe for concurrent use.
type Port interface {
	io.ReadWriteCloser
}
