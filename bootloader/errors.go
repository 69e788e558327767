package bootloader

import (
	"errors"
	"fmt"
)

// ErrInvalidDeviceCapabilities is matched by CapabilitiesError.
var ErrInvalidDeviceCapabilities = errors.New("invalid device capabilities")

// ErrTransport is matched by TransportError.
var ErrTransport = errors.New("transport failure")

// CapabilitiesError indicates that the device reported flash geometry the
// engine cannot work with.
type CapabilitiesError struct {
	PageSize       uint32
	MaxMessageSize uint32
	Reason         string
}

func (e *CapabilitiesError) Error() string {
	return fmt.Sprintf("invalid device capabilities: %s (page size %d, max message size %d)",
		e.Reason, e.PageSize, e.MaxMessageSize)
}

// Is reports whether target is ErrInvalidDeviceCapabilities.
func (e *CapabilitiesError) Is(target error) bool {
	return target == ErrInvalidDeviceCapabilities
}

// TransportError indicates that a report could not be sent or received.
// Timeouts are transport errors.
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// StateError indicates that an operation was attempted in a session state
// that does not allow it.
type StateError struct {
	Operation string
	State     State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Operation, e.State)
}

// ChecksumMismatchError indicates that a written page does not read back
// with the expected checksum.
type ChecksumMismatchError struct {
	Address  uint32
	Expected uint16
	Actual   uint16
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for page 0x%08X: expected 0x%04X, got 0x%04X",
		e.Address, e.Expected, e.Actual)
}
