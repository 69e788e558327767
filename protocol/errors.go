package protocol

import (
	"errors"
	"fmt"
)

// ProtocolError represents a failed exchange with an HF2 device.
//
// It is returned either when the device reports a non-OK status
// (StatusCode/StatusInfo are set) or when a response does not have the
// shape the request demands (Reason is set).
type ProtocolError struct {
	// Operation is the command that failed
	Operation string

	// StatusCode is the status reported by the device
	StatusCode byte

	// StatusInfo is the command specific status detail reported by the device
	StatusInfo byte

	// Reason describes a malformed or mismatched response
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s failed: %s", e.Operation, e.Reason)
	}
	statusName := getStatusName(e.StatusCode)
	return fmt.Sprintf("%s failed: %s (0x%02X, info 0x%02X)", e.Operation, statusName, e.StatusCode, e.StatusInfo)
}

// IsProtocolError returns true if err is or wraps a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// getStatusName returns a human-readable name for a status code.
func getStatusName(code byte) string {
	switch code {
	case StatusOK:
		return "success"
	case StatusInvalidCommand:
		return "invalid command"
	case StatusExecError:
		return "execution error"
	default:
		return fmt.Sprintf("unknown status code 0x%02X", code)
	}
}
