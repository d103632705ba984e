package positioning

import (
	"errors"
	"fmt"
)

type ErrorCode int

const (
	Unknown ErrorCode = iota
	PermissionDenied
	PositionUnavailable
	Timeout
)

func (c ErrorCode) String() string {
	switch c {
	case PermissionDenied:
		return "permission_denied"
	case PositionUnavailable:
		return "position_unavailable"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ParseErrorCode maps the wire name of a failure cause back to its code.
func ParseErrorCode(s string) ErrorCode {
	switch s {
	case "permission_denied":
		return PermissionDenied
	case "position_unavailable":
		return PositionUnavailable
	case "timeout":
		return Timeout
	default:
		return Unknown
	}
}

var ErrUnsupported = errors.New("positioning: not supported")

type PositionError struct {
	Code    ErrorCode
	Message string
}

func (e *PositionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("positioning: %s", e.Code)
	}
	return fmt.Sprintf("positioning: %s: %s", e.Code, e.Message)
}

// CodeOf extracts the failure cause from err. Errors that are not a
// PositionError are Unknown.
func CodeOf(err error) ErrorCode {
	var pe *PositionError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return Unknown
}
