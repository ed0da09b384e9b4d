package geolocation

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode follows the W3C PositionError numbering.
type ErrorCode int

const (
	CodePermissionDenied    ErrorCode = 1
	CodePositionUnavailable ErrorCode = 2
	CodeTimeout             ErrorCode = 3
)

// PlatformError is what a Platform reports when it cannot produce a fix.
type PlatformError struct {
	Code    ErrorCode
	Message string
}

func (e *PlatformError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("geolocation platform error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("geolocation platform error %d", e.Code)
}

var (
	ErrPermissionDenied    = errors.New("location access denied by user")
	ErrPositionUnavailable = errors.New("location information unavailable")
	ErrTimeout             = errors.New("location request timed out")
	ErrUnknown             = errors.New("unknown location error")
	ErrNotSupported        = errors.New("geolocation is not supported")
)

// mapError folds platform and context failures into the package sentinels.
// Caller cancellation is passed through untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrPermissionDenied, ErrPositionUnavailable, ErrTimeout, ErrUnknown, ErrNotSupported} {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	var pe *PlatformError
	if errors.As(err, &pe) {
		switch pe.Code {
		case CodePermissionDenied:
			return ErrPermissionDenied
		case CodePositionUnavailable:
			return ErrPositionUnavailable
		case CodeTimeout:
			return ErrTimeout
		}
	}
	return fmt.Errorf("%w: %v", ErrUnknown, err)
}

// Message is the user-facing text for a location failure.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "Location access denied by user"
	case errors.Is(err, ErrPositionUnavailable):
		return "Location information unavailable"
	case errors.Is(err, ErrTimeout):
		return "Location request timed out"
	case errors.Is(err, ErrNotSupported):
		return "Geolocation is not supported"
	default:
		return "An unknown location error occurred"
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrPositionUnavailable):
		return "position_unavailable"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNotSupported):
		return "not_supported"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unknown"
	}
}
