package errors

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode represents internal error codes for sequencer operations
type ErrorCode int

const (
	// Success
	ErrCodeOK ErrorCode = 0

	// Client errors
	ErrCodeMalformedRequest ErrorCode = 1000

	// Server errors
	ErrCodeInternal           ErrorCode = 2000
	ErrCodeLeaseExhausted     ErrorCode = 2001
	ErrCodeStorageUnavailable ErrorCode = 2002
)

// SequencerError represents a structured error with code and context
type SequencerError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Cause   error
}

// Error implements the error interface
func (e *SequencerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *SequencerError) Unwrap() error {
	return e.Cause
}

// ToGRPCStatus converts SequencerError to gRPC status
func (e *SequencerError) ToGRPCStatus() *status.Status {
	return status.New(e.toGRPCCode(), e.Error())
}

// toGRPCCode maps internal error codes to gRPC codes
func (e *SequencerError) toGRPCCode() codes.Code {
	switch e.Code {
	case ErrCodeOK:
		return codes.OK
	case ErrCodeMalformedRequest:
		return codes.InvalidArgument
	case ErrCodeLeaseExhausted, ErrCodeStorageUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// NewSequencerError creates a new SequencerError
func NewSequencerError(code ErrorCode, message string, cause error) *SequencerError {
	return &SequencerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Cause:   cause,
	}
}

// WithDetail adds a detail to the error
func (e *SequencerError) WithDetail(key string, value interface{}) *SequencerError {
	e.Details[key] = value
	return e
}

// Convenience constructors for the four error kinds of the protocol

// MalformedRequest covers e.g. overwrite=true and replexOverwrite=true together.
func MalformedRequest(message string) *SequencerError {
	return NewSequencerError(ErrCodeMalformedRequest, message, nil)
}

// LeaseExhausted is returned when the tail would cross the lease boundary and
// renewal did not extend it in time. The caller should retry; T was not advanced.
func LeaseExhausted(leaseLimit, attempted int64) *SequencerError {
	return NewSequencerError(ErrCodeLeaseExhausted,
		fmt.Sprintf("lease exhausted: attempted to issue up to %d, lease limit is %d", attempted, leaseLimit), nil).
		WithDetail("lease_limit", leaseLimit).
		WithDetail("attempted", attempted)
}

// StorageUnavailable wraps a failure reading or writing the persisted lease.
func StorageUnavailable(message string, cause error) *SequencerError {
	return NewSequencerError(ErrCodeStorageUnavailable, message, cause)
}

// InternalError is the catch-all for unexpected conditions.
func InternalError(message string, cause error) *SequencerError {
	return NewSequencerError(ErrCodeInternal, message, cause)
}

// IsSequencerError checks if an error is a SequencerError
func IsSequencerError(err error) bool {
	_, ok := err.(*SequencerError)
	return ok
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if se, ok := err.(*SequencerError); ok {
		return se.Code
	}
	return ErrCodeInternal
}
