package types

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrInvalidInput      = "INVALID_INPUT"
	ErrInvalidTimeWindow = "INVALID_TIME_WINDOW"
	ErrUnsupportedChain  = "UNSUPPORTED_CHAIN"
	ErrUnsupportedToken  = "UNSUPPORTED_TOKEN"
	ErrRPCConnection     = "RPC_CONNECTION_ERROR"
	ErrRPCQuery          = "RPC_ERROR"
	ErrRateLimited       = "RATE_LIMITED"
	ErrRangeTooLarge     = "RANGE_TOO_LARGE"
	ErrUnknown           = "UNKNOWN_ERROR"
)

// VerifyError is the typed error returned by every failed verification.
// Code is machine readable, Message is meant for humans.
type VerifyError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Err     error       `json:"-"`
}

func (e *VerifyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}

// Is matches any VerifyError carrying the same code, so callers can write
// errors.Is(err, &types.VerifyError{Code: types.ErrRateLimited}).
func (e *VerifyError) Is(target error) bool {
	t, ok := target.(*VerifyError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError builds a VerifyError with a formatted message
func NewError(code string, format string, args ...any) *VerifyError {
	return &VerifyError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError builds a VerifyError around an underlying cause
func WrapError(code string, err error, format string, args ...any) *VerifyError {
	return &VerifyError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// ErrorCode extracts the code of a VerifyError, or ErrUnknown
func ErrorCode(err error) string {
	var verr *VerifyError
	if errors.As(err, &verr) {
		return verr.Code
	}
	return ErrUnknown
}

// IsRPCError reports whether err comes from talking to the node
// (connection or query failure). Rate limiting is reported separately.
func IsRPCError(err error) bool {
	switch ErrorCode(err) {
	case ErrRPCConnection, ErrRPCQuery:
		return true
	}
	return false
}

// IsInputError reports whether err was raised before any network call
// because of a malformed request.
func IsInputError(err error) bool {
	switch ErrorCode(err) {
	case ErrInvalidInput, ErrInvalidTimeWindow:
		return true
	}
	return false
}
