// Package errors provides the platform's unified error type and the
// §7 error-kind taxonomy, in the teacher's two-layer shape:
//
//   - L1 sentinel errors: ErrNotFound / ErrValidation / ErrTimeout / ...
//   - L2 AppError: Op + Code + Message, wrapping a sentinel or a raw cause
package errors

import (
	"errors"
	"fmt"
)

// ========================================
// L1 sentinel errors
// ========================================

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConfig       = errors.New("config error")
	ErrAPI          = errors.New("api error")
	ErrParse        = errors.New("parse error")
	ErrSync         = errors.New("sync error")
	ErrTimeout      = errors.New("timeout")
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRowMissing   = errors.New("row missing")
	ErrReadOnly     = errors.New("read-only violation")
)

// Code values from spec §7. Never invent a new one inline — extend this list.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeConfig     = "CONFIG_ERROR"
	CodeAPI        = "API_ERROR"
	CodeParse      = "PARSE_ERROR"
	CodeSync       = "SYNC_ERROR"
	CodeTimeout    = "TIMEOUT"
	CodeInternal   = "INTERNAL_ERROR"
)

// sentinelCode maps a known sentinel to its §7 code; unknown errors fall
// back to CodeInternal.
var sentinelCode = map[error]string{
	ErrNotFound:   CodeNotFound,
	ErrValidation: CodeValidation,
	ErrConfig:     CodeConfig,
	ErrAPI:        CodeAPI,
	ErrParse:      CodeParse,
	ErrSync:       CodeSync,
	ErrTimeout:    CodeTimeout,
	ErrInternal:   CodeInternal,
}

// ========================================
// L2 AppError
// ========================================

// AppError is the application-level error carrying operation context.
type AppError struct {
	Op      string // e.g. "ScenarioEngine.ProcessEvent"
	Code    string // one of the Code* constants
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// ========================================
// Factories
// ========================================

// New creates an application error with CodeInternal and no wrapped cause.
func New(op, message string) error {
	return &AppError{Op: op, Code: CodeInternal, Message: message}
}

// Newf creates a formatted application error.
func Newf(op, format string, args ...any) error {
	return &AppError{Op: op, Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// WithCode creates an application error tagged with an explicit §7 code.
func WithCode(op, code, message string) error {
	return &AppError{Op: op, Code: code, Message: message}
}

// Wrap attaches operation context to err, inferring a code from its sentinel
// chain (defaults to CodeInternal).
func Wrap(err error, op, message string) error {
	return &AppError{Op: op, Code: codeFor(err), Message: message, Err: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, op, format string, args ...any) error {
	return &AppError{Op: op, Code: codeFor(err), Message: fmt.Sprintf(format, args...), Err: err}
}

// WrapCode attaches operation context and an explicit code, regardless of
// err's sentinel chain.
func WrapCode(err error, op, code, message string) error {
	return &AppError{Op: op, Code: code, Message: message, Err: err}
}

func codeFor(err error) string {
	for sentinel, code := range sentinelCode {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeInternal
}

// ========================================
// Wire envelope (§6/§7)
// ========================================

// ErrorDetail is the {code, message, details?} payload inside an envelope.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the universal task/action result shape:
//
//	success: {"result":"success","response_data":{...}}
//	failure: {"result":"error","error":{"code":"...","message":"...","details":...}}
type Envelope struct {
	Result       string       `json:"result"`
	ResponseData any          `json:"response_data,omitempty"`
	Error        *ErrorDetail `json:"error,omitempty"`
}

// Success builds a success envelope.
func Success(data any) Envelope {
	return Envelope{Result: "success", ResponseData: data}
}

// Failure builds an error envelope from err, extracting {Op,Code,Message} when
// err is an *AppError and falling back to CodeInternal/err.Error() otherwise.
func Failure(err error) Envelope {
	if err == nil {
		return Envelope{Result: "error", Error: &ErrorDetail{Code: CodeInternal, Message: "unknown error"}}
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return Envelope{Result: "error", Error: &ErrorDetail{Code: appErr.Code, Message: appErr.Error()}}
	}
	return Envelope{Result: "error", Error: &ErrorDetail{Code: codeFor(err), Message: err.Error()}}
}

// FailureWithDetails is Failure plus an arbitrary details payload.
func FailureWithDetails(err error, details any) Envelope {
	env := Failure(err)
	env.Error.Details = details
	return env
}
