// Package apierrors defines the stable error-code taxonomy (spec §7) shared
// by every component. A *CodedError is the only error type tool handlers
// need to understand at the MCP surface boundary.
package apierrors

import "fmt"

// Code is one of the stable, wire-visible error codes from spec.md §7.
type Code string

const (
	// Config
	CodeConfigInvalid          Code = "CONFIG_INVALID"
	CodeRegistryDuplicateName  Code = "REGISTRY_DUPLICATE_NAME"
	CodeRegistryDuplicateURL   Code = "REGISTRY_DUPLICATE_URL"

	// Input
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeSubjectNotFound  Code = "SUBJECT_NOT_FOUND"
	CodeRegistryNotFound Code = "REGISTRY_NOT_FOUND"
	CodeContextNotFound  Code = "CONTEXT_NOT_FOUND"

	// Authorization
	CodeInsufficientScope Code = "INSUFFICIENT_SCOPE"
	CodeRegistryViewonly  Code = "REGISTRY_VIEWONLY"
	CodeRegistryAuthFailed Code = "REGISTRY_AUTH_FAILED"

	// State
	CodeModeConflict       Code = "MODE_CONFLICT"
	CodeIDCollision        Code = "ID_COLLISION"
	CodeSchemaIncompatible Code = "SCHEMA_INCOMPATIBLE"
	CodeRegistryBusy       Code = "REGISTRY_BUSY"

	// Transport
	CodeRegistryUnreachable Code = "REGISTRY_UNREACHABLE"
	CodeRegistryTimeout     Code = "REGISTRY_TIMEOUT"
	CodeSSRFBlocked         Code = "SSRF_BLOCKED"

	// Task
	CodeTaskNotFound      Code = "TASK_NOT_FOUND"
	CodeTaskAlreadyTerminal Code = "TASK_ALREADY_TERMINAL"
	CodeTaskTimeout       Code = "TASK_TIMEOUT"
	CodeTaskCancelled     Code = "TASK_CANCELLED"

	// Internal
	CodeInternal Code = "INTERNAL_ERROR"
)

// CodedError is the single error representation threaded through every
// component. It carries a stable machine-readable Code plus optional
// Details (e.g. the offending registry name or subject).
type CodedError struct {
	Code    Code
	Message string
	Details map[string]string
}

func (e *CodedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// New creates a *CodedError with the given code and formatted message.
func New(code Code, format string, args ...interface{}) *CodedError {
	return &CodedError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetail attaches a detail key/value and returns the same error for chaining.
func (e *CodedError) WithDetail(key, value string) *CodedError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// AsCoded extracts a *CodedError from err, wrapping it as CodeInternal if it
// is not already one.
func AsCoded(err error) *CodedError {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*CodedError); ok {
		return ce
	}
	return &CodedError{Code: CodeInternal, Message: err.Error()}
}
