package errors

import (
	"errors"
	"fmt"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Kind classifies failures the way they are surfaced to users.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindPrecondition Kind = "precondition_failed"
	KindNotFound     Kind = "not_found"
	KindExternal     Kind = "external_failure"
	KindRateLimited  Kind = "rate_limited"
)

const genericUserMessage = "An error occurred. Please try again later."

// AppError carries a machine code, a log message and a user-facing rejection.
// Key and Args let the presentation layer localize UserMessage.
type AppError struct {
	Code        string
	Kind        Kind
	Message     string
	UserMessage string
	Key         string
	Args        map[string]any
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewValidationError reports a bad or missing argument.
func NewValidationError(key, msg string, args map[string]any) *AppError {
	return &AppError{
		Code:        "E100",
		Kind:        KindValidation,
		Message:     msg,
		UserMessage: msg,
		Key:         key,
		Args:        args,
		Severity:    SeverityLow,
	}
}

// NewPreconditionError reports a state that forbids the operation: funds,
// marriage, loans, cooldowns, channel bindings.
func NewPreconditionError(key, msg string, args map[string]any) *AppError {
	return &AppError{
		Code:        "E400",
		Kind:        KindPrecondition,
		Message:     msg,
		UserMessage: msg,
		Key:         key,
		Args:        args,
		Severity:    SeverityLow,
	}
}

// NewNotFoundError reports a missing guild configuration or target profile.
func NewNotFoundError(key, msg string, args map[string]any) *AppError {
	return &AppError{
		Code:        "E404",
		Kind:        KindNotFound,
		Message:     msg,
		UserMessage: msg,
		Key:         key,
		Args:        args,
		Severity:    SeverityLow,
	}
}

func NewDatabaseError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Kind:        KindExternal,
		Message:     fmt.Sprintf("Database error: %s", underlyingMsg),
		UserMessage: genericUserMessage,
		Key:         "generic",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

func NewExternalAPIError(apiName string, cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Kind:        KindExternal,
		Message:     fmt.Sprintf("External API error: %s", apiName),
		UserMessage: genericUserMessage,
		Key:         "generic",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

func NewRateLimitError(retryAfter int) *AppError {
	return &AppError{
		Code:        "E500",
		Kind:        KindRateLimited,
		Message:     fmt.Sprintf("Rate limit exceeded: retry after %d seconds", retryAfter),
		UserMessage: fmt.Sprintf("Too many requests. Try again in %d seconds.", retryAfter),
		Key:         "rate_limited",
		Args:        map[string]any{"seconds": retryAfter},
		Severity:    SeverityLow,
	}
}

// KindOf returns the Kind of the first AppError in err's chain, or
// KindExternal for anything else.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Kind
	}
	return KindExternal
}

// IsKind reports whether err carries an AppError of kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr != nil && appErr.Kind == kind
}
