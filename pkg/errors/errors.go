// Package errors provides custom error types for the questlog system.
// These errors enable programmatic error checking throughout the
// reconciliation pipeline, in particular distinguishing transient
// failures (retryable) from permanent ones.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's chain matches target.
// It's an alias for the standard library errors.Is for convenience.
var Is = errors.Is

// Common sentinel errors for the questlog system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates that an API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates that an external service is temporarily unavailable
	ErrUnavailable = errors.New("service unavailable")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrPermissionDenied indicates that the API rejected our credentials
	// or the token lacks access to the resource
	ErrPermissionDenied = errors.New("permission denied")
)

// APIError represents an error response from an external HTTP API.
type APIError struct {
	Service    string
	StatusCode int
	Endpoint   string
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is maps HTTP status classes onto the transient sentinels so callers
// can decide whether to retry without inspecting status codes.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 429:
		return target == ErrRateLimited
	case e.StatusCode == 401 || e.StatusCode == 403:
		return target == ErrPermissionDenied
	case e.StatusCode == 404:
		return target == ErrNotFound
	case e.StatusCode == 408 || e.StatusCode == 504:
		return target == ErrTimeout
	case e.StatusCode >= 500:
		return target == ErrUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    message,
	}
}

// LookupError represents a failed catalog lookup. It is always considered
// distinct from "no match": the catalog could not be consulted at all.
type LookupError struct {
	Catalog string
	Title   string
	Err     error
}

// Error implements the error interface
func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup failed on %s for %q: %v", e.Catalog, e.Title, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError creates a new LookupError
func NewLookupError(catalog, title string, err error) *LookupError {
	return &LookupError{Catalog: catalog, Title: title, Err: err}
}

// WriteError represents a failed write against the document store.
// Permanent write errors (invalid field, permission denied) must not be
// retried; transient ones (rate limit, timeout) may be.
type WriteError struct {
	RecordID  string
	Permanent bool
	Err       error
}

// Error implements the error interface
func (e *WriteError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	return fmt.Sprintf("%s write failure for record %s: %v", kind, e.RecordID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *WriteError) Unwrap() error {
	return e.Err
}

// NewWriteError creates a WriteError, classifying it as permanent when the
// underlying error is not one of the transient sentinels.
func NewWriteError(recordID string, err error) *WriteError {
	return &WriteError{
		RecordID:  recordID,
		Permanent: !IsTransient(err),
		Err:       err,
	}
}

// AuthenticationError represents an authentication failure against an
// external service.
type AuthenticationError struct {
	Service string
	Method  string // "oauth2", "bearer_token"
	Message string
	Err     error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error for %s (%s): %s", e.Service, e.Method, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "date"
	Source  string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("parse error in %s from %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, Source: source, Message: err.Error(), Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsPermissionDenied checks if an error is an authorization failure
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsTransient reports whether an error is worth retrying. Rate limits,
// timeouts, and upstream unavailability are transient; everything else
// (bad input, permission denied, not found) is not.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrUnavailable)
}
