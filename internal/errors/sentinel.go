package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrValidation indicates a malformed template, prompt answer or config value.
	ErrValidation = errors.New("validation error")

	// ErrConnectivity indicates a remote template, block or file could not be fetched.
	ErrConnectivity = errors.New("connectivity error")

	// ErrPermission indicates insufficient filesystem permissions.
	ErrPermission = errors.New("permission denied")

	// ErrNotFound indicates a template, block, string or file was not found.
	ErrNotFound = errors.New("not found")
)
