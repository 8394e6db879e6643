package errors

import (
	"errors"
	"fmt"
)

// Common error types for the chat bridge
var (
	// Authentication errors
	ErrUnknownOrDisabledUser = errors.New("unknown or disabled user")
	ErrPasswordMismatch      = errors.New("password mismatch")

	// Authorization errors
	ErrInvalidToken     = errors.New("invalid token")
	ErrPermissionDenied = errors.New("permission denied")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrBindingNotFound = errors.New("binding not found")

	// Identity errors
	ErrUserNotFound = errors.New("user not found")

	// Forwarding errors
	ErrTimelineNotFound = errors.New("timeline not found")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
