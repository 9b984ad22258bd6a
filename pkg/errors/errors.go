// Package errors defines the error kinds shared across woezel and the helpers
// used to wrap them with context.
package errors

import (
	"errors"
	"fmt"
)

// Installer error kinds.
var (
	// ErrNetwork is returned when a host cannot be resolved or connected to.
	ErrNetwork = fmt.Errorf("network error")
	// ErrNotFound is returned when the index does not know a package or artifact.
	ErrNotFound = fmt.Errorf("package not found")
	// ErrProtocol is returned for unexpected HTTP statuses and malformed responses.
	ErrProtocol = fmt.Errorf("protocol error")
	// ErrAlreadyLatest is returned when the latest version is already installed
	// and a reinstall was not forced.
	ErrAlreadyLatest = fmt.Errorf("latest version installed")
	// ErrFilesystem is returned when the install tree cannot be written.
	ErrFilesystem = fmt.Errorf("filesystem error")
	// ErrInvalidMetadata is returned when package metadata breaks an invariant
	// of the index, e.g. a version without exactly one release artifact.
	ErrInvalidMetadata = fmt.Errorf("invalid package metadata")
)

// Config errors.
var (
	ErrEmptyConfigPath  = fmt.Errorf("config file path cannot be empty")
	ErrConfigParse      = fmt.Errorf("failed to parse config")
	ErrConfigValidation = fmt.Errorf("invalid configuration")

	// Hook errors.
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
)

// StatusError is a protocol error carrying the HTTP status code the server sent.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// Unwrap makes errors.Is(err, ErrProtocol) hold for status errors.
func (e *StatusError) Unwrap() error {
	return ErrProtocol
}

// Kind classifies an error chain into one of the installer error kinds.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindNotFound
	KindProtocol
	KindAlreadyLatest
	KindFilesystem
	KindInvalidMetadata
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindNetwork:         "network",
	KindNotFound:        "not-found",
	KindProtocol:        "protocol",
	KindAlreadyLatest:   "already-latest",
	KindFilesystem:      "filesystem",
	KindInvalidMetadata: "invalid-metadata",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// KindOf returns the kind of the first installer error found in err's chain.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrAlreadyLatest):
		return KindAlreadyLatest
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidMetadata):
		return KindInvalidMetadata
	case errors.Is(err, ErrProtocol):
		return KindProtocol
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrFilesystem):
		return KindFilesystem
	default:
		return KindUnknown
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Kindf creates an error of the given kind with a formatted detail message.
func Kindf(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Join joins an error of the given kind with its underlying cause so that both
// match with errors.Is.
func Join(kind error, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}
