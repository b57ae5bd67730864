package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the snip extraction pipeline
type ErrorType string

const (
	// Upstream errors, raised before any traversal begins
	ErrorTypeFile        ErrorType = "file"
	ErrorTypeFileTooBig  ErrorType = "file_too_large"
	ErrorTypePermission  ErrorType = "permission"
	ErrorTypeUnsupported ErrorType = "unsupported_language"
	ErrorTypeParse       ErrorType = "parse"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Traversal errors
	ErrorTypeEncoding ErrorType = "encoding"
	ErrorTypeInternal ErrorType = "internal"
)

// FileError represents a failure to read a source file
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFile
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewFileTooLargeError reports a file that exceeds the configured size limit
func NewFileTooLargeError(path string, size, limit int64) *FileError {
	return &FileError{
		Type:       ErrorTypeFileTooBig,
		Path:       path,
		Operation:  "read",
		Underlying: fmt.Errorf("size %d exceeds limit %d", size, limit),
		Timestamp:  time.Now(),
	}
}

// isPermissionError checks if the error is a permission error
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, fs.ErrPermission) {
		return true
	}
	errStr := err.Error()
	return errStr == "permission denied" || errStr == "access denied"
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// UnsupportedLanguageError is returned when no grammar is registered for a path
type UnsupportedLanguageError struct {
	Type      ErrorType
	Path      string
	Extension string
	Timestamp time.Time
}

// NewUnsupportedLanguageError creates an error for an unknown or missing extension
func NewUnsupportedLanguageError(path, ext string) *UnsupportedLanguageError {
	return &UnsupportedLanguageError{
		Type:      ErrorTypeUnsupported,
		Path:      path,
		Extension: ext,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *UnsupportedLanguageError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("no file extension found for %q", e.Path)
	}
	return fmt.Sprintf("unsupported language for extension %q", e.Extension)
}

// ParseError represents a failure of the grammar engine
type ParseError struct {
	Type       ErrorType
	Path       string
	Language   string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(path, language string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		Path:       path,
		Language:   language,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error (%s) for %s: %v", e.Language, e.Path, e.Underlying)
	}
	return fmt.Sprintf("parse error (%s): %v", e.Language, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// TraversalError signals a broken cursor invariant: the walk could neither
// descend, advance nor ascend before returning to the root.
type TraversalError struct {
	Type      ErrorType
	Depth     int
	NodeKind  string
	StartByte uint
	Timestamp time.Time
}

// NewTraversalError creates an internal traversal error
func NewTraversalError(depth int, kind string, start uint) *TraversalError {
	return &TraversalError{
		Type:      ErrorTypeInternal,
		Depth:     depth,
		NodeKind:  kind,
		StartByte: start,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *TraversalError) Error() string {
	return fmt.Sprintf("cursor stuck at depth %d on %s node (byte %d): cannot ascend to root",
		e.Depth, e.NodeKind, e.StartByte)
}

// EncodingError reports node text that is not valid UTF-8
type EncodingError struct {
	Type      ErrorType
	Path      string
	StartByte uint
	EndByte   uint
	Timestamp time.Time
}

// NewEncodingError creates a new encoding error
func NewEncodingError(path string, start, end uint) *EncodingError {
	return &EncodingError{
		Type:      ErrorTypeEncoding,
		Path:      path,
		StartByte: start,
		EndByte:   end,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *EncodingError) Error() string {
	return fmt.Sprintf("invalid UTF-8 in %s at bytes [%d, %d)", e.Path, e.StartByte, e.EndByte)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrOrNil returns nil when no errors were collected
func (e *MultiError) ErrOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// IsUpstream reports whether err is raised before traversal begins
// (file, language, parse or config failure).
func IsUpstream(err error) bool {
	var (
		fileErr   *FileError
		langErr   *UnsupportedLanguageError
		parseErr  *ParseError
		configErr *ConfigError
	)
	return stderrors.As(err, &fileErr) ||
		stderrors.As(err, &langErr) ||
		stderrors.As(err, &parseErr) ||
		stderrors.As(err, &configErr)
}
