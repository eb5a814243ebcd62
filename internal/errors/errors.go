package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the declaration scanner
type ErrorType string

const (
	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeIO           ErrorType = "io"

	// Per-file processing errors
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeExtraction ErrorType = "extraction"

	// Parser contract violations
	ErrorTypeMalformedTree ErrorType = "malformed_tree"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// Stage names the step of per-file processing where a failure happened.
type Stage string

const (
	StageFilter  Stage = "filter"
	StageRead    Stage = "read"
	StageParse   Stage = "parse"
	StageExtract Stage = "extract"
	StageTimeout Stage = "timeout"
)

// FileError represents a file that passed the path filters but could not be read
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error, classifying the underlying cause
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		errorType = ErrorTypeFileNotFound
	case errors.Is(err, fs.ErrPermission):
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

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ParseError represents a parser front end rejecting a file's content
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Parser     string
	Line       int
	Column     int
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(path, parser string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Parser:     parser,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithPosition records the 1-based position of the first syntax error
func (e *ParseError) WithPosition(line, column int) *ParseError {
	e.Line = line
	e.Column = column
	return e
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s parse error at %s:%d:%d: %v", e.Parser, e.FilePath, e.Line, e.Column, e.Underlying)
	}
	return fmt.Sprintf("%s parse error in %s: %v", e.Parser, e.FilePath, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// ExtractionError represents caller extraction logic failing for one file
type ExtractionError struct {
	Type       ErrorType
	FilePath   string
	Panicked   bool
	Underlying error
	Timestamp  time.Time
}

// NewExtractionError creates a new extraction error
func NewExtractionError(path string, err error) *ExtractionError {
	return &ExtractionError{
		Type:       ErrorTypeExtraction,
		FilePath:   path,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewExtractionPanic wraps a recovered panic value from caller logic
func NewExtractionPanic(path string, recovered any) *ExtractionError {
	e := NewExtractionError(path, fmt.Errorf("panic: %v", recovered))
	e.Panicked = true
	return e
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.FilePath, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ExtractionError) Unwrap() error {
	return e.Underlying
}

// MalformedTreeError reports a raw node missing a field the parser contract requires
type MalformedTreeError struct {
	Type    ErrorType
	Field   string
	RawKind string
}

// NewMalformedTreeError creates a new malformed tree error
func NewMalformedTreeError(field, rawKind string) *MalformedTreeError {
	return &MalformedTreeError{
		Type:    ErrorTypeMalformedTree,
		Field:   field,
		RawKind: rawKind,
	}
}

// Error implements the error interface
func (e *MalformedTreeError) Error() string {
	if e.RawKind == "" {
		return fmt.Sprintf("malformed tree: node without kind is missing required field %q", e.Field)
	}
	return fmt.Sprintf("malformed tree: %s node is missing required field %q", e.RawKind, e.Field)
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

// StageOf reports the processing stage a per-file error belongs to.
// Unknown errors are attributed to extraction.
func StageOf(err error) Stage {
	var fileErr *FileError
	var parseErr *ParseError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fileErr):
		return StageRead
	case errors.As(err, &parseErr):
		return StageParse
	case errors.Is(err, ErrFileTimeout):
		return StageTimeout
	default:
		return StageExtract
	}
}

// ErrFileTimeout marks a file whose processing exceeded the configured per-file timeout
var ErrFileTimeout = errors.New("file processing timed out")
