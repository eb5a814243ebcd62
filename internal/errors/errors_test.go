package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestFileError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
	}{
		{"missing file", fs.ErrNotExist, ErrorTypeFileNotFound},
		{"permission", fs.ErrPermission, ErrorTypePermission},
		{"other", errors.New("disk on fire"), ErrorTypeIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewFileError("read", "/src/A.swift", tt.err)
			if err.Type != tt.wantType {
				t.Errorf("Expected Type %v, got %v", tt.wantType, err.Type)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("Expected error to unwrap to underlying error")
			}
			if StageOf(err) != StageRead {
				t.Errorf("Expected stage %q, got %q", StageRead, StageOf(err))
			}
		})
	}

	err := NewFileError("read", "/src/A.swift", fs.ErrNotExist)
	expectedMsg := "file read failed for /src/A.swift: file does not exist"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestParseError(t *testing.T) {
	underlying := errors.New("unexpected token")
	err := NewParseError("/src/A.java", "tree-sitter-java", underlying)

	if err.Type != ErrorTypeParse {
		t.Errorf("Expected Type to be ErrorTypeParse, got %v", err.Type)
	}
	expectedMsg := "tree-sitter-java parse error in /src/A.java: unexpected token"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	err = err.WithPosition(3, 7)
	expectedMsg = "tree-sitter-java parse error at /src/A.java:3:7: unexpected token"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	wrapped := fmt.Errorf("driver: %w", err)
	var parseErr *ParseError
	if !errors.As(wrapped, &parseErr) {
		t.Fatalf("Expected errors.As to find ParseError")
	}
	if StageOf(wrapped) != StageParse {
		t.Errorf("Expected stage %q, got %q", StageParse, StageOf(wrapped))
	}
}

func TestExtractionError(t *testing.T) {
	underlying := errors.New("no component found")
	err := NewExtractionError("/src/A.swift", underlying)

	if err.Panicked {
		t.Errorf("Expected plain extraction error not to be marked as panic")
	}
	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}
	if StageOf(err) != StageExtract {
		t.Errorf("Expected stage %q, got %q", StageExtract, StageOf(err))
	}

	panicErr := NewExtractionPanic("/src/B.swift", "index out of range")
	if !panicErr.Panicked {
		t.Errorf("Expected panic extraction error to be marked as panic")
	}
	expectedMsg := "extraction failed for /src/B.swift: panic: index out of range"
	if panicErr.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, panicErr.Error())
	}
}

func TestMalformedTreeError(t *testing.T) {
	err := NewMalformedTreeError("key.name", "source.lang.swift.decl.class")
	expectedMsg := `malformed tree: source.lang.swift.decl.class node is missing required field "key.name"`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	err = NewMalformedTreeError("key.name", "")
	expectedMsg = `malformed tree: node without kind is missing required field "key.name"`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("must be at least 1")
	err := NewConfigError("scan.workers", "0", underlying)

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}
	expectedMsg := "config error for field scan.workers (value 0): must be at least 1"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestMultiError(t *testing.T) {
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")

	multi := NewMultiError([]error{err1, nil, err2})
	if len(multi.Errors) != 2 {
		t.Fatalf("Expected nil errors to be filtered, got %d errors", len(multi.Errors))
	}
	if !errors.Is(multi, err1) || !errors.Is(multi, err2) {
		t.Errorf("Expected multi error to match both members")
	}

	expectedMsg := "2 errors: [error 1 error 2]"
	if multi.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, multi.Error())
	}

	if NewMultiError(nil).Error() != "no errors" {
		t.Errorf("Expected empty multi error message")
	}
	if NewMultiError([]error{err1}).Error() != "error 1" {
		t.Errorf("Expected single multi error to use the member's message")
	}
}

func TestStageOfTimeout(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrFileTimeout, context.DeadlineExceeded)
	if StageOf(err) != StageTimeout {
		t.Errorf("Expected stage %q, got %q", StageTimeout, StageOf(err))
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected timeout error to wrap context.DeadlineExceeded")
	}
	if StageOf(nil) != "" {
		t.Errorf("Expected empty stage for nil error")
	}
}
