package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/standardbeagle/declscan/internal/ast"
	declerrors "github.com/standardbeagle/declscan/internal/errors"
	"github.com/standardbeagle/declscan/internal/parser"
)

// ExtractFunc is the caller logic run against the root of one file's tree
type ExtractFunc[T any] func(ctx context.Context, path string, root *ast.Node) (T, error)

// Driver parses accepted content and hands the wrapped tree to caller logic.
type Driver[T any] struct {
	Parser  parser.Parser
	Extract ExtractFunc[T]
}

// NewDriver creates a driver
func NewDriver[T any](p parser.Parser, extract ExtractFunc[T]) *Driver[T] {
	return &Driver[T]{Parser: p, Extract: extract}
}

// Run processes one file. Parser failures and malformed trees come back as
// *errors.ParseError; caller errors and panics as *errors.ExtractionError.
func (d *Driver[T]) Run(ctx context.Context, path string, content []byte) (T, error) {
	var zero T

	raw, err := d.parse(ctx, path, content)
	if err != nil {
		if ctx.Err() != nil {
			return zero, err
		}
		return zero, asParseError(path, d.Parser.Name(), err)
	}
	if raw == nil {
		return zero, declerrors.NewParseError(path, d.Parser.Name(), errors.New("parser returned no tree"))
	}

	root, err := ast.NewTree(raw)
	if err != nil {
		return zero, declerrors.NewParseError(path, d.Parser.Name(), err)
	}

	if err := ctx.Err(); err != nil {
		return zero, err
	}
	return d.extract(ctx, path, root)
}

func (d *Driver[T]) parse(ctx context.Context, path string, content []byte) (raw *ast.RawNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw, err = nil, declerrors.NewParseError(path, d.Parser.Name(), fmt.Errorf("parser panic: %v", r))
		}
	}()
	return d.Parser.Parse(ctx, path, content)
}

func (d *Driver[T]) extract(ctx context.Context, path string, root *ast.Node) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value, err = zero, declerrors.NewExtractionPanic(path, r)
		}
	}()

	value, err = d.Extract(ctx, path, root)
	if err != nil {
		if ctx.Err() != nil {
			return value, err
		}
		var extractionErr *declerrors.ExtractionError
		if !errors.As(err, &extractionErr) {
			err = declerrors.NewExtractionError(path, err)
		}
	}
	return value, err
}

func asParseError(path, parserName string, err error) error {
	var parseErr *declerrors.ParseError
	if errors.As(err, &parseErr) {
		return err
	}
	return declerrors.NewParseError(path, parserName, err)
}
