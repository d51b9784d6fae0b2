package types

import "errors"

// Domain errors shared across segmentation components
var (
	// ErrParseUnavailable signals that the parser returned no usable tree.
	// Recoverable: the selector moves on to a non-AST strategy.
	ErrParseUnavailable = errors.New("parser unavailable for input")

	// ErrUnsupportedLanguage is returned when no grammar is registered for
	// the requested language.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrNoStructures signals that AST extraction found no structure that
	// survived validation. The caller substitutes a whole-file generic chunk.
	ErrNoStructures = errors.New("no structures found")
)
