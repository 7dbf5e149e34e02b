package langs

import (
	"errors"
	"fmt"

	"github.com/codeintel-engine/engine/internal/ir"
)

// ErrUnsupportedLanguage is returned when no plugin claims a file's extension.
var ErrUnsupportedLanguage = errors.New("langs: unsupported file extension")

// ParseError wraps a parser failure with the span it occurred at, so a
// single bad file degrades to a finding instead of aborting a whole-repo
// index (spec.md §4.B, §7 error taxonomy).
type ParseError struct {
	FilePath string
	Span     ir.Span
	Message  string
	Cause    error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("langs: parse %s at %s: %s: %v", e.FilePath, e.Span, e.Message, e.Cause)
	}

	return fmt.Sprintf("langs: parse %s at %s: %s", e.FilePath, e.Span, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
