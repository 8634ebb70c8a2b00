package common

import (
	"errors"
	"fmt"
)

// ErrIncompatibleModel is returned when the run configuration asks for something
// the loaded model cannot provide.
var ErrIncompatibleModel = errors.New("incompatible model")

// UsageError reports malformed flags or a wrong number of positional arguments.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// FileOpenError reports a test, model or output file that cannot be opened.
type FileOpenError struct {
	Kind string // "input", "model" or "output"
	Path string
	Err  error
}

func (e *FileOpenError) Error() string {
	return fmt.Sprintf("can't open %s file %s: %v", e.Kind, e.Path, e.Err)
}

func (e *FileOpenError) Unwrap() error {
	return e.Err
}

// InputFormatError reports a malformed test-file line. Line is 1-based.
type InputFormatError struct {
	Line   int
	Reason string
}

func (e *InputFormatError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("wrong input format at line %d", e.Line)
	}
	return fmt.Sprintf("wrong input format at line %d: %s", e.Line, e.Reason)
}

// ModelIncompatibilityError wraps ErrIncompatibleModel with the reason.
type ModelIncompatibilityError struct {
	Msg string
}

func (e *ModelIncompatibilityError) Error() string {
	return e.Msg
}

func (e *ModelIncompatibilityError) Unwrap() error {
	return ErrIncompatibleModel
}
