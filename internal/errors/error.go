package errors

import (
	"bytes"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryRouting Category = "routing"
	CategoryView    Category = "view"
	CategoryServer  Category = "server"
	CategoryCLI     Category = "cli"
)

// Location represents a position in a file such as mall.json.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`

	// Source is the text of the line, when known.
	Source string `json:"-"`
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// MallError is a structured error with a code, an optional file location
// and a hint for the operator.
type MallError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category is the error type (config, routing, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position the error refers to.
	Location *Location

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *MallError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *MallError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location.
func (e *MallError) WithLocation(file string, line, column int) *MallError {
	e.Location = &Location{File: file, Line: line, Column: column}
	return e
}

// WithOffset locates a byte offset inside data, as reported by
// encoding/json syntax errors, and attaches it as the location.
func (e *MallError) WithOffset(file string, data []byte, offset int64) *MallError {
	if offset < 0 || offset > int64(len(data)) {
		return e
	}
	head := data[:offset]
	start := bytes.LastIndexByte(head, '\n') + 1
	line := bytes.Count(head, []byte("\n")) + 1
	column := int(offset) - start
	if column < 1 {
		column = 1
	}
	source := data[start:]
	if end := bytes.IndexByte(source, '\n'); end >= 0 {
		source = source[:end]
	}
	e.WithLocation(file, line, column)
	e.Location.Source = string(bytes.TrimRight(source, "\r"))
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *MallError) WithSuggestion(s string) *MallError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *MallError) WithDetail(d string) *MallError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *MallError) Wrap(err error) *MallError {
	e.Wrapped = err
	return e
}

// New creates a MallError from a registered error code.
func New(code string) *MallError {
	template, ok := registry[code]
	if !ok {
		return &MallError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &MallError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new MallError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *MallError {
	return &MallError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a MallError.
func FromError(err error, code string) *MallError {
	if err == nil {
		return nil
	}
	if me, ok := err.(*MallError); ok {
		return me
	}
	return New(code).Wrap(err)
}
