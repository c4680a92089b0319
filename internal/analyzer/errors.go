package analyzer

import (
	"errors"
	"fmt"
)

var (
	// ErrParse matches any *ParseError via errors.Is.
	ErrParse = errors.New("parse error")

	// ErrEncoding matches any *EncodingError via errors.Is.
	ErrEncoding = errors.New("encoding error")
)

// ParseError reports source text that does not conform to the Python grammar.
// Line and Column are 1-based.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Is lets errors.Is(err, ErrParse) succeed.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// EncodingError reports input that is not decodable text.
type EncodingError struct {
	Offset int // byte offset of the first offending byte
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("source is not valid text at byte %d: %s", e.Offset, e.Reason)
}

// Is lets errors.Is(err, ErrEncoding) succeed.
func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}
