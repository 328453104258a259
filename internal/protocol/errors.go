package protocol

import (
	"errors"
	"fmt"
)

// ErrFormat is returned (wrapped in a *FormatError) when a payload cannot be
// decoded. HTTP handlers map it to the literal "Invalid format" reply.
var ErrFormat = errors.New("invalid format")

// maxQuotedInput bounds how much of the offending payload ends up in messages.
const maxQuotedInput = 64

// FormatError describes why a payload was rejected by a codec.
type FormatError struct {
	Codec  string // "raw" or "ac"
	Reason string
	Input  string
}

// Error implements the error interface
func (e *FormatError) Error() string {
	in := e.Input
	if len(in) > maxQuotedInput {
		in = in[:maxQuotedInput] + "..."
	}
	return fmt.Sprintf("%s %s: %s (input %q)", e.Codec, ErrFormat, e.Reason, in)
}

// Unwrap lets callers match on ErrFormat with errors.Is
func (e *FormatError) Unwrap() error {
	return ErrFormat
}

func newFormatError(codec, reason, input string) *FormatError {
	return &FormatError{Codec: codec, Reason: reason, Input: input}
}
