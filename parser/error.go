package parser

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Error is a syntax error reported by the parser.
type Error struct {
	Label     string
	Line, Col int
	Msg       string
	// Incomplete is set when the input ended before the error, so that more
	// input might make it valid.
	Incomplete bool
}

func (err *Error) Error() string {
	if err.Label == "" {
		return fmt.Sprintf("%d:%d: %s", err.Line, err.Col, err.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", err.Label, err.Line, err.Col, err.Msg)
}

// IsIncomplete reports whether err is a syntax error caused by input ending
// too soon.
func IsIncomplete(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Incomplete
}

// decode converts source text to UTF-8, honoring a byte order mark if one is
// present. Text without a BOM is taken to be UTF-8 already.
func decode(text string) (string, error) {
	s, _, err := transform.String(unicode.BOMOverride(unicode.UTF8.NewDecoder()), text)
	return s, err
}
