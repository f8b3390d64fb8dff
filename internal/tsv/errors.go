package tsv

import (
	"errors"
	"fmt"
)

// FormatError is a malformed data line: too few fields, an unparseable
// value, or a timestamp that does not match the fixed pattern. Line is
// 1-based and counts the header.
type FormatError struct {
	Line   int
	Text   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v (%q)", e.Line, e.Reason, e.Err, e.Text)
	}
	return fmt.Sprintf("line %d: %s (%q)", e.Line, e.Reason, e.Text)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsFormatError reports whether err is (or wraps) a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
