package locator

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("locator: malformed query document")
	// ErrNotFound means no definition contains the cursor range.
	ErrNotFound = errors.New("locator: no definition contains the cursor range")
	// ErrInvalidRange means the range ends before it starts.
	ErrInvalidRange = errors.New("locator: range end before start")
)

// ParseError is returned when the query document does not parse.
type ParseError struct {
	Err error
}

func newParseError(err error) *ParseError {
	return &ParseError{Err: err}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrParse, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// GQLError returns the underlying parser error, if it carries source locations.
func (e *ParseError) GQLError() *gqlerror.Error {
	var gqlErr *gqlerror.Error
	if errors.As(e.Err, &gqlErr) {
		return gqlErr
	}
	return nil
}
