package errors

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// GraphQLError is the wire shape of an entry in a GraphQL response's "errors" list.
type GraphQLError struct {
	Message    string                 `json:"message"`
	Locations  []Location             `json:"locations"`
	Path       []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
	Cause      error                  `json:"-"`
}

func (err *GraphQLError) Error() string {
	if err == nil {
		return "<nil>"
	}
	str := fmt.Sprintf("graphql: %s", err.Message)
	for _, loc := range err.Locations {
		str += fmt.Sprintf(" (%d:%d)", loc.Line, loc.Column)
	}
	if err.Path != nil {
		str += fmt.Sprintf(" path: %v", err.Path)
	}
	return str
}

func (err *GraphQLError) Unwrap() error {
	return err.Cause
}

// WithType records the error class under extensions.errorType.
func (err *GraphQLError) WithType(errorType string) *GraphQLError {
	if err.Extensions == nil {
		err.Extensions = map[string]interface{}{}
	}
	err.Extensions["errorType"] = errorType
	return err
}

type MultiError []*GraphQLError

func (m MultiError) Error() string {
	var res string
	for _, err := range m {
		res += err.Error() + "\n"
	}
	return res
}

var _ error = (*GraphQLError)(nil)

type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func New(format string, arg ...interface{}) *GraphQLError {
	return &GraphQLError{
		Message: fmt.Sprintf(format, arg...),
	}
}

// FromGQL converts a parser or validator error.
func FromGQL(e *gqlerror.Error) *GraphQLError {
	out := &GraphQLError{
		Message: e.Message,
		Path:    pathOf(e.Path),
		Cause:   e,
	}
	if len(e.Extensions) > 0 {
		out.Extensions = make(map[string]interface{}, len(e.Extensions))
		for k, v := range e.Extensions {
			out.Extensions[k] = v
		}
	}
	for _, loc := range e.Locations {
		out.Locations = append(out.Locations, Location{Line: loc.Line, Column: loc.Column})
	}
	return out
}

// FromList converts a validation error list.
func FromList(list gqlerror.List) MultiError {
	out := make(MultiError, 0, len(list))
	for _, e := range list {
		out = append(out, FromGQL(e))
	}
	return out
}

// Wrap turns any error into a GraphQLError, keeping locations when err is or wraps
// a *gqlerror.Error.
func Wrap(err error) *GraphQLError {
	var graphQLErr *GraphQLError
	if errors.As(err, &graphQLErr) {
		return graphQLErr
	}
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		return FromGQL(gqlErr)
	}
	return &GraphQLError{Message: err.Error(), Cause: err}
}

func pathOf(path ast.Path) []interface{} {
	if len(path) == 0 {
		return nil
	}
	out := make([]interface{}, 0, len(path))
	for _, el := range path {
		switch el := el.(type) {
		case ast.PathIndex:
			out = append(out, int(el))
		case ast.PathName:
			out = append(out, string(el))
		default:
			out = append(out, el)
		}
	}
	return out
}
