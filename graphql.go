package graphiql

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/shyptr/graphiql/client"
	"github.com/shyptr/graphiql/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/zap"
)

// Response is the GraphQL response envelope the endpoint writes when it answers
// without asking the upstream. Errors are serialized first.
type Response struct {
	Errors     errors.MultiError      `json:"errors,omitempty"`
	Data       interface{}            `json:"data"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

const maxBodyBytes = 10 << 20

// serveGraphQL checks the request locally, then forwards it to the upstream
// endpoint and relays whatever comes back.
func (s *Server) serveGraphQL(c *Context) {
	params, err := readParams(c.Request)
	if err != nil {
		c.ServerError(err.Error(), http.StatusBadRequest)
		return
	}
	if params.Query == "" {
		c.Writer.WriteHeader(http.StatusOK)
		return
	}
	c.OperationName = params.OperationName
	c.Set("operationName", params.OperationName)

	doc, err := parser.ParseQuery(&ast.Source{Name: params.OperationName, Input: params.Query})
	if err != nil {
		s.writeErrors(c, errors.Wrap(err).WithType("InvalidSyntaxError"))
		return
	}
	if errs := s.store.Validate(doc); len(errs) > 0 {
		multi := errors.FromList(errs)
		for _, e := range multi {
			e.WithType("ValidationError")
		}
		s.writeErrors(c, multi...)
		return
	}
	if doc.Operations.ForName(params.OperationName) == nil {
		var e *errors.GraphQLError
		if params.OperationName == "" {
			e = errors.New("Must provide operation name if query contains multiple operations.")
		} else {
			e = errors.New("Unknown operation named '%s'.", params.OperationName)
		}
		s.writeErrors(c, e.WithType("UnknownOperationException"))
		return
	}

	start := time.Now()
	res, err := s.client.Forward(c, params, c.Request)
	if err != nil {
		c.Logger.Error("error processing query", zap.Error(err), zap.String("operationName", params.OperationName))
		s.metrics.observeUpstream(http.StatusBadGateway, start)
		c.Writer.Header().Set("Content-Type", "application/json")
		data, _ := json.Marshal(&Response{
			Errors: errors.MultiError{errors.Wrap(err).WithType("UpstreamError")},
			Data:   map[string]interface{}{},
		})
		c.Writer.WriteHeader(http.StatusBadGateway)
		c.Writer.Write(data)
		return
	}
	s.metrics.observeUpstream(res.StatusCode, start)

	contentType := res.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
		if res.JSON != nil {
			contentType = "application/json"
		}
	}
	c.Writer.Header().Set("Content-Type", contentType)
	c.Writer.WriteHeader(res.StatusCode)
	c.Writer.Write(res.Body())
}

func (s *Server) writeErrors(c *Context, errs ...*errors.GraphQLError) {
	c.JSON(http.StatusOK, &Response{Errors: errs, Data: map[string]interface{}{}})
}

// readParams accepts the three body forms GraphQL clients send: a raw
// application/graphql document, form or query string parameters, and JSON.
func readParams(r *http.Request) (client.Params, error) {
	if r.Method == http.MethodGet {
		return paramsFromValues(r.URL.Query())
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return client.Params{}, fmt.Errorf("invalid form: %w", err)
		}
		return paramsFromValues(r.PostForm)
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return client.Params{}, fmt.Errorf("read body: %w", err)
	}
	if mediaType == "application/graphql" {
		return client.Params{Query: string(body)}, nil
	}
	var params client.Params
	if len(body) == 0 {
		return params, nil
	}
	if err := json.Unmarshal(body, &params); err != nil {
		return client.Params{}, fmt.Errorf("invalid request body: %w", err)
	}
	return params, nil
}

func paramsFromValues(values url.Values) (client.Params, error) {
	params := client.Params{
		Query:         values.Get("query"),
		OperationName: values.Get("operationName"),
	}
	if vars := values.Get("variables"); vars != "" && vars != "null" {
		if err := json.Unmarshal([]byte(vars), &params.Variables); err != nil {
			return client.Params{}, fmt.Errorf("invalid variables: %w", err)
		}
	}
	return params, nil
}
