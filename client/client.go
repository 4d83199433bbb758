// Package client posts GraphQL requests to the single upstream endpoint the IDE
// talks to.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Credentials mirrors the fetch API credentials mode.
type Credentials string

const (
	CredentialsOmit       Credentials = "omit"
	CredentialsSameOrigin Credentials = "same-origin"
	CredentialsInclude    Credentials = "include"
)

type Config struct {
	Endpoint    string
	Credentials Credentials
	Headers     map[string]string
	Timeout     time.Duration
}

// Params is the request body of a GraphQL POST.
type Params struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// Result is what came back from the endpoint. JSON bodies land in JSON, anything
// else is kept verbatim in Text.
type Result struct {
	StatusCode  int
	ContentType string
	JSON        json.RawMessage
	Text        string
}

// Body returns the raw response bytes.
func (r *Result) Body() []byte {
	if r.JSON != nil {
		return r.JSON
	}
	return []byte(r.Text)
}

type Client struct {
	config Config
	http   *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the http.Client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

func New(config Config, opts ...Option) *Client {
	if config.Credentials == "" {
		config.Credentials = CredentialsInclude
	}
	c := &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// Do posts params to the endpoint. A non 2xx status is not an error: the body is
// still returned for the IDE to display.
func (c *Client) Do(ctx context.Context, params Params) (*Result, error) {
	return c.do(ctx, params, nil)
}

// Forward posts params on behalf of an incoming browser request. With credentials
// mode include, its cookies and authorization travel along.
func (c *Client) Forward(ctx context.Context, params Params, incoming *http.Request) (*Result, error) {
	return c.do(ctx, params, incoming)
}

func (c *Client) do(ctx context.Context, params Params, incoming *http.Request) (*Result, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("client: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	if incoming != nil && c.config.Credentials == CredentialsInclude {
		for _, name := range []string{"Authorization", "Cookie"} {
			if v := incoming.Header.Get(name); v != "" {
				req.Header.Set(name, v)
			}
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: post %s: %w", c.config.Endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}
	result := &Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if json.Valid(raw) {
		result.JSON = raw
	} else {
		result.Text = string(raw)
	}
	return result, nil
}
