package graphiql

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type HandlerFunc func(*Context)

// Context carries one request through the handler chain. It implements
// context.Context on top of the request's context.
type Context struct {
	Request *http.Request
	Writer  *Resp
	Logger  *zap.Logger
	// OperationName is set by the GraphQL endpoint once the request is decoded.
	OperationName string
	// Keys is a key/value pair exclusively for the context of each request.
	Keys map[string]interface{}

	handlersChain []HandlerFunc
	index         int
}

func newContext(w http.ResponseWriter, r *http.Request, logger *zap.Logger, chain []HandlerFunc) *Context {
	return &Context{
		Request:       r,
		Writer:        &Resp{ResponseWriter: w},
		Logger:        logger,
		handlersChain: chain,
		index:         -1,
	}
}

// Chain adapts a handler chain to http.Handler.
func Chain(logger *zap.Logger, handlers ...HandlerFunc) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		newContext(w, r, logger, handlers).Next()
	})
}

// Next runs the remaining handlers of the chain. Middleware calls it to wrap
// the handlers after it.
func (c *Context) Next() {
	c.index++
	for c.index < len(c.handlersChain) {
		c.handlersChain[c.index](c)
		c.index++
	}
}

// Abort stops the chain after the current handler.
func (c *Context) Abort() {
	c.index = len(c.handlersChain)
}

func (c *Context) Set(key string, value interface{}) {
	if c.Keys == nil {
		c.Keys = map[string]interface{}{}
	}
	c.Keys[key] = value
}

func (c *Context) Deadline() (deadline time.Time, ok bool) {
	return c.Request.Context().Deadline()
}

func (c *Context) Done() <-chan struct{} {
	return c.Request.Context().Done()
}

func (c *Context) Err() error {
	return c.Request.Context().Err()
}

func (c *Context) Value(key interface{}) interface{} {
	if k, ok := key.(string); ok {
		if v, ok := c.Keys[k]; ok {
			return v
		}
	}
	return c.Request.Context().Value(key)
}

// ClientIP prefers X-Forwarded-For and X-Real-Ip, the host application usually
// sits behind a proxy.
func (c *Context) ClientIP() string {
	if fwd := c.Request.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if ip := strings.TrimSpace(c.Request.Header.Get("X-Real-Ip")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(c.Request.RemoteAddr))
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}

func (c *Context) JSON(code int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.ServerError(err.Error(), http.StatusInternalServerError)
		return
	}
	c.Writer.Header().Set("Content-Type", "application/json")
	c.Writer.WriteHeader(code)
	c.Writer.Write(data)
}

func (c *Context) ServerError(message string, code int) {
	http.Error(c.Writer, message, code)
	c.Abort()
}

// Resp records the status written through it.
type Resp struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *Resp) WriteHeader(code int) {
	if w.written {
		return
	}
	w.status, w.written = code, true
	w.ResponseWriter.WriteHeader(code)
}

func (w *Resp) Write(data []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

// Status is the written status, 200 if nothing has been written yet.
func (w *Resp) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *Resp) Written() bool {
	return w.written
}

func (w *Resp) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *Resp) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack lets the WebSocket upgrader take over the connection.
func (w *Resp) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("graphiql: response writer does not support hijacking")
	}
	w.written = true
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
