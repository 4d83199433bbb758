package middleware

import (
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"time"

	"github.com/shyptr/graphiql"
	"go.uber.org/zap"
)

func Recovery() graphiql.HandlerFunc {
	return func(ctx *graphiql.Context) {
		logger := ctx.Logger
		defer func() {
			if err := recover(); err != nil {
				var brokenPipe bool
				var ne *net.OpError
				if e, ok := err.(error); ok && errors.As(e, &ne) {
					var se *os.SyscallError
					if errors.As(ne.Err, &se) {
						msg := strings.ToLower(se.Error())
						if strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer") {
							brokenPipe = true
						}
					}
				}
				httpRequest, _ := httputil.DumpRequest(ctx.Request, false)
				headers := strings.Split(string(httpRequest), "\r\n")
				for idx, header := range headers {
					current := strings.Split(header, ":")
					if current[0] == "Authorization" || current[0] == "Cookie" {
						headers[idx] = current[0] + ": *"
					}
				}
				if brokenPipe {
					logger.Error("broken connection", zap.Any("error", err), zap.String("request", strings.Join(headers, "\r\n")))
					ctx.Abort()
					return
				}
				logger.Error("panic recovered", zap.Any("error", err), zap.String("request", strings.Join(headers, "\r\n")), zap.Stack("stack"))
				if !ctx.Writer.Written() {
					ctx.ServerError(http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
				ctx.Abort()
			}
		}()
		ctx.Next()
	}
}

func Logger() graphiql.HandlerFunc {
	return func(ctx *graphiql.Context) {
		startTime := time.Now()
		logger := ctx.Logger
		defer func() {
			operationName := ctx.OperationName
			if operationName == "" {
				operationName = "query"
			}
			logger.Info("request",
				zap.Int("status", ctx.Writer.Status()),
				zap.Duration("latency", time.Since(startTime)),
				zap.String("ip", ctx.ClientIP()),
				zap.String("method", ctx.Request.Method),
				zap.String("path", ctx.Request.URL.Path),
				zap.String("operationName", operationName))
		}()
		ctx.Next()
	}
}

const preflightRequest = http.MethodOptions

// CORS opens the paths under prefix to cross origin callers with credentials.
// Preflight requests are answered here and go no further.
func CORS(prefix string) graphiql.HandlerFunc {
	return func(ctx *graphiql.Context) {
		if !strings.HasPrefix(ctx.Request.URL.Path, prefix) {
			ctx.Next()
			return
		}
		header := ctx.Writer.Header()
		header.Add("Access-Control-Allow-Credentials", "true")
		if origin := ctx.Request.Header.Get("Origin"); origin != "" {
			header.Add("Access-Control-Allow-Origin", origin)
		}
		header.Add("Access-Control-Allow-Methods", "GET,POST")
		header.Add("Access-Control-Allow-Headers", "content-type,x-apollo-tracing")
		if ctx.Request.Method == preflightRequest {
			ctx.Writer.WriteHeader(http.StatusOK)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
