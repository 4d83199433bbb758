// Package graphiql serves a GraphQL IDE under a host application's root URL,
// together with the /graphql/ endpoint the IDE talks to and the cursor lookup
// the editor uses to jump into the explorer.
package graphiql

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shyptr/graphiql/client"
	"github.com/shyptr/graphiql/config"
	"github.com/shyptr/graphiql/locator"
	"github.com/shyptr/graphiql/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	client   *client.Client
	store    *schema.Store
	locator  *locator.Locator
	registry *prometheus.Registry
	metrics  *metrics

	handlersChain []HandlerFunc
	once          sync.Once
	router        *mux.Router
}

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClient replaces the upstream client built from the configuration.
func WithClient(c *client.Client) Option {
	return func(s *Server) {
		s.client = c
	}
}

func WithStore(store *schema.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

func New(cfg *config.Config, opts ...Option) *Server {
	s := &Server{config: cfg}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.client == nil {
		s.client = client.New(cfg.Client())
	}
	if s.store == nil {
		s.store = schema.NewStore()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.locator = locator.New(s.logger.Named("locator"))
	s.metrics = newMetrics(s.registry)
	return s
}

// Use appends middleware to every IDE route. It must be called before Handler.
func (s *Server) Use(mm ...HandlerFunc) {
	s.handlersChain = append(s.handlersChain, mm...)
}

func (s *Server) Store() *schema.Store {
	return s.store
}

// Handler returns the routing handler. Routes are built on first use.
func (s *Server) Handler() http.Handler {
	s.once.Do(s.routes)
	return s.router
}

func (s *Server) routes() {
	notAllowed := s.chain(func(c *Context) {
		c.ServerError(http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})
	s.router = mux.NewRouter()
	s.router.MethodNotAllowedHandler = notAllowed

	ide := s.router.PathPrefix(s.config.RootURL + "/graphql").Subrouter()
	ide.MethodNotAllowedHandler = notAllowed
	// Preflight requests are answered by the CORS middleware when it is installed.
	preflight := s.chain(func(c *Context) {
		c.Writer.WriteHeader(http.StatusOK)
	})
	for _, r := range []struct {
		path    string
		handler HandlerFunc
		methods []string
	}{
		{"/", s.serveGraphQL, []string{http.MethodGet, http.MethodPost}},
		{"/client", s.serveGraphiQL, []string{http.MethodGet}},
		{"/playground", s.servePlayground, []string{http.MethodGet}},
		{"/schema", s.serveSchema, []string{http.MethodGet}},
		{"/locate", s.serveLocate, []string{http.MethodPost}},
		{"/locate/ws", s.serveLocateWS, []string{http.MethodGet}},
	} {
		ide.Handle(r.path, s.chain(r.handler)).Methods(r.methods...)
		ide.Handle(r.path, preflight).Methods(http.MethodOptions)
	}

	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

// chain wraps handler in the middleware registered with Use.
func (s *Server) chain(handler HandlerFunc) http.Handler {
	handlers := make([]HandlerFunc, 0, len(s.handlersChain)+1)
	handlers = append(handlers, s.handlersChain...)
	handlers = append(handlers, handler)
	return Chain(s.logger, handlers...)
}

// Run listens on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done. The schema prefetch, when enabled, runs
// alongside; its failure never stops the server.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.Handler()}
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		s.logger.Info("serving graphiql", zap.String("addr", ln.Addr().String()),
			zap.String("root", s.config.RootURL+"/graphql/"), zap.String("upstream", s.client.Endpoint()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if s.config.Schema.Prefetch {
		group.Go(func() error {
			s.store.Prefetch(ctx, s.client, s.logger)
			return nil
		})
	}
	return group.Wait()
}
