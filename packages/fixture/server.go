// Package fixture provides an HTTP server with a fixed set of endpoints for
// exercising request chains end to end.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Default credentials accepted by the secured endpoints
const (
	DefaultUsername = "jetty"
	DefaultPassword = "jetty"
	DigestRealm     = "hitchain"
)

// Server serves the fixture endpoints
type Server struct {
	port     int
	delay    time.Duration
	verbose  bool
	username string
	password string
	logger   *slog.Logger
	nonces   *nonceStore
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithVerbose logs every request at info level instead of debug
func WithVerbose(verbose bool) Option {
	return func(s *Server) {
		s.verbose = verbose
	}
}

// WithCredentials sets the username and password the secured endpoints accept
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new fixture server
func NewServer(opts ...Option) *Server {
	s := &Server{
		port:     8080,
		username: DefaultUsername,
		password: DefaultPassword,
		nonces:   newNonceStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return s
}

// Port returns the configured listen port
func (s *Server) Port() int {
	return s.port
}

// Handler returns the router with every fixture endpoint mounted
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(s.requestLog)
	if s.delay > 0 {
		r.Use(s.latency)
	}

	r.Get("/greet", s.greet)
	r.Post("/greet", s.greet)
	r.Get("/header", s.header)
	r.Post("/header", s.header)
	r.Post("/body", s.body)
	r.Put("/body", s.body)
	r.Patch("/body", s.body)
	r.Post("/jsonBody", s.jsonBody)
	r.Post("/jsonBodyAcceptHeader", s.jsonBodyAcceptHeader)
	r.Get("/cookie", s.cookie)
	r.Post("/cookie", s.cookie)
	r.Post("/binaryBody", s.binaryBody)
	r.Get("/session", s.session)
	r.HandleFunc("/status/{code}", s.status)

	r.Route("/secured", func(r chi.Router) {
		r.With(s.basicAuth).HandleFunc("/hello", s.hello)
		r.With(s.digestAuth).HandleFunc("/digest", s.hello)
	})

	r.NotFound(s.notFound)
	r.MethodNotAllowed(s.notFound)

	return r
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	return s.StartWithContext(context.Background())
}

// StartWithContext starts the server with context for graceful shutdown
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("fixture server starting", "addr", fmt.Sprintf("http://localhost:%d", s.port))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		level := slog.LevelDebug
		if s.verbose {
			level = slog.LevelInfo
		}
		s.logger.Log(r.Context(), level, "request",
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return
		}
		next.ServeHTTP(w, r)
	})
}
