// Package fixtures serves the static fixture site the interaction helpers are
// exercised against: an index page with delayed, repeated, hidden, disabled
// and click-revealed elements, and a second page reached through a link.
package fixtures

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mitchellh/go-homedir"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagewait/internal/config"
)

const shutdownTimeout = 5 * time.Second

//go:embed site
var embedded embed.FS

// Site returns the embedded fixture site rooted at its top directory.
func Site() fs.FS {
	site, err := fs.Sub(embedded, "site")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(fmt.Sprintf("fixtures: embedded site missing: %v", err))
	}
	return site
}

// Server is the fixture HTTP server.
type Server struct {
	cfg        config.FixturesConfig
	logger     *zap.Logger
	site       fs.FS
	handler    http.Handler
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
	baseURL  string
}

// NewServer builds the fixture server. When cfg.Root is set the site is read
// from that directory instead of the embedded copy.
func NewServer(cfg config.FixturesConfig, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, logger: logger.Named("fixtures"), site: Site()}

	if cfg.Root != "" {
		root, err := homedir.Expand(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to expand fixtures root %q: %w", cfg.Root, err)
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("fixtures root unavailable: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("fixtures root %q is not a directory", root)
		}
		s.site = os.DirFS(root)
		s.logger.Info("Serving fixtures from disk.", zap.String("root", root))
	}

	s.handler = s.routes()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	// The link on the index page points at the extension-less path.
	r.Get("/new", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, s.site, "new.html")
	})
	r.Handle("/*", http.FileServer(http.FS(s.site)))
	return r
}

// requestLogger logs every request through zap once it has been served.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Debug("Served request.",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// Handler returns the router, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listen address and serves in the background. It returns
// the base URL, which carries the real port when the address asks for ":0".
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.baseURL, errors.New("fixture server already started")
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	s.baseURL = baseURL(ln.Addr())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Fixture server stopped.", zap.Error(err))
		}
	}()
	s.logger.Info("Fixture server listening.", zap.String("url", s.baseURL))
	return s.baseURL, nil
}

// Serve starts the server unless Start already did, blocks until ctx is
// done, then shuts it down.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	started := s.listener != nil
	s.mu.Unlock()
	if !started {
		if _, err := s.Start(); err != nil {
			return err
		}
	}
	<-ctx.Done()
	s.logger.Info("Stopping fixture server.", zap.NamedError("cause", context.Cause(ctx)))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down fixture server.")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("fixture server shutdown: %w", err)
	}
	return nil
}

// URL returns the base URL once the server has started.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseURL
}

// baseURL turns a listener address into a URL a browser can reach. Unspecified
// hosts are rewritten to localhost.
func baseURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String()
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
