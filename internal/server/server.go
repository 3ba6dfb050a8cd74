// Package server serves a read-only browser over the build archive: a JSON
// index of archived versions, the archived files themselves, a WebSocket
// feed of archive changes and the server's Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/neuxs/modbuild/internal/archive"
	"github.com/neuxs/modbuild/internal/errors"
	"github.com/neuxs/modbuild/internal/metrics"
	"github.com/neuxs/modbuild/internal/watch"
)

// Config configures the archive server.
type Config struct {
	// ArchiveRoot is the directory served.
	ArchiveRoot string

	// Address is the listen address.
	Address string

	// PollInterval is how often the archive is scanned for changes.
	// Default: 1s
	PollInterval time.Duration

	// Logger is the logger to use.
	Logger *slog.Logger
}

// Server is the archive browser.
type Server struct {
	config     Config
	feed       *Feed
	watcher    *watch.Watcher
	metrics    *metrics.ServerRecorder
	logger     *slog.Logger
	handler    http.Handler
	httpServer *http.Server
	mu         sync.Mutex
	running    bool
}

// New creates an archive server.
func New(config Config) *Server {
	if config.PollInterval == 0 {
		config.PollInterval = time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:  config,
		feed:    NewFeed(),
		watcher: watch.New(watch.Config{Root: config.ArchiveRoot, Interval: config.PollInterval}),
		metrics: metrics.NewServer(),
		logger:  logger.With("component", "server"),
	}
	s.feed.onConnect = s.metrics.ClientConnected
	s.feed.onDisconnect = s.metrics.ClientDisconnected
	s.watcher.OnChange(func(c watch.Change) {
		s.logger.Debug("archive changed", "path", c.Path, "change", c.Type.String())
		s.metrics.ArchiveChanged()
		s.feed.Notify(c.Path, c.Type.String())
	})
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Feed returns the change feed.
func (s *Server) Feed() *Feed {
	return s.feed
}

// Watcher returns the archive watcher.
func (s *Server) Watcher() *watch.Watcher {
	return s.watcher
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)

	r.Get("/api/versions", s.handleVersions)
	r.Get("/api/versions/{version}", s.handleVersion)
	r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(s.config.ArchiveRoot))))
	r.Get("/ws", s.feed.HandleWebSocket)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	return r
}

// countRequests records every request by route pattern and status code.
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.Request(route, strconv.Itoa(status))
	})
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	index, err := archive.Index(s.config.ArchiveRoot)
	if err != nil {
		s.logger.Error("could not read archive", "root", s.config.ArchiveRoot, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read archive"})
		return
	}
	writeJSON(w, http.StatusOK, index)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "version")
	entry, err := archive.Lookup(s.config.ArchiveRoot, name)
	if err != nil {
		if stderrors.Is(err, archive.ErrVersionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "version not found"})
			return
		}
		s.logger.Error("could not read archive version", "version", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read archive"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return errors.New("E160").WithDetailf("Could not listen on %s.", s.config.Address).Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.watcher.Start(watchCtx)

	s.logger.Info("archive browser running", "address", "http://"+ln.Addr().String(), "root", s.config.ArchiveRoot)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		if err != nil {
			return errors.New("E160").Wrap(err)
		}
		return nil
	}
}

// Stop stops the watcher, disconnects clients and shuts the HTTP server down.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.watcher.Stop()
	s.feed.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}
