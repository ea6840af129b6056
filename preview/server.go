// Package preview serves the handout of a capture record over HTTP, so an
// export can be checked in a browser before documents are generated.
//
// The record is read on every request: re-running an export is picked up
// without restarting the server.
package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/stagecraft/capture"
	"github.com/hazyhaar/stagecraft/kit"
	"github.com/hazyhaar/stagecraft/output"
	"github.com/hazyhaar/stagecraft/output/handout"
	"github.com/hazyhaar/stagecraft/output/tools"
	"github.com/hazyhaar/stagecraft/store"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:8080"

// Config configures a Server.
type Config struct {
	// Addr to listen on. Default: DefaultAddr.
	Addr string
	// Record is the record path served. Empty = the service default.
	Record string
	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

func (c *Config) defaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Server renders records loaded through a tools.Service.
type Server struct {
	cfg      Config
	svc      *tools.Service
	renderer *handout.Renderer
	log      *slog.Logger
}

// New creates a Server.
func New(svc *tools.Service, cfg Config) *Server {
	cfg.defaults()
	return &Server{cfg: cfg, svc: svc, renderer: handout.NewRenderer(), log: cfg.Logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(HeadToGet)
	r.Use(SecurityHeaders(DefaultHeaders()))
	r.Use(RequestID)
	r.Use(s.accessLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/", s.handleHandout)
	r.Get("/record.json", s.handleRecord)
	r.Get("/shots/{name}", s.handleShot)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("preview: listening", "addr", s.cfg.Addr, "record", s.cfg.Record)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("preview: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("preview: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("preview: shutdown: %w", err)
	}
	return nil
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("preview: request",
			"method", r.Method, "path", r.URL.Path,
			"request_id", kit.GetRequestID(r.Context()), "elapsed", time.Since(start))
	})
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (capture.Record, bool) {
	rec, err := s.svc.Load(r.Context(), s.cfg.Record)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
		} else {
			s.log.Error("preview: load record", "error", err)
			writeError(w, http.StatusInternalServerError, err)
		}
		return nil, false
	}
	return rec, true
}

func (s *Server) handleHandout(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.load(w, r)
	if !ok {
		return
	}
	imageURL := func(image string) string {
		return "/shots/" + url.PathEscape(filepath.Base(image))
	}
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, rec, s.svc.Options(), imageURL); err != nil {
		if errors.Is(err, output.ErrNoPages) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		s.log.Error("preview: render", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.load(w, r)
	if !ok {
		return
	}
	if rec == nil {
		rec = capture.Record{}
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleShot serves a screenshot by base name. Only files the record
// references are reachable.
func (s *Server) handleShot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rec, ok := s.load(w, r)
	if !ok {
		return
	}
	for _, u := range rec {
		for _, shot := range u.Screenshots {
			if filepath.Base(shot) == name {
				w.Header().Set("Cache-Control", "no-cache")
				http.ServeFile(w, r, s.svc.Options().Resolve(shot))
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, fmt.Errorf("preview: no screenshot %q in record", name))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
