// Package httpapi exposes the account pool over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	"github.com/programme-lv/ojuzman/api"
	"github.com/programme-lv/ojuzman/internal"
	"github.com/programme-lv/ojuzman/internal/ojuz"
)

// Processor runs a submit request, see submitter.Submitter.
type Processor interface {
	Process(ctx context.Context, req api.SubmitReq, gath internal.ResultGatherer) error
}

// Pool answers lookups, see pool.Manager.
type Pool interface {
	QueryVerdict(ctx context.Context, trackingID string) (*ojuz.Verdict, error)
	VerdictDetails(ctx context.Context, trackingID string) (string, error)
	Size() int
	Usernames() []string
}

type Config struct {
	ListenAddr   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	cfg  Config
	proc Processor
	pool Pool
	log  *slog.Logger
	srv  *http.Server
}

func New(cfg Config, proc Processor, p Pool, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{cfg: cfg, proc: proc, pool: p, log: log.With("component", "httpapi")}
	s.srv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) Router() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Recoverer)
	mux.Use(s.requestLogger)

	mux.Post("/submit", s.handleSubmit)
	mux.Route("/submissions/{id}", func(r chi.Router) {
		r.Get("/verdict", s.handleVerdict)
		r.Get("/details", s.handleDetails)
	})
	mux.Get("/healthz", s.handleHealth)

	return mux
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", "listenAddress", s.cfg.ListenAddr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error("graceful HTTP server shutdown failed", tint.Err(err))
		return err
	}
	s.log.Info("HTTP server gracefully stopped")
	return nil
}
