package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/islandlink/pkg/observability"
	"github.com/matzehuels/islandlink/pkg/pipeline"
	"github.com/matzehuels/islandlink/pkg/store"
)

// maxBodyBytes bounds a solve request.
const maxBodyBytes = 1 << 20

// History is the run store used by the /v1/runs routes.
type History interface {
	SaveRun(ctx context.Context, source string, res *pipeline.Result) (store.Run, error)
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
	GetRun(ctx context.Context, id string) (store.Run, error)
}

// Options configures a [Server].
type Options struct {
	// MaxSites bounds every group in a request (0 = default).
	MaxSites int
	// Labels turns on island labels in rendered artifacts.
	Labels bool
	// Scale is the PNG scale factor.
	Scale float64
}

// Server handles HTTP requests.
type Server struct {
	runner  *pipeline.Runner
	history History
	logger  *log.Logger
	opts    Options
}

// New creates a server. history may be nil, in which case runs are not
// recorded and the /v1/runs routes answer 501.
func New(runner *pipeline.Runner, history History, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, history: history, logger: logger, opts: opts}
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/solve", s.solve)
		r.Get("/runs", s.listRuns)
		r.Get("/runs/{runID}", s.getRun)
	})

	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// logRequests logs each request and emits HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), duration)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", duration,
			"request_id", chimiddleware.GetReqID(r.Context()))
	})
}
