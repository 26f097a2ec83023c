// Package api serves archived analysis runs over HTTP as JSON, plus an HTML
// chart page per run.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/medevac-irr/internal/agreement"
	"github.com/banshee-data/medevac-irr/internal/analysis"
	"github.com/banshee-data/medevac-irr/internal/confidence"
	"github.com/banshee-data/medevac-irr/internal/db"
	"github.com/banshee-data/medevac-irr/internal/monitoring"
	"github.com/banshee-data/medevac-irr/internal/survey"
	"github.com/banshee-data/medevac-irr/internal/timeutil"
)

// ANSI escape codes for the request log
const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// Store is the read side of the run archive. *db.DB implements it.
type Store interface {
	ListRuns(ctx context.Context) ([]db.Run, error)
	GetRun(ctx context.Context, runID string) (*db.Run, error)
	QuestionMetrics(ctx context.Context, runID string) ([]agreement.QuestionMetrics, error)
	ClassMetrics(ctx context.Context, runID string) ([]agreement.ClassMetrics, error)
	ConfidenceSummaries(ctx context.Context, runID, grouping string) ([]confidence.Summary, error)
	LongRecords(ctx context.Context, runID string) ([]survey.LongRecord, error)
	LoadResult(ctx context.Context, runID string) (*analysis.Result, error)
}

type Server struct {
	store      Store
	assetsHost string
}

// NewServer returns a Server over store. assetsHost is forwarded to the
// chart page; empty keeps the go-echarts default.
func NewServer(store Store, assetsHost string) *Server {
	return &Server{store: store, assetsHost: assetsHost}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status and duration through
// monitoring.Logf.
func LoggingMiddleware(clock timeutil.Clock, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := clock.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(clock.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux registers the API routes on a new mux.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/version", s.showVersion)
	mux.HandleFunc("GET /api/runs", s.listRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.showRun)
	mux.HandleFunc("GET /api/runs/{id}/questions", s.listQuestions)
	mux.HandleFunc("GET /api/runs/{id}/classes", s.listClasses)
	mux.HandleFunc("GET /api/runs/{id}/confidence", s.listConfidence)
	mux.HandleFunc("GET /api/runs/{id}/records", s.listRecords)
	mux.HandleFunc("GET /charts/{id}", s.showCharts)
	return mux
}

// Serve handles requests on ln until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, readHeaderTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	<-errCh
	return nil
}
