package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/IshaanNene/NewsDentist/internal/types"
)

// Metrics tracks operational metrics for harvesting runs.
type Metrics struct {
	// Search metrics
	SearchPages      atomic.Int64
	SearchChallenges atomic.Int64
	SearchErrors     atomic.Int64

	// Article metrics
	ArticlesFetched atomic.Int64
	ArticlesFailed  atomic.Int64
	// Failures that may succeed on retry: timeouts and dropped connections.
	ArticlesTransient atomic.Int64
	LinesAccepted     atomic.Int64
	LinesRejected     atomic.Int64
	BytesDownloaded   atomic.Int64

	// Run metrics
	RunsCompleted atomic.Int64
	RunsBlocked   atomic.Int64
	RunsFailed    atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// RecordSearchPage counts one results page request.
func (m *Metrics) RecordSearchPage(challenged bool, err error) {
	m.SearchPages.Add(1)
	switch {
	case err != nil:
		m.SearchErrors.Add(1)
	case challenged:
		m.SearchChallenges.Add(1)
	}
}

// RecordArticle counts a successfully parsed article.
func (m *Metrics) RecordArticle(url string, accepted, rejected, size int) {
	m.ArticlesFetched.Add(1)
	m.LinesAccepted.Add(int64(accepted))
	m.LinesRejected.Add(int64(rejected))
	m.BytesDownloaded.Add(int64(size))
	m.logger.Debug("article recorded", "url", url, "accepted", accepted, "rejected", rejected)
}

// RecordArticleFailure counts an article that produced no content.
func (m *Metrics) RecordArticleFailure(url string, reason error, transient bool) {
	m.ArticlesFailed.Add(1)
	if transient {
		m.ArticlesTransient.Add(1)
	}
	m.logger.Debug("article failure recorded", "url", url, "transient", transient, "reason", reason)
}

// RecordRun counts a run by how it ended.
func (m *Metrics) RecordRun(state types.RunState, err error) {
	switch {
	case err != nil:
		m.RunsFailed.Add(1)
	case state == types.RunBlocked:
		m.RunsBlocked.Add(1)
	default:
		m.RunsCompleted.Add(1)
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"newsdentist_search_pages_total", "Total results pages requested", m.SearchPages.Load()},
		{"newsdentist_search_challenges_total", "Total captcha challenges received", m.SearchChallenges.Load()},
		{"newsdentist_search_errors_total", "Total failed results page requests", m.SearchErrors.Load()},
		{"newsdentist_articles_fetched_total", "Total articles fetched and parsed", m.ArticlesFetched.Load()},
		{"newsdentist_articles_failed_total", "Total articles that yielded no content", m.ArticlesFailed.Load()},
		{"newsdentist_articles_failed_transient_total", "Article failures caused by timeouts or dropped connections", m.ArticlesTransient.Load()},
		{"newsdentist_lines_accepted_total", "Total lines kept as article text", m.LinesAccepted.Load()},
		{"newsdentist_lines_rejected_total", "Total lines rejected by the classifier", m.LinesRejected.Load()},
		{"newsdentist_bytes_downloaded_total", "Total article bytes downloaded", m.BytesDownloaded.Load()},
		{"newsdentist_runs_completed_total", "Total runs finalized", m.RunsCompleted.Load()},
		{"newsdentist_runs_blocked_total", "Total runs stopped by a challenge", m.RunsBlocked.Load()},
		{"newsdentist_runs_failed_total", "Total runs aborted by an error", m.RunsFailed.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// Handler returns a mux serving metrics on path and a /health probe.
func (m *Metrics) Handler(path string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	return mux
}

// StartServer serves metrics until ctx is cancelled.
func (m *Metrics) StartServer(ctx context.Context, port int, path string) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           m.Handler(path),
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.logger.Info("metrics server starting", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"search_pages":       m.SearchPages.Load(),
		"search_challenges":  m.SearchChallenges.Load(),
		"search_errors":      m.SearchErrors.Load(),
		"articles_fetched":   m.ArticlesFetched.Load(),
		"articles_failed":    m.ArticlesFailed.Load(),
		"articles_transient": m.ArticlesTransient.Load(),
		"lines_accepted":     m.LinesAccepted.Load(),
		"lines_rejected":     m.LinesRejected.Load(),
		"bytes_downloaded":   m.BytesDownloaded.Load(),
		"runs_completed":     m.RunsCompleted.Load(),
		"runs_blocked":       m.RunsBlocked.Load(),
		"runs_failed":        m.RunsFailed.Load(),
	}
}
