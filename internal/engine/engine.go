package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/IshaanNene/NewsDentist/internal/types"
)

// Stats tracks harvest statistics across runs.
type Stats struct {
	URLsScheduled  atomic.Int64
	URLsFailed     atomic.Int64
	URLsDuplicate  atomic.Int64
	LinesHarvested atomic.Int64
	ActiveWorkers  atomic.Int32
	StartTime      time.Time
}

// NewStats creates Stats starting now.
func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// Snapshot returns a copy of stats safe for reading.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"urls_scheduled":  s.URLsScheduled.Load(),
		"urls_failed":     s.URLsFailed.Load(),
		"urls_duplicate":  s.URLsDuplicate.Load(),
		"lines_harvested": s.LinesHarvested.Load(),
		"active_workers":  s.ActiveWorkers.Load(),
		"elapsed":         time.Since(s.StartTime).String(),
	}
}

// PageSearcher fetches one page of search results.
type PageSearcher interface {
	FetchResultPage(ctx context.Context, query string, pageIndex int) (types.PageResult, error)
}

// ArticleSource fetches and filters a single article.
type ArticleSource interface {
	FetchAndFilter(ctx context.Context, url string, minWords int) types.FetchOutcome
}

// Sink receives the placeholder and final content of an artifact.
type Sink interface {
	Reserve(ctx context.Context, name string) error
	Commit(ctx context.Context, name, content string) error
}

// RunRecorder is told how each run ended.
type RunRecorder interface {
	RecordRun(state types.RunState, err error)
}
