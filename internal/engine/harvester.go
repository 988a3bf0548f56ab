package engine

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/IshaanNene/NewsDentist/internal/types"
)

// DefaultConcurrency is the harvester's default worker pool width.
const DefaultConcurrency = 20

// Harvester fetches many articles concurrently with a bounded worker pool.
type Harvester struct {
	source      ArticleSource
	concurrency int
	stats       *Stats
	logger      *slog.Logger
}

// NewHarvester creates a Harvester running at most concurrency fetches at once.
func NewHarvester(source ArticleSource, concurrency int, stats *Stats, logger *slog.Logger) *Harvester {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if stats == nil {
		stats = NewStats()
	}
	return &Harvester{
		source:      source,
		concurrency: concurrency,
		stats:       stats,
		logger:      logger.With("component", "harvester"),
	}
}

// Harvest fetches every URL and returns the accepted lines grouped by URL
// in input order. Failed URLs contribute nothing. It blocks until all
// scheduled fetches finish. Once ctx is done no new URL is scheduled.
func (h *Harvester) Harvest(ctx context.Context, urls []string, minWords int) []string {
	slots := make([][]string, len(urls))
	h.run(ctx, urls, minWords, func(i int, out types.FetchOutcome) {
		slots[i] = out.Batch
	})

	var lines []string
	for _, batch := range slots {
		lines = append(lines, batch...)
	}
	return lines
}

// HarvestStream is Harvest delivering each outcome, failures included, as
// soon as it completes. The channel is closed after the last outcome.
func (h *Harvester) HarvestStream(ctx context.Context, urls []string, minWords int) <-chan types.FetchOutcome {
	ch := make(chan types.FetchOutcome, len(urls))
	go func() {
		defer close(ch)
		h.run(ctx, urls, minWords, func(_ int, out types.FetchOutcome) {
			ch <- out
		})
	}()
	return ch
}

func (h *Harvester) run(ctx context.Context, urls []string, minWords int, emit func(int, types.FetchOutcome)) {
	if len(urls) == 0 {
		return
	}

	// No derived context: one failed article never cancels its siblings.
	var g errgroup.Group
	g.SetLimit(min(h.concurrency, len(urls)))

	for i, u := range urls {
		if ctx.Err() != nil {
			h.logger.Debug("harvest cancelled", "scheduled", i, "total", len(urls))
			break
		}
		h.stats.URLsScheduled.Add(1)
		g.Go(func() error {
			h.stats.ActiveWorkers.Add(1)
			defer h.stats.ActiveWorkers.Add(-1)

			out := h.source.FetchAndFilter(ctx, u, minWords)
			if out.IsOk() {
				h.stats.LinesHarvested.Add(int64(len(out.Batch)))
			} else {
				h.stats.URLsFailed.Add(1)
			}
			emit(i, out)
			return nil
		})
	}

	_ = g.Wait() // workers never return errors
}
