package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/IshaanNene/NewsDentist/internal/parser"
	"github.com/IshaanNene/NewsDentist/internal/pipeline"
	"github.com/IshaanNene/NewsDentist/internal/types"
)

// Run stages, as reported in types.RunError.
const (
	StageInit     = "init"
	StagePaginate = "paginate"
	StageHarvest  = "harvest"
	StageFinalize = "finalize"
)

// Driver runs one query end to end: reserve the artifact, walk the result
// pages, harvest each page's new article links, then commit the text.
type Driver struct {
	searcher  PageSearcher
	harvester *Harvester
	pipeline  *pipeline.Pipeline
	stats     *Stats
	recorder  RunRecorder
	logger    *slog.Logger
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithPipeline replaces the default line pipeline.
func WithPipeline(p *pipeline.Pipeline) DriverOption {
	return func(d *Driver) { d.pipeline = p }
}

// WithRunRecorder reports every run outcome to r.
func WithRunRecorder(r RunRecorder) DriverOption {
	return func(d *Driver) { d.recorder = r }
}

// NewDriver creates a Driver.
func NewDriver(searcher PageSearcher, harvester *Harvester, logger *slog.Logger, opts ...DriverOption) *Driver {
	d := &Driver{
		searcher:  searcher,
		harvester: harvester,
		stats:     harvester.stats,
		logger:    logger.With("component", "driver"),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.pipeline == nil {
		d.pipeline = pipeline.Default(logger)
	}
	return d
}

// Stats returns the statistics shared with the harvester.
func (d *Driver) Stats() *Stats {
	return d.stats
}

// Run executes q and writes the result to sink under name.
//
// An invalid query is rejected before anything is written or fetched. A
// captcha challenge stops the run with State RunBlocked and a nil error,
// leaving the placeholder in place. Any other failure, cancellation
// included, is returned as a *types.RunError and also leaves the placeholder.
func (d *Driver) Run(ctx context.Context, q types.SearchQuery, sink Sink, name string) (types.RunOutcome, error) {
	if err := q.Validate(); err != nil {
		return types.RunOutcome{}, err
	}

	start := time.Now()
	out := types.RunOutcome{RunID: uuid.NewString(), Artifact: name}
	logger := d.logger.With("run_id", out.RunID, "query", q.Text, "artifact", name)

	fail := func(stage string, page int, err error) (types.RunOutcome, error) {
		out.Elapsed = time.Since(start)
		runErr := &types.RunError{Stage: stage, Page: page, Err: err}
		logger.Error("run aborted", "stage", stage, "page", page, "error", err)
		d.record("", runErr)
		return out, runErr
	}

	if err := sink.Reserve(ctx, name); err != nil {
		return fail(StageInit, 0, err)
	}
	logger.Info("run started", "page_depth", q.PageDepth, "min_line_words", q.MinLineWords)

	dedup := NewDeduplicator(q.PageDepth * 10)
	var lines []string

	for page := 0; page < q.PageDepth; page++ {
		if err := ctx.Err(); err != nil {
			return fail(StagePaginate, page, err)
		}

		result, err := d.searcher.FetchResultPage(ctx, q.Text, page)
		if err != nil {
			return fail(StagePaginate, page, err)
		}
		out.Pages++

		if result.IsChallenge() {
			out.State = types.RunBlocked
			out.Challenge = result.Challenge
			out.Elapsed = time.Since(start)
			logger.Warn("run blocked by challenge", "page", page, "redirect", result.Challenge.RedirectURL)
			d.record(types.RunBlocked, nil)
			return out, nil
		}

		found := parser.ExtractArticleLinks(result.Links)
		urls := dedup.Fresh(found)
		d.stats.URLsDuplicate.Add(int64(len(found) - len(urls)))
		out.URLs += len(urls)

		batch := d.harvester.Harvest(ctx, urls, q.MinLineWords)
		lines = append(lines, batch...)
		logger.Info("page harvested", "page", page, "links", len(found), "new", len(urls), "lines", len(batch))
	}

	if err := ctx.Err(); err != nil {
		return fail(StageHarvest, q.PageDepth-1, err)
	}

	lines = d.pipeline.Process(lines)
	if err := sink.Commit(ctx, name, strings.Join(lines, "\n")); err != nil {
		return fail(StageFinalize, q.PageDepth-1, err)
	}

	out.State = types.RunDone
	out.Lines = len(lines)
	out.Elapsed = time.Since(start)
	logger.Info("run complete", "pages", out.Pages, "urls", out.URLs, "lines", out.Lines, "elapsed", out.Elapsed)
	d.record(types.RunDone, nil)
	return out, nil
}

func (d *Driver) record(state types.RunState, err error) {
	if d.recorder != nil {
		d.recorder.RecordRun(state, err)
	}
}
