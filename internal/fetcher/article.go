package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/NewsDentist/internal/parser"
	"github.com/IshaanNene/NewsDentist/internal/types"
)

// ArticleObserver receives per-article results.
type ArticleObserver interface {
	RecordArticle(url string, accepted, rejected, size int)
	RecordArticleFailure(url string, reason error, transient bool)
}

type nopObserver struct{}

func (nopObserver) RecordArticle(string, int, int, int)      {}
func (nopObserver) RecordArticleFailure(string, error, bool) {}

// ArticleFetcher downloads one article and keeps the lines that look like
// body text.
type ArticleFetcher struct {
	fetcher   Fetcher
	extractor parser.Extractor
	timeout   time.Duration
	observer  ArticleObserver
	logger    *slog.Logger
}

// ArticleOption configures an ArticleFetcher.
type ArticleOption func(*ArticleFetcher)

// WithObserver forwards article results to o.
func WithObserver(o ArticleObserver) ArticleOption {
	return func(a *ArticleFetcher) {
		if o != nil {
			a.observer = o
		}
	}
}

// WithExtractor replaces the default text node extractor.
func WithExtractor(e parser.Extractor) ArticleOption {
	return func(a *ArticleFetcher) { a.extractor = e }
}

// WithTimeout bounds each article download.
func WithTimeout(d time.Duration) ArticleOption {
	return func(a *ArticleFetcher) { a.timeout = d }
}

// NewArticleFetcher creates an ArticleFetcher downloading through f.
func NewArticleFetcher(f Fetcher, logger *slog.Logger, opts ...ArticleOption) *ArticleFetcher {
	a := &ArticleFetcher{
		fetcher:  f,
		timeout:  5 * time.Second,
		observer: nopObserver{},
		logger:   logger.With("component", "article_fetcher"),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.extractor == nil {
		a.extractor = parser.NewTextNodeExtractor(logger)
	}
	return a
}

// FetchAndFilter downloads url and returns its accepted lines in document
// order. It never returns an error: every failure becomes a Failed outcome.
func (a *ArticleFetcher) FetchAndFilter(ctx context.Context, url string, minWords int) types.FetchOutcome {
	batch, rejected, size, err := a.fetchAndFilter(ctx, url, minWords)
	if err != nil {
		transient := IsTransient(err)
		a.logger.Warn("article skipped", "url", url, "transient", transient, "error", err)
		a.observer.RecordArticleFailure(url, err, transient)
		return types.Failed(url, err)
	}

	a.logger.Debug("article harvested", "url", url, "accepted", len(batch), "rejected", rejected)
	a.observer.RecordArticle(url, len(batch), rejected, size)
	return types.Ok(url, batch)
}

func (a *ArticleFetcher) fetchAndFilter(ctx context.Context, url string, minWords int) (batch []string, rejected, size int, err error) {
	defer func() {
		if r := recover(); r != nil {
			batch, err = nil, fmt.Errorf("extract %s: panic: %v", url, r)
		}
	}()

	req, err := types.NewRequest(url)
	if err != nil {
		return nil, 0, 0, err
	}
	req.Timeout = a.timeout

	resp, err := a.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, 0, 0, err
	}
	if !resp.IsSuccess() {
		return nil, 0, 0, &types.FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	if len(resp.Body) == 0 {
		return nil, 0, 0, &types.FetchError{URL: url, StatusCode: resp.StatusCode, Err: types.ErrEmptyResponse}
	}

	fragments, err := a.extractor.Extract(resp)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("extract %s: %w", url, err)
	}

	batch = parser.Classify(fragments, minWords)
	return batch, len(fragments) - len(batch), len(resp.Body), nil
}

// Close releases the underlying fetcher.
func (a *ArticleFetcher) Close() error {
	return a.fetcher.Close()
}
