package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/IshaanNene/NewsDentist/internal/config"
	"github.com/IshaanNene/NewsDentist/internal/fetcher"
	"github.com/IshaanNene/NewsDentist/internal/parser"
	"github.com/IshaanNene/NewsDentist/internal/types"
)

// ResultsPerPage is how far the start offset advances per results page.
const ResultsPerPage = 10

// PageObserver receives one call per results page request.
type PageObserver interface {
	RecordSearchPage(challenged bool, err error)
}

// Paginator requests news results pages from the search endpoint.
type Paginator struct {
	fetcher  fetcher.Fetcher
	endpoint string
	language string
	region   string
	limiter  *rate.Limiter
	observer PageObserver
	logger   *slog.Logger
}

// PaginatorOption configures a Paginator.
type PaginatorOption func(*Paginator)

// WithPageObserver forwards page results to o.
func WithPageObserver(o PageObserver) PaginatorOption {
	return func(p *Paginator) { p.observer = o }
}

// NewPaginator creates a Paginator sending requests through f, which should
// carry the search identity and a session from NewSession.
func NewPaginator(cfg config.SearchConfig, f fetcher.Fetcher, logger *slog.Logger, opts ...PaginatorOption) *Paginator {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}

	p := &Paginator{
		fetcher:  f,
		endpoint: cfg.Endpoint,
		language: cfg.Language,
		region:   cfg.Region,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger.With("component", "paginator"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PageURL builds the results page URL for query at pageIndex.
func (p *Paginator) PageURL(query string, pageIndex int) string {
	params := url.Values{}
	params.Set("hl", p.language)
	params.Set("gl", p.region)
	params.Set("tbm", "nws")
	params.Set("pws", "0")
	params.Set("gbv", "1")
	params.Set("q", query)
	params.Set("start", strconv.Itoa(pageIndex*ResultsPerPage))
	return p.endpoint + "?" + params.Encode()
}

// FetchResultPage returns every anchor on results page pageIndex, or a
// challenge if the endpoint answered 503. Any other non-2xx status is an
// error.
func (p *Paginator) FetchResultPage(ctx context.Context, query string, pageIndex int) (types.PageResult, error) {
	result, err := p.fetchResultPage(ctx, query, pageIndex)
	if p.observer != nil {
		p.observer.RecordSearchPage(result.IsChallenge(), err)
	}
	return result, err
}

func (p *Paginator) fetchResultPage(ctx context.Context, query string, pageIndex int) (types.PageResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return types.PageResult{}, fmt.Errorf("wait for search slot: %w", err)
	}

	pageURL := p.PageURL(query, pageIndex)
	req, err := types.NewRequest(pageURL)
	if err != nil {
		return types.PageResult{}, err
	}

	resp, err := p.fetcher.Fetch(ctx, req)
	if err != nil {
		return types.PageResult{}, err
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		p.logger.Warn("search endpoint challenged", "page", pageIndex, "redirect", resp.FinalURL)
		return types.ChallengeResult(resp.FinalURL), nil
	}
	if !resp.IsSuccess() {
		return types.PageResult{}, &types.FetchError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	doc, err := resp.Document()
	if err != nil {
		return types.PageResult{}, &types.FetchError{URL: pageURL, StatusCode: resp.StatusCode, Err: err}
	}

	links := parser.AnchorRecords(doc)
	p.logger.Debug("results page fetched", "page", pageIndex, "anchors", len(links))
	return types.LinksResult(links), nil
}
