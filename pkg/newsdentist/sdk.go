// Package newsdentist provides a public SDK for embedding NewsDentist as a library.
//
// Example usage:
//
//	client, err := newsdentist.New(
//	    newsdentist.WithPageDepth(2),
//	    newsdentist.WithMinLineWords(20),
//	    newsdentist.WithOutput("./static/teeth"),
//	)
//	if err != nil {
//	    return err
//	}
//
//	res, err := client.Harvest(ctx, "Glastonbury festival")
//	if err != nil {
//	    return err
//	}
//	if res.Blocked {
//	    fmt.Println("solve the captcha at", res.CaptchaURL)
//	}
//
//	top, err := client.TopWords(ctx, res.Artifact, 10)
package newsdentist

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/IshaanNene/NewsDentist/internal/config"
	"github.com/IshaanNene/NewsDentist/internal/engine"
	"github.com/IshaanNene/NewsDentist/internal/fetcher"
	"github.com/IshaanNene/NewsDentist/internal/observability"
	"github.com/IshaanNene/NewsDentist/internal/parser"
	"github.com/IshaanNene/NewsDentist/internal/search"
	"github.com/IshaanNene/NewsDentist/internal/storage"
	"github.com/IshaanNene/NewsDentist/internal/types"
	"github.com/IshaanNene/NewsDentist/internal/wordfreq"
)

// Client is the high-level API for using NewsDentist as a library.
type Client struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *observability.Metrics
	exemption string
	now       func() time.Time
}

// Result summarises one harvest.
type Result struct {
	RunID    string
	Artifact string

	// Blocked is set when the search endpoint answered with a captcha.
	// The artifact then still holds its placeholder.
	Blocked    bool
	CaptchaURL string

	Pages    int
	Articles int
	Failed   int64
	Lines    int
	Elapsed  time.Duration
}

// WordCount is one row of a word frequency table.
type WordCount = wordfreq.WordCount

// Option configures a Client.
type Option func(*Client)

// WithConfig replaces the whole configuration. Pass it before any option
// that adjusts individual settings.
func WithConfig(cfg *config.Config) Option {
	return func(c *Client) { c.cfg = cfg }
}

// WithPageDepth sets how many result pages a harvest walks.
func WithPageDepth(n int) Option {
	return func(c *Client) { c.cfg.Harvest.PageDepth = n }
}

// WithMinLineWords sets the minimum word count for a line to be kept.
func WithMinLineWords(n int) Option {
	return func(c *Client) { c.cfg.Article.MinLineWords = n }
}

// WithConcurrency sets the number of concurrent article downloads.
func WithConcurrency(n int) Option {
	return func(c *Client) { c.cfg.Harvest.Concurrency = n }
}

// WithOutput stores artifacts as files under dir.
func WithOutput(dir string) Option {
	return func(c *Client) {
		c.cfg.Storage.Type = "file"
		c.cfg.Storage.OutputPath = dir
	}
}

// WithMongo stores artifacts in a MongoDB collection.
func WithMongo(uri, database, collection string) Option {
	return func(c *Client) {
		c.cfg.Storage.Type = "mongodb"
		c.cfg.Storage.MongoURI = uri
		c.cfg.Storage.MongoDatabase = database
		c.cfg.Storage.MongoCollection = collection
	}
}

// WithExtractor selects the article text extractor: text_nodes or readability.
func WithExtractor(kind string) Option {
	return func(c *Client) { c.cfg.Article.Extractor = kind }
}

// WithBrowser downloads articles with a headless browser.
func WithBrowser() Option {
	return func(c *Client) { c.cfg.Fetcher.Type = "browser" }
}

// WithSearchEndpoint points the search side at a different endpoint.
func WithSearchEndpoint(endpoint string) Option {
	return func(c *Client) { c.cfg.Search.Endpoint = endpoint }
}

// WithExemption sends a GOOGLE_ABUSE_EXEMPTION token obtained by solving a captcha.
func WithExemption(token string) Option {
	return func(c *Client) { c.exemption = token }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics reports search, article and run counters to m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithVerbose enables debug-level logging.
func WithVerbose() Option {
	return func(c *Client) { c.cfg.Logging.Level = "debug" }
}

// New creates a Client with the given options.
func New(opts ...Option) (*Client, error) {
	c := &Client{cfg: config.DefaultConfig(), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if err := config.Validate(c.cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if c.logger == nil {
		level := slog.LevelInfo
		if c.cfg.Logging.Level == "debug" {
			level = slog.LevelDebug
		}
		c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	if c.metrics == nil {
		c.metrics = observability.NewMetrics(c.logger)
	}
	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// ArtifactName returns the name a harvest of query started now would use.
func (c *Client) ArtifactName(query string) string {
	return storage.ArtifactName(query, c.now())
}

// Harvest runs query and writes the result to an artifact named after the
// query and the current time.
func (c *Client) Harvest(ctx context.Context, query string) (*Result, error) {
	return c.HarvestTo(ctx, query, c.ArtifactName(query))
}

// HarvestTo runs query and writes the result to the artifact name.
func (c *Client) HarvestTo(ctx context.Context, query, name string) (*Result, error) {
	q := types.NewSearchQuery(query, c.cfg.Harvest.PageDepth)
	q.MinLineWords = c.cfg.Article.MinLineWords
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := storage.ValidateName(name); err != nil {
		return nil, err
	}

	session, err := search.NewSession(c.cfg.Search.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("search session: %w", err)
	}
	if err := search.WithExemption(session, c.cfg.Search.Endpoint, c.exemption); err != nil {
		return nil, fmt.Errorf("search session: %w", err)
	}
	searchFetcher := fetcher.NewHTTPFetcher(c.cfg.Fetcher, fetcher.SearchIdentity(c.cfg), session, c.logger)
	defer searchFetcher.Close()
	paginator := search.NewPaginator(c.cfg.Search, searchFetcher, c.logger, search.WithPageObserver(c.metrics))

	ext, err := parser.NewExtractor(c.cfg.Article.Extractor, c.logger)
	if err != nil {
		return nil, err
	}
	base, err := fetcher.New(c.cfg, fetcher.ArticleIdentity(c.cfg), nil, c.logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}
	articles := fetcher.NewArticleFetcher(base, c.logger,
		fetcher.WithExtractor(ext),
		fetcher.WithObserver(c.metrics),
		fetcher.WithTimeout(c.cfg.Article.Timeout),
	)
	defer articles.Close()

	sink, err := storage.New(c.cfg.Storage, c.logger)
	if err != nil {
		return nil, fmt.Errorf("create storage: %w", err)
	}
	defer sink.Close()

	harvester := engine.NewHarvester(articles, c.cfg.Harvest.Concurrency, nil, c.logger)
	driver := engine.NewDriver(paginator, harvester, c.logger, engine.WithRunRecorder(c.metrics))

	out, err := driver.Run(ctx, q, sink, name)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:    out.RunID,
		Artifact: out.Artifact,
		Blocked:  out.State == types.RunBlocked,
		Pages:    out.Pages,
		Articles: out.URLs,
		Failed:   driver.Stats().URLsFailed.Load(),
		Lines:    out.Lines,
		Elapsed:  out.Elapsed,
	}
	if out.Challenge != nil {
		res.CaptchaURL = out.Challenge.RedirectURL
	}
	return res, nil
}

// Read returns the content of artifact name, the placeholder included.
func (c *Client) Read(ctx context.Context, name string) (string, error) {
	if err := storage.ValidateName(name); err != nil {
		return "", err
	}
	sink, err := storage.New(c.cfg.Storage, c.logger)
	if err != nil {
		return "", fmt.Errorf("create storage: %w", err)
	}
	defer sink.Close()
	return sink.Read(ctx, name)
}

// TopWords returns the n most common non-stopwords of artifact name.
// n <= 0 returns every word.
func (c *Client) TopWords(ctx context.Context, name string, n int) ([]WordCount, error) {
	content, err := c.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	counter, err := wordfreq.CountString(content)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", name, err)
	}
	return counter.MostCommon(n), nil
}

// Linkify returns the timestamp-free artifact name for query.
func Linkify(query string) string {
	return storage.Linkify(query)
}

// Stats returns the counters accumulated across every harvest of this client.
func (c *Client) Stats() map[string]int64 {
	return c.metrics.Snapshot()
}
