package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/NewsDentist/internal/config"
	"github.com/IshaanNene/NewsDentist/internal/types"
)

// Fetcher is the interface for all request fetcher implementations.
// A Fetcher returns a Response for every status code; callers decide what a
// non-2xx status means to them.
type Fetcher interface {
	// Fetch retrieves the content at the given request's URL.
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// Identity is the client profile presented to remote hosts. The search
// endpoint and article hosts each get their own.
type Identity struct {
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
}

// SearchIdentity returns the browser-like profile used against the search endpoint.
func SearchIdentity(cfg *config.Config) Identity {
	return Identity{
		UserAgent:      cfg.Search.UserAgent,
		AcceptLanguage: cfg.Search.Language + ",en;q=0.9",
		Timeout:        cfg.Search.Timeout,
	}
}

// ArticleIdentity returns the crawler profile used for article downloads.
func ArticleIdentity(cfg *config.Config) Identity {
	return Identity{
		UserAgent:      cfg.Article.UserAgent,
		AcceptLanguage: "en-GB,en;q=0.9",
		Timeout:        cfg.Article.Timeout,
	}
}

// New builds the fetcher selected by cfg.Fetcher.Type.
func New(cfg *config.Config, id Identity, session *Session, logger *slog.Logger) (Fetcher, error) {
	switch cfg.Fetcher.Type {
	case "", "http":
		return NewHTTPFetcher(cfg.Fetcher, id, session, logger), nil
	case "browser":
		return NewBrowserFetcher(id, logger, WithMaxPages(cfg.Harvest.Concurrency))
	default:
		return nil, fmt.Errorf("unknown fetcher type %q", cfg.Fetcher.Type)
	}
}
