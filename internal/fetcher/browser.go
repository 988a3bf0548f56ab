package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/NewsDentist/internal/types"
)

// settleDelay is how long the DOM must stay unchanged before the page
// text is read.
const settleDelay = 300 * time.Millisecond

// BrowserFetcher downloads article pages through headless Chromium, for
// hosts that only put their text in the DOM from JavaScript. Tabs are
// opened with stealth patches and reused across fetches.
type BrowserFetcher struct {
	browser  *rod.Browser
	identity Identity
	tabs     chan *rod.Page
	maxTabs  int
	logger   *slog.Logger
}

// BrowserOption configures the BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// WithMaxPages caps how many idle tabs are kept for reuse. Harvest
// concurrency is a good value.
func WithMaxPages(n int) BrowserOption {
	return func(b *BrowserFetcher) { b.maxTabs = n }
}

// NewBrowserFetcher launches a headless Chromium and connects to it.
func NewBrowserFetcher(id Identity, logger *slog.Logger, opts ...BrowserOption) (*BrowserFetcher, error) {
	b := &BrowserFetcher{
		identity: id,
		maxTabs:  4,
		logger:   logger.With("component", "browser_fetcher"),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.maxTabs = max(b.maxTabs, 1)

	browser, err := launchBrowser()
	if err != nil {
		return nil, err
	}
	b.browser = browser
	b.tabs = make(chan *rod.Page, b.maxTabs)

	b.logger.Info("headless browser connected", "max_tabs", b.maxTabs)
	return b, nil
}

func launchBrowser() (*rod.Browser, error) {
	controlURL, err := launcher.New().
		Headless(true).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chromium: %w", err)
	}
	return browser, nil
}

// Fetch loads req in a tab, waits for the DOM to settle and returns the
// serialised document. The devtools protocol does not report the document
// status, so every load that completes is reported as 200.
func (b *BrowserFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	target := req.URLString()
	start := time.Now()

	tab, err := b.acquire()
	if err != nil {
		return nil, &types.FetchError{URL: target, Err: err}
	}
	defer b.release(tab)

	timeout := b.identity.Timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	page := tab.Context(ctx).Timeout(timeout)

	if err := page.Navigate(target); err != nil {
		return nil, &types.FetchError{URL: target, Err: err}
	}
	if err := page.WaitStable(settleDelay); err != nil {
		b.logger.Debug("dom still changing, reading anyway", "url", target, "error", err)
	}

	doc, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: target, Err: err}
	}

	landed := target
	if info, err := page.Info(); err == nil && info != nil {
		landed = info.URL
	}

	elapsed := time.Since(start)
	b.logger.Debug("page rendered",
		"url", target,
		"landed", landed,
		"bytes", len(doc),
		"elapsed", elapsed,
	)
	return types.NewBrowserResponse(req, 200, []byte(doc), landed, elapsed), nil
}

// Close closes every idle tab, then the browser.
func (b *BrowserFetcher) Close() error {
	close(b.tabs)
	for tab := range b.tabs {
		_ = tab.Close()
	}
	if b.browser == nil {
		return nil
	}
	return b.browser.Close()
}

// Type implements Fetcher.
func (b *BrowserFetcher) Type() string { return "browser" }

// acquire reuses an idle tab or opens a stealth tab with the identity applied.
func (b *BrowserFetcher) acquire() (*rod.Page, error) {
	select {
	case tab := <-b.tabs:
		return tab, nil
	default:
	}

	tab, err := stealth.Page(b.browser)
	if err != nil {
		return nil, fmt.Errorf("open stealth tab: %w", err)
	}
	if b.identity.UserAgent == "" {
		return tab, nil
	}
	override := &proto.NetworkSetUserAgentOverride{
		UserAgent:      b.identity.UserAgent,
		AcceptLanguage: b.identity.AcceptLanguage,
	}
	if err := tab.SetUserAgent(override); err != nil {
		b.logger.Warn("user agent override failed", "error", err)
	}
	return tab, nil
}

// release blanks the tab and keeps it if the pool has room.
func (b *BrowserFetcher) release(tab *rod.Page) {
	_ = tab.Navigate("about:blank")
	select {
	case b.tabs <- tab:
	default:
		_ = tab.Close()
	}
}
