package search

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/IshaanNene/NewsDentist/internal/config"
	"github.com/IshaanNene/NewsDentist/internal/fetcher"
	"github.com/IshaanNene/NewsDentist/internal/parser"
	"github.com/IshaanNene/NewsDentist/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const resultsPage = `<html><body>
<a href="/search?q=glastonbury&tbm=nws&start=10">Next</a>
<a href="/url?q=http://news.example.com/one&sa=U&ved=0ah">One</a>
<a name="anchor">No href</a>
<a href="/url?q=https://paper.example.co.uk/two&sa=U&ved=1ah">Two</a>
</body></html>`

type pageCounter struct {
	pages, challenges, errors int
}

func (c *pageCounter) RecordSearchPage(challenged bool, err error) {
	c.pages++
	if challenged {
		c.challenges++
	}
	if err != nil {
		c.errors++
	}
}

func newTestPaginator(t *testing.T, endpoint string, opts ...PaginatorOption) *Paginator {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Search.Endpoint = endpoint
	cfg.Search.RequestsPerMinute = 0

	session, err := NewSession(endpoint)
	if err != nil {
		t.Fatal(err)
	}
	f := fetcher.NewHTTPFetcher(cfg.Fetcher, fetcher.SearchIdentity(cfg), session, testLogger)
	return NewPaginator(cfg.Search, f, testLogger, opts...)
}

func TestFetchResultPage(t *testing.T) {
	var got url.Values
	var consent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		if c, err := r.Cookie("CONSENT"); err == nil {
			consent = c.Value
		}
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	p := newTestPaginator(t, srv.URL+"/search")
	result, err := p.FetchResultPage(context.Background(), "Glastonbury festival", 2)
	if err != nil {
		t.Fatalf("fetch page: %v", err)
	}
	if result.IsChallenge() {
		t.Fatal("unexpected challenge")
	}
	if len(result.Links) != 4 {
		t.Fatalf("expected 4 anchors, got %d", len(result.Links))
	}

	want := map[string]string{
		"q": "Glastonbury festival", "start": "20", "tbm": "nws",
		"hl": "en-GB", "gl": "uk", "pws": "0", "gbv": "1",
	}
	for k, v := range want {
		if got.Get(k) != v {
			t.Errorf("param %s: expected %q, got %q", k, v, got.Get(k))
		}
	}
	if consent != consentValue {
		t.Errorf("expected consent cookie %q, got %q", consentValue, consent)
	}

	articles := parser.ExtractArticleLinks(result.Links)
	if len(articles) != 2 || articles[0] != "http://news.example.com/one" {
		t.Errorf("unexpected article links %v", articles)
	}
}

func TestFetchResultPageChallenge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			http.Redirect(w, r, "/sorry/index?continue=x", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("<html><body>unusual traffic</body></html>"))
	}))
	defer srv.Close()

	counter := &pageCounter{}
	p := newTestPaginator(t, srv.URL+"/search", WithPageObserver(counter))
	result, err := p.FetchResultPage(context.Background(), "anything", 0)
	if err != nil {
		t.Fatalf("challenge must not be an error: %v", err)
	}
	if !result.IsChallenge() {
		t.Fatal("expected challenge result")
	}
	if result.Challenge.RedirectURL != srv.URL+"/sorry/index?continue=x" {
		t.Errorf("unexpected redirect URL %q", result.Challenge.RedirectURL)
	}
	if counter.challenges != 1 || counter.pages != 1 {
		t.Errorf("unexpected observer counts %+v", counter)
	}
}

func TestFetchResultPageErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	counter := &pageCounter{}
	p := newTestPaginator(t, srv.URL+"/search", WithPageObserver(counter))
	_, err := p.FetchResultPage(context.Background(), "anything", 0)
	var ferr *types.FetchError
	if !errors.As(err, &ferr) || ferr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 FetchError, got %v", err)
	}
	if counter.errors != 1 {
		t.Errorf("expected one recorded error, got %+v", counter)
	}
}

func TestPaginatorRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Search.Endpoint = srv.URL + "/search"
	cfg.Search.RequestsPerMinute = 1
	f := fetcher.NewHTTPFetcher(cfg.Fetcher, fetcher.SearchIdentity(cfg), nil, testLogger)
	p := NewPaginator(cfg.Search, f, testLogger)

	if _, err := p.FetchResultPage(context.Background(), "q", 0); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := p.FetchResultPage(ctx, "q", 1); err == nil {
		t.Fatal("expected second request to be held back by the limiter")
	}
}

func TestSessionExemption(t *testing.T) {
	endpoint := "https://www.google.com/search"
	s, err := NewSession(endpoint)
	if err != nil {
		t.Fatal(err)
	}
	if err := WithExemption(s, endpoint, ""); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Cookies(endpoint)); n != 1 {
		t.Fatalf("empty token should add nothing, have %d cookies", n)
	}

	if err := WithExemption(s, endpoint, "token-123"); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, c := range s.Cookies(endpoint) {
		if c.Name == exemptionCookie && c.Value == "token-123" {
			found = true
		}
	}
	if !found {
		t.Error("expected exemption cookie on the search host")
	}
	if len(s.Cookies("https://news.example.com/")) != 0 {
		t.Error("search cookies leaked to another host")
	}
}

func TestNewSessionRejectsBadEndpoint(t *testing.T) {
	if _, err := NewSession("not a url"); err == nil {
		t.Error("expected error for endpoint without host")
	}
}
