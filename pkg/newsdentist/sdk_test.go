package newsdentist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IshaanNene/NewsDentist/internal/config"
	"github.com/IshaanNene/NewsDentist/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func articleLine(n int) string {
	return fmt.Sprintf("Article %d reports that thousands of muddy festival goers queued for hours in heavy rain before the gates finally opened on Wednesday morning", n)
}

// newsServer fakes the search endpoint and the article hosts on one server.
// Page 0 links articles 1 and 2, page 1 links 2 again and 3. Article 4 is
// a 500. The query "blocked" redirects to a 503 captcha page.
func newsServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "blocked" {
			http.Redirect(w, r, "/sorry/index?continue="+url.QueryEscape(r.URL.String()), http.StatusFound)
			return
		}
		if r.URL.Query().Get("tbm") != "nws" {
			http.Error(w, "news only", http.StatusBadRequest)
			return
		}
		var ids []int
		switch r.URL.Query().Get("start") {
		case "0":
			ids = []int{1, 2, 4}
		case "10":
			ids = []int{2, 3}
		}
		var b strings.Builder
		b.WriteString(`<html><body><a href="/preferences">Settings</a>`)
		for _, id := range ids {
			fmt.Fprintf(&b, `<a href="/url?q=%s/article/%d&sa=U&ved=abc">Story %d</a>`, srv.URL, id, id)
		}
		b.WriteString(`<a>no href</a></body></html>`)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, b.String())
	})

	mux.HandleFunc("/sorry/index", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unusual traffic", http.StatusServiceUnavailable)
	})

	mux.HandleFunc("/article/", func(w http.ResponseWriter, r *http.Request) {
		var id int
		fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/article/"), "%d", &id)
		if id == 4 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><head><title>Story %d</title><script>var x = "%s";</script></head>
<body>
<nav>Home News Sport</nav>
<p>%s</p>
<p>Too short to keep.</p>
<footer>Copyright © 2016 Example News Limited all rights reserved worldwide for every single article published on this site</footer></body></html>`,
			id, articleLine(99), articleLine(id))
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Search.RequestsPerMinute = 0
	base := []Option{
		WithConfig(cfg),
		WithSearchEndpoint(srv.URL + "/search"),
		WithOutput(t.TempDir()),
		WithLogger(testLogger),
	}
	c, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.now = func() time.Time { return time.Date(2016, 6, 1, 10, 2, 3, 0, time.UTC) }
	return c
}

func TestHarvestEndToEnd(t *testing.T) {
	srv := newsServer(t)
	c := newTestClient(t, srv, WithPageDepth(2), WithConcurrency(3))

	res, err := c.Harvest(context.Background(), "Glastonbury festival")
	if err != nil {
		t.Fatalf("Harvest: %v", err)
	}
	if res.Blocked {
		t.Fatal("did not expect a challenge")
	}
	if res.Artifact != "Glastonburyfestival_20160601100203.txt" {
		t.Errorf("unexpected artifact name %q", res.Artifact)
	}
	if res.Pages != 2 {
		t.Errorf("expected 2 pages, got %d", res.Pages)
	}
	// 1, 2, 4 on page 0; only 3 is new on page 1.
	if res.Articles != 4 {
		t.Errorf("expected 4 distinct articles, got %d", res.Articles)
	}
	if res.Failed != 1 {
		t.Errorf("expected 1 failed article, got %d", res.Failed)
	}

	content, err := c.Read(context.Background(), res.Artifact)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{articleLine(1), articleLine(2), articleLine(3)}, "\n")
	if content != want {
		t.Errorf("artifact content:\n%s\nwant:\n%s", content, want)
	}
	if res.Lines != 3 {
		t.Errorf("expected 3 lines, got %d", res.Lines)
	}

	stats := c.Stats()
	if stats["runs_completed"] != 1 || stats["search_pages"] != 2 || stats["articles_failed"] != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestHarvestBlocked(t *testing.T) {
	srv := newsServer(t)
	c := newTestClient(t, srv)

	res, err := c.HarvestTo(context.Background(), "blocked", "blocked.txt")
	if err != nil {
		t.Fatalf("HarvestTo: %v", err)
	}
	if !res.Blocked {
		t.Fatal("expected the run to be blocked")
	}
	if !strings.HasPrefix(res.CaptchaURL, srv.URL+"/sorry/index") {
		t.Errorf("unexpected captcha URL %q", res.CaptchaURL)
	}

	content, err := c.Read(context.Background(), "blocked.txt")
	if err != nil {
		t.Fatal(err)
	}
	if content != types.PendingArtifact {
		t.Errorf("expected placeholder, got %q", content)
	}
	if _, err := c.TopWords(context.Background(), "blocked.txt", 10); !errors.Is(err, types.ErrPlaceholder) {
		t.Errorf("expected ErrPlaceholder, got %v", err)
	}
	if c.Stats()["runs_blocked"] != 1 {
		t.Errorf("expected one blocked run, got %v", c.Stats())
	}
}

func TestHarvestReadabilityExtractor(t *testing.T) {
	srv := newsServer(t)
	c := newTestClient(t, srv, WithExtractor("readability"))

	res, err := c.Harvest(context.Background(), "Glastonbury festival")
	if err != nil {
		t.Fatalf("Harvest: %v", err)
	}
	content, err := c.Read(context.Background(), res.Artifact)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []int{1, 2} {
		if !strings.Contains(content, articleLine(id)) {
			t.Errorf("expected line of article %d in %q", id, content)
		}
	}
}

func TestTopWords(t *testing.T) {
	srv := newsServer(t)
	c := newTestClient(t, srv)

	res, err := c.Harvest(context.Background(), "Glastonbury festival")
	if err != nil {
		t.Fatal(err)
	}
	top, err := c.TopWords(context.Background(), res.Artifact, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 rows, got %v", top)
	}
	// Every word but the article number appears in all three lines.
	if top[0].Word != "Article" || top[0].Count != 3 {
		t.Errorf("unexpected top row %v", top[0])
	}
}

func TestHarvestRejectsBadInput(t *testing.T) {
	srv := newsServer(t)
	c := newTestClient(t, srv)

	if _, err := c.Harvest(context.Background(), "   "); !errors.Is(err, types.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
	if _, err := c.HarvestTo(context.Background(), "mud", "../escape.txt"); err == nil {
		t.Error("expected error for path-like artifact name")
	}
	entries, _ := os.ReadDir(c.Config().Storage.OutputPath)
	if len(entries) != 0 {
		t.Errorf("nothing should be written for rejected input, found %d entries", len(entries))
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(WithConcurrency(0)); err == nil {
		t.Error("expected error for zero concurrency")
	}
	if _, err := New(WithExtractor("magic")); err == nil {
		t.Error("expected error for unknown extractor")
	}
}

func TestLinkify(t *testing.T) {
	if got := Linkify("Glastonbury festival 2016!"); got != "Glastonbury_festival_.txt" {
		t.Errorf("Linkify = %q", got)
	}
	if got := filepath.Ext(Linkify("mud")); got != ".txt" {
		t.Errorf("expected .txt extension, got %q", got)
	}
}
