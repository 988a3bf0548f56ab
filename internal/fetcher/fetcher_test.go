package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/NewsDentist/internal/config"
	"github.com/IshaanNene/NewsDentist/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var testIdentity = Identity{UserAgent: "NewsDentistTest/1.0", Timeout: 2 * time.Second}

func longLine(tag string) string {
	return strings.Repeat(tag+" ", 24)
}

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(config.DefaultConfig().Fetcher, testIdentity, nil, testLogger)
}

type recordingObserver struct {
	mu       sync.Mutex
	accepted map[string]int
	failed   map[string]error
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{accepted: map[string]int{}, failed: map[string]error{}}
}

func (r *recordingObserver) RecordArticle(url string, accepted, rejected, size int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accepted[url] = accepted
}

func (r *recordingObserver) RecordArticleFailure(url string, reason error, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[url] = reason
}

// --- HTTP fetcher ---

func TestHTTPFetcherIdentityAndStatus(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("sorry"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	defer f.Close()

	req, _ := types.NewRequest(srv.URL)
	resp, err := f.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("non-2xx should still return a response: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable || string(resp.Body) != "sorry" {
		t.Errorf("unexpected response %d %q", resp.StatusCode, resp.Body)
	}
	if gotUA != testIdentity.UserAgent {
		t.Errorf("expected UA %q, got %q", testIdentity.UserAgent, gotUA)
	}
}

func TestHTTPFetcherDecompression(t *testing.T) {
	const text = "<html><body><p>compressed body</p></body></html>"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		switch r.URL.Path {
		case "/br":
			bw := brotli.NewWriter(&buf)
			bw.Write([]byte(text))
			bw.Close()
			w.Header().Set("Content-Encoding", "br")
		case "/gzip":
			gw := gzip.NewWriter(&buf)
			gw.Write([]byte(text))
			gw.Close()
			w.Header().Set("Content-Encoding", "gzip")
		default:
			buf.WriteString(text)
		}
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := newTestFetcher()
	for _, path := range []string{"/br", "/gzip", "/plain"} {
		req, _ := types.NewRequest(srv.URL + path)
		resp, err := f.Fetch(context.Background(), req)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if string(resp.Body) != text {
			t.Errorf("%s: expected decoded body, got %q", path, resp.Body)
		}
	}
}

func TestHTTPFetcherBodyLimit(t *testing.T) {
	page := strings.Repeat("a", 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gzip" {
			gw := gzip.NewWriter(w)
			w.Header().Set("Content-Encoding", "gzip")
			gw.Write([]byte(strings.Repeat(page, 4)))
			gw.Close()
			return
		}
		w.Write([]byte(page))
	}))
	defer srv.Close()

	cfg := config.DefaultConfig().Fetcher
	cfg.MaxBodySize = 64
	f := NewHTTPFetcher(cfg, testIdentity, nil, testLogger)

	req, _ := types.NewRequest(srv.URL + "/exact")
	resp, err := f.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("body at the limit should be accepted: %v", err)
	}
	if len(resp.Body) != 64 {
		t.Errorf("expected 64 bytes, got %d", len(resp.Body))
	}

	cfg.MaxBodySize = 63
	f = NewHTTPFetcher(cfg, testIdentity, nil, testLogger)
	if _, err := f.Fetch(context.Background(), req); !errors.Is(err, ErrBodyTooLarge) {
		t.Errorf("expected ErrBodyTooLarge, got %v", err)
	}

	// 256 decoded bytes compress well below the cap.
	cfg.MaxBodySize = 128
	f = NewHTTPFetcher(cfg, testIdentity, nil, testLogger)
	req, _ = types.NewRequest(srv.URL + "/gzip")
	if _, err := f.Fetch(context.Background(), req); !errors.Is(err, ErrBodyTooLarge) {
		t.Errorf("expected ErrBodyTooLarge for decoded body, got %v", err)
	}
}

func TestHTTPFetcherSessionCookies(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("CONSENT"); err == nil {
			gotCookie = c.Value
		}
	}))
	defer srv.Close()

	session := NewSession()
	if err := session.SetCookies(srv.URL, &http.Cookie{Name: "CONSENT", Value: "YES+test"}); err != nil {
		t.Fatal(err)
	}
	f := NewHTTPFetcher(config.DefaultConfig().Fetcher, testIdentity, session, testLogger)

	req, _ := types.NewRequest(srv.URL + "/search")
	if _, err := f.Fetch(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if gotCookie != "YES+test" {
		t.Errorf("expected session cookie to be sent, got %q", gotCookie)
	}
}

func TestIsTransient(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil is not transient")
	}
	if IsTransient(context.Canceled) {
		t.Error("cancellation is not transient")
	}
	if !IsTransient(context.DeadlineExceeded) {
		t.Error("deadline should be transient")
	}
	if IsTransient(errors.New("bad markup")) {
		t.Error("plain error should not be transient")
	}
}

// --- Article fetcher ---

func TestFetchAndFilter(t *testing.T) {
	page := `<html><head><title>Story</title><script>` + longLine("js") + `</script></head><body>
<ul><li>Home</li><li>World</li></ul>
<p>` + longLine("alpha") + `</p>
<p>` + longLine("beta") + `</p>
<p>Too short to keep.</p>
</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	obs := newRecordingObserver()
	af := NewArticleFetcher(newTestFetcher(), testLogger, WithObserver(obs))

	out := af.FetchAndFilter(context.Background(), srv.URL+"/story", 20)
	if !out.IsOk() {
		t.Fatalf("expected ok outcome, got %v", out.Err)
	}
	if len(out.Batch) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(out.Batch), out.Batch)
	}
	if !strings.HasPrefix(out.Batch[0], "alpha") || !strings.HasPrefix(out.Batch[1], "beta") {
		t.Errorf("lines out of document order: %q", out.Batch)
	}
	if obs.accepted[srv.URL+"/story"] != 2 {
		t.Errorf("observer not told about accepted lines: %v", obs.accepted)
	}
}

func TestFetchAndFilterFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/slow":
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		case "/empty":
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	obs := newRecordingObserver()
	af := NewArticleFetcher(newTestFetcher(), testLogger,
		WithObserver(obs),
		WithTimeout(100*time.Millisecond),
	)

	tests := []struct {
		name string
		url  string
	}{
		{"not found", srv.URL + "/missing"},
		{"timeout", srv.URL + "/slow"},
		{"empty body", srv.URL + "/empty"},
		{"bad scheme", "mailto:someone@example.com"},
		{"unreachable", "http://127.0.0.1:1/nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := af.FetchAndFilter(context.Background(), tt.url, 20)
			if out.IsOk() {
				t.Fatalf("expected failed outcome, got %q", out.Batch)
			}
			if out.URL != tt.url {
				t.Errorf("outcome URL %q, want %q", out.URL, tt.url)
			}
			if len(out.Batch) != 0 {
				t.Errorf("failed outcome carried lines: %q", out.Batch)
			}
		})
	}

	if len(obs.failed) != len(tests) {
		t.Errorf("expected %d recorded failures, got %d", len(tests), len(obs.failed))
	}
	var ferr *types.FetchError
	if !errors.As(obs.failed[srv.URL+"/missing"], &ferr) || ferr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 FetchError, got %v", obs.failed[srv.URL+"/missing"])
	}
	if !errors.Is(obs.failed[srv.URL+"/empty"], types.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", obs.failed[srv.URL+"/empty"])
	}
}

func TestIdentitiesDiffer(t *testing.T) {
	cfg := config.DefaultConfig()
	if SearchIdentity(cfg).UserAgent == ArticleIdentity(cfg).UserAgent {
		t.Error("search and article identities must not share a user agent")
	}
	if ArticleIdentity(cfg).Timeout != 5*time.Second {
		t.Errorf("expected 5s article timeout, got %s", ArticleIdentity(cfg).Timeout)
	}
}
