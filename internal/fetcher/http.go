package fetcher

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/NewsDentist/internal/config"
	"github.com/IshaanNene/NewsDentist/internal/types"
)

const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// HTTPFetcher downloads pages with net/http while presenting one Identity.
// The search side and the article side each build their own.
type HTTPFetcher struct {
	client   *http.Client
	maxBody  int64
	identity Identity
	logger   *slog.Logger
}

// NewHTTPFetcher creates a new HTTP fetcher presenting the given identity.
// A nil session gets a fresh one.
func NewHTTPFetcher(cfg config.FetcherConfig, id Identity, session *Session, logger *slog.Logger) *HTTPFetcher {
	if session == nil {
		session = NewSession()
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport:     newTransport(cfg),
			Jar:           session.Jar(),
			Timeout:       id.Timeout,
			CheckRedirect: redirectPolicy(cfg),
		},
		maxBody:  cfg.MaxBodySize,
		identity: id,
		logger:   logger.With("component", "http_fetcher", "ua", id.UserAgent),
	}
}

func newTransport(cfg config.FetcherConfig) *http.Transport {
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: max(cfg.MaxIdleConns/2, 2),
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: cfg.TLSInsecure},
		// Content-Encoding is decoded in readBody so brotli works too.
		DisableCompression: true,
	}
}

func redirectPolicy(cfg config.FetcherConfig) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		switch {
		case !cfg.FollowRedirects:
			return http.ErrUseLastResponse
		case len(via) >= cfg.MaxRedirects:
			return fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects)
		}
		return nil
	}
}

// Fetch issues a GET for req and returns the response whatever its status.
// Only transport failures and undecodable bodies are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	target := req.URLString()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &types.FetchError{URL: target, Err: err}
	}
	f.setHeaders(httpReq, req.Headers)

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, &types.FetchError{URL: target, Err: err}
	}
	defer httpResp.Body.Close()

	body, err := f.readBody(httpResp)
	elapsed := time.Since(start)
	if err != nil {
		return nil, &types.FetchError{URL: target, StatusCode: httpResp.StatusCode, Err: err}
	}

	f.logger.Debug("page downloaded",
		"url", target,
		"status", httpResp.StatusCode,
		"bytes", len(body),
		"elapsed", elapsed,
	)
	return types.NewResponse(req, httpResp, body, elapsed), nil
}

// setHeaders applies the identity, then any per-request overrides.
func (f *HTTPFetcher) setHeaders(r *http.Request, extra http.Header) {
	r.Header.Set("User-Agent", f.identity.UserAgent)
	r.Header.Set("Accept", acceptHTML)
	r.Header.Set("Accept-Encoding", "gzip, deflate, br")
	if f.identity.AcceptLanguage != "" {
		r.Header.Set("Accept-Language", f.identity.AcceptLanguage)
	}
	for key, values := range extra {
		for _, v := range values {
			r.Header.Set(key, v)
		}
	}
}

// ErrBodyTooLarge is returned when a response body, raw or decoded, is
// larger than fetcher.max_body_size.
var ErrBodyTooLarge = errors.New("response body exceeds max body size")

// readBody reads the body and decodes gzip, deflate or brotli content.
// Bodies over maxBody are rejected rather than truncated.
func (f *HTTPFetcher) readBody(resp *http.Response) ([]byte, error) {
	raw, err := f.readCapped(resp.Body)
	if err != nil {
		return nil, err
	}

	var decoded io.Reader
	switch enc := resp.Header.Get("Content-Encoding"); enc {
	case "", "identity":
		return raw, nil
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		defer zr.Close()
		decoded = zr
	case "deflate":
		fr := flate.NewReader(bytes.NewReader(raw))
		defer fr.Close()
		decoded = fr
	case "br":
		decoded = brotli.NewReader(bytes.NewReader(raw))
	default:
		f.logger.Debug("unknown content encoding, reading raw", "encoding", enc)
		return raw, nil
	}
	return f.readCapped(decoded)
}

func (f *HTTPFetcher) readCapped(r io.Reader) ([]byte, error) {
	if f.maxBody <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, f.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, f.maxBody)
	}
	return body, nil
}

// Close drops idle keep-alive connections.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// Type implements Fetcher.
func (f *HTTPFetcher) Type() string { return "http" }

// IsTransient reports whether a fetch failure looks temporary: timeouts,
// connection resets, refused connections and truncated bodies.
func IsTransient(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED)
}
