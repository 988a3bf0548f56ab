package types

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Request is a single outbound GET issued by a downloader.
type Request struct {
	URL *url.URL

	// Headers are sent in addition to the downloader's identity headers.
	Headers http.Header

	// Timeout bounds the whole exchange. Zero means the downloader default.
	Timeout time.Duration
}

// NewRequest parses rawURL into a Request.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidURL, rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w %q: unsupported scheme", ErrInvalidURL, rawURL)
	}
	return &Request{URL: u, Headers: make(http.Header)}, nil
}

// URLString returns the string representation of the request URL.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}

// Domain returns the hostname of the request URL.
func (r *Request) Domain() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Hostname()
}
