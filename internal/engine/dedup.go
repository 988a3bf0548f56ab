package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"sync"
)

// Deduplicator remembers which article URLs a run has already scheduled, so
// a story listed on several result pages is downloaded once.
type Deduplicator struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDeduplicator creates a Deduplicator sized for about capacity URLs.
func NewDeduplicator(capacity int) *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{}, capacity)}
}

// Seen reports whether rawURL, or an equivalent form of it, was visited.
func (d *Deduplicator) Seen(rawURL string) bool {
	key := articleKey(rawURL)

	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[key]
	return ok
}

// Visit records rawURL and reports whether it was new.
func (d *Deduplicator) Visit(rawURL string) bool {
	key := articleKey(rawURL)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Fresh returns the URLs of urls not visited before, in order, and visits them.
func (d *Deduplicator) Fresh(urls []string) []string {
	var out []string
	for _, u := range urls {
		if d.Visit(u) {
			out = append(out, u)
		}
	}
	return out
}

// Count returns the number of distinct URLs visited.
func (d *Deduplicator) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// CanonicalizeURL rewrites an article URL into the form used for
// duplicate detection. Scheme and host are lowercased, default ports and
// the fragment are dropped, decodable query parameters are sorted and a trailing
// slash is removed from any path but the root. Unparseable input is
// returned unchanged.
func CanonicalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	switch port := u.Port(); {
	case u.Scheme == "http" && port == "80", u.Scheme == "https" && port == "443":
		u.Host = u.Hostname()
	}

	if u.RawQuery != "" {
		// ParseQuery drops pairs it cannot decode, so such queries are kept verbatim.
		if q, err := url.ParseQuery(u.RawQuery); err == nil {
			u.RawQuery = q.Encode()
		}
	}

	switch {
	case u.Path == "":
		u.Path = "/"
	case u.Path != "/":
		u.Path = strings.TrimRight(u.Path, "/")
		if u.Path == "" {
			u.Path = "/"
		}
	}
	u.RawPath = ""

	return u.String()
}

// articleKey is the map key for rawURL: a 128-bit digest of its canonical form.
func articleKey(rawURL string) string {
	sum := sha256.Sum256([]byte(CanonicalizeURL(rawURL)))
	return hex.EncodeToString(sum[:16])
}
