package fetcher

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
)

// Session carries cookies across requests made with one identity.
// It is safe for concurrent use.
type Session struct {
	jar *cookiejar.Jar
}

// NewSession creates an empty session.
func NewSession() *Session {
	jar, _ := cookiejar.New(nil) // only fails with a non-nil PublicSuffixList option
	return &Session{jar: jar}
}

// Jar returns the underlying cookie jar.
func (s *Session) Jar() http.CookieJar {
	return s.jar
}

// SetCookies stores cookies as if they were set by rawURL.
func (s *Session) SetCookies(rawURL string, cookies ...*http.Cookie) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	s.jar.SetCookies(u, cookies)
	return nil
}

// Cookies returns the cookies that would be sent to rawURL.
func (s *Session) Cookies(rawURL string) []*http.Cookie {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return s.jar.Cookies(u)
}
