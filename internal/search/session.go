package search

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/IshaanNene/NewsDentist/internal/fetcher"
)

const (
	consentCookie   = "CONSENT"
	consentValue    = "YES+ES.en-GB+20150906-13-0"
	exemptionCookie = "GOOGLE_ABUSE_EXEMPTION"
)

// NewSession returns a cookie session for the search endpoint with the
// consent cookie already accepted.
func NewSession(endpoint string) (*fetcher.Session, error) {
	base, err := cookieBase(endpoint)
	if err != nil {
		return nil, err
	}
	s := fetcher.NewSession()
	if err := s.SetCookies(base, &http.Cookie{Name: consentCookie, Value: consentValue, Path: "/"}); err != nil {
		return nil, err
	}
	return s, nil
}

// WithExemption attaches a captcha exemption token obtained after a human
// solved a challenge. An empty token leaves the session unchanged.
func WithExemption(s *fetcher.Session, endpoint, token string) error {
	if token == "" {
		return nil
	}
	base, err := cookieBase(endpoint)
	if err != nil {
		return err
	}
	return s.SetCookies(base, &http.Cookie{Name: exemptionCookie, Value: token, Path: "/"})
}

func cookieBase(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid search endpoint %q", endpoint)
	}
	return u.Scheme + "://" + u.Host + "/", nil
}
