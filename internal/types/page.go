package types

// LinkRecord is a raw anchor element taken from a results page.
type LinkRecord struct {
	Href    string
	HasHref bool
}

// CaptchaChallenge is returned when the search endpoint refuses to serve
// results until a human solves a challenge.
type CaptchaChallenge struct {
	RedirectURL string
}

// PageResult is either the links of one results page or a challenge.
// Exactly one of the two is meaningful; check IsChallenge first.
type PageResult struct {
	Links     []LinkRecord
	Challenge *CaptchaChallenge
}

// LinksResult builds a PageResult holding links.
func LinksResult(links []LinkRecord) PageResult {
	return PageResult{Links: links}
}

// ChallengeResult builds a PageResult holding a challenge.
func ChallengeResult(redirectURL string) PageResult {
	return PageResult{Challenge: &CaptchaChallenge{RedirectURL: redirectURL}}
}

// IsChallenge reports whether the page was a captcha challenge.
func (p PageResult) IsChallenge() bool { return p.Challenge != nil }
