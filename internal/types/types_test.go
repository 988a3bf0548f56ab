package types

import (
	"errors"
	"testing"
)

func TestSearchQueryValidate(t *testing.T) {
	tests := []struct {
		name  string
		query SearchQuery
		field string
	}{
		{"valid", NewSearchQuery("Glastonbury festival", 1), ""},
		{"empty text", SearchQuery{Text: "  ", PageDepth: 1, MinLineWords: 20}, "text"},
		{"zero depth", SearchQuery{Text: "x", PageDepth: 0, MinLineWords: 20}, "page_depth"},
		{"zero min words", SearchQuery{Text: "x", PageDepth: 1, MinLineWords: 0}, "min_line_words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("expected valid query, got %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
			if !errors.Is(err, ErrInvalidQuery) {
				t.Error("expected error to wrap ErrInvalidQuery")
			}
		})
	}
}

func TestNewSearchQueryDefaults(t *testing.T) {
	q := NewSearchQuery("news", 2)
	if q.MinLineWords != DefaultMinLineWords {
		t.Errorf("expected min words %d, got %d", DefaultMinLineWords, q.MinLineWords)
	}
}

func TestPageResult(t *testing.T) {
	links := LinksResult([]LinkRecord{{Href: "/url?q=http://a&sa=U", HasHref: true}})
	if links.IsChallenge() {
		t.Error("links result reported as challenge")
	}
	ch := ChallengeResult("https://www.google.com/sorry/index")
	if !ch.IsChallenge() || ch.Challenge.RedirectURL != "https://www.google.com/sorry/index" {
		t.Errorf("unexpected challenge result %+v", ch)
	}
}

func TestFetchOutcome(t *testing.T) {
	if !Ok("http://a", nil).IsOk() {
		t.Error("Ok outcome not ok")
	}
	reason := errors.New("boom")
	out := Failed("http://a", reason)
	if out.IsOk() || !errors.Is(out.Err, reason) {
		t.Errorf("unexpected failed outcome %+v", out)
	}
}

func TestNewRequestRejectsBadScheme(t *testing.T) {
	if _, err := NewRequest("ftp://example.com/file"); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL, got %v", err)
	}
	req, err := NewRequest("https://example.com/a")
	if err != nil {
		t.Fatal(err)
	}
	if req.Domain() != "example.com" {
		t.Errorf("unexpected domain %q", req.Domain())
	}
}

func TestRunErrorUnwrap(t *testing.T) {
	err := &RunError{Stage: "paginate", Page: 2, Err: &FetchError{URL: "u", StatusCode: 500, Err: ErrEmptyResponse}}
	if !errors.Is(err, ErrEmptyResponse) {
		t.Error("expected RunError to unwrap to the fetch cause")
	}
	var ferr *FetchError
	if !errors.As(err, &ferr) || ferr.StatusCode != 500 {
		t.Errorf("expected FetchError with status 500, got %v", ferr)
	}
}
