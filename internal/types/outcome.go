package types

import "time"

// PendingArtifact is the placeholder content written before a run completes.
const PendingArtifact = "Pending..."

// DocumentParent is the parent name given to text sitting directly under
// the document node.
const DocumentParent = "[document]"

// Fragment is one text node and the name of the element that contains it.
type Fragment struct {
	Text   string
	Parent string
}

// FetchOutcome is the result of fetching and filtering one article.
// Err is nil for a successful fetch.
type FetchOutcome struct {
	URL   string
	Batch []string
	Err   error
}

// Ok builds a successful outcome.
func Ok(url string, batch []string) FetchOutcome {
	return FetchOutcome{URL: url, Batch: batch}
}

// Failed builds a failed outcome.
func Failed(url string, reason error) FetchOutcome {
	return FetchOutcome{URL: url, Err: reason}
}

// IsOk reports whether the fetch succeeded.
func (o FetchOutcome) IsOk() bool { return o.Err == nil }

// RunState is the terminal state of a pipeline run.
type RunState string

const (
	RunDone    RunState = "done"
	RunBlocked RunState = "blocked"
)

// RunOutcome summarises a finished or blocked run.
type RunOutcome struct {
	RunID     string
	Artifact  string
	State     RunState
	Challenge *CaptchaChallenge
	Pages     int
	URLs      int
	Lines     int
	Elapsed   time.Duration
}
