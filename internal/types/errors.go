package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrInvalidQuery  = errors.New("invalid search query")
	ErrChallenge     = errors.New("search endpoint returned a captcha challenge")
	ErrPlaceholder   = errors.New("artifact is still pending")
	ErrEmptyResponse = errors.New("empty response body")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrNotFound      = errors.New("artifact not found")
)

// FetchError wraps errors that occur during fetching.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ValidationError reports a query field outside its allowed range.
type ValidationError struct {
	Field string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur while reserving, writing or reading artifacts.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// RunError wraps an error that aborted a pipeline run.
type RunError struct {
	Stage string
	Page  int
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run aborted at stage %q (page %d): %v", e.Stage, e.Page, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
