package storage

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/IshaanNene/NewsDentist/internal/config"
	"github.com/IshaanNene/NewsDentist/internal/types"
)

// ArtifactSink stores result artifacts by name. An artifact holds
// types.PendingArtifact from Reserve until Commit replaces it.
type ArtifactSink interface {
	// Reserve writes the placeholder for name.
	Reserve(ctx context.Context, name string) error

	// Commit replaces the artifact content in a single step.
	Commit(ctx context.Context, name, content string) error

	// Read returns the current content, placeholder included.
	Read(ctx context.Context, name string) (string, error)

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New creates the sink selected by cfg.Type.
func New(cfg config.StorageConfig, logger *slog.Logger) (ArtifactSink, error) {
	switch cfg.Type {
	case "", "file":
		return NewFileSink(cfg.OutputPath, logger)
	case "mongodb":
		return NewMongoSink(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// TimestampLayout is how run timestamps are rendered before digits are kept.
const TimestampLayout = "2006/01/02 15:04:05"

var (
	nonAlnum    = regexp.MustCompile(`[^A-Za-z0-9]`)
	nonDigit    = regexp.MustCompile(`[^0-9]`)
	nonLinkable = regexp.MustCompile(`[^a-zA-Z_]`)
)

// ArtifactName derives the artifact name for a run of query started at ts,
// e.g. "Glastonburyfestival_20160601100203.txt".
func ArtifactName(query string, ts time.Time) string {
	q := nonAlnum.ReplaceAllString(query, "")
	stamp := nonDigit.ReplaceAllString(ts.Format(TimestampLayout), "")
	return q + "_" + stamp + ".txt"
}

// Linkify derives a timestamp-free artifact name from query: spaces become
// underscores and everything but ASCII letters and underscores is dropped.
func Linkify(query string) string {
	q := strings.ReplaceAll(query, " ", "_")
	return nonLinkable.ReplaceAllString(q, "") + ".txt"
}

// ValidateName rejects names that could escape the artifact namespace.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid artifact name %q", name)
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("artifact name %q must not contain path separators", name)
	}
	return nil
}

// IsPending reports whether content is still the placeholder.
func IsPending(content string) bool {
	return content == types.PendingArtifact
}
