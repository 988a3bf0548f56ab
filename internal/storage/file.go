package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/IshaanNene/NewsDentist/internal/types"
)

// FileSink stores each artifact as a text file in one directory.
type FileSink struct {
	dir    string
	logger *slog.Logger
}

// NewFileSink creates a file sink rooted at dir, creating it if needed.
func NewFileSink(dir string, logger *slog.Logger) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &types.StorageError{Backend: "file", Err: fmt.Errorf("create output dir: %w", err)}
	}
	return &FileSink{
		dir:    dir,
		logger: logger.With("component", "file_sink"),
	}, nil
}

func (s *FileSink) Name() string { return "file" }

// Path returns the file path for an artifact name.
func (s *FileSink) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileSink) Reserve(ctx context.Context, name string) error {
	if err := s.write(name, types.PendingArtifact); err != nil {
		return err
	}
	s.logger.Debug("artifact reserved", "name", name)
	return nil
}

func (s *FileSink) Commit(ctx context.Context, name, content string) error {
	if err := s.write(name, content); err != nil {
		return err
	}
	s.logger.Info("artifact committed", "name", name, "path", s.Path(name), "bytes", len(content))
	return nil
}

func (s *FileSink) Read(ctx context.Context, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", &types.StorageError{Backend: "file", Err: err}
	}
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", &types.StorageError{Backend: "file", Err: fmt.Errorf("%s: %w", name, types.ErrNotFound)}
	}
	if err != nil {
		return "", &types.StorageError{Backend: "file", Err: err}
	}
	return string(data), nil
}

func (s *FileSink) Close() error { return nil }

// write stages content in a temp file next to the target and renames it
// over the target, so readers see either the old or the new content.
func (s *FileSink) write(name, content string) error {
	if err := ValidateName(name); err != nil {
		return &types.StorageError{Backend: "file", Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp-*")
	if err != nil {
		return &types.StorageError{Backend: "file", Err: fmt.Errorf("create temp file: %w", err)}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return &types.StorageError{Backend: "file", Err: fmt.Errorf("write temp file: %w", err)}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &types.StorageError{Backend: "file", Err: fmt.Errorf("sync temp file: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		return &types.StorageError{Backend: "file", Err: fmt.Errorf("close temp file: %w", err)}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return &types.StorageError{Backend: "file", Err: err}
	}
	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		return &types.StorageError{Backend: "file", Err: fmt.Errorf("move artifact into place: %w", err)}
	}
	return nil
}
