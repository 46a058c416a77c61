package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
)

const recordExt = ".json"

// FileStore persists each record as a file on a billy filesystem.
// Writes go to a temp file that is renamed over the record, so readers never
// observe a partially written record.
type FileStore struct {
	fs     billy.Filesystem
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a store that keeps records under dir on fsys.
// Use osfs.New for local disk and memfs.New in tests.
func NewFileStore(fsys billy.Filesystem, dir string, logger zerolog.Logger) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{
		fs:     fsys,
		dir:    dir,
		logger: logger.With().Str("component", "file_store").Logger(),
	}
}

// Write atomically replaces the record under key
func (s *FileStore) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := s.recordPath(key)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	tmp, err := s.fs.TempFile(s.dir, "."+key+"-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := s.fs.Rename(tmpName, name); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}

	s.logger.Debug().
		Str("path", name).
		Int("bytes", len(data)).
		Msg("wrote snapshot record")

	return nil
}

// Read returns the record under key, or ErrNotFound
func (s *FileStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := s.recordPath(key)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return data, nil
}

// Delete removes the record under key. Missing records are not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := s.recordPath(key)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove snapshot file: %w", err)
	}
	return nil
}

func (s *FileStore) recordPath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid record key %q", key)
	}
	return path.Join(s.dir, key+recordExt), nil
}
