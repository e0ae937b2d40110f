package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
)

// Store writes uploaded documents to a directory on local disk. Keys are
// slash-separated relative paths; the store rejects anything that would
// escape the root.
type Store struct {
	root string
	logg *logger.Logger
}

func NewStore(cfg config.DocumentsConfig, logg *logger.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("documents directory is required")
	}
	root, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving documents directory: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating documents directory: %w", err)
	}
	return &Store{root: root, logg: logg}, nil
}

func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Save streams the reader to the key, writing through a temp file so a
// partial upload never lands at the final path. Returns the bytes written.
func (s *Store) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	path, err := s.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating document directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if removeErr := os.Remove(tmp.Name()); removeErr != nil && s.logg != nil {
			s.logg.Warn(ctx, "documents: removing temp file failed")
		}
		return 0, fmt.Errorf("writing document: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		if removeErr := os.Remove(tmp.Name()); removeErr != nil && s.logg != nil {
			s.logg.Warn(ctx, "documents: removing temp file failed")
		}
		return 0, fmt.Errorf("storing document: %w", err)
	}
	return written, nil
}

// Open returns a reader for the stored key.
func (s *Store) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Remove deletes the stored key. Missing files are not an error.
func (s *Store) Remove(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
