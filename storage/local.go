package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

// LocalStore writes files to a directory served by the API under /uploads.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, domain string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: joinURL(domain, "uploads")}, nil
}

// Dir is the directory that must be exposed at /uploads.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(ctx context.Context, name, _ string, body io.Reader) (string, error) {
	key := newKey(name)
	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return key, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if key == "" || isAbsoluteURL(key) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) URL(key string) string {
	if key == "" || isAbsoluteURL(key) {
		return key
	}
	return joinURL(s.baseURL, url.PathEscape(key))
}
