// Package storage keeps uploaded avatars and product photos and turns their
// storage keys into URLs a client can fetch.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=../mocks/mock_store.go -package=mocks waysfood-api/storage Store

// Store persists image blobs under opaque keys.
type Store interface {
	Save(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	// URL resolves a key to a public URL. Empty keys resolve to "".
	URL(key string) string
}

// newKey derives a collision-free key that keeps the upload's extension.
func newKey(name string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(name))
}

func isAbsoluteURL(key string) bool {
	return strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://")
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
