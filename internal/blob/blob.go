// Package blob stores dish images and menu files outside the database.
package blob

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidKey = errors.New("invalid blob key")
)

// Store is the storage collaborator. Put returns the public reference that is
// saved on catalog rows; Delete accepts such a reference and is a no-op for
// references the store does not own or that no longer exist.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
}

// NewImageKey names an uploaded image by a random id, keeping the extension.
func NewImageKey(extension string) string {
	return "images/" + uuid.NewString() + strings.ToLower(extension)
}

func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(key))[1:]
	if cleaned == "" || cleaned == "." || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// keyFromRef maps a reference produced by Put back to its key.
func keyFromRef(ref, prefix string) (string, bool) {
	ref = strings.TrimSpace(ref)
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	key, err := cleanKey(strings.TrimPrefix(ref, prefix))
	if err != nil {
		return "", false
	}
	return key, true
}
