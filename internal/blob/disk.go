package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskStore keeps blobs under a directory and hands out references below a
// URL prefix, for example "/uploads/images/<id>.png".
type DiskStore struct {
	root      string
	urlPrefix string
}

func NewDiskStore(root, urlPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &DiskStore{root: root, urlPrefix: urlPrefix}, nil
}

func (store *DiskStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	destination := filepath.Join(store.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return "", fmt.Errorf("creating blob directory: %w", err)
	}

	temporary, err := os.CreateTemp(filepath.Dir(destination), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temporary blob: %w", err)
	}
	defer os.Remove(temporary.Name())

	if _, err := io.Copy(temporary, body); err != nil {
		temporary.Close()
		return "", fmt.Errorf("writing blob: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return "", fmt.Errorf("closing blob: %w", err)
	}
	if err := os.Rename(temporary.Name(), destination); err != nil {
		return "", fmt.Errorf("moving blob into place: %w", err)
	}

	return store.urlPrefix + "/" + key, nil
}

func (store *DiskStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(store.root, filepath.FromSlash(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening blob: %w", err)
	}
	return file, nil
}

func (store *DiskStore) Delete(ctx context.Context, ref string) error {
	key, ok := keyFromRef(ref, store.urlPrefix)
	if !ok {
		return nil
	}

	err := os.Remove(filepath.Join(store.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}
