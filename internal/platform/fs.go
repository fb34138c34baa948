package platform

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"resume-tracker/internal/shared/storage/object"
)

// ErrInvalidPath is returned for paths that escape the user's root.
var ErrInvalidPath = errors.New("platform: invalid path")

// FileEntry is a handle into the user's file store. Path is relative to the user's root.
type FileEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
}

// FileSystem is the file-store surface of the facade.
// Read returns (nil, nil) when the file does not exist.
type FileSystem interface {
	Read(ctx context.Context, p string) ([]byte, error)
	ReadDir(ctx context.Context, p string) ([]FileEntry, error)
	Delete(ctx context.Context, p string) error
	Write(ctx context.Context, p string, contentType string, data []byte) (FileEntry, error)
}

// StoreFS maps user-relative paths onto an object store below root.
type StoreFS struct {
	store object.ObjectStore
	root  string
}

func NewStoreFS(store object.ObjectStore, root string) *StoreFS {
	return &StoreFS{store: store, root: strings.Trim(root, "/")}
}

func (f *StoreFS) Read(ctx context.Context, p string) ([]byte, error) {
	key, err := f.key(p)
	if err != nil {
		return nil, err
	}
	rc, err := f.store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

// ReadDir lists every file below p, recursively, ordered by path.
func (f *StoreFS) ReadDir(ctx context.Context, p string) ([]FileEntry, error) {
	key, err := f.key(p)
	if err != nil {
		return nil, err
	}
	items, err := f.store.List(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", p, err)
	}
	entries := make([]FileEntry, 0, len(items))
	for _, item := range items {
		rel := strings.TrimPrefix(strings.TrimPrefix(item.Key, f.root), "/")
		if rel == "" {
			continue
		}
		entries = append(entries, newEntry(rel, item.SizeBytes))
	}
	return entries, nil
}

func (f *StoreFS) Delete(ctx context.Context, p string) error {
	key, err := f.key(p)
	if err != nil {
		return err
	}
	if key == f.root {
		return ErrInvalidPath
	}
	// A file removed concurrently counts as deleted.
	if err := f.store.Delete(ctx, key); err != nil && !errors.Is(err, object.ErrNotFound) {
		return fmt.Errorf("delete %s: %w", p, err)
	}
	return nil
}

func (f *StoreFS) Write(ctx context.Context, p string, contentType string, data []byte) (FileEntry, error) {
	key, err := f.key(p)
	if err != nil {
		return FileEntry{}, err
	}
	if key == f.root {
		return FileEntry{}, ErrInvalidPath
	}
	n, err := f.store.SaveWithKey(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return FileEntry{}, fmt.Errorf("write %s: %w", p, err)
	}
	return newEntry(strings.TrimPrefix(strings.TrimPrefix(key, f.root), "/"), n), nil
}

// key resolves a user-relative path such as "./", "/a/b.png" or "a/b.png".
func (f *StoreFS) key(p string) (string, error) {
	for _, segment := range strings.Split(strings.ReplaceAll(p, "\\", "/"), "/") {
		if segment == ".." {
			return "", ErrInvalidPath
		}
	}
	rel := strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(p)), "/")
	if rel == "" {
		return f.root, nil
	}
	return path.Join(f.root, rel), nil
}

func newEntry(rel string, size int64) FileEntry {
	sum := sha256.Sum256([]byte(rel))
	return FileEntry{
		ID:        hex.EncodeToString(sum[:8]),
		Name:      path.Base(rel),
		Path:      rel,
		SizeBytes: size,
	}
}
