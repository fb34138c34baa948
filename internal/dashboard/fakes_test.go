package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"resume-tracker/internal/platform"
	"resume-tracker/internal/resumes"
)

// fakeKV is an in-memory platform.KeyValue. When gate is set, List blocks
// until the gate closes or the context ends.
type fakeKV struct {
	mu       sync.Mutex
	items    []platform.KVItem
	listErr  error
	flushErr error
	flushed  int

	gate    chan struct{}
	started chan struct{}
}

func (f *fakeKV) List(ctx context.Context, pattern string, includeValues bool) ([]platform.KVItem, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]platform.KVItem(nil), f.items...), nil
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.Key == key {
			return it.Value, nil
		}
	}
	return "", errors.New("not found")
}

func (f *fakeKV) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, platform.KVItem{Key: key, Value: value})
	return nil
}

func (f *fakeKV) Flush(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flushErr != nil {
		return f.flushErr
	}
	f.flushed++
	f.items = nil
	return nil
}

// fakeFS holds files in order. Paths listed in failDelete fail on Delete and
// paths in failRead fail on Read.
type fakeFS struct {
	mu         sync.Mutex
	files      []platform.FileEntry
	blobs      map[string][]byte
	failDelete map[string]error
	failRead   map[string]error
	readDirErr error
	deleted    []string
	attempted  []string
}

func (f *fakeFS) Read(ctx context.Context, p string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failRead[p]; err != nil {
		return nil, err
	}
	return f.blobs[p], nil
}

func (f *fakeFS) ReadDir(ctx context.Context, p string) ([]platform.FileEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readDirErr != nil {
		return nil, f.readDirErr
	}
	return append([]platform.FileEntry(nil), f.files...), nil
}

func (f *fakeFS) Delete(ctx context.Context, p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempted = append(f.attempted, p)
	if err := f.failDelete[p]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, p)
	kept := f.files[:0]
	for _, e := range f.files {
		if e.Path != p {
			kept = append(kept, e)
		}
	}
	f.files = kept
	return nil
}

func (f *fakeFS) Write(ctx context.Context, p string, contentType string, data []byte) (platform.FileEntry, error) {
	return platform.FileEntry{}, errors.New("read-only")
}

func userFacade(fs platform.FileSystem, store platform.KeyValue, checks ...platform.Check) *platform.Facade {
	return &platform.Facade{
		Auth:   platform.Authenticated("user-1", "ada"),
		FS:     fs,
		KV:     store,
		Status: platform.NewStatus(checks...),
	}
}

func anonymousFacade() *platform.Facade {
	p := &platform.Provider{URLs: platform.NewObjectURLs()}
	return p.For(platform.Anonymous())
}

func record(t *testing.T, id, company, imagePath string, score float64) platform.KVItem {
	t.Helper()
	r := resumes.Resume{ID: id, ImagePath: imagePath, Feedback: resumes.Feedback{OverallScore: score}}
	if company != "" {
		r.CompanyName = &company
	}
	value, err := resumes.Encode(r)
	require.NoError(t, err)
	return platform.KVItem{Key: resumes.Key(id), Value: value}
}

func entries(paths ...string) []platform.FileEntry {
	out := make([]platform.FileEntry, 0, len(paths))
	for _, p := range paths {
		out = append(out, platform.FileEntry{ID: p, Name: p, Path: p, SizeBytes: 1024})
	}
	return out
}
