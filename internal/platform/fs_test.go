package platform

import (
	"context"
	"errors"
	"testing"

	"resume-tracker/internal/shared/storage/object/local"
)

func TestStoreFSReadDirIsRecursiveAndUserRelative(t *testing.T) {
	ctx := context.Background()
	store := local.New(t.TempDir())
	fs := NewStoreFS(store, "abc123")
	other := NewStoreFS(store, "zzz999")

	for _, p := range []string{"resumes/r1.pdf", "images/r1.png", "notes.txt"} {
		if _, err := fs.Write(ctx, p, "application/octet-stream", []byte(p)); err != nil {
			t.Fatalf("Write %s: %v", p, err)
		}
	}
	if _, err := other.Write(ctx, "theirs.txt", "text/plain", []byte("x")); err != nil {
		t.Fatalf("Write other: %v", err)
	}

	entries, err := fs.ReadDir(ctx, "./")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	want := []string{"images/r1.png", "notes.txt", "resumes/r1.pdf"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), entries)
	}
	for i, entry := range entries {
		if entry.Path != want[i] {
			t.Fatalf("entry %d path = %q, want %q", i, entry.Path, want[i])
		}
		if entry.ID == "" || entry.SizeBytes != int64(len(want[i])) {
			t.Fatalf("unexpected entry %+v", entry)
		}
	}
	if entries[2].Name != "r1.pdf" {
		t.Fatalf("expected base name, got %q", entries[2].Name)
	}
}

func TestStoreFSReadMissingReturnsNil(t *testing.T) {
	fs := NewStoreFS(local.New(t.TempDir()), "abc")
	data, err := fs.Read(context.Background(), "images/missing.png")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil data, got %q", data)
	}
}

func TestStoreFSRejectsTraversalAndRootDelete(t *testing.T) {
	fs := NewStoreFS(local.New(t.TempDir()), "abc")
	if _, err := fs.Read(context.Background(), "../other/secret"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
	if err := fs.Delete(context.Background(), "./"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath for root delete, got %v", err)
	}
}

func TestStoreFSDeleteThenRead(t *testing.T) {
	ctx := context.Background()
	fs := NewStoreFS(local.New(t.TempDir()), "abc")
	if _, err := fs.Write(ctx, "/images/a.png", "image/png", []byte("png")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := fs.Read(ctx, "images/a.png")
	if err != nil || string(data) != "png" {
		t.Fatalf("Read = %q, %v", data, err)
	}
	if err := fs.Delete(ctx, "images/a.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := fs.Delete(ctx, "images/a.png"); err != nil {
		t.Fatalf("deleting an absent file should succeed, got %v", err)
	}
	entries, err := fs.ReadDir(ctx, "")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, got %+v", entries)
	}
}
