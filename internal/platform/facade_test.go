package platform

import (
	"context"
	"errors"
	"testing"

	"resume-tracker/internal/kv"
	"resume-tracker/internal/shared/storage/object/local"
	"resume-tracker/internal/shared/util"
)

func TestProviderScopesStoresToUser(t *testing.T) {
	ctx := context.Background()
	store := local.New(t.TempDir())
	repo := kv.NewMemoryRepo()
	p := &Provider{Store: store, KV: repo, URLs: NewObjectURLs()}

	alice := p.For(Authenticated("alice-id", "alice"))
	bob := p.For(Authenticated("bob-id", "bob"))

	if err := alice.KV.Set(ctx, "resume:1", "{}"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := alice.FS.Write(ctx, "a.txt", "text/plain", []byte("a")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	items, err := bob.KV.List(ctx, "*", true)
	if err != nil || len(items) != 0 {
		t.Fatalf("bob should see no keys: %v %v", items, err)
	}
	entries, err := bob.FS.ReadDir(ctx, "./")
	if err != nil || len(entries) != 0 {
		t.Fatalf("bob should see no files: %v %v", entries, err)
	}

	listed, err := store.List(ctx, util.HashUserKey("alice-id"))
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected alice's file under hashed root: %v %v", listed, err)
	}
}

func TestProviderAnonymousFacadeDeniesAccess(t *testing.T) {
	p := &Provider{Store: local.New(t.TempDir()), KV: kv.NewMemoryRepo()}
	f := p.For(AuthState{IsAuthenticated: true})

	if f.Auth.IsAuthenticated {
		t.Fatalf("state without a user must be anonymous")
	}
	if _, err := f.KV.List(context.Background(), "*", true); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := f.FS.ReadDir(context.Background(), "./"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestStatusCheckRecordsStandingError(t *testing.T) {
	calls := 0
	status := NewStatus(
		Check{Name: "database", Ping: func(context.Context) error { calls++; return errors.New("refused") }},
		Check{Name: "storage", Ping: func(context.Context) error { calls++; return nil }},
	)

	if err := status.Check(context.Background()); err == nil {
		t.Fatalf("expected check failure")
	}
	if calls != 1 {
		t.Fatalf("expected probing to stop at first failure, got %d calls", calls)
	}
	if status.Error() != "database unavailable: refused" {
		t.Fatalf("unexpected standing error %q", status.Error())
	}
	if status.IsLoading() {
		t.Fatalf("loading must be cleared after check")
	}

	status.ClearError()
	if status.Error() != "" {
		t.Fatalf("expected error cleared")
	}
}

func TestObjectURLsOwnershipAndRevoke(t *testing.T) {
	urls := NewObjectURLs()
	url := urls.Create("u1", []byte("img"), "image/png")
	id := url[len(ObjectURLPrefix):]

	if _, ok := urls.Open("u2", id); ok {
		t.Fatalf("other owners must not open the blob")
	}
	blob, ok := urls.Open("u1", id)
	if !ok || string(blob.Data) != "img" || blob.ContentType != "image/png" {
		t.Fatalf("unexpected blob %+v ok=%v", blob, ok)
	}

	urls.Revoke("/images/placeholder-resume.png")
	if urls.Len() != 1 {
		t.Fatalf("foreign URLs must be ignored")
	}
	urls.Revoke(url)
	if urls.Len() != 0 {
		t.Fatalf("expected blob released")
	}
}
