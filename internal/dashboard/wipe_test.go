package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-tracker/internal/platform"
)

func TestWipeRedirectsAnonymousSession(t *testing.T) {
	v := NewWipeView(anonymousFacade())

	outcome, err := v.Activate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/auth?next=%2Fwipe", outcome.Redirect)
}

func TestWipeDeleteDisabledWithoutFilesOrWhileDeleting(t *testing.T) {
	v := NewWipeView(userFacade(&fakeFS{}, &fakeKV{}))
	_, err := v.Activate(context.Background())
	require.NoError(t, err)

	assert.False(t, v.CanDelete())
	_, err = v.HandleDelete(context.Background())
	assert.ErrorIs(t, err, ErrNothingToDelete)

	v.files = entries("resumes/a.pdf")
	assert.True(t, v.CanDelete())

	v.deleting = true
	assert.False(t, v.CanDelete())
	assert.Equal(t, "Wiping...", v.State().ButtonLabel)
	_, err = v.HandleDelete(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
}

func TestWipeStopsAtFirstFailureAndSkipsFlush(t *testing.T) {
	fs := &fakeFS{
		files:      entries("f1", "f2", "f3"),
		failDelete: map[string]error{"f2": errors.New("permission denied")},
	}
	store := &fakeKV{items: []platform.KVItem{{Key: "resume:r1", Value: "{}"}}}
	v := NewWipeView(userFacade(fs, store))
	_, err := v.Activate(context.Background())
	require.NoError(t, err)

	report, err := v.HandleDelete(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"f1", "f2"}, fs.attempted)
	assert.Equal(t, []string{"f1"}, fs.deleted)
	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, "f2", report.FailedPath)
	assert.False(t, report.Flushed)
	require.Error(t, report.Err)
	assert.Equal(t, 0, store.flushed)
	assert.Len(t, store.items, 1)

	snap := v.State()
	assert.Equal(t, MessageFailed, snap.Message)
	assert.Equal(t, ToneFailure, snap.Tone)
	assert.False(t, snap.Deleting)
	assert.Equal(t, WipeReady, snap.State)
	assert.Len(t, snap.Files, 3, "file list is not reloaded after a failure")
}

func TestWipeSuccessFlushesAndReloads(t *testing.T) {
	fs := &fakeFS{files: entries("resumes/r1/cv.pdf", "images/r1/p.png")}
	store := &fakeKV{items: []platform.KVItem{{Key: "resume:r1", Value: "{}"}}}
	v := NewWipeView(userFacade(fs, store))
	_, err := v.Activate(context.Background())
	require.NoError(t, err)
	require.Len(t, v.State().Files, 2)

	report, err := v.HandleDelete(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Flushed)
	assert.NoError(t, report.Err)
	assert.Equal(t, []string{"resumes/r1/cv.pdf", "images/r1/p.png"}, report.Deleted)
	assert.Equal(t, 1, store.flushed)

	snap := v.State()
	assert.Equal(t, MessageWiped, snap.Message)
	assert.Equal(t, ToneSuccess, snap.Tone)
	assert.Empty(t, snap.Files)
	assert.False(t, snap.CanDelete)
	assert.Equal(t, "Wipe App Data", snap.ButtonLabel)
}

func TestWipeFlushFailureIsReported(t *testing.T) {
	fs := &fakeFS{}
	store := &fakeKV{flushErr: errors.New("db down")}

	report := Wipe(context.Background(), fs, store, entries("a"))

	assert.Equal(t, []string{"a"}, report.Deleted)
	assert.False(t, report.Flushed)
	assert.Empty(t, report.FailedPath)
	assert.Contains(t, report.Failure, "flush")
}

func TestWipeWithoutStoreSkipsFlush(t *testing.T) {
	fs := &fakeFS{}

	report := Wipe(context.Background(), fs, nil, entries("a", "b"))

	assert.Equal(t, []string{"a", "b"}, report.Deleted)
	assert.False(t, report.Flushed)
	assert.NoError(t, report.Err)
}

func TestWipeStatusFailureShowsErrorThenRetry(t *testing.T) {
	healthy := false
	check := platform.Check{Name: "storage", Ping: func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("timeout")
	}}
	fs := &fakeFS{files: entries("a.pdf")}
	v := NewWipeView(userFacade(fs, &fakeKV{}, check))

	_, err := v.Activate(context.Background())
	require.NoError(t, err)
	snap := v.State()
	assert.Equal(t, WipeError, snap.State)
	assert.Contains(t, snap.Error, "storage unavailable")
	assert.Empty(t, snap.Files)

	healthy = true
	require.NoError(t, v.Retry(context.Background()))
	snap = v.State()
	assert.Equal(t, WipeReady, snap.State)
	assert.Empty(t, snap.Error)
	assert.Len(t, snap.Files, 1)
	assert.Equal(t, "1.0 KiB", snap.Files[0].Size)
}

func TestWipeLoadFilesFailureKeepsPreviousSet(t *testing.T) {
	fs := &fakeFS{files: entries("a.pdf")}
	v := NewWipeView(userFacade(fs, &fakeKV{}))
	_, err := v.Activate(context.Background())
	require.NoError(t, err)

	fs.readDirErr = errors.New("list failed")
	assert.Error(t, v.LoadFiles(context.Background()))
	assert.Len(t, v.State().Files, 1)
}

func TestWipeClosedViewIgnoresUpdates(t *testing.T) {
	fs := &fakeFS{files: entries("a.pdf")}
	v := NewWipeView(userFacade(fs, &fakeKV{}))
	_, err := v.Activate(context.Background())
	require.NoError(t, err)

	v.Close()
	fs.files = entries("a.pdf", "b.pdf")
	assert.ErrorIs(t, v.LoadFiles(context.Background()), ErrViewClosed)
	assert.Len(t, v.State().Files, 1)
}
