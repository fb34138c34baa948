package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"resume-tracker/internal/platform"
	"resume-tracker/internal/shared/metrics"
	"resume-tracker/internal/shared/telemetry"
)

// FileDeleter is the part of the file store the wipe fold uses.
type FileDeleter interface {
	Delete(ctx context.Context, path string) error
}

// Flusher clears every key-value record of the user.
type Flusher interface {
	Flush(ctx context.Context) error
}

// WipeReport describes how far a wipe got.
type WipeReport struct {
	Attempted  int      `json:"attempted"`
	Deleted    []string `json:"deleted"`
	FailedPath string   `json:"failedPath,omitempty"`
	Flushed    bool     `json:"flushed"`
	Failure    string   `json:"error,omitempty"`
	Err        error    `json:"-"`
}

func (r *WipeReport) fail(err error) {
	r.Err = err
	r.Failure = err.Error()
}

// foldUntilError applies step to items in order and stops at the first error,
// returning how many steps succeeded.
func foldUntilError[T any](items []T, step func(T) error) (int, error) {
	done := 0
	for _, item := range items {
		if err := step(item); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}

// Wipe deletes files one at a time in listed order. The first failure stops
// the fold: later files are not attempted and the key-value store is not
// flushed. Deletions already applied stay applied. A nil store skips the
// flush and leaves Flushed false.
func Wipe(ctx context.Context, fs FileDeleter, store Flusher, files []platform.FileEntry) WipeReport {
	report := WipeReport{Deleted: make([]string, 0, len(files))}
	_, err := foldUntilError(files, func(f platform.FileEntry) error {
		report.Attempted++
		if err := fs.Delete(ctx, f.Path); err != nil {
			report.FailedPath = f.Path
			return fmt.Errorf("delete %s: %w", f.Path, err)
		}
		report.Deleted = append(report.Deleted, f.Path)
		metrics.IncFilesDeleted()
		return nil
	})
	if err != nil {
		report.fail(err)
		return report
	}
	if store == nil {
		return report
	}
	if err := store.Flush(ctx); err != nil {
		report.fail(fmt.Errorf("flush key-value store: %w", err))
		return report
	}
	report.Flushed = true
	return report
}

type WipeState string

const (
	WipeIdle     WipeState = "idle"
	WipeLoading  WipeState = "loading"
	WipeReady    WipeState = "ready"
	WipeDeleting WipeState = "deleting"
	WipeError    WipeState = "error"
)

type Tone string

const (
	ToneNone    Tone = ""
	TonePending Tone = "pending"
	ToneSuccess Tone = "success"
	ToneFailure Tone = "failure"
)

const (
	MessageDeleting = "Deleting all app data..."
	MessageWiped    = "All app data wiped successfully ✅"
	MessageFailed   = "Error while deleting files ❌"
)

// WipeView lists the user's files and deletes them on confirmation.
type WipeView struct {
	viewBase

	mu       sync.Mutex
	state    WipeState
	files    []platform.FileEntry
	deleting bool
	message  string
	tone     Tone
	report   *WipeReport
}

func NewWipeView(f *platform.Facade) *WipeView {
	return &WipeView{viewBase: newViewBase(KindWipe, f), state: WipeIdle}
}

// Activate checks the session and the backends, then lists the files.
func (v *WipeView) Activate(ctx context.Context) (Outcome, error) {
	if !v.facade.Auth.IsAuthenticated {
		return Outcome{Redirect: AuthRedirect(WipePath)}, nil
	}
	ctx, cancel := v.scope.Bind(ctx)
	defer cancel()

	v.setState(WipeLoading)
	checkErr := v.facade.Status.Check(ctx)
	if v.scope.Closed() {
		return Outcome{}, ErrViewClosed
	}
	if checkErr != nil {
		telemetry.Warn("wipe.status_check_failed", map[string]any{"view_id": v.id, "error": checkErr})
		v.setState(WipeError)
		return Outcome{}, nil
	}
	if err := v.LoadFiles(ctx); err == ErrViewClosed {
		return Outcome{}, err
	}
	v.setState(WipeReady)
	return Outcome{}, nil
}

// LoadFiles replaces the held file set. On failure the error is logged and
// the previous set is kept.
func (v *WipeView) LoadFiles(ctx context.Context) error {
	entries, err := v.facade.FS.ReadDir(ctx, "./")
	if v.scope.Closed() {
		return ErrViewClosed
	}
	if err != nil {
		telemetry.Warn("wipe.load_files_failed", map[string]any{"view_id": v.id, "error": err})
		return err
	}
	v.mu.Lock()
	v.files = entries
	v.mu.Unlock()
	return nil
}

// CanDelete is false when there are no files or a deletion is running.
func (v *WipeView) CanDelete() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.canDeleteLocked()
}

func (v *WipeView) canDeleteLocked() bool {
	return !v.deleting && len(v.files) > 0
}

// HandleDelete runs the wipe over the held files and reloads the listing on success.
func (v *WipeView) HandleDelete(ctx context.Context) (WipeReport, error) {
	v.mu.Lock()
	switch {
	case v.deleting:
		v.mu.Unlock()
		return WipeReport{}, ErrBusy
	case len(v.files) == 0:
		v.mu.Unlock()
		return WipeReport{}, ErrNothingToDelete
	}
	v.deleting = true
	v.state = WipeDeleting
	v.message = MessageDeleting
	v.tone = TonePending
	files := append([]platform.FileEntry(nil), v.files...)
	v.mu.Unlock()

	ctx, cancel := v.scope.Bind(ctx)
	defer cancel()

	metrics.IncWipeStarted()
	start := time.Now()
	report := Wipe(ctx, v.facade.FS, v.facade.KV, files)
	metrics.ObserveWipeDurationMs(metrics.SinceMillis(start))

	fields := map[string]any{
		"view_id":   v.id,
		"user_id":   v.Owner(),
		"attempted": report.Attempted,
		"deleted":   len(report.Deleted),
		"flushed":   report.Flushed,
	}
	if report.Err != nil {
		metrics.IncWipeFailed()
		fields["failed_path"] = report.FailedPath
		fields["error"] = report.Err
		telemetry.Error("wipe.failed", fields)
	} else {
		metrics.IncWipeCompleted()
		telemetry.Info("wipe.completed", fields)
	}

	if v.scope.Closed() {
		return report, ErrViewClosed
	}

	v.mu.Lock()
	v.report = &report
	if report.Err != nil {
		v.message = MessageFailed
		v.tone = ToneFailure
	} else {
		v.message = MessageWiped
		v.tone = ToneSuccess
	}
	v.mu.Unlock()

	if report.Err == nil {
		if err := v.LoadFiles(ctx); err == ErrViewClosed {
			return report, err
		}
	}

	v.mu.Lock()
	v.deleting = false
	v.state = WipeReady
	v.mu.Unlock()
	return report, nil
}

// Retry clears the standing error and lists the files again.
func (v *WipeView) Retry(ctx context.Context) error {
	ctx, cancel := v.scope.Bind(ctx)
	defer cancel()

	v.facade.Status.ClearError()
	if err := v.LoadFiles(ctx); err == ErrViewClosed {
		return err
	}
	v.mu.Lock()
	if !v.deleting {
		v.state = WipeReady
	}
	v.mu.Unlock()
	return nil
}

func (v *WipeView) setState(s WipeState) {
	v.mu.Lock()
	v.state = s
	v.mu.Unlock()
}

type FileView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Size string `json:"size"`
}

type WipeSnapshot struct {
	ID          string      `json:"id"`
	Kind        string      `json:"kind"`
	State       WipeState   `json:"state"`
	Loading     bool        `json:"loading"`
	Username    string      `json:"username"`
	Files       []FileView  `json:"files"`
	TotalSize   string      `json:"totalSize"`
	Deleting    bool        `json:"deleting"`
	CanDelete   bool        `json:"canDelete"`
	ButtonLabel string      `json:"buttonLabel"`
	Message     string      `json:"message,omitempty"`
	Tone        Tone        `json:"tone,omitempty"`
	Error       string      `json:"error,omitempty"`
	LastReport  *WipeReport `json:"lastReport,omitempty"`
}

func (v *WipeView) Snapshot() any {
	return v.State()
}

// State is the typed form of Snapshot. A standing facade error puts the view in WipeError.
func (v *WipeView) State() WipeSnapshot {
	standing := v.facade.Status.Error()
	checking := v.facade.Status.IsLoading()

	v.mu.Lock()
	defer v.mu.Unlock()
	snap := WipeSnapshot{
		ID:          v.id,
		Kind:        v.kind,
		State:       v.state,
		Username:    v.facade.Auth.Username(),
		Files:       make([]FileView, 0, len(v.files)),
		Deleting:    v.deleting,
		CanDelete:   v.canDeleteLocked(),
		ButtonLabel: "Wipe App Data",
		Message:     v.message,
		Tone:        v.tone,
		Error:       standing,
		LastReport:  v.report,
	}
	if standing != "" {
		snap.State = WipeError
	}
	snap.Loading = snap.State == WipeLoading || checking
	if v.deleting {
		snap.ButtonLabel = "Wiping..."
	}
	var total uint64
	for _, f := range v.files {
		size := uint64(0)
		if f.SizeBytes > 0 {
			size = uint64(f.SizeBytes)
		}
		total += size
		snap.Files = append(snap.Files, FileView{ID: f.ID, Name: f.Name, Path: f.Path, Size: humanize.IBytes(size)})
	}
	snap.TotalSize = humanize.IBytes(total)
	return snap
}
