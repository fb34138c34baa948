package dashboard

import (
	"context"
	"sync"

	"resume-tracker/internal/platform"
	"resume-tracker/internal/resumes"
	"resume-tracker/internal/shared/telemetry"
)

// Lister loads stored resume records.
type Lister interface {
	List(ctx context.Context, store platform.KeyValue) (resumes.Listing, error)
}

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
)

// EmptyState is the call to action shown when there are no resumes.
type EmptyState struct {
	Message    string `json:"message"`
	UploadHref string `json:"uploadHref"`
	WipeHref   string `json:"wipeHref"`
}

var emptyState = EmptyState{
	Message:    "No resumes found. Upload your first resume to get feedback.",
	UploadHref: "/upload",
	WipeHref:   WipePath,
}

// ListingView is the home page listing every stored resume.
type ListingView struct {
	viewBase
	lister Lister
	urls   *platform.ObjectURLs

	mu      sync.Mutex
	phase   Phase
	cards   []*Card
	skipped []string
	loadErr string
}

func NewListingView(f *platform.Facade, lister Lister, urls *platform.ObjectURLs) *ListingView {
	v := &ListingView{
		viewBase: newViewBase(KindHome, f),
		lister:   lister,
		urls:     urls,
		phase:    PhaseIdle,
	}
	v.scope.OnClose(v.closeCards)
	return v
}

// Activate redirects anonymous sessions, then loads the listing and card previews.
func (v *ListingView) Activate(ctx context.Context) (Outcome, error) {
	if !v.facade.Auth.IsAuthenticated {
		return Outcome{Redirect: AuthRedirect(HomePath)}, nil
	}
	ctx, cancel := v.scope.Bind(ctx)
	defer cancel()

	v.mu.Lock()
	v.phase = PhaseLoading
	v.mu.Unlock()

	listing, err := v.lister.List(ctx, v.facade.KV)

	// Checked under v.mu: Close marks the scope before closeCards takes the
	// lock, so cards built here are always seen by closeCards.
	v.mu.Lock()
	if v.scope.Closed() {
		v.mu.Unlock()
		return Outcome{}, ErrViewClosed
	}
	v.applyLocked(listing, err)
	cards := append([]*Card(nil), v.cards...)
	v.mu.Unlock()

	if err != nil {
		telemetry.Warn("dashboard.listing_failed", map[string]any{"view_id": v.id, "error": err})
	}

	for _, card := range cards {
		if v.scope.Closed() {
			return Outcome{}, ErrViewClosed
		}
		card.LoadPreview(ctx, v.facade.FS, v.urls)
	}
	return Outcome{}, nil
}

// applyLocked reconciles cards with the listing, keeping cards whose record is still present.
func (v *ListingView) applyLocked(listing resumes.Listing, err error) {
	v.phase = PhaseReady
	v.loadErr = ""
	if err != nil {
		v.loadErr = "Failed to load resumes"
	}
	existing := make(map[string]*Card, len(v.cards))
	for _, c := range v.cards {
		existing[c.ID()] = c
	}
	next := make([]*Card, 0, len(listing.Resumes))
	for _, r := range listing.Resumes {
		if c, ok := existing[r.ID]; ok {
			c.Update(r)
			delete(existing, r.ID)
			next = append(next, c)
			continue
		}
		next = append(next, NewCard(v.Owner(), r))
	}
	for _, c := range existing {
		c.Close()
	}
	v.cards = next
	v.skipped = listing.Skipped
}

// Card returns the mounted card for a resume id.
func (v *ListingView) Card(resumeID string) (*Card, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, c := range v.cards {
		if c.ID() == resumeID {
			return c, true
		}
	}
	return nil, false
}

func (v *ListingView) closeCards() {
	v.mu.Lock()
	cards := v.cards
	v.mu.Unlock()
	for _, c := range cards {
		c.Close()
	}
}

type ListingSnapshot struct {
	ID           string         `json:"id"`
	Kind         string         `json:"kind"`
	Phase        Phase          `json:"phase"`
	Loading      bool           `json:"loading"`
	Username     string         `json:"username"`
	Cards        []CardSnapshot `json:"cards"`
	Empty        *EmptyState    `json:"empty,omitempty"`
	ShowWipeLink bool           `json:"showWipeLink"`
	Skipped      []string       `json:"skipped,omitempty"`
	Error        string         `json:"error,omitempty"`
}

func (v *ListingView) Snapshot() any {
	return v.State()
}

// State is the typed form of Snapshot.
func (v *ListingView) State() ListingSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	snap := ListingSnapshot{
		ID:       v.id,
		Kind:     v.kind,
		Phase:    v.phase,
		Loading:  v.phase == PhaseLoading,
		Username: v.facade.Auth.Username(),
		Cards:    make([]CardSnapshot, 0, len(v.cards)),
		Skipped:  v.skipped,
		Error:    v.loadErr,
	}
	if v.phase != PhaseReady {
		return snap
	}
	for _, c := range v.cards {
		snap.Cards = append(snap.Cards, c.Snapshot())
	}
	if len(snap.Cards) == 0 {
		empty := emptyState
		snap.Empty = &empty
	} else {
		snap.ShowWipeLink = true
	}
	return snap
}
