package dashboard

import (
	"context"
	"net/http"
	"sync"

	"resume-tracker/internal/platform"
	"resume-tracker/internal/resumes"
	"resume-tracker/internal/shared/telemetry"
)

const (
	PlaceholderImage = "/images/placeholder-resume.png"
	UntitledResume   = "Untitled Resume"
)

// BlobReader is the part of the file store a card needs.
type BlobReader interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

// Card renders one resume with a lazily loaded preview.
// The preview source falls back from the object URL of the stored image to
// the raw image path and finally to the placeholder.
type Card struct {
	owner string

	mu          sync.Mutex
	resume      resumes.Resume
	objectURL   string
	urls        *platform.ObjectURLs
	renderError bool
	closed      bool
}

func NewCard(owner string, r resumes.Resume) *Card {
	return &Card{owner: owner, resume: r}
}

func (c *Card) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resume.ID
}

// LoadPreview reads the image blob and exposes it through an object URL.
// Read failures and absent blobs leave the fallback chain in place.
func (c *Card) LoadPreview(ctx context.Context, fs BlobReader, urls *platform.ObjectURLs) {
	c.mu.Lock()
	imagePath := c.resume.ImagePath
	closed := c.closed
	c.mu.Unlock()
	if closed || imagePath == "" {
		return
	}

	data, err := fs.Read(ctx, imagePath)
	if err != nil {
		telemetry.Warn("dashboard.preview_load_failed", map[string]any{
			"resume_id":  c.ID(),
			"image_path": imagePath,
			"error":      err,
		})
		return
	}
	if len(data) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.resume.ImagePath != imagePath {
		return
	}
	if c.objectURL != "" && c.urls != nil {
		c.urls.Revoke(c.objectURL)
	}
	c.objectURL = urls.Create(c.owner, data, http.DetectContentType(data))
	c.urls = urls
	c.renderError = false
}

// Update replaces the record. A changed image path releases the current preview.
func (c *Card) Update(r resumes.Resume) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r.ImagePath != c.resume.ImagePath {
		c.releaseLocked()
		c.renderError = false
	}
	c.resume = r
}

// Source is the image the card displays right now.
func (c *Card) Source() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sourceLocked()
}

func (c *Card) sourceLocked() string {
	switch {
	case c.renderError:
		return PlaceholderImage
	case c.objectURL != "":
		return c.objectURL
	case c.resume.ImagePath != "":
		return c.resume.ImagePath
	default:
		return PlaceholderImage
	}
}

// OnImageError records that the displayed source failed to render and
// returns the replacement source.
func (c *Card) OnImageError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sourceLocked() != PlaceholderImage {
		c.renderError = true
	}
	return PlaceholderImage
}

// Close releases the object URL. Previews that finish loading afterwards are discarded.
func (c *Card) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.releaseLocked()
}

func (c *Card) releaseLocked() {
	if c.objectURL != "" && c.urls != nil {
		c.urls.Revoke(c.objectURL)
	}
	c.objectURL = ""
}

type CardSnapshot struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Untitled bool    `json:"untitled"`
	JobTitle string  `json:"jobTitle,omitempty"`
	Href     string  `json:"href"`
	ImageSrc string  `json:"imageSrc"`
	ImageAlt string  `json:"imageAlt"`
	Score    float64 `json:"score"`
}

func (c *Card) Snapshot() CardSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := CardSnapshot{
		ID:       c.resume.ID,
		Title:    UntitledResume,
		Untitled: true,
		Href:     "/resume/" + c.resume.ID,
		ImageSrc: c.sourceLocked(),
		ImageAlt: "Resume preview",
		Score:    c.resume.Feedback.OverallScore,
	}
	if c.resume.CompanyName != nil && *c.resume.CompanyName != "" {
		snap.Title = *c.resume.CompanyName
		snap.ImageAlt = *c.resume.CompanyName
		snap.Untitled = false
		if c.resume.JobTitle != nil {
			snap.JobTitle = *c.resume.JobTitle
		}
	}
	return snap
}
