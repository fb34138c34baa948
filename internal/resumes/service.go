package resumes

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"resume-tracker/internal/extract"
	"resume-tracker/internal/feedback"
	"resume-tracker/internal/kv"
	"resume-tracker/internal/platform"
	"resume-tracker/internal/shared/metrics"
	"resume-tracker/internal/shared/telemetry"
	"resume-tracker/internal/shared/util"
)

const maxUploadBytes = 10 << 20

// File is an uploaded payload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Upload is a new resume submission.
type Upload struct {
	Resume         File
	Image          *File
	CompanyName    string
	JobTitle       string
	JobDescription string
}

// Listing is the result of reading every stored record.
type Listing struct {
	Resumes []Resume
	// Skipped holds the keys of records that failed to parse.
	Skipped []string
}

type Service struct {
	Scorer feedback.Scorer
	NewID  func() string
}

func NewService(scorer feedback.Scorer) *Service {
	return &Service{Scorer: scorer, NewID: uuid.NewString}
}

// List reads all records in store order. Malformed records are skipped and reported.
func (s *Service) List(ctx context.Context, store platform.KeyValue) (Listing, error) {
	items, err := store.List(ctx, Pattern, true)
	if err != nil {
		return Listing{}, fmt.Errorf("list resumes: %w", err)
	}
	out := Listing{Resumes: make([]Resume, 0, len(items))}
	for _, item := range items {
		r, err := Parse(item.Value)
		if err != nil {
			out.Skipped = append(out.Skipped, item.Key)
			telemetry.Warn("resumes.skip_malformed", map[string]any{
				"key":   item.Key,
				"error": err,
			})
			continue
		}
		out.Resumes = append(out.Resumes, r)
	}
	metrics.IncResumeListings()
	metrics.IncResumeParseFailures(len(out.Skipped))
	return out, nil
}

func (s *Service) Get(ctx context.Context, store platform.KeyValue, id string) (Resume, error) {
	if strings.TrimSpace(id) == "" {
		return Resume{}, ErrInvalidInput
	}
	value, err := store.Get(ctx, Key(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, fmt.Errorf("get resume %s: %w", id, err)
	}
	return Parse(value)
}

// Create stores the uploaded files, scores the resume and saves the record.
// Files written before a failure are removed again.
func (s *Service) Create(ctx context.Context, f *platform.Facade, up Upload) (_ Resume, err error) {
	if err := validateUpload(up); err != nil {
		return Resume{}, err
	}
	text, err := extract.TextFromBytes(ctx, up.Resume.Data, up.Resume.ContentType, up.Resume.Name)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupported) || errors.Is(err, extract.ErrEmpty) {
			return Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return Resume{}, fmt.Errorf("extract resume text: %w", err)
	}

	var written []string
	defer func() {
		if err != nil {
			discardFiles(context.WithoutCancel(ctx), f.FS, written)
		}
	}()

	id := s.NewID()
	resumeName, _ := util.SanitizeFileName(up.Resume.Name)
	resumeEntry, err := f.FS.Write(ctx, path.Join("resumes", id, resumeName), up.Resume.ContentType, up.Resume.Data)
	if err != nil {
		return Resume{}, fmt.Errorf("store resume file: %w", err)
	}
	written = append(written, resumeEntry.Path)

	record := Resume{
		ID:             id,
		CompanyName:    optional(up.CompanyName),
		JobTitle:       optional(up.JobTitle),
		JobDescription: strings.TrimSpace(up.JobDescription),
		ResumePath:     resumeEntry.Path,
	}
	if up.Image != nil {
		imageName, _ := util.SanitizeFileName(up.Image.Name)
		imageEntry, err := f.FS.Write(ctx, path.Join("images", id, imageName), up.Image.ContentType, up.Image.Data)
		if err != nil {
			return Resume{}, fmt.Errorf("store preview image: %w", err)
		}
		record.ImagePath = imageEntry.Path
		written = append(written, imageEntry.Path)
	}

	raw, err := s.Scorer.Score(ctx, feedback.Input{
		ResumeText:     text,
		CompanyName:    up.CompanyName,
		JobTitle:       up.JobTitle,
		JobDescription: up.JobDescription,
	})
	if err != nil {
		return Resume{}, fmt.Errorf("score resume: %w", err)
	}
	record.Feedback, err = ParseFeedback(raw)
	if err != nil {
		return Resume{}, fmt.Errorf("score resume: %w", err)
	}

	value, err := Encode(record)
	if err != nil {
		return Resume{}, err
	}
	if err := f.KV.Set(ctx, Key(id), value); err != nil {
		return Resume{}, fmt.Errorf("save resume %s: %w", id, err)
	}
	telemetry.Info("resumes.created", map[string]any{
		"resume_id":     id,
		"user_id":       f.Auth.UserID(),
		"overall_score": record.Feedback.OverallScore,
		"has_image":     record.ImagePath != "",
	})
	return record, nil
}

func discardFiles(ctx context.Context, fs platform.FileSystem, paths []string) {
	for _, p := range paths {
		if err := fs.Delete(ctx, p); err != nil {
			telemetry.Warn("resumes.cleanup_failed", map[string]any{"path": p, "error": err})
		}
	}
}

func validateUpload(up Upload) error {
	if len(up.Resume.Data) == 0 {
		return fmt.Errorf("%w: resume file is required", ErrInvalidInput)
	}
	if len(up.Resume.Data) > maxUploadBytes {
		return fmt.Errorf("%w: resume file exceeds %d bytes", ErrInvalidInput, maxUploadBytes)
	}
	if _, err := util.SanitizeFileName(up.Resume.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if up.Image != nil {
		if len(up.Image.Data) == 0 || len(up.Image.Data) > maxUploadBytes {
			return fmt.Errorf("%w: preview image must be between 1 and %d bytes", ErrInvalidInput, maxUploadBytes)
		}
		if !strings.HasPrefix(up.Image.ContentType, "image/") {
			return fmt.Errorf("%w: preview must be an image", ErrInvalidInput)
		}
		if _, err := util.SanitizeFileName(up.Image.Name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
