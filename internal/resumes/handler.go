package resumes

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-tracker/internal/feedback"
	"resume-tracker/internal/platform"
	"resume-tracker/internal/shared/server/middleware"
	"resume-tracker/internal/shared/server/respond"
)

// FacadeProvider builds the per-request platform facade.
type FacadeProvider interface {
	For(auth platform.AuthState) *platform.Facade
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc      *Service
	Platform FacadeProvider
}

func NewHandler(svc *Service, p FacadeProvider) *Handler {
	return &Handler{Svc: svc, Platform: p}
}

// RegisterRoutes attaches resume routes to an authenticated router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.POST("/resumes", h.create)
}

type listResponse struct {
	Resumes []Resume `json:"resumes"`
	Skipped []string `json:"skipped,omitempty"`
}

func (h *Handler) list(c *gin.Context) {
	f := h.Platform.For(middleware.AuthStateFromContext(c))
	listing, err := h.Svc.List(c.Request.Context(), f.KV)
	if err != nil {
		respond.Internal(c, "failed to list resumes", err)
		return
	}
	respond.OK(c, listResponse{Resumes: listing.Resumes, Skipped: listing.Skipped})
}

func (h *Handler) get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	c.Set("resumeId", id)
	f := h.Platform.For(middleware.AuthStateFromContext(c))
	r, err := h.Svc.Get(c.Request.Context(), f.KV, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrMalformed):
			respond.Error(c, http.StatusUnprocessableEntity, "malformed_record", "stored resume record is malformed", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Internal(c, "failed to fetch resume", err)
		}
		return
	}
	respond.OK(c, r)
}

func (h *Handler) create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*maxUploadBytes+1<<20)

	resumeHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	resumeFile, err := readPart(resumeHeader)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	up := Upload{
		Resume:         resumeFile,
		CompanyName:    c.PostForm("companyName"),
		JobTitle:       c.PostForm("jobTitle"),
		JobDescription: c.PostForm("jobDescription"),
	}
	if imageHeader, err := c.FormFile("image"); err == nil {
		image, err := readPart(imageHeader)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read image", nil)
			return
		}
		up.Image = &image
	}

	f := h.Platform.For(middleware.AuthStateFromContext(c))
	r, err := h.Svc.Create(c.Request.Context(), f, up)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, feedback.ErrNotConfigured):
			respond.Error(c, http.StatusServiceUnavailable, "feedback_unavailable", "resume feedback is not configured", nil)
		case errors.Is(err, ErrMalformed), errors.Is(err, feedback.ErrInvalidOutput):
			respond.Error(c, http.StatusBadGateway, "feedback_invalid", "feedback provider returned an invalid result", nil)
		default:
			respond.Internal(c, "failed to create resume", err)
		}
		return
	}
	c.Set("resumeId", r.ID)
	respond.Created(c, r)
}

func readPart(h *multipart.FileHeader) (File, error) {
	file, err := h.Open()
	if err != nil {
		return File{}, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return File{}, err
	}
	contentType := h.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return File{Name: h.Filename, ContentType: contentType, Data: data}, nil
}
