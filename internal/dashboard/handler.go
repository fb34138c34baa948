package dashboard

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"resume-tracker/internal/platform"
	"resume-tracker/internal/resumes"
	"resume-tracker/internal/shared/server/middleware"
	"resume-tracker/internal/shared/server/respond"
	"resume-tracker/internal/shared/telemetry"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/images/placeholder-resume.png
var placeholderPNG []byte

// FacadeProvider builds the per-request platform facade.
type FacadeProvider interface {
	For(auth platform.AuthState) *platform.Facade
}

// ResumeSource reads stored resume records.
type ResumeSource interface {
	Lister
	Get(ctx context.Context, store platform.KeyValue, id string) (resumes.Resume, error)
}

type activator interface {
	View
	Activate(ctx context.Context) (Outcome, error)
}

// Handler serves the dashboard pages and the view API.
type Handler struct {
	Registry *Registry
	Platform FacadeProvider
	Resumes  ResumeSource
	URLs     *platform.ObjectURLs

	pages *template.Template
}

func NewHandler(reg *Registry, p FacadeProvider, src ResumeSource, urls *platform.ObjectURLs) *Handler {
	pages := template.Must(template.New("").Funcs(template.FuncMap{
		"score": func(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) },
		"dict":  dict,
	}).ParseFS(templateFS, "templates/*.html"))
	return &Handler{Registry: reg, Platform: p, Resumes: src, URLs: urls, pages: pages}
}

// RegisterPages attaches the HTML pages. They expect the Auth loader to have run.
func (h *Handler) RegisterPages(r gin.IRoutes) {
	r.GET(HomePath, h.homePage)
	r.GET(WipePath, h.wipePage)
	r.GET("/upload", h.uploadPage)
	r.GET("/resume/:id", h.resumePage)
	r.GET(PlaceholderImage, func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=86400")
		c.Data(http.StatusOK, "image/png", placeholderPNG)
	})
}

// RegisterAPI attaches the view API. The group must not require a session:
// unauthenticated mounts answer with a redirect body.
func (h *Handler) RegisterAPI(rg *gin.RouterGroup) {
	rg.POST("/views/home", h.mountHome)
	rg.POST("/views/wipe", h.mountWipe)
	rg.GET("/views/:id", h.requireUser, h.getView)
	rg.DELETE("/views/:id", h.requireUser, h.unmountView)
	rg.POST("/views/:id/delete", h.requireUser, h.deleteFiles)
	rg.POST("/views/:id/retry", h.requireUser, h.retry)
	rg.POST("/views/:id/cards/:resumeId/image-error", h.requireUser, h.imageError)
	rg.GET("/objects/:id", h.requireUser, h.object)
}

func (h *Handler) newHome(c *gin.Context) activator {
	return NewListingView(h.Platform.For(middleware.AuthStateFromContext(c)), h.Resumes, h.URLs)
}

func (h *Handler) newWipe(c *gin.Context) activator {
	return NewWipeView(h.Platform.For(middleware.AuthStateFromContext(c)))
}

// activate runs the view's entry flow and mounts it when it loaded.
func (h *Handler) activate(c *gin.Context, v activator) (Outcome, error) {
	c.Set("viewId", v.ID())
	outcome, err := v.Activate(c.Request.Context())
	if err != nil || outcome.Redirect != "" {
		v.Close()
		return outcome, err
	}
	h.Registry.Mount(v)
	return outcome, nil
}

func (h *Handler) mountHome(c *gin.Context) { h.mount(c, h.newHome(c)) }
func (h *Handler) mountWipe(c *gin.Context) { h.mount(c, h.newWipe(c)) }

func (h *Handler) mount(c *gin.Context, v activator) {
	outcome, err := h.activate(c, v)
	if err != nil {
		h.viewError(c, err)
		return
	}
	if outcome.Redirect != "" {
		respond.Redirect(c, outcome.Redirect)
		return
	}
	respond.Created(c, gin.H{"view": v.Snapshot()})
}

func (h *Handler) requireUser(c *gin.Context) {
	if middleware.UserIDFromContext(c) == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	c.Next()
}

func (h *Handler) lookup(c *gin.Context) (View, bool) {
	id := strings.TrimSpace(c.Param("id"))
	c.Set("viewId", id)
	v, err := h.Registry.Get(middleware.UserIDFromContext(c), id)
	if err != nil {
		h.viewError(c, err)
		return nil, false
	}
	return v, true
}

func (h *Handler) getView(c *gin.Context) {
	v, ok := h.lookup(c)
	if !ok {
		return
	}
	respond.OK(c, gin.H{"view": v.Snapshot()})
}

func (h *Handler) unmountView(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	c.Set("viewId", id)
	if err := h.Registry.Unmount(middleware.UserIDFromContext(c), id); err != nil {
		h.viewError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) deleteFiles(c *gin.Context) {
	v, ok := h.lookup(c)
	if !ok {
		return
	}
	wipe, ok := v.(*WipeView)
	if !ok {
		h.viewError(c, ErrWrongKind)
		return
	}
	// The deletion is governed by the view scope, not the request.
	report, err := wipe.HandleDelete(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		h.viewError(c, err)
		return
	}
	state := wipe.State()
	c.Set("viewState", string(state.State))
	respond.OK(c, gin.H{"report": report, "view": state})
}

func (h *Handler) retry(c *gin.Context) {
	v, ok := h.lookup(c)
	if !ok {
		return
	}
	var err error
	switch view := v.(type) {
	case *WipeView:
		err = view.Retry(c.Request.Context())
	case *ListingView:
		_, err = view.Activate(c.Request.Context())
	default:
		err = ErrWrongKind
	}
	if err != nil {
		h.viewError(c, err)
		return
	}
	respond.OK(c, gin.H{"view": v.Snapshot()})
}

func (h *Handler) imageError(c *gin.Context) {
	v, ok := h.lookup(c)
	if !ok {
		return
	}
	listing, ok := v.(*ListingView)
	if !ok {
		h.viewError(c, ErrWrongKind)
		return
	}
	resumeID := strings.TrimSpace(c.Param("resumeId"))
	c.Set("resumeId", resumeID)
	card, ok := listing.Card(resumeID)
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "card not found", nil)
		return
	}
	respond.OK(c, gin.H{"imageSrc": card.OnImageError()})
}

func (h *Handler) object(c *gin.Context) {
	blob, ok := h.URLs.Open(middleware.UserIDFromContext(c), c.Param("id"))
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "object not found", nil)
		return
	}
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}

func (h *Handler) viewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrViewNotFound):
		respond.Error(c, http.StatusNotFound, "view_not_found", "view not found", nil)
	case errors.Is(err, ErrBusy):
		respond.Error(c, http.StatusConflict, "busy", err.Error(), nil)
	case errors.Is(err, ErrNothingToDelete):
		respond.Error(c, http.StatusConflict, "nothing_to_delete", err.Error(), nil)
	case errors.Is(err, ErrWrongKind):
		respond.Error(c, http.StatusConflict, "wrong_view_kind", err.Error(), nil)
	case errors.Is(err, ErrViewClosed):
		respond.Error(c, http.StatusGone, "view_closed", err.Error(), nil)
	case errors.Is(err, platform.ErrUnauthenticated):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
	default:
		respond.Internal(c, "view action failed", err)
	}
}

type pageData struct {
	Title    string
	Username string
	ViewID   string
	View     any
	Resume   *resumes.Resume
}

func (h *Handler) homePage(c *gin.Context) {
	h.viewPage(c, h.newHome(c), "home.html", "Resumind")
}

func (h *Handler) wipePage(c *gin.Context) {
	h.viewPage(c, h.newWipe(c), "wipe.html", "Wipe App Data")
}

func (h *Handler) viewPage(c *gin.Context, v activator, name, title string) {
	outcome, err := h.activate(c, v)
	if err != nil {
		h.pageError(c, err)
		return
	}
	if outcome.Redirect != "" {
		c.Redirect(http.StatusFound, outcome.Redirect)
		return
	}
	h.render(c, name, pageData{
		Title:    title,
		Username: middleware.UserNameFromContext(c),
		ViewID:   v.ID(),
		View:     v.Snapshot(),
	})
}

func (h *Handler) uploadPage(c *gin.Context) {
	if middleware.UserIDFromContext(c) == "" {
		c.Redirect(http.StatusFound, AuthRedirect(c.Request.URL.Path))
		return
	}
	h.render(c, "upload.html", pageData{Title: "Upload Resume", Username: middleware.UserNameFromContext(c)})
}

func (h *Handler) resumePage(c *gin.Context) {
	if middleware.UserIDFromContext(c) == "" {
		c.Redirect(http.StatusFound, AuthRedirect(c.Request.URL.Path))
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	c.Set("resumeId", id)
	f := h.Platform.For(middleware.AuthStateFromContext(c))
	r, err := h.Resumes.Get(c.Request.Context(), f.KV, id)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			c.Redirect(http.StatusFound, HomePath)
			return
		}
		h.pageError(c, err)
		return
	}
	h.render(c, "resume.html", pageData{Title: "Resume Review", Username: middleware.UserNameFromContext(c), Resume: &r})
}

func (h *Handler) render(c *gin.Context, name string, data pageData) {
	c.Header("Cache-Control", "no-store")
	c.Render(http.StatusOK, render.HTML{Template: h.pages, Name: name, Data: data})
}

func (h *Handler) pageError(c *gin.Context, err error) {
	telemetry.Error("dashboard.page_failed", map[string]any{
		"path":       c.Request.URL.Path,
		"request_id": middleware.RequestIDFromContext(c),
		"user_id":    middleware.UserIDFromContext(c),
		"error":      err,
	})
	c.String(http.StatusInternalServerError, "Something went wrong. Please reload the page.")
}

func dict(pairs ...any) map[string]any {
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if k, ok := pairs[i].(string); ok {
			m[k] = pairs[i+1]
		}
	}
	return m
}
