package auth

import (
	"html/template"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	sharedauth "resume-tracker/internal/shared/auth"
	"resume-tracker/internal/shared/server/middleware"
	"resume-tracker/internal/shared/server/respond"
	"resume-tracker/internal/shared/telemetry"
	"resume-tracker/internal/users"
)

// Options configures the sign-in entry points.
type Options struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	// DevLogin enables the username form when Google is not configured.
	DevLogin     bool
	SecureCookie bool
}

// Service owns the auth entry point, the session cookie and logout.
type Service struct {
	users        *users.Service
	google       *googleProvider
	devLogin     bool
	secureCookie bool
}

func NewService(opts Options, userSvc *users.Service) *Service {
	return &Service{
		users:        userSvc,
		google:       newGoogleProvider(opts.GoogleClientID, opts.GoogleClientSecret, opts.GoogleRedirectURL),
		devLogin:     opts.DevLogin,
		secureCookie: opts.SecureCookie,
	}
}

// RegisterRoutes attaches the sign-in routes. The Auth loader must run first.
func (s *Service) RegisterRoutes(r gin.IRoutes) {
	r.GET("/auth", s.entry)
	r.GET("/auth/google/callback", s.googleCallback)
	r.POST("/auth/dev", s.devSignIn)
	r.POST("/auth/logout", s.logout)
}

// SafeNext keeps next only when it is a path on this site.
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

func (s *Service) entry(c *gin.Context) {
	next := SafeNext(c.Query("next"))
	if middleware.UserIDFromContext(c) != "" {
		c.Redirect(http.StatusFound, next)
		return
	}
	switch {
	case s.google != nil:
		s.google.start(c, next)
	case s.devLogin:
		c.Header("Cache-Control", "no-store")
		c.Status(http.StatusOK)
		c.Header("Content-Type", "text/html; charset=utf-8")
		_ = devLoginPage.Execute(c.Writer, gin.H{"Next": next})
	default:
		respond.Error(c, http.StatusServiceUnavailable, "auth_not_configured", "sign in is not configured", nil)
	}
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._-]{0,39}$`)

func (s *Service) devSignIn(c *gin.Context) {
	if !s.devLogin {
		respond.Error(c, http.StatusNotFound, "not_found", "dev sign in is disabled", nil)
		return
	}
	username := strings.TrimSpace(c.PostForm("username"))
	if !usernamePattern.MatchString(username) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "username must be 1-40 letters, digits, spaces, dots, dashes or underscores", nil)
		return
	}
	id := "dev:" + strings.ToLower(strings.ReplaceAll(username, " ", "-"))
	s.signIn(c, users.User{ID: id, Username: username}, SafeNext(c.PostForm("next")), http.StatusSeeOther)
}

// signIn upserts the profile, issues the session cookie and redirects to next.
func (s *Service) signIn(c *gin.Context, user users.User, next string, status int) {
	if err := s.users.UpsertFromAuth(c.Request.Context(), user); err != nil {
		respond.Internal(c, "failed to save user", err)
		return
	}
	token, err := sharedauth.SignJWT(sharedauth.Claims{
		Sub:      user.ID,
		Username: user.Username,
		Email:    user.Email,
		Picture:  user.PictureURL,
	})
	if err != nil {
		respond.Internal(c, "failed to issue token", err)
		return
	}
	s.setSessionCookie(c, token, int(sharedauth.SessionTTL.Seconds()))
	telemetry.Info("auth.signed_in", map[string]any{"user_id": user.ID})
	c.Redirect(status, SafeNext(next))
}

func (s *Service) logout(c *gin.Context) {
	s.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Service) setSessionCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

var devLoginPage = template.Must(template.New("dev-login").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Sign in</title></head>
<body>
<main>
  <h1>Sign in</h1>
  <form method="post" action="/auth/dev">
    <input type="hidden" name="next" value="{{.Next}}">
    <label for="username">Username</label>
    <input type="text" id="username" name="username" required maxlength="40">
    <button type="submit">Continue</button>
  </form>
</main>
</body>
</html>
`))
