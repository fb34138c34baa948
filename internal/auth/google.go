package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"resume-tracker/internal/shared/server/respond"
	"resume-tracker/internal/shared/telemetry"
	"resume-tracker/internal/users"
)

var userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type googleProvider struct {
	oauthConfig *oauth2.Config
	stateTTL    time.Duration
	states      *stateStore
}

func newGoogleProvider(clientID, clientSecret, redirectURL string) *googleProvider {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil
	}
	return &googleProvider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		stateTTL: 5 * time.Minute,
		states:   newStateStore(),
	}
}

// start sends the browser to Google. next travels in the server-side state entry.
func (p *googleProvider) start(c *gin.Context, next string) {
	state := uuid.NewString()
	p.states.put(state, next, time.Now().Add(p.stateTTL))
	c.Redirect(http.StatusFound, p.oauthConfig.AuthCodeURL(state))
}

func (s *Service) googleCallback(c *gin.Context) {
	if s.google == nil {
		respond.Error(c, http.StatusNotFound, "not_found", "google sign in is not configured", nil)
		return
	}
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	next, ok := s.google.states.consume(state)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.google.oauthConfig.Exchange(ctx, code)
	if err != nil {
		telemetry.Warn("auth.google_exchange_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}

	info, err := s.google.fetchUserInfo(ctx, token)
	if err != nil {
		telemetry.Warn("auth.google_userinfo_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}
	if info.Sub == "" {
		respond.Error(c, http.StatusBadGateway, "auth_failed", "invalid user profile", nil)
		return
	}

	username := info.Name
	if username == "" {
		username = info.Email
	}
	s.signIn(c, users.User{
		ID:         "google:" + info.Sub,
		Username:   username,
		Email:      info.Email,
		FullName:   info.Name,
		PictureURL: info.Picture,
	}, next, http.StatusFound)
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (p *googleProvider) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := p.oauthConfig.Client(ctx, token)
	resp, err := client.Get(userInfoURL)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}

	// The v2 endpoint returns "id" rather than "sub".
	if info.Sub == "" {
		info.Sub = info.ID
	}
	return info, nil
}

type pendingState struct {
	next string
	exp  time.Time
}

type stateStore struct {
	items map[string]pendingState
	mu    sync.Mutex
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]pendingState)}
}

func (s *stateStore) put(state, next string, exp time.Time) {
	s.mu.Lock()
	s.items[state] = pendingState{next: next, exp: exp}
	s.mu.Unlock()
}

// consume returns the stored next path. Each state is usable once.
func (s *stateStore) consume(state string) (string, bool) {
	s.mu.Lock()
	item, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	s.mu.Unlock()
	if !ok || time.Now().After(item.exp) {
		return "", false
	}
	return item.next, true
}
