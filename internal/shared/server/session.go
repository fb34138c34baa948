package server

import (
	"github.com/gin-gonic/gin"

	"resume-tracker/internal/shared/server/middleware"
	"resume-tracker/internal/shared/server/respond"
)

type sessionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Picture  string `json:"picture,omitempty"`
}

type sessionResponse struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	User            *sessionUser `json:"user"`
}

// sessionHandler reports the auth state. Anonymous callers get 200 with isAuthenticated=false.
func sessionHandler(c *gin.Context) {
	state := middleware.AuthStateFromContext(c)
	resp := sessionResponse{IsAuthenticated: state.IsAuthenticated}
	if state.IsAuthenticated {
		resp.User = &sessionUser{
			ID:       state.UserID(),
			Username: state.Username(),
			Email:    middleware.UserEmailFromContext(c),
			Picture:  middleware.UserPictureFromContext(c),
		}
	}
	respond.OK(c, resp)
}
