package dashboard

import (
	"errors"
	"net/url"
)

const (
	HomePath = "/"
	WipePath = "/wipe"
	AuthPath = "/auth"
)

var (
	ErrBusy            = errors.New("a deletion is already in progress")
	ErrNothingToDelete = errors.New("no files to delete")
	ErrViewClosed      = errors.New("view is closed")
	ErrViewNotFound    = errors.New("view not found")
	ErrWrongKind       = errors.New("view does not support this action")
)

// AuthRedirect returns the auth entry point that returns to next after sign in.
func AuthRedirect(next string) string {
	return AuthPath + "?next=" + url.QueryEscape(next)
}

// Outcome is the result of activating a view. A non-empty Redirect means the
// view did not load and the caller must navigate there.
type Outcome struct {
	Redirect string `json:"redirect,omitempty"`
}
