// Package platform provides the per-user facade the dashboard flows run against:
// authentication state, a file store rooted at the user's storage namespace,
// a key-value store and a connectivity status with a standing error.
package platform

import (
	"context"
	"errors"

	"resume-tracker/internal/kv"
	"resume-tracker/internal/shared/storage/object"
	"resume-tracker/internal/shared/util"
)

// ErrUnauthenticated is returned by the file and key-value stores of an anonymous facade.
var ErrUnauthenticated = errors.New("platform: not authenticated")

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type AuthState struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	User            *User `json:"user,omitempty"`
}

// Anonymous returns the unauthenticated state.
func Anonymous() AuthState {
	return AuthState{}
}

// Authenticated returns a signed-in state for the user.
func Authenticated(id, username string) AuthState {
	return AuthState{IsAuthenticated: true, User: &User{ID: id, Username: username}}
}

// UserID returns the signed-in user id or "".
func (a AuthState) UserID() string {
	if !a.IsAuthenticated || a.User == nil {
		return ""
	}
	return a.User.ID
}

// Username returns the signed-in username or "".
func (a AuthState) Username() string {
	if !a.IsAuthenticated || a.User == nil {
		return ""
	}
	return a.User.Username
}

// Facade is the explicit collaborator handed to each flow.
type Facade struct {
	Auth   AuthState
	FS     FileSystem
	KV     KeyValue
	Status *Status
}

// Provider builds facades over the configured backends.
type Provider struct {
	Store  object.ObjectStore
	KV     kv.Repo
	Checks []Check
	URLs   *ObjectURLs
}

// For returns a facade for the given auth state. Anonymous facades get stores
// that fail with ErrUnauthenticated.
func (p *Provider) For(auth AuthState) *Facade {
	f := &Facade{
		Auth:   auth,
		Status: NewStatus(p.Checks...),
	}
	userID := auth.UserID()
	if userID == "" {
		f.Auth = Anonymous()
		f.FS = deniedFS{}
		f.KV = deniedKV{}
		return f
	}
	f.FS = NewStoreFS(p.Store, util.HashUserKey(userID))
	f.KV = NewUserKV(p.KV, userID)
	return f
}

type deniedFS struct{}

func (deniedFS) Read(context.Context, string) ([]byte, error) { return nil, ErrUnauthenticated }
func (deniedFS) ReadDir(context.Context, string) ([]FileEntry, error) {
	return nil, ErrUnauthenticated
}
func (deniedFS) Delete(context.Context, string) error { return ErrUnauthenticated }
func (deniedFS) Write(context.Context, string, string, []byte) (FileEntry, error) {
	return FileEntry{}, ErrUnauthenticated
}

type deniedKV struct{}

func (deniedKV) List(context.Context, string, bool) ([]KVItem, error) {
	return nil, ErrUnauthenticated
}
func (deniedKV) Get(context.Context, string) (string, error) { return "", ErrUnauthenticated }
func (deniedKV) Set(context.Context, string, string) error   { return ErrUnauthenticated }
func (deniedKV) Flush(context.Context) error                 { return ErrUnauthenticated }
