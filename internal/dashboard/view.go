package dashboard

import (
	"github.com/google/uuid"

	"resume-tracker/internal/platform"
)

const (
	KindHome = "home"
	KindWipe = "wipe"
)

// View is a mounted dashboard page.
type View interface {
	ID() string
	Owner() string
	Kind() string
	Snapshot() any
	Close()
}

type viewBase struct {
	id     string
	kind   string
	facade *platform.Facade
	scope  *Scope
}

func newViewBase(kind string, f *platform.Facade) viewBase {
	return viewBase{id: uuid.NewString(), kind: kind, facade: f, scope: NewScope()}
}

func (b *viewBase) ID() string    { return b.id }
func (b *viewBase) Kind() string  { return b.kind }
func (b *viewBase) Owner() string { return b.facade.Auth.UserID() }
func (b *viewBase) Close()        { b.scope.Close() }
