package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOwnerCheckAndUnmount(t *testing.T) {
	reg := NewRegistry(time.Minute)
	v := NewWipeView(userFacade(&fakeFS{}, &fakeKV{}))
	reg.Mount(v)

	got, err := reg.Get("user-1", v.ID())
	require.NoError(t, err)
	assert.Equal(t, v.ID(), got.ID())

	_, err = reg.Get("user-2", v.ID())
	assert.ErrorIs(t, err, ErrViewNotFound)
	assert.ErrorIs(t, reg.Unmount("user-2", v.ID()), ErrViewNotFound)

	require.NoError(t, reg.Unmount("user-1", v.ID()))
	assert.True(t, v.scope.Closed())
	assert.Equal(t, 0, reg.Len())
}

func TestRegistrySweepClosesIdleViews(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reg := NewRegistry(10 * time.Minute)
	reg.now = func() time.Time { return now }

	idle := NewWipeView(userFacade(&fakeFS{}, &fakeKV{}))
	active := NewWipeView(userFacade(&fakeFS{}, &fakeKV{}))
	reg.Mount(idle)
	reg.Mount(active)

	now = now.Add(8 * time.Minute)
	_, err := reg.Get("user-1", active.ID())
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, reg.Sweep())
	assert.True(t, idle.scope.Closed())
	assert.False(t, active.scope.Closed())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryStartRejectsBadSchedule(t *testing.T) {
	reg := NewRegistry(0)
	assert.Error(t, reg.Start("not a schedule"))
	require.NoError(t, reg.Start("@every 1m"))
	reg.Stop()
}
