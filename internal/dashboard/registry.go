package dashboard

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"resume-tracker/internal/shared/metrics"
	"resume-tracker/internal/shared/telemetry"
)

const DefaultViewTTL = 15 * time.Minute

type mounted struct {
	view     View
	lastSeen time.Time
}

// Registry holds mounted views by id. Views not touched within the TTL are
// closed by a periodic sweep.
type Registry struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	views map[string]*mounted

	cron *cron.Cron
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultViewTTL
	}
	return &Registry{ttl: ttl, now: time.Now, views: make(map[string]*mounted)}
}

// Start schedules the sweep, plus any extra housekeeping jobs, on spec,
// a cron expression such as "@every 1m".
func (r *Registry) Start(spec string, jobs ...func()) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { r.Sweep() }); err != nil {
		return err
	}
	for _, job := range jobs {
		if _, err := c.AddFunc(spec, job); err != nil {
			return err
		}
	}
	r.cron = c
	c.Start()
	return nil
}

// Stop halts the sweep and closes every mounted view.
func (r *Registry) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*mounted)
	r.mu.Unlock()
	for _, m := range views {
		m.view.Close()
		metrics.ViewMounted(-1)
	}
}

func (r *Registry) Mount(v View) {
	r.mu.Lock()
	r.views[v.ID()] = &mounted{view: v, lastSeen: r.now()}
	r.mu.Unlock()
	metrics.ViewMounted(1)
}

// Get returns the view if it exists and belongs to owner, refreshing its TTL.
func (r *Registry) Get(owner, id string) (View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.views[id]
	if !ok || m.view.Owner() != owner {
		return nil, ErrViewNotFound
	}
	m.lastSeen = r.now()
	return m.view, nil
}

// Unmount closes the view. Unknown ids and foreign owners yield ErrViewNotFound.
func (r *Registry) Unmount(owner, id string) error {
	r.mu.Lock()
	m, ok := r.views[id]
	if !ok || m.view.Owner() != owner {
		r.mu.Unlock()
		return ErrViewNotFound
	}
	delete(r.views, id)
	r.mu.Unlock()

	m.view.Close()
	metrics.ViewMounted(-1)
	return nil
}

// Sweep closes views idle for longer than the TTL and returns how many it closed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	var expired []View
	r.mu.Lock()
	for id, m := range r.views {
		if m.lastSeen.Before(cutoff) {
			expired = append(expired, m.view)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()

	for _, v := range expired {
		v.Close()
		metrics.ViewMounted(-1)
	}
	if len(expired) > 0 {
		telemetry.Info("dashboard.views_expired", map[string]any{"count": len(expired)})
	}
	return len(expired)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}
