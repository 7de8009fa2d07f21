package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/internal/store"
	"go-hirestream-backend/pkg/logger"
)

// UpdateType tags a cache update pushed to subscribers.
type UpdateType string

const (
	UpdateUpsert UpdateType = "upsert"
	UpdateEvict  UpdateType = "evict"
)

// Update is one cache change fanned out to realtime subscribers. Application
// is nil for evictions; ID is always set.
type Update struct {
	Type          UpdateType          `json:"type"`
	ApplicationID string              `json:"application_id"`
	Application   *domain.Application `json:"application,omitempty"`
}

const updateBuffer = 32

// Cache is the reconciled, join-enriched view of the applications
// collection. Until the first resync completes (and again after every
// subscription gap) incoming events are buffered and replayed on top of the
// fresh snapshot, so a stale event can never clobber refetched state.
type Cache struct {
	jobs       domain.JobRepository
	candidates domain.CandidateRepository
	fetch      func(ctx context.Context) ([]domain.Application, error)

	mu     sync.RWMutex
	apps   map[string]*domain.Application
	live   bool
	buffer []store.Event
	subs   map[chan Update]struct{}
}

func NewCache(
	jobs domain.JobRepository,
	candidates domain.CandidateRepository,
	fetch func(ctx context.Context) ([]domain.Application, error),
) *Cache {
	return &Cache{
		jobs:       jobs,
		candidates: candidates,
		fetch:      fetch,
		apps:       make(map[string]*domain.Application),
		subs:       make(map[chan Update]struct{}),
	}
}

// Resync refetches the full applications set and rebuilds the cache,
// replaying any events buffered while the snapshot was loading. Records that
// cannot be enriched are dropped from the snapshot.
func (c *Cache) Resync(ctx context.Context) error {
	c.mu.Lock()
	c.live = false
	c.mu.Unlock()

	apps, err := c.fetch(ctx)
	if err != nil {
		return err
	}

	fresh := make(map[string]*domain.Application, len(apps))
	for i := range apps {
		app := apps[i]
		if err := c.enrich(ctx, &app); err != nil {
			logger.Log.Warn("dropping application from realtime snapshot",
				"application_id", app.ID, "error", err)
			continue
		}
		fresh[app.ID] = &app
	}

	c.mu.Lock()
	old := c.apps
	c.apps = fresh
	buffered := c.buffer
	c.buffer = nil
	c.mu.Unlock()

	for _, ev := range buffered {
		c.apply(ctx, ev)
	}

	c.mu.Lock()
	c.live = true
	// Records that vanished across the gap get explicit eviction notices.
	for id := range old {
		if _, ok := c.apps[id]; !ok {
			c.notify(Update{Type: UpdateEvict, ApplicationID: id})
		}
	}
	for id, app := range c.apps {
		c.notify(Update{Type: UpdateUpsert, ApplicationID: id, Application: app})
	}
	c.mu.Unlock()
	return nil
}

// Apply ingests one change-feed event. Events arriving before the cache is
// live are buffered for replay after the snapshot lands.
func (c *Cache) Apply(ctx context.Context, ev store.Event) {
	c.mu.Lock()
	if !c.live {
		c.buffer = append(c.buffer, ev)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.apply(ctx, ev)
}

func (c *Cache) apply(ctx context.Context, ev store.Event) {
	if ev.Op == store.OpDelete {
		c.mu.Lock()
		_, present := c.apps[ev.Record.ID]
		delete(c.apps, ev.Record.ID)
		if present && c.live {
			c.notify(Update{Type: UpdateEvict, ApplicationID: ev.Record.ID})
		}
		c.mu.Unlock()
		return
	}

	var app domain.Application
	if err := json.Unmarshal(ev.Record.Data, &app); err != nil {
		logger.Log.Warn("malformed application event", "record_id", ev.Record.ID, "error", err)
		return
	}
	if app.ID == "" {
		app.ID = ev.Record.ID
	}

	if err := c.enrich(ctx, &app); err != nil {
		// The joined view cannot be built; serving the bare record would
		// show partial data, so the entry is evicted instead.
		logger.Log.Warn("evicting application after failed enrichment",
			"application_id", app.ID, "error", err)
		c.mu.Lock()
		_, present := c.apps[app.ID]
		delete(c.apps, app.ID)
		if present && c.live {
			c.notify(Update{Type: UpdateEvict, ApplicationID: app.ID})
		}
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.apps[app.ID] = &app
	if c.live {
		c.notify(Update{Type: UpdateUpsert, ApplicationID: app.ID, Application: &app})
	}
	c.mu.Unlock()
}

func (c *Cache) enrich(ctx context.Context, app *domain.Application) error {
	job, err := c.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return err
	}
	candidate, err := c.candidates.GetByUserID(ctx, app.CandidateID)
	if err != nil {
		return err
	}
	app.Job = job
	app.Candidate = candidate
	return nil
}

// Get returns the enriched application, or false when it is not cached.
func (c *Cache) Get(id string) (*domain.Application, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	app, ok := c.apps[id]
	if !ok {
		return nil, false
	}
	cp := *app
	return &cp, true
}

// Snapshot returns a copy of every cached application.
func (c *Cache) Snapshot() []domain.Application {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Application, 0, len(c.apps))
	for _, app := range c.apps {
		out = append(out, *app)
	}
	return out
}

// Subscribe registers a realtime listener. The returned cancel function must
// be called when the listener goes away. Slow listeners have updates dropped
// rather than blocking the feed.
func (c *Cache) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, updateBuffer)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subs[ch]; ok {
			delete(c.subs, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// notify is called with c.mu held.
func (c *Cache) notify(u Update) {
	for ch := range c.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
