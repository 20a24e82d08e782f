package dashboard

import (
	"sync"
	"time"
)

const defaultMaxViews = 256

// Registry keeps one View per session token so that a page reload still has
// the previously loaded list to fall back on.
type Registry struct {
	mu       sync.Mutex
	views    map[string]*entry
	newView  func() *View
	maxViews int
	nowFunc  func() time.Time
}

type entry struct {
	view     *View
	lastUsed time.Time
}

// NewRegistry returns a registry creating views with factory.
func NewRegistry(factory func() *View) *Registry {
	return &Registry{
		views:    map[string]*entry{},
		newView:  factory,
		maxViews: defaultMaxViews,
		nowFunc:  time.Now,
	}
}

// For returns the view of key, creating it if needed. When full, the least
// recently used view is evicted.
func (r *Registry) For(key string) *View {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	if e, ok := r.views[key]; ok {
		e.lastUsed = now
		return e.view
	}
	if len(r.views) >= r.maxViews {
		r.evictOldestLocked()
	}
	v := r.newView()
	r.views[key] = &entry{view: v, lastUsed: now}
	return v
}

// Drop forgets the view of key.
func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, key)
}

// Len is the number of live views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (r *Registry) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, e := range r.views {
		if oldestKey == "" || e.lastUsed.Before(oldest) {
			oldestKey, oldest = k, e.lastUsed
		}
	}
	delete(r.views, oldestKey)
}
