// Package views tracks named view paths that have gone stale after a
// mutation. It is an in-process signal: downstream consumers poll or drain
// the registry and refetch what they rendered.
package views

import (
	"sync"
	"time"
)

// DashboardPath is invalidated after every successful mutation.
const DashboardPath = "/dashboard"

// AccountPath returns the view path for a single account page.
func AccountPath(accountID string) string {
	return "/account/" + accountID
}

// Registry is an in-memory stale-path set, safe for concurrent use. Data is
// lost on restart, which is fine: consumers refetch on cold start anyway.
type Registry struct {
	mu    sync.RWMutex
	stale map[string]time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		stale: make(map[string]time.Time),
	}
}

// Invalidate marks a view path stale, recording when it happened.
func (r *Registry) Invalidate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stale[path] = time.Now()
}

// Stale reports whether a path is currently marked stale.
func (r *Registry) Stale(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.stale[path]
	return ok
}

// Consume clears a path's stale mark and reports whether it was set. A
// consumer calls this right before refetching.
func (r *Registry) Consume(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.stale[path]
	if ok {
		delete(r.stale, path)
	}
	return ok
}

// Paths returns a snapshot of all currently stale paths.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.stale))
	for p := range r.stale {
		out = append(out, p)
	}
	return out
}
