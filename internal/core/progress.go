package core

import (
	"sync"

	"nova/internal/domain"
)

// ProgressTracker holds the observable set of in-flight runtime preparations,
// keyed by profile ID. An entry exists for exactly the duration of one
// preparation; it is removed the moment the work completes or fails.
type ProgressTracker struct {
	mu     sync.Mutex
	active map[string]domain.ProgressEvent
}

// NewProgressTracker creates an empty tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{active: make(map[string]domain.ProgressEvent)}
}

// Set records the latest progress event for a profile.
func (t *ProgressTracker) Set(profileID string, ev domain.ProgressEvent) {
	t.mu.Lock()
	t.active[profileID] = ev
	t.mu.Unlock()
}

// Clear removes a profile from the observable set.
func (t *ProgressTracker) Clear(profileID string) {
	t.mu.Lock()
	delete(t.active, profileID)
	t.mu.Unlock()
}

// Get returns the latest event for a profile, if one is in flight.
func (t *ProgressTracker) Get(profileID string) (domain.ProgressEvent, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ev, ok := t.active[profileID]
	return ev, ok
}

// IsPreparing reports whether a preparation is in flight for the profile.
func (t *ProgressTracker) IsPreparing(profileID string) bool {
	_, ok := t.Get(profileID)
	return ok
}

// Active returns a snapshot of all in-flight preparations.
func (t *ProgressTracker) Active() map[string]domain.ProgressEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	snapshot := make(map[string]domain.ProgressEvent, len(t.active))
	for id, ev := range t.active {
		snapshot[id] = ev
	}
	return snapshot
}
