package mapview

import (
	"sync"

	"pm25map/internal/forecast"
)

// Target receives published collections.
type Target interface {
	Update(pc forecast.PointCollection)
}

// Hub fans published collections out to attached views and replays the
// current one to views attached later.
type Hub struct {
	// publishMu orders publications; mu guards current and targets.
	publishMu sync.Mutex
	mu        sync.Mutex
	current   *forecast.PointCollection
	targets   map[Target]struct{}
}

func NewHub() *Hub {
	return &Hub{targets: make(map[Target]struct{})}
}

// Publish makes pc current and delivers it to every target attached at that
// moment. Targets are updated concurrently and outside the hub lock, so a
// stalled view delays Publish by at most its own write timeout and never
// blocks the other views or Attach/Detach.
func (h *Hub) Publish(pc forecast.PointCollection) {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.Lock()
	h.current = &pc
	targets := make([]Target, 0, len(h.targets))
	for t := range h.targets {
		targets = append(targets, t)
	}
	h.mu.Unlock()

	var wg sync.WaitGroup
	for _, t := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t.Update(pc)
		}()
	}
	wg.Wait()
}

// Attach registers t and replays the current collection to it. The replay
// runs under the hub lock so it can never land after a newer publication.
func (h *Hub) Attach(t Target) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.targets[t] = struct{}{}
	if h.current != nil {
		t.Update(*h.current)
	}
}

func (h *Hub) Detach(t Target) {
	h.mu.Lock()
	delete(h.targets, t)
	h.mu.Unlock()
}

// Len reports the number of attached targets.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.targets)
}
