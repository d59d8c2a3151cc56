// Package realtime fans store change notifications out to subscribers.
//
// A notification carries no data, only the store path that changed.
// Subscribers reload the full value of the path and receive it as a snapshot.
package realtime

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hub is an in-process topic registry keyed by store path
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[*watcher]struct{}
	log    zerolog.Logger
}

type watcher struct {
	// buffered(1): pending wake-ups coalesce while the subscriber reloads
	wake chan struct{}
}

// NewHub creates an empty hub
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[*watcher]struct{}),
		log:    log.With().Str("component", "realtime_hub").Logger(),
	}
}

// watch registers interest in path. The returned func unregisters it.
func (h *Hub) watch(path string) (*watcher, func()) {
	w := &watcher{wake: make(chan struct{}, 1)}

	h.mu.Lock()
	set, ok := h.topics[path]
	if !ok {
		set = make(map[*watcher]struct{})
		h.topics[path] = set
	}
	set[w] = struct{}{}
	h.mu.Unlock()

	return w, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.topics[path]; ok {
			delete(set, w)
			if len(set) == 0 {
				delete(h.topics, path)
			}
		}
	}
}

// Publish wakes every watcher of path. It never blocks.
func (h *Hub) Publish(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.topics[path]
	for w := range set {
		notify(w)
	}
	h.log.Debug().Str("path", path).Int("watchers", len(set)).Msg("Change published")
}

// PublishAll wakes every watcher, used after notifications may have been lost
func (h *Hub) PublishAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, set := range h.topics {
		for w := range set {
			notify(w)
		}
	}
}

// Watchers returns the number of watchers registered on path
func (h *Hub) Watchers(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[path])
}

func notify(w *watcher) {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}
