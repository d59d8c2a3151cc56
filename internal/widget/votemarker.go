package widget

import (
	"strconv"
	"sync"

	"github.com/article-engagement-api/internal/models"
)

// VoteMarkers stores the per-browser "already rated" token.
//
// The marker is trusted client state and nothing more: clearing it, or using
// another browser, lets the same person vote again. The store performs no
// deduplication. Real vote integrity would need the uniqueness check moved
// server side behind an authenticated identity.
type VoteMarkers interface {
	Get(articleID string) (int, bool)
	Set(articleID string, value int) error
}

// MarkerKey is the storage key of an article's vote marker
func MarkerKey(articleID string) string {
	return "rated_" + articleID
}

// ParseMarker reads a stored star value, rejecting anything outside 1..5
func ParseMarker(raw string) (int, bool) {
	v, err := strconv.Atoi(raw)
	if err != nil || v < models.MinRating || v > models.MaxRating {
		return 0, false
	}
	return v, true
}

// MemoryVoteMarkers keeps vote markers in memory
type MemoryVoteMarkers struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryVoteMarkers creates an empty marker store
func NewMemoryVoteMarkers() *MemoryVoteMarkers {
	return &MemoryVoteMarkers{values: make(map[string]string)}
}

// Get returns the stored star value for an article
func (m *MemoryVoteMarkers) Get(articleID string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ParseMarker(m.values[MarkerKey(articleID)])
}

// Set stores the star value for an article
func (m *MemoryVoteMarkers) Set(articleID string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[MarkerKey(articleID)] = strconv.Itoa(value)
	return nil
}

// Raw returns the stored string under key, as a browser would show it
func (m *MemoryVoteMarkers) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}
