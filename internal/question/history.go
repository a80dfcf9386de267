package question

import (
	"context"
	"sync"
)

// HistoryStore persists short titles of delivered questions so later calls
// can avoid repeats. The production implementation is an external document
// store; failures here are best-effort and never abort a generation response
// that was already computed.
type HistoryStore interface {
	SaveShortTitle(ctx context.Context, userID, shortTitle string) error
}

// MemoryHistory is an in-memory HistoryStore used for wiring and tests.
type MemoryHistory struct {
	mu     sync.Mutex
	titles map[string][]string
}

// NewMemoryHistory returns an empty in-memory history store.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{titles: make(map[string][]string)}
}

// SaveShortTitle appends a short title to the user's history.
func (h *MemoryHistory) SaveShortTitle(_ context.Context, userID, shortTitle string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.titles[userID] = append(h.titles[userID], shortTitle)
	return nil
}

// Titles returns a copy of the titles recorded for a user.
func (h *MemoryHistory) Titles(userID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.titles[userID]...)
}
