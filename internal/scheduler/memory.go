package scheduler

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store. The HTTP layer seeds one per
// request from the state the viewer's client sends and reads the result
// back out; tests use it directly as a stand-in for a browser profile.
type MemoryStore struct {
	mu    sync.Mutex
	decks map[uuid.UUID][]uuid.UUID
	voted map[uuid.UUID]map[uuid.UUID]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		decks: make(map[uuid.UUID][]uuid.UUID),
		voted: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

func (m *MemoryStore) Deck(projectID uuid.UUID) ([]uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deck, ok := m.decks[projectID]
	return deck, ok
}

func (m *MemoryStore) SetDeck(projectID uuid.UUID, deck []uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decks[projectID] = deck
}

func (m *MemoryStore) Voted(projectID uuid.UUID) map[uuid.UUID]struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[uuid.UUID]struct{}, len(m.voted[projectID]))
	for id := range m.voted[projectID] {
		out[id] = struct{}{}
	}
	return out
}

func (m *MemoryStore) AddVoted(projectID, imageID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.voted[projectID] == nil {
		m.voted[projectID] = make(map[uuid.UUID]struct{})
	}
	m.voted[projectID][imageID] = struct{}{}
}
