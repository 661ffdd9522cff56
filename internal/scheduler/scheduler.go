package scheduler

import (
	"math/rand"

	"github.com/google/uuid"
)

// Status of a viewer's voting session for one project.
type Status string

const (
	// StatusVoting means at least one unvoted image remains.
	StatusVoting Status = "voting"
	// StatusComplete means every deck entry has been voted on.
	StatusComplete Status = "complete"
	// StatusNoImages means the project has no images at all; distinct
	// from a completed session.
	StatusNoImages Status = "no_images"
)

// Store is the viewer-local persistence behind the scheduler: a deck
// order and a voted-set, both keyed by project. There is no server-side
// voter session; implementations hold whatever the viewer's client
// hands back.
type Store interface {
	Deck(projectID uuid.UUID) ([]uuid.UUID, bool)
	SetDeck(projectID uuid.UUID, deck []uuid.UUID)
	Voted(projectID uuid.UUID) map[uuid.UUID]struct{}
	AddVoted(projectID, imageID uuid.UUID)
}

// Session is the reconciled view of one viewer's traversal.
type Session struct {
	Deck   []uuid.UUID
	Voted  []uuid.UUID
	Status Status
	// Next is the current position: the first deck entry not yet voted.
	// Zero when Status is not StatusVoting.
	Next uuid.UUID
}

// Scheduler computes a stable, shuffled, resumable traversal of a
// project's images for one viewer.
type Scheduler struct {
	store Store
}

func New(store Store) *Scheduler {
	return &Scheduler{store: store}
}

// Reconcile resolves the persisted deck against the current image set
// and returns the session view. The rules:
//
//  1. No persisted deck: shuffle the full set and persist it.
//  2. Images deleted since last visit: drop the missing identities,
//     preserving the relative order of the rest.
//  3. Images added since last visit: regenerate a fresh permutation of
//     the full current set. The voted-set is independent state and is
//     never reset by a regeneration.
//
// Repeated calls without an intervening vote return the same Next.
func (s *Scheduler) Reconcile(projectID uuid.UUID, current []uuid.UUID) Session {
	voted := s.store.Voted(projectID)

	if len(current) == 0 {
		s.store.SetDeck(projectID, nil)
		return Session{Status: StatusNoImages, Voted: votedSlice(voted)}
	}

	currentSet := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}

	deck, ok := s.store.Deck(projectID)
	if !ok || len(deck) == 0 {
		deck = shuffled(current)
	} else {
		kept := deck[:0:0]
		for _, id := range deck {
			if _, exists := currentSet[id]; exists {
				kept = append(kept, id)
			}
		}
		if len(kept) < len(current) {
			// New images exist. Blending them into the old order would be
			// inconsistent, so the whole deck is reshuffled; votes are
			// idempotent per identity, so reordering unvoted images is safe.
			deck = shuffled(current)
		} else {
			deck = kept
		}
	}

	s.store.SetDeck(projectID, deck)

	session := Session{Deck: deck, Voted: votedSlice(voted), Status: StatusComplete}
	for _, id := range deck {
		if _, ok := voted[id]; !ok {
			session.Next = id
			session.Status = StatusVoting
			break
		}
	}

	return session
}

// MarkVoted records an image in the viewer's voted-set. The deck is
// untouched; the next Reconcile advances past it.
func (s *Scheduler) MarkVoted(projectID, imageID uuid.UUID) {
	s.store.AddVoted(projectID, imageID)
}

func shuffled(ids []uuid.UUID) []uuid.UUID {
	deck := make([]uuid.UUID, len(ids))
	copy(deck, ids)
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

func votedSlice(voted map[uuid.UUID]struct{}) []uuid.UUID {
	if len(voted) == 0 {
		return nil
	}
	out := make([]uuid.UUID, 0, len(voted))
	for id := range voted {
		out = append(out, id)
	}
	return out
}
