package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cardforge/card-services/internal/cardsvc/models"
)

const collectionFile = "cards.json"

// CardStore keeps the ordered card collection in a single JSON document.
// Every mutation rewrites the whole document; there is no incremental
// persistence, so a read after a write always observes the write.
type CardStore struct {
	path string

	mu          sync.Mutex
	cards       []models.Card
	initialized bool
}

func NewCardStore(dir string) *CardStore {
	return &CardStore{path: filepath.Join(dir, collectionFile)}
}

// Init loads the persisted collection. A missing file is an empty
// collection, not an error. Loaded cards are re-normalized so enum values
// written by an older schema degrade to defaults instead of leaking into
// rendering.
func (s *CardStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to prepare collection dir: %w", err)
	}

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.cards = []models.Card{}
		s.initialized = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read collection: %w", err)
	}

	var cards []models.Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		return fmt.Errorf("failed to decode collection: %w", err)
	}
	for i := range cards {
		cards[i] = models.Renormalize(cards[i])
	}

	s.cards = cards
	s.initialized = true
	return nil
}

// List returns the collection in insertion order.
func (s *CardStore) List(ctx context.Context) ([]models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, ErrStorageUnavailable
	}

	out := make([]models.Card, len(s.cards))
	copy(out, s.cards)
	return out, nil
}

// Get returns the card with the given id, or nil when it does not exist.
func (s *CardStore) Get(ctx context.Context, id string) (*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, ErrStorageUnavailable
	}

	for i := range s.cards {
		if s.cards[i].ID == id {
			c := s.cards[i]
			return &c, nil
		}
	}
	return nil, nil
}

// Upsert replaces the card with the same id in place, or appends when the id
// is new, then persists the whole collection.
func (s *CardStore) Upsert(ctx context.Context, card models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrStorageUnavailable
	}

	replaced := false
	for i := range s.cards {
		if s.cards[i].ID == card.ID {
			s.cards[i] = card
			replaced = true
			break
		}
	}
	if !replaced {
		s.cards = append(s.cards, card)
	}

	return s.persistLocked()
}

// DeleteOne removes a card by id. A missing id is not an error.
func (s *CardStore) DeleteOne(ctx context.Context, id string) error {
	return s.DeleteMany(ctx, []string{id})
}

// DeleteMany removes every card whose id is in ids. Missing ids are skipped.
func (s *CardStore) DeleteMany(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrStorageUnavailable
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := s.cards[:0]
	for _, c := range s.cards {
		if !drop[c.ID] {
			kept = append(kept, c)
		}
	}
	s.cards = kept

	return s.persistLocked()
}

// ReferencesImage reports whether any card other than excludeId still uses
// the given image reference.
func (s *CardStore) ReferencesImage(ctx context.Context, ref, excludeId string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return false, ErrStorageUnavailable
	}

	for i := range s.cards {
		if s.cards[i].ID != excludeId && s.cards[i].Image == ref {
			return true, nil
		}
	}
	return false, nil
}

func (s *CardStore) persistLocked() error {
	raw, err := json.MarshalIndent(s.cards, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	if err := writeFileAtomic(s.path, raw); err != nil {
		return fmt.Errorf("failed to persist collection: %w", err)
	}
	return nil
}
