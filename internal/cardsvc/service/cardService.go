package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/cardforge/card-services/internal/cardsvc/models"
	"github.com/cardforge/card-services/internal/cardsvc/store"
	"github.com/cardforge/card-services/internal/cardsvc/ws"
	"github.com/cardforge/card-services/internal/comm"
)

// ErrCardNotFound is returned for lookups of ids the collection never held
// or no longer holds.
var ErrCardNotFound = errors.New("card not found")

// CardService owns the lifecycle of cards: save/update, duplicate, delete,
// and the release of blob-store artwork a deleted card owned.
type CardService struct {
	cards *store.CardStore
	blobs *store.BlobStore
	hub   *ws.Hub
}

func NewCardService(cards *store.CardStore, blobs *store.BlobStore, hub *ws.Hub) *CardService {
	return &CardService{cards: cards, blobs: blobs, hub: hub}
}

func (s *CardService) List(ctx context.Context) ([]models.Card, error) {
	return s.cards.List(ctx)
}

func (s *CardService) Get(ctx context.Context, id string) (*models.Card, error) {
	return s.cards.Get(ctx, id)
}

// Save persists a card. A card without an id is new: it gets its id and
// creation time here, exactly once. Enum fields are normalized before the
// write so the collection never holds out-of-set values.
func (s *CardService) Save(ctx context.Context, card models.Card) (*models.Card, error) {
	if strings.TrimSpace(card.Title) == "" {
		return nil, models.ErrInvalidRecord
	}

	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now().UTC()
	}
	card = models.Renormalize(card)

	if err := s.cards.Upsert(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to save card: %w", err)
	}

	s.hub.Broadcast("card_saved", comm.CardEvent{CardId: card.ID, Title: card.Title})
	return &card, nil
}

// Duplicate clones a card under a new identity. Blob-backed artwork is
// copied so the original and the duplicate each own an independent blob;
// deleting one can never take artwork away from the other.
func (s *CardService) Duplicate(ctx context.Context, id string) (*models.Card, error) {
	orig, err := s.cards.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if orig == nil {
		return nil, ErrCardNotFound
	}

	dup := *orig
	dup.ID = uuid.New().String()
	dup.Title = orig.Title + " (Copy)"
	dup.CreatedAt = time.Now().UTC()

	if store.IsBlobRef(orig.Image) {
		data, meta, err := s.blobs.Open(store.BlobId(orig.Image))
		if err != nil {
			log.Warnf("duplicate of %s keeps placeholder, artwork unreadable: %v", id, err)
			dup.Image = models.PlaceholderImage
		} else {
			ref, err := s.blobs.Save(data, meta.MimeType, meta.OriginalName)
			if err != nil {
				return nil, fmt.Errorf("failed to copy artwork: %w", err)
			}
			dup.Image = ref
		}
	}

	if err := s.cards.Upsert(ctx, dup); err != nil {
		return nil, fmt.Errorf("failed to save duplicate: %w", err)
	}

	s.hub.Broadcast("card_saved", comm.CardEvent{CardId: dup.ID, Title: dup.Title})
	return &dup, nil
}

// Delete removes a card and releases its blob-store artwork when no other
// card still references it. Unknown ids are not an error.
func (s *CardService) Delete(ctx context.Context, id string) error {
	return s.DeleteMany(ctx, []string{id})
}

func (s *CardService) DeleteMany(ctx context.Context, ids []string) error {
	refs := make(map[string]string, len(ids))
	for _, id := range ids {
		card, err := s.cards.Get(ctx, id)
		if err != nil {
			return err
		}
		if card != nil && store.IsBlobRef(card.Image) {
			refs[id] = card.Image
		}
	}

	if err := s.cards.DeleteMany(ctx, ids); err != nil {
		return fmt.Errorf("failed to delete cards: %w", err)
	}

	for id, ref := range refs {
		inUse, err := s.cards.ReferencesImage(ctx, ref, id)
		if err != nil {
			return err
		}
		if inUse {
			continue
		}
		if err := s.blobs.Delete(ref); err != nil {
			// The card is gone either way; an orphaned blob is the
			// lesser failure.
			log.Warnf("failed to release artwork %s: %v", ref, err)
		}
	}

	s.hub.Broadcast("card_deleted", comm.CardsDeleted{CardIds: ids})
	return nil
}

// UploadImage stores a single uploaded artwork file and returns its logical
// reference, for the editor flow.
func (s *CardService) UploadImage(ctx context.Context, data []byte, mimeType, name string) (string, error) {
	ref, err := s.blobs.Save(data, mimeType, name)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return ref, nil
}

// ResolveImage maps a stored reference to a displayable locator.
func (s *CardService) ResolveImage(ref string) (string, error) {
	return s.blobs.Resolve(ref)
}
