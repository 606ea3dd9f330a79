package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardforge/card-services/internal/cardsvc/models"
)

func newTestCardStore(t *testing.T) (*CardStore, string) {
	t.Helper()
	dir := t.TempDir()
	s := NewCardStore(dir)
	require.NoError(t, s.Init())
	return s, dir
}

func card(id, title string) models.Card {
	return models.Card{
		ID:            id,
		Title:         title,
		Color:         models.DefaultColor,
		Layout:        models.DefaultLayout,
		Font:          models.DefaultFont,
		Texture:       models.DefaultTexture,
		ImagePosition: models.DefaultImagePosition,
		Image:         models.PlaceholderImage,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestCardStoreEmptyCollection(t *testing.T) {
	t.Parallel()

	s, _ := newTestCardStore(t)
	cards, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestCardStoreRequiresInit(t *testing.T) {
	t.Parallel()

	s := NewCardStore(t.TempDir())
	_, err := s.List(context.Background())
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestCardStoreUpsertAppendsAndReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestCardStore(t)

	require.NoError(t, s.Upsert(ctx, card("a", "First")))
	require.NoError(t, s.Upsert(ctx, card("b", "Second")))

	// Replacing keeps the position.
	updated := card("a", "First, renamed")
	require.NoError(t, s.Upsert(ctx, updated))

	cards, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "First, renamed", cards[0].Title)
	assert.Equal(t, "Second", cards[1].Title)
}

func TestCardStoreUpsertIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestCardStore(t)

	c := card("a", "Stable")
	require.NoError(t, s.Upsert(ctx, c))
	require.NoError(t, s.Upsert(ctx, c))
	require.NoError(t, s.Upsert(ctx, c))

	cards, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Stable", cards[0].Title)
}

func TestCardStoreDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestCardStore(t)

	require.NoError(t, s.Upsert(ctx, card("a", "A")))
	require.NoError(t, s.Upsert(ctx, card("b", "B")))
	require.NoError(t, s.Upsert(ctx, card("c", "C")))

	require.NoError(t, s.DeleteOne(ctx, "b"))
	require.NoError(t, s.DeleteOne(ctx, "unknown")) // not an error

	cards, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	for _, c := range cards {
		assert.NotEqual(t, "b", c.ID)
	}

	require.NoError(t, s.DeleteMany(ctx, []string{"a", "c", "unknown"}))
	cards, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestCardStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, dir := newTestCardStore(t)

	require.NoError(t, s.Upsert(ctx, card("a", "Survivor")))

	// Same directory, fresh store.
	s2 := NewCardStore(dir)
	require.NoError(t, s2.Init())
	cards, err := s2.List(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Survivor", cards[0].Title)
}

func TestCardStoreRenormalizesOnLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	raw := `[{"id":"old","title":"Old Schema","color":"octarine","layout":"poster","font":"","texture":"", "image_position":"","image":"","created_at":"2020-01-01T00:00:00Z"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cards.json"), []byte(raw), 0o644))

	s := NewCardStore(dir)
	require.NoError(t, s.Init())

	cards, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "old", cards[0].ID)
	assert.Equal(t, models.DefaultColor, cards[0].Color)
	assert.Equal(t, models.DefaultLayout, cards[0].Layout)
	assert.Equal(t, models.DefaultFont, cards[0].Font)
	assert.Equal(t, models.PlaceholderImage, cards[0].Image)
}

func TestCardStoreGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestCardStore(t)
	require.NoError(t, s.Upsert(ctx, card("a", "A")))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "A", got.Title)

	missing, err := s.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCardStoreReferencesImage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestCardStore(t)

	a := card("a", "A")
	a.Image = "blob://shared"
	b := card("b", "B")
	b.Image = "blob://shared"
	require.NoError(t, s.Upsert(ctx, a))
	require.NoError(t, s.Upsert(ctx, b))

	inUse, err := s.ReferencesImage(ctx, "blob://shared", "a")
	require.NoError(t, err)
	assert.True(t, inUse)

	require.NoError(t, s.DeleteOne(ctx, "b"))
	inUse, err = s.ReferencesImage(ctx, "blob://shared", "a")
	require.NoError(t, err)
	assert.False(t, inUse)
}
