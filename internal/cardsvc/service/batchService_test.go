package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardforge/card-services/internal/cardsvc/batch"
	"github.com/cardforge/card-services/internal/cardsvc/store"
)

func newTestBatchService(t *testing.T) (*BatchService, *store.CardStore) {
	t.Helper()
	dir := t.TempDir()

	blobs := store.NewBlobStore(filepath.Join(dir, "blobs"))
	require.NoError(t, blobs.Init())

	cards := store.NewCardStore(dir)
	require.NoError(t, cards.Init())

	return NewBatchService(batch.NewPipeline(blobs), cards, nil), cards
}

func TestImportPersistsCardsInOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, cards := newTestBatchService(t)

	csv := "title,color\nAlpha,red\nBeta,blue\n,\nGamma,nope\n"
	report, err := svc.Import(ctx, strings.NewReader(csv), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, report.SuccessCount)
	assert.Equal(t, 0, report.ErrorCount)
	assert.Equal(t, 1, report.DroppedCount)

	all, err := cards.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Alpha", all[0].Title)
	assert.Equal(t, "Beta", all[1].Title)
	assert.Equal(t, "Gamma", all[2].Title)
	assert.Equal(t, "white", all[2].Color) // "nope" is not a color
}

func TestImportMalformedCSV(t *testing.T) {
	t.Parallel()

	svc, cards := newTestBatchService(t)
	csv := "title\n\"broken\n"

	_, err := svc.Import(context.Background(), strings.NewReader(csv), nil)
	require.ErrorIs(t, err, batch.ErrParseFailure)

	all, err := cards.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "aborted batch must not persist partial results")
}
