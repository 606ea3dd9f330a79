package service

import (
	"bytes"
	"context"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardforge/card-services/internal/cardsvc/models"
	"github.com/cardforge/card-services/internal/cardsvc/render"
	"github.com/cardforge/card-services/internal/cardsvc/store"
)

func newTestExportService(t *testing.T) (*ExportService, *CardService) {
	t.Helper()
	dir := t.TempDir()

	blobs := store.NewBlobStore(filepath.Join(dir, "blobs"))
	require.NoError(t, blobs.Init())

	cards := store.NewCardStore(dir)
	require.NoError(t, cards.Init())

	renderer := render.NewRenderer(blobs, "", "")
	return NewExportService(cards, renderer), NewCardService(cards, blobs, nil)
}

func TestExportOneProducesPNG(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	exp, svc := newTestExportService(t)

	saved, err := svc.Save(ctx, models.Card{Title: "Ancient Dragon!", Color: "red"})
	require.NoError(t, err)

	data, name, err := exp.ExportOne(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "ancient-dragon.png", name)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, render.CardWidth, img.Bounds().Dx())
	assert.Equal(t, render.CardHeight, img.Bounds().Dy())
}

func TestExportOneMissingCard(t *testing.T) {
	t.Parallel()

	exp, _ := newTestExportService(t)
	_, _, err := exp.ExportOne(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrCardNotFound)
}

func TestExportManyBundlesZip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	exp, svc := newTestExportService(t)

	a, err := svc.Save(ctx, models.Card{Title: "Alpha"})
	require.NoError(t, err)
	b, err := svc.Save(ctx, models.Card{Title: "Beta"})
	require.NoError(t, err)

	data, report, err := exp.ExportMany(ctx, []string{a.ID, b.ID, "ghost"})
	require.NoError(t, err)
	assert.Equal(t, 2, report.RenderedCount)
	assert.Equal(t, []string{"ghost"}, report.FailedIds)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	names := []string{zr.File[0].Name, zr.File[1].Name}
	assert.Contains(t, names, "alpha.png")
	assert.Contains(t, names, "beta.png")
}

func TestExportManyDeduplicatesNames(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	exp, svc := newTestExportService(t)

	a, err := svc.Save(ctx, models.Card{Title: "Twin"})
	require.NoError(t, err)
	b, err := svc.Save(ctx, models.Card{Title: "twin"})
	require.NoError(t, err)

	data, report, err := exp.ExportMany(ctx, []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, report.RenderedCount)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	names := []string{zr.File[0].Name, zr.File[1].Name}
	assert.Contains(t, names, "twin.png")
	assert.Contains(t, names, "twin-2.png")
}

func TestExportName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fire-bolt", exportName("Fire Bolt"))
	assert.Equal(t, "its-a-trap", exportName("It's a Trap!"))
	assert.Equal(t, "card", exportName("???"))
	assert.Equal(t, "card", exportName("  "))
}
