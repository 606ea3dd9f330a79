package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardforge/card-services/internal/cardsvc/models"
	"github.com/cardforge/card-services/internal/cardsvc/store"
)

func newTestRenderer(t *testing.T) (*Renderer, *store.BlobStore) {
	t.Helper()
	blobs := store.NewBlobStore(t.TempDir())
	require.NoError(t, blobs.Init())
	// No font or texture dirs: rendering must still produce output.
	return NewRenderer(blobs, "", ""), blobs
}

func testCard(layout string) models.Card {
	return models.Card{
		ID:            "test",
		Title:         "Mystic Elemental",
		Category:      "Creature",
		Color:         "blue",
		RulesText:     "**Flying**\nWhen this creature arrives, *draw a card*.",
		FlavorText:    "It dances between realms.",
		Image:         models.PlaceholderImage,
		Layout:        layout,
		Font:          models.DefaultFont,
		Texture:       models.DefaultTexture,
		ImagePosition: models.DefaultImagePosition,
	}
}

func TestRenderPNGAllLayouts(t *testing.T) {
	t.Parallel()

	r, _ := newTestRenderer(t)

	for _, layout := range models.LayoutVariants {
		t.Run(layout, func(t *testing.T) {
			data, err := r.RenderPNG(testCard(layout))
			require.NoError(t, err)
			require.NotEmpty(t, data)

			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, CardWidth, img.Bounds().Dx())
			assert.Equal(t, CardHeight, img.Bounds().Dy())
		})
	}
}

func TestRenderPNGAllColors(t *testing.T) {
	t.Parallel()

	r, _ := newTestRenderer(t)

	for _, color := range models.ColorVariants {
		card := testCard("standard")
		card.Color = color
		data, err := r.RenderPNG(card)
		require.NoError(t, err)

		_, err = png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
	}
}

func TestRenderPNGWithBlobArtwork(t *testing.T) {
	t.Parallel()

	r, blobs := newTestRenderer(t)

	// A tiny valid PNG as artwork.
	art := renderSolidPNG(t, 8, 8)
	ref, err := blobs.Save(art, "image/png", "art.png")
	require.NoError(t, err)

	card := testCard("standard")
	card.Image = ref
	card.ImagePosition = "top-left"

	data, err := r.RenderPNG(card)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestRenderPNGSurvivesBadArtwork(t *testing.T) {
	t.Parallel()

	r, blobs := newTestRenderer(t)

	ref, err := blobs.Save([]byte("not an image"), "image/png", "junk.png")
	require.NoError(t, err)

	card := testCard("simple")
	card.Image = ref

	data, err := r.RenderPNG(card)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderPNGRenormalizesStaleVariants(t *testing.T) {
	t.Parallel()

	r, _ := newTestRenderer(t)

	card := testCard("no-such-layout")
	card.Color = "octarine"
	data, err := r.RenderPNG(card)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestStripMarkup(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Flying", stripMarkup("**Flying**"))
	assert.Equal(t, "draw a card", stripMarkup("*draw a card*"))
	assert.Equal(t, "plain", stripMarkup("plain"))
}

func TestAnchorFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		position string
		ax, ay   float64
	}{
		{"top-left", 0, 0},
		{"top", 0.5, 0},
		{"bottom-right", 1, 1},
		{"center", 0.5, 0.5},
		{"", 0.5, 0.5},
	}
	for _, tt := range tests {
		ax, ay := anchorFor(tt.position)
		assert.Equal(t, tt.ax, ax, tt.position)
		assert.Equal(t, tt.ay, ay, tt.position)
	}
}

// renderSolidPNG produces a small valid PNG for artwork fixtures.
func renderSolidPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 120, G: 80, B: 200, A: 255}), image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
