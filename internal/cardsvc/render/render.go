// Package render rasterizes cards into PNG images using one fixed visual
// template per layout variant.
package render

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/gogpu/gg"
	ggtext "github.com/gogpu/gg/text"
	log "github.com/sirupsen/logrus"

	"github.com/cardforge/card-services/internal/cardsvc/models"
	"github.com/cardforge/card-services/internal/cardsvc/store"
)

// Card canvas at 300dpi for a 2.5in x 3.5in trading card.
const (
	CardWidth  = 750
	CardHeight = 1050
)

// inkColor is the near-black used for body text over the white panels.
const inkColor = "#111827"

// Renderer draws cards onto a gg context. Font and texture lookups are
// cached; a missing font or texture degrades the output (text skipped, flat
// background) instead of failing the render.
type Renderer struct {
	blobs      *store.BlobStore
	fontDir    string
	textureDir string

	mu       sync.Mutex
	fonts    map[string]*ggtext.FontSource
	textures map[string]*gg.ImageBuf
}

func NewRenderer(blobs *store.BlobStore, fontDir, textureDir string) *Renderer {
	return &Renderer{
		blobs:      blobs,
		fontDir:    fontDir,
		textureDir: textureDir,
		fonts:      make(map[string]*ggtext.FontSource),
		textures:   make(map[string]*gg.ImageBuf),
	}
}

// RenderPNG rasterizes a single card and returns the encoded PNG.
func (r *Renderer) RenderPNG(card models.Card) ([]byte, error) {
	card = models.Renormalize(card)

	dc := gg.NewContext(CardWidth, CardHeight)
	style := styleFor(card.Color)

	r.drawBackground(dc, card.Texture, style)

	switch card.Layout {
	case "utility":
		r.drawUtility(dc, card, style)
	case "back":
		r.drawBack(dc, card, style)
	case "simple":
		r.drawSimple(dc, card, style)
	case "text-heavy":
		r.drawTextHeavy(dc, card, style)
	case "text-only":
		r.drawTextOnly(dc, card, style)
	default:
		r.drawStandard(dc, card, style)
	}

	r.drawFrame(dc, style)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode card %s: %w", card.ID, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawStandard(dc *gg.Context, card models.Card, style colorStyle) {
	r.drawTitlePanel(dc, card, style, 45, 45, 660, 70, 36, gg.AlignLeft)
	r.drawArtwork(dc, card, 55, 135, 640, 450)
	if card.Category != "" {
		r.drawPanel(dc, 45, 600, 660, 56, style)
		dc.SetHexColor(inkColor)
		r.drawText(dc, card.Font, 22, card.Category, 65, 628, 0, 0.5, 0, gg.AlignLeft)
	}
	dc.SetHexColor(inkColor)
	r.drawText(dc, card.Font, 26, stripMarkup(card.RulesText), 65, 690, 0, 0, 620, gg.AlignLeft)
	if card.FlavorText != "" {
		dc.SetHexColor("#4b5563")
		r.drawText(dc, card.Font, 23, card.FlavorText, 65, 890, 0, 0, 620, gg.AlignLeft)
	}
}

func (r *Renderer) drawTextHeavy(dc *gg.Context, card models.Card, style colorStyle) {
	r.drawTitlePanel(dc, card, style, 45, 45, 660, 64, 32, gg.AlignLeft)
	if card.Category != "" {
		r.drawPanel(dc, 45, 125, 660, 50, style)
		dc.SetHexColor(inkColor)
		r.drawText(dc, card.Font, 22, card.Category, 65, 150, 0, 0.5, 0, gg.AlignLeft)
	}
	r.drawPanel(dc, 45, 195, 660, 700, style)
	dc.SetHexColor(inkColor)
	r.drawText(dc, card.Font, 28, stripMarkup(card.RulesText), 70, 235, 0, 0, 610, gg.AlignLeft)
	if card.FlavorText != "" {
		dc.SetHexColor("#4b5563")
		r.drawText(dc, card.Font, 24, card.FlavorText, 70, 920, 0, 0, 610, gg.AlignLeft)
	}
}

// drawUtility is the compact variant: full-bleed artwork with only the name.
func (r *Renderer) drawUtility(dc *gg.Context, card models.Card, style colorStyle) {
	r.drawArtwork(dc, card, 30, 30, 690, 990)
	r.drawTitlePanel(dc, card, style, 105, 60, 540, 64, 30, gg.AlignCenter)
}

func (r *Renderer) drawBack(dc *gg.Context, card models.Card, style colorStyle) {
	dc.SetHexColor(style.Border)
	dc.SetLineWidth(4)
	dc.DrawRoundedRectangle(60, 60, CardWidth-120, CardHeight-120, 20)
	dc.Stroke()
	dc.SetHexColor(style.Border)
	r.drawText(dc, card.Font, 56, card.Title, CardWidth/2, CardHeight/2, 0.5, 0.5, 0, gg.AlignCenter)
}

func (r *Renderer) drawSimple(dc *gg.Context, card models.Card, style colorStyle) {
	r.drawArtwork(dc, card, 55, 110, 640, 640)
	r.drawTitlePanel(dc, card, style, 45, 800, 660, 70, 36, gg.AlignCenter)
}

func (r *Renderer) drawTextOnly(dc *gg.Context, card models.Card, style colorStyle) {
	r.drawTitlePanel(dc, card, style, 45, 45, 660, 70, 36, gg.AlignLeft)
	r.drawPanel(dc, 45, 145, 660, 750, style)
	dc.SetHexColor(inkColor)
	r.drawText(dc, card.Font, 28, stripMarkup(card.RulesText), 70, 185, 0, 0, 610, gg.AlignLeft)
	if card.FlavorText != "" {
		dc.SetHexColor("#4b5563")
		r.drawText(dc, card.Font, 24, card.FlavorText, 70, 930, 0, 0, 610, gg.AlignLeft)
	}
}

func (r *Renderer) drawBackground(dc *gg.Context, texture string, style colorStyle) {
	if tex := r.texture(texture); tex != nil {
		dc.DrawImageEx(tex, gg.DrawImageOptions{
			DstWidth:      CardWidth,
			DstHeight:     CardHeight,
			Interpolation: gg.InterpBilinear,
			Opacity:       1.0,
			BlendMode:     gg.BlendNormal,
		})
	} else {
		dc.SetHexColor("#d6cbb4")
		dc.DrawRectangle(0, 0, CardWidth, CardHeight)
		dc.Fill()
	}

	// Color tint over the texture.
	tr, tg, tb := hexToRGB(style.Tint)
	dc.SetRGBA(tr, tg, tb, style.TintOpacity)
	dc.DrawRectangle(0, 0, CardWidth, CardHeight)
	dc.Fill()
}

func (r *Renderer) drawFrame(dc *gg.Context, style colorStyle) {
	dc.SetHexColor(style.Border)
	dc.SetLineWidth(16)
	dc.DrawRoundedRectangle(10, 10, CardWidth-20, CardHeight-20, 28)
	dc.Stroke()
}

// drawPanel draws the translucent white box that keeps text readable over
// the texture.
func (r *Renderer) drawPanel(dc *gg.Context, x, y, w, h float64, style colorStyle) {
	dc.SetRGBA(1, 1, 1, 0.8)
	dc.DrawRoundedRectangle(x, y, w, h, 10)
	dc.Fill()
	dc.SetHexColor(style.Border)
	dc.SetLineWidth(4)
	dc.DrawRoundedRectangle(x, y, w, h, 10)
	dc.Stroke()
}

func (r *Renderer) drawTitlePanel(dc *gg.Context, card models.Card, style colorStyle, x, y, w, h, size float64, align ggtext.Alignment) {
	r.drawPanel(dc, x, y, w, h, style)
	tx := x + 20
	ax := 0.0
	if align == gg.AlignCenter {
		tx = x + w/2
		ax = 0.5
	}
	dc.SetHexColor(inkColor)
	r.drawText(dc, card.Font, size, card.Title, tx, y+h/2, ax, 0.5, 0, align)
}

// drawText draws a string in the card's font variant. With width > 0 the
// text is wrapped; otherwise it is anchored at (x, y). A card renders
// without text when no font face can be loaded.
func (r *Renderer) drawText(dc *gg.Context, fontVariant string, size float64, s string, x, y, ax, ay, width float64, align ggtext.Alignment) {
	if s == "" {
		return
	}
	source := r.fontSource(fontVariant)
	if source == nil {
		return
	}
	dc.SetFont(source.Face(size))
	if width > 0 {
		dc.DrawStringWrapped(s, x, y, ax, ay, width, 1.3, align)
	} else {
		dc.DrawStringAnchored(s, x, y, ax, ay)
	}
}

// drawArtwork cover-crops the card artwork into the frame, honoring the
// 9-anchor image position. Missing artwork leaves the frame showing the
// texture.
func (r *Renderer) drawArtwork(dc *gg.Context, card models.Card, fx, fy, fw, fh float64) {
	img := r.artwork(card)
	if img == nil {
		return
	}

	iw, ih := float64(img.Width()), float64(img.Height())
	if iw == 0 || ih == 0 {
		return
	}

	scale := fw / iw
	if s := fh / ih; s > scale {
		scale = s
	}
	srcW, srcH := fw/scale, fh/scale

	ax, ay := anchorFor(card.ImagePosition)
	sx := (iw - srcW) * ax
	sy := (ih - srcH) * ay
	src := image.Rect(int(sx), int(sy), int(sx+srcW), int(sy+srcH))

	dc.DrawImageEx(img, gg.DrawImageOptions{
		X:             fx,
		Y:             fy,
		DstWidth:      fw,
		DstHeight:     fh,
		SrcRect:       &src,
		Interpolation: gg.InterpBicubic,
		Opacity:       1.0,
		BlendMode:     gg.BlendNormal,
	})
}

// artwork loads the card's image when it lives in the blob store. Direct
// locators point at resources the service does not host, and the default
// placeholder has no pixels to contribute, so both are skipped.
func (r *Renderer) artwork(card models.Card) *gg.ImageBuf {
	if !store.IsBlobRef(card.Image) {
		return nil
	}

	data, _, err := r.blobs.Open(store.BlobId(card.Image))
	if err != nil {
		log.Warnf("card %s: artwork unavailable: %v", card.ID, err)
		return nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warnf("card %s: artwork undecodable: %v", card.ID, err)
		return nil
	}
	return gg.ImageBufFromImage(img)
}

func (r *Renderer) fontSource(variant string) *ggtext.FontSource {
	r.mu.Lock()
	defer r.mu.Unlock()

	if source, ok := r.fonts[variant]; ok {
		return source
	}

	var candidates []string
	if r.fontDir != "" {
		for _, name := range fontFileNames(variant) {
			candidates = append(candidates, filepath.Join(r.fontDir, name))
		}
	}
	candidates = append(candidates, systemFontFallbacks...)

	var source *ggtext.FontSource
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		s, err := ggtext.NewFontSourceFromFile(path)
		if err != nil {
			log.Warnf("font %s unusable: %v", path, err)
			continue
		}
		source = s
		break
	}
	if source == nil {
		log.Warnf("no font face for variant %s, cards render without text", variant)
	}

	r.fonts[variant] = source
	return source
}

func (r *Renderer) texture(variant string) *gg.ImageBuf {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tex, ok := r.textures[variant]; ok {
		return tex
	}

	var tex *gg.ImageBuf
	if r.textureDir != "" {
		for _, ext := range []string{".jpg", ".png"} {
			path := filepath.Join(r.textureDir, variant+ext)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			img, err := gg.LoadImage(path)
			if err != nil {
				log.Warnf("texture %s unusable: %v", path, err)
				continue
			}
			tex = img
			break
		}
	}

	r.textures[variant] = tex
	return tex
}

// stripMarkup removes the inline **bold** / *italic* markers used by rules
// text; the raster output draws a single face.
func stripMarkup(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	return strings.ReplaceAll(s, "*", "")
}

func hexToRGB(hex string) (float64, float64, float64) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	var r, g, b int
	fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	return float64(r) / 255, float64(g) / 255, float64(b) / 255
}
