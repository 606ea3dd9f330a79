package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidRecord rejects a raw record that is missing its required title.
var ErrInvalidRecord = errors.New("invalid record: title is required")

// RawRecord is an untyped card record as it arrives from a CSV row or an
// API payload, before any validation.
type RawRecord struct {
	Title         string
	Category      string
	Color         string
	RulesText     string
	FlavorText    string
	Image         string
	Layout        string
	Font          string
	Texture       string
	ImagePosition string
}

// Normalize validates a raw record and produces a new Card. Enum fields are
// matched case-insensitively after trimming and fall back to their defaults
// when the value is not a member of the variant set. The card always gets a
// fresh id and creation time; normalized records are new entities, never
// updates.
func Normalize(raw RawRecord) (Card, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return Card{}, ErrInvalidRecord
	}

	image := strings.TrimSpace(raw.Image)
	if image == "" {
		image = PlaceholderImage
	}

	return Card{
		ID:            uuid.New().String(),
		Title:         title,
		Category:      strings.TrimSpace(raw.Category),
		Color:         canon(raw.Color, ColorVariants, DefaultColor),
		RulesText:     raw.RulesText,
		FlavorText:    raw.FlavorText,
		Image:         image,
		Layout:        canon(raw.Layout, LayoutVariants, DefaultLayout),
		Font:          canon(raw.Font, FontVariants, DefaultFont),
		Texture:       canon(raw.Texture, TextureVariants, DefaultTexture),
		ImagePosition: canon(raw.ImagePosition, ImagePositionVariants, DefaultImagePosition),
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Renormalize re-applies the variant fallbacks to an already persisted card
// without touching its identity. Collections written by an older schema may
// carry enum values that are no longer valid; they degrade to defaults here
// instead of surfacing at render time.
func Renormalize(c Card) Card {
	c.Title = strings.TrimSpace(c.Title)
	c.Color = canon(c.Color, ColorVariants, DefaultColor)
	c.Layout = canon(c.Layout, LayoutVariants, DefaultLayout)
	c.Font = canon(c.Font, FontVariants, DefaultFont)
	c.Texture = canon(c.Texture, TextureVariants, DefaultTexture)
	c.ImagePosition = canon(c.ImagePosition, ImagePositionVariants, DefaultImagePosition)
	if strings.TrimSpace(c.Image) == "" {
		c.Image = PlaceholderImage
	}
	return c
}

func canon(value string, variants []string, fallback string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, m := range variants {
		if v == m {
			return m
		}
	}
	return fallback
}
