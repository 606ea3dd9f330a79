package models

import "time"

// PlaceholderImage is used when a card has no artwork of its own.
const PlaceholderImage = "/static/placeholder.png"

type Card struct {
	ID            string    `json:"id"`             // assigned once at first save
	Title         string    `json:"title"`          // required
	Category      string    `json:"category"`       // free text type line
	Color         string    `json:"color"`          // frame color variant
	RulesText     string    `json:"rules_text"`     // supports inline **bold** / *italic* markup
	FlavorText    string    `json:"flavor_text"`    // optional
	Image         string    `json:"image"`          // direct locator or blob:// reference
	Layout        string    `json:"layout"`         // visual template variant
	Font          string    `json:"font"`           // display font variant
	Texture       string    `json:"texture"`        // background texture variant
	ImagePosition string    `json:"image_position"` // artwork crop anchor
	CreatedAt     time.Time `json:"created_at"`     // set once at first save
}

// Variant sets for the enumerated card attributes. Values outside a set
// fall back to the set's default.
var (
	ColorVariants = []string{"white", "blue", "black", "red", "purple", "green", "gold", "sepia", "colorless"}

	LayoutVariants = []string{"standard", "text-heavy", "utility", "back", "simple", "text-only"}

	FontVariants = []string{"primary-display", "secondary-display"}

	TextureVariants = []string{"default", "chernobyl", "lava", "rock", "oxido"}

	ImagePositionVariants = []string{
		"top-left", "top", "top-right",
		"left", "center", "right",
		"bottom-left", "bottom", "bottom-right",
	}
)

const (
	DefaultColor         = "white"
	DefaultLayout        = "standard"
	DefaultFont          = "secondary-display"
	DefaultTexture       = "default"
	DefaultImagePosition = "center"
)
