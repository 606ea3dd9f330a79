package render

// colorStyle is the frame scheme for one color variant: border stroke, tint
// laid over the texture, and how strongly the tint covers it.
type colorStyle struct {
	Border      string
	Tint        string
	TintOpacity float64
}

var colorStyles = map[string]colorStyle{
	"white":     {Border: "#e7e5e4", Tint: "#fafaf9", TintOpacity: 0.70},
	"blue":      {Border: "#bfdbfe", Tint: "#0284c7", TintOpacity: 0.60},
	"black":     {Border: "#1c1917", Tint: "#1f2937", TintOpacity: 0.30},
	"red":       {Border: "#7f1d1d", Tint: "#dc2626", TintOpacity: 0.60},
	"purple":    {Border: "#3b0764", Tint: "#a855f7", TintOpacity: 0.50},
	"green":     {Border: "#166534", Tint: "#22c55e", TintOpacity: 0.50},
	"gold":      {Border: "#fef08a", Tint: "#facc15", TintOpacity: 0.40},
	"sepia":     {Border: "#713f12", Tint: "#f2be63", TintOpacity: 0.70},
	"colorless": {Border: "#6b7280", Tint: "#9ca3af", TintOpacity: 0.10},
}

func styleFor(color string) colorStyle {
	if s, ok := colorStyles[color]; ok {
		return s
	}
	return colorStyles["colorless"]
}

// anchorFor maps an image position variant to crop anchor factors in [0,1].
func anchorFor(position string) (ax, ay float64) {
	switch position {
	case "top-left":
		return 0, 0
	case "top":
		return 0.5, 0
	case "top-right":
		return 1, 0
	case "left":
		return 0, 0.5
	case "right":
		return 1, 0.5
	case "bottom-left":
		return 0, 1
	case "bottom":
		return 0.5, 1
	case "bottom-right":
		return 1, 1
	default: // center
		return 0.5, 0.5
	}
}

// fontFileNames lists candidate files for a font variant inside the font
// directory, most specific first.
func fontFileNames(variant string) []string {
	return []string{variant + ".ttf", variant + ".otf"}
}

// systemFontFallbacks are tried when the font directory has no face for a
// variant. Rendering proceeds without text when none exist.
var systemFontFallbacks = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"C:\\Windows\\Fonts\\arial.ttf",
}
