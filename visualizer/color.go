package visualizer

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	backgroundColor     = color.RGBA{0x1a, 0x1a, 0x1a, 0xff}
	bandBackgroundColor = color.RGBA{0x33, 0x33, 0x33, 0xff}
	whiteKeyColor       = color.RGBA{0xff, 0xff, 0xff, 0xff}
	blackKeyColor       = color.RGBA{0x00, 0x00, 0x00, 0xff}
	keyBorderColor      = color.RGBA{0x22, 0x22, 0x22, 0xff}
	labelColor          = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

const highlightAlpha = 0x80

// Hue is the pitch-derived hue in degrees, in [0, 360).
func Hue(pitch int) float64 {
	return float64(((pitch*10)%360 + 360) % 360)
}

func NoteColor(s Settings, pitch int) color.Color {
	return colorful.Hsl(Hue(pitch), s.Saturation, s.Lightness).Clamped()
}

// HighlightColor is the pressed-key overlay: fully saturated, half transparent.
func HighlightColor(pitch int) color.Color {
	r, g, b := colorful.Hsl(Hue(pitch), 1, 0.5).Clamped().RGB255()
	return color.NRGBA{r, g, b, highlightAlpha}
}
