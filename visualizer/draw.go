package visualizer

import (
	"image/color"
	"math"
)

// Painter is the set of drawing operations a frame needs.
type Painter interface {
	Clear(c color.Color)
	FillCircle(x, y, r float64, c color.Color)
	FillRect(x, y, w, h float64, c color.Color)
	StrokeRect(x, y, w, h float64, c color.Color)
	// DrawText centers s on (x, y).
	DrawText(s string, x, y, size float64, c color.Color)
}

func Draw(p Painter, f Frame) {
	g := f.Geometry
	p.Clear(backgroundColor)

	drawFallingNotes(p, f.Notes)

	p.FillRect(0, 0, g.Width, g.BandHeight, bandBackgroundColor)
	drawKeyboard(p, f.Keys)
}

func drawFallingNotes(p Painter, notes []NoteSprite) {
	for _, n := range notes {
		if n.Culled {
			continue
		}
		p.FillCircle(n.X, n.Y, n.Radius, n.Color)
		if n.Label != "" {
			p.DrawText(n.Label, n.X, n.Y, math.Floor(n.Radius), labelColor)
		}
	}
}

func drawKeyboard(p Painter, keys []KeySprite) {
	for _, k := range keys {
		if k.White {
			p.FillRect(k.X, 0, k.Width, k.Height, whiteKeyColor)
		} else {
			p.FillRect(k.X, 0, k.Width, k.Height, blackKeyColor)
		}
		p.StrokeRect(k.X, 0, k.Width, k.Height, keyBorderColor)

		if k.Active {
			p.FillRect(k.X, 0, k.Width, k.Height, HighlightColor(k.Pitch))
		}
	}
}
