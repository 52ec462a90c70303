package visualizer

import (
	"image/color"
	"math"

	"pianorain/timeline"
)

type NoteSprite struct {
	Pitch  int
	X, Y   float64
	Radius float64
	Color  color.Color
	// Label is empty when the disc is too small to carry text.
	Label string
	// Culled notes are inside the time window but entirely off the surface.
	Culled bool
}

type KeySprite struct {
	Pitch  int
	X      float64
	Width  float64
	Height float64
	White  bool
	Active bool
}

// Frame is everything needed to paint one frame. It is recomputed from
// scratch every time.
type Frame struct {
	Geometry Geometry
	Time     float64
	Notes    []NoteSprite
	Keys     []KeySprite
}

// Drawn counts the notes that will be painted.
func (f Frame) Drawn() int {
	n := 0
	for _, s := range f.Notes {
		if !s.Culled {
			n++
		}
	}
	return n
}

func (f Frame) ActiveKeys() []int {
	var keys []int
	for _, k := range f.Keys {
		if k.Active {
			keys = append(keys, k.Pitch)
		}
	}
	return keys
}

// ComputeFrame maps notes at playback time t onto a surface of the given
// size. Notes may be in any order. A negative or non-finite t shows nothing
// but the idle keyboard.
func ComputeFrame(s Settings, notes []timeline.NoteEvent, t, width, height float64) Frame {
	g := NewGeometry(s, width, height)
	f := Frame{Geometry: g, Time: t}

	validTime := t >= 0 && !math.IsInf(t, 0)
	active := make([]bool, max(s.KeyCount, 0))

	if validTime {
		radius := g.Radius()
		label := radius > s.LabelMinRadius

		for _, n := range notes {
			if n.SoundingAt(t) {
				if i := n.Pitch - s.LowestPitch; i >= 0 && i < len(active) {
					active[i] = true
				}
			}

			elapsed := t - n.Start
			if !g.Visible(elapsed) {
				continue
			}

			x := g.NoteX(n.Pitch)
			y := g.NoteY(elapsed)
			sprite := NoteSprite{
				Pitch:  n.Pitch,
				X:      x,
				Y:      y,
				Radius: radius,
				Color:  NoteColor(s, n.Pitch),
				Culled: !g.OnSurface(x, y, radius),
			}
			if label {
				sprite.Label = NoteName(n.Pitch)
			}
			f.Notes = append(f.Notes, sprite)
		}
	}

	f.Keys = make([]KeySprite, len(active))
	for i := range active {
		pitch := s.LowestPitch + i
		f.Keys[i] = KeySprite{
			Pitch:  pitch,
			X:      g.KeyX(pitch),
			Width:  g.KeyWidth,
			Height: g.BandHeight,
			White:  IsWhiteKey(pitch),
			Active: active[i],
		}
	}

	return f
}
