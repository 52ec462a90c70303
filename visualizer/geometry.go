package visualizer

import "math"

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var blackKeysInOctave = map[int]bool{1: true, 3: true, 6: true, 8: true, 10: true}

func pitchClass(pitch int) int {
	return ((pitch % 12) + 12) % 12
}

func IsWhiteKey(pitch int) bool {
	return !blackKeysInOctave[pitchClass(pitch)]
}

func NoteName(pitch int) string {
	return noteNames[pitchClass(pitch)]
}

// Geometry is the per-frame coordinate mapping for one surface size.
type Geometry struct {
	Width      float64
	Height     float64
	KeyWidth   float64
	BandHeight float64
	// FallSpeed is in pixels per second.
	FallSpeed float64

	lowestPitch  int
	radiusFactor float64
	visibleFor   float64
}

func NewGeometry(s Settings, width, height float64) Geometry {
	if !(width > 0) || math.IsInf(width, 0) {
		width = 0
	}
	if !(height > 0) || math.IsInf(height, 0) {
		height = 0
	}

	g := Geometry{
		Width:        width,
		Height:       height,
		lowestPitch:  s.LowestPitch,
		radiusFactor: s.RadiusFactor,
		visibleFor:   s.VisibleSeconds(),
	}
	if s.KeyCount > 0 {
		g.KeyWidth = width / float64(s.KeyCount)
	}
	g.BandHeight = height * s.KeyboardFraction
	if s.FallWindowSeconds > 0 {
		g.FallSpeed = (height - g.BandHeight) / s.FallWindowSeconds
	}
	return g
}

// KeyX is the left edge of the key for pitch.
func (g Geometry) KeyX(pitch int) float64 {
	return float64(pitch-g.lowestPitch) * g.KeyWidth
}

// NoteX is the horizontal center of a falling note.
func (g Geometry) NoteX(pitch int) float64 {
	return g.KeyX(pitch) + g.KeyWidth/2
}

func (g Geometry) NoteY(elapsed float64) float64 {
	return g.BandHeight + elapsed*g.FallSpeed
}

func (g Geometry) Radius() float64 {
	return g.radiusFactor * g.KeyWidth
}

// Visible is the note visibility predicate on seconds since note start.
// NaN is never visible.
func (g Geometry) Visible(elapsed float64) bool {
	return elapsed >= 0 && elapsed < g.visibleFor
}

// OnSurface reports whether any part of a disc can land on the surface.
func (g Geometry) OnSurface(x, y, r float64) bool {
	return x+r >= 0 && x-r <= g.Width && y+r >= 0 && y-r <= g.Height
}
