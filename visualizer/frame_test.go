package visualizer

import (
	"image/color"
	"math"
	"testing"

	"pianorain/timeline"
)

func TestComputeFrameExample(t *testing.T) {
	s := DefaultSettings()
	notes := []timeline.NoteEvent{{Pitch: 60, Start: 0, End: 1, Velocity: 100}}

	f := ComputeFrame(s, notes, 1.0, 880, 1000)
	g := f.Geometry

	if g.KeyWidth != 10 {
		t.Errorf("KeyWidth = %v, want 10", g.KeyWidth)
	}
	if g.BandHeight != 150 {
		t.Errorf("BandHeight = %v, want 150", g.BandHeight)
	}
	if g.FallSpeed != 212.5 {
		t.Errorf("FallSpeed = %v, want 212.5", g.FallSpeed)
	}
	if len(f.Notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(f.Notes))
	}
	n := f.Notes[0]
	if n.X != 395 || n.Y != 362.5 {
		t.Errorf("disc center = (%v, %v), want (395, 362.5)", n.X, n.Y)
	}
	if n.Radius != 4 {
		t.Errorf("radius = %v, want 4", n.Radius)
	}
	if n.Label != "" {
		t.Errorf("label %q drawn on a disc below the legibility threshold", n.Label)
	}
	if n.Culled {
		t.Error("on-surface note was culled")
	}

	// The end of a note is exclusive, so C4 is released at exactly t=1.
	for _, k := range f.Keys {
		if k.Active {
			t.Errorf("key %d highlighted at t=1", k.Pitch)
		}
	}
	if got := ComputeFrame(s, notes, 0.5, 880, 1000).ActiveKeys(); len(got) != 1 || got[0] != 60 {
		t.Errorf("ActiveKeys at t=0.5 = %v, want [60]", got)
	}
}

func TestComputeFrameKeyboard(t *testing.T) {
	s := DefaultSettings()
	f := ComputeFrame(s, nil, 0, 880, 1000)

	if len(f.Keys) != 88 {
		t.Fatalf("got %d keys, want 88", len(f.Keys))
	}
	white := 0
	for i, k := range f.Keys {
		if k.Pitch != 21+i {
			t.Errorf("key %d pitch = %d", i, k.Pitch)
		}
		if k.X != float64(i)*10 || k.Width != 10 || k.Height != 150 {
			t.Errorf("key %d rect = (%v, %v, %v)", i, k.X, k.Width, k.Height)
		}
		if k.White {
			white++
		}
	}
	if white != 52 {
		t.Errorf("white keys = %d, want 52", white)
	}
	if len(f.Notes) != 0 {
		t.Errorf("empty timeline produced %d notes", len(f.Notes))
	}
}

func TestIsWhiteKeyResidues(t *testing.T) {
	want := map[int]bool{0: true, 1: false, 2: true, 3: false, 4: true, 5: true, 6: false, 7: true, 8: false, 9: true, 10: false, 11: true}
	for residue, white := range want {
		for _, octave := range []int{0, 1, 5, 8} {
			pitch := octave*12 + residue
			if got := IsWhiteKey(pitch); got != white {
				t.Errorf("IsWhiteKey(%d) = %v, want %v", pitch, got, white)
			}
		}
	}
	if !IsWhiteKey(-12) || IsWhiteKey(-11) {
		t.Error("negative pitches do not follow the octave pattern")
	}
}

func TestNoteName(t *testing.T) {
	tests := map[int]string{60: "C", 61: "C#", 69: "A", 21: "A", 108: "C", 71: "B", -1: "B"}
	for pitch, want := range tests {
		if got := NoteName(pitch); got != want {
			t.Errorf("NoteName(%d) = %q, want %q", pitch, got, want)
		}
	}
}

func TestHighlightGapBetweenAdjacentNotes(t *testing.T) {
	s := DefaultSettings()
	notes := []timeline.NoteEvent{
		{Pitch: 64, Start: 1.5, End: 2.5},
		{Pitch: 64, Start: 0, End: 1},
	}

	tests := []struct {
		t    float64
		want bool
	}{
		{0, true},
		{0.99, true},
		{1, false},
		{1.2, false},
		{1.5, true},
		{2.49, true},
		{2.5, false},
	}
	for _, tt := range tests {
		f := ComputeFrame(s, notes, tt.t, 880, 1000)
		if got := f.Keys[64-21].Active; got != tt.want {
			t.Errorf("t=%v: key 64 active = %v, want %v", tt.t, got, tt.want)
		}
	}

	overlapping := []timeline.NoteEvent{
		{Pitch: 64, Start: 0, End: 1.5},
		{Pitch: 64, Start: 1, End: 2.5},
	}
	for _, now := range []float64{0.5, 1.2, 1.6, 2.4} {
		if !ComputeFrame(s, overlapping, now, 880, 1000).Keys[64-21].Active {
			t.Errorf("t=%v: key 64 not active across overlapping notes", now)
		}
	}
}

func TestInvalidTimeShowsNothing(t *testing.T) {
	s := DefaultSettings()
	notes := []timeline.NoteEvent{{Pitch: 60, Start: 0, End: 100}}

	for _, now := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		f := ComputeFrame(s, notes, now, 880, 1000)
		if len(f.Notes) != 0 {
			t.Errorf("t=%v: %d notes visible", now, len(f.Notes))
		}
		if len(f.ActiveKeys()) != 0 {
			t.Errorf("t=%v: keys highlighted", now)
		}
		if len(f.Keys) != 88 {
			t.Errorf("t=%v: keyboard missing", now)
		}
	}
}

func TestOutOfRangePitchesDoNotPanic(t *testing.T) {
	s := DefaultSettings()
	notes := []timeline.NoteEvent{
		{Pitch: -500, Start: 0, End: 2},
		{Pitch: 0, Start: 0, End: 2},
		{Pitch: 127, Start: 0, End: 2},
		{Pitch: 10000, Start: 0, End: 2},
		{Pitch: 60, Start: math.NaN(), End: math.Inf(1)},
	}
	f := ComputeFrame(s, notes, 1, 880, 1000)

	if len(f.Notes) != 4 {
		t.Fatalf("got %d visible notes, want 4", len(f.Notes))
	}
	for _, n := range f.Notes {
		if !n.Culled {
			t.Errorf("pitch %d at x=%v not culled", n.Pitch, n.X)
		}
	}
	if f.Drawn() != 0 {
		t.Errorf("Drawn() = %d, want 0", f.Drawn())
	}
	if len(f.ActiveKeys()) != 0 {
		t.Errorf("out of range pitches lit keys %v", f.ActiveKeys())
	}

	Draw(&countingPainter{}, f)
}

func TestCullingKeepsGraceNotesInFrame(t *testing.T) {
	s := DefaultSettings()
	notes := []timeline.NoteEvent{{Pitch: 60, Start: 0, End: 1}}

	// 5.5s after start the disc is far below the bottom edge.
	f := ComputeFrame(s, notes, 5.5, 880, 1000)
	if len(f.Notes) != 1 {
		t.Fatalf("grace note dropped from frame")
	}
	if !f.Notes[0].Culled {
		t.Errorf("note at y=%v not culled", f.Notes[0].Y)
	}

	p := &countingPainter{}
	Draw(p, f)
	if p.circles != 0 {
		t.Errorf("culled note painted %d times", p.circles)
	}
}

func TestZeroSizedSurface(t *testing.T) {
	s := DefaultSettings()
	notes := []timeline.NoteEvent{{Pitch: 60, Start: 0, End: 1}}
	for _, size := range [][2]float64{{0, 0}, {-10, 20}, {math.NaN(), 100}, {100.5, 0.25}} {
		f := ComputeFrame(s, notes, 0.5, size[0], size[1])
		Draw(&countingPainter{}, f)
	}
}

func TestLabelsAboveThreshold(t *testing.T) {
	s := DefaultSettings()
	notes := []timeline.NoteEvent{{Pitch: 61, Start: 0, End: 1}}

	// keyWidth 20, radius 8 > 5.
	f := ComputeFrame(s, notes, 0.1, 1760, 1000)
	if f.Notes[0].Label != "C#" {
		t.Errorf("label = %q, want C#", f.Notes[0].Label)
	}

	p := &countingPainter{}
	Draw(p, f)
	if p.texts != 1 || p.lastTextSize != 8 {
		t.Errorf("texts = %d size = %v, want 1 text of size 8", p.texts, p.lastTextSize)
	}
}

func TestHue(t *testing.T) {
	tests := map[int]float64{0: 0, 21: 210, 36: 0, 60: 240, 108: 0, 109: 10, -1: 350}
	for pitch, want := range tests {
		if got := Hue(pitch); got != want {
			t.Errorf("Hue(%d) = %v, want %v", pitch, got, want)
		}
	}
}

func TestNoteColorsAreDeterministic(t *testing.T) {
	s := DefaultSettings()
	a := color.RGBAModel.Convert(NoteColor(s, 60)).(color.RGBA)
	b := color.RGBAModel.Convert(NoteColor(s, 60)).(color.RGBA)
	if a != b {
		t.Errorf("NoteColor(60) not deterministic: %v vs %v", a, b)
	}
	if c := color.RGBAModel.Convert(NoteColor(s, 61)).(color.RGBA); c == a {
		t.Error("adjacent pitches share a color")
	}
	_, _, _, alpha := HighlightColor(60).RGBA()
	if alpha == 0 || alpha == 0xffff {
		t.Errorf("highlight alpha = %d, want semi-transparent", alpha)
	}
	if a := HighlightColor(60).(color.NRGBA).A; a != 0x80 {
		t.Errorf("highlight alpha byte = %#x, want 0x80", a)
	}
}

func TestDrawOrder(t *testing.T) {
	s := DefaultSettings()
	notes := []timeline.NoteEvent{{Pitch: 60, Start: 0, End: 1}}
	f := ComputeFrame(s, notes, 0.5, 880, 1000)

	p := &countingPainter{}
	Draw(p, f)

	if len(p.ops) == 0 || p.ops[0] != "clear" {
		t.Fatalf("first op = %v, want clear", p.ops)
	}
	if p.ops[1] != "circle" {
		t.Errorf("second op = %q, want the falling note", p.ops[1])
	}
	// band background + 88 keys + 1 highlight
	if p.rects != 90 {
		t.Errorf("filled rects = %d, want 90", p.rects)
	}
	if p.strokes != 88 {
		t.Errorf("stroked rects = %d, want 88", p.strokes)
	}
}

type countingPainter struct {
	ops          []string
	circles      int
	rects        int
	strokes      int
	texts        int
	lastTextSize float64
}

func (p *countingPainter) Clear(color.Color) { p.ops = append(p.ops, "clear") }

func (p *countingPainter) FillCircle(x, y, r float64, c color.Color) {
	p.circles++
	p.ops = append(p.ops, "circle")
}

func (p *countingPainter) FillRect(x, y, w, h float64, c color.Color) {
	p.rects++
	p.ops = append(p.ops, "rect")
}

func (p *countingPainter) StrokeRect(x, y, w, h float64, c color.Color) {
	p.strokes++
	p.ops = append(p.ops, "stroke")
}

func (p *countingPainter) DrawText(s string, x, y, size float64, c color.Color) {
	p.texts++
	p.lastTextSize = size
	p.ops = append(p.ops, "text")
}
