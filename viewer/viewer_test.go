package viewer

import (
	"context"
	"image"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"pianorain/controls"
	"pianorain/visualizer"
)

type fakePlayer struct {
	resizes int
	loaded  []string
}

func (p *fakePlayer) TogglePlay() bool { return true }

func (p *fakePlayer) ToggleRecording(context.Context) (string, error) { return "", nil }

func (p *fakePlayer) ToggleOrientation() visualizer.Orientation { return visualizer.Vertical }

func (p *fakePlayer) LoadFS(_ context.Context, _ fs.FS, name string) error {
	p.loaded = append(p.loaded, name)
	return nil
}

func (p *fakePlayer) Controls() controls.Visual { return controls.Lookup(controls.State{}) }

func (p *fakePlayer) NotifyResize() { p.resizes++ }

func (p *fakePlayer) Tick() {}

type blank struct{}

func (blank) Snapshot() *image.RGBA { return nil }

func TestLayoutNotifiesResize(t *testing.T) {
	p := &fakePlayer{}
	g := NewGame(context.Background(), blank{})
	g.Bind(p)

	if w, h := g.Layout(800, 600); w != 800 || h != 600 {
		t.Errorf("Layout = %dx%d", w, h)
	}
	if w, h := g.Size(); w != 800 || h != 600 {
		t.Errorf("Size = %vx%v", w, h)
	}
	g.Layout(800, 600)
	if p.resizes != 1 {
		t.Errorf("resizes = %d after an unchanged layout, want 1", p.resizes)
	}
	g.Layout(1024, 600)
	if p.resizes != 2 {
		t.Errorf("resizes = %d, want 2", p.resizes)
	}
}

func TestCenter(t *testing.T) {
	tests := []struct {
		w, h, sw, sh int
		x, y         int
	}{
		{1600, 900, 1600, 900, 0, 0},
		{900, 1600, 1600, 1600, 350, 0},
		{1600, 900, 1600, 1600, 0, 350},
	}
	for _, tt := range tests {
		if x, y := center(tt.w, tt.h, tt.sw, tt.sh); x != tt.x || y != tt.y {
			t.Errorf("center(%d, %d, %d, %d) = %d, %d, want %d, %d", tt.w, tt.h, tt.sw, tt.sh, x, y, tt.x, tt.y)
		}
	}
}

func TestHintLine(t *testing.T) {
	line := hintLine(controls.Lookup(controls.State{Playing: true, Recording: true}))
	for _, want := range []string{"Pause", "Stop Recording", "Toggle Orientation"} {
		if !strings.Contains(line, want) {
			t.Errorf("hint line %q lacks %q", line, want)
		}
	}
}

func TestLoadDroppedLoadsFirstFile(t *testing.T) {
	p := &fakePlayer{}
	g := NewGame(context.Background(), blank{})
	g.Bind(p)

	g.loadDropped(fstest.MapFS{
		"b.mid":  {Data: []byte("MThd")},
		"a.yaml": {Data: []byte("notes: []")},
	})
	if len(p.loaded) != 1 || p.loaded[0] != "a.yaml" {
		t.Errorf("loaded = %v, want [a.yaml]", p.loaded)
	}
}

func TestRunWithoutPlayer(t *testing.T) {
	if err := Run(NewGame(context.Background(), blank{}), Options{}); err == nil {
		t.Error("Run without a player succeeded")
	}
}
