package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"pianorain/controls"
	"pianorain/midiparser"
	"pianorain/midiprocessor2"
	"pianorain/timeline"
	"pianorain/videogenerator"
	"pianorain/visualizer"
)

const twoNotes = `notes:
  - {pitch: 60, start: 0, end: 1, velocity: 100}
  - {pitch: 64, start: 0.5, end: 2}
`

type notifications struct {
	mu     sync.Mutex
	titles []string
}

func (n *notifications) Notify(title, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
}

func (n *notifications) list() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.titles...)
}

func newTestApp(t *testing.T) (*App, *visualizer.Surface, *notifications) {
	t.Helper()
	surface := visualizer.NewSurface()
	container := visualizer.ContainerFunc(func() (float64, float64) { return 320, 180 })
	n := &notifications{}
	a := New(surface, container, Options{
		Notifier: n,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Record:   videogenerator.RecordOptions{Dir: t.TempDir()},
	})
	t.Cleanup(func() { a.Close(context.Background()) })
	return a, surface, n
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	a, surface, n := newTestApp(t)
	if a.Phase() != Intake {
		t.Fatalf("initial phase = %v", a.Phase())
	}

	if err := a.Load(context.Background(), writeFile(t, "song.yaml", twoNotes)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a.Phase() != Ready {
		t.Errorf("phase = %v, want ready", a.Phase())
	}
	if got := a.Store().Current().Len(); got != 2 {
		t.Errorf("store has %d notes, want 2", got)
	}
	if w, h := surface.Size(); w != 320 || h != 180 {
		t.Errorf("surface = %vx%v, want 320x180", w, h)
	}

	s := a.Status()
	if s.Phase != "ready" || s.Notes != 2 || s.TrackID == "" || s.Session == "" {
		t.Errorf("status = %+v", s)
	}
	if s.Duration != 2 {
		t.Errorf("duration = %v, want 2", s.Duration)
	}
	if len(n.list()) != 0 {
		t.Errorf("unexpected notifications %v", n.list())
	}
}

func TestLoadUnsupportedInput(t *testing.T) {
	a, _, n := newTestApp(t)

	err := a.Load(context.Background(), writeFile(t, "take.wav", "RIFF"))
	if !errors.Is(err, ErrExtraction) || !errors.Is(err, ErrUnsupportedInput) {
		t.Fatalf("Load(wav) = %v", err)
	}
	if a.Phase() != Intake {
		t.Errorf("phase = %v, want intake", a.Phase())
	}
	if got := n.list(); len(got) != 1 || got[0] != "Analysis failed" {
		t.Errorf("notifications = %v", got)
	}
}

func TestFailedLoadDiscardsTrack(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()

	if err := a.Load(ctx, writeFile(t, "song.yaml", twoNotes)); err != nil {
		t.Fatal(err)
	}
	err := a.Load(ctx, writeFile(t, "broken.yaml", "notes: ["))
	if !errors.Is(err, ErrExtraction) || !errors.Is(err, timeline.ErrMalformed) {
		t.Fatalf("Load(malformed) = %v", err)
	}
	if a.Store().Current().Len() != 0 {
		t.Error("store kept the previous track")
	}
	if s := a.Status(); s.Session != "" || s.TrackID != "" || s.Phase != "intake" {
		t.Errorf("status after failure = %+v", s)
	}
	if a.TogglePlay() {
		t.Error("playing without a track")
	}
}

func TestControlsBeforeLoad(t *testing.T) {
	a, _, _ := newTestApp(t)

	if a.TogglePlay() {
		t.Error("TogglePlay before load reported playing")
	}
	if err := a.Seek(1); !errors.Is(err, ErrNotReady) {
		t.Errorf("Seek before load = %v", err)
	}
	if _, err := a.ToggleRecording(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Errorf("ToggleRecording before load = %v", err)
	}
	v := a.Controls()
	if v.PlayPause.Icon != controls.IconPlay || v.Record.Icon != controls.IconRecord || v.Orientation.Icon != controls.IconDesktop {
		t.Errorf("controls = %+v", v)
	}
}

func TestTogglePlayAndSeek(t *testing.T) {
	a, _, _ := newTestApp(t)
	if err := a.Load(context.Background(), writeFile(t, "song.yml", twoNotes)); err != nil {
		t.Fatal(err)
	}

	if !a.TogglePlay() {
		t.Fatal("TogglePlay did not start playback")
	}
	if v := a.Controls(); v.PlayPause.Icon != controls.IconPause || v.PlayPause.Title != "Pause" {
		t.Errorf("play button while playing = %+v", v.PlayPause)
	}
	if !a.Status().Playing {
		t.Error("status not playing")
	}
	if a.TogglePlay() {
		t.Fatal("second TogglePlay did not pause")
	}

	if err := a.Seek(1.5); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if got := a.Transport().CurrentTime(); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("position after seek = %v, want 1.5", got)
	}
}

func TestToggleOrientationRestartsSession(t *testing.T) {
	a, surface, _ := newTestApp(t)
	if err := a.Load(context.Background(), writeFile(t, "song.yaml", twoNotes)); err != nil {
		t.Fatal(err)
	}
	before := a.Status().Session

	if got := a.ToggleOrientation(); got != visualizer.Vertical {
		t.Fatalf("ToggleOrientation = %v", got)
	}
	after := a.Status()
	if after.Session == "" || after.Session == before {
		t.Errorf("session not restarted: %q -> %q", before, after.Session)
	}
	if after.Controls.Orientation.Icon != controls.IconMobile {
		t.Errorf("orientation icon = %v", after.Controls.Orientation.Icon)
	}
	// 180 high at 9:16.
	if w, h := surface.Size(); w != 101 || h != 180 {
		t.Errorf("vertical surface = %vx%v, want 101x180", w, h)
	}
}

func TestToggleOrientationWithoutTrack(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.ToggleOrientation()
	if a.Orientation() != visualizer.Vertical {
		t.Error("orientation not toggled")
	}
	if a.Status().Session != "" {
		t.Error("session started without a track")
	}
}

func TestStatusJSON(t *testing.T) {
	a, _, _ := newTestApp(t)
	data, err := json.Marshal(a.Status())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"phase":"intake"`, `"orientation":"horizontal"`, `"playPause"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("status json %s lacks %s", data, want)
		}
	}
}

func TestHostClock(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.UseHostClock()
	if err := a.Load(context.Background(), writeFile(t, "song.yaml", twoNotes)); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for a.Engine().Session().Rendered() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("host ticks did not render a frame")
		}
		a.Tick()
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWatchReloads(t *testing.T) {
	a, _, _ := newTestApp(t)
	path := writeFile(t, "song.yaml", twoNotes)
	if err := a.Load(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	first := a.Status().TrackID

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, path) }()

	oneNote := "notes:\n  - {pitch: 72, start: 0, end: 3}\n"
	deadline := time.Now().Add(5 * time.Second)
	for a.Status().TrackID == first {
		if time.Now().After(deadline) {
			t.Fatal("track not reloaded after write")
		}
		if err := os.WriteFile(path, []byte(oneNote), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(500 * time.Millisecond)
	}
	if got := a.Store().Current().Len(); got != 1 {
		t.Errorf("reloaded track has %d notes, want 1", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Watch did not return after cancel")
	}
}

func TestAnalyzerFor(t *testing.T) {
	tests := []struct {
		name string
		want timeline.Analyzer
		err  error
	}{
		{"song.mid", midiparser.Parser{}, nil},
		{"SONG.MIDI", midiparser.Parser{}, nil},
		{"song.json", midiprocessor2.Parser{}, nil},
		{"notes.yaml", timeline.YAMLAnalyzer{}, nil},
		{"notes.yml", timeline.YAMLAnalyzer{}, nil},
		{"take.mp3", nil, ErrUnsupportedInput},
		{"take.wav", nil, ErrUnsupportedInput},
		{"readme", nil, ErrUnsupportedInput},
	}
	for _, tt := range tests {
		got, err := AnalyzerFor(tt.name)
		if !errors.Is(err, tt.err) {
			t.Errorf("AnalyzerFor(%q) error = %v, want %v", tt.name, err, tt.err)
			continue
		}
		if got != tt.want {
			t.Errorf("AnalyzerFor(%q) = %T, want %T", tt.name, got, tt.want)
		}
	}
}
