// Package app is the controller between an input track and the live
// visualization: it loads tracks, owns the playback transport and the render
// session, and serves the play, record and orientation controls.
package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"pianorain/controls"
	"pianorain/logger"
	"pianorain/timeline"
	"pianorain/transport"
	"pianorain/videogenerator"
	"pianorain/visualizer"
)

type Phase int

const (
	Intake Phase = iota
	Analyzing
	Ready
)

func (p Phase) String() string {
	switch p {
	case Analyzing:
		return "analyzing"
	case Ready:
		return "ready"
	}
	return "intake"
}

// Notifier shows a message the user has to acknowledge.
type Notifier interface {
	Notify(title, message string)
}

type NotifierFunc func(title, message string)

func (f NotifierFunc) Notify(title, message string) { f(title, message) }

// Canvas is a drawing surface that can also be recorded.
type Canvas interface {
	visualizer.Canvas
	videogenerator.Capturer
}

type Options struct {
	Settings    visualizer.Settings
	Orientation visualizer.Orientation
	Record      videogenerator.RecordOptions
	// SoundFont enables audio playback of MIDI input.
	SoundFont string
	Notifier  Notifier
	Logger    *slog.Logger
	// Clock makes the frame clock of each new session. Nil means a ticker
	// at Settings.FrameRate.
	Clock func() visualizer.FrameClock
}

type Status struct {
	Phase       string          `json:"phase"`
	Input       string          `json:"input,omitempty"`
	TrackID     string          `json:"trackId,omitempty"`
	Notes       int             `json:"notes"`
	Issues      int             `json:"issues"`
	Duration    float64         `json:"duration"`
	CurrentTime float64         `json:"currentTime"`
	Playing     bool            `json:"playing"`
	Recording   bool            `json:"recording"`
	Orientation string          `json:"orientation"`
	Session     string          `json:"session,omitempty"`
	Controls    controls.Visual `json:"controls"`
}

type App struct {
	mu          sync.Mutex
	opts        Options
	log         *slog.Logger
	store       *timeline.Store
	canvas      Canvas
	engine      *visualizer.Engine
	recorder    *videogenerator.Recorder
	transport   *transport.Transport
	phase       Phase
	orientation visualizer.Orientation
	input       string
	issues      int
	soundFont   *meltysynth.SoundFont
	host        *visualizer.HostClock
	hostClocks  bool
}

func New(canvas Canvas, container visualizer.Container, opts Options) *App {
	opts.Settings = opts.Settings.Normalize()
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(title, message string) {
			opts.Logger.Warn(title, "message", message)
		})
	}
	if opts.Record.FPS == 0 {
		opts.Record.FPS = opts.Settings.CaptureFPS
	}

	a := &App{
		opts:        opts,
		log:         opts.Logger,
		store:       timeline.NewStore(),
		canvas:      canvas,
		engine:      visualizer.NewEngine(canvas, container, opts.Settings, visualizer.WithLogger(opts.Logger)),
		recorder:    videogenerator.NewRecorder(opts.Record, opts.Logger),
		transport:   transport.New(0, transport.WithLogger(opts.Logger)),
		orientation: opts.Orientation,
	}
	return a
}

// UseHostClock makes every session run on a HostClock driven by Tick, for
// hosts with their own frame callback.
func (a *App) UseHostClock() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hostClocks = true
}

// Tick delivers one host frame to the running session.
func (a *App) Tick() {
	a.mu.Lock()
	host := a.host
	a.mu.Unlock()
	if host != nil {
		host.Tick()
	}
}

func (a *App) newClock() visualizer.FrameClock {
	if a.hostClocks {
		a.host = visualizer.NewHostClock()
		return a.host
	}
	if a.opts.Clock != nil {
		return a.opts.Clock()
	}
	return visualizer.NewTickerClock(a.opts.Settings.FrameRate)
}

func (a *App) Store() *timeline.Store { return a.store }

func (a *App) Engine() *visualizer.Engine { return a.engine }

func (a *App) Settings() visualizer.Settings { return a.opts.Settings }

func (a *App) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

func (a *App) Transport() *transport.Transport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transport
}

func (a *App) Orientation() visualizer.Orientation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.orientation
}

// Load reads and analyzes the file at path. A successful load replaces the
// current track; a failed one leaves the app in the intake phase.
func (a *App) Load(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return a.fail(path, err)
	}
	defer f.Close()
	return a.LoadReader(ctx, path, f)
}

// LoadFS loads name from files, such as files dropped on a window.
func (a *App) LoadFS(ctx context.Context, files fs.FS, name string) error {
	f, err := files.Open(name)
	if err != nil {
		return a.fail(name, err)
	}
	defer f.Close()
	return a.LoadReader(ctx, name, f)
}

// LoadReader is Load for data that is not on disk. name selects the analyzer
// by its extension.
func (a *App) LoadReader(ctx context.Context, name string, r io.Reader) error {
	a.mu.Lock()
	a.phase = Analyzing
	a.mu.Unlock()
	a.log.Info("analyzing", "input", name)

	analyzer, err := AnalyzerFor(name)
	if err != nil {
		return a.fail(name, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return a.fail(name, err)
	}
	notes, err := analyzer.Analyze(ctx, bytes.NewReader(data))
	if err != nil {
		return a.fail(name, err)
	}

	tl := timeline.New(notes)
	issues := tl.Issues()
	if len(issues) > 0 {
		a.log.Warn("note data has issues", "input", name, "count", len(issues), "first", issues[0].Kind.String())
	}

	tr := a.newTransport(name, data, tl.Duration())

	a.mu.Lock()
	old := a.transport
	a.transport = tr
	id := a.store.Replace(tl)
	a.phase = Ready
	a.input = name
	a.issues = len(issues)
	a.restartLocked()
	a.mu.Unlock()

	if err := old.Close(); err != nil {
		a.log.Warn("close previous transport", "error", err)
	}
	a.log.Info("track loaded", "input", name, "track", id, "notes", tl.Len(), "duration", tl.Duration())
	return nil
}

func (a *App) fail(name string, cause error) error {
	a.mu.Lock()
	a.store.Reset()
	a.phase = Intake
	a.input = ""
	a.issues = 0
	a.engine.Stop()
	old := a.transport
	a.transport = transport.New(0, transport.WithLogger(a.log))
	a.mu.Unlock()
	old.Close()

	err := fmt.Errorf("%w: %s: %w", ErrExtraction, filepath.Base(name), cause)
	a.log.Error("analysis failed", "input", name, "error", cause)
	a.opts.Notifier.Notify("Analysis failed", "Failed to analyze the file. Please try another file.")
	return err
}

// newTransport plays MIDI input through the SoundFont when one is
// configured and falls back to a silent wall clock otherwise.
func (a *App) newTransport(name string, data []byte, duration float64) *transport.Transport {
	opts := []transport.Option{transport.WithLogger(a.log)}

	if a.opts.SoundFont != "" && isMidi(name) {
		if player, err := a.midiPlayer(data); err != nil {
			a.log.Warn("audio playback unavailable", "error", err)
		} else {
			opts = append(opts, transport.WithAudio(player))
		}
	}

	tr := transport.New(duration, opts...)
	tr.OnEnded(func() {
		a.log.Info("playback ended")
	})
	return tr
}

func (a *App) midiPlayer(data []byte) (transport.AudioPlayer, error) {
	a.mu.Lock()
	sf := a.soundFont
	a.mu.Unlock()

	if sf == nil {
		loaded, err := transport.LoadSoundFont(a.opts.SoundFont)
		if err != nil {
			return nil, err
		}
		a.mu.Lock()
		a.soundFont = loaded
		a.mu.Unlock()
		sf = loaded
	}
	return transport.NewMidiPlayer(sf, bytes.NewReader(data))
}

// restartLocked starts a fresh render session, which stops the previous one.
func (a *App) restartLocked() {
	a.engine.Start(a.store, a.transport, a.orientation, a.newClock())
}

// TogglePlay flips playback and returns whether the track is now playing.
func (a *App) TogglePlay() bool {
	a.mu.Lock()
	ready := a.phase == Ready
	tr := a.transport
	a.mu.Unlock()
	if !ready {
		return false
	}
	return tr.Toggle()
}

func (a *App) Seek(sec float64) error {
	a.mu.Lock()
	ready := a.phase == Ready
	tr := a.transport
	a.mu.Unlock()
	if !ready {
		return ErrNotReady
	}
	tr.Seek(sec)
	return nil
}

// ToggleRecording starts a recording or, if one is running, finishes it and
// returns the saved file.
func (a *App) ToggleRecording(ctx context.Context) (string, error) {
	if a.recorder.IsRecording() {
		path, err := a.recorder.Stop(ctx)
		if err != nil {
			return "", err
		}
		a.opts.Notifier.Notify("Recording saved", path)
		return path, nil
	}
	if a.Phase() != Ready {
		return "", ErrNotReady
	}
	return "", a.recorder.Start(context.WithoutCancel(ctx), a.canvas)
}

func (a *App) IsRecording() bool { return a.recorder.IsRecording() }

// ToggleOrientation switches the aspect ratio. The render session restarts
// so the canvas is sized for the new orientation.
func (a *App) ToggleOrientation() visualizer.Orientation {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.orientation = a.orientation.Toggle()
	if a.phase == Ready {
		a.restartLocked()
	}
	return a.orientation
}

// NotifyResize tells the running session that the container changed size.
func (a *App) NotifyResize() { a.engine.NotifyResize() }

func (a *App) controlState() controls.State {
	a.mu.Lock()
	state := controls.State{
		Orientation: a.orientation,
		Disabled:    a.phase == Analyzing,
	}
	tr := a.transport
	a.mu.Unlock()

	state.Playing = tr.IsPlaying()
	state.Recording = a.recorder.IsRecording()
	return state
}

func (a *App) Controls() controls.Visual {
	return controls.Lookup(a.controlState())
}

func (a *App) Status() Status {
	state := a.controlState()

	a.mu.Lock()
	defer a.mu.Unlock()
	loaded := a.store.Loaded()
	s := Status{
		Phase:       a.phase.String(),
		Input:       a.input,
		TrackID:     loaded.TrackID,
		Notes:       loaded.Timeline.Len(),
		Issues:      a.issues,
		Duration:    loaded.Timeline.Duration(),
		CurrentTime: a.transport.CurrentTime(),
		Playing:     state.Playing,
		Recording:   state.Recording,
		Orientation: a.orientation.String(),
		Controls:    controls.Lookup(state),
	}
	if sess := a.engine.Session(); sess != nil && sess.State() == visualizer.Active {
		s.Session = sess.ID()
	}
	return s
}

// Close stops the session, finishes any recording and releases audio.
func (a *App) Close(ctx context.Context) error {
	var err error
	if a.recorder.IsRecording() {
		_, err = a.recorder.Stop(ctx)
	}
	a.engine.Stop()

	a.mu.Lock()
	tr := a.transport
	a.mu.Unlock()
	if cerr := tr.Close(); err == nil {
		err = cerr
	}
	return err
}
