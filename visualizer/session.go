package visualizer

import (
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"pianorain/logger"
	"pianorain/timeline"
)

type State int32

const (
	Idle State = iota
	Active
	Stopped
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Stopped:
		return "stopped"
	}
	return "idle"
}

// Source provides the timeline to draw. It is read once per frame.
type Source interface {
	Current() *timeline.Timeline
}

// TimeSource is the playback position in seconds.
type TimeSource interface {
	CurrentTime() float64
}

type TimeFunc func() float64

func (f TimeFunc) CurrentTime() float64 { return f() }

type Option func(*Engine)

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// Engine binds a canvas and its container and runs at most one render
// session on them at a time.
type Engine struct {
	mu        sync.Mutex
	canvas    Canvas
	container Container
	settings  Settings
	log       *slog.Logger
	current   *Session
	state     State
}

func NewEngine(canvas Canvas, container Container, settings Settings, opts ...Option) *Engine {
	e := &Engine{
		canvas:    canvas,
		container: container,
		settings:  settings.Normalize(),
		log:       logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Settings() Settings {
	return e.settings
}

// Start stops any running session and starts a new one. Without a canvas it
// does nothing and returns nil. The session owns frames and stops it.
func (e *Engine) Start(src Source, ts TimeSource, o Orientation, frames FrameClock) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != nil {
		e.current.Stop()
		e.current = nil
	}

	if isNil(e.canvas) {
		e.log.Debug("no canvas, render session not started")
		if frames != nil {
			frames.Stop()
		}
		return nil
	}

	s := &Session{
		id:          uuid.NewString(),
		settings:    e.settings,
		canvas:      e.canvas,
		container:   e.container,
		source:      src,
		clock:       ts,
		orientation: o,
		frames:      frames,
		log:         e.log,
		resize:      make(chan struct{}, 1),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	s.measure()
	s.state.Store(int32(Active))
	go s.run()

	e.current = s
	e.state = Active
	e.log.Info("render session started",
		"session", s.id,
		"orientation", o.String())
	return s
}

// Stop stops the running session. No frame is painted after Stop returns.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return
	}
	e.current.Stop()
	e.current = nil
	e.state = Stopped
}

// NotifyResize asks the running session to re-measure its container.
func (e *Engine) NotifyResize() {
	e.mu.Lock()
	s := e.current
	e.mu.Unlock()
	if s != nil {
		s.NotifyResize()
	}
}

func (e *Engine) Session() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Session is one run of the animation loop. A single goroutine handles
// frames and resizes, so at most one frame is in flight.
type Session struct {
	id          string
	settings    Settings
	canvas      Canvas
	container   Container
	source      Source
	clock       TimeSource
	orientation Orientation
	frames      FrameClock
	log         *slog.Logger

	resize   chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	rendered atomic.Uint64
	state    atomic.Int32
}

func (s *Session) ID() string { return s.id }

func (s *Session) Orientation() Orientation { return s.orientation }

func (s *Session) State() State { return State(s.state.Load()) }

// Rendered is the number of frames painted so far.
func (s *Session) Rendered() uint64 { return s.rendered.Load() }

func (s *Session) NotifyResize() {
	select {
	case s.resize <- struct{}{}:
	default:
	}
}

// Stop cancels pending frames and waits for the loop to exit. It is safe to
// call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		if s.frames != nil {
			s.frames.Stop()
		}
	})
	<-s.done
}

func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) run() {
	defer func() {
		s.state.Store(int32(Stopped))
		close(s.done)
		s.log.Info("render session stopped", "session", s.id, "frames", s.rendered.Load())
	}()

	var frames <-chan time.Time
	if s.frames != nil {
		frames = s.frames.Frames()
	}

	for {
		select {
		case <-s.stop:
			return
		case <-s.resize:
			s.measure()
		case <-frames:
			select {
			case <-s.stop:
				return
			default:
			}
			s.renderFrame()
		}
	}
}

func (s *Session) measure() {
	if isNil(s.container) {
		return
	}
	cw, ch := s.container.Size()
	w, h := s.orientation.Fit(s.settings, cw, ch)
	if !(w > 0) || !(h > 0) {
		s.log.Debug("container has no area, keeping surface size", "session", s.id, "width", cw, "height", ch)
		return
	}
	s.canvas.Resize(w, h)
}

func (s *Session) renderFrame() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("frame render failed", "session", s.id, "panic", r)
		}
	}()

	var t float64
	if !isNil(s.clock) {
		t = s.clock.CurrentTime()
	}
	var notes []timeline.NoteEvent
	if !isNil(s.source) {
		notes = s.source.Current().Events()
	}

	w, h := s.canvas.Size()
	f := ComputeFrame(s.settings, notes, t, w, h)
	s.canvas.Paint(func(p Painter) {
		Draw(p, f)
	})
	s.rendered.Add(1)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
