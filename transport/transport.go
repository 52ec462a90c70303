// Package transport is the playback clock the renderer reads its time from.
package transport

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"pianorain/logger"
)

// AudioPlayer is the subset of *audio.Player the transport drives.
type AudioPlayer interface {
	Play()
	Pause()
	IsPlaying() bool
	Position() time.Duration
	SetPosition(time.Duration) error
	Close() error
}

// Transport reports the current playback position in seconds. Without an
// audio player it runs on the wall clock. Once the position reaches the
// duration the transport pauses itself and fires the ended callbacks.
type Transport struct {
	mu        sync.Mutex
	now       func() time.Time
	player    AudioPlayer
	duration  float64
	playing   bool
	base      float64
	startedAt time.Time
	ended     bool
	onEnded   []func()
	log       *slog.Logger
}

type Option func(*Transport)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Transport) { t.now = now }
}

func WithAudio(p AudioPlayer) Option {
	return func(t *Transport) { t.player = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) { t.log = l }
}

// New returns a paused transport at position zero. A duration of zero never
// ends.
func New(duration float64, opts ...Option) *Transport {
	t := &Transport{
		now:      time.Now,
		duration: duration,
		log:      logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) Duration() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

// CurrentTime is the playback position in seconds.
func (t *Transport) CurrentTime() float64 {
	pos, ended := t.poll()
	if ended != nil {
		t.fire(ended)
	}
	return pos
}

func (t *Transport) IsPlaying() bool {
	t.CurrentTime()
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

// poll returns the position and, if playback just reached the end, the
// callbacks to run once the lock is released.
func (t *Transport) poll() (float64, []func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos := t.positionLocked()
	if !t.playing || t.duration <= 0 || pos < t.duration {
		return pos, nil
	}

	t.pauseLocked()
	t.base = t.duration
	t.ended = true
	t.log.Debug("playback ended", "duration", t.duration)
	callbacks := make([]func(), len(t.onEnded))
	copy(callbacks, t.onEnded)
	return t.duration, callbacks
}

func (t *Transport) positionLocked() float64 {
	if t.player != nil {
		return t.player.Position().Seconds()
	}
	if !t.playing {
		return t.base
	}
	return t.base + t.now().Sub(t.startedAt).Seconds()
}

func (t *Transport) pauseLocked() {
	if !t.playing {
		return
	}
	t.base = t.positionLocked()
	t.playing = false
	if t.player != nil {
		t.player.Pause()
	}
}

// Play resumes playback. Playing an ended track starts it over.
func (t *Transport) Play() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing {
		return
	}
	if t.ended {
		t.ended = false
		t.seekLocked(0)
	}
	t.startedAt = t.now()
	t.playing = true
	if t.player != nil {
		t.player.Play()
	}
}

func (t *Transport) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pauseLocked()
}

// Toggle flips play and pause and returns the new playing state.
func (t *Transport) Toggle() bool {
	if t.IsPlaying() {
		t.Pause()
		return false
	}
	t.Play()
	return true
}

// Seek moves to sec, clamped to [0, duration].
func (t *Transport) Seek(sec float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ended = false
	t.seekLocked(sec)
}

func (t *Transport) seekLocked(sec float64) {
	if math.IsNaN(sec) || sec < 0 {
		sec = 0
	}
	if t.duration > 0 && sec > t.duration {
		sec = t.duration
	}
	t.base = sec
	t.startedAt = t.now()
	if t.player != nil {
		if err := t.player.SetPosition(time.Duration(sec * float64(time.Second))); err != nil {
			t.log.Warn("audio seek failed", "position", sec, "error", err)
		}
	}
}

// OnEnded registers fn to run each time playback reaches the end.
func (t *Transport) OnEnded(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEnded = append(t.onEnded, fn)
}

func (t *Transport) fire(callbacks []func()) {
	for _, fn := range callbacks {
		fn()
	}
}

// Close releases the audio player, if any.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pauseLocked()
	if t.player == nil {
		return nil
	}
	err := t.player.Close()
	t.player = nil
	return err
}
