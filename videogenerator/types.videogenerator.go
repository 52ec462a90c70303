package videogenerator

import (
	"context"
	"image"
	"log/slog"

	"pianorain/timeline"
	"pianorain/visualizer"
)

type ScreenResolution [2]int

func (r ScreenResolution) Width() int  { return r[0] }
func (r ScreenResolution) Height() int { return r[1] }

// Job describes one offline export.
type Job struct {
	Input    string
	Output   string
	Analyzer timeline.Analyzer
	Settings visualizer.Settings

	Resolution ScreenResolution
	FPS        int
	// Delay is the silent lead-in before the first note, in seconds.
	Delay float64
	// Audio muxes a timidity rendering of the input. Only MIDI input has audio.
	Audio bool
	// Procs bounds the number of frames rendered at once.
	Procs int
	// FramesDir holds the PNG frames. Empty means a temporary directory.
	FramesDir string

	Logger *slog.Logger
}

type Result struct {
	Output string
	Frames int
	// Duration is the video length in seconds, lead-in included.
	Duration float64
	Issues   int
}

// Capturer is a source of live frames, such as visualizer.Surface.
type Capturer interface {
	CaptureStream(ctx context.Context, fps int) <-chan *image.RGBA
}
