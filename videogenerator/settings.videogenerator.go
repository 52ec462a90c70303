package videogenerator

import (
	"runtime"

	"pianorain/logger"
	"pianorain/visualizer"
)

const (
	defaultFPS   = 60
	defaultDelay = 3
)

func (j Job) withDefaults() Job {
	if j.Resolution[0] <= 0 || j.Resolution[1] <= 0 {
		j.Resolution = defaultResolution
	}
	if j.FPS <= 0 {
		j.FPS = defaultFPS
	}
	if j.Delay < 0 {
		j.Delay = 0
	}
	if j.Procs <= 0 {
		j.Procs = min(maxWorkers, runtime.NumCPU()*2)
	}
	if j.Output == "" {
		j.Output = getFileNameWithoutExtension(j.Input) + ".mp4"
	}
	j.Settings = j.Settings.Normalize()
	if j.Logger == nil {
		j.Logger = logger.GetLogger()
	}
	return j
}

// RecordOptions configures a Recorder.
type RecordOptions struct {
	// Width and Height fix the output size. Zero keeps the size of the first
	// captured frame.
	Width  int
	Height int
	FPS    int
	// Format is the container extension, mp4 or webm.
	Format string
	// Dir receives piano-visualization.<format>.
	Dir   string
	Procs int
}

func (o RecordOptions) withDefaults() RecordOptions {
	if o.FPS <= 0 {
		o.FPS = visualizer.DefaultSettings().CaptureFPS
	}
	if o.Format == "" {
		o.Format = "mp4"
	}
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.Procs <= 0 {
		o.Procs = runtime.NumCPU()
	}
	return o
}
