// Package videogenerator turns note timelines into video files, either
// offline from a whole track or live from a capture stream.
package videogenerator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"pianorain/timeline"
)

// shift moves every note later by delay seconds so the lead-in shows notes
// falling toward the keyboard.
func shift(notes []timeline.NoteEvent, delay float64) []timeline.NoteEvent {
	out := make([]timeline.NoteEvent, len(notes))
	for i, n := range notes {
		n.Start += delay
		n.End += delay
		out[i] = n
	}
	return out
}

func removeFrames(log *slog.Logger, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Warn("remove frames", "dir", dir, "error", err)
	}
}

// Generate renders job.Input to job.Output through the same frame path as
// the live view.
func Generate(ctx context.Context, job Job) (Result, error) {
	executionStartTime := time.Now()
	job = job.withDefaults()
	log := job.Logger

	if job.Analyzer == nil {
		return Result{}, fmt.Errorf("no analyzer for %s", job.Input)
	}
	if _, err := codecArgs(job.Output); err != nil {
		return Result{}, err
	}

	f, err := os.Open(job.Input)
	if err != nil {
		return Result{}, err
	}
	notes, err := job.Analyzer.Analyze(ctx, f)
	f.Close()
	if err != nil {
		return Result{}, fmt.Errorf("analyze %s: %w", job.Input, err)
	}

	tl := timeline.New(notes)
	issues := tl.Issues()
	if len(issues) > 0 {
		log.Warn("note data has issues", "count", len(issues), "first", issues[0].Kind.String())
	}

	musicTime := job.Delay + tl.Duration()
	r := &frameRenderer{
		settings:    job.Settings,
		notes:       shift(tl.Events(), job.Delay),
		fps:         job.FPS,
		totalFrames: frameCount(musicTime, job.FPS),
		resolution:  job.Resolution,
		dir:         job.FramesDir,
		log:         log,
	}

	if r.dir == "" {
		r.dir, err = os.MkdirTemp("", "pianorain-frames-*")
		if err != nil {
			return Result{}, err
		}
		defer removeFrames(log, r.dir)
	} else if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return Result{}, err
	}

	var audioPath string
	if job.Audio && isMidi(job.Input) {
		audioPath, err = convertMidiToWav(ctx, job.Input, r.dir)
		if err != nil {
			log.Warn("audio rendering failed, exporting without sound", "error", err)
			audioPath = ""
		}
		defer removeAudioFile(audioPath)
	}

	log.Info("rendering frames", "frames", r.totalFrames, "fps", job.FPS, "size", fmt.Sprintf("%dx%d", job.Resolution.Width(), job.Resolution.Height()))
	if err := r.createFrames(ctx, job.Procs); err != nil {
		return Result{}, err
	}

	err = createVideoFromFrames(ctx, encodeOptions{
		framesDir:   r.dir,
		fps:         job.FPS,
		audio:       audioPath,
		audioOffset: job.Delay,
		duration:    musicTime,
		output:      job.Output,
	})
	if err != nil {
		return Result{}, err
	}

	log.Info("video generated", "output", job.Output, "execution_time", time.Since(executionStartTime).Round(time.Millisecond))
	return Result{
		Output:   job.Output,
		Frames:   r.totalFrames,
		Duration: musicTime,
		Issues:   len(issues),
	}, nil
}
