package videogenerator

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"

	"pianorain/logger"
)

var letterboxColor = color.RGBA{0x1a, 0x1a, 0x1a, 0xff}

// Recorder saves a capture stream as a video. Frames are written as PNG
// while recording; ffmpeg runs when the recording stops.
type Recorder struct {
	opts RecordOptions
	log  *slog.Logger

	mu        sync.Mutex
	recording bool
	cancel    context.CancelFunc
	done      chan struct{}
	dir       string
	frames    atomic.Int64
	size      ScreenResolution
	writeErr  error
}

func NewRecorder(opts RecordOptions, l *slog.Logger) *Recorder {
	if l == nil {
		l = logger.GetLogger()
	}
	return &Recorder{opts: opts.withDefaults(), log: l}
}

func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

func (r *Recorder) Frames() int {
	return int(r.frames.Load())
}

// Start begins sampling src at the configured frame rate.
func (r *Recorder) Start(ctx context.Context, src Capturer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return ErrAlreadyRecording
	}
	if _, err := codecArgs(RecordingName(r.opts.Format)); err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "pianorain-recording-*")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	r.recording = true
	r.cancel = cancel
	r.done = make(chan struct{})
	r.dir = dir
	r.frames.Store(0)
	r.size = ScreenResolution{r.opts.Width, r.opts.Height}
	r.writeErr = nil

	go r.consume(src.CaptureStream(ctx, r.opts.FPS), dir, r.done)
	r.log.Info("recording started", "fps", r.opts.FPS, "format", r.opts.Format)
	return nil
}

func (r *Recorder) consume(stream <-chan *image.RGBA, dir string, done chan struct{}) {
	defer close(done)

	sem := make(chan struct{}, r.opts.Procs)
	var wg sync.WaitGroup
	var errOnce sync.Once

	i := 0
	for img := range stream {
		r.mu.Lock()
		if r.size[0] <= 0 || r.size[1] <= 0 {
			b := img.Bounds()
			r.size = ScreenResolution{b.Dx(), b.Dy()}
		}
		size := r.size
		r.mu.Unlock()

		sem <- struct{}{}
		wg.Add(1)
		go func(img *image.RGBA, i int) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := gg.SavePNG(framePath(dir, i), fitFrame(img, size)); err != nil {
				errOnce.Do(func() {
					r.mu.Lock()
					r.writeErr = fmt.Errorf("write frame %d: %w", i+1, err)
					r.mu.Unlock()
				})
				return
			}
			r.frames.Add(1)
		}(img, i)
		i++
	}
	wg.Wait()
}

// fitFrame scales img into size keeping its aspect ratio, centered on the
// background color. Orientation can change mid-recording; the video size
// cannot.
func fitFrame(img image.Image, size ScreenResolution) image.Image {
	b := img.Bounds()
	if b.Dx() == size.Width() && b.Dy() == size.Height() {
		return img
	}
	scale := min(float64(size.Width())/float64(b.Dx()), float64(size.Height())/float64(b.Dy()))
	w := max(1, int(float64(b.Dx())*scale+0.5))
	h := max(1, int(float64(b.Dy())*scale+0.5))
	scaled := resize.Resize(uint(w), uint(h), img, resize.Bilinear)

	out := image.NewRGBA(image.Rect(0, 0, size.Width(), size.Height()))
	draw.Draw(out, out.Bounds(), image.NewUniform(letterboxColor), image.Point{}, draw.Src)
	offset := image.Pt((size.Width()-w)/2, (size.Height()-h)/2)
	draw.Draw(out, scaled.Bounds().Add(offset), scaled, scaled.Bounds().Min, draw.Src)
	return out
}

// Stop ends the capture and encodes the recorded frames. It returns the path
// of the finished file.
func (r *Recorder) Stop(ctx context.Context) (string, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return "", ErrNotRecording
	}
	r.recording = false
	cancel, done, dir := r.cancel, r.done, r.dir
	r.mu.Unlock()

	cancel()
	<-done
	defer removeFrames(r.log, dir)

	r.mu.Lock()
	writeErr := r.writeErr
	r.mu.Unlock()
	if writeErr != nil {
		return "", writeErr
	}

	frames := r.Frames()
	if frames == 0 {
		return "", ErrNoFrames
	}

	if err := os.MkdirAll(r.opts.Dir, 0o755); err != nil {
		return "", err
	}
	output := filepath.Join(r.opts.Dir, RecordingName(r.opts.Format))
	err := createVideoFromFrames(ctx, encodeOptions{
		framesDir: dir,
		fps:       r.opts.FPS,
		output:    output,
	})
	if err != nil {
		return "", err
	}

	r.log.Info("recording saved", "output", output, "frames", frames)
	return output, nil
}
