package videogenerator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fogleman/gg"

	"pianorain/timeline"
	"pianorain/visualizer"
)

type frameRenderer struct {
	settings    visualizer.Settings
	notes       []timeline.NoteEvent
	fps         int
	totalFrames int
	resolution  ScreenResolution
	dir         string
	log         *slog.Logger
}

// frameTime is the playback position shown by frame i.
func (r *frameRenderer) frameTime(i int) float64 {
	return float64(i) / float64(r.fps)
}

func (r *frameRenderer) createFrame(dc *gg.Context, i int) error {
	f := visualizer.ComputeFrame(r.settings, r.notes, r.frameTime(i),
		float64(r.resolution.Width()), float64(r.resolution.Height()))
	visualizer.Draw(visualizer.NewPainter(dc), f)
	return dc.SavePNG(framePath(r.dir, i))
}

// createFrames renders every frame with at most procs frames in flight. Each
// worker owns a gg context for the whole run.
func (r *frameRenderer) createFrames(ctx context.Context, procs int) error {
	sem := make(chan struct{}, procs)
	contexts := make(chan *gg.Context, procs)

	var wg sync.WaitGroup
	var finishedFrames atomic.Uint64
	var startTime = time.Now()

	var errOnce sync.Once
	var firstErr error
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i := 0; i < procs; i++ {
		contexts <- gg.NewContext(r.resolution.Width(), r.resolution.Height())
	}

	logEvery := uint64(max(1, r.fps*progressSeconds))

	for i := 0; i < r.totalFrames; i++ {
		select {
		case <-ctx.Done():
		case sem <- struct{}{}:
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		dc := <-contexts
		go func(dc *gg.Context, i int) {
			defer wg.Done()
			defer func() {
				<-sem
				contexts <- dc
			}()

			if err := r.createFrame(dc, i); err != nil {
				errOnce.Do(func() {
					firstErr = fmt.Errorf("frame %d: %w", i+1, err)
					cancel()
				})
				return
			}
			f := finishedFrames.Add(1)
			if f%logEvery == 0 {
				r.log.Info("finished frames",
					"done", f,
					"total", r.totalFrames,
					"avg_per_frame", fmt.Sprintf("%.4fs", time.Since(startTime).Seconds()/float64(f)))
			}
		}(dc, i)
	}

	wg.Wait()
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func frameCount(seconds float64, fps int) int {
	return max(1, int(math.Ceil(seconds*float64(fps))))
}
