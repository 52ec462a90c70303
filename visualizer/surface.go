package visualizer

import (
	"context"
	"image"
	"math"
	"sync"
	"time"

	"github.com/fogleman/gg"
)

// Canvas is a drawing surface the render session can size and paint.
type Canvas interface {
	Resize(width, height float64)
	Size() (width, height float64)
	Paint(fn func(Painter))
}

// Container is the region a canvas fills.
type Container interface {
	Size() (width, height float64)
}

type ContainerFunc func() (float64, float64)

func (f ContainerFunc) Size() (float64, float64) { return f() }

func pixelSize(width, height float64) (int, int) {
	return pixels(width), pixels(height)
}

func pixels(v float64) int {
	if !(v >= 1) {
		return 1
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(v))
}

// Surface is an in-memory raster canvas backed by gg. Painting and
// snapshots are serialized so a capture never sees a half drawn frame.
type Surface struct {
	mu      sync.Mutex
	dc      *gg.Context
	painter Painter
	width   int
	height  int
}

// NewSurface returns a surface with no backing image. It becomes ready on
// the first Resize.
func NewSurface() *Surface {
	return &Surface{}
}

func (s *Surface) Resize(width, height float64) {
	w, h := pixelSize(width, height)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dc != nil && w == s.width && h == s.height {
		return
	}
	s.dc = gg.NewContext(w, h)
	s.painter = NewPainter(s.dc)
	s.width, s.height = w, h
}

func (s *Surface) Size() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.width), float64(s.height)
}

func (s *Surface) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dc != nil
}

func (s *Surface) Paint(fn func(Painter)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dc == nil {
		return
	}
	fn(s.painter)
}

// Snapshot copies the current pixels. It returns nil before the first Resize.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dc == nil {
		return nil
	}
	src := s.dc.Image().(*image.RGBA)
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

func (s *Surface) SavePNG(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dc == nil {
		return ErrSurfaceNotReady
	}
	return s.dc.SavePNG(path)
}

// CaptureStream samples the surface at fps until ctx is done, then closes
// the channel. The surface does not know whether anyone is recording.
func (s *Surface) CaptureStream(ctx context.Context, fps int) <-chan *image.RGBA {
	out := make(chan *image.RGBA)
	if fps <= 0 {
		fps = DefaultSettings().CaptureFPS
	}

	go func() {
		defer close(out)
		ticker := time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				img := s.Snapshot()
				if img == nil {
					continue
				}
				select {
				case out <- img:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
