// Package viewer hosts the live visualization in a desktop window. The
// window's frame callback drives the render session, and the rendered
// surface is shown centered in the window.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"pianorain/controls"
	"pianorain/logger"
	"pianorain/visualizer"
)

var (
	windowColor = color.RGBA{0x11, 0x11, 0x11, 0xff}
	textColor   = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	hintFace    = text.NewGoXFace(basicfont.Face7x13)
)

// Player is the controller the window sends key presses to.
type Player interface {
	TogglePlay() bool
	ToggleRecording(ctx context.Context) (string, error)
	ToggleOrientation() visualizer.Orientation
	LoadFS(ctx context.Context, files fs.FS, name string) error
	Controls() controls.Visual
	NotifyResize()
	Tick()
}

// Snapshotter is the surface the session paints on.
type Snapshotter interface {
	Snapshot() *image.RGBA
}

// Game implements ebiten.Game. It is also the container the render session
// measures, so the surface follows the window size.
type Game struct {
	player  Player
	surface Snapshotter
	log     *slog.Logger
	ctx     context.Context

	mu     sync.Mutex
	width  int
	height int

	frame *ebiten.Image
	hints bool
}

func NewGame(ctx context.Context, surface Snapshotter) *Game {
	return &Game{
		surface: surface,
		log:     logger.GetLogger(),
		ctx:     ctx,
		hints:   true,
	}
}

// Bind attaches the controller. It must be called before the window runs.
func (g *Game) Bind(p Player) {
	g.player = p
}

// Size is the current window size in device independent pixels.
func (g *Game) Size() (float64, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return float64(g.width), float64(g.height)
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.player.TogglePlay()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		g.player.ToggleOrientation()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.hints = !g.hints
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		// Stopping encodes the video, which must not block the window.
		go g.toggleRecording()
	}
	if files := ebiten.DroppedFiles(); files != nil {
		go g.loadDropped(files)
	}

	g.player.Tick()
	return nil
}

func (g *Game) toggleRecording() {
	out, err := g.player.ToggleRecording(g.ctx)
	switch {
	case err != nil:
		g.log.Error("recording failed", "error", err)
	case out != "":
		g.log.Info("recording saved", "output", out)
	}
}

func (g *Game) loadDropped(files fs.FS) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		g.log.Error("read dropped files", "error", err)
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		// Only the first file is loaded; a new upload replaces the track.
		if err := g.player.LoadFS(g.ctx, files, e.Name()); err != nil {
			g.log.Error("load dropped file", "file", e.Name(), "error", err)
		}
		return
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(windowColor)

	if img := g.surface.Snapshot(); img != nil {
		b := img.Bounds()
		if g.frame == nil || g.frame.Bounds().Dx() != b.Dx() || g.frame.Bounds().Dy() != b.Dy() {
			if g.frame != nil {
				g.frame.Deallocate()
			}
			g.frame = ebiten.NewImage(b.Dx(), b.Dy())
		}
		g.frame.WritePixels(img.Pix)

		sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
		x, y := center(b.Dx(), b.Dy(), sw, sh)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(x), float64(y))
		screen.DrawImage(g.frame, op)
	}

	if g.hints {
		op := &text.DrawOptions{}
		op.GeoM.Translate(8, 8)
		op.ColorScale.ScaleWithColor(textColor)
		text.Draw(screen, hintLine(g.player.Controls()), hintFace, op)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.mu.Lock()
	changed := outsideWidth != g.width || outsideHeight != g.height
	g.width, g.height = outsideWidth, outsideHeight
	g.mu.Unlock()

	if changed && g.player != nil {
		g.player.NotifyResize()
	}
	return outsideWidth, outsideHeight
}

// center returns the offset that centers a w by h image on the screen.
func center(w, h, screenW, screenH int) (int, int) {
	return (screenW - w) / 2, (screenH - h) / 2
}

func hintLine(v controls.Visual) string {
	return fmt.Sprintf("[space] %s   [r] %s   [o] %s   [h] hide   [esc] quit",
		v.PlayPause.Title, v.Record.Title, v.Orientation.Title)
}

type Options struct {
	Title  string
	Width  int
	Height int
}

// Run opens the window and blocks until it is closed or ctx is done.
func Run(g *Game, opts Options) error {
	if g.player == nil {
		return errors.New("viewer: no player bound")
	}
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
