package visualizer

import (
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	labelFont     *truetype.Font
	labelFontErr  error
	labelFontOnce sync.Once
)

func loadLabelFont() (*truetype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = truetype.Parse(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// ggPainter draws on a gg.Context. It is not safe for concurrent use.
type ggPainter struct {
	dc    *gg.Context
	faces map[int]font.Face
}

func NewPainter(dc *gg.Context) Painter {
	return &ggPainter{dc: dc, faces: map[int]font.Face{}}
}

func (p *ggPainter) Clear(c color.Color) {
	p.dc.SetColor(c)
	p.dc.Clear()
}

func (p *ggPainter) FillCircle(x, y, r float64, c color.Color) {
	p.dc.DrawCircle(x, y, r)
	p.dc.SetColor(c)
	p.dc.Fill()
}

func (p *ggPainter) FillRect(x, y, w, h float64, c color.Color) {
	p.dc.DrawRectangle(x, y, w, h)
	p.dc.SetColor(c)
	p.dc.Fill()
}

func (p *ggPainter) StrokeRect(x, y, w, h float64, c color.Color) {
	p.dc.DrawRectangle(x, y, w, h)
	p.dc.SetColor(c)
	p.dc.SetLineWidth(1)
	p.dc.Stroke()
}

func (p *ggPainter) DrawText(s string, x, y, size float64, c color.Color) {
	face := p.face(int(size))
	if face == nil {
		return
	}
	p.dc.SetFontFace(face)
	p.dc.SetColor(c)
	p.dc.DrawStringAnchored(s, x, y, 0.5, 0.5)
}

func (p *ggPainter) face(size int) font.Face {
	if size <= 0 {
		return nil
	}
	if f, ok := p.faces[size]; ok {
		return f
	}
	ttf, err := loadLabelFont()
	if err != nil {
		return nil
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: float64(size)})
	p.faces[size] = f
	return f
}

// RenderImage draws a single frame into a new image. Sizes are rounded the
// same way Surface rounds them.
func RenderImage(f Frame) *image.RGBA {
	w, h := pixelSize(f.Geometry.Width, f.Geometry.Height)
	dc := gg.NewContext(w, h)
	Draw(NewPainter(dc), f)
	return dc.Image().(*image.RGBA)
}
