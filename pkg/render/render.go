package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"tessera/pkg/display"
)

// Painter turns a display list into pixels.
type Painter interface {
	Paint(list display.List) *image.RGBA
	DrawOverlay(stats OverlayStats)
}

// PaintFrame paints list with p and, when overlay is set, the debug banner
// on top.
func PaintFrame(p Painter, list display.List, overlay *OverlayStats) *image.RGBA {
	img := p.Paint(list)
	if overlay != nil {
		p.DrawOverlay(*overlay)
	}
	return img
}

// Renderer paints display lists and test patterns onto an RGBA8 buffer it
// owns.
type Renderer struct {
	target  *image.RGBA
	context *gg.Context
	face    *basicfont.Face
	pattern Pattern
}

func NewRenderer(width, height int) *Renderer {
	return NewRendererForImage(image.NewRGBA(image.Rect(0, 0, width, height)))
}

// NewRendererForImage paints directly into target.
func NewRendererForImage(target *image.RGBA) *Renderer {
	r := &Renderer{face: basicfont.Face7x13, pattern: PatternPlasma}
	r.setTarget(target)
	return r
}

func (r *Renderer) setTarget(target *image.RGBA) {
	r.target = target
	r.context = gg.NewContextForRGBA(target)
	r.context.SetFontFace(r.face)
}

// Resize replaces the buffer; previous contents are dropped.
func (r *Renderer) Resize(width, height int) {
	if width == r.Width() && height == r.Height() {
		return
	}
	r.setTarget(image.NewRGBA(image.Rect(0, 0, width, height)))
}

func (r *Renderer) Width() int  { return r.target.Bounds().Dx() }
func (r *Renderer) Height() int { return r.target.Bounds().Dy() }

// Paint renders list in command order and returns the buffer.
func (r *Renderer) Paint(list display.List) *image.RGBA {
	r.Render(list)
	return r.target
}

// Render draws every command, later ones over earlier ones.
func (r *Renderer) Render(list display.List) {
	r.context.SetRGB(0, 0, 0)
	r.context.Clear()
	for _, cmd := range list.Commands {
		switch c := cmd.(type) {
		case display.FillRect:
			r.fillRect(float64(c.X), float64(c.Y), float64(c.Width), float64(c.Height), c.Color)
		case display.DrawText:
			r.drawText(float64(c.X), float64(c.Y), c.Text, c.Color)
		}
	}
}

func (r *Renderer) fillRect(x, y, width, height float64, c display.Color) {
	if width <= 0 || height <= 0 {
		return
	}
	r.setColor(c)
	r.context.DrawRectangle(x, y, width, height)
	r.context.Fill()
}

// drawText places the top of the text at y.
func (r *Renderer) drawText(x, y float64, text string, c display.Color) {
	if text == "" {
		return
	}
	r.setColor(c)
	r.context.DrawString(text, x, y+float64(r.face.Ascent))
}

func (r *Renderer) setColor(c display.Color) {
	r.context.SetRGBA255(int(c[0]), int(c[1]), int(c[2]), int(c[3]))
}

// OverlayStats is shown by DrawOverlay in the top-left corner.
type OverlayStats struct {
	FrameNumber uint64
	FPS         float32
	Width       int
	Height      int
}

func (s OverlayStats) String() string {
	return fmt.Sprintf("FRAME:%d FPS:%.1f SIZE:%dX%d", s.FrameNumber, s.FPS, s.Width, s.Height)
}

// DrawOverlay paints the debug banner over whatever is in the buffer.
func (r *Renderer) DrawOverlay(stats OverlayStats) {
	r.fillRect(6, 6, 420, 20, display.Color{0, 0, 0, 190})
	r.drawText(10, 10, stats.String(), display.Color{240, 255, 240, 255})
}

// Image returns the buffer being painted.
func (r *Renderer) Image() *image.RGBA {
	return r.target
}

// Pixels returns the raw RGBA8 bytes, row-major without padding.
func (r *Renderer) Pixels() []byte {
	b := r.target.Bounds()
	if r.target.Stride == b.Dx()*4 {
		return r.target.Pix[:b.Dy()*r.target.Stride]
	}
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := r.target.PixOffset(b.Min.X, y)
		out = append(out, r.target.Pix[off:off+b.Dx()*4]...)
	}
	return out
}

func (r *Renderer) At(x, y int) color.RGBA {
	return r.target.RGBAAt(x, y)
}

func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}
