package demo

import (
	"image"
	"image/color"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/1broseidon/xrdesk/internal/input"
	"github.com/1broseidon/xrdesk/internal/render"
	"github.com/1broseidon/xrdesk/internal/scene"
)

const (
	checkerSize = 25
	borderWidth = 4
	markRadius  = 3
)

var (
	activeBorder   = color.RGBA{R: 0xf0, G: 0xc0, B: 0x30, A: 0xff}
	inactiveBorder = color.RGBA{R: 0x40, G: 0x40, B: 0x48, A: 0xff}
	titleColor     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	markColor      = color.RGBA{R: 0xff, G: 0x20, B: 0x20, A: 0xff}
)

// Window is a test-pattern client: a two-tone checkerboard with a title, a
// border that shows focus and a dot at every click. It is both the view's
// surface and its shell.
type Window struct {
	Title string

	base    color.RGBA
	img     *render.Image
	active  bool
	marks   []image.Point
	frames  int
	onClose func()
}

var (
	_ scene.Surface   = (*Window)(nil)
	_ scene.Activator = (*Window)(nil)
	_ scene.Closer    = (*Window)(nil)
	_ scene.Resizer   = (*Window)(nil)
	_ Clicker         = (*Window)(nil)
)

// NewWindow creates a width x height window tinted with base. onClose runs
// when the compositor asks the window to close.
func NewWindow(title string, width, height int, base color.RGBA, onClose func()) *Window {
	w := &Window{Title: title, base: base, onClose: onClose}
	w.SetSize(width, height)
	return w
}

func (w *Window) Size() (int, int) { return w.img.Size() }

func (w *Window) Texture() (render.Texture, bool) { return w.img, true }

func (w *Window) SendFrameDone(time.Time) { w.frames++ }

// Frames counts frame-done notifications.
func (w *Window) Frames() int { return w.frames }

// Active reports whether the window was last told it has focus.
func (w *Window) Active() bool { return w.active }

func (w *Window) SetActivated(activated bool) {
	if w.active == activated {
		return
	}
	w.active = activated
	w.paint()
}

func (w *Window) Close() {
	if w.onClose != nil {
		w.onClose()
	}
}

// SetSize reallocates the buffer; clicks outside the new size are dropped.
func (w *Window) SetSize(width, height int) {
	w.img = &render.Image{RGBA: image.NewRGBA(image.Rect(0, 0, width, height)), Opaque: true}
	kept := w.marks[:0]
	for _, p := range w.marks {
		if p.X < width && p.Y < height {
			kept = append(kept, p)
		}
	}
	w.marks = kept
	w.paint()
}

func (w *Window) Click(x, y float64, _ input.Button) {
	p := image.Pt(int(x), int(y))
	w.marks = append(w.marks, p)
	w.paintMark(p)
}

// At is the pixel at a surface-local point.
func (w *Window) At(x, y int) color.RGBA {
	return w.img.RGBA.RGBAAt(x, y)
}

func (w *Window) paint() {
	dst := w.img.RGBA
	b := dst.Bounds()
	dark := color.RGBA{R: w.base.R / 2, G: w.base.G / 2, B: w.base.B / 2, A: 0xff}
	for y := b.Min.Y; y < b.Max.Y; y += checkerSize {
		for x := b.Min.X; x < b.Max.X; x += checkerSize {
			c := w.base
			if (x/checkerSize+y/checkerSize)%2 == 1 {
				c = dark
			}
			cell := image.Rect(x, y, x+checkerSize, y+checkerSize).Intersect(b)
			draw.Draw(dst, cell, image.NewUniform(c), image.Point{}, draw.Src)
		}
	}

	border := inactiveBorder
	if w.active {
		border = activeBorder
	}
	edges := []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+borderWidth),
		image.Rect(b.Min.X, b.Max.Y-borderWidth, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, b.Min.Y, b.Min.X+borderWidth, b.Max.Y),
		image.Rect(b.Max.X-borderWidth, b.Min.Y, b.Max.X, b.Max.Y),
	}
	for _, r := range edges {
		draw.Draw(dst, r.Intersect(b), image.NewUniform(border), image.Point{}, draw.Src)
	}

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(titleColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(borderWidth+6, borderWidth+16),
	}
	d.DrawString(w.Title)

	for _, p := range w.marks {
		w.paintMark(p)
	}
}

func (w *Window) paintMark(p image.Point) {
	r := image.Rect(p.X-markRadius, p.Y-markRadius, p.X+markRadius+1, p.Y+markRadius+1)
	draw.Draw(w.img.RGBA, r.Intersect(w.img.RGBA.Bounds()), image.NewUniform(markColor), image.Point{}, draw.Src)
}
