package pointer

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/1broseidon/xrdesk/internal/render"
	"github.com/1broseidon/xrdesk/internal/scene"
)

// Built-in arrow dimensions before upscaling.
const (
	arrowSize  = 24
	arrowScale = 2
)

var arrowOutline = []image.Point{
	{1, 1}, {1, 19}, {6, 15}, {9, 22}, {12, 21}, {9, 14}, {15, 14},
}

// Cursor is the image drawn at the pointer. Client cursors come from a
// surface; the built-in arrow is a fixed image.
type Cursor struct {
	Surface scene.Surface
	Image   *render.Image

	HotspotX, HotspotY int
	// Scale is the buffer scale: pixels per logical cursor pixel.
	Scale int
}

// ClientCursor uses a client-supplied surface at scale 1.
func ClientCursor(s scene.Surface, hotspotX, hotspotY int) *Cursor {
	return &Cursor{Surface: s, HotspotX: hotspotX, HotspotY: hotspotY, Scale: 1}
}

// DefaultCursor returns the built-in arrow rendered at twice its logical
// size, hotspot at the tip.
func DefaultCursor() *Cursor {
	small := image.NewRGBA(image.Rect(0, 0, arrowSize, arrowSize))
	for y := range arrowSize {
		for x := range arrowSize {
			if !insideArrow(x, y) {
				continue
			}
			c := color.RGBA{255, 255, 255, 255}
			if !insideArrow(x-1, y) || !insideArrow(x+1, y) || !insideArrow(x, y-1) || !insideArrow(x, y+1) {
				c = color.RGBA{0, 0, 0, 255}
			}
			small.SetRGBA(x, y, c)
		}
	}

	img := render.NewImage(arrowSize*arrowScale, arrowSize*arrowScale)
	xdraw.CatmullRom.Scale(img.RGBA, img.RGBA.Bounds(), small, small.Bounds(), xdraw.Over, nil)
	return &Cursor{
		Image:    img,
		HotspotX: arrowOutline[0].X * arrowScale,
		HotspotY: arrowOutline[0].Y * arrowScale,
		Scale:    arrowScale,
	}
}

// Size is the cursor buffer size in pixels.
func (c *Cursor) Size() (int, int) {
	if c.Surface != nil {
		return c.Surface.Size()
	}
	if c.Image != nil {
		return c.Image.Size()
	}
	return 0, 0
}

// Texture returns the image to draw, or false when there is none.
func (c *Cursor) Texture() (render.Texture, bool) {
	if c.Surface != nil {
		return c.Surface.Texture()
	}
	if c.Image != nil {
		return c.Image, true
	}
	return nil, false
}

// insideArrow is an even-odd point-in-polygon test at the pixel center.
func insideArrow(x, y int) bool {
	px, py := float64(x)+0.5, float64(y)+0.5
	inside := false
	n := len(arrowOutline)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := arrowOutline[i], arrowOutline[j]
		ay, by := float64(a.Y), float64(b.Y)
		if (ay > py) == (by > py) {
			continue
		}
		ax, bx := float64(a.X), float64(b.X)
		if px < (bx-ax)*(py-ay)/(by-ay)+ax {
			inside = !inside
		}
	}
	return inside
}
