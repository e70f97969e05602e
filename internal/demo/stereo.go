package demo

import (
	"image"
	"image/color"
	"time"

	"golang.org/x/image/draw"

	"github.com/1broseidon/xrdesk/internal/render"
	"github.com/1broseidon/xrdesk/internal/scene"
)

// slotTints colors each eye's frame so per-slot composition is visible.
var slotTints = []color.RGBA{
	{R: 0x99, G: 0x00, B: 0x00, A: 0x99},
	{R: 0x00, G: 0x00, B: 0x99, A: 0x99},
}

// Stereo is an XR-native client that hands the compositor one buffer per
// stereo slot: a translucent tinted frame around an otherwise clear eye.
type Stereo struct {
	width, height int
	slots         []*render.Image
	frames        int
}

var (
	_ scene.Surface      = (*Stereo)(nil)
	_ scene.SlotTextures = (*Stereo)(nil)
)

// NewStereo creates per-slot buffers of width x height for slots eyes.
func NewStereo(width, height, slots int) *Stereo {
	s := &Stereo{width: width, height: height}
	frame := width / 16
	for i := 0; i < slots; i++ {
		img := render.NewImage(width, height)
		tint := image.NewUniform(slotTints[i%len(slotTints)])
		b := img.RGBA.Bounds()
		inner := b.Inset(frame)
		for _, r := range []image.Rectangle{
			image.Rect(b.Min.X, b.Min.Y, b.Max.X, inner.Min.Y),
			image.Rect(b.Min.X, inner.Max.Y, b.Max.X, b.Max.Y),
			image.Rect(b.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y),
			image.Rect(inner.Max.X, inner.Min.Y, b.Max.X, inner.Max.Y),
		} {
			draw.Draw(img.RGBA, r, tint, image.Point{}, draw.Src)
		}
		s.slots = append(s.slots, img)
	}
	return s
}

func (s *Stereo) Size() (int, int) { return s.width, s.height }

// Texture is the first slot's buffer; XR views are drawn per slot.
func (s *Stereo) Texture() (render.Texture, bool) {
	return s.TextureForSlot(0)
}

func (s *Stereo) SendFrameDone(time.Time) { s.frames++ }

func (s *Stereo) Frames() int { return s.frames }

func (s *Stereo) TextureForSlot(slot int) (render.Texture, bool) {
	if slot < 0 || slot >= len(s.slots) {
		return nil, false
	}
	return s.slots[slot], true
}
