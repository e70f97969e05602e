// Package soft is a CPU rasterizer for render.Image targets. It backs the
// simulated headset and frame dumps where no GPU context exists.
package soft

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/1broseidon/xrdesk/internal/render"
)

// ErrUnsupportedTarget is returned when a pass targets something other than
// a *render.Image.
var ErrUnsupportedTarget = errors.New("soft: unsupported render target")

// ErrNoPass is returned by Draw outside BeginPass/EndPass.
var ErrNoPass = errors.New("soft: draw outside of a pass")

type rgba struct{ r, g, b, a float32 }

// Device rasterizes triangles with perspective-correct texcoords and
// nearest sampling.
type Device struct {
	target   *render.Image
	pipeline render.Pipeline
	draws    int
}

var _ render.Device = (*Device)(nil)

// New returns a device using render.SurfacePipeline until told otherwise.
func New() *Device {
	return &Device{pipeline: render.SurfacePipeline()}
}

// Draws reports the number of successful draws since creation.
func (d *Device) Draws() int {
	return d.draws
}

func (d *Device) BeginPass(target render.Target, clear gputypes.Color) error {
	img, ok := target.(*render.Image)
	if !ok || img.RGBA == nil {
		return fmt.Errorf("%w: %T", ErrUnsupportedTarget, target)
	}
	d.target = img

	c := toRGBA8(rgba{
		r: float32(clear.R) * float32(clear.A),
		g: float32(clear.G) * float32(clear.A),
		b: float32(clear.B) * float32(clear.A),
		a: float32(clear.A),
	})
	pix := img.RGBA
	b := pix.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			pix.SetRGBA(x, y, c)
		}
	}
	return nil
}

func (d *Device) SetPipeline(p render.Pipeline) {
	d.pipeline = p
}

func (d *Device) EndPass() error {
	if d.target == nil {
		return ErrNoPass
	}
	d.target = nil
	return nil
}

func (d *Device) Draw(mvp mgl32.Mat4, mesh render.Mesh, mat render.Material) error {
	if d.target == nil {
		return ErrNoPass
	}

	var tex *render.Image
	if mat.Kind == render.MaterialTexture {
		img, ok := mat.Texture.(*render.Image)
		if !ok || img.RGBA == nil {
			return fmt.Errorf("%w: %T", render.ErrUnsupportedTexture, mat.Texture)
		}
		tex = img
	}
	if len(mesh.TexCoords) != len(mesh.Positions) {
		return fmt.Errorf("soft: mesh has %d positions but %d texcoords", len(mesh.Positions), len(mesh.TexCoords))
	}

	clip := make([]mgl32.Vec4, len(mesh.Positions))
	for i, p := range mesh.Positions {
		clip[i] = mvp.Mul4x1(p.Vec4(1))
	}

	for _, tri := range render.Triangles(mesh.Topology, len(clip)) {
		d.rasterize(clip, mesh.TexCoords, tri, mat, tex)
	}
	d.draws++
	return nil
}

func (d *Device) rasterize(clip []mgl32.Vec4, uvs []mgl32.Vec2, tri [3]int, mat render.Material, tex *render.Image) {
	const minW = 1e-6

	w, h := d.target.Size()
	var sx, sy, invW [3]float32
	for k, idx := range tri {
		c := clip[idx]
		if c[3] <= minW {
			// Crossing the eye plane; dropped rather than clipped.
			return
		}
		invW[k] = 1 / c[3]
		sx[k] = (c[0]*invW[k] + 1) * 0.5 * float32(w)
		sy[k] = (1 - c[1]*invW[k]) * 0.5 * float32(h)
	}

	area := edge(sx[0], sy[0], sx[1], sy[1], sx[2], sy[2])
	if area == 0 {
		return
	}

	minX := clampInt(int(math.Floor(float64(min3(sx[0], sx[1], sx[2])))), 0, w-1)
	maxX := clampInt(int(math.Ceil(float64(max3(sx[0], sx[1], sx[2])))), 0, w-1)
	minY := clampInt(int(math.Floor(float64(min3(sy[0], sy[1], sy[2])))), 0, h-1)
	maxY := clampInt(int(math.Ceil(float64(max3(sy[0], sy[1], sy[2])))), 0, h-1)

	uv0, uv1, uv2 := uvs[tri[0]], uvs[tri[1]], uvs[tri[2]]
	pix := d.target.RGBA
	origin := pix.Bounds().Min

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			b0 := edge(sx[1], sy[1], sx[2], sy[2], px, py) / area
			b1 := edge(sx[2], sy[2], sx[0], sy[0], px, py) / area
			b2 := edge(sx[0], sy[0], sx[1], sy[1], px, py) / area
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}

			q0, q1, q2 := b0*invW[0], b1*invW[1], b2*invW[2]
			norm := q0 + q1 + q2
			u := (q0*uv0[0] + q1*uv1[0] + q2*uv2[0]) / norm
			v := (q0*uv0[1] + q1*uv1[1] + q2*uv2[1]) / norm

			var src rgba
			switch mat.Kind {
			case render.MaterialTexture:
				src = sample(tex, u, v)
			case render.MaterialGrid:
				src = gridColor(mat.Color, u, v)
			}
			if src.a == 0 && d.pipeline.Blend != nil {
				continue
			}

			dx, dy := origin.X+x, origin.Y+y
			out := src
			if d.pipeline.Blend != nil {
				dst := fromRGBA8(pix.RGBAAt(dx, dy))
				inv := 1 - src.a
				out = rgba{
					r: src.r + dst.r*inv,
					g: src.g + dst.g*inv,
					b: src.b + dst.b*inv,
					a: src.a + dst.a*inv,
				}
			}
			pix.SetRGBA(dx, dy, toRGBA8(out))
		}
	}
}

// sample reads the texel under (u, v). v = 1 is the top row unless the image
// is stored bottom-up.
func sample(img *render.Image, u, v float32) rgba {
	w, h := img.Size()
	if w == 0 || h == 0 {
		return rgba{}
	}
	row := 1 - v
	if img.FlipY {
		row = v
	}
	x := clampInt(int(u*float32(w)), 0, w-1)
	y := clampInt(int(row*float32(h)), 0, h-1)
	b := img.RGBA.Bounds()
	c := fromRGBA8(img.RGBA.RGBAAt(b.Min.X+x, b.Min.Y+y))
	if img.Opaque {
		c.a = 1
	}
	return c
}

// gridColor draws thin lines every 0.01 model units fading out with distance
// from the grid center.
func gridColor(fg gputypes.Color, x, y float32) rgba {
	fract := func(f float32) float32 { return f - float32(math.Floor(float64(f))) }
	if fract(x*100) >= 0.01 && fract(y*100) >= 0.01 {
		return rgba{}
	}
	a := float32(math.Sqrt(float64(x*x+y*y))) * 7
	if a > 1 {
		a = 1
	}
	k := 1 - a
	return rgba{
		r: float32(fg.R) * float32(fg.A) * k,
		g: float32(fg.G) * float32(fg.A) * k,
		b: float32(fg.B) * float32(fg.A) * k,
		a: float32(fg.A) * k,
	}
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func fromRGBA8(c color.RGBA) rgba {
	return rgba{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

func toRGBA8(c rgba) color.RGBA {
	conv := func(f float32) uint8 {
		if f <= 0 {
			return 0
		}
		if f >= 1 {
			return 255
		}
		return uint8(f*255 + 0.5)
	}
	return color.RGBA{R: conv(c.r), G: conv(c.g), B: conv(c.b), A: conv(c.a)}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min3(a, b, c float32) float32 {
	return float32(math.Min(float64(a), math.Min(float64(b), float64(c))))
}

func max3(a, b, c float32) float32 {
	return float32(math.Max(float64(a), math.Max(float64(b), float64(c))))
}
