// Package compositor draws the scene for one eye: background, floor grid,
// the mapped views back to front and the cursor.
package compositor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/1broseidon/xrdesk/internal/geom"
	"github.com/1broseidon/xrdesk/internal/pointer"
	"github.com/1broseidon/xrdesk/internal/render"
	"github.com/1broseidon/xrdesk/internal/scene"
)

// Config holds the drawing parameters.
type Config struct {
	Background gputypes.Color
	GridColor  gputypes.Color
	Near       float32
	Far        float32
	Logger     *slog.Logger
}

// DefaultConfig is the dark blue room with a white floor grid.
func DefaultConfig() Config {
	return Config{
		Background: gputypes.Color{R: 0.08, G: 0.07, B: 0.16, A: 1},
		GridColor:  gputypes.Color{R: 1, G: 1, B: 1, A: 1},
		Near:       0.05,
		Far:        100,
	}
}

// Eye is what a slot needs to draw: its identity, pose and field of view.
type Eye struct {
	Slot int
	Pose geom.Pose
	Fov  geom.Fov
}

// Compositor renders eyes. It holds no scene state of its own.
type Compositor struct {
	cfg      Config
	logger   *slog.Logger
	pipeline render.Pipeline
	quad     render.Mesh
	grid     render.Mesh
}

// New creates a compositor. Zero Near/Far take the defaults.
func New(cfg Config) *Compositor {
	def := DefaultConfig()
	if cfg.Near <= 0 {
		cfg.Near = def.Near
	}
	if cfg.Far <= cfg.Near {
		cfg.Far = def.Far
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compositor{
		cfg:      cfg,
		logger:   logger,
		pipeline: render.SurfacePipeline(),
		quad:     render.UnitQuad(),
		grid:     render.CenteredQuad(),
	}
}

// Projection is the eye's asymmetric frustum.
func (c *Compositor) Projection(fov geom.Fov) mgl32.Mat4 {
	return geom.ProjectionFromFov(fov, c.cfg.Near, c.cfg.Far)
}

// GridMatrix lays the centered quad flat, 50 units wide, one unit below
// the origin.
func GridMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(0, -1, 0).
		Mul4(mgl32.Scale3D(50, 50, 50)).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(90)))
}

// FullViewport maps the unit quad onto clip space for XR-native content.
func FullViewport() mgl32.Mat4 {
	return mgl32.Translate3D(-1, -1, 0).Mul4(mgl32.Scale3D(2, 2, 1))
}

// CursorModel scales the unit quad to the cursor's world size and puts the
// hotspot on the cursor matrix origin.
func CursorModel(matrix mgl32.Mat4, c *pointer.Cursor) (mgl32.Mat4, bool) {
	w, h := c.Size()
	if w <= 0 || h <= 0 {
		return mgl32.Mat4{}, false
	}
	scale := c.Scale
	if scale <= 0 {
		scale = 1
	}
	sx := float32(w) / geom.SurfaceScale / float32(scale)
	sy := float32(h) / geom.SurfaceScale / float32(scale)
	m := matrix.Mul4(mgl32.Scale3D(sx, sy, 1))
	return m.Mul4(mgl32.Translate3D(
		-float32(c.HotspotX)/float32(w),
		-1+float32(c.HotspotY)/float32(h),
		0,
	)), true
}

// RenderEye draws one eye into target. views is the scene list front to
// back; it is drawn back to front. ptr may be nil. Only device pass errors
// are returned: content that cannot be drawn is logged and skipped.
func (c *Compositor) RenderEye(dev render.Device, target render.Target, eye Eye, views []*scene.View, ptr *pointer.State) error {
	if err := dev.BeginPass(target, c.cfg.Background); err != nil {
		return fmt.Errorf("begin pass for slot %d: %w", eye.Slot, err)
	}
	dev.SetPipeline(c.pipeline)

	vp := c.Projection(eye.Fov).Mul4(eye.Pose.ViewMatrix())

	c.draw(dev, vp.Mul4(GridMatrix()), c.grid, render.Material{Kind: render.MaterialGrid, Color: c.cfg.GridColor}, "grid")

	for i := len(views) - 1; i >= 0; i-- {
		v := views[i]
		if !v.Mapped {
			continue
		}
		switch v.Kind {
		case scene.KindXR:
			c.drawXR(dev, eye.Slot, v)
		default:
			c.drawPlanar(dev, vp, v)
		}
	}

	if ptr != nil && ptr.CursorVisible && ptr.Cursor != nil {
		c.drawCursor(dev, vp, ptr)
	}

	if err := dev.EndPass(); err != nil {
		return fmt.Errorf("end pass for slot %d: %w", eye.Slot, err)
	}
	return nil
}

func (c *Compositor) drawPlanar(dev render.Device, vp mgl32.Mat4, v *scene.View) {
	if v.Surface == nil {
		return
	}
	rootW, rootH := v.Surface.Size()
	v.ForEachSurface(func(s scene.Surface, sx, sy int) {
		tex, ok := s.Texture()
		if !ok {
			c.logger.Debug("surface has no buffer", "view", v.ID)
			return
		}
		w, h := s.Size()
		m := scene.SurfaceQuadMatrix(v, w, h, sx, sy, rootW, rootH)
		c.draw(dev, vp.Mul4(m), c.quad, render.Material{Kind: render.MaterialTexture, Texture: tex}, string(v.ID))
	})
}

func (c *Compositor) drawXR(dev render.Device, slot int, v *scene.View) {
	st, ok := v.Shell.(scene.SlotTextures)
	if !ok {
		st, ok = v.Surface.(scene.SlotTextures)
	}
	if !ok {
		c.logger.Warn("xr view has no per-slot buffers", "view", v.ID)
		return
	}
	tex, ok := st.TextureForSlot(slot)
	if !ok {
		c.logger.Debug("xr view has no texture for slot", "view", v.ID, "slot", slot)
		return
	}
	c.draw(dev, FullViewport(), c.quad, render.Material{Kind: render.MaterialTexture, Texture: tex}, string(v.ID))
}

func (c *Compositor) drawCursor(dev render.Device, vp mgl32.Mat4, ptr *pointer.State) {
	tex, ok := ptr.Cursor.Texture()
	if !ok {
		return
	}
	m, ok := CursorModel(ptr.CursorMatrix, ptr.Cursor)
	if !ok {
		return
	}
	c.draw(dev, vp.Mul4(m), c.quad, render.Material{Kind: render.MaterialTexture, Texture: tex}, "cursor")
}

func (c *Compositor) draw(dev render.Device, mvp mgl32.Mat4, mesh render.Mesh, mat render.Material, what string) {
	err := dev.Draw(mvp, mesh, mat)
	if err == nil {
		return
	}
	if errors.Is(err, render.ErrUnsupportedTexture) {
		c.logger.Warn("skipping draw", "what", what, "error", err)
		return
	}
	c.logger.Error("draw failed", "what", what, "error", err)
}
