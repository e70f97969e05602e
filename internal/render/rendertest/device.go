// Package rendertest provides a render.Device that records what it is asked
// to draw.
package rendertest

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/1broseidon/xrdesk/internal/render"
)

// Draw is one recorded draw call.
type Draw struct {
	Pass     int
	MVP      mgl32.Mat4
	Mesh     render.Mesh
	Material render.Material
	Pipeline render.Pipeline
}

// Pass is one recorded BeginPass.
type Pass struct {
	Target render.Target
	Clear  gputypes.Color
}

// Device records passes and draws. Textures listed in Reject fail with
// render.ErrUnsupportedTexture.
type Device struct {
	Passes []Pass
	Draws  []Draw
	Reject map[render.Texture]bool

	pipeline render.Pipeline
	inPass   bool
}

var _ render.Device = (*Device)(nil)

func (d *Device) BeginPass(target render.Target, clear gputypes.Color) error {
	if d.inPass {
		return errors.New("rendertest: nested pass")
	}
	d.inPass = true
	d.Passes = append(d.Passes, Pass{Target: target, Clear: clear})
	return nil
}

func (d *Device) SetPipeline(p render.Pipeline) {
	d.pipeline = p
}

func (d *Device) Draw(mvp mgl32.Mat4, mesh render.Mesh, mat render.Material) error {
	if !d.inPass {
		return errors.New("rendertest: draw outside of a pass")
	}
	if mat.Texture != nil && d.Reject[mat.Texture] {
		return render.ErrUnsupportedTexture
	}
	d.Draws = append(d.Draws, Draw{
		Pass:     len(d.Passes) - 1,
		MVP:      mvp,
		Mesh:     mesh,
		Material: mat,
		Pipeline: d.pipeline,
	})
	return nil
}

func (d *Device) EndPass() error {
	if !d.inPass {
		return errors.New("rendertest: end without begin")
	}
	d.inPass = false
	return nil
}

// TexturesDrawn lists the textures sampled in pass, in draw order.
func (d *Device) TexturesDrawn(pass int) []render.Texture {
	var out []render.Texture
	for _, dr := range d.Draws {
		if dr.Pass == pass && dr.Material.Kind == render.MaterialTexture {
			out = append(out, dr.Material.Texture)
		}
	}
	return out
}
