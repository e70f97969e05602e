// Package render defines the drawing surface the compositor targets.
package render

import (
	"errors"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// ErrUnsupportedTexture is returned by a Device asked to sample a texture it
// cannot read.
var ErrUnsupportedTexture = errors.New("unsupported texture type")

// Texture is sampled pixel content: a client buffer, a cursor image or an
// XR-native composite.
type Texture interface {
	Size() (width, height int)
}

// Target is a color attachment a Device renders into.
type Target interface {
	Size() (width, height int)
}

// Image is CPU-side RGBA content. It is both a Texture and a Target.
type Image struct {
	RGBA *image.RGBA
	// Opaque ignores the alpha channel when sampling.
	Opaque bool
	// FlipY samples the image bottom-up.
	FlipY bool
}

// NewImage allocates a transparent width x height image.
func NewImage(width, height int) *Image {
	return &Image{RGBA: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Size returns the pixel dimensions.
func (i *Image) Size() (int, int) {
	if i == nil || i.RGBA == nil {
		return 0, 0
	}
	b := i.RGBA.Bounds()
	return b.Dx(), b.Dy()
}

// MaterialKind selects how a mesh is shaded.
type MaterialKind int

const (
	// MaterialTexture samples Material.Texture at the vertex texcoords.
	MaterialTexture MaterialKind = iota
	// MaterialGrid draws the floor grid in Material.Color over a
	// transparent background.
	MaterialGrid
)

// Material is the shading input for one draw.
type Material struct {
	Kind    MaterialKind
	Texture Texture
	Color   gputypes.Color
}

// Mesh is a small vertex list. TexCoords carries one entry per position.
type Mesh struct {
	Positions []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Topology  gputypes.PrimitiveTopology
}

// Pipeline is the fixed-function state for a group of draws.
type Pipeline struct {
	Name         string
	Blend        *gputypes.BlendState
	DepthWrite   bool
	DepthCompare gputypes.CompareFunction
	Primitive    gputypes.PrimitiveState
	Format       gputypes.TextureFormat
}

// Device executes draws against one target at a time.
type Device interface {
	// BeginPass binds target, sets the viewport to its size and clears it.
	BeginPass(target Target, clear gputypes.Color) error
	SetPipeline(p Pipeline)
	Draw(mvp mgl32.Mat4, mesh Mesh, mat Material) error
	EndPass() error
}

// SurfacePipeline is used for client surfaces, XR-native buffers, the grid
// and the cursor: premultiplied source-over, no depth writes.
func SurfacePipeline() Pipeline {
	premulBlend := gputypes.BlendStatePremultiplied()
	return Pipeline{
		Name:         "surface",
		Blend:        &premulBlend,
		DepthWrite:   false,
		DepthCompare: gputypes.CompareFunctionAlways,
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Format: gputypes.TextureFormatRGBA8Unorm,
	}
}

// UnitQuad spans (0,0)-(1,1) in the XY plane; texcoords follow positions.
func UnitQuad() Mesh {
	topology, _ := TopologyFor(ModeTriangleStrip)
	return Mesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {0, 1, 0}, {1, 0, 0}, {1, 1, 0}},
		TexCoords: []mgl32.Vec2{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		Topology:  topology,
	}
}

// CenteredQuad spans (-0.5,-0.5)-(0.5,0.5). Texcoords carry the model-space
// XY so the grid material can place its lines.
func CenteredQuad() Mesh {
	topology, _ := TopologyFor(ModeTriangleStrip)
	return Mesh{
		Positions: []mgl32.Vec3{{-0.5, -0.5, 0}, {-0.5, 0.5, 0}, {0.5, -0.5, 0}, {0.5, 0.5, 0}},
		TexCoords: []mgl32.Vec2{{-0.5, -0.5}, {-0.5, 0.5}, {0.5, -0.5}, {0.5, 0.5}},
		Topology:  topology,
	}
}
