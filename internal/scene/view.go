// Package scene holds the placed views and the matrices that place them.
package scene

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.jetify.com/typeid/v2"

	"github.com/1broseidon/xrdesk/internal/render"
)

// IDPrefix is the typeid prefix carried by every view identifier.
const IDPrefix = "view"

// ID identifies a view for its whole lifetime.
type ID string

// NewID returns a fresh view identifier.
func NewID() ID {
	return ID(typeid.MustGenerate(IDPrefix).String())
}

// ParseID validates s as a view identifier.
func ParseID(s string) (ID, error) {
	parsed, err := typeid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid view id %q: %w", s, err)
	}
	if parsed.Prefix() != IDPrefix {
		return "", fmt.Errorf("expected prefix %q but got %q in id %q", IDPrefix, parsed.Prefix(), s)
	}
	return ID(s), nil
}

// Kind tags the two view variants.
type Kind int

const (
	// KindPlanar is a 2D client window placed as a quad.
	KindPlanar Kind = iota
	// KindXR is a client that renders its own per-eye buffers.
	KindXR
)

func (k Kind) String() string {
	switch k {
	case KindPlanar:
		return "planar"
	case KindXR:
		return "xr"
	default:
		return "unknown"
	}
}

// Surface is client content owned by the windowing layer.
type Surface interface {
	// Size is the current buffer size in pixels.
	Size() (width, height int)
	// Texture returns the current buffer, or false when none is attached.
	Texture() (render.Texture, bool)
	// SendFrameDone tells the client its last commit was presented.
	SendFrameDone(t time.Time)
}

// SlotTextures is implemented by XR-native surfaces that hold one composited
// texture per stereo slot.
type SlotTextures interface {
	TextureForSlot(slot int) (render.Texture, bool)
}

// SurfaceIterator is implemented by shells whose windows have sub-surfaces.
// fn receives each surface with its offset from the root surface.
type SurfaceIterator interface {
	ForEachSurface(fn func(s Surface, sx, sy int))
}

// HitTester is implemented by shells that refine which surface, if any,
// accepts input at a root-surface point.
type HitTester interface {
	SurfaceAt(sx, sy float64) (s Surface, localX, localY float64, ok bool)
}

// Activator is implemented by shells that show focus.
type Activator interface {
	SetActivated(activated bool)
}

// Closer is implemented by shells that can ask a client to close.
type Closer interface {
	Close()
}

// Sizer is implemented by shells whose window size differs from the root
// buffer size.
type Sizer interface {
	Size() (width, height int)
}

// Resizer is implemented by shells that accept a new size.
type Resizer interface {
	SetSize(width, height int)
}

// View is a placed window.
type View struct {
	ID    ID
	Kind  Kind
	Title string

	Position mgl32.Vec3
	// Rotation is applied X, then Y, then Z; see geom.RotationMatrix.
	Rotation mgl32.Vec3
	Mapped   bool

	// Surface is the root surface.
	Surface Surface
	// Shell is the protocol object behind the view. It may implement any
	// of the capability interfaces in this package.
	Shell any
}

// NewView creates an unmapped view at the origin.
func NewView(kind Kind, surface Surface, shell any) *View {
	return &View{
		ID:      NewID(),
		Kind:    kind,
		Surface: surface,
		Shell:   shell,
	}
}

// ForEachSurface visits the view's surfaces. Without a SurfaceIterator only
// the root surface is visited.
func (v *View) ForEachSurface(fn func(s Surface, sx, sy int)) {
	if it, ok := v.Shell.(SurfaceIterator); ok {
		it.ForEachSurface(fn)
		return
	}
	if v.Surface != nil {
		fn(v.Surface, 0, 0)
	}
}

// SurfaceAt resolves a root-surface point to the surface accepting input
// there. The default treats the root surface as one rectangle.
func (v *View) SurfaceAt(sx, sy float64) (Surface, float64, float64, bool) {
	if ht, ok := v.Shell.(HitTester); ok {
		return ht.SurfaceAt(sx, sy)
	}
	if v.Surface == nil {
		return nil, 0, 0, false
	}
	w, h := v.Surface.Size()
	if sx < 0 || sy < 0 || sx >= float64(w) || sy >= float64(h) {
		return nil, 0, 0, false
	}
	return v.Surface, sx, sy, true
}

// SetActivated forwards focus state to the shell if it cares.
func (v *View) SetActivated(activated bool) {
	if a, ok := v.Shell.(Activator); ok {
		a.SetActivated(activated)
	}
}

// Close asks the client to close. Views without a Closer ignore it.
func (v *View) Close() {
	if c, ok := v.Shell.(Closer); ok {
		c.Close()
	}
}

// Size reports the window size, defaulting to the root surface size.
func (v *View) Size() (int, int) {
	if s, ok := v.Shell.(Sizer); ok {
		return s.Size()
	}
	if v.Surface == nil {
		return 0, 0
	}
	return v.Surface.Size()
}

// SetSize requests a new window size. Views without a Resizer ignore it.
func (v *View) SetSize(width, height int) {
	if r, ok := v.Shell.(Resizer); ok {
		r.SetSize(width, height)
	}
}

// Pickable reports whether pointer resolution considers the view.
// XR-native views place themselves and are never picked.
func (v *View) Pickable() bool {
	return v.Mapped && v.Kind == KindPlanar
}
