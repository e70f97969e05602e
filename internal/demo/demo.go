package demo

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/1broseidon/xrdesk/internal/movemode"
	"github.com/1broseidon/xrdesk/internal/scene"
	"github.com/1broseidon/xrdesk/internal/server"
)

const (
	WindowWidth  = 480
	WindowHeight = 320

	// fanStep is the yaw between neighbouring demo windows, in radians.
	fanStep = 0.45
)

var palette = []color.RGBA{
	{R: 0x30, G: 0x70, B: 0xc0, A: 0xff},
	{R: 0x30, G: 0xa0, B: 0x60, A: 0xff},
	{R: 0xb0, G: 0x50, B: 0x40, A: 0xff},
	{R: 0x80, G: 0x50, B: 0xb0, A: 0xff},
}

// Options selects what Populate creates.
type Options struct {
	// Windows is the number of test-pattern windows.
	Windows int
	// XR adds a stereo XR-native overlay.
	XR bool
	// Distance from the eye; zero keeps the server's spawn distance.
	Distance float32
}

// Populate creates and maps the demo clients. Windows fan out around the
// primary eye at the spawn distance; closing one unmaps and destroys it on
// the next dispatch, as a client would.
func Populate(srv *server.Server, disp *Display, opts Options) ([]*scene.View, error) {
	var views []*scene.View

	for i := 0; i < opts.Windows; i++ {
		title := fmt.Sprintf("demo %d", i+1)
		var v *scene.View
		win := NewWindow(title, WindowWidth, WindowHeight, palette[i%len(palette)], func() {
			disp.Post(func() {
				if err := srv.DestroyView(v.ID); err != nil {
					srv.Logger().Warn("destroy demo window", "view", v.ID, "error", err)
				}
			})
		})
		v = srv.NewView(scene.KindPlanar, win, win)
		v.Title = title
		if err := srv.MapView(v.ID); err != nil {
			return views, err
		}

		distance := opts.Distance
		if distance <= 0 {
			distance = srv.SpawnDistance()
		}
		yaw := (float32(i) - float32(opts.Windows-1)/2) * fanStep
		pos, rot := movemode.Carry(srv.Eye(), mgl32.Vec3{0, yaw, 0}, distance)
		if err := srv.MoveView(v.ID, pos, &rot); err != nil {
			return views, err
		}
		views = append(views, v)
	}

	if opts.XR {
		slots := srv.SlotCount()
		if slots == 0 {
			slots = 2
		}
		st := NewStereo(256, 256, slots)
		v := srv.NewView(scene.KindXR, st, st)
		v.Title = "stereo overlay"
		if err := srv.MapView(v.ID); err != nil {
			return views, err
		}
		views = append(views, v)
	}

	// The first window keeps focus.
	if opts.Windows > 0 {
		if err := srv.FocusView(views[0].ID); err != nil {
			return views, err
		}
	}
	return views, nil
}
