package demo

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/1broseidon/xrdesk/internal/input"
	"github.com/1broseidon/xrdesk/internal/output"
	"github.com/1broseidon/xrdesk/internal/render"
	"github.com/1broseidon/xrdesk/internal/render/rendertest"
	"github.com/1broseidon/xrdesk/internal/scene"
	"github.com/1broseidon/xrdesk/internal/server"
	"github.com/1broseidon/xrdesk/internal/xr/xrtest"
)

func TestDisplayRunsPostedRequestsInOrder(t *testing.T) {
	d := NewDisplay("", nil)
	if d.SocketName() != DefaultSocketName {
		t.Fatalf("expected socket %q, got %q", DefaultSocketName, d.SocketName())
	}

	var got []int
	d.Post(func() { got = append(got, 1) })
	d.Post(func() { got = append(got, 2) })
	if d.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", d.Pending())
	}
	if err := d.Dispatch(time.Millisecond); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected [1 2], got %v", got)
	}
	if d.Pending() != 0 {
		t.Fatalf("expected queue drained, got %d", d.Pending())
	}
}

func TestDisplayDispatchWaitsForPost(t *testing.T) {
	d := NewDisplay("wayland-9", nil)
	ran := make(chan struct{})
	go func() {
		time.Sleep(5 * time.Millisecond)
		d.Post(func() { close(ran) })
	}()
	if err := d.Dispatch(time.Second); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	select {
	case <-ran:
	default:
		t.Fatalf("expected the posted request to run during dispatch")
	}
}

func TestDisplayRecordsOutputs(t *testing.T) {
	d := NewDisplay("", nil)
	d.AdvertiseOutput(output.Synthetic())
	outs := d.Outputs()
	if len(outs) != 1 || outs[0].Name != "XR-1" {
		t.Fatalf("expected the synthetic output, got %+v", outs)
	}
}

func TestSeatRoutesClicksToFocusedWindow(t *testing.T) {
	win := NewWindow("w", 100, 80, color.RGBA{R: 0x30, G: 0x70, B: 0xc0, A: 0xff}, nil)
	before := win.At(50, 40)

	s := NewSeat(nil)
	s.PointerEnter(win, 10, 10)
	s.PointerMotion(1, 50, 40)
	s.PointerButton(2, input.ButtonLeft, true)
	s.PointerButton(3, input.ButtonLeft, false)

	if got := win.At(50, 40); got != markColor {
		t.Fatalf("expected a mark at the click, got %v (was %v)", got, before)
	}

	s.PointerClearFocus()
	if s.PointerFocus() != nil {
		t.Fatalf("expected pointer focus cleared")
	}
	s.PointerButton(4, input.ButtonLeft, true)
	if len(win.marks) != 1 {
		t.Fatalf("expected clicks without focus to be dropped, got %d marks", len(win.marks))
	}
}

func TestWindowFocusBorder(t *testing.T) {
	win := NewWindow("w", 64, 64, color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}, nil)
	if got := win.At(0, 0); got != inactiveBorder {
		t.Fatalf("expected inactive border, got %v", got)
	}
	win.SetActivated(true)
	if got := win.At(0, 0); got != activeBorder {
		t.Fatalf("expected active border, got %v", got)
	}
}

func TestWindowResizeKeepsMarksInside(t *testing.T) {
	win := NewWindow("w", 200, 200, color.RGBA{A: 0xff}, nil)
	win.Click(20, 20, input.ButtonLeft)
	win.Click(150, 150, input.ButtonLeft)
	win.SetSize(100, 100)

	if w, h := win.Size(); w != 100 || h != 100 {
		t.Fatalf("expected 100x100, got %dx%d", w, h)
	}
	if len(win.marks) != 1 {
		t.Fatalf("expected one mark to survive, got %d", len(win.marks))
	}
	if got := win.At(20, 20); got != markColor {
		t.Fatalf("expected surviving mark repainted, got %v", got)
	}
}

func TestStereoSlotTextures(t *testing.T) {
	st := NewStereo(64, 64, 2)
	left, ok := st.TextureForSlot(0)
	if !ok {
		t.Fatalf("expected a left texture")
	}
	right, ok := st.TextureForSlot(1)
	if !ok {
		t.Fatalf("expected a right texture")
	}
	if left == right {
		t.Fatalf("expected distinct per-slot textures")
	}
	if _, ok := st.TextureForSlot(2); ok {
		t.Fatalf("expected no texture for a missing slot")
	}

	l := left.(*render.Image).RGBA.RGBAAt(0, 0)
	r := right.(*render.Image).RGBA.RGBAAt(0, 0)
	if l.R == 0 || r.B == 0 {
		t.Fatalf("expected tinted frames, got left %v right %v", l, r)
	}
	if c := left.(*render.Image).RGBA.RGBAAt(32, 32); c.A != 0 {
		t.Fatalf("expected a clear centre, got %v", c)
	}
}

func newServer(t *testing.T) (*server.Server, *Display) {
	t.Helper()
	disp := NewDisplay("", nil)
	srv, err := server.New(server.Config{
		Runtime: xrtest.New(),
		Device:  &rendertest.Device{},
		Display: disp,
		Seat:    NewSeat(nil),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return srv, disp
}

func TestPopulate(t *testing.T) {
	srv, disp := newServer(t)

	views, err := Populate(srv, disp, Options{Windows: 3, XR: true})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	if len(views) != 4 {
		t.Fatalf("expected 4 views, got %d", len(views))
	}
	if f := srv.Views().Focused(); f != views[0] {
		t.Fatalf("expected the first window focused, got %v", f)
	}

	// The middle window sits straight ahead at the spawn distance.
	mid := views[1]
	eye := srv.Eye()
	if d := mid.Position.Sub(eye.Position).Len(); d < 1.999 || d > 2.001 {
		t.Fatalf("expected the middle window 2 units away, got %v", d)
	}
	leftOfMid := views[0].Position.X() < mid.Position.X()
	rightOfMid := views[2].Position.X() < mid.Position.X()
	if leftOfMid == rightOfMid {
		t.Fatalf("expected outer windows on either side, got %v %v %v",
			views[0].Position, mid.Position, views[2].Position)
	}
	if views[3].Kind != scene.KindXR || !views[3].Mapped {
		t.Fatalf("expected a mapped XR view, got %+v", views[3])
	}
}

func TestPopulateCloseDestroysOnDispatch(t *testing.T) {
	srv, disp := newServer(t)
	views, err := Populate(srv, disp, Options{Windows: 2})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}

	views[0].Close()
	if srv.Views().Len() != 2 {
		t.Fatalf("expected close to wait for dispatch")
	}
	if _, err := srv.Step(context.Background()); err != nil {
		t.Fatalf("step: %v", err)
	}
	if srv.Views().Len() != 1 {
		t.Fatalf("expected one view left, got %d", srv.Views().Len())
	}
	if f := srv.Views().Focused(); f != views[1] {
		t.Fatalf("expected focus to pass to the remaining window, got %v", f)
	}
}
