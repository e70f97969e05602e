// Package sim is a desktop stand-in for a head-mounted display runtime: two
// eyes with a fixed field of view, in-memory swapchain images and frame
// pacing at a fixed refresh rate.
package sim

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/1broseidon/xrdesk/internal/geom"
	"github.com/1broseidon/xrdesk/internal/render"
	"github.com/1broseidon/xrdesk/internal/xr"
)

// Config describes the simulated headset.
type Config struct {
	// Width and Height are the per-eye image size.
	Width  int
	Height int
	// FovDegrees is the half angle on every side of each eye.
	FovDegrees float32
	// IPD is the distance between the eyes in meters.
	IPD float32
	// RefreshRate in Hz paces WaitFrame. Zero disables pacing.
	RefreshRate float64
	// Images is the swapchain ring length.
	Images int
}

// DefaultConfig is a modest 90 Hz headset.
func DefaultConfig() Config {
	return Config{
		Width:       800,
		Height:      800,
		FovDegrees:  45,
		IPD:         0.064,
		RefreshRate: 90,
		Images:      3,
	}
}

type swapchain struct {
	images   []*render.Image
	next     uint32
	acquired int
}

// Runtime implements xr.Runtime in memory.
type Runtime struct {
	cfg Config

	mu         sync.Mutex
	head       geom.Pose
	epoch      time.Time
	deadline   time.Time
	events     []xr.Event
	swapchains map[xr.Swapchain]*swapchain
	order      []xr.Swapchain
	handles    uint64
	session    xr.Session
	sleep      func(time.Duration)
	now        func() time.Time

	// released outlives DestroySwapchain so the last frame can be read
	// after teardown.
	released map[xr.Swapchain]*render.Image
}

// New creates a simulated runtime. Zero fields of cfg take DefaultConfig
// values.
func New(cfg Config) *Runtime {
	def := DefaultConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.FovDegrees <= 0 {
		cfg.FovDegrees = def.FovDegrees
	}
	if cfg.IPD <= 0 {
		cfg.IPD = def.IPD
	}
	if cfg.Images <= 0 {
		cfg.Images = def.Images
	}
	return &Runtime{
		cfg:        cfg,
		head:       geom.Pose{Orientation: mgl32.QuatIdent(), Position: mgl32.Vec3{0, 1.6, 0}},
		swapchains: map[xr.Swapchain]*swapchain{},
		released:   map[xr.Swapchain]*render.Image{},
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// SetHead moves the simulated head.
func (r *Runtime) SetHead(p geom.Pose) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = p
}

// Head returns the simulated head pose.
func (r *Runtime) Head() geom.Pose {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.head
}

// RequestExit makes the runtime walk the session through STOPPING and
// EXITING, as a headset does when the user quits from its own menu.
func (r *Runtime) RequestExit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queueState(xr.SessionStateStopping)
	r.queueState(xr.SessionStateExiting)
}

// LastImage returns the image most recently released on the given view's
// swapchain, or nil before the first frame.
func (r *Runtime) LastImage(view int) *render.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	if view < 0 || view >= len(r.order) {
		return nil
	}
	return r.released[r.order[view]]
}

func (r *Runtime) queueState(s xr.SessionState) {
	r.events = append(r.events, xr.EventDataSessionStateChanged{
		Session: r.session,
		State:   s,
		Time:    r.displayTime(r.now()),
	})
}

func (r *Runtime) displayTime(t time.Time) xr.Time {
	if r.epoch.IsZero() {
		return 0
	}
	return xr.Time(t.Sub(r.epoch).Nanoseconds())
}

func (r *Runtime) handle() uint64 {
	r.handles++
	return r.handles
}

func (r *Runtime) period() time.Duration {
	if r.cfg.RefreshRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / r.cfg.RefreshRate)
}

func (r *Runtime) CreateInstance(info *xr.InstanceCreateInfo) (xr.Instance, xr.Result) {
	if info.Type != xr.TypeInstanceCreateInfo {
		return 0, xr.ErrorValidationFailure
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch = r.now()
	return xr.Instance(r.handle()), xr.Success
}

func (r *Runtime) GetSystem(_ xr.Instance, info *xr.SystemGetInfo) (xr.SystemID, xr.Result) {
	if info.Type != xr.TypeSystemGetInfo {
		return 0, xr.ErrorValidationFailure
	}
	if info.FormFactor != xr.FormFactorHeadMountedDisplay {
		return 0, xr.ErrorFormFactorUnsupported
	}
	return 1, xr.Success
}

func (r *Runtime) EnumerateViewConfigurations(xr.Instance, xr.SystemID) ([]xr.ViewConfigurationType, xr.Result) {
	return []xr.ViewConfigurationType{xr.ViewConfigurationPrimaryStereo}, xr.Success
}

func (r *Runtime) EnumerateViewConfigurationViews(_ xr.Instance, _ xr.SystemID, typ xr.ViewConfigurationType) ([]xr.ViewConfigurationView, xr.Result) {
	if typ != xr.ViewConfigurationPrimaryStereo {
		return nil, xr.ErrorViewConfigurationTypeUnsupported
	}
	v := xr.ViewConfigurationView{
		Type:                            xr.TypeViewConfigurationView,
		RecommendedImageRectWidth:       uint32(r.cfg.Width),
		MaxImageRectWidth:               uint32(r.cfg.Width),
		RecommendedImageRectHeight:      uint32(r.cfg.Height),
		MaxImageRectHeight:              uint32(r.cfg.Height),
		RecommendedSwapchainSampleCount: 1,
		MaxSwapchainSampleCount:         1,
	}
	return []xr.ViewConfigurationView{v, v}, xr.Success
}

func (r *Runtime) CreateSession(_ xr.Instance, info *xr.SessionCreateInfo) (xr.Session, xr.Result) {
	if info.Type != xr.TypeSessionCreateInfo {
		return 0, xr.ErrorValidationFailure
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = xr.Session(r.handle())
	r.queueState(xr.SessionStateIdle)
	return r.session, xr.Success
}

func (r *Runtime) EnumerateReferenceSpaces(xr.Session) ([]xr.ReferenceSpaceType, xr.Result) {
	return []xr.ReferenceSpaceType{xr.ReferenceSpaceView, xr.ReferenceSpaceLocal}, xr.Success
}

func (r *Runtime) CreateReferenceSpace(_ xr.Session, info *xr.ReferenceSpaceCreateInfo) (xr.Space, xr.Result) {
	if info.Type != xr.TypeReferenceSpaceCreateInfo {
		return 0, xr.ErrorValidationFailure
	}
	if info.ReferenceSpaceType != xr.ReferenceSpaceLocal && info.ReferenceSpaceType != xr.ReferenceSpaceView {
		return 0, xr.ErrorReferenceSpaceUnsupported
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return xr.Space(r.handle()), xr.Success
}

func (r *Runtime) CreateSwapchain(_ xr.Session, info *xr.SwapchainCreateInfo) (xr.Swapchain, xr.Result) {
	if info.Type != xr.TypeSwapchainCreateInfo {
		return 0, xr.ErrorValidationFailure
	}
	if info.Width == 0 || info.Height == 0 {
		return 0, xr.ErrorSwapchainRectInvalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sc := &swapchain{acquired: -1}
	for range r.cfg.Images {
		sc.images = append(sc.images, render.NewImage(int(info.Width), int(info.Height)))
	}
	h := xr.Swapchain(r.handle())
	r.swapchains[h] = sc
	r.order = append(r.order, h)
	return h, xr.Success
}

func (r *Runtime) EnumerateSwapchainImages(h xr.Swapchain) ([]render.Target, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sc, ok := r.swapchains[h]
	if !ok {
		return nil, xr.ErrorHandleInvalid
	}
	out := make([]render.Target, len(sc.images))
	for i, img := range sc.images {
		out[i] = img
	}
	return out, xr.Success
}

func (r *Runtime) BeginSession(_ xr.Session, info *xr.SessionBeginInfo) xr.Result {
	if info.Type != xr.TypeSessionBeginInfo {
		return xr.ErrorValidationFailure
	}
	if info.PrimaryViewConfigurationType != xr.ViewConfigurationPrimaryStereo {
		return xr.ErrorViewConfigurationTypeUnsupported
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range []xr.SessionState{xr.SessionStateReady, xr.SessionStateSynchronized, xr.SessionStateVisible, xr.SessionStateFocused} {
		r.queueState(s)
	}
	r.deadline = r.now()
	return xr.Success
}

// WaitFrame sleeps until the next refresh deadline. A loop that falls
// behind skips the missed deadlines instead of bursting.
func (r *Runtime) WaitFrame(_ xr.Session, info *xr.FrameWaitInfo, state *xr.FrameState) xr.Result {
	if info.Type != xr.TypeFrameWaitInfo || state.Type != xr.TypeFrameState {
		return xr.ErrorValidationFailure
	}
	r.mu.Lock()
	period := r.period()
	now := r.now()
	r.deadline = r.deadline.Add(period)
	if r.deadline.Before(now) {
		r.deadline = now
	}
	wait := r.deadline.Sub(now)
	deadline := r.deadline
	r.mu.Unlock()

	if wait > 0 {
		r.sleep(wait)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	state.PredictedDisplayTime = r.displayTime(deadline.Add(period))
	state.PredictedDisplayPeriod = xr.DurationOf(period)
	state.ShouldRender = true
	return xr.Success
}

func (r *Runtime) BeginFrame(_ xr.Session, info *xr.FrameBeginInfo) xr.Result {
	if info.Type != xr.TypeFrameBeginInfo {
		return xr.ErrorValidationFailure
	}
	return xr.Success
}

func (r *Runtime) LocateViews(_ xr.Session, info *xr.ViewLocateInfo, state *xr.ViewState, views []xr.View) xr.Result {
	if info.Type != xr.TypeViewLocateInfo || state.Type != xr.TypeViewState {
		return xr.ErrorValidationFailure
	}
	if len(views) != 2 {
		return xr.ErrorSizeInsufficient
	}
	r.mu.Lock()
	head := r.head
	r.mu.Unlock()

	fov := geom.SymmetricFov(mgl32.DegToRad(r.cfg.FovDegrees))
	for i := range views {
		if views[i].Type != xr.TypeView {
			return xr.ErrorValidationFailure
		}
		side := float32(-0.5)
		if i == 1 {
			side = 0.5
		}
		offset := head.Orientation.Rotate(mgl32.Vec3{side * r.cfg.IPD, 0, 0})
		views[i].Pose = geom.Pose{Orientation: head.Orientation, Position: head.Position.Add(offset)}
		views[i].Fov = fov
	}
	state.Flags = xr.ViewStateOrientationValid | xr.ViewStatePositionValid |
		xr.ViewStateOrientationTracked | xr.ViewStatePositionTracked
	return xr.Success
}

func (r *Runtime) AcquireSwapchainImage(h xr.Swapchain, info *xr.SwapchainImageAcquireInfo) (uint32, xr.Result) {
	if info.Type != xr.TypeSwapchainImageAcquireInfo {
		return 0, xr.ErrorValidationFailure
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sc, ok := r.swapchains[h]
	if !ok {
		return 0, xr.ErrorHandleInvalid
	}
	if sc.acquired >= 0 {
		return 0, xr.ErrorCallOrderInvalid
	}
	i := sc.next
	sc.next = (sc.next + 1) % uint32(len(sc.images))
	sc.acquired = int(i)
	return i, xr.Success
}

func (r *Runtime) WaitSwapchainImage(h xr.Swapchain, info *xr.SwapchainImageWaitInfo) xr.Result {
	if info.Type != xr.TypeSwapchainImageWaitInfo {
		return xr.ErrorValidationFailure
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sc, ok := r.swapchains[h]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	if sc.acquired < 0 {
		return xr.ErrorCallOrderInvalid
	}
	return xr.Success
}

func (r *Runtime) ReleaseSwapchainImage(h xr.Swapchain, info *xr.SwapchainImageReleaseInfo) xr.Result {
	if info.Type != xr.TypeSwapchainImageReleaseInfo {
		return xr.ErrorValidationFailure
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sc, ok := r.swapchains[h]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	if sc.acquired < 0 {
		return xr.ErrorCallOrderInvalid
	}
	r.released[h] = sc.images[sc.acquired]
	sc.acquired = -1
	return xr.Success
}

func (r *Runtime) EndFrame(_ xr.Session, info *xr.FrameEndInfo) xr.Result {
	if info.Type != xr.TypeFrameEndInfo {
		return xr.ErrorValidationFailure
	}
	if info.EnvironmentBlendMode != xr.BlendModeOpaque {
		return xr.ErrorEnvironmentBlendModeUnsupported
	}
	for _, layer := range info.Layers {
		if layer.Type != xr.TypeCompositionLayerProjection {
			return xr.ErrorLayerInvalid
		}
	}
	return xr.Success
}

func (r *Runtime) PollEvent(_ xr.Instance, buf *xr.EventDataBuffer) xr.Result {
	if buf.Type != xr.TypeEventDataBuffer {
		return xr.ErrorValidationFailure
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return xr.EventUnavailable
	}
	buf.Event = r.events[0]
	r.events = r.events[1:]
	return xr.Success
}

func (r *Runtime) DestroySwapchain(h xr.Swapchain) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.swapchains[h]; !ok {
		return xr.ErrorHandleInvalid
	}
	delete(r.swapchains, h)
	return xr.Success
}

func (r *Runtime) DestroySpace(xr.Space) xr.Result { return xr.Success }

func (r *Runtime) DestroySession(xr.Session) xr.Result { return xr.Success }

func (r *Runtime) DestroyInstance(xr.Instance) xr.Result { return xr.Success }

var _ xr.Runtime = (*Runtime)(nil)
