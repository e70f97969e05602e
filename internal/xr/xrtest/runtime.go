// Package xrtest provides a scripted in-memory xr.Runtime that records the
// calls it receives and checks their structure tags.
package xrtest

import (
	"fmt"
	"sync"

	"github.com/1broseidon/xrdesk/internal/geom"
	"github.com/1broseidon/xrdesk/internal/render"
	"github.com/1broseidon/xrdesk/internal/xr"
)

// Runtime is a fake runtime. Zero values of the configuration fields give a
// stereo HMD with a LOCAL space, 64x64 views and two-image swapchains.
type Runtime struct {
	mu sync.Mutex

	// ViewConfigurations defaults to primary stereo.
	ViewConfigurations []xr.ViewConfigurationType
	// ReferenceSpaces defaults to VIEW and LOCAL.
	ReferenceSpaces []xr.ReferenceSpaceType
	// Views defaults to two 64x64 views.
	Views []xr.ViewConfigurationView
	// ImagesPerSwapchain defaults to 2.
	ImagesPerSwapchain int
	// Poses are returned by LocateViews, one per view.
	Poses []geom.Pose
	Fovs  []geom.Fov
	// ShouldRender is reported by WaitFrame.
	ShouldRender bool

	// Fail makes the named call (e.g. "xrBeginFrame") return the result.
	Fail map[string]xr.Result
	// WaitResult overrides the swapchain image wait result when set.
	WaitResult xr.Result

	calls     []string
	events    []xr.Event
	nextTime  xr.Time
	nextIndex map[xr.Swapchain]uint32
	images    map[xr.Swapchain][]render.Target
	handles   uint64
	live      map[uint64]string
	frameOpen bool
	acquired  map[xr.Swapchain]bool
	nesting   []string
	ended     []*xr.FrameEndInfo
}

// New returns a fake stereo runtime that renders every frame.
func New() *Runtime {
	return &Runtime{ShouldRender: true}
}

// QueueEvent adds an event for PollEvent to return.
func (r *Runtime) QueueEvent(ev xr.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Calls returns the recorded call names in order.
func (r *Runtime) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Violations returns every protocol ordering problem seen so far.
func (r *Runtime) Violations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.nesting))
	copy(out, r.nesting)
	return out
}

// Ended returns every FrameEndInfo submitted.
func (r *Runtime) Ended() []*xr.FrameEndInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*xr.FrameEndInfo, len(r.ended))
	copy(out, r.ended)
	return out
}

// Live returns the handles created and not yet destroyed, by kind.
func (r *Runtime) Live() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for _, kind := range r.live {
		out[kind]++
	}
	return out
}

// Image returns the render target of image i in swapchain sc.
func (r *Runtime) Image(sc xr.Swapchain, i int) render.Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.images[sc][i]
}

func (r *Runtime) record(name string) xr.Result {
	r.calls = append(r.calls, name)
	if res, ok := r.Fail[name]; ok {
		return res
	}
	return xr.Success
}

func (r *Runtime) violate(format string, args ...any) {
	r.nesting = append(r.nesting, fmt.Sprintf(format, args...))
}

func (r *Runtime) checkType(name string, got, want xr.StructureType) xr.Result {
	if got != want {
		r.violate("%s: structure type %d, want %d", name, got, want)
		return xr.ErrorValidationFailure
	}
	return xr.Success
}

func (r *Runtime) create(kind string) uint64 {
	if r.live == nil {
		r.live = map[uint64]string{}
	}
	r.handles++
	r.live[r.handles] = kind
	return r.handles
}

func (r *Runtime) destroy(name, kind string, h uint64) xr.Result {
	if res := r.record(name); res.Failed() {
		return res
	}
	if r.live[h] != kind {
		r.violate("%s: handle %d is not a live %s", name, h, kind)
		return xr.ErrorHandleInvalid
	}
	delete(r.live, h)
	return xr.Success
}

func (r *Runtime) views() []xr.ViewConfigurationView {
	if r.Views != nil {
		return r.Views
	}
	v := xr.ViewConfigurationView{
		Type:                            xr.TypeViewConfigurationView,
		RecommendedImageRectWidth:       64,
		RecommendedImageRectHeight:      64,
		MaxImageRectWidth:               64,
		MaxImageRectHeight:              64,
		RecommendedSwapchainSampleCount: 1,
		MaxSwapchainSampleCount:         1,
	}
	return []xr.ViewConfigurationView{v, v}
}

func (r *Runtime) CreateInstance(info *xr.InstanceCreateInfo) (xr.Instance, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrCreateInstance"); res.Failed() {
		return 0, res
	}
	if res := r.checkType("xrCreateInstance", info.Type, xr.TypeInstanceCreateInfo); res.Failed() {
		return 0, res
	}
	return xr.Instance(r.create("instance")), xr.Success
}

func (r *Runtime) GetSystem(_ xr.Instance, info *xr.SystemGetInfo) (xr.SystemID, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrGetSystem"); res.Failed() {
		return 0, res
	}
	if res := r.checkType("xrGetSystem", info.Type, xr.TypeSystemGetInfo); res.Failed() {
		return 0, res
	}
	return 1, xr.Success
}

func (r *Runtime) EnumerateViewConfigurations(xr.Instance, xr.SystemID) ([]xr.ViewConfigurationType, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrEnumerateViewConfigurations"); res.Failed() {
		return nil, res
	}
	if r.ViewConfigurations != nil {
		return r.ViewConfigurations, xr.Success
	}
	return []xr.ViewConfigurationType{xr.ViewConfigurationPrimaryStereo}, xr.Success
}

func (r *Runtime) EnumerateViewConfigurationViews(_ xr.Instance, _ xr.SystemID, typ xr.ViewConfigurationType) ([]xr.ViewConfigurationView, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrEnumerateViewConfigurationViews"); res.Failed() {
		return nil, res
	}
	if typ != xr.ViewConfigurationPrimaryStereo {
		return nil, xr.ErrorViewConfigurationTypeUnsupported
	}
	return r.views(), xr.Success
}

func (r *Runtime) CreateSession(_ xr.Instance, info *xr.SessionCreateInfo) (xr.Session, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrCreateSession"); res.Failed() {
		return 0, res
	}
	if res := r.checkType("xrCreateSession", info.Type, xr.TypeSessionCreateInfo); res.Failed() {
		return 0, res
	}
	return xr.Session(r.create("session")), xr.Success
}

func (r *Runtime) EnumerateReferenceSpaces(xr.Session) ([]xr.ReferenceSpaceType, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrEnumerateReferenceSpaces"); res.Failed() {
		return nil, res
	}
	if r.ReferenceSpaces != nil {
		return r.ReferenceSpaces, xr.Success
	}
	return []xr.ReferenceSpaceType{xr.ReferenceSpaceView, xr.ReferenceSpaceLocal}, xr.Success
}

func (r *Runtime) CreateReferenceSpace(_ xr.Session, info *xr.ReferenceSpaceCreateInfo) (xr.Space, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrCreateReferenceSpace"); res.Failed() {
		return 0, res
	}
	if res := r.checkType("xrCreateReferenceSpace", info.Type, xr.TypeReferenceSpaceCreateInfo); res.Failed() {
		return 0, res
	}
	return xr.Space(r.create("space")), xr.Success
}

func (r *Runtime) CreateSwapchain(_ xr.Session, info *xr.SwapchainCreateInfo) (xr.Swapchain, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrCreateSwapchain"); res.Failed() {
		return 0, res
	}
	if res := r.checkType("xrCreateSwapchain", info.Type, xr.TypeSwapchainCreateInfo); res.Failed() {
		return 0, res
	}
	sc := xr.Swapchain(r.create("swapchain"))
	n := r.ImagesPerSwapchain
	if n <= 0 {
		n = 2
	}
	if r.images == nil {
		r.images = map[xr.Swapchain][]render.Target{}
	}
	for range n {
		r.images[sc] = append(r.images[sc], render.NewImage(int(info.Width), int(info.Height)))
	}
	return sc, xr.Success
}

func (r *Runtime) EnumerateSwapchainImages(sc xr.Swapchain) ([]render.Target, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrEnumerateSwapchainImages"); res.Failed() {
		return nil, res
	}
	images, ok := r.images[sc]
	if !ok {
		return nil, xr.ErrorHandleInvalid
	}
	return images, xr.Success
}

func (r *Runtime) BeginSession(_ xr.Session, info *xr.SessionBeginInfo) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrBeginSession"); res.Failed() {
		return res
	}
	if res := r.checkType("xrBeginSession", info.Type, xr.TypeSessionBeginInfo); res.Failed() {
		return res
	}
	if info.PrimaryViewConfigurationType != xr.ViewConfigurationPrimaryStereo {
		r.violate("xrBeginSession: view configuration %d", info.PrimaryViewConfigurationType)
	}
	return xr.Success
}

func (r *Runtime) WaitFrame(_ xr.Session, info *xr.FrameWaitInfo, state *xr.FrameState) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrWaitFrame"); res.Failed() {
		return res
	}
	if res := r.checkType("xrWaitFrame", info.Type, xr.TypeFrameWaitInfo); res.Failed() {
		return res
	}
	if res := r.checkType("xrWaitFrame state", state.Type, xr.TypeFrameState); res.Failed() {
		return res
	}
	if r.frameOpen {
		r.violate("xrWaitFrame inside an open frame")
	}
	r.nextTime += xr.Time(11_111_111)
	state.PredictedDisplayTime = r.nextTime
	state.PredictedDisplayPeriod = 11_111_111
	state.ShouldRender = r.ShouldRender
	return xr.Success
}

func (r *Runtime) BeginFrame(_ xr.Session, info *xr.FrameBeginInfo) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrBeginFrame"); res.Failed() {
		return res
	}
	if res := r.checkType("xrBeginFrame", info.Type, xr.TypeFrameBeginInfo); res.Failed() {
		return res
	}
	if r.frameOpen {
		r.violate("xrBeginFrame nested")
	}
	r.frameOpen = true
	return xr.Success
}

func (r *Runtime) LocateViews(_ xr.Session, info *xr.ViewLocateInfo, state *xr.ViewState, views []xr.View) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrLocateViews"); res.Failed() {
		return res
	}
	if res := r.checkType("xrLocateViews", info.Type, xr.TypeViewLocateInfo); res.Failed() {
		return res
	}
	if res := r.checkType("xrLocateViews state", state.Type, xr.TypeViewState); res.Failed() {
		return res
	}
	if info.DisplayTime != r.nextTime {
		r.violate("xrLocateViews at %d, predicted %d", info.DisplayTime, r.nextTime)
	}
	if len(views) != len(r.views()) {
		return xr.ErrorSizeInsufficient
	}
	for i := range views {
		if res := r.checkType("xrLocateViews view", views[i].Type, xr.TypeView); res.Failed() {
			return res
		}
		views[i].Pose = geom.IdentityPose()
		if i < len(r.Poses) {
			views[i].Pose = r.Poses[i]
		}
		views[i].Fov = geom.SymmetricFov(0.785398)
		if i < len(r.Fovs) {
			views[i].Fov = r.Fovs[i]
		}
	}
	state.Flags = xr.ViewStateOrientationValid | xr.ViewStatePositionValid
	return xr.Success
}

func (r *Runtime) AcquireSwapchainImage(sc xr.Swapchain, info *xr.SwapchainImageAcquireInfo) (uint32, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrAcquireSwapchainImage"); res.Failed() {
		return 0, res
	}
	if res := r.checkType("xrAcquireSwapchainImage", info.Type, xr.TypeSwapchainImageAcquireInfo); res.Failed() {
		return 0, res
	}
	if !r.frameOpen {
		r.violate("xrAcquireSwapchainImage outside a frame")
	}
	if r.acquired == nil {
		r.acquired = map[xr.Swapchain]bool{}
	}
	if r.acquired[sc] {
		r.violate("xrAcquireSwapchainImage: swapchain %d already acquired", sc)
	}
	r.acquired[sc] = true
	if r.nextIndex == nil {
		r.nextIndex = map[xr.Swapchain]uint32{}
	}
	i := r.nextIndex[sc]
	r.nextIndex[sc] = (i + 1) % uint32(len(r.images[sc]))
	return i, xr.Success
}

func (r *Runtime) WaitSwapchainImage(sc xr.Swapchain, info *xr.SwapchainImageWaitInfo) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrWaitSwapchainImage"); res.Failed() {
		return res
	}
	if res := r.checkType("xrWaitSwapchainImage", info.Type, xr.TypeSwapchainImageWaitInfo); res.Failed() {
		return res
	}
	if !r.acquired[sc] {
		r.violate("xrWaitSwapchainImage before acquire")
	}
	if info.Timeout <= 0 {
		r.violate("xrWaitSwapchainImage without timeout")
	}
	if r.WaitResult != xr.Success {
		return r.WaitResult
	}
	return xr.Success
}

func (r *Runtime) ReleaseSwapchainImage(sc xr.Swapchain, info *xr.SwapchainImageReleaseInfo) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrReleaseSwapchainImage"); res.Failed() {
		return res
	}
	if res := r.checkType("xrReleaseSwapchainImage", info.Type, xr.TypeSwapchainImageReleaseInfo); res.Failed() {
		return res
	}
	if !r.acquired[sc] {
		r.violate("xrReleaseSwapchainImage without acquire")
	}
	r.acquired[sc] = false
	return xr.Success
}

func (r *Runtime) EndFrame(_ xr.Session, info *xr.FrameEndInfo) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrEndFrame"); res.Failed() {
		r.frameOpen = false
		return res
	}
	if res := r.checkType("xrEndFrame", info.Type, xr.TypeFrameEndInfo); res.Failed() {
		return res
	}
	if !r.frameOpen {
		r.violate("xrEndFrame without begin")
	}
	for sc, held := range r.acquired {
		if held {
			r.violate("xrEndFrame with swapchain %d still acquired", sc)
		}
	}
	for _, layer := range info.Layers {
		r.checkType("xrEndFrame layer", layer.Type, xr.TypeCompositionLayerProjection)
		for _, v := range layer.Views {
			r.checkType("xrEndFrame layer view", v.Type, xr.TypeCompositionLayerProjectionView)
		}
	}
	r.frameOpen = false
	r.ended = append(r.ended, info)
	return xr.Success
}

func (r *Runtime) PollEvent(_ xr.Instance, buf *xr.EventDataBuffer) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.record("xrPollEvent"); res.Failed() {
		return res
	}
	if res := r.checkType("xrPollEvent", buf.Type, xr.TypeEventDataBuffer); res.Failed() {
		return res
	}
	if len(r.events) == 0 {
		return xr.EventUnavailable
	}
	buf.Event = r.events[0]
	r.events = r.events[1:]
	return xr.Success
}

func (r *Runtime) DestroySwapchain(sc xr.Swapchain) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroy("xrDestroySwapchain", "swapchain", uint64(sc))
}

func (r *Runtime) DestroySpace(space xr.Space) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroy("xrDestroySpace", "space", uint64(space))
}

func (r *Runtime) DestroySession(session xr.Session) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroy("xrDestroySession", "session", uint64(session))
}

func (r *Runtime) DestroyInstance(instance xr.Instance) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroy("xrDestroyInstance", "instance", uint64(instance))
}

var _ xr.Runtime = (*Runtime)(nil)
