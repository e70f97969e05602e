package xr

import "github.com/1broseidon/xrdesk/internal/render"

// Runtime is the head-mounted display runtime. Methods follow the runtime
// entry points one to one and report failures as negative Results.
type Runtime interface {
	CreateInstance(info *InstanceCreateInfo) (Instance, Result)
	GetSystem(instance Instance, info *SystemGetInfo) (SystemID, Result)
	EnumerateViewConfigurations(instance Instance, system SystemID) ([]ViewConfigurationType, Result)
	EnumerateViewConfigurationViews(instance Instance, system SystemID, typ ViewConfigurationType) ([]ViewConfigurationView, Result)
	CreateSession(instance Instance, info *SessionCreateInfo) (Session, Result)
	EnumerateReferenceSpaces(session Session) ([]ReferenceSpaceType, Result)
	CreateReferenceSpace(session Session, info *ReferenceSpaceCreateInfo) (Space, Result)
	CreateSwapchain(session Session, info *SwapchainCreateInfo) (Swapchain, Result)
	// EnumerateSwapchainImages returns the render target of each image in
	// the swapchain ring.
	EnumerateSwapchainImages(swapchain Swapchain) ([]render.Target, Result)
	BeginSession(session Session, info *SessionBeginInfo) Result

	// WaitFrame blocks until the runtime wants the next frame.
	WaitFrame(session Session, info *FrameWaitInfo, state *FrameState) Result
	BeginFrame(session Session, info *FrameBeginInfo) Result
	// LocateViews fills views, which must hold one entry per view of the
	// configuration, each tagged TypeView.
	LocateViews(session Session, info *ViewLocateInfo, state *ViewState, views []View) Result
	AcquireSwapchainImage(swapchain Swapchain, info *SwapchainImageAcquireInfo) (uint32, Result)
	WaitSwapchainImage(swapchain Swapchain, info *SwapchainImageWaitInfo) Result
	ReleaseSwapchainImage(swapchain Swapchain, info *SwapchainImageReleaseInfo) Result
	EndFrame(session Session, info *FrameEndInfo) Result
	// PollEvent returns EventUnavailable when the queue is empty.
	PollEvent(instance Instance, buf *EventDataBuffer) Result

	DestroySwapchain(swapchain Swapchain) Result
	DestroySpace(space Space) Result
	DestroySession(session Session) Result
	DestroyInstance(instance Instance) Result
}
