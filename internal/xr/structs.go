package xr

import (
	"github.com/gogpu/gputypes"

	"github.com/1broseidon/xrdesk/internal/geom"
)

// Every structure below begins with its StructureType tag and a Next
// extension chain, mirroring the runtime ABI. Next is nil unless an
// extension structure is chained.

type InstanceCreateInfo struct {
	Type            StructureType
	Next            any
	ApplicationName string
	Extensions      []string
}

type SystemGetInfo struct {
	Type       StructureType
	Next       any
	FormFactor FormFactor
}

type SessionCreateInfo struct {
	Type     StructureType
	Next     any
	SystemID SystemID
	// GraphicsBinding is the platform graphics handle the session renders
	// with. Simulated runtimes accept nil.
	GraphicsBinding any
}

type ReferenceSpaceCreateInfo struct {
	Type                 StructureType
	Next                 any
	ReferenceSpaceType   ReferenceSpaceType
	PoseInReferenceSpace geom.Pose
}

type ViewConfigurationView struct {
	Type                            StructureType
	Next                            any
	RecommendedImageRectWidth       uint32
	MaxImageRectWidth               uint32
	RecommendedImageRectHeight      uint32
	MaxImageRectHeight              uint32
	RecommendedSwapchainSampleCount uint32
	MaxSwapchainSampleCount         uint32
}

type SwapchainCreateInfo struct {
	Type        StructureType
	Next        any
	Format      gputypes.TextureFormat
	SampleCount uint32
	Width       uint32
	Height      uint32
	FaceCount   uint32
	ArraySize   uint32
	MipCount    uint32
}

type SessionBeginInfo struct {
	Type                         StructureType
	Next                         any
	PrimaryViewConfigurationType ViewConfigurationType
}

type FrameWaitInfo struct {
	Type StructureType
	Next any
}

type FrameState struct {
	Type                   StructureType
	Next                   any
	PredictedDisplayTime   Time
	PredictedDisplayPeriod Duration
	ShouldRender           bool
}

type FrameBeginInfo struct {
	Type StructureType
	Next any
}

type ViewLocateInfo struct {
	Type                  StructureType
	Next                  any
	ViewConfigurationType ViewConfigurationType
	DisplayTime           Time
	Space                 Space
}

// ViewStateFlags report which parts of a located view are valid.
type ViewStateFlags uint64

const (
	ViewStateOrientationValid ViewStateFlags = 1 << iota
	ViewStatePositionValid
	ViewStateOrientationTracked
	ViewStatePositionTracked
)

type ViewState struct {
	Type  StructureType
	Next  any
	Flags ViewStateFlags
}

// View is one located eye.
type View struct {
	Type StructureType
	Next any
	Pose geom.Pose
	Fov  geom.Fov
}

type SwapchainImageAcquireInfo struct {
	Type StructureType
	Next any
}

type SwapchainImageWaitInfo struct {
	Type    StructureType
	Next    any
	Timeout Duration
}

type SwapchainImageReleaseInfo struct {
	Type StructureType
	Next any
}

// Rect2Di is an integer image rectangle.
type Rect2Di struct {
	X, Y          int32
	Width, Height int32
}

type SwapchainSubImage struct {
	Swapchain       Swapchain
	ImageRect       Rect2Di
	ImageArrayIndex uint32
}

type CompositionLayerProjectionView struct {
	Type     StructureType
	Next     any
	Pose     geom.Pose
	Fov      geom.Fov
	SubImage SwapchainSubImage
}

type CompositionLayerProjection struct {
	Type       StructureType
	Next       any
	LayerFlags uint64
	Space      Space
	Views      []CompositionLayerProjectionView
}

type FrameEndInfo struct {
	Type                 StructureType
	Next                 any
	DisplayTime          Time
	EnvironmentBlendMode EnvironmentBlendMode
	Layers               []*CompositionLayerProjection
}

// Event is one entry of the runtime event queue.
type Event interface {
	EventType() StructureType
}

// EventDataBuffer receives polled events.
type EventDataBuffer struct {
	Type  StructureType
	Next  any
	Event Event
}

type EventDataInstanceLossPending struct {
	LossTime Time
}

func (EventDataInstanceLossPending) EventType() StructureType {
	return TypeEventDataInstanceLossPending
}

type EventDataSessionStateChanged struct {
	Session Session
	State   SessionState
	Time    Time
}

func (EventDataSessionStateChanged) EventType() StructureType {
	return TypeEventDataSessionStateChanged
}

type EventDataEventsLost struct {
	LostEventCount uint32
}

func (EventDataEventsLost) EventType() StructureType {
	return TypeEventDataEventsLost
}
