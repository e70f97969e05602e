// Package xr drives a head-mounted display runtime through session startup,
// the per-frame wait/begin/render/end protocol and teardown.
package xr

import (
	"fmt"
	"time"
)

// StructureType tags every structure handed to the runtime.
type StructureType int32

const (
	TypeUnknown                        StructureType = 0
	TypeInstanceCreateInfo             StructureType = 3
	TypeSystemGetInfo                  StructureType = 4
	TypeViewLocateInfo                 StructureType = 6
	TypeView                           StructureType = 7
	TypeSessionCreateInfo              StructureType = 8
	TypeSwapchainCreateInfo            StructureType = 9
	TypeSessionBeginInfo               StructureType = 10
	TypeViewState                      StructureType = 11
	TypeFrameEndInfo                   StructureType = 12
	TypeEventDataBuffer                StructureType = 16
	TypeEventDataInstanceLossPending   StructureType = 17
	TypeEventDataSessionStateChanged   StructureType = 18
	TypeFrameWaitInfo                  StructureType = 33
	TypeCompositionLayerProjection     StructureType = 35
	TypeReferenceSpaceCreateInfo       StructureType = 37
	TypeViewConfigurationView          StructureType = 41
	TypeFrameState                     StructureType = 44
	TypeFrameBeginInfo                 StructureType = 46
	TypeCompositionLayerProjectionView StructureType = 48
	TypeEventDataEventsLost            StructureType = 49
	TypeSwapchainImageAcquireInfo      StructureType = 55
	TypeSwapchainImageWaitInfo         StructureType = 56
	TypeSwapchainImageReleaseInfo      StructureType = 57
)

// Handles are opaque runtime object identifiers.
type (
	Instance  uint64
	SystemID  uint64
	Session   uint64
	Space     uint64
	Swapchain uint64
)

// Time is a runtime timestamp in nanoseconds.
type Time int64

// Duration is a runtime interval in nanoseconds.
type Duration int64

// DurationOf converts a Go duration.
func DurationOf(d time.Duration) Duration {
	return Duration(d.Nanoseconds())
}

// ViewConfigurationType selects how many views the runtime expects.
type ViewConfigurationType int32

const (
	ViewConfigurationPrimaryMono   ViewConfigurationType = 1
	ViewConfigurationPrimaryStereo ViewConfigurationType = 2
)

// ReferenceSpaceType names a tracking space.
type ReferenceSpaceType int32

const (
	ReferenceSpaceView  ReferenceSpaceType = 1
	ReferenceSpaceLocal ReferenceSpaceType = 2
	ReferenceSpaceStage ReferenceSpaceType = 3
)

// FormFactor is the kind of display the system is.
type FormFactor int32

const (
	FormFactorHeadMountedDisplay FormFactor = 1
	FormFactorHandheldDisplay    FormFactor = 2
)

// EnvironmentBlendMode is how rendered layers meet the real world.
type EnvironmentBlendMode int32

const (
	BlendModeOpaque   EnvironmentBlendMode = 1
	BlendModeAdditive EnvironmentBlendMode = 2
	BlendModeAlpha    EnvironmentBlendMode = 3
)

// SessionState is the runtime-driven session lifecycle.
type SessionState int32

const (
	SessionStateUnknown SessionState = iota
	SessionStateIdle
	SessionStateReady
	SessionStateSynchronized
	SessionStateVisible
	SessionStateFocused
	SessionStateStopping
	SessionStateLossPending
	SessionStateExiting
)

var sessionStateNames = [...]string{
	"UNKNOWN", "IDLE", "READY", "SYNCHRONIZED", "VISIBLE", "FOCUSED",
	"STOPPING", "LOSS_PENDING", "EXITING",
}

func (s SessionState) String() string {
	if s >= 0 && int(s) < len(sessionStateNames) {
		return sessionStateNames[s]
	}
	return fmt.Sprintf("SESSION_STATE_%d", int32(s))
}

// Ends reports whether the state means the session is going away.
func (s SessionState) Ends() bool {
	switch s {
	case SessionStateStopping, SessionStateLossPending, SessionStateExiting:
		return true
	default:
		return false
	}
}
