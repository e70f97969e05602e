package xr

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/1broseidon/xrdesk/internal/geom"
	"github.com/1broseidon/xrdesk/internal/render"
)

var (
	// ErrStereoUnsupported means the system offers no stereo view
	// configuration.
	ErrStereoUnsupported = errors.New("stereo view configuration unsupported")
	// ErrLocalSpaceUnsupported means the session has no LOCAL reference
	// space.
	ErrLocalSpaceUnsupported = errors.New("local reference space unsupported")
	// ErrImageWaitTimeout means a swapchain image did not become available
	// within the wait timeout.
	ErrImageWaitTimeout = errors.New("swapchain image wait timed out")
	// ErrFrameOrder means a frame call was made out of protocol order.
	ErrFrameOrder = errors.New("frame call out of order")
)

// DefaultImageWaitTimeout bounds each swapchain image wait.
const DefaultImageWaitTimeout = time.Second

// Phase is the compositor side of the session lifecycle.
type Phase int

const (
	PhaseUnstarted Phase = iota
	PhaseStarting
	PhaseRunning
	PhaseStopping
	PhaseLost
)

func (p Phase) String() string {
	switch p {
	case PhaseUnstarted:
		return "unstarted"
	case PhaseStarting:
		return "starting"
	case PhaseRunning:
		return "running"
	case PhaseStopping:
		return "stopping"
	case PhaseLost:
		return "lost"
	default:
		return "unknown"
	}
}

// Config holds session startup options.
type Config struct {
	ApplicationName  string
	GraphicsBinding  any
	Format           gputypes.TextureFormat
	ImageWaitTimeout time.Duration
	Logger           *slog.Logger
}

// Slot is one stereo eye: its swapchain ring and latest located pose.
type Slot struct {
	// Index is the slot's stable identity, used to key per-eye content.
	Index     int
	Width     int
	Height    int
	Swapchain Swapchain
	Images    []render.Target

	Pose geom.Pose
	Fov  geom.Fov

	image    uint32
	acquired bool
}

// Driver owns a started runtime session and runs its frame protocol.
type Driver struct {
	rt     Runtime
	logger *slog.Logger
	wait   Duration

	instance Instance
	system   SystemID
	session  Session
	space    Space
	slots    []*Slot

	hasInstance bool
	hasSession  bool
	hasSpace    bool

	phase     Phase
	state     SessionState
	running   bool
	frameOpen bool
	frames    uint64
}

// Start creates the instance, session, LOCAL space and one swapchain per
// stereo view, then begins the session. On failure everything created so
// far is destroyed.
func Start(rt Runtime, cfg Config) (*Driver, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	wait := cfg.ImageWaitTimeout
	if wait <= 0 {
		wait = DefaultImageWaitTimeout
	}
	format := cfg.Format
	var unset gputypes.TextureFormat
	if format == unset {
		format = gputypes.TextureFormatRGBA8Unorm
	}

	s := &Driver{
		rt:     rt,
		logger: logger,
		wait:   DurationOf(wait),
		phase:  PhaseStarting,
	}
	if err := s.start(cfg, format); err != nil {
		if terr := s.Teardown(); terr != nil {
			logger.Warn("teardown after failed start", "error", terr)
		}
		return nil, err
	}
	s.phase = PhaseRunning
	s.running = true
	return s, nil
}

func (s *Driver) start(cfg Config, format gputypes.TextureFormat) error {
	var r Result

	s.instance, r = s.rt.CreateInstance(&InstanceCreateInfo{
		Type:            TypeInstanceCreateInfo,
		ApplicationName: cfg.ApplicationName,
	})
	if err := Check("xrCreateInstance", r); err != nil {
		return err
	}
	s.hasInstance = true

	s.system, r = s.rt.GetSystem(s.instance, &SystemGetInfo{
		Type:       TypeSystemGetInfo,
		FormFactor: FormFactorHeadMountedDisplay,
	})
	if err := Check("xrGetSystem", r); err != nil {
		return err
	}

	configs, r := s.rt.EnumerateViewConfigurations(s.instance, s.system)
	if err := Check("xrEnumerateViewConfigurations", r); err != nil {
		return err
	}
	if !slices.Contains(configs, ViewConfigurationPrimaryStereo) {
		return ErrStereoUnsupported
	}

	views, r := s.rt.EnumerateViewConfigurationViews(s.instance, s.system, ViewConfigurationPrimaryStereo)
	if err := Check("xrEnumerateViewConfigurationViews", r); err != nil {
		return err
	}
	if len(views) == 0 {
		return fmt.Errorf("stereo configuration reports no views: %w", ErrStereoUnsupported)
	}

	s.session, r = s.rt.CreateSession(s.instance, &SessionCreateInfo{
		Type:            TypeSessionCreateInfo,
		SystemID:        s.system,
		GraphicsBinding: cfg.GraphicsBinding,
	})
	if err := Check("xrCreateSession", r); err != nil {
		return err
	}
	s.hasSession = true

	spaces, r := s.rt.EnumerateReferenceSpaces(s.session)
	if err := Check("xrEnumerateReferenceSpaces", r); err != nil {
		return err
	}
	if !slices.Contains(spaces, ReferenceSpaceLocal) {
		return ErrLocalSpaceUnsupported
	}
	s.space, r = s.rt.CreateReferenceSpace(s.session, &ReferenceSpaceCreateInfo{
		Type:                 TypeReferenceSpaceCreateInfo,
		ReferenceSpaceType:   ReferenceSpaceLocal,
		PoseInReferenceSpace: geom.IdentityPose(),
	})
	if err := Check("xrCreateReferenceSpace", r); err != nil {
		return err
	}
	s.hasSpace = true

	for i, v := range views {
		slot, err := s.createSlot(i, v, format)
		if err != nil {
			return err
		}
		s.slots = append(s.slots, slot)
	}

	r = s.rt.BeginSession(s.session, &SessionBeginInfo{
		Type:                         TypeSessionBeginInfo,
		PrimaryViewConfigurationType: ViewConfigurationPrimaryStereo,
	})
	if err := Check("xrBeginSession", r); err != nil {
		return err
	}

	s.logger.Info("xr session started", "views", len(s.slots),
		"width", s.slots[0].Width, "height", s.slots[0].Height)
	return nil
}

func (s *Driver) createSlot(i int, v ViewConfigurationView, format gputypes.TextureFormat) (*Slot, error) {
	sc, r := s.rt.CreateSwapchain(s.session, &SwapchainCreateInfo{
		Type:        TypeSwapchainCreateInfo,
		Format:      format,
		SampleCount: 1,
		Width:       v.RecommendedImageRectWidth,
		Height:      v.RecommendedImageRectHeight,
		FaceCount:   1,
		ArraySize:   1,
		MipCount:    1,
	})
	if err := Check("xrCreateSwapchain", r); err != nil {
		return nil, fmt.Errorf("view %d: %w", i, err)
	}
	slot := &Slot{
		Index:     i,
		Width:     int(v.RecommendedImageRectWidth),
		Height:    int(v.RecommendedImageRectHeight),
		Swapchain: sc,
		Pose:      geom.IdentityPose(),
	}
	images, r := s.rt.EnumerateSwapchainImages(sc)
	if err := Check("xrEnumerateSwapchainImages", r); err != nil {
		if derr := Check("xrDestroySwapchain", s.rt.DestroySwapchain(sc)); derr != nil {
			s.logger.Warn("destroy swapchain", "error", derr)
		}
		return nil, fmt.Errorf("view %d: %w", i, err)
	}
	slot.Images = images
	return slot, nil
}

// Running reports whether the loop should keep iterating.
func (s *Driver) Running() bool { return s.running }

// Stop asks the loop to finish after the current iteration.
func (s *Driver) Stop() { s.running = false }

// Phase returns the lifecycle phase.
func (s *Driver) Phase() Phase { return s.phase }

// State returns the last session state the runtime reported.
func (s *Driver) State() SessionState { return s.state }

// Frames returns the number of completed frames.
func (s *Driver) Frames() uint64 { return s.frames }

// Slots returns the stereo slots in view order.
func (s *Driver) Slots() []*Slot { return s.slots }

// Primary is the slot the pointer ray starts from.
func (s *Driver) Primary() *Slot {
	if len(s.slots) == 0 {
		return nil
	}
	return s.slots[0]
}

// Space is the LOCAL reference space poses are located in.
func (s *Driver) Space() Space { return s.space }

// WaitFrame blocks until the runtime predicts the next display time.
func (s *Driver) WaitFrame() (FrameState, error) {
	if s.frameOpen {
		return FrameState{}, fmt.Errorf("wait inside an open frame: %w", ErrFrameOrder)
	}
	fs := FrameState{Type: TypeFrameState}
	r := s.rt.WaitFrame(s.session, &FrameWaitInfo{Type: TypeFrameWaitInfo}, &fs)
	if err := Check("xrWaitFrame", r); err != nil {
		return FrameState{}, err
	}
	return fs, nil
}

// PollEvents drains the runtime event queue without blocking. Lifecycle
// events that end the session clear the running flag.
func (s *Driver) PollEvents() error {
	for {
		buf := EventDataBuffer{Type: TypeEventDataBuffer}
		r := s.rt.PollEvent(s.instance, &buf)
		if r == EventUnavailable {
			return nil
		}
		if err := Check("xrPollEvent", r); err != nil {
			return err
		}
		s.handleEvent(buf.Event)
	}
}

func (s *Driver) handleEvent(ev Event) {
	switch e := ev.(type) {
	case EventDataInstanceLossPending:
		s.logger.Warn("xr instance loss pending", "loss_time", e.LossTime)
		s.running = false
		s.phase = PhaseLost
	case EventDataSessionStateChanged:
		s.logger.Info("xr session state changed", "from", s.state, "to", e.State)
		s.state = e.State
		if e.State.Ends() {
			s.running = false
			if e.State == SessionStateLossPending {
				s.phase = PhaseLost
			} else {
				s.phase = PhaseStopping
			}
		}
	case EventDataEventsLost:
		s.logger.Warn("xr events lost", "count", e.LostEventCount)
	case nil:
		s.logger.Debug("xr event with no payload")
	default:
		s.logger.Debug("ignoring xr event", "type", ev.EventType())
	}
}

// BeginFrame opens the frame and locates every slot at the predicted
// display time.
func (s *Driver) BeginFrame(fs FrameState) error {
	if s.frameOpen {
		return fmt.Errorf("begin inside an open frame: %w", ErrFrameOrder)
	}
	r := s.rt.BeginFrame(s.session, &FrameBeginInfo{Type: TypeFrameBeginInfo})
	if err := Check("xrBeginFrame", r); err != nil {
		return err
	}
	if r == FrameDiscarded {
		s.logger.Debug("previous frame discarded")
	}
	s.frameOpen = true

	views := make([]View, len(s.slots))
	for i := range views {
		views[i].Type = TypeView
	}
	state := ViewState{Type: TypeViewState}
	r = s.rt.LocateViews(s.session, &ViewLocateInfo{
		Type:                  TypeViewLocateInfo,
		ViewConfigurationType: ViewConfigurationPrimaryStereo,
		DisplayTime:           fs.PredictedDisplayTime,
		Space:                 s.space,
	}, &state, views)
	if err := Check("xrLocateViews", r); err != nil {
		return err
	}
	for i, slot := range s.slots {
		slot.Pose = views[i].Pose
		slot.Fov = views[i].Fov
	}
	return nil
}

// RenderSlot acquires the slot's next image, waits for it, renders into
// its target and releases it.
func (s *Driver) RenderSlot(slot *Slot, draw func(target render.Target) error) error {
	if !s.frameOpen {
		return fmt.Errorf("render outside a frame: %w", ErrFrameOrder)
	}
	if slot.acquired {
		return fmt.Errorf("slot %d acquired twice: %w", slot.Index, ErrFrameOrder)
	}

	index, r := s.rt.AcquireSwapchainImage(slot.Swapchain, &SwapchainImageAcquireInfo{Type: TypeSwapchainImageAcquireInfo})
	if err := Check("xrAcquireSwapchainImage", r); err != nil {
		return fmt.Errorf("slot %d: %w", slot.Index, err)
	}
	if int(index) >= len(slot.Images) {
		return fmt.Errorf("slot %d: image index %d of %d: %w", slot.Index, index, len(slot.Images),
			&ResultError{Op: "xrAcquireSwapchainImage", Result: ErrorIndexOutOfRange})
	}
	slot.image = index
	slot.acquired = true

	r = s.rt.WaitSwapchainImage(slot.Swapchain, &SwapchainImageWaitInfo{
		Type:    TypeSwapchainImageWaitInfo,
		Timeout: s.wait,
	})
	if r == TimeoutExpired {
		return errors.Join(fmt.Errorf("slot %d: %w", slot.Index, ErrImageWaitTimeout), s.release(slot))
	}
	if err := Check("xrWaitSwapchainImage", r); err != nil {
		return errors.Join(fmt.Errorf("slot %d: %w", slot.Index, err), s.release(slot))
	}

	if err := draw(slot.Images[index]); err != nil {
		return errors.Join(fmt.Errorf("slot %d: render: %w", slot.Index, err), s.release(slot))
	}
	return s.release(slot)
}

// release hands the acquired image back. The slot is marked free even when
// the runtime refuses, so teardown never sees a held image.
func (s *Driver) release(slot *Slot) error {
	r := s.rt.ReleaseSwapchainImage(slot.Swapchain, &SwapchainImageReleaseInfo{Type: TypeSwapchainImageReleaseInfo})
	slot.acquired = false
	if err := Check("xrReleaseSwapchainImage", r); err != nil {
		return fmt.Errorf("slot %d: %w", slot.Index, err)
	}
	return nil
}

// EndFrame submits one projection layer made of every slot's last image.
// With rendered false the frame ends with no layers.
func (s *Driver) EndFrame(fs FrameState, rendered bool) error {
	if !s.frameOpen {
		return fmt.Errorf("end without begin: %w", ErrFrameOrder)
	}
	info := &FrameEndInfo{
		Type:                 TypeFrameEndInfo,
		DisplayTime:          fs.PredictedDisplayTime,
		EnvironmentBlendMode: BlendModeOpaque,
	}
	if rendered {
		info.Layers = []*CompositionLayerProjection{s.projectionLayer()}
	}
	r := s.rt.EndFrame(s.session, info)
	s.frameOpen = false
	if err := Check("xrEndFrame", r); err != nil {
		return err
	}
	s.frames++
	return nil
}

func (s *Driver) projectionLayer() *CompositionLayerProjection {
	layer := &CompositionLayerProjection{
		Type:  TypeCompositionLayerProjection,
		Space: s.space,
		Views: make([]CompositionLayerProjectionView, len(s.slots)),
	}
	for i, slot := range s.slots {
		layer.Views[i] = CompositionLayerProjectionView{
			Type: TypeCompositionLayerProjectionView,
			Pose: slot.Pose,
			Fov:  slot.Fov,
			SubImage: SwapchainSubImage{
				Swapchain:       slot.Swapchain,
				ImageRect:       Rect2Di{Width: int32(slot.Width), Height: int32(slot.Height)},
				ImageArrayIndex: slot.image,
			},
		}
	}
	return layer
}

// Frame runs one begin/render/end cycle. located is called after the
// views are located and before any slot renders.
func (s *Driver) Frame(fs FrameState, located func(primary *Slot), draw func(slot *Slot, target render.Target) error) error {
	if err := s.BeginFrame(fs); err != nil {
		return err
	}
	if located != nil {
		located(s.Primary())
	}
	if fs.ShouldRender {
		for _, slot := range s.slots {
			if err := s.RenderSlot(slot, func(target render.Target) error {
				return draw(slot, target)
			}); err != nil {
				return err
			}
		}
	}
	return s.EndFrame(fs, fs.ShouldRender)
}

// Teardown destroys swapchains, the space, the session and the instance
// in that order. It is safe to call on a partially started session.
func (s *Driver) Teardown() error {
	var errs []error
	for _, slot := range s.slots {
		errs = append(errs, Check("xrDestroySwapchain", s.rt.DestroySwapchain(slot.Swapchain)))
	}
	s.slots = nil
	if s.hasSpace {
		errs = append(errs, Check("xrDestroySpace", s.rt.DestroySpace(s.space)))
		s.hasSpace = false
	}
	if s.hasSession {
		errs = append(errs, Check("xrDestroySession", s.rt.DestroySession(s.session)))
		s.hasSession = false
	}
	if s.hasInstance {
		errs = append(errs, Check("xrDestroyInstance", s.rt.DestroyInstance(s.instance)))
		s.hasInstance = false
	}
	s.running = false
	if s.phase != PhaseLost {
		s.phase = PhaseStopping
	}
	return errors.Join(errs...)
}
