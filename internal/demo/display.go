// Package demo is a headless windowing layer for running the compositor
// without real clients: a display that runs queued client requests, a seat
// that routes input to in-process windows, test-pattern windows and a
// stereo XR-native overlay.
package demo

import (
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/xrdesk/internal/output"
	"github.com/1broseidon/xrdesk/internal/server"
)

// DefaultSocketName is exported to launched clients.
const DefaultSocketName = "xrdesk-0"

var _ server.Display = (*Display)(nil)

// Display queues client requests and runs them on the loop goroutine
// during Dispatch.
type Display struct {
	socket string
	logger *slog.Logger

	mu      sync.Mutex
	pending []func()
	outputs []output.Output
	wake    chan struct{}
}

// NewDisplay creates a display; an empty socket name takes the default.
func NewDisplay(socket string, logger *slog.Logger) *Display {
	if socket == "" {
		socket = DefaultSocketName
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Display{
		socket: socket,
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
}

func (d *Display) SocketName() string { return d.socket }

// AdvertiseOutput records o as the output clients see.
func (d *Display) AdvertiseOutput(o output.Output) {
	d.mu.Lock()
	d.outputs = append(d.outputs, o)
	d.mu.Unlock()
	d.logger.Info("output advertised", "output", o.String())
}

// Outputs lists the advertised outputs.
func (d *Display) Outputs() []output.Output {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]output.Output(nil), d.outputs...)
}

func (d *Display) Flush() {}

// Post queues a client request. It is safe to call from any goroutine.
func (d *Display) Post(fn func()) {
	d.mu.Lock()
	d.pending = append(d.pending, fn)
	d.mu.Unlock()
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Dispatch runs every queued request. With nothing queued it waits up to
// timeout for one to arrive.
func (d *Display) Dispatch(timeout time.Duration) error {
	if d.Pending() == 0 && timeout > 0 {
		timer := time.NewTimer(timeout)
		select {
		case <-d.wake:
		case <-timer.C:
		}
		timer.Stop()
	}

	d.mu.Lock()
	batch := d.pending
	d.pending = nil
	d.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return nil
}

// Pending is the number of queued requests.
func (d *Display) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
