// Package backend abstracts where output frames go and where input
// events come from.
//
// The headless backend is the only one that presents anywhere; real
// display hardware needs kernel modesetting interfaces that are out
// of reach here. Input can still come from real evdev devices.
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/tfufuz1/NovaDE-sub008/pointer"
)

// Event is something a backend noticed: a device event or an output
// change. Events are immutable values owned by the receiver.
type Event interface {
	event()
}

// PointerMotion is accumulated relative pointer movement.
type PointerMotion struct {
	Time   time.Time
	DX, DY float64
}

// PointerButton is a button state change.
type PointerButton struct {
	Time    time.Time
	Button  pointer.Button
	Pressed bool
}

// PointerAxis is scroll movement along one axis.
type PointerAxis struct {
	Time       time.Time
	Horizontal bool
	Steps      int32
}

// Key is a key state change, with the key as a Linux input code.
type Key struct {
	Time    time.Time
	Code    uint32
	Pressed bool
}

// TouchDown is a new touch point at an output-relative position.
type TouchDown struct {
	Time time.Time
	ID   int32
	X, Y float64
}

// TouchUp ends a touch point.
type TouchUp struct {
	Time time.Time
	ID   int32
}

// TouchMotion moves a touch point.
type TouchMotion struct {
	Time time.Time
	ID   int32
	X, Y float64
}

// OutputAdded announces a new output. It is also how a backend
// reports its initial outputs after Start.
type OutputAdded struct {
	Output *Output
}

// OutputRemoved announces that an output is gone. Its framebuffer
// must not be presented to again.
type OutputRemoved struct {
	Output *Output
}

func (PointerMotion) event() {}
func (PointerButton) event() {}
func (PointerAxis) event()   {}
func (Key) event()           {}
func (TouchDown) event()     {}
func (TouchUp) event()       {}
func (TouchMotion) event()   {}
func (OutputAdded) event()   {}
func (OutputRemoved) event() {}

// Backend produces input and output events and accepts frames for
// presentation. Start begins event delivery; the channel is closed
// once the context ends and the backend has wound down.
type Backend interface {
	Start(ctx context.Context) error
	Events() <-chan Event
}

// Option configures a backend at construction.
type Option func(*options)

type options struct {
	outputs []OutputConfig
	input   bool
	devices []string
}

// WithOutputs sets the synthesized outputs. Without it a backend
// gets one default output.
func WithOutputs(outputs []OutputConfig) Option {
	return func(o *options) { o.outputs = outputs }
}

// WithInput turns on evdev input. devices optionally names the
// device nodes to use instead of scanning /dev/input.
func WithInput(devices []string) Option {
	return func(o *options) {
		o.input = true
		o.devices = devices
	}
}

// New returns the backend selected by name. An empty name picks
// headless.
func New(name string, opts ...Option) (Backend, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch name {
	case "", "headless":
		return newHeadless(o), nil
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}
