package backend

import (
	"context"
	"fmt"
)

const eventBuffer = 256

// Headless synthesizes outputs without putting pixels anywhere.
// With input enabled it still delivers real evdev events, which
// makes it usable as a session target for tests and nested clients.
type Headless struct {
	events  chan Event
	outputs []OutputConfig
	input   bool
	devices []string
}

func newHeadless(o options) *Headless {
	outputs := o.outputs
	if len(outputs) == 0 {
		outputs = []OutputConfig{DefaultOutput}
	}

	return &Headless{
		events:  make(chan Event, eventBuffer),
		outputs: outputs,
		input:   o.input,
		devices: o.devices,
	}
}

func (h *Headless) Events() <-chan Event {
	return h.events
}

func (h *Headless) Start(ctx context.Context) error {
	for _, cfg := range h.outputs {
		h.events <- OutputAdded{Output: newOutput(cfg)}
	}

	pumpDone := make(chan struct{})
	if h.input {
		pump, err := openEvdev(h.devices)
		if err != nil {
			return fmt.Errorf("open input devices: %w", err)
		}
		go func() {
			defer close(pumpDone)
			pump.run(ctx, h.events)
		}()
	} else {
		close(pumpDone)
	}

	go func() {
		<-ctx.Done()
		<-pumpDone
		close(h.events)
	}()
	return nil
}

// Inject queues an event as if the backend had produced it. It is
// how scripted input reaches a compositor under test. Inject drops
// the event if the queue is full and must not be used once the
// start context is cancelled.
func (h *Headless) Inject(ev Event) {
	select {
	case h.events <- ev:
	default:
	}
}
