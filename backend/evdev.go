package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/tfufuz1/NovaDE-sub008/pointer"
)

// evdevPump reads Linux input devices and turns their events into
// backend events.
type evdevPump struct {
	devices []*evdev.InputDevice
}

func openEvdev(paths []string) (*evdevPump, error) {
	if len(paths) == 0 {
		found, err := evdev.ListInputDevices("/dev/input/event*")
		if err != nil {
			return nil, fmt.Errorf("list input devices: %w", err)
		}
		var devices []*evdev.InputDevice
		for _, dev := range found {
			if isPointer(dev) || isKeyboard(dev) {
				devices = append(devices, dev)
			}
		}
		if len(devices) == 0 {
			return nil, fmt.Errorf("no usable input devices under /dev/input")
		}
		return &evdevPump{devices: devices}, nil
	}

	devices := make([]*evdev.InputDevice, 0, len(paths))
	for _, path := range paths {
		dev, err := evdev.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %v: %w", path, err)
		}
		devices = append(devices, dev)
	}
	return &evdevPump{devices: devices}, nil
}

func isPointer(dev *evdev.InputDevice) bool {
	rel, ok := dev.CapabilitiesFlat[evdev.EV_REL]
	if !ok {
		return false
	}
	var hasX, hasY bool
	for _, axis := range rel {
		hasX = hasX || axis == evdev.REL_X
		hasY = hasY || axis == evdev.REL_Y
	}
	return hasX && hasY
}

func isKeyboard(dev *evdev.InputDevice) bool {
	keys, ok := dev.CapabilitiesFlat[evdev.EV_KEY]
	if !ok {
		return false
	}
	var letters int
	for _, key := range keys {
		if key >= evdev.KEY_A && key <= evdev.KEY_Z {
			letters++
		}
	}
	return letters > 20
}

func (p *evdevPump) run(ctx context.Context, out chan<- Event) {
	var wg sync.WaitGroup
	for _, dev := range p.devices {
		wg.Add(1)
		go func() {
			defer wg.Done()
			readDevice(ctx, dev, out)
		}()
	}
	wg.Wait()
}

func readDevice(ctx context.Context, dev *evdev.InputDevice, out chan<- Event) {
	var dx, dy float64

	flush := func(now time.Time) {
		if dx != 0 || dy != 0 {
			post(out, PointerMotion{Time: now, DX: dx, DY: dy})
			dx, dy = 0, 0
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		events, err := dev.Read()
		if err != nil {
			if !strings.Contains(err.Error(), "resource temporarily unavailable") {
				return
			}
			time.Sleep(5 * time.Millisecond)
			continue
		}

		now := time.Now()
		for _, ev := range events {
			switch ev.Type {
			case evdev.EV_REL:
				switch ev.Code {
				case evdev.REL_X:
					dx += float64(ev.Value)
				case evdev.REL_Y:
					dy += float64(ev.Value)
				case evdev.REL_WHEEL:
					post(out, PointerAxis{Time: now, Steps: -ev.Value})
				case evdev.REL_HWHEEL:
					post(out, PointerAxis{Time: now, Horizontal: true, Steps: ev.Value})
				}

			case evdev.EV_KEY:
				// Key repeats (value 2) are synthesized by clients
				// from the repeat rate, never forwarded.
				if ev.Value != 0 && ev.Value != 1 {
					continue
				}
				if b := pointer.Button(ev.Code); b >= pointer.ButtonLeft && b <= pointer.ButtonTask {
					flush(now)
					post(out, PointerButton{Time: now, Button: b, Pressed: ev.Value == 1})
					continue
				}
				post(out, Key{Time: now, Code: uint32(ev.Code), Pressed: ev.Value == 1})
			}
		}
		flush(now)
	}
}

// post drops the event when the queue is full. Input must never
// stall the producer.
func post(out chan<- Event, ev Event) {
	select {
	case out <- ev:
	default:
	}
}
