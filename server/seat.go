package wl

import (
	"fmt"
	"os"

	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	SeatInterface = "wl_seat"
	SeatVersion   = 7

	PointerInterface = "wl_pointer"
	PointerVersion   = SeatVersion

	KeyboardInterface = "wl_keyboard"
	KeyboardVersion   = SeatVersion

	TouchInterface = "wl_touch"
	TouchVersion   = SeatVersion
)

type SeatCapability uint32

const (
	SeatCapabilityPointer  SeatCapability = 1 << 0
	SeatCapabilityKeyboard SeatCapability = 1 << 1
	SeatCapabilityTouch    SeatCapability = 1 << 2
)

type SeatError uint32

const SeatErrorMissingCapability SeatError = 0

type Seat struct {
	Listener SeatListener

	client  *Client
	id      uint32
	version uint32
}

type SeatListener interface {
	GetPointer(p *Pointer)
	GetKeyboard(k *Keyboard)
	GetTouch(t *Touch)
	Release()
}

// BindSeat creates the server-side Seat object for a client's
// registry bind. The caller is expected to send Capabilities and
// Name afterwards.
func BindSeat(client *Client, id wire.NewID) *Seat {
	s := &Seat{client: client, version: id.Version}
	client.Bind(s, id.ID)
	return s
}

func (s *Seat) Client() *Client { return s.client }
func (s *Seat) ID() uint32      { return s.id }
func (s *Seat) SetID(id uint32) { s.id = id }
func (s *Seat) Delete()         {}
func (s *Seat) Version() uint32 { return s.version }

func (s *Seat) String() string {
	return fmt.Sprintf("%v@%v", SeatInterface, s.id)
}

func (s *Seat) MethodName(op uint16) string {
	switch op {
	case 0:
		return "get_pointer"
	case 1:
		return "get_keyboard"
	case 2:
		return "get_touch"
	case 3:
		return "release"
	}
	return "unknown"
}

func (s *Seat) Capabilities(caps SeatCapability) {
	msg := wire.NewMessage(s, 0)
	msg.Method = "capabilities"
	msg.Args = []any{caps}
	msg.WriteUint(uint32(caps))
	s.client.Enqueue(msg)
}

func (s *Seat) Name(name string) {
	if s.version < 2 {
		return
	}
	msg := wire.NewMessage(s, 1)
	msg.Method = "name"
	msg.Args = []any{name}
	msg.WriteString(name)
	s.client.Enqueue(msg)
}

func (s *Seat) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // get_pointer
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		p := &Pointer{client: s.client, version: s.version, seat: s}
		if err := s.client.AddWithID(p, id); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.GetPointer(p)
		}
		return nil

	case 1: // get_keyboard
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		k := &Keyboard{client: s.client, version: s.version, seat: s}
		if err := s.client.AddWithID(k, id); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.GetKeyboard(k)
		}
		return nil

	case 2: // get_touch
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		t := &Touch{client: s.client, version: s.version, seat: s}
		if err := s.client.AddWithID(t, id); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.GetTouch(t)
		}
		return nil

	case 3: // release
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Release()
		}
		s.client.Destroy(s)
		return nil
	}

	return wire.UnknownOpError{Interface: SeatInterface, Type: "request", Op: msg.Op()}
}

type PointerError uint32

const PointerErrorRole PointerError = 0

type PointerButtonState uint32

const (
	PointerButtonStateReleased PointerButtonState = 0
	PointerButtonStatePressed  PointerButtonState = 1
)

type PointerAxis uint32

const (
	PointerAxisVerticalScroll   PointerAxis = 0
	PointerAxisHorizontalScroll PointerAxis = 1
)

type PointerAxisSource uint32

const (
	PointerAxisSourceWheel      PointerAxisSource = 0
	PointerAxisSourceFinger     PointerAxisSource = 1
	PointerAxisSourceContinuous PointerAxisSource = 2
	PointerAxisSourceWheelTilt  PointerAxisSource = 3
)

type Pointer struct {
	Listener PointerListener

	client  *Client
	id      uint32
	version uint32
	seat    *Seat
}

type PointerListener interface {
	// SetCursor replaces the cursor image with surface, which may be
	// nil to hide the cursor. The request is honored only if serial
	// matches the latest pointer enter.
	SetCursor(serial uint32, surface *Surface, hotspotX, hotspotY int32)
	Release()
}

func (p *Pointer) Client() *Client { return p.client }
func (p *Pointer) ID() uint32      { return p.id }
func (p *Pointer) SetID(id uint32) { p.id = id }
func (p *Pointer) Delete()         {}
func (p *Pointer) Version() uint32 { return p.version }
func (p *Pointer) Seat() *Seat     { return p.seat }

func (p *Pointer) String() string {
	return fmt.Sprintf("%v@%v", PointerInterface, p.id)
}

func (p *Pointer) MethodName(op uint16) string {
	switch op {
	case 0:
		return "set_cursor"
	case 1:
		return "release"
	}
	return "unknown"
}

func (p *Pointer) Enter(serial uint32, surface *Surface, surfaceX, surfaceY wire.Fixed) {
	msg := wire.NewMessage(p, 0)
	msg.Method = "enter"
	msg.Args = []any{serial, surface, surfaceX, surfaceY}
	msg.WriteUint(serial)
	msg.WriteObject(surface)
	msg.WriteFixed(surfaceX)
	msg.WriteFixed(surfaceY)
	p.client.Enqueue(msg)
}

func (p *Pointer) Leave(serial uint32, surface *Surface) {
	msg := wire.NewMessage(p, 1)
	msg.Method = "leave"
	msg.Args = []any{serial, surface}
	msg.WriteUint(serial)
	msg.WriteObject(surface)
	p.client.Enqueue(msg)
}

func (p *Pointer) Motion(time uint32, surfaceX, surfaceY wire.Fixed) {
	msg := wire.NewMessage(p, 2)
	msg.Method = "motion"
	msg.Args = []any{time, surfaceX, surfaceY}
	msg.WriteUint(time)
	msg.WriteFixed(surfaceX)
	msg.WriteFixed(surfaceY)
	p.client.Enqueue(msg)
}

func (p *Pointer) Button(serial, time, button uint32, state PointerButtonState) {
	msg := wire.NewMessage(p, 3)
	msg.Method = "button"
	msg.Args = []any{serial, time, button, state}
	msg.WriteUint(serial)
	msg.WriteUint(time)
	msg.WriteUint(button)
	msg.WriteUint(uint32(state))
	p.client.Enqueue(msg)
}

func (p *Pointer) Axis(time uint32, axis PointerAxis, value wire.Fixed) {
	msg := wire.NewMessage(p, 4)
	msg.Method = "axis"
	msg.Args = []any{time, axis, value}
	msg.WriteUint(time)
	msg.WriteUint(uint32(axis))
	msg.WriteFixed(value)
	p.client.Enqueue(msg)
}

// Frame marks the end of a logical group of pointer events.
func (p *Pointer) Frame() {
	if p.version < 5 {
		return
	}
	msg := wire.NewMessage(p, 5)
	msg.Method = "frame"
	p.client.Enqueue(msg)
}

func (p *Pointer) AxisSource(source PointerAxisSource) {
	if p.version < 5 {
		return
	}
	msg := wire.NewMessage(p, 6)
	msg.Method = "axis_source"
	msg.Args = []any{source}
	msg.WriteUint(uint32(source))
	p.client.Enqueue(msg)
}

func (p *Pointer) AxisStop(time uint32, axis PointerAxis) {
	if p.version < 5 {
		return
	}
	msg := wire.NewMessage(p, 7)
	msg.Method = "axis_stop"
	msg.Args = []any{time, axis}
	msg.WriteUint(time)
	msg.WriteUint(uint32(axis))
	p.client.Enqueue(msg)
}

func (p *Pointer) AxisDiscrete(axis PointerAxis, discrete int32) {
	if p.version < 5 {
		return
	}
	msg := wire.NewMessage(p, 8)
	msg.Method = "axis_discrete"
	msg.Args = []any{axis, discrete}
	msg.WriteUint(uint32(axis))
	msg.WriteInt(discrete)
	p.client.Enqueue(msg)
}

func (p *Pointer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // set_cursor
		serial := msg.ReadUint()
		surfaceID := msg.ReadUint()
		hotspotX := msg.ReadInt()
		hotspotY := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		surface, err := LookupObject[*Surface](p.client, p, surfaceID)
		if err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.SetCursor(serial, surface, hotspotX, hotspotY)
		}
		return nil

	case 1: // release
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.Release()
		}
		p.client.Destroy(p)
		return nil
	}

	return wire.UnknownOpError{Interface: PointerInterface, Type: "request", Op: msg.Op()}
}

type KeyboardKeymapFormat uint32

const (
	KeyboardKeymapFormatNoKeymap KeyboardKeymapFormat = 0
	KeyboardKeymapFormatXkbV1    KeyboardKeymapFormat = 1
)

type KeyboardKeyState uint32

const (
	KeyboardKeyStateReleased KeyboardKeyState = 0
	KeyboardKeyStatePressed  KeyboardKeyState = 1
)

type Keyboard struct {
	Listener KeyboardListener

	client  *Client
	id      uint32
	version uint32
	seat    *Seat
}

type KeyboardListener interface {
	Release()
}

func (k *Keyboard) Client() *Client { return k.client }
func (k *Keyboard) ID() uint32      { return k.id }
func (k *Keyboard) SetID(id uint32) { k.id = id }
func (k *Keyboard) Delete()         {}
func (k *Keyboard) Version() uint32 { return k.version }
func (k *Keyboard) Seat() *Seat     { return k.seat }

func (k *Keyboard) String() string {
	return fmt.Sprintf("%v@%v", KeyboardInterface, k.id)
}

func (k *Keyboard) MethodName(op uint16) string {
	if op == 0 {
		return "release"
	}
	return "unknown"
}

// Keymap hands the client a file containing the keymap in the given
// format. The file is duplicated into the message; the caller keeps
// ownership of its handle.
func (k *Keyboard) Keymap(format KeyboardKeymapFormat, file *os.File, size uint32) {
	msg := wire.NewMessage(k, 0)
	msg.Method = "keymap"
	msg.Args = []any{format, file, size}
	msg.WriteUint(uint32(format))
	msg.WriteFile(file)
	msg.WriteUint(size)
	k.client.Enqueue(msg)
}

// Enter reports that the surface gained keyboard focus. keys holds
// the currently pressed keys as an array of uint32 scancodes.
func (k *Keyboard) Enter(serial uint32, surface *Surface, keys []byte) {
	msg := wire.NewMessage(k, 1)
	msg.Method = "enter"
	msg.Args = []any{serial, surface, keys}
	msg.WriteUint(serial)
	msg.WriteObject(surface)
	msg.WriteArray(keys)
	k.client.Enqueue(msg)
}

func (k *Keyboard) Leave(serial uint32, surface *Surface) {
	msg := wire.NewMessage(k, 2)
	msg.Method = "leave"
	msg.Args = []any{serial, surface}
	msg.WriteUint(serial)
	msg.WriteObject(surface)
	k.client.Enqueue(msg)
}

func (k *Keyboard) Key(serial, time, key uint32, state KeyboardKeyState) {
	msg := wire.NewMessage(k, 3)
	msg.Method = "key"
	msg.Args = []any{serial, time, key, state}
	msg.WriteUint(serial)
	msg.WriteUint(time)
	msg.WriteUint(key)
	msg.WriteUint(uint32(state))
	k.client.Enqueue(msg)
}

func (k *Keyboard) Modifiers(serial, depressed, latched, locked, group uint32) {
	msg := wire.NewMessage(k, 4)
	msg.Method = "modifiers"
	msg.Args = []any{serial, depressed, latched, locked, group}
	msg.WriteUint(serial)
	msg.WriteUint(depressed)
	msg.WriteUint(latched)
	msg.WriteUint(locked)
	msg.WriteUint(group)
	k.client.Enqueue(msg)
}

func (k *Keyboard) RepeatInfo(rate, delay int32) {
	if k.version < 4 {
		return
	}
	msg := wire.NewMessage(k, 5)
	msg.Method = "repeat_info"
	msg.Args = []any{rate, delay}
	msg.WriteInt(rate)
	msg.WriteInt(delay)
	k.client.Enqueue(msg)
}

func (k *Keyboard) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // release
		if err := msg.Err(); err != nil {
			return err
		}
		if k.Listener != nil {
			k.Listener.Release()
		}
		k.client.Destroy(k)
		return nil
	}

	return wire.UnknownOpError{Interface: KeyboardInterface, Type: "request", Op: msg.Op()}
}

type Touch struct {
	Listener TouchListener

	client  *Client
	id      uint32
	version uint32
	seat    *Seat
}

type TouchListener interface {
	Release()
}

func (t *Touch) Client() *Client { return t.client }
func (t *Touch) ID() uint32      { return t.id }
func (t *Touch) SetID(id uint32) { t.id = id }
func (t *Touch) Delete()         {}
func (t *Touch) Version() uint32 { return t.version }
func (t *Touch) Seat() *Seat     { return t.seat }

func (t *Touch) String() string {
	return fmt.Sprintf("%v@%v", TouchInterface, t.id)
}

func (t *Touch) MethodName(op uint16) string {
	if op == 0 {
		return "release"
	}
	return "unknown"
}

func (t *Touch) Down(serial, time uint32, surface *Surface, id int32, x, y wire.Fixed) {
	msg := wire.NewMessage(t, 0)
	msg.Method = "down"
	msg.Args = []any{serial, time, surface, id, x, y}
	msg.WriteUint(serial)
	msg.WriteUint(time)
	msg.WriteObject(surface)
	msg.WriteInt(id)
	msg.WriteFixed(x)
	msg.WriteFixed(y)
	t.client.Enqueue(msg)
}

func (t *Touch) Up(serial, time uint32, id int32) {
	msg := wire.NewMessage(t, 1)
	msg.Method = "up"
	msg.Args = []any{serial, time, id}
	msg.WriteUint(serial)
	msg.WriteUint(time)
	msg.WriteInt(id)
	t.client.Enqueue(msg)
}

func (t *Touch) Motion(time uint32, id int32, x, y wire.Fixed) {
	msg := wire.NewMessage(t, 2)
	msg.Method = "motion"
	msg.Args = []any{time, id, x, y}
	msg.WriteUint(time)
	msg.WriteInt(id)
	msg.WriteFixed(x)
	msg.WriteFixed(y)
	t.client.Enqueue(msg)
}

func (t *Touch) Frame() {
	msg := wire.NewMessage(t, 3)
	msg.Method = "frame"
	t.client.Enqueue(msg)
}

func (t *Touch) Cancel() {
	msg := wire.NewMessage(t, 4)
	msg.Method = "cancel"
	t.client.Enqueue(msg)
}

func (t *Touch) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // release
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.Release()
		}
		t.client.Destroy(t)
		return nil
	}

	return wire.UnknownOpError{Interface: TouchInterface, Type: "request", Op: msg.Op()}
}
