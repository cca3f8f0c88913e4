package wlclient

import (
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

// Seat capability bits from the wl_seat capability enum.
const (
	CapPointer  uint32 = 1 << 0
	CapKeyboard uint32 = 1 << 1
	CapTouch    uint32 = 1 << 2
)

// Seat is the wl_seat global.
type Seat struct {
	object

	Capabilities uint32
	Name         string
}

func (s *Seat) GetPointer() *Pointer {
	p := &Pointer{object: object{client: s.client, iface: "wl_pointer"}}
	s.client.add(p)

	msg := wire.NewMessage(s, 0)
	msg.Method = "get_pointer"
	msg.Args = []any{p}
	msg.WriteUint(p.oid)
	s.client.send(msg)
	return p
}

func (s *Seat) GetKeyboard() *Keyboard {
	k := &Keyboard{object: object{client: s.client, iface: "wl_keyboard"}}
	s.client.add(k)

	msg := wire.NewMessage(s, 1)
	msg.Method = "get_keyboard"
	msg.Args = []any{k}
	msg.WriteUint(k.oid)
	s.client.send(msg)
	return k
}

func (s *Seat) GetTouch() *Touch {
	t := &Touch{object: object{client: s.client, iface: "wl_touch"}}
	s.client.add(t)

	msg := wire.NewMessage(s, 2)
	msg.Method = "get_touch"
	msg.Args = []any{t}
	msg.WriteUint(t.oid)
	s.client.send(msg)
	return t
}

func (s *Seat) Release() {
	msg := wire.NewMessage(s, 3)
	msg.Method = "release"
	s.client.send(msg)
}

func (s *Seat) MethodName(op uint16) string {
	switch op {
	case 0:
		return "capabilities"
	case 1:
		return "name"
	}
	return "unknown"
}

func (s *Seat) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // capabilities
		s.Capabilities = msg.ReadUint()
		return msg.Err()

	case 1: // name
		s.Name = msg.ReadString()
		return msg.Err()
	}

	return wire.UnknownOpError{Interface: "wl_seat", Type: "event", Op: msg.Op()}
}

type PointerEnter struct {
	Serial  uint32
	Surface uint32
	X, Y    wire.Fixed
}

type PointerLeave struct {
	Serial  uint32
	Surface uint32
}

type PointerMotion struct {
	Time uint32
	X, Y wire.Fixed
}

type PointerButton struct {
	Serial uint32
	Time   uint32
	Button uint32
	State  uint32
}

type PointerAxis struct {
	Time  uint32
	Axis  uint32
	Value wire.Fixed
}

type PointerAxisDiscrete struct {
	Axis     uint32
	Discrete int32
}

// Pointer records the pointer event stream.
type Pointer struct {
	object

	Enters        []PointerEnter
	Leaves        []PointerLeave
	Motions       []PointerMotion
	Buttons       []PointerButton
	Axes          []PointerAxis
	AxisSources   []uint32
	AxisDiscretes []PointerAxisDiscrete
	Frames        int
}

// SetCursor sets the cursor image to surface at the given hotspot.
// A nil surface hides the cursor.
func (p *Pointer) SetCursor(serial uint32, surface *Surface, hotspotX, hotspotY int32) {
	msg := wire.NewMessage(p, 0)
	msg.Method = "set_cursor"
	msg.Args = []any{serial, surface, hotspotX, hotspotY}
	msg.WriteUint(serial)
	if surface != nil {
		msg.WriteUint(surface.oid)
	} else {
		msg.WriteUint(0)
	}
	msg.WriteInt(hotspotX)
	msg.WriteInt(hotspotY)
	p.client.send(msg)
}

func (p *Pointer) Release() {
	msg := wire.NewMessage(p, 1)
	msg.Method = "release"
	p.client.send(msg)
}

func (p *Pointer) MethodName(op uint16) string {
	switch op {
	case 0:
		return "enter"
	case 1:
		return "leave"
	case 2:
		return "motion"
	case 3:
		return "button"
	case 4:
		return "axis"
	case 5:
		return "frame"
	case 6:
		return "axis_source"
	case 7:
		return "axis_stop"
	case 8:
		return "axis_discrete"
	}
	return "unknown"
}

func (p *Pointer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // enter
		ev := PointerEnter{
			Serial:  msg.ReadUint(),
			Surface: msg.ReadUint(),
			X:       msg.ReadFixed(),
			Y:       msg.ReadFixed(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		p.Enters = append(p.Enters, ev)
		return nil

	case 1: // leave
		ev := PointerLeave{
			Serial:  msg.ReadUint(),
			Surface: msg.ReadUint(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		p.Leaves = append(p.Leaves, ev)
		return nil

	case 2: // motion
		ev := PointerMotion{
			Time: msg.ReadUint(),
			X:    msg.ReadFixed(),
			Y:    msg.ReadFixed(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		p.Motions = append(p.Motions, ev)
		return nil

	case 3: // button
		ev := PointerButton{
			Serial: msg.ReadUint(),
			Time:   msg.ReadUint(),
			Button: msg.ReadUint(),
			State:  msg.ReadUint(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		p.Buttons = append(p.Buttons, ev)
		return nil

	case 4: // axis
		ev := PointerAxis{
			Time:  msg.ReadUint(),
			Axis:  msg.ReadUint(),
			Value: msg.ReadFixed(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		p.Axes = append(p.Axes, ev)
		return nil

	case 5: // frame
		p.Frames++
		return nil

	case 6: // axis_source
		source := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		p.AxisSources = append(p.AxisSources, source)
		return nil

	case 7: // axis_stop
		msg.ReadUint()
		msg.ReadUint()
		return msg.Err()

	case 8: // axis_discrete
		ev := PointerAxisDiscrete{
			Axis:     msg.ReadUint(),
			Discrete: msg.ReadInt(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		p.AxisDiscretes = append(p.AxisDiscretes, ev)
		return nil
	}

	return wire.UnknownOpError{Interface: "wl_pointer", Type: "event", Op: msg.Op()}
}

type KeyboardEnter struct {
	Serial  uint32
	Surface uint32
	Keys    []byte
}

type KeyboardKey struct {
	Serial uint32
	Time   uint32
	Key    uint32
	State  uint32
}

type KeyboardModifiers struct {
	Serial    uint32
	Depressed uint32
	Latched   uint32
	Locked    uint32
	Group     uint32
}

// Keyboard records the keyboard event stream. The keymap descriptor
// is closed on arrival; only its format and size are kept.
type Keyboard struct {
	object

	KeymapFormat uint32
	KeymapSize   uint32

	Enters    []KeyboardEnter
	Leaves    []uint32
	Keys      []KeyboardKey
	Modifiers []KeyboardModifiers

	RepeatRate  int32
	RepeatDelay int32
}

func (k *Keyboard) Release() {
	msg := wire.NewMessage(k, 0)
	msg.Method = "release"
	k.client.send(msg)
}

func (k *Keyboard) MethodName(op uint16) string {
	switch op {
	case 0:
		return "keymap"
	case 1:
		return "enter"
	case 2:
		return "leave"
	case 3:
		return "key"
	case 4:
		return "modifiers"
	case 5:
		return "repeat_info"
	}
	return "unknown"
}

func (k *Keyboard) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // keymap
		format := msg.ReadUint()
		file := msg.ReadFile()
		size := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if file != nil {
			file.Close()
		}
		k.KeymapFormat = format
		k.KeymapSize = size
		return nil

	case 1: // enter
		ev := KeyboardEnter{
			Serial:  msg.ReadUint(),
			Surface: msg.ReadUint(),
			Keys:    msg.ReadArray(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		k.Enters = append(k.Enters, ev)
		return nil

	case 2: // leave
		serial := msg.ReadUint()
		msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		k.Leaves = append(k.Leaves, serial)
		return nil

	case 3: // key
		ev := KeyboardKey{
			Serial: msg.ReadUint(),
			Time:   msg.ReadUint(),
			Key:    msg.ReadUint(),
			State:  msg.ReadUint(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		k.Keys = append(k.Keys, ev)
		return nil

	case 4: // modifiers
		ev := KeyboardModifiers{
			Serial:    msg.ReadUint(),
			Depressed: msg.ReadUint(),
			Latched:   msg.ReadUint(),
			Locked:    msg.ReadUint(),
			Group:     msg.ReadUint(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		k.Modifiers = append(k.Modifiers, ev)
		return nil

	case 5: // repeat_info
		k.RepeatRate = msg.ReadInt()
		k.RepeatDelay = msg.ReadInt()
		return msg.Err()
	}

	return wire.UnknownOpError{Interface: "wl_keyboard", Type: "event", Op: msg.Op()}
}

type TouchDown struct {
	Serial  uint32
	Time    uint32
	Surface uint32
	TouchID int32
	X, Y    wire.Fixed
}

type TouchUp struct {
	Serial  uint32
	Time    uint32
	TouchID int32
}

type TouchMotion struct {
	Time    uint32
	TouchID int32
	X, Y    wire.Fixed
}

// Touch records the touch event stream.
type Touch struct {
	object

	Downs   []TouchDown
	Ups     []TouchUp
	Motions []TouchMotion
	Frames  int
	Cancels int
}

func (t *Touch) Release() {
	msg := wire.NewMessage(t, 0)
	msg.Method = "release"
	t.client.send(msg)
}

func (t *Touch) MethodName(op uint16) string {
	switch op {
	case 0:
		return "down"
	case 1:
		return "up"
	case 2:
		return "motion"
	case 3:
		return "frame"
	case 4:
		return "cancel"
	}
	return "unknown"
}

func (t *Touch) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // down
		ev := TouchDown{
			Serial:  msg.ReadUint(),
			Time:    msg.ReadUint(),
			Surface: msg.ReadUint(),
			TouchID: msg.ReadInt(),
			X:       msg.ReadFixed(),
			Y:       msg.ReadFixed(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		t.Downs = append(t.Downs, ev)
		return nil

	case 1: // up
		ev := TouchUp{
			Serial:  msg.ReadUint(),
			Time:    msg.ReadUint(),
			TouchID: msg.ReadInt(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		t.Ups = append(t.Ups, ev)
		return nil

	case 2: // motion
		ev := TouchMotion{
			Time:    msg.ReadUint(),
			TouchID: msg.ReadInt(),
			X:       msg.ReadFixed(),
			Y:       msg.ReadFixed(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		t.Motions = append(t.Motions, ev)
		return nil

	case 3: // frame
		t.Frames++
		return nil

	case 4: // cancel
		t.Cancels++
		return nil
	}

	return wire.UnknownOpError{Interface: "wl_touch", Type: "event", Op: msg.Op()}
}
