package wlclient

import (
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

// Compositor is the wl_compositor global.
type Compositor struct {
	object
}

func (c *Compositor) CreateSurface() *Surface {
	s := &Surface{object: object{client: c.client, iface: "wl_surface"}}
	c.client.add(s)

	msg := wire.NewMessage(c, 0)
	msg.Method = "create_surface"
	msg.Args = []any{s}
	msg.WriteUint(s.oid)
	c.client.send(msg)
	return s
}

func (c *Compositor) CreateRegion() *Region {
	r := &Region{object: object{client: c.client, iface: "wl_region"}}
	c.client.add(r)

	msg := wire.NewMessage(c, 1)
	msg.Method = "create_region"
	msg.Args = []any{r}
	msg.WriteUint(r.oid)
	c.client.send(msg)
	return r
}

func (c *Compositor) MethodName(op uint16) string { return "unknown" }

func (c *Compositor) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: "wl_compositor", Type: "event", Op: msg.Op()}
}

// Region accumulates an area for use as an input or opaque region.
type Region struct {
	object
}

func (r *Region) Destroy() {
	msg := wire.NewMessage(r, 0)
	msg.Method = "destroy"
	r.client.send(msg)
}

func (r *Region) Add(x, y, width, height int32) {
	msg := wire.NewMessage(r, 1)
	msg.Method = "add"
	msg.Args = []any{x, y, width, height}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	r.client.send(msg)
}

func (r *Region) Subtract(x, y, width, height int32) {
	msg := wire.NewMessage(r, 2)
	msg.Method = "subtract"
	msg.Args = []any{x, y, width, height}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	r.client.send(msg)
}

func (r *Region) MethodName(op uint16) string { return "unknown" }

func (r *Region) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: "wl_region", Type: "event", Op: msg.Op()}
}

// Surface is one wl_surface. The output enter and leave events are
// recorded as the IDs of this client's bound wl_output proxies.
type Surface struct {
	object

	Entered            []uint32
	Left               []uint32
	PreferredScale     int32
	PreferredTransform uint32
}

func (s *Surface) Destroy() {
	msg := wire.NewMessage(s, 0)
	msg.Method = "destroy"
	s.client.send(msg)
}

// Attach sets the pending buffer. A nil buffer detaches.
func (s *Surface) Attach(b *Buffer, x, y int32) {
	msg := wire.NewMessage(s, 1)
	msg.Method = "attach"
	msg.Args = []any{b, x, y}
	if b != nil {
		msg.WriteUint(b.oid)
	} else {
		msg.WriteUint(0)
	}
	msg.WriteInt(x)
	msg.WriteInt(y)
	s.client.send(msg)
}

func (s *Surface) Damage(x, y, width, height int32) {
	msg := wire.NewMessage(s, 2)
	msg.Method = "damage"
	msg.Args = []any{x, y, width, height}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	s.client.send(msg)
}

// Frame requests a callback for when a new frame should be drawn.
func (s *Surface) Frame() *Callback {
	cb := &Callback{object: object{client: s.client, iface: "wl_callback"}}
	s.client.add(cb)

	msg := wire.NewMessage(s, 3)
	msg.Method = "frame"
	msg.Args = []any{cb}
	msg.WriteUint(cb.oid)
	s.client.send(msg)
	return cb
}

// SetOpaqueRegion sets the pending opaque region. nil clears it.
func (s *Surface) SetOpaqueRegion(r *Region) {
	msg := wire.NewMessage(s, 4)
	msg.Method = "set_opaque_region"
	msg.Args = []any{r}
	if r != nil {
		msg.WriteUint(r.oid)
	} else {
		msg.WriteUint(0)
	}
	s.client.send(msg)
}

// SetInputRegion sets the pending input region. nil restores the
// default of the whole surface.
func (s *Surface) SetInputRegion(r *Region) {
	msg := wire.NewMessage(s, 5)
	msg.Method = "set_input_region"
	msg.Args = []any{r}
	if r != nil {
		msg.WriteUint(r.oid)
	} else {
		msg.WriteUint(0)
	}
	s.client.send(msg)
}

func (s *Surface) Commit() {
	msg := wire.NewMessage(s, 6)
	msg.Method = "commit"
	s.client.send(msg)
}

func (s *Surface) SetBufferTransform(transform int32) {
	msg := wire.NewMessage(s, 7)
	msg.Method = "set_buffer_transform"
	msg.Args = []any{transform}
	msg.WriteInt(transform)
	s.client.send(msg)
}

func (s *Surface) SetBufferScale(scale int32) {
	msg := wire.NewMessage(s, 8)
	msg.Method = "set_buffer_scale"
	msg.Args = []any{scale}
	msg.WriteInt(scale)
	s.client.send(msg)
}

func (s *Surface) DamageBuffer(x, y, width, height int32) {
	msg := wire.NewMessage(s, 9)
	msg.Method = "damage_buffer"
	msg.Args = []any{x, y, width, height}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	s.client.send(msg)
}

func (s *Surface) Offset(x, y int32) {
	msg := wire.NewMessage(s, 10)
	msg.Method = "offset"
	msg.Args = []any{x, y}
	msg.WriteInt(x)
	msg.WriteInt(y)
	s.client.send(msg)
}

func (s *Surface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "enter"
	case 1:
		return "leave"
	case 2:
		return "preferred_buffer_scale"
	case 3:
		return "preferred_buffer_transform"
	}
	return "unknown"
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // enter
		output := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		s.Entered = append(s.Entered, output)
		return nil

	case 1: // leave
		output := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		s.Left = append(s.Left, output)
		return nil

	case 2: // preferred_buffer_scale
		s.PreferredScale = msg.ReadInt()
		return msg.Err()

	case 3: // preferred_buffer_transform
		s.PreferredTransform = msg.ReadUint()
		return msg.Err()
	}

	return wire.UnknownOpError{Interface: "wl_surface", Type: "event", Op: msg.Op()}
}

// Subcompositor is the wl_subcompositor global.
type Subcompositor struct {
	object
}

func (sc *Subcompositor) Destroy() {
	msg := wire.NewMessage(sc, 0)
	msg.Method = "destroy"
	sc.client.send(msg)
}

func (sc *Subcompositor) GetSubsurface(surface, parent *Surface) *Subsurface {
	ss := &Subsurface{object: object{client: sc.client, iface: "wl_subsurface"}}
	sc.client.add(ss)

	msg := wire.NewMessage(sc, 1)
	msg.Method = "get_subsurface"
	msg.Args = []any{ss, surface, parent}
	msg.WriteUint(ss.oid)
	msg.WriteUint(surface.oid)
	msg.WriteUint(parent.oid)
	sc.client.send(msg)
	return ss
}

func (sc *Subcompositor) MethodName(op uint16) string { return "unknown" }

func (sc *Subcompositor) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: "wl_subcompositor", Type: "event", Op: msg.Op()}
}

// Subsurface positions one surface relative to a parent surface.
type Subsurface struct {
	object
}

func (ss *Subsurface) Destroy() {
	msg := wire.NewMessage(ss, 0)
	msg.Method = "destroy"
	ss.client.send(msg)
}

func (ss *Subsurface) SetPosition(x, y int32) {
	msg := wire.NewMessage(ss, 1)
	msg.Method = "set_position"
	msg.Args = []any{x, y}
	msg.WriteInt(x)
	msg.WriteInt(y)
	ss.client.send(msg)
}

func (ss *Subsurface) PlaceAbove(sibling *Surface) {
	msg := wire.NewMessage(ss, 2)
	msg.Method = "place_above"
	msg.Args = []any{sibling}
	msg.WriteUint(sibling.oid)
	ss.client.send(msg)
}

func (ss *Subsurface) PlaceBelow(sibling *Surface) {
	msg := wire.NewMessage(ss, 3)
	msg.Method = "place_below"
	msg.Args = []any{sibling}
	msg.WriteUint(sibling.oid)
	ss.client.send(msg)
}

func (ss *Subsurface) SetSync() {
	msg := wire.NewMessage(ss, 4)
	msg.Method = "set_sync"
	ss.client.send(msg)
}

func (ss *Subsurface) SetDesync() {
	msg := wire.NewMessage(ss, 5)
	msg.Method = "set_desync"
	ss.client.send(msg)
}

func (ss *Subsurface) MethodName(op uint16) string { return "unknown" }

func (ss *Subsurface) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: "wl_subsurface", Type: "event", Op: msg.Op()}
}
