package wl

import (
	"fmt"

	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	SurfaceInterface = "wl_surface"
	SurfaceVersion   = CompositorVersion
)

type SurfaceError uint32

const (
	SurfaceErrorInvalidScale      SurfaceError = 0
	SurfaceErrorInvalidTransform  SurfaceError = 1
	SurfaceErrorInvalidSize       SurfaceError = 2
	SurfaceErrorInvalidOffset     SurfaceError = 3
	SurfaceErrorDefunctRoleObject SurfaceError = 4
)

type Surface struct {
	Listener SurfaceListener

	client  *Client
	id      uint32
	version uint32
}

// SurfaceListener receives a surface's requests. Double-buffered
// state accumulates across calls and takes effect at Commit.
type SurfaceListener interface {
	Destroy()
	Attach(buffer *Buffer, x, y int32)
	Damage(x, y, width, height int32)
	Frame(cb *Callback)
	SetOpaqueRegion(region *Region)
	SetInputRegion(region *Region)
	Commit()
	SetBufferTransform(transform OutputTransform)
	SetBufferScale(scale int32)
	DamageBuffer(x, y, width, height int32)
	Offset(x, y int32)
}

func (s *Surface) Client() *Client { return s.client }
func (s *Surface) ID() uint32      { return s.id }
func (s *Surface) SetID(id uint32) { s.id = id }
func (s *Surface) Delete()         {}
func (s *Surface) Version() uint32 { return s.version }

func (s *Surface) String() string {
	return fmt.Sprintf("%v@%v", SurfaceInterface, s.id)
}

func (s *Surface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "attach"
	case 2:
		return "damage"
	case 3:
		return "frame"
	case 4:
		return "set_opaque_region"
	case 5:
		return "set_input_region"
	case 6:
		return "commit"
	case 7:
		return "set_buffer_transform"
	case 8:
		return "set_buffer_scale"
	case 9:
		return "damage_buffer"
	case 10:
		return "offset"
	}
	return "unknown"
}

// Enter tells the client that the surface is now visible on output.
func (s *Surface) Enter(output *Output) {
	msg := wire.NewMessage(s, 0)
	msg.Method = "enter"
	msg.Args = []any{output}
	msg.WriteObject(output)
	s.client.Enqueue(msg)
}

// Leave tells the client that the surface left output.
func (s *Surface) Leave(output *Output) {
	msg := wire.NewMessage(s, 1)
	msg.Method = "leave"
	msg.Args = []any{output}
	msg.WriteObject(output)
	s.client.Enqueue(msg)
}

func (s *Surface) PreferredBufferScale(factor int32) {
	msg := wire.NewMessage(s, 2)
	msg.Method = "preferred_buffer_scale"
	msg.Args = []any{factor}
	msg.WriteInt(factor)
	s.client.Enqueue(msg)
}

func (s *Surface) PreferredBufferTransform(transform OutputTransform) {
	msg := wire.NewMessage(s, 3)
	msg.Method = "preferred_buffer_transform"
	msg.Args = []any{transform}
	msg.WriteUint(uint32(transform))
	s.client.Enqueue(msg)
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Destroy()
		}
		s.client.Destroy(s)
		return nil

	case 1: // attach
		bufferID := msg.ReadUint()
		x := msg.ReadInt()
		y := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		buffer, err := LookupObject[*Buffer](s.client, s, bufferID)
		if err != nil {
			return err
		}
		if s.version >= 5 && (x != 0 || y != 0) {
			return Errorf(s, uint32(SurfaceErrorInvalidOffset), "attach offsets must be zero since version 5")
		}
		if s.Listener != nil {
			s.Listener.Attach(buffer, x, y)
		}
		return nil

	case 2: // damage
		x := msg.ReadInt()
		y := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Damage(x, y, width, height)
		}
		return nil

	case 3: // frame
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		cb := &Callback{client: s.client, version: CallbackVersion}
		if err := s.client.AddWithID(cb, id); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Frame(cb)
		}
		return nil

	case 4: // set_opaque_region
		regionID := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		region, err := LookupObject[*Region](s.client, s, regionID)
		if err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.SetOpaqueRegion(region)
		}
		return nil

	case 5: // set_input_region
		regionID := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		region, err := LookupObject[*Region](s.client, s, regionID)
		if err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.SetInputRegion(region)
		}
		return nil

	case 6: // commit
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Commit()
		}
		return nil

	case 7: // set_buffer_transform
		transform := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if transform < 0 || transform > int32(OutputTransformFlipped270) {
			return Errorf(s, uint32(SurfaceErrorInvalidTransform), "invalid buffer transform %v", transform)
		}
		if s.Listener != nil {
			s.Listener.SetBufferTransform(OutputTransform(transform))
		}
		return nil

	case 8: // set_buffer_scale
		scale := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if scale < 1 {
			return Errorf(s, uint32(SurfaceErrorInvalidScale), "invalid buffer scale %v", scale)
		}
		if s.Listener != nil {
			s.Listener.SetBufferScale(scale)
		}
		return nil

	case 9: // damage_buffer
		x := msg.ReadInt()
		y := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.DamageBuffer(x, y, width, height)
		}
		return nil

	case 10: // offset
		x := msg.ReadInt()
		y := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Offset(x, y)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: SurfaceInterface, Type: "request", Op: msg.Op()}
}
