package xdg

import (
	"fmt"

	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	SurfaceInterface = "xdg_surface"
	SurfaceVersion   = WmBaseVersion
)

type SurfaceError uint32

const (
	SurfaceErrorNotConstructed     SurfaceError = 1
	SurfaceErrorAlreadyConstructed SurfaceError = 2
	SurfaceErrorUnconfiguredBuffer SurfaceError = 3
	SurfaceErrorInvalidSerial      SurfaceError = 4
	SurfaceErrorInvalidSize        SurfaceError = 5
	SurfaceErrorDefunctRoleObject  SurfaceError = 6
)

// Surface is the shell-level wrapper around a wl_surface. A role
// object, toplevel or popup, must be created from it before the
// first commit with a buffer.
type Surface struct {
	Listener SurfaceListener

	client  *wl.Client
	id      uint32
	version uint32
	wmBase  *WmBase
	surface *wl.Surface
}

type SurfaceListener interface {
	Destroy()
	GetToplevel(t *Toplevel)
	// GetPopup assigns the popup role. parent is nil when the popup's
	// parent will be supplied through another protocol.
	GetPopup(p *Popup, parent *Surface, positioner *Positioner)
	SetWindowGeometry(x, y, width, height int32)
	AckConfigure(serial uint32)
}

func (s *Surface) Client() *wl.Client   { return s.client }
func (s *Surface) ID() uint32           { return s.id }
func (s *Surface) SetID(id uint32)      { s.id = id }
func (s *Surface) Delete()              {}
func (s *Surface) Version() uint32      { return s.version }
func (s *Surface) WmBase() *WmBase      { return s.wmBase }
func (s *Surface) Surface() *wl.Surface { return s.surface }

func (s *Surface) String() string {
	return fmt.Sprintf("%v@%v", SurfaceInterface, s.id)
}

func (s *Surface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "get_toplevel"
	case 2:
		return "get_popup"
	case 3:
		return "set_window_geometry"
	case 4:
		return "ack_configure"
	}
	return "unknown"
}

// Configure tells the client that the aggregate state sent by the
// preceding role configure events takes effect once this serial is
// acked and committed.
func (s *Surface) Configure(serial uint32) {
	msg := wire.NewMessage(s, 0)
	msg.Method = "configure"
	msg.Args = []any{serial}
	msg.WriteUint(serial)
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

	case 1: // get_toplevel
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		t := &Toplevel{client: s.client, version: s.version, xdgSurface: s}
		if err := s.client.AddWithID(t, id); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.GetToplevel(t)
		}
		return nil

	case 2: // get_popup
		id := msg.ReadUint()
		parentID := msg.ReadUint()
		positionerID := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		parent, err := wl.LookupObject[*Surface](s.client, s, parentID)
		if err != nil {
			return err
		}
		positioner, err := wl.LookupObject[*Positioner](s.client, s, positionerID)
		if err != nil {
			return err
		}
		if positioner == nil {
			return wl.Errorf(s, uint32(wl.DisplayErrorInvalidObject), "%v: get_popup needs a positioner", s)
		}
		if !positioner.Complete() {
			return wl.Errorf(s, uint32(WmBaseErrorInvalidPositioner), "%v: positioner %v has no size or anchor rect", s, positioner)
		}
		p := &Popup{client: s.client, version: s.version, xdgSurface: s, parent: parent}
		if err := s.client.AddWithID(p, id); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.GetPopup(p, parent, positioner)
		}
		return nil

	case 3: // set_window_geometry
		x := msg.ReadInt()
		y := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if width <= 0 || height <= 0 {
			return wl.Errorf(s, uint32(SurfaceErrorInvalidSize), "%v: window geometry %vx%v is not positive", s, width, height)
		}
		if s.Listener != nil {
			s.Listener.SetWindowGeometry(x, y, width, height)
		}
		return nil

	case 4: // ack_configure
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.AckConfigure(serial)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: SurfaceInterface, Type: "request", Op: msg.Op()}
}
