package wl

import (
	"fmt"

	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	SubcompositorInterface = "wl_subcompositor"
	SubcompositorVersion   = 1

	SubsurfaceInterface = "wl_subsurface"
	SubsurfaceVersion   = 1
)

type SubcompositorError uint32

const (
	SubcompositorErrorBadSurface SubcompositorError = 0
	SubcompositorErrorBadParent  SubcompositorError = 1
)

type Subcompositor struct {
	Listener SubcompositorListener

	client  *Client
	id      uint32
	version uint32
}

type SubcompositorListener interface {
	// GetSubsurface turns surface into a subsurface of parent. The
	// listener is responsible for rejecting surfaces that already
	// have a role and for detecting parent loops.
	GetSubsurface(sub *Subsurface, surface, parent *Surface)
	Destroy()
}

func BindSubcompositor(client *Client, id wire.NewID) *Subcompositor {
	sc := &Subcompositor{client: client, version: id.Version}
	client.Bind(sc, id.ID)
	return sc
}

func (sc *Subcompositor) Client() *Client { return sc.client }
func (sc *Subcompositor) ID() uint32      { return sc.id }
func (sc *Subcompositor) SetID(id uint32) { sc.id = id }
func (sc *Subcompositor) Delete()         {}
func (sc *Subcompositor) Version() uint32 { return sc.version }

func (sc *Subcompositor) String() string {
	return fmt.Sprintf("%v@%v", SubcompositorInterface, sc.id)
}

func (sc *Subcompositor) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "get_subsurface"
	}
	return "unknown"
}

func (sc *Subcompositor) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if sc.Listener != nil {
			sc.Listener.Destroy()
		}
		sc.client.Destroy(sc)
		return nil

	case 1: // get_subsurface
		id := msg.ReadUint()
		surfaceID := msg.ReadUint()
		parentID := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		surface, err := lookupSurface(sc.client, sc, surfaceID, SubcompositorErrorBadSurface)
		if err != nil {
			return err
		}
		parent, err := lookupSurface(sc.client, sc, parentID, SubcompositorErrorBadParent)
		if err != nil {
			return err
		}

		sub := &Subsurface{client: sc.client, version: sc.version, surface: surface, parent: parent}
		if err := sc.client.AddWithID(sub, id); err != nil {
			return err
		}
		if sc.Listener != nil {
			sc.Listener.GetSubsurface(sub, surface, parent)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: SubcompositorInterface, Type: "request", Op: msg.Op()}
}

func lookupSurface(client *Client, from wire.Object, id uint32, code SubcompositorError) (*Surface, error) {
	obj := client.Get(id)
	if obj == nil {
		return nil, Errorf(from, uint32(code), "%v: no such surface %v", from, id)
	}
	s, ok := obj.(*Surface)
	if !ok {
		return nil, Errorf(from, uint32(code), "%v: object %v is not a surface", from, obj)
	}
	return s, nil
}

type SubsurfaceError uint32

const SubsurfaceErrorBadSurface SubsurfaceError = 0

type Subsurface struct {
	Listener SubsurfaceListener

	client  *Client
	id      uint32
	version uint32
	surface *Surface
	parent  *Surface
}

type SubsurfaceListener interface {
	Destroy()
	SetPosition(x, y int32)
	PlaceAbove(sibling *Surface)
	PlaceBelow(sibling *Surface)
	SetSync()
	SetDesync()
}

func (ss *Subsurface) Client() *Client   { return ss.client }
func (ss *Subsurface) ID() uint32        { return ss.id }
func (ss *Subsurface) SetID(id uint32)   { ss.id = id }
func (ss *Subsurface) Delete()           {}
func (ss *Subsurface) Version() uint32   { return ss.version }
func (ss *Subsurface) Surface() *Surface { return ss.surface }
func (ss *Subsurface) Parent() *Surface  { return ss.parent }

func (ss *Subsurface) String() string {
	return fmt.Sprintf("%v@%v", SubsurfaceInterface, ss.id)
}

func (ss *Subsurface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "set_position"
	case 2:
		return "place_above"
	case 3:
		return "place_below"
	case 4:
		return "set_sync"
	case 5:
		return "set_desync"
	}
	return "unknown"
}

func (ss *Subsurface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.Destroy()
		}
		ss.client.Destroy(ss)
		return nil

	case 1: // set_position
		x := msg.ReadInt()
		y := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.SetPosition(x, y)
		}
		return nil

	case 2: // place_above
		siblingID := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		sibling, err := lookupSibling(ss, siblingID)
		if err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.PlaceAbove(sibling)
		}
		return nil

	case 3: // place_below
		siblingID := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		sibling, err := lookupSibling(ss, siblingID)
		if err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.PlaceBelow(sibling)
		}
		return nil

	case 4: // set_sync
		if err := msg.Err(); err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.SetSync()
		}
		return nil

	case 5: // set_desync
		if err := msg.Err(); err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.SetDesync()
		}
		return nil
	}

	return wire.UnknownOpError{Interface: SubsurfaceInterface, Type: "request", Op: msg.Op()}
}

func lookupSibling(ss *Subsurface, id uint32) (*Surface, error) {
	obj := ss.client.Get(id)
	if obj == nil {
		return nil, Errorf(ss, uint32(SubsurfaceErrorBadSurface), "%v: no such surface %v", ss, id)
	}
	s, ok := obj.(*Surface)
	if !ok {
		return nil, Errorf(ss, uint32(SubsurfaceErrorBadSurface), "%v: object %v is not a surface", ss, obj)
	}
	return s, nil
}
