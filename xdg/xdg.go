// Package xdg provides server-side bindings for the xdg_shell
// protocol, covering desktop-style toplevel windows and positioned
// popups.
package xdg

import (
	"fmt"

	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	WmBaseInterface = "xdg_wm_base"
	WmBaseVersion   = 5
)

type WmBaseError uint32

const (
	WmBaseErrorRole                WmBaseError = 0
	WmBaseErrorDefunctSurfaces     WmBaseError = 1
	WmBaseErrorNotTheTopmostPopup  WmBaseError = 2
	WmBaseErrorInvalidPopupParent  WmBaseError = 3
	WmBaseErrorInvalidSurfaceState WmBaseError = 4
	WmBaseErrorInvalidPositioner   WmBaseError = 5
	WmBaseErrorUnresponsive        WmBaseError = 6
)

type WmBase struct {
	Listener WmBaseListener

	client  *wl.Client
	id      uint32
	version uint32
}

type WmBaseListener interface {
	Destroy()
	CreatePositioner(p *Positioner)
	// GetXdgSurface wraps surface in an xdg_surface. The listener is
	// responsible for rejecting surfaces that already have a role or
	// an attached buffer.
	GetXdgSurface(s *Surface, surface *wl.Surface)
	Pong(serial uint32)
}

func BindWmBase(client *wl.Client, id wire.NewID) *WmBase {
	wb := &WmBase{client: client, version: id.Version}
	client.Bind(wb, id.ID)
	return wb
}

func (wb *WmBase) Client() *wl.Client { return wb.client }
func (wb *WmBase) ID() uint32         { return wb.id }
func (wb *WmBase) SetID(id uint32)    { wb.id = id }
func (wb *WmBase) Delete()            {}
func (wb *WmBase) Version() uint32    { return wb.version }

func (wb *WmBase) String() string {
	return fmt.Sprintf("%v@%v", WmBaseInterface, wb.id)
}

func (wb *WmBase) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "create_positioner"
	case 2:
		return "get_xdg_surface"
	case 3:
		return "pong"
	}
	return "unknown"
}

// Ping asks the client to prove responsiveness by answering with a
// pong carrying the same serial.
func (wb *WmBase) Ping(serial uint32) {
	msg := wire.NewMessage(wb, 0)
	msg.Method = "ping"
	msg.Args = []any{serial}
	msg.WriteUint(serial)
	wb.client.Enqueue(msg)
}

func (wb *WmBase) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if wb.Listener != nil {
			wb.Listener.Destroy()
		}
		wb.client.Destroy(wb)
		return nil

	case 1: // create_positioner
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		p := &Positioner{client: wb.client, version: wb.version}
		if err := wb.client.AddWithID(p, id); err != nil {
			return err
		}
		if wb.Listener != nil {
			wb.Listener.CreatePositioner(p)
		}
		return nil

	case 2: // get_xdg_surface
		id := msg.ReadUint()
		surfaceID := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		surface, err := wl.LookupObject[*wl.Surface](wb.client, wb, surfaceID)
		if err != nil {
			return err
		}
		if surface == nil {
			return wl.Errorf(wb, uint32(wl.DisplayErrorInvalidObject), "%v: get_xdg_surface needs a surface", wb)
		}
		s := &Surface{client: wb.client, version: wb.version, wmBase: wb, surface: surface}
		if err := wb.client.AddWithID(s, id); err != nil {
			return err
		}
		if wb.Listener != nil {
			wb.Listener.GetXdgSurface(s, surface)
		}
		return nil

	case 3: // pong
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if wb.Listener != nil {
			wb.Listener.Pong(serial)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: WmBaseInterface, Type: "request", Op: msg.Op()}
}
