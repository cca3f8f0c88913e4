package xdg

import (
	"fmt"

	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	PopupInterface = "xdg_popup"
	PopupVersion   = WmBaseVersion
)

type PopupError uint32

const PopupErrorInvalidGrab PopupError = 0

type Popup struct {
	Listener PopupListener

	client     *wl.Client
	id         uint32
	version    uint32
	xdgSurface *Surface
	parent     *Surface
}

type PopupListener interface {
	Destroy()
	// Grab ties the popup's lifetime to an implicit grab started by
	// the input event named by serial. Input outside the popup tree
	// dismisses the whole chain.
	Grab(seat *wl.Seat, serial uint32)
	Reposition(positioner *Positioner, token uint32)
}

func (p *Popup) Client() *wl.Client   { return p.client }
func (p *Popup) ID() uint32           { return p.id }
func (p *Popup) SetID(id uint32)      { p.id = id }
func (p *Popup) Delete()              {}
func (p *Popup) Version() uint32      { return p.version }
func (p *Popup) XdgSurface() *Surface { return p.xdgSurface }

// Parent returns the parent xdg_surface, or nil if the parent was
// supplied through another protocol.
func (p *Popup) Parent() *Surface { return p.parent }

func (p *Popup) String() string {
	return fmt.Sprintf("%v@%v", PopupInterface, p.id)
}

func (p *Popup) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "grab"
	case 2:
		return "reposition"
	}
	return "unknown"
}

// Configure reports the popup's placement relative to the parent
// surface's window geometry.
func (p *Popup) Configure(x, y, width, height int32) {
	msg := wire.NewMessage(p, 0)
	msg.Method = "configure"
	msg.Args = []any{x, y, width, height}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	p.client.Enqueue(msg)
}

// PopupDone dismisses the popup. The client should destroy it.
func (p *Popup) PopupDone() {
	msg := wire.NewMessage(p, 1)
	msg.Method = "popup_done"
	p.client.Enqueue(msg)
}

func (p *Popup) Repositioned(token uint32) {
	if p.version < 3 {
		return
	}
	msg := wire.NewMessage(p, 2)
	msg.Method = "repositioned"
	msg.Args = []any{token}
	msg.WriteUint(token)
	p.client.Enqueue(msg)
}

func (p *Popup) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.Destroy()
		}
		p.client.Destroy(p)
		return nil

	case 1: // grab
		seatID := msg.ReadUint()
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		seat, err := wl.LookupObject[*wl.Seat](p.client, p, seatID)
		if err != nil {
			return err
		}
		if seat == nil {
			return wl.Errorf(p, uint32(wl.DisplayErrorInvalidObject), "%v: grab needs a seat", p)
		}
		if p.Listener != nil {
			p.Listener.Grab(seat, serial)
		}
		return nil

	case 2: // reposition
		positionerID := msg.ReadUint()
		token := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		positioner, err := wl.LookupObject[*Positioner](p.client, p, positionerID)
		if err != nil {
			return err
		}
		if positioner == nil {
			return wl.Errorf(p, uint32(wl.DisplayErrorInvalidObject), "%v: reposition needs a positioner", p)
		}
		if p.Listener != nil {
			p.Listener.Reposition(positioner, token)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: PopupInterface, Type: "request", Op: msg.Op()}
}
