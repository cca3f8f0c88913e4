package xdg

import (
	"fmt"

	"github.com/tfufuz1/NovaDE-sub008/internal/bin"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	ToplevelInterface = "xdg_toplevel"
	ToplevelVersion   = WmBaseVersion
)

type ToplevelError uint32

const (
	ToplevelErrorInvalidResizeEdge ToplevelError = 0
	ToplevelErrorInvalidParent     ToplevelError = 1
	ToplevelErrorInvalidSize       ToplevelError = 2
)

type ResizeEdge uint32

const (
	ResizeEdgeNone        ResizeEdge = 0
	ResizeEdgeTop         ResizeEdge = 1
	ResizeEdgeBottom      ResizeEdge = 2
	ResizeEdgeLeft        ResizeEdge = 4
	ResizeEdgeTopLeft     ResizeEdge = 5
	ResizeEdgeBottomLeft  ResizeEdge = 6
	ResizeEdgeRight       ResizeEdge = 8
	ResizeEdgeTopRight    ResizeEdge = 9
	ResizeEdgeBottomRight ResizeEdge = 10
)

func (e ResizeEdge) Valid() bool {
	switch e {
	case ResizeEdgeNone, ResizeEdgeTop, ResizeEdgeBottom, ResizeEdgeLeft,
		ResizeEdgeTopLeft, ResizeEdgeBottomLeft, ResizeEdgeRight,
		ResizeEdgeTopRight, ResizeEdgeBottomRight:
		return true
	}
	return false
}

type ToplevelState uint32

const (
	ToplevelStateMaximized   ToplevelState = 1
	ToplevelStateFullscreen  ToplevelState = 2
	ToplevelStateResizing    ToplevelState = 3
	ToplevelStateActivated   ToplevelState = 4
	ToplevelStateTiledLeft   ToplevelState = 5
	ToplevelStateTiledRight  ToplevelState = 6
	ToplevelStateTiledTop    ToplevelState = 7
	ToplevelStateTiledBottom ToplevelState = 8
)

type WmCapability uint32

const (
	WmCapabilityWindowMenu WmCapability = 1
	WmCapabilityMaximize   WmCapability = 2
	WmCapabilityFullscreen WmCapability = 3
	WmCapabilityMinimize   WmCapability = 4
)

type Toplevel struct {
	Listener ToplevelListener

	client     *wl.Client
	id         uint32
	version    uint32
	xdgSurface *Surface
}

type ToplevelListener interface {
	Destroy()
	// SetParent requests stacking above parent, which may be nil to
	// clear the relationship.
	SetParent(parent *Toplevel)
	SetTitle(title string)
	SetAppId(appID string)
	ShowWindowMenu(seat *wl.Seat, serial uint32, x, y int32)
	Move(seat *wl.Seat, serial uint32)
	Resize(seat *wl.Seat, serial uint32, edges ResizeEdge)
	SetMaxSize(width, height int32)
	SetMinSize(width, height int32)
	SetMaximized()
	UnsetMaximized()
	// SetFullscreen requests fullscreen on output, or on a
	// compositor-chosen output when output is nil.
	SetFullscreen(output *wl.Output)
	UnsetFullscreen()
	SetMinimized()
}

func (t *Toplevel) Client() *wl.Client   { return t.client }
func (t *Toplevel) ID() uint32           { return t.id }
func (t *Toplevel) SetID(id uint32)      { t.id = id }
func (t *Toplevel) Delete()              {}
func (t *Toplevel) Version() uint32      { return t.version }
func (t *Toplevel) XdgSurface() *Surface { return t.xdgSurface }

func (t *Toplevel) String() string {
	return fmt.Sprintf("%v@%v", ToplevelInterface, t.id)
}

func (t *Toplevel) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "set_parent"
	case 2:
		return "set_title"
	case 3:
		return "set_app_id"
	case 4:
		return "show_window_menu"
	case 5:
		return "move"
	case 6:
		return "resize"
	case 7:
		return "set_max_size"
	case 8:
		return "set_min_size"
	case 9:
		return "set_maximized"
	case 10:
		return "unset_maximized"
	case 11:
		return "set_fullscreen"
	case 12:
		return "unset_fullscreen"
	case 13:
		return "set_minimized"
	}
	return "unknown"
}

// Configure proposes a size and the pending state set. A size of 0x0
// lets the client pick. The proposal takes effect only after the
// matching xdg_surface.configure is acked and committed.
func (t *Toplevel) Configure(width, height int32, states []ToplevelState) {
	msg := wire.NewMessage(t, 0)
	msg.Method = "configure"
	msg.Args = []any{width, height, states}
	msg.WriteInt(width)
	msg.WriteInt(height)
	msg.WriteArray(stateBytes(states))
	t.client.Enqueue(msg)
}

func (t *Toplevel) Close() {
	msg := wire.NewMessage(t, 1)
	msg.Method = "close"
	t.client.Enqueue(msg)
}

func (t *Toplevel) ConfigureBounds(width, height int32) {
	if t.version < 4 {
		return
	}
	msg := wire.NewMessage(t, 2)
	msg.Method = "configure_bounds"
	msg.Args = []any{width, height}
	msg.WriteInt(width)
	msg.WriteInt(height)
	t.client.Enqueue(msg)
}

func (t *Toplevel) WmCapabilities(caps []WmCapability) {
	if t.version < 5 {
		return
	}
	msg := wire.NewMessage(t, 3)
	msg.Method = "wm_capabilities"
	msg.Args = []any{caps}
	data := make([]byte, 0, len(caps)*4)
	for _, c := range caps {
		b := bin.Bytes(c)
		data = append(data, b[:]...)
	}
	msg.WriteArray(data)
	t.client.Enqueue(msg)
}

func stateBytes(states []ToplevelState) []byte {
	data := make([]byte, 0, len(states)*4)
	for _, s := range states {
		b := bin.Bytes(s)
		data = append(data, b[:]...)
	}
	return data
}

func (t *Toplevel) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.Destroy()
		}
		t.client.Destroy(t)
		return nil

	case 1: // set_parent
		parentID := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		parent, err := wl.LookupObject[*Toplevel](t.client, t, parentID)
		if err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.SetParent(parent)
		}
		return nil

	case 2: // set_title
		title := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.SetTitle(title)
		}
		return nil

	case 3: // set_app_id
		appID := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.SetAppId(appID)
		}
		return nil

	case 4: // show_window_menu
		seatID := msg.ReadUint()
		serial := msg.ReadUint()
		x := msg.ReadInt()
		y := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		seat, err := wl.LookupObject[*wl.Seat](t.client, t, seatID)
		if err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.ShowWindowMenu(seat, serial, x, y)
		}
		return nil

	case 5: // move
		seatID := msg.ReadUint()
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		seat, err := wl.LookupObject[*wl.Seat](t.client, t, seatID)
		if err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.Move(seat, serial)
		}
		return nil

	case 6: // resize
		seatID := msg.ReadUint()
		serial := msg.ReadUint()
		edges := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		seat, err := wl.LookupObject[*wl.Seat](t.client, t, seatID)
		if err != nil {
			return err
		}
		if !ResizeEdge(edges).Valid() {
			return wl.Errorf(t, uint32(ToplevelErrorInvalidResizeEdge), "%v: invalid resize edge %v", t, edges)
		}
		if t.Listener != nil {
			t.Listener.Resize(seat, serial, ResizeEdge(edges))
		}
		return nil

	case 7: // set_max_size
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if width < 0 || height < 0 {
			return wl.Errorf(t, uint32(ToplevelErrorInvalidSize), "%v: max size %vx%v is negative", t, width, height)
		}
		if t.Listener != nil {
			t.Listener.SetMaxSize(width, height)
		}
		return nil

	case 8: // set_min_size
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if width < 0 || height < 0 {
			return wl.Errorf(t, uint32(ToplevelErrorInvalidSize), "%v: min size %vx%v is negative", t, width, height)
		}
		if t.Listener != nil {
			t.Listener.SetMinSize(width, height)
		}
		return nil

	case 9: // set_maximized
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.SetMaximized()
		}
		return nil

	case 10: // unset_maximized
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.UnsetMaximized()
		}
		return nil

	case 11: // set_fullscreen
		outputID := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		output, err := wl.LookupObject[*wl.Output](t.client, t, outputID)
		if err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.SetFullscreen(output)
		}
		return nil

	case 12: // unset_fullscreen
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.UnsetFullscreen()
		}
		return nil

	case 13: // set_minimized
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.SetMinimized()
		}
		return nil
	}

	return wire.UnknownOpError{Interface: ToplevelInterface, Type: "request", Op: msg.Op()}
}
