package wlclient

import (
	"encoding/binary"

	"github.com/tfufuz1/NovaDE-sub008/wire"
)

// WmBase is the xdg_wm_base global.
type WmBase struct {
	object

	// Pings records ping serials. Tests answer them explicitly with
	// Pong when liveness is under test.
	Pings []uint32
}

func (wb *WmBase) Destroy() {
	msg := wire.NewMessage(wb, 0)
	msg.Method = "destroy"
	wb.client.send(msg)
}

func (wb *WmBase) CreatePositioner() *Positioner {
	p := &Positioner{object: object{client: wb.client, iface: "xdg_positioner"}}
	wb.client.add(p)

	msg := wire.NewMessage(wb, 1)
	msg.Method = "create_positioner"
	msg.Args = []any{p}
	msg.WriteUint(p.oid)
	wb.client.send(msg)
	return p
}

func (wb *WmBase) GetXdgSurface(surface *Surface) *XdgSurface {
	xs := &XdgSurface{object: object{client: wb.client, iface: "xdg_surface"}}
	wb.client.add(xs)

	msg := wire.NewMessage(wb, 2)
	msg.Method = "get_xdg_surface"
	msg.Args = []any{xs, surface}
	msg.WriteUint(xs.oid)
	msg.WriteUint(surface.oid)
	wb.client.send(msg)
	return xs
}

func (wb *WmBase) Pong(serial uint32) {
	msg := wire.NewMessage(wb, 3)
	msg.Method = "pong"
	msg.Args = []any{serial}
	msg.WriteUint(serial)
	wb.client.send(msg)
}

func (wb *WmBase) MethodName(op uint16) string {
	if op == 0 {
		return "ping"
	}
	return "unknown"
}

func (wb *WmBase) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // ping
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		wb.Pings = append(wb.Pings, serial)
		return nil
	}

	return wire.UnknownOpError{Interface: "xdg_wm_base", Type: "event", Op: msg.Op()}
}

// XdgSurface wraps a wl_surface for the desktop shell.
type XdgSurface struct {
	object

	// Configures records configure serials in arrival order.
	Configures []uint32
}

// LastConfigure returns the most recent configure serial.
func (xs *XdgSurface) LastConfigure() (uint32, bool) {
	if len(xs.Configures) == 0 {
		return 0, false
	}
	return xs.Configures[len(xs.Configures)-1], true
}

func (xs *XdgSurface) Destroy() {
	msg := wire.NewMessage(xs, 0)
	msg.Method = "destroy"
	xs.client.send(msg)
}

func (xs *XdgSurface) GetToplevel() *Toplevel {
	t := &Toplevel{object: object{client: xs.client, iface: "xdg_toplevel"}}
	xs.client.add(t)

	msg := wire.NewMessage(xs, 1)
	msg.Method = "get_toplevel"
	msg.Args = []any{t}
	msg.WriteUint(t.oid)
	xs.client.send(msg)
	return t
}

// GetPopup creates a popup role. parent may be nil for a parent
// assigned via another protocol, such as a layer surface.
func (xs *XdgSurface) GetPopup(parent *XdgSurface, positioner *Positioner) *Popup {
	p := &Popup{object: object{client: xs.client, iface: "xdg_popup"}}
	xs.client.add(p)

	msg := wire.NewMessage(xs, 2)
	msg.Method = "get_popup"
	msg.Args = []any{p, parent, positioner}
	msg.WriteUint(p.oid)
	if parent != nil {
		msg.WriteUint(parent.oid)
	} else {
		msg.WriteUint(0)
	}
	msg.WriteUint(positioner.oid)
	xs.client.send(msg)
	return p
}

func (xs *XdgSurface) SetWindowGeometry(x, y, width, height int32) {
	msg := wire.NewMessage(xs, 3)
	msg.Method = "set_window_geometry"
	msg.Args = []any{x, y, width, height}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	xs.client.send(msg)
}

func (xs *XdgSurface) AckConfigure(serial uint32) {
	msg := wire.NewMessage(xs, 4)
	msg.Method = "ack_configure"
	msg.Args = []any{serial}
	msg.WriteUint(serial)
	xs.client.send(msg)
}

func (xs *XdgSurface) MethodName(op uint16) string {
	if op == 0 {
		return "configure"
	}
	return "unknown"
}

func (xs *XdgSurface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // configure
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		xs.Configures = append(xs.Configures, serial)
		return nil
	}

	return wire.UnknownOpError{Interface: "xdg_surface", Type: "event", Op: msg.Op()}
}

// ToplevelConfigure is one xdg_toplevel.configure event.
type ToplevelConfigure struct {
	Width, Height int32
	States        []uint32
}

// HasState reports whether the configure carries state s.
func (tc ToplevelConfigure) HasState(s uint32) bool {
	for _, v := range tc.States {
		if v == s {
			return true
		}
	}
	return false
}

// Toplevel state values from the xdg_toplevel state enum.
const (
	StateMaximized  uint32 = 1
	StateFullscreen uint32 = 2
	StateResizing   uint32 = 3
	StateActivated  uint32 = 4
)

// Resize edge values from the xdg_toplevel resize_edge enum.
const (
	EdgeNone        uint32 = 0
	EdgeTop         uint32 = 1
	EdgeBottom      uint32 = 2
	EdgeLeft        uint32 = 4
	EdgeTopLeft     uint32 = 5
	EdgeBottomLeft  uint32 = 6
	EdgeRight       uint32 = 8
	EdgeTopRight    uint32 = 9
	EdgeBottomRight uint32 = 10
)

// Toplevel is an xdg_toplevel window.
type Toplevel struct {
	object

	Configures []ToplevelConfigure
	Closed     bool
	BoundsW    int32
	BoundsH    int32
	Caps       []uint32
}

// LastConfigure returns the most recent toplevel configure.
func (t *Toplevel) LastConfigure() (ToplevelConfigure, bool) {
	if len(t.Configures) == 0 {
		return ToplevelConfigure{}, false
	}
	return t.Configures[len(t.Configures)-1], true
}

func (t *Toplevel) Destroy() {
	msg := wire.NewMessage(t, 0)
	msg.Method = "destroy"
	t.client.send(msg)
}

// SetParent makes this window transient for parent. nil unsets.
func (t *Toplevel) SetParent(parent *Toplevel) {
	msg := wire.NewMessage(t, 1)
	msg.Method = "set_parent"
	msg.Args = []any{parent}
	if parent != nil {
		msg.WriteUint(parent.oid)
	} else {
		msg.WriteUint(0)
	}
	t.client.send(msg)
}

func (t *Toplevel) SetTitle(title string) {
	msg := wire.NewMessage(t, 2)
	msg.Method = "set_title"
	msg.Args = []any{title}
	msg.WriteString(title)
	t.client.send(msg)
}

func (t *Toplevel) SetAppID(appID string) {
	msg := wire.NewMessage(t, 3)
	msg.Method = "set_app_id"
	msg.Args = []any{appID}
	msg.WriteString(appID)
	t.client.send(msg)
}

func (t *Toplevel) ShowWindowMenu(seat *Seat, serial uint32, x, y int32) {
	msg := wire.NewMessage(t, 4)
	msg.Method = "show_window_menu"
	msg.Args = []any{seat, serial, x, y}
	msg.WriteUint(seat.oid)
	msg.WriteUint(serial)
	msg.WriteInt(x)
	msg.WriteInt(y)
	t.client.send(msg)
}

func (t *Toplevel) Move(seat *Seat, serial uint32) {
	msg := wire.NewMessage(t, 5)
	msg.Method = "move"
	msg.Args = []any{seat, serial}
	msg.WriteUint(seat.oid)
	msg.WriteUint(serial)
	t.client.send(msg)
}

func (t *Toplevel) Resize(seat *Seat, serial, edges uint32) {
	msg := wire.NewMessage(t, 6)
	msg.Method = "resize"
	msg.Args = []any{seat, serial, edges}
	msg.WriteUint(seat.oid)
	msg.WriteUint(serial)
	msg.WriteUint(edges)
	t.client.send(msg)
}

func (t *Toplevel) SetMaxSize(width, height int32) {
	msg := wire.NewMessage(t, 7)
	msg.Method = "set_max_size"
	msg.Args = []any{width, height}
	msg.WriteInt(width)
	msg.WriteInt(height)
	t.client.send(msg)
}

func (t *Toplevel) SetMinSize(width, height int32) {
	msg := wire.NewMessage(t, 8)
	msg.Method = "set_min_size"
	msg.Args = []any{width, height}
	msg.WriteInt(width)
	msg.WriteInt(height)
	t.client.send(msg)
}

func (t *Toplevel) SetMaximized() {
	msg := wire.NewMessage(t, 9)
	msg.Method = "set_maximized"
	t.client.send(msg)
}

func (t *Toplevel) UnsetMaximized() {
	msg := wire.NewMessage(t, 10)
	msg.Method = "unset_maximized"
	t.client.send(msg)
}

// SetFullscreen requests fullscreen, optionally on a specific
// output.
func (t *Toplevel) SetFullscreen(output *Output) {
	msg := wire.NewMessage(t, 11)
	msg.Method = "set_fullscreen"
	msg.Args = []any{output}
	if output != nil {
		msg.WriteUint(output.oid)
	} else {
		msg.WriteUint(0)
	}
	t.client.send(msg)
}

func (t *Toplevel) UnsetFullscreen() {
	msg := wire.NewMessage(t, 12)
	msg.Method = "unset_fullscreen"
	t.client.send(msg)
}

func (t *Toplevel) SetMinimized() {
	msg := wire.NewMessage(t, 13)
	msg.Method = "set_minimized"
	t.client.send(msg)
}

func (t *Toplevel) MethodName(op uint16) string {
	switch op {
	case 0:
		return "configure"
	case 1:
		return "close"
	case 2:
		return "configure_bounds"
	case 3:
		return "wm_capabilities"
	}
	return "unknown"
}

func (t *Toplevel) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // configure
		width := msg.ReadInt()
		height := msg.ReadInt()
		states := msg.ReadArray()
		if err := msg.Err(); err != nil {
			return err
		}
		t.Configures = append(t.Configures, ToplevelConfigure{
			Width:  width,
			Height: height,
			States: decodeUints(states),
		})
		return nil

	case 1: // close
		t.Closed = true
		return nil

	case 2: // configure_bounds
		t.BoundsW = msg.ReadInt()
		t.BoundsH = msg.ReadInt()
		return msg.Err()

	case 3: // wm_capabilities
		caps := msg.ReadArray()
		if err := msg.Err(); err != nil {
			return err
		}
		t.Caps = decodeUints(caps)
		return nil
	}

	return wire.UnknownOpError{Interface: "xdg_toplevel", Type: "event", Op: msg.Op()}
}

func decodeUints(data []byte) []uint32 {
	out := make([]uint32, 0, len(data)/4)
	for len(data) >= 4 {
		out = append(out, binary.LittleEndian.Uint32(data))
		data = data[4:]
	}
	return out
}

// Positioner describes popup placement.
type Positioner struct {
	object
}

func (p *Positioner) Destroy() {
	msg := wire.NewMessage(p, 0)
	msg.Method = "destroy"
	p.client.send(msg)
}

func (p *Positioner) SetSize(width, height int32) {
	msg := wire.NewMessage(p, 1)
	msg.Method = "set_size"
	msg.Args = []any{width, height}
	msg.WriteInt(width)
	msg.WriteInt(height)
	p.client.send(msg)
}

func (p *Positioner) SetAnchorRect(x, y, width, height int32) {
	msg := wire.NewMessage(p, 2)
	msg.Method = "set_anchor_rect"
	msg.Args = []any{x, y, width, height}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	p.client.send(msg)
}

func (p *Positioner) SetAnchor(anchor uint32) {
	msg := wire.NewMessage(p, 3)
	msg.Method = "set_anchor"
	msg.Args = []any{anchor}
	msg.WriteUint(anchor)
	p.client.send(msg)
}

func (p *Positioner) SetGravity(gravity uint32) {
	msg := wire.NewMessage(p, 4)
	msg.Method = "set_gravity"
	msg.Args = []any{gravity}
	msg.WriteUint(gravity)
	p.client.send(msg)
}

func (p *Positioner) SetConstraintAdjustment(adjustment uint32) {
	msg := wire.NewMessage(p, 5)
	msg.Method = "set_constraint_adjustment"
	msg.Args = []any{adjustment}
	msg.WriteUint(adjustment)
	p.client.send(msg)
}

func (p *Positioner) SetOffset(x, y int32) {
	msg := wire.NewMessage(p, 6)
	msg.Method = "set_offset"
	msg.Args = []any{x, y}
	msg.WriteInt(x)
	msg.WriteInt(y)
	p.client.send(msg)
}

func (p *Positioner) SetReactive() {
	msg := wire.NewMessage(p, 7)
	msg.Method = "set_reactive"
	p.client.send(msg)
}

func (p *Positioner) SetParentSize(width, height int32) {
	msg := wire.NewMessage(p, 8)
	msg.Method = "set_parent_size"
	msg.Args = []any{width, height}
	msg.WriteInt(width)
	msg.WriteInt(height)
	p.client.send(msg)
}

func (p *Positioner) SetParentConfigure(serial uint32) {
	msg := wire.NewMessage(p, 9)
	msg.Method = "set_parent_configure"
	msg.Args = []any{serial}
	msg.WriteUint(serial)
	p.client.send(msg)
}

func (p *Positioner) MethodName(op uint16) string { return "unknown" }

func (p *Positioner) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: "xdg_positioner", Type: "event", Op: msg.Op()}
}

// PopupConfigure is one xdg_popup.configure event. The position is
// relative to the parent's window geometry.
type PopupConfigure struct {
	X, Y          int32
	Width, Height int32
}

// Popup is an xdg_popup.
type Popup struct {
	object

	Configures []PopupConfigure
	Done       bool
}

func (p *Popup) Destroy() {
	msg := wire.NewMessage(p, 0)
	msg.Method = "destroy"
	p.client.send(msg)
}

func (p *Popup) Grab(seat *Seat, serial uint32) {
	msg := wire.NewMessage(p, 1)
	msg.Method = "grab"
	msg.Args = []any{seat, serial}
	msg.WriteUint(seat.oid)
	msg.WriteUint(serial)
	p.client.send(msg)
}

func (p *Popup) Reposition(positioner *Positioner, token uint32) {
	msg := wire.NewMessage(p, 2)
	msg.Method = "reposition"
	msg.Args = []any{positioner, token}
	msg.WriteUint(positioner.oid)
	msg.WriteUint(token)
	p.client.send(msg)
}

func (p *Popup) MethodName(op uint16) string {
	switch op {
	case 0:
		return "configure"
	case 1:
		return "popup_done"
	case 2:
		return "repositioned"
	}
	return "unknown"
}

func (p *Popup) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // configure
		ev := PopupConfigure{
			X:      msg.ReadInt(),
			Y:      msg.ReadInt(),
			Width:  msg.ReadInt(),
			Height: msg.ReadInt(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		p.Configures = append(p.Configures, ev)
		return nil

	case 1: // popup_done
		p.Done = true
		return nil

	case 2: // repositioned
		msg.ReadUint()
		return msg.Err()
	}

	return wire.UnknownOpError{Interface: "xdg_popup", Type: "event", Op: msg.Op()}
}
