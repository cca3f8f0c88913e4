package layer

import (
	"fmt"

	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
	"github.com/tfufuz1/NovaDE-sub008/xdg"
)

const (
	SurfaceInterface = "zwlr_layer_surface_v1"
	SurfaceVersion   = ShellVersion
)

type SurfaceError uint32

const (
	SurfaceErrorInvalidSurfaceState          SurfaceError = 0
	SurfaceErrorInvalidSize                  SurfaceError = 1
	SurfaceErrorInvalidAnchor                SurfaceError = 2
	SurfaceErrorInvalidKeyboardInteractivity SurfaceError = 3
)

// Anchor is a bitfield of output edges a layer surface sticks to.
type Anchor uint32

const (
	AnchorTop    Anchor = 1 << 0
	AnchorBottom Anchor = 1 << 1
	AnchorLeft   Anchor = 1 << 2
	AnchorRight  Anchor = 1 << 3

	AnchorAll = AnchorTop | AnchorBottom | AnchorLeft | AnchorRight
)

type KeyboardInteractivity uint32

const (
	KeyboardInteractivityNone      KeyboardInteractivity = 0
	KeyboardInteractivityExclusive KeyboardInteractivity = 1
	KeyboardInteractivityOnDemand  KeyboardInteractivity = 2
)

type Surface struct {
	Listener SurfaceListener

	client  *wl.Client
	id      uint32
	version uint32
	surface *wl.Surface
}

type SurfaceListener interface {
	// SetSize requests the surface's size. A zero width or height
	// asks the compositor to derive that axis from the anchors.
	SetSize(width, height uint32)
	SetAnchor(anchor Anchor)
	// SetExclusiveZone reserves zone pixels along the anchored edge.
	// Zero means no reservation, -1 asks to ignore other surfaces'
	// zones as well.
	SetExclusiveZone(zone int32)
	SetMargin(top, right, bottom, left int32)
	SetKeyboardInteractivity(ki KeyboardInteractivity)
	GetPopup(popup *xdg.Popup)
	AckConfigure(serial uint32)
	Destroy()
	SetLayer(layer Layer)
}

func (s *Surface) Client() *wl.Client   { return s.client }
func (s *Surface) ID() uint32           { return s.id }
func (s *Surface) SetID(id uint32)      { s.id = id }
func (s *Surface) Delete()              {}
func (s *Surface) Version() uint32      { return s.version }
func (s *Surface) Surface() *wl.Surface { return s.surface }

func (s *Surface) String() string {
	return fmt.Sprintf("%v@%v", SurfaceInterface, s.id)
}

func (s *Surface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "set_size"
	case 1:
		return "set_anchor"
	case 2:
		return "set_exclusive_zone"
	case 3:
		return "set_margin"
	case 4:
		return "set_keyboard_interactivity"
	case 5:
		return "get_popup"
	case 6:
		return "ack_configure"
	case 7:
		return "destroy"
	case 8:
		return "set_layer"
	}
	return "unknown"
}

// Configure proposes a size. The client acks the serial and commits
// a matching buffer.
func (s *Surface) Configure(serial, width, height uint32) {
	msg := wire.NewMessage(s, 0)
	msg.Method = "configure"
	msg.Args = []any{serial, width, height}
	msg.WriteUint(serial)
	msg.WriteUint(width)
	msg.WriteUint(height)
	s.client.Enqueue(msg)
}

// Closed tells the client the surface was dropped, for example
// because its output disappeared. The client should destroy it.
func (s *Surface) Closed() {
	msg := wire.NewMessage(s, 1)
	msg.Method = "closed"
	s.client.Enqueue(msg)
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // set_size
		width := msg.ReadUint()
		height := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.SetSize(width, height)
		}
		return nil

	case 1: // set_anchor
		anchor := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if Anchor(anchor)&^AnchorAll != 0 {
			return wl.Errorf(s, uint32(SurfaceErrorInvalidAnchor), "%v: invalid anchor %#x", s, anchor)
		}
		if s.Listener != nil {
			s.Listener.SetAnchor(Anchor(anchor))
		}
		return nil

	case 2: // set_exclusive_zone
		zone := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.SetExclusiveZone(zone)
		}
		return nil

	case 3: // set_margin
		top := msg.ReadInt()
		right := msg.ReadInt()
		bottom := msg.ReadInt()
		left := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.SetMargin(top, right, bottom, left)
		}
		return nil

	case 4: // set_keyboard_interactivity
		ki := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if ki > uint32(KeyboardInteractivityOnDemand) {
			return wl.Errorf(s, uint32(SurfaceErrorInvalidKeyboardInteractivity), "%v: invalid keyboard interactivity %v", s, ki)
		}
		if s.Listener != nil {
			s.Listener.SetKeyboardInteractivity(KeyboardInteractivity(ki))
		}
		return nil

	case 5: // get_popup
		popupID := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		popup, err := wl.LookupObject[*xdg.Popup](s.client, s, popupID)
		if err != nil {
			return err
		}
		if popup == nil {
			return wl.Errorf(s, uint32(wl.DisplayErrorInvalidObject), "%v: get_popup needs a popup", s)
		}
		if s.Listener != nil {
			s.Listener.GetPopup(popup)
		}
		return nil

	case 6: // ack_configure
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.AckConfigure(serial)
		}
		return nil

	case 7: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Destroy()
		}
		s.client.Destroy(s)
		return nil

	case 8: // set_layer
		layer := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if layer > uint32(LayerOverlay) {
			return wl.Errorf(s, uint32(ShellErrorInvalidLayer), "%v: invalid layer %v", s, layer)
		}
		if s.Listener != nil {
			s.Listener.SetLayer(Layer(layer))
		}
		return nil
	}

	return wire.UnknownOpError{Interface: SurfaceInterface, Type: "request", Op: msg.Op()}
}
