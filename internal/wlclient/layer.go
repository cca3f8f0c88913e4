package wlclient

import (
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

// Layer band values from the zwlr_layer_shell_v1 layer enum.
const (
	LayerBackground uint32 = 0
	LayerBottom     uint32 = 1
	LayerTop        uint32 = 2
	LayerOverlay    uint32 = 3
)

// Anchor bits from the zwlr_layer_surface_v1 anchor enum.
const (
	AnchorTop    uint32 = 1 << 0
	AnchorBottom uint32 = 1 << 1
	AnchorLeft   uint32 = 1 << 2
	AnchorRight  uint32 = 1 << 3
)

// Keyboard interactivity modes.
const (
	KINone      uint32 = 0
	KIExclusive uint32 = 1
	KIOnDemand  uint32 = 2
)

// LayerShell is the zwlr_layer_shell_v1 global.
type LayerShell struct {
	object
}

// GetLayerSurface assigns the layer surface role. output may be nil
// to let the compositor pick one.
func (ls *LayerShell) GetLayerSurface(surface *Surface, output *Output, layerBand uint32, namespace string) *LayerSurface {
	s := &LayerSurface{object: object{client: ls.client, iface: "zwlr_layer_surface_v1"}}
	ls.client.add(s)

	msg := wire.NewMessage(ls, 0)
	msg.Method = "get_layer_surface"
	msg.Args = []any{s, surface, output, layerBand, namespace}
	msg.WriteUint(s.oid)
	msg.WriteUint(surface.oid)
	if output != nil {
		msg.WriteUint(output.oid)
	} else {
		msg.WriteUint(0)
	}
	msg.WriteUint(layerBand)
	msg.WriteString(namespace)
	ls.client.send(msg)
	return s
}

func (ls *LayerShell) Destroy() {
	msg := wire.NewMessage(ls, 1)
	msg.Method = "destroy"
	ls.client.send(msg)
}

func (ls *LayerShell) MethodName(op uint16) string { return "unknown" }

func (ls *LayerShell) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: "zwlr_layer_shell_v1", Type: "event", Op: msg.Op()}
}

// LayerConfigure is one layer surface configure event.
type LayerConfigure struct {
	Serial uint32
	Width  uint32
	Height uint32
}

// LayerSurface is a zwlr_layer_surface_v1.
type LayerSurface struct {
	object

	Configures []LayerConfigure
	Closed     bool
}

// LastConfigure returns the most recent configure.
func (s *LayerSurface) LastConfigure() (LayerConfigure, bool) {
	if len(s.Configures) == 0 {
		return LayerConfigure{}, false
	}
	return s.Configures[len(s.Configures)-1], true
}

func (s *LayerSurface) SetSize(width, height uint32) {
	msg := wire.NewMessage(s, 0)
	msg.Method = "set_size"
	msg.Args = []any{width, height}
	msg.WriteUint(width)
	msg.WriteUint(height)
	s.client.send(msg)
}

func (s *LayerSurface) SetAnchor(anchor uint32) {
	msg := wire.NewMessage(s, 1)
	msg.Method = "set_anchor"
	msg.Args = []any{anchor}
	msg.WriteUint(anchor)
	s.client.send(msg)
}

func (s *LayerSurface) SetExclusiveZone(zone int32) {
	msg := wire.NewMessage(s, 2)
	msg.Method = "set_exclusive_zone"
	msg.Args = []any{zone}
	msg.WriteInt(zone)
	s.client.send(msg)
}

func (s *LayerSurface) SetMargin(top, right, bottom, left int32) {
	msg := wire.NewMessage(s, 3)
	msg.Method = "set_margin"
	msg.Args = []any{top, right, bottom, left}
	msg.WriteInt(top)
	msg.WriteInt(right)
	msg.WriteInt(bottom)
	msg.WriteInt(left)
	s.client.send(msg)
}

func (s *LayerSurface) SetKeyboardInteractivity(ki uint32) {
	msg := wire.NewMessage(s, 4)
	msg.Method = "set_keyboard_interactivity"
	msg.Args = []any{ki}
	msg.WriteUint(ki)
	s.client.send(msg)
}

// GetPopup parents popup to this layer surface. The popup must not
// have a parent yet.
func (s *LayerSurface) GetPopup(popup *Popup) {
	msg := wire.NewMessage(s, 5)
	msg.Method = "get_popup"
	msg.Args = []any{popup}
	msg.WriteUint(popup.oid)
	s.client.send(msg)
}

func (s *LayerSurface) AckConfigure(serial uint32) {
	msg := wire.NewMessage(s, 6)
	msg.Method = "ack_configure"
	msg.Args = []any{serial}
	msg.WriteUint(serial)
	s.client.send(msg)
}

func (s *LayerSurface) Destroy() {
	msg := wire.NewMessage(s, 7)
	msg.Method = "destroy"
	s.client.send(msg)
}

func (s *LayerSurface) SetLayer(layerBand uint32) {
	msg := wire.NewMessage(s, 8)
	msg.Method = "set_layer"
	msg.Args = []any{layerBand}
	msg.WriteUint(layerBand)
	s.client.send(msg)
}

func (s *LayerSurface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "configure"
	case 1:
		return "closed"
	}
	return "unknown"
}

func (s *LayerSurface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // configure
		ev := LayerConfigure{
			Serial: msg.ReadUint(),
			Width:  msg.ReadUint(),
			Height: msg.ReadUint(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		s.Configures = append(s.Configures, ev)
		return nil

	case 1: // closed
		s.Closed = true
		return nil
	}

	return wire.UnknownOpError{Interface: "zwlr_layer_surface_v1", Type: "event", Op: msg.Op()}
}
