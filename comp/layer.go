package comp

import (
	"image"
	"slices"

	"github.com/tfufuz1/NovaDE-sub008/internal/handle"
	"github.com/tfufuz1/NovaDE-sub008/internal/xslices"
	"github.com/tfufuz1/NovaDE-sub008/layer"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/xdg"
)

// layerState is the double-buffered zwlr_layer_surface_v1 state.
type layerState struct {
	size      image.Point
	anchor    layer.Anchor
	exclusive int32
	// margin is top, right, bottom, left, matching the protocol
	// order.
	margin [4]int32
	ki     layer.KeyboardInteractivity
	layer  layer.Layer
}

type layerConfigure struct {
	serial uint32
	size   image.Point
}

// layerSurface is a surface anchored to an output edge: panels,
// wallpapers, lock screens. It implements layer.SurfaceListener.
type layerSurface struct {
	comp *Compositor
	sess *session
	s    *surface
	res  *layer.Surface

	out       *Output
	namespace string

	pending layerState
	state   layerState

	outstanding []layerConfigure
	acked       *layerConfigure
	configured  bool

	handle handle.Handle
	bounds image.Rectangle
}

func newLayerSurface(sess *session, res *layer.Surface, s *surface, out *Output, l layer.Layer, namespace string) *layerSurface {
	c := sess.comp
	if out == nil {
		out = c.space.preferredOutput(c)
	}
	ls := &layerSurface{
		comp:      c,
		sess:      sess,
		s:         s,
		res:       res,
		out:       out,
		namespace: namespace,
	}
	ls.pending.layer = l
	ls.state.layer = l
	s.role = roleLayer
	s.lsurf = ls
	res.Listener = ls
	if out == nil {
		// no outputs yet; the surface can never map
		res.Closed()
	}
	return ls
}

func (ls *layerSurface) SetSize(width, height uint32) {
	ls.pending.size = image.Pt(int(width), int(height))
}

func (ls *layerSurface) SetAnchor(anchor layer.Anchor) {
	ls.pending.anchor = anchor
}

func (ls *layerSurface) SetExclusiveZone(zone int32) {
	ls.pending.exclusive = zone
}

func (ls *layerSurface) SetMargin(top, right, bottom, left int32) {
	ls.pending.margin = [4]int32{top, right, bottom, left}
}

func (ls *layerSurface) SetKeyboardInteractivity(ki layer.KeyboardInteractivity) {
	ls.pending.ki = ki
}

func (ls *layerSurface) SetLayer(l layer.Layer) {
	ls.pending.layer = l
}

func (ls *layerSurface) GetPopup(popup *xdg.Popup) {
	ps := ls.sess.lookup(popup.XdgSurface().Surface())
	if ps == nil || ps.popup == nil {
		return
	}
	p := ps.popup
	if p.parent != nil {
		return
	}
	p.parent = ls.s
	ls.s.popups = append(ls.s.popups, p)
}

func (ls *layerSurface) AckConfigure(serial uint32) {
	idx := slices.IndexFunc(ls.outstanding, func(c layerConfigure) bool { return c.serial == serial })
	if idx < 0 {
		ls.sess.client.Post(wl.Errorf(ls.res, uint32(layer.SurfaceErrorInvalidSurfaceState), "%v: ack_configure serial %v was never sent or already acked", ls.res, serial))
		return
	}
	cfg := ls.outstanding[idx]
	ls.outstanding = slices.Delete(ls.outstanding, 0, idx+1)
	ls.acked = &cfg
	ls.configured = true
}

func (ls *layerSurface) Destroy() {
	s := ls.s
	if s.mapped {
		ext := s.extent()
		s.mapped = false
		s.unmapNow(ext)
	}
	ls.configured = false
	ls.outstanding = nil
	ls.acked = nil
	s.lsurf = nil
}

func (ls *layerSurface) committed() {
	st := ls.pending
	if err := validLayerState(ls.res, st); err != nil {
		ls.sess.client.Post(err)
		return
	}

	ls.state = st
	ls.acked = nil

	if ls.out == nil {
		return
	}

	if !ls.configured {
		if len(ls.outstanding) == 0 && ls.s.buf == nil {
			ls.sendConfigure(ls.proposeSize())
		}
		return
	}

	if ls.s.mapped {
		ls.comp.arrangeLayers(ls.out)
		seat := ls.comp.seat
		switch {
		case st.ki == layer.KeyboardInteractivityExclusive && seat.keyboardFocus != ls.s:
			seat.focusSurface(ls.s)
		case st.ki == layer.KeyboardInteractivityNone && seat.keyboardFocus == ls.s:
			ls.comp.focusTop()
		}
	}
}

// validLayerState enforces the protocol rule that a zero-sized axis
// must be pinned by both of its anchors.
func validLayerState(res *layer.Surface, st layerState) error {
	if st.size.X == 0 && st.anchor&(layer.AnchorLeft|layer.AnchorRight) != layer.AnchorLeft|layer.AnchorRight {
		return wl.Errorf(res, uint32(layer.SurfaceErrorInvalidSize), "%v: zero width needs both left and right anchors", res)
	}
	if st.size.Y == 0 && st.anchor&(layer.AnchorTop|layer.AnchorBottom) != layer.AnchorTop|layer.AnchorBottom {
		return wl.Errorf(res, uint32(layer.SurfaceErrorInvalidSize), "%v: zero height needs both top and bottom anchors", res)
	}
	return nil
}

// proposeSize fills zero-size axes from the output box the surface
// is anchored across.
func (ls *layerSurface) proposeSize() image.Point {
	st := ls.state
	box := layerBox(ls.out.box(), st.size, st.anchor, st.margin)
	return box.Size()
}

func (ls *layerSurface) sendConfigure(size image.Point) {
	serial := ls.comp.nextSerial()
	ls.outstanding = append(ls.outstanding, layerConfigure{serial: serial, size: size})
	ls.res.Configure(serial, uint32(size.X), uint32(size.Y))
}

func (ls *layerSurface) mapNow() {
	ls.handle = ls.comp.space.layers.Insert(ls)
	ls.out.layers = append(ls.out.layers, ls.handle)
	ls.comp.arrangeLayers(ls.out)
	if ls.state.ki == layer.KeyboardInteractivityExclusive {
		ls.comp.seat.focusSurface(ls.s)
	}
}

func (ls *layerSurface) unmapNow() {
	c := ls.comp
	if ls.out != nil {
		ls.out.layers = xslices.Remove(ls.out.layers, ls.handle)
	}
	c.space.layers.Remove(ls.handle)
	ls.handle = handle.Handle{}
	if c.seat.keyboardFocus == ls.s {
		c.focusTop()
	}
	if ls.out != nil {
		c.arrangeLayers(ls.out)
	}
}

// outputGone force-closes the surface when its output disappears.
func (ls *layerSurface) outputGone() {
	ls.res.Closed()
	s := ls.s
	if s.mapped {
		ext := s.extent()
		s.mapped = false
		s.unmapNow(ext)
	}
	ls.out = nil
	ls.configured = false
}

// layerBox resolves an anchored box inside base. A zero size axis
// spans base; margins push away from the edges they anchor to.
func layerBox(base image.Rectangle, size image.Point, anchor layer.Anchor, margin [4]int32) image.Rectangle {
	top, right, bottom, left := int(margin[0]), int(margin[1]), int(margin[2]), int(margin[3])

	var box image.Rectangle
	switch {
	case size.X == 0:
		box.Min.X = base.Min.X + left
		box.Max.X = base.Max.X - right
	case anchor&layer.AnchorLeft != 0 && anchor&layer.AnchorRight != 0:
		center := (base.Min.X + left + base.Max.X - right) / 2
		box.Min.X = center - size.X/2
		box.Max.X = box.Min.X + size.X
	case anchor&layer.AnchorLeft != 0:
		box.Min.X = base.Min.X + left
		box.Max.X = box.Min.X + size.X
	case anchor&layer.AnchorRight != 0:
		box.Max.X = base.Max.X - right
		box.Min.X = box.Max.X - size.X
	default:
		center := (base.Min.X + base.Max.X) / 2
		box.Min.X = center - size.X/2
		box.Max.X = box.Min.X + size.X
	}

	switch {
	case size.Y == 0:
		box.Min.Y = base.Min.Y + top
		box.Max.Y = base.Max.Y - bottom
	case anchor&layer.AnchorTop != 0 && anchor&layer.AnchorBottom != 0:
		center := (base.Min.Y + top + base.Max.Y - bottom) / 2
		box.Min.Y = center - size.Y/2
		box.Max.Y = box.Min.Y + size.Y
	case anchor&layer.AnchorTop != 0:
		box.Min.Y = base.Min.Y + top
		box.Max.Y = box.Min.Y + size.Y
	case anchor&layer.AnchorBottom != 0:
		box.Max.Y = base.Max.Y - bottom
		box.Min.Y = box.Max.Y - size.Y
	default:
		center := (base.Min.Y + base.Max.Y) / 2
		box.Min.Y = center - size.Y/2
		box.Max.Y = box.Min.Y + size.Y
	}

	return box
}

// exclusiveInset shrinks usable along the single edge the surface
// reserves. A surface anchored to opposite edges reserves nothing.
func exclusiveInset(usable image.Rectangle, st layerState) image.Rectangle {
	if st.exclusive <= 0 {
		return usable
	}
	zone := int(st.exclusive)

	const horizontal = layer.AnchorLeft | layer.AnchorRight
	const vertical = layer.AnchorTop | layer.AnchorBottom

	switch {
	case st.anchor&vertical == layer.AnchorTop:
		usable.Min.Y += zone + int(st.margin[0])
	case st.anchor&vertical == layer.AnchorBottom:
		usable.Max.Y -= zone + int(st.margin[2])
	case st.anchor&horizontal == layer.AnchorLeft:
		usable.Min.X += zone + int(st.margin[3])
	case st.anchor&horizontal == layer.AnchorRight:
		usable.Max.X -= zone + int(st.margin[1])
	}
	if usable.Empty() {
		return image.Rectangle{Min: usable.Min, Max: usable.Min}
	}
	return usable
}
