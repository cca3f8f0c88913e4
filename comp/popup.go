package comp

import (
	"image"
	"slices"

	"github.com/tfufuz1/NovaDE-sub008/internal/xslices"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/xdg"
)

// popup is an xdg_popup. It implements xdg.PopupListener. Popups
// stack above their parent surface in creation order; a grab ties
// the whole chain to the seat, and input outside it dismisses the
// chain from the top down.
type popup struct {
	comp *Compositor
	sess *session
	s    *surface
	xs   *xdgSurface
	res  *xdg.Popup

	parent *surface
	rules  xdg.Rules

	// pos is the solved placement relative to the parent's window
	// geometry.
	pos image.Point

	outstanding []popupConfigure
	acked       *popupConfigure
	configured  bool
	grabbed     bool
	dismissed   bool
}

type popupConfigure struct {
	serial uint32
	rect   image.Rectangle
}

func newPopup(xs *xdgSurface, res *xdg.Popup, parent *surface, rules xdg.Rules) *popup {
	p := &popup{
		comp:   xs.sess.comp,
		sess:   xs.sess,
		s:      xs.s,
		xs:     xs,
		res:    res,
		parent: parent,
		rules:  rules,
	}
	xs.s.role = rolePopup
	xs.s.popup = p
	xs.popup = p
	res.Listener = p
	if parent != nil {
		parent.popups = append(parent.popups, p)
	}
	return p
}

// parentGeometry is the parent's window geometry box, the coordinate
// space popup placement happens in.
func (p *popup) parentGeometry() image.Rectangle {
	if p.parent == nil {
		return image.Rectangle{}
	}
	if p.parent.xdg != nil {
		return p.parent.xdg.geometry()
	}
	return image.Rectangle{Max: p.parent.size}
}

// solve runs the positioner against the output the parent sits on.
func (p *popup) solve() image.Rectangle {
	origin := p.parent.pos().Add(p.parentGeometry().Min)
	box := image.Rectangle{Max: image.Pt(1<<30, 1<<30)}
	if out := p.comp.space.outputAt(origin); out != nil {
		box = out.box()
	} else if out := p.comp.space.preferredOutput(p.comp); out != nil {
		box = out.box()
	}
	return p.rules.Solve(box.Sub(origin))
}

// surfacePos is the popup surface's absolute position.
func (p *popup) surfacePos() image.Point {
	origin := image.Point{}
	if p.parent != nil {
		origin = p.parent.pos().Add(p.parentGeometry().Min)
	}
	return origin.Add(p.pos).Sub(p.xs.geometry().Min)
}

func (p *popup) sendConfigure(rect image.Rectangle) {
	serial := p.comp.nextSerial()
	p.outstanding = append(p.outstanding, popupConfigure{serial: serial, rect: rect})
	p.res.Configure(int32(rect.Min.X), int32(rect.Min.Y), int32(rect.Dx()), int32(rect.Dy()))
	p.xs.res.Configure(serial)
}

func (p *popup) ack(serial uint32) {
	idx := slices.IndexFunc(p.outstanding, func(c popupConfigure) bool { return c.serial == serial })
	if idx < 0 {
		p.sess.client.Post(wl.Errorf(p.xs.res, uint32(xdg.SurfaceErrorInvalidSerial), "%v: ack_configure serial %v was never sent or already acked", p.xs.res, serial))
		return
	}
	cfg := p.outstanding[idx]
	p.outstanding = slices.Delete(p.outstanding, 0, idx+1)
	p.acked = &cfg
	p.configured = true
}

func (p *popup) committed() {
	if p.dismissed {
		return
	}
	if p.parent == nil {
		p.sess.client.Post(wl.Errorf(p.res, uint32(xdg.WmBaseErrorInvalidPopupParent), "%v committed without a parent", p.res))
		return
	}
	if p.acked != nil {
		wasVisible := p.s.mapped
		if wasVisible {
			p.comp.damageArea(p.s.extent())
		}
		p.pos = p.acked.rect.Min
		p.acked = nil
		if wasVisible {
			p.comp.damageArea(p.s.extent())
		}
	}
	if len(p.outstanding) == 0 && !p.configured && p.s.buf == nil {
		p.sendConfigure(p.solve())
	}
}

func (p *popup) mapNow() {}

func (p *popup) unmapNow() {
	p.comp.seat.popupGone(p)
}

// dismiss closes the popup and everything stacked on it. The client
// is told once and is expected to destroy the object.
func (p *popup) dismiss() {
	if p.dismissed {
		return
	}
	p.dismissed = true
	for i := len(p.s.popups) - 1; i >= 0; i-- {
		p.s.popups[i].dismiss()
	}
	p.res.PopupDone()
	if p.s.mapped {
		ext := p.s.extent()
		p.s.mapped = false
		p.s.unmapNow(ext)
	}
	p.comp.seat.popupGone(p)
}

func (p *popup) removeFromParent() {
	if p.parent == nil {
		return
	}
	p.parent.popups = xslices.Remove(p.parent.popups, p)
}

func (p *popup) Destroy() {
	if len(p.s.popups) != 0 {
		p.sess.client.Post(wl.Errorf(p.xs.base.res, uint32(xdg.WmBaseErrorNotTheTopmostPopup), "%v destroyed with popups above it", p.res))
	}
	if p.s.mapped {
		ext := p.s.extent()
		p.s.mapped = false
		p.s.unmapNow(ext)
	}
	p.comp.seat.popupGone(p)
	p.removeFromParent()
	p.s.popup = nil
	p.xs.popup = nil
	p.configured = false
	p.outstanding = nil
	p.acked = nil
}

func (p *popup) Grab(seat *wl.Seat, serial uint32) {
	if !p.comp.seat.serialValid(serial) {
		p.dismiss()
		return
	}
	if pp := p.parent; pp != nil && pp.popup != nil && !pp.popup.grabbed {
		p.sess.client.Post(wl.Errorf(p.res, uint32(xdg.PopupErrorInvalidGrab), "%v: parent popup has no grab", p.res))
		return
	}
	p.grabbed = true
	p.comp.seat.addGrab(p)
}

func (p *popup) Reposition(positioner *xdg.Positioner, token uint32) {
	p.rules = positioner.Rules()
	p.res.Repositioned(token)
	p.sendConfigure(p.solve())
}
