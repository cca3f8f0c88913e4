package comp

import (
	"os"

	"github.com/tfufuz1/NovaDE-sub008/internal/xslices"
	"github.com/tfufuz1/NovaDE-sub008/primary"
)

// selectionSource is the compositor side of one primary selection
// source. It becomes the seat's selection through
// zwp_primary_selection_device_v1.set_selection.
type selectionSource struct {
	sess *session
	res  *primary.Source
	dead bool
}

func (ss *selectionSource) Destroy() {
	ss.dead = true
	se := ss.sess.comp.seat
	if se.sel == ss {
		se.sel = nil
		se.broadcastSelection()
	}
}

// primaryDevice is one bound primary selection device.
type primaryDevice struct {
	sess *session
	res  *primary.Device
}

func (pd *primaryDevice) SetSelection(source *primary.Source, serial uint32) {
	se := pd.sess.comp.seat
	if !se.serialValid(serial) {
		return
	}
	var ss *selectionSource
	if source != nil {
		ss, _ = source.Listener.(*selectionSource)
	}
	old := se.sel
	if ss == old {
		return
	}
	se.sel = ss
	if old != nil && !old.dead {
		old.res.Cancelled()
	}
	se.broadcastSelection()
}

func (pd *primaryDevice) Destroy() {
	pd.sess.devices = xslices.Remove(pd.sess.devices, pd)
}

// selectionOffer forwards transfer requests on one offer to the
// source backing it.
type selectionOffer struct {
	src *selectionSource
}

func (so *selectionOffer) Receive(mimeType string, file *os.File) {
	defer file.Close()
	if so.src.dead {
		return
	}
	so.src.res.Send(mimeType, file)
}

func (so *selectionOffer) Destroy() {}

// offerTo sends the current selection, or clears it, on one device.
func (se *Seat) offerTo(d *primaryDevice) {
	if se.sel == nil || se.sel.dead {
		d.res.Selection(nil)
		return
	}
	offer := d.res.NewOffer()
	offer.Listener = &selectionOffer{src: se.sel}
	for _, mime := range se.sel.res.MimeTypes() {
		offer.MimeType(mime)
	}
	d.res.Selection(offer)
}

// offerSelection announces the current selection on all of a
// session's devices.
func (se *Seat) offerSelection(sess *session) {
	for _, d := range sess.devices {
		se.offerTo(d)
	}
}

// broadcastSelection re-offers after the selection changed. Only
// the focused client sees it.
func (se *Seat) broadcastSelection() {
	if f := se.keyboardFocus; f != nil {
		se.offerSelection(f.sess)
	}
}

// deviceBound catches a freshly created device up with the current
// selection if its session holds keyboard focus.
func (se *Seat) deviceBound(sess *session, d *primaryDevice) {
	if f := se.keyboardFocus; f != nil && f.sess == sess {
		se.offerTo(d)
	}
}

// selectionGone clears the selection when its owner disconnects.
func (se *Seat) selectionGone(sess *session) {
	if se.sel != nil && se.sel.sess == sess {
		se.sel = nil
		se.broadcastSelection()
	}
}
