package comp

import (
	"github.com/tfufuz1/NovaDE-sub008/foreign"
	"github.com/tfufuz1/NovaDE-sub008/internal/xslices"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
)

// foreignManager is one bound foreign-toplevel manager. It mirrors
// the window list to its client and routes the advisory requests
// back into window management.
type foreignManager struct {
	sess    *session
	res     *foreign.Manager
	handles map[*window]*foreign.Handle
}

func (fm *foreignManager) Stop() {
	fm.res.Finished()
	fm.sess.exporters = xslices.Remove(fm.sess.exporters, fm)
}

// announceAll announces every window currently in the stack.
func (fm *foreignManager) announceAll() {
	c := fm.sess.comp
	for _, h := range c.space.stack {
		if w, ok := c.space.windows.Get(h); ok {
			fm.announce(w)
		}
	}
}

// announce creates the handle for w and sends its current state.
// Parents are announced before their children so the parent event
// can name them.
func (fm *foreignManager) announce(w *window) {
	if fm.res.Stopped() {
		return
	}
	if _, ok := fm.handles[w]; ok {
		return
	}
	if w.parent != nil {
		fm.announce(w.parent)
	}
	h := fm.res.NewToplevel()
	h.Listener = &foreignHandle{fm: fm, w: w}
	fm.handles[w] = h

	h.Title(w.title)
	h.AppId(w.appID)
	if w.parent != nil {
		h.Parent(fm.handles[w.parent])
	}
	h.State(foreignStates(w))
	for out := range w.s.outputs {
		for _, res := range fm.sess.outputs[out] {
			h.OutputEnter(res)
		}
	}
	h.Done()
}

// foreignStates translates a window's state for the protocol.
func foreignStates(w *window) []foreign.HandleState {
	var states []foreign.HandleState
	if w.state.maximized {
		states = append(states, foreign.HandleStateMaximized)
	}
	if w.state.fullscreen {
		states = append(states, foreign.HandleStateFullscreen)
	}
	if w.minimized {
		states = append(states, foreign.HandleStateMinimized)
	}
	if w.comp.seat.keyboardFocus == w.s {
		states = append(states, foreign.HandleStateActivated)
	}
	return states
}

// foreignHandle routes requests from one handle to the window it
// represents.
type foreignHandle struct {
	fm *foreignManager
	w  *window
}

func (fh *foreignHandle) SetMaximized()   { fh.w.SetMaximized() }
func (fh *foreignHandle) UnsetMaximized() { fh.w.UnsetMaximized() }
func (fh *foreignHandle) SetMinimized()   { fh.w.setMinimized(true) }
func (fh *foreignHandle) UnsetMinimized() { fh.w.setMinimized(false) }

func (fh *foreignHandle) Activate(seat *wl.Seat) {
	w := fh.w
	if w.stage != stageMapped {
		return
	}
	if w.minimized {
		w.setMinimized(false)
		return
	}
	w.comp.focusWindow(w)
}

func (fh *foreignHandle) Close() {
	fh.w.res.Close()
}

func (fh *foreignHandle) SetRectangle(surface *wl.Surface, x, y, width, height int32) {}

func (fh *foreignHandle) Destroy() {
	delete(fh.fm.handles, fh.w)
}

func (fh *foreignHandle) SetFullscreen(output *wl.Output) {
	w := fh.w
	// the output resource belongs to the manager's client, not the
	// window's
	w.fullscreenOutput = fh.fm.sess.outputFor(output)
	w.requestState(func(st *windowState) { st.fullscreen = true })
}

func (fh *foreignHandle) UnsetFullscreen() {
	fh.w.UnsetFullscreen()
}

// eachExporter visits every manager of every session.
func (c *Compositor) eachExporter(fn func(*foreignManager)) {
	for _, sess := range c.sessions {
		for _, fm := range sess.exporters {
			fn(fm)
		}
	}
}

// foreignAnnounce tells every manager about a newly mapped window.
func (c *Compositor) foreignAnnounce(w *window) {
	c.eachExporter(func(fm *foreignManager) { fm.announce(w) })
}

// foreignClosed withdraws a window from every manager. The handle
// stays alive until its client destroys it.
func (c *Compositor) foreignClosed(w *window) {
	c.eachExporter(func(fm *foreignManager) {
		if h, ok := fm.handles[w]; ok {
			delete(fm.handles, w)
			h.Closed()
		}
	})
}

func (c *Compositor) foreignTitle(w *window) {
	c.eachExporter(func(fm *foreignManager) {
		if h, ok := fm.handles[w]; ok {
			h.Title(w.title)
			h.Done()
		}
	})
}

func (c *Compositor) foreignAppID(w *window) {
	c.eachExporter(func(fm *foreignManager) {
		if h, ok := fm.handles[w]; ok {
			h.AppId(w.appID)
			h.Done()
		}
	})
}

func (c *Compositor) foreignState(w *window) {
	c.eachExporter(func(fm *foreignManager) {
		if h, ok := fm.handles[w]; ok {
			h.State(foreignStates(w))
			h.Done()
		}
	})
}

func (c *Compositor) foreignParent(w *window) {
	c.eachExporter(func(fm *foreignManager) {
		h, ok := fm.handles[w]
		if !ok {
			return
		}
		var ph *foreign.Handle
		if w.parent != nil {
			ph = fm.handles[w.parent]
		}
		h.Parent(ph)
		h.Done()
	})
}

// foreignOutput mirrors a toplevel's output set to every manager
// whose client has the output bound.
func (c *Compositor) foreignOutput(w *window, out *Output, entered bool) {
	c.eachExporter(func(fm *foreignManager) {
		h, ok := fm.handles[w]
		if !ok || len(fm.sess.outputs[out]) == 0 {
			return
		}
		for _, res := range fm.sess.outputs[out] {
			if entered {
				h.OutputEnter(res)
			} else {
				h.OutputLeave(res)
			}
		}
		h.Done()
	})
}
