package comp

import (
	"image"
	"slices"

	"github.com/tfufuz1/NovaDE-sub008/internal/handle"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/xdg"
)

// xdgSurface wraps a wl_surface for the xdg shell. It implements
// xdg.SurfaceListener and routes configure acks to whichever role
// object exists.
type xdgSurface struct {
	sess *session
	base *wmBaseBinding
	res  *xdg.Surface
	s    *surface

	window *window
	popup  *popup

	pendingGeometry *image.Rectangle
	geom            image.Rectangle
}

func newXdgSurface(sess *session, base *wmBaseBinding, res *xdg.Surface, s *surface) *xdgSurface {
	xs := &xdgSurface{sess: sess, base: base, res: res, s: s}
	s.xdg = xs
	res.Listener = xs
	base.alive++
	return xs
}

func (xs *xdgSurface) Destroy() {
	if xs.window != nil || xs.popup != nil {
		xs.sess.client.Post(wl.Errorf(xs.res, uint32(xdg.SurfaceErrorDefunctRoleObject), "%v destroyed before its role object", xs.res))
		return
	}
	xs.base.alive--
	xs.s.xdg = nil
}

func (xs *xdgSurface) GetToplevel(t *xdg.Toplevel) {
	s := xs.s
	if xs.window != nil || xs.popup != nil || !s.roleAllowed(roleToplevel) {
		xs.sess.client.Post(wl.Errorf(xs.res, uint32(xdg.SurfaceErrorAlreadyConstructed), "%v already has the %v role", xs.res, s.role))
		return
	}
	w := &window{comp: xs.sess.comp, sess: xs.sess, s: s, xs: xs, res: t}
	s.role = roleToplevel
	s.window = w
	xs.window = w
	t.Listener = w
}

func (xs *xdgSurface) GetPopup(p *xdg.Popup, parent *xdg.Surface, positioner *xdg.Positioner) {
	s := xs.s
	if xs.window != nil || xs.popup != nil || !s.roleAllowed(rolePopup) {
		xs.sess.client.Post(wl.Errorf(xs.res, uint32(xdg.SurfaceErrorAlreadyConstructed), "%v already has the %v role", xs.res, s.role))
		return
	}
	var parentSurface *surface
	if parent != nil {
		parentSurface = xs.sess.lookup(parent.Surface())
	}
	newPopup(xs, p, parentSurface, positioner.Rules())
}

func (xs *xdgSurface) SetWindowGeometry(x, y, width, height int32) {
	r := image.Rect(int(x), int(y), int(x)+int(width), int(y)+int(height))
	xs.pendingGeometry = &r
}

func (xs *xdgSurface) AckConfigure(serial uint32) {
	switch {
	case xs.window != nil:
		xs.window.ack(serial)
	case xs.popup != nil:
		xs.popup.ack(serial)
	default:
		xs.sess.client.Post(wl.Errorf(xs.res, uint32(xdg.SurfaceErrorNotConstructed), "%v: ack_configure without a role object", xs.res))
	}
}

// committed promotes double-buffered xdg state at wl_surface.commit.
func (xs *xdgSurface) committed() {
	if xs.pendingGeometry != nil {
		xs.geom = *xs.pendingGeometry
		xs.pendingGeometry = nil
	}
}

// geometry is the effective window geometry: the committed one
// clipped to the surface, or the whole surface if never set.
func (xs *xdgSurface) geometry() image.Rectangle {
	full := image.Rectangle{Max: xs.s.size}
	if xs.geom.Empty() {
		return full
	}
	if g := xs.geom.Intersect(full); !g.Empty() {
		return g
	}
	return full
}

func (xs *xdgSurface) roleConfigured() bool {
	switch {
	case xs.window != nil:
		return xs.window.configured
	case xs.popup != nil:
		return xs.popup.configured
	}
	return false
}

// windowStage tracks a toplevel through the configure handshake.
type windowStage uint8

const (
	stageUnmapped windowStage = iota
	stageConfiguring
	stageMapped
)

// windowState is the state carried by one toplevel configure.
type windowState struct {
	size       image.Point
	activated  bool
	maximized  bool
	fullscreen bool
	resizing   bool
}

func (st windowState) states() []xdg.ToplevelState {
	var states []xdg.ToplevelState
	if st.maximized {
		states = append(states, xdg.ToplevelStateMaximized)
	}
	if st.fullscreen {
		states = append(states, xdg.ToplevelStateFullscreen)
	}
	if st.resizing {
		states = append(states, xdg.ToplevelStateResizing)
	}
	if st.activated {
		states = append(states, xdg.ToplevelStateActivated)
	}
	return states
}

type windowConfigure struct {
	serial uint32
	state  windowState
}

// window is a mapped or mappable xdg_toplevel. It implements
// xdg.ToplevelListener. State changes requested by the client or the
// compositor go out as configures; nothing takes effect until the
// client acks and commits.
type window struct {
	comp *Compositor
	sess *session
	s    *surface
	xs   *xdgSurface
	res  *xdg.Toplevel

	handle handle.Handle
	stage  windowStage

	outstanding []windowConfigure
	acked       *windowConfigure
	configured  bool

	// state is what the client last acked and committed; want is
	// what the next configure will carry.
	state windowState
	want  windowState

	title     string
	appID     string
	parent    *window
	minSize   image.Point
	maxSize   image.Point
	minimized bool

	// bounds places the window geometry in global coordinates.
	// floatBounds remembers the floating placement across
	// maximize/fullscreen trips.
	bounds           image.Rectangle
	floatBounds      image.Rectangle
	output           *Output
	fullscreenOutput *Output
}

// geometry is shorthand for the effective xdg geometry.
func (w *window) geometry() image.Rectangle { return w.xs.geometry() }

// sendConfigure proposes w.want to the client.
func (w *window) sendConfigure() {
	serial := w.comp.nextSerial()
	st := w.want
	w.outstanding = append(w.outstanding, windowConfigure{serial: serial, state: st})
	w.res.Configure(int32(st.size.X), int32(st.size.Y), st.states())
	w.xs.res.Configure(serial)
}

// sendInitial is the first configure after an empty commit. Bounds
// and capabilities are only meaningful before it.
func (w *window) sendInitial() {
	out := w.comp.space.preferredOutput(w.comp)
	if out != nil {
		usable := out.usable.Size()
		w.res.ConfigureBounds(int32(usable.X), int32(usable.Y))
	}
	w.res.WmCapabilities([]xdg.WmCapability{
		xdg.WmCapabilityMaximize,
		xdg.WmCapabilityFullscreen,
		xdg.WmCapabilityMinimize,
	})
	w.sendConfigure()
}

func (w *window) ack(serial uint32) {
	idx := slices.IndexFunc(w.outstanding, func(c windowConfigure) bool { return c.serial == serial })
	if idx < 0 {
		w.sess.client.Post(wl.Errorf(w.xs.res, uint32(xdg.SurfaceErrorInvalidSerial), "%v: ack_configure serial %v was never sent or already acked", w.xs.res, serial))
		return
	}
	cfg := w.outstanding[idx]
	w.outstanding = slices.Delete(w.outstanding, 0, idx+1)
	w.acked = &cfg
	w.configured = true
}

// committed reacts to a wl_surface commit on the toplevel.
func (w *window) committed() {
	s := w.s
	if w.acked != nil {
		stateChanged := w.acked.state != w.state
		w.state = w.acked.state
		w.state.size = w.geometry().Size()
		w.acked = nil
		if stateChanged && w.stage == stageMapped {
			w.comp.space.arrange(w.comp)
			w.broadcastState()
		}
	}

	switch w.stage {
	case stageUnmapped:
		if s.buf == nil {
			w.stage = stageConfiguring
			w.sendInitial()
		}
	case stageConfiguring:
		if s.buf != nil && w.configured {
			w.stage = stageMapped
		}
	case stageMapped:
		if s.buf == nil {
			w.reset()
			return
		}
		if sz := w.geometry().Size(); sz != w.bounds.Size() {
			w.comp.damageArea(w.s.extent())
			w.bounds.Max = w.bounds.Min.Add(sz)
			w.comp.damageArea(w.s.extent())
			if !w.state.maximized && !w.state.fullscreen {
				w.floatBounds = w.bounds
			}
		}
	}
}

// reset returns an unmapping toplevel to the initial state. The next
// commit restarts the configure handshake from scratch.
func (w *window) reset() {
	w.stage = stageUnmapped
	w.configured = false
	w.outstanding = nil
	w.acked = nil
	w.state = windowState{}
	w.want = windowState{}
	w.minimized = false
}

func (w *window) mapNow() {
	c := w.comp
	w.handle = c.space.windows.Insert(w)
	c.space.stack = append(c.space.stack, w.handle)

	if w.output == nil {
		w.output = c.space.preferredOutput(c)
	}
	if w.floatBounds.Empty() && w.output != nil {
		w.floatBounds = centered(w.output.usable, w.geometry().Size())
	}
	w.bounds = image.Rectangle{Min: w.floatBounds.Min, Max: w.floatBounds.Min.Add(w.geometry().Size())}

	c.space.arrange(c)
	c.focusWindow(w)
	c.foreignAnnounce(w)
}

func (w *window) unmapNow() {
	c := w.comp
	c.foreignClosed(w)
	c.space.stack = slices.DeleteFunc(c.space.stack, func(h handle.Handle) bool { return h == w.handle })
	c.space.windows.Remove(w.handle)
	w.handle = handle.Handle{}
	if c.seat.keyboardFocus == w.s {
		c.focusTop()
	}
	c.space.arrange(c)
}

// requestState mutates the wanted state and proposes it. Requests on
// an unmapped window fold into the initial configure instead.
func (w *window) requestState(mutate func(*windowState)) {
	mutate(&w.want)
	if w.stage != stageMapped {
		return
	}
	w.want.size = w.comp.space.sizeFor(w, w.want)
	w.sendConfigure()
}

// clampSize applies the client's min and max size constraints.
func (w *window) clampSize(size image.Point) image.Point {
	if w.minSize.X > 0 && size.X < w.minSize.X {
		size.X = w.minSize.X
	}
	if w.minSize.Y > 0 && size.Y < w.minSize.Y {
		size.Y = w.minSize.Y
	}
	if w.maxSize.X > 0 && size.X > w.maxSize.X {
		size.X = w.maxSize.X
	}
	if w.maxSize.Y > 0 && size.Y > w.maxSize.Y {
		size.Y = w.maxSize.Y
	}
	return size
}

func (w *window) broadcastState() {
	w.comp.foreignState(w)
}

func (w *window) Destroy() {
	s := w.s
	if s.mapped {
		ext := s.extent()
		s.mapped = false
		s.unmapNow(ext)
	}
	w.reset()
	s.window = nil
	w.xs.window = nil
}

func (w *window) SetParent(parent *xdg.Toplevel) {
	w.parent = nil
	if parent != nil {
		if ps := w.sess.lookup(parent.XdgSurface().Surface()); ps != nil && ps.window != nil {
			w.parent = ps.window
		}
	}
	w.comp.foreignParent(w)
}

func (w *window) SetTitle(title string) {
	w.title = title
	w.comp.foreignTitle(w)
}

func (w *window) SetAppId(appID string) {
	w.appID = appID
	w.comp.foreignAppID(w)
}

func (w *window) ShowWindowMenu(seat *wl.Seat, serial uint32, x, y int32) {}

func (w *window) Move(seat *wl.Seat, serial uint32) {
	w.comp.seat.startMove(w, serial)
}

func (w *window) Resize(seat *wl.Seat, serial uint32, edges xdg.ResizeEdge) {
	w.comp.seat.startResize(w, serial, edges)
}

func (w *window) SetMaxSize(width, height int32) {
	w.maxSize = image.Pt(int(width), int(height))
}

func (w *window) SetMinSize(width, height int32) {
	w.minSize = image.Pt(int(width), int(height))
}

func (w *window) SetMaximized() {
	w.requestState(func(st *windowState) { st.maximized = true })
}

func (w *window) UnsetMaximized() {
	w.requestState(func(st *windowState) { st.maximized = false })
}

func (w *window) SetFullscreen(output *wl.Output) {
	w.fullscreenOutput = w.sess.outputFor(output)
	w.requestState(func(st *windowState) { st.fullscreen = true })
}

func (w *window) UnsetFullscreen() {
	w.fullscreenOutput = nil
	w.requestState(func(st *windowState) { st.fullscreen = false })
}

func (w *window) SetMinimized() {
	w.setMinimized(true)
}

// setMinimized is shared with the foreign-toplevel request path.
// Minimized windows keep their slot but are skipped for rendering,
// input, and focus.
func (w *window) setMinimized(min bool) {
	if w.minimized == min || w.stage != stageMapped {
		return
	}
	w.minimized = min
	c := w.comp
	c.damageArea(w.s.extent())
	if min && c.seat.keyboardFocus == w.s {
		c.focusTop()
	}
	if !min {
		c.focusWindow(w)
	}
	w.broadcastState()
}

// centered places a box of the given size in the middle of bounds.
func centered(bounds image.Rectangle, size image.Point) image.Rectangle {
	min := bounds.Min.Add(bounds.Size().Sub(size).Div(2))
	return image.Rectangle{Min: min, Max: min.Add(size)}
}
