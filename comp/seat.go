package comp

import (
	"encoding/binary"
	"image"
	"slices"
	"time"

	"github.com/tfufuz1/NovaDE-sub008/internal/set"
	"github.com/tfufuz1/NovaDE-sub008/internal/xslices"
	"github.com/tfufuz1/NovaDE-sub008/layer"
	"github.com/tfufuz1/NovaDE-sub008/pointer"
	"github.com/tfufuz1/NovaDE-sub008/render"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
	"github.com/tfufuz1/NovaDE-sub008/xdg"
)

const seatName = "seat0"

// Linux input event codes for the keys the seat tracks itself.
const (
	keyLeftCtrl   = 29
	keyLeftShift  = 42
	keyRightShift = 54
	keyLeftAlt    = 56
	keyCapsLock   = 58
	keyRightCtrl  = 97
	keyRightAlt   = 100
	keyLeftMeta   = 125
	keyRightMeta  = 126
)

// Modifier mask bits as the default xkb keymaps lay them out.
const (
	modShift = 1 << 0
	modCaps  = 1 << 1
	modCtrl  = 1 << 2
	modAlt   = 1 << 3
	modLogo  = 1 << 6
)

// scrollStep is the axis value of one wheel detent.
const scrollStep = 15.0

// serialTracker remembers recently issued input serials so requests
// that quote one can be checked.
type serialTracker struct {
	ring [64]uint32
	n    int
}

func (t *serialTracker) record(serial uint32) {
	t.ring[t.n%len(t.ring)] = serial
	t.n++
}

func (t *serialTracker) valid(serial uint32) bool {
	return slices.Contains(t.ring[:min(t.n, len(t.ring))], serial)
}

// moveGrab is an interactive move in progress. bounds is the
// window's floating box when the grab started.
type moveGrab struct {
	w      *window
	start  image.Point
	bounds image.Rectangle
}

// resizeGrab is an interactive resize in progress.
type resizeGrab struct {
	w      *window
	edges  xdg.ResizeEdge
	start  image.Point
	bounds image.Rectangle
}

// Seat is the one seat the compositor exposes. It owns the pointer
// position, the keyboard and pointer focus, the touch points, and
// the input serial history, and routes backend input to clients.
type Seat struct {
	comp    *Compositor
	serials serialTracker

	x, y         float64
	pointerFocus *surface
	buttons      set.Set[pointer.Button]
	enterSerial  uint32

	// The cursor is either a client surface with the cursor role
	// or the theme's default pointer. cursorLast is where it was
	// drawn last, for damage.
	cursorSurface *surface
	cursorHot     image.Point
	cursorHidden  bool
	cursorLast    image.Rectangle
	themeTex      render.Texture
	themeHot      image.Point

	keyboardFocus *surface
	keys          []uint32
	depressed     uint32
	locked        uint32

	touchPoints map[int32]*surface

	// grabs is the active popup grab chain, oldest first.
	grabs  []*popup
	move   *moveGrab
	resize *resizeGrab

	// sel is the primary selection, nil while nothing is selected.
	sel *selectionSource
}

func newSeat(c *Compositor) *Seat {
	return &Seat{
		comp:        c,
		buttons:     set.New[pointer.Button](),
		touchPoints: make(map[int32]*surface),
	}
}

// pointerPos is the pointer position in global coordinates.
func (se *Seat) pointerPos() image.Point {
	return image.Pt(int(se.x), int(se.y))
}

func (se *Seat) serialValid(serial uint32) bool {
	return se.serials.valid(serial)
}

// addGrab pushes p onto the popup grab chain.
func (se *Seat) addGrab(p *popup) {
	se.grabs = append(se.grabs, p)
}

// popupGone removes p from the grab chain.
func (se *Seat) popupGone(p *popup) {
	se.grabs = xslices.Remove(se.grabs, p)
}

// dismissGrabs tears down the whole grab chain, topmost first.
// Every dismiss removes the popup from the chain, so this
// terminates.
func (se *Seat) dismissGrabs() {
	for len(se.grabs) > 0 {
		se.grabs[len(se.grabs)-1].dismiss()
	}
}

// grabOwner is the session allowed to receive input while a popup
// grab is active, nil when there is none.
func (se *Seat) grabOwner() *session {
	if len(se.grabs) == 0 {
		return nil
	}
	return se.grabs[len(se.grabs)-1].sess
}

// ensureTheme imports the theme's default pointer on first use.
func (se *Seat) ensureTheme() {
	if se.themeTex != nil {
		return
	}
	img := se.comp.theme.Default()
	se.themeTex = se.comp.renderer.Import(render.Source{
		Pix:    img.Image.Pix,
		Stride: 4 * img.Image.Rect.Dx(),
		Bounds: img.Image.Rect,
	})
	se.themeHot = img.Hot
}

// cursorBox is the cursor's current rectangle in global
// coordinates.
func (se *Seat) cursorBox() image.Rectangle {
	switch {
	case se.cursorHidden:
		return image.Rectangle{}
	case se.cursorSurface != nil:
		return se.cursorSurface.extent()
	default:
		se.ensureTheme()
		pos := se.pointerPos().Sub(se.themeHot)
		return image.Rectangle{Min: pos, Max: pos.Add(se.themeTex.Bounds().Size())}
	}
}

// damageCursor repaints where the cursor was and where it is now.
func (se *Seat) damageCursor() {
	box := se.cursorBox()
	if box != se.cursorLast {
		se.comp.damageArea(se.cursorLast)
	}
	se.comp.damageArea(box)
	se.cursorLast = box
}

// cursorNode is the cursor's render node for one output. It is
// drawn above everything else.
func (se *Seat) cursorNode(out *Output) (render.Node, bool) {
	if se.cursorHidden {
		return render.Node{}, false
	}
	var tex render.Texture
	var dst image.Rectangle
	if cs := se.cursorSurface; cs != nil {
		if cs.tex == nil {
			return render.Node{}, false
		}
		tex, dst = cs.tex, cs.extent()
	} else {
		se.ensureTheme()
		pos := se.pointerPos().Sub(se.themeHot)
		tex, dst = se.themeTex, image.Rectangle{Min: pos, Max: pos.Add(se.themeTex.Bounds().Size())}
	}
	if !dst.Overlaps(out.box()) {
		return render.Node{}, false
	}
	return render.Node{Texture: tex, Dst: dst.Sub(out.position)}, true
}

// resetCursor drops any client cursor and shows the theme pointer.
func (se *Seat) resetCursor() {
	se.cursorSurface = nil
	se.cursorHidden = false
	se.cursorHot = image.Point{}
	se.damageCursor()
}

// setCursor handles wl_pointer.set_cursor. Only the client with
// pointer focus may change the image, and only with the serial of
// the enter that gave it focus.
func (se *Seat) setCursor(sess *session, res *wl.Pointer, serial uint32, surfaceRes *wl.Surface, hot image.Point) {
	if se.pointerFocus == nil || se.pointerFocus.sess != sess || serial != se.enterSerial {
		return
	}
	if surfaceRes == nil {
		se.cursorSurface = nil
		se.cursorHidden = true
		se.damageCursor()
		return
	}
	s := sess.surfaces[surfaceRes]
	if s == nil {
		return
	}
	if !s.roleAllowed(roleCursor) {
		sess.client.Post(wl.Errorf(res, uint32(wl.PointerErrorRole), "%v: %v already has the %v role", res, surfaceRes, s.role))
		return
	}
	s.role = roleCursor
	se.cursorSurface = s
	se.cursorHot = hot
	se.cursorHidden = false
	se.damageCursor()
}

// cursorCommitted reacts to a commit on a cursor-role surface.
func (se *Seat) cursorCommitted(s *surface) {
	if se.cursorSurface != s {
		return
	}
	se.damageCursor()
}

// setPointerFocus moves pointer focus to s, sending leave and enter
// as needed. pos is the current global pointer position.
func (se *Seat) setPointerFocus(s *surface, pos image.Point) {
	old := se.pointerFocus
	if s == old {
		return
	}
	c := se.comp
	if old != nil && !old.dead {
		serial := c.nextSerial()
		for _, p := range old.sess.pointers {
			p.Leave(serial, old.res)
			p.Frame()
		}
	}
	se.pointerFocus = s
	if s == nil {
		return
	}
	if old == nil || old.sess != s.sess {
		// the new client shows the theme cursor until it sets one
		se.resetCursor()
	}
	serial := c.nextSerial()
	se.serials.record(serial)
	se.enterSerial = serial
	local := pos.Sub(s.pos())
	for _, p := range s.sess.pointers {
		p.Enter(serial, s.res, wire.FixedInt(local.X), wire.FixedInt(local.Y))
		p.Frame()
	}
}

// pressedKeys encodes the held keys for wl_keyboard.enter.
func (se *Seat) pressedKeys() []byte {
	b := make([]byte, 4*len(se.keys))
	for i, k := range se.keys {
		binary.LittleEndian.PutUint32(b[4*i:], k)
	}
	return b
}

// sendModifiers reports the seat's modifier state to s's client.
func (se *Seat) sendModifiers(s *surface) {
	serial := se.comp.nextSerial()
	for _, k := range s.sess.keyboards {
		k.Modifiers(serial, se.depressed, 0, se.locked, 0)
	}
}

// focusSurface moves keyboard focus to s, nil to clear it. Toplevel
// activation and the primary selection follow the focus.
func (se *Seat) focusSurface(s *surface) {
	if s == se.keyboardFocus {
		return
	}
	c := se.comp
	old := se.keyboardFocus
	if old != nil && !old.dead {
		serial := c.nextSerial()
		for _, k := range old.sess.keyboards {
			k.Leave(serial, old.res)
		}
		if old.window != nil {
			old.window.requestState(func(st *windowState) { st.activated = false })
		}
	}
	se.keyboardFocus = s
	if s == nil {
		return
	}
	serial := c.nextSerial()
	se.serials.record(serial)
	keys := se.pressedKeys()
	for _, k := range s.sess.keyboards {
		k.Enter(serial, s.res, keys)
		k.Modifiers(serial, se.depressed, 0, se.locked, 0)
	}
	if s.window != nil {
		s.window.requestState(func(st *windowState) { st.activated = true })
	}
	if old == nil || old.sess != s.sess {
		se.offerSelection(s.sess)
	}
}

// focusWindow raises w and gives it keyboard focus. A layer surface
// holding exclusive keyboard focus keeps it.
func (c *Compositor) focusWindow(w *window) {
	if w == nil {
		c.seat.focusSurface(nil)
		return
	}
	if n := len(c.space.stack); n == 0 || c.space.stack[n-1] != w.handle {
		c.space.raise(w)
		for _, s := range appendTree(nil, w.s) {
			c.damageArea(s.extent())
		}
	}
	if lf := c.seat.keyboardFocus; lf != nil && lf.lsurf != nil && lf.lsurf.state.ki == layer.KeyboardInteractivityExclusive {
		return
	}
	c.seat.focusSurface(w.s)
}

// focusTop focuses the top of the window stack, or clears keyboard
// focus when the stack is empty.
func (c *Compositor) focusTop() {
	c.focusWindow(c.space.top())
}

// clickFocus applies click-to-focus for a button press on s.
func (se *Seat) clickFocus(s *surface) {
	root := s
	for root.sub != nil {
		root = root.sub.parent
	}
	switch {
	case root.window != nil:
		se.comp.focusWindow(root.window)
	case root.lsurf != nil && root.lsurf.state.ki != layer.KeyboardInteractivityNone:
		se.focusSurface(root)
	}
}

// pointerMotion applies a relative motion from the backend.
func (se *Seat) pointerMotion(t time.Time, dx, dy float64) {
	se.x += dx
	se.y += dy
	se.clampPointer()
	se.damageCursor()

	pos := se.pointerPos()
	switch {
	case se.move != nil:
		se.dragMove(pos)
	case se.resize != nil:
		se.dragResize(pos)
	default:
		se.motionFocus(se.comp.stamp(t), pos)
	}
}

// clampPointer keeps the pointer on the closest output.
func (se *Seat) clampPointer() {
	outs := se.comp.space.outputs.All()
	if len(outs) == 0 {
		se.x, se.y = 0, 0
		return
	}
	p := se.pointerPos()
	for _, out := range outs {
		if p.In(out.box()) {
			return
		}
	}
	best, bestDist := p, -1
	for _, out := range outs {
		box := out.box()
		q := image.Pt(
			min(max(p.X, box.Min.X), box.Max.X-1),
			min(max(p.Y, box.Min.Y), box.Max.Y-1),
		)
		d := (q.X-p.X)*(q.X-p.X) + (q.Y-p.Y)*(q.Y-p.Y)
		if bestDist < 0 || d < bestDist {
			best, bestDist = q, d
		}
	}
	se.x, se.y = float64(best.X), float64(best.Y)
}

// motionFocus recomputes pointer focus for pos and delivers the
// motion. While a popup grab is active, focus is confined to the
// grabbing client.
func (se *Seat) motionFocus(time uint32, pos image.Point) {
	target := se.comp.surfaceAt(pos)
	if owner := se.grabOwner(); owner != nil && (target == nil || target.sess != owner) {
		target = nil
	}
	se.setPointerFocus(target, pos)
	f := se.pointerFocus
	if f == nil {
		return
	}
	local := pos.Sub(f.pos())
	for _, p := range f.sess.pointers {
		p.Motion(time, wire.FixedInt(local.X), wire.FixedInt(local.Y))
		p.Frame()
	}
}

// dragMove applies an interactive move. The motion is consumed, not
// delivered.
func (se *Seat) dragMove(pos image.Point) {
	g := se.move
	w := g.w
	if w.stage != stageMapped {
		se.move = nil
		return
	}
	box := g.bounds.Add(pos.Sub(g.start))
	if box == w.floatBounds {
		return
	}
	c := se.comp
	w.floatBounds = box
	if out := c.space.outputAt(pos); out != nil && out != w.output {
		w.output = out
	}
	c.space.place(c, w, box)
}

// dragResize applies an interactive resize, keeping the edge
// opposite the grab anchored.
func (se *Seat) dragResize(pos image.Point) {
	g := se.resize
	w := g.w
	if w.stage != stageMapped {
		se.resize = nil
		return
	}
	d := pos.Sub(g.start)
	box := g.bounds
	if g.edges&xdg.ResizeEdgeLeft != 0 {
		box.Min.X += d.X
	}
	if g.edges&xdg.ResizeEdgeRight != 0 {
		box.Max.X += d.X
	}
	if g.edges&xdg.ResizeEdgeTop != 0 {
		box.Min.Y += d.Y
	}
	if g.edges&xdg.ResizeEdgeBottom != 0 {
		box.Max.Y += d.Y
	}
	size := w.clampSize(box.Size())
	size.X = max(size.X, 1)
	size.Y = max(size.Y, 1)
	if g.edges&xdg.ResizeEdgeLeft != 0 {
		box.Min.X = box.Max.X - size.X
	} else {
		box.Max.X = box.Min.X + size.X
	}
	if g.edges&xdg.ResizeEdgeTop != 0 {
		box.Min.Y = box.Max.Y - size.Y
	} else {
		box.Max.Y = box.Min.Y + size.Y
	}

	c := se.comp
	w.floatBounds = box
	c.space.place(c, w, box)
}

// startMove begins an interactive move if serial names a recent
// input event, a button is held, and the window can float.
func (se *Seat) startMove(w *window, serial uint32) {
	if !se.serials.valid(serial) || len(se.buttons) == 0 {
		return
	}
	if w.stage != stageMapped || w.state.maximized || w.state.fullscreen {
		return
	}
	if se.comp.space.layout == "tiling" {
		return
	}
	se.move = &moveGrab{w: w, start: se.pointerPos(), bounds: w.floatBounds}
	se.resize = nil
}

// startResize begins an interactive resize.
func (se *Seat) startResize(w *window, serial uint32, edges xdg.ResizeEdge) {
	switch edges {
	case xdg.ResizeEdgeNone, xdg.ResizeEdgeTop, xdg.ResizeEdgeBottom, xdg.ResizeEdgeLeft,
		xdg.ResizeEdgeTopLeft, xdg.ResizeEdgeBottomLeft, xdg.ResizeEdgeRight,
		xdg.ResizeEdgeTopRight, xdg.ResizeEdgeBottomRight:
	default:
		w.sess.client.Post(wl.Errorf(w.res, uint32(xdg.ToplevelErrorInvalidResizeEdge), "%v: %v is not a resize edge", w.res, uint32(edges)))
		return
	}
	if !se.serials.valid(serial) || len(se.buttons) == 0 {
		return
	}
	if w.stage != stageMapped || w.state.maximized || w.state.fullscreen {
		return
	}
	if se.comp.space.layout == "tiling" {
		return
	}
	se.resize = &resizeGrab{w: w, edges: edges, start: se.pointerPos(), bounds: w.floatBounds}
	se.move = nil
	w.requestState(func(st *windowState) { st.resizing = true })
}

// pointerButton routes a button from the backend. A press outside
// an active popup grab dismisses the grab chain and is consumed.
func (se *Seat) pointerButton(t time.Time, button pointer.Button, pressed bool) {
	c := se.comp
	serial := c.nextSerial()
	se.serials.record(serial)

	state := wl.PointerButtonStateReleased
	if pressed {
		state = wl.PointerButtonStatePressed
		se.buttons.Add(button)
	} else {
		se.buttons.Delete(button)
	}

	if pressed {
		if owner := se.grabOwner(); owner != nil {
			if se.pointerFocus == nil || se.pointerFocus.sess != owner {
				se.dismissGrabs()
				return
			}
		}
	}

	if f := se.pointerFocus; f != nil {
		if pressed {
			se.clickFocus(f)
		}
		time := c.stamp(t)
		for _, p := range f.sess.pointers {
			p.Button(serial, time, uint32(button), state)
			p.Frame()
		}
	}

	if !pressed && len(se.buttons) == 0 {
		se.move = nil
		if g := se.resize; g != nil {
			se.resize = nil
			g.w.requestState(func(st *windowState) { st.resizing = false })
		}
	}
}

// pointerAxis delivers wheel detents to the focused surface.
func (se *Seat) pointerAxis(t time.Time, horizontal bool, steps int32) {
	f := se.pointerFocus
	if f == nil || steps == 0 {
		return
	}
	time := se.comp.stamp(t)
	axis := wl.PointerAxisVerticalScroll
	if horizontal {
		axis = wl.PointerAxisHorizontalScroll
	}
	value := wire.FixedFloat(float64(steps) * scrollStep)
	for _, p := range f.sess.pointers {
		p.AxisSource(wl.PointerAxisSourceWheel)
		p.AxisDiscrete(axis, steps)
		p.Axis(time, axis, value)
		p.Frame()
	}
}

// modifierBit maps a keycode to its modifier mask bit, zero for
// ordinary keys.
func modifierBit(code uint32) uint32 {
	switch code {
	case keyLeftShift, keyRightShift:
		return modShift
	case keyLeftCtrl, keyRightCtrl:
		return modCtrl
	case keyLeftAlt, keyRightAlt:
		return modAlt
	case keyLeftMeta, keyRightMeta:
		return modLogo
	}
	return 0
}

// key routes a key from the backend, updating the seat's modifier
// view on the way through.
func (se *Seat) key(t time.Time, code uint32, pressed bool) {
	c := se.comp
	serial := c.nextSerial()
	se.serials.record(serial)

	state := wl.KeyboardKeyStateReleased
	if pressed {
		state = wl.KeyboardKeyStatePressed
		if !slices.Contains(se.keys, code) {
			se.keys = append(se.keys, code)
		}
	} else {
		se.keys = xslices.Remove(se.keys, code)
	}

	modsChanged := false
	if code == keyCapsLock {
		if pressed {
			se.locked ^= modCaps
			modsChanged = true
		}
	} else if modifierBit(code) != 0 {
		var mods uint32
		for _, k := range se.keys {
			mods |= modifierBit(k)
		}
		if mods != se.depressed {
			se.depressed = mods
			modsChanged = true
		}
	}

	if f := se.keyboardFocus; f != nil {
		time := c.stamp(t)
		for _, k := range f.sess.keyboards {
			k.Key(serial, time, code, state)
		}
		if modsChanged {
			se.sendModifiers(f)
		}
	}
}

// touchDown routes a new touch point to the surface under it.
func (se *Seat) touchDown(t time.Time, id int32, x, y float64) {
	c := se.comp
	pos := image.Pt(int(x), int(y))
	s := c.surfaceAt(pos)
	if owner := se.grabOwner(); owner != nil && (s == nil || s.sess != owner) {
		se.dismissGrabs()
		return
	}
	if s == nil {
		return
	}
	serial := c.nextSerial()
	se.serials.record(serial)
	se.touchPoints[id] = s
	time := c.stamp(t)
	sp := s.pos()
	lx := wire.FixedFloat(x - float64(sp.X))
	ly := wire.FixedFloat(y - float64(sp.Y))
	for _, tc := range s.sess.touches {
		tc.Down(serial, time, s.res, id, lx, ly)
		tc.Frame()
	}
}

func (se *Seat) touchUp(t time.Time, id int32) {
	s, ok := se.touchPoints[id]
	if !ok {
		return
	}
	delete(se.touchPoints, id)
	if s.dead {
		return
	}
	c := se.comp
	serial := c.nextSerial()
	se.serials.record(serial)
	time := c.stamp(t)
	for _, tc := range s.sess.touches {
		tc.Up(serial, time, id)
		tc.Frame()
	}
}

func (se *Seat) touchMotion(t time.Time, id int32, x, y float64) {
	s, ok := se.touchPoints[id]
	if !ok || s.dead {
		return
	}
	time := se.comp.stamp(t)
	sp := s.pos()
	lx := wire.FixedFloat(x - float64(sp.X))
	ly := wire.FixedFloat(y - float64(sp.Y))
	for _, tc := range s.sess.touches {
		tc.Motion(time, id, lx, ly)
		tc.Frame()
	}
}

// pointerBound catches a freshly bound wl_pointer up with the
// current focus.
func (se *Seat) pointerBound(sess *session, p *wl.Pointer) {
	f := se.pointerFocus
	if f == nil || f.sess != sess {
		return
	}
	serial := se.comp.nextSerial()
	se.serials.record(serial)
	se.enterSerial = serial
	local := se.pointerPos().Sub(f.pos())
	p.Enter(serial, f.res, wire.FixedInt(local.X), wire.FixedInt(local.Y))
	p.Frame()
}

// keyboardBound sends the keymap and repeat settings to a freshly
// bound wl_keyboard and catches it up with the current focus.
func (se *Seat) keyboardBound(sess *session, k *wl.Keyboard) {
	c := se.comp
	k.Keymap(c.keymapFormat, c.keymapFile, c.keymapSize)
	k.RepeatInfo(c.cfg.Input.RepeatRate, c.cfg.Input.RepeatDelay)
	f := se.keyboardFocus
	if f == nil || f.sess != sess {
		return
	}
	serial := c.nextSerial()
	se.serials.record(serial)
	k.Enter(serial, f.res, se.pressedKeys())
	k.Modifiers(serial, se.depressed, 0, se.locked, 0)
}

// surfaceGone drops every reference the seat holds to s. No events
// are sent; the surface is unmapped or destroyed.
func (se *Seat) surfaceGone(s *surface) {
	if se.pointerFocus == s {
		se.pointerFocus = nil
	}
	if se.keyboardFocus == s {
		se.keyboardFocus = nil
	}
	if se.cursorSurface == s {
		se.cursorSurface = nil
		se.cursorHidden = false
		se.damageCursor()
	}
	for id, ts := range se.touchPoints {
		if ts == s {
			delete(se.touchPoints, id)
		}
	}
	if se.move != nil && se.move.w.s == s {
		se.move = nil
	}
	if se.resize != nil && se.resize.w.s == s {
		se.resize = nil
	}
}

// forgetSession drops all seat state tied to a disconnecting
// client.
func (se *Seat) forgetSession(sess *session) {
	if se.pointerFocus != nil && se.pointerFocus.sess == sess {
		se.pointerFocus = nil
	}
	if se.keyboardFocus != nil && se.keyboardFocus.sess == sess {
		se.keyboardFocus = nil
	}
	if se.cursorSurface != nil && se.cursorSurface.sess == sess {
		se.cursorSurface = nil
		se.cursorHidden = false
		se.damageCursor()
	}
	for id, s := range se.touchPoints {
		if s.sess == sess {
			delete(se.touchPoints, id)
		}
	}
	se.grabs = slices.DeleteFunc(se.grabs, func(p *popup) bool { return p.sess == sess })
	if se.move != nil && se.move.w.sess == sess {
		se.move = nil
	}
	if se.resize != nil && se.resize.w.sess == sess {
		se.resize = nil
	}
	se.selectionGone(sess)
}
