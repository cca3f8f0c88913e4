package comp

import (
	"image"
	"slices"

	"github.com/tfufuz1/NovaDE-sub008/internal/region"
	"github.com/tfufuz1/NovaDE-sub008/internal/set"
	"github.com/tfufuz1/NovaDE-sub008/internal/xslices"
	"github.com/tfufuz1/NovaDE-sub008/layer"
	"github.com/tfufuz1/NovaDE-sub008/render"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/xdg"
)

// role names what a surface is for. A role is assigned once and
// survives its role object; a surface whose toplevel was destroyed
// can only become a toplevel again.
type role uint8

const (
	roleNone role = iota
	roleToplevel
	rolePopup
	roleLayer
	roleSubsurface
	roleCursor
)

func (r role) String() string {
	switch r {
	case roleToplevel:
		return "xdg_toplevel"
	case rolePopup:
		return "xdg_popup"
	case roleLayer:
		return "zwlr_layer_surface_v1"
	case roleSubsurface:
		return "wl_subsurface"
	case roleCursor:
		return "cursor"
	}
	return "none"
}

// surfaceState is the double-buffered wl_surface state. The pending
// copy accumulates requests and takes effect as a unit at commit.
// One-shot fields (buffer, offset, damage, callbacks) start empty
// after every commit; the rest carries the last committed value
// forward.
type surfaceState struct {
	attached bool
	buffer   *wl.Buffer
	offset   image.Point

	damage       region.Region
	bufferDamage region.Region
	callbacks    []*wl.Callback

	opaque    region.Region
	input     region.Region
	inputAll  bool
	transform wl.OutputTransform
	scale     int32
}

// surface is the compositor side of a wl_surface. It implements
// wl.SurfaceListener.
type surface struct {
	sess *session
	res  *wl.Surface

	pending surfaceState
	cached  *surfaceState

	buf  *attachedBuffer
	tex  render.Texture
	size image.Point

	opaque    region.Region
	input     region.Region
	inputAll  bool
	transform wl.OutputTransform
	scale     int32
	callbacks []*wl.Callback

	role   role
	xdg    *xdgSurface
	window *window
	popup  *popup
	lsurf  *layerSurface
	sub    *subsurface

	// order is the committed stacking of this surface and its
	// subsurfaces, bottom to top. pendingOrder takes effect when
	// this surface commits.
	order        []*surface
	pendingOrder []*surface

	popups []*popup

	mapped  bool
	dead    bool
	outputs set.Set[*Output]
}

func newSurface(sess *session, res *wl.Surface) *surface {
	s := &surface{
		sess:     sess,
		res:      res,
		inputAll: true,
		scale:    1,
		outputs:  make(set.Set[*Output]),
	}
	s.order = []*surface{s}
	s.pendingOrder = []*surface{s}
	s.resetPending()
	res.Listener = s
	return s
}

// roleAllowed reports whether the surface may take on r now.
func (s *surface) roleAllowed(r role) bool {
	return s.role == roleNone || s.role == r
}

// hasContent reports whether the surface has a buffer, committed or
// pending. Shells refuse surfaces that already have one.
func (s *surface) hasContent() bool {
	return s.buf != nil || s.pending.attached && s.pending.buffer != nil
}

// resetPending rearms the pending state after a commit. Sticky
// fields restart from the client's latest committed view, which is
// the cached state while a synchronized commit is parked.
func (s *surface) resetPending() {
	opaque, input := s.opaque, s.input
	inputAll, transform, scale := s.inputAll, s.transform, s.scale
	if c := s.cached; c != nil {
		opaque, input = c.opaque, c.input
		inputAll, transform, scale = c.inputAll, c.transform, c.scale
	}
	s.pending = surfaceState{
		opaque:    opaque.Clone(),
		input:     input.Clone(),
		inputAll:  inputAll,
		transform: transform,
		scale:     scale,
	}
}

func (s *surface) Destroy() {
	s.teardown()
}

func (s *surface) Attach(buffer *wl.Buffer, x, y int32) {
	s.pending.attached = true
	s.pending.buffer = buffer
	s.pending.offset = s.pending.offset.Add(image.Pt(int(x), int(y)))
}

func (s *surface) Damage(x, y, width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	s.pending.damage.Add(image.Rect(int(x), int(y), int(x)+int(width), int(y)+int(height)))
}

func (s *surface) DamageBuffer(x, y, width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	s.pending.bufferDamage.Add(image.Rect(int(x), int(y), int(x)+int(width), int(y)+int(height)))
}

func (s *surface) Frame(cb *wl.Callback) {
	s.pending.callbacks = append(s.pending.callbacks, cb)
}

func (s *surface) SetOpaqueRegion(r *wl.Region) {
	if r == nil {
		s.pending.opaque.Clear()
		return
	}
	s.pending.opaque = r.Area()
}

func (s *surface) SetInputRegion(r *wl.Region) {
	if r == nil {
		s.pending.input.Clear()
		s.pending.inputAll = true
		return
	}
	s.pending.input = r.Area()
	s.pending.inputAll = false
}

func (s *surface) SetBufferTransform(transform wl.OutputTransform) {
	s.pending.transform = transform
}

func (s *surface) SetBufferScale(scale int32) {
	s.pending.scale = scale
}

func (s *surface) Offset(x, y int32) {
	s.pending.offset = s.pending.offset.Add(image.Pt(int(x), int(y)))
}

func (s *surface) Commit() { s.commit() }

func (s *surface) commit() {
	if s.sub != nil && s.sub.synchronized() {
		s.cacheCommit()
		return
	}
	if s.cached != nil {
		// leftover parked state from a sync period applies with
		// this commit
		s.cacheCommit()
		s.applyCached()
		return
	}
	st := s.pending
	s.resetPending()
	s.apply(&st)
}

// cacheCommit parks the pending state until the parent commits,
// merging into whatever is already parked.
func (s *surface) cacheCommit() {
	p := s.pending
	if s.cached == nil {
		st := p
		s.cached = &st
	} else {
		c := s.cached
		if p.attached {
			c.attached, c.buffer = true, p.buffer
		}
		c.offset = c.offset.Add(p.offset)
		c.damage.AddRegion(p.damage)
		c.bufferDamage.AddRegion(p.bufferDamage)
		c.callbacks = append(c.callbacks, p.callbacks...)
		c.opaque, c.input, c.inputAll = p.opaque, p.input, p.inputAll
		c.transform, c.scale = p.transform, p.scale
	}
	s.resetPending()
}

// applyCached applies a parked commit. Runs when the parent of a
// synchronized subsurface commits and when a subsurface goes desync.
func (s *surface) applyCached() {
	if s.cached == nil {
		return
	}
	st := s.cached
	s.cached = nil
	s.apply(st)
}

// apply promotes one committed snapshot into current state, updates
// the texture, and lets the role react.
func (s *surface) apply(st *surfaceState) {
	if s.dead {
		return
	}
	if err := s.roleCheck(st); err != nil {
		s.sess.client.Post(err)
		return
	}

	wasMapped := s.mapped
	var oldExtent image.Rectangle
	if wasMapped {
		oldExtent = s.extent()
	}
	transformChanged := st.transform != s.transform || st.scale != s.scale

	if st.attached {
		old := s.buf
		if st.buffer != nil {
			s.buf = s.sess.comp.attach(st.buffer)
			s.buf.users.Add(s)
		} else {
			s.buf = nil
		}
		if old != nil {
			if old != s.buf {
				old.users.Delete(s)
			}
			old.unref()
		}
	}

	s.opaque = st.opaque
	s.input = st.input
	s.inputAll = st.inputAll
	s.transform = st.transform
	s.scale = st.scale

	oldSize := s.size
	s.size = s.contentSize()

	switch {
	case s.buf == nil:
		s.tex = nil
	case st.attached || transformChanged || s.tex == nil:
		s.importTexture()
	case !s.tex.Aliased() && (!st.damage.Empty() || !st.bufferDamage.Empty()):
		// detached textures hold a copy, so new pixels need a fresh
		// import
		s.importTexture()
	}

	s.order = append(s.order[:0], s.pendingOrder...)
	for _, child := range s.order {
		if child != s && child.sub != nil {
			child.sub.applyPosition()
		}
	}

	s.callbacks = append(s.callbacks, st.callbacks...)

	for _, child := range s.order {
		if child != s && child.sub != nil && child.sub.sync {
			child.applyCached()
		}
	}

	dmg := st.damage.Clone()
	for _, r := range st.bufferDamage.Rects() {
		dmg.Add(s.bufferRect(r))
	}
	if s.size != oldSize {
		dmg.Add(image.Rectangle{Max: image.Pt(max(oldSize.X, s.size.X), max(oldSize.Y, s.size.Y))})
	}
	dmg.Intersect(image.Rectangle{Max: s.size})

	if !st.offset.Eq(image.Point{}) {
		s.applyOffset(st.offset)
	}

	s.roleCommitted(st)

	s.mapped = s.computeMapped()
	switch {
	case !wasMapped && s.mapped:
		s.mapNow()
	case wasMapped && !s.mapped:
		s.unmapNow(oldExtent)
	case s.mapped:
		c := s.sess.comp
		c.damageSurface(s, dmg)
		c.updateOutputs(s)
		// a commit with only frame callbacks still wants a frame
		// event, so make sure one comes around
		if len(st.callbacks) > 0 {
			for out := range s.outputs {
				c.sched.schedule(out)
			}
		}
	}
}

// roleCheck rejects commits that violate the role's configure
// handshake before any state is touched.
func (s *surface) roleCheck(st *surfaceState) error {
	buffer := s.buf != nil
	if st.attached {
		buffer = st.buffer != nil
	}
	if !buffer {
		return nil
	}
	switch s.role {
	case roleToplevel, rolePopup:
		if s.xdg != nil && !s.xdg.roleConfigured() {
			return wl.Errorf(s.xdg.res, uint32(xdg.SurfaceErrorUnconfiguredBuffer), "%v: buffer committed before the first configure was acked", s.xdg.res)
		}
	case roleLayer:
		if s.lsurf != nil && !s.lsurf.configured {
			return wl.Errorf(s.lsurf.res, uint32(layer.SurfaceErrorInvalidSurfaceState), "%v: buffer committed before the first configure was acked", s.lsurf.res)
		}
	}
	return nil
}

func (s *surface) roleCommitted(st *surfaceState) {
	if s.xdg != nil {
		s.xdg.committed()
	}
	switch {
	case s.window != nil:
		s.window.committed()
	case s.popup != nil:
		s.popup.committed()
	case s.lsurf != nil:
		s.lsurf.committed()
	case s.role == roleCursor:
		s.sess.comp.seat.cursorCommitted(s)
	}
}

// applyOffset applies the one-shot attach/offset delta. Only roles
// that position themselves honor it.
func (s *surface) applyOffset(off image.Point) {
	switch {
	case s.sub != nil:
		s.sub.pos = s.sub.pos.Add(off)
	case s.role == roleCursor:
		s.sess.comp.seat.cursorHot = s.sess.comp.seat.cursorHot.Sub(off)
	}
}

// contentSize is the committed buffer size in surface coordinates.
func (s *surface) contentSize() image.Point {
	if s.buf == nil || s.buf.gone {
		return image.Point{}
	}
	size := s.buf.res.Bounds().Size()
	if render.Transform(s.transform).Swapped() {
		size.X, size.Y = size.Y, size.X
	}
	scale := max(int(s.scale), 1)
	return image.Pt(size.X/scale, size.Y/scale)
}

// computeMapped decides visibility from role state and buffer
// presence. The mapped flag itself is managed by apply.
func (s *surface) computeMapped() bool {
	if s.dead || s.buf == nil {
		return false
	}
	switch s.role {
	case roleToplevel:
		return s.window != nil && s.window.stage == stageMapped
	case rolePopup:
		return s.popup != nil && s.popup.configured
	case roleLayer:
		return s.lsurf != nil && s.lsurf.configured
	case roleSubsurface:
		return s.sub != nil && s.sub.parent.mapped
	}
	return false
}

func (s *surface) mapNow() {
	c := s.sess.comp
	switch {
	case s.window != nil:
		s.window.mapNow()
	case s.popup != nil:
		s.popup.mapNow()
	case s.lsurf != nil:
		s.lsurf.mapNow()
	}
	c.updateOutputs(s)
	c.damageSurface(s, region.Rect(image.Rectangle{Max: s.size}))
	for _, child := range s.order {
		if child != s && !child.mapped && child.computeMapped() {
			child.mapped = true
			child.mapNow()
		}
	}
}

func (s *surface) unmapNow(oldExtent image.Rectangle) {
	c := s.sess.comp
	for _, child := range s.order {
		if child != s && child.mapped {
			child.mapped = false
			child.unmapNow(child.extent())
		}
	}
	for _, p := range s.popups {
		p.dismiss()
	}
	switch {
	case s.window != nil:
		s.window.unmapNow()
	case s.popup != nil:
		s.popup.unmapNow()
	case s.lsurf != nil:
		s.lsurf.unmapNow()
	}
	c.damageArea(oldExtent)
	c.seat.surfaceGone(s)
	for out := range s.outputs {
		s.leaveOutput(out)
	}
}

// pos is the surface's absolute position in global coordinates.
func (s *surface) pos() image.Point {
	switch {
	case s.window != nil:
		return s.window.bounds.Min.Sub(s.window.geometry().Min)
	case s.popup != nil:
		return s.popup.surfacePos()
	case s.lsurf != nil:
		return s.lsurf.bounds.Min
	case s.sub != nil:
		return s.sub.parent.pos().Add(s.sub.pos)
	case s.role == roleCursor:
		seat := s.sess.comp.seat
		return seat.pointerPos().Sub(seat.cursorHot)
	}
	return image.Point{}
}

// extent is the surface's content box in global coordinates.
func (s *surface) extent() image.Rectangle {
	return image.Rectangle{Max: s.size}.Add(s.pos())
}

// opaqueArea is the committed opaque region in global coordinates.
// A fully opaque texture counts whole.
func (s *surface) opaqueArea() region.Region {
	var r region.Region
	if s.tex != nil && s.tex.Opaque() {
		r.Add(s.extent())
		return r
	}
	r = s.opaque.Clone()
	r.Intersect(image.Rectangle{Max: s.size})
	r.Translate(s.pos())
	return r
}

// acceptsInput reports whether the global point hits the surface's
// input region.
func (s *surface) acceptsInput(p image.Point) bool {
	local := p.Sub(s.pos())
	if !local.In(image.Rectangle{Max: s.size}) {
		return false
	}
	return s.inputAll || s.input.Contains(local)
}

// importTexture refreshes the texture from the committed buffer.
// Renderers that copy at import detach from client memory, so those
// buffers are released immediately; aliasing renderers keep reading
// the buffer and the release waits for the refcount.
func (s *surface) importTexture() {
	b := s.buf
	if b == nil || b.gone {
		return
	}
	s.tex = s.sess.comp.renderer.Import(render.Source{
		Pix:       b.res.Bytes(),
		Stride:    int(b.res.Stride()),
		Bounds:    b.res.Bounds(),
		Opaque:    b.res.Format() == wl.ShmFormatXrgb8888,
		Transform: render.Transform(s.transform),
		Alias:     true,
	})
	if s.tex != nil && !s.tex.Aliased() {
		b.release()
	}
}

// detachTexture replaces an aliased texture with a copied one. The
// buffer bytes must still be valid when it runs.
func (s *surface) detachTexture() {
	b := s.buf
	if b == nil || s.tex == nil || !s.tex.Aliased() {
		return
	}
	s.tex = s.sess.comp.renderer.Import(render.Source{
		Pix:       b.res.Bytes(),
		Stride:    int(b.res.Stride()),
		Bounds:    b.res.Bounds(),
		Opaque:    b.res.Format() == wl.ShmFormatXrgb8888,
		Transform: render.Transform(s.transform),
	})
}

// bufferRect maps a buffer-coordinate rectangle to surface
// coordinates, undoing the committed transform and scale. Partially
// covered surface pixels round outward.
func (s *surface) bufferRect(r image.Rectangle) image.Rectangle {
	if s.buf == nil {
		return image.Rectangle{}
	}
	b := s.buf.res.Bounds().Size()
	var u image.Rectangle
	switch render.Transform(s.transform) {
	case render.Transform90:
		u = image.Rect(b.Y-r.Max.Y, r.Min.X, b.Y-r.Min.Y, r.Max.X)
	case render.Transform180:
		u = image.Rect(b.X-r.Max.X, b.Y-r.Max.Y, b.X-r.Min.X, b.Y-r.Min.Y)
	case render.Transform270:
		u = image.Rect(r.Min.Y, b.X-r.Max.X, r.Max.Y, b.X-r.Min.X)
	case render.TransformFlipped:
		u = image.Rect(b.X-r.Max.X, r.Min.Y, b.X-r.Min.X, r.Max.Y)
	case render.TransformFlipped90:
		u = image.Rect(r.Min.Y, r.Min.X, r.Max.Y, r.Max.X)
	case render.TransformFlipped180:
		u = image.Rect(r.Min.X, b.Y-r.Max.Y, r.Max.X, b.Y-r.Min.Y)
	case render.TransformFlipped270:
		u = image.Rect(b.Y-r.Max.Y, b.X-r.Max.X, b.Y-r.Min.Y, b.X-r.Min.X)
	default:
		u = r
	}
	scale := max(int(s.scale), 1)
	return image.Rect(
		u.Min.X/scale, u.Min.Y/scale,
		(u.Max.X+scale-1)/scale, (u.Max.Y+scale-1)/scale,
	)
}

// enterOutput and leaveOutput keep wl_surface.enter/leave in step
// with the outputs the surface overlaps.
func (s *surface) enterOutput(out *Output) {
	if s.outputs.Has(out) {
		return
	}
	s.outputs.Add(out)
	for _, res := range s.sess.outputs[out] {
		s.res.Enter(res)
	}
	if s.window != nil {
		s.sess.comp.foreignOutput(s.window, out, true)
	}
}

func (s *surface) leaveOutput(out *Output) {
	if !s.outputs.Has(out) {
		return
	}
	s.outputs.Delete(out)
	for _, res := range s.sess.outputs[out] {
		s.res.Leave(res)
	}
	if s.window != nil {
		s.sess.comp.foreignOutput(s.window, out, false)
	}
}

// updateOutputs recomputes which outputs the surface overlaps and
// sends enter/leave for the difference.
func (c *Compositor) updateOutputs(s *surface) {
	ext := s.extent()
	for _, out := range c.space.outputs.All() {
		if s.mapped && ext.Overlaps(out.box()) {
			s.enterOutput(out)
		} else {
			s.leaveOutput(out)
		}
	}
}

func (s *surface) teardown() {
	if s.dead {
		return
	}
	wasMapped := s.mapped
	ext := image.Rectangle{}
	if wasMapped {
		ext = s.extent()
	}
	s.dead = true
	if wasMapped {
		s.mapped = false
		s.unmapNow(ext)
	}
	for _, cb := range s.callbacks {
		cb.Done(s.sess.comp.timestamp())
	}
	s.callbacks = nil
	if s.buf != nil {
		s.buf.users.Delete(s)
		s.buf.unref()
		s.buf = nil
	}
	s.tex = nil
	if s.sub != nil {
		s.sub.removeFromParent()
	}
	s.sess.comp.seat.surfaceGone(s)
	delete(s.sess.surfaces, s.res)
}

// subsurface is the wl_subsurface role. It implements
// wl.SubsurfaceListener.
type subsurface struct {
	s      *surface
	parent *surface
	res    *wl.Subsurface

	sync       bool
	pos        image.Point
	pendingPos *image.Point
}

func newSubsurface(res *wl.Subsurface, s, parent *surface) *subsurface {
	sub := &subsurface{s: s, parent: parent, res: res, sync: true}
	s.role = roleSubsurface
	s.sub = sub
	parent.pendingOrder = append(parent.pendingOrder, s)
	res.Listener = sub
	return sub
}

// synchronized reports whether commits park until the parent
// applies them. Sync mode is inherited down the tree.
func (sub *subsurface) synchronized() bool {
	if sub.sync {
		return true
	}
	if p := sub.parent; p != nil && p.sub != nil {
		return p.sub.synchronized()
	}
	return false
}

// applyPosition promotes a set_position that was waiting for the
// parent commit.
func (sub *subsurface) applyPosition() {
	if sub.pendingPos == nil {
		return
	}
	sub.pos = *sub.pendingPos
	sub.pendingPos = nil
}

func (sub *subsurface) removeFromParent() {
	p := sub.parent
	if p == nil {
		return
	}
	p.order = xslices.Remove(p.order, sub.s)
	p.pendingOrder = xslices.Remove(p.pendingOrder, sub.s)
	sub.parent = nil
}

func (sub *subsurface) Destroy() {
	s := sub.s
	wasMapped := s.mapped
	ext := image.Rectangle{}
	if wasMapped {
		ext = s.extent()
	}
	sub.removeFromParent()
	s.sub = nil
	s.cached = nil
	if wasMapped {
		s.mapped = false
		s.unmapNow(ext)
	}
}

func (sub *subsurface) SetPosition(x, y int32) {
	p := image.Pt(int(x), int(y))
	sub.pendingPos = &p
}

func (sub *subsurface) PlaceAbove(sibling *wl.Surface) {
	sub.reorder(sibling, 1)
}

func (sub *subsurface) PlaceBelow(sibling *wl.Surface) {
	sub.reorder(sibling, 0)
}

func (sub *subsurface) reorder(siblingRes *wl.Surface, offset int) {
	p := sub.parent
	if p == nil {
		return
	}
	sess := sub.s.sess
	sibling := sess.lookup(siblingRes)
	if sibling == nil || sibling == sub.s || !slices.Contains(p.pendingOrder, sibling) {
		sess.client.Post(wl.Errorf(sub.res, uint32(wl.SubsurfaceErrorBadSurface), "%v: %v is not a sibling", sub.res, siblingRes))
		return
	}
	cur := slices.Index(p.pendingOrder, sub.s)
	if cur < 0 {
		return
	}
	order := slices.Delete(p.pendingOrder, cur, cur+1)
	p.pendingOrder = slices.Insert(order, slices.Index(order, sibling)+offset, sub.s)
}

func (sub *subsurface) SetSync() { sub.sync = true }

func (sub *subsurface) SetDesync() {
	sub.sync = false
	if !sub.synchronized() {
		sub.s.applyCached()
	}
}
