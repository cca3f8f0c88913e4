package comp

import (
	"image"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/tfufuz1/NovaDE-sub008/foreign"
	"github.com/tfufuz1/NovaDE-sub008/internal/xslices"
	"github.com/tfufuz1/NovaDE-sub008/layer"
	"github.com/tfufuz1/NovaDE-sub008/primary"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
	"github.com/tfufuz1/NovaDE-sub008/xdg"
)

// session is the compositor-side state of one connected client.
type session struct {
	comp   *Compositor
	client *wl.Client
	logger *log.Logger

	registries []*wl.Registry
	surfaces   map[*wl.Surface]*surface
	seats      []*wl.Seat
	pointers   []*wl.Pointer
	keyboards  []*wl.Keyboard
	touches    []*wl.Touch
	outputs    map[*Output][]*wl.Output
	exporters  []*foreignManager
	devices    []*primaryDevice
}

// Client implements wl.ServerListener.
func (c *Compositor) Client(client *wl.Client) {
	c.nextSession++
	sess := &session{
		comp:     c,
		client:   client,
		logger:   c.logger.With("client", c.nextSession),
		surfaces: make(map[*wl.Surface]*surface),
		outputs:  make(map[*Output][]*wl.Output),
	}
	client.Display().Listener = (*sessionDisplay)(sess)
	c.sessions[client] = sess
	sess.logger.Debug("client connected")
}

// ClientRemove implements wl.ServerListener.
func (c *Compositor) ClientRemove(client *wl.Client) {
	sess := c.sessions[client]
	if sess == nil {
		return
	}
	delete(c.sessions, client)
	sess.teardown()
	sess.logger.Debug("client disconnected")
}

// teardown drops everything the client owned. Surfaces go first so
// windows unmap and buffers unref; the seat forgets the session last
// so no input events are produced for it on the way out.
func (sess *session) teardown() {
	for _, s := range sess.surfaces {
		s.teardown()
	}
	sess.comp.seat.forgetSession(sess)
	sess.registries = nil
	sess.seats = nil
	sess.pointers = nil
	sess.keyboards = nil
	sess.touches = nil
	sess.outputs = nil
	sess.exporters = nil
	sess.devices = nil
}

func (sess *session) lookup(res *wl.Surface) *surface {
	if res == nil {
		return nil
	}
	return sess.surfaces[res]
}

// outputFor maps a bound wl_output resource back to the output it
// represents.
func (sess *session) outputFor(res *wl.Output) *Output {
	if res == nil {
		return nil
	}
	for out, bound := range sess.outputs {
		if slices.Contains(bound, res) {
			return out
		}
	}
	return nil
}

// sessionDisplay handles wl_display requests.
type sessionDisplay session

func (d *sessionDisplay) Sync(cb *wl.Callback) {
	cb.Done(d.comp.serial)
}

func (d *sessionDisplay) GetRegistry(r *wl.Registry) {
	sess := (*session)(d)
	sess.registries = append(sess.registries, r)
	r.Listener = &registryBinding{sess: sess, res: r}
	for _, g := range sess.comp.globals {
		r.Global(g.name, g.inter, g.version)
	}
}

// registryBinding resolves wl_registry.bind requests against the
// global table.
type registryBinding struct {
	sess *session
	res  *wl.Registry
}

func (rb *registryBinding) Bind(name uint32, id wire.NewID) {
	g := rb.sess.comp.findGlobal(name)
	if g == nil {
		rb.sess.client.Post(wl.Errorf(rb.res, uint32(wl.DisplayErrorInvalidObject), "%v: unknown global %v", rb.res, name))
		return
	}
	if id.Interface != g.inter {
		rb.sess.client.Post(wl.Errorf(rb.res, uint32(wl.DisplayErrorInvalidObject), "%v: global %v is %v, not %v", rb.res, name, g.inter, id.Interface))
		return
	}
	if id.Version > g.version {
		rb.sess.client.Post(wl.Errorf(rb.res, uint32(wl.DisplayErrorInvalidObject), "%v: %v supports version %v, not %v", rb.res, g.inter, g.version, id.Version))
		return
	}
	g.bind(rb.sess, id)
}

// sessionCompositor handles wl_compositor requests.
type sessionCompositor session

func (sc *sessionCompositor) CreateSurface(res *wl.Surface) {
	sess := (*session)(sc)
	sess.surfaces[res] = newSurface(sess, res)
}

func (sc *sessionCompositor) CreateRegion(r *wl.Region) {}

// sessionSubcompositor handles wl_subcompositor requests.
type sessionSubcompositor session

func (sc *sessionSubcompositor) GetSubsurface(res *wl.Subsurface, surfaceRes, parentRes *wl.Surface) {
	sess := (*session)(sc)
	s := sess.lookup(surfaceRes)
	parent := sess.lookup(parentRes)
	if s == nil || parent == nil {
		return
	}
	if !s.roleAllowed(roleSubsurface) || s.sub != nil {
		sess.client.Post(wl.Errorf(res, uint32(wl.SubcompositorErrorBadSurface), "%v: %v already has the %v role", res, surfaceRes, s.role))
		return
	}
	for p := parent; p != nil; {
		if p == s {
			sess.client.Post(wl.Errorf(res, uint32(wl.SubcompositorErrorBadParent), "%v: %v is a descendant of %v", res, parentRes, surfaceRes))
			return
		}
		if p.sub == nil {
			break
		}
		p = p.sub.parent
	}
	newSubsurface(res, s, parent)
}

func (sc *sessionSubcompositor) Destroy() {}

// seatBinding handles wl_seat requests for one bound seat resource.
type seatBinding struct {
	sess *session
	res  *wl.Seat
}

func (sb *seatBinding) GetPointer(p *wl.Pointer) {
	sess := sb.sess
	sess.pointers = append(sess.pointers, p)
	p.Listener = &pointerBinding{sess: sess, res: p}
	sess.comp.seat.pointerBound(sess, p)
}

func (sb *seatBinding) GetKeyboard(k *wl.Keyboard) {
	sess := sb.sess
	sess.keyboards = append(sess.keyboards, k)
	k.Listener = &keyboardBinding{sess: sess, res: k}
	sess.comp.seat.keyboardBound(sess, k)
}

func (sb *seatBinding) GetTouch(t *wl.Touch) {
	sess := sb.sess
	sess.touches = append(sess.touches, t)
	t.Listener = &touchBinding{sess: sess, res: t}
}

func (sb *seatBinding) Release() {
	sb.sess.seats = xslices.Remove(sb.sess.seats, sb.res)
}

type pointerBinding struct {
	sess *session
	res  *wl.Pointer
}

func (pb *pointerBinding) SetCursor(serial uint32, surfaceRes *wl.Surface, hotspotX, hotspotY int32) {
	pb.sess.comp.seat.setCursor(pb.sess, pb.res, serial, surfaceRes, image.Pt(int(hotspotX), int(hotspotY)))
}

func (pb *pointerBinding) Release() {
	pb.sess.pointers = xslices.Remove(pb.sess.pointers, pb.res)
}

type keyboardBinding struct {
	sess *session
	res  *wl.Keyboard
}

func (kb *keyboardBinding) Release() {
	kb.sess.keyboards = xslices.Remove(kb.sess.keyboards, kb.res)
}

type touchBinding struct {
	sess *session
	res  *wl.Touch
}

func (tb *touchBinding) Release() {
	tb.sess.touches = xslices.Remove(tb.sess.touches, tb.res)
}

// wmBaseBinding handles xdg_wm_base requests for one bound resource.
// alive counts the xdg surfaces created through it that still exist.
type wmBaseBinding struct {
	sess  *session
	res   *xdg.WmBase
	alive int
}

func (wb *wmBaseBinding) Destroy() {
	if wb.alive > 0 {
		wb.sess.client.Post(wl.Errorf(wb.res, uint32(xdg.WmBaseErrorDefunctSurfaces), "%v destroyed with %v xdg surfaces alive", wb.res, wb.alive))
	}
}

func (wb *wmBaseBinding) CreatePositioner(p *xdg.Positioner) {}

func (wb *wmBaseBinding) GetXdgSurface(res *xdg.Surface, surfaceRes *wl.Surface) {
	sess := wb.sess
	s := sess.lookup(surfaceRes)
	if s == nil {
		return
	}
	if s.xdg != nil || !s.roleAllowed(roleToplevel) && !s.roleAllowed(rolePopup) {
		sess.client.Post(wl.Errorf(wb.res, uint32(xdg.WmBaseErrorRole), "%v: %v already has the %v role", wb.res, surfaceRes, s.role))
		return
	}
	if s.hasContent() {
		sess.client.Post(wl.Errorf(res, uint32(xdg.SurfaceErrorUnconfiguredBuffer), "%v: %v has a buffer before its first configure", res, surfaceRes))
		return
	}
	newXdgSurface(sess, wb, res, s)
}

func (wb *wmBaseBinding) Pong(serial uint32) {}

// layerShellBinding handles zwlr_layer_shell_v1 requests.
type layerShellBinding struct {
	sess *session
	res  *layer.Shell
}

func (lb *layerShellBinding) GetLayerSurface(res *layer.Surface, surfaceRes *wl.Surface, outputRes *wl.Output, l layer.Layer, namespace string) {
	sess := lb.sess
	s := sess.lookup(surfaceRes)
	if s == nil {
		return
	}
	if !s.roleAllowed(roleLayer) || s.lsurf != nil {
		sess.client.Post(wl.Errorf(lb.res, uint32(layer.ShellErrorRole), "%v: %v already has the %v role", lb.res, surfaceRes, s.role))
		return
	}
	if s.hasContent() {
		sess.client.Post(wl.Errorf(lb.res, uint32(layer.ShellErrorAlreadyConstructed), "%v: %v has a buffer before its first configure", lb.res, surfaceRes))
		return
	}
	newLayerSurface(sess, res, s, sess.outputFor(outputRes), l, namespace)
}

func (lb *layerShellBinding) Destroy() {}

// primaryBinding handles zwp_primary_selection_device_manager_v1
// requests.
type primaryBinding struct {
	sess *session
	res  *primary.DeviceManager
}

func (pb *primaryBinding) CreateSource(src *primary.Source) {
	src.Listener = &selectionSource{sess: pb.sess, res: src}
}

func (pb *primaryBinding) GetDevice(res *primary.Device, seatRes *wl.Seat) {
	sess := pb.sess
	d := &primaryDevice{sess: sess, res: res}
	res.Listener = d
	sess.devices = append(sess.devices, d)
	sess.comp.seat.deviceBound(sess, d)
}

func (pb *primaryBinding) Destroy() {}
