package comp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfufuz1/NovaDE-sub008/internal/wlclient"
	"github.com/tfufuz1/NovaDE-sub008/layer"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

// mapLayer runs the layer surface handshake: commit empty, ack, then
// commit a buffer of the configured size.
func mapLayer(t *testing.T, a *app, shell *wlclient.LayerShell, band uint32, ns string, setup func(*wlclient.LayerSurface)) (*wlclient.Surface, *wlclient.LayerSurface) {
	t.Helper()
	surf := a.comp.CreateSurface()
	ls := shell.GetLayerSurface(surf, nil, band, ns)
	setup(ls)
	surf.Commit()
	roundTrip(t, a.tc)

	cfg, ok := ls.LastConfigure()
	require.True(t, ok, "no layer configure")
	ls.AckConfigure(cfg.Serial)
	buf, pix, err := a.shm.CreateARGBBuffer(int32(cfg.Width), int32(cfg.Height))
	require.NoError(t, err)
	fill(pix, 0x20, 0x20, 0x20, 0xFF)
	surf.Attach(buf, 0, 0)
	surf.Damage(0, 0, int32(cfg.Width), int32(cfg.Height))
	surf.Commit()
	roundTrip(t, a.tc)
	return surf, ls
}

func bindLayerShell(t *testing.T, tc *wlclient.Client) *wlclient.LayerShell {
	t.Helper()
	reg := tc.Display().GetRegistry()
	roundTrip(t, tc)
	shell := reg.BindLayerShell()
	require.NotNil(t, shell, "layer shell not advertised")
	roundTrip(t, tc)
	return shell
}

func TestLayerPanelReservesEdge(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	shell := bindLayerShell(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)

	// A stretched axis is sized by the compositor.
	panelSurf, ls := mapLayer(t, a, shell, wlclient.LayerTop, "panel", func(ls *wlclient.LayerSurface) {
		ls.SetSize(0, 32)
		ls.SetAnchor(wlclient.AnchorTop | wlclient.AnchorLeft | wlclient.AnchorRight)
		ls.SetExclusiveZone(32)
	})
	cfg, _ := ls.LastConfigure()
	assert.Equal(t, uint32(1920), cfg.Width)
	assert.Equal(t, uint32(32), cfg.Height)

	// New windows center inside the leftover area, below the panel.
	w := mapWindow(t, a, 800, 600)
	motion(e, 960, 556)
	waitFor(t, tc, func() bool { return len(ptr.Enters) > 0 }, "pointer enter")
	enter := ptr.Enters[0]
	assert.Equal(t, w.surf.ID(), enter.Surface)
	assert.Equal(t, wire.FixedInt(400), enter.X)
	assert.Equal(t, wire.FixedInt(300), enter.Y)

	// The panel is hit at the very top of the output.
	motion(e, -460, -540)
	waitFor(t, tc, func() bool {
		n := len(ptr.Enters)
		return n > 0 && ptr.Enters[n-1].Surface == panelSurf.ID()
	}, "pointer over panel")
	enter = ptr.Enters[len(ptr.Enters)-1]
	assert.Equal(t, wire.FixedInt(500), enter.X)
	assert.Equal(t, wire.FixedInt(16), enter.Y)

	// Maximizing respects the reservation; fullscreen does not.
	w.tl.SetMaximized()
	roundTrip(t, tc)
	tcfg := mustLast(t, w.tl)
	assert.Equal(t, int32(1920), tcfg.Width)
	assert.Equal(t, int32(1048), tcfg.Height)

	w.tl.SetFullscreen(nil)
	roundTrip(t, tc)
	tcfg = mustLast(t, w.tl)
	assert.Equal(t, int32(1920), tcfg.Width)
	assert.Equal(t, int32(1080), tcfg.Height)
}

func TestLayerMargins(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	shell := bindLayerShell(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)

	dockSurf, ls := mapLayer(t, a, shell, wlclient.LayerTop, "dock", func(ls *wlclient.LayerSurface) {
		ls.SetSize(0, 40)
		ls.SetAnchor(wlclient.AnchorBottom | wlclient.AnchorLeft | wlclient.AnchorRight)
		ls.SetMargin(0, 10, 4, 10)
		ls.SetExclusiveZone(40)
	})

	// Margins shrink the stretched axis and offset the box.
	cfg, _ := ls.LastConfigure()
	assert.Equal(t, uint32(1900), cfg.Width)
	assert.Equal(t, uint32(40), cfg.Height)

	motion(e, 100, 1050)
	waitFor(t, tc, func() bool { return len(ptr.Enters) > 0 }, "pointer over dock")
	enter := ptr.Enters[0]
	assert.Equal(t, dockSurf.ID(), enter.Surface)
	assert.Equal(t, wire.FixedInt(90), enter.X)
	assert.Equal(t, wire.FixedInt(14), enter.Y)

	// The bottom margin joins the exclusive zone.
	w := mapWindow(t, a, 800, 600)
	w.tl.SetMaximized()
	roundTrip(t, tc)
	tcfg := mustLast(t, w.tl)
	assert.Equal(t, int32(1920), tcfg.Width)
	assert.Equal(t, int32(1036), tcfg.Height)
}

func TestLayerZeroSizeNeedsAnchors(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	shell := bindLayerShell(t, tc)

	surf := a.comp.CreateSurface()
	ls := shell.GetLayerSurface(surf, nil, wlclient.LayerTop, "bad")
	ls.SetSize(0, 32)
	ls.SetAnchor(wlclient.AnchorTop)
	surf.Commit()
	perr := waitError(t, tc)
	assert.Equal(t, uint32(layer.SurfaceErrorInvalidSize), perr.Code)
	assert.Equal(t, ls.ID(), perr.Object)
}

func TestLayerKeyboardInteractivity(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	shell := bindLayerShell(t, tc)
	kb := a.seat.GetKeyboard()
	roundTrip(t, tc)

	w1 := mapWindow(t, a, 800, 600)
	require.True(t, mustLast(t, w1.tl).HasState(wlclient.StateActivated))

	// An exclusive layer steals keyboard focus from the window.
	lockSurf, ls := mapLayer(t, a, shell, wlclient.LayerOverlay, "lock", func(ls *wlclient.LayerSurface) {
		ls.SetSize(400, 300)
		ls.SetKeyboardInteractivity(wlclient.KIExclusive)
	})
	require.NotEmpty(t, kb.Enters)
	assert.Equal(t, lockSurf.ID(), kb.Enters[len(kb.Enters)-1].Surface)
	assert.False(t, mustLast(t, w1.tl).HasState(wlclient.StateActivated))

	// While it holds focus, newly mapped windows do not activate.
	w2 := mapWindow(t, a, 300, 200)
	assert.Len(t, w2.tl.Configures, 1)
	assert.Empty(t, w2.tl.Configures[0].States)
	assert.Equal(t, lockSurf.ID(), kb.Enters[len(kb.Enters)-1].Surface)

	// Dropping interactivity hands focus back to the top window.
	ls.SetKeyboardInteractivity(wlclient.KINone)
	lockSurf.Commit()
	roundTrip(t, tc)
	assert.Equal(t, w2.surf.ID(), kb.Enters[len(kb.Enters)-1].Surface)
	assert.True(t, mustLast(t, w2.tl).HasState(wlclient.StateActivated))
}

func TestLayerPopup(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	shell := bindLayerShell(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)

	_, ls := mapLayer(t, a, shell, wlclient.LayerTop, "panel", func(ls *wlclient.LayerSurface) {
		ls.SetSize(0, 32)
		ls.SetAnchor(wlclient.AnchorTop | wlclient.AnchorLeft | wlclient.AnchorRight)
		ls.SetExclusiveZone(32)
	})

	// A popup created with no xdg parent is adopted by the panel.
	pos := a.wm.CreatePositioner()
	pos.SetSize(150, 100)
	pos.SetAnchorRect(100, 0, 40, 32)
	pos.SetAnchor(2) // bottom
	pos.SetGravity(2)
	surf := a.comp.CreateSurface()
	xs := a.wm.GetXdgSurface(surf)
	pp := xs.GetPopup(nil, pos)
	ls.GetPopup(pp)
	surf.Commit()
	roundTrip(t, tc)

	require.Len(t, pp.Configures, 1)
	assert.Equal(t, wlclient.PopupConfigure{X: 45, Y: 32, Width: 150, Height: 100}, pp.Configures[0])

	completePopup(t, a, surf, xs, pp)
	motion(e, 100, 100)
	waitFor(t, tc, func() bool { return len(ptr.Enters) > 0 }, "pointer over popup")
	enter := ptr.Enters[0]
	assert.Equal(t, surf.ID(), enter.Surface)
	assert.Equal(t, wire.FixedInt(55), enter.X)
	assert.Equal(t, wire.FixedInt(68), enter.Y)
}
