package comp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfufuz1/NovaDE-sub008/internal/wlclient"
	"github.com/tfufuz1/NovaDE-sub008/pointer"
	"github.com/tfufuz1/NovaDE-sub008/wire"
	"github.com/tfufuz1/NovaDE-sub008/xdg"
)

// newPopup creates an xdg_popup for parent and commits it empty so
// the solved placement comes back as its first configure.
func newPopup(t *testing.T, a *app, parent *wlclient.XdgSurface, setup func(*wlclient.Positioner)) (*wlclient.Surface, *wlclient.XdgSurface, *wlclient.Popup) {
	t.Helper()
	pos := a.wm.CreatePositioner()
	setup(pos)
	surf := a.comp.CreateSurface()
	xs := a.wm.GetXdgSurface(surf)
	pp := xs.GetPopup(parent, pos)
	pos.Destroy()
	surf.Commit()
	roundTrip(t, a.tc)
	return surf, xs, pp
}

// completePopup acks the last configure and commits a buffer of the
// configured size, mapping the popup.
func completePopup(t *testing.T, a *app, surf *wlclient.Surface, xs *wlclient.XdgSurface, pp *wlclient.Popup) {
	t.Helper()
	require.NotEmpty(t, pp.Configures, "popup has no configure to ack")
	serial, ok := xs.LastConfigure()
	require.True(t, ok)
	xs.AckConfigure(serial)
	cfg := pp.Configures[len(pp.Configures)-1]
	buf, pix, err := a.shm.CreateARGBBuffer(cfg.Width, cfg.Height)
	require.NoError(t, err)
	fill(pix, 0, 0, 0xFF, 0xFF)
	surf.Attach(buf, 0, 0)
	surf.Damage(0, 0, cfg.Width, cfg.Height)
	surf.Commit()
	roundTrip(t, a.tc)
}

// Placement happens in the parent's geometry space against the
// output the parent sits on. The parent is 800×600 centered on
// 1920×1080, so its geometry origin is (560,240) and the
// positioner's working area runs (-560,-240)-(1360,840).
func TestPopupPlacement(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	w := mapWindow(t, a, 800, 600)

	cases := []struct {
		name  string
		setup func(*wlclient.Positioner)
		want  wlclient.PopupConfigure
	}{
		{
			name: "defaults center on the anchor rect",
			setup: func(p *wlclient.Positioner) {
				p.SetSize(200, 150)
				p.SetAnchorRect(0, 0, 800, 600)
			},
			want: wlclient.PopupConfigure{X: 300, Y: 225, Width: 200, Height: 150},
		},
		{
			name: "anchor and gravity extend from a corner",
			setup: func(p *wlclient.Positioner) {
				p.SetSize(300, 200)
				p.SetAnchorRect(700, 500, 100, 100)
				p.SetAnchor(uint32(xdg.AnchorBottomRight))
				p.SetGravity(uint32(xdg.GravityBottomRight))
			},
			want: wlclient.PopupConfigure{X: 800, Y: 600, Width: 300, Height: 200},
		},
		{
			name: "flip swaps a constrained side",
			setup: func(p *wlclient.Positioner) {
				p.SetSize(600, 100)
				p.SetAnchorRect(790, 0, 10, 10)
				p.SetAnchor(uint32(xdg.AnchorRight))
				p.SetGravity(uint32(xdg.GravityRight))
				p.SetConstraintAdjustment(uint32(xdg.ConstraintAdjustmentFlipX))
			},
			want: wlclient.PopupConfigure{X: 190, Y: -45, Width: 600, Height: 100},
		},
		{
			name: "slide pushes back onto the output",
			setup: func(p *wlclient.Positioner) {
				p.SetSize(700, 100)
				p.SetAnchorRect(0, 0, 10, 10)
				p.SetAnchor(uint32(xdg.AnchorLeft))
				p.SetGravity(uint32(xdg.GravityLeft))
				p.SetConstraintAdjustment(uint32(xdg.ConstraintAdjustmentSlideX))
			},
			want: wlclient.PopupConfigure{X: -560, Y: -45, Width: 700, Height: 100},
		},
		{
			name: "resize clamps to the output",
			setup: func(p *wlclient.Positioner) {
				p.SetSize(200, 2000)
				p.SetAnchorRect(0, 0, 800, 600)
				p.SetConstraintAdjustment(uint32(xdg.ConstraintAdjustmentResizeY))
			},
			want: wlclient.PopupConfigure{X: 300, Y: -240, Width: 200, Height: 1080},
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			surf, xs, pp := newPopup(t, a, w.xs, tt.setup)
			require.Len(t, pp.Configures, 1)
			assert.Equal(t, tt.want, pp.Configures[0])
			pp.Destroy()
			xs.Destroy()
			surf.Destroy()
			roundTrip(t, tc)
			assert.Empty(t, tc.Errors)
		})
	}
}

func TestPopupMapAndInput(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)
	w := mapWindow(t, a, 800, 600)

	surf, xs, pp := newPopup(t, a, w.xs, func(p *wlclient.Positioner) {
		p.SetSize(200, 150)
		p.SetAnchorRect(0, 0, 800, 600)
	})
	completePopup(t, a, surf, xs, pp)

	// The popup sits at parent (560,240) plus placement (300,225)
	// and is hit before the window under it.
	motion(e, 960, 540)
	waitFor(t, tc, func() bool { return len(ptr.Enters) > 0 }, "pointer enter")
	enter := ptr.Enters[0]
	assert.Equal(t, surf.ID(), enter.Surface)
	assert.Equal(t, wire.FixedInt(100), enter.X)
	assert.Equal(t, wire.FixedInt(75), enter.Y)
}

func TestPopupGrabDismiss(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)
	w := mapWindow(t, a, 800, 600)

	motion(e, 960, 540)
	button(e, pointer.ButtonLeft, true)
	button(e, pointer.ButtonLeft, false)
	waitFor(t, tc, func() bool { return len(ptr.Buttons) >= 2 }, "click")
	serial := ptr.Buttons[0].Serial

	surf, xs, pp := newPopup(t, a, w.xs, func(p *wlclient.Positioner) {
		p.SetSize(200, 150)
		p.SetAnchorRect(0, 0, 800, 600)
	})
	pp.Grab(a.seat, serial)
	completePopup(t, a, surf, xs, pp)
	buttons := len(ptr.Buttons)

	// A press outside the grabbing client's surfaces dismisses the
	// popup and is not delivered to anyone.
	motion(e, -860, 460) // (100,1000), empty desktop
	button(e, pointer.ButtonLeft, true)
	waitFor(t, tc, func() bool { return pp.Done }, "popup dismissed")
	button(e, pointer.ButtonLeft, false)
	roundTrip(t, tc)
	assert.Len(t, ptr.Buttons, buttons, "dismissing press was consumed")
}

func TestPopupGrabStaleSerial(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	w := mapWindow(t, a, 800, 600)

	pos := a.wm.CreatePositioner()
	pos.SetSize(200, 150)
	pos.SetAnchorRect(0, 0, 800, 600)
	surf := a.comp.CreateSurface()
	xs := a.wm.GetXdgSurface(surf)
	pp := xs.GetPopup(w.xs, pos)

	// A grab naming a serial the seat never issued dismisses the
	// popup instead of raising a protocol error.
	pp.Grab(a.seat, 0xbadbad)
	surf.Commit()
	roundTrip(t, tc)
	assert.True(t, pp.Done)
	assert.Empty(t, pp.Configures, "dismissed popup is never configured")
	assert.Empty(t, tc.Errors)
}

func TestPopupGrabNeedsGrabbedParent(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)
	w := mapWindow(t, a, 800, 600)

	motion(e, 960, 540)
	button(e, pointer.ButtonLeft, true)
	button(e, pointer.ButtonLeft, false)
	waitFor(t, tc, func() bool { return len(ptr.Buttons) >= 2 }, "click")
	serial := ptr.Buttons[0].Serial

	s1, x1, p1 := newPopup(t, a, w.xs, func(p *wlclient.Positioner) {
		p.SetSize(200, 150)
		p.SetAnchorRect(0, 0, 800, 600)
	})
	completePopup(t, a, s1, x1, p1)

	// The parent popup holds no grab, so a nested grab is invalid.
	_, _, p2 := newPopup(t, a, x1, func(p *wlclient.Positioner) {
		p.SetSize(50, 50)
		p.SetAnchorRect(0, 0, 200, 150)
	})
	p2.Grab(a.seat, serial)
	perr := waitError(t, tc)
	assert.Equal(t, uint32(xdg.PopupErrorInvalidGrab), perr.Code)
	assert.Equal(t, p2.ID(), perr.Object)
}

func TestPopupDestroyOutOfOrder(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	w := mapWindow(t, a, 800, 600)

	s1, x1, p1 := newPopup(t, a, w.xs, func(p *wlclient.Positioner) {
		p.SetSize(200, 150)
		p.SetAnchorRect(0, 0, 800, 600)
	})
	completePopup(t, a, s1, x1, p1)
	s2, x2, p2 := newPopup(t, a, x1, func(p *wlclient.Positioner) {
		p.SetSize(50, 50)
		p.SetAnchorRect(0, 0, 200, 150)
	})
	completePopup(t, a, s2, x2, p2)

	// Destroying the lower popup while one is stacked on it is a
	// wm_base error.
	p1.Destroy()
	perr := waitError(t, tc)
	assert.Equal(t, uint32(xdg.WmBaseErrorNotTheTopmostPopup), perr.Code)
	assert.Equal(t, a.wm.ID(), perr.Object)
}

func TestPopupReposition(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)
	w := mapWindow(t, a, 800, 600)

	surf, xs, pp := newPopup(t, a, w.xs, func(p *wlclient.Positioner) {
		p.SetSize(200, 150)
		p.SetAnchorRect(0, 0, 800, 600)
	})
	completePopup(t, a, surf, xs, pp)

	pos := a.wm.CreatePositioner()
	pos.SetSize(100, 80)
	pos.SetAnchorRect(0, 0, 10, 10)
	pos.SetAnchor(uint32(xdg.AnchorTopLeft))
	pos.SetGravity(uint32(xdg.GravityBottomRight))
	pp.Reposition(pos, 7)
	pos.Destroy()
	roundTrip(t, tc)

	require.GreaterOrEqual(t, len(pp.Configures), 2)
	cfg := pp.Configures[len(pp.Configures)-1]
	assert.Equal(t, wlclient.PopupConfigure{X: 0, Y: 0, Width: 100, Height: 80}, cfg)

	serial, ok := xs.LastConfigure()
	require.True(t, ok)
	xs.AckConfigure(serial)
	buf, pix, err := a.shm.CreateARGBBuffer(100, 80)
	require.NoError(t, err)
	fill(pix, 0, 0xFF, 0, 0xFF)
	surf.Attach(buf, 0, 0)
	surf.Damage(0, 0, 100, 80)
	surf.Commit()
	roundTrip(t, tc)

	// The popup now hangs off the parent's top-left corner.
	motion(e, 570, 250)
	waitFor(t, tc, func() bool { return len(ptr.Enters) > 0 }, "pointer enter")
	enter := ptr.Enters[0]
	assert.Equal(t, surf.ID(), enter.Surface)
	assert.Equal(t, wire.FixedInt(10), enter.X)
	assert.Equal(t, wire.FixedInt(10), enter.Y)
}

func TestPopupIncompletePositioner(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	w := mapWindow(t, a, 800, 600)

	pos := a.wm.CreatePositioner()
	surf := a.comp.CreateSurface()
	xs := a.wm.GetXdgSurface(surf)
	xs.GetPopup(w.xs, pos)
	perr := waitError(t, tc)
	assert.Equal(t, uint32(xdg.WmBaseErrorInvalidPositioner), perr.Code)
	assert.Equal(t, xs.ID(), perr.Object)
}
