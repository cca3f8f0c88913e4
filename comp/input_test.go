package comp_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfufuz1/NovaDE-sub008/backend"
	"github.com/tfufuz1/NovaDE-sub008/internal/wlclient"
	"github.com/tfufuz1/NovaDE-sub008/pointer"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

func motion(e *env, dx, dy float64) {
	e.backend.Inject(backend.PointerMotion{Time: time.Now(), DX: dx, DY: dy})
}

func button(e *env, b pointer.Button, pressed bool) {
	e.backend.Inject(backend.PointerButton{Time: time.Now(), Button: b, Pressed: pressed})
}

func keyEvent(e *env, code uint32, pressed bool) {
	e.backend.Inject(backend.Key{Time: time.Now(), Code: code, Pressed: pressed})
}

func TestPointerEnterMotionLeave(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)

	// 800×600 centered on the 1920×1080 output sits at (560,240).
	w := mapWindow(t, a, 800, 600)

	motion(e, 960, 540)
	waitFor(t, tc, func() bool { return len(ptr.Enters) > 0 }, "pointer enter")
	enter := ptr.Enters[0]
	assert.Equal(t, w.surf.ID(), enter.Surface)
	assert.Equal(t, wire.FixedInt(400), enter.X)
	assert.Equal(t, wire.FixedInt(300), enter.Y)
	assert.NotZero(t, enter.Serial)

	motion(e, 40, 20)
	waitFor(t, tc, func() bool {
		n := len(ptr.Motions)
		return n > 0 && ptr.Motions[n-1].X == wire.FixedInt(440)
	}, "motion at new position")
	assert.Equal(t, wire.FixedInt(320), ptr.Motions[len(ptr.Motions)-1].Y)
	assert.Greater(t, ptr.Frames, 0)

	// Moving off the window leaves it without entering anything.
	motion(e, 800, 0)
	waitFor(t, tc, func() bool { return len(ptr.Leaves) > 0 }, "pointer leave")
	assert.Equal(t, w.surf.ID(), ptr.Leaves[0].Surface)
	assert.Len(t, ptr.Enters, 1)
}

func TestClickToFocusAndRaise(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	ptr := a.seat.GetPointer()
	kb := a.seat.GetKeyboard()
	roundTrip(t, tc)

	w1 := mapWindow(t, a, 800, 600) // (560,240)-(1360,840)
	w2 := mapWindow(t, a, 400, 300) // (760,390)-(1160,690)

	// The second map moved focus and deactivated the first window.
	require.NotEmpty(t, kb.Enters)
	assert.Equal(t, w2.surf.ID(), kb.Enters[len(kb.Enters)-1].Surface)
	cfg, ok := w1.tl.LastConfigure()
	require.True(t, ok)
	assert.False(t, cfg.HasState(wlclient.StateActivated))

	// Click a spot covered only by the first window.
	motion(e, 600, 260)
	waitFor(t, tc, func() bool {
		n := len(ptr.Enters)
		return n > 0 && ptr.Enters[n-1].Surface == w1.surf.ID()
	}, "pointer over first window")

	button(e, pointer.ButtonLeft, true)
	waitFor(t, tc, func() bool { return len(ptr.Buttons) > 0 }, "button press")
	b := ptr.Buttons[0]
	assert.Equal(t, uint32(pointer.ButtonLeft), b.Button)
	assert.Equal(t, uint32(1), b.State)
	assert.NotZero(t, b.Serial)

	waitFor(t, tc, func() bool {
		n := len(kb.Enters)
		return n > 0 && kb.Enters[n-1].Surface == w1.surf.ID()
	}, "keyboard focus follows click")
	waitFor(t, tc, func() bool {
		c, ok := w1.tl.LastConfigure()
		return ok && c.HasState(wlclient.StateActivated)
	}, "first window reactivated")
	cfg, ok = w2.tl.LastConfigure()
	require.True(t, ok)
	assert.False(t, cfg.HasState(wlclient.StateActivated))
	button(e, pointer.ButtonLeft, false)

	// The click also raised the window: a point under both now
	// belongs to the first one, so no leave happens crossing it.
	leaves := len(ptr.Leaves)
	motion(e, 300, 240) // (900,500), inside both
	waitFor(t, tc, func() bool {
		n := len(ptr.Motions)
		return n > 0 && ptr.Motions[n-1].X == wire.FixedInt(340)
	}, "motion stays on raised window")
	assert.Equal(t, wire.FixedInt(260), ptr.Motions[len(ptr.Motions)-1].Y)
	assert.Len(t, ptr.Leaves, leaves)
}

func TestPointerAxis(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)
	mapWindow(t, a, 800, 600)

	motion(e, 960, 540)
	waitFor(t, tc, func() bool { return len(ptr.Enters) > 0 }, "pointer enter")

	e.backend.Inject(backend.PointerAxis{Time: time.Now(), Steps: 2})
	waitFor(t, tc, func() bool { return len(ptr.Axes) >= 1 }, "vertical axis")
	ax := ptr.Axes[0]
	assert.Equal(t, uint32(0), ax.Axis)
	assert.Equal(t, 30.0, ax.Value.Float(), "two wheel detents")
	require.NotEmpty(t, ptr.AxisSources)
	assert.Equal(t, uint32(0), ptr.AxisSources[0], "wheel source")
	require.NotEmpty(t, ptr.AxisDiscretes)
	assert.Equal(t, int32(2), ptr.AxisDiscretes[0].Discrete)

	e.backend.Inject(backend.PointerAxis{Time: time.Now(), Horizontal: true, Steps: -1})
	waitFor(t, tc, func() bool { return len(ptr.Axes) >= 2 }, "horizontal axis")
	ax = ptr.Axes[1]
	assert.Equal(t, uint32(1), ax.Axis)
	assert.Equal(t, -15.0, ax.Value.Float())
	assert.Equal(t, int32(-1), ptr.AxisDiscretes[1].Discrete)
	assert.Equal(t, uint32(1), ptr.AxisDiscretes[1].Axis)
}

func TestKeyboardKeysAndModifiers(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	kb := a.seat.GetKeyboard()
	roundTrip(t, tc)
	mapWindow(t, a, 800, 600)
	base := len(kb.Modifiers) // one sent alongside the focus enter

	keyEvent(e, 30, true) // KEY_A
	waitFor(t, tc, func() bool { return len(kb.Keys) >= 1 }, "key press")
	k := kb.Keys[0]
	assert.Equal(t, uint32(30), k.Key)
	assert.Equal(t, uint32(1), k.State)
	assert.NotZero(t, k.Serial)

	keyEvent(e, 30, false)
	waitFor(t, tc, func() bool { return len(kb.Keys) >= 2 }, "key release")
	assert.Equal(t, uint32(0), kb.Keys[1].State)
	assert.Len(t, kb.Modifiers, base, "plain keys do not touch modifiers")

	keyEvent(e, 42, true) // KEY_LEFTSHIFT
	waitFor(t, tc, func() bool { return len(kb.Modifiers) >= base+1 }, "shift down")
	m := kb.Modifiers[len(kb.Modifiers)-1]
	assert.Equal(t, uint32(1), m.Depressed)
	assert.Equal(t, uint32(0), m.Locked)

	keyEvent(e, 42, false)
	waitFor(t, tc, func() bool { return len(kb.Modifiers) >= base+2 }, "shift up")
	assert.Equal(t, uint32(0), kb.Modifiers[len(kb.Modifiers)-1].Depressed)

	// Caps lock latches on press and stays across its release.
	keyEvent(e, 58, true)
	waitFor(t, tc, func() bool { return len(kb.Modifiers) >= base+3 }, "caps locked")
	assert.Equal(t, uint32(2), kb.Modifiers[len(kb.Modifiers)-1].Locked)

	keyEvent(e, 58, false)
	keyEvent(e, 29, true) // KEY_LEFTCTRL
	waitFor(t, tc, func() bool { return len(kb.Modifiers) >= base+4 }, "ctrl down")
	m = kb.Modifiers[len(kb.Modifiers)-1]
	assert.Equal(t, uint32(4), m.Depressed)
	assert.Equal(t, uint32(2), m.Locked, "caps release does not unlock")
	assert.Len(t, kb.Modifiers, base+4)
}

func TestKeyboardEnterCarriesPressedKeys(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	kb := a.seat.GetKeyboard()
	roundTrip(t, tc)
	mapWindow(t, a, 800, 600)

	keyEvent(e, 30, true)
	waitFor(t, tc, func() bool { return len(kb.Keys) >= 1 }, "key press")

	w2 := mapWindow(t, a, 400, 300)
	enter := kb.Enters[len(kb.Enters)-1]
	assert.Equal(t, w2.surf.ID(), enter.Surface)
	assert.Equal(t, []byte{30, 0, 0, 0}, enter.Keys)
}

func TestInteractiveMove(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)
	w := mapWindow(t, a, 800, 600) // (560,240)-(1360,840)

	motion(e, 960, 540)
	waitFor(t, tc, func() bool { return len(ptr.Enters) > 0 }, "pointer enter")
	button(e, pointer.ButtonLeft, true)
	waitFor(t, tc, func() bool { return len(ptr.Buttons) >= 1 }, "press")
	serial := ptr.Buttons[0].Serial

	w.tl.Move(a.seat, serial)
	roundTrip(t, tc)

	// Grab motion is consumed; the release still arrives.
	motion(e, 100, 50)
	button(e, pointer.ButtonLeft, false)
	waitFor(t, tc, func() bool { return len(ptr.Buttons) >= 2 }, "release")
	assert.Equal(t, uint32(0), ptr.Buttons[1].State)

	// The window followed the drag: the pointer at (1061,591) is
	// now local (401,301) instead of (501,351).
	motion(e, 1, 1)
	waitFor(t, tc, func() bool {
		n := len(ptr.Motions)
		return n > 0 && ptr.Motions[n-1].X == wire.FixedInt(401)
	}, "motion over moved window")
	assert.Equal(t, wire.FixedInt(301), ptr.Motions[len(ptr.Motions)-1].Y)
	assert.Empty(t, ptr.Leaves, "drag never unfocused the window")

	// A move quoting a made-up serial does not start a grab.
	button(e, pointer.ButtonLeft, true)
	waitFor(t, tc, func() bool { return len(ptr.Buttons) >= 3 }, "second press")
	w.tl.Move(a.seat, 0xdeadbeef)
	roundTrip(t, tc)
	motion(e, 10, 10)
	waitFor(t, tc, func() bool {
		n := len(ptr.Motions)
		return n > 0 && ptr.Motions[n-1].X == wire.FixedInt(411)
	}, "motion not consumed by bogus grab")
	button(e, pointer.ButtonLeft, false)
}

func TestInteractiveResize(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)
	w := mapWindow(t, a, 800, 600)

	motion(e, 960, 540)
	waitFor(t, tc, func() bool { return len(ptr.Enters) > 0 }, "pointer enter")
	button(e, pointer.ButtonLeft, true)
	waitFor(t, tc, func() bool { return len(ptr.Buttons) >= 1 }, "press")
	serial := ptr.Buttons[0].Serial

	w.tl.Resize(a.seat, serial, wlclient.EdgeBottomRight)
	roundTrip(t, tc)
	cfg, ok := w.tl.LastConfigure()
	require.True(t, ok)
	assert.True(t, cfg.HasState(wlclient.StateResizing))

	motion(e, 100, 50)
	waitFor(t, tc, func() bool {
		c, ok := w.tl.LastConfigure()
		return ok && c.Width == 900 && c.Height == 650
	}, "configure with dragged size")
	assert.True(t, mustLast(t, w.tl).HasState(wlclient.StateResizing))

	// Releasing ends the grab and drops the resizing state.
	button(e, pointer.ButtonLeft, false)
	waitFor(t, tc, func() bool {
		c, ok := w.tl.LastConfigure()
		return ok && !c.HasState(wlclient.StateResizing)
	}, "resize end configure")
	final := mustLast(t, w.tl)
	assert.Equal(t, int32(900), final.Width)
	assert.Equal(t, int32(650), final.Height)
	assert.True(t, final.HasState(wlclient.StateActivated))
}

func mustLast(t *testing.T, tl *wlclient.Toplevel) wlclient.ToplevelConfigure {
	t.Helper()
	cfg, ok := tl.LastConfigure()
	require.True(t, ok)
	return cfg
}

func TestResizeInvalidEdge(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)
	w := mapWindow(t, a, 800, 600)

	motion(e, 960, 540)
	waitFor(t, tc, func() bool { return len(ptr.Enters) > 0 }, "pointer enter")
	button(e, pointer.ButtonLeft, true)
	waitFor(t, tc, func() bool { return len(ptr.Buttons) >= 1 }, "press")

	w.tl.Resize(a.seat, ptr.Buttons[0].Serial, 7)
	perr := waitError(t, tc)
	assert.Equal(t, w.tl.ID(), perr.Object)
	assert.Equal(t, uint32(0), perr.Code, "invalid_resize_edge")
}

func TestTouch(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	touch := a.seat.GetTouch()
	roundTrip(t, tc)
	w := mapWindow(t, a, 800, 600) // (560,240)

	e.backend.Inject(backend.TouchDown{Time: time.Now(), ID: 1, X: 600, Y: 300})
	waitFor(t, tc, func() bool { return len(touch.Downs) >= 1 }, "touch down")
	down := touch.Downs[0]
	assert.Equal(t, w.surf.ID(), down.Surface)
	assert.Equal(t, int32(1), down.TouchID)
	assert.Equal(t, wire.FixedInt(40), down.X)
	assert.Equal(t, wire.FixedInt(60), down.Y)

	e.backend.Inject(backend.TouchMotion{Time: time.Now(), ID: 1, X: 650, Y: 350})
	waitFor(t, tc, func() bool { return len(touch.Motions) >= 1 }, "touch motion")
	mo := touch.Motions[0]
	assert.Equal(t, wire.FixedInt(90), mo.X)
	assert.Equal(t, wire.FixedInt(110), mo.Y)

	e.backend.Inject(backend.TouchUp{Time: time.Now(), ID: 1})
	waitFor(t, tc, func() bool { return len(touch.Ups) >= 1 }, "touch up")
	assert.Equal(t, int32(1), touch.Ups[0].TouchID)
	assert.GreaterOrEqual(t, touch.Frames, 3)

	// A down outside every surface goes nowhere; the next one on
	// the window shows nothing was queued for the dead point.
	e.backend.Inject(backend.TouchDown{Time: time.Now(), ID: 2, X: 10, Y: 1000})
	e.backend.Inject(backend.TouchDown{Time: time.Now(), ID: 3, X: 600, Y: 300})
	waitFor(t, tc, func() bool { return len(touch.Downs) >= 2 }, "second touch down")
	assert.Equal(t, int32(3), touch.Downs[1].TouchID)
	e.backend.Inject(backend.TouchUp{Time: time.Now(), ID: 3})
}
