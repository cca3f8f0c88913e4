package comp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfufuz1/NovaDE-sub008/foreign"
	"github.com/tfufuz1/NovaDE-sub008/internal/wlclient"
	"github.com/tfufuz1/NovaDE-sub008/pointer"
)

// foreignByTitle finds the announced toplevel carrying title.
func foreignByTitle(t *testing.T, fm *wlclient.ForeignManager, title string) *wlclient.ForeignToplevel {
	t.Helper()
	for _, h := range fm.Toplevels {
		if h.Title() == title {
			return h
		}
	}
	t.Fatalf("no foreign toplevel titled %q", title)
	return nil
}

// ackLatest acks the window's newest configure and commits, the way a
// live client tracks activation.
func ackLatest(t *testing.T, w *win) {
	t.Helper()
	serial, ok := w.xs.LastConfigure()
	require.True(t, ok, "no configure to ack")
	w.xs.AckConfigure(serial)
	w.surf.Commit()
}

func TestForeignAnnounce(t *testing.T) {
	e := startComp(t)

	tcA := e.dial(t)
	a := bindApp(t, tcA)
	w1 := mapWindow(t, a, 800, 600)
	w1.tl.SetTitle("alpha")
	w1.tl.SetAppID("org.example.alpha")
	w2 := mapWindow(t, a, 400, 300)
	w2.tl.SetTitle("beta")
	w2.tl.SetAppID("org.example.beta")
	roundTrip(t, tcA)

	// A late manager gets the whole stack replayed, one done per
	// handle.
	tcB := e.dial(t)
	regB := tcB.Display().GetRegistry()
	roundTrip(t, tcB)
	outsB := regB.BindOutputs()
	require.Len(t, outsB, 1)
	fm := regB.BindForeignManager()
	require.NotNil(t, fm, "foreign toplevel manager not advertised")
	roundTrip(t, tcB)

	require.Len(t, fm.Toplevels, 2)
	alpha, beta := fm.Toplevels[0], fm.Toplevels[1]
	assert.Equal(t, "alpha", alpha.Title())
	assert.Equal(t, "org.example.alpha", alpha.AppID())
	assert.Equal(t, "beta", beta.Title())
	assert.Equal(t, "org.example.beta", beta.AppID())
	assert.Equal(t, 1, alpha.Dones)
	assert.Equal(t, 1, beta.Dones)

	// Only the focused window reads as activated, and both report
	// the output they are on.
	assert.False(t, alpha.HasState(uint32(foreign.HandleStateActivated)))
	assert.True(t, beta.HasState(uint32(foreign.HandleStateActivated)))
	assert.Equal(t, []uint32{outsB[0].ID()}, alpha.Entered)
	assert.Equal(t, []uint32{outsB[0].ID()}, beta.Entered)
}

func TestForeignPropertyUpdates(t *testing.T) {
	e := startComp(t)

	tcA := e.dial(t)
	a := bindApp(t, tcA)
	w := mapWindow(t, a, 800, 600)

	tcB := e.dial(t)
	regB := tcB.Display().GetRegistry()
	roundTrip(t, tcB)
	fm := regB.BindForeignManager()
	require.NotNil(t, fm)
	roundTrip(t, tcB)
	require.Len(t, fm.Toplevels, 1)
	h := fm.Toplevels[0]
	require.Equal(t, 1, h.Dones)
	require.True(t, h.HasState(uint32(foreign.HandleStateActivated)))

	w.tl.SetTitle("work")
	roundTrip(t, tcA)
	waitFor(t, tcB, func() bool { return h.Title() == "work" }, "title update")
	assert.Equal(t, 2, h.Dones)

	w.tl.SetAppID("org.example.work")
	roundTrip(t, tcA)
	waitFor(t, tcB, func() bool { return h.AppID() == "org.example.work" }, "app id update")
	assert.Equal(t, 3, h.Dones)

	// Maximizing is a proposal: no state change reaches managers
	// until the client acks and commits.
	w.tl.SetMaximized()
	roundTrip(t, tcA)
	roundTrip(t, tcB)
	assert.Equal(t, 3, h.Dones, "unacked state leaked to the manager")
	assert.False(t, h.HasState(uint32(foreign.HandleStateMaximized)))

	serial, ok := w.xs.LastConfigure()
	require.True(t, ok)
	w.xs.AckConfigure(serial)
	w.surf.Commit()
	roundTrip(t, tcA)
	waitFor(t, tcB, func() bool { return h.HasState(uint32(foreign.HandleStateMaximized)) }, "maximized state")

	// Minimizing from the manager side takes effect immediately and
	// drops focus.
	h.SetMinimized()
	roundTrip(t, tcB)
	waitFor(t, tcB, func() bool { return h.HasState(uint32(foreign.HandleStateMinimized)) }, "minimized state")
	assert.True(t, h.HasState(uint32(foreign.HandleStateMaximized)))
	assert.False(t, h.HasState(uint32(foreign.HandleStateActivated)))

	h.UnsetMinimized()
	roundTrip(t, tcB)
	waitFor(t, tcB, func() bool {
		return !h.HasState(uint32(foreign.HandleStateMinimized)) && h.HasState(uint32(foreign.HandleStateActivated))
	}, "window restored and refocused")
}

func TestForeignActivateClose(t *testing.T) {
	e := startComp(t)

	tcA := e.dial(t)
	a := bindApp(t, tcA)
	kb := a.seat.GetKeyboard()
	roundTrip(t, tcA)
	w1 := mapWindow(t, a, 800, 600)
	w1.tl.SetTitle("one")
	ackLatest(t, w1)
	w2 := mapWindow(t, a, 400, 300)
	w2.tl.SetTitle("two")
	ackLatest(t, w1)
	ackLatest(t, w2)
	roundTrip(t, tcA)

	tcB := e.dial(t)
	b := bindApp(t, tcB)
	regB := tcB.Display().GetRegistry()
	roundTrip(t, tcB)
	fm := regB.BindForeignManager()
	require.NotNil(t, fm)
	roundTrip(t, tcB)
	require.Len(t, fm.Toplevels, 2)
	hOne := foreignByTitle(t, fm, "one")
	hTwo := foreignByTitle(t, fm, "two")
	require.True(t, hTwo.HasState(uint32(foreign.HandleStateActivated)))

	// Activation through the manager refocuses the window.
	hOne.Activate(b.seat)
	roundTrip(t, tcB)
	waitFor(t, tcA, func() bool {
		n := len(kb.Enters)
		return n > 0 && kb.Enters[n-1].Surface == w1.surf.ID()
	}, "keyboard focus moved to the activated window")

	roundTrip(t, tcA)
	ackLatest(t, w1)
	ackLatest(t, w2)
	roundTrip(t, tcA)
	waitFor(t, tcB, func() bool { return hOne.HasState(uint32(foreign.HandleStateActivated)) }, "activated state on the new focus")
	waitFor(t, tcB, func() bool {
		return len(hTwo.States) >= 2 && !hTwo.HasState(uint32(foreign.HandleStateActivated))
	}, "activated state left the old focus")

	// Close requests surface as xdg close events on the owner.
	hTwo.RequestClose()
	roundTrip(t, tcB)
	waitFor(t, tcA, func() bool { return w2.tl.Closed }, "close event on the toplevel")

	// After stop, the stream finishes and new windows stay unannounced.
	fm.Stop()
	waitFor(t, tcB, func() bool { return fm.Finished }, "manager finished")

	w3 := mapWindow(t, a, 300, 200)
	w3.tl.SetTitle("three")
	roundTrip(t, tcA)
	roundTrip(t, tcB)
	assert.Len(t, fm.Toplevels, 2, "stopped manager saw a new window")
}

func TestForeignParent(t *testing.T) {
	e := startComp(t)

	tcA := e.dial(t)
	a := bindApp(t, tcA)
	kb := a.seat.GetKeyboard()
	roundTrip(t, tcA)

	wp := mapWindow(t, a, 800, 600)
	wp.tl.SetTitle("parent")
	wc := mapWindow(t, a, 400, 300)
	wc.tl.SetTitle("child")
	wc.tl.SetParent(wp.tl)
	roundTrip(t, tcA)

	// Raise the parent so the child sits below it in the stack; the
	// replay still announces the parent first.
	motion(e, 600, 260)
	button(e, pointer.ButtonLeft, true)
	button(e, pointer.ButtonLeft, false)
	waitFor(t, tcA, func() bool {
		n := len(kb.Enters)
		return n > 0 && kb.Enters[n-1].Surface == wp.surf.ID()
	}, "parent focused")

	tcB := e.dial(t)
	regB := tcB.Display().GetRegistry()
	roundTrip(t, tcB)
	fm := regB.BindForeignManager()
	require.NotNil(t, fm)
	roundTrip(t, tcB)
	require.Len(t, fm.Toplevels, 2)

	hParent := foreignByTitle(t, fm, "parent")
	hChild := foreignByTitle(t, fm, "child")
	assert.Same(t, hParent, fm.Toplevels[0], "parent announced before its child")
	assert.Empty(t, hParent.Parents)
	assert.Equal(t, []uint32{hParent.ID()}, hChild.Parents)

	// Unparenting reaches the manager as a nil parent.
	wc.tl.SetParent(nil)
	roundTrip(t, tcA)
	waitFor(t, tcB, func() bool {
		return len(hChild.Parents) == 2 && hChild.Parents[1] == 0
	}, "child unparented")
}
