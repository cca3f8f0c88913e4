package comp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfufuz1/NovaDE-sub008/internal/wlclient"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
)

func bindSub(t *testing.T, tc *wlclient.Client) *wlclient.Subcompositor {
	t.Helper()
	reg := tc.Display().GetRegistry()
	roundTrip(t, tc)
	sc := reg.BindSubcompositor()
	require.NotNil(t, sc, "wl_subcompositor not advertised")
	roundTrip(t, tc)
	return sc
}

// childSurface gives a fresh surface the subsurface role under
// parent and commits a filled w×h buffer to it. Subsurfaces start in
// synchronized mode, so the content waits for the parent's commit.
func childSurface(t *testing.T, a *app, sc *wlclient.Subcompositor, parent *wlclient.Surface, w, h int32) (*wlclient.Surface, *wlclient.Subsurface) {
	t.Helper()
	surf := a.comp.CreateSurface()
	ss := sc.GetSubsurface(surf, parent)
	buf, pix, err := a.shm.CreateARGBBuffer(w, h)
	require.NoError(t, err)
	fill(pix, 0xFF, 0xFF, 0xFF, 0xFF)
	surf.Attach(buf, 0, 0)
	surf.Damage(0, 0, w, h)
	surf.Commit()
	return surf, ss
}

// probe re-evaluates pointer focus without moving the pointer.
func probe(e *env) { motion(e, 0, 0) }

func lastEnter(t *testing.T, ptr *wlclient.Pointer) wlclient.PointerEnter {
	t.Helper()
	require.NotEmpty(t, ptr.Enters)
	return ptr.Enters[len(ptr.Enters)-1]
}

func TestSubsurfaceSyncCommit(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	sc := bindSub(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)

	// 800×600 centered on the 1920×1080 output sits at (560,240).
	w := mapWindow(t, a, 800, 600)
	child, ss := childSurface(t, a, sc, w.surf, 100, 100)
	roundTrip(t, tc)

	// The child's commit is parked, so the pointer still lands on
	// the parent where the child is about to appear.
	motion(e, 610, 290)
	waitFor(t, tc, func() bool { return len(ptr.Enters) >= 1 })
	ev := lastEnter(t, ptr)
	assert.Equal(t, w.surf.ID(), ev.Surface)
	assert.Equal(t, 50, ev.X.Int())
	assert.Equal(t, 50, ev.Y.Int())

	w.surf.Commit()
	roundTrip(t, tc)
	probe(e)
	waitFor(t, tc, func() bool { return len(ptr.Enters) >= 2 })
	ev = lastEnter(t, ptr)
	assert.Equal(t, child.ID(), ev.Surface)
	assert.Equal(t, 50, ev.X.Int())
	assert.Equal(t, 50, ev.Y.Int())

	// set_position waits for the parent commit too.
	ss.SetPosition(200, 150)
	w.surf.Commit()
	roundTrip(t, tc)
	probe(e)
	waitFor(t, tc, func() bool { return len(ptr.Enters) >= 3 })
	ev = lastEnter(t, ptr)
	assert.Equal(t, w.surf.ID(), ev.Surface, "child should have moved out from under the pointer")
	assert.Equal(t, 50, ev.X.Int())
	assert.Equal(t, 50, ev.Y.Int())

	motion(e, 200, 150)
	waitFor(t, tc, func() bool { return len(ptr.Enters) >= 4 })
	ev = lastEnter(t, ptr)
	assert.Equal(t, child.ID(), ev.Surface)
	assert.Equal(t, 50, ev.X.Int())
	assert.Equal(t, 50, ev.Y.Int())
}

func TestSubsurfaceDesync(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	sc := bindSub(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)

	w := mapWindow(t, a, 800, 600)
	child, ss := childSurface(t, a, sc, w.surf, 100, 100)
	w.surf.Commit()
	roundTrip(t, tc)

	motion(e, 610, 290)
	waitFor(t, tc, func() bool { return len(ptr.Enters) >= 1 })
	require.Equal(t, child.ID(), lastEnter(t, ptr).Surface)

	// Desynchronized commits apply without the parent. Growing the
	// child to 150×100 puts (685,290) inside it.
	ss.SetDesync()
	buf, pix, err := a.shm.CreateARGBBuffer(150, 100)
	require.NoError(t, err)
	fill(pix, 0, 0xFF, 0, 0xFF)
	child.Attach(buf, 0, 0)
	child.Damage(0, 0, 150, 100)
	child.Commit()
	roundTrip(t, tc)

	nm := len(ptr.Motions)
	motion(e, 75, 0)
	waitFor(t, tc, func() bool { return len(ptr.Motions) > nm })
	m := ptr.Motions[len(ptr.Motions)-1]
	assert.Equal(t, 125, m.X.Int())
	assert.Equal(t, 50, m.Y.Int())
	require.Len(t, ptr.Enters, 1, "pointer should have stayed on the child")

	// set_sync re-arms the parking: shrinking back to 100×100 does
	// nothing until the parent commits.
	ss.SetSync()
	buf2, pix2, err := a.shm.CreateARGBBuffer(100, 100)
	require.NoError(t, err)
	fill(pix2, 0xFF, 0xFF, 0xFF, 0xFF)
	child.Attach(buf2, 0, 0)
	child.Damage(0, 0, 100, 100)
	child.Commit()
	roundTrip(t, tc)

	nm = len(ptr.Motions)
	probe(e)
	waitFor(t, tc, func() bool { return len(ptr.Motions) > nm })
	require.Len(t, ptr.Enters, 1, "parked resize should not apply yet")

	w.surf.Commit()
	roundTrip(t, tc)
	probe(e)
	waitFor(t, tc, func() bool { return len(ptr.Enters) >= 2 })
	ev := lastEnter(t, ptr)
	assert.Equal(t, w.surf.ID(), ev.Surface)
	assert.Equal(t, 125, ev.X.Int())
	assert.Equal(t, 50, ev.Y.Int())
}

func TestSubsurfaceStacking(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	sc := bindSub(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)

	// Two 100×100 children, c2 shifted 50px right: both cover
	// (630,290) but only c1 covers (580,290).
	w := mapWindow(t, a, 800, 600)
	c1, ss1 := childSurface(t, a, sc, w.surf, 100, 100)
	c2, ss2 := childSurface(t, a, sc, w.surf, 100, 100)
	ss2.SetPosition(50, 0)
	w.surf.Commit()
	roundTrip(t, tc)

	// Siblings stack above the parent in creation order.
	motion(e, 630, 290)
	waitFor(t, tc, func() bool { return len(ptr.Enters) >= 1 })
	ev := lastEnter(t, ptr)
	assert.Equal(t, c2.ID(), ev.Surface)
	assert.Equal(t, 20, ev.X.Int())

	// place_above is pending until the parent commits.
	ss1.PlaceAbove(c2)
	roundTrip(t, tc)
	nm := len(ptr.Motions)
	probe(e)
	waitFor(t, tc, func() bool { return len(ptr.Motions) > nm })
	require.Len(t, ptr.Enters, 1, "reorder applied before the parent commit")

	w.surf.Commit()
	roundTrip(t, tc)
	probe(e)
	waitFor(t, tc, func() bool { return len(ptr.Enters) >= 2 })
	ev = lastEnter(t, ptr)
	assert.Equal(t, c1.ID(), ev.Surface)
	assert.Equal(t, 70, ev.X.Int())

	// place_below accepts the parent itself and sinks the child
	// under it.
	ss1.PlaceBelow(w.surf)
	w.surf.Commit()
	roundTrip(t, tc)
	probe(e)
	waitFor(t, tc, func() bool { return len(ptr.Enters) >= 3 })
	assert.Equal(t, c2.ID(), lastEnter(t, ptr).Surface)

	motion(e, -50, 0)
	waitFor(t, tc, func() bool { return len(ptr.Enters) >= 4 })
	ev = lastEnter(t, ptr)
	assert.Equal(t, w.surf.ID(), ev.Surface, "parent masks the lowered child")
	assert.Equal(t, 20, ev.X.Int())
	assert.Equal(t, 50, ev.Y.Int())
}

func TestSubsurfaceDestroy(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	sc := bindSub(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)

	w := mapWindow(t, a, 800, 600)
	child, ss := childSurface(t, a, sc, w.surf, 100, 100)
	w.surf.Commit()
	roundTrip(t, tc)

	motion(e, 610, 290)
	waitFor(t, tc, func() bool { return len(ptr.Enters) >= 1 })
	require.Equal(t, child.ID(), lastEnter(t, ptr).Surface)

	// Destroying the wl_subsurface unmaps the child at once, no
	// parent commit needed.
	ss.Destroy()
	roundTrip(t, tc)
	probe(e)
	waitFor(t, tc, func() bool { return len(ptr.Enters) >= 2 })
	ev := lastEnter(t, ptr)
	assert.Equal(t, w.surf.ID(), ev.Surface)
	assert.Equal(t, 50, ev.X.Int())
	assert.Equal(t, 50, ev.Y.Int())
}

func TestSubsurfaceParentUnmap(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	sc := bindSub(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)

	// Two windows share (560,240)-(1360,840); the later one is on
	// top and carries the child.
	under := mapWindow(t, a, 800, 600)
	w := mapWindow(t, a, 800, 600)
	child, _ := childSurface(t, a, sc, w.surf, 100, 100)
	w.surf.Commit()
	roundTrip(t, tc)

	motion(e, 610, 290)
	waitFor(t, tc, func() bool { return len(ptr.Enters) >= 1 })
	require.Equal(t, child.ID(), lastEnter(t, ptr).Surface)

	// A null attach unmaps the parent and the child goes down with
	// it, even though the child still has a buffer.
	w.surf.Attach(nil, 0, 0)
	w.surf.Commit()
	roundTrip(t, tc)

	probe(e)
	waitFor(t, tc, func() bool { return len(ptr.Enters) >= 2 })
	ev := lastEnter(t, ptr)
	assert.Equal(t, under.surf.ID(), ev.Surface)
	assert.Equal(t, 50, ev.X.Int())
	assert.Equal(t, 50, ev.Y.Int())
}

func TestSubsurfaceErrors(t *testing.T) {
	e := startComp(t)

	t.Run("role conflict", func(t *testing.T) {
		tc := e.dial(t)
		a := bindApp(t, tc)
		sc := bindSub(t, tc)
		w := mapWindow(t, a, 400, 300)
		parent := a.comp.CreateSurface()
		ss := sc.GetSubsurface(w.surf, parent)
		perr := waitError(t, tc)
		assert.Equal(t, uint32(wl.SubcompositorErrorBadSurface), perr.Code)
		assert.Equal(t, ss.ID(), perr.Object)
	})

	t.Run("parent loop", func(t *testing.T) {
		tc := e.dial(t)
		a := bindApp(t, tc)
		sc := bindSub(t, tc)
		s1 := a.comp.CreateSurface()
		s2 := a.comp.CreateSurface()
		sc.GetSubsurface(s1, s2)
		roundTrip(t, tc)
		ss := sc.GetSubsurface(s2, s1)
		perr := waitError(t, tc)
		assert.Equal(t, uint32(wl.SubcompositorErrorBadParent), perr.Code)
		assert.Equal(t, ss.ID(), perr.Object)
	})

	t.Run("reorder against a non-sibling", func(t *testing.T) {
		tc := e.dial(t)
		a := bindApp(t, tc)
		sc := bindSub(t, tc)
		w := mapWindow(t, a, 400, 300)
		_, ss := childSurface(t, a, sc, w.surf, 50, 50)
		stranger := a.comp.CreateSurface()
		ss.PlaceAbove(stranger)
		perr := waitError(t, tc)
		assert.Equal(t, uint32(wl.SubsurfaceErrorBadSurface), perr.Code)
		assert.Equal(t, ss.ID(), perr.Object)
	})
}
