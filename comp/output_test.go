package comp_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfufuz1/NovaDE-sub008/backend"
	"github.com/tfufuz1/NovaDE-sub008/internal/wlclient"
)

func bindOutputs(t *testing.T, tc *wlclient.Client) map[string]*wlclient.Output {
	t.Helper()
	reg := tc.Display().GetRegistry()
	roundTrip(t, tc)
	outs := reg.BindOutputs()
	roundTrip(t, tc)
	byName := make(map[string]*wlclient.Output, len(outs))
	for _, o := range outs {
		require.Greater(t, o.Dones, 0, "output description incomplete")
		byName[o.Name] = o
	}
	return byName
}

func TestOutputDescription(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)

	outs := bindOutputs(t, tc)
	require.Len(t, outs, 1)
	o, ok := outs["HEADLESS-1"]
	require.True(t, ok, "default output not advertised by name")

	assert.Equal(t, int32(0), o.X)
	assert.Equal(t, int32(0), o.Y)
	assert.Equal(t, "novawc", o.Maker)
	assert.Equal(t, "HEADLESS-1", o.Model)
	assert.Equal(t, int32(1920), o.Width)
	assert.Equal(t, int32(1080), o.Height)
	assert.Equal(t, int32(60000), o.Refresh)
	assert.Equal(t, int32(1), o.Scale)
	assert.Equal(t, "novawc HEADLESS-1 output", o.Description)
}

func TestOutputPlacement(t *testing.T) {
	e := startComp(t,
		backend.OutputConfig{Name: "LEFT", Width: 1920, Height: 1080},
		backend.OutputConfig{Name: "RIGHT", Width: 1280, Height: 720},
	)
	tc := e.dial(t)
	a := bindApp(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)

	outs := bindOutputs(t, tc)
	require.Len(t, outs, 2)
	left, right := outs["LEFT"], outs["RIGHT"]
	require.NotNil(t, left)
	require.NotNil(t, right)

	// Outputs line up left to right in creation order.
	assert.Equal(t, int32(0), left.X)
	assert.Equal(t, int32(1920), right.X)
	assert.Equal(t, int32(0), right.Y)
	assert.Equal(t, int32(1280), right.Width)
	assert.Equal(t, int32(720), right.Height)

	// The pointer starts on the first output, so the first window
	// maps there.
	w1 := mapWindow(t, a, 800, 600)
	require.Equal(t, []uint32{left.ID()}, w1.surf.Entered)

	motion(e, 960, 540)
	waitFor(t, tc, func() bool { return len(ptr.Enters) > 0 }, "pointer enter")
	motion(e, 1540, -140)
	waitFor(t, tc, func() bool { return len(ptr.Leaves) > 0 }, "pointer on the second output")

	// With the pointer moved, new windows prefer the second output:
	// bounds shrink to its size and the surface enters only it.
	w2 := mapWindow(t, a, 800, 600)
	assert.Equal(t, int32(1280), w2.tl.BoundsW)
	assert.Equal(t, int32(720), w2.tl.BoundsH)
	assert.Equal(t, []uint32{right.ID()}, w2.surf.Entered)
}

func TestOutputRemoval(t *testing.T) {
	e := startComp(t,
		backend.OutputConfig{Name: "LEFT", Width: 1920, Height: 1080},
		backend.OutputConfig{Name: "RIGHT", Width: 1280, Height: 720},
	)
	tc := e.dial(t)
	a := bindApp(t, tc)
	shell := bindLayerShell(t, tc)
	ptr := a.seat.GetPointer()
	roundTrip(t, tc)

	outs := bindOutputs(t, tc)
	left, right := outs["LEFT"], outs["RIGHT"]
	require.NotNil(t, left)
	require.NotNil(t, right)

	// A bar pinned to the second output sizes against it.
	lsurf := a.comp.CreateSurface()
	ls := shell.GetLayerSurface(lsurf, right, wlclient.LayerTop, "bar")
	ls.SetSize(0, 24)
	ls.SetAnchor(wlclient.AnchorTop | wlclient.AnchorLeft | wlclient.AnchorRight)
	lsurf.Commit()
	roundTrip(t, tc)

	cfg, ok := ls.LastConfigure()
	require.True(t, ok, "no layer configure")
	assert.Equal(t, uint32(1280), cfg.Width)
	ls.AckConfigure(cfg.Serial)
	buf, pix, err := a.shm.CreateARGBBuffer(int32(cfg.Width), int32(cfg.Height))
	require.NoError(t, err)
	fill(pix, 0x20, 0x20, 0x20, 0xFF)
	lsurf.Attach(buf, 0, 0)
	lsurf.Damage(0, 0, int32(cfg.Width), int32(cfg.Height))
	lsurf.Commit()
	roundTrip(t, tc)

	// Walk the pointer onto the second output and map a window there.
	w1 := mapWindow(t, a, 400, 300)
	motion(e, 960, 540)
	waitFor(t, tc, func() bool { return len(ptr.Enters) > 0 }, "pointer enter")
	motion(e, 1540, -140)
	waitFor(t, tc, func() bool { return len(ptr.Leaves) > 0 }, "pointer on the second output")

	w2 := mapWindow(t, a, 800, 600)
	require.Equal(t, []uint32{right.ID()}, w2.surf.Entered)

	// Unplug it. The bar closes, the window's surface leaves, and
	// the global stops being advertised.
	e.backend.Inject(backend.OutputRemoved{Output: e.backend.output(1)})
	waitFor(t, tc, func() bool { return ls.Closed }, "layer surface closed")
	waitFor(t, tc, func() bool { return slices.Contains(w2.surf.Left, right.ID()) }, "surface left the removed output")

	// The first output's window is untouched.
	assert.Equal(t, []uint32{left.ID()}, w1.surf.Entered)
	assert.Empty(t, w1.surf.Left)

	reg := tc.Display().GetRegistry()
	roundTrip(t, tc)
	n := 0
	for _, g := range reg.Globals() {
		if g.Interface == "wl_output" {
			n++
		}
	}
	assert.Equal(t, 1, n, "removed output still advertised")
}
