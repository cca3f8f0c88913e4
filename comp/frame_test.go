package comp_test

import (
	"image"
	"image/color"
	"testing"

	"deedles.dev/ximage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/colornames"
)

// fbColor is what a framebuffer pixel reads as once c has been
// written to it.
func fbColor(c color.Color) color.Color {
	px := &ximage.FormatImage{
		Format: ximage.ARGB8888,
		Rect:   image.Rect(0, 0, 1, 1),
		Pix:    make([]byte, 4),
	}
	px.Set(0, 0, c)
	return px.At(0, 0)
}

func TestFrameCallback(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	w := mapWindow(t, a, 800, 600)

	var ts1, ts2 uint32
	cb := w.surf.Frame()
	cb.Done = func(data uint32) { ts1 = data }
	w.surf.Damage(0, 0, 800, 600)
	w.surf.Commit()
	roundTrip(t, tc)
	waitFor(t, tc, func() bool { return cb.Fired }, "frame callback after damage")

	// A commit carrying only a callback still gets a frame event,
	// no new buffer or damage required.
	cb2 := w.surf.Frame()
	cb2.Done = func(data uint32) { ts2 = data }
	w.surf.Commit()
	roundTrip(t, tc)
	waitFor(t, tc, func() bool { return cb2.Fired }, "frame callback without damage")

	assert.GreaterOrEqual(t, ts2, ts1, "frame timestamps go forward")
}

func TestRenderedContent(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	w := mapWindow(t, a, 800, 600)

	red, rpix, err := a.shm.CreateARGBBuffer(800, 600)
	require.NoError(t, err)
	fill(rpix, 0xFF, 0x00, 0x00, 0xFF)
	cb := w.surf.Frame()
	w.surf.Attach(red, 0, 0)
	w.surf.Damage(0, 0, 800, 600)
	w.surf.Commit()
	roundTrip(t, tc)
	waitFor(t, tc, func() bool { return cb.Fired }, "frame showing the red buffer")

	e.stop()
	out := e.backend.output(0)
	assert.GreaterOrEqual(t, out.Frames(), uint64(1))

	// The window sits centered at (560,240); its middle shows the
	// client pixels and the rest of the output shows the wallpaper
	// color. The pointer idles near the origin, so stay away from
	// the top-left corner where the cursor is drawn.
	fb := out.Framebuffer()
	assert.Equal(t, fbColor(color.RGBA{R: 0xFF, A: 0xFF}), fb.At(960, 540), "window content")
	assert.Equal(t, fbColor(colornames.Darkslategray), fb.At(1900, 1000), "background")
}

func TestNoDamageNoPresent(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	w := mapWindow(t, a, 800, 600)

	red, rpix, err := a.shm.CreateARGBBuffer(800, 600)
	require.NoError(t, err)
	fill(rpix, 0xFF, 0x00, 0x00, 0xFF)
	cb := w.surf.Frame()
	w.surf.Attach(red, 0, 0)
	w.surf.Damage(0, 0, 800, 600)
	w.surf.Commit()
	roundTrip(t, tc)
	waitFor(t, tc, func() bool { return cb.Fired }, "frame showing the red buffer")

	// Attach new content but report no damage. The frame callback
	// comes around, but nothing is composited.
	blue, bpix, err := a.shm.CreateARGBBuffer(800, 600)
	require.NoError(t, err)
	fill(bpix, 0x00, 0x00, 0xFF, 0xFF)
	cb2 := w.surf.Frame()
	w.surf.Attach(blue, 0, 0)
	w.surf.Commit()
	roundTrip(t, tc)
	waitFor(t, tc, func() bool { return cb2.Fired }, "frame after the undamaged commit")

	e.stop()
	fb := e.backend.output(0).Framebuffer()
	assert.Equal(t, fbColor(color.RGBA{R: 0xFF, A: 0xFF}), fb.At(960, 540),
		"undamaged commit did not reach the screen")
}
