package comp_test

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfufuz1/NovaDE-sub008/backend"
	"github.com/tfufuz1/NovaDE-sub008/comp"
	"github.com/tfufuz1/NovaDE-sub008/config"
	"github.com/tfufuz1/NovaDE-sub008/internal/wlclient"
	"github.com/tfufuz1/NovaDE-sub008/render"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/xdg"
)

// testBackend wraps the headless backend so tests can inject input
// events and keep hold of the outputs it creates. The compositor
// consumes the teed channel; the wrapper records OutputAdded on the
// way through.
type testBackend struct {
	h  *backend.Headless
	ch chan backend.Event

	mu   sync.Mutex
	outs []*backend.Output
}

func newTestBackend(t *testing.T, outputs ...backend.OutputConfig) *testBackend {
	t.Helper()
	var opts []backend.Option
	if len(outputs) > 0 {
		opts = append(opts, backend.WithOutputs(outputs))
	}
	b, err := backend.New("headless", opts...)
	require.NoError(t, err)
	return &testBackend{h: b.(*backend.Headless), ch: make(chan backend.Event, 256)}
}

func (b *testBackend) Start(ctx context.Context) error {
	if err := b.h.Start(ctx); err != nil {
		return err
	}
	go func() {
		defer close(b.ch)
		for ev := range b.h.Events() {
			if add, ok := ev.(backend.OutputAdded); ok {
				b.mu.Lock()
				b.outs = append(b.outs, add.Output)
				b.mu.Unlock()
			}
			b.ch <- ev
		}
	}()
	return nil
}

func (b *testBackend) Events() <-chan backend.Event { return b.ch }

func (b *testBackend) Inject(ev backend.Event) { b.h.Inject(ev) }

// output returns the i'th backend output in creation order. Its
// framebuffer and frame count may only be read after env.stop.
func (b *testBackend) output(i int) *backend.Output {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outs[i]
}

// env is one compositor running under test.
type env struct {
	t       *testing.T
	comp    *comp.Compositor
	backend *testBackend
	socket  string

	cancel  context.CancelFunc
	done    chan error
	stopped bool
}

func startComp(t *testing.T, outputs ...backend.OutputConfig) *env {
	t.Helper()
	tb := newTestBackend(t, outputs...)
	cfg := config.Default()
	cfg.Socket = filepath.Join(t.TempDir(), "wl-test")

	c, err := comp.New(comp.Options{
		Config:   cfg,
		Logger:   log.New(io.Discard),
		Backend:  tb,
		Renderer: render.NewSoftware(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	e := &env{t: t, comp: c, backend: tb, socket: cfg.Socket, cancel: cancel, done: make(chan error, 1)}
	go func() { e.done <- c.Run(ctx) }()

	select {
	case <-c.Ready():
	case err := <-e.done:
		cancel()
		t.Fatalf("compositor exited before ready: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("compositor not ready after 5s")
	}

	t.Cleanup(func() {
		e.stop()
		c.Close()
	})
	return e
}

// stop shuts the compositor down and waits for the loop goroutine,
// after which backend state can be read without racing it.
func (e *env) stop() {
	if e.stopped {
		return
	}
	e.stopped = true
	e.cancel()
	select {
	case err := <-e.done:
		assert.NoError(e.t, err)
	case <-time.After(5 * time.Second):
		e.t.Error("compositor did not shut down")
	}
}

func (e *env) dial(t *testing.T) *wlclient.Client {
	t.Helper()
	tc, err := wlclient.Dial(e.socket)
	require.NoError(t, err)
	t.Cleanup(func() { tc.Close() })
	return tc
}

func roundTrip(t *testing.T, tc *wlclient.Client) {
	t.Helper()
	require.NoError(t, tc.RoundTrip())
}

// waitFor pumps tc until cond holds or two seconds pass. Used for
// events that follow backend injections, which have no round-trip
// barrier.
func waitFor(t *testing.T, tc *wlclient.Client, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		tc.PumpFor(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// waitError pumps until the compositor has posted a protocol error.
func waitError(t *testing.T, tc *wlclient.Client) wlclient.PostedError {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(tc.Errors) > 0 {
			return tc.Errors[0]
		}
		tc.PumpFor(10 * time.Millisecond)
	}
	t.Fatal("no protocol error arrived")
	return wlclient.PostedError{}
}

// app bundles the globals a typical client binds.
type app struct {
	tc   *wlclient.Client
	comp *wlclient.Compositor
	shm  *wlclient.Shm
	wm   *wlclient.WmBase
	seat *wlclient.Seat
}

func bindApp(t *testing.T, tc *wlclient.Client) *app {
	t.Helper()
	reg := tc.Display().GetRegistry()
	roundTrip(t, tc)
	a := &app{
		tc:   tc,
		comp: reg.BindCompositor(),
		shm:  reg.BindShm(),
		wm:   reg.BindWmBase(),
		seat: reg.BindSeat(),
	}
	require.NotNil(t, a.comp, "wl_compositor not advertised")
	require.NotNil(t, a.shm, "wl_shm not advertised")
	require.NotNil(t, a.wm, "xdg_wm_base not advertised")
	require.NotNil(t, a.seat, "wl_seat not advertised")
	roundTrip(t, tc)
	return a
}

// win is a toplevel mapped by mapWindow.
type win struct {
	surf *wlclient.Surface
	xs   *wlclient.XdgSurface
	tl   *wlclient.Toplevel
	buf  *wlclient.Buffer
	pix  []byte
}

// fill paints an ARGB buffer a solid color.
func fill(pix []byte, r, g, b, a byte) {
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = b
		pix[i+1] = g
		pix[i+2] = r
		pix[i+3] = a
	}
}

// mapWindow runs the configure handshake for a new toplevel: commit
// empty, ack the initial configure, then attach a w×h buffer and
// commit again.
func mapWindow(t *testing.T, a *app, w, h int32) *win {
	t.Helper()
	surf := a.comp.CreateSurface()
	xs := a.wm.GetXdgSurface(surf)
	tl := xs.GetToplevel()
	surf.Commit()
	roundTrip(t, a.tc)

	serial, ok := xs.LastConfigure()
	require.True(t, ok, "no initial configure")
	xs.AckConfigure(serial)

	buf, pix, err := a.shm.CreateARGBBuffer(w, h)
	require.NoError(t, err)
	fill(pix, 0x80, 0x80, 0x80, 0xFF)
	surf.Attach(buf, 0, 0)
	surf.Damage(0, 0, w, h)
	surf.Commit()
	roundTrip(t, a.tc)
	return &win{surf: surf, xs: xs, tl: tl, buf: buf, pix: pix}
}

func TestMapToplevel(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	kb := a.seat.GetKeyboard()
	roundTrip(t, tc)

	surf := a.comp.CreateSurface()
	xs := a.wm.GetXdgSurface(surf)
	tl := xs.GetToplevel()
	surf.Commit()
	roundTrip(t, tc)

	// The initial configure proposes no size and no states, and is
	// preceded by bounds and capabilities.
	require.Len(t, xs.Configures, 1)
	require.Len(t, tl.Configures, 1)
	first := tl.Configures[0]
	assert.Equal(t, int32(0), first.Width)
	assert.Equal(t, int32(0), first.Height)
	assert.Empty(t, first.States)
	assert.Equal(t, int32(1920), tl.BoundsW)
	assert.Equal(t, int32(1080), tl.BoundsH)
	assert.Equal(t, []uint32{2, 3, 4}, tl.Caps, "maximize, fullscreen, minimize")

	xs.AckConfigure(xs.Configures[0])
	buf, pix, err := a.shm.CreateARGBBuffer(800, 600)
	require.NoError(t, err)
	fill(pix, 0xFF, 0, 0, 0xFF)
	surf.Attach(buf, 0, 0)
	surf.Damage(0, 0, 800, 600)
	surf.Commit()
	roundTrip(t, tc)

	// Mapping focuses the window, which proposes the committed size
	// plus the activated state under a fresh serial.
	require.Len(t, xs.Configures, 2)
	assert.Greater(t, xs.Configures[1], xs.Configures[0], "configure serials increase")
	second := tl.Configures[1]
	assert.Equal(t, int32(800), second.Width)
	assert.Equal(t, int32(600), second.Height)
	assert.True(t, second.HasState(wlclient.StateActivated))
	assert.False(t, second.HasState(wlclient.StateMaximized))

	// Keyboard focus followed the map.
	require.NotEmpty(t, kb.Enters)
	enter := kb.Enters[len(kb.Enters)-1]
	assert.Equal(t, surf.ID(), enter.Surface)
	assert.Empty(t, enter.Keys)
	require.NotEmpty(t, kb.Modifiers)
}

func TestEmptyCommitIdempotent(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)

	surf := a.comp.CreateSurface()
	xs := a.wm.GetXdgSurface(surf)
	xs.GetToplevel()
	surf.Commit()
	roundTrip(t, tc)
	require.Len(t, xs.Configures, 1)

	// Further empty commits before the ack do not restart the
	// handshake or send more configures.
	surf.Commit()
	surf.Commit()
	roundTrip(t, tc)
	assert.Len(t, xs.Configures, 1)
}

func TestConfigureRestartsAfterUnmap(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	kb := a.seat.GetKeyboard()
	roundTrip(t, tc)

	w := mapWindow(t, a, 800, 600)
	seen := len(w.xs.Configures)

	// A null attach commit unmaps the window and drops focus.
	w.surf.Attach(nil, 0, 0)
	w.surf.Commit()
	roundTrip(t, tc)
	require.NotEmpty(t, kb.Leaves)

	// The next empty commit restarts the handshake from scratch.
	w.surf.Commit()
	roundTrip(t, tc)
	require.Len(t, w.xs.Configures, seen+1)
	cfg := w.tl.Configures[len(w.tl.Configures)-1]
	assert.Equal(t, int32(0), cfg.Width)
	assert.Equal(t, int32(0), cfg.Height)
	assert.Empty(t, cfg.States)
	assert.Greater(t, w.xs.Configures[seen], w.xs.Configures[seen-1])
}

func TestAckConfigureValidation(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	w := mapWindow(t, a, 800, 600)

	// Queue two more outstanding configures.
	w.tl.SetMaximized()
	w.tl.SetFullscreen(nil)
	roundTrip(t, tc)
	n := len(w.xs.Configures)
	require.GreaterOrEqual(t, n, 4)
	s3, s4 := w.xs.Configures[n-2], w.xs.Configures[n-1]

	// Acking out of the middle is fine and consumes everything up
	// to and including that serial; acking the rest still works.
	w.xs.AckConfigure(s3)
	w.surf.Commit()
	w.xs.AckConfigure(s4)
	w.surf.Commit()
	roundTrip(t, tc)
	assert.Empty(t, tc.Errors)

	// A serial that was already consumed is a protocol error.
	w.xs.AckConfigure(s3)
	err := waitError(t, tc)
	assert.Equal(t, uint32(xdg.SurfaceErrorInvalidSerial), err.Code)
	assert.Equal(t, w.xs.ID(), err.Object)
}

func TestAckUnknownSerial(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)

	surf := a.comp.CreateSurface()
	xs := a.wm.GetXdgSurface(surf)
	xs.GetToplevel()
	surf.Commit()
	roundTrip(t, tc)

	serial, ok := xs.LastConfigure()
	require.True(t, ok)
	xs.AckConfigure(serial + 12345)
	err := waitError(t, tc)
	assert.Equal(t, uint32(xdg.SurfaceErrorInvalidSerial), err.Code)
}

func TestBufferBeforeConfigureRejected(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)

	surf := a.comp.CreateSurface()
	xs := a.wm.GetXdgSurface(surf)
	xs.GetToplevel()

	buf, _, err := a.shm.CreateARGBBuffer(64, 64)
	require.NoError(t, err)
	surf.Attach(buf, 0, 0)
	surf.Commit()

	perr := waitError(t, tc)
	assert.Equal(t, uint32(xdg.SurfaceErrorUnconfiguredBuffer), perr.Code)
	assert.Equal(t, xs.ID(), perr.Object)
}

func TestDoubleBufferedAttach(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	w := mapWindow(t, a, 200, 200)

	bufB, _, err := a.shm.CreateARGBBuffer(200, 200)
	require.NoError(t, err)
	bufC, _, err := a.shm.CreateARGBBuffer(200, 200)
	require.NoError(t, err)

	// B is attached and then replaced by C before the commit, so
	// the compositor never takes a reference to it.
	w.surf.Attach(bufB, 0, 0)
	w.surf.Attach(bufC, 0, 0)
	w.surf.Damage(0, 0, 200, 200)
	w.surf.Commit()
	roundTrip(t, tc)

	assert.Equal(t, 1, w.buf.Releases, "committed buffer released once replaced")
	assert.Equal(t, 0, bufB.Releases, "pre-commit replacement is never referenced")
	assert.Equal(t, 0, bufC.Releases, "current buffer stays held")

	// Committing the first buffer again releases C in turn.
	w.surf.Attach(w.buf, 0, 0)
	w.surf.Damage(0, 0, 200, 200)
	w.surf.Commit()
	roundTrip(t, tc)
	assert.Equal(t, 1, bufC.Releases)
	assert.Equal(t, 0, bufB.Releases)
}

func TestClientDisconnectCleanup(t *testing.T) {
	e := startComp(t)

	tcA := e.dial(t)
	a := bindApp(t, tcA)
	w := mapWindow(t, a, 800, 600)
	w.tl.SetTitle("going away")
	roundTrip(t, tcA)

	tcB := e.dial(t)
	regB := tcB.Display().GetRegistry()
	roundTrip(t, tcB)
	fm := regB.BindForeignManager()
	require.NotNil(t, fm)
	roundTrip(t, tcB)
	require.Len(t, fm.Toplevels, 1)

	require.NoError(t, tcA.Close())
	waitFor(t, tcB, func() bool { return fm.Toplevels[0].Closed }, "foreign handle closed")

	// The compositor keeps serving other clients afterwards.
	b := bindApp(t, tcB)
	w2 := mapWindow(t, b, 400, 300)
	cfg, ok := w2.tl.LastConfigure()
	require.True(t, ok)
	assert.True(t, cfg.HasState(wlclient.StateActivated))
}

func TestRegistryBindErrors(t *testing.T) {
	e := startComp(t)

	t.Run("unknown name", func(t *testing.T) {
		tc := e.dial(t)
		reg := tc.Display().GetRegistry()
		roundTrip(t, tc)
		reg.Bind(9999, wl.CompositorInterface, 1, &wlclient.Compositor{})
		err := waitError(t, tc)
		assert.Equal(t, uint32(wl.DisplayErrorInvalidObject), err.Code)
	})

	t.Run("interface mismatch", func(t *testing.T) {
		tc := e.dial(t)
		reg := tc.Display().GetRegistry()
		roundTrip(t, tc)
		g, ok := reg.Find(wl.SeatInterface)
		require.True(t, ok)
		reg.Bind(g.Name, wl.CompositorInterface, 1, &wlclient.Compositor{})
		err := waitError(t, tc)
		assert.Equal(t, uint32(wl.DisplayErrorInvalidObject), err.Code)
	})

	t.Run("version too high", func(t *testing.T) {
		tc := e.dial(t)
		reg := tc.Display().GetRegistry()
		roundTrip(t, tc)
		g, ok := reg.Find(wl.CompositorInterface)
		require.True(t, ok)
		reg.Bind(g.Name, wl.CompositorInterface, g.Version+10, &wlclient.Compositor{})
		err := waitError(t, tc)
		assert.Equal(t, uint32(wl.DisplayErrorInvalidObject), err.Code)
	})
}

func TestRoleConflicts(t *testing.T) {
	e := startComp(t)

	t.Run("second xdg surface", func(t *testing.T) {
		tc := e.dial(t)
		a := bindApp(t, tc)
		surf := a.comp.CreateSurface()
		a.wm.GetXdgSurface(surf)
		a.wm.GetXdgSurface(surf)
		err := waitError(t, tc)
		assert.Equal(t, uint32(xdg.WmBaseErrorRole), err.Code)
	})

	t.Run("toplevel then popup", func(t *testing.T) {
		tc := e.dial(t)
		a := bindApp(t, tc)
		surf := a.comp.CreateSurface()
		xs := a.wm.GetXdgSurface(surf)
		xs.GetToplevel()
		pos := a.wm.CreatePositioner()
		pos.SetSize(10, 10)
		pos.SetAnchorRect(0, 0, 1, 1)
		xs.GetPopup(nil, pos)
		err := waitError(t, tc)
		assert.Equal(t, uint32(xdg.SurfaceErrorAlreadyConstructed), err.Code)
	})

	t.Run("ack without role", func(t *testing.T) {
		tc := e.dial(t)
		a := bindApp(t, tc)
		surf := a.comp.CreateSurface()
		xs := a.wm.GetXdgSurface(surf)
		xs.AckConfigure(1)
		err := waitError(t, tc)
		assert.Equal(t, uint32(xdg.SurfaceErrorNotConstructed), err.Code)
	})
}

func TestMaximizeAndFullscreenSizes(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	w := mapWindow(t, a, 800, 600)

	w.tl.SetMaximized()
	roundTrip(t, tc)
	cfg, ok := w.tl.LastConfigure()
	require.True(t, ok)
	assert.Equal(t, int32(1920), cfg.Width)
	assert.Equal(t, int32(1080), cfg.Height)
	assert.True(t, cfg.HasState(wlclient.StateMaximized))
	assert.True(t, cfg.HasState(wlclient.StateActivated))

	w.tl.SetFullscreen(nil)
	roundTrip(t, tc)
	cfg, ok = w.tl.LastConfigure()
	require.True(t, ok)
	assert.Equal(t, int32(1920), cfg.Width)
	assert.Equal(t, int32(1080), cfg.Height)
	assert.True(t, cfg.HasState(wlclient.StateFullscreen))

	// Unsetting both goes back to the floating size.
	w.tl.UnsetFullscreen()
	w.tl.UnsetMaximized()
	roundTrip(t, tc)
	cfg, ok = w.tl.LastConfigure()
	require.True(t, ok)
	assert.Equal(t, int32(800), cfg.Width)
	assert.Equal(t, int32(600), cfg.Height)
	assert.False(t, cfg.HasState(wlclient.StateMaximized))
	assert.False(t, cfg.HasState(wlclient.StateFullscreen))
}
