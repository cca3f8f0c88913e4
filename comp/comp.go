// Package comp implements the compositor core: client sessions, the
// surface tree, window management, input routing, and frame
// scheduling.
//
// Everything in this package runs on the goroutine driving Run's
// event loop. Protocol requests arrive as queued closures from the
// server package and are flushed there, so no state here needs
// locking.
package comp

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tfufuz1/NovaDE-sub008/backend"
	"github.com/tfufuz1/NovaDE-sub008/config"
	"github.com/tfufuz1/NovaDE-sub008/cursor"
	"github.com/tfufuz1/NovaDE-sub008/foreign"
	"github.com/tfufuz1/NovaDE-sub008/internal/xslices"
	"github.com/tfufuz1/NovaDE-sub008/layer"
	"github.com/tfufuz1/NovaDE-sub008/primary"
	"github.com/tfufuz1/NovaDE-sub008/render"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
	"github.com/tfufuz1/NovaDE-sub008/xdg"
)

// Options configures a Compositor. Backend and Renderer override the
// config selection when non-nil, which is how tests inject a
// scripted backend.
type Options struct {
	Config   *config.Config
	Logger   *log.Logger
	Backend  backend.Backend
	Renderer render.Renderer
}

// Compositor ties the protocol layer to the space, the seat, and the
// frame scheduler. Create one with New and drive it with Run.
type Compositor struct {
	logger   *log.Logger
	cfg      *config.Config
	backend  backend.Backend
	renderer render.Renderer
	theme    *cursor.Theme

	server  *wl.Server
	display string
	ready   chan struct{}

	space *Space
	seat  *Seat
	sched *scheduler

	sessions    map[*wl.Client]*session
	nextSession int
	attached    map[*wl.Buffer]*attachedBuffer

	globals    []*global
	nextGlobal uint32

	serial uint32
	epoch  time.Time

	keymapFormat wl.KeyboardKeymapFormat
	keymapFile   *os.File
	keymapSize   uint32
}

// New builds a Compositor from opts. The returned compositor is not
// listening yet; call Run.
func New(opts Options) (*Compositor, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	c := &Compositor{
		logger:   logger,
		cfg:      cfg,
		backend:  opts.Backend,
		renderer: opts.Renderer,
		ready:    make(chan struct{}),
		sessions: make(map[*wl.Client]*session),
		attached: make(map[*wl.Buffer]*attachedBuffer),
		epoch:    time.Now(),
	}

	if c.backend == nil {
		var bopts []backend.Option
		if len(cfg.Outputs) > 0 {
			outputs := make([]backend.OutputConfig, 0, len(cfg.Outputs))
			for _, out := range cfg.Outputs {
				outputs = append(outputs, backend.OutputConfig{
					Name:    out.Name,
					Width:   out.Width,
					Height:  out.Height,
					Refresh: out.Refresh,
					Scale:   out.Scale,
				})
			}
			bopts = append(bopts, backend.WithOutputs(outputs))
		}
		if cfg.Input.Evdev {
			bopts = append(bopts, backend.WithInput(cfg.Input.Devices))
		}
		b, err := backend.New(cfg.Backend, bopts...)
		if err != nil {
			return nil, fmt.Errorf("create backend: %w", err)
		}
		c.backend = b
	}

	if c.renderer == nil {
		r, err := render.New(cfg.Renderer)
		if err != nil {
			return nil, fmt.Errorf("create renderer: %w", err)
		}
		c.renderer = r
	}

	theme, err := cursor.LoadTheme(cfg.Cursor.Theme, cfg.Cursor.Size)
	if err != nil {
		logger.Warn("cursor theme unavailable, using built-in pointer", "theme", cfg.Cursor.Theme, "err", err)
	}
	c.theme = theme

	if err := c.openKeymap(); err != nil {
		return nil, err
	}

	c.space = newSpace(cfg.Layout)
	c.seat = newSeat(c)
	c.sched = newScheduler(c)
	c.registerGlobals()

	return c, nil
}

// openKeymap prepares the keymap file advertised to every keyboard.
// Without a configured xkb file the seat announces no keymap over a
// placeholder fd, leaving interpretation of key codes to the client.
func (c *Compositor) openKeymap() error {
	if path := c.cfg.Input.Keymap; path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open keymap: %w", err)
		}
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return fmt.Errorf("stat keymap: %w", err)
		}
		c.keymapFormat = wl.KeyboardKeymapFormatXkbV1
		c.keymapFile = f
		c.keymapSize = uint32(st.Size())
		return nil
	}

	f, err := os.Open(os.DevNull)
	if err != nil {
		return err
	}
	c.keymapFormat = wl.KeyboardKeymapFormatNoKeymap
	c.keymapFile = f
	c.keymapSize = 0
	return nil
}

// Ready is closed once the compositor accepts clients.
func (c *Compositor) Ready() <-chan struct{} { return c.ready }

// DisplayName returns the socket name clients should put in
// WAYLAND_DISPLAY. Valid once Ready is closed.
func (c *Compositor) DisplayName() string { return c.display }

// nextSerial returns a fresh serial. One counter serves every event
// source so that any serial a client hands back can be checked for
// recency against the same sequence.
func (c *Compositor) nextSerial() uint32 {
	c.serial++
	return c.serial
}

// timestamp is the millisecond clock carried by input and frame
// events.
func (c *Compositor) timestamp() uint32 {
	return c.stamp(time.Now())
}

func (c *Compositor) stamp(t time.Time) uint32 {
	return uint32(t.Sub(c.epoch) / time.Millisecond)
}

// global is one advertised registry entry.
type global struct {
	name    uint32
	inter   string
	version uint32
	bind    func(sess *session, id wire.NewID)
}

// addGlobal registers a global and announces it to every existing
// registry.
func (c *Compositor) addGlobal(inter string, version uint32, bind func(*session, wire.NewID)) *global {
	c.nextGlobal++
	g := &global{name: c.nextGlobal, inter: inter, version: version, bind: bind}
	c.globals = append(c.globals, g)
	for _, sess := range c.sessions {
		for _, r := range sess.registries {
			r.Global(g.name, g.inter, g.version)
		}
	}
	return g
}

// removeGlobal withdraws a global. Objects already bound to it keep
// working until the client destroys them.
func (c *Compositor) removeGlobal(g *global) {
	c.globals = xslices.Remove(c.globals, g)
	for _, sess := range c.sessions {
		for _, r := range sess.registries {
			r.GlobalRemove(g.name)
		}
	}
}

func (c *Compositor) findGlobal(name uint32) *global {
	for _, g := range c.globals {
		if g.name == name {
			return g
		}
	}
	return nil
}

// registerGlobals installs the static globals. Outputs are not
// among them; each backend output adds its own global when it
// appears.
func (c *Compositor) registerGlobals() {
	c.addGlobal(wl.CompositorInterface, wl.CompositorVersion, func(sess *session, id wire.NewID) {
		comp := wl.BindCompositor(sess.client, id)
		comp.Listener = (*sessionCompositor)(sess)
	})

	c.addGlobal(wl.SubcompositorInterface, wl.SubcompositorVersion, func(sess *session, id wire.NewID) {
		sub := wl.BindSubcompositor(sess.client, id)
		sub.Listener = (*sessionSubcompositor)(sess)
	})

	c.addGlobal(wl.ShmInterface, wl.ShmVersion, func(sess *session, id wire.NewID) {
		shm := wl.BindShm(sess.client, id)
		shm.Format(wl.ShmFormatArgb8888)
		shm.Format(wl.ShmFormatXrgb8888)
	})

	c.addGlobal(wl.SeatInterface, wl.SeatVersion, func(sess *session, id wire.NewID) {
		seat := wl.BindSeat(sess.client, id)
		seat.Listener = &seatBinding{sess: sess, res: seat}
		sess.seats = append(sess.seats, seat)
		seat.Capabilities(wl.SeatCapabilityPointer | wl.SeatCapabilityKeyboard | wl.SeatCapabilityTouch)
		seat.Name(seatName)
	})

	c.addGlobal(xdg.WmBaseInterface, xdg.WmBaseVersion, func(sess *session, id wire.NewID) {
		wb := xdg.BindWmBase(sess.client, id)
		wb.Listener = &wmBaseBinding{sess: sess, res: wb}
	})

	c.addGlobal(layer.ShellInterface, layer.ShellVersion, func(sess *session, id wire.NewID) {
		sh := layer.BindShell(sess.client, id)
		sh.Listener = &layerShellBinding{sess: sess, res: sh}
	})

	c.addGlobal(foreign.ManagerInterface, foreign.ManagerVersion, func(sess *session, id wire.NewID) {
		m := foreign.BindManager(sess.client, id)
		fm := &foreignManager{sess: sess, res: m, handles: make(map[*window]*foreign.Handle)}
		m.Listener = fm
		sess.exporters = append(sess.exporters, fm)
		fm.announceAll()
	})

	c.addGlobal(primary.DeviceManagerInterface, primary.DeviceManagerVersion, func(sess *session, id wire.NewID) {
		dm := primary.BindDeviceManager(sess.client, id)
		dm.Listener = &primaryBinding{sess: sess, res: dm}
	})
}
