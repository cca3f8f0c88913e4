package comp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/tfufuz1/NovaDE-sub008/backend"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

// socketPath resolves the configured socket into an absolute path.
// An empty setting picks the first free wayland-N name.
func (c *Compositor) socketPath() (string, error) {
	path := c.cfg.Socket
	switch {
	case path == "":
		return wire.NewSocketPath()
	case filepath.IsAbs(path):
		return path, nil
	default:
		return filepath.Join(xdg.RuntimeDir, path), nil
	}
}

// announceReady tells whoever started the compositor which display
// name to use. The fd form closes the descriptor afterwards, which
// is the signal launchers wait for.
func (c *Compositor) announceReady() error {
	if fd := c.cfg.ReadyFD; fd >= 0 {
		f := os.NewFile(uintptr(fd), "ready")
		if f != nil {
			fmt.Fprintf(f, "%s\n", c.display)
			f.Close()
		}
	}
	if path := c.cfg.ReadyFile; path != "" {
		if err := os.WriteFile(path, []byte(c.display+"\n"), 0o644); err != nil {
			return fmt.Errorf("write ready file: %w", err)
		}
	}
	return nil
}

// Run listens on the configured socket and drives the compositor
// until ctx ends. Protocol dispatch, backend input, and frame
// scheduling all run here; nothing else touches compositor state.
func (c *Compositor) Run(ctx context.Context) error {
	path, err := c.socketPath()
	if err != nil {
		return fmt.Errorf("resolve socket: %w", err)
	}
	server, err := wl.ListenAndServeAt(path)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer server.Close()
	c.server = server
	server.Listener = c
	c.display = filepath.Base(path)

	if err := c.backend.Start(ctx); err != nil {
		return fmt.Errorf("start backend: %w", err)
	}

	c.logger.Info("compositor running", "display", c.display, "backend", c.cfg.Backend, "layout", c.space.layout)
	if err := c.announceReady(); err != nil {
		return err
	}
	close(c.ready)

	backendEvents := c.backend.Events()
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("shutting down")
			return nil
		case batch := <-server.Events():
			if err := batch.Flush(); err != nil {
				c.logger.Error("dispatch", "err", err)
			}
		case ev, ok := <-backendEvents:
			if !ok {
				return nil
			}
			c.handleBackend(ev)
		case now := <-c.sched.timer.C:
			c.sched.fire(now)
		}
	}
}

// handleBackend applies one backend event.
func (c *Compositor) handleBackend(ev backend.Event) {
	switch ev := ev.(type) {
	case backend.PointerMotion:
		c.seat.pointerMotion(ev.Time, ev.DX, ev.DY)
	case backend.PointerButton:
		c.seat.pointerButton(ev.Time, ev.Button, ev.Pressed)
	case backend.PointerAxis:
		c.seat.pointerAxis(ev.Time, ev.Horizontal, ev.Steps)
	case backend.Key:
		c.seat.key(ev.Time, ev.Code, ev.Pressed)
	case backend.TouchDown:
		c.seat.touchDown(ev.Time, ev.ID, ev.X, ev.Y)
	case backend.TouchUp:
		c.seat.touchUp(ev.Time, ev.ID)
	case backend.TouchMotion:
		c.seat.touchMotion(ev.Time, ev.ID, ev.X, ev.Y)
	case backend.OutputAdded:
		c.outputAdded(ev.Output)
	case backend.OutputRemoved:
		c.outputRemoved(ev.Output)
	}
}

// Close releases resources that outlive Run. Safe to call more than
// once.
func (c *Compositor) Close() error {
	if c.keymapFile != nil {
		c.keymapFile.Close()
		c.keymapFile = nil
	}
	return nil
}
