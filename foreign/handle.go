package foreign

import (
	"fmt"

	"github.com/tfufuz1/NovaDE-sub008/internal/bin"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	HandleInterface = "zwlr_foreign_toplevel_handle_v1"
	HandleVersion   = ManagerVersion
)

type HandleState uint32

const (
	HandleStateMaximized  HandleState = 0
	HandleStateMinimized  HandleState = 1
	HandleStateActivated  HandleState = 2
	HandleStateFullscreen HandleState = 3
)

// Handle is the per-manager representation of a window. All requests
// on it are advisory; the compositor decides what to honor.
type Handle struct {
	Listener HandleListener

	client  *wl.Client
	id      uint32
	version uint32
	manager *Manager
}

type HandleListener interface {
	SetMaximized()
	UnsetMaximized()
	SetMinimized()
	UnsetMinimized()
	Activate(seat *wl.Seat)
	Close()
	// SetRectangle tells the compositor where the window's icon or
	// taskbar entry lives on surface, for minimize animations.
	SetRectangle(surface *wl.Surface, x, y, width, height int32)
	Destroy()
	SetFullscreen(output *wl.Output)
	UnsetFullscreen()
}

func (h *Handle) Client() *wl.Client { return h.client }
func (h *Handle) ID() uint32         { return h.id }
func (h *Handle) SetID(id uint32)    { h.id = id }
func (h *Handle) Delete()            {}
func (h *Handle) Version() uint32    { return h.version }
func (h *Handle) Manager() *Manager  { return h.manager }

func (h *Handle) String() string {
	return fmt.Sprintf("%v@%v", HandleInterface, h.id)
}

func (h *Handle) MethodName(op uint16) string {
	switch op {
	case 0:
		return "set_maximized"
	case 1:
		return "unset_maximized"
	case 2:
		return "set_minimized"
	case 3:
		return "unset_minimized"
	case 4:
		return "activate"
	case 5:
		return "close"
	case 6:
		return "set_rectangle"
	case 7:
		return "destroy"
	case 8:
		return "set_fullscreen"
	case 9:
		return "unset_fullscreen"
	}
	return "unknown"
}

func (h *Handle) Title(title string) {
	msg := wire.NewMessage(h, 0)
	msg.Method = "title"
	msg.Args = []any{title}
	msg.WriteString(title)
	h.client.Enqueue(msg)
}

func (h *Handle) AppId(appID string) {
	msg := wire.NewMessage(h, 1)
	msg.Method = "app_id"
	msg.Args = []any{appID}
	msg.WriteString(appID)
	h.client.Enqueue(msg)
}

func (h *Handle) OutputEnter(output *wl.Output) {
	msg := wire.NewMessage(h, 2)
	msg.Method = "output_enter"
	msg.Args = []any{output}
	msg.WriteObject(output)
	h.client.Enqueue(msg)
}

func (h *Handle) OutputLeave(output *wl.Output) {
	msg := wire.NewMessage(h, 3)
	msg.Method = "output_leave"
	msg.Args = []any{output}
	msg.WriteObject(output)
	h.client.Enqueue(msg)
}

func (h *Handle) State(states []HandleState) {
	msg := wire.NewMessage(h, 4)
	msg.Method = "state"
	msg.Args = []any{states}
	data := make([]byte, 0, len(states)*4)
	for _, s := range states {
		b := bin.Bytes(s)
		data = append(data, b[:]...)
	}
	msg.WriteArray(data)
	h.client.Enqueue(msg)
}

// Done marks the preceding property events as one atomic update.
func (h *Handle) Done() {
	msg := wire.NewMessage(h, 5)
	msg.Method = "done"
	h.client.Enqueue(msg)
}

// Closed tells the client the window is gone. The handle becomes
// inert; every request on it except destroy is ignored.
func (h *Handle) Closed() {
	msg := wire.NewMessage(h, 6)
	msg.Method = "closed"
	h.client.Enqueue(msg)
}

// Parent reports the window's parent, or nil for a root window.
func (h *Handle) Parent(parent *Handle) {
	if h.version < 3 {
		return
	}
	msg := wire.NewMessage(h, 7)
	msg.Method = "parent"
	msg.Args = []any{parent}
	msg.WriteObject(parent)
	h.client.Enqueue(msg)
}

func (h *Handle) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // set_maximized
		if err := msg.Err(); err != nil {
			return err
		}
		if h.Listener != nil {
			h.Listener.SetMaximized()
		}
		return nil

	case 1: // unset_maximized
		if err := msg.Err(); err != nil {
			return err
		}
		if h.Listener != nil {
			h.Listener.UnsetMaximized()
		}
		return nil

	case 2: // set_minimized
		if err := msg.Err(); err != nil {
			return err
		}
		if h.Listener != nil {
			h.Listener.SetMinimized()
		}
		return nil

	case 3: // unset_minimized
		if err := msg.Err(); err != nil {
			return err
		}
		if h.Listener != nil {
			h.Listener.UnsetMinimized()
		}
		return nil

	case 4: // activate
		seatID := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		seat, err := wl.LookupObject[*wl.Seat](h.client, h, seatID)
		if err != nil {
			return err
		}
		if h.Listener != nil {
			h.Listener.Activate(seat)
		}
		return nil

	case 5: // close
		if err := msg.Err(); err != nil {
			return err
		}
		if h.Listener != nil {
			h.Listener.Close()
		}
		return nil

	case 6: // set_rectangle
		surfaceID := msg.ReadUint()
		x := msg.ReadInt()
		y := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		surface, err := wl.LookupObject[*wl.Surface](h.client, h, surfaceID)
		if err != nil {
			return err
		}
		if h.Listener != nil {
			h.Listener.SetRectangle(surface, x, y, width, height)
		}
		return nil

	case 7: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if h.Listener != nil {
			h.Listener.Destroy()
		}
		h.client.Destroy(h)
		return nil

	case 8: // set_fullscreen
		outputID := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		output, err := wl.LookupObject[*wl.Output](h.client, h, outputID)
		if err != nil {
			return err
		}
		if h.Listener != nil {
			h.Listener.SetFullscreen(output)
		}
		return nil

	case 9: // unset_fullscreen
		if err := msg.Err(); err != nil {
			return err
		}
		if h.Listener != nil {
			h.Listener.UnsetFullscreen()
		}
		return nil
	}

	return wire.UnknownOpError{Interface: HandleInterface, Type: "request", Op: msg.Op()}
}
