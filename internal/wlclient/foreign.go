package wlclient

import (
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

// Foreign toplevel states from the zwlr_foreign_toplevel_handle_v1
// state enum.
const (
	FStateMaximized  uint32 = 0
	FStateMinimized  uint32 = 1
	FStateActivated  uint32 = 2
	FStateFullscreen uint32 = 3
)

// ForeignManager is the zwlr_foreign_toplevel_manager_v1 global. It
// records every toplevel the compositor announces.
type ForeignManager struct {
	object

	Toplevels []*ForeignToplevel
	Finished  bool
}

// Stop asks the compositor to end the event stream.
func (fm *ForeignManager) Stop() {
	msg := wire.NewMessage(fm, 0)
	msg.Method = "stop"
	fm.client.send(msg)
}

func (fm *ForeignManager) MethodName(op uint16) string {
	switch op {
	case 0:
		return "toplevel"
	case 1:
		return "finished"
	}
	return "unknown"
}

func (fm *ForeignManager) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // toplevel
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		t := &ForeignToplevel{object: object{client: fm.client, iface: "zwlr_foreign_toplevel_handle_v1"}}
		if err := fm.client.store.AddWithID(t, id); err != nil {
			return err
		}
		fm.Toplevels = append(fm.Toplevels, t)
		return nil

	case 1: // finished
		fm.Finished = true
		return nil
	}

	return wire.UnknownOpError{Interface: "zwlr_foreign_toplevel_manager_v1", Type: "event", Op: msg.Op()}
}

// ForeignToplevel records the property stream for one announced
// window. Every event is kept in arrival order so tests can count
// updates, not just observe the latest value.
type ForeignToplevel struct {
	object

	Titles  []string
	AppIDs  []string
	States  [][]uint32
	Entered []uint32
	Left    []uint32
	Parents []uint32
	Dones   int
	Closed  bool
}

// Title returns the most recently announced title.
func (t *ForeignToplevel) Title() string {
	if len(t.Titles) == 0 {
		return ""
	}
	return t.Titles[len(t.Titles)-1]
}

// AppID returns the most recently announced app ID.
func (t *ForeignToplevel) AppID() string {
	if len(t.AppIDs) == 0 {
		return ""
	}
	return t.AppIDs[len(t.AppIDs)-1]
}

// HasState reports whether the latest state array contains s.
func (t *ForeignToplevel) HasState(s uint32) bool {
	if len(t.States) == 0 {
		return false
	}
	for _, st := range t.States[len(t.States)-1] {
		if st == s {
			return true
		}
	}
	return false
}

func (t *ForeignToplevel) SetMaximized() {
	msg := wire.NewMessage(t, 0)
	msg.Method = "set_maximized"
	t.client.send(msg)
}

func (t *ForeignToplevel) UnsetMaximized() {
	msg := wire.NewMessage(t, 1)
	msg.Method = "unset_maximized"
	t.client.send(msg)
}

func (t *ForeignToplevel) SetMinimized() {
	msg := wire.NewMessage(t, 2)
	msg.Method = "set_minimized"
	t.client.send(msg)
}

func (t *ForeignToplevel) UnsetMinimized() {
	msg := wire.NewMessage(t, 3)
	msg.Method = "unset_minimized"
	t.client.send(msg)
}

// Activate asks the compositor to give the window focus.
func (t *ForeignToplevel) Activate(seat *Seat) {
	msg := wire.NewMessage(t, 4)
	msg.Method = "activate"
	msg.Args = []any{seat}
	msg.WriteUint(seat.oid)
	t.client.send(msg)
}

// RequestClose asks the compositor to close the window.
func (t *ForeignToplevel) RequestClose() {
	msg := wire.NewMessage(t, 5)
	msg.Method = "close"
	t.client.send(msg)
}

func (t *ForeignToplevel) SetRectangle(surface *Surface, x, y, width, height int32) {
	msg := wire.NewMessage(t, 6)
	msg.Method = "set_rectangle"
	msg.Args = []any{surface, x, y, width, height}
	msg.WriteUint(surface.oid)
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	t.client.send(msg)
}

func (t *ForeignToplevel) Destroy() {
	msg := wire.NewMessage(t, 7)
	msg.Method = "destroy"
	t.client.send(msg)
}

// SetFullscreen asks for fullscreen, on output if non-nil.
func (t *ForeignToplevel) SetFullscreen(output *Output) {
	msg := wire.NewMessage(t, 8)
	msg.Method = "set_fullscreen"
	msg.Args = []any{output}
	if output != nil {
		msg.WriteUint(output.oid)
	} else {
		msg.WriteUint(0)
	}
	t.client.send(msg)
}

func (t *ForeignToplevel) UnsetFullscreen() {
	msg := wire.NewMessage(t, 9)
	msg.Method = "unset_fullscreen"
	t.client.send(msg)
}

func (t *ForeignToplevel) MethodName(op uint16) string {
	switch op {
	case 0:
		return "title"
	case 1:
		return "app_id"
	case 2:
		return "output_enter"
	case 3:
		return "output_leave"
	case 4:
		return "state"
	case 5:
		return "done"
	case 6:
		return "closed"
	case 7:
		return "parent"
	}
	return "unknown"
}

func (t *ForeignToplevel) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // title
		title := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		t.Titles = append(t.Titles, title)
		return nil

	case 1: // app_id
		appID := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		t.AppIDs = append(t.AppIDs, appID)
		return nil

	case 2: // output_enter
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		t.Entered = append(t.Entered, id)
		return nil

	case 3: // output_leave
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		t.Left = append(t.Left, id)
		return nil

	case 4: // state
		data := msg.ReadArray()
		if err := msg.Err(); err != nil {
			return err
		}
		t.States = append(t.States, decodeUints(data))
		return nil

	case 5: // done
		t.Dones++
		return nil

	case 6: // closed
		t.Closed = true
		return nil

	case 7: // parent
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		t.Parents = append(t.Parents, id)
		return nil
	}

	return wire.UnknownOpError{Interface: "zwlr_foreign_toplevel_handle_v1", Type: "event", Op: msg.Op()}
}
