// Package foreign provides server-side bindings for the wlr foreign
// toplevel management protocol, which lets clients like taskbars and
// docks observe and control other clients' windows.
package foreign

import (
	"fmt"

	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	ManagerInterface = "zwlr_foreign_toplevel_manager_v1"
	ManagerVersion   = 3
)

type Manager struct {
	Listener ManagerListener

	client  *wl.Client
	id      uint32
	version uint32

	stopped bool
}

type ManagerListener interface {
	// Stop asks the manager to quit sending events. The compositor
	// answers with Finished once the stream is flushed.
	Stop()
}

func BindManager(client *wl.Client, id wire.NewID) *Manager {
	m := &Manager{client: client, version: id.Version}
	client.Bind(m, id.ID)
	return m
}

func (m *Manager) Client() *wl.Client { return m.client }
func (m *Manager) ID() uint32         { return m.id }
func (m *Manager) SetID(id uint32)    { m.id = id }
func (m *Manager) Delete()            {}
func (m *Manager) Version() uint32    { return m.version }

// Stopped reports whether the client asked the event stream to end.
func (m *Manager) Stopped() bool { return m.stopped }

func (m *Manager) String() string {
	return fmt.Sprintf("%v@%v", ManagerInterface, m.id)
}

func (m *Manager) MethodName(op uint16) string {
	if op == 0 {
		return "stop"
	}
	return "unknown"
}

// NewToplevel announces a window to the client and returns the
// handle that represents it. The caller follows up with the handle's
// state events and a Done.
func (m *Manager) NewToplevel() *Handle {
	h := &Handle{client: m.client, version: m.version, manager: m}
	m.client.Add(h)

	msg := wire.NewMessage(m, 0)
	msg.Method = "toplevel"
	msg.Args = []any{h}
	msg.WriteUint(h.id)
	m.client.Enqueue(msg)
	return h
}

// Finished ends the event stream. No handles are announced after
// this.
func (m *Manager) Finished() {
	msg := wire.NewMessage(m, 1)
	msg.Method = "finished"
	m.client.Enqueue(msg)
}

func (m *Manager) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // stop
		if err := msg.Err(); err != nil {
			return err
		}
		m.stopped = true
		if m.Listener != nil {
			m.Listener.Stop()
		}
		return nil
	}

	return wire.UnknownOpError{Interface: ManagerInterface, Type: "request", Op: msg.Op()}
}
