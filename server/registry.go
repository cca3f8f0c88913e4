package wl

import (
	"fmt"

	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	RegistryInterface = "wl_registry"
	RegistryVersion   = 1
)

type Registry struct {
	Listener RegistryListener

	client  *Client
	id      uint32
	version uint32
}

type RegistryListener interface {
	// Bind handles the client's request to bind id to the global
	// advertised under name. The handler is expected to call the
	// appropriate Bind function for the global's interface, or to
	// post an error if name is unknown.
	Bind(name uint32, id wire.NewID)
}

func (r *Registry) Client() *Client { return r.client }
func (r *Registry) ID() uint32      { return r.id }
func (r *Registry) SetID(id uint32) { r.id = id }
func (r *Registry) Delete()         {}
func (r *Registry) Version() uint32 { return r.version }

func (r *Registry) String() string {
	return fmt.Sprintf("%v@%v", RegistryInterface, r.id)
}

func (r *Registry) MethodName(op uint16) string {
	if op == 0 {
		return "bind"
	}
	return "unknown"
}

// Global advertises a global to the client.
func (r *Registry) Global(name uint32, inter string, version uint32) {
	msg := wire.NewMessage(r, 0)
	msg.Method = "global"
	msg.Args = []any{name, inter, version}
	msg.WriteUint(name)
	msg.WriteString(inter)
	msg.WriteUint(version)
	r.client.Enqueue(msg)
}

// GlobalRemove withdraws a previously advertised global.
func (r *Registry) GlobalRemove(name uint32) {
	msg := wire.NewMessage(r, 1)
	msg.Method = "global_remove"
	msg.Args = []any{name}
	msg.WriteUint(name)
	r.client.Enqueue(msg)
}

func (r *Registry) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // bind
		name := msg.ReadUint()
		id := msg.ReadNewID()
		if err := msg.Err(); err != nil {
			return err
		}
		if r.Listener == nil {
			return Errorf(r, uint32(DisplayErrorImplementation), "no registry handler")
		}
		r.Listener.Bind(name, id)
		return nil
	}

	return wire.UnknownOpError{Interface: RegistryInterface, Type: "request", Op: msg.Op()}
}
