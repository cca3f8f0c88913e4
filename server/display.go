package wl

import (
	"fmt"

	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	DisplayInterface = "wl_display"
	DisplayVersion   = 1
)

// DisplayError is the set of error codes that any object can post.
type DisplayError uint32

const (
	DisplayErrorInvalidObject  DisplayError = 0
	DisplayErrorInvalidMethod  DisplayError = 1
	DisplayErrorNoMemory       DisplayError = 2
	DisplayErrorImplementation DisplayError = 3
)

// Display is the core global object. It exists implicitly on every
// connection with ID 1.
type Display struct {
	Listener DisplayListener

	client *Client
	id     uint32
}

type DisplayListener interface {
	Sync(cb *Callback)
	GetRegistry(r *Registry)
}

func newDisplay(client *Client) *Display {
	return &Display{client: client}
}

func (d *Display) Client() *Client { return d.client }
func (d *Display) ID() uint32      { return d.id }
func (d *Display) SetID(id uint32) { d.id = id }
func (d *Display) Delete()         {}
func (d *Display) Version() uint32 { return DisplayVersion }

func (d *Display) String() string {
	return fmt.Sprintf("%v@%v", DisplayInterface, d.id)
}

func (d *Display) MethodName(op uint16) string {
	switch op {
	case 0:
		return "sync"
	case 1:
		return "get_registry"
	}
	return "unknown"
}

// Error tells the client that it caused a protocol error. objectID
// names the object that the error occurred on.
func (d *Display) Error(objectID, code uint32, message string) {
	msg := wire.NewMessage(d, 0)
	msg.Method = "error"
	msg.Args = []any{objectID, code, message}
	msg.WriteUint(objectID)
	msg.WriteUint(code)
	msg.WriteString(message)
	d.client.Enqueue(msg)
}

// DeleteId tells the client that an object ID is free for reuse.
func (d *Display) DeleteId(id uint32) {
	msg := wire.NewMessage(d, 1)
	msg.Method = "delete_id"
	msg.Args = []any{id}
	msg.WriteUint(id)
	d.client.Enqueue(msg)
}

func (d *Display) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // sync
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		cb := &Callback{client: d.client, version: CallbackVersion}
		if err := d.client.AddWithID(cb, id); err != nil {
			return err
		}
		if d.Listener != nil {
			d.Listener.Sync(cb)
			return nil
		}
		cb.Done(0)
		return nil

	case 1: // get_registry
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		r := &Registry{client: d.client, version: RegistryVersion}
		if err := d.client.AddWithID(r, id); err != nil {
			return err
		}
		if d.Listener != nil {
			d.Listener.GetRegistry(r)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: DisplayInterface, Type: "request", Op: msg.Op()}
}
