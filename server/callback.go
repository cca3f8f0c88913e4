package wl

import (
	"fmt"

	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	CallbackInterface = "wl_callback"
	CallbackVersion   = 1
)

// Callback is a one-shot notification object. Done fires it and
// destroys it.
type Callback struct {
	client  *Client
	id      uint32
	version uint32
}

func (cb *Callback) Client() *Client { return cb.client }
func (cb *Callback) ID() uint32      { return cb.id }
func (cb *Callback) SetID(id uint32) { cb.id = id }
func (cb *Callback) Delete()         {}
func (cb *Callback) Version() uint32 { return cb.version }

func (cb *Callback) String() string {
	return fmt.Sprintf("%v@%v", CallbackInterface, cb.id)
}

func (cb *Callback) MethodName(op uint16) string {
	return "unknown"
}

// Done fires the callback. The object is destroyed afterwards, as a
// wl_callback only ever fires once.
func (cb *Callback) Done(data uint32) {
	msg := wire.NewMessage(cb, 0)
	msg.Method = "done"
	msg.Args = []any{data}
	msg.WriteUint(data)
	cb.client.Enqueue(msg)
	cb.client.Destroy(cb)
}

func (cb *Callback) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: CallbackInterface, Type: "request", Op: msg.Op()}
}
