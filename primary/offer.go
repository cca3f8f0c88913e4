package primary

import (
	"fmt"
	"os"

	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	OfferInterface = "zwp_primary_selection_offer_v1"
	OfferVersion   = DeviceManagerVersion
)

// Offer is the receiver side of a selection, created by the
// compositor on the device of each client that should see it.
type Offer struct {
	Listener OfferListener

	client  *wl.Client
	id      uint32
	version uint32
}

type OfferListener interface {
	// Receive asks for the selection contents in mimeType to be
	// written to file. The listener owns file and closes it when the
	// transfer is underway.
	Receive(mimeType string, file *os.File)
	Destroy()
}

func (o *Offer) Client() *wl.Client { return o.client }
func (o *Offer) ID() uint32         { return o.id }
func (o *Offer) SetID(id uint32)    { o.id = id }
func (o *Offer) Delete()            {}
func (o *Offer) Version() uint32    { return o.version }

func (o *Offer) String() string {
	return fmt.Sprintf("%v@%v", OfferInterface, o.id)
}

func (o *Offer) MethodName(op uint16) string {
	switch op {
	case 0:
		return "receive"
	case 1:
		return "destroy"
	}
	return "unknown"
}

// MimeType advertises one available type. Sent once per type right
// after the offer is introduced.
func (o *Offer) MimeType(mimeType string) {
	msg := wire.NewMessage(o, 0)
	msg.Method = "offer"
	msg.Args = []any{mimeType}
	msg.WriteString(mimeType)
	o.client.Enqueue(msg)
}

func (o *Offer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // receive
		mimeType := msg.ReadString()
		file := msg.ReadFile()
		if err := msg.Err(); err != nil {
			return err
		}
		if o.Listener != nil {
			o.Listener.Receive(mimeType, file)
		} else if file != nil {
			file.Close()
		}
		return nil

	case 1: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if o.Listener != nil {
			o.Listener.Destroy()
		}
		o.client.Destroy(o)
		return nil
	}

	return wire.UnknownOpError{Interface: OfferInterface, Type: "request", Op: msg.Op()}
}
