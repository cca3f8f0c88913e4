package primary

import (
	"fmt"

	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	DeviceInterface = "zwp_primary_selection_device_v1"
	DeviceVersion   = DeviceManagerVersion
)

type Device struct {
	Listener DeviceListener

	client  *wl.Client
	id      uint32
	version uint32
	seat    *wl.Seat
}

type DeviceListener interface {
	// SetSelection replaces the seat's primary selection. source is
	// nil to clear it. serial names the input event that justifies
	// the change.
	SetSelection(source *Source, serial uint32)
	Destroy()
}

func (d *Device) Client() *wl.Client { return d.client }
func (d *Device) ID() uint32         { return d.id }
func (d *Device) SetID(id uint32)    { d.id = id }
func (d *Device) Delete()            {}
func (d *Device) Version() uint32    { return d.version }
func (d *Device) Seat() *wl.Seat     { return d.seat }

func (d *Device) String() string {
	return fmt.Sprintf("%v@%v", DeviceInterface, d.id)
}

func (d *Device) MethodName(op uint16) string {
	switch op {
	case 0:
		return "set_selection"
	case 1:
		return "destroy"
	}
	return "unknown"
}

// NewOffer announces a selection offer to this device and returns
// it. The caller sends the offer's mime types and then Selection.
func (d *Device) NewOffer() *Offer {
	o := &Offer{client: d.client, version: d.version}
	d.client.Add(o)

	msg := wire.NewMessage(d, 0)
	msg.Method = "data_offer"
	msg.Args = []any{o}
	msg.WriteUint(o.id)
	d.client.Enqueue(msg)
	return o
}

// Selection reports the seat's current primary selection. offer is
// nil when the selection is empty.
func (d *Device) Selection(offer *Offer) {
	msg := wire.NewMessage(d, 1)
	msg.Method = "selection"
	msg.Args = []any{offer}
	msg.WriteObject(offer)
	d.client.Enqueue(msg)
}

func (d *Device) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // set_selection
		sourceID := msg.ReadUint()
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		source, err := wl.LookupObject[*Source](d.client, d, sourceID)
		if err != nil {
			return err
		}
		if d.Listener != nil {
			d.Listener.SetSelection(source, serial)
		}
		return nil

	case 1: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if d.Listener != nil {
			d.Listener.Destroy()
		}
		d.client.Destroy(d)
		return nil
	}

	return wire.UnknownOpError{Interface: DeviceInterface, Type: "request", Op: msg.Op()}
}
