package wlclient

import (
	"os"

	"github.com/tfufuz1/NovaDE-sub008/wire"
)

// PrimaryManager is the zwp_primary_selection_device_manager_v1
// global.
type PrimaryManager struct {
	object
}

func (pm *PrimaryManager) CreateSource() *PrimarySource {
	s := &PrimarySource{object: object{client: pm.client, iface: "zwp_primary_selection_source_v1"}}
	pm.client.add(s)

	msg := wire.NewMessage(pm, 0)
	msg.Method = "create_source"
	msg.Args = []any{s}
	msg.WriteUint(s.oid)
	pm.client.send(msg)
	return s
}

func (pm *PrimaryManager) GetDevice(seat *Seat) *PrimaryDevice {
	d := &PrimaryDevice{object: object{client: pm.client, iface: "zwp_primary_selection_device_v1"}}
	pm.client.add(d)

	msg := wire.NewMessage(pm, 1)
	msg.Method = "get_device"
	msg.Args = []any{d, seat}
	msg.WriteUint(d.oid)
	msg.WriteUint(seat.oid)
	pm.client.send(msg)
	return d
}

func (pm *PrimaryManager) Destroy() {
	msg := wire.NewMessage(pm, 2)
	msg.Method = "destroy"
	pm.client.send(msg)
}

func (pm *PrimaryManager) MethodName(op uint16) string { return "unknown" }

func (pm *PrimaryManager) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: "zwp_primary_selection_device_manager_v1", Type: "event", Op: msg.Op()}
}

// PrimarySource is a selection this client offers.
type PrimarySource struct {
	object

	// Send handles a transfer request for one of the offered mime
	// types: write the data into file and close it. When nil the
	// descriptor is closed without writing.
	Send func(mime string, file *os.File)

	Cancelled bool
}

func (s *PrimarySource) Offer(mime string) {
	msg := wire.NewMessage(s, 0)
	msg.Method = "offer"
	msg.Args = []any{mime}
	msg.WriteString(mime)
	s.client.send(msg)
}

func (s *PrimarySource) Destroy() {
	msg := wire.NewMessage(s, 1)
	msg.Method = "destroy"
	s.client.send(msg)
}

func (s *PrimarySource) MethodName(op uint16) string {
	switch op {
	case 0:
		return "send"
	case 1:
		return "cancelled"
	}
	return "unknown"
}

func (s *PrimarySource) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // send
		mime := msg.ReadString()
		file := msg.ReadFile()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Send != nil {
			s.Send(mime, file)
		} else if file != nil {
			file.Close()
		}
		return nil

	case 1: // cancelled
		s.Cancelled = true
		return nil
	}

	return wire.UnknownOpError{Interface: "zwp_primary_selection_source_v1", Type: "event", Op: msg.Op()}
}

// PrimaryDevice tracks the seat's primary selection for this client.
type PrimaryDevice struct {
	object

	// Selections records each selection event. A nil entry means the
	// selection became empty.
	Selections []*PrimaryOffer
}

// CurrentOffer returns the most recent selection event's offer.
func (d *PrimaryDevice) CurrentOffer() (*PrimaryOffer, bool) {
	if len(d.Selections) == 0 {
		return nil, false
	}
	return d.Selections[len(d.Selections)-1], true
}

// SetSelection makes source this seat's primary selection. nil
// clears a selection this client owns.
func (d *PrimaryDevice) SetSelection(source *PrimarySource, serial uint32) {
	msg := wire.NewMessage(d, 0)
	msg.Method = "set_selection"
	msg.Args = []any{source, serial}
	if source != nil {
		msg.WriteUint(source.oid)
	} else {
		msg.WriteUint(0)
	}
	msg.WriteUint(serial)
	d.client.send(msg)
}

func (d *PrimaryDevice) Destroy() {
	msg := wire.NewMessage(d, 1)
	msg.Method = "destroy"
	d.client.send(msg)
}

func (d *PrimaryDevice) MethodName(op uint16) string {
	switch op {
	case 0:
		return "data_offer"
	case 1:
		return "selection"
	}
	return "unknown"
}

func (d *PrimaryDevice) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // data_offer
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		o := &PrimaryOffer{object: object{client: d.client, iface: "zwp_primary_selection_offer_v1"}}
		return d.client.store.AddWithID(o, id)

	case 1: // selection
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		var offer *PrimaryOffer
		if id != 0 {
			offer, _ = d.client.store.Get(id).(*PrimaryOffer)
		}
		d.Selections = append(d.Selections, offer)
		return nil
	}

	return wire.UnknownOpError{Interface: "zwp_primary_selection_device_v1", Type: "event", Op: msg.Op()}
}

// PrimaryOffer is another client's selection, announced via
// data_offer.
type PrimaryOffer struct {
	object

	MimeTypes []string
}

// Receive asks for the selection contents in mime, written to file.
// The caller reads from its own end of the pipe afterwards.
func (o *PrimaryOffer) Receive(mime string, file *os.File) {
	msg := wire.NewMessage(o, 0)
	msg.Method = "receive"
	msg.Args = []any{mime, file}
	msg.WriteString(mime)
	msg.WriteFile(file)
	o.client.send(msg)
}

func (o *PrimaryOffer) Destroy() {
	msg := wire.NewMessage(o, 1)
	msg.Method = "destroy"
	o.client.send(msg)
}

func (o *PrimaryOffer) MethodName(op uint16) string {
	if op == 0 {
		return "offer"
	}
	return "unknown"
}

func (o *PrimaryOffer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // offer
		mime := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		o.MimeTypes = append(o.MimeTypes, mime)
		return nil
	}

	return wire.UnknownOpError{Interface: "zwp_primary_selection_offer_v1", Type: "event", Op: msg.Op()}
}
